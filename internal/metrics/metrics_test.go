package metrics_test

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trailmap/internal/geo"
	"trailmap/internal/metrics"
	"trailmap/internal/trail"
)

func scrape(t *testing.T, url string) string {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestHandler_ExposesPathClicks(t *testing.T) {
	proj := geo.DefaultProjection()
	w, h := proj.Size()
	rec := trail.NewRecorder(trail.MosaicStrategy{Projection: proj}, w, h, nil)

	rec.RecordClick(100, 100)

	srv := httptest.NewServer(metrics.Handler())
	defer srv.Close()

	body := scrape(t, srv.URL)
	assert.Contains(t, body, "trailmap_path_clicks_total")
	assert.Contains(t, body, "trailmap_path_points 1")
}

func TestServe_StopsOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- metrics.Serve(ctx, addr) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/metrics")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)
	assert.Contains(t, scrape(t, "http://"+addr+"/metrics"), "trailmap_path_clicks_total")

	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
