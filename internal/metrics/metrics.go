package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Tile metrics
	TileFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "trailmap",
		Subsystem: "tiles",
		Name:      "fetches_total",
		Help:      "Tile fetches by outcome (ok or fallback)",
	}, []string{"outcome"})

	TileFetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "trailmap",
		Subsystem: "tiles",
		Name:      "fetch_duration_seconds",
		Help:      "Tile fetch latency in seconds",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	})

	TileCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "trailmap",
		Subsystem: "tiles",
		Name:      "cache_lookups_total",
		Help:      "Tile cache lookups by result (hit or miss)",
	}, []string{"result"})

	// Path metrics
	PathClicks = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "trailmap",
		Subsystem: "path",
		Name:      "clicks_total",
		Help:      "Points recorded on the drawn path",
	})

	PathResets = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "trailmap",
		Subsystem: "path",
		Name:      "resets_total",
		Help:      "Path reset actions",
	})

	PathPoints = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "trailmap",
		Subsystem: "path",
		Name:      "points",
		Help:      "Points on the current path",
	})
)

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Serve exposes /metrics on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
