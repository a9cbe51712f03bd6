package tiles

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/orb/maptile"
	"golang.org/x/time/rate"
)

// DefaultURLTemplate is the OpenTopoMap raster endpoint.
const DefaultURLTemplate = "https://{s}.tile.opentopomap.org/{z}/{x}/{y}.png"

// ErrStatus is returned when a tile server answers with a non-200 status.
var ErrStatus = errors.New("tiles: unexpected status")

// Source fetches one decoded tile image.
type Source interface {
	Fetch(ctx context.Context, t maptile.Tile) (image.Image, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, t maptile.Tile) (image.Image, error)

func (f SourceFunc) Fetch(ctx context.Context, t maptile.Tile) (image.Image, error) {
	return f(ctx, t)
}

// HTTPSource downloads raster tiles from a {s}/{z}/{x}/{y} URL template.
type HTTPSource struct {
	client    *http.Client
	template  string
	shards    []string
	userAgent string
	limiter   *rate.Limiter
	timeout   time.Duration
}

// Option configures an HTTPSource.
type Option func(*HTTPSource)

// WithClient replaces the HTTP client.
func WithClient(c *http.Client) Option {
	return func(s *HTTPSource) { s.client = c }
}

// WithShards sets the values substituted for {s}.
func WithShards(shards ...string) Option {
	return func(s *HTTPSource) {
		if len(shards) > 0 {
			s.shards = shards
		}
	}
}

// WithUserAgent sets the User-Agent header; public tile servers require one.
func WithUserAgent(ua string) Option {
	return func(s *HTTPSource) { s.userAgent = ua }
}

// WithRateLimit caps outgoing requests per second. rps <= 0 means unlimited.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *HTTPSource) {
		if rps <= 0 {
			s.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithTimeout bounds each request. Zero keeps the client's own timeout.
// The timeout is set on a copy, so a shared client is left as it was.
func WithTimeout(d time.Duration) Option {
	return func(s *HTTPSource) { s.timeout = d }
}

func NewHTTPSource(template string, opts ...Option) *HTTPSource {
	if template == "" {
		template = DefaultURLTemplate
	}
	s := &HTTPSource{
		client:    &http.Client{},
		template:  template,
		shards:    []string{"a"},
		userAgent: "trailmap/1.0",
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.timeout > 0 {
		c := *s.client
		c.Timeout = s.timeout
		s.client = &c
	}
	return s
}

// URL expands the template for t. The shard is chosen from the tile
// coordinates so the same tile always maps to the same host.
func (s *HTTPSource) URL(t maptile.Tile) string {
	shard := s.shards[int(t.X+t.Y)%len(s.shards)]
	r := strings.NewReplacer(
		"{s}", shard,
		"{z}", strconv.Itoa(int(t.Z)),
		"{x}", strconv.FormatUint(uint64(t.X), 10),
		"{y}", strconv.FormatUint(uint64(t.Y), 10),
	)
	return r.Replace(s.template)
}

func (s *HTTPSource) Fetch(ctx context.Context, t maptile.Tile) (image.Image, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	url := s.URL(t)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "image/png,image/*;q=0.8")

	slog.Debug("tile request", "url", url)
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s from %s", ErrStatus, resp.Status, url)
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", url, err)
	}
	return img, nil
}
