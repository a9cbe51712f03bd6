// Package widget is a fixed-view slippy map: it renders the tiles around a
// center point, turns canvas clicks into geographic points directly and
// measures distances with its own great-circle implementation.
package widget

import (
	"context"
	"image"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/golang/geo/s2"
	"github.com/paulmach/orb/maptile"

	"trailmap/internal/geo"
	"trailmap/internal/tiles"
)

type Map struct {
	center   geo.GeoPoint
	zoom     int
	width    int
	height   int
	tileSize int

	tiles         *tiles.Manager
	retries       uint64
	retryInterval time.Duration
	blank         *image.RGBA
}

type Option func(*Map)

func WithCenter(c geo.GeoPoint) Option { return func(m *Map) { m.center = c } }

func WithZoom(z int) Option { return func(m *Map) { m.zoom = z } }

// WithSize sets the canvas size in pixels.
func WithSize(w, h int) Option {
	return func(m *Map) {
		if w > 0 && h > 0 {
			m.width, m.height = w, h
		}
	}
}

// WithRetries sets how many times a failed tile is retried before it is
// drawn blank, and the first backoff interval.
func WithRetries(n int, initial time.Duration) Option {
	return func(m *Map) {
		if n >= 0 {
			m.retries = uint64(n)
		}
		if initial > 0 {
			m.retryInterval = initial
		}
	}
}

// New builds a map over src. Without options it shows the default lesson
// window: zoom 13, centered on the 4x4 mosaic, 1024x1024 pixels.
func New(src tiles.Source, opts ...Option) *Map {
	proj := geo.DefaultProjection()
	w, h := proj.Size()
	m := &Map{
		center:        proj.Center(),
		zoom:          proj.Zoom,
		width:         w,
		height:        h,
		tileSize:      geo.TileSize,
		tiles:         tiles.NewManager(src),
		retries:       2,
		retryInterval: 250 * time.Millisecond,
		blank:         tiles.Blank(geo.TileSize),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Map) Center() geo.GeoPoint { return m.center }

func (m *Map) Zoom() int { return m.zoom }

func (m *Map) Size() (int, int) { return m.width, m.height }

func (m *Map) worldSize() float64 {
	return float64(m.tileSize) * math.Pow(2, float64(m.zoom))
}

// origin is the world pixel at the canvas top-left corner, snapped to a
// micro-pixel so tile-aligned centers stay tile-aligned after the round trip
// through degrees.
func (m *Map) origin() (float64, float64) {
	cx, cy := geo.GeoToWorld(m.center, m.worldSize())
	ox := cx - float64(m.width)/2
	oy := cy - float64(m.height)/2
	return math.Round(ox*1e6) / 1e6, math.Round(oy*1e6) / 1e6
}

// Locate converts a canvas click to a geographic point.
func (m *Map) Locate(x, y float64) geo.GeoPoint {
	ox, oy := m.origin()
	return geo.WorldToGeo(ox+x, oy+y, m.worldSize())
}

// Pixel places a geographic point on the canvas.
func (m *Map) Pixel(g geo.GeoPoint) geo.ScreenPoint {
	ox, oy := m.origin()
	wx, wy := geo.GeoToWorld(g, m.worldSize())
	return geo.ScreenPoint{X: wx - ox, Y: wy - oy}
}

// Distance is the great-circle distance in meters, computed on the s2
// sphere with the same radius the haversine path length uses.
func (m *Map) Distance(a, b geo.GeoPoint) float64 {
	la := s2.LatLngFromDegrees(a.Lat, a.Lon)
	lb := s2.LatLngFromDegrees(b.Lat, b.Lon)
	return la.Distance(lb).Radians() * geo.EarthRadiusMeters
}

type placed struct {
	tile maptile.Tile
	at   image.Point
}

// visible lists the tiles intersecting the canvas with their draw offsets.
func (m *Map) visible() []placed {
	ox, oy := m.origin()
	ts := float64(m.tileSize)
	n := 1 << m.zoom
	x0, y0 := int(math.Floor(ox/ts)), int(math.Floor(oy/ts))
	x1 := int(math.Floor((ox + float64(m.width) - 1) / ts))
	y1 := int(math.Floor((oy + float64(m.height) - 1) / ts))

	var out []placed
	for tx := x0; tx <= x1; tx++ {
		for ty := y0; ty <= y1; ty++ {
			if ty < 0 || ty >= n {
				continue
			}
			wx := ((tx % n) + n) % n
			out = append(out, placed{
				tile: maptile.New(uint32(wx), uint32(ty), maptile.Zoom(m.zoom)),
				at: image.Point{
					X: int(math.Round(float64(tx)*ts - ox)),
					Y: int(math.Round(float64(ty)*ts - oy)),
				},
			})
		}
	}
	return out
}

// VisibleTiles lists the tiles the current view needs.
func (m *Map) VisibleTiles() []maptile.Tile {
	vs := m.visible()
	out := make([]maptile.Tile, len(vs))
	for i, v := range vs {
		out[i] = v.tile
	}
	return out
}

// Render fetches the visible tiles, retrying each a few times, and composes
// them. Tiles that keep failing are drawn white.
func (m *Map) Render(ctx context.Context) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, m.width, m.height))
	vs := m.visible()
	imgs := make([]image.Image, len(vs))

	var wg sync.WaitGroup
	for i, v := range vs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			imgs[i] = m.fetch(ctx, v.tile)
		}()
	}
	wg.Wait()

	for i, v := range vs {
		r := image.Rect(v.at.X, v.at.Y, v.at.X+m.tileSize, v.at.Y+m.tileSize)
		drawInto(dst, r, imgs[i])
	}
	return dst
}

func (m *Map) fetch(ctx context.Context, t maptile.Tile) image.Image {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = m.retryInterval
	policy := backoff.WithContext(backoff.WithMaxRetries(eb, m.retries), ctx)

	var img image.Image
	err := backoff.Retry(func() error {
		var err error
		img, err = m.tiles.Fetch(ctx, t)
		return err
	}, policy)
	if err != nil || img == nil {
		slog.Debug("widget tile blank", "tile", tiles.Key(t), "err", err)
		return m.blank
	}
	return img
}
