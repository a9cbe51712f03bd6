package tiles

import (
	"context"
	"image"
	"image/draw"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/paulmach/orb/maptile"
	xdraw "golang.org/x/image/draw"

	"trailmap/internal/geo"
	"trailmap/internal/metrics"
)

// Descriptor is one settled cell of the mosaic.
type Descriptor struct {
	Column int
	Row    int
	Tile   maptile.Tile
	Image  image.Image
	// Fallback is set when the fetch failed and Image is the blank tile.
	Fallback bool
	Err      error
}

// Loader fetches the fixed tile window of a projection and assembles it
// into one bitmap. A Loader is single-use: one Fetch per session.
type Loader struct {
	proj  geo.Projection
	src   Source
	total int32
	blank *image.RGBA

	settled atomic.Int32

	mu    sync.Mutex
	tiles []Descriptor
}

func NewLoader(proj geo.Projection, src Source) *Loader {
	return &Loader{
		proj:  proj,
		src:   src,
		total: int32(proj.Cols * proj.Rows),
		blank: Blank(proj.TileSize),
	}
}

// Total is the number of tiles the mosaic waits for.
func (l *Loader) Total() int { return int(l.total) }

// Settled is the number of tiles recorded so far.
func (l *Loader) Settled() int { return int(l.settled.Load()) }

// Done reports whether every tile has settled.
func (l *Loader) Done() bool { return l.settled.Load() >= l.total }

// Fetch issues every tile request at once and yields a Descriptor per tile
// as it resolves, in completion order. Failed tiles come back as blanks.
// The channel is closed after the last tile.
func (l *Loader) Fetch(ctx context.Context) <-chan Descriptor {
	out := make(chan Descriptor, l.total)
	var wg sync.WaitGroup
	for k, t := range l.proj.Tiles() {
		col, row := k/l.proj.Rows, k%l.proj.Rows
		wg.Add(1)
		go func() {
			defer wg.Done()
			out <- l.fetchOne(ctx, col, row, t)
		}()
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

func (l *Loader) fetchOne(ctx context.Context, col, row int, t maptile.Tile) Descriptor {
	d := Descriptor{Column: col, Row: row, Tile: t}
	start := time.Now()
	img, err := l.src.Fetch(ctx, t)
	metrics.TileFetchDuration.Observe(time.Since(start).Seconds())
	if err != nil || img == nil {
		slog.Debug("tile fallback", "tile", Key(t), "err", err)
		metrics.TileFetches.WithLabelValues("fallback").Inc()
		d.Image, d.Fallback, d.Err = l.blank, true, err
		return d
	}
	metrics.TileFetches.WithLabelValues("ok").Inc()
	d.Image = img
	return d
}

// Settle records a resolved tile. It reports true exactly once: for the
// call that brings the settled count to Total.
func (l *Loader) Settle(d Descriptor) bool {
	l.mu.Lock()
	l.tiles = append(l.tiles, d)
	l.mu.Unlock()
	return l.settled.Add(1) == l.total
}

// Tiles returns the settled tiles in completion order.
func (l *Loader) Tiles() []Descriptor {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Descriptor, len(l.tiles))
	copy(out, l.tiles)
	return out
}

// Mosaic draws every settled tile at its grid position. Cells that have not
// settled stay transparent.
func (l *Loader) Mosaic() *image.RGBA {
	w, h := l.proj.Size()
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	ts := l.proj.TileSize
	for _, d := range l.Tiles() {
		r := image.Rect(d.Column*ts, d.Row*ts, (d.Column+1)*ts, (d.Row+1)*ts)
		drawTile(dst, r, d.Image)
	}
	return dst
}

// Load fetches and settles every tile, then returns the mosaic.
func (l *Loader) Load(ctx context.Context) *image.RGBA {
	for d := range l.Fetch(ctx) {
		if l.Settle(d) {
			break
		}
	}
	return l.Mosaic()
}

func drawTile(dst *image.RGBA, r image.Rectangle, src image.Image) {
	sb := src.Bounds()
	if sb.Dx() == r.Dx() && sb.Dy() == r.Dy() {
		draw.Draw(dst, r, src, sb.Min, draw.Src)
		return
	}
	xdraw.ApproxBiLinear.Scale(dst, r, src, sb, xdraw.Src, nil)
}
