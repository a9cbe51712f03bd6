package tiles_test

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/paulmach/orb/maptile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trailmap/internal/geo"
	"trailmap/internal/tiles"
)

var green = color.RGBA{R: 20, G: 160, B: 60, A: 255}

func solid(size int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
	return img
}

// failingSource serves green tiles except for the one it is told to fail.
func failingSource(fail maptile.Tile) tiles.Source {
	return tiles.SourceFunc(func(ctx context.Context, t maptile.Tile) (image.Image, error) {
		if t == fail {
			return nil, errors.New("boom")
		}
		return solid(geo.TileSize, green), nil
	})
}

func TestLoader_OneFailureStillSettlesAfterSixteen(t *testing.T) {
	proj := geo.DefaultProjection()
	failed := maptile.New(2488, 2949, 13) // column 1, row 2
	l := tiles.NewLoader(proj, failingSource(failed))
	require.Equal(t, 16, l.Total())

	var events, signals int
	for d := range l.Fetch(context.Background()) {
		events++
		if l.Settle(d) {
			signals++
			assert.Equal(t, 16, events, "settled signal must come on the final completion")
		}
	}
	assert.Equal(t, 16, events)
	assert.Equal(t, 1, signals)
	assert.True(t, l.Done())

	var fallbacks []tiles.Descriptor
	for _, d := range l.Tiles() {
		if d.Fallback {
			fallbacks = append(fallbacks, d)
		}
	}
	require.Len(t, fallbacks, 1)
	assert.Equal(t, 1, fallbacks[0].Column)
	assert.Equal(t, 2, fallbacks[0].Row)
	assert.Error(t, fallbacks[0].Err)

	m := l.Mosaic()
	assert.Equal(t, image.Rect(0, 0, 1024, 1024), m.Bounds())
	for _, p := range []image.Point{{256, 512}, {300, 600}, {511, 767}} {
		assert.Equal(t, color.RGBA{255, 255, 255, 255}, m.RGBAAt(p.X, p.Y), "blank cell at %v", p)
	}
	assert.Equal(t, green, m.RGBAAt(0, 0))
	assert.Equal(t, green, m.RGBAAt(1023, 1023))
	assert.Equal(t, green, m.RGBAAt(512, 600))
}

func TestLoader_LoadReturnsComposedMosaic(t *testing.T) {
	var calls atomic.Int32
	src := tiles.SourceFunc(func(ctx context.Context, t maptile.Tile) (image.Image, error) {
		calls.Add(1)
		return solid(geo.TileSize, green), nil
	})
	l := tiles.NewLoader(geo.DefaultProjection(), src)
	m := l.Load(context.Background())
	assert.Equal(t, int32(16), calls.Load())
	assert.Equal(t, 16, l.Settled())
	assert.Equal(t, green, m.RGBAAt(700, 100))
}

func TestLoader_AllFailuresAreBlank(t *testing.T) {
	src := tiles.SourceFunc(func(ctx context.Context, t maptile.Tile) (image.Image, error) {
		return nil, errors.New("offline")
	})
	l := tiles.NewLoader(geo.DefaultProjection(), src)
	m := l.Load(context.Background())
	assert.True(t, l.Done())
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, m.RGBAAt(10, 10))
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, m.RGBAAt(1000, 1000))
}

func TestLoader_SettleIsRaceFree(t *testing.T) {
	l := tiles.NewLoader(geo.DefaultProjection(), failingSource(maptile.Tile{}))
	var wg sync.WaitGroup
	var signals atomic.Int32
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Settle(tiles.Descriptor{Image: tiles.Blank(geo.TileSize)}) {
				signals.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), signals.Load())
	assert.False(t, l.Settle(tiles.Descriptor{Image: tiles.Blank(geo.TileSize)}), "extra completions never signal again")
}

func TestLoader_ScalesOddSizedTiles(t *testing.T) {
	src := tiles.SourceFunc(func(ctx context.Context, t maptile.Tile) (image.Image, error) {
		return solid(512, green), nil
	})
	m := tiles.NewLoader(geo.DefaultProjection(), src).Load(context.Background())
	got := m.RGBAAt(128, 128)
	assert.InDelta(t, green.R, got.R, 2)
	assert.InDelta(t, green.G, got.G, 2)
	assert.InDelta(t, green.B, got.B, 2)
}

func TestBlank(t *testing.T) {
	b := tiles.Blank(256)
	assert.Equal(t, image.Rect(0, 0, 256, 256), b.Bounds())
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, b.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, b.RGBAAt(255, 255))
}

func defaultProj() geo.Projection { return geo.DefaultProjection() }
