package geo

import (
	"fmt"
	"math"

	"github.com/paulmach/orb/maptile"
)

const (
	// TileSize is the edge length of a slippy-map raster tile in pixels.
	TileSize = 256

	DefaultZoom   = 13
	DefaultXStart = 2487
	DefaultYStart = 2947
	DefaultCols   = 4
	DefaultRows   = 4
)

// Projection places a Cols x Rows block of slippy-map tiles, anchored at
// tile (XStart, YStart), onto one canvas and converts between canvas pixels
// and geographic coordinates.
type Projection struct {
	Zoom     int
	XStart   int
	YStart   int
	Cols     int
	Rows     int
	TileSize int
}

// DefaultProjection is the 4x4 zoom-13 window the lesson map uses.
func DefaultProjection() Projection {
	return Projection{
		Zoom:     DefaultZoom,
		XStart:   DefaultXStart,
		YStart:   DefaultYStart,
		Cols:     DefaultCols,
		Rows:     DefaultRows,
		TileSize: TileSize,
	}
}

// Validate reports configuration that would make the projection meaningless.
func (p Projection) Validate() error {
	if p.Zoom < 0 || p.Zoom > 22 {
		return fmt.Errorf("projection: zoom must be 0-22, got %d", p.Zoom)
	}
	if p.Cols <= 0 || p.Rows <= 0 {
		return fmt.Errorf("projection: grid must be positive, got %dx%d", p.Cols, p.Rows)
	}
	if p.TileSize <= 0 {
		return fmt.Errorf("projection: tile size must be positive, got %d", p.TileSize)
	}
	n := 1 << p.Zoom
	if p.XStart < 0 || p.YStart < 0 || p.XStart+p.Cols > n || p.YStart+p.Rows > n {
		return fmt.Errorf("projection: tile window (%d,%d)+%dx%d outside zoom %d grid", p.XStart, p.YStart, p.Cols, p.Rows, p.Zoom)
	}
	return nil
}

// Size returns the canvas size in pixels.
func (p Projection) Size() (w, h int) {
	return p.TileSize * p.Cols, p.TileSize * p.Rows
}

// worldSize is the pixel width of the whole world at p.Zoom.
func (p Projection) worldSize() float64 {
	return float64(p.TileSize) * math.Pow(2, float64(p.Zoom))
}

// PixelToGeo converts canvas pixel coordinates to a geographic point.
// Pixels outside the canvas are projected all the same.
func (p Projection) PixelToGeo(x, y float64) GeoPoint {
	globalX := float64(p.XStart*p.TileSize) + x
	globalY := float64(p.YStart*p.TileSize) + y
	return WorldToGeo(globalX, globalY, p.worldSize())
}

// GeoToPixel is the inverse of PixelToGeo.
func (p Projection) GeoToPixel(g GeoPoint) ScreenPoint {
	wx, wy := GeoToWorld(g, p.worldSize())
	return ScreenPoint{
		X: wx - float64(p.XStart*p.TileSize),
		Y: wy - float64(p.YStart*p.TileSize),
	}
}

// Center returns the geographic point at the middle of the canvas.
func (p Projection) Center() GeoPoint {
	w, h := p.Size()
	return p.PixelToGeo(float64(w)/2, float64(h)/2)
}

// Tiles lists the window's tiles column by column.
func (p Projection) Tiles() []maptile.Tile {
	out := make([]maptile.Tile, 0, p.Cols*p.Rows)
	for i := 0; i < p.Cols; i++ {
		for j := 0; j < p.Rows; j++ {
			out = append(out, maptile.New(uint32(p.XStart+i), uint32(p.YStart+j), maptile.Zoom(p.Zoom)))
		}
	}
	return out
}

// WorldToGeo converts Web Mercator world pixels to a geographic point for a
// world that is worldSize pixels wide.
func WorldToGeo(wx, wy, worldSize float64) GeoPoint {
	lon := (wx/worldSize)*360 - 180
	latRad := math.Atan(math.Sinh(math.Pi * (1 - 2*wy/worldSize)))
	return GeoPoint{Lat: toDeg(latRad), Lon: lon}
}

// GeoToWorld converts a geographic point to Web Mercator world pixels.
func GeoToWorld(g GeoPoint, worldSize float64) (float64, float64) {
	latRad := toRad(g.Lat)
	wx := worldSize * (g.Lon + 180) / 360
	wy := worldSize * (1 - math.Log(math.Tan(latRad)+1/math.Cos(latRad))/math.Pi) / 2
	return wx, wy
}
