package trail

import "trailmap/internal/geo"

// Strategy turns canvas clicks into geographic points and measures the
// distance between them. The tile mosaic and the map widget both implement
// it, so the recorder does not care which one backs the canvas.
type Strategy interface {
	Locate(x, y float64) geo.GeoPoint
	Pixel(p geo.GeoPoint) geo.ScreenPoint
	Distance(a, b geo.GeoPoint) float64
}

// MosaicStrategy projects clicks on a fixed tile mosaic and measures with
// the haversine formula.
type MosaicStrategy struct {
	Projection geo.Projection
}

func (s MosaicStrategy) Locate(x, y float64) geo.GeoPoint {
	return s.Projection.PixelToGeo(x, y)
}

func (s MosaicStrategy) Pixel(p geo.GeoPoint) geo.ScreenPoint {
	return s.Projection.GeoToPixel(p)
}

func (s MosaicStrategy) Distance(a, b geo.GeoPoint) float64 {
	return geo.DistanceMeters(a, b)
}
