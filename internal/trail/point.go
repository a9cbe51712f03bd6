package trail

import "trailmap/internal/geo"

// PathPoint is one user click: where it landed on the canvas and the
// geographic point it maps to. Index is its position in click order.
type PathPoint struct {
	Index  int
	Screen geo.ScreenPoint
	Geo    geo.GeoPoint
}

func geoPoints(pts []PathPoint) []geo.GeoPoint {
	out := make([]geo.GeoPoint, len(pts))
	for i, p := range pts {
		out[i] = p.Geo
	}
	return out
}
