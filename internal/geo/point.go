package geo

import "fmt"

// GeoPoint is a latitude/longitude pair in degrees.
type GeoPoint struct {
	Lat float64
	Lon float64
}

// Valid reports whether p lies within [-90,90] x [-180,180].
// Nothing in the drawing flow rejects invalid points; this is for display.
func (p GeoPoint) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

func (p GeoPoint) String() string {
	return fmt.Sprintf("lat=%.6f lon=%.6f", p.Lat, p.Lon)
}

// ScreenPoint is a position in canvas pixel space.
type ScreenPoint struct {
	X float64
	Y float64
}
