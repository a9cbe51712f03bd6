package geo

import "math"

const (
	// EarthRadiusMeters is the sphere radius used for great-circle distances.
	EarthRadiusMeters = 6371000.0
	// MetersPerMile converts path lengths into the displayed unit.
	MetersPerMile = 1609.34
)

// DistanceMeters returns the haversine great-circle distance between a and b.
func DistanceMeters(a, b GeoPoint) float64 {
	φ1 := toRad(a.Lat)
	φ2 := toRad(b.Lat)
	Δφ := toRad(b.Lat - a.Lat)
	Δλ := toRad(b.Lon - a.Lon)

	h := math.Sin(Δφ/2)*math.Sin(Δφ/2) +
		math.Cos(φ1)*math.Cos(φ2)*
			math.Sin(Δλ/2)*math.Sin(Δλ/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusMeters * c
}

// LineMeters sums DistanceMeters over consecutive points.
func LineMeters(pts []GeoPoint) float64 {
	total := 0.0
	for i := 1; i < len(pts); i++ {
		total += DistanceMeters(pts[i-1], pts[i])
	}
	return total
}

// MetersToMiles converts meters to statute miles.
func MetersToMiles(m float64) float64 {
	return m / MetersPerMile
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

func toDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}
