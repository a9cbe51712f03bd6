package geo_test

import (
	"math"
	"testing"

	"github.com/paulmach/orb/maptile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trailmap/internal/geo"
)

func TestDistanceMeters_SamePointIsZero(t *testing.T) {
	for _, p := range []geo.GeoPoint{
		{Lat: 0, Lon: 0},
		{Lat: 44.87, Lon: -70.62},
		{Lat: -89.9, Lon: 179.9},
	} {
		assert.Equal(t, 0.0, geo.DistanceMeters(p, p), "distance to self: %v", p)
	}
}

func TestDistanceMeters_Symmetric(t *testing.T) {
	pairs := [][2]geo.GeoPoint{
		{{Lat: 44.1, Lon: -71.3}, {Lat: 44.2, Lon: -71.1}},
		{{Lat: -33.9, Lon: 151.2}, {Lat: 51.5, Lon: -0.12}},
		{{Lat: 0, Lon: 179.5}, {Lat: 0, Lon: -179.5}},
	}
	for _, pr := range pairs {
		ab := geo.DistanceMeters(pr[0], pr[1])
		ba := geo.DistanceMeters(pr[1], pr[0])
		assert.Equal(t, ab, ba)
		assert.Greater(t, ab, 0.0)
	}
}

func TestDistanceMeters_OneDegreeAtEquator(t *testing.T) {
	d := geo.DistanceMeters(geo.GeoPoint{Lat: 0, Lon: 0}, geo.GeoPoint{Lat: 0, Lon: 1})
	assert.InDelta(t, geo.EarthRadiusMeters*math.Pi/180, d, 1e-6)
	assert.InDelta(t, 111320, d, 150, "one degree of longitude at the equator")
}

func TestLineMeters(t *testing.T) {
	a := geo.GeoPoint{Lat: 0, Lon: 0}
	b := geo.GeoPoint{Lat: 0, Lon: 1}
	c := geo.GeoPoint{Lat: 1, Lon: 1}
	want := geo.DistanceMeters(a, b) + geo.DistanceMeters(b, c)
	assert.InDelta(t, want, geo.LineMeters([]geo.GeoPoint{a, b, c}), 1e-9)
	assert.Equal(t, 0.0, geo.LineMeters(nil))
	assert.Equal(t, 0.0, geo.LineMeters([]geo.GeoPoint{a}))
}

func TestMetersToMiles(t *testing.T) {
	assert.InDelta(t, 1.0, geo.MetersToMiles(1609.34), 1e-12)
	assert.InDelta(t, 2.5, geo.MetersToMiles(2.5*1609.34), 1e-12)
}

func TestPixelToGeo_AnchorTopLeft(t *testing.T) {
	p := geo.DefaultProjection()
	got := p.PixelToGeo(0, 0)

	n := math.Pow(2, 13)
	wantLon := 2487/n*360 - 180
	wantLat := math.Atan(math.Sinh(math.Pi*(1-2*2947/n))) * 180 / math.Pi
	assert.InDelta(t, wantLon, got.Lon, 1e-9)
	assert.InDelta(t, wantLat, got.Lat, 1e-9)

	b := maptile.New(2487, 2947, 13).Bound()
	assert.InDelta(t, b.Left(), got.Lon, 1e-9, "orb tile west edge")
	assert.InDelta(t, b.Top(), got.Lat, 1e-9, "orb tile north edge")
}

func TestPixelToGeo_TileCorners(t *testing.T) {
	p := geo.DefaultProjection()
	// one tile right and down lands on the next tile's north-west corner
	got := p.PixelToGeo(256, 256)
	b := maptile.New(2488, 2948, 13).Bound()
	assert.InDelta(t, b.Left(), got.Lon, 1e-9)
	assert.InDelta(t, b.Top(), got.Lat, 1e-9)

	// moving down the canvas moves south, moving right moves east
	south := p.PixelToGeo(0, 512)
	east := p.PixelToGeo(512, 0)
	assert.Less(t, south.Lat, got.Lat)
	assert.Greater(t, east.Lon, p.PixelToGeo(0, 0).Lon)
}

func TestPixelToGeo_OutOfWindowIsPermissive(t *testing.T) {
	p := geo.DefaultProjection()
	outside := p.PixelToGeo(-5000, 99999)
	assert.False(t, math.IsNaN(outside.Lat))
	assert.False(t, math.IsNaN(outside.Lon))
	assert.Less(t, outside.Lon, p.PixelToGeo(0, 0).Lon)
}

func TestGeoToPixel_RoundTrip(t *testing.T) {
	p := geo.DefaultProjection()
	for _, sp := range []geo.ScreenPoint{{0, 0}, {256, 0}, {256, 256}, {1023, 17}, {511.5, 900.25}} {
		back := p.GeoToPixel(p.PixelToGeo(sp.X, sp.Y))
		assert.InDelta(t, sp.X, back.X, 1e-6)
		assert.InDelta(t, sp.Y, back.Y, 1e-6)
	}
}

func TestProjection_SizeTilesCenter(t *testing.T) {
	p := geo.DefaultProjection()
	w, h := p.Size()
	assert.Equal(t, 1024, w)
	assert.Equal(t, 1024, h)

	tl := p.Tiles()
	require.Len(t, tl, 16)
	assert.Equal(t, maptile.New(2487, 2947, 13), tl[0])
	assert.Equal(t, maptile.New(2487, 2948, 13), tl[1], "column-major order")
	assert.Equal(t, maptile.New(2490, 2950, 13), tl[15])

	c := p.Center()
	b := maptile.New(2489, 2949, 13).Bound()
	assert.InDelta(t, b.Left(), c.Lon, 1e-9)
	assert.InDelta(t, b.Top(), c.Lat, 1e-9)
}

func TestProjection_Validate(t *testing.T) {
	require.NoError(t, geo.DefaultProjection().Validate())

	bad := geo.DefaultProjection()
	bad.Cols = 0
	assert.Error(t, bad.Validate())

	bad = geo.DefaultProjection()
	bad.XStart = 8190
	assert.Error(t, bad.Validate())

	bad = geo.DefaultProjection()
	bad.TileSize = -1
	assert.Error(t, bad.Validate())
}

func TestGeoPoint_Valid(t *testing.T) {
	assert.True(t, geo.GeoPoint{Lat: 90, Lon: -180}.Valid())
	assert.False(t, geo.GeoPoint{Lat: 91, Lon: 0}.Valid())
	assert.False(t, geo.GeoPoint{Lat: 0, Lon: 180.5}.Valid())
}
