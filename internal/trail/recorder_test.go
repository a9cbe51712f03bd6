package trail_test

import (
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/paulmach/orb/maptile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"trailmap/internal/geo"
	"trailmap/internal/tiles"
	"trailmap/internal/trail"
	"trailmap/internal/widget"
)

var (
	_ trail.Strategy = trail.MosaicStrategy{}
	_ trail.Strategy = (*widget.Map)(nil)
)

// RecorderSuite drives a recorder over the default mosaic projection.
type RecorderSuite struct {
	suite.Suite
	proj geo.Projection
	rec  *trail.Recorder
}

func (s *RecorderSuite) SetupTest() {
	s.proj = geo.DefaultProjection()
	w, h := s.proj.Size()
	s.rec = trail.NewRecorder(trail.MosaicStrategy{Projection: s.proj}, w, h, nil)
}

func (s *RecorderSuite) TestEmptyAndSinglePointHaveNoLength() {
	_, ok := s.rec.ComputeTotalLength()
	s.False(ok)
	s.Empty(s.rec.LengthText())

	s.rec.RecordClick(10, 10)
	_, ok = s.rec.ComputeTotalLength()
	s.False(ok)
	s.Empty(s.rec.LengthText())
}

func (s *RecorderSuite) TestTwoPointsEqualHaversineInMiles() {
	a := s.rec.RecordClick(0, 0)
	b := s.rec.RecordClick(256, 0)

	miles, ok := s.rec.ComputeTotalLength()
	s.Require().True(ok)
	want := geo.DistanceMeters(a.Geo, b.Geo) / 1609.34
	s.InDelta(want, miles, 1e-12)
	s.Equal(trail.FormatLength(want), s.rec.LengthText())
	s.Contains(s.rec.LengthText(), "Drawn path length: ")
	s.Contains(s.rec.LengthText(), " mi")
}

func (s *RecorderSuite) TestClickOrderResetAndRestart() {
	s.rec.RecordClick(0, 0)
	s.rec.RecordClick(256, 0)
	s.rec.RecordClick(256, 256)

	pts := s.rec.Points()
	s.Require().Len(pts, 3)
	s.Equal(geo.ScreenPoint{X: 0, Y: 0}, pts[0].Screen)
	s.Equal(geo.ScreenPoint{X: 256, Y: 0}, pts[1].Screen)
	s.Equal(geo.ScreenPoint{X: 256, Y: 256}, pts[2].Screen)
	for i, p := range pts {
		s.Equal(i, p.Index)
		s.Equal(s.proj.PixelToGeo(p.Screen.X, p.Screen.Y), p.Geo)
	}
	s.NotEmpty(s.rec.LengthText())

	s.rec.Reset()
	s.True(s.rec.Empty())
	s.Equal(0, s.rec.Len())
	s.Empty(s.rec.LengthText())

	p := s.rec.RecordClick(512, 512)
	s.Equal(0, p.Index, "a fresh path numbers from zero")
	s.Equal(1, s.rec.Len())
}

func (s *RecorderSuite) TestResetIsIdempotent() {
	s.rec.RecordClick(1, 2)
	s.rec.Reset()
	first := s.rec.Points()
	s.rec.Reset()
	s.Equal(first, s.rec.Points())
	s.True(s.rec.Empty())
	s.Empty(s.rec.LengthText())

	fresh := trail.NewRecorder(trail.MosaicStrategy{Projection: s.proj}, 1024, 1024, nil)
	fresh.Reset()
	fresh.Reset()
	s.True(fresh.Empty())
}

func (s *RecorderSuite) TestPointsIsACopy() {
	s.rec.RecordClick(5, 5)
	pts := s.rec.Points()
	pts[0].Screen.X = 999
	s.Equal(5.0, s.rec.Points()[0].Screen.X)
}

func (s *RecorderSuite) TestNoReorderingOrDedup() {
	s.rec.RecordClick(100, 100)
	s.rec.RecordClick(100, 100)
	s.rec.RecordClick(50, 50)
	pts := s.rec.Points()
	s.Require().Len(pts, 3)
	s.Equal(pts[0].Screen, pts[1].Screen)
	miles, ok := s.rec.ComputeTotalLength()
	s.True(ok)
	s.InDelta(geo.MetersToMiles(geo.DistanceMeters(pts[1].Geo, pts[2].Geo)), miles, 1e-12)
	s.Equal([]float64{0, miles}, s.rec.SegmentMiles())
}

func (s *RecorderSuite) TestOutOfCanvasClickIsRecorded() {
	p := s.rec.RecordClick(-40, 2000)
	s.Equal(s.proj.PixelToGeo(-40, 2000), p.Geo)
	s.Equal(1, s.rec.Len())
}

func (s *RecorderSuite) TestFrameWaitsForBase() {
	s.rec.RecordClick(300, 300)
	s.Nil(s.rec.Frame())
	s.False(s.rec.HasBase())

	s.rec.SetBase(tiles.Blank(1024))
	s.Require().NotNil(s.rec.Frame())
	s.True(s.rec.HasBase())
	assertPathColor(s.T(), s.rec.Frame().RGBAAt(300, 300))
}

func (s *RecorderSuite) TestReferenceMiles() {
	a := s.proj.PixelToGeo(0, 0)
	b := s.proj.PixelToGeo(1024, 0)
	s.rec.SetReference([][]geo.GeoPoint{{a, b}})
	s.InDelta(geo.MetersToMiles(geo.DistanceMeters(a, b)), s.rec.ReferenceMiles(), 1e-12)
}

func TestRecorderSuite(t *testing.T) {
	suite.Run(t, new(RecorderSuite))
}

func TestRecorder_WidgetStrategy(t *testing.T) {
	m := widget.New(tiles.SourceFunc(func(ctx context.Context, tl maptile.Tile) (image.Image, error) {
		return tiles.Blank(256), nil
	}))
	w, h := m.Size()
	rec := trail.NewRecorder(m, w, h, nil)
	a := rec.RecordClick(0, 0)
	b := rec.RecordClick(256, 256)

	proj := geo.DefaultProjection()
	assert.InDelta(t, proj.PixelToGeo(0, 0).Lat, a.Geo.Lat, 1e-9)

	miles, ok := rec.ComputeTotalLength()
	require.True(t, ok)
	assert.InDelta(t, geo.MetersToMiles(geo.DistanceMeters(a.Geo, b.Geo)), miles, 1e-9)

	rec.SetBase(m.Render(context.Background()))
	require.NotNil(t, rec.Frame())
}

func assertPathColor(t *testing.T, got color.RGBA) {
	t.Helper()
	assert.InDelta(t, 0xe7, got.R, 3)
	assert.InDelta(t, 0x4c, got.G, 3)
	assert.InDelta(t, 0x3c, got.B, 3)
}
