// Package trail records the user's clicked path, redraws its overlay on
// every change and reports its real-world length.
package trail

import (
	"fmt"
	"image"
	"log/slog"

	"trailmap/internal/geo"
	"trailmap/internal/metrics"
)

// Recorder owns the path for one drawing session. It is not safe for
// concurrent use; drive it from the UI event loop.
type Recorder struct {
	strategy Strategy
	renderer *Renderer
	canvas   image.Rectangle
	frameW   int
	frameH   int

	base      image.Image
	reference [][]geo.GeoPoint

	points     []PathPoint
	frame      *image.RGBA
	lengthText string
}

// NewRecorder starts an empty path on a canvasW x canvasH canvas. The frame
// defaults to the canvas size.
func NewRecorder(s Strategy, canvasW, canvasH int, r *Renderer) *Recorder {
	if r == nil {
		r = NewRenderer(DefaultStyle())
	}
	return &Recorder{
		strategy: s,
		renderer: r,
		canvas:   image.Rect(0, 0, canvasW, canvasH),
		frameW:   canvasW,
		frameH:   canvasH,
	}
}

// RecordClick appends the point under canvas pixel (x, y), redraws and
// recomputes the length.
func (r *Recorder) RecordClick(x, y float64) PathPoint {
	p := PathPoint{
		Index:  len(r.points),
		Screen: geo.ScreenPoint{X: x, Y: y},
		Geo:    r.strategy.Locate(x, y),
	}
	r.points = append(r.points, p)
	metrics.PathClicks.Inc()
	metrics.PathPoints.Set(float64(len(r.points)))
	slog.Debug("path point", "index", p.Index, "x", x, "y", y, "lat", p.Geo.Lat, "lon", p.Geo.Lon)

	r.redraw()
	r.updateLength()
	return p
}

// Reset empties the path, removes the overlay and clears the length text.
// Resetting an empty path is a no-op.
func (r *Recorder) Reset() {
	r.points = nil
	r.lengthText = ""
	metrics.PathResets.Inc()
	metrics.PathPoints.Set(0)
	r.redraw()
}

// ComputeTotalLength returns the path length in miles, or ok=false when the
// path has fewer than two points.
func (r *Recorder) ComputeTotalLength() (miles float64, ok bool) {
	if len(r.points) < 2 {
		return 0, false
	}
	return geo.MetersToMiles(r.TotalMeters()), true
}

// TotalMeters sums the strategy's distance over consecutive points.
func (r *Recorder) TotalMeters() float64 {
	total := 0.0
	for i := 1; i < len(r.points); i++ {
		total += r.strategy.Distance(r.points[i-1].Geo, r.points[i].Geo)
	}
	return total
}

// SegmentMiles returns the length of each consecutive segment.
func (r *Recorder) SegmentMiles() []float64 {
	if len(r.points) < 2 {
		return nil
	}
	out := make([]float64, 0, len(r.points)-1)
	for i := 1; i < len(r.points); i++ {
		out = append(out, geo.MetersToMiles(r.strategy.Distance(r.points[i-1].Geo, r.points[i].Geo)))
	}
	return out
}

func (r *Recorder) updateLength() {
	miles, ok := r.ComputeTotalLength()
	if !ok {
		r.lengthText = ""
		return
	}
	r.lengthText = FormatLength(miles)
}

// FormatLength renders a length for the output region.
func FormatLength(miles float64) string {
	return fmt.Sprintf("Drawn path length: %.2f mi", miles)
}

// LengthText is the current output text, empty below two points.
func (r *Recorder) LengthText() string { return r.lengthText }

// Len is the number of recorded points.
func (r *Recorder) Len() int { return len(r.points) }

// Empty reports whether the path has no points.
func (r *Recorder) Empty() bool { return len(r.points) == 0 }

// Points returns a copy of the path in click order.
func (r *Recorder) Points() []PathPoint {
	out := make([]PathPoint, len(r.points))
	copy(out, r.points)
	return out
}

// GeoPoints returns the path's geographic points in click order.
func (r *Recorder) GeoPoints() []geo.GeoPoint { return geoPoints(r.points) }

// SetBase installs the base imagery and performs the first draw. Points
// recorded before the base arrived are drawn now.
func (r *Recorder) SetBase(img image.Image) {
	r.base = img
	r.redraw()
}

// HasBase reports whether the base imagery has arrived.
func (r *Recorder) HasBase() bool { return r.base != nil }

// SetReference replaces the reference lines drawn beneath the path.
func (r *Recorder) SetReference(lines [][]geo.GeoPoint) {
	r.reference = lines
	r.redraw()
}

// Reference returns the reference lines drawn beneath the path.
func (r *Recorder) Reference() [][]geo.GeoPoint { return r.reference }

// ReferenceMiles is the combined length of the reference lines.
func (r *Recorder) ReferenceMiles() float64 {
	total := 0.0
	for _, line := range r.reference {
		for i := 1; i < len(line); i++ {
			total += r.strategy.Distance(line[i-1], line[i])
		}
	}
	return geo.MetersToMiles(total)
}

// SetFrameSize changes the size of the rendered frame and redraws.
func (r *Recorder) SetFrameSize(w, h int) {
	if w <= 0 || h <= 0 || (w == r.frameW && h == r.frameH) {
		return
	}
	r.frameW, r.frameH = w, h
	r.redraw()
}

// Canvas is the pixel space clicks are expressed in.
func (r *Recorder) Canvas() image.Rectangle { return r.canvas }

// Frame is the last drawn frame, nil until the base imagery arrives.
func (r *Recorder) Frame() *image.RGBA { return r.frame }

func (r *Recorder) redraw() {
	if r.base == nil {
		return
	}
	path := make([]geo.ScreenPoint, len(r.points))
	for i, p := range r.points {
		path[i] = p.Screen
	}
	var ref [][]geo.ScreenPoint
	for _, line := range r.reference {
		sl := make([]geo.ScreenPoint, len(line))
		for i, g := range line {
			sl[i] = r.strategy.Pixel(g)
		}
		ref = append(ref, sl)
	}
	r.frame = r.renderer.Draw(r.frameW, r.frameH, r.canvas, r.base, ref, path)
}
