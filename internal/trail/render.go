package trail

import (
	"image"
	"math"

	"github.com/fogleman/gg"
	xdraw "golang.org/x/image/draw"

	"trailmap/internal/geo"
)

// Style controls how the overlay is drawn. Sizes are in canvas pixels and
// scale with the frame.
type Style struct {
	PathColor      string
	LineWidth      float64
	MarkerRadius   float64
	ReferenceColor string
	ReferenceWidth float64
}

func DefaultStyle() Style {
	return Style{
		PathColor:      "#e74c3c",
		LineWidth:      3,
		MarkerRadius:   4,
		ReferenceColor: "#2563eb",
		ReferenceWidth: 2,
	}
}

// Renderer draws base imagery, reference lines and the path, in that order.
type Renderer struct {
	style Style
}

func NewRenderer(style Style) *Renderer {
	return &Renderer{style: style}
}

// Draw renders into a w x h frame. canvas is the pixel space the base image
// and all points live in; everything is scaled from it to the frame.
func (r *Renderer) Draw(w, h int, canvas image.Rectangle, base image.Image, reference [][]geo.ScreenPoint, path []geo.ScreenPoint) *image.RGBA {
	frame := image.NewRGBA(image.Rect(0, 0, w, h))
	if base != nil {
		xdraw.ApproxBiLinear.Scale(frame, frame.Bounds(), base, base.Bounds(), xdraw.Src, nil)
	}
	if canvas.Dx() <= 0 || canvas.Dy() <= 0 {
		return frame
	}
	sx := float64(w) / float64(canvas.Dx())
	sy := float64(h) / float64(canvas.Dy())
	s := math.Min(sx, sy)
	at := func(p geo.ScreenPoint) (float64, float64) {
		return (p.X - float64(canvas.Min.X)) * sx, (p.Y - float64(canvas.Min.Y)) * sy
	}

	dc := gg.NewContextForRGBA(frame)
	dc.SetLineCap(gg.LineCapRound)
	dc.SetLineJoin(gg.LineJoinRound)

	if len(reference) > 0 {
		dc.SetHexColor(r.style.ReferenceColor)
		dc.SetLineWidth(math.Max(1, r.style.ReferenceWidth*s))
		for _, line := range reference {
			if len(line) < 2 {
				continue
			}
			dc.MoveTo(at(line[0]))
			for _, p := range line[1:] {
				dc.LineTo(at(p))
			}
			dc.Stroke()
		}
	}

	if len(path) == 0 {
		return frame
	}
	dc.SetHexColor(r.style.PathColor)
	dc.SetLineWidth(math.Max(1, r.style.LineWidth*s))
	dc.MoveTo(at(path[0]))
	for _, p := range path[1:] {
		dc.LineTo(at(p))
	}
	dc.Stroke()

	radius := math.Max(1, r.style.MarkerRadius*s)
	for _, p := range path {
		x, y := at(p)
		dc.DrawCircle(x, y, radius)
		dc.Fill()
	}
	return frame
}
