package tui

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"trailmap/internal/geo"
	"trailmap/internal/geom"
)

const (
	sidebarWidth = 28
	headerHeight = 1
	footerHeight = 2
)

// layout is where the map sits on screen. The frame is drawn with upper
// half blocks, so one cell shows one pixel across and two pixels down.
type layout struct {
	mapX, mapY int // map area origin in cells
	mapW, mapH int // map area size in cells
	imgW, imgH int // displayed frame size in pixels
}

func (m Model) layout() layout {
	sw, gap := 0, 0
	if m.showSidebar {
		sw, gap = sidebarWidth, 1
	}
	contentHeight := max(4, m.height-headerHeight-footerHeight)
	contentWidth := max(10, m.width)
	lay := layout{
		mapX: sw + gap,
		mapY: headerHeight,
		mapW: max(10, contentWidth-sw-1),
		mapH: contentHeight,
	}
	c := m.rec.Canvas()
	lay.imgW, lay.imgH = fit(c.Dx(), c.Dy(), lay.mapW, lay.mapH*2)
	lay.imgH -= lay.imgH % 2
	return lay
}

// fit scales a cw x ch canvas to the largest size inside aw x ah keeping
// its aspect ratio.
func fit(cw, ch, aw, ah int) (int, int) {
	if cw <= 0 || ch <= 0 || aw <= 0 || ah <= 0 {
		return 0, 0
	}
	s := math.Min(float64(aw)/float64(cw), float64(ah)/float64(ch))
	return max(1, int(float64(cw)*s)), max(2, int(float64(ch)*s))
}

// cellToCanvas converts a screen cell to canvas pixels through the cell's
// center. Cells in the map area but past the displayed image still map,
// landing outside the canvas.
func (lay layout) cellToCanvas(cx, cy int, canvas image.Rectangle) (float64, float64, bool) {
	x, y := cx-lay.mapX, cy-lay.mapY
	if x < 0 || y < 0 || x >= lay.mapW || y >= lay.mapH || lay.imgW == 0 || lay.imgH == 0 {
		return 0, 0, false
	}
	sx := float64(canvas.Dx()) / float64(lay.imgW)
	sy := float64(canvas.Dy()) / float64(lay.imgH)
	return (float64(x) + 0.5) * sx, (float64(y)*2 + 1) * sy, true
}

// renderCanvas draws the frame with ▀ glyphs: foreground is the upper
// pixel, background the lower one.
func renderCanvas(frame *image.RGBA, w, h int) string {
	b := frame.Bounds()
	lines := make([]string, h)
	for cy := 0; cy < h; cy++ {
		var sb strings.Builder
		top, bottom := b.Min.Y+cy*2, b.Min.Y+cy*2+1
		for x := 0; x < w; x++ {
			if x >= b.Dx() || bottom >= b.Max.Y {
				sb.WriteByte(' ')
				continue
			}
			st := lipgloss.NewStyle().
				Foreground(hexColor(frame.At(b.Min.X+x, top))).
				Background(hexColor(frame.At(b.Min.X+x, bottom)))
			sb.WriteString(st.Render("▀"))
		}
		lines[cy] = sb.String()
	}
	return strings.Join(lines, "\n")
}

// renderMono draws the reference lines and the path in braille, without
// imagery.
func (m Model) renderMono(w, h int) string {
	br := newBrailleBuf(w, h)
	canvas := m.rec.Canvas()
	mw, mh := fit(canvas.Dx(), canvas.Dy(), w*2, h*4)
	if mw == 0 {
		return strings.Join(br.toLines(), "\n")
	}
	sx := float64(mw) / float64(canvas.Dx())
	sy := float64(mh) / float64(canvas.Dy())
	micro := func(p geo.ScreenPoint) ([2]int, bool) {
		x, y := p.X*sx, p.Y*sy
		if !plottable(x) || !plottable(y) {
			return [2]int{}, false
		}
		return [2]int{int(x), int(y)}, true
	}

	// a point that cannot be plotted breaks its line in two
	stroke := func(pts []geo.ScreenPoint) [][2]int {
		var run, all [][2]int
		for _, p := range pts {
			mp, ok := micro(p)
			if !ok {
				br.polyline(run)
				run = nil
				continue
			}
			run = append(run, mp)
			all = append(all, mp)
		}
		br.polyline(run)
		return all
	}

	for _, line := range m.rec.Reference() {
		pts := make([]geo.ScreenPoint, len(line))
		for i, g := range line {
			pts[i] = m.strategy.Pixel(g)
		}
		stroke(pts)
	}
	var path []geo.ScreenPoint
	for _, p := range m.rec.Points() {
		path = append(path, p.Screen)
	}
	for _, p := range stroke(path) {
		br.dot(p[0], p[1])
	}
	return strings.Join(br.toLines(), "\n")
}

// plottable bounds a micro coordinate so int conversion and line walking
// stay finite.
func plottable(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && math.Abs(v) < 1<<24
}

func (m Model) renderMap(lay layout) string {
	if m.mono {
		return m.renderMono(lay.mapW, lay.mapH)
	}
	frame := m.rec.Frame()
	if m.loading || frame == nil {
		msg := m.spin.View() + " " + m.status
		return lipgloss.Place(lay.mapW, lay.mapH, lipgloss.Center, lipgloss.Center, msg)
	}
	return renderCanvas(frame, lay.mapW, lay.imgH/2)
}

// inspect summarizes the path for the popup.
func (m Model) inspect() string {
	if m.rec.Empty() {
		return "no path drawn"
	}
	length := m.rec.LengthText()
	if length == "" {
		length = "Drawn path length: n/a"
	}
	wkt := truncate(geom.PathWKT(m.rec.GeoPoints()), 200)
	meta := []string{
		fmt.Sprintf("points: %d", m.rec.Len()),
		length,
		fmt.Sprintf("start: %s", m.rec.Points()[0].Geo),
		fmt.Sprintf("reference: %s (%.2f mi)", refName(m.selPath), m.rec.ReferenceMiles()),
		"wkt: " + wkt,
	}
	return strings.Join(meta, "\n")
}

func refName(p string) string {
	if p == "" {
		return "none"
	}
	return p
}

func hexColor(c color.Color) lipgloss.Color {
	r, g, b, _ := c.RGBA()
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8))
}
