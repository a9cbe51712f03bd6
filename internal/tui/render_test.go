package tui

import (
	"image"
	"image/color"
	"math"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestFit(t *testing.T) {
	w, h := fit(1024, 1024, 99, 80)
	assert.Equal(t, 80, w)
	assert.Equal(t, 80, h)

	w, h = fit(1024, 512, 60, 80)
	assert.Equal(t, 60, w)
	assert.Equal(t, 30, h)

	w, h = fit(0, 1024, 10, 10)
	assert.Zero(t, w)
	assert.Zero(t, h)
}

func TestHexColor(t *testing.T) {
	assert.Equal(t, lipgloss.Color("#e74c3c"), hexColor(color.RGBA{R: 0xe7, G: 0x4c, B: 0x3c, A: 0xff}))
	assert.Equal(t, lipgloss.Color("#ffffff"), hexColor(color.White))
}

func TestRenderCanvas(t *testing.T) {
	frame := image.NewRGBA(image.Rect(0, 0, 3, 4))
	out := renderCanvas(frame, 4, 2)
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 2)
	for _, l := range lines {
		assert.Equal(t, 3, strings.Count(l, "▀"))
	}
}

func TestBrailleBuf(t *testing.T) {
	b := newBrailleBuf(2, 1)
	b.setPixel(0, 0)
	b.setPixel(3, 3)
	b.setPixel(-1, 0)
	b.setPixel(4, 0)
	assert.Equal(t, []string{"⠁⢀"}, b.toLines())

	b = newBrailleBuf(3, 1)
	b.polyline([][2]int{{0, 0}, {5, 0}})
	assert.Equal(t, []string{"⠉⠉⠉"}, b.toLines())

	b = newBrailleBuf(1, 1)
	b.dot(0, 0)
	assert.Equal(t, []string{"⠛"}, b.toLines())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 3))
	assert.Equal(t, "ab…", truncate("abcd", 3))
	assert.Equal(t, "…", truncate("abcd", 1))
	assert.Equal(t, "abcd", truncate("abcd", 0))
}

func TestPlottable(t *testing.T) {
	assert.True(t, plottable(0))
	assert.True(t, plottable(-1.24e7))
	assert.False(t, plottable(math.NaN()))
	assert.False(t, plottable(math.Inf(-1)))
	assert.False(t, plottable(1e12))
}
