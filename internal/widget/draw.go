package widget

import (
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"
)

func drawInto(dst *image.RGBA, r image.Rectangle, src image.Image) {
	sb := src.Bounds()
	if sb.Dx() == r.Dx() && sb.Dy() == r.Dy() {
		draw.Draw(dst, r, src, sb.Min, draw.Src)
		return
	}
	xdraw.ApproxBiLinear.Scale(dst, r, src, sb, xdraw.Src, nil)
}
