package tiles

import (
	"image"
	"image/draw"
)

// Blank returns a solid white size x size tile.
func Blank(size int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	return img
}
