package mirage

import (
	"image"

	"golang.org/x/image/draw"
)

// renderCover scales src onto a fresh w×h canvas at its cover-fit
// placement, cropping the overflow. CatmullRom costs more than the
// box kernels but the result feeds per-pixel math, so resampling
// quality shows.
func renderCover(src image.Image, w, h int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))

	b := src.Bounds()
	p := Cover(b.Dx(), b.Dy(), w, h)
	dr := image.Rect(p.OffsetX, p.OffsetY, p.OffsetX+p.Width, p.OffsetY+p.Height)
	draw.CatmullRom.Scale(dst, dr, src, b, draw.Src, nil)

	return dst
}
