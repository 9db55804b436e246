package mirage

import (
	"image"

	"github.com/mygameworld9/hytk/parallel"
	"github.com/mygameworld9/hytk/stego"
)

// Compose runs the full pipeline: cover-fit both sources onto a common
// canvas, composite them into a dual-reveal buffer and, when a payload is
// configured, embed it into the color LSBs. The inputs are only read; the
// returned buffer is freshly allocated and owned by the caller.
func Compose(surface, hidden image.Image, cfg Config, pool *parallel.Pool) *image.NRGBA {
	w, h := cfg.Width, cfg.Height
	if w <= 0 {
		w = surface.Bounds().Dx()
	}
	if h <= 0 {
		h = surface.Bounds().Dy()
	}

	a := renderCover(surface, w, h)
	b := renderCover(hidden, w, h)
	out := NewCompositor(cfg).Composite(a, b, pool)

	if len(cfg.Payload) > 0 {
		// Truncation on overflow is advisory only; Embed logs it.
		stego.Embed(out.Pix, cfg.Payload)
	}
	return out
}
