package mirage

import (
	"image"
	"log/slog"

	"github.com/mygameworld9/hytk/parallel"
)

// Compositor derives one output pixel (color plus alpha) from a surface
// pixel and a hidden pixel. Against a light background the buffer reads
// as the surface image, against a dark one as the hidden image: alpha is
// 255-(A'-B'), so the remapped hidden value B' must never exceed the
// remapped surface value A'.
type Compositor struct {
	cfg      Config
	strength float64
	pixel    pixelFunc
}

// pixelFunc maps six dithered channel samples (surface RGB, hidden RGB)
// to the four output bytes.
type pixelFunc func(ar, ag, ab, br, bg, bb float64) (r, g, b, a uint8)

// NewCompositor selects the per-pixel strategy once, from Config. An
// inverted remap range (SurfaceMin below HiddenMax) is permitted and only
// produces visually poor output, so it is logged rather than rejected.
func NewCompositor(cfg Config) *Compositor {
	if cfg.SurfaceMin < cfg.HiddenMax {
		slog.Warn("surface-min is below hidden-max, output will look poor",
			"surfaceMin", cfg.SurfaceMin, "hiddenMax", cfg.HiddenMax)
	}

	c := &Compositor{cfg: cfg, strength: cfg.Dithering * 10}
	if cfg.Grayscale {
		c.pixel = c.grayPixel
	} else {
		c.pixel = c.colorPixel
	}
	return c
}

// Composite produces the dual-reveal buffer from two inputs of identical
// dimensions. Pixels are independent, so rows are fanned out on pool when
// one is given; pool == nil runs serially.
func (c *Compositor) Composite(surface, hidden *image.NRGBA, pool *parallel.Pool) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, surface.Rect.Dx(), surface.Rect.Dy()))

	if pool == nil {
		for y := range out.Rect.Dy() {
			c.compositeRow(surface, hidden, out, y)
		}
		return out
	}

	for y := range out.Rect.Dy() {
		pool.Do(func() { c.compositeRow(surface, hidden, out, y) })
	}
	pool.Wait()
	return out
}

func (c *Compositor) compositeRow(surface, hidden, out *image.NRGBA, y int) {
	var noise Noise
	if c.strength > 0 {
		// Row-seeded streams keep dithered output independent of row
		// scheduling for a fixed Config.Seed.
		noise = NewNoise(c.cfg.Seed, uint64(y))
	}

	so := surface.PixOffset(surface.Rect.Min.X, surface.Rect.Min.Y+y)
	ho := hidden.PixOffset(hidden.Rect.Min.X, hidden.Rect.Min.Y+y)
	oo := out.PixOffset(0, y)

	for x := range out.Rect.Dx() {
		sp := surface.Pix[so+x*4 : so+x*4+3]
		hp := hidden.Pix[ho+x*4 : ho+x*4+3]
		ar, ag, ab := float64(sp[0]), float64(sp[1]), float64(sp[2])
		br, bg, bb := float64(hp[0]), float64(hp[1]), float64(hp[2])

		if noise != nil {
			// One offset per pixel, applied to all six samples. It may
			// push a sample outside [0,255]; the remap clamp catches it.
			n := (noise.Uniform() - 0.5) * c.strength
			ar += n
			ag += n
			ab += n
			br += n
			bg += n
			bb += n
		}

		r, g, b, a := c.pixel(ar, ag, ab, br, bg, bb)
		op := out.Pix[oo+x*4 : oo+x*4+4 : oo+x*4+4]
		op[0], op[1], op[2], op[3] = r, g, b, a
	}
}

// remapSurface lifts v onto [SurfaceMin, 255] so the surface stays legible
// against light backgrounds; remapHidden squeezes v onto [0, HiddenMax] so
// the hidden image stays legible against dark ones.
func (c *Compositor) remapSurface(v float64) float64 {
	return clamp255(v*float64(255-c.cfg.SurfaceMin)/255 + float64(c.cfg.SurfaceMin))
}

func (c *Compositor) remapHidden(v float64) float64 {
	return clamp255(v * float64(c.cfg.HiddenMax) / 255)
}

func (c *Compositor) grayPixel(ar, ag, ab, br, bg, bb float64) (uint8, uint8, uint8, uint8) {
	la := c.remapSurface(luma(ar, ag, ab))
	lb := c.remapHidden(luma(br, bg, bb))
	if lb > la {
		lb = la // dominance clamp, keeps alpha within [0,255]
	}

	alpha := 255 - (la - lb)
	var gray float64
	if alpha > 0 {
		gray = lb * 255 / alpha
	}
	return uint8(gray), uint8(gray), uint8(gray), uint8(alpha)
}

func (c *Compositor) colorPixel(ar, ag, ab, br, bg, bb float64) (uint8, uint8, uint8, uint8) {
	ar, ag, ab = c.remapSurface(ar), c.remapSurface(ag), c.remapSurface(ab)
	br, bg, bb = c.remapHidden(br), c.remapHidden(bg), c.remapHidden(bb)

	// Per-channel dominance clamp.
	br = min(br, ar)
	bg = min(bg, ag)
	bb = min(bb, ab)

	// One alpha candidate per channel; the maximum wins. No channel can
	// end up under-covered, at the cost of slight cross-channel ghosting
	// where a channel's true required alpha was lower.
	alpha := max(255-(ar-br), 255-(ag-bg), 255-(ab-bb))

	var r, g, b float64
	if alpha > 0 {
		r = br * 255 / alpha
		g = bg * 255 / alpha
		b = bb * 255 / alpha
	}
	return uint8(r), uint8(g), uint8(b), uint8(alpha)
}

// luma is the BT.709 weighting used by the grayscale mode.
func luma(r, g, b float64) float64 {
	return 0.2126*r + 0.7152*g + 0.0722*b
}

func clamp255(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}
