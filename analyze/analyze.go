// Package analyze inspects candidate source images and suggests
// compositor configuration. Everything here is advisory: the compositor
// accepts any configuration, this package just estimates which remap
// bounds and dither strength will keep both images legible.
package analyze

import (
	"cmp"
	"fmt"
	"image"
	"math"
	"slices"

	"github.com/cenkalti/dominantcolor"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
	"gonum.org/v1/gonum/stat"

	"github.com/mygameworld9/hytk/mirage"
)

// Report summarizes the tonal content of one source image.
type Report struct {
	LumaMean   float64          // BT.709 luma, 0-255
	LumaStdDev float64          // 0 for uniform images
	Dominant   colorful.Color   // dominant color
	Palette    []colorful.Color // k-means palette, darkest to brightest
}

// Images above this sample count are read with a pixel stride; clustering
// cost grows with samples, not image size.
const maxSamples = 1 << 16

// Scan builds a Report for img with a k-color palette.
func Scan(img image.Image, k int) (Report, error) {
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return Report{}, fmt.Errorf("empty image bounds: %v", b)
	}

	stride := 1
	for (b.Dx()/stride)*(b.Dy()/stride) > maxSamples {
		stride++
	}

	lumas := make([]float64, 0, maxSamples)
	obs := make(clusters.Observations, 0, maxSamples)
	for y := b.Min.Y; y < b.Max.Y; y += stride {
		for x := b.Min.X; x < b.Max.X; x += stride {
			r, g, bl, _ := img.At(x, y).RGBA()
			rf, gf, bf := float64(r>>8), float64(g>>8), float64(bl>>8)
			lumas = append(lumas, 0.2126*rf+0.7152*gf+0.0722*bf)
			obs = append(obs, clusters.Coordinates{rf / 255, gf / 255, bf / 255})
		}
	}

	rep := Report{LumaMean: stat.Mean(lumas, nil)}
	if len(lumas) > 1 {
		rep.LumaStdDev = stat.StdDev(lumas, nil)
	}

	if dom, ok := colorful.MakeColor(dominantcolor.Find(img)); ok {
		rep.Dominant = dom.Clamped()
	}

	if k > 0 {
		pal, err := kPalette(obs, k)
		if err != nil {
			return rep, err
		}
		rep.Palette = pal
	}
	return rep, nil
}

func kPalette(obs clusters.Observations, k int) ([]colorful.Color, error) {
	if k > len(obs) {
		k = len(obs)
	}

	km := kmeans.New()
	cls, err := km.Partition(obs, k)
	if err != nil {
		return nil, fmt.Errorf("could not cluster palette: %w", err)
	}

	pal := make([]colorful.Color, 0, len(cls))
	for _, c := range cls {
		col := colorful.Color{R: c.Center[0], G: c.Center[1], B: c.Center[2]}
		pal = append(pal, col.Clamped())
	}
	sortByBrightness(pal)
	return pal, nil
}

// sortByBrightness orders colors darkest to brightest by linear luma.
func sortByBrightness(pal []colorful.Color) {
	slices.SortFunc(pal, func(a, b colorful.Color) int {
		return cmp.Compare(linearLuma(a), linearLuma(b))
	})
}

func linearLuma(c colorful.Color) float64 {
	r, g, b := c.LinearRgb()
	return 0.2126*r + 0.7152*g + 0.0722*b
}

// Suggest maps the two reports onto a starting configuration.
func Suggest(surface, hidden Report) mirage.Config {
	cfg := mirage.DefaultConfig()

	// A bright surface tolerates a low floor; a dark one needs more
	// headroom to stay legible on white.
	cfg.SurfaceMin = clampInt(int(math.Round(224-surface.LumaMean/4)), 128, 208)

	// A bright hidden image needs a low ceiling to stay legible on black.
	cfg.HiddenMax = clampInt(int(math.Round(hidden.LumaMean/2)), 64, 128)

	// Smooth, low-variance sources band visibly after the remap; noise
	// breaks the steps up. Two-decimal steps to keep the advisory tidy.
	if sigma := math.Min(surface.LumaStdDev, hidden.LumaStdDev); sigma < 48 {
		cfg.Dithering = math.Round((48-sigma)/48*50) / 100
	}
	return cfg
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
