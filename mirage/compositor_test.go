package mirage

import (
	"bytes"
	"image"
	"testing"

	"github.com/mygameworld9/hytk/parallel"
)

func solidNRGBA(w, h int, r, g, b uint8) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = r, g, b, 255
	}
	return img
}

func gradientNRGBA(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			i := img.PixOffset(x, y)
			img.Pix[i+0] = uint8((x * 17) ^ (y * 31))
			img.Pix[i+1] = uint8((x * 43) + (y * 13))
			img.Pix[i+2] = uint8((x * 7) ^ (y * 11))
			img.Pix[i+3] = 255
		}
	}
	return img
}

// Product defaults on two identical solid-gray sources, the full remap
// chain: lumA' = 128*95/255+160 ≈ 207.7, lumB' = 128*100/255 ≈ 50.2,
// alpha ≈ 97.5, gray ≈ 131.3, all truncated to bytes.
func TestGrayscaleDefaultsSolidGray(t *testing.T) {
	cfg := DefaultConfig()
	out := NewCompositor(cfg).Composite(solidNRGBA(3, 3, 128, 128, 128), solidNRGBA(3, 3, 128, 128, 128), nil)

	for i := 0; i < len(out.Pix); i += 4 {
		if got := [4]uint8{out.Pix[i], out.Pix[i+1], out.Pix[i+2], out.Pix[i+3]}; got != [4]uint8{131, 131, 131, 97} {
			t.Fatalf("pixel %d = %v, want [131 131 131 97]", i/4, got)
		}
	}
}

// When the remapped values coincide the pixel is fully opaque and the
// gray value passes through unchanged.
func TestGrayscaleOpaqueWhenEqual(t *testing.T) {
	cfg := Config{SurfaceMin: 0, HiddenMax: 255, Grayscale: true}
	out := NewCompositor(cfg).Composite(solidNRGBA(2, 2, 200, 200, 200), solidNRGBA(2, 2, 200, 200, 200), nil)

	if got := [4]uint8{out.Pix[0], out.Pix[1], out.Pix[2], out.Pix[3]}; got != [4]uint8{200, 200, 200, 255} {
		t.Fatalf("pixel = %v, want [200 200 200 255]", got)
	}
}

// A hidden value brighter than the surface is clamped down to it, which
// drives alpha to 255 and the output to the surface value.
func TestGrayscaleDominanceClamp(t *testing.T) {
	cfg := Config{SurfaceMin: 0, HiddenMax: 255, Grayscale: true}
	out := NewCompositor(cfg).Composite(solidNRGBA(2, 2, 50, 50, 50), solidNRGBA(2, 2, 200, 200, 200), nil)

	if got := [4]uint8{out.Pix[0], out.Pix[1], out.Pix[2], out.Pix[3]}; got != [4]uint8{50, 50, 50, 255} {
		t.Fatalf("pixel = %v, want [50 50 50 255]", got)
	}
}

// Hand-computed color-mode pixel with the product defaults:
// A=(100,150,200), B=(80,120,160). The red channel needs the most alpha
// (89.1...), so alpha=89 and each channel becomes B'*255/alpha.
func TestColorModeKnownPixel(t *testing.T) {
	cfg := Config{SurfaceMin: 160, HiddenMax: 100}
	out := NewCompositor(cfg).Composite(solidNRGBA(1, 1, 100, 150, 200), solidNRGBA(1, 1, 80, 120, 160), nil)

	if got := [4]uint8{out.Pix[0], out.Pix[1], out.Pix[2], out.Pix[3]}; got != [4]uint8{89, 134, 179, 89} {
		t.Fatalf("pixel = %v, want [89 134 179 89]", got)
	}
}

// finalAlpha is the max of the three per-channel candidates, so no
// channel can end up under-covered: the stored alpha is at least every
// candidate an individual channel would have required.
func TestColorModeAlphaCoversEveryChannel(t *testing.T) {
	cfg := Config{SurfaceMin: 60, HiddenMax: 220}
	a, b := gradientNRGBA(32, 32), gradientNRGBA(32, 32)
	out := NewCompositor(cfg).Composite(a, b, nil)

	remapA := func(v float64) float64 { return v*float64(255-cfg.SurfaceMin)/255 + float64(cfg.SurfaceMin) }
	remapB := func(v float64) float64 { return v * float64(cfg.HiddenMax) / 255 }

	for i := 0; i < len(out.Pix); i += 4 {
		for ch := range 3 {
			av := remapA(float64(a.Pix[i+ch]))
			bv := min(remapB(float64(b.Pix[i+ch])), av)
			candidate := 255 - (av - bv)
			if float64(out.Pix[i+3]) < candidate-1 { // -1 for truncation
				t.Fatalf("pixel %d: alpha %d under-covers channel %d (candidate %.2f)",
					i/4, out.Pix[i+3], ch, candidate)
			}
		}
	}
}

func TestCompositeDeterministicWithoutDither(t *testing.T) {
	cfg := Config{SurfaceMin: 160, HiddenMax: 100, Grayscale: true}
	a, b := gradientNRGBA(16, 16), gradientNRGBA(16, 16)

	first := NewCompositor(cfg).Composite(a, b, nil)
	second := NewCompositor(cfg).Composite(a, b, nil)
	if !bytes.Equal(first.Pix, second.Pix) {
		t.Fatalf("undithered runs differ")
	}
}

func TestCompositeDitherSeedReproducible(t *testing.T) {
	a, b := gradientNRGBA(16, 16), gradientNRGBA(16, 16)

	cfg := Config{SurfaceMin: 160, HiddenMax: 100, Grayscale: true, Dithering: 0.5, Seed: 7}
	first := NewCompositor(cfg).Composite(a, b, nil)
	second := NewCompositor(cfg).Composite(a, b, nil)
	if !bytes.Equal(first.Pix, second.Pix) {
		t.Fatalf("equally seeded dithered runs differ")
	}

	cfg.Seed = 8
	third := NewCompositor(cfg).Composite(a, b, nil)
	if bytes.Equal(first.Pix, third.Pix) {
		t.Fatalf("differently seeded dithered runs should differ")
	}
}

// Row-seeded noise makes parallel output identical to serial output.
func TestCompositeParallelMatchesSerial(t *testing.T) {
	pool := parallel.Start(4)
	defer pool.Close()

	cfg := Config{SurfaceMin: 160, HiddenMax: 100, Dithering: 0.3, Seed: 11}
	a, b := gradientNRGBA(64, 48), gradientNRGBA(64, 48)

	serial := NewCompositor(cfg).Composite(a, b, nil)
	concurrent := NewCompositor(cfg).Composite(a, b, pool)
	if !bytes.Equal(serial.Pix, concurrent.Pix) {
		t.Fatalf("parallel composite differs from serial")
	}
}
