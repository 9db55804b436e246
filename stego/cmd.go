package stego

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"unicode/utf8"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/vp8l"
	_ "golang.org/x/image/webp"
)

// CLICmd is the extract sub-command: recover a payload hidden in a
// composite's color LSBs. Lossless containers only; JPEG recompression
// destroys the carrier bits.
type CLICmd struct {
	Input  string `arg:"" help:"Composite image to read"`
	Output string `short:"o" help:"Write the payload to this file instead of stdout"`
	Raw    bool   `help:"Skip zstd auto-detection and UTF-8 validation" default:"false"`
}

func (c *CLICmd) Run() error {
	logger := slog.Default().With("file", c.Input)

	imgFile, err := os.Open(c.Input)
	if err != nil {
		return fmt.Errorf("could not open image %q: %w", c.Input, err)
	}
	defer imgFile.Close()

	img, _, err := image.Decode(imgFile)
	if err != nil {
		return fmt.Errorf("could not decode image %q: %w", c.Input, err)
	}

	payload, err := Extract(asNRGBA(img).Pix)
	if err != nil {
		return fmt.Errorf("could not extract payload from %q: %w", c.Input, err)
	}
	logger.Info("extracted payload", "bytes", len(payload))

	if !c.Raw {
		if payload, err = Decompress(payload); err != nil {
			return err
		}
	}

	if c.Output != "" {
		if err := os.WriteFile(c.Output, payload, 0644); err != nil {
			return fmt.Errorf("could not write payload to %q: %w", c.Output, err)
		}
		logger.Info("payload written", "output", c.Output, "bytes", len(payload))
		return nil
	}

	if !c.Raw && !utf8.Valid(payload) {
		return fmt.Errorf("payload is not valid UTF-8 (%d bytes); use --output to save it", len(payload))
	}
	fmt.Println(string(payload))
	return nil
}

// asNRGBA returns img's pixels as a straight-alpha RGBA8 buffer without
// copying when the decoder already produced one.
func asNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == image.Pt(0, 0) && n.Stride == n.Rect.Dx()*4 {
		return n
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}
