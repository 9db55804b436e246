package mirage

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/alecthomas/kong"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/vp8l"
	_ "golang.org/x/image/webp"

	"github.com/mygameworld9/hytk/parallel"
	"github.com/mygameworld9/hytk/stego"
)

// CLICmd is the compose sub-command: build a dual-reveal composite from a
// surface image and a hidden image.
type CLICmd struct {
	Surface    string  `arg:"" help:"Image shown against light backgrounds"`
	Hidden     string  `arg:"" help:"Image shown against dark backgrounds"`
	Output     string  `short:"o" help:"Output path" default:"mirage.png"`
	Format     string  `help:"Output container; both keep the alpha channel" enum:"png,tiff" default:"png"`
	SurfaceMin int     `help:"Lower bound of the surface remap (0-255)" default:"160" group:"tone"`
	HiddenMax  int     `help:"Upper bound of the hidden remap (0-255)" default:"100" group:"tone"`
	Color      bool    `help:"Independent-channel color mode instead of grayscale" default:"false" group:"tone"`
	Dithering  float64 `help:"Dither noise strength factor (0-1)" default:"0" group:"tone"`
	Seed       uint64  `help:"Dither noise seed; 0 derives one from the clock" group:"tone"`
	Width      int     `help:"Output width; defaults to the surface image's"`
	Height     int     `help:"Output height; defaults to the surface image's"`
	Text       string  `help:"Text payload to hide in the color LSBs" group:"steganography"`
	TextFile   string  `help:"Read the payload from a file" group:"steganography"`
	Compress   bool    `help:"zstd-compress the payload before embedding" default:"false" group:"steganography"`
}

func (c *CLICmd) Validate(kctx *kong.Context) error {
	switch {
	case c.SurfaceMin < 0 || c.SurfaceMin > 255:
		return fmt.Errorf("invalid surface-min: %d", c.SurfaceMin)
	case c.HiddenMax < 0 || c.HiddenMax > 255:
		return fmt.Errorf("invalid hidden-max: %d", c.HiddenMax)
	case c.Dithering < 0 || c.Dithering > 1:
		return fmt.Errorf("invalid dithering factor: %g", c.Dithering)
	case c.Width < 0 || c.Height < 0:
		return fmt.Errorf("invalid output dimensions: %dx%d", c.Width, c.Height)
	}

	if c.Text != "" && c.TextFile != "" {
		return fmt.Errorf("--text and --text-file are mutually exclusive")
	}
	return nil
}

func (c *CLICmd) Run(pool *parallel.Pool) error {
	logger := slog.Default().With("surface", c.Surface, "hidden", c.Hidden)

	surface, err := decodeImage(c.Surface)
	if err != nil {
		return err
	}
	hidden, err := decodeImage(c.Hidden)
	if err != nil {
		return err
	}

	payload, err := c.payload()
	if err != nil {
		return err
	}

	cfg := Config{
		SurfaceMin: c.SurfaceMin,
		HiddenMax:  c.HiddenMax,
		Grayscale:  !c.Color,
		Dithering:  c.Dithering,
		Payload:    payload,
		Width:      c.Width,
		Height:     c.Height,
		Seed:       c.Seed,
	}
	if cfg.Seed == 0 && cfg.Dithering > 0 {
		cfg.Seed = uint64(time.Now().UnixNano())
	}

	out := Compose(surface, hidden, cfg, pool)
	logger.Info("composited", "width", out.Rect.Dx(), "height", out.Rect.Dy(),
		"grayscale", cfg.Grayscale, "payloadBytes", len(payload))

	if err := save(out, c.Format, c.Output); err != nil {
		return err
	}
	logger.Info("saved", "output", c.Output)
	return nil
}

// payload resolves the steganographic payload from the flags; nil means
// no embedding.
func (c *CLICmd) payload() ([]byte, error) {
	var payload []byte
	switch {
	case c.TextFile != "":
		data, err := os.ReadFile(c.TextFile)
		if err != nil {
			return nil, fmt.Errorf("could not read payload file %q: %w", c.TextFile, err)
		}
		payload = data
	case c.Text != "":
		payload = []byte(c.Text)
	default:
		return nil, nil
	}

	if c.Compress {
		comp, err := stego.Compress(payload)
		if err != nil {
			return nil, err
		}
		payload = comp
	}
	return payload, nil
}

func decodeImage(name string) (image.Image, error) {
	imgFile, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("could not open image %q: %w", name, err)
	}
	defer imgFile.Close()

	img, _, err := image.Decode(imgFile)
	if err != nil {
		return nil, fmt.Errorf("could not decode image %q: %w", name, err)
	}
	return img, nil
}

// save writes img atomically: encode to a temp file in the destination
// directory, then rename over the target.
func save(img image.Image, outType, dest string) (err error) {
	outFile, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest))
	if err != nil {
		return fmt.Errorf("could not create temporary destination %q: %w", dest, err)
	}
	canRename := false
	defer func() {
		if defErr := outFile.Sync(); defErr != nil {
			err = fmt.Errorf("could not flush temporary destination %q: %w", dest, defErr)
		}
		if defErr := outFile.Close(); defErr != nil {
			err = fmt.Errorf("could not close temporary destination %q: %w", dest, defErr)
		}

		if canRename && err == nil {
			if defErr := os.Rename(outFile.Name(), dest); defErr != nil {
				err = fmt.Errorf("could not rename destination file %q: %w", dest, defErr)
			}
		}
	}()

	switch outType {
	case "png":
		enc := png.Encoder{
			CompressionLevel: png.BestCompression,
			BufferPool:       pngPool,
		}
		if err = enc.Encode(outFile, img); err != nil {
			return fmt.Errorf("could not encode PNG destination %q: %w", dest, err)
		}
	case "tiff":
		if err = tiff.Encode(outFile, img, nil); err != nil {
			return fmt.Errorf("could not encode TIFF destination %q: %w", dest, err)
		}
	default:
		return fmt.Errorf("unsupported output format: %s", outType)
	}

	canRename = true
	return err
}

type pngEncoderBufferPool struct {
	pool sync.Pool
}

func (p *pngEncoderBufferPool) Get() *png.EncoderBuffer {
	return p.pool.Get().(*png.EncoderBuffer)
}

func (p *pngEncoderBufferPool) Put(buf *png.EncoderBuffer) {
	p.pool.Put(buf)
}

var pngPool = &pngEncoderBufferPool{
	pool: sync.Pool{
		New: func() any {
			return &png.EncoderBuffer{}
		},
	},
}
