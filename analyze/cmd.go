package analyze

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/lucasb-eyer/go-colorful"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/vp8l"
	_ "golang.org/x/image/webp"

	"github.com/mygameworld9/hytk/palette"
)

// CLICmd is the analyze sub-command: report tonal statistics for both
// sources and suggest compose flags.
type CLICmd struct {
	Surface string `arg:"" help:"Surface image candidate"`
	Hidden  string `arg:"" help:"Hidden image candidate"`
	Colors  int    `help:"Palette size extracted per image" default:"4"`
	Pal     string `help:"Write both palettes to this RIFF PAL file"`
}

func (c *CLICmd) Validate(kctx *kong.Context) error {
	if c.Colors < 1 || c.Colors > 256 {
		return fmt.Errorf("invalid palette size: %d", c.Colors)
	}
	return nil
}

func (c *CLICmd) Run() error {
	surface, err := c.report(c.Surface)
	if err != nil {
		return err
	}
	hidden, err := c.report(c.Hidden)
	if err != nil {
		return err
	}

	cfg := Suggest(surface, hidden)
	slog.Info("suggested configuration",
		"surface-min", cfg.SurfaceMin, "hidden-max", cfg.HiddenMax, "dithering", cfg.Dithering)

	if c.Pal != "" {
		pals := []color.Palette{toPalette(surface.Palette), toPalette(hidden.Palette)}
		if err := palette.WriteFile(c.Pal, pals); err != nil {
			return err
		}
		slog.Info("palettes written", "file", c.Pal)
	}
	return nil
}

func (c *CLICmd) report(name string) (Report, error) {
	imgFile, err := os.Open(name)
	if err != nil {
		return Report{}, fmt.Errorf("could not open image %q: %w", name, err)
	}
	defer imgFile.Close()

	img, _, err := image.Decode(imgFile)
	if err != nil {
		return Report{}, fmt.Errorf("could not decode image %q: %w", name, err)
	}

	rep, err := Scan(img, c.Colors)
	if err != nil {
		return Report{}, fmt.Errorf("could not analyze %q: %w", name, err)
	}

	slog.Info("analyzed", "file", name,
		"lumaMean", fmt.Sprintf("%.1f", rep.LumaMean),
		"lumaStdDev", fmt.Sprintf("%.1f", rep.LumaStdDev),
		"dominant", rep.Dominant.Hex(),
		"palette", hexes(rep.Palette))
	return rep, nil
}

func hexes(pal []colorful.Color) []string {
	out := make([]string, len(pal))
	for i, c := range pal {
		out[i] = c.Hex()
	}
	return out
}

func toPalette(pal []colorful.Color) color.Palette {
	out := make(color.Palette, len(pal))
	for i, c := range pal {
		r, g, b := c.RGB255()
		out[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return out
}
