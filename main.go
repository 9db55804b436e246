// hytk — dual-reveal ("mirage tank") composite images.
//
// Usage:
//
//	hytk compose <surface> <hidden> [-o out.png] [flags]
//	hytk extract <composite> [-o payload.bin]
//	hytk analyze <surface> <hidden> [--pal out.pal]
package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/mygameworld9/hytk/analyze"
	"github.com/mygameworld9/hytk/mirage"
	"github.com/mygameworld9/hytk/parallel"
	"github.com/mygameworld9/hytk/stego"
)

var cli struct {
	Compose mirage.CLICmd  `cmd:"" help:"Compose two images into one dual-reveal composite"`
	Extract stego.CLICmd   `cmd:"" help:"Recover a payload hidden in a composite's color LSBs"`
	Analyze analyze.CLICmd `cmd:"" help:"Inspect sources and suggest compose flags"`
}

func main() {
	kctx := kong.Parse(&cli,
		kong.Name("hytk"),
		kong.Description("Composites two images into a single raster that shows one against "+
			"light backgrounds and the other against dark backgrounds, with optional "+
			"LSB-steganographic payloads."),
	)

	pool := parallel.Start(0)
	defer pool.Close()

	if err := kctx.Run(pool); err != nil {
		slog.Error("command failed", "command", kctx.Command(), "error", err)
		os.Exit(1)
	}
}
