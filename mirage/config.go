package mirage

// Config holds every knob of one compositing invocation. Values are read
// only; a fresh Config is passed for every run.
type Config struct {
	SurfaceMin int     // lower bound of the surface remap, 0-255
	HiddenMax  int     // upper bound of the hidden remap, 0-255
	Grayscale  bool    // single-luminance mode instead of per-channel color
	Dithering  float64 // noise strength factor, 0-1; 0 disables dithering
	Payload    []byte  // steganographic payload; empty skips embedding
	Width      int     // output width; 0 means the surface image's width
	Height     int     // output height; 0 means the surface image's height
	Seed       uint64  // dither noise seed
}

// DefaultConfig returns the product defaults: grayscale output with the
// surface floor at 160 and the hidden ceiling at 100.
func DefaultConfig() Config {
	return Config{
		SurfaceMin: 160,
		HiddenMax:  100,
		Grayscale:  true,
	}
}
