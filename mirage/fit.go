package mirage

import "math"

// Placement positions a uniformly scaled source image over a target
// rectangle so the source fully covers it: content centered, overflow
// cropped symmetrically, never letterboxed. Render dimensions are at
// least the target dimensions on both axes.
type Placement struct {
	Width   int
	Height  int
	OffsetX int
	OffsetY int
}

// Cover computes the cover-fit placement of a srcW×srcH image over a
// dstW×dstH target. All dimensions must be positive; degenerate inputs
// are the caller's responsibility.
func Cover(srcW, srcH, dstW, dstH int) Placement {
	imgRatio := float64(srcW) / float64(srcH)
	targetRatio := float64(dstW) / float64(dstH)

	if imgRatio > targetRatio {
		// Relatively wider than the target: pin the height, center
		// horizontally.
		w := int(math.Round(float64(dstH) * imgRatio))
		return Placement{Width: w, Height: dstH, OffsetX: (dstW - w) / 2}
	}

	h := int(math.Round(float64(dstW) / imgRatio))
	return Placement{Width: dstW, Height: h, OffsetY: (dstH - h) / 2}
}
