package icons

import (
	"image"

	"github.com/nvr-ai/go-iconkit/images"
)

// FanOut resizes a canonical icon to every density in densities. The source
// must already be square and padded; no cropping happens here. An opaque
// source yields opaque outputs.
//
// @example
// scaled := n.FanOut(icon, images.Derived(images.Densities(), images.DensityXXXHDPI))
// hdpi := scaled[images.DensityHDPI] // 162x162
func (n *Normalizer) FanOut(src image.Image, densities []images.Density) map[images.DensityLabel]*image.RGBA {
	opaque := images.ModeOf(src) == images.ModeRGB
	out := make(map[images.DensityLabel]*image.RGBA, len(densities))
	for _, d := range densities {
		scaled := n.Resample(src, d.Pixels, d.Pixels)
		if opaque {
			forceOpaque(scaled)
		}
		out[d.Label] = scaled
	}
	return out
}
