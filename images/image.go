package images

import "image"

// ImageFormat represents a supported source image encoding.
type ImageFormat string

// ImageFormat constants
const (
	// FormatPNG is the PNG image format. All outputs are written as PNG.
	FormatPNG ImageFormat = "png"
	// FormatJPEG is the JPEG image format. JPEG sources carry no alpha.
	FormatJPEG ImageFormat = "jpeg"
)

// Mode is the channel layout of an image.
type Mode string

const (
	// ModeRGB is an opaque three channel image.
	ModeRGB Mode = "RGB"
	// ModeRGBA is a four channel image with transparency.
	ModeRGBA Mode = "RGBA"
)

// ModeOf reports ModeRGB when every pixel of img is fully opaque and
// ModeRGBA otherwise.
func ModeOf(img image.Image) Mode {
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		return ModeRGB
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0xffff {
				return ModeRGBA
			}
		}
	}
	return ModeRGB
}
