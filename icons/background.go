package icons

import (
	"image"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-iconkit/images"
)

// NormalizeBackground produces an opaque background layer of size x size.
//
// Transparency is flattened onto white. A non-square source is padded to a
// square on white rather than cropped: the foreground crops to its subject,
// but a background should keep all of its content.
func (n *Normalizer) NormalizeBackground(src image.Image, size int) (*image.RGBA, error) {
	if size <= 0 {
		return nil, errors.Wrapf(ErrInvalidSize, "got %d", size)
	}

	img := images.ToRGBA(src)
	if images.ModeOf(img) == images.ModeRGBA {
		img = images.Flatten(img, images.White)
	}
	img = images.PadSquare(img, images.White)

	out := n.Resample(img, size, size)
	forceOpaque(out)
	return out, nil
}

// forceOpaque pins every alpha value to 255. Kernel rounding on an opaque
// input can otherwise leave 254 at the borders.
func forceOpaque(img *image.RGBA) {
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xff
	}
}
