package images

import (
	"image"

	"github.com/nvr-ai/go-iconkit/common"
)

// ContentBounds returns the tight bounding box of every pixel whose 8-bit
// alpha is at least minAlpha. A minAlpha of 1 selects any non-transparent
// pixel. ok is false when no pixel qualifies.
//
// Arguments:
// - img: The image to scan.
// - minAlpha: The lowest alpha value counted as content.
//
// Returns:
// - The bounding box in the coordinate space of img.
// - Whether any content was found.
//
// @example
// box, ok := ContentBounds(icon, 1)
//
//	if !ok {
//	    return ErrEmptyContent
//	}
func ContentBounds(img image.Image, minAlpha uint8) (common.BoundingBox, bool) {
	b := img.Bounds()
	left, top := b.Max.X, b.Max.Y
	right, bottom := b.Min.X, b.Min.Y

	threshold := uint32(minAlpha) * 0x101

	visit := func(x, y int, a uint32) {
		if a < threshold || a == 0 {
			return
		}
		left = min(left, x)
		right = max(right, x+1)
		top = min(top, y)
		bottom = max(bottom, y+1)
	}

	if rgba, ok := img.(*image.RGBA); ok {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				visit(x, y, uint32(rgba.Pix[rgba.PixOffset(x, y)+3])*0x101)
			}
		}
	} else {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				_, _, _, a := img.At(x, y).RGBA()
				visit(x, y, a)
			}
		}
	}

	box := common.BoundingBox{Left: left, Top: top, Right: right, Bottom: bottom}
	if box.Empty() {
		return common.BoundingBox{}, false
	}
	return box, true
}

// Trim crops img to its non-transparent content. ok is false for a fully
// transparent image, in which case the returned image is nil.
func Trim(img image.Image) (*image.RGBA, common.BoundingBox, bool) {
	box, ok := ContentBounds(img, 1)
	if !ok {
		return nil, box, false
	}
	return Crop(img, box.ToRect()), box, true
}
