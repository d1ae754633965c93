package images

import (
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"
)

// White is the fill used when flattening or padding opaque backgrounds.
var White = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// ToRGBA converts img to a freshly allocated *image.RGBA anchored at (0, 0).
// The source is never aliased.
func ToRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// Crop copies the region r of img into a new image anchored at (0, 0).
// r is clipped to the bounds of img.
func Crop(img image.Image, r image.Rectangle) *image.RGBA {
	r = r.Intersect(img.Bounds())
	dst := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(dst, dst.Bounds(), img, r.Min, draw.Src)
	return dst
}

// CenterSquare crops img to the largest centred square. Square inputs are
// copied unchanged.
//
// @example
// sq := CenterSquare(banner) // 300x200 -> 200x200 taken from x=50
func CenterSquare(img image.Image) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == h {
		return ToRGBA(img)
	}
	size := min(w, h)
	left := b.Min.X + (w-size)/2
	top := b.Min.Y + (h-size)/2
	return Crop(img, image.Rect(left, top, left+size, top+size))
}

// NewCanvas allocates a fully transparent size x size canvas.
func NewCanvas(size int) *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, size, size))
}

// Fill allocates a width x height image filled with c.
func Fill(width, height int, c color.Color) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return dst
}

// Paste composites src over dst with its top-left corner at at, using the
// alpha channel of src as the mask.
func Paste(dst *image.RGBA, src image.Image, at image.Point) {
	b := src.Bounds()
	r := image.Rectangle{Min: at, Max: at.Add(b.Size())}
	xdraw.Draw(dst, r, src, b.Min, xdraw.Over)
}

// PasteCentered composites src onto the centre of dst. The offset is
// floored, so odd remainders leave the extra pixel on the right and bottom.
func PasteCentered(dst *image.RGBA, src image.Image) {
	db, sb := dst.Bounds(), src.Bounds()
	at := image.Pt(
		db.Min.X+(db.Dx()-sb.Dx())/2,
		db.Min.Y+(db.Dy()-sb.Dy())/2,
	)
	Paste(dst, src, at)
}

// Flatten composites img over an opaque bg, weighting by the source alpha.
// The result is fully opaque.
func Flatten(img image.Image, bg color.Color) *image.RGBA {
	b := img.Bounds()
	dst := Fill(b.Dx(), b.Dy(), bg)
	Paste(dst, img, image.Point{})
	return dst
}

// PadSquare centres img on a square canvas of the larger dimension filled
// with bg. Nothing from img is cropped.
func PadSquare(img image.Image, bg color.Color) *image.RGBA {
	b := img.Bounds()
	if b.Dx() == b.Dy() {
		return ToRGBA(img)
	}
	size := max(b.Dx(), b.Dy())
	dst := Fill(size, size, bg)
	PasteCentered(dst, img)
	return dst
}
