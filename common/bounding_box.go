package common

import (
	"fmt"
	"image"
)

// BoundingBox is the smallest rectangle enclosing the visible content of an
// image. Right and Bottom are exclusive, like image.Rectangle.
type BoundingBox struct {
	Left, Top, Right, Bottom int
}

// ToRect converts the bounding box to an image.Rectangle.
//
// @example
// box := BoundingBox{Left: 10, Top: 20, Right: 110, Bottom: 80}
// rect := box.ToRect() // (10,20)-(110,80)
func (b BoundingBox) ToRect() image.Rectangle {
	return image.Rect(b.Left, b.Top, b.Right, b.Bottom)
}

// Width returns the horizontal extent of the box.
func (b BoundingBox) Width() int {
	return b.Right - b.Left
}

// Height returns the vertical extent of the box.
func (b BoundingBox) Height() int {
	return b.Bottom - b.Top
}

// Longest returns the larger of Width and Height.
func (b BoundingBox) Longest() int {
	return max(b.Width(), b.Height())
}

// Empty reports whether the box encloses no pixels.
func (b BoundingBox) Empty() bool {
	return b.Width() <= 0 || b.Height() <= 0
}

// Margins returns the distance from each side of the box to the matching
// side of bounds, in left, top, right, bottom order.
func (b BoundingBox) Margins(bounds image.Rectangle) (left, top, right, bottom int) {
	return b.Left - bounds.Min.X, b.Top - bounds.Min.Y, bounds.Max.X - b.Right, bounds.Max.Y - b.Bottom
}

func (b BoundingBox) String() string {
	return fmt.Sprintf("(%d, %d, %d, %d)", b.Left, b.Top, b.Right, b.Bottom)
}
