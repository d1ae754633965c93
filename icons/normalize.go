package icons

import (
	"image"
	"math"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-iconkit/images"
)

// DefaultSafeZone is the fraction of the canvas the trimmed artwork may
// occupy. The platform guarantees roughly 61% (66dp of 108dp) is visible
// under every mask, so 0.65 keeps content clear of the clipped ring.
const DefaultSafeZone = 0.65

// canonicalAlpha is the coverage at which a resampled edge still counts as
// content when checking whether an input is already canonical.
const canonicalAlpha = 128

var (
	// ErrEmptyContent is returned when an image has no visible pixel to trim to.
	ErrEmptyContent = errors.New("image has no visible content")
	// ErrInvalidSize is returned for a non-positive target size.
	ErrInvalidSize = errors.New("target size must be positive")
)

// Normalizer turns arbitrary artwork into canonical adaptive icon layers.
type Normalizer struct {
	// SafeZone is the fraction of the canvas the artwork occupies.
	SafeZone float64
	// Resample scales the padded canvas to the target size.
	Resample images.Resampler
}

// NewNormalizer returns a Normalizer. A zero safeZone or nil resample
// selects the defaults.
func NewNormalizer(safeZone float64, resample images.Resampler) *Normalizer {
	if safeZone <= 0 {
		safeZone = DefaultSafeZone
	}
	if resample == nil {
		resample, _ = images.ResamplerByName(images.DefaultResampler)
	}
	return &Normalizer{SafeZone: safeZone, Resample: resample}
}

// CanvasSize returns the edge length of the padded canvas for artwork whose
// longest side is longest, rounding up so the artwork never exceeds the
// safe zone.
//
// @example
// CanvasSize(130, 0.65) // 200
func CanvasSize(longest int, safeZone float64) int {
	// The epsilon absorbs binary representation error, e.g. 130/0.65.
	return int(math.Ceil(float64(longest)/safeZone - 1e-9))
}

// Normalize center-crops src to a square, trims transparent margins, pads the
// artwork into the safe zone of a transparent canvas and resizes the canvas
// to size x size. The result keeps its alpha channel.
//
// An input that is already canonical for size is returned as an exact copy.
//
// Arguments:
// - src: Source artwork in any colour model.
// - size: Target edge length in pixels.
//
// Returns:
// - The normalized icon.
// - ErrEmptyContent if src is fully transparent.
func (n *Normalizer) Normalize(src image.Image, size int) (*image.RGBA, error) {
	if size <= 0 {
		return nil, errors.Wrapf(ErrInvalidSize, "got %d", size)
	}

	img := images.ToRGBA(src)
	if n.isCanonical(img, size) {
		return n.Resample(img, size, size), nil
	}

	return n.TrimAndPad(images.CenterSquare(img), size)
}

// TrimAndPad trims src to its visible content, pads it into the safe zone of
// a transparent square canvas and resizes to size x size. Unlike Normalize
// it does not crop to a square first.
func (n *Normalizer) TrimAndPad(src image.Image, size int) (*image.RGBA, error) {
	if size <= 0 {
		return nil, errors.Wrapf(ErrInvalidSize, "got %d", size)
	}

	trimmed, box, ok := images.Trim(src)
	if !ok {
		b := src.Bounds()
		return nil, errors.Wrapf(ErrEmptyContent, "%dx%d image is fully transparent", b.Dx(), b.Dy())
	}

	canvas := images.NewCanvas(CanvasSize(box.Longest(), n.SafeZone))
	images.PasteCentered(canvas, trimmed)

	return n.Resample(canvas, size, size), nil
}

// isCanonical reports whether img already has the shape Normalize would
// produce for size: square at the target size, with content centred and
// filling the safe zone. Resampling softens edges, so the check counts
// pixels of at least half coverage and allows a small tolerance.
//
// Trimming keeps every pixel with alpha > 0, so faint pixels (shadows,
// stray alpha) must stay within the ringing halo resampling leaves around
// the solid content. Anything further out would change the trim box.
func (n *Normalizer) isCanonical(img *image.RGBA, size int) bool {
	b := img.Bounds()
	if b.Dx() != size || b.Dy() != size {
		return false
	}

	box, ok := images.ContentBounds(img, canonicalAlpha)
	if !ok {
		return false
	}

	// Rounding the canvas up costs small artwork up to one source pixel of
	// fill, which scales to several output pixels.
	centre, fill := max(2, size/100), max(2, size/50)
	left, top, right, bottom := box.Margins(b)
	if abs(left-right) > centre || abs(top-bottom) > centre {
		return false
	}
	if abs(CanvasSize(box.Longest(), n.SafeZone)-size) > fill {
		return false
	}

	// The outer lobe of an upscaling kernel reaches up to three source
	// pixels past an edge.
	halo := max(4, size/16)
	faint, _ := images.ContentBounds(img, 1)
	fl, ft, fr, fb := faint.Margins(b)
	return fl >= left-halo && ft >= top-halo && fr >= right-halo && fb >= bottom-halo
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
