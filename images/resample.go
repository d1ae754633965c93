// Package images provides the pixel-level building blocks of the icon pipeline:
// resampling, canvas allocation, compositing, trimming and the density table.
package images

import (
	"image"
	"image/color"
	"image/draw"
	"math"
)

// ResampleFilter defines the resampling algorithm used for image scaling.
type ResampleFilter int

const (
	// NearestNeighborFilter uses nearest-neighbor interpolation (fastest, lowest quality).
	NearestNeighborFilter ResampleFilter = iota
	// BilinearFilter uses bilinear interpolation (fast, good quality).
	BilinearFilter
	// BicubicFilter uses bicubic interpolation (slower, better quality).
	BicubicFilter
	// LanczosFilter uses Lanczos resampling with a=3 (slowest, best quality).
	LanczosFilter
	// MitchellNetravaliFilter uses Mitchell-Netravali cubic filter (balanced).
	MitchellNetravaliFilter
)

// kernel represents a resampling kernel function.
type kernel struct {
	// Support is the radius of the kernel in source pixels.
	Support float64
	// At evaluates the kernel at distance x.
	At func(x float64) float64
}

// kernels maps each filter type to its kernel function.
var kernels = map[ResampleFilter]kernel{
	NearestNeighborFilter: {
		Support: 0.5,
		At: func(x float64) float64 {
			if math.Abs(x) < 0.5 {
				return 1.0
			}
			return 0.0
		},
	},
	BilinearFilter: {
		Support: 1.0,
		At: func(x float64) float64 {
			// Triangle function.
			x = math.Abs(x)
			if x < 1.0 {
				return 1.0 - x
			}
			return 0.0
		},
	},
	BicubicFilter: {
		Support: 2.0,
		At: func(x float64) float64 {
			// Catmull-Rom (B=0, C=0.5).
			x = math.Abs(x)
			if x < 1.0 {
				return (1.5*x-2.5)*x*x + 1.0
			}
			if x < 2.0 {
				return ((-0.5*x+2.5)*x-4.0)*x + 2.0
			}
			return 0.0
		},
	},
	LanczosFilter: {
		Support: 3.0,
		At: func(x float64) float64 {
			if x == 0.0 {
				return 1.0
			}
			x = math.Abs(x)
			if x >= 3.0 {
				return 0.0
			}
			// sinc(x) * sinc(x/3)
			pix := math.Pi * x
			return (math.Sin(pix) / pix) * (math.Sin(pix/3.0) / (pix / 3.0))
		},
	},
	MitchellNetravaliFilter: {
		Support: 2.0,
		At: func(x float64) float64 {
			// B=1/3, C=1/3.
			x = math.Abs(x)
			if x < 1.0 {
				return ((1.16666666666667*x-2.0)*x)*x + 0.888888888888889
			}
			if x < 2.0 {
				return ((-0.388888888888889*x+2.0)*x-3.333333333333333)*x + 1.777777777777778
			}
			return 0.0
		},
	},
}

// Contribution represents a single source pixel's contribution to an output pixel.
type Contribution struct {
	// pixel is the source pixel index.
	pixel int
	// weight is the normalized contribution weight.
	weight float64
}

// Resize performs separable resampling of img to width x height using the
// given filter. The result is always a new *image.RGBA anchored at (0, 0).
//
// Resizing to the source dimensions returns a pixel-exact copy, which keeps
// re-normalization of an already canonical icon lossless.
//
// Arguments:
// - img: The source image to resize.
// - width: The target width in pixels.
// - height: The target height in pixels.
// - filter: The resampling filter to use for interpolation.
//
// Returns:
// - The resized image.
//
// @example
// icon := Resize(canvas, 432, 432, LanczosFilter)
func Resize(img image.Image, width, height int, filter ResampleFilter) *image.RGBA {
	if width <= 0 || height <= 0 {
		return image.NewRGBA(image.Rect(0, 0, 1, 1))
	}

	bounds := img.Bounds()
	srcWidth := bounds.Dx()
	srcHeight := bounds.Dy()

	if srcWidth == width && srcHeight == height {
		dst := image.NewRGBA(image.Rect(0, 0, width, height))
		draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Src)
		return dst
	}

	if filter == NearestNeighborFilter {
		return ResizeNearestNeighbor(img, width, height)
	}

	// Horizontal first, then vertical.
	intermediate := image.NewRGBA(image.Rect(0, 0, width, srcHeight))
	ResizeHorizontal(img, intermediate, filter)

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	ResizeVertical(intermediate, dst, filter)

	return dst
}

// ResizeNearestNeighbor performs nearest-neighbor resizing.
//
// Arguments:
// - src: The source image.
// - width: Target width.
// - height: Target height.
//
// Returns:
// - The resized image using nearest-neighbor sampling.
func ResizeNearestNeighbor(src image.Image, width, height int) *image.RGBA {
	bounds := src.Bounds()
	srcWidth := bounds.Dx()
	srcHeight := bounds.Dy()

	dst := image.NewRGBA(image.Rect(0, 0, width, height))

	xRatio := float64(srcWidth) / float64(width)
	yRatio := float64(srcHeight) / float64(height)

	for y := 0; y < height; y++ {
		srcY := int(float64(y) * yRatio)
		if srcY >= srcHeight {
			srcY = srcHeight - 1
		}
		for x := 0; x < width; x++ {
			srcX := int(float64(x) * xRatio)
			if srcX >= srcWidth {
				srcX = srcWidth - 1
			}
			dst.Set(x, y, src.At(bounds.Min.X+srcX, bounds.Min.Y+srcY))
		}
	}

	return dst
}

// contributions pre-computes the normalized filter weights of every output
// index along one axis.
func contributions(srcSize, dstSize int, k kernel) [][]Contribution {
	scale := float64(srcSize) / float64(dstSize)

	// When downsampling, the filter support widens with the scale.
	filterScale := math.Max(scale, 1.0)
	support := k.Support * filterScale

	out := make([][]Contribution, dstSize)
	for i := 0; i < dstSize; i++ {
		center := (float64(i) + 0.5) * scale

		lo := int(math.Floor(center - support))
		hi := int(math.Ceil(center + support))
		if lo < 0 {
			lo = 0
		}
		if hi >= srcSize {
			hi = srcSize - 1
		}

		var weights []Contribution
		var sum float64
		for s := lo; s <= hi; s++ {
			distance := math.Abs(float64(s) - center + 0.5)
			weight := k.At(distance / filterScale)
			if weight != 0 {
				weights = append(weights, Contribution{pixel: s, weight: weight})
				sum += weight
			}
		}

		// Normalize so flat regions keep their exact value.
		if sum != 0 {
			for j := range weights {
				weights[j].weight /= sum
			}
		}
		out[i] = weights
	}
	return out
}

// ResizeHorizontal performs the horizontal pass of separable filtering.
//
// Arguments:
// - src: Source image.
// - dst: Destination image (target width, same height as source).
// - filter: Resampling filter to use.
func ResizeHorizontal(src image.Image, dst *image.RGBA, filter ResampleFilter) {
	srcBounds := src.Bounds()
	dstWidth := dst.Bounds().Dx()
	height := srcBounds.Dy()

	weights := contributions(srcBounds.Dx(), dstWidth, kernels[filter])

	for y := 0; y < height; y++ {
		srcY := srcBounds.Min.Y + y
		for x := 0; x < dstWidth; x++ {
			var r, g, b, a float64
			for _, c := range weights[x] {
				srcR, srcG, srcB, srcA := src.At(srcBounds.Min.X+c.pixel, srcY).RGBA()
				r += float64(srcR>>8) * c.weight
				g += float64(srcG>>8) * c.weight
				b += float64(srcB>>8) * c.weight
				a += float64(srcA>>8) * c.weight
			}
			dst.SetRGBA(x, y, premultiplied(r, g, b, a))
		}
	}
}

// ResizeVertical performs the vertical pass of separable filtering.
//
// Arguments:
// - src: Source image (typically the output of ResizeHorizontal).
// - dst: Destination image with the final dimensions.
// - filter: Resampling filter to use.
func ResizeVertical(src *image.RGBA, dst *image.RGBA, filter ResampleFilter) {
	srcBounds := src.Bounds()
	dstHeight := dst.Bounds().Dy()
	width := dst.Bounds().Dx()

	weights := contributions(srcBounds.Dy(), dstHeight, kernels[filter])

	for x := 0; x < width; x++ {
		for y := 0; y < dstHeight; y++ {
			var r, g, b, a float64
			for _, c := range weights[y] {
				i := src.PixOffset(srcBounds.Min.X+x, srcBounds.Min.Y+c.pixel)
				r += float64(src.Pix[i+0]) * c.weight
				g += float64(src.Pix[i+1]) * c.weight
				b += float64(src.Pix[i+2]) * c.weight
				a += float64(src.Pix[i+3]) * c.weight
			}
			px := premultiplied(r, g, b, a)
			i := dst.PixOffset(x, y)
			dst.Pix[i+0] = px.R
			dst.Pix[i+1] = px.G
			dst.Pix[i+2] = px.B
			dst.Pix[i+3] = px.A
		}
	}
}

// premultiplied rounds accumulated channel sums into a valid premultiplied
// pixel. Kernel overshoot can push a colour channel above alpha, which the
// PNG encoder would otherwise wrap around.
func premultiplied(r, g, b, a float64) color.RGBA {
	a = Clamp(a, 0, 255)
	return color.RGBA{
		R: uint8(Clamp(r, 0, a) + 0.5),
		G: uint8(Clamp(g, 0, a) + 0.5),
		B: uint8(Clamp(b, 0, a) + 0.5),
		A: uint8(a + 0.5),
	}
}

// Clamp restricts value to the range [min, max].
//
// @example
// clamped := Clamp(300.5, 0, 255) // Returns 255
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
