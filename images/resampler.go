package images

import (
	"image"
	"sort"

	"github.com/nfnt/resize"
	xdraw "golang.org/x/image/draw"
)

// Resampler scales an image to exactly width x height.
type Resampler func(img image.Image, width, height int) *image.RGBA

// Resampler names accepted in configuration.
const (
	ResamplerLanczos      = "lanczos"
	ResamplerBicubic      = "bicubic"
	ResamplerBilinear     = "bilinear"
	ResamplerMitchell     = "mitchell"
	ResamplerNearest      = "nearest"
	ResamplerNfntLanczos3 = "nfnt-lanczos3"
	ResamplerCatmullRom   = "catmull-rom"
)

// DefaultResampler is the resampler used when none is configured.
const DefaultResampler = ResamplerLanczos

var resamplers = map[string]Resampler{
	ResamplerLanczos:      withFilter(LanczosFilter),
	ResamplerBicubic:      withFilter(BicubicFilter),
	ResamplerBilinear:     withFilter(BilinearFilter),
	ResamplerMitchell:     withFilter(MitchellNetravaliFilter),
	ResamplerNearest:      withFilter(NearestNeighborFilter),
	ResamplerNfntLanczos3: nfntLanczos3,
	ResamplerCatmullRom:   catmullRom,
}

func withFilter(filter ResampleFilter) Resampler {
	return func(img image.Image, width, height int) *image.RGBA {
		return Resize(img, width, height, filter)
	}
}

// nfntLanczos3 delegates to github.com/nfnt/resize. Same-size requests are
// copied so the identity guarantee of Resize holds for every resampler.
func nfntLanczos3(img image.Image, width, height int) *image.RGBA {
	b := img.Bounds()
	if b.Dx() == width && b.Dy() == height {
		return ToRGBA(img)
	}
	return ToRGBA(resize.Resize(uint(width), uint(height), img, resize.Lanczos3))
}

func catmullRom(img image.Image, width, height int) *image.RGBA {
	b := img.Bounds()
	if b.Dx() == width && b.Dy() == height {
		return ToRGBA(img)
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Rect, img, b, xdraw.Src, nil)
	return dst
}

// ResamplerByName looks up a resampler by its configuration name.
// An empty name selects DefaultResampler.
func ResamplerByName(name string) (Resampler, bool) {
	if name == "" {
		name = DefaultResampler
	}
	r, ok := resamplers[name]
	return r, ok
}

// ResamplerNames returns the sorted list of known resampler names.
func ResamplerNames() []string {
	names := make([]string, 0, len(resamplers))
	for name := range resamplers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
