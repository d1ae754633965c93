package images

import "fmt"

// DensityLabel names an Android screen density bucket (e.g., "xhdpi").
type DensityLabel string

// Defines the density buckets an adaptive icon is rendered for.
const (
	DensityMDPI    DensityLabel = "mdpi"
	DensityHDPI    DensityLabel = "hdpi"
	DensityXHDPI   DensityLabel = "xhdpi"
	DensityXXHDPI  DensityLabel = "xxhdpi"
	DensityXXXHDPI DensityLabel = "xxxhdpi"
)

// BaseIconDP is the logical edge length of an adaptive icon layer.
const BaseIconDP = 108

// Density pairs a density bucket with the pixel edge length of a 108dp
// adaptive icon layer rendered at that bucket.
type Density struct {
	Label  DensityLabel `json:"label" yaml:"label"`
	Pixels int          `json:"pixels" yaml:"pixels"`
}

// Scale returns the linear scale factor relative to mdpi (1x).
func (d Density) Scale() float64 {
	return float64(d.Pixels) / BaseIconDP
}

// Dir returns the resource directory name for the density, e.g. "mipmap-hdpi".
func (d Density) Dir() string {
	return "mipmap-" + string(d.Label)
}

// String returns a human-readable summary of the density.
func (d Density) String() string {
	return fmt.Sprintf("%s (%dx%d, %.1fx)", d.Label, d.Pixels, d.Pixels, d.Scale())
}

// Densities returns the standard density table ordered from mdpi to xxxhdpi.
// A new slice is returned on every call.
func Densities() []Density {
	return []Density{
		{Label: DensityMDPI, Pixels: 108},
		{Label: DensityHDPI, Pixels: 162},
		{Label: DensityXHDPI, Pixels: 216},
		{Label: DensityXXHDPI, Pixels: 324},
		{Label: DensityXXXHDPI, Pixels: 432},
	}
}

// DensityByLabel retrieves a density from table by its label.
func DensityByLabel(table []Density, label DensityLabel) (Density, bool) {
	for _, d := range table {
		if d.Label == label {
			return d, true
		}
	}
	return Density{}, false
}

// Derived returns every density in table except base, preserving order.
// These are the densities fanned out from a canonical base rendering.
func Derived(table []Density, base DensityLabel) []Density {
	out := make([]Density, 0, len(table))
	for _, d := range table {
		if d.Label != base {
			out = append(out, d)
		}
	}
	return out
}
