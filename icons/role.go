// Package icons implements the adaptive icon geometry: square-and-pad
// normalization, background flattening, icon-sheet extraction and density
// fan-out. Everything here is pure; reading and writing files is the job of
// the pipeline package.
package icons

import "fmt"

// Role is the part an image plays in an adaptive icon.
type Role string

const (
	RoleForeground Role = "foreground"
	RoleBackground Role = "background"
	RoleMonochrome Role = "monochrome"
)

// Roles lists every role in processing order.
func Roles() []Role {
	return []Role{RoleForeground, RoleBackground, RoleMonochrome}
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleForeground, RoleBackground, RoleMonochrome:
		return true
	}
	return false
}

// FileName returns the resource file name for the role, e.g.
// "ic_launcher_foreground.png".
func (r Role) FileName() string {
	return fmt.Sprintf("ic_launcher_%s.png", r)
}

// Opaque reports whether icons of this role are emitted without alpha.
func (r Role) Opaque() bool {
	return r == RoleBackground
}

// Strategy selects how a sheet column is turned into an icon.
type Strategy string

const (
	// StrategyTrimPad trims the column to its content and pads it into the
	// safe zone.
	StrategyTrimPad Strategy = "trim-pad"
	// StrategySampleColor samples the centre pixel of the column and fills a
	// solid opaque square with it.
	StrategySampleColor Strategy = "sample-color"
)

// Valid reports whether s is a known strategy.
func (s Strategy) Valid() bool {
	return s == StrategyTrimPad || s == StrategySampleColor
}

// Extraction binds a sheet column to the role it produces.
type Extraction struct {
	Role     Role     `yaml:"role"`
	Column   int      `yaml:"column"`
	Strategy Strategy `yaml:"strategy"`
}

func (e Extraction) String() string {
	return fmt.Sprintf("%s<-column %d (%s)", e.Role, e.Column, e.Strategy)
}

// DefaultLayout is the column convention shared with asset producers:
// column 0 foreground, column 1 background colour, column 2 monochrome.
func DefaultLayout() []Extraction {
	return []Extraction{
		{Role: RoleForeground, Column: 0, Strategy: StrategyTrimPad},
		{Role: RoleBackground, Column: 1, Strategy: StrategySampleColor},
		{Role: RoleMonochrome, Column: 2, Strategy: StrategyTrimPad},
	}
}
