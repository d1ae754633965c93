package icons

import (
	"image"
	"image/color"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-iconkit/images"
)

// Sheet defaults for the three-variant icon sheets produced by designers.
const (
	DefaultColumns     = 3
	DefaultTopFraction = 0.65
)

var (
	// ErrInvalidSheet is returned for sheet geometry that yields no pixels.
	ErrInvalidSheet = errors.New("invalid icon sheet geometry")
	// ErrColumnOutOfRange is returned for a column index outside the sheet.
	ErrColumnOutOfRange = errors.New("sheet column out of range")
)

// Sheet is a composite image holding icon variants side by side in equal
// columns, with a label strip below the top fraction.
type Sheet struct {
	src         image.Image
	img         *image.RGBA
	columns     int
	colWidth    int
	cropHeight  int
	topFraction float64
}

// NewSheet prepares img for column extraction. Column width is the floor of
// width/columns, so a width that does not divide evenly leaves the rightmost
// remainder pixels outside every column. Only the top topFraction of the
// height (floored) is used; the rest holds text labels.
//
// @example
// s, _ := NewSheet(img, 3, 0.65) // 300x200 sheet -> 100x130 columns
func NewSheet(img image.Image, columns int, topFraction float64) (*Sheet, error) {
	if columns < 1 {
		return nil, errors.Wrapf(ErrInvalidSheet, "column count %d", columns)
	}
	if topFraction <= 0 || topFraction > 1 {
		return nil, errors.Wrapf(ErrInvalidSheet, "top fraction %g", topFraction)
	}

	rgba := images.ToRGBA(img)
	b := rgba.Bounds()
	s := &Sheet{
		src:         img,
		img:         rgba,
		columns:     columns,
		colWidth:    b.Dx() / columns,
		cropHeight:  int(float64(b.Dy()) * topFraction),
		topFraction: topFraction,
	}
	if s.colWidth == 0 || s.cropHeight == 0 {
		return nil, errors.Wrapf(ErrInvalidSheet, "%dx%d sheet has empty %dx%d columns",
			b.Dx(), b.Dy(), s.colWidth, s.cropHeight)
	}
	return s, nil
}

// Columns returns the number of columns.
func (s *Sheet) Columns() int { return s.columns }

// ColumnWidth returns the width of every column.
func (s *Sheet) ColumnWidth() int { return s.colWidth }

// CropHeight returns the height of the label-free region.
func (s *Sheet) CropHeight() int { return s.cropHeight }

// ColumnRect returns the label-free region of column i.
func (s *Sheet) ColumnRect(i int) (image.Rectangle, error) {
	if i < 0 || i >= s.columns {
		return image.Rectangle{}, errors.Wrapf(ErrColumnOutOfRange, "column %d of %d", i, s.columns)
	}
	return image.Rect(i*s.colWidth, 0, (i+1)*s.colWidth, s.cropHeight), nil
}

// Column crops the label-free region of column i.
func (s *Sheet) Column(i int) (*image.RGBA, error) {
	r, err := s.ColumnRect(i)
	if err != nil {
		return nil, err
	}
	return images.Crop(s.img, r), nil
}

// SampleColor returns the opaque colour of the pixel at the centre of column
// i, i.e. (i*colWidth + colWidth/2, cropHeight/2). The pixel is read from
// the source image in straight alpha, then alpha is dropped.
func (s *Sheet) SampleColor(i int) (color.RGBA, error) {
	r, err := s.ColumnRect(i)
	if err != nil {
		return color.RGBA{}, err
	}
	b := s.src.Bounds()
	x := b.Min.X + r.Min.X + s.colWidth/2
	y := b.Min.Y + s.cropHeight/2
	c := color.NRGBAModel.Convert(s.src.At(x, y)).(color.NRGBA)
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}, nil
}

// Extract renders the icon e describes at size x size.
func (s *Sheet) Extract(n *Normalizer, e Extraction, size int) (*image.RGBA, error) {
	switch e.Strategy {
	case StrategySampleColor:
		c, err := s.SampleColor(e.Column)
		if err != nil {
			return nil, err
		}
		if size <= 0 {
			return nil, errors.Wrapf(ErrInvalidSize, "got %d", size)
		}
		return images.Fill(size, size, c), nil
	case StrategyTrimPad, "":
		col, err := s.Column(e.Column)
		if err != nil {
			return nil, err
		}
		out, err := n.TrimAndPad(col, size)
		if err != nil {
			return nil, errors.Wrapf(err, "column %d", e.Column)
		}
		return out, nil
	default:
		return nil, errors.Errorf("unknown extraction strategy %q", e.Strategy)
	}
}

// SplitSheet crops every column of img to its label-free region and runs each
// through trim, pad and resize. A column without visible content fails the
// whole split with ErrEmptyContent.
func SplitSheet(n *Normalizer, img image.Image, columns int, topFraction float64, size int) ([]*image.RGBA, error) {
	s, err := NewSheet(img, columns, topFraction)
	if err != nil {
		return nil, err
	}

	out := make([]*image.RGBA, 0, columns)
	for i := 0; i < columns; i++ {
		icon, err := s.Extract(n, Extraction{Column: i, Strategy: StrategyTrimPad}, size)
		if err != nil {
			return nil, err
		}
		out = append(out, icon)
	}
	return out, nil
}
