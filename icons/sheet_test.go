package icons

import (
	"image"
	"image/color"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-iconkit/images"
)

var sheetBackground = color.RGBA{R: 10, G: 20, B: 30, A: 255}

func fillRect(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

// getSheet returns a transparent w x 200 three-column sheet: a red square in
// column 0, a solid colour in column 1, a black square in column 2 and a
// label strip across the bottom.
func getSheet(w int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, 200))
	fillRect(img, image.Rect(20, 20, 80, 110), testRed)
	fillRect(img, image.Rect(100, 0, 200, 130), sheetBackground)
	fillRect(img, image.Rect(230, 40, 270, 80), color.RGBA{A: 255})
	fillRect(img, image.Rect(0, 150, w, 160), color.RGBA{A: 255})
	return img
}

func TestNewSheet_Geometry(t *testing.T) {
	s, err := NewSheet(getSheet(300), DefaultColumns, DefaultTopFraction)
	require.NoError(t, err)

	assert.Equal(t, 3, s.Columns())
	assert.Equal(t, 100, s.ColumnWidth())
	assert.Equal(t, 130, s.CropHeight())

	col, err := s.Column(0)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 100, 130), col.Bounds())

	box, ok := images.ContentBounds(col, 1)
	require.True(t, ok)
	assert.Equal(t, image.Rect(20, 20, 80, 110), box.ToRect(), "label strip is excluded")
}

func TestNewSheet_NonDivisibleWidth(t *testing.T) {
	s, err := NewSheet(getSheet(301), DefaultColumns, DefaultTopFraction)
	require.NoError(t, err)
	assert.Equal(t, 100, s.ColumnWidth())

	r, err := s.ColumnRect(2)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(200, 0, 300, 130), r, "the remainder column of pixels is unused")
}

func TestNewSheet_Errors(t *testing.T) {
	tests := []struct {
		name        string
		img         image.Image
		columns     int
		topFraction float64
	}{
		{name: "no columns", img: getSheet(300), columns: 0, topFraction: 0.65},
		{name: "zero top fraction", img: getSheet(300), columns: 3, topFraction: 0},
		{name: "top fraction above one", img: getSheet(300), columns: 3, topFraction: 1.5},
		{name: "narrower than columns", img: image.NewRGBA(image.Rect(0, 0, 2, 10)), columns: 3, topFraction: 0.65},
		{name: "too short", img: image.NewRGBA(image.Rect(0, 0, 30, 1)), columns: 3, topFraction: 0.65},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewSheet(tc.img, tc.columns, tc.topFraction)
			assert.True(t, errors.Is(err, ErrInvalidSheet), "got %v", err)
		})
	}
}

func TestSheet_SampleColor(t *testing.T) {
	s, err := NewSheet(getSheet(300), DefaultColumns, DefaultTopFraction)
	require.NoError(t, err)

	// Column 1 centre is (150, 65).
	c, err := s.SampleColor(1)
	require.NoError(t, err)
	assert.Equal(t, sheetBackground, c)

	// Transparent pixels sample as opaque black.
	c, err = s.SampleColor(2)
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{A: 255}, c)
}

func TestSheet_SampleColorStraightAlpha(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 300, 200))
	img.SetNRGBA(150, 65, color.NRGBA{R: 200, G: 100, B: 50, A: 128})

	s, err := NewSheet(img, DefaultColumns, DefaultTopFraction)
	require.NoError(t, err)

	c, err := s.SampleColor(1)
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 200, G: 100, B: 50, A: 255}, c, "semi-transparent pixels keep their exact colour")
}

func TestSheet_ColumnOutOfRange(t *testing.T) {
	s, err := NewSheet(getSheet(300), DefaultColumns, DefaultTopFraction)
	require.NoError(t, err)

	_, err = s.Column(3)
	assert.True(t, errors.Is(err, ErrColumnOutOfRange))
	_, err = s.SampleColor(-1)
	assert.True(t, errors.Is(err, ErrColumnOutOfRange))
	_, err = s.Extract(NewNormalizer(0, nil), Extraction{Role: RoleMonochrome, Column: 5}, 432)
	assert.True(t, errors.Is(err, ErrColumnOutOfRange))
}

func TestSheet_Extract(t *testing.T) {
	n := NewNormalizer(0, nil)
	s, err := NewSheet(getSheet(300), DefaultColumns, DefaultTopFraction)
	require.NoError(t, err)

	for _, e := range DefaultLayout() {
		t.Run(string(e.Role), func(t *testing.T) {
			icon, err := s.Extract(n, e, 432)
			require.NoError(t, err)
			assert.Equal(t, image.Rect(0, 0, 432, 432), icon.Bounds())

			if e.Strategy == StrategySampleColor {
				assert.Equal(t, images.ModeRGB, images.ModeOf(icon))
				assert.Equal(t, sheetBackground, icon.RGBAAt(0, 0))
				assert.Equal(t, sheetBackground, icon.RGBAAt(431, 431))
				return
			}
			assert.Equal(t, images.ModeRGBA, images.ModeOf(icon))
			assertCentered(t, icon)
		})
	}

	_, err = s.Extract(n, Extraction{Role: RoleForeground, Strategy: "blur"}, 432)
	assert.ErrorContains(t, err, "unknown extraction strategy")
}

func TestSheet_ExtractEmptyColumn(t *testing.T) {
	img := getSheet(300)
	fillRect(img, image.Rect(200, 0, 300, 130), color.RGBA{})

	s, err := NewSheet(img, DefaultColumns, DefaultTopFraction)
	require.NoError(t, err)

	_, err = s.Extract(NewNormalizer(0, nil), Extraction{Role: RoleMonochrome, Column: 2, Strategy: StrategyTrimPad}, 432)
	assert.True(t, errors.Is(err, ErrEmptyContent))
	assert.ErrorContains(t, err, "column 2")

	_, err = SplitSheet(NewNormalizer(0, nil), img, DefaultColumns, DefaultTopFraction, 432)
	assert.True(t, errors.Is(err, ErrEmptyContent))
}

func TestSplitSheet(t *testing.T) {
	out, err := SplitSheet(NewNormalizer(0, nil), getSheet(300), DefaultColumns, DefaultTopFraction, 216)
	require.NoError(t, err)
	require.Len(t, out, 3)
	for _, icon := range out {
		assert.Equal(t, image.Rect(0, 0, 216, 216), icon.Bounds())
	}
}
