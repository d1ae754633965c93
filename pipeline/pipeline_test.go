package pipeline

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-iconkit/config"
	"github.com/nvr-ai/go-iconkit/icons"
	"github.com/nvr-ai/go-iconkit/images"
	"github.com/nvr-ai/go-iconkit/util"
)

var (
	red  = color.RGBA{R: 220, G: 30, B: 30, A: 255}
	teal = color.RGBA{R: 0, G: 128, B: 128, A: 255}
)

func fillRect(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

func artwork() *image.RGBA {
	img := images.NewCanvas(200)
	fillRect(img, image.Rect(40, 60, 160, 140), red)
	return img
}

// setup returns a pipeline working in a fresh temporary directory, the
// directory itself and the log hook.
func setup(t *testing.T) (*Pipeline, string, *test.Hook) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.WorkDir = dir

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	p, err := New(cfg, logger)
	require.NoError(t, err)
	return p, dir, hook
}

func writeSource(t *testing.T, dir, name string, img image.Image) {
	t.Helper()
	require.NoError(t, util.WriteImage(filepath.Join(dir, name), img))
}

func iconPath(dir string, d images.DensityLabel, role icons.Role) string {
	return filepath.Join(dir, "app", "src", "main", "res", "mipmap-"+string(d), role.FileName())
}

func readIcon(t *testing.T, path string) image.Image {
	t.Helper()
	img, _, err := util.ReadImage(path)
	require.NoError(t, err)
	return img
}

func warnings(hook *test.Hook) []string {
	var out []string
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			out = append(out, e.Message)
		}
	}
	return out
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.TargetSize = 0
	_, err := New(cfg, nil)
	assert.ErrorContains(t, err, "invalid config")
}

func TestProcess_MissingForeground(t *testing.T) {
	p, dir, hook := setup(t)
	writeSource(t, dir, "background.png", images.Fill(300, 150, teal))
	writeSource(t, dir, "mono.png", artwork())

	report, err := p.Process()
	require.NoError(t, err)

	assert.Equal(t, []string{"foreground"}, report.Skipped)
	assert.Empty(t, report.Failed)
	assert.Len(t, report.Written, 10)
	assert.Contains(t, warnings(hook), "foreground.png not found, skipping")

	for _, d := range images.Densities() {
		assert.NoFileExists(t, iconPath(dir, d.Label, icons.RoleForeground))

		bg := readIcon(t, iconPath(dir, d.Label, icons.RoleBackground))
		assert.Equal(t, image.Rect(0, 0, d.Pixels, d.Pixels), bg.Bounds(), "background %s", d.Label)
		assert.Equal(t, images.ModeRGB, images.ModeOf(bg), "background %s is opaque", d.Label)

		mono := readIcon(t, iconPath(dir, d.Label, icons.RoleMonochrome))
		assert.Equal(t, image.Rect(0, 0, d.Pixels, d.Pixels), mono.Bounds(), "monochrome %s", d.Label)
		assert.Equal(t, images.ModeRGBA, images.ModeOf(mono))
	}
}

func TestProcess_NothingToDo(t *testing.T) {
	p, dir, hook := setup(t)

	report, err := p.Process()
	require.NoError(t, err)
	assert.Len(t, report.Skipped, 3)
	assert.Empty(t, report.Written)
	assert.Len(t, warnings(hook), 3)
	assert.NoDirExists(t, filepath.Join(dir, "app"))
}

func TestProcess_DecodeFailureContinues(t *testing.T) {
	p, dir, _ := setup(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "foreground.png"), []byte("not a png"), 0o644))
	writeSource(t, dir, "background.png", images.Fill(10, 10, teal))

	report, err := p.Process()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 stage(s) failed")

	require.Len(t, report.Failed, 1)
	assert.Equal(t, "foreground", report.Failed[0].Stage)
	assert.True(t, errors.Is(report.Failed[0].Err, util.ErrDecode))

	assert.Equal(t, []string{"monochrome"}, report.Skipped)
	assert.Len(t, report.Written, 5, "background is still written")
}

func TestProcess_EmptyContent(t *testing.T) {
	p, dir, _ := setup(t)
	writeSource(t, dir, "mono.png", images.NewCanvas(64))

	report, err := p.Process()
	require.Error(t, err)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, "monochrome", report.Failed[0].Stage)
	assert.True(t, errors.Is(report.Failed[0].Err, icons.ErrEmptyContent))
}

func TestProcess_JPEGSource(t *testing.T) {
	p, dir, hook := setup(t)
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, images.Fill(64, 64, teal), nil))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "background.png"), buf.Bytes(), 0o644))

	report, err := p.Process()
	require.NoError(t, err)
	assert.Len(t, report.Written, 5)
	assert.Contains(t, warnings(hook), "background.png is a JPEG without transparency, its full frame is treated as content")

	bg := readIcon(t, iconPath(dir, images.DensityMDPI, icons.RoleBackground))
	assert.Equal(t, images.ModeRGB, images.ModeOf(bg))
}

func TestProcess_WriteFailure(t *testing.T) {
	p, dir, _ := setup(t)
	writeSource(t, dir, "foreground.png", artwork())
	// A file where the resource tree should start blocks every write.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app"), nil, 0o644))

	report, err := p.Process()
	require.Error(t, err)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, "foreground@xxxhdpi", report.Failed[0].Stage)
	assert.Empty(t, report.Written)
}

func TestProcess_Idempotent(t *testing.T) {
	p, dir, _ := setup(t)
	writeSource(t, dir, "foreground.png", artwork())

	_, err := p.Process()
	require.NoError(t, err)
	first, err := os.ReadFile(iconPath(dir, images.DensityXXXHDPI, icons.RoleForeground))
	require.NoError(t, err)

	// Feed the generated icon back in as the source.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "foreground.png"), first, 0o644))
	_, err = p.Process()
	require.NoError(t, err)

	second := images.ToRGBA(readIcon(t, iconPath(dir, images.DensityXXXHDPI, icons.RoleForeground)))
	decoded, _, err := util.ImageFile{Path: "first", Data: first}.Decode()
	require.NoError(t, err)
	original := images.ToRGBA(decoded)

	// PNG stores straight alpha, so a premultiplied round trip may move a
	// channel by one step. Re-padding would move whole edges.
	require.Equal(t, len(original.Pix), len(second.Pix))
	for i := range original.Pix {
		require.InDelta(t, original.Pix[i], second.Pix[i], 1, "byte %d", i)
	}
}

func sheets() (transparent, white *image.RGBA) {
	transparent = image.NewRGBA(image.Rect(0, 0, 300, 200))
	fillRect(transparent, image.Rect(20, 20, 80, 110), red)
	fillRect(transparent, image.Rect(230, 40, 270, 80), color.RGBA{A: 255})
	fillRect(transparent, image.Rect(0, 150, 300, 160), color.RGBA{A: 255})

	white = images.Fill(300, 200, images.White)
	fillRect(white, image.Rect(100, 0, 200, 130), teal)
	return transparent, white
}

func TestSplit(t *testing.T) {
	p, dir, hook := setup(t)
	transparent, white := sheets()
	writeSource(t, dir, "icons 3 transparent.png", transparent)
	writeSource(t, dir, "icons 3 white background.png", white)

	report, err := p.Split()
	require.NoError(t, err)
	assert.Empty(t, report.Skipped)
	assert.Len(t, report.Written, 15)

	for _, d := range images.Densities() {
		for _, role := range icons.Roles() {
			img := readIcon(t, iconPath(dir, d.Label, role))
			assert.Equal(t, image.Rect(0, 0, d.Pixels, d.Pixels), img.Bounds(), "%s %s", role, d.Label)
		}
		bg := images.ToRGBA(readIcon(t, iconPath(dir, d.Label, icons.RoleBackground)))
		assert.Equal(t, teal, bg.RGBAAt(0, 0), "background %s is the sampled colour", d.Label)
	}

	var logged bool
	for _, e := range hook.AllEntries() {
		if strings.Contains(e.Message, "#008080") {
			logged = true
		}
	}
	assert.True(t, logged, "sampled colour is logged")
}

func TestSplit_MissingSheets(t *testing.T) {
	p, _, hook := setup(t)

	report, err := p.Split()
	require.NoError(t, err)
	assert.Len(t, report.Skipped, 2)
	assert.Contains(t, warnings(hook), "icons 3 transparent.png not found, skipping")
}

func TestDensities_FromBase(t *testing.T) {
	p, dir, _ := setup(t)
	writeSource(t, dir, "foreground.png", artwork())
	writeSource(t, dir, "background.png", images.Fill(20, 20, teal))
	writeSource(t, dir, "mono.png", artwork())

	_, err := p.Process()
	require.NoError(t, err)

	mdpi := filepath.Dir(iconPath(dir, images.DensityMDPI, icons.RoleForeground))
	require.NoError(t, os.RemoveAll(mdpi))

	report, err := p.Densities()
	require.NoError(t, err)
	assert.Len(t, report.Written, 12, "three roles at four derived densities")

	for _, role := range icons.Roles() {
		img := readIcon(t, iconPath(dir, images.DensityMDPI, role))
		assert.Equal(t, image.Rect(0, 0, 108, 108), img.Bounds())
	}
}

func TestDensities_RejectsNonSquareBase(t *testing.T) {
	p, dir, _ := setup(t)
	writeSource(t, dir, filepath.Join("app", "src", "main", "res", "mipmap-xxxhdpi", "ic_launcher_foreground.png"),
		images.Fill(400, 432, red))

	report, err := p.Densities()
	require.Error(t, err)
	require.Len(t, report.Failed, 1)
	assert.True(t, errors.Is(report.Failed[0].Err, ErrNotSquare))
	assert.Len(t, report.Skipped, 2)
}

func TestReport_Err(t *testing.T) {
	r := &Report{}
	r.skipped("foreground")
	assert.NoError(t, r.Err(), "skips are not failures")

	r.failed("background", errors.New("boom"))
	r.failed("monochrome", errors.New("bang"))
	assert.EqualError(t, r.Err(), "2 stage(s) failed: background: boom; monochrome: bang")
}
