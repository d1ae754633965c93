// Package pipeline runs the icon generation steps against the file system:
// it reads sources, hands them to the icons package and writes every density
// of every role into the Android resource tree.
package pipeline

import (
	"fmt"
	"image"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/nvr-ai/go-iconkit/config"
	"github.com/nvr-ai/go-iconkit/icons"
	"github.com/nvr-ai/go-iconkit/images"
	"github.com/nvr-ai/go-iconkit/util"
)

// ErrNotSquare is returned when a base icon read back from disk for fan-out
// is not square.
var ErrNotSquare = errors.New("base icon is not square")

// Pipeline generates adaptive icon resources for one configuration.
type Pipeline struct {
	cfg  *config.Config
	norm *icons.Normalizer
	log  logrus.FieldLogger
}

// New validates cfg and builds a Pipeline logging to log.
func New(cfg *config.Config, log logrus.FieldLogger) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	resample, ok := images.ResamplerByName(cfg.Resampler)
	if !ok {
		return nil, errors.Errorf("unknown resampler %q", cfg.Resampler)
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Pipeline{
		cfg:  cfg,
		norm: icons.NewNormalizer(cfg.SafeZone, resample),
		log:  log,
	}, nil
}

// Process renders one icon per role from the configured source images.
// Foreground and monochrome sources are cropped square, trimmed and padded
// into the safe zone; the background is flattened and padded square. Each
// result is written at the base density and fanned out to the others.
//
// A missing source is logged as a warning and skipped. Decode, content and
// write failures fail their role only; the returned error summarises them.
func (p *Pipeline) Process() (*Report, error) {
	report := &Report{}
	size := p.cfg.TargetSize

	for i, role := range icons.Roles() {
		log := p.log.WithField("role", role)
		log.Infof("%d. Processing %s...", i+1, role)

		src := p.cfg.SourcePath(role)
		if src == "" {
			log.Warn("no source configured, skipping")
			report.skipped(string(role))
			continue
		}

		img, ok := p.read(report, log, string(role), src)
		if !ok {
			continue
		}

		var (
			icon *image.RGBA
			err  error
		)
		if role.Opaque() {
			icon, err = p.norm.NormalizeBackground(img, size)
		} else {
			icon, err = p.norm.Normalize(img, size)
		}
		if err != nil {
			p.fail(report, log, string(role), errors.Wrap(err, src))
			continue
		}

		p.emit(report, log, role, icon, true)
	}

	return report, report.Err()
}

// Split extracts icons from the configured composite sheets. Every sheet
// lists the columns it contributes and the role each one renders.
func (p *Pipeline) Split() (*Report, error) {
	report := &Report{}
	size := p.cfg.TargetSize

	for _, sc := range p.cfg.Sheets {
		log := p.log.WithField("sheet", sc.Path)
		log.Infof("Splitting %s...", sc.Path)

		stage := "sheet " + sc.Path
		img, ok := p.read(report, log, stage, sc.Path)
		if !ok {
			continue
		}

		sheet, err := icons.NewSheet(img, sc.Columns, sc.TopFraction)
		if err != nil {
			p.fail(report, log, stage, err)
			continue
		}
		log.Debugf("columns %dx%d", sheet.ColumnWidth(), sheet.CropHeight())

		for _, e := range sc.Extract {
			elog := log.WithField("role", e.Role)
			icon, err := sheet.Extract(p.norm, e, size)
			if err != nil {
				p.fail(report, elog, string(e.Role), errors.Wrapf(err, "%s column %d", sc.Path, e.Column))
				continue
			}
			if e.Strategy == icons.StrategySampleColor {
				c, _ := sheet.SampleColor(e.Column)
				elog.Infof("background colour #%02x%02x%02x", c.R, c.G, c.B)
			}
			p.emit(report, elog, e.Role, icon, true)
		}
	}

	return report, report.Err()
}

// Densities re-derives every non-base density from the icons already present
// in the base density directory.
func (p *Pipeline) Densities() (*Report, error) {
	report := &Report{}
	baseDir := p.cfg.DensityDir(p.cfg.Base())

	for _, role := range icons.Roles() {
		log := p.log.WithField("role", role)
		img, ok := p.readAbs(report, log, string(role), filepath.Join(baseDir, role.FileName()))
		if !ok {
			continue
		}
		if b := img.Bounds(); b.Dx() != b.Dy() {
			p.fail(report, log, string(role), errors.Wrapf(ErrNotSquare, "%dx%d", b.Dx(), b.Dy()))
			continue
		}
		p.emit(report, log, role, img, false)
	}

	return report, report.Err()
}

// read loads a source relative to the working directory.
func (p *Pipeline) read(report *Report, log logrus.FieldLogger, stage, path string) (image.Image, bool) {
	return p.readAbs(report, log, stage, p.cfg.Path(path))
}

func (p *Pipeline) readAbs(report *Report, log logrus.FieldLogger, stage, path string) (image.Image, bool) {
	img, format, err := util.ReadImage(path)
	switch {
	case errors.Is(err, util.ErrSourceNotFound):
		log.WithField("path", path).Warnf("%s not found, skipping", filepath.Base(path))
		report.skipped(stage)
		return nil, false
	case err != nil:
		p.fail(report, log, stage, err)
		return nil, false
	}
	b := img.Bounds()
	log.WithField("path", path).Debugf("loaded %s %dx%d %s", format, b.Dx(), b.Dy(), images.ModeOf(img))
	if format == images.FormatJPEG {
		log.WithField("path", path).Warnf("%s is a JPEG without transparency, its full frame is treated as content", filepath.Base(path))
	}
	return img, true
}

// emit writes icon at the base density (when withBase is set) and every
// derived density.
func (p *Pipeline) emit(report *Report, log logrus.FieldLogger, role icons.Role, icon image.Image, withBase bool) {
	base := p.cfg.Base()
	if withBase {
		if !p.write(report, log, role, base, icon) {
			return
		}
	}

	derived := images.Derived(p.cfg.Densities, base.Label)
	scaled := p.norm.FanOut(icon, derived)
	for _, d := range derived {
		if !p.write(report, log, role, d, scaled[d.Label]) {
			return
		}
	}
	log.Infof("created %s for %d densities", role.FileName(), len(derived)+boolToInt(withBase))
}

func (p *Pipeline) write(report *Report, log logrus.FieldLogger, role icons.Role, d images.Density, img image.Image) bool {
	path := filepath.Join(p.cfg.DensityDir(d), role.FileName())
	if err := util.WriteImage(path, img); err != nil {
		p.fail(report, log, fmt.Sprintf("%s@%s", role, d.Label), err)
		return false
	}
	b := img.Bounds()
	log.WithField("density", d.Label).Debugf("wrote %s (%dx%d)", path, b.Dx(), b.Dy())
	report.written(path)
	return true
}

func (p *Pipeline) fail(report *Report, log logrus.FieldLogger, stage string, err error) {
	log.Errorf("%s failed: %v", stage, err)
	report.failed(stage, err)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
