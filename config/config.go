package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/nvr-ai/go-iconkit/icons"
	"github.com/nvr-ai/go-iconkit/images"
)

// Config enumerates every input, output and geometry parameter of a run.
type Config struct {
	// WorkDir is the directory relative paths are resolved against.
	WorkDir string `yaml:"work_dir"`
	// OutputRoot is the Android resource directory holding mipmap-* folders.
	OutputRoot string `yaml:"output_root"`
	// BaseDensity is the density rendered directly from sources; every
	// other density is fanned out from it.
	BaseDensity images.DensityLabel `yaml:"base_density"`
	// TargetSize is the pixel size of the base density rendering.
	TargetSize int `yaml:"target_size"`
	// SafeZone is the fraction of the canvas the artwork may occupy.
	SafeZone float64 `yaml:"safe_zone"`
	// Resampler names the resampling filter, see images.ResamplerNames.
	Resampler string           `yaml:"resampler"`
	Sources   SourcesConfig    `yaml:"sources"`
	Sheets    []SheetConfig    `yaml:"sheets"`
	Densities []images.Density `yaml:"densities"`
	Validator ValidatorConfig  `yaml:"validator"`
	Watch     WatchConfig      `yaml:"watch"`
}

// SourcesConfig names one source image per icon role.
type SourcesConfig struct {
	Foreground string `yaml:"foreground"`
	Background string `yaml:"background"`
	Monochrome string `yaml:"monochrome"`
}

// SheetConfig describes one composite icon sheet.
type SheetConfig struct {
	Path        string             `yaml:"path"`
	Columns     int                `yaml:"columns"`
	TopFraction float64            `yaml:"top_fraction"`
	Extract     []icons.Extraction `yaml:"extract"`
}

// ValidatorConfig locates the CI workflow files to validate.
type ValidatorConfig struct {
	Dir     string `yaml:"dir"`
	Pattern string `yaml:"pattern"`
}

// WatchConfig tunes the watch command.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// Default returns the configuration of a standard Android project: sources
// in the working directory, resources under app/src/main/res.
func Default() *Config {
	layout := icons.DefaultLayout()
	return &Config{
		WorkDir:     ".",
		OutputRoot:  filepath.Join("app", "src", "main", "res"),
		BaseDensity: images.DensityXXXHDPI,
		TargetSize:  432,
		SafeZone:    icons.DefaultSafeZone,
		Resampler:   images.DefaultResampler,
		Sources: SourcesConfig{
			Foreground: "foreground.png",
			Background: "background.png",
			Monochrome: "mono.png",
		},
		Sheets: []SheetConfig{
			{
				Path:        "icons 3 transparent.png",
				Columns:     icons.DefaultColumns,
				TopFraction: icons.DefaultTopFraction,
				Extract:     []icons.Extraction{layout[0], layout[2]},
			},
			{
				Path:        "icons 3 white background.png",
				Columns:     icons.DefaultColumns,
				TopFraction: icons.DefaultTopFraction,
				Extract:     []icons.Extraction{layout[1]},
			},
		},
		Densities: images.Densities(),
		Validator: ValidatorConfig{
			Dir:     filepath.Join(".github", "workflows"),
			Pattern: "gemini-*.yml",
		},
		Watch: WatchConfig{Debounce: 500 * time.Millisecond},
	}
}

// Load reads a YAML file and overlays it on Default. Keys missing from the
// file keep their default values; lists given in the file replace the
// default lists.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return cfg, nil
}

// Validate checks the geometry and layout for values no run could honour.
func (c *Config) Validate() error {
	if c.OutputRoot == "" {
		return errors.New("output_root is required")
	}
	if c.TargetSize <= 0 {
		return errors.Errorf("target_size must be positive, got %d", c.TargetSize)
	}
	if c.SafeZone <= 0 || c.SafeZone > 1 {
		return errors.Errorf("safe_zone must be in (0, 1], got %g", c.SafeZone)
	}
	if _, ok := images.ResamplerByName(c.Resampler); !ok {
		return errors.Errorf("unknown resampler %q, expected one of %v", c.Resampler, images.ResamplerNames())
	}

	if len(c.Densities) == 0 {
		return errors.New("densities must not be empty")
	}
	seen := make(map[images.DensityLabel]bool, len(c.Densities))
	for _, d := range c.Densities {
		if d.Label == "" {
			return errors.New("density label is required")
		}
		if seen[d.Label] {
			return errors.Errorf("duplicate density %q", d.Label)
		}
		seen[d.Label] = true
		if d.Pixels <= 0 {
			return errors.Errorf("density %q must have positive pixels, got %d", d.Label, d.Pixels)
		}
	}
	if !seen[c.BaseDensity] {
		return errors.Errorf("base_density %q is not in densities", c.BaseDensity)
	}
	if base := c.Base(); base.Pixels != c.TargetSize {
		return errors.Errorf("target_size %d does not match base density %s", c.TargetSize, base)
	}

	for i, s := range c.Sheets {
		if err := s.validate(); err != nil {
			return errors.Wrapf(err, "sheets[%d]", i)
		}
	}
	return nil
}

func (s SheetConfig) validate() error {
	if s.Path == "" {
		return errors.New("path is required")
	}
	if s.Columns < 1 {
		return errors.Errorf("columns must be at least 1, got %d", s.Columns)
	}
	if s.TopFraction <= 0 || s.TopFraction > 1 {
		return errors.Errorf("top_fraction must be in (0, 1], got %g", s.TopFraction)
	}
	for j, e := range s.Extract {
		if !e.Role.Valid() {
			return errors.Errorf("extract[%d]: unknown role %q", j, e.Role)
		}
		if !e.Strategy.Valid() {
			return errors.Errorf("extract[%d]: unknown strategy %q", j, e.Strategy)
		}
		if e.Column < 0 || e.Column >= s.Columns {
			return errors.Errorf("extract[%d]: column %d outside 0..%d", j, e.Column, s.Columns-1)
		}
	}
	return nil
}

// Path resolves p against WorkDir. Absolute paths are returned unchanged.
func (c *Config) Path(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.WorkDir, p)
}

// DensityDir returns the output directory of density d.
func (c *Config) DensityDir(d images.Density) string {
	return c.Path(filepath.Join(c.OutputRoot, d.Dir()))
}

// Base returns the base density entry. Validate guarantees it exists.
func (c *Config) Base() images.Density {
	d, _ := images.DensityByLabel(c.Densities, c.BaseDensity)
	return d
}

// SourcePath returns the configured source of role, or "" if none is set.
func (c *Config) SourcePath(role icons.Role) string {
	switch role {
	case icons.RoleForeground:
		return c.Sources.Foreground
	case icons.RoleBackground:
		return c.Sources.Background
	case icons.RoleMonochrome:
		return c.Sources.Monochrome
	}
	return ""
}
