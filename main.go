package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/nvr-ai/go-iconkit/config"
	"github.com/nvr-ai/go-iconkit/icons"
	"github.com/nvr-ai/go-iconkit/pipeline"
	"github.com/nvr-ai/go-iconkit/validator"
	"github.com/nvr-ai/go-iconkit/watcher"
)

const banner = "============================================================"

// Commands
const (
	cmdProcess   = "process"
	cmdSplit     = "split"
	cmdDensities = "densities"
	cmdValidate  = "validate"
	cmdWatch     = "watch"
)

func main() {
	var (
		configPath string
		workDir    string
		logLevel   string
	)
	flag.StringVar(&configPath, "config", "", "Path to a YAML config file overlaying the defaults")
	flag.StringVar(&workDir, "dir", "", "Working directory holding the source images (overrides work_dir)")
	flag.StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn or error")
	flag.Usage = usage
	flag.Parse()

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %v", err)
	}
	logrus.SetLevel(level)

	cfg, err := loadConfig(configPath, workDir)
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	command := cmdProcess
	if flag.NArg() > 0 {
		command = flag.Arg(0)
	}

	os.Exit(run(command, cfg, logrus.StandardLogger()))
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), `Usage: %s [flags] [command]

Commands:
  process    normalize foreground.png, background.png and mono.png (default)
  split      extract icons from the composite icon sheets
  densities  re-derive every density from the base density directory
  validate   check the Gemini workflow settings
  watch      run process, then re-run on every source change

Flags:
`, filepath.Base(os.Args[0]))
	flag.PrintDefaults()
}

// loadConfig returns the built-in defaults, or the file at path overlaid on
// them. A non-empty dir replaces the configured working directory.
func loadConfig(path, dir string) (*config.Config, error) {
	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}
	if dir != "" {
		cfg.WorkDir = dir
	}
	return cfg, nil
}

// run executes command and returns the process exit code.
func run(command string, cfg *config.Config, log *logrus.Logger) int {
	switch command {
	case cmdValidate:
		return validate(cfg, log)
	case cmdProcess, cmdSplit, cmdDensities, cmdWatch:
	default:
		log.Errorf("Unknown command %q", command)
		flag.Usage()
		return 2
	}

	p, err := pipeline.New(cfg, log)
	if err != nil {
		log.Errorf("%v", err)
		return 1
	}

	if command == cmdWatch {
		return watch(cfg, p, log)
	}
	return runStage(command, cfg, p, log)
}

func runStage(command string, cfg *config.Config, p *pipeline.Pipeline, log logrus.FieldLogger) int {
	log.Info(banner)
	log.Infof("Android adaptive icons: %s", command)
	log.Info(banner)
	log.Debugf("resampler %s, safe zone %.2f, densities %s", cfg.Resampler, cfg.SafeZone, densityNames(cfg))

	var (
		report *pipeline.Report
		err    error
	)
	switch command {
	case cmdSplit:
		report, err = p.Split()
	case cmdDensities:
		report, err = p.Densities()
	default:
		report, err = p.Process()
	}

	summarize(cfg, report, log)
	if err != nil {
		log.Errorf("%v", err)
		return 1
	}
	return 0
}

// summarize logs the closing banner and follow-up hints of a run.
func summarize(cfg *config.Config, report *pipeline.Report, log logrus.FieldLogger) {
	log.Info(banner)
	switch {
	case len(report.Failed) > 0:
		log.Errorf("Finished with %d failure(s), %d file(s) written", len(report.Failed), len(report.Written))
	case len(report.Written) == 0:
		log.Warn("Nothing written: no source images found")
	default:
		log.Infof("Done! %d icon file(s) created in %s", len(report.Written), cfg.Path(filepath.Join(cfg.OutputRoot, "mipmap-*")))
	}
	if len(report.Skipped) > 0 {
		log.Warnf("Skipped: %s", strings.Join(report.Skipped, ", "))
	}
	log.Info(banner)

	if len(report.Written) == 0 {
		return
	}
	log.Info("Next steps:")
	log.Infof("1. Verify the icons look correct in %s/", cfg.Base().Dir())
	log.Info("2. Reference the layers, including the monochrome one, from ic_launcher.xml and ic_launcher_round.xml")
	log.Info("3. Build and test: ./gradlew assembleDebug, then check the launcher icons on a device")
}

func validate(cfg *config.Config, log *logrus.Logger) int {
	log.Info("Gemini CLI Workflow Validator")
	log.Info(banner)

	result, err := validator.ValidateDir(cfg.Path(cfg.Validator.Dir), cfg.Validator.Pattern)
	if err != nil {
		log.Errorf("%v", err)
		return 1
	}
	result.Log(log)
	if !result.Valid() {
		return 1
	}
	return 0
}

// watch runs the process stage once and then again whenever a source image
// changes. A changed sheet re-runs the split stage instead. It returns when
// the process receives SIGINT or SIGTERM.
func watch(cfg *config.Config, p *pipeline.Pipeline, log *logrus.Logger) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sheets := make(map[string]bool, len(cfg.Sheets))
	var files []string
	for _, role := range icons.Roles() {
		if src := cfg.SourcePath(role); src != "" {
			files = append(files, cfg.Path(src))
		}
	}
	for _, s := range cfg.Sheets {
		path := cfg.Path(s.Path)
		files = append(files, path)
		if abs, err := filepath.Abs(path); err == nil {
			sheets[abs] = true
		}
	}

	w, err := watcher.New(files, cfg.Watch.Debounce, log)
	if err != nil {
		log.Errorf("%v", err)
		return 1
	}
	defer w.Close()

	runStage(cmdProcess, cfg, p, log)

	err = w.Run(ctx, func(path string) {
		log.WithField("path", path).Infof("%s changed", filepath.Base(path))
		command := cmdProcess
		if sheets[path] {
			command = cmdSplit
		}
		runStage(command, cfg, p, log)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Errorf("Watch stopped: %v", err)
		return 1
	}
	log.Infof("Stopped watching, output in %s", cfg.Path(cfg.OutputRoot))
	return 0
}

func densityNames(cfg *config.Config) string {
	names := make([]string, len(cfg.Densities))
	for i, d := range cfg.Densities {
		names[i] = string(d.Label)
	}
	return strings.Join(names, ", ")
}
