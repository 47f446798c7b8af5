// Package config holds the immutable settings of one imgpad run, built from
// command-line flags and an optional YAML file.
package config

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/nvr-ai/imgpad/dispatcher"
	"github.com/nvr-ai/imgpad/fitter"
	"github.com/nvr-ai/imgpad/images"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// DefaultOutputSubdir is appended to the input folder when no output is set.
const DefaultOutputSubdir = "output"

// Config is the full set of run settings.
type Config struct {
	// Input is the folder to scan.
	Input string `yaml:"input"`
	// Output is the folder to write to; empty means <input>/output.
	Output string `yaml:"output"`
	// Size is the canvas; nil means Preset, or 1024x1024 without a preset.
	// A size that was given is validated as is, zero included.
	Size *images.CanvasSize `yaml:"size"`
	// Preset names a canvas from images.Presets.
	Preset string `yaml:"preset"`
	// Filter is the resampling filter name.
	Filter string `yaml:"filter"`
	// Background is the canvas fill as a hex color.
	Background string `yaml:"background"`
	// Workers bounds concurrent fits.
	Workers int `yaml:"workers"`
	// Strict makes per-file failures fail the run.
	Strict bool `yaml:"strict"`
	// Watch keeps processing new files after the first pass.
	Watch bool `yaml:"watch"`
	// LogLevel is debug, info, warn or error.
	LogLevel string `yaml:"log_level"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Filter:     string(images.DefaultFilter),
		Background: "#ffffff",
		Workers:    1,
		LogLevel:   "info",
	}
}

// Load reads a YAML file on top of Default. Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "failed to read config %s", path)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, errors.Wrapf(err, "failed to parse config %s", path)
	}

	return cfg, nil
}

// Canvas resolves the canvas size from Size, Preset and the default.
func (c Config) Canvas() (images.CanvasSize, error) {
	if c.Size != nil {
		return *c.Size, nil
	}
	if c.Preset != "" {
		p, err := images.LookupPreset(c.Preset)
		if err != nil {
			return images.CanvasSize{}, err
		}
		return p.Canvas, nil
	}
	return images.DefaultCanvas, nil
}

// OutputDir returns Output, or the default subfolder of Input.
func (c Config) OutputDir() string {
	if c.Output != "" {
		return c.Output
	}
	return filepath.Join(c.Input, DefaultOutputSubdir)
}

// Level parses LogLevel; an empty value is info.
func (c Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if strings.TrimSpace(c.LogLevel) == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return slog.LevelInfo, errors.Wrapf(err, "log level %q", c.LogLevel)
	}
	return lvl, nil
}

// Validate checks every field and reports the first problem wrapped in
// ErrInvalid.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Input) == "" {
		return errors.Wrap(ErrInvalid, "input folder is required")
	}

	canvas, err := c.Canvas()
	if err != nil {
		return errors.Wrapf(ErrInvalid, "canvas: %v", err)
	}
	if err := canvas.Validate(); err != nil {
		return errors.Wrapf(ErrInvalid, "size must be two positive integers: %v", err)
	}

	if _, err := images.ParseFilter(c.Filter); err != nil {
		return errors.Wrapf(ErrInvalid, "filter: %v", err)
	}
	if _, err := images.ParseHexColor(c.Background); err != nil {
		return errors.Wrapf(ErrInvalid, "background: %v", err)
	}
	if c.Workers < 1 {
		return errors.Wrapf(ErrInvalid, "workers must be at least 1, got %d", c.Workers)
	}
	if _, err := c.Level(); err != nil {
		return errors.Wrapf(ErrInvalid, "%v", err)
	}
	if c.Watch && sameDir(c.Input, c.OutputDir()) {
		return errors.Wrap(ErrInvalid, "watch mode needs an output folder different from the input folder")
	}

	return nil
}

// FitterOptions converts the config for fitter.New. Call Validate first.
func (c Config) FitterOptions() (fitter.Options, error) {
	canvas, err := c.Canvas()
	if err != nil {
		return fitter.Options{}, err
	}
	filter, err := images.ParseFilter(c.Filter)
	if err != nil {
		return fitter.Options{}, err
	}
	bg, err := images.ParseHexColor(c.Background)
	if err != nil {
		return fitter.Options{}, err
	}

	return fitter.Options{Canvas: canvas, Filter: filter, Background: bg}, nil
}

// DispatchOptions converts the config for dispatcher.Run.
func (c Config) DispatchOptions() dispatcher.Options {
	return dispatcher.Options{
		InputDir:  c.Input,
		OutputDir: c.OutputDir(),
		Workers:   c.Workers,
		Strict:    c.Strict,
	}
}

func sameDir(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
