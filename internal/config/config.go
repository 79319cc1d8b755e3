// Package config loads the optional snowcard.yaml configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/phanxgames/snowfall"
	"github.com/phanxgames/snowfall/capture"
)

// DefaultFile is read when no path is given.
const DefaultFile = "snowcard.yaml"

// Config represents snowcard.yaml.
type Config struct {
	Window WindowConfig `yaml:"window"`
	Card   CardConfig   `yaml:"card"`
	Snow   SnowConfig   `yaml:"snow"`
	Export ExportConfig `yaml:"export"`
	Log    LogConfig    `yaml:"log"`
	Debug  DebugConfig  `yaml:"debug"`
}

// WindowConfig sizes the window.
type WindowConfig struct {
	Title  string `yaml:"title,omitempty"`
	Width  int    `yaml:"width,omitempty"`
	Height int    `yaml:"height,omitempty"`
	Fixed  bool   `yaml:"fixed,omitempty"`
	TPS    int    `yaml:"tps,omitempty"`
}

// CardConfig selects the artwork and its zoom limits.
type CardConfig struct {
	// Path is the artwork file. Empty uses a placeholder.
	Path     string  `yaml:"path,omitempty"`
	ZoomMin  float64 `yaml:"zoom_min,omitempty"`
	ZoomMax  float64 `yaml:"zoom_max,omitempty"`
	ZoomStep float64 `yaml:"zoom_step,omitempty"`
	// ZoomEase is the transition time in seconds.
	ZoomEase float32 `yaml:"zoom_ease,omitempty"`
}

// SnowConfig tunes the live simulation.
type SnowConfig struct {
	Strategy      string  `yaml:"strategy,omitempty"`
	Reference     string  `yaml:"reference,omitempty"`
	SimWidth      int     `yaml:"sim_width,omitempty"`
	SimHeight     int     `yaml:"sim_height,omitempty"`
	Fog           bool    `yaml:"fog,omitempty"`
	Density       float64 `yaml:"density,omitempty"`
	Wrap          *bool   `yaml:"wrap,omitempty"`
	Exit          string  `yaml:"exit,omitempty"`
	Speed         float64 `yaml:"speed,omitempty"`
	MaxSize       int     `yaml:"max_size,omitempty"`
	MaxSpeed      float64 `yaml:"max_speed,omitempty"`
	DriftSpread   float64 `yaml:"drift_spread,omitempty"`
	ReducedMotion bool    `yaml:"reduced_motion,omitempty"`
	Seed          uint64  `yaml:"seed,omitempty"`
}

// ExportConfig tunes the capture pipeline.
type ExportConfig struct {
	Dir        string        `yaml:"dir,omitempty"`
	FPS        int           `yaml:"fps,omitempty"`
	Duration   time.Duration `yaml:"duration,omitempty"`
	FlakeCount int           `yaml:"flake_count,omitempty"`
	Scale      float64       `yaml:"scale,omitempty"`
	Fog        bool          `yaml:"fog,omitempty"`
	FFmpeg     string        `yaml:"ffmpeg,omitempty"`
	Bitrate    string        `yaml:"bitrate,omitempty"`
}

// LogConfig selects the log level and an optional log file.
type LogConfig struct {
	Level string `yaml:"level,omitempty"`
	File  string `yaml:"file,omitempty"`
}

// DebugConfig enables developer aids.
type DebugConfig struct {
	HUD           bool   `yaml:"hud,omitempty"`
	Timing        bool   `yaml:"timing,omitempty"`
	ScreenshotDir string `yaml:"screenshot_dir,omitempty"`
	Script        string `yaml:"script,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// LoadOptional reads path if present and fills in defaults. A missing file
// is not an error.
func LoadOptional(path string) (*Config, error) {
	if path == "" {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML, applies defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.Window.Title) == "" {
		c.Window.Title = "Merry Christmas"
	}
	if c.Window.Width == 0 {
		c.Window.Width = 960
	}
	if c.Window.Height == 0 {
		c.Window.Height = 640
	}

	zoom := snowfall.DefaultZoomConfig()
	if c.Card.ZoomMin == 0 {
		c.Card.ZoomMin = zoom.Min
	}
	if c.Card.ZoomMax == 0 {
		c.Card.ZoomMax = zoom.Max
	}
	if c.Card.ZoomStep == 0 {
		c.Card.ZoomStep = zoom.Step
	}
	if c.Card.ZoomEase == 0 {
		c.Card.ZoomEase = zoom.Ease
	}

	if c.Snow.Strategy == "" {
		c.Snow.Strategy = snowfall.SingleSurface.String()
	}
	if c.Snow.Reference == "" {
		c.Snow.Reference = "viewport"
	}
	if c.Snow.Density == 0 {
		c.Snow.Density = snowfall.DefaultDensity
	}
	if c.Snow.Wrap == nil {
		wrap := true
		c.Snow.Wrap = &wrap
	}
	if c.Snow.Exit == "" {
		c.Snow.Exit = "respawn"
	}
	if c.Snow.Speed == 0 {
		c.Snow.Speed = 1
	}

	export := capture.DefaultConfig()
	if c.Export.Dir == "" {
		c.Export.Dir = "."
	}
	if c.Export.FPS == 0 {
		c.Export.FPS = export.FPS
	}
	if c.Export.Duration == 0 {
		c.Export.Duration = export.Duration
	}
	if c.Export.FlakeCount == 0 {
		c.Export.FlakeCount = export.FlakeCount
	}
	if c.Export.Scale == 0 {
		c.Export.Scale = 1
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Debug.ScreenshotDir == "" {
		c.Debug.ScreenshotDir = "screenshots"
	}
}

// Validate rejects values no component can work with.
func (c *Config) Validate() error {
	var errs []error
	if c.Window.Width < 0 || c.Window.Height < 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d is negative", c.Window.Width, c.Window.Height))
	}
	if c.Card.ZoomMin <= 0 || c.Card.ZoomMax < c.Card.ZoomMin {
		errs = append(errs, fmt.Errorf("card zoom range [%v, %v] is invalid", c.Card.ZoomMin, c.Card.ZoomMax))
	}
	if _, err := snowfall.ParseStrategy(c.Snow.Strategy); err != nil {
		errs = append(errs, err)
	}
	if _, err := snowfall.ParseReference(c.Snow.Reference); err != nil {
		errs = append(errs, err)
	}
	if _, err := parseExit(c.Snow.Exit); err != nil {
		errs = append(errs, err)
	}
	if c.Snow.Density < 0 {
		errs = append(errs, fmt.Errorf("snow density %v is negative", c.Snow.Density))
	}
	if c.Snow.SimWidth < 0 || c.Snow.SimHeight < 0 {
		errs = append(errs, fmt.Errorf("simulation size %dx%d is negative", c.Snow.SimWidth, c.Snow.SimHeight))
	}
	if c.Export.FPS < 0 || c.Export.FPS > 120 {
		errs = append(errs, fmt.Errorf("export fps %d out of range 1..120", c.Export.FPS))
	}
	if c.Export.Duration < 0 {
		errs = append(errs, fmt.Errorf("export duration %v is negative", c.Export.Duration))
	}
	if c.Export.Scale < 0 {
		errs = append(errs, fmt.Errorf("export scale %v is negative", c.Export.Scale))
	}
	if _, ok := levels[strings.ToUpper(c.Log.Level)]; !ok {
		errs = append(errs, fmt.Errorf("unknown log level %q", c.Log.Level))
	}
	return errors.Join(errs...)
}

// levels lists the accepted log level names.
var levels = map[string]struct{}{
	"NONE": {}, "TRACE": {}, "DEBUG": {}, "INFO": {}, "WARN": {}, "ERROR": {}, "FATAL": {},
}

func parseExit(name string) (snowfall.ExitPolicy, error) {
	switch name {
	case "respawn", "":
		return snowfall.ExitRespawn, nil
	case "drop":
		return snowfall.ExitDrop, nil
	default:
		return 0, fmt.Errorf("unknown exit policy %q", name)
	}
}

// Zoom returns the card zoom settings.
func (c *Config) Zoom() snowfall.ZoomConfig {
	return snowfall.ZoomConfig{
		Min:  c.Card.ZoomMin,
		Max:  c.Card.ZoomMax,
		Step: c.Card.ZoomStep,
		Ease: c.Card.ZoomEase,
	}
}

// Driver returns the animation driver settings. Call after Validate.
func (c *Config) Driver(log zerolog.Logger) snowfall.Config {
	strategy, _ := snowfall.ParseStrategy(c.Snow.Strategy)
	ref, _ := snowfall.ParseReference(c.Snow.Reference)
	exit, _ := parseExit(c.Snow.Exit)
	flake := snowfall.DefaultFlakeConfig()
	if c.Snow.MaxSize > 0 {
		flake.MaxSize = c.Snow.MaxSize
	}
	if c.Snow.MaxSpeed > 0 {
		flake.MaxSpeed = c.Snow.MaxSpeed
	}
	if c.Snow.DriftSpread > 0 {
		flake.DriftSpread = c.Snow.DriftSpread
	}
	return snowfall.Config{
		Width:  c.Window.Width,
		Height: c.Window.Height,
		Surface: snowfall.SurfaceConfig{
			Strategy:  strategy,
			SimWidth:  c.Snow.SimWidth,
			SimHeight: c.Snow.SimHeight,
			Fog:       c.Snow.Fog,
		},
		Field: snowfall.FieldConfig{
			Density: c.Snow.Density,
			Flake:   flake,
			Wrap:    *c.Snow.Wrap,
			Exit:    exit,
			Seed:    c.Snow.Seed,
		},
		Reference:     ref,
		Speed:         c.Snow.Speed,
		ReducedMotion: c.Snow.ReducedMotion,
		ClearColor:    snowfall.Color{R: 0.05, G: 0.09, B: 0.16, A: 1},
		ShowHUD:       c.Debug.HUD,
		ScreenshotDir: c.Debug.ScreenshotDir,
		Logger:        log,
	}
}

// Capture returns the export pipeline settings.
func (c *Config) Capture() capture.Config {
	cfg := capture.DefaultConfig()
	cfg.FPS = c.Export.FPS
	cfg.Duration = c.Export.Duration
	cfg.FlakeCount = c.Export.FlakeCount
	cfg.Fog = c.Export.Fog
	cfg.Seed = c.Snow.Seed
	return cfg
}
