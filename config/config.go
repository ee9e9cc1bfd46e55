package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/tangent-animation/embree/log"
	"github.com/tangent-animation/embree/renderer"
	"github.com/tangent-animation/embree/tracer"
)

var (
	ErrUnknownScheduler = errors.New("config: unknown block scheduler")
	ErrInvalidFrameSize = errors.New("config: frame width and height must be non-zero")
	ErrInvalidTime      = errors.New("config: time must be in the [0, 1] range")
	ErrInvalidAORadius  = errors.New("config: ao radius must not be negative")
)

// Render settings. Every field can also be overridden from the command line.
type Render struct {
	Width     uint32  `toml:"width"`
	Height    uint32  `toml:"height"`
	Mode      string  `toml:"mode"`
	Time      float32 `toml:"time"`
	AOSamples uint32  `toml:"ao_samples"`
	AORadius  float32 `toml:"ao_radius"`

	// Number of cpu tracers; zero uses one per cpu.
	Tracers uint32 `toml:"tracers"`

	// Either "naive" or "perfect".
	Scheduler string `toml:"scheduler"`

	// Output image file.
	Out string `toml:"out"`
}

type Config struct {
	LogLevel string `toml:"log_level"`
	Render   Render `toml:"render"`
}

// Get the default configuration.
func Default() Config {
	return Config{
		LogLevel: "notice",
		Render: Render{
			Width:     512,
			Height:    512,
			Mode:      "eyelight",
			AOSamples: 16,
			Scheduler: "naive",
			Out:       "frame.png",
		},
	}
}

// Load the configuration file at path on top of the defaults and validate
// the result.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	defer f.Close()

	cfg, err := Decode(f)
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Decode a TOML document on top of the defaults and validate the result.
// Unknown keys are rejected.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Check that all settings hold usable values.
func (c Config) Validate() error {
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := c.RenderOptions(); err != nil {
		return err
	}
	if _, err := c.BlockScheduler(); err != nil {
		return err
	}
	return nil
}

// Get the log level.
func (c Config) Level() log.Level {
	level, _ := log.ParseLevel(c.LogLevel)
	return level
}

// Convert the render settings to renderer options.
func (c Config) RenderOptions() (renderer.Options, error) {
	rc := c.Render
	if rc.Width == 0 || rc.Height == 0 {
		return renderer.Options{}, ErrInvalidFrameSize
	}
	if !(rc.Time >= 0 && rc.Time <= 1) {
		return renderer.Options{}, ErrInvalidTime
	}
	if rc.AORadius < 0 {
		return renderer.Options{}, ErrInvalidAORadius
	}

	mode, err := renderer.ParseMode(rc.Mode)
	if err != nil {
		return renderer.Options{}, fmt.Errorf("config: %w", err)
	}

	return renderer.Options{
		FrameW:     rc.Width,
		FrameH:     rc.Height,
		Mode:       mode,
		Time:       rc.Time,
		AOSamples:  rc.AOSamples,
		AORadius:   rc.AORadius,
		NumTracers: rc.Tracers,
	}, nil
}

// Create the configured block scheduler.
func (c Config) BlockScheduler() (tracer.BlockScheduler, error) {
	switch c.Render.Scheduler {
	case "", "naive":
		return tracer.NaiveScheduler(), nil
	case "perfect":
		return tracer.PerfectScheduler(), nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownScheduler, c.Render.Scheduler)
}
