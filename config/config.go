// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters. A loaded Config is
// treated as an immutable snapshot: runtime changes go through Clone and a
// wholesale swap, never in-place mutation.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Mode      Mode            `yaml:"mode"`
	Fluid     FluidConfig     `yaml:"fluid"`
	Noise     NoiseConfig     `yaml:"noise"`
	Lines     LinesConfig     `yaml:"lines"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// FluidConfig holds solver parameters.
type FluidConfig struct {
	SimulationRate      float64 `yaml:"simulation_rate"`      // Substeps per second; fixed substep = 1/rate
	Resolution          int     `yaml:"resolution"`           // Solver grid size (square), independent of display
	Viscosity           float64 `yaml:"viscosity"`            // Diffusion strength
	DiffusionIterations int     `yaml:"diffusion_iterations"` // Jacobi iterations for the viscosity solve
	PressureIterations  int     `yaml:"pressure_iterations"`  // Jacobi iterations for the pressure solve
	Dissipation         float64 `yaml:"dissipation"`          // Per-substep velocity retention (1 = none lost)
}

// NoiseConfig holds the forcing field parameters.
type NoiseConfig struct {
	Size     int            `yaml:"size"` // Noise texture size (square)
	Seed     int64          `yaml:"seed"`
	Channels []NoiseChannel `yaml:"channels"`
}

// NoiseChannel defines one forcing channel. Channels are sampled
// independently and blended into velocity with their own weight.
type NoiseChannel struct {
	Name            string  `yaml:"name"`
	Frequency       float64 `yaml:"frequency"`        // Spatial frequency across the texture
	Amplitude       float64 `yaml:"amplitude"`        // Value scale written into the texture
	Offset          float64 `yaml:"offset"`           // Constant phase offset (decorrelates channels)
	OffsetIncrement float64 `yaml:"offset_increment"` // Phase advance per second of elapsed time
	Multiplier      float64 `yaml:"multiplier"`       // Blend weight into velocity
}

// LinesConfig holds the line field visual parameters.
type LinesConfig struct {
	Spacing        float64   `yaml:"spacing"`         // Grid spacing in logical pixels
	Length         float64   `yaml:"length"`          // Pixels of line per unit of velocity
	Width          float64   `yaml:"width"`           // Stroke width in logical pixels
	Smoothing      float64   `yaml:"smoothing"`       // Spring rate toward the sampled velocity (per second)
	EndpointRadius float64   `yaml:"endpoint_radius"` // Tip dot radius in logical pixels
	Color          [3]uint8  `yaml:"color"`           // Base line color (RGB)
	PulseAmount    float64   `yaml:"pulse_amount"`    // 0..1 shimmer depth applied over elapsed time
	OpacityScale   float64   `yaml:"opacity_scale"`   // Velocity magnitude mapped to full opacity
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	PerfWindow  int     `yaml:"perf_window"`  // Frames in the perf rolling window
	LogInterval float64 `yaml:"log_interval"` // Seconds between stats log lines (0 = off)
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	ScreenW32 float32 // Screen.Width as float32
	ScreenH32 float32 // Screen.Height as float32
	Substep   float32 // 1 / Fluid.SimulationRate
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if
// path is empty. Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	// Compute derived values
	cfg.computeDerived()

	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)
	if c.Fluid.SimulationRate > 0 {
		c.Derived.Substep = float32(1.0 / c.Fluid.SimulationRate)
	}
}

// Validate checks that the loaded parameters describe a runnable simulation.
func (c *Config) Validate() error {
	if c.Screen.Width <= 0 || c.Screen.Height <= 0 {
		return fmt.Errorf("screen size must be positive, got %dx%d", c.Screen.Width, c.Screen.Height)
	}
	if c.Fluid.SimulationRate <= 0 {
		return fmt.Errorf("fluid.simulation_rate must be positive, got %v", c.Fluid.SimulationRate)
	}
	if c.Fluid.Resolution <= 0 {
		return fmt.Errorf("fluid.resolution must be positive, got %d", c.Fluid.Resolution)
	}
	if c.Fluid.DiffusionIterations < 0 {
		return fmt.Errorf("fluid.diffusion_iterations must not be negative, got %d", c.Fluid.DiffusionIterations)
	}
	if c.Fluid.PressureIterations < 0 {
		return fmt.Errorf("fluid.pressure_iterations must not be negative, got %d", c.Fluid.PressureIterations)
	}
	if c.Fluid.Viscosity < 0 {
		return fmt.Errorf("fluid.viscosity must not be negative, got %v", c.Fluid.Viscosity)
	}
	if c.Noise.Size <= 0 {
		return fmt.Errorf("noise.size must be positive, got %d", c.Noise.Size)
	}
	for i, ch := range c.Noise.Channels {
		for name, v := range map[string]float64{
			"frequency":        ch.Frequency,
			"amplitude":        ch.Amplitude,
			"offset":           ch.Offset,
			"offset_increment": ch.OffsetIncrement,
			"multiplier":       ch.Multiplier,
		} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("noise channel %d (%s): %s must be finite, got %v", i, ch.Name, name, v)
			}
		}
	}
	if c.Lines.Spacing <= 0 {
		return fmt.Errorf("lines.spacing must be positive, got %v", c.Lines.Spacing)
	}
	if c.Lines.Smoothing < 0 {
		return fmt.Errorf("lines.smoothing must not be negative, got %v", c.Lines.Smoothing)
	}
	if c.Mode < ModeNormal || c.Mode > ModeDebugDivergence {
		return fmt.Errorf("unknown mode %d", c.Mode)
	}
	return nil
}

// Clone returns a copy safe to modify independently of the receiver. The
// noise channel slice is copied so per-channel edits do not leak into the
// snapshot other components still hold.
func (c *Config) Clone() *Config {
	next := *c
	next.Noise.Channels = make([]NoiseChannel, len(c.Noise.Channels))
	copy(next.Noise.Channels, c.Noise.Channels)
	return &next
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
