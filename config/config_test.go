package config

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("loading embedded defaults: %v", err)
	}

	if cfg.Screen.Width != 1280 || cfg.Screen.Height != 720 {
		t.Errorf("expected default screen 1280x720, got %dx%d", cfg.Screen.Width, cfg.Screen.Height)
	}
	if cfg.Mode != ModeNormal {
		t.Errorf("expected default mode normal, got %v", cfg.Mode)
	}
	if cfg.Fluid.SimulationRate != 30 {
		t.Errorf("expected simulation rate 30, got %v", cfg.Fluid.SimulationRate)
	}
	if len(cfg.Noise.Channels) != 3 {
		t.Fatalf("expected 3 noise channels, got %d", len(cfg.Noise.Channels))
	}
	if cfg.Noise.Channels[0].Name != "sweep" {
		t.Errorf("expected first channel sweep, got %q", cfg.Noise.Channels[0].Name)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got: %v", err)
	}
}

func TestLoad_ComputesDerived(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("loading embedded defaults: %v", err)
	}

	want := float32(1.0 / 30.0)
	if math.Abs(float64(cfg.Derived.Substep-want)) > 1e-9 {
		t.Errorf("expected substep %v, got %v", want, cfg.Derived.Substep)
	}
	if cfg.Derived.ScreenW32 != 1280 || cfg.Derived.ScreenH32 != 720 {
		t.Errorf("expected derived screen 1280x720, got %vx%v",
			cfg.Derived.ScreenW32, cfg.Derived.ScreenH32)
	}
}

func TestLoad_MergesUserFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	user := `
mode: debug_fluid
fluid:
  viscosity: 3.5
`
	if err := os.WriteFile(path, []byte(user), 0644); err != nil {
		t.Fatalf("writing user config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("loading merged config: %v", err)
	}

	// Overridden fields
	if cfg.Mode != ModeDebugFluid {
		t.Errorf("expected mode debug_fluid, got %v", cfg.Mode)
	}
	if cfg.Fluid.Viscosity != 3.5 {
		t.Errorf("expected viscosity 3.5, got %v", cfg.Fluid.Viscosity)
	}

	// Untouched fields keep their defaults
	if cfg.Fluid.SimulationRate != 30 {
		t.Errorf("expected default simulation rate to survive merge, got %v", cfg.Fluid.SimulationRate)
	}
	if len(cfg.Noise.Channels) != 3 {
		t.Errorf("expected default channels to survive merge, got %d", len(cfg.Noise.Channels))
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
	if !strings.Contains(err.Error(), "reading config file") {
		t.Errorf("expected read error context, got: %v", err)
	}
}

func TestLoad_BadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("fluid: [not a map"), 0644); err != nil {
		t.Fatalf("writing bad config: %v", err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for malformed yaml")
	}
	if !strings.Contains(err.Error(), "parsing config file") {
		t.Errorf("expected parse error context, got: %v", err)
	}
}

func TestLoad_UnknownModeRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("mode: kaleidoscope\n"), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for unknown mode")
	}
	if !strings.Contains(err.Error(), "kaleidoscope") {
		t.Errorf("expected offending mode name in error, got: %v", err)
	}
}

func TestValidate_RejectsBrokenConfigs(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"zero rate", func(c *Config) { c.Fluid.SimulationRate = 0 }, "simulation_rate"},
		{"zero resolution", func(c *Config) { c.Fluid.Resolution = 0 }, "resolution"},
		{"negative viscosity", func(c *Config) { c.Fluid.Viscosity = -1 }, "viscosity"},
		{"negative iterations", func(c *Config) { c.Fluid.PressureIterations = -1 }, "pressure_iterations"},
		{"zero noise size", func(c *Config) { c.Noise.Size = 0 }, "noise.size"},
		{"nan channel", func(c *Config) { c.Noise.Channels[0].Frequency = math.NaN() }, "finite"},
		{"zero spacing", func(c *Config) { c.Lines.Spacing = 0 }, "spacing"},
		{"zero screen", func(c *Config) { c.Screen.Width = 0 }, "screen"},
		{"bad mode", func(c *Config) { c.Mode = Mode(99) }, "mode"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := Load("")
			if err != nil {
				t.Fatalf("loading defaults: %v", err)
			}
			tc.mutate(cfg)

			err = cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("expected error mentioning %q, got: %v", tc.want, err)
			}
		})
	}
}

func TestClone_IndependentChannels(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}

	clone := cfg.Clone()
	clone.Noise.Channels[0].Multiplier = 99
	clone.Fluid.Viscosity = 99

	if cfg.Noise.Channels[0].Multiplier == 99 {
		t.Error("channel edit leaked from clone into original")
	}
	if cfg.Fluid.Viscosity == 99 {
		t.Error("scalar edit leaked from clone into original")
	}
}

func TestWriteYAML_RoundTrips(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}
	cfg.Mode = ModeDebugPressure
	cfg.Fluid.Viscosity = 2.25

	path := filepath.Join(t.TempDir(), "saved.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("writing yaml: %v", err)
	}

	back, err := Load(path)
	if err != nil {
		t.Fatalf("reloading saved config: %v", err)
	}
	if back.Mode != ModeDebugPressure {
		t.Errorf("expected mode debug_pressure after reload, got %v", back.Mode)
	}
	if back.Fluid.Viscosity != 2.25 {
		t.Errorf("expected viscosity 2.25 after reload, got %v", back.Fluid.Viscosity)
	}
}

func TestParseMode_AllNames(t *testing.T) {
	for mode, name := range modeNames {
		got, err := ParseMode(name)
		if err != nil {
			t.Errorf("ParseMode(%q): %v", name, err)
			continue
		}
		if got != mode {
			t.Errorf("ParseMode(%q) = %v, want %v", name, got, mode)
		}
	}

	if _, err := ParseMode("spiral"); err == nil {
		t.Error("expected error for unknown mode name")
	}
}
