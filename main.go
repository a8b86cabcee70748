package main

import (
	"errors"
	"flag"
	"log/slog"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/Nandanrmenon/flux/config"
	"github.com/Nandanrmenon/flux/flux"
	"github.com/Nandanrmenon/flux/render"
	"github.com/Nandanrmenon/flux/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	mode := flag.String("mode", "", "Start mode: normal, debug_noise, debug_fluid, debug_pressure, debug_divergence")
	seed := flag.Int64("seed", 0, "Noise seed override (0 = use config)")
	maxFrames := flag.Int("max-frames", 0, "Stop after N frames (0 = unlimited)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	logStats := flag.Bool("log-stats", false, "Output window stats via slog")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	if *mode != "" {
		m, err := config.ParseMode(*mode)
		if err != nil {
			slog.Error("invalid -mode flag", "error", err)
			os.Exit(1)
		}
		cfg.Mode = m
	}
	if *seed != 0 {
		cfg.Noise.Seed = *seed
	}

	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Flux")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	ctx, err := render.NewRaylibContext()
	if err != nil {
		slog.Error("failed to build render context", "error", err)
		os.Exit(1)
	}
	defer ctx.Release()

	fl, err := flux.New(ctx, cfg)
	if err != nil {
		switch {
		case errors.Is(err, flux.ErrCannotReadSettings):
			slog.Error("settings rejected", "error", err)
		case errors.Is(err, flux.ErrCannotRender):
			slog.Error("render setup refused", "error", err)
		default:
			slog.Error("failed to start", "error", err)
		}
		os.Exit(1)
	}

	out, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to set up output directory", "error", err)
		os.Exit(1)
	}
	defer out.Close()

	if err := out.WriteConfig(cfg); err != nil {
		slog.Warn("could not save config snapshot", "error", err)
	}

	app := NewApp(cfg, fl, out, *logStats)

	slog.Info("starting",
		"mode", cfg.Mode.String(),
		"resolution", cfg.Fluid.Resolution,
		"simulation_rate", cfg.Fluid.SimulationRate,
		"seed", cfg.Noise.Seed,
	)

	for !rl.WindowShouldClose() {
		app.HandleInput()

		rl.BeginDrawing()
		app.Step()
		app.DrawOverlay()
		rl.EndDrawing()

		app.EndFrame()

		if *maxFrames > 0 && int(app.Frame()) >= *maxFrames {
			break
		}
	}
}
