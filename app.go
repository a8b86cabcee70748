package main

import (
	"fmt"
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/Nandanrmenon/flux/config"
	"github.com/Nandanrmenon/flux/flux"
	"github.com/Nandanrmenon/flux/telemetry"
)

// App is the interactive shell around the simulation: input, HUD, the
// settings panel, and telemetry output.
type App struct {
	cfg *config.Config
	fl  *flux.Flux
	out *telemetry.OutputManager
	win *telemetry.FrameWindow

	paused bool
	// Timestamp frozen at pause. Feeding it back keeps the clock still
	// while frames keep drawing; the frame-time cap absorbs the jump on
	// resume.
	pauseTimestamp float64

	showPanel bool
	showHUD   bool

	frame        int32
	lastSubsteps uint64
	lastFlush    float64
	logStats     bool

	screenW, screenH int32
}

// NewApp wires the shell around an already-running simulation.
func NewApp(cfg *config.Config, fl *flux.Flux, out *telemetry.OutputManager, logStats bool) *App {
	return &App{
		cfg:      cfg,
		fl:       fl,
		out:      out,
		win:      telemetry.NewFrameWindow(cfg.Telemetry.PerfWindow),
		showHUD:  true,
		logStats: logStats,
		screenW:  int32(cfg.Screen.Width),
		screenH:  int32(cfg.Screen.Height),
	}
}

var modeKeys = map[int32]config.Mode{
	rl.KeyOne:   config.ModeNormal,
	rl.KeyTwo:   config.ModeDebugNoise,
	rl.KeyThree: config.ModeDebugFluid,
	rl.KeyFour:  config.ModeDebugPressure,
	rl.KeyFive:  config.ModeDebugDivergence,
}

// HandleInput processes keyboard input and window resizes.
func (a *App) HandleInput() {
	a.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		a.paused = !a.paused
		if a.paused {
			a.pauseTimestamp = rl.GetTime() * 1000.0
		}
	}

	if rl.IsKeyPressed(rl.KeyTab) {
		a.showPanel = !a.showPanel
	}
	if rl.IsKeyPressed(rl.KeyH) {
		a.showHUD = !a.showHUD
	}

	for key, mode := range modeKeys {
		if rl.IsKeyPressed(key) {
			a.setMode(mode)
		}
	}
}

// handleResize checks for window resize and propagates new dimensions.
func (a *App) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := int32(rl.GetScreenWidth())
	h := int32(rl.GetScreenHeight())
	// Minimize can report a zero-sized surface; skip until restored.
	if w <= 0 || h <= 0 || (w == a.screenW && h == a.screenH) {
		return
	}
	a.screenW = w
	a.screenH = h

	if err := a.fl.Resize(w, h); err != nil {
		slog.Error("resize rejected, keeping previous grid", "width", w, "height", h, "error", err)
	}
}

// Step advances the animation to the current wall clock. While paused the
// frozen timestamp is replayed, so the frame still draws but time stands
// still.
func (a *App) Step() {
	ts := rl.GetTime() * 1000.0
	if a.paused {
		ts = a.pauseTimestamp
	}
	a.fl.Animate(ts)
}

// setMode swaps in a settings snapshot with only the mode changed.
func (a *App) setMode(m config.Mode) {
	if m == a.cfg.Mode {
		return
	}
	next := a.cfg.Clone()
	next.Mode = m
	a.cfg = next
	a.fl.Update(next)
}

// DrawOverlay renders the HUD and the settings panel on top of the scene.
func (a *App) DrawOverlay() {
	if a.showHUD {
		a.drawHUD()
	}
	if a.showPanel {
		a.drawPanel()
	}
}

func (a *App) drawHUD() {
	rl.DrawRectangle(8, 8, 230, 88, rl.Color{R: 10, G: 14, B: 22, A: 200})

	y := int32(14)
	line := func(s string) {
		rl.DrawText(s, 16, y, 14, rl.RayWhite)
		y += 18
	}

	line(fmt.Sprintf("%d fps  %s", rl.GetFPS(), a.cfg.Mode))
	line(fmt.Sprintf("substeps %d", a.fl.Substeps()))
	line(fmt.Sprintf("lines %d", a.fl.Lines()))
	if a.paused {
		line("paused [space]")
	} else {
		line("[space] pause  [tab] settings")
	}
}

// Frame reports how many display frames have completed.
func (a *App) Frame() int32 {
	return a.frame
}

// EndFrame records telemetry for the frame just presented and flushes the
// stats window on the configured interval.
func (a *App) EndFrame() {
	a.frame++

	perf := a.fl.Perf()
	perf.RecordFrame()

	sub := a.fl.Substeps()
	a.win.Record(float64(rl.GetFrameTime())*1000.0, int(sub-a.lastSubsteps))
	a.lastSubsteps = sub

	interval := a.cfg.Telemetry.LogInterval
	if interval <= 0 {
		return
	}
	now := rl.GetTime()
	if now-a.lastFlush < interval {
		return
	}
	a.lastFlush = now

	stats := a.win.Flush(a.frame, now, a.fl.Lines(), a.cfg.Mode.String())
	if a.logStats {
		stats.LogStats()
		perf.Stats().LogStats()
	}
	if err := a.out.WriteFrames(stats); err != nil {
		slog.Warn("frames output failed", "error", err)
	}
	if err := a.out.WritePerf(perf.Stats(), a.frame); err != nil {
		slog.Warn("perf output failed", "error", err)
	}
}
