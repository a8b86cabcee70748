package main

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/Nandanrmenon/flux/config"
)

const (
	panelWidth  = 270
	sliderWidth = 180
)

// drawPanel renders the settings panel and applies edits as a fresh
// snapshot. Components only ever see whole snapshots, never a config
// mid-edit.
func (a *App) drawPanel() {
	x := float32(a.screenW - panelWidth - 10)
	y := float32(10)

	rl.DrawRectangle(int32(x)-10, 0, panelWidth+20, a.screenH, rl.Color{R: 10, G: 14, B: 22, A: 225})
	rl.DrawText("Settings", int32(x), int32(y), 20, rl.RayWhite)
	y += 32

	// Edits accumulate into a clone so an abandoned drag never leaks
	// into the live snapshot.
	var next *config.Config
	pend := func() *config.Config {
		if next == nil {
			next = a.cfg.Clone()
		}
		return next
	}

	rl.DrawText("Mode", int32(x), int32(y), 14, rl.Gray)
	y += 18
	for i, m := range []config.Mode{
		config.ModeNormal, config.ModeDebugNoise, config.ModeDebugFluid,
		config.ModeDebugPressure, config.ModeDebugDivergence,
	} {
		label := m.String()
		if m == a.cfg.Mode {
			label = "> " + label
		}
		bx := x + float32(i%2)*130
		if i%2 == 0 && i > 0 {
			y += 26
		}
		if gui.Button(rl.Rectangle{X: bx, Y: y, Width: 124, Height: 22}, label) {
			pend().Mode = m
		}
	}
	y += 36

	rl.DrawText("Fluid", int32(x), int32(y), 16, rl.LightGray)
	y += 22

	if v := a.slider(x, &y, "Viscosity", float32(a.cfg.Fluid.Viscosity), 0.1, 10, "%.1f"); diff(v, a.cfg.Fluid.Viscosity) {
		pend().Fluid.Viscosity = float64(v)
	}
	if v := a.slider(x, &y, "Dissipation", float32(a.cfg.Fluid.Dissipation), 0.90, 1.0, "%.3f"); diff(v, a.cfg.Fluid.Dissipation) {
		pend().Fluid.Dissipation = float64(v)
	}
	if v := a.slider(x, &y, "Pressure iterations", float32(a.cfg.Fluid.PressureIterations), 4, 60, "%.0f"); int(v) != a.cfg.Fluid.PressureIterations {
		pend().Fluid.PressureIterations = int(v)
	}
	if v := a.slider(x, &y, "Diffusion iterations", float32(a.cfg.Fluid.DiffusionIterations), 0, 10, "%.0f"); int(v) != a.cfg.Fluid.DiffusionIterations {
		pend().Fluid.DiffusionIterations = int(v)
	}

	y += 8
	rl.DrawText("Lines", int32(x), int32(y), 16, rl.LightGray)
	y += 22

	if v := a.slider(x, &y, "Spacing", float32(a.cfg.Lines.Spacing), 8, 48, "%.0f"); diff(v, a.cfg.Lines.Spacing) {
		pend().Lines.Spacing = float64(v)
	}
	if v := a.slider(x, &y, "Length", float32(a.cfg.Lines.Length), 4, 64, "%.0f"); diff(v, a.cfg.Lines.Length) {
		pend().Lines.Length = float64(v)
	}
	if v := a.slider(x, &y, "Width", float32(a.cfg.Lines.Width), 0.5, 6, "%.1f"); diff(v, a.cfg.Lines.Width) {
		pend().Lines.Width = float64(v)
	}
	if v := a.slider(x, &y, "Smoothing", float32(a.cfg.Lines.Smoothing), 0.5, 12, "%.1f"); diff(v, a.cfg.Lines.Smoothing) {
		pend().Lines.Smoothing = float64(v)
	}
	if v := a.slider(x, &y, "Pulse", float32(a.cfg.Lines.PulseAmount), 0, 1, "%.2f"); diff(v, a.cfg.Lines.PulseAmount) {
		pend().Lines.PulseAmount = float64(v)
	}
	if v := a.slider(x, &y, "Opacity scale", float32(a.cfg.Lines.OpacityScale), 0.5, 4, "%.1f"); diff(v, a.cfg.Lines.OpacityScale) {
		pend().Lines.OpacityScale = float64(v)
	}

	y += 8
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: 124, Height: 26}, "Reset defaults") {
		if cfg, err := config.Load(""); err == nil {
			cfg.Mode = a.cfg.Mode
			next = cfg
		}
	}

	if next != nil {
		a.cfg = next
		a.fl.Update(next)
	}
}

// slider draws a labeled slider row and returns the (possibly unchanged)
// value.
func (a *App) slider(x float32, y *float32, label string, value, minVal, maxVal float32, format string) float32 {
	rl.DrawText(label, int32(x), int32(*y), 14, rl.Gray)
	*y += 16
	v := gui.SliderBar(
		rl.Rectangle{X: x, Y: *y, Width: sliderWidth, Height: 18},
		"", "",
		value, minVal, maxVal,
	)
	rl.DrawText(fmt.Sprintf(format, v), int32(x+sliderWidth+10), int32(*y+1), 15, rl.RayWhite)
	*y += 28
	return v
}

// diff reports whether a slider moved, with enough slack to ignore
// float32 round-tripping of the stored value.
func diff(v float32, stored float64) bool {
	d := float64(v) - stored
	if d < 0 {
		d = -d
	}
	return d > 1e-5
}
