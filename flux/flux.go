// Package flux orchestrates the animation: it owns the simulation clock,
// drains accumulated frame time as fixed solver substeps, and routes the
// resulting fields to the line drawer or a debug view.
package flux

import (
	"fmt"
	"image/color"

	"github.com/Nandanrmenon/flux/config"
	"github.com/Nandanrmenon/flux/drawer"
	"github.com/Nandanrmenon/flux/fluid"
	"github.com/Nandanrmenon/flux/noise"
	"github.com/Nandanrmenon/flux/render"
	"github.com/Nandanrmenon/flux/telemetry"
)

const (
	// ElapsedTimeHorizon is where the animation clock wraps, in seconds.
	// The clock subtracts the horizon instead of resetting so animations
	// keyed on it slide rather than snap.
	ElapsedTimeHorizon float32 = 1000.0

	// MaxFrameTime caps how much simulated time a single frame may add,
	// in seconds. Stalls and suspends advance the animation by at most
	// this much instead of unwinding a backlog of substeps.
	MaxFrameTime float32 = 0.1
)

// FluidSolver advances the velocity field by fixed substeps and exposes
// the solver textures for forcing, line placement, and debug views.
type FluidSolver interface {
	AdvectForward(dt float32)
	AdvectReverse(dt float32)
	AdjustAdvection(dt float32)
	Diffuse(dt float32)
	CalculateDivergence()
	SolvePressure()
	SubtractGradient()
	Velocity() render.Texture
	VelocityBuffers() *render.DoubleBuffer
	Pressure() render.Texture
	Divergence() render.Texture
	Update(s *config.Config)
}

// ForcingField produces the time-varying forcing and folds it into the
// velocity field once per substep.
type ForcingField interface {
	Generate(elapsed float32)
	BlendInto(velocity *render.DoubleBuffer, dt float32)
	Texture() render.Texture
	Update(channels []config.NoiseChannel)
}

// LineDrawer projects the velocity field onto the display-space line grid
// and renders it.
type LineDrawer interface {
	PlaceLines(velocity render.Texture, elapsed, timestep float32)
	DrawLines()
	DrawEndpoints()
	DrawTexture(t render.Texture)
	Resize(width, height int32) error
	Update(s *config.Config)
	Count() int
}

// stage is one named step of the fixed-timestep pipeline.
type stage struct {
	name string
	run  func(dt float32)
}

// Flux drives the simulation. Construct with New, then call Animate once
// per display frame with the current timestamp.
type Flux struct {
	settings *config.Config

	ctx    render.Context
	fluid  FluidSolver
	drawer LineDrawer
	noise  ForcingField

	stages []stage
	perf   *telemetry.PerfCollector

	// Clock state. elapsedTime wraps at ElapsedTimeHorizon; frameTime
	// accumulates real time and is drained in fluidTimestep substeps.
	lastTimestamp float64
	elapsedTime   float32
	frameTime     float32
	fluidTimestep float32
	maxFrameTime  float32

	substeps uint64
}

// New validates the settings snapshot and builds the solver, the drawer,
// and the forcing generator, in that order. The first failure aborts
// construction and is reported as a Problem.
func New(ctx render.Context, s *config.Config) (*Flux, error) {
	if err := s.Validate(); err != nil {
		return nil, cannotReadSettings(err)
	}

	fl, err := fluid.New(ctx, s)
	if err != nil {
		return nil, cannotRender(fmt.Errorf("building fluid solver: %w", err))
	}

	dr, err := drawer.New(ctx, s)
	if err != nil {
		return nil, cannotRender(fmt.Errorf("building line drawer: %w", err))
	}

	builder := noise.NewBuilder(ctx, s.Noise.Size, s.Noise.Size, s.Noise.Seed)
	for _, ch := range s.Noise.Channels {
		builder.AddChannel(ch)
	}
	gen, err := builder.Build()
	if err != nil {
		return nil, cannotRender(fmt.Errorf("building noise generator: %w", err))
	}

	return newFlux(ctx, s, fl, dr, gen), nil
}

// newFlux assembles a Flux from already-built components.
func newFlux(ctx render.Context, s *config.Config, fl FluidSolver, dr LineDrawer, gen ForcingField) *Flux {
	f := &Flux{
		settings:      s,
		ctx:           ctx,
		fluid:         fl,
		drawer:        dr,
		noise:         gen,
		fluidTimestep: 1.0 / float32(s.Fluid.SimulationRate),
		maxFrameTime:  MaxFrameTime,
		perf:          telemetry.NewPerfCollector(s.Telemetry.PerfWindow),
	}
	f.stages = []stage{
		{telemetry.PhaseGenerateNoise, func(dt float32) { f.noise.Generate(f.elapsedTime) }},
		{telemetry.PhaseAdvectForward, f.fluid.AdvectForward},
		{telemetry.PhaseAdvectReverse, f.fluid.AdvectReverse},
		{telemetry.PhaseAdjustAdvection, f.fluid.AdjustAdvection},
		{telemetry.PhaseDiffuse, f.fluid.Diffuse},
		{telemetry.PhaseBlendNoise, func(dt float32) { f.noise.BlendInto(f.fluid.VelocityBuffers(), dt) }},
		{telemetry.PhaseDivergence, func(dt float32) { f.fluid.CalculateDivergence() }},
		{telemetry.PhaseSolvePressure, func(dt float32) { f.fluid.SolvePressure() }},
		{telemetry.PhaseSubtractGradient, func(dt float32) { f.fluid.SubtractGradient() }},
	}
	return f
}

// Animate advances the simulation to the given timestamp (milliseconds)
// and draws according to the active mode. Time in excess of MaxFrameTime
// is dropped, so a long stall costs at most a few substeps.
func (f *Flux) Animate(timestamp float64) {
	f.perf.StartTick()

	timestep := min(f.maxFrameTime, float32(0.001*(timestamp-f.lastTimestamp)))
	f.lastTimestamp = timestamp
	f.elapsedTime += timestep
	f.frameTime += timestep

	// Wrap by subtraction so time-keyed animation drifts instead of
	// snapping back to zero.
	if f.elapsedTime >= ElapsedTimeHorizon {
		f.elapsedTime -= ElapsedTimeHorizon
	}

	for f.frameTime >= f.fluidTimestep {
		for _, st := range f.stages {
			f.perf.StartPhase(st.name)
			st.run(f.fluidTimestep)
		}
		f.frameTime -= f.fluidTimestep
		f.substeps++
	}

	f.perf.StartPhase(telemetry.PhasePlaceLines)
	f.drawer.PlaceLines(f.fluid.Velocity(), f.elapsedTime, timestep)

	f.perf.StartPhase(telemetry.PhaseDraw)
	f.ctx.Clear(color.RGBA{A: 255})
	switch f.settings.Mode {
	case config.ModeDebugNoise:
		f.drawer.DrawTexture(f.noise.Texture())
	case config.ModeDebugFluid:
		f.drawer.DrawTexture(f.fluid.Velocity())
	case config.ModeDebugPressure:
		f.drawer.DrawTexture(f.fluid.Pressure())
	case config.ModeDebugDivergence:
		f.drawer.DrawTexture(f.fluid.Divergence())
	default:
		f.drawer.DrawLines()
		f.drawer.DrawEndpoints()
	}

	f.perf.EndTick()
}

// Update swaps in a new settings snapshot and propagates it to every
// component. The snapshot must not be mutated afterwards.
func (f *Flux) Update(s *config.Config) {
	f.settings = s
	f.fluidTimestep = 1.0 / float32(s.Fluid.SimulationRate)
	f.fluid.Update(s)
	f.noise.Update(s.Noise.Channels)
	f.drawer.Update(s)
}

// Resize adapts the line grid to a new drawing-surface size. The solver
// fields keep their configured resolution.
func (f *Flux) Resize(width, height int32) error {
	if err := f.drawer.Resize(width, height); err != nil {
		return cannotRender(fmt.Errorf("resizing line grid: %w", err))
	}
	return nil
}

// Substeps reports how many fixed substeps have run since construction.
func (f *Flux) Substeps() uint64 {
	return f.substeps
}

// Elapsed returns the wrapped animation clock, in seconds.
func (f *Flux) Elapsed() float32 {
	return f.elapsedTime
}

// Lines reports how many lines the drawer currently places.
func (f *Flux) Lines() int {
	return f.drawer.Count()
}

// Velocity exposes the live velocity texture for debug tooling.
func (f *Flux) Velocity() render.Texture { return f.fluid.Velocity() }

// Pressure exposes the live pressure texture for debug tooling.
func (f *Flux) Pressure() render.Texture { return f.fluid.Pressure() }

// Divergence exposes the live divergence texture for debug tooling.
func (f *Flux) Divergence() render.Texture { return f.fluid.Divergence() }

// Noise exposes the first forcing channel's texture for debug tooling.
func (f *Flux) Noise() render.Texture { return f.noise.Texture() }

// Perf exposes the collector so the display loop can record frame timing
// and read aggregate stats.
func (f *Flux) Perf() *telemetry.PerfCollector {
	return f.perf
}
