// Package fluid owns the GPU solver state and the per-substep passes that
// advance it: error-compensated advection, viscous diffusion, and pressure
// projection over double-buffered velocity textures.
package fluid

import (
	"fmt"
	"log/slog"

	"github.com/Nandanrmenon/flux/config"
	"github.com/Nandanrmenon/flux/render"
)

// VelocityRange is the signed encoding range of the velocity textures, in
// texels/second. The fragment shaders bake in the same value.
const VelocityRange = 4.0

// PressureRange and DivergenceRange are the scalar encoding ranges of the
// projection textures, matching pressure.fs and divergence.fs.
const (
	PressureRange   = 2.0
	DivergenceRange = 2.0
)

// Fluid holds the solver fields and derived coefficients. All textures
// live at the configured solver resolution, independent of the display.
type Fluid struct {
	ctx render.Context

	resolution int32
	texelSize  []float32

	velocity   *render.DoubleBuffer
	pressure   *render.DoubleBuffer
	forward    render.Texture
	reverse    render.Texture
	divergence render.Texture

	viscosity           float32
	dissipation         float32
	diffusionIterations int
	pressureIterations  int
}

// New allocates the solver fields at the configured resolution.
func New(ctx render.Context, s *config.Config) (*Fluid, error) {
	f := &Fluid{ctx: ctx}
	f.derive(s)
	if err := f.allocate(int32(s.Fluid.Resolution)); err != nil {
		return nil, err
	}
	return f, nil
}

// derive recomputes tunable coefficients from a settings snapshot.
func (f *Fluid) derive(s *config.Config) {
	f.viscosity = float32(s.Fluid.Viscosity)
	f.dissipation = float32(s.Fluid.Dissipation)
	f.diffusionIterations = s.Fluid.DiffusionIterations
	f.pressureIterations = s.Fluid.PressureIterations
}

// allocate creates the seven solver targets at the given resolution.
func (f *Fluid) allocate(resolution int32) error {
	targets := make([]render.Texture, 0, 7)
	for _, label := range []string{
		"velocity_a", "velocity_b",
		"pressure_a", "pressure_b",
		"advected_forward", "advected_reverse",
		"divergence",
	} {
		t, err := f.ctx.NewTarget(label, resolution, resolution)
		if err != nil {
			return fmt.Errorf("allocating fluid field %s: %w", label, err)
		}
		targets = append(targets, t)
	}

	f.resolution = resolution
	f.texelSize = []float32{1.0 / float32(resolution), 1.0 / float32(resolution)}
	f.velocity = render.NewDoubleBuffer(targets[0], targets[1])
	f.pressure = render.NewDoubleBuffer(targets[2], targets[3])
	f.forward = targets[4]
	f.reverse = targets[5]
	f.divergence = targets[6]
	return nil
}

// Update re-derives coefficients from a new settings snapshot. A resolution
// change reallocates the fields; if the device refuses, the old fields stay
// in service and the change is logged rather than surfaced, since settings
// swaps cannot fail mid-session.
func (f *Fluid) Update(s *config.Config) {
	f.derive(s)
	if res := int32(s.Fluid.Resolution); res != f.resolution {
		if err := f.allocate(res); err != nil {
			slog.Error("fluid resolution change failed, keeping previous fields",
				"want", res,
				"have", f.resolution,
				"error", err,
			)
		}
	}
}

// AdvectForward carries velocity along itself one substep forward.
func (f *Fluid) AdvectForward(dt float32) {
	f.ctx.Submit(render.Pass{
		Label:   "advect_forward",
		Program: "advect",
		Target:  f.forward,
		Inputs: []render.Sampler{
			{Name: "velocityTex", Texture: f.velocity.Current()},
			{Name: "quantityTex", Texture: f.velocity.Current()},
		},
		Uniforms: []render.Uniform{
			{Name: "texelSize", Value: f.texelSize},
			{Name: "deltaTime", Value: []float32{dt}},
			{Name: "dissipation", Value: []float32{f.dissipation}},
		},
	})
}

// AdvectReverse re-advects the forward result backward in time, measuring
// the error the forward pass introduced.
func (f *Fluid) AdvectReverse(dt float32) {
	f.ctx.Submit(render.Pass{
		Label:   "advect_reverse",
		Program: "advect",
		Target:  f.reverse,
		Inputs: []render.Sampler{
			{Name: "velocityTex", Texture: f.forward},
			{Name: "quantityTex", Texture: f.forward},
		},
		Uniforms: []render.Uniform{
			{Name: "texelSize", Value: f.texelSize},
			{Name: "deltaTime", Value: []float32{-dt}},
			{Name: "dissipation", Value: []float32{1.0}},
		},
	})
}

// AdjustAdvection folds the measured error back into the forward result,
// cancelling most of the scheme's numerical dissipation.
func (f *Fluid) AdjustAdvection(dt float32) {
	f.ctx.Submit(render.Pass{
		Label:   "adjust_advection",
		Program: "adjust_advection",
		Target:  f.velocity.Next(),
		Inputs: []render.Sampler{
			{Name: "velocityTex", Texture: f.velocity.Current()},
			{Name: "forwardTex", Texture: f.forward},
			{Name: "reverseTex", Texture: f.reverse},
		},
		Uniforms: []render.Uniform{
			{Name: "texelSize", Value: f.texelSize},
		},
	})
	f.velocity.Swap()
}

// Diffuse applies the viscosity solve as Jacobi iterations.
func (f *Fluid) Diffuse(dt float32) {
	if f.viscosity <= 0 || f.diffusionIterations == 0 {
		return
	}
	alpha := 1.0 / (f.viscosity * dt)
	rBeta := 1.0 / (4.0 + alpha)
	for i := 0; i < f.diffusionIterations; i++ {
		f.ctx.Submit(render.Pass{
			Label:   "diffuse",
			Program: "diffuse",
			Target:  f.velocity.Next(),
			Inputs: []render.Sampler{
				{Name: "velocityTex", Texture: f.velocity.Current()},
			},
			Uniforms: []render.Uniform{
				{Name: "texelSize", Value: f.texelSize},
				{Name: "alpha", Value: []float32{alpha}},
				{Name: "rBeta", Value: []float32{rBeta}},
			},
		})
		f.velocity.Swap()
	}
}

// CalculateDivergence writes the velocity divergence field.
func (f *Fluid) CalculateDivergence() {
	f.ctx.Submit(render.Pass{
		Label:   "divergence",
		Program: "divergence",
		Target:  f.divergence,
		Inputs: []render.Sampler{
			{Name: "velocityTex", Texture: f.velocity.Current()},
		},
		Uniforms: []render.Uniform{
			{Name: "texelSize", Value: f.texelSize},
		},
	})
}

// SolvePressure relaxes the pressure field against the divergence. The
// previous substep's pressure is the starting guess.
func (f *Fluid) SolvePressure() {
	for i := 0; i < f.pressureIterations; i++ {
		f.ctx.Submit(render.Pass{
			Label:   "solve_pressure",
			Program: "pressure",
			Target:  f.pressure.Next(),
			Inputs: []render.Sampler{
				{Name: "pressureTex", Texture: f.pressure.Current()},
				{Name: "divergenceTex", Texture: f.divergence},
			},
			Uniforms: []render.Uniform{
				{Name: "texelSize", Value: f.texelSize},
			},
		})
		f.pressure.Swap()
	}
}

// SubtractGradient projects velocity toward divergence free by removing
// the pressure gradient.
func (f *Fluid) SubtractGradient() {
	f.ctx.Submit(render.Pass{
		Label:   "subtract_gradient",
		Program: "subtract_gradient",
		Target:  f.velocity.Next(),
		Inputs: []render.Sampler{
			{Name: "velocityTex", Texture: f.velocity.Current()},
			{Name: "pressureTex", Texture: f.pressure.Current()},
		},
		Uniforms: []render.Uniform{
			{Name: "texelSize", Value: f.texelSize},
		},
	})
	f.velocity.Swap()
}

// Velocity returns a read view of the latest velocity field. The view is
// only valid until the next substep rotates the buffers.
func (f *Fluid) Velocity() render.Texture {
	return f.velocity.Current()
}

// VelocityBuffers exposes the velocity double buffer for forcing injection.
func (f *Fluid) VelocityBuffers() *render.DoubleBuffer {
	return f.velocity
}

// Pressure returns a read view of the pressure field.
func (f *Fluid) Pressure() render.Texture {
	return f.pressure.Current()
}

// Divergence returns a read view of the divergence field.
func (f *Fluid) Divergence() render.Texture {
	return f.divergence
}

// Resolution returns the solver grid size.
func (f *Fluid) Resolution() int32 {
	return f.resolution
}
