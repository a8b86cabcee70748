// Package render provides the graphics context the solver and drawer run
// against: render-target textures, full-target fragment passes, and CPU
// readback. The raylib implementation lives in raylib.go; tests substitute
// recording fakes.
package render

import "image/color"

// Texture is a GPU texture handle. Textures created with NewTarget are also
// valid pass targets; textures created with NewTexture are input-only.
type Texture interface {
	Label() string
	Size() (width, height int32)
}

// Sampler binds a texture to a named sampler2D uniform.
type Sampler struct {
	Name    string
	Texture Texture
}

// Uniform is a named shader parameter. The value length selects the GLSL
// type: 1 = float, 2 = vec2, 3 = vec3, 4 = vec4.
type Uniform struct {
	Name  string
	Value []float32
}

// Pass is one fragment program invocation over every texel of its target.
// Target must be a texture created with NewTarget and must not appear in
// Inputs; ping-pong between two targets where a pass reads what it writes.
type Pass struct {
	Label    string
	Program  string
	Target   Texture
	Inputs   []Sampler
	Uniforms []Uniform
}

// Context issues GPU work. All methods are frame-thread only.
type Context interface {
	// NewTarget allocates an offscreen render target.
	NewTarget(label string, width, height int32) (Texture, error)
	// NewTexture uploads RGBA pixels as an input-only texture. A nil pixel
	// slice leaves the texture black.
	NewTexture(label string, width, height int32, pixels []color.RGBA) (Texture, error)
	// UpdateTexture replaces the full contents of a texture created with
	// NewTexture. The pixel slice must cover width*height texels.
	UpdateTexture(t Texture, pixels []color.RGBA)
	// Submit runs a pass. Malformed passes are logged and skipped; per-frame
	// device errors are not observable through this interface.
	Submit(p Pass)
	// ReadPixels copies a target's contents to the CPU, row 0 at the top.
	ReadPixels(t Texture) ([]color.RGBA, error)
	// Clear fills the screen with a color.
	Clear(c color.RGBA)
	// Blit draws a texture scaled to cover the screen.
	Blit(t Texture)
	// Release frees every resource created through the context.
	Release()
}
