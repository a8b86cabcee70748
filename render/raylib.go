package render

import (
	"fmt"
	"image/color"
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// gpuTexture backs both plain textures and render targets.
type gpuTexture struct {
	label    string
	tex      rl.Texture2D
	rt       rl.RenderTexture2D
	isTarget bool
}

func (t *gpuTexture) Label() string { return t.label }

func (t *gpuTexture) Size() (int32, int32) { return t.tex.Width, t.tex.Height }

// program is a compiled fragment shader with cached uniform locations.
type program struct {
	shader rl.Shader
	locs   map[string]int32
}

func (p *program) loc(name string) int32 {
	if loc, ok := p.locs[name]; ok {
		return loc
	}
	loc := rl.GetShaderLocation(p.shader, name)
	p.locs[name] = loc
	return loc
}

// RaylibContext implements Context against a live raylib window. The window
// must be initialized before construction and outlive Release.
type RaylibContext struct {
	programs map[string]*program
	owned    []*gpuTexture
}

// NewRaylibContext compiles the embedded fragment shaders and returns a
// ready context.
func NewRaylibContext() (*RaylibContext, error) {
	sources, err := loadShaderSources()
	if err != nil {
		return nil, err
	}

	c := &RaylibContext{programs: make(map[string]*program, len(sources))}
	for name, src := range sources {
		shader := rl.LoadShaderFromMemory("", src)
		if shader.ID == 0 {
			c.Release()
			return nil, fmt.Errorf("compiling shader %q: device returned no program", name)
		}
		c.programs[name] = &program{shader: shader, locs: make(map[string]int32)}
	}
	return c, nil
}

// NewTarget allocates an offscreen render target with bilinear sampling and
// clamped edges.
func (c *RaylibContext) NewTarget(label string, width, height int32) (Texture, error) {
	rt := rl.LoadRenderTexture(width, height)
	if rt.ID == 0 {
		return nil, fmt.Errorf("creating render target %q (%dx%d): device returned no framebuffer", label, width, height)
	}
	rl.SetTextureFilter(rt.Texture, rl.FilterBilinear)
	rl.SetTextureWrap(rt.Texture, rl.WrapClamp)

	t := &gpuTexture{label: label, tex: rt.Texture, rt: rt, isTarget: true}
	c.owned = append(c.owned, t)
	return t, nil
}

// NewTexture uploads RGBA pixels as an input-only texture.
func (c *RaylibContext) NewTexture(label string, width, height int32, pixels []color.RGBA) (Texture, error) {
	img := rl.GenImageColor(int(width), int(height), rl.Black)
	tex := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	if tex.ID == 0 {
		return nil, fmt.Errorf("creating texture %q (%dx%d): device returned no texture", label, width, height)
	}
	rl.SetTextureFilter(tex, rl.FilterBilinear)
	rl.SetTextureWrap(tex, rl.WrapClamp)
	if pixels != nil {
		rl.UpdateTexture(tex, pixels)
	}

	t := &gpuTexture{label: label, tex: tex}
	c.owned = append(c.owned, t)
	return t, nil
}

// UpdateTexture replaces the full contents of a texture.
func (c *RaylibContext) UpdateTexture(t Texture, pixels []color.RGBA) {
	gt, ok := t.(*gpuTexture)
	if !ok {
		slog.Error("update on foreign texture", "texture", t.Label())
		return
	}
	rl.UpdateTexture(gt.tex, pixels)
}

// Submit runs a fragment pass over every texel of its target.
func (c *RaylibContext) Submit(p Pass) {
	prog, ok := c.programs[p.Program]
	if !ok {
		slog.Error("unknown shader program", "program", p.Program, "pass", p.Label)
		return
	}
	dst, ok := p.Target.(*gpuTexture)
	if !ok || !dst.isTarget {
		slog.Error("pass target is not a render target", "pass", p.Label)
		return
	}

	for _, u := range p.Uniforms {
		loc := prog.loc(u.Name)
		if loc < 0 {
			continue
		}
		ut, ok := uniformType(len(u.Value))
		if !ok {
			slog.Error("unsupported uniform size", "pass", p.Label, "uniform", u.Name, "len", len(u.Value))
			continue
		}
		rl.SetShaderValue(prog.shader, loc, u.Value, ut)
	}

	rl.BeginTextureMode(dst.rt)
	rl.BeginShaderMode(prog.shader)
	for _, in := range p.Inputs {
		src, ok := in.Texture.(*gpuTexture)
		if !ok {
			continue
		}
		if loc := prog.loc(in.Name); loc >= 0 {
			rl.SetShaderValueTexture(prog.shader, loc, src.tex)
		}
	}
	rl.DrawRectangle(0, 0, dst.tex.Width, dst.tex.Height, rl.White)
	rl.EndShaderMode()
	rl.EndTextureMode()
}

func uniformType(n int) (rl.ShaderUniformDataType, bool) {
	switch n {
	case 1:
		return rl.ShaderUniformFloat, true
	case 2:
		return rl.ShaderUniformVec2, true
	case 3:
		return rl.ShaderUniformVec3, true
	case 4:
		return rl.ShaderUniformVec4, true
	}
	return rl.ShaderUniformFloat, false
}

// ReadPixels copies a texture's contents to the CPU. Rows come back
// top-down regardless of the framebuffer's native orientation.
func (c *RaylibContext) ReadPixels(t Texture) ([]color.RGBA, error) {
	gt, ok := t.(*gpuTexture)
	if !ok {
		return nil, fmt.Errorf("readback of foreign texture %q", t.Label())
	}
	img := rl.LoadImageFromTexture(gt.tex)
	if gt.isTarget {
		// Framebuffer textures are stored bottom-up.
		rl.ImageFlipVertical(img)
	}
	colors := rl.LoadImageColors(img)
	out := make([]color.RGBA, len(colors))
	copy(out, colors)
	rl.UnloadImageColors(colors)
	rl.UnloadImage(img)
	return out, nil
}

// Clear fills the screen with a color. Must run between BeginDrawing and
// EndDrawing.
func (c *RaylibContext) Clear(col color.RGBA) {
	rl.ClearBackground(rl.Color{R: col.R, G: col.G, B: col.B, A: col.A})
}

// Blit draws a texture scaled to cover the screen.
func (c *RaylibContext) Blit(t Texture) {
	if t == nil {
		return
	}
	gt, ok := t.(*gpuTexture)
	if !ok {
		return
	}
	w, h := t.Size()
	src := rl.Rectangle{Width: float32(w), Height: float32(h)}
	if gt.isTarget {
		src.Height = -src.Height
	}
	dst := rl.Rectangle{Width: float32(rl.GetScreenWidth()), Height: float32(rl.GetScreenHeight())}
	rl.DrawTexturePro(gt.tex, src, dst, rl.Vector2{}, 0, rl.White)
}

// Export writes a texture's contents to a PNG file. Unlike the Context
// interface this is raylib-specific and used by offline tooling.
func (c *RaylibContext) Export(t Texture, path string) error {
	gt, ok := t.(*gpuTexture)
	if !ok {
		return fmt.Errorf("export of foreign texture %q", t.Label())
	}
	img := rl.LoadImageFromTexture(gt.tex)
	if gt.isTarget {
		rl.ImageFlipVertical(img)
	}
	ok = rl.ExportImage(*img, path)
	rl.UnloadImage(img)
	if !ok {
		return fmt.Errorf("exporting %q to %s", t.Label(), path)
	}
	return nil
}

// Release frees every resource created through the context.
func (c *RaylibContext) Release() {
	for _, t := range c.owned {
		if t.isTarget {
			rl.UnloadRenderTexture(t.rt)
		} else {
			rl.UnloadTexture(t.tex)
		}
	}
	c.owned = nil
	for _, p := range c.programs {
		rl.UnloadShader(p.shader)
	}
	c.programs = nil
}
