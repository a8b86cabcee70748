package drawer

import (
	"fmt"
	"image/color"
	"math"

	"github.com/Nandanrmenon/flux/fluid"
	"github.com/Nandanrmenon/flux/render"
)

// VelocityField is a CPU-side view of the solver's velocity texture,
// decoded on demand. Rows run top-down like the display.
type VelocityField struct {
	width  int32
	height int32
	pixels []color.RGBA
}

// ReadVelocityField pulls the velocity texture back from the device.
func ReadVelocityField(ctx render.Context, tex render.Texture) (*VelocityField, error) {
	w, h := tex.Size()
	pixels, err := ctx.ReadPixels(tex)
	if err != nil {
		return nil, fmt.Errorf("reading velocity texture %s: %w", tex.Label(), err)
	}
	return FieldFromPixels(pixels, w, h)
}

// FieldFromPixels wraps an already-read pixel buffer.
func FieldFromPixels(pixels []color.RGBA, width, height int32) (*VelocityField, error) {
	if int(width)*int(height) != len(pixels) {
		return nil, fmt.Errorf("velocity buffer is %d pixels, want %dx%d", len(pixels), width, height)
	}
	return &VelocityField{width: width, height: height, pixels: pixels}, nil
}

// At decodes the velocity at a texel, clamping out-of-range coordinates
// to the edge.
func (f *VelocityField) At(x, y int32) (vx, vy float32) {
	x = min(max(x, 0), f.width-1)
	y = min(max(y, 0), f.height-1)
	p := f.pixels[y*f.width+x]
	return render.DecodeSigned(p.R, fluid.VelocityRange),
		render.DecodeSigned(p.G, fluid.VelocityRange)
}

// Sample bilinearly interpolates the velocity at normalized coordinates,
// with (0,0) the top-left of the display.
func (f *VelocityField) Sample(u, v float32) (vx, vy float32) {
	// Texel centers sit at (i+0.5)/width.
	fx := u*float32(f.width) - 0.5
	fy := v*float32(f.height) - 0.5

	x0 := int32(math.Floor(float64(fx)))
	y0 := int32(math.Floor(float64(fy)))
	tx := fx - float32(x0)
	ty := fy - float32(y0)

	x00, y00 := f.At(x0, y0)
	x10, y10 := f.At(x0+1, y0)
	x01, y01 := f.At(x0, y0+1)
	x11, y11 := f.At(x0+1, y0+1)

	top := lerp(x00, x10, tx)
	bottom := lerp(x01, x11, tx)
	vx = lerp(top, bottom, ty)

	top = lerp(y00, y10, tx)
	bottom = lerp(y01, y11, tx)
	vy = lerp(top, bottom, ty)
	return vx, vy
}

func lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

// springRate converts a smoothing constant and a frame delta into the
// fraction of remaining distance to close this frame. Frame-rate
// independent: two 8 ms frames ease as far as one 16 ms frame.
func springRate(smoothing, dt float32) float32 {
	if smoothing <= 0 {
		return 1.0
	}
	if dt <= 0 {
		return 0
	}
	return 1.0 - float32(math.Exp(float64(-smoothing*dt)))
}
