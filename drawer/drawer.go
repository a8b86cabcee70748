// Package drawer owns the display-space line grid: a lattice of anchored
// lines whose direction, length, and opacity ease toward the fluid velocity
// sampled beneath them.
package drawer

import (
	"fmt"
	"log/slog"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/mlange-42/ark/ecs"

	"github.com/Nandanrmenon/flux/config"
	"github.com/Nandanrmenon/flux/fluid"
	"github.com/Nandanrmenon/flux/render"
)

// Drawer places and renders the line grid. Lines live as entities so the
// grid can be rebuilt wholesale on resize without touching render state.
type Drawer struct {
	ctx render.Context

	world  *ecs.World
	mapper *ecs.Map2[Anchor, Line]
	filter *ecs.Filter2[Anchor, Line]

	width  int32
	height int32
	lines  config.LinesConfig

	cols, rows int32
	count      int
	elapsed    float32
}

// New builds the grid for the configured screen size.
func New(ctx render.Context, s *config.Config) (*Drawer, error) {
	world := ecs.NewWorld()
	d := &Drawer{
		ctx:    ctx,
		world:  world,
		mapper: ecs.NewMap2[Anchor, Line](world),
		filter: ecs.NewFilter2[Anchor, Line](world),
		lines:  s.Lines,
	}
	if err := d.Resize(int32(s.Screen.Width), int32(s.Screen.Height)); err != nil {
		return nil, err
	}
	return d, nil
}

// Resize rebuilds the grid for a new drawing-surface size. Line state
// starts fresh; the next few frames ease it back onto the flow.
func (d *Drawer) Resize(width, height int32) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid drawing size %dx%d", width, height)
	}
	d.width = width
	d.height = height
	d.rebuildGrid()
	return nil
}

// Update applies a new settings snapshot. Only a spacing change forces a
// grid rebuild; style changes take effect on the next draw.
func (d *Drawer) Update(s *config.Config) {
	rebuild := s.Lines.Spacing != d.lines.Spacing
	d.lines = s.Lines
	if rebuild {
		d.rebuildGrid()
	}
}

func (d *Drawer) rebuildGrid() {
	// Collect first: removing entities invalidates a running query.
	var old []ecs.Entity
	query := d.filter.Query()
	for query.Next() {
		old = append(old, query.Entity())
	}
	for _, e := range old {
		d.mapper.Remove(e)
	}

	spacing := float32(d.lines.Spacing)
	cols := int32(float32(d.width) / spacing)
	if cols < 1 {
		cols = 1
	}
	rows := int32(float32(d.height) / spacing)
	if rows < 1 {
		rows = 1
	}
	offX := (float32(d.width) - float32(cols-1)*spacing) / 2
	offY := (float32(d.height) - float32(rows-1)*spacing) / 2

	for j := int32(0); j < rows; j++ {
		for i := int32(0); i < cols; i++ {
			anchor := Anchor{X: offX + float32(i)*spacing, Y: offY + float32(j)*spacing}
			line := Line{}
			d.mapper.NewEntity(&anchor, &line)
		}
	}
	d.cols, d.rows = cols, rows
	d.count = int(cols) * int(rows)
}

// PlaceLines eases every line toward the velocity under its anchor. The
// timestep is the display frame delta, so easing speed tracks wall time
// rather than the solver's fixed step. A failed readback keeps the
// previous line state for this frame.
func (d *Drawer) PlaceLines(velocity render.Texture, elapsed, timestep float32) {
	d.elapsed = elapsed

	field, err := ReadVelocityField(d.ctx, velocity)
	if err != nil {
		slog.Error("velocity readback failed, lines keep previous state", "error", err)
		return
	}

	rate := springRate(float32(d.lines.Smoothing), timestep)
	lengthScale := float32(d.lines.Length) / fluid.VelocityRange
	opacityScale := float32(d.lines.OpacityScale) / fluid.VelocityRange

	query := d.filter.Query()
	for query.Next() {
		anchor, line := query.Get()
		vx, vy := field.Sample(anchor.X/float32(d.width), anchor.Y/float32(d.height))

		targetDX := vx * lengthScale
		targetDY := vy * lengthScale
		speed := float32(math.Sqrt(float64(vx*vx + vy*vy)))
		targetOpacity := min(speed*opacityScale, 1.0)

		line.DX += (targetDX - line.DX) * rate
		line.DY += (targetDY - line.DY) * rate
		line.Opacity += (targetOpacity - line.Opacity) * rate
	}
}

// DrawLines renders the grid with additive blending.
func (d *Drawer) DrawLines() {
	col := d.lines.Color
	width := float32(d.lines.Width)

	rl.BeginBlendMode(rl.BlendAdditive)
	query := d.filter.Query()
	for query.Next() {
		anchor, line := query.Get()

		alpha := line.Opacity * d.modulation(anchor) * 255
		if alpha < 2 {
			continue
		}

		rl.DrawLineEx(
			rl.Vector2{X: anchor.X, Y: anchor.Y},
			rl.Vector2{X: anchor.X + line.DX, Y: anchor.Y + line.DY},
			width,
			rl.Color{R: col[0], G: col[1], B: col[2], A: uint8(alpha)},
		)
	}
	rl.EndBlendMode()
}

// DrawEndpoints renders a dot at each line's moving tip.
func (d *Drawer) DrawEndpoints() {
	col := d.lines.Color
	radius := float32(d.lines.EndpointRadius)

	rl.BeginBlendMode(rl.BlendAdditive)
	query := d.filter.Query()
	for query.Next() {
		anchor, line := query.Get()

		alpha := line.Opacity * d.modulation(anchor) * 255
		if alpha < 2 {
			continue
		}

		rl.DrawCircle(
			int32(anchor.X+line.DX),
			int32(anchor.Y+line.DY),
			radius,
			rl.Color{R: col[0], G: col[1], B: col[2], A: uint8(alpha)},
		)
	}
	rl.EndBlendMode()
}

// modulation is the per-anchor pulse factor, phased by position so the
// shimmer travels across the grid instead of strobing it.
func (d *Drawer) modulation(anchor *Anchor) float32 {
	amount := float32(d.lines.PulseAmount)
	if amount <= 0 {
		return 1.0
	}
	phase := float64(d.elapsed*2.0 + (anchor.X+anchor.Y)*0.01)
	pulse := float32(math.Sin(phase))*0.5 + 0.5
	return 1.0 - amount + amount*pulse
}

// DrawTexture blits a solver texture to the full surface for debug views.
func (d *Drawer) DrawTexture(t render.Texture) {
	if t == nil {
		return
	}
	d.ctx.Blit(t)
}

// GridSize reports the current grid dimensions.
func (d *Drawer) GridSize() (cols, rows int32) {
	return d.cols, d.rows
}

// Count reports how many lines are placed.
func (d *Drawer) Count() int {
	return d.count
}
