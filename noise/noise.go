// Package noise generates the procedural forcing field: one texture per
// configured channel, refreshed from elapsed time and blended into the
// fluid's velocity.
package noise

import (
	"fmt"
	"image/color"
	"log/slog"
	"runtime"
	"sync"

	"github.com/ojrac/opensimplex-go"

	"github.com/Nandanrmenon/flux/config"
	"github.com/Nandanrmenon/flux/render"
)

// valueRange is the signed encoding range of channel textures. The
// blend_noise shader bakes in the same value.
const valueRange = 1.0

// yPhase separates the two simplex evaluations that make up a forcing
// vector so the components stay decorrelated.
const yPhase = 101.7

// parallelRows is the texture height above which the fill fans out across
// worker goroutines.
const parallelRows = 64

// channelSeedStride spaces per-channel seeds so channels never share
// gradients.
const channelSeedStride = 7919

// Sample evaluates one channel's forcing vector at texture coordinate
// (u, v) in [0,1) for the given elapsed time. Identical inputs always give
// identical outputs.
func Sample(gen opensimplex.Noise, cfg config.NoiseChannel, u, v float64, elapsed float32) (float32, float32) {
	z := cfg.Offset + float64(elapsed)*cfg.OffsetIncrement
	x := u * cfg.Frequency
	y := v * cfg.Frequency
	vx := gen.Eval3(x, y, z) * cfg.Amplitude
	vy := gen.Eval3(x, y, z+yPhase) * cfg.Amplitude
	return float32(vx), float32(vy)
}

type channel struct {
	cfg config.NoiseChannel
	gen opensimplex.Noise
	tex render.Texture
}

// Builder assembles a Generator. Channels can only be added before Build;
// the built generator's channel topology is fixed.
type Builder struct {
	ctx           render.Context
	width, height int32
	seed          int64
	channels      []config.NoiseChannel
}

// NewBuilder starts a generator over textures of the given size.
func NewBuilder(ctx render.Context, width, height int32, seed int64) *Builder {
	return &Builder{ctx: ctx, width: width, height: height, seed: seed}
}

// AddChannel appends a forcing channel.
func (b *Builder) AddChannel(cfg config.NoiseChannel) {
	b.channels = append(b.channels, cfg)
}

// Build allocates one texture per channel and finalizes the generator.
func (b *Builder) Build() (*Generator, error) {
	g := &Generator{
		ctx:     b.ctx,
		width:   b.width,
		height:  b.height,
		scratch: make([]color.RGBA, int(b.width)*int(b.height)),
	}
	for i, cfg := range b.channels {
		tex, err := b.ctx.NewTexture(fmt.Sprintf("noise_%s", channelName(cfg, i)), b.width, b.height, nil)
		if err != nil {
			return nil, fmt.Errorf("allocating noise channel %q: %w", channelName(cfg, i), err)
		}
		g.channels = append(g.channels, &channel{
			cfg: cfg,
			gen: opensimplex.New(b.seed + int64(i)*channelSeedStride),
			tex: tex,
		})
	}
	return g, nil
}

func channelName(cfg config.NoiseChannel, i int) string {
	if cfg.Name != "" {
		return cfg.Name
	}
	return fmt.Sprintf("channel_%d", i)
}

// Generator writes fresh channel textures for a given elapsed time and
// blends them into velocity. Built by Builder; channel count is immutable.
type Generator struct {
	ctx           render.Context
	width, height int32
	channels      []*channel
	scratch       []color.RGBA

	lastElapsed float32
	fresh       bool
}

// Generate refreshes every channel texture as a pure function of elapsed
// time and the channel parameters. Repeat calls with an unchanged phase are
// skipped.
func (g *Generator) Generate(elapsed float32) {
	if g.fresh && elapsed == g.lastElapsed {
		return
	}
	for _, ch := range g.channels {
		g.fill(ch, elapsed)
		g.ctx.UpdateTexture(ch.tex, g.scratch)
	}
	g.lastElapsed = elapsed
	g.fresh = true
}

// fill renders one channel into the scratch buffer.
func (g *Generator) fill(ch *channel, elapsed float32) {
	rows := int(g.height)
	workers := runtime.NumCPU()
	if rows < parallelRows || workers < 2 {
		g.fillRows(ch, 0, rows, elapsed)
		return
	}

	chunk := (rows + workers - 1) / workers
	var wg sync.WaitGroup
	for start := 0; start < rows; start += chunk {
		end := start + chunk
		if end > rows {
			end = rows
		}
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			g.fillRows(ch, s, e, elapsed)
		}(start, end)
	}
	wg.Wait()
}

func (g *Generator) fillRows(ch *channel, start, end int, elapsed float32) {
	w := int(g.width)
	for y := start; y < end; y++ {
		v := (float64(y) + 0.5) / float64(g.height)
		row := g.scratch[y*w : (y+1)*w]
		for x := 0; x < w; x++ {
			u := (float64(x) + 0.5) / float64(g.width)
			fx, fy := Sample(ch.gen, ch.cfg, u, v, elapsed)
			row[x] = color.RGBA{
				R: render.EncodeSigned(fx, valueRange),
				G: render.EncodeSigned(fy, valueRange),
				B: 128,
				A: 255,
			}
		}
	}
}

// BlendInto additively composites every channel into the velocity buffer,
// scaled by its multiplier and the substep duration so forcing strength is
// simulation-rate independent.
func (g *Generator) BlendInto(velocity *render.DoubleBuffer, dt float32) {
	for _, ch := range g.channels {
		g.ctx.Submit(render.Pass{
			Label:   "blend_noise",
			Program: "blend_noise",
			Target:  velocity.Next(),
			Inputs: []render.Sampler{
				{Name: "velocityTex", Texture: velocity.Current()},
				{Name: "noiseTex", Texture: ch.tex},
			},
			Uniforms: []render.Uniform{
				{Name: "amount", Value: []float32{float32(ch.cfg.Multiplier) * dt}},
			},
		})
		velocity.Swap()
	}
}

// Texture returns the first channel's texture for debug viewing, or nil
// when no channels are configured.
func (g *Generator) Texture() render.Texture {
	if len(g.channels) == 0 {
		return nil
	}
	return g.channels[0].tex
}

// Update reconfigures existing channels in place. Channel count changes
// require a rebuild and are ignored beyond the overlapping prefix.
func (g *Generator) Update(cfgs []config.NoiseChannel) {
	n := len(g.channels)
	if len(cfgs) != n {
		slog.Warn("noise channel count change requires rebuild",
			"have", n,
			"want", len(cfgs),
		)
		if len(cfgs) < n {
			n = len(cfgs)
		}
	}
	for i := 0; i < n; i++ {
		if g.channels[i].cfg != cfgs[i] {
			g.channels[i].cfg = cfgs[i]
			g.fresh = false
		}
	}
}
