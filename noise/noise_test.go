package noise

import (
	"errors"
	"image/color"
	"strings"
	"testing"

	"github.com/ojrac/opensimplex-go"

	"github.com/Nandanrmenon/flux/config"
	"github.com/Nandanrmenon/flux/render"
)

type fakeTexture struct {
	label string
	w, h  int32
}

func (f fakeTexture) Label() string        { return f.label }
func (f fakeTexture) Size() (int32, int32) { return f.w, f.h }

// fakeContext records texture allocations, uploads, and submitted passes.
type fakeContext struct {
	labels     []string
	uploads    map[string][][]color.RGBA
	passes     []render.Pass
	failAllocs bool
}

func newFakeContext() *fakeContext {
	return &fakeContext{uploads: make(map[string][][]color.RGBA)}
}

func (f *fakeContext) NewTarget(label string, w, h int32) (render.Texture, error) {
	return f.NewTexture(label, w, h, nil)
}

func (f *fakeContext) NewTexture(label string, w, h int32, pixels []color.RGBA) (render.Texture, error) {
	if f.failAllocs {
		return nil, errors.New("device out of memory")
	}
	f.labels = append(f.labels, label)
	return fakeTexture{label: label, w: w, h: h}, nil
}

func (f *fakeContext) UpdateTexture(t render.Texture, pixels []color.RGBA) {
	snapshot := make([]color.RGBA, len(pixels))
	copy(snapshot, pixels)
	f.uploads[t.Label()] = append(f.uploads[t.Label()], snapshot)
}

func (f *fakeContext) Submit(p render.Pass) { f.passes = append(f.passes, p) }

func (f *fakeContext) ReadPixels(t render.Texture) ([]color.RGBA, error) {
	return nil, errors.New("not readable")
}

func (f *fakeContext) Clear(c color.RGBA)    {}
func (f *fakeContext) Blit(t render.Texture) {}
func (f *fakeContext) Release()              {}

func (f *fakeContext) uploadCount() int {
	n := 0
	for _, ups := range f.uploads {
		n += len(ups)
	}
	return n
}

func testChannel(name string) config.NoiseChannel {
	return config.NoiseChannel{
		Name:            name,
		Frequency:       4.2,
		Amplitude:       1.0,
		OffsetIncrement: 0.05,
		Multiplier:      0.12,
	}
}

func TestSample_Deterministic(t *testing.T) {
	gen := opensimplex.New(7)
	cfg := testChannel("sweep")

	ax, ay := Sample(gen, cfg, 0.25, 0.75, 3.5)
	bx, by := Sample(gen, cfg, 0.25, 0.75, 3.5)
	if ax != bx || ay != by {
		t.Errorf("identical inputs gave (%v,%v) then (%v,%v)", ax, ay, bx, by)
	}

	cx, cy := Sample(gen, cfg, 0.25, 0.75, 90.0)
	if cx == ax && cy == ay {
		t.Error("expected elapsed time to move the sampling phase")
	}
}

func TestSample_FrozenWithoutOffsetIncrement(t *testing.T) {
	gen := opensimplex.New(7)
	cfg := testChannel("static")
	cfg.OffsetIncrement = 0

	ax, ay := Sample(gen, cfg, 0.5, 0.5, 0)
	bx, by := Sample(gen, cfg, 0.5, 0.5, 500)
	if ax != bx || ay != by {
		t.Error("zero offset increment should pin the phase regardless of elapsed time")
	}
}

func TestSample_AmplitudeScales(t *testing.T) {
	gen := opensimplex.New(7)
	cfg := testChannel("silent")
	cfg.Amplitude = 0

	fx, fy := Sample(gen, cfg, 0.3, 0.6, 12)
	if fx != 0 || fy != 0 {
		t.Errorf("zero amplitude should force a zero vector, got (%v,%v)", fx, fy)
	}
}

func TestBuilder_AllocatesChannelTextures(t *testing.T) {
	ctx := newFakeContext()
	b := NewBuilder(ctx, 16, 16, 42)
	b.AddChannel(testChannel("sweep"))
	b.AddChannel(testChannel(""))

	g, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(g.channels) != 2 {
		t.Fatalf("expected 2 channels, got %d", len(g.channels))
	}
	want := []string{"noise_sweep", "noise_channel_1"}
	for i, label := range want {
		if ctx.labels[i] != label {
			t.Errorf("texture %d: expected label %s, got %s", i, label, ctx.labels[i])
		}
	}
	if g.Texture() == nil || g.Texture().Label() != "noise_sweep" {
		t.Error("Texture() should expose the first channel")
	}
}

func TestBuilder_PropagatesAllocationFailure(t *testing.T) {
	ctx := newFakeContext()
	ctx.failAllocs = true
	b := NewBuilder(ctx, 16, 16, 42)
	b.AddChannel(testChannel("sweep"))

	_, err := b.Build()
	if err == nil {
		t.Fatal("expected allocation failure to surface")
	}
	if !strings.Contains(err.Error(), `allocating noise channel "sweep"`) {
		t.Errorf("error should name the failed channel, got %v", err)
	}
}

func TestBuilder_ChannelsGetDistinctSeeds(t *testing.T) {
	ctx := newFakeContext()
	b := NewBuilder(ctx, 16, 16, 42)
	b.AddChannel(testChannel("a"))
	b.AddChannel(testChannel("b"))

	g, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	g.Generate(1.0)

	pa := ctx.uploads["noise_a"][0]
	pb := ctx.uploads["noise_b"][0]
	same := true
	for i := range pa {
		if pa[i] != pb[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("channels with identical parameters should still differ by seed")
	}
}

func TestGenerate_FillsEncodedPixels(t *testing.T) {
	const size = 16
	ctx := newFakeContext()
	b := NewBuilder(ctx, size, size, 42)
	b.AddChannel(testChannel("sweep"))
	g, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	const elapsed = 3.5
	g.Generate(elapsed)

	pixels := ctx.uploads["noise_sweep"][0]
	if len(pixels) != size*size {
		t.Fatalf("expected %d texels, got %d", size*size, len(pixels))
	}

	ch := g.channels[0]
	for _, tc := range []struct{ x, y int }{{0, 0}, {7, 3}, {15, 15}} {
		u := (float64(tc.x) + 0.5) / size
		v := (float64(tc.y) + 0.5) / size
		fx, fy := Sample(ch.gen, ch.cfg, u, v, elapsed)

		got := pixels[tc.y*size+tc.x]
		want := color.RGBA{
			R: render.EncodeSigned(fx, 1.0),
			G: render.EncodeSigned(fy, 1.0),
			B: 128,
			A: 255,
		}
		if got != want {
			t.Errorf("texel (%d,%d): expected %v, got %v", tc.x, tc.y, want, got)
		}
	}
}

func TestGenerate_SkipsUnchangedPhase(t *testing.T) {
	ctx := newFakeContext()
	b := NewBuilder(ctx, 16, 16, 42)
	b.AddChannel(testChannel("sweep"))
	g, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	g.Generate(1.0)
	if ctx.uploadCount() != 1 {
		t.Fatalf("expected 1 upload after first generate, got %d", ctx.uploadCount())
	}

	g.Generate(1.0)
	if ctx.uploadCount() != 1 {
		t.Errorf("unchanged phase should skip the refill, got %d uploads", ctx.uploadCount())
	}

	g.Generate(2.0)
	if ctx.uploadCount() != 2 {
		t.Errorf("new phase should refill, got %d uploads", ctx.uploadCount())
	}
}

func TestBlendInto_CompositesEveryChannel(t *testing.T) {
	ctx := newFakeContext()
	b := NewBuilder(ctx, 16, 16, 42)
	b.AddChannel(testChannel("a"))
	b.AddChannel(testChannel("b"))
	g, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	velocity := render.NewDoubleBuffer(
		fakeTexture{label: "velocity_a", w: 16, h: 16},
		fakeTexture{label: "velocity_b", w: 16, h: 16},
	)

	const dt = 1.0 / 30.0
	g.BlendInto(velocity, dt)

	if len(ctx.passes) != 2 {
		t.Fatalf("expected one pass per channel, got %d", len(ctx.passes))
	}

	first := ctx.passes[0]
	if first.Program != "blend_noise" {
		t.Errorf("expected blend_noise program, got %s", first.Program)
	}
	if first.Target.Label() != "velocity_b" {
		t.Errorf("first pass should write the back buffer, got %s", first.Target.Label())
	}
	if got := first.Inputs[0].Texture.Label(); got != "velocity_a" {
		t.Errorf("first pass should read the front buffer, got %s", got)
	}
	if got := first.Inputs[1].Texture.Label(); got != "noise_a" {
		t.Errorf("first pass should blend channel a, got %s", got)
	}

	wantAmount := float32(0.12) * dt
	if got := first.Uniforms[0].Value[0]; got != wantAmount {
		t.Errorf("expected amount %v, got %v", wantAmount, got)
	}

	// Ping-pong: the second channel lands on the other buffer.
	second := ctx.passes[1]
	if second.Target.Label() != "velocity_a" {
		t.Errorf("second pass should write the swapped buffer, got %s", second.Target.Label())
	}

	// Two swaps later the original front buffer is current again.
	if velocity.Current().Label() != "velocity_a" {
		t.Errorf("expected velocity_a current after even swaps, got %s", velocity.Current().Label())
	}
}

func TestUpdate_ReconfiguresChannels(t *testing.T) {
	ctx := newFakeContext()
	b := NewBuilder(ctx, 16, 16, 42)
	b.AddChannel(testChannel("a"))
	b.AddChannel(testChannel("b"))
	g, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	g.Generate(1.0)

	changed := testChannel("a")
	changed.Frequency = 9.0
	g.Update([]config.NoiseChannel{changed, testChannel("b")})

	if g.channels[0].cfg.Frequency != 9.0 {
		t.Errorf("expected frequency 9.0 applied, got %v", g.channels[0].cfg.Frequency)
	}

	// A parameter change invalidates the cached phase even at the same
	// elapsed time.
	before := ctx.uploadCount()
	g.Generate(1.0)
	if ctx.uploadCount() != before+2 {
		t.Errorf("expected a refill after reconfiguration, got %d uploads (was %d)",
			ctx.uploadCount(), before)
	}
}

func TestUpdate_IgnoresExtraChannels(t *testing.T) {
	ctx := newFakeContext()
	b := NewBuilder(ctx, 16, 16, 42)
	b.AddChannel(testChannel("a"))
	g, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	changed := testChannel("a")
	changed.Amplitude = 0.4
	g.Update([]config.NoiseChannel{changed, testChannel("extra")})

	if len(g.channels) != 1 {
		t.Fatalf("channel topology must stay fixed, got %d channels", len(g.channels))
	}
	if g.channels[0].cfg.Amplitude != 0.4 {
		t.Errorf("overlapping prefix should still apply, got amplitude %v", g.channels[0].cfg.Amplitude)
	}
}
