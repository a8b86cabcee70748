package telemetry

import (
	"log/slog"
	"time"
)

// Phase names for the animation frame. The substep phases repeat when a
// frame drains more than one substep; their durations accumulate.
const (
	PhaseGenerateNoise    = "generate_noise"
	PhaseAdvectForward    = "advect_forward"
	PhaseAdvectReverse    = "advect_reverse"
	PhaseAdjustAdvection  = "adjust_advection"
	PhaseDiffuse          = "diffuse"
	PhaseBlendNoise       = "blend_noise"
	PhaseDivergence       = "divergence"
	PhaseSolvePressure    = "solve_pressure"
	PhaseSubtractGradient = "subtract_gradient"
	PhasePlaceLines       = "place_lines"
	PhaseDraw             = "draw"
)

// PerfSample holds timing data for a single animation frame.
type PerfSample struct {
	FrameDuration time.Duration
	Phases        map[string]time.Duration
}

// PerfCollector tracks performance metrics over a rolling window.
type PerfCollector struct {
	windowSize    int
	samples       []PerfSample
	writeIndex    int
	sampleCount   int
	currentPhases map[string]time.Duration
	frameStart    time.Time
	phaseStart    time.Time
	lastPhase     string

	// Display cadence, measured between RecordFrame calls
	lastFrameTime time.Time
	frameInterval time.Duration
}

// NewPerfCollector creates a new performance collector.
// windowSize: number of frames to average over (e.g., 120 for 2 seconds at 60fps).
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 120
	}
	return &PerfCollector{
		windowSize:    windowSize,
		samples:       make([]PerfSample, windowSize),
		currentPhases: make(map[string]time.Duration),
	}
}

// StartTick begins timing a new animation frame.
func (p *PerfCollector) StartTick() {
	p.frameStart = time.Now()
	p.currentPhases = make(map[string]time.Duration)
	p.lastPhase = ""
}

// StartPhase begins timing a specific phase.
func (p *PerfCollector) StartPhase(phase string) {
	now := time.Now()
	// End previous phase if any
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.phaseStart = now
	p.lastPhase = phase
}

// EndTick finishes timing the current frame and records the sample.
func (p *PerfCollector) EndTick() {
	now := time.Now()
	// End final phase
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}

	sample := PerfSample{
		FrameDuration: now.Sub(p.frameStart),
		Phases:        p.currentPhases,
	}

	p.samples[p.writeIndex] = sample
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
}

// RecordFrame records the display cadence, including everything outside
// the simulation step (event handling, vsync).
func (p *PerfCollector) RecordFrame() {
	now := time.Now()
	if !p.lastFrameTime.IsZero() {
		p.frameInterval = now.Sub(p.lastFrameTime)
	}
	p.lastFrameTime = now
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	// Simulation step timing
	AvgStepDuration time.Duration
	MinStepDuration time.Duration
	MaxStepDuration time.Duration

	// Phase breakdown (average durations)
	PhaseAvg map[string]time.Duration

	// Phase percentages of total step time
	PhasePct map[string]float64

	// Throughput the simulation step alone could sustain
	StepsPerSecond float64

	// Display cadence
	FrameInterval time.Duration
	FPS           float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	// Display cadence is always available (independent of step samples)
	var fps float64
	if p.frameInterval > 0 {
		fps = float64(time.Second) / float64(p.frameInterval)
	}

	if p.sampleCount == 0 {
		return PerfStats{
			PhaseAvg:      make(map[string]time.Duration),
			PhasePct:      make(map[string]float64),
			FrameInterval: p.frameInterval,
			FPS:           fps,
		}
	}

	var totalStep time.Duration
	var minStep, maxStep time.Duration
	phaseSum := make(map[string]time.Duration)

	// Iterate over valid samples
	for i := 0; i < p.sampleCount; i++ {
		s := p.samples[i]
		totalStep += s.FrameDuration

		if i == 0 || s.FrameDuration < minStep {
			minStep = s.FrameDuration
		}
		if s.FrameDuration > maxStep {
			maxStep = s.FrameDuration
		}

		for phase, dur := range s.Phases {
			phaseSum[phase] += dur
		}
	}

	avgStep := totalStep / time.Duration(p.sampleCount)

	// Calculate phase averages and percentages
	phaseAvg := make(map[string]time.Duration)
	phasePct := make(map[string]float64)
	for phase, sum := range phaseSum {
		phaseAvg[phase] = sum / time.Duration(p.sampleCount)
		if avgStep > 0 {
			phasePct[phase] = float64(phaseAvg[phase]) / float64(avgStep) * 100
		}
	}

	// Calculate throughput
	var stepsPerSec float64
	if avgStep > 0 {
		stepsPerSec = float64(time.Second) / float64(avgStep)
	}

	return PerfStats{
		AvgStepDuration: avgStep,
		MinStepDuration: minStep,
		MaxStepDuration: maxStep,
		PhaseAvg:        phaseAvg,
		PhasePct:        phasePct,
		StepsPerSecond:  stepsPerSec,
		FrameInterval:   p.frameInterval,
		FPS:             fps,
	}
}

// LogStats logs performance statistics.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_step_us", s.AvgStepDuration.Microseconds(),
		"min_step_us", s.MinStepDuration.Microseconds(),
		"max_step_us", s.MaxStepDuration.Microseconds(),
		"steps_per_sec", int(s.StepsPerSecond),
	}

	if s.FPS > 0 {
		attrs = append(attrs, "fps", int(s.FPS))
	}

	// Add phase breakdowns
	phases := []string{
		PhaseGenerateNoise, PhaseAdvectForward, PhaseAdvectReverse,
		PhaseAdjustAdvection, PhaseDiffuse, PhaseBlendNoise,
		PhaseDivergence, PhaseSolvePressure, PhaseSubtractGradient,
		PhasePlaceLines, PhaseDraw,
	}

	for _, phase := range phases {
		if pct, ok := s.PhasePct[phase]; ok && pct > 0.1 {
			attrs = append(attrs, phase+"_pct", int(pct*10)/10.0)
		}
	}

	slog.Info("perf", attrs...)
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_step_us", s.AvgStepDuration.Microseconds()),
		slog.Int64("min_step_us", s.MinStepDuration.Microseconds()),
		slog.Int64("max_step_us", s.MaxStepDuration.Microseconds()),
		slog.Float64("steps_per_sec", s.StepsPerSecond),
	}

	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", s.FPS))
	}

	for phase, pct := range s.PhasePct {
		attrs = append(attrs, slog.Float64(phase+"_pct", pct))
	}

	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	WindowEnd           int32   `csv:"window_end"`
	AvgStepUS           int64   `csv:"avg_step_us"`
	MinStepUS           int64   `csv:"min_step_us"`
	MaxStepUS           int64   `csv:"max_step_us"`
	StepsPerSec         float64 `csv:"steps_per_sec"`
	FPS                 float64 `csv:"fps"`
	GenerateNoisePct    float64 `csv:"generate_noise_pct"`
	AdvectForwardPct    float64 `csv:"advect_forward_pct"`
	AdvectReversePct    float64 `csv:"advect_reverse_pct"`
	AdjustAdvectionPct  float64 `csv:"adjust_advection_pct"`
	DiffusePct          float64 `csv:"diffuse_pct"`
	BlendNoisePct       float64 `csv:"blend_noise_pct"`
	DivergencePct       float64 `csv:"divergence_pct"`
	SolvePressurePct    float64 `csv:"solve_pressure_pct"`
	SubtractGradientPct float64 `csv:"subtract_gradient_pct"`
	PlaceLinesPct       float64 `csv:"place_lines_pct"`
	DrawPct             float64 `csv:"draw_pct"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV(windowEnd int32) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:           windowEnd,
		AvgStepUS:           s.AvgStepDuration.Microseconds(),
		MinStepUS:           s.MinStepDuration.Microseconds(),
		MaxStepUS:           s.MaxStepDuration.Microseconds(),
		StepsPerSec:         s.StepsPerSecond,
		FPS:                 s.FPS,
		GenerateNoisePct:    s.PhasePct[PhaseGenerateNoise],
		AdvectForwardPct:    s.PhasePct[PhaseAdvectForward],
		AdvectReversePct:    s.PhasePct[PhaseAdvectReverse],
		AdjustAdvectionPct:  s.PhasePct[PhaseAdjustAdvection],
		DiffusePct:          s.PhasePct[PhaseDiffuse],
		BlendNoisePct:       s.PhasePct[PhaseBlendNoise],
		DivergencePct:       s.PhasePct[PhaseDivergence],
		SolvePressurePct:    s.PhasePct[PhaseSolvePressure],
		SubtractGradientPct: s.PhasePct[PhaseSubtractGradient],
		PlaceLinesPct:       s.PhasePct[PhasePlaceLines],
		DrawPct:             s.PhasePct[PhaseDraw],
	}
}
