package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated frame statistics for a time window.
type WindowStats struct {
	WindowStartFrame int32   `csv:"-"`
	WindowEndFrame   int32   `csv:"window_end"`
	ElapsedSec       float64 `csv:"elapsed_sec"`

	// Frame time distribution over the window, milliseconds
	FrameMsMean float64 `csv:"frame_ms_mean"`
	FrameMsStd  float64 `csv:"frame_ms_std"`
	FrameMsCV   float64 `csv:"frame_ms_cv"`
	FrameMsP10  float64 `csv:"frame_ms_p10"`
	FrameMsP50  float64 `csv:"frame_ms_p50"`
	FrameMsP90  float64 `csv:"frame_ms_p90"`

	// Solver work during the window
	Substeps         int     `csv:"substeps"`
	SubstepsPerFrame float64 `csv:"substeps_per_frame"`

	// Display state at window end
	Lines int    `csv:"lines"`
	Mode  string `csv:"mode"`
}

// FrameWindow accumulates per-frame measurements until flushed.
type FrameWindow struct {
	startFrame int32
	frameMs    []float64
	substeps   int
}

// NewFrameWindow creates a window sized for the expected frame count.
func NewFrameWindow(capacity int) *FrameWindow {
	if capacity < 1 {
		capacity = 120
	}
	return &FrameWindow{
		frameMs: make([]float64, 0, capacity),
	}
}

// Record adds one frame's measurements.
func (w *FrameWindow) Record(frameMs float64, substeps int) {
	w.frameMs = append(w.frameMs, frameMs)
	w.substeps += substeps
}

// Len reports how many frames the window holds.
func (w *FrameWindow) Len() int {
	return len(w.frameMs)
}

// Flush aggregates the window into stats and resets it for the next one.
func (w *FrameWindow) Flush(windowEnd int32, elapsedSec float64, lines int, mode string) WindowStats {
	s := WindowStats{
		WindowStartFrame: w.startFrame,
		WindowEndFrame:   windowEnd,
		ElapsedSec:       elapsedSec,
		Substeps:         w.substeps,
		Lines:            lines,
		Mode:             mode,
	}

	if n := len(w.frameMs); n > 0 {
		s.FrameMsMean = stat.Mean(w.frameMs, nil)
		if n > 1 {
			s.FrameMsStd = stat.StdDev(w.frameMs, nil)
		}
		if s.FrameMsMean > 0 {
			s.FrameMsCV = s.FrameMsStd / s.FrameMsMean
		}

		sorted := make([]float64, n)
		copy(sorted, w.frameMs)
		sort.Float64s(sorted)
		s.FrameMsP10 = stat.Quantile(0.10, stat.Empirical, sorted, nil)
		s.FrameMsP50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
		s.FrameMsP90 = stat.Quantile(0.90, stat.Empirical, sorted, nil)

		s.SubstepsPerFrame = float64(w.substeps) / float64(n)
	}

	w.startFrame = windowEnd
	w.frameMs = w.frameMs[:0]
	w.substeps = 0
	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartFrame)),
		slog.Int("window_end", int(s.WindowEndFrame)),
		slog.Float64("elapsed_sec", s.ElapsedSec),
		slog.Float64("frame_ms_mean", s.FrameMsMean),
		slog.Float64("frame_ms_std", s.FrameMsStd),
		slog.Float64("frame_ms_cv", s.FrameMsCV),
		slog.Float64("frame_ms_p10", s.FrameMsP10),
		slog.Float64("frame_ms_p50", s.FrameMsP50),
		slog.Float64("frame_ms_p90", s.FrameMsP90),
		slog.Int("substeps", s.Substeps),
		slog.Float64("substeps_per_frame", s.SubstepsPerFrame),
		slog.Int("lines", s.Lines),
		slog.String("mode", s.Mode),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndFrame,
		"elapsed_sec", s.ElapsedSec,
		"frame_ms_mean", s.FrameMsMean,
		"frame_ms_std", s.FrameMsStd,
		"frame_ms_cv", s.FrameMsCV,
		"frame_ms_p10", s.FrameMsP10,
		"frame_ms_p50", s.FrameMsP50,
		"frame_ms_p90", s.FrameMsP90,
		"substeps", s.Substeps,
		"substeps_per_frame", s.SubstepsPerFrame,
		"lines", s.Lines,
		"mode", s.Mode,
	)
}
