package classify

import (
	"log/slog"
	"math"

	"github.com/region23/voicegender/internal/audio"
	"github.com/region23/voicegender/internal/features"
)

// AnalyzerConfig contains per-window analysis parameters.
type AnalyzerConfig struct {
	FrameSeconds     float64 // short-term feature frame length
	FrameStepSeconds float64 // short-term feature frame step
	SilenceThreshold float64 // absolute amplitude below which a window is silent
	MinVoicedF0      float64 // exclusive lower bound of plausible voiced pitch (Hz)
	MaxVoicedF0      float64 // exclusive upper bound of plausible voiced pitch (Hz)
}

// DefaultAnalyzerConfig returns the analysis defaults: 50 ms frames with
// 25 ms steps and the 50-300 Hz voiced-speech pitch range.
func DefaultAnalyzerConfig() AnalyzerConfig {
	return AnalyzerConfig{
		FrameSeconds:     0.050,
		FrameStepSeconds: 0.025,
		SilenceThreshold: audio.SilenceThreshold,
		MinVoicedF0:      50,
		MaxVoicedF0:      300,
	}
}

// ChunkAnalyzer turns one analysis window into a ChunkFeatures record, or
// reports it as unusable. Extraction failures never escape: a failed window
// is logged and excluded, and the rest of the pipeline proceeds.
type ChunkAnalyzer struct {
	config    AnalyzerConfig
	extractor features.Extractor
	logger    *slog.Logger
}

// NewChunkAnalyzer creates an analyzer using the given feature extractor.
func NewChunkAnalyzer(config AnalyzerConfig, extractor features.Extractor, logger *slog.Logger) *ChunkAnalyzer {
	return &ChunkAnalyzer{
		config:    config,
		extractor: extractor,
		logger:    logger,
	}
}

// Analyze summarizes one window. The boolean reports whether the window is
// usable; unusable windows carry a zero ChunkFeatures.
func (a *ChunkAnalyzer) Analyze(win audio.Window, sampleRate int) (ChunkFeatures, bool) {
	if audio.IsSilent(win.Samples, a.config.SilenceThreshold) {
		a.logger.Debug("Window contains only silence", slog.Int("window", win.Index))
		return ChunkFeatures{}, false
	}

	frameLen := int(math.Round(a.config.FrameSeconds * float64(sampleRate)))
	frameStep := int(math.Round(a.config.FrameStepSeconds * float64(sampleRate)))

	matrix, err := a.extractor.Extract(win.Samples, sampleRate, frameLen, frameStep)
	if err != nil {
		a.logger.Warn("Feature extraction failed for window",
			slog.Int("window", win.Index),
			slog.String("error", err.Error()),
		)
		return ChunkFeatures{}, false
	}

	if matrix.Frames() == 0 {
		a.logger.Debug("No features extracted from window", slog.Int("window", win.Index))
		return ChunkFeatures{}, false
	}

	voiced := filterVoiced(matrix.Row(features.RowF0), a.config.MinVoicedF0, a.config.MaxVoicedF0)
	if len(voiced) == 0 {
		a.logger.Debug("No valid fundamental frequencies in window", slog.Int("window", win.Index))
		return ChunkFeatures{}, false
	}

	result := ChunkFeatures{
		MedianF0:         median(voiced),
		SpectralCentroid: mean(matrix.Row(features.RowCentroid)),
		SpectralRolloff:  mean(matrix.Row(features.RowRolloff)),
		ZCR:              mean(matrix.Row(features.RowZCR)),
	}

	a.logger.Debug("Window analyzed",
		slog.Int("window", win.Index),
		slog.Float64("median_f0", result.MedianF0),
		slog.Float64("spectral_centroid", result.SpectralCentroid),
		slog.Float64("spectral_rolloff", result.SpectralRolloff),
		slog.Float64("zcr", result.ZCR),
	)

	return result, true
}

// filterVoiced keeps pitch estimates strictly inside (min, max).
func filterVoiced(f0 []float64, min, max float64) []float64 {
	var voiced []float64
	for _, v := range f0 {
		if v > min && v < max {
			voiced = append(voiced, v)
		}
	}
	return voiced
}
