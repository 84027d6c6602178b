package classify

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/region23/voicegender/internal/audio"
	"github.com/region23/voicegender/internal/features"
	"github.com/region23/voicegender/internal/metrics"
	"github.com/region23/voicegender/internal/preprocess"
)

// PipelineConfig aggregates the tuning parameters of the classification
// stages.
type PipelineConfig struct {
	Chunker  audio.ChunkerConfig
	Analyzer AnalyzerConfig
	Scoring  ScoringConfig
}

// DefaultPipelineConfig returns the standard pipeline parameters: 3 s
// windows with 1 s hops and the default analysis and scoring tables.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Chunker: audio.ChunkerConfig{
			WindowSeconds: 3.0,
			HopSeconds:    1.0,
		},
		Analyzer: DefaultAnalyzerConfig(),
		Scoring:  DefaultScoringConfig(),
	}
}

// Result is the outcome of one classification run.
type Result struct {
	Label           Label              `json:"-"`
	LabelName       string             `json:"label"`
	Score           float64            `json:"score"`
	Features        AggregatedFeatures `json:"features"`
	WindowsAnalyzed int                `json:"windows_analyzed"`
	WindowsRejected int                `json:"windows_rejected"`
	Isolated        bool               `json:"vocals_isolated"`
}

// Pipeline runs the full classification flow: preprocessing, decoding,
// normalization, windowing, per-window analysis, aggregation, and scoring.
// Each invocation owns its waveform and scratch files exclusively;
// execution is strictly sequential and holds no state between runs.
type Pipeline struct {
	config       PipelineConfig
	preprocessor preprocess.Preprocessor
	chunker      *audio.Chunker
	analyzer     *ChunkAnalyzer
	scorer       *Scorer
	logger       *slog.Logger
	metrics      *metrics.Metrics // optional; nil disables instrumentation
}

// NewPipeline wires the pipeline stages around the injected collaborators.
// A nil metrics value disables instrumentation.
func NewPipeline(config PipelineConfig, pre preprocess.Preprocessor, extractor features.Extractor,
	logger *slog.Logger, m *metrics.Metrics) *Pipeline {

	return &Pipeline{
		config:       config,
		preprocessor: pre,
		chunker:      audio.NewChunker(config.Chunker),
		analyzer:     NewChunkAnalyzer(config.Analyzer, extractor, logger),
		scorer:       NewScorer(config.Scoring),
		logger:       logger,
		metrics:      m,
	}
}

// Run classifies the audio file at inputPath. All scratch files are removed
// before returning, on success and failure alike.
func (p *Pipeline) Run(ctx context.Context, inputPath string) (*Result, error) {
	start := time.Now()

	p.logger.Info("Analyzing audio file", slog.String("path", inputPath))

	workDir, err := os.MkdirTemp("", "voicegender-")
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	wavPath := filepath.Join(workDir, "normalized.wav")

	preStart := time.Now()
	preResult, err := p.preprocessor.Preprocess(ctx, inputPath, wavPath)
	if err != nil {
		if p.metrics != nil {
			p.metrics.RecordPreprocessFailure()
		}
		return nil, err
	}
	if p.metrics != nil {
		p.metrics.RecordPreprocess(time.Since(preStart).Seconds(), preResult.Isolated)
	}

	raw, err := audio.ReadWAVFile(preResult.OutputPath)
	if err != nil {
		return nil, err
	}

	p.logger.Info("Loaded audio",
		slog.Int("samples", raw.Len()),
		slog.Int("sample_rate", raw.SampleRate),
		slog.Bool("vocals_isolated", preResult.Isolated),
	)

	waveform, err := raw.Normalize()
	if err != nil {
		return nil, err
	}

	var usable []ChunkFeatures
	rejected := 0
	total := 0
	for win := range p.chunker.Windows(waveform) {
		total++
		chunk, ok := p.analyzer.Analyze(win, waveform.SampleRate)
		if p.metrics != nil {
			p.metrics.RecordWindow(ok)
		}
		if !ok {
			rejected++
			continue
		}
		usable = append(usable, chunk)
	}

	p.logger.Info("Analyzed audio windows",
		slog.Int("total", total),
		slog.Int("usable", len(usable)),
		slog.Int("rejected", rejected),
	)

	aggregated, err := Aggregate(usable)
	if err != nil {
		return nil, err
	}

	score, label := p.scorer.Score(aggregated)

	p.logger.Info("Final analysis results",
		slog.Int("analyzed_windows", len(usable)),
		slog.Float64("median_f0", aggregated.MedianF0),
		slog.Float64("spectral_centroid", aggregated.SpectralCentroid),
		slog.Float64("spectral_rolloff", aggregated.SpectralRolloff),
		slog.Float64("zcr", aggregated.ZCR),
		slog.Float64("score", score),
		slog.String("label", label.String()),
	)

	if p.metrics != nil {
		p.metrics.RecordClassification(label.String(), score, aggregated.MedianF0, time.Since(start).Seconds())
	}

	return &Result{
		Label:           label,
		LabelName:       label.String(),
		Score:           score,
		Features:        aggregated,
		WindowsAnalyzed: len(usable),
		WindowsRejected: rejected,
		Isolated:        preResult.Isolated,
	}, nil
}
