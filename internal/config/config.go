package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/region23/voicegender/internal/audio"
	"github.com/region23/voicegender/internal/classify"
	"github.com/region23/voicegender/internal/preprocess"
)

// Config represents the complete service configuration.
type Config struct {
	Audio      AudioConfig      `yaml:"audio"`
	Scoring    ScoringConfig    `yaml:"scoring"`
	Preprocess PreprocessConfig `yaml:"preprocess"`
	HTTP       HTTPConfig       `yaml:"http"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// AudioConfig contains waveform and windowing parameters.
type AudioConfig struct {
	SampleRate       int     `yaml:"sample_rate"`
	WindowSeconds    float64 `yaml:"window_seconds"`     // analysis window length
	HopSeconds       float64 `yaml:"hop_seconds"`        // distance between window starts
	FrameSeconds     float64 `yaml:"frame_seconds"`      // short-term feature frame
	FrameStepSeconds float64 `yaml:"frame_step_seconds"` // short-term feature step
	SilenceThreshold float64 `yaml:"silence_threshold"`
	MinVoicedF0      float64 `yaml:"min_voiced_f0"` // Hz, exclusive
	MaxVoicedF0      float64 `yaml:"max_voiced_f0"` // Hz, exclusive
}

// ScoringConfig contains the evidence bands and weights of the scoring table.
type ScoringConfig struct {
	StrongMaleF0Min float64 `yaml:"strong_male_f0_min"`
	StrongMaleF0Max float64 `yaml:"strong_male_f0_max"`
	WeakMaleF0Max   float64 `yaml:"weak_male_f0_max"`
	FemaleF0Max     float64 `yaml:"female_f0_max"`
	CentroidCutoff  float64 `yaml:"centroid_cutoff"`
	ZCRCutoff       float64 `yaml:"zcr_cutoff"`
}

// PreprocessConfig contains external tool configuration.
type PreprocessConfig struct {
	FFmpegPath     string  `yaml:"ffmpeg_path"`
	DemucsPath     string  `yaml:"demucs_path"`
	DemucsModel    string  `yaml:"demucs_model"`
	TargetLoudness float64 `yaml:"target_loudness"` // LUFS
	LoudnessRange  float64 `yaml:"loudness_range"`
	TruePeak       float64 `yaml:"true_peak"` // dB
}

// HTTPConfig contains the service-mode HTTP server configuration.
type HTTPConfig struct {
	Address string `yaml:"address"`
	Port    int    `yaml:"port"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Default returns the standard configuration used when no file is given.
func Default() *Config {
	return &Config{
		Audio: AudioConfig{
			SampleRate:       44100,
			WindowSeconds:    3.0,
			HopSeconds:       1.0,
			FrameSeconds:     0.050,
			FrameStepSeconds: 0.025,
			SilenceThreshold: audio.SilenceThreshold,
			MinVoicedF0:      50,
			MaxVoicedF0:      300,
		},
		Scoring: ScoringConfig{
			StrongMaleF0Min: 85,
			StrongMaleF0Max: 155,
			WeakMaleF0Max:   170,
			FemaleF0Max:     255,
			CentroidCutoff:  1600,
			ZCRCutoff:       0.1,
		},
		Preprocess: PreprocessConfig{
			FFmpegPath:     "ffmpeg",
			DemucsPath:     "demucs",
			DemucsModel:    "htdemucs",
			TargetLoudness: -16,
			LoudnessRange:  11,
			TruePeak:       -1.5,
		},
		HTTP: HTTPConfig{
			Address: "0.0.0.0",
			Port:    8080,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// Load reads and parses the configuration file. Values missing from the
// file keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// Validate performs validation of the complete configuration.
func (c *Config) Validate() error {
	if err := c.Audio.Validate(); err != nil {
		return fmt.Errorf("audio config: %w", err)
	}

	if err := c.Scoring.Validate(); err != nil {
		return fmt.Errorf("scoring config: %w", err)
	}

	if err := c.Preprocess.Validate(); err != nil {
		return fmt.Errorf("preprocess config: %w", err)
	}

	if err := c.HTTP.Validate(); err != nil {
		return fmt.Errorf("http config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// Validate validates audio configuration.
func (a *AudioConfig) Validate() error {
	if a.SampleRate <= 0 {
		return fmt.Errorf("sample_rate must be positive, got %d", a.SampleRate)
	}

	if a.WindowSeconds <= 0 {
		return fmt.Errorf("window_seconds must be positive, got %f", a.WindowSeconds)
	}

	if a.HopSeconds <= 0 {
		return fmt.Errorf("hop_seconds must be positive, got %f", a.HopSeconds)
	}

	if a.HopSeconds > a.WindowSeconds {
		return fmt.Errorf("hop_seconds (%f) must not exceed window_seconds (%f)", a.HopSeconds, a.WindowSeconds)
	}

	if a.FrameSeconds <= 0 {
		return fmt.Errorf("frame_seconds must be positive, got %f", a.FrameSeconds)
	}

	if a.FrameStepSeconds <= 0 {
		return fmt.Errorf("frame_step_seconds must be positive, got %f", a.FrameStepSeconds)
	}

	if a.SilenceThreshold <= 0 {
		return fmt.Errorf("silence_threshold must be positive, got %g", a.SilenceThreshold)
	}

	if a.MinVoicedF0 <= 0 || a.MaxVoicedF0 <= a.MinVoicedF0 {
		return fmt.Errorf("voiced F0 range [%f, %f] is invalid", a.MinVoicedF0, a.MaxVoicedF0)
	}

	return nil
}

// Validate validates scoring configuration.
func (s *ScoringConfig) Validate() error {
	if s.StrongMaleF0Min <= 0 {
		return fmt.Errorf("strong_male_f0_min must be positive, got %f", s.StrongMaleF0Min)
	}

	if s.StrongMaleF0Max <= s.StrongMaleF0Min {
		return fmt.Errorf("strong_male_f0_max (%f) must exceed strong_male_f0_min (%f)",
			s.StrongMaleF0Max, s.StrongMaleF0Min)
	}

	if s.WeakMaleF0Max <= s.StrongMaleF0Max {
		return fmt.Errorf("weak_male_f0_max (%f) must exceed strong_male_f0_max (%f)",
			s.WeakMaleF0Max, s.StrongMaleF0Max)
	}

	if s.FemaleF0Max <= s.WeakMaleF0Max {
		return fmt.Errorf("female_f0_max (%f) must exceed weak_male_f0_max (%f)",
			s.FemaleF0Max, s.WeakMaleF0Max)
	}

	if s.CentroidCutoff <= 0 {
		return fmt.Errorf("centroid_cutoff must be positive, got %f", s.CentroidCutoff)
	}

	if s.ZCRCutoff <= 0 || s.ZCRCutoff >= 1 {
		return fmt.Errorf("zcr_cutoff must be between 0 and 1, got %f", s.ZCRCutoff)
	}

	return nil
}

// Validate validates preprocessing configuration.
func (p *PreprocessConfig) Validate() error {
	if p.FFmpegPath == "" {
		return fmt.Errorf("ffmpeg_path cannot be empty")
	}

	if p.DemucsPath == "" {
		return fmt.Errorf("demucs_path cannot be empty")
	}

	if p.DemucsModel == "" {
		return fmt.Errorf("demucs_model cannot be empty")
	}

	if p.TargetLoudness >= 0 {
		return fmt.Errorf("target_loudness must be negative LUFS, got %f", p.TargetLoudness)
	}

	if p.LoudnessRange <= 0 {
		return fmt.Errorf("loudness_range must be positive, got %f", p.LoudnessRange)
	}

	if p.TruePeak > 0 {
		return fmt.Errorf("true_peak must not be positive, got %f", p.TruePeak)
	}

	return nil
}

// Validate validates HTTP configuration.
func (h *HTTPConfig) Validate() error {
	if h.Port < 1 || h.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", h.Port)
	}

	if h.Address == "" {
		return fmt.Errorf("address cannot be empty")
	}

	return nil
}

// Validate validates logging configuration.
func (l *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[l.Level] {
		return fmt.Errorf("level must be one of [debug, info, warn, error], got '%s'", l.Level)
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("format must be 'json' or 'text', got '%s'", l.Format)
	}

	return nil
}

// PipelineConfig maps the configuration onto the classification pipeline
// parameters.
func (c *Config) PipelineConfig() classify.PipelineConfig {
	return classify.PipelineConfig{
		Chunker: audio.ChunkerConfig{
			WindowSeconds: c.Audio.WindowSeconds,
			HopSeconds:    c.Audio.HopSeconds,
		},
		Analyzer: classify.AnalyzerConfig{
			FrameSeconds:     c.Audio.FrameSeconds,
			FrameStepSeconds: c.Audio.FrameStepSeconds,
			SilenceThreshold: c.Audio.SilenceThreshold,
			MinVoicedF0:      c.Audio.MinVoicedF0,
			MaxVoicedF0:      c.Audio.MaxVoicedF0,
		},
		Scoring: c.ScoringTable(),
	}
}

// ScoringTable maps the configuration onto the scorer's table, keeping the
// default rule weights.
func (c *Config) ScoringTable() classify.ScoringConfig {
	table := classify.DefaultScoringConfig()
	table.StrongMaleF0Min = c.Scoring.StrongMaleF0Min
	table.StrongMaleF0Max = c.Scoring.StrongMaleF0Max
	table.WeakMaleF0Max = c.Scoring.WeakMaleF0Max
	table.FemaleF0Max = c.Scoring.FemaleF0Max
	table.CentroidCutoff = c.Scoring.CentroidCutoff
	table.ZCRCutoff = c.Scoring.ZCRCutoff
	return table
}

// PreprocessorConfig maps the configuration onto the external tool
// parameters.
func (c *Config) PreprocessorConfig() preprocess.Config {
	return preprocess.Config{
		FFmpegPath:     c.Preprocess.FFmpegPath,
		DemucsPath:     c.Preprocess.DemucsPath,
		DemucsModel:    c.Preprocess.DemucsModel,
		TargetLoudness: c.Preprocess.TargetLoudness,
		LoudnessRange:  c.Preprocess.LoudnessRange,
		TruePeak:       c.Preprocess.TruePeak,
		SampleRate:     c.Audio.SampleRate,
	}
}
