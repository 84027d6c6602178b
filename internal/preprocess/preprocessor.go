package preprocess

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Result describes a completed preprocessing run.
type Result struct {
	OutputPath string // path to the normalized WAV file
	Isolated   bool   // whether vocal isolation succeeded
}

// Preprocessor produces a normalized mono 16-bit PCM WAV from an input
// audio file. Implementations attempt vocal isolation first and fall back
// to direct conversion; the call blocks until the tools complete.
type Preprocessor interface {
	Preprocess(ctx context.Context, inputPath, outputPath string) (*Result, error)
}

// Error reports that both the vocal isolation attempt and the fallback
// conversion failed.
type Error struct {
	IsolationErr  error
	ConversionErr error
}

func (e *Error) Error() string {
	return fmt.Sprintf("preprocessing failed: isolation: %v; conversion: %v",
		e.IsolationErr, e.ConversionErr)
}

// Unwrap exposes the fallback conversion error, the terminal failure.
func (e *Error) Unwrap() error {
	return e.ConversionErr
}

// Config contains the external tool configuration.
type Config struct {
	FFmpegPath  string
	DemucsPath  string
	DemucsModel string

	// Loudness normalization targets applied by the ffmpeg filter chain.
	TargetLoudness float64 // integrated loudness, LUFS
	LoudnessRange  float64
	TruePeak       float64 // true-peak ceiling, dB

	SampleRate int
}

// DefaultConfig returns tool defaults matching the classifier's input
// contract: mono 16-bit PCM at 44.1 kHz, -16 LUFS.
func DefaultConfig() Config {
	return Config{
		FFmpegPath:     "ffmpeg",
		DemucsPath:     "demucs",
		DemucsModel:    "htdemucs",
		TargetLoudness: -16,
		LoudnessRange:  11,
		TruePeak:       -1.5,
		SampleRate:     44100,
	}
}

// commandRunner executes an external command, returning its combined
// diagnostic output on failure. Swapped out in tests.
type commandRunner func(ctx context.Context, name string, args ...string) error

// ToolPreprocessor implements Preprocessor on top of the demucs and ffmpeg
// binaries.
type ToolPreprocessor struct {
	config Config
	logger *slog.Logger
	run    commandRunner
}

// Compile-time interface implementation check.
var _ Preprocessor = (*ToolPreprocessor)(nil)

// NewToolPreprocessor creates a preprocessor using the given tool
// configuration.
func NewToolPreprocessor(config Config, logger *slog.Logger) *ToolPreprocessor {
	return &ToolPreprocessor{
		config: config,
		logger: logger,
		run:    runCommand,
	}
}

// Preprocess attempts vocal isolation followed by loudness-normalized
// conversion; when isolation fails, it converts the original file directly.
// The returned error is a *Error only when both paths fail.
func (p *ToolPreprocessor) Preprocess(ctx context.Context, inputPath, outputPath string) (*Result, error) {
	isolationErr := p.extractVocals(ctx, inputPath, outputPath)
	if isolationErr == nil {
		return &Result{OutputPath: outputPath, Isolated: true}, nil
	}

	p.logger.Warn("Vocal isolation failed, falling back to direct conversion",
		slog.String("input", inputPath),
		slog.String("error", isolationErr.Error()),
	)

	if convErr := p.convert(ctx, inputPath, outputPath); convErr != nil {
		return nil, &Error{IsolationErr: isolationErr, ConversionErr: convErr}
	}

	return &Result{OutputPath: outputPath, Isolated: false}, nil
}

// extractVocals separates the vocal stem with demucs and converts it to the
// normalized WAV format. The demucs working directory is removed before
// returning, on success and failure alike.
func (p *ToolPreprocessor) extractVocals(ctx context.Context, inputPath, outputPath string) error {
	tempDir, err := os.MkdirTemp("", "voicegender-demucs-")
	if err != nil {
		return fmt.Errorf("failed to create demucs working directory: %w", err)
	}
	defer os.RemoveAll(tempDir)

	p.logger.Debug("Running demucs", slog.String("input", inputPath))

	err = p.run(ctx, p.config.DemucsPath,
		"--two-stems=vocals",
		"-n", p.config.DemucsModel,
		"--mp3",
		"-o", tempDir,
		inputPath,
	)
	if err != nil {
		return fmt.Errorf("demucs failed: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	vocalsPath := filepath.Join(tempDir, p.config.DemucsModel, base, "vocals.mp3")
	if _, err := os.Stat(vocalsPath); err != nil {
		return fmt.Errorf("demucs did not produce a vocals stem: %w", err)
	}

	p.logger.Debug("Converting isolated vocals", slog.String("vocals", vocalsPath))

	return p.convert(ctx, vocalsPath, outputPath)
}

// convert runs ffmpeg with the loudness-normalizing filter chain, producing
// mono 16-bit PCM at the configured sample rate.
func (p *ToolPreprocessor) convert(ctx context.Context, inputPath, outputPath string) error {
	filter := fmt.Sprintf("loudnorm=I=%g:LRA=%g:TP=%g,aresample=%d",
		p.config.TargetLoudness, p.config.LoudnessRange, p.config.TruePeak, p.config.SampleRate)

	err := p.run(ctx, p.config.FFmpegPath,
		"-v", "error",
		"-i", inputPath,
		"-af", filter,
		"-ac", "1",
		"-acodec", "pcm_s16le",
		"-ar", fmt.Sprintf("%d", p.config.SampleRate),
		"-y",
		outputPath,
	)
	if err != nil {
		return fmt.Errorf("ffmpeg conversion failed: %w", err)
	}

	return nil
}

// runCommand executes an external tool, folding its stderr into the error.
func runCommand(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return fmt.Errorf("%s: %w", name, err)
	}

	return nil
}
