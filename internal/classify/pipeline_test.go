package classify

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/region23/voicegender/internal/audio"
	"github.com/region23/voicegender/internal/features"
	"github.com/region23/voicegender/internal/preprocess"
)

func realExtractor() features.Extractor {
	return features.NewSTFTExtractor(features.DefaultSTFTConfig())
}

// fakePreprocessor copies a prepared WAV file into place instead of running
// external tools.
type fakePreprocessor struct {
	sourcePath string
	isolated   bool
	err        error
}

func (f *fakePreprocessor) Preprocess(ctx context.Context, inputPath, outputPath string) (*preprocess.Result, error) {
	if f.err != nil {
		return nil, f.err
	}

	data, err := os.ReadFile(f.sourcePath)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return nil, err
	}

	return &preprocess.Result{OutputPath: outputPath, Isolated: f.isolated}, nil
}

// writeWAV writes mono 16-bit PCM samples to a temp WAV file.
func writeWAV(t *testing.T, samples []int, sampleRate int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "source.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create WAV: %v", err)
	}
	defer f.Close()

	encoder := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           samples,
		SourceBitDepth: 16,
	}
	if err := encoder.Write(buf); err != nil {
		t.Fatalf("Failed to write WAV: %v", err)
	}
	if err := encoder.Close(); err != nil {
		t.Fatalf("Failed to close encoder: %v", err)
	}

	return path
}

func toneWAV(t *testing.T, freq float64, seconds, sampleRate int) string {
	t.Helper()

	samples := make([]int, seconds*sampleRate)
	for i := range samples {
		samples[i] = int(12000 * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate)))
	}
	return writeWAV(t, samples, sampleRate)
}

func testPipelineConfig() PipelineConfig {
	return DefaultPipelineConfig()
}

func TestPipelineClassifiesMaleTone(t *testing.T) {
	source := toneWAV(t, 120, 5, 8000)
	pre := &fakePreprocessor{sourcePath: source, isolated: true}

	extractor := &fakeExtractor{matrix: matrixWith(20, 120, 0.05, 1000, 2500)}
	pipeline := NewPipeline(testPipelineConfig(), pre, extractor, testLogger(), nil)

	result, err := pipeline.Run(context.Background(), "input.mp3")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Label != Male {
		t.Errorf("Expected male label, got %v", result.Label)
	}
	if result.Score != 3.0 {
		t.Errorf("Expected score 3.0, got %v", result.Score)
	}
	if result.Features.MedianF0 != 120 {
		t.Errorf("Expected aggregated F0 120, got %v", result.Features.MedianF0)
	}
	if !result.Isolated {
		t.Error("Expected isolation flag to propagate")
	}

	// 5 s at a 3 s window and 1 s hop: windows start at 0, 1, and 2 s.
	if result.WindowsAnalyzed != 3 {
		t.Errorf("Expected 3 analyzed windows, got %d", result.WindowsAnalyzed)
	}
}

func TestPipelineClassifiesFemaleTone(t *testing.T) {
	source := toneWAV(t, 200, 5, 8000)
	pre := &fakePreprocessor{sourcePath: source}

	extractor := &fakeExtractor{matrix: matrixWith(20, 200, 0.15, 2000, 4000)}
	pipeline := NewPipeline(testPipelineConfig(), pre, extractor, testLogger(), nil)

	result, err := pipeline.Run(context.Background(), "input.mp3")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Label != Female {
		t.Errorf("Expected female label, got %v", result.Label)
	}
	if result.Score != -1.0 {
		t.Errorf("Expected score -1.0, got %v", result.Score)
	}
}

func TestPipelineRealExtractorOnTone(t *testing.T) {
	// End to end with the real STFT extractor: a stable 120 Hz tone must
	// land in the strong-male band.
	source := toneWAV(t, 120, 5, 8000)
	pre := &fakePreprocessor{sourcePath: source}

	pipeline := NewPipeline(testPipelineConfig(), pre, realExtractor(), testLogger(), nil)

	result, err := pipeline.Run(context.Background(), "input.mp3")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Label != Male {
		t.Errorf("Expected male label for a 120 Hz tone, got %v", result.Label)
	}

	if math.Abs(result.Features.MedianF0-120) > 6 {
		t.Errorf("Expected aggregated F0 near 120, got %v", result.Features.MedianF0)
	}
}

func TestPipelineSilentAudioFails(t *testing.T) {
	source := writeWAV(t, make([]int, 8000*4), 8000)
	pre := &fakePreprocessor{sourcePath: source}

	extractor := &fakeExtractor{matrix: matrixWith(20, 120, 0.05, 1000, 2500)}
	pipeline := NewPipeline(testPipelineConfig(), pre, extractor, testLogger(), nil)

	_, err := pipeline.Run(context.Background(), "input.mp3")
	if !errors.Is(err, audio.ErrSilence) {
		t.Errorf("Expected ErrSilence, got %v", err)
	}
}

func TestPipelineNoValidChunks(t *testing.T) {
	source := toneWAV(t, 120, 5, 8000)
	pre := &fakePreprocessor{sourcePath: source}

	// Every window's pitch estimates fall outside the voiced range.
	extractor := &fakeExtractor{matrix: matrixWith(20, 400, 0.15, 2000, 4000)}
	pipeline := NewPipeline(testPipelineConfig(), pre, extractor, testLogger(), nil)

	result, err := pipeline.Run(context.Background(), "input.mp3")
	if !errors.Is(err, ErrNoValidChunks) {
		t.Errorf("Expected ErrNoValidChunks, got %v (result %+v)", err, result)
	}
}

func TestPipelinePreprocessorFailurePropagates(t *testing.T) {
	preErr := &preprocess.Error{
		IsolationErr:  errors.New("demucs missing"),
		ConversionErr: errors.New("ffmpeg missing"),
	}
	pre := &fakePreprocessor{err: preErr}

	pipeline := NewPipeline(testPipelineConfig(), pre, &fakeExtractor{}, testLogger(), nil)

	_, err := pipeline.Run(context.Background(), "input.mp3")
	var got *preprocess.Error
	if !errors.As(err, &got) {
		t.Errorf("Expected *preprocess.Error, got %v", err)
	}
}

func TestPipelineShortClipSingleWindow(t *testing.T) {
	// 2 s of audio is shorter than one 3 s window: the whole clip is
	// analyzed as a single window.
	source := toneWAV(t, 120, 2, 8000)
	pre := &fakePreprocessor{sourcePath: source}

	extractor := &fakeExtractor{matrix: matrixWith(20, 120, 0.05, 1000, 2500)}
	pipeline := NewPipeline(testPipelineConfig(), pre, extractor, testLogger(), nil)

	result, err := pipeline.Run(context.Background(), "input.mp3")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.WindowsAnalyzed != 1 {
		t.Errorf("Expected a single analyzed window, got %d", result.WindowsAnalyzed)
	}
}
