package audio

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// writeTestWAV writes a mono 16-bit PCM WAV file and returns its path.
func writeTestWAV(t *testing.T, samples []int, sampleRate int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create test WAV: %v", err)
	}
	defer f.Close()

	encoder := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           samples,
		SourceBitDepth: 16,
	}
	if err := encoder.Write(buf); err != nil {
		t.Fatalf("Failed to write test WAV: %v", err)
	}
	if err := encoder.Close(); err != nil {
		t.Fatalf("Failed to close test WAV encoder: %v", err)
	}

	return path
}

func TestReadWAVFile(t *testing.T) {
	samples := make([]int, 8000)
	for i := range samples {
		samples[i] = int(10000 * math.Sin(2*math.Pi*120*float64(i)/8000))
	}
	path := writeTestWAV(t, samples, 8000)

	w, err := ReadWAVFile(path)
	if err != nil {
		t.Fatalf("ReadWAVFile failed: %v", err)
	}

	if w.SampleRate != 8000 {
		t.Errorf("Expected sample rate 8000, got %d", w.SampleRate)
	}

	if w.Len() != len(samples) {
		t.Errorf("Expected %d samples, got %d", len(samples), w.Len())
	}

	for i := 0; i < 10; i++ {
		if w.Samples[i] != float64(samples[i]) {
			t.Errorf("Sample %d: expected %d, got %f", i, samples[i], w.Samples[i])
		}
	}
}

func TestReadWAVFileMissing(t *testing.T) {
	if _, err := ReadWAVFile(filepath.Join(t.TempDir(), "missing.wav")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestReadWAVFileInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.wav")
	if err := os.WriteFile(path, []byte("not a wav file at all"), 0644); err != nil {
		t.Fatalf("Failed to write garbage file: %v", err)
	}

	if _, err := ReadWAVFile(path); err == nil {
		t.Error("Expected error for invalid WAV data")
	}
}
