package audio

import (
	"fmt"
	"os"

	"github.com/go-audio/wav"
)

// ReadWAVFile decodes a mono PCM WAV file into a Waveform. Sample values are
// kept at their integer amplitudes; callers normalize before analysis.
func ReadWAVFile(path string) (*Waveform, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open WAV file %s: %w", path, err)
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file %s", path)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to decode WAV file %s: %w", path, err)
	}

	format := buf.Format
	if format.NumChannels != 1 {
		return nil, fmt.Errorf("unsupported channel count: %d (only mono is supported)", format.NumChannels)
	}

	if format.SampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate: %d", format.SampleRate)
	}

	samples := make([]float64, len(buf.Data))
	for i, s := range buf.Data {
		samples[i] = float64(s)
	}

	return NewWaveform(samples, format.SampleRate), nil
}
