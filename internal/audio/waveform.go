package audio

import (
	"errors"
	"math"
	"time"
)

// Errors reported while preparing a waveform for analysis. The messages are
// part of the CLI contract and are printed verbatim on the diagnostic stream.
var (
	ErrEmptyAudio    = errors.New("Audio file is empty")
	ErrSilence       = errors.New("Audio file contains only silence")
	ErrZeroAmplitude = errors.New("Audio file has zero amplitude")
)

// SilenceThreshold is the absolute amplitude below which a sample is
// considered silent.
const SilenceThreshold = 1e-6

// Waveform is a mono audio signal. It is read-only after construction;
// derived views (windows) share the backing sample slice.
type Waveform struct {
	Samples    []float64
	SampleRate int
}

// NewWaveform wraps raw samples and a sample rate in a Waveform.
func NewWaveform(samples []float64, sampleRate int) *Waveform {
	return &Waveform{Samples: samples, SampleRate: sampleRate}
}

// FromPCM16 converts 16-bit PCM samples to a float64 waveform.
func FromPCM16(samples []int16, sampleRate int) *Waveform {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = float64(s)
	}
	return NewWaveform(out, sampleRate)
}

// Len returns the number of samples.
func (w *Waveform) Len() int {
	return len(w.Samples)
}

// Duration returns the waveform length in time.
func (w *Waveform) Duration() time.Duration {
	if w.SampleRate <= 0 {
		return 0
	}
	seconds := float64(len(w.Samples)) / float64(w.SampleRate)
	return time.Duration(seconds * float64(time.Second))
}

// Peak returns the maximum absolute sample value.
func (w *Waveform) Peak() float64 {
	peak := 0.0
	for _, s := range w.Samples {
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}
	return peak
}

// IsSilent reports whether every sample's absolute value is below threshold.
func IsSilent(samples []float64, threshold float64) bool {
	for _, s := range samples {
		if math.Abs(s) >= threshold {
			return false
		}
	}
	return true
}

// Normalize scales the waveform so the peak absolute amplitude equals 1.0
// and returns it as a new Waveform. It fails with ErrEmptyAudio for a
// zero-length waveform, ErrSilence when every sample is below the silence
// threshold, and ErrZeroAmplitude when the peak is exactly zero.
func (w *Waveform) Normalize() (*Waveform, error) {
	if len(w.Samples) == 0 {
		return nil, ErrEmptyAudio
	}

	if IsSilent(w.Samples, SilenceThreshold) {
		return nil, ErrSilence
	}

	peak := w.Peak()
	if peak == 0 {
		return nil, ErrZeroAmplitude
	}

	normalized := make([]float64, len(w.Samples))
	for i, s := range w.Samples {
		normalized[i] = s / peak
	}

	return NewWaveform(normalized, w.SampleRate), nil
}
