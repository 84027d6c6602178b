package features

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Compile-time interface implementation check.
var _ Extractor = (*STFTExtractor)(nil)

// STFTConfig contains tuning parameters for the STFT extractor.
type STFTConfig struct {
	RolloffFraction  float64 // fraction of spectral energy below the rolloff point
	MinF0            float64 // lowest pitch the autocorrelation search considers (Hz)
	MaxF0            float64 // highest pitch the autocorrelation search considers (Hz)
	VoicingThreshold float64 // minimum normalized autocorrelation peak for a voiced frame
}

// DefaultSTFTConfig returns the extractor defaults.
func DefaultSTFTConfig() STFTConfig {
	return STFTConfig{
		RolloffFraction:  0.90,
		MinF0:            50,
		MaxF0:            500,
		VoicingThreshold: 0.30,
	}
}

// STFTExtractor computes per-frame features using a Hamming-windowed
// short-time Fourier transform for the spectral rows and normalized
// autocorrelation for the pitch row. Unvoiced frames carry an F0 of zero.
type STFTExtractor struct {
	config STFTConfig
}

// NewSTFTExtractor creates an extractor with the given configuration.
func NewSTFTExtractor(config STFTConfig) *STFTExtractor {
	return &STFTExtractor{config: config}
}

// Extract computes the feature matrix for the segment. Frames are laid out
// from offset 0 with the given step; a segment shorter than one frame yields
// a zero-frame matrix.
func (e *STFTExtractor) Extract(samples []float64, sampleRate, frameLen, frameStep int) (Matrix, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}
	if frameLen <= 0 {
		return nil, fmt.Errorf("frame length must be positive, got %d", frameLen)
	}
	if frameStep <= 0 {
		return nil, fmt.Errorf("frame step must be positive, got %d", frameStep)
	}

	numFrames := 0
	if len(samples) >= frameLen {
		numFrames = (len(samples)-frameLen)/frameStep + 1
	}

	m := NewMatrix(numFrames)
	if numFrames == 0 {
		return m, nil
	}

	fft := fourier.NewFFT(frameLen)
	window := hammingWindow(frameLen)
	windowed := make([]float64, frameLen)
	coeffs := make([]complex128, frameLen/2+1)

	for f := 0; f < numFrames; f++ {
		start := f * frameStep
		frame := samples[start : start+frameLen]

		m.Row(RowEnergy)[f] = frameEnergy(frame)
		m.Row(RowZCR)[f] = zeroCrossingRate(frame)
		m.Row(RowF0)[f] = e.fundamental(frame, sampleRate)

		for i, s := range frame {
			windowed[i] = s * window[i]
		}
		coeffs = fft.Coefficients(coeffs, windowed)

		centroid, rolloff := e.spectralShape(coeffs, frameLen, sampleRate)
		m.Row(RowCentroid)[f] = centroid
		m.Row(RowRolloff)[f] = rolloff
	}

	return m, nil
}

// fundamental estimates the pitch of a frame via normalized autocorrelation
// over the configured lag range. Returns 0 for unvoiced or flat frames.
func (e *STFTExtractor) fundamental(frame []float64, sampleRate int) float64 {
	minLag := int(float64(sampleRate) / e.config.MaxF0)
	maxLag := int(float64(sampleRate) / e.config.MinF0)

	if minLag < 2 {
		minLag = 2
	}
	if maxLag >= len(frame) {
		maxLag = len(frame) - 1
	}
	if minLag >= maxLag {
		return 0
	}

	var r0 float64
	for _, s := range frame {
		r0 += s * s
	}
	if r0 == 0 {
		return 0
	}

	bestLag := 0
	bestCorr := 0.0
	for lag := minLag; lag <= maxLag; lag++ {
		var sum float64
		for i := 0; i+lag < len(frame); i++ {
			sum += frame[i] * frame[i+lag]
		}
		if corr := sum / r0; corr > bestCorr {
			bestCorr = corr
			bestLag = lag
		}
	}

	if bestLag == 0 || bestCorr < e.config.VoicingThreshold {
		return 0
	}

	return float64(sampleRate) / float64(bestLag)
}

// spectralShape computes the magnitude-weighted centroid and the energy
// rolloff frequency, both in Hz.
func (e *STFTExtractor) spectralShape(coeffs []complex128, frameLen, sampleRate int) (centroid, rolloff float64) {
	binWidth := float64(sampleRate) / float64(frameLen)

	mags := make([]float64, len(coeffs))
	var magSum, weighted, energyTotal float64
	for i, c := range coeffs {
		mag := cmplx.Abs(c)
		mags[i] = mag
		magSum += mag
		weighted += float64(i) * binWidth * mag
		energyTotal += mag * mag
	}

	if magSum > 0 {
		centroid = weighted / magSum
	}

	if energyTotal > 0 {
		target := e.config.RolloffFraction * energyTotal
		var cum float64
		for i, mag := range mags {
			cum += mag * mag
			if cum >= target {
				rolloff = float64(i) * binWidth
				break
			}
		}
	}

	return centroid, rolloff
}

// zeroCrossingRate returns the fraction of adjacent sample pairs whose signs
// differ.
func zeroCrossingRate(frame []float64) float64 {
	if len(frame) < 2 {
		return 0
	}

	crossings := 0
	for i := 1; i < len(frame); i++ {
		if (frame[i-1] >= 0) != (frame[i] >= 0) {
			crossings++
		}
	}

	return float64(crossings) / float64(len(frame)-1)
}

// frameEnergy returns the mean squared amplitude of the frame.
func frameEnergy(frame []float64) float64 {
	if len(frame) == 0 {
		return 0
	}

	var sum float64
	for _, s := range frame {
		sum += s * s
	}

	return sum / float64(len(frame))
}

// hammingWindow returns an n-point Hamming window.
func hammingWindow(n int) []float64 {
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}

	for i := range w {
		w[i] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/float64(n-1))
	}

	return w
}
