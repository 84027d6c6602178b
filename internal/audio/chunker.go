package audio

import (
	"iter"
	"math"
)

// Window is a contiguous slice of a waveform handed to per-window analysis.
// Samples alias the source waveform and must not be mutated.
type Window struct {
	Samples []float64
	Index   int
	Offset  int // start position in the source waveform, in samples
}

// ChunkerConfig contains the windowing parameters.
type ChunkerConfig struct {
	WindowSeconds float64 // analysis window length
	HopSeconds    float64 // distance between adjacent window starts
}

// Chunker splits a waveform into fixed-length overlapping analysis windows.
type Chunker struct {
	config ChunkerConfig
}

// NewChunker creates a chunker with the given windowing parameters.
func NewChunker(config ChunkerConfig) *Chunker {
	return &Chunker{config: config}
}

// WindowLen returns the window length in samples for the given sample rate.
func (c *Chunker) WindowLen(sampleRate int) int {
	return int(math.Round(c.config.WindowSeconds * float64(sampleRate)))
}

// HopLen returns the hop length in samples for the given sample rate.
func (c *Chunker) HopLen(sampleRate int) int {
	return int(math.Round(c.config.HopSeconds * float64(sampleRate)))
}

// Windows returns a restartable sequence of full-length windows over the
// waveform, ordered by start offset. Only complete windows are emitted,
// except when the waveform is shorter than one window length and non-empty,
// in which case the entire waveform is the single window.
func (c *Chunker) Windows(w *Waveform) iter.Seq[Window] {
	windowLen := c.WindowLen(w.SampleRate)
	hopLen := c.HopLen(w.SampleRate)

	return func(yield func(Window) bool) {
		if len(w.Samples) == 0 || windowLen <= 0 || hopLen <= 0 {
			return
		}

		if len(w.Samples) < windowLen {
			// Waveform shorter than one window: analyze it whole.
			yield(Window{Samples: w.Samples, Index: 0, Offset: 0})
			return
		}

		index := 0
		for start := 0; start+windowLen <= len(w.Samples); start += hopLen {
			win := Window{
				Samples: w.Samples[start : start+windowLen],
				Index:   index,
				Offset:  start,
			}
			if !yield(win) {
				return
			}
			index++
		}
	}
}

// Count returns the number of windows Windows will emit for the waveform.
func (c *Chunker) Count(w *Waveform) int {
	count := 0
	for range c.Windows(w) {
		count++
	}
	return count
}
