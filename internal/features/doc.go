// Package features computes per-frame acoustic feature matrices for audio
// segments. It defines the extractor contract used by per-window analysis
// and provides an STFT-based implementation with autocorrelation pitch
// estimation.
package features
