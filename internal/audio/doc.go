// Package audio provides the waveform model for the classification pipeline.
// It handles WAV decoding into float64 samples, peak normalization with
// silence detection, and splitting a waveform into fixed-length overlapping
// analysis windows.
package audio
