// Package preprocess turns arbitrary input audio into the normalized mono
// PCM waveform the classifier expects. It drives the demucs vocal-isolation
// and ffmpeg conversion tools as external processes, falling back to direct
// conversion when isolation fails, and cleans up all scratch files on every
// exit path.
package preprocess
