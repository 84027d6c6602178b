package classify

import "errors"

// ErrNoValidChunks reports that every analysis window was rejected. The
// message is part of the CLI contract.
var ErrNoValidChunks = errors.New("Could not analyze any audio chunks")

// Aggregate combines per-window feature records into the corpus-level
// summary: median of the per-window median F0 values and arithmetic means
// of the remaining statistics. Pure and order-independent.
func Aggregate(chunks []ChunkFeatures) (AggregatedFeatures, error) {
	if len(chunks) == 0 {
		return AggregatedFeatures{}, ErrNoValidChunks
	}

	f0s := make([]float64, len(chunks))
	centroids := make([]float64, len(chunks))
	rolloffs := make([]float64, len(chunks))
	zcrs := make([]float64, len(chunks))

	for i, c := range chunks {
		f0s[i] = c.MedianF0
		centroids[i] = c.SpectralCentroid
		rolloffs[i] = c.SpectralRolloff
		zcrs[i] = c.ZCR
	}

	return AggregatedFeatures{
		MedianF0:         median(f0s),
		SpectralCentroid: mean(centroids),
		SpectralRolloff:  mean(rolloffs),
		ZCR:              mean(zcrs),
	}, nil
}
