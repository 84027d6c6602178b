package classify

// ChunkFeatures summarizes one usable analysis window.
type ChunkFeatures struct {
	MedianF0         float64 `json:"median_f0"`
	SpectralCentroid float64 `json:"spectral_centroid"`
	SpectralRolloff  float64 `json:"spectral_rolloff"`
	ZCR              float64 `json:"zcr"`
}

// AggregatedFeatures is the corpus-level summary over all usable windows:
// the median of per-window median F0 values and the means of the remaining
// per-window statistics. Spectral rolloff is carried for diagnostics even
// though the scoring table does not consume it.
type AggregatedFeatures struct {
	MedianF0         float64 `json:"median_f0"`
	SpectralCentroid float64 `json:"spectral_centroid"`
	SpectralRolloff  float64 `json:"spectral_rolloff"`
	ZCR              float64 `json:"zcr"`
}

// Label is the binary classification outcome.
type Label int

const (
	Female Label = iota
	Male
)

// String returns the label as emitted on standard output.
func (l Label) String() string {
	if l == Male {
		return "male"
	}
	return "female"
}
