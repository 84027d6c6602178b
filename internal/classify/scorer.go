package classify

// ScoringConfig contains the evidence bands and weights of the scoring
// table. The numeric bounds are empirical speech constants kept in
// configuration so they can be tuned without touching the rule structure.
type ScoringConfig struct {
	StrongMaleF0Min float64 // inclusive lower bound of the strong-male F0 band
	StrongMaleF0Max float64 // inclusive upper bound of the strong-male F0 band
	WeakMaleF0Max   float64 // upper bound of the weak-male band (exclusive lower bound is StrongMaleF0Max)
	FemaleF0Max     float64 // upper bound of the female band (exclusive lower bound is WeakMaleF0Max)

	StrongMaleWeight float64
	WeakMaleWeight   float64
	FemaleWeight     float64

	CentroidCutoff float64 // mean spectral centroid below this adds male evidence
	CentroidWeight float64
	ZCRCutoff      float64 // mean zero-crossing rate below this adds male evidence
	ZCRWeight      float64
}

// DefaultScoringConfig returns the standard scoring table.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		StrongMaleF0Min:  85,
		StrongMaleF0Max:  155,
		WeakMaleF0Max:    170,
		FemaleF0Max:      255,
		StrongMaleWeight: 2.0,
		WeakMaleWeight:   1.0,
		FemaleWeight:     -1.0,
		CentroidCutoff:   1600,
		CentroidWeight:   0.5,
		ZCRCutoff:        0.1,
		ZCRWeight:        0.5,
	}
}

// Scorer maps aggregated features to a signed score and a label.
type Scorer struct {
	config ScoringConfig
}

// NewScorer creates a scorer with the given scoring table.
func NewScorer(config ScoringConfig) *Scorer {
	return &Scorer{config: config}
}

// Score evaluates the additive scoring table once. The F0 bands are
// mutually exclusive; the centroid and ZCR rules are independent of the F0
// rule and of each other. A positive score labels the speaker male.
func (s *Scorer) Score(f AggregatedFeatures) (float64, Label) {
	cfg := s.config
	score := 0.0

	switch {
	case f.MedianF0 >= cfg.StrongMaleF0Min && f.MedianF0 <= cfg.StrongMaleF0Max:
		score += cfg.StrongMaleWeight
	case f.MedianF0 > cfg.StrongMaleF0Max && f.MedianF0 <= cfg.WeakMaleF0Max:
		score += cfg.WeakMaleWeight
	case f.MedianF0 > cfg.WeakMaleF0Max && f.MedianF0 <= cfg.FemaleF0Max:
		score += cfg.FemaleWeight
	}

	if f.SpectralCentroid < cfg.CentroidCutoff {
		score += cfg.CentroidWeight
	}

	if f.ZCR < cfg.ZCRCutoff {
		score += cfg.ZCRWeight
	}

	label := Female
	if score > 0 {
		label = Male
	}

	return score, label
}
