// Package classify implements the gender classification core: per-window
// feature analysis with outlier rejection, robust aggregation across
// windows, and the additive scoring table that maps aggregated features to
// a male/female label. The pipeline type wires the preprocessing and
// feature-extraction collaborators around the core.
package classify
