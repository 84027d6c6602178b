package features

// Row indices in the per-frame feature matrix. The layout is fixed by the
// extractor contract; downstream analysis indexes rows positionally.
const (
	RowF0 = iota
	RowEnergy
	RowZCR
	RowCentroid
	RowRolloff
	NumRows
)

// Matrix holds per-frame feature values, one row per feature and one column
// per analysis frame.
type Matrix [][]float64

// NewMatrix allocates a matrix with NumRows rows and the given frame count.
func NewMatrix(frames int) Matrix {
	m := make(Matrix, NumRows)
	for i := range m {
		m[i] = make([]float64, frames)
	}
	return m
}

// Frames returns the number of frames (columns) in the matrix.
func (m Matrix) Frames() int {
	if len(m) == 0 {
		return 0
	}
	return len(m[0])
}

// Row returns the values for one feature across all frames, or nil when the
// row index is outside the matrix.
func (m Matrix) Row(r int) []float64 {
	if r < 0 || r >= len(m) {
		return nil
	}
	return m[r]
}

// Extractor computes per-frame acoustic features for a signal segment.
// frameLen and frameStep are expressed in samples. Implementations must
// return a Matrix with the row layout defined by the Row* constants.
type Extractor interface {
	Extract(samples []float64, sampleRate, frameLen, frameStep int) (Matrix, error)
}
