package terrain

import (
	"errors"
	"fmt"
)

// Input errors. These indicate an upstream acquisition fault, not normal
// sensing noise; transient sensor dropouts are handled fail-open by the
// detectors instead.
var (
	// ErrEmptyFrame is returned when the frame is nil or has no pixels.
	ErrEmptyFrame = errors.New("terrain: empty depth frame")
	// ErrAllNaN is returned when every sample inside the configured
	// detection zones is NaN.
	ErrAllNaN = errors.New("terrain: depth frame contains only NaN samples in detection zones")
)

// DepthFrame is a dense H×W grid of depth measurements in meters, stored
// row-major. Values <= 0 (and NaN) mean "no return". The frame is a
// read-only input to the analyzer; it is produced and owned by the
// camera collaborator.
type DepthFrame struct {
	rows int
	cols int
	data []float64
}

// NewDepthFrame wraps data (row-major, length rows*cols) in a DepthFrame.
// The slice is retained, not copied.
func NewDepthFrame(rows, cols int, data []float64) (*DepthFrame, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("terrain: invalid frame dimensions %dx%d", rows, cols)
	}
	if len(data) != rows*cols {
		return nil, fmt.Errorf("terrain: frame data length %d does not match %dx%d", len(data), rows, cols)
	}
	return &DepthFrame{rows: rows, cols: cols, data: data}, nil
}

// UniformFrame builds a rows×cols frame where every sample equals depth.
func UniformFrame(rows, cols int, depth float64) *DepthFrame {
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = depth
	}
	return &DepthFrame{rows: rows, cols: cols, data: data}
}

// Rows returns the frame height in pixels.
func (f *DepthFrame) Rows() int { return f.rows }

// Cols returns the frame width in pixels.
func (f *DepthFrame) Cols() int { return f.cols }

// At returns the depth at (row, col) in meters.
func (f *DepthFrame) At(row, col int) float64 {
	return f.data[row*f.cols+col]
}

// Set overwrites the depth at (row, col). Used by synthetic frame
// builders and tests; live frames arrive fully populated.
func (f *DepthFrame) Set(row, col int, depth float64) {
	f.data[row*f.cols+col] = depth
}

// SetRect fills the half-open region [row0,row1)×[col0,col1) with depth,
// clipped to the frame bounds.
func (f *DepthFrame) SetRect(row0, row1, col0, col1 int, depth float64) {
	row0, row1 = clampRange(row0, row1, f.rows)
	col0, col1 = clampRange(col0, col1, f.cols)
	for r := row0; r < row1; r++ {
		base := r * f.cols
		for c := col0; c < col1; c++ {
			f.data[base+c] = depth
		}
	}
}

// SetRowGradient fills rows [row0,row1) so that every pixel in row r has
// depth start + slope*(r-row0). This reproduces the linear row-to-depth
// profile a tilted camera sees over flat ground.
func (f *DepthFrame) SetRowGradient(row0, row1 int, start, slope float64) {
	row0, row1 = clampRange(row0, row1, f.rows)
	for r := row0; r < row1; r++ {
		d := start + slope*float64(r-row0)
		base := r * f.cols
		for c := 0; c < f.cols; c++ {
			f.data[base+c] = d
		}
	}
}

func clampRange(lo, hi, n int) (int, int) {
	if lo < 0 {
		lo = 0
	}
	if hi > n {
		hi = n
	}
	if hi < lo {
		hi = lo
	}
	return lo, hi
}

// validDepth reports whether d is a usable return within the configured
// validity bounds. NaN fails both comparisons.
func validDepth(d, minValid, maxValid float64) bool {
	return d > minValid && d < maxValid
}
