package terrain

import "sort"

// medianSmoother keeps a bounded FIFO of recent scalar readings and
// reports the median of the window. Median rather than mean so a single
// spiked frame cannot move the output. Given the same sequence of
// pushes the output sequence is deterministic, and once the same value
// has been pushed window times the output equals that value exactly.
type medianSmoother struct {
	window  int
	history []float64
	scratch []float64
}

func newMedianSmoother(window int) *medianSmoother {
	if window < 1 {
		window = 1
	}
	return &medianSmoother{
		window:  window,
		history: make([]float64, 0, window),
		scratch: make([]float64, 0, window),
	}
}

// push appends v, evicts the oldest reading if the window is full, and
// returns the median of the current window.
func (s *medianSmoother) push(v float64) float64 {
	if len(s.history) == s.window {
		copy(s.history, s.history[1:])
		s.history = s.history[:s.window-1]
	}
	s.history = append(s.history, v)

	s.scratch = append(s.scratch[:0], s.history...)
	sort.Float64s(s.scratch)
	n := len(s.scratch)
	if n%2 == 1 {
		return s.scratch[n/2]
	}
	return (s.scratch[n/2-1] + s.scratch[n/2]) / 2
}

// reset discards all history.
func (s *medianSmoother) reset() {
	s.history = s.history[:0]
}

func (s *medianSmoother) len() int { return len(s.history) }
