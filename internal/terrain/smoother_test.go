package terrain

import (
	"math"
	"testing"
)

func TestMedianSmoother_IdempotentOnConstant(t *testing.T) {
	const window = 5
	s := newMedianSmoother(window)

	var out float64
	for i := 0; i < window; i++ {
		out = s.push(0.42)
	}
	if out != 0.42 {
		t.Errorf("after %d pushes of 0.42, smoothed = %v, want exactly 0.42", window, out)
	}
}

func TestMedianSmoother_EvictsOldest(t *testing.T) {
	s := newMedianSmoother(3)
	s.push(10)
	s.push(10)
	s.push(10)
	// 10 leaves the window after three more pushes of 2.
	s.push(2)
	s.push(2)
	out := s.push(2)
	if out != 2 {
		t.Errorf("smoothed = %v, want 2 after old readings evicted", out)
	}
	if s.len() != 3 {
		t.Errorf("history length = %d, want 3", s.len())
	}
}

func TestMedianSmoother_RejectsSpike(t *testing.T) {
	s := newMedianSmoother(5)
	s.push(1.0)
	s.push(1.0)
	out := s.push(100.0)
	if out != 1.0 {
		t.Errorf("smoothed = %v, want 1.0 (single spike must not move the median)", out)
	}
}

func TestMedianSmoother_EvenWindowAveragesMiddle(t *testing.T) {
	s := newMedianSmoother(4)
	s.push(1)
	s.push(2)
	s.push(3)
	out := s.push(4)
	if math.Abs(out-2.5) > 1e-12 {
		t.Errorf("median of [1 2 3 4] = %v, want 2.5", out)
	}
}

func TestMedianSmoother_Deterministic(t *testing.T) {
	seq := []float64{0.3, 0.7, 0.1, 0.5, 0.5, 0.9, 0.2}
	a := newMedianSmoother(5)
	b := newMedianSmoother(5)
	for _, v := range seq {
		if got, want := a.push(v), b.push(v); got != want {
			t.Fatalf("same push sequence diverged: %v != %v", got, want)
		}
	}
}

func TestMedianSmoother_Reset(t *testing.T) {
	s := newMedianSmoother(5)
	s.push(3)
	s.push(3)
	s.reset()
	if s.len() != 0 {
		t.Fatalf("history length after reset = %d, want 0", s.len())
	}
	if out := s.push(7); out != 7 {
		t.Errorf("first push after reset = %v, want 7", out)
	}
}
