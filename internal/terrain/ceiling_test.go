package terrain

import (
	"math"
	"testing"
)

const (
	testRows = 120
	testCols = 160
)

// ceilingFrame builds a frame whose ceiling zone reads depth overhead
// everywhere and whose remaining rows read ground (far, valid).
func ceilingFrame(overhead, ground float64) *DepthFrame {
	f := UniformFrame(testRows, testCols, ground)
	f.SetRect(0, int(testRows*0.30), 0, testCols, overhead)
	return f
}

func TestAnalyzeCeiling_Detected(t *testing.T) {
	cfg := DefaultConfig()
	sm := newMedianSmoother(cfg.SmoothingWindow)

	r, _ := analyzeCeiling(ceilingFrame(0.45, 1.2), cfg, sm)
	if !r.Detected {
		t.Fatal("ceiling at 0.45m not detected with warning distance 1.5m")
	}
	if r.ClearanceOK {
		t.Error("clearance reported OK at 0.45m with min clearance 0.5m")
	}
	if math.Abs(r.Distance-0.45) > 1e-9 {
		t.Errorf("distance = %v, want 0.45 (constant zone, any percentile)", r.Distance)
	}
}

func TestAnalyzeCeiling_ClearWhenFar(t *testing.T) {
	cfg := DefaultConfig()
	sm := newMedianSmoother(cfg.SmoothingWindow)

	r, _ := analyzeCeiling(ceilingFrame(2.0, 1.2), cfg, sm)
	if r.Detected {
		t.Error("ceiling at 2.0m detected with warning distance 1.5m")
	}
	if !r.ClearanceOK {
		t.Error("clearance not OK at 2.0m")
	}
}

func TestAnalyzeCeiling_SparseZoneFailsOpen(t *testing.T) {
	cfg := DefaultConfig()
	sm := newMedianSmoother(cfg.SmoothingWindow)

	// All returns invalid (zero depth): insufficient data is "assume
	// clear", never an error or a stop.
	f := UniformFrame(testRows, testCols, 0)
	r, _ := analyzeCeiling(f, cfg, sm)
	if r.Detected {
		t.Error("sparse zone reported a detection")
	}
	if !r.ClearanceOK {
		t.Error("sparse zone reported clearance not OK")
	}
	if r.Distance != DistanceUnknown {
		t.Errorf("sparse zone distance = %v, want sentinel %v", r.Distance, DistanceUnknown)
	}
	if sm.len() != 0 {
		t.Error("sparse zone mutated the smoothing history")
	}
}

func TestAnalyzeCeiling_PercentileResistsNoise(t *testing.T) {
	cfg := DefaultConfig()
	sm := newMedianSmoother(cfg.SmoothingWindow)

	// A handful of spuriously close pixels must not drag the estimate:
	// the 10th percentile sits well above them.
	f := ceilingFrame(1.0, 2.0)
	for c := 0; c < 5; c++ {
		f.Set(0, 20+c, 0.15)
	}
	r, _ := analyzeCeiling(f, cfg, sm)
	if r.Distance < 0.9 {
		t.Errorf("distance = %v dragged down by 5 noisy pixels", r.Distance)
	}
}

func TestAnalyzeCeiling_SmoothsAcrossFrames(t *testing.T) {
	cfg := DefaultConfig()
	sm := newMedianSmoother(cfg.SmoothingWindow)

	var last CeilingReading
	for _, d := range []float64{0.40, 0.60, 0.50} {
		last, _ = analyzeCeiling(ceilingFrame(d, 1.2), cfg, sm)
	}
	if math.Abs(last.Distance-0.50) > 1e-9 {
		t.Errorf("smoothed distance = %v, want median 0.50", last.Distance)
	}
}
