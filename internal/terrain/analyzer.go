// Package terrain implements the clearance decision engine for a ground
// robot with an adjustable undercarriage. Each invocation converts one
// depth frame into a recommended undercarriage action: lower to duck
// under a low overhang, raise to step over a small obstacle, or stop
// when neither is safe.
//
// The analyzer is single-threaded and call-and-return: one Analyze call
// reads one frame, updates the two per-instance smoothing histories, and
// returns a fresh result. Callers invoking it from multiple goroutines
// must serialize access or use one Analyzer per stream.
package terrain

// Analyzer owns the configuration and the only state that persists
// across invocations: the two bounded smoothing histories. State is
// per-instance, never global, so multiple analyzers (multiple robots,
// test fixtures) cannot interfere.
type Analyzer struct {
	cfg TerrainConfig

	ceilingSmoother *medianSmoother
	groundSmoother  *medianSmoother

	// baselineObserver, when set, receives the ground detector's
	// intermediate baseline fit after each invocation. Offline tooling
	// only; nil in production.
	baselineObserver func(BaselineFit)
	dbg              BaselineFit
}

// NewAnalyzer validates cfg and returns an analyzer with empty
// histories. Configuration errors fail here, immediately.
func NewAnalyzer(cfg TerrainConfig) (*Analyzer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Analyzer{
		cfg:             cfg,
		ceilingSmoother: newMedianSmoother(cfg.SmoothingWindow),
		groundSmoother:  newMedianSmoother(cfg.SmoothingWindow),
	}, nil
}

// Config returns the analyzer's immutable configuration.
func (a *Analyzer) Config() TerrainConfig { return a.cfg }

// Analyze runs the full pipeline on one depth frame: ceiling detector,
// ground obstacle detector, then the priority decision. A nil or empty
// frame, or a frame whose detection zones contain only NaN, is surfaced
// as an input error; sparse-but-real data fails open inside the
// detectors instead.
func (a *Analyzer) Analyze(frame *DepthFrame) (AnalysisResult, error) {
	if frame == nil || frame.Rows() == 0 || frame.Cols() == 0 {
		return AnalysisResult{}, ErrEmptyFrame
	}

	var dbgPtr *BaselineFit
	if a.baselineObserver != nil {
		dbgPtr = &a.dbg
		a.dbg.Fitted = false
	}

	ceiling, ceilStats := analyzeCeiling(frame, a.cfg, a.ceilingSmoother)
	ground, groundStats := analyzeGround(frame, a.cfg, a.groundSmoother, dbgPtr)

	if ceilStats.allNaN() && groundStats.allNaN() {
		return AnalysisResult{}, ErrAllNaN
	}

	if a.baselineObserver != nil {
		a.baselineObserver(a.dbg)
	}

	d := Decide(ceiling, ground, a.cfg)
	return AnalysisResult{
		Ceiling:           ceiling,
		Ground:            ground,
		Action:            d.Action,
		RecommendedHeight: d.RecommendedHeight,
		Confidence:        d.Confidence,
		Message:           d.Message,
	}, nil
}

// SetBaselineObserver attaches fn to receive the ground detector's
// baseline fit after every Analyze call. Pass nil to detach.
func (a *Analyzer) SetBaselineObserver(fn func(BaselineFit)) {
	a.baselineObserver = fn
}

// Reset discards both smoothing histories. Call after a large
// discontinuity (teleport, camera re-mount) so stale readings cannot
// bleed into the next decisions.
func (a *Analyzer) Reset() {
	a.ceilingSmoother.reset()
	a.groundSmoother.reset()
}
