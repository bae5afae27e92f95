// Package monitor provides offline inspection tooling for the clearance
// engine: PNG time-series plots of detector readings and HTML reports
// over recorded sessions. Nothing here runs on the robot's control path.
package monitor

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/groundline-robotics/terrain.clearance/internal/terrain"
)

// ProfilePlotter accumulates per-invocation analyzer outputs and the
// ground detector's baseline fits, and renders them to PNG files after
// a run.
type ProfilePlotter struct {
	mu      sync.Mutex
	samples []profileSample

	// lastFit is the most recent baseline fit observed; kept so the
	// final ground profile can be plotted against its fitted line.
	lastFit terrain.BaselineFit
	haveFit bool
}

type profileSample struct {
	frameIdx          int
	ceilingDistance   float64
	obstacleHeight    float64
	recommendedHeight float64
	action            terrain.ClearanceAction
}

// NewProfilePlotter creates an empty plotter.
func NewProfilePlotter() *ProfilePlotter {
	return &ProfilePlotter{}
}

// Sample records one analysis result.
func (pp *ProfilePlotter) Sample(frameIdx int, res terrain.AnalysisResult) {
	pp.mu.Lock()
	defer pp.mu.Unlock()
	pp.samples = append(pp.samples, profileSample{
		frameIdx:          frameIdx,
		ceilingDistance:   res.Ceiling.Distance,
		obstacleHeight:    res.Ground.ObstacleHeight,
		recommendedHeight: res.RecommendedHeight,
		action:            res.Action,
	})
}

// ObserveBaseline records a ground baseline fit. Intended to be passed
// to (*terrain.Analyzer).SetBaselineObserver.
func (pp *ProfilePlotter) ObserveBaseline(fit terrain.BaselineFit) {
	pp.mu.Lock()
	defer pp.mu.Unlock()
	if !fit.Fitted {
		return
	}
	// Copy: the analyzer reuses the fit's backing slices per invocation.
	pp.lastFit = terrain.BaselineFit{
		RowIndex:  append([]float64(nil), fit.RowIndex...),
		RowDepth:  append([]float64(nil), fit.RowDepth...),
		Intercept: fit.Intercept,
		Slope:     fit.Slope,
		Fitted:    true,
	}
	pp.haveFit = true
}

// SampleCount returns how many analysis results have been recorded.
func (pp *ProfilePlotter) SampleCount() int {
	pp.mu.Lock()
	defer pp.mu.Unlock()
	return len(pp.samples)
}

// GeneratePlots writes the accumulated series as PNG files under
// outputDir and returns the number of plots written.
func (pp *ProfilePlotter) GeneratePlots(outputDir string) (int, error) {
	pp.mu.Lock()
	defer pp.mu.Unlock()

	if len(pp.samples) == 0 {
		return 0, nil
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return 0, fmt.Errorf("create plot output dir: %w", err)
	}

	count := 0
	series := []struct {
		file  string
		title string
		yName string
		value func(profileSample) float64
	}{
		{"ceiling_distance.png", "Smoothed Ceiling Distance", "Distance (m)",
			func(s profileSample) float64 { return s.ceilingDistance }},
		{"obstacle_height.png", "Smoothed Obstacle Height", "Height (m)",
			func(s profileSample) float64 { return s.obstacleHeight }},
		{"recommended_height.png", "Recommended Undercarriage Height", "Height (m)",
			func(s profileSample) float64 { return s.recommendedHeight }},
	}
	for _, sp := range series {
		if err := pp.renderSeries(filepath.Join(outputDir, sp.file), sp.title, sp.yName, sp.value); err != nil {
			return count, err
		}
		count++
	}

	if pp.haveFit {
		if err := pp.renderBaseline(filepath.Join(outputDir, "ground_baseline.png")); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

func (pp *ProfilePlotter) renderSeries(path, title, yName string, value func(profileSample) float64) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Frame"
	p.Y.Label.Text = yName

	pts := make(plotter.XYs, 0, len(pp.samples))
	for _, s := range pp.samples {
		pts = append(pts, plotter.XY{X: float64(s.frameIdx), Y: value(s)})
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("create line for %s: %w", title, err)
	}
	line.Width = vg.Points(1)
	p.Add(line)

	if err := p.Save(10*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// renderBaseline plots the last per-row baseline samples together with
// the fitted line, the view the calibration workflow uses to judge
// whether the ground zone really is linear in row.
func (pp *ProfilePlotter) renderBaseline(path string) error {
	p := plot.New()
	p.Title.Text = "Ground Baseline Fit"
	p.X.Label.Text = "Zone Row"
	p.Y.Label.Text = "Depth (m)"

	raw := make(plotter.XYs, 0, len(pp.lastFit.RowIndex))
	fitted := make(plotter.XYs, 0, len(pp.lastFit.RowIndex))
	for i, row := range pp.lastFit.RowIndex {
		raw = append(raw, plotter.XY{X: row, Y: pp.lastFit.RowDepth[i]})
		fitted = append(fitted, plotter.XY{X: row, Y: pp.lastFit.Intercept + pp.lastFit.Slope*row})
	}

	scatter, err := plotter.NewScatter(raw)
	if err != nil {
		return fmt.Errorf("create baseline scatter: %w", err)
	}
	line, err := plotter.NewLine(fitted)
	if err != nil {
		return fmt.Errorf("create baseline fit line: %w", err)
	}
	line.Width = vg.Points(1)
	p.Add(scatter, line)
	p.Legend.Add("row median", scatter)
	p.Legend.Add("fitted", line)

	if err := p.Save(10*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
