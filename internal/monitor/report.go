package monitor

import (
	"fmt"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/groundline-robotics/terrain.clearance/internal/telemetry"
)

// WriteSessionReport renders an HTML report for one recorded session:
// smoothed detector readings and the recommended height over frames,
// plus a per-action frame count.
func WriteSessionReport(db *telemetry.DB, sessionID, outPath string) error {
	samples, err := db.SessionSamples(sessionID)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("session %s has no recorded frames", sessionID)
	}
	counts, err := db.ActionCounts(sessionID)
	if err != nil {
		return err
	}

	frames := make([]string, 0, len(samples))
	ceiling := make([]opts.LineData, 0, len(samples))
	height := make([]opts.LineData, 0, len(samples))
	recommended := make([]opts.LineData, 0, len(samples))
	for _, s := range samples {
		frames = append(frames, fmt.Sprintf("%d", s.FrameIndex))
		ceiling = append(ceiling, opts.LineData{Value: s.CeilingDistance})
		height = append(height, opts.LineData{Value: s.ObstacleHeight})
		recommended = append(recommended, opts.LineData{Value: s.RecommendedHeight})
	}

	readings := charts.NewLine()
	readings.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Terrain Clearance Readings",
			Subtitle: fmt.Sprintf("session=%s frames=%d", sessionID, len(samples)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Frame"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Meters"}),
	)
	readings.SetXAxis(frames).
		AddSeries("ceiling distance", ceiling).
		AddSeries("obstacle height", height).
		AddSeries("recommended height", recommended)

	actions := charts.NewBar()
	actions.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Actions per Frame Count"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	// Stable order so repeated renders of the same session diff clean.
	names := []string{"NORMAL", "RAISE", "LOWER", "STOP"}
	bars := make([]opts.BarData, 0, len(names))
	for _, n := range names {
		bars = append(bars, opts.BarData{Value: counts[n]})
	}
	actions.SetXAxis(names).
		AddSeries("frames", bars,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}))

	page := components.NewPage()
	page.AddCharts(readings, actions)

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	defer f.Close()

	if err := page.Render(f); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}
