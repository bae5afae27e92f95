package terrain

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

const (
	// minRowValidPixels is the minimum number of valid returns a single
	// row needs before its median contributes a baseline sample.
	minRowValidPixels = 10

	// minBaselineRows is the minimum number of usable baseline rows for
	// the linear fit. Below this (or with under two distinct row
	// indices) the fit is degenerate and the detector fails open.
	minBaselineRows = 5
)

// BaselineFit captures the intermediate products of one ground scan:
// the per-row baseline samples and the fitted line. Only populated when
// an observer is attached to the analyzer; used by offline plotting.
type BaselineFit struct {
	// RowIndex holds the zone-local index of each usable baseline row.
	RowIndex []float64
	// RowDepth holds the median valid depth (m) of the matching row.
	RowDepth []float64
	// Intercept and Slope describe the fitted line depth = Intercept +
	// Slope*rowIndex.
	Intercept float64
	Slope     float64
	// Fitted is false when the scan failed open before fitting.
	Fitted bool
}

// analyzeGround scans the lower band of the frame for protrusions above
// the ground plane. Under constant camera tilt the true ground depth is
// linear in image row, so the expected depth is a fitted line per row,
// not a single scalar: a scalar baseline reads shallow rows as obstacles
// and hides real ones near the bottom of the zone.
func analyzeGround(f *DepthFrame, cfg TerrainConfig, sm *medianSmoother, dbg *BaselineFit) (GroundReading, zoneStats) {
	rowStart := int(float64(f.Rows()) * cfg.Zones.GroundTop)
	rowEnd := int(float64(f.Rows()) * cfg.Zones.GroundBottom)
	zoneRows := rowEnd - rowStart

	noObstacle := GroundReading{
		ObstacleDetected: false,
		ObstacleHeight:   0,
		ObstacleDistance: DistanceUnknown,
		CanStepOver:      true,
	}

	// Pass 1: per-row median of valid depths. Median, not mean, so a
	// thin obstacle crossing part of a row cannot drag its baseline.
	var stats zoneStats
	totalValid := 0
	rowIdx := make([]float64, 0, zoneRows)
	rowMed := make([]float64, 0, zoneRows)
	rowBuf := make([]float64, 0, f.Cols())
	for i := 0; i < zoneRows; i++ {
		r := rowStart + i
		rowBuf = rowBuf[:0]
		for c := 0; c < f.Cols(); c++ {
			d := f.At(r, c)
			stats.samples++
			if math.IsNaN(d) {
				stats.nans++
				continue
			}
			if validDepth(d, cfg.DepthMinValid, cfg.DepthMaxValid) {
				rowBuf = append(rowBuf, d)
			}
		}
		totalValid += len(rowBuf)
		if len(rowBuf) > minRowValidPixels {
			rowIdx = append(rowIdx, float64(i))
			rowMed = append(rowMed, median(rowBuf))
		}
	}

	if totalValid < minZonePixels || len(rowIdx) < minBaselineRows {
		return noObstacle, stats
	}
	if rowIdx[len(rowIdx)-1] == rowIdx[0] {
		// Degenerate fit: the usable rows collapse to a single index.
		return noObstacle, stats
	}

	// Least-squares line: zone-local row index -> expected ground depth.
	alpha, beta := stat.LinearRegression(rowIdx, rowMed, nil, false)
	baselineAt := func(i int) float64 { return alpha + beta*float64(i) }
	if dbg != nil {
		dbg.RowIndex = append(dbg.RowIndex[:0], rowIdx...)
		dbg.RowDepth = append(dbg.RowDepth[:0], rowMed...)
		dbg.Intercept, dbg.Slope = alpha, beta
		dbg.Fitted = true
	}

	// Pass 2: a pixel is an obstacle candidate when it sits more than
	// ObstacleThreshold in front of the fitted baseline for its row.
	nearest := math.Inf(1)
	nearestRow := -1
	for i := 0; i < zoneRows; i++ {
		r := rowStart + i
		limit := baselineAt(i) - cfg.ObstacleThreshold
		for c := 0; c < f.Cols(); c++ {
			d := f.At(r, c)
			if !validDepth(d, cfg.DepthMinValid, cfg.DepthMaxValid) {
				continue
			}
			if d < limit && d < nearest {
				nearest = d
				nearestRow = i
			}
		}
	}

	if nearestRow < 0 {
		noObstacle.ObstacleDistance = median(rowMed)
		noObstacle.BaselineSlope = beta
		return noObstacle, stats
	}

	depthDiff := baselineAt(nearestRow) - nearest
	rawHeight := heightFromDepthDiff(depthDiff, cfg.Camera)
	smoothed := sm.push(rawHeight)

	return GroundReading{
		ObstacleDetected: true,
		ObstacleHeight:   smoothed,
		ObstacleDistance: nearest,
		CanStepOver:      smoothed <= cfg.MaxStepHeight,
		BaselineSlope:    beta,
	}, stats
}

// median returns the median of vs. vs is reordered in place.
func median(vs []float64) float64 {
	sort.Float64s(vs)
	n := len(vs)
	if n%2 == 1 {
		return vs[n/2]
	}
	return (vs[n/2-1] + vs[n/2]) / 2
}
