package terrain

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

const (
	// minZonePixels is the minimum number of valid returns a zone must
	// contain before its detector trusts the data. Sparse zones are
	// treated as clear rather than as an error: momentary dropout is
	// routine and must not halt the robot.
	minZonePixels = 100

	// ceilingMarginFrac is the fraction of frame width excluded on each
	// side of the ceiling zone to suppress edge artifacts.
	ceilingMarginFrac = 0.1

	// ceilingPercentile is the low quantile of valid zone depths used as
	// the nearest-overhead estimate. Lower than the median so a close
	// ceiling occupying only part of the zone is still seen; higher than
	// the minimum so single-pixel noise is not.
	ceilingPercentile = 0.10
)

// zoneStats records what a zone scan saw, independent of validity
// filtering. Used to distinguish an all-NaN frame (acquisition fault)
// from ordinary sparse returns.
type zoneStats struct {
	samples int
	nans    int
}

func (z zoneStats) allNaN() bool { return z.samples > 0 && z.nans == z.samples }

// analyzeCeiling scans the upper band of the frame for overhead
// obstructions and reports the smoothed nearest distance. The only side
// effect is the smoother push.
func analyzeCeiling(f *DepthFrame, cfg TerrainConfig, sm *medianSmoother) (CeilingReading, zoneStats) {
	rowStart := int(float64(f.Rows()) * cfg.Zones.CeilingTop)
	rowEnd := int(float64(f.Rows()) * cfg.Zones.CeilingBottom)
	colMargin := int(float64(f.Cols()) * ceilingMarginFrac)
	colStart, colEnd := colMargin, f.Cols()-colMargin

	var stats zoneStats
	valid := make([]float64, 0, (rowEnd-rowStart)*(colEnd-colStart))
	for r := rowStart; r < rowEnd; r++ {
		for c := colStart; c < colEnd; c++ {
			d := f.At(r, c)
			stats.samples++
			if math.IsNaN(d) {
				stats.nans++
				continue
			}
			if validDepth(d, cfg.DepthMinValid, cfg.DepthMaxValid) {
				valid = append(valid, d)
			}
		}
	}

	if len(valid) < minZonePixels {
		return CeilingReading{
			Detected:    false,
			Distance:    DistanceUnknown,
			ClearanceOK: true,
		}, stats
	}

	sort.Float64s(valid)
	nearest := stat.Quantile(ceilingPercentile, stat.Empirical, valid, nil)

	d := sm.push(nearest)
	return CeilingReading{
		Detected:    d < cfg.CeilingWarningDistance,
		Distance:    d,
		ClearanceOK: d >= cfg.CeilingMinClearance,
	}, stats
}
