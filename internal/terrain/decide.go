package terrain

import "fmt"

// stepOverMargin is the extra undercarriage lift (m) added on top of the
// measured obstacle height when raising to step over it.
const stepOverMargin = 0.02

// Decision is the output of the priority function: the action plus the
// undercarriage height it implies.
type Decision struct {
	Action            ClearanceAction
	RecommendedHeight float64
	Confidence        float64
	Message           string
}

// Decide combines the two detector readings into one clearance action.
// It is pure and stateless: identical inputs always produce identical
// outputs. Rules are evaluated strictly in order, first match wins:
//
//  1. blocked ceiling AND any ground obstacle -> STOP (cannot lower
//     under the ceiling and raise over the obstacle at the same time)
//  2. blocked ceiling -> LOWER
//  3. obstacle too tall to step over -> STOP
//  4. step-overable obstacle -> RAISE just above it
//  5. ceiling detected but still passable -> LOWER anyway; any detected
//     low ceiling triggers a precautionary drop
//  6. otherwise -> NORMAL
//
// STOP is a directive only; zeroing motion and sounding the alarm is the
// actuation layer's job.
func Decide(ceiling CeilingReading, ground GroundReading, cfg TerrainConfig) Decision {
	ceilingBlocked := ceiling.Detected && !ceiling.ClearanceOK

	switch {
	case ceilingBlocked && ground.ObstacleDetected:
		return Decision{
			Action:            ActionStop,
			RecommendedHeight: cfg.Heights.Normal,
			Confidence:        0.95,
			Message: fmt.Sprintf("low ceiling (%.2fm) and ground obstacle (%.1fcm) - stopping",
				ceiling.Distance, ground.ObstacleHeight*100),
		}

	case ceilingBlocked:
		return Decision{
			Action:            ActionLower,
			RecommendedHeight: cfg.Heights.Lowered,
			Confidence:        0.9,
			Message:           fmt.Sprintf("low ceiling (%.2fm) - lowering undercarriage", ceiling.Distance),
		}

	case ground.ObstacleDetected && !ground.CanStepOver:
		return Decision{
			Action:            ActionStop,
			RecommendedHeight: cfg.Heights.Normal,
			Confidence:        0.9,
			Message:           fmt.Sprintf("obstacle too tall (%.1fcm) - stopping", ground.ObstacleHeight*100),
		}

	case ground.ObstacleDetected:
		h := ground.ObstacleHeight + stepOverMargin
		if h > cfg.Heights.Max {
			h = cfg.Heights.Max
		}
		return Decision{
			Action:            ActionRaise,
			RecommendedHeight: h,
			Confidence:        0.85,
			Message:           fmt.Sprintf("obstacle (%.1fcm) - raising to %.1fcm", ground.ObstacleHeight*100, h*100),
		}

	case ceiling.Detected:
		return Decision{
			Action:            ActionLower,
			RecommendedHeight: cfg.Heights.Lowered,
			Confidence:        0.8,
			Message:           fmt.Sprintf("ceiling ahead (%.2fm) - lowering as a precaution", ceiling.Distance),
		}

	default:
		return Decision{
			Action:            ActionNormal,
			RecommendedHeight: cfg.Heights.Normal,
			Confidence:        0.5,
			Message:           "terrain clear",
		}
	}
}
