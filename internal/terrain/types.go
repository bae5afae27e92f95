package terrain

import "fmt"

// ClearanceAction is the closed set of undercarriage adjustments the
// analyzer can recommend. The external actuation layer maps these to
// height commands and buzzer states; the analyzer itself performs no I/O.
type ClearanceAction int

const (
	// ActionNormal holds the undercarriage at its normal ride height.
	ActionNormal ClearanceAction = iota
	// ActionRaise lifts the undercarriage to step over a low obstacle.
	ActionRaise
	// ActionLower drops the undercarriage to pass under a low ceiling.
	ActionLower
	// ActionStop signals that neither raising nor lowering makes the
	// terrain passable. Downstream is responsible for zeroing motion.
	ActionStop
)

func (a ClearanceAction) String() string {
	switch a {
	case ActionNormal:
		return "NORMAL"
	case ActionRaise:
		return "RAISE"
	case ActionLower:
		return "LOWER"
	case ActionStop:
		return "STOP"
	default:
		return fmt.Sprintf("ClearanceAction(%d)", int(a))
	}
}

// DistanceUnknown is the sentinel reported when a detector had no usable
// distance estimate for the current frame.
const DistanceUnknown = -1.0

// CeilingReading is the per-frame output of the ceiling detector.
type CeilingReading struct {
	// Detected is true when the smoothed overhead distance is inside the
	// warning envelope.
	Detected bool
	// Distance is the smoothed nearest-overhead distance in meters, or
	// DistanceUnknown when the zone had too few valid returns.
	Distance float64
	// ClearanceOK is true when the smoothed distance leaves enough
	// headroom for the robot at normal height.
	ClearanceOK bool
}

// GroundReading is the per-frame output of the ground obstacle detector.
type GroundReading struct {
	ObstacleDetected bool
	// ObstacleHeight is the smoothed estimated protrusion height in meters.
	ObstacleHeight float64
	// ObstacleDistance is the depth of the nearest obstacle candidate, the
	// median ground baseline when no obstacle is present, or
	// DistanceUnknown when the zone had too few valid returns.
	ObstacleDistance float64
	CanStepOver      bool
	// BaselineSlope is the fitted ground-depth gradient in meters per
	// image row. Zero when no fit was performed.
	BaselineSlope float64
}

// AnalysisResult is the combined per-invocation output returned to the
// control loop. It is ephemeral; the analyzer retains no reference to it.
type AnalysisResult struct {
	Ceiling CeilingReading
	Ground  GroundReading

	Action ClearanceAction
	// RecommendedHeight is the undercarriage height in meters that the
	// action implies. Always within the configured height range.
	RecommendedHeight float64
	// Confidence is a coarse 0..1 indication of how decisive the inputs
	// to the action were.
	Confidence float64
	Message    string
}
