package terrain

import "math"

// maxObstacleHeight bounds the physical height (m) a ground protrusion
// estimate may take. Anything above it is a measurement artifact, not an
// obstacle the undercarriage could meet.
const maxObstacleHeight = 0.3

// groundViewAngleDeg is the representative viewing angle for the whole
// ground zone: camera pitch plus a quarter of the vertical FOV. The
// quarter-FOV offset approximates the mean ray angle across the lower
// band of the image, which is where the ground zone sits. A per-pixel
// deprojection through the camera intrinsics would be exact but costs a
// rotation per sample; the detectors only need aggregate statistics, so
// the single-angle model is used throughout.
func groundViewAngleDeg(g CameraGeometry) float64 {
	return g.PitchDeg + g.VerticalFOVDeg*0.25
}

// heightFromDepthDiff converts a depth difference into an estimated
// height above the ground plane. depthDiff is expected ground depth
// minus observed depth: positive when the observed point protrudes
// toward the camera. The result is clamped to [0, maxObstacleHeight];
// out-of-range values are residual noise, not obstacles.
func heightFromDepthDiff(depthDiff float64, g CameraGeometry) float64 {
	theta := groundViewAngleDeg(g) * math.Pi / 180
	h := depthDiff * math.Sin(theta)
	if h < 0 {
		return 0
	}
	if h > maxObstacleHeight {
		return maxObstacleHeight
	}
	return h
}
