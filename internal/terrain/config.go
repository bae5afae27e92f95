package terrain

import (
	"fmt"
)

// CameraGeometry describes how the depth camera is mounted on the robot.
type CameraGeometry struct {
	// MountHeight is the camera height above the ground plane in meters.
	MountHeight float64
	// PitchDeg is the downward tilt from horizontal in degrees
	// (positive = tilted toward the ground, typically 0-45).
	PitchDeg float64
	// VerticalFOVDeg is the camera's vertical field of view in degrees.
	VerticalFOVDeg float64
}

func (g CameraGeometry) validate() error {
	if g.MountHeight <= 0 {
		return fmt.Errorf("camera mount height must be positive, got %v", g.MountHeight)
	}
	if g.PitchDeg < 0 {
		return fmt.Errorf("camera pitch must be non-negative, got %v", g.PitchDeg)
	}
	if g.VerticalFOVDeg <= 0 {
		return fmt.Errorf("camera vertical FOV must be positive, got %v", g.VerticalFOVDeg)
	}
	if g.PitchDeg+g.VerticalFOVDeg/2 > 90 {
		return fmt.Errorf("camera pitch %v + half FOV %v exceeds 90 degrees; rays would point behind the robot",
			g.PitchDeg, g.VerticalFOVDeg/2)
	}
	return nil
}

// DetectionZones fixes the fractional row bands of the frame scanned by
// each detector. Fractions are of frame height, in [0,1], top < bottom
// per zone. The two zones may overlap.
type DetectionZones struct {
	CeilingTop    float64
	CeilingBottom float64
	GroundTop     float64
	GroundBottom  float64
}

func (z DetectionZones) validate() error {
	if err := validateZone("ceiling", z.CeilingTop, z.CeilingBottom); err != nil {
		return err
	}
	return validateZone("ground", z.GroundTop, z.GroundBottom)
}

func validateZone(name string, top, bottom float64) error {
	if top < 0 || top > 1 || bottom < 0 || bottom > 1 {
		return fmt.Errorf("%s zone fractions must be in [0,1], got top=%v bottom=%v", name, top, bottom)
	}
	if top >= bottom {
		return fmt.Errorf("%s zone top %v must be below bottom %v", name, top, bottom)
	}
	return nil
}

// Heights bundles the undercarriage height set in meters.
type Heights struct {
	Min     float64
	Max     float64
	Normal  float64
	Raised  float64
	Lowered float64
}

func (h Heights) validate() error {
	if h.Min <= 0 {
		return fmt.Errorf("minimum undercarriage height must be positive, got %v", h.Min)
	}
	if h.Min >= h.Max {
		return fmt.Errorf("undercarriage height range is crossed: min %v >= max %v", h.Min, h.Max)
	}
	for _, v := range []struct {
		name string
		val  float64
	}{
		{"normal", h.Normal},
		{"raised", h.Raised},
		{"lowered", h.Lowered},
	} {
		if v.val < h.Min || v.val > h.Max {
			return fmt.Errorf("%s undercarriage height %v outside range [%v, %v]", v.name, v.val, h.Min, h.Max)
		}
	}
	return nil
}

// TerrainConfig aggregates every tunable the analyzer needs. It is built
// once from calibration data and treated as immutable; invalid values
// fail construction instead of being clamped.
type TerrainConfig struct {
	// RobotHeight is the body height at normal ride height, in meters.
	RobotHeight float64

	Camera CameraGeometry
	Zones  DetectionZones

	// Depth validity bounds in meters. Samples outside (min, max) are
	// treated as no-return.
	DepthMinValid float64
	DepthMaxValid float64

	// ObstacleThreshold is how far (m) a pixel must sit in front of the
	// fitted ground baseline to count as an obstacle candidate.
	ObstacleThreshold float64
	// MaxStepHeight is the tallest protrusion (m) the undercarriage can
	// clear by raising instead of stopping.
	MaxStepHeight float64

	// CeilingMinClearance is the minimum safe overhead distance (m).
	CeilingMinClearance float64
	// CeilingWarningDistance is the overhead distance (m) under which a
	// ceiling is reported at all.
	CeilingWarningDistance float64

	Heights Heights

	// SmoothingWindow is the number of recent invocations retained for
	// median smoothing of each detector reading. Counts calls, not
	// wall-clock time; irregular call cadence stretches the window.
	SmoothingWindow int
}

// DefaultConfig returns the production calibration defaults.
func DefaultConfig() TerrainConfig {
	return TerrainConfig{
		RobotHeight: 0.30,
		Camera: CameraGeometry{
			MountHeight:    0.20,
			PitchDeg:       14.0,
			VerticalFOVDeg: 58.0,
		},
		Zones: DetectionZones{
			CeilingTop:    0.0,
			CeilingBottom: 0.30,
			GroundTop:     0.60,
			GroundBottom:  1.0,
		},
		DepthMinValid:          0.1,
		DepthMaxValid:          2.5,
		ObstacleThreshold:      0.03,
		MaxStepHeight:          0.05,
		CeilingMinClearance:    0.5,
		CeilingWarningDistance: 1.5,
		Heights: Heights{
			Min:     0.07,
			Max:     0.18,
			Normal:  0.08,
			Raised:  0.13,
			Lowered: 0.07,
		},
		SmoothingWindow: 5,
	}
}

// Validate checks every construction invariant and returns a descriptive
// error for the first violation found.
func (c TerrainConfig) Validate() error {
	if c.RobotHeight <= 0 {
		return fmt.Errorf("terrain config: robot height must be positive, got %v", c.RobotHeight)
	}
	if err := c.Camera.validate(); err != nil {
		return fmt.Errorf("terrain config: %w", err)
	}
	if err := c.Zones.validate(); err != nil {
		return fmt.Errorf("terrain config: %w", err)
	}
	if c.DepthMinValid <= 0 || c.DepthMaxValid <= c.DepthMinValid {
		return fmt.Errorf("terrain config: depth validity bounds must satisfy 0 < min < max, got [%v, %v]",
			c.DepthMinValid, c.DepthMaxValid)
	}
	if c.ObstacleThreshold <= 0 {
		return fmt.Errorf("terrain config: obstacle threshold must be positive, got %v", c.ObstacleThreshold)
	}
	if c.MaxStepHeight <= 0 {
		return fmt.Errorf("terrain config: max step height must be positive, got %v", c.MaxStepHeight)
	}
	if c.CeilingMinClearance <= 0 {
		return fmt.Errorf("terrain config: ceiling min clearance must be positive, got %v", c.CeilingMinClearance)
	}
	if c.CeilingWarningDistance <= 0 {
		return fmt.Errorf("terrain config: ceiling warning distance must be positive, got %v", c.CeilingWarningDistance)
	}
	if err := c.Heights.validate(); err != nil {
		return fmt.Errorf("terrain config: %w", err)
	}
	if c.SmoothingWindow < 1 {
		return fmt.Errorf("terrain config: smoothing window must be >= 1, got %d", c.SmoothingWindow)
	}
	return nil
}
