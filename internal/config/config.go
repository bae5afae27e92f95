// Package config decodes the calibration document produced by the
// external terrain calibration tool. Field names and units (meters,
// degrees, fractions of frame height) are fixed by the existing
// calibration artifacts and must not change.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/groundline-robotics/terrain.clearance/internal/terrain"
)

// DefaultCalibrationPath is the conventional location of the calibration
// document relative to the data directory.
const DefaultCalibrationPath = "data/calibration/terrain_config.json"

// maxFileSize caps how large a calibration document may be (1MB).
const maxFileSize = 1 * 1024 * 1024

// CalibrationDoc mirrors the on-disk terrain_config.json schema. All
// fields are pointers so a partial document leaves the corresponding
// defaults untouched.
type CalibrationDoc struct {
	RobotDimensions *RobotDimensions `json:"robot_dimensions,omitempty"`
	CameraSetup     *CameraSetup     `json:"camera_setup,omitempty"`
	DetectionZones  *DetectionZones  `json:"detection_zones,omitempty"`
	Ceiling         *CeilingSection  `json:"ceiling_detection,omitempty"`
	GroundObstacle  *GroundSection   `json:"ground_obstacle_detection,omitempty"`
	Processing      *Processing      `json:"processing,omitempty"`
}

// RobotDimensions holds the robot heights in meters.
type RobotDimensions struct {
	RobotHeight            *float64 `json:"robot_height,omitempty"`
	MinGroundClearance     *float64 `json:"min_ground_clearance,omitempty"`
	MaxGroundClearance     *float64 `json:"max_ground_clearance,omitempty"`
	NormalGroundClearance  *float64 `json:"normal_ground_clearance,omitempty"`
	RaisedGroundClearance  *float64 `json:"raised_ground_clearance,omitempty"`
	LoweredGroundClearance *float64 `json:"lowered_ground_clearance,omitempty"`
}

// CameraSetup holds the camera mounting calibration.
type CameraSetup struct {
	CameraHeight    *float64 `json:"camera_height,omitempty"`
	CameraTiltAngle *float64 `json:"camera_tilt_angle,omitempty"`
	CameraVFOV      *float64 `json:"camera_vfov,omitempty"`
}

// DetectionZones holds the fractional row bands of the two scan zones.
type DetectionZones struct {
	CeilingZoneTop    *float64 `json:"ceiling_zone_top,omitempty"`
	CeilingZoneBottom *float64 `json:"ceiling_zone_bottom,omitempty"`
	GroundZoneTop     *float64 `json:"ground_zone_top,omitempty"`
	GroundZoneBottom  *float64 `json:"ground_zone_bottom,omitempty"`
}

// CeilingSection holds the overhead clearance thresholds in meters.
type CeilingSection struct {
	CeilingMinClearance    *float64 `json:"ceiling_min_clearance,omitempty"`
	CeilingWarningDistance *float64 `json:"ceiling_warning_distance,omitempty"`
}

// GroundSection holds the ground obstacle thresholds in meters.
type GroundSection struct {
	GroundBaselineDistance *float64 `json:"ground_baseline_distance,omitempty"`
	ObstacleThreshold      *float64 `json:"obstacle_threshold,omitempty"`
	MaxStepHeight          *float64 `json:"max_step_height,omitempty"`
}

// Processing holds depth validity bounds and the smoothing window.
type Processing struct {
	DepthMinValid   *float64 `json:"depth_min_valid,omitempty"`
	DepthMaxValid   *float64 `json:"depth_max_valid,omitempty"`
	SmoothingWindow *int     `json:"smoothing_window,omitempty"`
}

// Load reads and parses a calibration document. The resulting document
// is not validated on its own; Apply validates the merged config.
func Load(path string) (*CalibrationDoc, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("calibration file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat calibration file: %w", err)
	}
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("calibration file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read calibration file: %w", err)
	}

	var doc CalibrationDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse calibration JSON: %w", err)
	}
	return &doc, nil
}

// Apply merges the document over base (fields absent from the document
// keep the base value) and validates the result. The lowered height
// defaults to the minimum ground clearance when the document does not
// carry one, matching how the calibration tool has always written it.
func (d *CalibrationDoc) Apply(base terrain.TerrainConfig) (terrain.TerrainConfig, error) {
	cfg := base

	if rd := d.RobotDimensions; rd != nil {
		setFloat(&cfg.RobotHeight, rd.RobotHeight)
		setFloat(&cfg.Heights.Min, rd.MinGroundClearance)
		setFloat(&cfg.Heights.Max, rd.MaxGroundClearance)
		setFloat(&cfg.Heights.Normal, rd.NormalGroundClearance)
		setFloat(&cfg.Heights.Raised, rd.RaisedGroundClearance)
		if rd.LoweredGroundClearance != nil {
			cfg.Heights.Lowered = *rd.LoweredGroundClearance
		} else if rd.MinGroundClearance != nil {
			cfg.Heights.Lowered = *rd.MinGroundClearance
		}
	}
	if cs := d.CameraSetup; cs != nil {
		setFloat(&cfg.Camera.MountHeight, cs.CameraHeight)
		setFloat(&cfg.Camera.PitchDeg, cs.CameraTiltAngle)
		setFloat(&cfg.Camera.VerticalFOVDeg, cs.CameraVFOV)
	}
	if dz := d.DetectionZones; dz != nil {
		setFloat(&cfg.Zones.CeilingTop, dz.CeilingZoneTop)
		setFloat(&cfg.Zones.CeilingBottom, dz.CeilingZoneBottom)
		setFloat(&cfg.Zones.GroundTop, dz.GroundZoneTop)
		setFloat(&cfg.Zones.GroundBottom, dz.GroundZoneBottom)
	}
	if cd := d.Ceiling; cd != nil {
		setFloat(&cfg.CeilingMinClearance, cd.CeilingMinClearance)
		setFloat(&cfg.CeilingWarningDistance, cd.CeilingWarningDistance)
	}
	if gd := d.GroundObstacle; gd != nil {
		setFloat(&cfg.ObstacleThreshold, gd.ObstacleThreshold)
		setFloat(&cfg.MaxStepHeight, gd.MaxStepHeight)
	}
	if p := d.Processing; p != nil {
		setFloat(&cfg.DepthMinValid, p.DepthMinValid)
		setFloat(&cfg.DepthMaxValid, p.DepthMaxValid)
		if p.SmoothingWindow != nil {
			cfg.SmoothingWindow = *p.SmoothingWindow
		}
	}

	if err := cfg.Validate(); err != nil {
		return terrain.TerrainConfig{}, err
	}
	return cfg, nil
}

// LoadTerrainConfig loads a calibration document and applies it over the
// production defaults in one step.
func LoadTerrainConfig(path string) (terrain.TerrainConfig, error) {
	doc, err := Load(path)
	if err != nil {
		return terrain.TerrainConfig{}, err
	}
	return doc.Apply(terrain.DefaultConfig())
}

func setFloat(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}
