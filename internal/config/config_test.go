package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groundline-robotics/terrain.clearance/internal/terrain"
)

func writeCalibration(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "terrain_config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadTerrainConfig_FullDocument(t *testing.T) {
	path := writeCalibration(t, `{
		"robot_dimensions": {
			"robot_height": 0.25,
			"min_ground_clearance": 0.02,
			"max_ground_clearance": 0.10,
			"normal_ground_clearance": 0.05,
			"raised_ground_clearance": 0.09
		},
		"camera_setup": {
			"camera_height": 0.20,
			"camera_tilt_angle": 15.0,
			"camera_vfov": 58.0
		},
		"detection_zones": {
			"ceiling_zone_top": 0.0,
			"ceiling_zone_bottom": 0.25,
			"ground_zone_top": 0.55,
			"ground_zone_bottom": 1.0
		},
		"ceiling_detection": {
			"ceiling_min_clearance": 0.4,
			"ceiling_warning_distance": 0.8
		},
		"ground_obstacle_detection": {
			"ground_baseline_distance": 1.0,
			"obstacle_threshold": 0.04,
			"max_step_height": 0.06
		},
		"processing": {
			"depth_min_valid": 0.15,
			"depth_max_valid": 3.0,
			"smoothing_window": 7
		}
	}`)

	cfg, err := LoadTerrainConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 0.25, cfg.RobotHeight)
	assert.Equal(t, 15.0, cfg.Camera.PitchDeg)
	assert.Equal(t, 58.0, cfg.Camera.VerticalFOVDeg)
	assert.Equal(t, 0.25, cfg.Zones.CeilingBottom)
	assert.Equal(t, 0.55, cfg.Zones.GroundTop)
	assert.Equal(t, 0.4, cfg.CeilingMinClearance)
	assert.Equal(t, 0.04, cfg.ObstacleThreshold)
	assert.Equal(t, 0.06, cfg.MaxStepHeight)
	assert.Equal(t, 0.15, cfg.DepthMinValid)
	assert.Equal(t, 7, cfg.SmoothingWindow)
	assert.Equal(t, 0.02, cfg.Heights.Min)
	assert.Equal(t, 0.09, cfg.Heights.Raised)
	// No explicit lowered height: defaults to the minimum clearance.
	assert.Equal(t, 0.02, cfg.Heights.Lowered)
}

func TestLoadTerrainConfig_PartialDocumentKeepsDefaults(t *testing.T) {
	path := writeCalibration(t, `{
		"ground_obstacle_detection": {"obstacle_threshold": 0.05}
	}`)

	cfg, err := LoadTerrainConfig(path)
	require.NoError(t, err)

	def := terrain.DefaultConfig()
	assert.Equal(t, 0.05, cfg.ObstacleThreshold)
	assert.Equal(t, def.Camera, cfg.Camera)
	assert.Equal(t, def.Zones, cfg.Zones)
	assert.Equal(t, def.SmoothingWindow, cfg.SmoothingWindow)
}

func TestLoadTerrainConfig_InvalidMergedConfigFails(t *testing.T) {
	path := writeCalibration(t, `{
		"detection_zones": {"ground_zone_top": 0.9, "ground_zone_bottom": 0.5}
	}`)

	_, err := LoadTerrainConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ground zone")
}

func TestLoad_RejectsNonJSONExtension(t *testing.T) {
	_, err := Load("calibration.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), ".json")
}

func TestLoad_RejectsMalformedJSON(t *testing.T) {
	path := writeCalibration(t, `{"camera_setup": `)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}
