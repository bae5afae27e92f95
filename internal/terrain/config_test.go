package terrain

import (
	"strings"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config failed validation: %v", err)
	}
}

func TestConfigValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*TerrainConfig)
		wantSub string
	}{
		{
			name:    "zero robot height",
			mutate:  func(c *TerrainConfig) { c.RobotHeight = 0 },
			wantSub: "robot height",
		},
		{
			name:    "zero mount height",
			mutate:  func(c *TerrainConfig) { c.Camera.MountHeight = 0 },
			wantSub: "mount height",
		},
		{
			name:    "pitch plus half FOV over 90",
			mutate:  func(c *TerrainConfig) { c.Camera.PitchDeg = 70; c.Camera.VerticalFOVDeg = 58 },
			wantSub: "exceeds 90",
		},
		{
			name:    "crossed ceiling zone",
			mutate:  func(c *TerrainConfig) { c.Zones.CeilingTop = 0.4; c.Zones.CeilingBottom = 0.3 },
			wantSub: "ceiling zone",
		},
		{
			name:    "ground zone fraction out of range",
			mutate:  func(c *TerrainConfig) { c.Zones.GroundBottom = 1.2 },
			wantSub: "ground zone",
		},
		{
			name:    "crossed depth bounds",
			mutate:  func(c *TerrainConfig) { c.DepthMinValid = 3.0 },
			wantSub: "depth validity",
		},
		{
			name:    "non-positive obstacle threshold",
			mutate:  func(c *TerrainConfig) { c.ObstacleThreshold = 0 },
			wantSub: "obstacle threshold",
		},
		{
			name:    "non-positive max step height",
			mutate:  func(c *TerrainConfig) { c.MaxStepHeight = -0.01 },
			wantSub: "max step height",
		},
		{
			name:    "crossed height range",
			mutate:  func(c *TerrainConfig) { c.Heights.Min = 0.2; c.Heights.Max = 0.1 },
			wantSub: "crossed",
		},
		{
			name:    "normal height outside range",
			mutate:  func(c *TerrainConfig) { c.Heights.Normal = 0.5 },
			wantSub: "normal undercarriage height",
		},
		{
			name:    "zero smoothing window",
			mutate:  func(c *TerrainConfig) { c.SmoothingWindow = 0 },
			wantSub: "smoothing window",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("Validate() error %q does not mention %q", err, tt.wantSub)
			}
			// Construction must fail the same way.
			if _, err := NewAnalyzer(cfg); err == nil {
				t.Error("NewAnalyzer accepted invalid config")
			}
		})
	}
}
