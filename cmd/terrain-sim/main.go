// Package main provides a synthetic scenario runner for the terrain
// clearance analyzer. It fabricates depth frames for a handful of
// canonical situations (flat ground, a step, a low ceiling, both at
// once, sensor dropout), feeds them through the analyzer and reports
// the resulting clearance decisions. Results can optionally be logged
// to a telemetry database and rendered as PNG profile plots.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"strings"

	"github.com/groundline-robotics/terrain.clearance/internal/config"
	"github.com/groundline-robotics/terrain.clearance/internal/monitor"
	"github.com/groundline-robotics/terrain.clearance/internal/telemetry"
	"github.com/groundline-robotics/terrain.clearance/internal/terrain"
)

// Config holds configuration for a simulation run.
type Config struct {
	Scenario   string
	Frames     int
	Rows       int
	Cols       int
	Noise      float64
	Seed       int64
	ConfigPath string
	DBPath     string
	PlotDir    string
	Verbose    bool
}

var scenarioNames = []string{"flat", "step", "ceiling", "both", "dropout"}

func main() {
	cfg := parseFlags()

	if !validScenario(cfg.Scenario) {
		log.Fatalf("Unknown scenario %q (choose one of: %s)", cfg.Scenario, strings.Join(scenarioNames, ", "))
	}
	if cfg.Frames < 1 {
		log.Fatal("Frame count must be at least 1")
	}

	tcfg := terrain.DefaultConfig()
	if cfg.ConfigPath != "" {
		loaded, err := config.LoadTerrainConfig(cfg.ConfigPath)
		if err != nil {
			log.Fatalf("Failed to load calibration: %v", err)
		}
		tcfg = loaded
		log.Printf("Loaded calibration from %s", cfg.ConfigPath)
	}

	analyzer, err := terrain.NewAnalyzer(tcfg)
	if err != nil {
		log.Fatalf("Failed to create analyzer: %v", err)
	}

	var db *telemetry.DB
	sessionID := ""
	if cfg.DBPath != "" {
		db, err = telemetry.Open(cfg.DBPath)
		if err != nil {
			log.Fatalf("Failed to open telemetry database: %v", err)
		}
		defer db.Close()

		sessionID, err = db.StartSession("sim:"+cfg.Scenario, tcfg)
		if err != nil {
			log.Fatalf("Failed to start telemetry session: %v", err)
		}
		log.Printf("Recording to session %s", sessionID)
	}

	var plotter *monitor.ProfilePlotter
	if cfg.PlotDir != "" {
		plotter = monitor.NewProfilePlotter()
		analyzer.SetBaselineObserver(plotter.ObserveBaseline)
	}

	if err := runScenario(cfg, analyzer, db, sessionID, plotter); err != nil {
		log.Fatalf("Simulation failed: %v", err)
	}

	if plotter != nil {
		n, err := plotter.GeneratePlots(cfg.PlotDir)
		if err != nil {
			log.Fatalf("Failed to generate plots: %v", err)
		}
		log.Printf("Wrote %d plots to %s", n, cfg.PlotDir)
	}
}

func parseFlags() Config {
	cfg := Config{}

	flag.StringVar(&cfg.Scenario, "scenario", "flat", "Scenario to simulate: flat, step, ceiling, both, dropout")
	flag.IntVar(&cfg.Frames, "frames", 30, "Number of frames to simulate")
	flag.IntVar(&cfg.Rows, "rows", 120, "Frame height in pixels")
	flag.IntVar(&cfg.Cols, "cols", 160, "Frame width in pixels")
	flag.Float64Var(&cfg.Noise, "noise", 0, "Gaussian depth noise stddev in meters (0 disables)")
	flag.Int64Var(&cfg.Seed, "seed", 1, "Noise RNG seed")
	flag.StringVar(&cfg.ConfigPath, "config", "", "Path to calibration JSON (defaults used when empty)")
	flag.StringVar(&cfg.DBPath, "db", "", "Telemetry SQLite database path (recording disabled when empty)")
	flag.StringVar(&cfg.PlotDir, "plot-dir", "", "Directory for profile plot PNGs (plotting disabled when empty)")
	flag.BoolVar(&cfg.Verbose, "verbose", false, "Log every frame instead of a final summary")

	flag.Parse()

	return cfg
}

func validScenario(name string) bool {
	for _, s := range scenarioNames {
		if s == name {
			return true
		}
	}
	return false
}

func runScenario(cfg Config, analyzer *terrain.Analyzer, db *telemetry.DB, sessionID string, plotter *monitor.ProfilePlotter) error {
	log.Printf("Running scenario %q for %d frames (%dx%d, noise %.3fm)",
		cfg.Scenario, cfg.Frames, cfg.Rows, cfg.Cols, cfg.Noise)

	rng := rand.New(rand.NewSource(cfg.Seed))
	tcfg := analyzer.Config()

	actionCounts := make(map[terrain.ClearanceAction]int)
	var last terrain.AnalysisResult

	for i := 0; i < cfg.Frames; i++ {
		frame := buildFrame(cfg, tcfg)
		if cfg.Noise > 0 {
			addNoise(frame, rng, cfg.Noise)
		}

		res, err := analyzer.Analyze(frame)
		if err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		last = res
		actionCounts[res.Action]++

		if db != nil {
			if err := db.RecordAnalysis(sessionID, int64(i), res); err != nil {
				return fmt.Errorf("record frame %d: %w", i, err)
			}
		}
		if plotter != nil {
			plotter.Sample(i, res)
		}
		if cfg.Verbose {
			logFrame(i, res)
		}
	}

	printSummary(cfg, actionCounts, last)
	return nil
}

// buildFrame fabricates one depth frame for the configured scenario.
// Flat ground appears to a tilted camera as a linear row-to-depth
// gradient in the lower zone; hazards are patches that deviate from it.
func buildFrame(cfg Config, tcfg terrain.TerrainConfig) *terrain.DepthFrame {
	f := terrain.UniformFrame(cfg.Rows, cfg.Cols, 2.0)

	groundTop := int(tcfg.Zones.GroundTop * float64(cfg.Rows))
	groundBottom := int(tcfg.Zones.GroundBottom * float64(cfg.Rows))
	ceilTop := int(tcfg.Zones.CeilingTop * float64(cfg.Rows))
	ceilBottom := int(tcfg.Zones.CeilingBottom * float64(cfg.Rows))

	// Flat ground baseline: depth shrinks toward the bottom of the frame.
	f.SetRowGradient(groundTop, groundBottom, 1.5, -0.006)

	switch cfg.Scenario {
	case "flat":
		// Baseline only.
	case "step":
		addStep(f, cfg, groundTop, groundBottom)
	case "ceiling":
		f.SetRect(ceilTop, ceilBottom, 0, cfg.Cols, 0.45)
	case "both":
		addStep(f, cfg, groundTop, groundBottom)
		f.SetRect(ceilTop, ceilBottom, 0, cfg.Cols, 0.45)
	case "dropout":
		// Near-total sensor dropout. A few valid pixels survive in each
		// zone, too few for either detector to act on.
		f.SetRect(0, cfg.Rows, 0, cfg.Cols, math.NaN())
		f.SetRect(ceilTop, ceilTop+1, 0, 20, 2.0)
		f.SetRect(groundBottom-1, groundBottom, 0, 5, 1.2)
	}
	return f
}

// addStep overlays a box protruding 15cm above the ground baseline in
// the middle of the ground zone. At the default camera geometry that
// reads as a step too tall to roll over but low enough to clear by
// raising the undercarriage. The box spans a quarter of the frame
// width so the per-row medians still track the floor.
func addStep(f *terrain.DepthFrame, cfg Config, groundTop, groundBottom int) {
	zoneRows := groundBottom - groundTop
	row0 := groundTop + zoneRows/3
	row1 := groundTop + 2*zoneRows/3
	baseline := 1.5 - 0.006*float64(row0-groundTop)
	f.SetRect(row0, row1, 3*cfg.Cols/8, 5*cfg.Cols/8, baseline-0.15)
}

func addNoise(f *terrain.DepthFrame, rng *rand.Rand, stddev float64) {
	for r := 0; r < f.Rows(); r++ {
		for c := 0; c < f.Cols(); c++ {
			d := f.At(r, c)
			if !math.IsNaN(d) {
				f.Set(r, c, d+rng.NormFloat64()*stddev)
			}
		}
	}
}

func logFrame(i int, res terrain.AnalysisResult) {
	log.Printf("frame %3d: action=%s height=%.3fm conf=%.2f ceiling(det=%t d=%.2fm) ground(det=%t h=%.3fm step=%t) %s",
		i, res.Action, res.RecommendedHeight, res.Confidence,
		res.Ceiling.Detected, res.Ceiling.Distance,
		res.Ground.ObstacleDetected, res.Ground.ObstacleHeight, res.Ground.CanStepOver,
		res.Message)
}

func printSummary(cfg Config, counts map[terrain.ClearanceAction]int, last terrain.AnalysisResult) {
	fmt.Printf("\n=== Scenario %q: %d frames ===\n", cfg.Scenario, cfg.Frames)
	for _, a := range []terrain.ClearanceAction{
		terrain.ActionNormal, terrain.ActionRaise, terrain.ActionLower, terrain.ActionStop,
	} {
		if n := counts[a]; n > 0 {
			fmt.Printf("  %-6s %d\n", a, n)
		}
	}
	fmt.Println("\n--- Final frame ---")
	fmt.Printf("Action: %s (confidence %.2f)\n", last.Action, last.Confidence)
	fmt.Printf("Recommended height: %.3fm\n", last.RecommendedHeight)
	if last.Ceiling.Detected {
		fmt.Printf("Ceiling: %.2fm overhead (clearance ok: %t)\n", last.Ceiling.Distance, last.Ceiling.ClearanceOK)
	} else {
		fmt.Println("Ceiling: none detected")
	}
	if last.Ground.ObstacleDetected {
		fmt.Printf("Ground obstacle: %.1fcm at %.2fm (step over: %t)\n",
			last.Ground.ObstacleHeight*100, last.Ground.ObstacleDistance, last.Ground.CanStepOver)
	} else {
		fmt.Println("Ground obstacle: none detected")
	}
	fmt.Printf("Message: %s\n", last.Message)
}
