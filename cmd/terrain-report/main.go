// Package main renders recorded analyzer sessions from a telemetry
// database into an HTML report, and lists what sessions exist.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/groundline-robotics/terrain.clearance/internal/monitor"
	"github.com/groundline-robotics/terrain.clearance/internal/telemetry"
)

// Config holds configuration for report generation.
type Config struct {
	DBPath    string
	SessionID string
	OutPath   string
	List      bool
}

func main() {
	cfg := parseFlags()

	if cfg.DBPath == "" {
		log.Fatal("Telemetry database path is required (-db)")
	}

	db, err := telemetry.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open telemetry database: %v", err)
	}
	defer db.Close()

	if cfg.List {
		if err := listSessions(db); err != nil {
			log.Fatalf("Failed to list sessions: %v", err)
		}
		return
	}

	sessionID := cfg.SessionID
	if sessionID == "" {
		latest, err := db.LatestSession()
		if err != nil {
			log.Fatalf("Failed to resolve latest session: %v", err)
		}
		sessionID = latest.SessionID
		log.Printf("No session given, using latest: %s (%s)", latest.SessionID, latest.Label)
	}

	if err := printSessionSummary(db, sessionID); err != nil {
		log.Fatalf("Failed to summarise session: %v", err)
	}

	if err := monitor.WriteSessionReport(db, sessionID, cfg.OutPath); err != nil {
		log.Fatalf("Failed to write report: %v", err)
	}
	log.Printf("Report written to %s", cfg.OutPath)
}

func parseFlags() Config {
	cfg := Config{}

	flag.StringVar(&cfg.DBPath, "db", "", "Telemetry SQLite database path")
	flag.StringVar(&cfg.SessionID, "session", "", "Session ID to report on (defaults to latest)")
	flag.StringVar(&cfg.OutPath, "out", "terrain_report.html", "Output HTML file")
	flag.BoolVar(&cfg.List, "list", false, "List recorded sessions and exit")

	flag.Parse()

	return cfg
}

func listSessions(db *telemetry.DB) error {
	sessions, err := db.ListSessions()
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Println("No sessions recorded.")
		return nil
	}

	fmt.Printf("%-36s  %-24s  %s\n", "SESSION", "STARTED", "LABEL")
	for _, s := range sessions {
		started := time.Unix(0, s.StartedAt).Format(time.RFC3339)
		fmt.Printf("%-36s  %-24s  %s\n", s.SessionID, started, s.Label)
	}
	return nil
}

func printSessionSummary(db *telemetry.DB, sessionID string) error {
	samples, err := db.SessionSamples(sessionID)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("session %s has no recorded frames", sessionID)
	}
	counts, err := db.ActionCounts(sessionID)
	if err != nil {
		return err
	}

	fmt.Printf("\n=== Session %s ===\n", sessionID)
	fmt.Printf("Frames: %d\n", len(samples))
	for _, action := range []string{"NORMAL", "RAISE", "LOWER", "STOP"} {
		if n := counts[action]; n > 0 {
			fmt.Printf("  %-6s %d (%.1f%%)\n", action, n, 100*float64(n)/float64(len(samples)))
		}
	}

	hazardFrames := 0
	for _, s := range samples {
		if s.CeilingDetected || s.GroundObstacle {
			hazardFrames++
		}
	}
	fmt.Printf("Frames with a detected hazard: %d\n", hazardFrames)
	return nil
}
