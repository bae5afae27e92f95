// Package telemetry persists per-frame analysis results to SQLite so
// runs can be inspected and reported on after the fact. It is a
// collaborator of the clearance engine, not part of it: the analyzer
// itself keeps no on-disk state.
package telemetry

import (
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/groundline-robotics/terrain.clearance/internal/terrain"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DB wraps the analysis-log database.
type DB struct {
	*sql.DB
}

// Open opens (creating if necessary) the analysis log at path and runs
// any pending migrations.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open analysis log: %w", err)
	}

	// Serialised writers with a bounded wait keeps the recorder from
	// failing immediately when a report reads concurrently.
	if _, err := db.Exec(`PRAGMA busy_timeout = 5000; PRAGMA foreign_keys = ON;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}

	if err := migrateUp(db); err != nil {
		db.Close()
		return nil, err
	}
	return &DB{db}, nil
}

func migrateUp(db *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load embedded migrations: %w", err)
	}
	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("create sqlite migrate driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	// Note: m is not closed here because that would close the underlying
	// DB connection.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// Session identifies one recorded run of the analyzer.
type Session struct {
	SessionID string `json:"session_id"`
	Label     string `json:"label"`
	// ConfigJSON is the terrain config the session ran with, for later
	// comparison across calibrations.
	ConfigJSON string `json:"config_json,omitempty"`
	StartedAt  int64  `json:"started_unix_nanos"`
}

// StartSession registers a new session and returns its generated ID.
func (db *DB) StartSession(label string, cfg terrain.TerrainConfig) (string, error) {
	id := uuid.New().String()
	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}

	err = retryOnBusy(func() error {
		_, err := db.Exec(`
			INSERT INTO sessions (session_id, label, config_json, started_unix_nanos)
			VALUES (?, ?, ?, ?)`,
			id, label, string(cfgJSON), time.Now().UnixNano())
		return err
	})
	if err != nil {
		return "", fmt.Errorf("insert session: %w", err)
	}
	return id, nil
}

// RecordAnalysis appends one analysis result to a session's log.
func (db *DB) RecordAnalysis(sessionID string, frameIndex int64, res terrain.AnalysisResult) error {
	return retryOnBusy(func() error {
		_, err := db.Exec(`
			INSERT INTO analysis_log (
				session_id, frame_index,
				ceiling_detected, ceiling_distance, ceiling_clearance_ok,
				ground_obstacle, obstacle_height, obstacle_distance, can_step_over, baseline_slope,
				action, recommended_height, confidence, message, created_unix_nanos
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			sessionID, frameIndex,
			boolToInt(res.Ceiling.Detected), res.Ceiling.Distance, boolToInt(res.Ceiling.ClearanceOK),
			boolToInt(res.Ground.ObstacleDetected), res.Ground.ObstacleHeight, res.Ground.ObstacleDistance,
			boolToInt(res.Ground.CanStepOver), res.Ground.BaselineSlope,
			res.Action.String(), res.RecommendedHeight, res.Confidence, res.Message,
			time.Now().UnixNano(),
		)
		return err
	})
}

// Sample is one recorded analysis row.
type Sample struct {
	FrameIndex        int64   `json:"frame_index"`
	CeilingDetected   bool    `json:"ceiling_detected"`
	CeilingDistance   float64 `json:"ceiling_distance"`
	CeilingOK         bool    `json:"ceiling_clearance_ok"`
	GroundObstacle    bool    `json:"ground_obstacle"`
	ObstacleHeight    float64 `json:"obstacle_height"`
	ObstacleDistance  float64 `json:"obstacle_distance"`
	CanStepOver       bool    `json:"can_step_over"`
	BaselineSlope     float64 `json:"baseline_slope"`
	Action            string  `json:"action"`
	RecommendedHeight float64 `json:"recommended_height"`
	Confidence        float64 `json:"confidence"`
	Message           string  `json:"message"`
	CreatedAt         int64   `json:"created_unix_nanos"`
}

// ListSessions returns all sessions, newest first.
func (db *DB) ListSessions() ([]Session, error) {
	rows, err := db.Query(`
		SELECT session_id, label, COALESCE(config_json, ''), started_unix_nanos
		FROM sessions
		ORDER BY started_unix_nanos DESC`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var s Session
		if err := rows.Scan(&s.SessionID, &s.Label, &s.ConfigJSON, &s.StartedAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// LatestSession returns the most recently started session.
func (db *DB) LatestSession() (*Session, error) {
	row := db.QueryRow(`
		SELECT session_id, label, COALESCE(config_json, ''), started_unix_nanos
		FROM sessions
		ORDER BY started_unix_nanos DESC
		LIMIT 1`)
	var s Session
	if err := row.Scan(&s.SessionID, &s.Label, &s.ConfigJSON, &s.StartedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("no sessions recorded")
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}
	return &s, nil
}

// SessionSamples returns a session's analysis rows in frame order.
func (db *DB) SessionSamples(sessionID string) ([]Sample, error) {
	rows, err := db.Query(`
		SELECT frame_index,
		       ceiling_detected, ceiling_distance, ceiling_clearance_ok,
		       ground_obstacle, obstacle_height, obstacle_distance, can_step_over, baseline_slope,
		       action, recommended_height, confidence, message, created_unix_nanos
		FROM analysis_log
		WHERE session_id = ?
		ORDER BY frame_index ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query analysis log: %w", err)
	}
	defer rows.Close()

	var samples []Sample
	for rows.Next() {
		var s Sample
		var ceilDet, ceilOK, obstacle, stepOver int
		if err := rows.Scan(&s.FrameIndex,
			&ceilDet, &s.CeilingDistance, &ceilOK,
			&obstacle, &s.ObstacleHeight, &s.ObstacleDistance, &stepOver, &s.BaselineSlope,
			&s.Action, &s.RecommendedHeight, &s.Confidence, &s.Message, &s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan analysis row: %w", err)
		}
		s.CeilingDetected = ceilDet != 0
		s.CeilingOK = ceilOK != 0
		s.GroundObstacle = obstacle != 0
		s.CanStepOver = stepOver != 0
		samples = append(samples, s)
	}
	return samples, rows.Err()
}

// ActionCounts returns how many frames of a session resolved to each
// action.
func (db *DB) ActionCounts(sessionID string) (map[string]int, error) {
	rows, err := db.Query(`
		SELECT action, COUNT(*)
		FROM analysis_log
		WHERE session_id = ?
		GROUP BY action`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query action counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var action string
		var n int
		if err := rows.Scan(&action, &n); err != nil {
			return nil, fmt.Errorf("scan action count: %w", err)
		}
		counts[action] = n
	}
	return counts, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
