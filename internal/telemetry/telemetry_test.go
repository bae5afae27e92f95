package telemetry

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groundline-robotics/terrain.clearance/internal/terrain"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "analysis.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleResult(action terrain.ClearanceAction, height float64) terrain.AnalysisResult {
	return terrain.AnalysisResult{
		Ceiling: terrain.CeilingReading{Detected: true, Distance: 0.9, ClearanceOK: true},
		Ground: terrain.GroundReading{
			ObstacleDetected: true,
			ObstacleHeight:   height,
			ObstacleDistance: 1.1,
			CanStepOver:      true,
			BaselineSlope:    -0.004,
		},
		Action:            action,
		RecommendedHeight: height + 0.02,
		Confidence:        0.85,
		Message:           "test sample",
	}
}

func TestOpenRunsMigrations(t *testing.T) {
	db := openTestDB(t)

	// Tables exist and are queryable straight after Open.
	sessions, err := db.ListSessions()
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analysis.db")
	db1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, db1.Close())

	// Re-opening an already migrated database must not fail.
	db2, err := Open(path)
	require.NoError(t, err)
	defer db2.Close()
}

func TestRecordAndReadBack(t *testing.T) {
	db := openTestDB(t)

	id, err := db.StartSession("bench run", terrain.DefaultConfig())
	require.NoError(t, err)
	require.NotEmpty(t, id)

	require.NoError(t, db.RecordAnalysis(id, 0, sampleResult(terrain.ActionRaise, 0.04)))
	require.NoError(t, db.RecordAnalysis(id, 1, sampleResult(terrain.ActionRaise, 0.045)))
	require.NoError(t, db.RecordAnalysis(id, 2, sampleResult(terrain.ActionStop, 0.12)))

	samples, err := db.SessionSamples(id)
	require.NoError(t, err)
	require.Len(t, samples, 3)

	assert.Equal(t, int64(0), samples[0].FrameIndex)
	assert.Equal(t, "RAISE", samples[0].Action)
	assert.True(t, samples[0].GroundObstacle)
	assert.True(t, samples[0].CanStepOver)
	assert.InDelta(t, 0.04, samples[0].ObstacleHeight, 1e-12)
	assert.InDelta(t, -0.004, samples[0].BaselineSlope, 1e-12)
	assert.Equal(t, "STOP", samples[2].Action)

	counts, err := db.ActionCounts(id)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"RAISE": 2, "STOP": 1}, counts)
}

func TestSessionsAreIsolated(t *testing.T) {
	db := openTestDB(t)

	id1, err := db.StartSession("first", terrain.DefaultConfig())
	require.NoError(t, err)
	id2, err := db.StartSession("second", terrain.DefaultConfig())
	require.NoError(t, err)

	require.NoError(t, db.RecordAnalysis(id1, 0, sampleResult(terrain.ActionNormal, 0)))

	samples, err := db.SessionSamples(id2)
	require.NoError(t, err)
	assert.Empty(t, samples)

	latest, err := db.LatestSession()
	require.NoError(t, err)
	assert.Equal(t, id2, latest.SessionID)
	assert.Equal(t, "second", latest.Label)
}

func TestRetryOnBusy(t *testing.T) {
	t.Run("passes through success", func(t *testing.T) {
		calls := 0
		err := retryOnBusy(func() error { calls++; return nil })
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("retries busy errors", func(t *testing.T) {
		calls := 0
		err := retryOnBusy(func() error {
			calls++
			if calls < 3 {
				return errors.New("database is locked (5) (SQLITE_BUSY)")
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("does not retry other errors", func(t *testing.T) {
		calls := 0
		wantErr := errors.New("constraint violation")
		err := retryOnBusy(func() error { calls++; return wantErr })
		assert.Equal(t, wantErr, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		calls := 0
		err := retryOnBusy(func() error { calls++; return errors.New("SQLITE_BUSY") })
		require.Error(t, err)
		assert.Equal(t, busyMaxAttempts, calls)
	})
}
