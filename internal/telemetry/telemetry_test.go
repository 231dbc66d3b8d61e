package telemetry

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/DesignSparkRS/DesignSpark.ESDK/internal/logger"
	"github.com/DesignSparkRS/DesignSpark.ESDK/sensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServiceDisabled(t *testing.T) {
	logger.Init(false, false, true)

	collector, err := NewService(Config{Enabled: false}, logger.Default())
	require.NoError(t, err)

	require.NoError(t, collector.Record(context.Background(), nil))
	require.NoError(t, collector.Close())
}

func TestRecordAndFlush(t *testing.T) {
	logger.Init(false, false, true)

	dbPath := filepath.Join(t.TempDir(), "telemetry.db")
	cfg := Config{
		Enabled:   true,
		DBPath:    dbPath,
		BatchSize: 2,
	}

	collector, err := NewService(cfg, logger.Default())
	require.NoError(t, err)

	base := time.Now()
	for i := 0; i < 3; i++ {
		snapshot := &Snapshot{
			Timestamp: base.Add(time.Duration(i) * time.Second),
			Geohash:   "gcpvj0",
			Readings: map[string]sensor.Values{
				"co2": {"sensor": "CO20.2", "co2": 400 + i},
				"thv": {"sensor": "THV0.2", "temperature": 21.5},
			},
		}
		require.NoError(t, collector.Record(context.Background(), snapshot))
	}

	// Close flushes whatever the batch threshold left behind
	require.NoError(t, collector.Close())

	db, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM readings").Scan(&count))
	assert.Equal(t, 6, count, "3 snapshots x 2 categories")

	var payload string
	require.NoError(t, db.QueryRow(
		"SELECT payload FROM readings WHERE category = 'thv' ORDER BY timestamp LIMIT 1",
	).Scan(&payload))
	assert.Contains(t, payload, "21.5")
}

func TestFlushFailureCapsBuffer(t *testing.T) {
	logger.Init(false, false, true)

	// A closed handle makes every flush fail, as a persistently broken
	// database would.
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "telemetry.db"))
	require.NoError(t, err)
	require.NoError(t, db.Close())

	repo := &repository{
		db:     db,
		logger: logger.Default(),
		cfg:    Config{Enabled: true, DBPath: "unused", BatchSize: 2},
	}

	for i := 0; i < 100; i++ {
		_ = repo.Record(&Snapshot{
			Timestamp: time.Now().Add(time.Duration(i) * time.Second),
			Readings:  map[string]sensor.Values{"co2": {"co2": i}},
		})
	}

	assert.LessOrEqual(t, len(repo.buffer), 2*maxBufferedBatches)

	// Newest snapshots survive, oldest are dropped
	last := repo.buffer[len(repo.buffer)-1]
	assert.Equal(t, 99, last.Readings["co2"]["co2"])
}

func TestRecordNilSnapshot(t *testing.T) {
	logger.Init(false, false, true)

	dbPath := filepath.Join(t.TempDir(), "telemetry.db")
	collector, err := NewService(Config{Enabled: true, DBPath: dbPath, BatchSize: 4}, logger.Default())
	require.NoError(t, err)
	defer collector.Close()

	assert.Error(t, collector.Record(context.Background(), nil))
}
