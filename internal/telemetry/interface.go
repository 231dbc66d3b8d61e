package telemetry

import (
	"context"
	"time"

	"github.com/DesignSparkRS/DesignSpark.ESDK/sensor"
)

// Collector defines the core domain interface
type Collector interface {
	Record(ctx context.Context, snapshot *Snapshot) error
	Close() error
}

// Repository defines the interface for telemetry data storage
type Repository interface {
	Record(snapshot *Snapshot) error
	Close() error
}

// Snapshot is one aggregate read cycle's output: every active sensor
// category's readings, stamped with time and location.
type Snapshot struct {
	Timestamp time.Time
	Geohash   string
	Readings  map[string]sensor.Values
}
