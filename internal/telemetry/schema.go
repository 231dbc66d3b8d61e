package telemetry

import (
	"database/sql"

	"github.com/DesignSparkRS/DesignSpark.ESDK/internal/errors"
)

// InitSchema initializes the database schema for telemetry data
func InitSchema(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS readings (
            timestamp INTEGER NOT NULL,
            category TEXT NOT NULL,
            geohash TEXT,
            payload TEXT NOT NULL,
            PRIMARY KEY (timestamp, category)
        )
    `)
	if err != nil {
		return errors.New().Wrap(ErrSchemaInitFailed, err)
	}

	return nil
}

// GetInsertReadingSQL returns the insert statement used by the flusher
func GetInsertReadingSQL() string {
	return `
        INSERT OR REPLACE INTO readings (timestamp, category, geohash, payload)
        VALUES (?, ?, ?, ?)
    `
}
