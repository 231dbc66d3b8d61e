package telemetry

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/DesignSparkRS/DesignSpark.ESDK/internal/errors"
	"github.com/DesignSparkRS/DesignSpark.ESDK/internal/logger"
	_ "github.com/mattn/go-sqlite3"
)

// A broken database must not grow the buffer for the life of the daemon;
// beyond this many unflushed batches the oldest snapshots are dropped.
const maxBufferedBatches = 8

type repository struct {
	db            *sql.DB
	logger        logger.Logger
	cfg           Config
	mu            sync.Mutex
	buffer        []*Snapshot
	flushTicker   *time.Ticker
	shutdownChan  chan struct{}
	flushDoneChan chan struct{}
}

func NewRepository(cfg Config, log logger.Logger) (Repository, error) {
	errFactory := errors.New()

	if cfg.DBPath == "" {
		return nil, errFactory.New(ErrInvalidDBPath)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), defaultDirPerm); err != nil {
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}

	// WAL keeps the flusher from blocking readers on the Pi's slow storage
	dsn := cfg.DBPath + "?_journal=WAL&_auto_vacuum=2"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}

	if err := InitSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	log.Info().
		Str("path", cfg.DBPath).
		Int("batch_size", cfg.BatchSize).
		Int("batch_timeout", cfg.BatchTimeout).
		Msg("Telemetry repository initialized")

	repo := &repository{
		db:            db,
		logger:        log,
		cfg:           cfg,
		buffer:        make([]*Snapshot, 0, cfg.BatchSize),
		shutdownChan:  make(chan struct{}),
		flushDoneChan: make(chan struct{}),
	}

	if cfg.BatchSize > 0 && cfg.BatchTimeout > 0 {
		repo.flushTicker = time.NewTicker(time.Duration(cfg.BatchTimeout) * time.Second)
		go repo.flusher()
	}

	return repo, nil
}

func (r *repository) Record(snapshot *Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.buffer = append(r.buffer, snapshot)

	if len(r.buffer) >= r.cfg.BatchSize {
		return r.flush()
	}

	return nil
}

func (r *repository) Close() error {
	if r.flushTicker != nil {
		close(r.shutdownChan)
		r.flushTicker.Stop()
		<-r.flushDoneChan
	} else {
		r.mu.Lock()
		r.flush()
		r.mu.Unlock()
	}

	if _, err := r.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return errors.New().Wrap(ErrStorageClose, err)
	}

	if err := r.db.Close(); err != nil {
		return errors.New().Wrap(ErrStorageClose, err)
	}

	r.logger.Info().Msg("Telemetry repository closed gracefully")

	return nil
}

func (r *repository) flusher() {
	defer close(r.flushDoneChan)

	for {
		select {
		case <-r.flushTicker.C:
			r.mu.Lock()
			r.flush()
			r.mu.Unlock()
		case <-r.shutdownChan:
			r.mu.Lock()
			r.flush()
			r.mu.Unlock()
			return
		}
	}
}

// flush writes the buffered snapshots in one transaction. Callers hold
// the mutex.
func (r *repository) flush() error {
	if len(r.buffer) == 0 {
		return nil
	}

	errFactory := errors.New()

	tx, err := r.db.Begin()
	if err != nil {
		r.logger.Error().Err(err).Msg("Failed to begin transaction")
		r.trimBuffer()
		return errFactory.Wrap(ErrTransactionFailed, err)
	}

	stmt, err := tx.Prepare(GetInsertReadingSQL())
	if err != nil {
		r.logger.Error().Err(err).Msg("Failed to prepare statement")
		if err := tx.Rollback(); err != nil {
			r.logger.Error().Err(err).Msg("Failed to roll back transaction")
		}
		r.trimBuffer()
		return errFactory.Wrap(ErrTransactionFailed, err)
	}
	defer stmt.Close()

	for _, snapshot := range r.buffer {
		for category, values := range snapshot.Readings {
			payload, err := json.Marshal(values)
			if err != nil {
				r.logger.Error().Err(err).Str("category", category).Msg("Failed to encode reading")
				continue
			}

			if _, err := stmt.Exec(snapshot.Timestamp.Unix(), category, snapshot.Geohash, string(payload)); err != nil {
				r.logger.Error().Err(err).Msg("Failed to execute insert")
				if err := tx.Rollback(); err != nil {
					r.logger.Error().Err(err).Msg("Failed to roll back transaction")
				}
				r.trimBuffer()
				return errFactory.Wrap(ErrTransactionFailed, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error().Err(err).Msg("Failed to commit transaction")
		r.trimBuffer()
		return errFactory.Wrap(ErrTransactionFailed, err)
	}

	r.logger.Debug().Int("records", len(r.buffer)).Msg("Flushed telemetry to database")
	r.buffer = r.buffer[:0]

	return nil
}

// trimBuffer drops the oldest snapshots once a failed flush has left the
// buffer over its limit. Callers hold the mutex.
func (r *repository) trimBuffer() {
	limit := r.cfg.BatchSize * maxBufferedBatches
	if limit <= 0 {
		limit = maxBufferedBatches
	}
	if len(r.buffer) <= limit {
		return
	}

	dropped := len(r.buffer) - limit
	n := copy(r.buffer, r.buffer[dropped:])
	r.buffer = r.buffer[:n]

	r.logger.Warn().Int("dropped", dropped).Msg("Telemetry buffer full, dropping oldest snapshots")
}
