// Package location tracks the board's position, either from gpsd or from
// static coordinates in the config file, and reports it as a geohash.
package location

import (
	"sync"
	"time"

	"github.com/DesignSparkRS/DesignSpark.ESDK/internal/config"
	"github.com/DesignSparkRS/DesignSpark.ESDK/internal/errors"
	"github.com/DesignSparkRS/DesignSpark.ESDK/internal/logger"
	"github.com/mmcloughlin/geohash"
	gpsd "github.com/stratoberry/go-gpsd"
)

const reconnectDelay = 5 * time.Second

// Tracker holds the last known fix. The watcher goroutine publishes on
// write; readers snapshot under the lock.
type Tracker struct {
	cfg config.ESDKConfig
	log logger.Logger

	mu      sync.RWMutex
	lat     float64
	lon     float64
	haveFix bool
	started bool
}

func NewTracker(cfg config.ESDKConfig, log logger.Logger) *Tracker {
	return &Tracker{cfg: cfg, log: log}
}

// Start launches the gpsd watcher when GPS is enabled. It is a no-op
// otherwise, and safe to call more than once.
func (t *Tracker) Start() {
	if !t.cfg.GPS || t.started {
		return
	}
	t.started = true

	t.log.Info().Msg("GPS is enabled")
	go t.watch()
}

// watch keeps a gpsd session alive for the life of the process,
// reconnecting on stream errors. Coordinates stay at the last good fix
// while the connection is down.
func (t *Tracker) watch() {
	for {
		session, err := gpsd.Dial(gpsd.DefaultAddress)
		if err != nil {
			t.log.Error().Err(err).Msg("Could not connect to gpsd")
			time.Sleep(reconnectDelay)
			continue
		}

		session.AddFilter("TPV", func(r interface{}) {
			tpv, ok := r.(*gpsd.TPVReport)
			if !ok {
				return
			}

			t.mu.Lock()
			t.lat = tpv.Lat
			t.lon = tpv.Lon
			t.haveFix = true
			t.mu.Unlock()
		})

		done := session.Watch()
		<-done

		t.log.Warn().Msg("gpsd stream ended, reconnecting")
		time.Sleep(reconnectDelay)
	}
}

// Position returns the current coordinates. With GPS disabled these are
// the configured static coordinates.
func (t *Tracker) Position() (lat, lon float64, err error) {
	if !t.cfg.GPS {
		return t.cfg.Latitude, t.cfg.Longitude, nil
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	if !t.haveFix {
		return 0, 0, errors.New().New(errors.ErrNoFix)
	}

	return t.lat, t.lon, nil
}

// Geohash returns the current position as a geohash.
func (t *Tracker) Geohash() (string, error) {
	lat, lon, err := t.Position()
	if err != nil {
		return "", err
	}

	return geohash.Encode(lat, lon), nil
}
