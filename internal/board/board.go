// Package board is the orchestrator for the ESDK mainboard: it probes the
// bus for sensor modules, owns their driver instances and aggregates
// their readings into one snapshot.
package board

import (
	"os"
	"strings"
	"sync"
	"unicode"

	"github.com/DesignSparkRS/DesignSpark.ESDK/internal/bus"
	"github.com/DesignSparkRS/DesignSpark.ESDK/internal/config"
	"github.com/DesignSparkRS/DesignSpark.ESDK/internal/errors"
	"github.com/DesignSparkRS/DesignSpark.ESDK/internal/location"
	"github.com/DesignSparkRS/DesignSpark.ESDK/internal/logger"
	"github.com/DesignSparkRS/DesignSpark.ESDK/sensor"
)

const serialNumberPath = "/sys/firmware/devicetree/base/serial-number"

// module is one constructed driver, kept in discovery order.
type module struct {
	name   string
	sensor sensor.Sensor
}

// Board owns the bus handle and every driver instance constructed from it.
type Board struct {
	bus      bus.Bus
	log      logger.Logger
	cfg      *config.Config
	tracker  *location.Tracker
	actuator *Actuator

	discovered []string
	modules    []module
	plugins    []sensor.Sensor

	mu       sync.RWMutex
	snapshot map[string]sensor.Values
}

// New opens the hardware bus and constructs the board. A bus that cannot
// be opened is fatal; every failure after this point is isolated
// per-module.
func New(cfg *config.Config, log logger.Logger) (*Board, error) {
	busHandle, err := bus.Open("")
	if err != nil {
		return nil, err
	}

	b := NewWithBus(busHandle, cfg, log)

	if actuator, err := NewActuator(cfg.ESDK, log); err != nil {
		log.Warn().Err(err).Msg("Board actuation unavailable")
	} else {
		b.actuator = actuator
	}

	return b, nil
}

// NewWithBus constructs a board on an existing bus handle.
func NewWithBus(busHandle bus.Bus, cfg *config.Config, log logger.Logger) *Board {
	return &Board{
		bus:      busHandle,
		log:      log,
		cfg:      cfg,
		tracker:  location.NewTracker(cfg.ESDK, log),
		snapshot: make(map[string]sensor.Values),
	}
}

// Probe attempts a minimal transaction against every known address and
// rebuilds the discovered-module list from scratch. A failed probe means
// the socket is empty; it is never an error.
func (b *Board) Probe() []string {
	b.discovered = b.discovered[:0]

	b.log.Debug().Msg("Starting module probe")
	for _, entry := range registry {
		probe := entry.Probe
		if probe == nil {
			probe = func(busHandle bus.Bus) error {
				return busHandle.WriteByte(entry.Addr, 0)
			}
		}

		if err := probe(b.bus); err != nil {
			continue
		}
		b.discovered = append(b.discovered, entry.Name)
	}

	b.log.Info().Strs("modules", b.discovered).Msg("Found modules")

	return append([]string(nil), b.discovered...)
}

// CreateModules probes the bus and constructs one driver per discovered
// module. A constructor failure is logged and skipped so the remaining
// modules still come up. Sensors that sample continuously get their
// background loop started here.
func (b *Board) CreateModules() {
	b.Probe()

	b.modules = b.modules[:0]
	for _, entry := range registry {
		if !b.isDiscovered(entry.Name) {
			continue
		}

		s, err := entry.New(b.bus, b.cfg, b.log)
		if err != nil {
			b.log.Error().Err(err).Str("module", entry.Name).Msg("Could not create module")
			continue
		}

		if sampler, ok := s.(sensor.Sampler); ok {
			sampler.Start()
		}

		b.modules = append(b.modules, module{name: entry.Name, sensor: s})
	}

	b.tracker.Start()
}

func (b *Board) isDiscovered(name string) bool {
	for _, n := range b.discovered {
		if n == name {
			return true
		}
	}

	return false
}

// Modules returns the names of the constructed drivers, in discovery order.
func (b *Board) Modules() []string {
	names := make([]string, len(b.modules))
	for i, m := range b.modules {
		names[i] = m.name
	}

	return names
}

// AttachPlugins registers loaded plugin sensors for the aggregate read
// cycle. The slice is not copied; the plugin registry is immutable after
// load.
func (b *Board) AttachPlugins(plugins []sensor.Sensor) {
	b.plugins = plugins
}

// ReadAll reads every module and plugin, merging each result into the
// snapshot under the sensor's category key. A failed read leaves the
// previous value in place: the snapshot holds each sensor's last known
// good reading, not a consistent instant.
func (b *Board) ReadAll() map[string]sensor.Values {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, m := range b.modules {
		b.readInto(m.name, m.sensor)
	}
	for _, p := range b.plugins {
		b.readInto("plugin:"+p.Key(), p)
	}

	// Deep copy: callers must not be able to reach the retained snapshot
	// through a returned map.
	out := make(map[string]sensor.Values, len(b.snapshot))
	for k, v := range b.snapshot {
		values := make(sensor.Values, len(v))
		for field, value := range v {
			values[field] = value
		}
		out[k] = values
	}

	return out
}

func (b *Board) readInto(name string, s sensor.Sensor) {
	values, err := s.Read()
	if err != nil {
		// Built-in drivers carry the no-data code; plugins use the
		// public sentinel.
		if errors.IsCode(err, errors.ErrNoData) || errors.Is(err, sensor.ErrNoData) {
			b.log.Debug().Str("module", name).Msg("No data available")
		} else {
			b.log.Error().Err(err).Str("module", name).Msg("Could not read module")
		}

		return
	}

	b.snapshot[s.Key()] = values
}

// Location returns the current geohash, from GPS when enabled or the
// configured static coordinates otherwise.
func (b *Board) Location() (string, error) {
	return b.tracker.Geohash()
}

// FriendlyName returns the configured device friendly name.
func (b *Board) FriendlyName() string {
	return b.cfg.ESDK.FriendlyName
}

// SerialNumber derives a hardware identity from the host's devicetree
// serial number.
func (b *Board) SerialNumber() (string, error) {
	raw, err := os.ReadFile(serialNumberPath)
	if err != nil {
		return "", errors.New().Wrap(errors.ErrInternal, err)
	}

	serial := strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) {
			return r
		}
		return -1
	}, string(raw))

	return "RPI" + serial, nil
}

// SetPower switches a named power rail on or off.
func (b *Board) SetPower(rail string, on bool) error {
	if b.actuator == nil {
		return errors.New().WithMessage(errors.ErrActuation, "no actuator configured")
	}

	return b.actuator.SetPower(rail, on)
}

// SetBuzzer drives the audible alert at the given frequency in Hz.
// Zero silences it.
func (b *Board) SetBuzzer(freqHz int) error {
	if b.actuator == nil {
		return errors.New().WithMessage(errors.ErrActuation, "no actuator configured")
	}

	return b.actuator.SetBuzzer(freqHz)
}

// Close releases the bus handle.
func (b *Board) Close() error {
	return b.bus.Close()
}
