// Package no2 drives the ESDK-NO2 gas sensor board. The analog front-end
// is read through a single-channel ADC; concentrations are produced by a
// continuous background sampling pipeline rather than on demand.
package no2

import (
	"sync"

	"github.com/DesignSparkRS/DesignSpark.ESDK/internal/bus"
	"github.com/DesignSparkRS/DesignSpark.ESDK/internal/config"
	"github.com/DesignSparkRS/DesignSpark.ESDK/internal/errors"
	"github.com/DesignSparkRS/DesignSpark.ESDK/internal/logger"
	"github.com/DesignSparkRS/DesignSpark.ESDK/sensor"
)

const (
	Version = "NO20.1"
	Addr    = 0x40

	adcReference = 3.000
	adcUpper     = 0x7FFF

	cmdReset   = 0x06
	cmdTrigger = 0x08

	regConfig     = 0x40
	regDataReady  = 0x24
	regConversion = 0x10

	// Config register values: AINn = GND, gain 1, 20 SPS, single
	// conversion, external reference. AINp selects the channel.
	muxVgas = 0x61
	muxVref = 0x81
)

// Mod handles interfacing with the ESDK-NO2 board.
type Mod struct {
	bus bus.Bus
	log logger.Logger
	cfg config.NO2Config

	// m is the combined gain term of the concentration transform:
	// tiaGain * 1e3 * sensitivity * 1e-9.
	m float64

	// vref is read once by the sampling loop at startup and cached for
	// the life of the instance.
	vref float64

	mu        sync.RWMutex
	window    []float64 // most recent first
	published float64
	ready     bool
}

// New constructs the driver and resets the ADC. The sampling loop is not
// started here; call Start once.
func New(b bus.Bus, cfg config.NO2Config, log logger.Logger) (*Mod, error) {
	m := &Mod{
		bus: b,
		log: log,
		cfg: cfg,
		m:   cfg.TIAGain * 1e3 * cfg.Sensitivity * 1e-9,
	}

	if err := m.reset(); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *Mod) Key() string {
	return "no2"
}

// Read returns the latest smoothed concentration. It never triggers an
// acquisition; before the pipeline publishes its first value it reports
// no data.
func (m *Mod) Read() (sensor.Values, error) {
	v, err := m.ReadNO2()
	if err != nil {
		return nil, err
	}

	return sensor.Values{
		"sensor": Version,
		"no2":    v,
	}, nil
}

// ReadNO2 returns the most recently published smoothed value.
func (m *Mod) ReadNO2() (float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.ready {
		return 0, errors.New().New(errors.ErrNoData)
	}

	return m.published, nil
}

func (m *Mod) reset() error {
	return m.bus.WriteByte(Addr, cmdReset)
}

func (m *Mod) isDataReady() (bool, error) {
	buf := make([]byte, 1)
	if err := m.bus.Tx(Addr, []byte{regDataReady}, buf); err != nil {
		return false, err
	}

	return buf[0]>>7 == 1, nil
}

// readChannel selects a channel, triggers a conversion and polls until the
// ADC reports data ready. There is no deadline: the device is given as
// long as it needs, with the configured delay between polls.
func (m *Mod) readChannel(mux byte) (float64, error) {
	if err := m.bus.WriteBlock(Addr, regConfig, mux); err != nil {
		return 0, err
	}
	if err := m.bus.WriteByte(Addr, cmdTrigger); err != nil {
		return 0, err
	}

	for {
		m.sleep(m.cfg.SampleDelay)

		ready, err := m.isDataReady()
		if err != nil {
			return 0, err
		}
		if ready {
			break
		}
	}

	buf := make([]byte, 2)
	if err := m.bus.Tx(Addr, []byte{regConversion}, buf); err != nil {
		return 0, err
	}

	raw := int(buf[0])<<8 | int(buf[1])
	voltage := float64(raw) * (adcReference / adcUpper)

	return sensor.Round(voltage, 3), nil
}
