// Package co2 drives the ESDK-CO2 board (SCD41 CO2 sensor).
package co2

import (
	"github.com/DesignSparkRS/DesignSpark.ESDK/internal/bus"
	"github.com/DesignSparkRS/DesignSpark.ESDK/internal/errors"
	"github.com/DesignSparkRS/DesignSpark.ESDK/internal/logger"
	"github.com/DesignSparkRS/DesignSpark.ESDK/sensor"
)

const (
	Version = "CO20.2"
	Addr    = 0x62
)

// Mod handles interfacing with the ESDK-CO2 board.
type Mod struct {
	bus bus.Bus
	log logger.Logger
}

// New constructs the driver and puts the sensor into periodic
// measurement mode.
func New(b bus.Bus, log logger.Logger) (*Mod, error) {
	m := &Mod{bus: b, log: log}

	if err := m.startPeriodicMeasurement(); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *Mod) Key() string {
	return "co2"
}

func (m *Mod) startPeriodicMeasurement() error {
	return m.bus.WriteBlock(Addr, 0x21, 0xB1)
}

func (m *Mod) isDataReady() (bool, error) {
	buf := make([]byte, 3)
	if err := m.bus.Tx(Addr, []byte{0xE4, 0xB8}, buf); err != nil {
		return false, err
	}

	state := int(buf[0])<<8 | int(buf[1])

	return state != 0x8000, nil
}

func (m *Mod) readMeasurement() ([]byte, error) {
	buf := make([]byte, 9)
	if err := m.bus.Tx(Addr, []byte{0xEC, 0x05}, buf); err != nil {
		return nil, err
	}

	return buf, nil
}

// ReadCO2 returns a CO2 reading in ppm.
func (m *Mod) ReadCO2() (int, error) {
	ready, err := m.isDataReady()
	if err != nil {
		return 0, err
	}
	if !ready {
		return 0, errors.New().New(errors.ErrNoData)
	}

	v, err := m.readMeasurement()
	if err != nil {
		return 0, err
	}

	return int(v[0])<<8 | int(v[1]), nil
}

// ReadTempAndHumidity returns the sensor's on-die temperature and
// relative humidity readings.
func (m *Mod) ReadTempAndHumidity() (temperature, humidity float64, err error) {
	ready, err := m.isDataReady()
	if err != nil {
		return 0, 0, err
	}
	if !ready {
		return 0, 0, errors.New().New(errors.ErrNoData)
	}

	v, err := m.readMeasurement()
	if err != nil {
		return 0, 0, err
	}

	// Conversions from the SCD4x datasheet
	temperature = sensor.Round(-45+(175*float64(int(v[3])<<8|int(v[4]))/65535.0), 1)
	humidity = sensor.Round(100*float64(int(v[6])<<8|int(v[7]))/65535.0, 1)

	return temperature, humidity, nil
}

func (m *Mod) Read() (sensor.Values, error) {
	co2Reading, err := m.ReadCO2()
	if err != nil {
		return nil, err
	}

	return sensor.Values{
		"sensor": Version,
		"co2":    co2Reading,
	}, nil
}
