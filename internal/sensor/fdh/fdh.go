// Package fdh drives the ESDK-FDH board (SFA30 formaldehyde sensor).
package fdh

import (
	"github.com/DesignSparkRS/DesignSpark.ESDK/internal/bus"
	"github.com/DesignSparkRS/DesignSpark.ESDK/internal/logger"
	"github.com/DesignSparkRS/DesignSpark.ESDK/sensor"
)

const (
	Version = "FDH0.1"
	Addr    = 0x5D
)

// Mod handles interfacing with the ESDK-FDH board.
type Mod struct {
	bus bus.Bus
	log logger.Logger
}

// New constructs the driver and starts continuous measurement.
func New(b bus.Bus, log logger.Logger) (*Mod, error) {
	m := &Mod{bus: b, log: log}

	if err := m.startPeriodicMeasurement(); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *Mod) Key() string {
	return "fdh"
}

func (m *Mod) startPeriodicMeasurement() error {
	return m.bus.WriteBlock(Addr, 0x00, 0x06)
}

// ReadFormaldehyde returns an HCHO reading in ppb.
func (m *Mod) ReadFormaldehyde() (int, error) {
	buf := make([]byte, 9)
	if err := m.bus.Tx(Addr, []byte{0x03, 0x27}, buf); err != nil {
		return 0, err
	}

	// Raw value is scaled by 5 per the SFA30 datasheet
	return int(float64(int(buf[0])<<8|int(buf[1])) / 5.0), nil
}

func (m *Mod) Read() (sensor.Values, error) {
	hcho, err := m.ReadFormaldehyde()
	if err != nil {
		return nil, err
	}

	return sensor.Values{
		"sensor":       Version,
		"formaldehyde": hcho,
	}, nil
}
