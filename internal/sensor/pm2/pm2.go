// Package pm2 drives the ESDK-PM2 board (SPS30 particulate sensor).
package pm2

import (
	"time"

	"github.com/DesignSparkRS/DesignSpark.ESDK/internal/bus"
	"github.com/DesignSparkRS/DesignSpark.ESDK/internal/errors"
	"github.com/DesignSparkRS/DesignSpark.ESDK/internal/logger"
	"github.com/DesignSparkRS/DesignSpark.ESDK/sensor"
)

const (
	Version = "PM20.2"
	Addr    = 0x69

	resetDelay = 100 * time.Millisecond
	readDelay  = time.Millisecond
)

// Mod handles interfacing with the ESDK-PM2 board.
type Mod struct {
	bus bus.Bus
	log logger.Logger
}

// New constructs the driver: reset, wake and start measurement.
func New(b bus.Bus, log logger.Logger) (*Mod, error) {
	m := &Mod{bus: b, log: log}

	if err := m.reset(); err != nil {
		return nil, err
	}
	if err := m.wake(); err != nil {
		return nil, err
	}
	if err := m.StartMeasurement(); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *Mod) Key() string {
	return "pm"
}

// crc8 implements the SPS30's CRC over two-byte groups: polynomial 0x31,
// initialization 0xFF.
func crc8(data ...byte) byte {
	crc := byte(0xFF)
	for _, b := range data {
		crc ^= b
		for bit := 0; bit < 8; bit++ {
			if crc&0x80 != 0 {
				crc = crc<<1 ^ 0x31
			} else {
				crc <<= 1
			}
		}
	}

	return crc
}

func (m *Mod) reset() error {
	if err := m.bus.WriteBlock(Addr, 0xD3, 0x04); err != nil {
		return err
	}

	time.Sleep(resetDelay)

	return nil
}

// wake sends the wake command twice, as per the sensor datasheet.
func (m *Mod) wake() error {
	if err := m.bus.WriteBlock(Addr, 0x11, 0x03); err != nil {
		return err
	}

	return m.bus.WriteBlock(Addr, 0x11, 0x03)
}

// StartMeasurement starts measurement with readings formatted as
// unsigned 16-bit integers.
func (m *Mod) StartMeasurement() error {
	cmd := []byte{0x00, 0x10, 0x05, 0x00}
	cmd = append(cmd, crc8(cmd[2], cmd[3]))

	return m.bus.Tx(Addr, cmd, nil)
}

// StartFanCleaning starts the fan cleaning procedure.
func (m *Mod) StartFanCleaning() error {
	return m.bus.WriteBlock(Addr, 0x56, 0x07)
}

func (m *Mod) isDataReady() (bool, error) {
	if err := m.bus.Tx(Addr, []byte{0x02, 0x02}, nil); err != nil {
		return false, err
	}

	time.Sleep(readDelay)

	buf := make([]byte, 3)
	if err := m.bus.Tx(Addr, nil, buf); err != nil {
		return false, err
	}

	return buf[1] == 0x01, nil
}

func (m *Mod) readMeasurement() (sensor.Values, error) {
	if err := m.bus.Tx(Addr, []byte{0x03, 0x00}, nil); err != nil {
		return nil, err
	}

	time.Sleep(readDelay)

	raw := make([]byte, 30)
	if err := m.bus.Tx(Addr, nil, raw); err != nil {
		return nil, err
	}

	return sensor.Values{
		"pm1.0": int(raw[0])<<8 | int(raw[1]),
		"pm2.5": int(raw[3])<<8 | int(raw[4]),
		"pm4.0": int(raw[6])<<8 | int(raw[7]),
		"pm10":  int(raw[9])<<8 | int(raw[10]),
	}, nil
}

func (m *Mod) Read() (sensor.Values, error) {
	ready, err := m.isDataReady()
	if err != nil {
		return nil, err
	}
	if !ready {
		return nil, errors.New().New(errors.ErrNoData)
	}

	values, err := m.readMeasurement()
	if err != nil {
		return nil, err
	}
	values["sensor"] = Version

	return values, nil
}
