// Package nrd drives the ESDK-NRD board (nuclear radiation detector).
package nrd

import (
	"github.com/DesignSparkRS/DesignSpark.ESDK/internal/bus"
	"github.com/DesignSparkRS/DesignSpark.ESDK/internal/logger"
	"github.com/DesignSparkRS/DesignSpark.ESDK/sensor"
)

const (
	Version = "NRD0.1"
	Addr    = 0x60

	regCPS         = 0x01
	regCPM         = 0x02
	regTotalCounts = 0x03
	regEventLed    = 0x04
	regResetCounts = 0x05
	regEventGpio   = 0x06
	regWatchdog    = 0x07
)

// Mod handles interfacing with the ESDK-NRD board.
type Mod struct {
	bus bus.Bus
	log logger.Logger
}

func New(b bus.Bus, log logger.Logger) (*Mod, error) {
	return &Mod{bus: b, log: log}, nil
}

// Probe tests for the board's presence. The NRD does not acknowledge a
// plain probe write, so the counter-reset command doubles as the probe.
func Probe(b bus.Bus) error {
	return b.WriteBlock(Addr, regResetCounts, 0x01)
}

func (m *Mod) Key() string {
	return "nrd"
}

func (m *Mod) setFlag(register byte, on bool) error {
	value := byte(0x00)
	if on {
		value = 0x01
	}

	return m.bus.WriteBlock(Addr, register, value)
}

func (m *Mod) getFlag(register byte) (bool, error) {
	buf, err := m.bus.ReadBlock(Addr, register, 1)
	if err != nil {
		return false, err
	}

	return buf[0] == 0x01, nil
}

// SetI2CWatchdog enables or disables the board's I2C watchdog.
func (m *Mod) SetI2CWatchdog(on bool) error {
	return m.setFlag(regWatchdog, on)
}

// I2CWatchdogEnabled reports the watchdog enabled state.
func (m *Mod) I2CWatchdogEnabled() (bool, error) {
	return m.getFlag(regWatchdog)
}

// SetEventLed enables or disables the event detection LED.
func (m *Mod) SetEventLed(on bool) error {
	return m.setFlag(regEventLed, on)
}

// EventLedEnabled reports the event LED enabled state.
func (m *Mod) EventLedEnabled() (bool, error) {
	return m.getFlag(regEventLed)
}

// SetEventGpio enables or disables the event detection GPIO output.
func (m *Mod) SetEventGpio(on bool) error {
	return m.setFlag(regEventGpio, on)
}

// EventGpioEnabled reports the event GPIO enabled state.
func (m *Mod) EventGpioEnabled() (bool, error) {
	return m.getFlag(regEventGpio)
}

// ResetCounts resets all event counters.
func (m *Mod) ResetCounts() error {
	return m.bus.WriteBlock(Addr, regResetCounts, 0x01)
}

// ReadCountsPerSecond returns the current CPS rate.
func (m *Mod) ReadCountsPerSecond() (int, error) {
	buf, err := m.bus.ReadBlock(Addr, regCPS, 1)
	if err != nil {
		return 0, err
	}

	return int(buf[0]), nil
}

// ReadCountsPerMinute returns the current CPM rate.
func (m *Mod) ReadCountsPerMinute() (int, error) {
	buf := make([]byte, 2)
	if err := m.bus.Tx(Addr, []byte{regCPM}, buf); err != nil {
		return 0, err
	}

	return int(buf[0])<<8 | int(buf[1]), nil
}

// ReadTotalCounts returns the total accumulated event count.
func (m *Mod) ReadTotalCounts() (int, error) {
	buf := make([]byte, 4)
	if err := m.bus.Tx(Addr, []byte{regTotalCounts}, buf); err != nil {
		return 0, err
	}

	return int(buf[0])<<24 | int(buf[1])<<16 | int(buf[2])<<8 | int(buf[3]), nil
}

func (m *Mod) Read() (sensor.Values, error) {
	cps, err := m.ReadCountsPerSecond()
	if err != nil {
		return nil, err
	}

	cpm, err := m.ReadCountsPerMinute()
	if err != nil {
		return nil, err
	}

	total, err := m.ReadTotalCounts()
	if err != nil {
		return nil, err
	}

	return sensor.Values{
		"sensor":      Version,
		"cps":         cps,
		"cpm":         cpm,
		"totalCounts": total,
	}, nil
}
