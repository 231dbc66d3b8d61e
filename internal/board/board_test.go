package board

import (
	"fmt"
	"testing"

	"github.com/DesignSparkRS/DesignSpark.ESDK/internal/bus/bustest"
	"github.com/DesignSparkRS/DesignSpark.ESDK/internal/config"
	"github.com/DesignSparkRS/DesignSpark.ESDK/internal/errors"
	"github.com/DesignSparkRS/DesignSpark.ESDK/internal/logger"
	"github.com/DesignSparkRS/DesignSpark.ESDK/internal/sensor/co2"
	"github.com/DesignSparkRS/DesignSpark.ESDK/internal/sensor/fdh"
	"github.com/DesignSparkRS/DesignSpark.ESDK/internal/sensor/no2"
	"github.com/DesignSparkRS/DesignSpark.ESDK/internal/sensor/nrd"
	"github.com/DesignSparkRS/DesignSpark.ESDK/internal/sensor/pm2"
	"github.com/DesignSparkRS/DesignSpark.ESDK/internal/sensor/thv"
	"github.com/DesignSparkRS/DesignSpark.ESDK/sensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Interval: 10,
		NO2: config.NO2Config{
			Sensitivity: config.DefaultNO2Sensitivity,
			TIAGain:     config.DefaultNO2TIAGain,
			Window:      config.DefaultNO2Window,
			Samples:     config.DefaultNO2Samples,
		},
	}
}

// ackBus acks probe transactions only for the given addresses.
func ackBus(acked map[uint16]bool) *bustest.Bus {
	return &bustest.Bus{
		WriteByteFn: func(addr uint16, _ byte) error {
			if acked[addr] {
				return nil
			}
			return fmt.Errorf("no ack from 0x%02X", addr)
		},
		WriteBlockFn: func(addr uint16, _ byte, _ []byte) error {
			if acked[addr] {
				return nil
			}
			return fmt.Errorf("no ack from 0x%02X", addr)
		},
	}
}

func TestProbeOrderAndAttempts(t *testing.T) {
	logger.Init(false, false, true)

	// FDH and CO2 acked in reverse registry order; discovery order must
	// still follow the registry.
	fake := ackBus(map[uint16]bool{fdh.Addr: true, co2.Addr: true})
	b := NewWithBus(fake, testConfig(), logger.Default())

	found := b.Probe()
	assert.Equal(t, []string{"CO2", "FDH"}, found)

	// Exactly one probe attempt per known address
	for _, addr := range []uint16{thv.AddrSHT, co2.Addr, pm2.Addr, no2.Addr, nrd.Addr, fdh.Addr} {
		assert.Len(t, fake.OpsForAddr(addr), 1, "address 0x%02X", addr)
	}
}

func TestProbeEmptyBus(t *testing.T) {
	logger.Init(false, false, true)

	b := NewWithBus(ackBus(nil), testConfig(), logger.Default())
	assert.Empty(t, b.Probe())
}

func TestProbeRebuildsFromScratch(t *testing.T) {
	logger.Init(false, false, true)

	acked := map[uint16]bool{co2.Addr: true}
	b := NewWithBus(ackBus(acked), testConfig(), logger.Default())

	assert.Equal(t, []string{"CO2"}, b.Probe())

	// The module disappears and another one shows up
	delete(acked, co2.Addr)
	acked[fdh.Addr] = true
	assert.Equal(t, []string{"FDH"}, b.Probe())
}

func TestCreateModulesIsolatesFailures(t *testing.T) {
	logger.Init(false, false, true)

	// Both acked on probe, but the CO2 init command fails so its
	// constructor errors. FDH must still come up.
	fake := &bustest.Bus{
		WriteByteFn: func(addr uint16, _ byte) error {
			if addr == co2.Addr || addr == fdh.Addr {
				return nil
			}
			return fmt.Errorf("no ack from 0x%02X", addr)
		},
		WriteBlockFn: func(addr uint16, _ byte, _ []byte) error {
			if addr == fdh.Addr {
				return nil
			}
			return fmt.Errorf("no ack from 0x%02X", addr)
		},
	}

	b := NewWithBus(fake, testConfig(), logger.Default())
	b.CreateModules()

	assert.Equal(t, []string{"FDH"}, b.Modules())
}

// fakeSensor scripts reads for aggregate-cycle tests.
type fakeSensor struct {
	key    string
	values sensor.Values
	err    error
}

func (f *fakeSensor) Key() string { return f.key }

func (f *fakeSensor) Read() (sensor.Values, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.values, nil
}

func TestReadAllLastKnownGood(t *testing.T) {
	logger.Init(false, false, true)

	good := &fakeSensor{key: "co2", values: sensor.Values{"co2": 400}}
	flaky := &fakeSensor{key: "pm", values: sensor.Values{"pm2.5": 7.0}}

	b := NewWithBus(&bustest.Bus{}, testConfig(), logger.Default())
	b.AttachPlugins([]sensor.Sensor{good, flaky})

	snapshot := b.ReadAll()
	require.Equal(t, sensor.Values{"co2": 400}, snapshot["co2"])
	require.Equal(t, sensor.Values{"pm2.5": 7.0}, snapshot["pm"])

	// A failing sensor keeps its last good value while the rest update
	flaky.err = errors.New().New(errors.ErrModuleRead)
	good.values = sensor.Values{"co2": 420}

	snapshot = b.ReadAll()
	assert.Equal(t, sensor.Values{"co2": 420}, snapshot["co2"])
	assert.Equal(t, sensor.Values{"pm2.5": 7.0}, snapshot["pm"])
}

func TestReadAllNoDataNeverAppears(t *testing.T) {
	logger.Init(false, false, true)

	// Built-in drivers carry the no-data code, plugins the public sentinel;
	// both mean absence, not failure.
	warming := &fakeSensor{key: "no2", err: errors.New().New(errors.ErrNoData)}
	external := &fakeSensor{key: "ext", err: sensor.ErrNoData}
	good := &fakeSensor{key: "thv", values: sensor.Values{"temperature": 21.5}}

	b := NewWithBus(&bustest.Bus{}, testConfig(), logger.Default())
	b.AttachPlugins([]sensor.Sensor{warming, external, good})

	snapshot := b.ReadAll()
	assert.NotContains(t, snapshot, "no2")
	assert.NotContains(t, snapshot, "ext")
	assert.Equal(t, sensor.Values{"temperature": 21.5}, snapshot["thv"])
}

func TestReadAllReturnsCopy(t *testing.T) {
	logger.Init(false, false, true)

	s := &fakeSensor{key: "thv", values: sensor.Values{"temperature": 21.5}}
	b := NewWithBus(&bustest.Bus{}, testConfig(), logger.Default())
	b.AttachPlugins([]sensor.Sensor{s})

	first := b.ReadAll()
	delete(first, "thv")

	second := b.ReadAll()
	assert.Contains(t, second, "thv")

	// Mutating a returned reading set must not corrupt the retained
	// last-known-good state.
	second["thv"]["temperature"] = -100.0
	s.err = errors.New().New(errors.ErrModuleRead)

	third := b.ReadAll()
	assert.Equal(t, sensor.Values{"temperature": 21.5}, third["thv"])
}
