package board

import (
	"github.com/DesignSparkRS/DesignSpark.ESDK/internal/bus"
	"github.com/DesignSparkRS/DesignSpark.ESDK/internal/config"
	"github.com/DesignSparkRS/DesignSpark.ESDK/internal/logger"
	"github.com/DesignSparkRS/DesignSpark.ESDK/internal/sensor/co2"
	"github.com/DesignSparkRS/DesignSpark.ESDK/internal/sensor/fdh"
	"github.com/DesignSparkRS/DesignSpark.ESDK/internal/sensor/no2"
	"github.com/DesignSparkRS/DesignSpark.ESDK/internal/sensor/nrd"
	"github.com/DesignSparkRS/DesignSpark.ESDK/internal/sensor/pm2"
	"github.com/DesignSparkRS/DesignSpark.ESDK/internal/sensor/thv"
	"github.com/DesignSparkRS/DesignSpark.ESDK/sensor"
)

// registryEntry maps one known module to its bus address, presence probe
// and constructor.
type registryEntry struct {
	Name string
	Addr uint16

	// Probe tests presence. Nil means the default minimal probe write.
	Probe func(bus.Bus) error

	New func(bus.Bus, *config.Config, logger.Logger) (sensor.Sensor, error)
}

// registry is the immutable table of known modules, in declaration order.
// Addresses are unique; at most one driver instance exists per discovered
// address per board lifetime.
var registry = []registryEntry{
	{
		Name: "THV",
		Addr: thv.AddrSHT,
		New: func(b bus.Bus, _ *config.Config, log logger.Logger) (sensor.Sensor, error) {
			return thv.New(b, log)
		},
	},
	{
		Name: "CO2",
		Addr: co2.Addr,
		New: func(b bus.Bus, _ *config.Config, log logger.Logger) (sensor.Sensor, error) {
			return co2.New(b, log)
		},
	},
	{
		Name: "PM2",
		Addr: pm2.Addr,
		New: func(b bus.Bus, _ *config.Config, log logger.Logger) (sensor.Sensor, error) {
			return pm2.New(b, log)
		},
	},
	{
		Name: "NO2",
		Addr: no2.Addr,
		New: func(b bus.Bus, cfg *config.Config, log logger.Logger) (sensor.Sensor, error) {
			return no2.New(b, cfg.NO2, log)
		},
	},
	{
		Name:  "NRD",
		Addr:  nrd.Addr,
		Probe: nrd.Probe,
		New: func(b bus.Bus, _ *config.Config, log logger.Logger) (sensor.Sensor, error) {
			return nrd.New(b, log)
		},
	},
	{
		Name: "FDH",
		Addr: fdh.Addr,
		New: func(b bus.Bus, _ *config.Config, log logger.Logger) (sensor.Sensor, error) {
			return fdh.New(b, log)
		},
	},
}
