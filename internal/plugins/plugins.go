// Package plugins loads external sensor implementations at runtime.
// A plugin is a Go plugin (.so) exporting a NewSensor factory; loaded
// sensors are assumed to honor the capability contract by convention,
// so a malformed plugin only surfaces at aggregate-read time.
package plugins

import (
	"fmt"
	"path/filepath"
	"plugin"

	"github.com/DesignSparkRS/DesignSpark.ESDK/internal/errors"
	"github.com/DesignSparkRS/DesignSpark.ESDK/internal/logger"
	"github.com/DesignSparkRS/DesignSpark.ESDK/sensor"
)

// FactorySymbol is the symbol looked up in every plugin: either
// func() sensor.Sensor or func() (sensor.Sensor, error).
const FactorySymbol = "NewSensor"

// Registry holds the instantiated plugin sensors. It is built once at
// load time and immutable afterward; there is no hot reload.
type Registry struct {
	sensors []sensor.Sensor
}

// Sensors returns the loaded plugin sensors in load order.
func (r *Registry) Sensors() []sensor.Sensor {
	return r.sensors
}

// Count returns the number of successfully loaded plugins.
func (r *Registry) Count() int {
	return len(r.sensors)
}

// Load scans dir for plugin candidates and instantiates each one. A
// candidate that fails to load or construct is logged and skipped;
// loading always continues with the next. An empty dir disables plugins.
func Load(dir string, log logger.Logger) *Registry {
	reg := &Registry{}

	if dir == "" {
		return reg
	}

	candidates, err := filepath.Glob(filepath.Join(dir, "*.so"))
	if err != nil {
		log.Error().Err(err).Str("dir", dir).Msg("Could not scan plugin directory")
		return reg
	}

	for _, path := range candidates {
		s, err := loadOne(path)
		if err != nil {
			log.Error().Err(err).Str("plugin", path).Msg("Skipping plugin")
			continue
		}

		log.Info().Str("plugin", path).Str("key", s.Key()).Msg("Loaded plugin")
		reg.sensors = append(reg.sensors, s)
	}

	log.Info().Int("loaded", reg.Count()).Int("candidates", len(candidates)).Msg("Plugin load complete")

	return reg
}

func loadOne(path string) (s sensor.Sensor, err error) {
	errFactory := errors.New()

	// A plugin factory may panic instead of returning an error; that
	// must not take down the loader.
	defer func() {
		if r := recover(); r != nil {
			s = nil
			err = errFactory.WithData(errors.ErrPluginConstruct, fmt.Sprint(r))
		}
	}()

	p, err := plugin.Open(path)
	if err != nil {
		return nil, errFactory.Wrap(errors.ErrPluginLoad, err)
	}

	sym, err := p.Lookup(FactorySymbol)
	if err != nil {
		return nil, errFactory.Wrap(errors.ErrPluginSymbol, err)
	}

	switch factory := sym.(type) {
	case func() sensor.Sensor:
		return factory(), nil
	case func() (sensor.Sensor, error):
		s, err := factory()
		if err != nil {
			return nil, errFactory.Wrap(errors.ErrPluginConstruct, err)
		}
		return s, nil
	default:
		return nil, errFactory.WithData(errors.ErrPluginSymbol, fmt.Sprintf("unexpected factory type %T", sym))
	}
}
