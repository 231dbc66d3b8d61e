// Package sensor defines the capability contract shared by built-in
// drivers and loaded plugins. It lives outside internal/ so that plugin
// modules built out of tree can import it and return the same interface
// type the loader asserts against.
package sensor

import (
	"errors"
	"math"
)

// ErrNoData is the sentinel for a sensor that has nothing to report yet.
// Plugin sensors return it (or wrap it) from Read; the aggregate cycle
// treats it as absence rather than failure.
var ErrNoData = errors.New("sensor has no data available")

// Values is one module's reading set. Every set carries a "sensor"
// identity string alongside its category-specific numeric fields.
type Values map[string]any

// Sensor is implemented by every sensor module. Read returns the module's
// current readings, or an error matching ErrNoData when the device has
// nothing to report yet.
type Sensor interface {
	// Key is the snapshot category this sensor publishes under, e.g. "co2".
	Key() string

	Read() (Values, error)
}

// Sampler is implemented by sensors that acquire continuously in the
// background. Start launches the acquisition loop; it runs for the life
// of the process and is never cancelled.
type Sampler interface {
	Start()
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))

	return math.Round(v*scale) / scale
}
