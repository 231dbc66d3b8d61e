package no2

import (
	"time"

	"github.com/DesignSparkRS/DesignSpark.ESDK/sensor"
)

// Start launches the background sampling pipeline. The loop runs for the
// life of the process: a faulted sensor keeps reporting its last published
// value rather than taking the daemon down.
func (m *Mod) Start() {
	go m.run()
}

func (m *Mod) run() {
	// Reset, then block until one reference-channel reading succeeds. The
	// reference is cached; it is not re-read on later cycles.
	for {
		if err := m.reset(); err == nil {
			v, err := m.readChannel(muxVref)
			if err == nil {
				m.vref = v
				break
			}
		}

		m.sleep(m.cfg.IdleDelay)
	}

	m.log.Debug().Float64("vref", m.vref).Msg("NO2 reference acquired, sampling")

	for {
		if err := m.cycle(); err != nil {
			// Discard the cycle's partial work and carry on.
			m.log.Debug().Err(err).Msg("NO2 sampling cycle failed")
		}

		m.sleep(m.cfg.IdleDelay)
	}
}

// cycle takes one batch of raw readings and publishes a new smoothed value.
func (m *Mod) cycle() error {
	raw := make([]float64, 0, m.cfg.Samples)
	for i := 0; i < m.cfg.Samples; i++ {
		v, err := m.readChannel(muxVgas)
		if err != nil {
			return err
		}
		raw = append(raw, v)

		m.sleep(m.cfg.SampleDelay)
	}

	// The analog front-end shows bursty single-sample noise; the mode is
	// more robust against that than a mean. All-distinct batches fall back
	// to the most recent raw reading.
	vgas, ok := modeOf(raw)
	if !ok {
		vgas = raw[len(raw)-1]
	}

	conc := sensor.Round((vgas-(m.vref+m.cfg.VOffset))/m.m, 2)
	m.publish(conc)

	return nil
}

// publish pushes a concentration into the smoothing window and publishes
// the window mean atomically.
func (m *Mod) publish(conc float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.window = append([]float64{conc}, m.window...)
	if len(m.window) > m.cfg.Window {
		m.window = m.window[:m.cfg.Window]
	}

	var sum float64
	for _, v := range m.window {
		sum += v
	}

	m.published = sensor.Round(sum/float64(len(m.window)), 2)
	m.ready = true
}

// modeOf returns the most frequent value in samples. Ties are broken by
// first occurrence; ok is false when every value is distinct.
func modeOf(samples []float64) (mode float64, ok bool) {
	counts := make(map[float64]int, len(samples))
	for _, v := range samples {
		counts[v]++
	}

	best := 0
	for _, v := range samples {
		if counts[v] > best {
			best = counts[v]
			mode = v
		}
	}

	return mode, best > 1
}

func (m *Mod) sleep(d time.Duration) {
	if d > 0 {
		time.Sleep(d)
	}
}
