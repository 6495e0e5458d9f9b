package audio

import (
	"math"
	"sync"
)

// Meter tracks peak input level relative to a reference level in dBFS.
// A level of 100 means the peak reached the reference level.
type Meter struct {
	reference float64 // linear amplitude of the reference level
	threshold float64 // percent above which the input counts as too loud

	mu      sync.Mutex
	current float32
	max     float32
}

// NewMeter creates a meter. referenceDB is the dBFS shown as 100%;
// threshold is the percentage that triggers Clipping.
func NewMeter(referenceDB int8, threshold uint8) *Meter {
	return &Meter{
		reference: math.Pow(10, float64(referenceDB)/20),
		threshold: float64(threshold),
	}
}

// Observe records the peak of one block of samples.
func (m *Meter) Observe(samples []float32) {
	var peak float32
	for _, s := range samples {
		if s < 0 {
			s = -s
		}
		if s > peak {
			peak = s
		}
	}

	m.mu.Lock()
	m.current = peak
	if peak > m.max {
		m.max = peak
	}
	m.mu.Unlock()
}

// Reset clears the current and maximum peaks.
func (m *Meter) Reset() {
	m.mu.Lock()
	m.current, m.max = 0, 0
	m.mu.Unlock()
}

// Level returns the latest block peak as a percentage of the reference.
func (m *Meter) Level() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.percent(m.current)
}

// MaxLevel returns the highest peak since Reset as a percentage of the
// reference.
func (m *Meter) MaxLevel() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.percent(m.max)
}

// Clipping reports whether the latest level is above the threshold.
func (m *Meter) Clipping() bool {
	return m.Level() > m.threshold
}

// MaxDBFS returns the highest peak since Reset in dBFS. Silence is -Inf.
func (m *Meter) MaxDBFS() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return peakDBFS(m.max)
}

// Silent reports whether nothing but digital silence was observed.
func (m *Meter) Silent() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.max == 0
}

func (m *Meter) percent(peak float32) float64 {
	return float64(peak) / m.reference * 100
}

// peakDBFS converts a linear peak to dBFS.
func peakDBFS(peak float32) float64 {
	return 20 * math.Log10(float64(peak))
}
