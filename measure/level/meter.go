package level

import (
	"math"

	"github.com/cwbudde/toast-dsp/dsp/core"
)

const defaultMeterReleaseMs = 300.0

// Meter is a peak meter: it jumps to new peaks instantly and falls back
// exponentially with the release time.
type Meter struct {
	release float64
	value   float64
	hold    float64
}

// NewMeter creates a meter with the given release in milliseconds. A
// non-positive release selects 300 ms.
func NewMeter(sampleRate, releaseMs float64) (*Meter, error) {
	if err := core.ValidateSampleRate("level meter", sampleRate); err != nil {
		return nil, err
	}
	if !(releaseMs > 0) {
		releaseMs = defaultMeterReleaseMs
	}

	return &Meter{release: core.TimeConstantCoeff(releaseMs, sampleRate)}, nil
}

// Process feeds a block into the meter and returns the current value.
func (m *Meter) Process(block []float64) float64 {
	for _, x := range block {
		a := math.Abs(x)
		if !core.IsFinite(a) {
			continue
		}

		if a > m.value {
			m.value = a
		} else {
			m.value = core.FlushDenormals(m.value * m.release)
		}
		m.hold = math.Max(m.hold, a)
	}

	return m.value
}

// Value returns the current meter level.
func (m *Meter) Value() float64 { return m.value }

// ValueDB returns the current meter level in dB, floored at -120.
func (m *Meter) ValueDB() float64 { return core.DBFloor(m.value) }

// Hold returns the highest finite peak seen so far.
func (m *Meter) Hold() float64 { return m.hold }

// HoldDB returns Hold in dB, floored at -120.
func (m *Meter) HoldDB() float64 { return core.DBFloor(m.hold) }
