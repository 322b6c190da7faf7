// Package level computes block level statistics and runs a streaming peak
// meter with exponential release.
package level

import (
	"math"

	"github.com/cwbudde/toast-dsp/dsp/core"
)

// ClipThreshold is the absolute level counted as a clipped sample.
const ClipThreshold = 1.0

// Stats holds level statistics of one block.
//
//nolint:revive
type Stats struct {
	Length         int
	DC             float64
	Peak           float64
	Peak_dB        float64
	RMS            float64
	RMS_dB         float64
	CrestFactor    float64
	CrestFactor_dB float64
	// Clipped counts samples with |x| >= ClipThreshold.
	Clipped int
	// NonFinite counts NaN and infinite samples; they are left out of the
	// other figures.
	NonFinite int
}

// Calculate computes level statistics of signal in a single pass.
func Calculate(signal []float64) Stats {
	s := Stats{
		Length:         len(signal),
		Peak_dB:        math.Inf(-1),
		RMS_dB:         math.Inf(-1),
		CrestFactor_dB: math.Inf(-1),
	}

	var sum, sumSq float64
	finite := 0

	for _, x := range signal {
		if !core.IsFinite(x) {
			s.NonFinite++
			continue
		}

		finite++
		sum += x
		sumSq += x * x

		a := math.Abs(x)
		s.Peak = math.Max(s.Peak, a)
		if a >= ClipThreshold {
			s.Clipped++
		}
	}

	if finite == 0 {
		return s
	}

	n := float64(finite)
	s.DC = sum / n
	s.RMS = math.Sqrt(sumSq / n)
	s.Peak_dB = ampToDB(s.Peak)
	s.RMS_dB = ampToDB(s.RMS)

	if s.RMS > 0 {
		s.CrestFactor = s.Peak / s.RMS
		s.CrestFactor_dB = ampToDB(s.CrestFactor)
	}

	return s
}

// GainDB returns the RMS level change from in to out in dB. It is 0 when
// either block is silent.
func GainDB(in, out []float64) float64 {
	a, b := Calculate(in), Calculate(out)
	if a.RMS == 0 || b.RMS == 0 {
		return 0
	}

	return ampToDB(b.RMS / a.RMS)
}

func ampToDB(v float64) float64 {
	if v <= 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(v)
}
