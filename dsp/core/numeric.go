package core

import (
	"fmt"
	"math"
)

const defaultEpsilon = 1e-12

const (
	// SilenceThreshold is the linear level below which DBFloor reports SilenceDB.
	SilenceThreshold = 1e-6
	// SilenceDB is the level reported for values below SilenceThreshold.
	SilenceDB = -120.0
)

// Clamp limits value to the inclusive range [min, max].
func Clamp(value, min, max float64) float64 {
	if min > max {
		min, max = max, min
	}

	if value < min {
		return min
	}

	if value > max {
		return max
	}

	return value
}

// ClampOr limits value to [min, max] like Clamp, but returns fallback when
// value is NaN. Setters use it so that the last valid value stays in effect.
func ClampOr(value, min, max, fallback float64) float64 {
	if math.IsNaN(value) {
		return fallback
	}

	return Clamp(value, min, max)
}

// Clamp01 limits value to [0, 1]. NaN maps to 0.
func Clamp01(value float64) float64 {
	if !(value > 0) {
		return 0
	}

	if value > 1 {
		return 1
	}

	return value
}

// NearlyEqual reports whether a and b are equal within eps.
func NearlyEqual(a, b, eps float64) bool {
	if eps <= 0 {
		eps = defaultEpsilon
	}

	diff := math.Abs(a - b)
	if diff <= eps {
		return true
	}

	largest := math.Max(math.Abs(a), math.Abs(b))
	if largest == 0 {
		return diff <= eps
	}

	return diff/largest <= eps
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// FlushDenormals converts tiny denormal-like values to exact zero.
// This can reduce denormal-related CPU slowdowns in hot DSP loops.
func FlushDenormals(x float64) float64 {
	const epsilon = 1e-30
	if x > -epsilon && x < epsilon {
		return 0
	}

	return x
}

// DBToLinear converts dB to linear amplitude (20*log10 convention).
func DBToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

// LinearToDB converts linear amplitude to dB (20*log10 convention).
// Returns -Inf for zero and NaN for negative values.
func LinearToDB(linear float64) float64 {
	if linear < 0 {
		return math.NaN()
	}

	if linear == 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(linear)
}

// DBFloor converts linear amplitude to dB, reporting SilenceDB for
// anything below SilenceThreshold instead of -Inf.
func DBFloor(linear float64) float64 {
	if !(linear >= SilenceThreshold) {
		return SilenceDB
	}

	return 20 * math.Log10(linear)
}

// TimeConstantCoeff returns the one-pole decay factor exp(-1/(tau*fs)) for a
// time constant given in milliseconds. It returns 0 (instant response) when
// either argument is not positive.
func TimeConstantCoeff(timeMs, sampleRate float64) float64 {
	if !(timeMs > 0) || !(sampleRate > 0) {
		return 0
	}

	return math.Exp(-1 / (timeMs * 0.001 * sampleRate))
}

// CutoffCoeff returns the one-pole low-pass smoothing factor
// 1-exp(-2*pi*fc/fs) for a cutoff frequency in Hz. The cutoff is limited to
// just below Nyquist.
func CutoffCoeff(cutoffHz, sampleRate float64) float64 {
	if !(cutoffHz > 0) || !(sampleRate > 0) {
		return 0
	}

	cutoffHz = math.Min(cutoffHz, sampleRate*0.49)

	return 1 - math.Exp(-2*math.Pi*cutoffHz/sampleRate)
}

// ValidateSampleRate returns an error naming component when sampleRate is
// not positive and finite.
func ValidateSampleRate(component string, sampleRate float64) error {
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("%s sample rate must be > 0 and finite: %f", component, sampleRate)
	}

	return nil
}
