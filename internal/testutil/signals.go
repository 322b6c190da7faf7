package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine generates a deterministic sine wave.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// Step generates zeros followed by level from index at onwards.
func Step(length, at int, level float64) []float64 {
	out := make([]float64, length)
	for i := max(at, 0); i < length; i++ {
		out[i] = level
	}
	return out
}

// DC generates a constant-valued signal.
func DC(value float64, length int) []float64 {
	return Step(length, 0, value)
}
