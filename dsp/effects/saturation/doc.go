// Package saturation provides a transformer-style harmonic distortion
// processor.
//
// HarmonicProcessor runs each sample through six stages: a low-frequency
// warmth shelf, a magnetic hysteresis stage, asymmetric rational
// saturation, high-frequency dampening, a DC blocker and a soft output
// limiter. All four tone controls live in [0, 1]; a zero THD amount makes
// the saturation and dampening stages exact passthroughs.
//
// Build with the fastmath tag to replace math.Tanh with an approximation
// from algo-approx.
package saturation
