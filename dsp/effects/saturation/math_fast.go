//go:build fastmath

package saturation

import "github.com/meko-christian/algo-approx"

// tanhRailAbs is where tanh is within float64 rounding of ±1.
const tanhRailAbs = 9.0

// mathTanh computes tanh(x) = (e^2x - 1) / (e^2x + 1) with a fast exp.
// Zero maps to exactly zero so that silent input stays silent.
func mathTanh(x float64) float64 {
	switch {
	case x == 0:
		return 0
	case x > tanhRailAbs:
		return 1
	case x < -tanhRailAbs:
		return -1
	}

	e := approx.FastExp(2 * x)

	return (e - 1) / (e + 1)
}
