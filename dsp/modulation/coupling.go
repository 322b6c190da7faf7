// Package modulation couples an envelope level to a distortion amount.
//
// Compute is a pure per-sample function: the envelope level in dB is
// measured against a threshold, normalized over the headroom between the
// threshold and 0 dBFS and scaled by a signed dynamics amount that pushes
// the base amount up or down.
package modulation

import (
	"math"

	"github.com/cwbudde/toast-dsp/dsp/core"
)

// AmountSetter receives the modulated amount. saturation.HarmonicProcessor
// implements it.
type AmountSetter interface {
	SetTHDAmount(amount float64)
}

// Context is the result of one coupling step. It is recomputed for every
// sample and never stored by the processors it is applied to.
type Context struct {
	EnvelopeDB  float64
	ThresholdDB float64
	Base        float64
	Dynamics    float64
	// Thresholded is the envelope position above threshold in [0, 1].
	Thresholded float64
	// Amount is the clamped distortion amount in [0, 1].
	Amount float64
}

// Compute maps envelopeDB to a distortion amount.
//
// The envelope above thresholdDB is normalized by the headroom -thresholdDB
// and capped at 1; at or below the threshold it contributes nothing. The
// result is base + thresholded*dynamics clamped to [0, 1]. base is clamped
// to [0, 1] and dynamics to [-1, 1]; NaN levels are treated as silence.
// A threshold at or above 0 dBFS leaves no headroom and disables the
// dynamic part.
func Compute(envelopeDB, thresholdDB, base, dynamics float64) Context {
	base = core.ClampOr(base, 0, 1, 0)
	dynamics = core.ClampOr(dynamics, -1, 1, 0)

	ctx := Context{
		EnvelopeDB:  envelopeDB,
		ThresholdDB: thresholdDB,
		Base:        base,
		Dynamics:    dynamics,
	}

	headroom := -thresholdDB
	if headroom > 0 && envelopeDB > thresholdDB {
		if v := (envelopeDB - thresholdDB) / headroom; !math.IsNaN(v) {
			ctx.Thresholded = math.Min(1, v)
		}
	}

	ctx.Amount = core.Clamp01(base + ctx.Thresholded*dynamics)

	return ctx
}

// Apply writes the amount into every processor so all channels share the
// same drive for this sample.
func (c Context) Apply(processors ...AmountSetter) {
	for _, p := range processors {
		if p != nil {
			p.SetTHDAmount(c.Amount)
		}
	}
}
