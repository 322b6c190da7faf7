package engine

import (
	"github.com/cwbudde/toast-dsp/dsp/core"
	"github.com/cwbudde/toast-dsp/dsp/envelope"
)

// SetDrive sets the input drive in dB, clamped to [-12, 12]. With gain
// linking enabled the output gain becomes -drive.
func (e *Engine) SetDrive(dB float64) {
	e.params.driveDB = core.ClampOr(dB, minGainDB, maxGainDB, e.params.driveDB)
	if e.params.linkGain {
		e.params.outputDB = -e.params.driveDB
	}
	e.updateGains()
}

// SetOutput sets the wet output gain in dB, clamped to [-12, 12]. With
// gain linking enabled the drive becomes -output.
func (e *Engine) SetOutput(dB float64) {
	e.params.outputDB = core.ClampOr(dB, minGainDB, maxGainDB, e.params.outputDB)
	if e.params.linkGain {
		e.params.driveDB = -e.params.outputDB
	} else {
		e.userOutputDB = e.params.outputDB
	}
	e.updateGains()
}

// SetLinkGain switches gain linking. Linking sets the output to -drive;
// unlinking restores the output gain last set while unlinked.
func (e *Engine) SetLinkGain(linked bool) {
	if linked == e.params.linkGain {
		return
	}

	e.params.linkGain = linked
	if linked {
		e.params.outputDB = -e.params.driveDB
	} else {
		e.params.outputDB = e.userOutputDB
	}
	e.updateGains()
}

// SetMix sets the dry/wet mix, clamped to [0, 1].
func (e *Engine) SetMix(mix float64) {
	e.params.mix = core.ClampOr(mix, 0, 1, e.params.mix)
}

// SetBaseAmount sets the distortion amount below threshold, clamped to [0, 1].
func (e *Engine) SetBaseAmount(amount float64) {
	e.params.baseAmount = core.ClampOr(amount, 0, 1, e.params.baseAmount)
}

// SetDynamics sets the envelope influence, clamped to [-1, 1].
func (e *Engine) SetDynamics(dynamics float64) {
	e.params.dynamics = core.ClampOr(dynamics, -1, 1, e.params.dynamics)
}

// SetThreshold sets the envelope threshold in dB, clamped to [-60, 0].
func (e *Engine) SetThreshold(dB float64) {
	e.params.thresholdDB = core.ClampOr(dB, minThresholdDB, maxThresholdDB, e.params.thresholdDB)
}

// SetDetectorMode selects the envelope mode. Unknown modes are ignored.
func (e *Engine) SetDetectorMode(mode envelope.Mode) {
	e.follower.SetMode(mode)
	e.params.mode = e.follower.Mode()
}

// SetAttack sets the envelope attack in milliseconds.
func (e *Engine) SetAttack(ms float64) {
	e.follower.SetAttack(ms)
	e.params.attackMs = e.follower.Attack()
}

// SetRelease sets the envelope release in milliseconds.
func (e *Engine) SetRelease(ms float64) {
	e.follower.SetRelease(ms)
	e.params.releaseMs = e.follower.Release()
}

// SetCurve sets the envelope curve in [0, 1].
func (e *Engine) SetCurve(curve float64) {
	e.follower.SetCurve(curve)
	e.params.curve = e.follower.Curve()
}

// Drive returns the input drive in dB.
func (e *Engine) Drive() float64 { return e.params.driveDB }

// Output returns the wet output gain in dB.
func (e *Engine) Output() float64 { return e.params.outputDB }

// LinkGain reports whether drive and output gain are linked.
func (e *Engine) LinkGain() bool { return e.params.linkGain }

// Mix returns the dry/wet mix.
func (e *Engine) Mix() float64 { return e.params.mix }

// BaseAmount returns the distortion amount below threshold.
func (e *Engine) BaseAmount() float64 { return e.params.baseAmount }

// Dynamics returns the envelope influence.
func (e *Engine) Dynamics() float64 { return e.params.dynamics }

// Threshold returns the envelope threshold in dB.
func (e *Engine) Threshold() float64 { return e.params.thresholdDB }

// DetectorMode returns the envelope mode.
func (e *Engine) DetectorMode() envelope.Mode { return e.params.mode }
