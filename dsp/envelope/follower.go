package envelope

import (
	"math"

	"github.com/cwbudde/toast-dsp/dsp/core"
)

const (
	defaultAttackMs      = 10.0
	defaultReleaseMs     = 100.0
	defaultSensitivityDB = 0.0
	defaultAmount        = 1.0
	defaultSmoothingMs   = 5.0
	defaultCurve         = 0.5

	minAttackMs      = 0.01
	maxAttackMs      = 1000.0
	minReleaseMs     = 1.0
	maxReleaseMs     = 5000.0
	minSmoothingMs   = 0.1
	maxSmoothingMs   = 100.0
	minSensitivityDB = -60.0
	maxSensitivityDB = 60.0

	rmsWindowMs = 10.0

	// Vintage decay runs at half the configured release time.
	vintageReleaseScale = 0.5

	vactrolAttackScale   = 0.3
	vactrolReleaseScale  = 1.5
	vactrolTransientStep = 0.1
	vactrolMemoryCoeff   = 0.95
	vactrolMemoryBlend   = 0.1

	curveThreshold     = 0.01
	maxCurveExponentUp = 0.2

	// maxRectified bounds the detector input at +120 dBFS so the power
	// average cannot overflow.
	maxRectified = 1e6
)

// Option configures a Follower at construction time. Values are clamped
// exactly like the corresponding setters.
type Option func(*Follower)

// WithMode selects the detector mode.
func WithMode(mode Mode) Option {
	return func(f *Follower) { f.SetMode(mode) }
}

// WithAttack sets the attack time in milliseconds.
func WithAttack(ms float64) Option {
	return func(f *Follower) { f.SetAttack(ms) }
}

// WithRelease sets the release time in milliseconds.
func WithRelease(ms float64) Option {
	return func(f *Follower) { f.SetRelease(ms) }
}

// WithSensitivity sets the detector input gain in dB.
func WithSensitivity(dB float64) Option {
	return func(f *Follower) { f.SetSensitivity(dB) }
}

// WithAmount sets the output scale in [0, 1].
func WithAmount(amount float64) Option {
	return func(f *Follower) { f.SetAmount(amount) }
}

// WithSmoothing sets the output smoothing time in milliseconds.
func WithSmoothing(ms float64) Option {
	return func(f *Follower) { f.SetSmoothing(ms) }
}

// WithCurve sets the curve amount in [0, 1].
func WithCurve(curve float64) Option {
	return func(f *Follower) { f.SetCurve(curve) }
}

// Follower converts a raw audio signal into a normalized, time-smoothed
// loudness estimate in [0, 1].
type Follower struct {
	sampleRate float64

	mode          Mode
	attackMs      float64
	releaseMs     float64
	sensitivityDB float64
	sensitivity   float64
	amount        float64
	smoothingMs   float64
	curve         float64

	// Cached one-pole coefficients, valid once sampleRate > 0.
	attackCoeff       float64
	releaseCoeff      float64
	rmsCoeff          float64
	vintageRelease    float64
	vactrolAttack     float64
	vactrolAttackFast float64
	vactrolRelease    float64
	smoothCoeff       float64

	envelope      float64
	rmsPower      float64
	peakHold      float64
	vactrolState  float64
	vactrolMemory float64
	smoothed      float64
	output        float64
}

// New creates a follower for the given sample rate.
//
// Defaults: peak mode, 10 ms attack, 100 ms release, 0 dB sensitivity,
// amount 1, 5 ms smoothing, curve 0.5.
func New(sampleRate float64, opts ...Option) (*Follower, error) {
	f := &Follower{
		mode:        ModePeak,
		attackMs:    defaultAttackMs,
		releaseMs:   defaultReleaseMs,
		amount:      defaultAmount,
		smoothingMs: defaultSmoothingMs,
		curve:       defaultCurve,
	}
	f.SetSensitivity(defaultSensitivityDB)

	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}

	if err := f.Initialize(sampleRate); err != nil {
		return nil, err
	}

	return f, nil
}

// Initialize sets the sample rate, derives all coefficients and clears the
// running state. An invalid sample rate returns an error and leaves the
// follower frozen: ProcessSample returns 0 without touching state until a
// valid Initialize call.
func (f *Follower) Initialize(sampleRate float64) error {
	if err := core.ValidateSampleRate("envelope follower", sampleRate); err != nil {
		f.sampleRate = 0
		f.Reset()
		return err
	}

	f.sampleRate = sampleRate
	f.updateCoefficients()
	f.Reset()

	return nil
}

// Reset clears all detector and smoothing state. Parameters are kept.
func (f *Follower) Reset() {
	f.envelope = 0
	f.rmsPower = 0
	f.peakHold = 0
	f.vactrolState = 0
	f.vactrolMemory = 0
	f.smoothed = 0
	f.output = 0
}

// SetMode selects the detector mode. Unknown modes are ignored.
func (f *Follower) SetMode(mode Mode) {
	if mode.Valid() {
		f.mode = mode
	}
}

// SetAttack sets the attack time, clamped to [0.01, 1000] ms.
func (f *Follower) SetAttack(ms float64) {
	f.attackMs = core.ClampOr(ms, minAttackMs, maxAttackMs, f.attackMs)
	f.updateCoefficients()
}

// SetRelease sets the release time, clamped to [1, 5000] ms.
func (f *Follower) SetRelease(ms float64) {
	f.releaseMs = core.ClampOr(ms, minReleaseMs, maxReleaseMs, f.releaseMs)
	f.updateCoefficients()
}

// SetSensitivity sets the detector input gain in dB, clamped to [-60, 60].
// Positive values make quieter material read as full scale.
func (f *Follower) SetSensitivity(dB float64) {
	f.sensitivityDB = core.ClampOr(dB, minSensitivityDB, maxSensitivityDB, f.sensitivityDB)
	f.sensitivity = core.DBToLinear(f.sensitivityDB)
}

// SetAmount sets the output scale, clamped to [0, 1].
func (f *Follower) SetAmount(amount float64) {
	f.amount = core.ClampOr(amount, 0, 1, f.amount)
}

// SetSmoothing sets the output smoothing time, clamped to [0.1, 100] ms.
func (f *Follower) SetSmoothing(ms float64) {
	f.smoothingMs = core.ClampOr(ms, minSmoothingMs, maxSmoothingMs, f.smoothingMs)
	f.updateCoefficients()
}

// SetCurve sets the curve amount, clamped to [0, 1]. Values above 0.01 raise
// the smoothed envelope to an exponent between 1.0 and 1.2.
func (f *Follower) SetCurve(curve float64) {
	f.curve = core.ClampOr(curve, 0, 1, f.curve)
}

// ProcessSample consumes one input sample and returns the envelope in [0, 1].
func (f *Follower) ProcessSample(input float64) float64 {
	if f.sampleRate <= 0 {
		return 0
	}

	rectified := math.Abs(input) * f.sensitivity
	if !(rectified <= maxRectified) {
		if math.IsNaN(rectified) {
			rectified = 0
		} else {
			rectified = maxRectified
		}
	}

	var target float64

	switch f.mode {
	case ModeRMS:
		target = f.rmsTarget(rectified)
	case ModeVintage:
		target = f.vintageTarget(rectified)
	case ModeVactrol:
		target = f.vactrolTarget(rectified)
	default:
		target = rectified
	}

	if f.mode == ModeVactrol {
		f.envelope = target
	} else {
		coeff := f.releaseCoeff
		if target > f.envelope {
			coeff = f.attackCoeff
		}
		f.envelope = core.FlushDenormals(target + (f.envelope-target)*coeff)
	}

	f.smoothed = core.FlushDenormals(f.envelope + (f.smoothed-f.envelope)*f.smoothCoeff)

	shaped := f.smoothed
	if f.curve > curveThreshold {
		shaped = math.Pow(shaped, 1+f.curve*maxCurveExponentUp)
	}

	f.output = core.Clamp01(shaped * f.amount)

	return f.output
}

// ProcessStereo analyses a stereo pair as a single channel driven by
// max(|left|, |right|), so correlated content is not counted twice.
func (f *Follower) ProcessStereo(left, right float64) float64 {
	return f.ProcessSample(core.MaxAbsPair(left, right))
}

// ProcessInPlace replaces every sample in buf by its envelope value.
func (f *Follower) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = f.ProcessSample(buf[i])
	}
}

// Envelope returns the last value produced by ProcessSample.
func (f *Follower) Envelope() float64 { return f.output }

// EnvelopeDB returns Envelope in dB, floored at -120 dB below 1e-6.
func (f *Follower) EnvelopeDB() float64 { return core.DBFloor(f.output) }

// SampleRate returns the sample rate in Hz, or 0 while uninitialized.
func (f *Follower) SampleRate() float64 { return f.sampleRate }

// Mode returns the detector mode.
func (f *Follower) Mode() Mode { return f.mode }

// Attack returns the attack time in milliseconds.
func (f *Follower) Attack() float64 { return f.attackMs }

// Release returns the release time in milliseconds.
func (f *Follower) Release() float64 { return f.releaseMs }

// Sensitivity returns the detector input gain in dB.
func (f *Follower) Sensitivity() float64 { return f.sensitivityDB }

// Amount returns the output scale.
func (f *Follower) Amount() float64 { return f.amount }

// Smoothing returns the output smoothing time in milliseconds.
func (f *Follower) Smoothing() float64 { return f.smoothingMs }

// Curve returns the curve amount.
func (f *Follower) Curve() float64 { return f.curve }

func (f *Follower) rmsTarget(in float64) float64 {
	squared := in * in
	f.rmsPower = core.FlushDenormals(squared + (f.rmsPower-squared)*f.rmsCoeff)
	return math.Sqrt(f.rmsPower)
}

func (f *Follower) vintageTarget(in float64) float64 {
	if in > f.peakHold {
		f.peakHold = in
	} else {
		f.peakHold = core.FlushDenormals(f.peakHold * f.vintageRelease)
	}
	return f.peakHold
}

func (f *Follower) vactrolTarget(in float64) float64 {
	if in > f.vactrolState {
		coeff := f.vactrolAttack
		if in-f.vactrolState > vactrolTransientStep {
			coeff = f.vactrolAttackFast
		}
		f.vactrolState = in - (in-f.vactrolState)*coeff

		return f.vactrolState
	}

	// Release: the cell decays, but residual conductance (memory) keeps it
	// hanging above a plain exponential.
	decayed := f.vactrolState * f.vactrolRelease
	f.vactrolMemory = core.FlushDenormals(f.vactrolMemory*vactrolMemoryCoeff + decayed*(1-vactrolMemoryCoeff))
	f.vactrolState = core.FlushDenormals(decayed*(1-vactrolMemoryBlend) + f.vactrolMemory*vactrolMemoryBlend)

	return f.vactrolState
}

func (f *Follower) updateCoefficients() {
	if f.sampleRate <= 0 {
		return
	}

	sr := f.sampleRate
	f.attackCoeff = core.TimeConstantCoeff(f.attackMs, sr)
	f.releaseCoeff = core.TimeConstantCoeff(f.releaseMs, sr)
	f.rmsCoeff = core.TimeConstantCoeff(rmsWindowMs, sr)
	f.vintageRelease = core.TimeConstantCoeff(f.releaseMs*vintageReleaseScale, sr)
	f.vactrolAttack = core.TimeConstantCoeff(f.attackMs*vactrolAttackScale, sr)
	// Squaring halves the time constant for large steps.
	f.vactrolAttackFast = f.vactrolAttack * f.vactrolAttack
	f.vactrolRelease = core.TimeConstantCoeff(f.releaseMs*vactrolReleaseScale, sr)
	f.smoothCoeff = core.TimeConstantCoeff(f.smoothingMs, sr)
}
