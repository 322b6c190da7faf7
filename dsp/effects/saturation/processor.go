package saturation

import (
	"github.com/cwbudde/toast-dsp/dsp/core"
)

const (
	defaultTHDAmount  = 0.3
	defaultWarmth     = 1.0
	defaultAsymmetry  = 0.75
	defaultHysteresis = 0.75

	// inputLimit bounds the signal entering the stage chain.
	inputLimit = 2.0

	// Amounts below bypassThreshold disable the warmth and hysteresis stages.
	bypassThreshold = 0.01
)

// Option configures a HarmonicProcessor at construction time. Values are
// clamped to [0, 1] like the corresponding setters.
type Option func(*HarmonicProcessor)

// WithTHDAmount sets the initial distortion amount.
func WithTHDAmount(amount float64) Option {
	return func(p *HarmonicProcessor) { p.SetTHDAmount(amount) }
}

// WithWarmth sets the low-shelf warmth amount.
func WithWarmth(warmth float64) Option {
	return func(p *HarmonicProcessor) { p.SetWarmth(warmth) }
}

// WithAsymmetry sets the even-harmonic asymmetry amount.
func WithAsymmetry(asymmetry float64) Option {
	return func(p *HarmonicProcessor) { p.SetAsymmetry(asymmetry) }
}

// WithHysteresis sets the magnetic hysteresis amount.
func WithHysteresis(amount float64) Option {
	return func(p *HarmonicProcessor) { p.SetHysteresis(amount) }
}

// HarmonicProcessor is a transformer-style saturation model: warmth shelf,
// hysteresis, asymmetric saturation, dampening, DC blocking and a soft
// output limiter, in that order.
type HarmonicProcessor struct {
	sampleRate float64

	thdAmount        float64
	warmth           float64
	asymmetry        float64
	hysteresisAmount float64

	bassCoeff    float64
	subBassCoeff float64
	dampCoeff    float64
	dcR          float64

	bass      float64
	subBass   float64
	hystState float64
	damp      float64
	dcPrevIn  float64
	dcPrevOut float64
}

// NewHarmonicProcessor creates a processor for the given sample rate.
//
// Defaults: THD amount 0.3, warmth 1, asymmetry 0.75, hysteresis 0.75.
func NewHarmonicProcessor(sampleRate float64, opts ...Option) (*HarmonicProcessor, error) {
	p := &HarmonicProcessor{
		thdAmount:        defaultTHDAmount,
		warmth:           defaultWarmth,
		asymmetry:        defaultAsymmetry,
		hysteresisAmount: defaultHysteresis,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}

	if err := p.Initialize(sampleRate); err != nil {
		return nil, err
	}

	return p, nil
}

// Initialize sets the sample rate, derives the filter coefficients and
// clears all filter memories. An invalid sample rate returns an error and
// leaves the processor silent until a valid Initialize call.
func (p *HarmonicProcessor) Initialize(sampleRate float64) error {
	if err := core.ValidateSampleRate("harmonic processor", sampleRate); err != nil {
		p.sampleRate = 0
		p.Reset()
		return err
	}

	p.sampleRate = sampleRate
	p.updateCoefficients()
	p.Reset()

	return nil
}

// SetSampleRate is an alias of Initialize.
func (p *HarmonicProcessor) SetSampleRate(sampleRate float64) error {
	return p.Initialize(sampleRate)
}

// Reset clears all filter memories. Parameters are kept.
func (p *HarmonicProcessor) Reset() {
	p.bass = 0
	p.subBass = 0
	p.hystState = 0
	p.damp = 0
	p.dcPrevIn = 0
	p.dcPrevOut = 0
}

// SetTHDAmount sets the distortion amount in [0, 1]. It is cheap enough
// to call every sample.
func (p *HarmonicProcessor) SetTHDAmount(amount float64) {
	p.thdAmount = core.ClampOr(amount, 0, 1, p.thdAmount)
}

// SetWarmth sets the low-shelf warmth amount in [0, 1].
func (p *HarmonicProcessor) SetWarmth(warmth float64) {
	p.warmth = core.ClampOr(warmth, 0, 1, p.warmth)
}

// SetAsymmetry sets the asymmetry amount in [0, 1].
func (p *HarmonicProcessor) SetAsymmetry(asymmetry float64) {
	p.asymmetry = core.ClampOr(asymmetry, 0, 1, p.asymmetry)
}

// SetHysteresis sets the hysteresis amount in [0, 1].
func (p *HarmonicProcessor) SetHysteresis(amount float64) {
	p.hysteresisAmount = core.ClampOr(amount, 0, 1, p.hysteresisAmount)
}

// ProcessSample runs one sample through all six stages. Non-finite input
// yields exactly 0 and leaves every filter memory untouched.
func (p *HarmonicProcessor) ProcessSample(input float64) float64 {
	if p.sampleRate <= 0 || !core.IsFinite(input) {
		return 0
	}

	x := core.Clamp(input, -inputLimit, inputLimit)
	x = p.lowShelf(x)
	x = p.hysteresis(x)
	x = p.saturate(x)
	x = p.dampen(x)
	x = p.blockDC(x)

	return softLimit(x)
}

// ProcessInPlace applies the processor to a buffer in place.
func (p *HarmonicProcessor) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = p.ProcessSample(buf[i])
	}
}

// SampleRate returns the sample rate in Hz, or 0 when uninitialized.
func (p *HarmonicProcessor) SampleRate() float64 { return p.sampleRate }

// THDAmount returns the current distortion amount.
func (p *HarmonicProcessor) THDAmount() float64 { return p.thdAmount }

// Warmth returns the warmth amount.
func (p *HarmonicProcessor) Warmth() float64 { return p.warmth }

// Asymmetry returns the asymmetry amount.
func (p *HarmonicProcessor) Asymmetry() float64 { return p.asymmetry }

// Hysteresis returns the hysteresis amount.
func (p *HarmonicProcessor) Hysteresis() float64 { return p.hysteresisAmount }

func (p *HarmonicProcessor) updateCoefficients() {
	p.bassCoeff = core.CutoffCoeff(bassCutoffHz, p.sampleRate)
	p.subBassCoeff = core.CutoffCoeff(subBassCutoffHz, p.sampleRate)
	p.dampCoeff = core.CutoffCoeff(dampingCutoffHz, p.sampleRate)
	p.dcR = 1 - core.CutoffCoeff(dcBlockerCutoffHz, p.sampleRate)
}
