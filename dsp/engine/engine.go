package engine

import (
	"fmt"

	"github.com/cwbudde/toast-dsp/dsp/core"
	"github.com/cwbudde/toast-dsp/dsp/effects/saturation"
	"github.com/cwbudde/toast-dsp/dsp/envelope"
	"github.com/cwbudde/toast-dsp/dsp/modulation"
)

// Snapshot is a read-only view of the engine state after the most recent
// frame, meant for metering.
type Snapshot struct {
	Envelope   float64
	EnvelopeDB float64
	Modulation modulation.Context
	DriveDB    float64
	OutputDB   float64
}

// Engine is the envelope-driven saturation effect.
type Engine struct {
	cfg    core.ProcessorConfig
	params config

	follower *envelope.Follower
	channels []*saturation.HarmonicProcessor

	driveGain  float64
	outputGain float64
	// userOutputDB is restored when gain linking is switched off.
	userOutputDB float64

	amounts []float64
	last    modulation.Context
}

// New creates an engine for cfg. A zero cfg field takes its default from
// core.DefaultProcessorConfig; Channels must be 1 or 2.
func New(cfg core.ProcessorConfig, opts ...Option) (*Engine, error) {
	def := core.DefaultProcessorConfig()
	if cfg.SampleRate == 0 {
		cfg.SampleRate = def.SampleRate
	}
	if cfg.BlockSize == 0 {
		cfg.BlockSize = def.BlockSize
	}
	if cfg.Channels == 0 {
		cfg.Channels = def.Channels
	}

	if err := core.ValidateSampleRate("engine", cfg.SampleRate); err != nil {
		return nil, err
	}
	if cfg.BlockSize < 1 {
		return nil, fmt.Errorf("engine block size must be > 0: %d", cfg.BlockSize)
	}
	if cfg.Channels != 1 && cfg.Channels != 2 {
		return nil, fmt.Errorf("engine channel count must be 1 or 2: %d", cfg.Channels)
	}

	params := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&params); err != nil {
			return nil, err
		}
	}

	follower, err := envelope.New(cfg.SampleRate,
		envelope.WithMode(params.mode),
		envelope.WithAttack(params.attackMs),
		envelope.WithRelease(params.releaseMs),
		envelope.WithCurve(params.curve),
		envelope.WithSmoothing(params.smoothingMs),
		envelope.WithSensitivity(detectorSensitivityDB),
		envelope.WithAmount(1),
	)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:          cfg,
		params:       params,
		follower:     follower,
		channels:     make([]*saturation.HarmonicProcessor, cfg.Channels),
		userOutputDB: params.outputDB,
		amounts:      make([]float64, cfg.BlockSize),
	}

	for ch := range e.channels {
		p, err := saturation.NewHarmonicProcessor(cfg.SampleRate,
			saturation.WithTHDAmount(params.baseAmount),
			saturation.WithWarmth(params.warmth),
			saturation.WithAsymmetry(params.asymmetry),
			saturation.WithHysteresis(params.hysteresis),
		)
		if err != nil {
			return nil, err
		}
		e.channels[ch] = p
	}

	if params.linkGain {
		e.params.outputDB = -params.driveDB
	}
	e.updateGains()
	e.Reset()

	return e, nil
}

// Config returns the streaming configuration.
func (e *Engine) Config() core.ProcessorConfig { return e.cfg }

// Initialize switches to a new sample rate and resets all state.
func (e *Engine) Initialize(sampleRate float64) error {
	if err := core.ValidateSampleRate("engine", sampleRate); err != nil {
		return err
	}
	if err := e.follower.Initialize(sampleRate); err != nil {
		return err
	}
	for _, p := range e.channels {
		if err := p.Initialize(sampleRate); err != nil {
			return err
		}
	}

	e.cfg.SampleRate = sampleRate
	e.Reset()

	return nil
}

// Reset clears the follower and all channel processors, then runs a short
// stretch of silence through each processor.
func (e *Engine) Reset() {
	e.follower.Reset()
	for _, p := range e.channels {
		p.Reset()
		p.SetTHDAmount(e.params.baseAmount)
		for range warmupSamples {
			p.ProcessSample(0)
		}
	}
	e.last = modulation.Compute(core.SilenceDB, e.params.thresholdDB, e.params.baseAmount, e.params.dynamics)
}

// ProcessFrame processes one stereo frame. A mono engine processes l and
// passes r through unchanged.
func (e *Engine) ProcessFrame(l, r float64) (float64, float64) {
	e.follower.ProcessStereo(l, r)
	amount := e.modulate()

	outL := e.render(e.channels[0], l, amount)
	if len(e.channels) < 2 {
		return outL, r
	}

	return outL, e.render(e.channels[1], r, amount)
}

// ProcessMono processes one sample through the first channel.
func (e *Engine) ProcessMono(x float64) float64 {
	e.follower.ProcessSample(x)
	amount := e.modulate()
	return e.render(e.channels[0], x, amount)
}

// ProcessStereoInPlace processes two equally long channel buffers in
// place. On a mono engine right is analysed but left unchanged.
func (e *Engine) ProcessStereoInPlace(left, right []float64) error {
	if len(left) != len(right) {
		return fmt.Errorf("engine channel buffers differ in length: %d != %d", len(left), len(right))
	}

	for start := 0; start < len(left); start += e.cfg.BlockSize {
		end := min(start+e.cfg.BlockSize, len(left))
		e.processChunk(left[start:end], right[start:end])
	}

	return nil
}

// ProcessMonoInPlace processes buf through the first channel in place.
func (e *Engine) ProcessMonoInPlace(buf []float64) {
	for start := 0; start < len(buf); start += e.cfg.BlockSize {
		end := min(start+e.cfg.BlockSize, len(buf))
		e.processChunk(buf[start:end], nil)
	}
}

// ProcessInterleaved processes interleaved frames matching the channel
// count in place.
func (e *Engine) ProcessInterleaved(buf []float64) error {
	if len(buf)%e.cfg.Channels != 0 {
		return fmt.Errorf("engine interleaved buffer length %d is not a multiple of %d channels",
			len(buf), e.cfg.Channels)
	}

	if e.cfg.Channels == 1 {
		e.ProcessMonoInPlace(buf)
		return nil
	}

	for i := 0; i+1 < len(buf); i += 2 {
		buf[i], buf[i+1] = e.ProcessFrame(buf[i], buf[i+1])
	}

	return nil
}

// Snapshot returns the state after the most recent frame.
func (e *Engine) Snapshot() Snapshot {
	return Snapshot{
		Envelope:   e.follower.Envelope(),
		EnvelopeDB: e.follower.EnvelopeDB(),
		Modulation: e.last,
		DriveDB:    e.params.driveDB,
		OutputDB:   e.params.outputDB,
	}
}

// processChunk computes every frame's amount from the undriven input
// first, then renders each channel over the chunk.
func (e *Engine) processChunk(left, right []float64) {
	amounts := e.amounts[:len(left)]

	for i := range left {
		if right != nil {
			e.follower.ProcessStereo(left[i], right[i])
		} else {
			e.follower.ProcessSample(left[i])
		}
		amounts[i] = e.modulate()
	}

	e.renderBlock(e.channels[0], left, amounts)
	if right != nil && len(e.channels) > 1 {
		e.renderBlock(e.channels[1], right, amounts)
	}
}

func (e *Engine) renderBlock(p *saturation.HarmonicProcessor, buf, amounts []float64) {
	for i, x := range buf {
		buf[i] = e.render(p, x, amounts[i])
	}
}

func (e *Engine) modulate() float64 {
	e.last = modulation.Compute(e.follower.EnvelopeDB(), e.params.thresholdDB,
		e.params.baseAmount, e.params.dynamics)
	return e.last.Amount
}

func (e *Engine) render(p *saturation.HarmonicProcessor, x, amount float64) float64 {
	if !core.IsFinite(x) {
		x = 0
	}

	p.SetTHDAmount(amount)
	wet := p.ProcessSample(x*e.driveGain) * e.outputGain

	return x*(1-e.params.mix) + wet*e.params.mix
}

func (e *Engine) updateGains() {
	e.driveGain = core.DBToLinear(e.params.driveDB)
	e.outputGain = core.DBToLinear(e.params.outputDB)
}
