package main

import (
	"github.com/cwbudde/toast-dsp/dsp/core"
	"github.com/cwbudde/toast-dsp/dsp/engine"
	"github.com/cwbudde/toast-dsp/dsp/envelope"
)

// EngineFlags are the effect parameters shared by every command.
type EngineFlags struct {
	Drive     float64 `help:"Input drive in dB [-12, 12]." default:"0"`
	Output    float64 `help:"Output gain in dB [-12, 12], used with --no-link." default:"0"`
	NoLink    bool    `help:"Do not set the output gain to -drive."`
	Mix       float64 `help:"Dry/wet mix [0, 1]." default:"1"`
	Amount    float64 `help:"Base distortion amount [0, 1]." default:"0.3"`
	Dynamics  float64 `help:"Envelope influence on the amount [-1, 1]." default:"0"`
	Threshold float64 `help:"Envelope threshold in dB [-60, 0]." default:"-20"`
	Detector  string  `help:"Envelope detector mode." default:"rms" enum:"peak,rms,vintage,vactrol"`
	Attack    float64 `help:"Envelope attack in ms." default:"1"`
	Release   float64 `help:"Envelope release in ms." default:"120"`
	Curve     float64 `help:"Envelope curve [0, 1]." default:"0.5"`
	BlockSize int     `help:"Processing block size in frames." default:"512"`
}

func (f EngineFlags) options() ([]engine.Option, error) {
	mode, err := envelope.ParseMode(f.Detector)
	if err != nil {
		return nil, err
	}

	opts := []engine.Option{
		engine.WithLinkGain(!f.NoLink),
		engine.WithDrive(f.Drive),
		engine.WithOutput(f.Output),
		engine.WithMix(f.Mix),
		engine.WithBaseAmount(f.Amount),
		engine.WithDynamics(f.Dynamics),
		engine.WithThreshold(f.Threshold),
		engine.WithDetectorMode(mode),
		engine.WithAttack(f.Attack),
		engine.WithRelease(f.Release),
		engine.WithCurve(f.Curve),
	}

	return opts, nil
}

// newEngine builds an engine for the given stream layout.
func (f EngineFlags) newEngine(sampleRate float64, channels int) (*engine.Engine, error) {
	// core.WithSampleRate keeps the default for invalid rates.
	if err := core.ValidateSampleRate("engine", sampleRate); err != nil {
		return nil, err
	}

	opts, err := f.options()
	if err != nil {
		return nil, err
	}

	cfg := core.ApplyProcessorOptions(
		core.WithSampleRate(sampleRate),
		core.WithBlockSize(f.BlockSize),
		core.WithChannels(channels),
	)

	e, err := engine.New(cfg, opts...)
	if err != nil {
		return nil, err
	}

	logger.Debug("engine ready",
		"sampleRate", cfg.SampleRate,
		"channels", cfg.Channels,
		"blockSize", cfg.BlockSize,
		"drive", e.Drive(),
		"output", e.Output(),
		"detector", e.DetectorMode().String())

	return e, nil
}
