package engine

import (
	"fmt"
	"math"

	"github.com/cwbudde/toast-dsp/dsp/envelope"
)

const (
	defaultDriveDB     = 0.0
	defaultOutputDB    = 0.0
	defaultMix         = 1.0
	defaultBaseAmount  = 0.3
	defaultDynamics    = 0.0
	defaultThresholdDB = -20.0
	defaultAttackMs    = 1.0
	defaultReleaseMs   = 120.0
	defaultCurve       = 0.5
	defaultSmoothingMs = 1.0
	// detectorSensitivityDB is the fixed gain ahead of the envelope detector.
	detectorSensitivityDB = 1.0
	defaultWarmth      = 1.0
	defaultAsymmetry   = 0.75
	defaultHysteresis  = 0.75

	minGainDB      = -12.0
	maxGainDB      = 12.0
	minThresholdDB = -60.0
	maxThresholdDB = 0.0

	// warmupSamples of silence are run through every channel processor on
	// Reset.
	warmupSamples = 512
)

// Option mutates construction-time parameters.
type Option func(*config) error

type config struct {
	driveDB     float64
	outputDB    float64
	linkGain    bool
	mix         float64
	baseAmount  float64
	dynamics    float64
	thresholdDB float64
	mode        envelope.Mode
	attackMs    float64
	releaseMs   float64
	curve       float64
	smoothingMs float64
	warmth      float64
	asymmetry   float64
	hysteresis  float64
}

func defaultConfig() config {
	return config{
		driveDB:     defaultDriveDB,
		outputDB:    defaultOutputDB,
		linkGain:    true,
		mix:         defaultMix,
		baseAmount:  defaultBaseAmount,
		dynamics:    defaultDynamics,
		thresholdDB: defaultThresholdDB,
		mode:        envelope.ModeRMS,
		attackMs:    defaultAttackMs,
		releaseMs:   defaultReleaseMs,
		curve:       defaultCurve,
		smoothingMs: defaultSmoothingMs,
		warmth:      defaultWarmth,
		asymmetry:   defaultAsymmetry,
		hysteresis:  defaultHysteresis,
	}
}

func checkRange(name string, v, lo, hi float64) error {
	if v < lo || v > hi || math.IsNaN(v) {
		return fmt.Errorf("engine %s must be in [%g, %g]: %f", name, lo, hi, v)
	}
	return nil
}

// WithDrive sets the input drive in dB, in [-12, 12]. With gain linking
// enabled the output gain follows as -drive.
func WithDrive(dB float64) Option {
	return func(cfg *config) error {
		if err := checkRange("drive", dB, minGainDB, maxGainDB); err != nil {
			return err
		}
		cfg.driveDB = dB
		return nil
	}
}

// WithOutput sets the wet output gain in dB, in [-12, 12].
func WithOutput(dB float64) Option {
	return func(cfg *config) error {
		if err := checkRange("output gain", dB, minGainDB, maxGainDB); err != nil {
			return err
		}
		cfg.outputDB = dB
		return nil
	}
}

// WithLinkGain enables or disables drive/output gain linking. Linking is
// on by default.
func WithLinkGain(linked bool) Option {
	return func(cfg *config) error {
		cfg.linkGain = linked
		return nil
	}
}

// WithMix sets the dry/wet mix in [0, 1].
func WithMix(mix float64) Option {
	return func(cfg *config) error {
		if err := checkRange("mix", mix, 0, 1); err != nil {
			return err
		}
		cfg.mix = mix
		return nil
	}
}

// WithBaseAmount sets the distortion amount applied below threshold.
func WithBaseAmount(amount float64) Option {
	return func(cfg *config) error {
		if err := checkRange("base amount", amount, 0, 1); err != nil {
			return err
		}
		cfg.baseAmount = amount
		return nil
	}
}

// WithDynamics sets how far the envelope moves the amount, in [-1, 1].
func WithDynamics(dynamics float64) Option {
	return func(cfg *config) error {
		if err := checkRange("dynamics", dynamics, -1, 1); err != nil {
			return err
		}
		cfg.dynamics = dynamics
		return nil
	}
}

// WithThreshold sets the envelope threshold in dB, in [-60, 0].
func WithThreshold(dB float64) Option {
	return func(cfg *config) error {
		if err := checkRange("threshold", dB, minThresholdDB, maxThresholdDB); err != nil {
			return err
		}
		cfg.thresholdDB = dB
		return nil
	}
}

// WithDetectorMode selects the envelope detector mode.
func WithDetectorMode(mode envelope.Mode) Option {
	return func(cfg *config) error {
		if !mode.Valid() {
			return fmt.Errorf("engine detector mode is invalid: %d", int(mode))
		}
		cfg.mode = mode
		return nil
	}
}

// WithAttack sets the envelope attack in milliseconds.
func WithAttack(ms float64) Option {
	return func(cfg *config) error {
		if !(ms > 0) || math.IsInf(ms, 0) {
			return fmt.Errorf("engine attack must be > 0 and finite: %f", ms)
		}
		cfg.attackMs = ms
		return nil
	}
}

// WithRelease sets the envelope release in milliseconds.
func WithRelease(ms float64) Option {
	return func(cfg *config) error {
		if !(ms > 0) || math.IsInf(ms, 0) {
			return fmt.Errorf("engine release must be > 0 and finite: %f", ms)
		}
		cfg.releaseMs = ms
		return nil
	}
}

// WithCurve sets the envelope curve in [0, 1].
func WithCurve(curve float64) Option {
	return func(cfg *config) error {
		if err := checkRange("curve", curve, 0, 1); err != nil {
			return err
		}
		cfg.curve = curve
		return nil
	}
}

// WithCharacter sets the fixed tone of the channel processors: warmth,
// asymmetry and hysteresis, each in [0, 1].
func WithCharacter(warmth, asymmetry, hysteresis float64) Option {
	return func(cfg *config) error {
		for _, p := range []struct {
			name string
			v    float64
		}{{"warmth", warmth}, {"asymmetry", asymmetry}, {"hysteresis", hysteresis}} {
			if err := checkRange(p.name, p.v, 0, 1); err != nil {
				return err
			}
		}
		cfg.warmth = warmth
		cfg.asymmetry = asymmetry
		cfg.hysteresis = hysteresis
		return nil
	}
}
