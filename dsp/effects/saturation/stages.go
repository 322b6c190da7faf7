package saturation

import (
	"math"

	"github.com/cwbudde/toast-dsp/dsp/core"
)

const (
	bassCutoffHz    = 200.0
	subBassCutoffHz = 80.0

	bassGain           = 0.25
	subBassGain        = 0.15
	lowBandGain        = 0.2
	bassSaturationGain = 0.05
	bassSaturationKnee = 2.0
	midScoopStart      = 0.7
	midScoopDepth      = 0.15

	hysteresisTransientStep = 0.1
	hysteresisFastRate      = 0.8
	hysteresisSlowRate      = 0.3
	hysteresisKnee          = 0.3
	hysteresisMix           = 0.3

	maxDriveBoost           = 4.0
	asymmetryBias           = 0.15
	secondHarmonicThreshold = 0.5
	secondHarmonicGain      = 0.1
	levelCompensation       = 3.5
	saturatorRail           = 3.0

	dampingCutoffHz = 12000.0
	dampingMix      = 0.05

	// 7 Hz puts the DC blocker pole at about 0.999 for 44.1 kHz.
	dcBlockerCutoffHz = 7.0

	limiterThreshold = 0.95
	limiterRange     = 0.05
	limiterKnee      = 2.0
)

// lowShelf adds bass and sub-bass energy back onto the signal. The
// trackers keep running while the stage is bypassed so that re-enabling
// warmth does not start from a stale state.
func (p *HarmonicProcessor) lowShelf(x float64) float64 {
	p.bass = core.FlushDenormals(p.bass + p.bassCoeff*(x-p.bass))
	p.subBass = core.FlushDenormals(p.subBass + p.subBassCoeff*(p.bass-p.subBass))

	w := p.warmth
	if w < bypassThreshold {
		return x
	}

	y := x + w*(bassGain*p.bass+subBassGain*p.subBass+lowBandGain*(p.bass-p.subBass))
	y += w * bassSaturationGain * mathTanh(bassSaturationKnee*p.bass)

	if w > midScoopStart {
		y -= (w - midScoopStart) * midScoopDepth * (x - p.bass)
	}

	return y
}

// hysteresis lets a magnetic state chase the input, compresses that state
// above the knee and blends it back with a high-frequency compensation
// term. Below the knee the stage is transparent.
func (p *HarmonicProcessor) hysteresis(x float64) float64 {
	if p.hysteresisAmount < bypassThreshold {
		p.hystState = x
		return x
	}

	diff := x - p.hystState
	rate := hysteresisSlowRate
	if math.Abs(diff) > hysteresisTransientStep {
		rate = hysteresisFastRate
	}
	p.hystState = core.FlushDenormals(p.hystState + diff*rate)

	magnetic := softKnee(p.hystState, hysteresisKnee)
	h := p.hysteresisAmount * hysteresisMix

	return x*(1-h) + magnetic*h + (x-p.hystState)*h
}

// saturate is the harmonic generator. A bias proportional to asymmetry
// shifts the operating point of the rational curve, which produces even
// harmonics; the bias itself is subtracted again so zero maps to zero.
func (p *HarmonicProcessor) saturate(x float64) float64 {
	thd := p.thdAmount
	driven := x * (1 + thd*maxDriveBoost)
	bias := p.asymmetry * asymmetryBias

	wet := rationalSaturate(driven+bias) - rationalSaturate(bias)
	if p.asymmetry > secondHarmonicThreshold {
		t := mathTanh(2 * driven)
		wet += (p.asymmetry - secondHarmonicThreshold) * secondHarmonicGain * t * t
	}

	compensation := 1 / (1 + levelCompensation*thd)

	return x*(1-thd) + wet*thd*compensation
}

func (p *HarmonicProcessor) dampen(x float64) float64 {
	p.damp = core.FlushDenormals(p.damp + p.dampCoeff*(x-p.damp))
	mix := p.thdAmount * dampingMix

	return x*(1-mix) + p.damp*mix
}

// blockDC is the first-order high-pass y[n] = x[n] - x[n-1] + R*y[n-1].
func (p *HarmonicProcessor) blockDC(x float64) float64 {
	y := x - p.dcPrevIn + p.dcR*p.dcPrevOut
	p.dcPrevIn = x
	p.dcPrevOut = core.FlushDenormals(y)

	return p.dcPrevOut
}

// rationalSaturate is the cubic-like soft clip x(27+x²)/(27+9x²). It
// reaches ±1 with zero slope at ±3 and is held there beyond.
func rationalSaturate(x float64) float64 {
	if x >= saturatorRail {
		return 1
	}
	if x <= -saturatorRail {
		return -1
	}

	x2 := x * x

	return x * (27 + x2) / (27 + 9*x2)
}

// softKnee passes |x| up to knee unchanged and compresses the excess
// towards knee+1.
func softKnee(x, knee float64) float64 {
	a := math.Abs(x)
	if a <= knee {
		return x
	}

	excess := a - knee

	return math.Copysign(knee+excess/(1+excess), x)
}

// softLimit leaves |x| <= 0.95 untouched and bends anything above it
// smoothly towards 1.0.
func softLimit(x float64) float64 {
	a := math.Abs(x)
	if a <= limiterThreshold {
		return x
	}

	return math.Copysign(limiterThreshold+mathTanh((a-limiterThreshold)*limiterKnee)*limiterRange, x)
}
