package thd

import (
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
)

const (
	defaultRangeLowerHz = 20.0
	defaultRangeUpperHz = 20000.0
)

// Config holds THD calculation parameters.
type Config struct {
	SampleRate float64
	// FFTSize defaults to the next power of two of the signal length.
	FFTSize int
	// FundamentalFreq pins the fundamental; 0 picks the strongest bin in range.
	FundamentalFreq float64
	RangeLowerFreq  float64
	RangeUpperFreq  float64
	// CaptureBins overrides the window's main-lobe half-width.
	CaptureBins  int
	MaxHarmonics int
	Window       Window
}

// Result holds THD measurement results. All ratios are relative to the
// fundamental amplitude.
//
//nolint:revive
type Result struct {
	FundamentalFreq  float64
	FundamentalLevel float64
	THD              float64
	THDN             float64
	THD_dB           float64
	THDN_dB          float64
	OddHD            float64
	EvenHD           float64
	Noise            float64
	// Harmonics[i] is the level of harmonic i+2.
	Harmonics []float64
	SINAD     float64
}

// Harmonic returns the relative level of the k-th harmonic (k >= 2), or 0
// when it was not measured.
func (r Result) Harmonic(k int) float64 {
	i := k - 2
	if i < 0 || i >= len(r.Harmonics) {
		return 0
	}
	return r.Harmonics[i]
}

// String formats the headline figures.
func (r Result) String() string {
	return fmt.Sprintf("f0=%.1fHz THD=%.3f%% THD+N=%.3f%% even=%.3f%% odd=%.3f%%",
		r.FundamentalFreq, r.THD*100, r.THDN*100, r.EvenHD*100, r.OddHD*100)
}

// Calculator performs THD analysis.
type Calculator struct {
	cfg Config
}

// NewCalculator creates a new THD calculator.
func NewCalculator(cfg Config) *Calculator {
	return &Calculator{cfg: normalizeConfig(cfg)}
}

// AnalyzeSignal is a one-shot THD analysis of a time-domain signal.
func AnalyzeSignal(signal []float64, cfg Config) (Result, error) {
	return NewCalculator(cfg).AnalyzeSignal(signal)
}

// AnalyzeSignal windows the signal, transforms it and evaluates THD
// metrics. A signal longer than FFTSize is truncated.
func (c *Calculator) AnalyzeSignal(signal []float64) (Result, error) {
	if len(signal) == 0 {
		return Result{}, nil
	}

	cfg := c.cfg

	fftSize := cfg.FFTSize
	if fftSize <= 0 {
		fftSize = nextPowerOf2(len(signal))
	}
	if fftSize <= 1 {
		return Result{}, nil
	}

	n := min(len(signal), fftSize)
	windowed := make([]float64, n)
	vecmath.MulBlock(windowed, signal[:n], cfg.Window.coefficients(n))

	in := make([]complex128, fftSize)
	for i, v := range windowed {
		in[i] = complex(v, 0)
	}

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return Result{}, fmt.Errorf("thd: fft plan of size %d: %w", fftSize, err)
	}

	out := make([]complex128, fftSize)
	if err := plan.Forward(out, in); err != nil {
		return Result{}, fmt.Errorf("thd: forward fft: %w", err)
	}

	cfg.FFTSize = fftSize
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = float64(fftSize)
	}

	return (&Calculator{cfg: cfg}).Calculate(out), nil
}

// Calculate computes THD metrics from a full complex spectrum.
func (c *Calculator) Calculate(spectrum []complex128) Result {
	binCount := len(spectrum)/2 + 1
	if len(spectrum) == 0 || binCount <= 1 {
		return Result{}
	}

	re := make([]float64, binCount)
	im := make([]float64, binCount)
	for i := range binCount {
		re[i] = real(spectrum[i])
		im[i] = imag(spectrum[i])
	}

	power := make([]float64, binCount)
	vecmath.Power(power, re, im)

	cfg := c.cfg
	if cfg.FFTSize <= 0 {
		cfg.FFTSize = len(spectrum)
	}
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = float64(cfg.FFTSize)
	}

	return (&Calculator{cfg: cfg}).CalculateFromPower(power)
}

// CalculateFromPower computes THD metrics from a squared-magnitude
// spectrum holding the bins [0..Nyquist].
//
//nolint:funlen
func (c *Calculator) CalculateFromPower(power []float64) Result {
	if len(power) <= 1 {
		return Result{}
	}

	cfg := c.cfg
	if cfg.FFTSize <= 0 {
		cfg.FFTSize = 2 * (len(power) - 1)
	}
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = float64(cfg.FFTSize)
	}

	maxBin := len(power) - 1
	binHz := cfg.SampleRate / float64(cfg.FFTSize)

	lowerBin := clampInt(int(math.Round(cfg.RangeLowerFreq/binHz)), 1, maxBin)
	upperBin := clampInt(int(math.Round(cfg.RangeUpperFreq/binHz)), lowerBin, maxBin)

	f0Bin := findFundamentalBin(power, cfg.FundamentalFreq, binHz, lowerBin, upperBin)

	capture := cfg.CaptureBins
	if capture <= 0 {
		capture = cfg.Window.captureBins()
	}
	capture = min(capture, f0Bin/2)

	fundamental := binLevel(power, f0Bin, capture)
	if fundamental <= 0 {
		return Result{FundamentalFreq: float64(f0Bin) * binHz}
	}

	var thdAbs, oddAbs, evenAbs float64
	harmonics := make([]float64, 0, 8)

	for k := 2; ; k++ {
		if cfg.MaxHarmonics > 0 && len(harmonics) >= cfg.MaxHarmonics {
			break
		}

		bin := k * f0Bin
		if bin > upperBin {
			break
		}

		level := binLevel(power, bin, capture)
		thdAbs += level
		if k%2 == 0 {
			evenAbs += level
		} else {
			oddAbs += level
		}
		harmonics = append(harmonics, level/fundamental)
	}

	var totalAbs float64
	for i := lowerBin; i <= upperBin; i++ {
		totalAbs += sqrtPositive(power[i])
	}

	thdnAbs := math.Max(totalAbs-fundamental, 0)
	noiseAbs := math.Max(thdnAbs-thdAbs, 0)

	thd := thdAbs / fundamental
	thdn := thdnAbs / fundamental

	sinad := math.Inf(1)
	if thdn > 0 {
		sinad = -20 * math.Log10(thdn)
	}

	return Result{
		FundamentalFreq:  float64(f0Bin) * binHz,
		FundamentalLevel: fundamental,
		THD:              thd,
		THDN:             thdn,
		THD_dB:           ratioToDB(thd),
		THDN_dB:          ratioToDB(thdn),
		OddHD:            oddAbs / fundamental,
		EvenHD:           evenAbs / fundamental,
		Noise:            noiseAbs / fundamental,
		Harmonics:        harmonics,
		SINAD:            sinad,
	}
}

func findFundamentalBin(power []float64, freq, binHz float64, lowerBin, upperBin int) int {
	if freq > 0 {
		return clampInt(int(math.Round(freq/binHz)), lowerBin, upperBin)
	}

	best := lowerBin
	for i := lowerBin + 1; i <= upperBin; i++ {
		if power[i] > power[best] {
			best = i
		}
	}

	return best
}

func normalizeConfig(cfg Config) Config {
	if cfg.RangeLowerFreq <= 0 {
		cfg.RangeLowerFreq = defaultRangeLowerHz
	}
	if cfg.RangeUpperFreq <= 0 {
		cfg.RangeUpperFreq = defaultRangeUpperHz
	}
	if cfg.RangeUpperFreq < cfg.RangeLowerFreq {
		cfg.RangeUpperFreq = cfg.RangeLowerFreq
	}
	cfg.CaptureBins = max(cfg.CaptureBins, 0)
	cfg.MaxHarmonics = max(cfg.MaxHarmonics, 0)

	return cfg
}

// binLevel sums the amplitudes within capture bins of bin.
func binLevel(power []float64, bin, capture int) float64 {
	if bin < 0 || bin >= len(power) {
		return 0
	}

	lo := max(bin-capture, 0)
	hi := min(bin+capture, len(power)-1)

	var sum float64
	for i := lo; i <= hi; i++ {
		sum += sqrtPositive(power[i])
	}

	return sum
}

func sqrtPositive(v float64) float64 {
	if v <= 0 {
		return 0
	}
	return math.Sqrt(v)
}

func ratioToDB(v float64) float64 {
	if v <= 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(v)
}

func clampInt(val, lo, hi int) int {
	return max(lo, min(val, hi))
}

func nextPowerOf2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
