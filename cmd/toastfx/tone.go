package main

import (
	"fmt"
	"math"
	"os"

	"github.com/cwbudde/toast-dsp/dsp/core"
	"github.com/cwbudde/toast-dsp/measure/thd"
)

const toneFFTSize = 16384

type toneCmd struct {
	EngineFlags

	Freq       float64 `help:"Tone frequency in Hz, snapped to the nearest FFT bin." default:"1000"`
	Level      float64 `help:"Tone level in dBFS." default:"-6"`
	SampleRate float64 `help:"Sample rate in Hz." default:"48000"`
	Window     string  `help:"Analysis window." default:"hann" enum:"hann,rectangular,hamming,blackman,bartlett,flattop"`
}

func (c *toneCmd) Run() error {
	res, amount, err := c.measure()
	if err != nil {
		return err
	}

	r := &report{title: "Harmonic distortion"}
	r.add("fundamental", "%.1f Hz", res.FundamentalFreq)
	r.add("THD", "%.3f %% (%.1f dB)", res.THD*100, res.THD_dB)
	r.add("THD+N", "%.3f %% (%.1f dB)", res.THDN*100, res.THDN_dB)
	r.add("even / odd", "%.3f %% / %.3f %%", res.EvenHD*100, res.OddHD*100)
	for k := 2; k <= 5; k++ {
		r.add(fmt.Sprintf("H%d", k), "%.1f dB", core.DBFloor(res.Harmonic(k)))
	}
	r.add("amount", "%.2f", amount)
	r.render(os.Stdout)

	return nil
}

// measure runs a coherent sine through a mono engine and analyses the
// second half of the output, after the envelope has settled.
func (c *toneCmd) measure() (thd.Result, float64, error) {
	if err := core.ValidateSampleRate("tone", c.SampleRate); err != nil {
		return thd.Result{}, 0, err
	}

	win, err := thd.ParseWindow(c.Window)
	if err != nil {
		return thd.Result{}, 0, err
	}

	e, err := c.newEngine(c.SampleRate, 1)
	if err != nil {
		return thd.Result{}, 0, err
	}

	bin := math.Max(1, math.Round(c.Freq*toneFFTSize/c.SampleRate))
	freq := bin * c.SampleRate / toneFFTSize
	amp := core.DBToLinear(c.Level)

	buf := make([]float64, 2*toneFFTSize)
	for i := range buf {
		buf[i] = amp * math.Sin(2*math.Pi*freq*float64(i)/c.SampleRate)
	}

	logger.Debug("tone", "freq", freq, "amplitude", amp, "window", win.String())

	e.ProcessMonoInPlace(buf)

	res, err := thd.AnalyzeSignal(buf[toneFFTSize:], thd.Config{
		SampleRate:      c.SampleRate,
		FFTSize:         toneFFTSize,
		FundamentalFreq: freq,
		RangeUpperFreq:  math.Min(20000, c.SampleRate/2),
		Window:          win,
	})
	if err != nil {
		return thd.Result{}, 0, err
	}

	return res, e.Snapshot().Modulation.Amount, nil
}
