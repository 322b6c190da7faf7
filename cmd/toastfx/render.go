package main

import (
	"fmt"
	"os"

	"github.com/cwbudde/toast-dsp/dsp/core"
	"github.com/cwbudde/toast-dsp/dsp/engine"
	"github.com/cwbudde/toast-dsp/internal/wavio"
	"github.com/cwbudde/toast-dsp/measure/level"
)

type renderCmd struct {
	EngineFlags

	In  string `arg:"" type:"existingfile" help:"Input WAV file."`
	Out string `arg:"" type:"path" help:"Output WAV file."`
}

func (c *renderCmd) Run() error {
	clip, err := wavio.Read(c.In)
	if err != nil {
		return err
	}

	logger.Info("rendering", "in", c.In, "rate", clip.SampleRate,
		"channels", len(clip.Channels), "bits", clip.BitDepth, "seconds", clip.Duration())

	out, snap, err := renderClip(clip, c.EngineFlags)
	if err != nil {
		return err
	}

	if err := wavio.Write(c.Out, out); err != nil {
		return err
	}
	logger.Info("wrote", "out", c.Out)

	levelReport(clip, out, snap).render(os.Stdout)

	return nil
}

// renderClip processes every channel of clip and returns a new clip. Files
// with more than two channels process the first two and copy the rest.
func renderClip(clip *wavio.Clip, flags EngineFlags) (*wavio.Clip, engine.Snapshot, error) {
	channels := min(len(clip.Channels), 2)

	e, err := flags.newEngine(float64(clip.SampleRate), channels)
	if err != nil {
		return nil, engine.Snapshot{}, err
	}

	out := &wavio.Clip{
		SampleRate: clip.SampleRate,
		BitDepth:   clip.BitDepth,
		Channels:   make([][]float64, len(clip.Channels)),
	}
	for ch, data := range clip.Channels {
		out.Channels[ch] = make([]float64, len(data))
		core.CopyInto(out.Channels[ch], data)
	}

	if channels == 1 {
		e.ProcessMonoInPlace(out.Channels[0])
	} else if err := e.ProcessStereoInPlace(out.Channels[0], out.Channels[1]); err != nil {
		return nil, engine.Snapshot{}, err
	}

	if len(clip.Channels) > 2 {
		logger.Warn("extra channels passed through", "channels", len(clip.Channels))
	}

	return out, e.Snapshot(), nil
}

func levelReport(in, out *wavio.Clip, snap engine.Snapshot) *report {
	r := &report{title: "Levels"}
	for ch := range in.Channels {
		a := level.Calculate(in.Channels[ch])
		b := level.Calculate(out.Channels[ch])
		r.add(fmt.Sprintf("channel %d", ch+1), "peak %6.1f -> %6.1f dBFS  rms %6.1f -> %6.1f dBFS  (%+.1f dB)",
			a.Peak_dB, b.Peak_dB, a.RMS_dB, b.RMS_dB, level.GainDB(in.Channels[ch], out.Channels[ch]))
		if b.Clipped > 0 {
			r.add("", "%d samples at full scale", b.Clipped)
		}
	}
	r.add("drive/output", "%+.1f / %+.1f dB", snap.DriveDB, snap.OutputDB)
	r.add("final amount", "%.2f (envelope %.1f dB)", snap.Modulation.Amount, snap.EnvelopeDB)

	return r
}
