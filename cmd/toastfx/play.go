//go:build !headless

package main

import (
	"time"

	"github.com/cwbudde/toast-dsp/internal/wavio"
	"github.com/cwbudde/toast-dsp/measure/level"
	"github.com/ebitengine/oto/v3"
)

type playCmd struct {
	EngineFlags

	In string `arg:"" type:"existingfile" help:"Input WAV file."`
}

func (c *playCmd) Run() error {
	clip, err := wavio.Read(c.In)
	if err != nil {
		return err
	}

	channels := min(len(clip.Channels), 2)
	e, err := c.newEngine(float64(clip.SampleRate), channels)
	if err != nil {
		return err
	}

	meter, err := level.NewMeter(float64(clip.SampleRate), 300)
	if err != nil {
		return err
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   clip.SampleRate,
		ChannelCount: channels,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return err
	}
	<-ready

	stream := newEngineStream(e, clip, channels, meter)
	player := ctx.NewPlayer(stream)
	defer player.Close()

	logger.Info("playing", "in", c.In, "seconds", clip.Duration())
	player.Play()

	tick := time.NewTicker(time.Second)
	defer tick.Stop()

	for player.IsPlaying() {
		<-tick.C
		snap := stream.snapshot()
		peakDB, holdDB := stream.levels()
		logger.Info("meter", "peakDB", peakDB, "holdDB", holdDB,
			"envelopeDB", snap.EnvelopeDB, "amount", snap.Modulation.Amount)
	}

	return player.Err()
}
