// Package wavio reads and writes PCM WAV files as per-channel float64
// sample slices in [-1, 1].
package wavio

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const pcmFormat = 1

// Clip is decoded audio with one slice per channel.
type Clip struct {
	SampleRate int
	BitDepth   int
	Channels   [][]float64
}

// Frames returns the number of sample frames.
func (c *Clip) Frames() int {
	if len(c.Channels) == 0 {
		return 0
	}
	return len(c.Channels[0])
}

// Duration returns the clip length in seconds.
func (c *Clip) Duration() float64 {
	if c.SampleRate <= 0 {
		return 0
	}
	return float64(c.Frames()) / float64(c.SampleRate)
}

// Read decodes a PCM WAV file.
func Read(path string) (*Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("wavio: %s is not a valid WAV file", path)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("wavio: decode %s: %w", path, err)
	}

	channels := int(dec.NumChans)
	if channels < 1 {
		return nil, fmt.Errorf("wavio: %s has no channels", path)
	}

	bitDepth := int(dec.BitDepth)
	scale := fullScale(bitDepth)
	if scale == 0 {
		return nil, fmt.Errorf("wavio: %s has unsupported bit depth %d", path, bitDepth)
	}

	frames := len(buf.Data) / channels
	clip := &Clip{
		SampleRate: int(dec.SampleRate),
		BitDepth:   bitDepth,
		Channels:   make([][]float64, channels),
	}
	for ch := range clip.Channels {
		clip.Channels[ch] = make([]float64, frames)
	}

	for i := range frames {
		for ch := range channels {
			clip.Channels[ch][i] = float64(buf.Data[i*channels+ch]) / scale
		}
	}

	return clip, nil
}

// Write encodes clip as PCM at its bit depth. Samples are clipped to the
// integer range.
func Write(path string, clip *Clip) (err error) {
	if clip == nil || len(clip.Channels) == 0 {
		return errors.New("wavio: nothing to write")
	}

	scale := fullScale(clip.BitDepth)
	if scale == 0 {
		return fmt.Errorf("wavio: unsupported bit depth %d", clip.BitDepth)
	}

	channels := len(clip.Channels)
	frames := clip.Frames()
	for ch, data := range clip.Channels {
		if len(data) != frames {
			return fmt.Errorf("wavio: channel %d has %d frames, want %d", ch, len(data), frames)
		}
	}

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: clip.SampleRate},
		Data:           make([]int, frames*channels),
		SourceBitDepth: clip.BitDepth,
	}

	lo, hi := -scale, scale-1
	for i := range frames {
		for ch := range channels {
			v := math.Round(clip.Channels[ch][i] * scale)
			if math.IsNaN(v) {
				v = 0
			}
			buf.Data[i*channels+ch] = int(math.Max(lo, math.Min(hi, v)))
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	enc := wav.NewEncoder(f, clip.SampleRate, clip.BitDepth, channels, pcmFormat)
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("wavio: encode %s: %w", path, err)
	}

	return enc.Close()
}

// fullScale returns 2^(bitDepth-1) for supported integer depths.
func fullScale(bitDepth int) float64 {
	switch bitDepth {
	case 16, 24, 32:
		return math.Ldexp(1, bitDepth-1)
	default:
		return 0
	}
}
