package main

import (
	"encoding/binary"
	"io"
	"math"
	"sync"

	"github.com/cwbudde/toast-dsp/dsp/engine"
	"github.com/cwbudde/toast-dsp/internal/wavio"
	"github.com/cwbudde/toast-dsp/measure/level"
)

// engineStream renders the clip through the engine on demand as
// interleaved float32 little-endian frames.
type engineStream struct {
	mu       sync.Mutex
	engine   *engine.Engine
	clip     *wavio.Clip
	channels int
	meter    *level.Meter
	pos      int
	frame    []float64
}

func newEngineStream(e *engine.Engine, clip *wavio.Clip, channels int, meter *level.Meter) *engineStream {
	return &engineStream{
		engine:   e,
		clip:     clip,
		channels: channels,
		meter:    meter,
		frame:    make([]float64, channels),
	}
}

func (s *engineStream) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	frameBytes := 4 * s.channels
	n := 0

	for n+frameBytes <= len(p) {
		if s.pos >= s.clip.Frames() {
			if n == 0 {
				return 0, io.EOF
			}
			break
		}

		if s.channels == 1 {
			s.frame[0] = s.engine.ProcessMono(s.clip.Channels[0][s.pos])
		} else {
			s.frame[0], s.frame[1] = s.engine.ProcessFrame(s.clip.Channels[0][s.pos], s.clip.Channels[1][s.pos])
		}
		s.meter.Process(s.frame)

		for _, v := range s.frame {
			binary.LittleEndian.PutUint32(p[n:], math.Float32bits(float32(v)))
			n += 4
		}
		s.pos++
	}

	return n, nil
}

func (s *engineStream) snapshot() engine.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Snapshot()
}

// levels returns the falling peak and the held maximum in dBFS.
func (s *engineStream) levels() (peakDB, holdDB float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.meter.ValueDB(), s.meter.HoldDB()
}
