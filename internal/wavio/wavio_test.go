package wavio

import (
	"math"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/cwbudde/toast-dsp/internal/testutil"
)

func TestWriteReadRoundTrip(t *testing.T) {
	for _, depth := range []int{16, 24} {
		t.Run(strconv.Itoa(depth)+"bit", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "clip.wav")
			in := &Clip{
				SampleRate: 44100,
				BitDepth:   depth,
				Channels: [][]float64{
					testutil.DeterministicSine(440, 44100, 0.5, 2000),
					testutil.DeterministicNoise(1, 0.25, 2000),
				},
			}

			if err := Write(path, in); err != nil {
				t.Fatalf("Write() error = %v", err)
			}

			out, err := Read(path)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}

			if out.SampleRate != 44100 || out.BitDepth != depth || len(out.Channels) != 2 || out.Frames() != 2000 {
				t.Fatalf("header mismatch: rate=%d depth=%d channels=%d frames=%d",
					out.SampleRate, out.BitDepth, len(out.Channels), out.Frames())
			}

			eps := 1.0 / fullScale(depth)
			for ch := range in.Channels {
				testutil.RequireSliceNearlyEqual(t, out.Channels[ch], in.Channels[ch], eps)
			}
		})
	}
}

func TestWriteClipsOutOfRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hot.wav")
	in := &Clip{SampleRate: 8000, BitDepth: 16, Channels: [][]float64{{2, -2, math.NaN(), 0.5}}}

	if err := Write(path, in); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	out, err := Read(path)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	want := []float64{32767.0 / 32768, -1, 0, 0.5}
	testutil.RequireSliceNearlyEqual(t, out.Channels[0], want, 1e-12)
}

func TestWriteErrors(t *testing.T) {
	dir := t.TempDir()

	if err := Write(filepath.Join(dir, "a.wav"), &Clip{SampleRate: 8000, BitDepth: 16}); err == nil {
		t.Fatal("expected error for empty clip")
	}
	if err := Write(filepath.Join(dir, "b.wav"), &Clip{SampleRate: 8000, BitDepth: 12, Channels: [][]float64{{0}}}); err == nil {
		t.Fatal("expected error for 12-bit clip")
	}
	ragged := &Clip{SampleRate: 8000, BitDepth: 16, Channels: [][]float64{{0, 0}, {0}}}
	if err := Write(filepath.Join(dir, "c.wav"), ragged); err == nil {
		t.Fatal("expected error for ragged channels")
	}
}

func TestReadRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.wav")
	if err := os.WriteFile(path, []byte("definitely not RIFF"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := Read(path); err == nil {
		t.Fatal("expected error for non-WAV file")
	}
	if _, err := Read(filepath.Join(t.TempDir(), "missing.wav")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestDuration(t *testing.T) {
	c := &Clip{SampleRate: 100, Channels: [][]float64{make([]float64, 250)}}
	if c.Duration() != 2.5 {
		t.Fatalf("Duration() = %v", c.Duration())
	}
	if (&Clip{}).Duration() != 0 {
		t.Fatal("empty clip duration")
	}
}
