package level

import (
	"math"
	"testing"

	"github.com/cwbudde/toast-dsp/internal/testutil"
)

func TestCalculateSine(t *testing.T) {
	s := Calculate(testutil.DeterministicSine(1000, 48000, 0.5, 48000))

	if math.Abs(s.Peak-0.5) > 1e-6 {
		t.Fatalf("Peak = %v, want 0.5", s.Peak)
	}
	if math.Abs(s.RMS-0.5/math.Sqrt2) > 1e-6 {
		t.Fatalf("RMS = %v, want %v", s.RMS, 0.5/math.Sqrt2)
	}
	if math.Abs(s.CrestFactor_dB-20*math.Log10(math.Sqrt2)) > 1e-4 {
		t.Fatalf("CrestFactor_dB = %v", s.CrestFactor_dB)
	}
	if math.Abs(s.DC) > 1e-9 {
		t.Fatalf("DC = %v", s.DC)
	}
	if s.Clipped != 0 || s.NonFinite != 0 {
		t.Fatalf("Clipped=%d NonFinite=%d", s.Clipped, s.NonFinite)
	}
}

func TestCalculateEdgeCases(t *testing.T) {
	empty := Calculate(nil)
	if empty.Length != 0 || !math.IsInf(empty.Peak_dB, -1) || !math.IsInf(empty.RMS_dB, -1) {
		t.Fatalf("empty stats = %+v", empty)
	}

	s := Calculate([]float64{math.NaN(), 1.5, -1, math.Inf(1), 0.5})
	if s.Length != 5 || s.NonFinite != 2 || s.Clipped != 2 {
		t.Fatalf("Length=%d NonFinite=%d Clipped=%d", s.Length, s.NonFinite, s.Clipped)
	}
	if s.Peak != 1.5 || math.Abs(s.DC-1.0/3) > 1e-12 {
		t.Fatalf("Peak=%v DC=%v", s.Peak, s.DC)
	}

	dc := Calculate(testutil.DC(-0.25, 100))
	if dc.DC != -0.25 || dc.CrestFactor != 1 {
		t.Fatalf("DC stats = %+v", dc)
	}
}

func TestGainDB(t *testing.T) {
	in := testutil.DeterministicNoise(1, 0.5, 4096)
	out := make([]float64, len(in))
	for i, x := range in {
		out[i] = 2 * x
	}

	if got := GainDB(in, out); math.Abs(got-20*math.Log10(2)) > 1e-9 {
		t.Fatalf("GainDB = %v, want +6.02", got)
	}
	if got := GainDB(in, make([]float64, 10)); got != 0 {
		t.Fatalf("GainDB to silence = %v, want 0", got)
	}
}

func TestMeter(t *testing.T) {
	if _, err := NewMeter(0, 100); err == nil {
		t.Fatal("expected error for zero sample rate")
	}

	m, err := NewMeter(48000, 100)
	if err != nil {
		t.Fatal(err)
	}

	if got := m.Process([]float64{0.1, -0.8, 0.2}); math.Abs(got-0.8*math.Exp(-1/4800.0)) > 1e-12 {
		t.Fatalf("value after peak = %v", got)
	}

	m.Process(make([]float64, 4800))
	want := 0.8 * math.Exp(-4801/4800.0)
	if math.Abs(m.Value()-want) > 1e-9 {
		t.Fatalf("value after 100 ms = %v, want %v", m.Value(), want)
	}
	if m.Hold() != 0.8 {
		t.Fatalf("Hold() = %v", m.Hold())
	}

	m.Process([]float64{math.NaN(), math.Inf(-1)})
	if !(m.Value() < 0.8) {
		t.Fatalf("non-finite input moved meter to %v", m.Value())
	}

	if m.Hold() != 0.8 {
		t.Fatalf("non-finite input moved hold to %v", m.Hold())
	}
	if math.Abs(m.HoldDB()-20*math.Log10(0.8)) > 1e-9 {
		t.Fatalf("HoldDB() = %v", m.HoldDB())
	}

	fresh, err := NewMeter(48000, 0)
	if err != nil {
		t.Fatal(err)
	}
	if fresh.ValueDB() != -120 || fresh.HoldDB() != -120 {
		t.Fatalf("fresh meter dB = %v / %v, want -120", fresh.ValueDB(), fresh.HoldDB())
	}
}
