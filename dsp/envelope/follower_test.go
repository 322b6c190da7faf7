package envelope

import (
	"math"
	"testing"

	"github.com/cwbudde/toast-dsp/internal/testutil"
)

const testSampleRate = 48000.0

var allModes = []Mode{ModePeak, ModeRMS, ModeVintage, ModeVactrol}

func newTestFollower(t *testing.T, opts ...Option) *Follower {
	t.Helper()

	f, err := New(testSampleRate, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	return f
}

func runConstant(f *Follower, level float64, n int) float64 {
	var out float64
	for range n {
		out = f.ProcessSample(level)
	}
	return out
}

func TestNewValidation(t *testing.T) {
	for _, sr := range []float64{0, -44100, math.NaN(), math.Inf(1)} {
		if _, err := New(sr); err == nil {
			t.Fatalf("expected error for sample rate %v", sr)
		}
	}
}

func TestDefaults(t *testing.T) {
	f := newTestFollower(t)

	if f.Mode() != ModePeak {
		t.Fatalf("mode = %v, want peak", f.Mode())
	}
	if f.Attack() != defaultAttackMs || f.Release() != defaultReleaseMs {
		t.Fatalf("attack/release = %v/%v", f.Attack(), f.Release())
	}
	if f.Smoothing() != defaultSmoothingMs || f.Curve() != defaultCurve || f.Amount() != defaultAmount {
		t.Fatalf("unexpected defaults: smoothing=%v curve=%v amount=%v", f.Smoothing(), f.Curve(), f.Amount())
	}
	if f.EnvelopeDB() != -120 {
		t.Fatalf("EnvelopeDB() before processing = %v, want -120", f.EnvelopeDB())
	}
}

func TestSetterClamping(t *testing.T) {
	tests := []struct {
		name  string
		apply func(f *Follower)
		get   func(f *Follower) float64
		want  float64
	}{
		{"attack low", func(f *Follower) { f.SetAttack(0) }, (*Follower).Attack, minAttackMs},
		{"attack high", func(f *Follower) { f.SetAttack(5000) }, (*Follower).Attack, maxAttackMs},
		{"release low", func(f *Follower) { f.SetRelease(0.5) }, (*Follower).Release, minReleaseMs},
		{"release high", func(f *Follower) { f.SetRelease(1e5) }, (*Follower).Release, maxReleaseMs},
		{"smoothing low", func(f *Follower) { f.SetSmoothing(0) }, (*Follower).Smoothing, minSmoothingMs},
		{"smoothing high", func(f *Follower) { f.SetSmoothing(500) }, (*Follower).Smoothing, maxSmoothingMs},
		{"amount low", func(f *Follower) { f.SetAmount(-1) }, (*Follower).Amount, 0},
		{"amount high", func(f *Follower) { f.SetAmount(2) }, (*Follower).Amount, 1},
		{"curve high", func(f *Follower) { f.SetCurve(2) }, (*Follower).Curve, 1},
		{"sensitivity low", func(f *Follower) { f.SetSensitivity(-100) }, (*Follower).Sensitivity, minSensitivityDB},
		{"attack nan keeps value", func(f *Follower) { f.SetAttack(math.NaN()) }, (*Follower).Attack, defaultAttackMs},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestFollower(t)
			tt.apply(f)
			if got := tt.get(f); got != tt.want {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSetModeIgnoresUnknown(t *testing.T) {
	f := newTestFollower(t, WithMode(ModeRMS))
	f.SetMode(Mode(42))
	if f.Mode() != ModeRMS {
		t.Fatalf("mode = %v, want rms", f.Mode())
	}
}

func TestOutputBoundedAllModes(t *testing.T) {
	in := testutil.DeterministicNoise(7, 10, 9600)
	in = append(in, 1e300, -1e300, math.MaxFloat64, math.NaN(), math.Inf(1), math.Inf(-1), 0.5)

	for _, mode := range allModes {
		t.Run(mode.String(), func(t *testing.T) {
			f := newTestFollower(t, WithMode(mode), WithSensitivity(60), WithAttack(0.01))

			out := make([]float64, len(in))
			for i, x := range in {
				out[i] = f.ProcessSample(x)
			}

			testutil.RequireBounded(t, out, 0, 1)
		})
	}
}

func TestResetIdempotence(t *testing.T) {
	noise := testutil.DeterministicNoise(3, 1, 4800)

	for _, mode := range allModes {
		t.Run(mode.String(), func(t *testing.T) {
			f := newTestFollower(t, WithMode(mode))
			f.ProcessInPlace(append([]float64(nil), noise...))

			f.Reset()

			for i := range 4800 {
				if out := f.ProcessSample(0); out != 0 {
					t.Fatalf("sample %d after Reset = %v, want 0", i, out)
				}
			}
			if f.EnvelopeDB() != -120 {
				t.Fatalf("EnvelopeDB() = %v, want -120", f.EnvelopeDB())
			}
		})
	}
}

func TestProcessStereoUsesMaxAbs(t *testing.T) {
	left := testutil.DeterministicNoise(11, 0.8, 2048)
	right := testutil.DeterministicSine(300, testSampleRate, 0.6, 2048)

	stereo := newTestFollower(t, WithMode(ModeRMS))
	mono := newTestFollower(t, WithMode(ModeRMS))

	for i := range left {
		got := stereo.ProcessStereo(left[i], right[i])
		want := mono.ProcessSample(math.Max(math.Abs(left[i]), math.Abs(right[i])))
		if got != want {
			t.Fatalf("sample %d: stereo=%v mono=%v", i, got, want)
		}
	}
}

func TestPeakModeSettlesToLevel(t *testing.T) {
	f := newTestFollower(t, WithCurve(0))

	out := runConstant(f, 0.5, int(testSampleRate))
	if math.Abs(out-0.5) > 1e-9 {
		t.Fatalf("settled envelope = %v, want 0.5", out)
	}
	if db := f.EnvelopeDB(); math.Abs(db-20*math.Log10(0.5)) > 1e-6 {
		t.Fatalf("EnvelopeDB() = %v, want %v", db, 20*math.Log10(0.5))
	}
	if f.Envelope() != out {
		t.Fatalf("Envelope() = %v, want last output %v", f.Envelope(), out)
	}
}

func TestRMSModeSineLevel(t *testing.T) {
	f := newTestFollower(t, WithMode(ModeRMS), WithCurve(0), WithRelease(300))

	sine := testutil.DeterministicSine(1000, testSampleRate, 0.5, int(testSampleRate))
	var out float64
	for _, x := range sine {
		out = f.ProcessSample(x)
	}

	want := 0.5 / math.Sqrt2
	if math.Abs(out-want) > 0.01 {
		t.Fatalf("RMS envelope = %v, want %v", out, want)
	}
}

func TestAttackReleaseAsymmetry(t *testing.T) {
	f := newTestFollower(t, WithAttack(1), WithRelease(500), WithSmoothing(0.1), WithCurve(0))

	if rise := runConstant(f, 1, 480); rise < 0.95 {
		t.Fatalf("envelope after 10 ms of signal = %v, want > 0.95", rise)
	}

	fall := runConstant(f, 0, 2400)
	if fall < 0.85 || fall >= 1 {
		t.Fatalf("envelope after 50 ms of silence = %v, want in [0.85, 1)", fall)
	}
}

func TestVintageHoldsLongerThanPeak(t *testing.T) {
	peak := newTestFollower(t, WithMode(ModePeak), WithCurve(0))
	vintage := newTestFollower(t, WithMode(ModeVintage), WithCurve(0))

	runConstant(peak, 0.8, 4800)
	runConstant(vintage, 0.8, 4800)

	p := runConstant(peak, 0, 4800)
	v := runConstant(vintage, 0, 4800)

	if v <= p {
		t.Fatalf("vintage release (%v) should hang above peak release (%v)", v, p)
	}
	if v <= 0 || v >= 0.8 {
		t.Fatalf("vintage envelope = %v, want decaying in (0, 0.8)", v)
	}
}

func samplesToReach(f *Follower, level, fraction float64, limit int) int {
	for i := range limit {
		if f.ProcessSample(level) >= level*fraction {
			return i + 1
		}
	}
	return limit
}

func TestVactrolLargeStepAttacksFaster(t *testing.T) {
	opts := []Option{WithMode(ModeVactrol), WithAttack(10), WithSmoothing(0.1), WithCurve(0)}

	big := newTestFollower(t, opts...)
	small := newTestFollower(t, opts...)

	const target = 1 - 1/math.E

	nBig := samplesToReach(big, 0.8, target, 48000)
	nSmall := samplesToReach(small, 0.08, target, 48000)

	ratio := float64(nBig) / float64(nSmall)
	if ratio < 0.35 || ratio > 0.7 {
		t.Fatalf("large/small attack time ratio = %.3f (big=%d small=%d), want about 0.5", ratio, nBig, nSmall)
	}
}

func TestVactrolReleaseHangs(t *testing.T) {
	f := newTestFollower(t, WithMode(ModeVactrol), WithCurve(0), WithSmoothing(0.1))
	runConstant(f, 0.6, 9600)

	prev := f.Envelope()
	for i := range 4800 {
		out := f.ProcessSample(0)
		if out > prev+1e-12 {
			t.Fatalf("release not monotonic at %d: %v > %v", i, out, prev)
		}
		prev = out
	}
	if prev <= 0 {
		t.Fatal("vactrol release should not reach silence within 100 ms")
	}
}

func TestVactrolMemoryTracksReleaseOnly(t *testing.T) {
	f := newTestFollower(t, WithMode(ModeVactrol), WithAttack(10), WithRelease(100))

	// 100 samples is well short of convergence, so every step is an attack.
	runConstant(f, 0.6, 100)
	if f.vactrolMemory != 0 {
		t.Fatalf("memory after attack = %v, want 0", f.vactrolMemory)
	}

	held := f.vactrolState
	f.ProcessSample(0)

	decayed := held * f.vactrolRelease
	memory := decayed * (1 - vactrolMemoryCoeff)
	want := decayed*(1-vactrolMemoryBlend) + memory*vactrolMemoryBlend
	if math.Abs(f.vactrolState-want) > 1e-12 {
		t.Fatalf("first release state = %.6f, want %.6f", f.vactrolState, want)
	}
	if held-f.vactrolState < 0.09*held {
		t.Fatalf("first release state = %.5f, want a sag of about 10%% below %.5f", f.vactrolState, held)
	}

	for range 10 {
		prevMemory := f.vactrolMemory
		prevState := f.vactrolState
		f.ProcessSample(0)

		decayed = prevState * f.vactrolRelease
		memory = prevMemory*vactrolMemoryCoeff + decayed*(1-vactrolMemoryCoeff)
		want = decayed*(1-vactrolMemoryBlend) + memory*vactrolMemoryBlend
		if math.Abs(f.vactrolState-want) > 1e-12 {
			t.Fatalf("release state = %.6f, want %.6f", f.vactrolState, want)
		}
	}
}

func TestCurveShaping(t *testing.T) {
	f := newTestFollower(t, WithCurve(1))

	out := runConstant(f, 0.5, int(testSampleRate))
	want := math.Pow(0.5, 1.2)
	if math.Abs(out-want) > 1e-6 {
		t.Fatalf("curved envelope = %v, want %v", out, want)
	}
}

func TestAmountAndSensitivity(t *testing.T) {
	tests := []struct {
		name  string
		opts  []Option
		level float64
		want  float64
	}{
		{name: "amount half", opts: []Option{WithAmount(0.5)}, level: 0.8, want: 0.4},
		{name: "sensitivity +6dB", opts: []Option{WithSensitivity(20 * math.Log10(2))}, level: 0.25, want: 0.5},
		{name: "clamped above full scale", opts: nil, level: 3, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestFollower(t, append([]Option{WithCurve(0)}, tt.opts...)...)
			out := runConstant(f, tt.level, int(testSampleRate))
			if math.Abs(out-tt.want) > 1e-6 {
				t.Fatalf("envelope = %v, want %v", out, tt.want)
			}
		})
	}
}

func TestInvalidInitializeFreezes(t *testing.T) {
	f := newTestFollower(t)
	runConstant(f, 0.5, 480)

	if err := f.Initialize(0); err == nil {
		t.Fatal("expected error for zero sample rate")
	}
	if f.SampleRate() != 0 {
		t.Fatalf("SampleRate() = %v, want 0", f.SampleRate())
	}
	if out := f.ProcessSample(1); out != 0 {
		t.Fatalf("frozen follower returned %v, want 0", out)
	}
	if f.EnvelopeDB() != -120 {
		t.Fatalf("frozen EnvelopeDB() = %v, want -120", f.EnvelopeDB())
	}

	if err := f.Initialize(44100); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if out := runConstant(f, 0.5, 4410); out <= 0 {
		t.Fatalf("re-initialized follower output = %v, want > 0", out)
	}
}

func TestSampleRateChangesTiming(t *testing.T) {
	slow := newTestFollower(t, WithCurve(0), WithSmoothing(0.1))
	fast := newTestFollower(t, WithCurve(0), WithSmoothing(0.1))
	if err := fast.Initialize(96000); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	// The same number of samples covers half the time at 96 kHz.
	a := runConstant(slow, 1, 240)
	b := runConstant(fast, 1, 240)
	if b >= a {
		t.Fatalf("96 kHz envelope (%v) should lag 48 kHz envelope (%v) after equal sample counts", b, a)
	}
}

func TestParseMode(t *testing.T) {
	for _, mode := range allModes {
		got, err := ParseMode(" " + mode.String() + " ")
		if err != nil || got != mode {
			t.Fatalf("ParseMode(%q) = %v, %v", mode.String(), got, err)
		}
	}
	if got, err := ParseMode("VACTROL"); err != nil || got != ModeVactrol {
		t.Fatalf("ParseMode is not case-insensitive: %v, %v", got, err)
	}
	if _, err := ParseMode("opto"); err == nil {
		t.Fatal("expected error for unknown mode")
	}
	if Mode(9).String() != "Mode(9)" {
		t.Fatalf("unexpected String() for invalid mode: %s", Mode(9))
	}
}
