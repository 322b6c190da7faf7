package engine

import (
	"testing"

	"github.com/cwbudde/toast-dsp/dsp/core"
	"github.com/cwbudde/toast-dsp/internal/testutil"
)

func BenchmarkProcessStereoInPlace(b *testing.B) {
	e, err := New(core.ProcessorConfig{}, WithDynamics(0.5))
	if err != nil {
		b.Fatal(err)
	}

	srcL := testutil.DeterministicNoise(1, 0.8, 4096)
	srcR := testutil.DeterministicNoise(2, 0.8, 4096)
	left := make([]float64, len(srcL))
	right := make([]float64, len(srcR))

	b.ReportAllocs()
	b.SetBytes(int64(2 * len(left) * 8))
	b.ResetTimer()

	for range b.N {
		copy(left, srcL)
		copy(right, srcR)
		if err := e.ProcessStereoInPlace(left, right); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkProcessFrame(b *testing.B) {
	e, err := New(core.ProcessorConfig{})
	if err != nil {
		b.Fatal(err)
	}

	src := testutil.DeterministicNoise(3, 0.8, 1024)

	b.ReportAllocs()
	b.ResetTimer()

	for range b.N {
		for _, x := range src {
			e.ProcessFrame(x, -x)
		}
	}
}
