package thd

import (
	"fmt"
	"strings"

	"github.com/mjibson/go-dsp/window"
)

// Window selects the analysis window applied before the FFT.
type Window int

const (
	// WindowHann is the default.
	WindowHann Window = iota
	WindowRectangular
	WindowHamming
	WindowBlackman
	WindowBartlett
	WindowFlatTop
)

var windowNames = map[Window]string{
	WindowHann:        "hann",
	WindowRectangular: "rectangular",
	WindowHamming:     "hamming",
	WindowBlackman:    "blackman",
	WindowBartlett:    "bartlett",
	WindowFlatTop:     "flattop",
}

func (w Window) String() string {
	if name, ok := windowNames[w]; ok {
		return name
	}
	return fmt.Sprintf("Window(%d)", int(w))
}

// ParseWindow returns the window with the given case-insensitive name.
func ParseWindow(name string) (Window, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for w, n := range windowNames {
		if n == key {
			return w, nil
		}
	}
	return WindowHann, fmt.Errorf("thd window is invalid: %q", name)
}

func (w Window) coefficients(n int) []float64 {
	switch w {
	case WindowRectangular:
		return window.Rectangular(n)
	case WindowHamming:
		return window.Hamming(n)
	case WindowBlackman:
		return window.Blackman(n)
	case WindowBartlett:
		return window.Bartlett(n)
	case WindowFlatTop:
		return window.FlatTop(n)
	default:
		return window.Hann(n)
	}
}

// captureBins is the half-width of the main lobe in bins. Energy within
// it is attributed to the bin being measured.
func (w Window) captureBins() int {
	switch w {
	case WindowRectangular:
		return 1
	case WindowBlackman:
		return 3
	case WindowFlatTop:
		return 5
	default:
		return 2
	}
}
