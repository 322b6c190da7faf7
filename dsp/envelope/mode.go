package envelope

import (
	"fmt"
	"strings"
)

// Mode selects the detector that produces the target envelope.
type Mode int

const (
	// ModePeak follows the rectified input directly.
	ModePeak Mode = iota
	// ModeRMS follows the square root of a 10 ms power average.
	ModeRMS
	// ModeVintage uses an instant-attack, exponentially decaying peak hold.
	ModeVintage
	// ModeVactrol models an LED/photoresistor opto cell.
	ModeVactrol
)

var modeNames = [...]string{
	ModePeak:    "peak",
	ModeRMS:     "rms",
	ModeVintage: "vintage",
	ModeVactrol: "vactrol",
}

// String returns the lower-case mode name.
func (m Mode) String() string {
	if !m.Valid() {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

// ParseMode resolves a case-insensitive mode name.
func ParseMode(name string) (Mode, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for m, n := range modeNames {
		if n == name {
			return Mode(m), nil
		}
	}
	return ModePeak, fmt.Errorf("envelope mode is invalid: %q", name)
}

// Valid reports whether m is one of the defined modes.
func (m Mode) Valid() bool {
	return m >= ModePeak && m <= ModeVactrol
}
