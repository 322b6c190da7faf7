// Package engine wires the envelope follower, the modulation coupling and
// one harmonic processor per channel into a streaming saturation effect.
//
// Per frame the follower reads the undriven input (the louder of the two
// channels in stereo), the coupling turns the envelope into a distortion
// amount, and every channel processor receives that same amount before it
// processes its driven sample. Output gain and a dry/wet mix are applied
// last.
//
// An Engine is not safe for concurrent use.
package engine
