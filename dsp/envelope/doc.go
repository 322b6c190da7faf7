// Package envelope provides a streaming amplitude envelope follower with
// selectable detector ballistics.
//
// Included detector modes:
//   - ModePeak: rectified input, shaped only by attack/release ballistics.
//   - ModeRMS: 10 ms exponential power average, square-rooted.
//   - ModeVintage: instant-attack peak hold with multiplicative decay,
//     modelled on an analog peak detector.
//   - ModeVactrol: opto-isolator model with its own slew-limited attack,
//     faster response to large steps and a slow photoresistor "memory"
//     on release. The shared attack/release stage is bypassed.
//
// Every mode feeds a one-pole output smoother and an optional gentle
// curve exponent in [1.0, 1.2]. The result is scaled by an amount and
// clamped to [0, 1].
//
// A Follower is single-threaded and not safe for concurrent use. Parameter
// setters recompute cached coefficients and are intended to run between
// blocks, not inside the per-sample loop.
package envelope
