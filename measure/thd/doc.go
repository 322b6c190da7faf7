// Package thd measures harmonic distortion of a steady tone.
//
// AnalyzeSignal windows a time-domain capture, transforms it with
// algo-fft and sums the spectral energy found at integer multiples of the
// fundamental. Results are ratios relative to the fundamental amplitude:
// THD, THD+N, the odd and even harmonic split and the individual harmonic
// levels.
package thd
