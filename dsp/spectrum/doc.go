// Package spectrum analyzes scope frames in the frequency domain: a windowed
// FFT magnitude spectrum, single-bin Goertzel tone levels, and a modulation
// depth estimate for detected envelopes.
package spectrum
