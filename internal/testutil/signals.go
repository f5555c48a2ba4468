package testutil

import "math"

// DeterministicSine generates a deterministic sine wave.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// ReferenceAM returns the noise-free AM signal
// sin(2*pi*fc*t) * 0.5*(1+sin(2*pi*fm*t)) at t = i/sampleRate, unrounded.
func ReferenceAM(carrierHz, modulatingHz, sampleRate float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		t := float64(i) / sampleRate
		out[i] = math.Sin(2*math.Pi*carrierHz*t) * 0.5 * (1 + math.Sin(2*math.Pi*modulatingHz*t))
	}
	return out
}

// DC generates a constant-valued signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}
