package stats

import (
	"math"

	"github.com/cwbudde/algo-rfscope/dsp/spectrum"
)

// RolloffFraction is the energy fraction used for Shape.RolloffHz.
const RolloffFraction = 0.85

// Shape describes the distribution of energy in a spectrum.
type Shape struct {
	CentroidHz  float64 `json:"centroidHz"`
	SpreadHz    float64 `json:"spreadHz"`
	Flatness    float64 `json:"flatness"` // Wiener entropy in [0,1], DC excluded
	RolloffHz   float64 `json:"rolloffHz"`
	BandwidthHz float64 `json:"bandwidthHz"` // -3 dB width around the peak
}

// SpectralShape computes shape descriptors of s. Levels are converted from
// dB back to linear magnitude first.
func SpectralShape(s spectrum.Spectrum) Shape {
	n := min(len(s.MagnitudeDB), len(s.FreqHz))
	if n < 2 {
		return Shape{}
	}

	mag := make([]float64, n)
	for i, db := range s.MagnitudeDB[:n] {
		mag[i] = math.Pow(10, db/20)
	}
	freq := s.FreqHz[:n]

	var sum, energy float64
	for _, v := range mag {
		sum += v
		energy += v * v
	}

	var sh Shape
	sh.CentroidHz, sh.SpreadHz = centroidSpread(mag, freq, sum)
	sh.Flatness = flatness(mag)
	sh.RolloffHz = rolloff(mag, freq, RolloffFraction*energy)
	sh.BandwidthHz = bandwidth(mag, freq)
	return sh
}

func centroidSpread(mag, freq []float64, sum float64) (centroid, spread float64) {
	if sum == 0 {
		return 0, 0
	}

	for i, v := range mag {
		centroid += freq[i] * v
	}
	centroid /= sum

	for i, v := range mag {
		d := freq[i] - centroid
		spread += d * d * v
	}

	return centroid, math.Sqrt(spread / sum)
}

func flatness(mag []float64) float64 {
	bins := mag[1:]

	var sumLin, sumLog float64
	for _, v := range bins {
		if v <= 0 {
			return 0
		}
		sumLin += v
		sumLog += math.Log(v)
	}

	meanLin := sumLin / float64(len(bins))
	if meanLin == 0 {
		return 0
	}

	return math.Exp(sumLog/float64(len(bins))) / meanLin
}

func rolloff(mag, freq []float64, threshold float64) float64 {
	if threshold == 0 {
		return 0
	}

	var cum float64
	for i, v := range mag {
		cum += v * v
		if cum >= threshold {
			return freq[i]
		}
	}

	return freq[len(freq)-1]
}

func bandwidth(mag, freq []float64) float64 {
	peak := 0
	for i, v := range mag {
		if v > mag[peak] {
			peak = i
		}
	}
	if mag[peak] == 0 {
		return 0
	}

	threshold := mag[peak] / math.Sqrt2

	lower := freq[0]
	for i := peak; i >= 1; i-- {
		if mag[i-1] <= threshold {
			lower = interpFreq(freq[i-1], freq[i], mag[i-1], mag[i], threshold)
			break
		}
	}

	upper := freq[len(freq)-1]
	for i := peak; i < len(mag)-1; i++ {
		if mag[i+1] <= threshold {
			upper = interpFreq(freq[i], freq[i+1], mag[i], mag[i+1], threshold)
			break
		}
	}

	return math.Max(upper-lower, 0)
}

// interpFreq finds where the line between two bins crosses threshold.
func interpFreq(f0, f1, m0, m1, threshold float64) float64 {
	if m1 == m0 {
		return (f0 + f1) / 2
	}

	return f0 + (threshold-m0)/(m1-m0)*(f1-f0)
}
