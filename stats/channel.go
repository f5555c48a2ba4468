package stats

import (
	"math"

	"github.com/cwbudde/algo-rfscope/dsp/core"
	"github.com/cwbudde/algo-rfscope/dsp/signal"
)

// FloorDB is the lowest level reported by the dB fields.
const FloorDB = -120.0

// Channel holds time-domain statistics of one sample column.
type Channel struct {
	Length        int     `json:"length"`
	Mean          float64 `json:"mean"`
	RMS           float64 `json:"rms"`
	RMSDB         float64 `json:"rmsDb"`
	Min           float64 `json:"min"`
	Max           float64 `json:"max"`
	Peak          float64 `json:"peak"` // max(|min|, |max|)
	PeakToPeak    float64 `json:"peakToPeak"`
	CrestFactor   float64 `json:"crestFactor"` // peak / RMS, 0 for silence
	StdDev        float64 `json:"stdDev"`
	ZeroCrossings int     `json:"zeroCrossings"`
}

// ZeroCrossingFreq estimates the dominant frequency in Hz from the crossing
// count, assuming two crossings per period.
func (c Channel) ZeroCrossingFreq(sampleRate float64) float64 {
	if c.Length < 2 {
		return 0
	}

	return float64(c.ZeroCrossings) * sampleRate / (2 * float64(c.Length-1))
}

// Accumulator gathers Channel statistics incrementally. The zero value is
// ready to use.
type Accumulator struct {
	n        int
	mean     float64
	m2       float64
	sumSq    float64
	min      float64
	max      float64
	lastSign int
	zc       int
}

// Add accumulates one sample. Exact zeros do not end a half-period: a
// crossing is counted when the sign differs from the last non-zero sample.
func (a *Accumulator) Add(x float64) {
	a.n++

	delta := x - a.mean
	a.mean += delta / float64(a.n)
	a.m2 += delta * (x - a.mean)

	a.sumSq += x * x

	if a.n == 1 {
		a.min, a.max = x, x
	} else {
		a.min = math.Min(a.min, x)
		a.max = math.Max(a.max, x)
	}

	sign := 0
	switch {
	case x > 0:
		sign = 1
	case x < 0:
		sign = -1
	}
	if sign != 0 {
		if a.lastSign != 0 && sign != a.lastSign {
			a.zc++
		}
		a.lastSign = sign
	}
}

// AddBlock accumulates every sample of xs.
func (a *Accumulator) AddBlock(xs []float64) {
	for _, x := range xs {
		a.Add(x)
	}
}

// Result returns the statistics of everything added so far.
func (a *Accumulator) Result() Channel {
	if a.n == 0 {
		return Channel{RMSDB: FloorDB}
	}

	nf := float64(a.n)
	rms := math.Sqrt(a.sumSq / nf)
	peak := math.Max(math.Abs(a.min), math.Abs(a.max))

	var crest float64
	if rms > 0 {
		crest = peak / rms
	}

	return Channel{
		Length:        a.n,
		Mean:          a.mean,
		RMS:           rms,
		RMSDB:         core.LinearToDB(rms, FloorDB),
		Min:           a.min,
		Max:           a.max,
		Peak:          peak,
		PeakToPeak:    a.max - a.min,
		CrestFactor:   crest,
		StdDev:        math.Sqrt(a.m2 / nf),
		ZeroCrossings: a.zc,
	}
}

// Reset clears the accumulator for reuse.
func (a *Accumulator) Reset() {
	*a = Accumulator{}
}

// Measure returns the statistics of xs.
func Measure(xs []float64) Channel {
	var a Accumulator
	a.AddBlock(xs)
	return a.Result()
}

// Frame holds the statistics of every output column of a frame.
type Frame struct {
	Raw      Channel `json:"raw"`
	Filtered Channel `json:"filtered"`
	Envelope Channel `json:"envelope"`
}

// MeasureFrame computes Frame statistics in one pass over samples.
func MeasureFrame(samples []signal.Sample) Frame {
	var raw, filtered, envelope Accumulator
	for _, s := range samples {
		raw.Add(s.Raw)
		filtered.Add(s.Filtered)
		envelope.Add(s.Envelope)
	}

	return Frame{
		Raw:      raw.Result(),
		Filtered: filtered.Result(),
		Envelope: envelope.Result(),
	}
}
