package spectrum

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-rfscope/dsp/core"
)

// Goertzel evaluates a single DFT term of a block of samples.
//
// Power() equals |X[k]|^2 of a DFT of the processed block. Leakage applies
// when the target frequency is not bin-centred for the block length.
type Goertzel struct {
	frequency  float64
	sampleRate float64
	coeff      float64
	s0, s1     float64
	n          int
}

// NewGoertzel creates an analyzer for frequency, which must lie in
// [0, sampleRate/2].
func NewGoertzel(frequency, sampleRate float64) (*Goertzel, error) {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return nil, fmt.Errorf("goertzel: sample rate must be > 0: %v", sampleRate)
	}

	if frequency < 0 || frequency > sampleRate/2 || !core.IsFinite(frequency) {
		return nil, fmt.Errorf("goertzel: frequency must be between 0 and sampleRate/2: %v", frequency)
	}

	return &Goertzel{
		frequency:  frequency,
		sampleRate: sampleRate,
		coeff:      2 * math.Cos(2*math.Pi*frequency/sampleRate),
	}, nil
}

// Reset clears the internal state.
func (g *Goertzel) Reset() {
	g.s0, g.s1, g.n = 0, 0, 0
}

// ProcessBlock updates the internal state with a block of samples.
func (g *Goertzel) ProcessBlock(input []float64) {
	s0, s1 := g.s0, g.s1

	coeff := g.coeff
	for _, x := range input {
		s := x + coeff*s0 - s1
		s1 = s0
		s0 = s
	}

	g.s0, g.s1 = s0, s1
	g.n += len(input)
}

// Power returns the squared magnitude of the frequency component.
func (g *Goertzel) Power() float64 {
	return g.s0*g.s0 + g.s1*g.s1 - g.coeff*g.s0*g.s1
}

// Amplitude returns the peak amplitude of a sinusoid at the target
// frequency that would produce the accumulated power. At DC and Nyquist the
// term has no mirror image, so it reports the offset or alternating level
// directly.
func (g *Goertzel) Amplitude() float64 {
	p := g.Power()
	if p <= 0 || g.n == 0 {
		return 0
	}

	amp := math.Sqrt(p) / float64(g.n)
	if g.frequency == 0 || g.frequency == g.sampleRate/2 {
		return amp
	}
	return 2 * amp
}

// ToneLevel is the detected level of one frequency in a frame.
type ToneLevel struct {
	FreqHz    float64 `json:"freqHz"`
	Amplitude float64 `json:"amplitude"`
	LevelDB   float64 `json:"levelDb"`
}

// ToneLevels measures the amplitude of each frequency in frame.
func ToneLevels(frame []float64, sampleRate float64, freqs ...float64) ([]ToneLevel, error) {
	if len(frame) == 0 {
		return nil, errEmptyFrame
	}

	out := make([]ToneLevel, 0, len(freqs))
	for _, f := range freqs {
		g, err := NewGoertzel(f, sampleRate)
		if err != nil {
			return nil, err
		}

		g.ProcessBlock(frame)
		amp := g.Amplitude()
		out = append(out, ToneLevel{
			FreqHz:    f,
			Amplitude: amp,
			LevelDB:   core.LinearToDB(amp, defaultFloorDB),
		})
	}

	return out, nil
}

// ModulationDepth estimates the AM modulation index of an envelope series
// as (max-min)/(max+min). It returns 0 for empty or all-zero input.
func ModulationDepth(envelope []float64) float64 {
	if len(envelope) == 0 {
		return 0
	}

	lo, hi := envelope[0], envelope[0]
	for _, v := range envelope[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	if hi+lo <= 0 {
		return 0
	}

	return (hi - lo) / (hi + lo)
}
