package ema

import (
	"fmt"
	"math"
)

const (
	// LowPassAlpha is the smoothing factor of the scope low-pass filter.
	LowPassAlpha = 0.1
	// EnvelopeAlpha is the smoothing factor of the scope envelope detector.
	EnvelopeAlpha = 0.05
	// EnvelopeGain scales the detector output for display.
	EnvelopeGain = 2.0
)

// Smoother is a first-order exponential moving-average low-pass filter.
type Smoother struct {
	alpha float64
	y     float64
}

// New creates a Smoother with alpha in (0, 1].
func New(alpha float64) (*Smoother, error) {
	if err := validateAlpha(alpha); err != nil {
		return nil, err
	}

	return &Smoother{alpha: alpha}, nil
}

// Alpha returns the smoothing factor.
func (s *Smoother) Alpha() float64 { return s.alpha }

// State returns the last output (the value fed back on the next sample).
func (s *Smoother) State() float64 { return s.y }

// Reset clears the filter state to zero.
func (s *Smoother) Reset() { s.y = 0 }

// ProcessSample filters one sample.
func (s *Smoother) ProcessSample(x float64) float64 {
	s.y = s.alpha*x + (1-s.alpha)*s.y
	return s.y
}

// ProcessBlock filters buf in place.
func (s *Smoother) ProcessBlock(buf []float64) {
	a := s.alpha
	y := s.y
	for i, x := range buf {
		y = a*x + (1-a)*y
		buf[i] = y
	}
	s.y = y
}

// EnvelopeDetector recovers the amplitude of a modulated carrier by half-wave
// rectification followed by an EMA smoother. Output is scaled by gain; the
// internal state is kept unscaled.
type EnvelopeDetector struct {
	smoother Smoother
	gain     float64
}

// NewEnvelopeDetector creates a detector with the given smoothing factor and
// output gain.
func NewEnvelopeDetector(alpha, gain float64) (*EnvelopeDetector, error) {
	if err := validateAlpha(alpha); err != nil {
		return nil, err
	}
	if math.IsNaN(gain) || math.IsInf(gain, 0) {
		return nil, fmt.Errorf("ema: envelope gain must be finite: %v", gain)
	}

	return &EnvelopeDetector{
		smoother: Smoother{alpha: alpha},
		gain:     gain,
	}, nil
}

// State returns the unscaled smoother state.
func (d *EnvelopeDetector) State() float64 { return d.smoother.y }

// Reset clears the detector state to zero.
func (d *EnvelopeDetector) Reset() { d.smoother.Reset() }

// ProcessSample rectifies and smooths one sample and returns the scaled
// envelope.
func (d *EnvelopeDetector) ProcessSample(x float64) float64 {
	return d.gain * d.smoother.ProcessSample(math.Max(0, x))
}

// ProcessBlock writes the scaled envelope of buf back into buf.
func (d *EnvelopeDetector) ProcessBlock(buf []float64) {
	for i, x := range buf {
		buf[i] = d.ProcessSample(x)
	}
}

// CutoffForAlpha returns the -3 dB corner frequency in Hz of an EMA with the
// given alpha at sampleRate. When the response never drops by 3 dB below
// Nyquist, sampleRate/2 is returned.
func CutoffForAlpha(alpha, sampleRate float64) (float64, error) {
	if err := validateAlpha(alpha); err != nil {
		return 0, err
	}
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return 0, fmt.Errorf("ema: sample rate must be > 0: %v", sampleRate)
	}

	nyquist := sampleRate / 2
	if alpha == 1 {
		return nyquist, nil
	}

	// |H(w)|^2 = 1/2  =>  cos(w) = (2 - 2a - a^2) / (2(1-a))
	c := (2 - 2*alpha - alpha*alpha) / (2 * (1 - alpha))
	if c <= -1 {
		return nyquist, nil
	}

	return math.Acos(c) * sampleRate / (2 * math.Pi), nil
}

// MagnitudeAt returns |H| of an EMA with the given alpha at freqHz.
func MagnitudeAt(alpha, freqHz, sampleRate float64) float64 {
	w := 2 * math.Pi * freqHz / sampleRate
	b := 1 - alpha
	den := 1 - 2*b*math.Cos(w) + b*b
	if den <= 0 {
		return 1
	}

	return alpha / math.Sqrt(den)
}

// SettleSamples returns how many samples a smoother started from zero needs
// to come within e^-3 (about 5%) of a constant input. Invalid alphas yield 0.
func SettleSamples(alpha float64) int {
	if validateAlpha(alpha) != nil || alpha == 1 {
		return 0
	}

	return int(math.Ceil(-3 / math.Log1p(-alpha)))
}

func validateAlpha(alpha float64) error {
	if !(alpha > 0 && alpha <= 1) {
		return fmt.Errorf("ema: alpha must be in (0,1]: %v", alpha)
	}

	return nil
}

// LowPass returns a Smoother configured with LowPassAlpha.
func LowPass() *Smoother {
	return &Smoother{alpha: LowPassAlpha}
}

// Envelope returns an EnvelopeDetector configured with EnvelopeAlpha and
// EnvelopeGain.
func Envelope() *EnvelopeDetector {
	return &EnvelopeDetector{
		smoother: Smoother{alpha: EnvelopeAlpha},
		gain:     EnvelopeGain,
	}
}
