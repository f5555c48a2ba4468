package signal

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/cwbudde/algo-rfscope/dsp/core"
	"github.com/cwbudde/algo-rfscope/dsp/filter/ema"
	"golang.org/x/exp/rand"
)

const (
	timePlaces  = 4
	valuePlaces = 3
)

// MaxCount is the longest run Params.Validate vouches for.
const MaxCount = 100000

// ErrInvalidParams is wrapped by every error returned from Params.Validate.
var ErrInvalidParams = errors.New("signal: invalid params")

// Params configures one simulation run.
type Params struct {
	SampleRate     float64 `json:"sampleRate" yaml:"sample_rate"`
	CarrierFreq    float64 `json:"carrierFreq" yaml:"carrier_freq"`
	ModulatingFreq float64 `json:"modulatingFreq" yaml:"modulating_freq"`
	NoiseLevel     float64 `json:"noiseLevel" yaml:"noise_level"`
	// CutoffFreq is carried for clients but not used by the filters.
	CutoffFreq float64 `json:"cutoffFreq" yaml:"cutoff_freq"`
}

// DefaultParams returns the dashboard start-up parameters.
func DefaultParams() Params {
	return Params{
		SampleRate:     2000,
		CarrierFreq:    100,
		ModulatingFreq: 5,
		NoiseLevel:     0.2,
		CutoffFreq:     50,
	}
}

// Validate checks that p can be simulated for up to MaxCount samples without
// producing non-finite samples. Generate does not call it.
func (p Params) Validate() error {
	if !core.IsFinite(p.SampleRate) || p.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate must be > 0: %v", ErrInvalidParams, p.SampleRate)
	}

	span := MaxCount / p.SampleRate
	if !core.IsFinite(span) {
		return fmt.Errorf("%w: sample rate too small: %v", ErrInvalidParams, p.SampleRate)
	}

	fields := []struct {
		name  string
		value float64
	}{
		{"carrier frequency", p.CarrierFreq},
		{"modulating frequency", p.ModulatingFreq},
		{"noise level", p.NoiseLevel},
		{"cutoff frequency", p.CutoffFreq},
	}
	for _, f := range fields {
		if !core.IsFinite(f.value) {
			return fmt.Errorf("%w: %s must be finite: %v", ErrInvalidParams, f.name, f.value)
		}
	}

	// The largest phase reached is 2*pi*f*span.
	for _, f := range fields[:2] {
		if !core.IsFinite(2 * math.Pi * f.value * span) {
			return fmt.Errorf("%w: %s too large for sample rate %v: %v", ErrInvalidParams, f.name, p.SampleRate, f.value)
		}
	}

	return nil
}

// Sample is one emitted point of a simulation run.
type Sample struct {
	Time     float64 `json:"time"`
	Raw      float64 `json:"raw"`
	Filtered float64 `json:"filtered"`
	Envelope float64 `json:"envelope"`
}

// NoiseSource yields uniform draws in [0, 1).
type NoiseSource interface {
	Float64() float64
}

// globalSource draws from the package-level generator of x/exp/rand, which
// sits on a LockedSource and is safe for concurrent use.
type globalSource struct{}

func (globalSource) Float64() float64 { return rand.Float64() }

func init() {
	// The x/exp/rand global starts from a fixed seed.
	rand.Seed(uint64(time.Now().UnixNano()))
}

// Generator runs AM simulations with a configurable noise source.
type Generator struct {
	noise  NoiseSource
	seed   uint64
	seeded bool
}

// Option configures a Generator.
type Option func(*Generator)

// WithSeed makes every run draw its noise from a fresh source seeded with
// seed, so identical params always yield identical output.
func WithSeed(seed uint64) Option {
	return func(g *Generator) {
		g.seed = seed
		g.seeded = true
	}
}

// WithNoiseSource draws noise from src. src is shared by all runs and must
// be safe for concurrent use if the generator is. WithSeed takes precedence.
func WithNoiseSource(src NoiseSource) Option {
	return func(g *Generator) {
		if src != nil {
			g.noise = src
		}
	}
}

// NewGenerator creates a Generator. Without options noise is drawn from the
// clock-seeded package-level x/exp/rand generator.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{noise: globalSource{}}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Seed returns the configured seed and whether one is set.
func (g *Generator) Seed() (uint64, bool) {
	return g.seed, g.seeded
}

var defaultGenerator = NewGenerator()

// Generate runs one simulation with the default generator.
func Generate(p Params, count int) []Sample {
	return defaultGenerator.Generate(p, count)
}

// Generate simulates count samples of a sine carrier at p.CarrierFreq whose
// amplitude follows 0.5*(1+sin) at p.ModulatingFreq, adds uniform noise
// scaled by p.NoiseLevel, and reports the low-pass filtered signal and the
// detected envelope alongside it.
//
// Filter state starts at zero on every call and is carried at full precision;
// only the emitted values are rounded (time to 4 places, the rest to 3).
// p is not validated: a non-positive sample rate yields non-finite times.
func (g *Generator) Generate(p Params, count int) []Sample {
	if count <= 0 {
		return []Sample{}
	}

	noise := g.noise
	if g.seeded {
		noise = rand.New(rand.NewSource(g.seed))
	}

	lowPass := ema.LowPass()
	envelope := ema.Envelope()

	wc := 2 * math.Pi * p.CarrierFreq
	wm := 2 * math.Pi * p.ModulatingFreq

	out := make([]Sample, count)
	for i := range out {
		t := float64(i) / p.SampleRate

		carrier := math.Sin(wc * t)
		modulator := 0.5 * (1 + math.Sin(wm*t))
		n := (noise.Float64() - 0.5) * p.NoiseLevel
		raw := carrier*modulator + n

		out[i] = Sample{
			Time:     core.Round(t, timePlaces),
			Raw:      core.Round(raw, valuePlaces),
			Filtered: core.Round(lowPass.ProcessSample(raw), valuePlaces),
			Envelope: core.Round(envelope.ProcessSample(raw), valuePlaces),
		}
	}

	return out
}

// Times returns the time column of samples.
func Times(samples []Sample) []float64 {
	return column(samples, func(s Sample) float64 { return s.Time })
}

// Raw returns the raw signal column of samples.
func Raw(samples []Sample) []float64 {
	return column(samples, func(s Sample) float64 { return s.Raw })
}

// Filtered returns the low-pass column of samples.
func Filtered(samples []Sample) []float64 {
	return column(samples, func(s Sample) float64 { return s.Filtered })
}

// Envelope returns the envelope column of samples.
func Envelope(samples []Sample) []float64 {
	return column(samples, func(s Sample) float64 { return s.Envelope })
}

// SettledEnvelope returns the envelope column without the detector's
// start-up transient. At most half of samples is dropped.
func SettledEnvelope(samples []Sample) []float64 {
	skip := min(ema.SettleSamples(ema.EnvelopeAlpha), len(samples)/2)
	return Envelope(samples[skip:])
}

func column(samples []Sample, pick func(Sample) float64) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = pick(s)
	}
	return out
}
