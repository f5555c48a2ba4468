package spectrum

import (
	"errors"
	"fmt"
	"math/bits"
	"sync"

	algofft "github.com/MeKo-Christian/algo-fft"

	"github.com/cwbudde/algo-rfscope/dsp/core"
	"github.com/cwbudde/algo-rfscope/dsp/window"
)

const defaultFloorDB = -120.0

var errEmptyFrame = errors.New("spectrum: frame must not be empty")

type fftPlan interface {
	Forward(dst, src []complex128) error
}

// Spectrum is a one-sided amplitude spectrum of a real frame.
type Spectrum struct {
	FreqHz      []float64 `json:"freqHz"`
	MagnitudeDB []float64 `json:"magnitudeDb"`
	FFTSize     int       `json:"fftSize"`
	Window      string    `json:"window"`
}

// Peak returns the frequency and level of the strongest non-DC bin.
func (s Spectrum) Peak() (freqHz, levelDB float64) {
	if len(s.MagnitudeDB) < 2 {
		return 0, defaultFloorDB
	}

	best := 1
	for k := 2; k < len(s.MagnitudeDB); k++ {
		if s.MagnitudeDB[k] > s.MagnitudeDB[best] {
			best = k
		}
	}

	return s.FreqHz[best], s.MagnitudeDB[best]
}

// Analyzer computes windowed FFT spectra. Frames are zero-padded to the next
// power of two. An Analyzer caches its FFT plan and scratch buffers and is
// safe for concurrent use.
type Analyzer struct {
	win     window.Type
	floorDB float64

	mu      sync.Mutex
	size    int
	plan    fftPlan
	input   []complex128
	output  []complex128
	scratch []float64
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithWindow selects the analysis window (Hann by default).
func WithWindow(t window.Type) Option {
	return func(a *Analyzer) {
		a.win = t
	}
}

// WithFloorDB sets the level reported for empty bins (default -120 dB).
func WithFloorDB(db float64) Option {
	return func(a *Analyzer) {
		if core.IsFinite(db) {
			a.floorDB = db
		}
	}
}

// NewAnalyzer creates an Analyzer.
func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{win: window.TypeHann, floorDB: defaultFloorDB}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// Window returns the configured analysis window.
func (a *Analyzer) Window() window.Type { return a.win }

// Analyze returns the amplitude spectrum of frame in dB relative to a
// full-scale sinusoid: a bin-centred sine of amplitude A reads 20*log10(A).
func (a *Analyzer) Analyze(frame []float64, sampleRate float64) (Spectrum, error) {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return Spectrum{}, fmt.Errorf("spectrum: sample rate must be > 0: %v", sampleRate)
	}

	if len(frame) == 0 {
		return Spectrum{}, errEmptyFrame
	}

	coeffs := window.Generate(a.win, len(frame), window.WithPeriodic())
	gain, err := window.CoherentGain(coeffs)
	if err != nil {
		return Spectrum{}, fmt.Errorf("spectrum: %w", err)
	}

	mags, n, err := a.forwardMagnitudes(frame, coeffs)
	if err != nil {
		return Spectrum{}, err
	}

	norm := 1 / (float64(len(frame)) * gain)
	out := Spectrum{
		FreqHz:      make([]float64, len(mags)),
		MagnitudeDB: make([]float64, len(mags)),
		FFTSize:     n,
		Window:      a.win.String(),
	}
	for k, m := range mags {
		amp := m * norm
		if k != 0 && k != n/2 {
			amp *= 2
		}
		out.FreqHz[k] = float64(k) * sampleRate / float64(n)
		out.MagnitudeDB[k] = core.LinearToDB(amp, a.floorDB)
	}

	return out, nil
}

// forwardMagnitudes applies coeffs to frame, zero-pads it, runs the FFT and
// returns the unnormalized magnitudes of bins [0, n/2] with the FFT size n.
func (a *Analyzer) forwardMagnitudes(frame, coeffs []float64) ([]float64, int, error) {
	if len(frame) == 0 {
		return nil, 0, errEmptyFrame
	}

	n := nextPow2(len(frame))

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.plan == nil || a.size != n {
		plan, err := algofft.NewPlan64(n)
		if err != nil {
			return nil, 0, fmt.Errorf("spectrum: init fft plan: %w", err)
		}
		a.plan = plan
		a.size = n
	}

	a.input = core.EnsureLen(a.input, n)
	a.output = core.EnsureLen(a.output, n)

	a.scratch = core.EnsureLen(a.scratch, len(frame))
	copy(a.scratch, frame)
	if err := window.ApplyCoefficientsInPlace(a.scratch, coeffs); err != nil {
		return nil, 0, fmt.Errorf("spectrum: %w", err)
	}

	core.LoadReal(a.input, a.scratch)

	if err := a.plan.Forward(a.output, a.input); err != nil {
		return nil, 0, fmt.Errorf("spectrum: fft: %w", err)
	}

	return Magnitude(a.output[:n/2+1]), n, nil
}

func nextPow2(n int) int {
	if n <= 2 {
		return 2
	}
	return 1 << bits.Len(uint(n-1))
}
