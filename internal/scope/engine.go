// Package scope runs the live scope: it regenerates a frame of simulated
// samples on a fixed cadence and hands the newest frame to subscribers.
package scope

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cwbudde/algo-rfscope/dsp/signal"
)

const (
	// DefaultFrameSize is the number of samples per frame.
	DefaultFrameSize = 400
	// DefaultInterval is the frame cadence.
	DefaultInterval = 100 * time.Millisecond
	// MaxFrameSize bounds frame and one-off request sizes.
	MaxFrameSize = signal.MaxCount
)

// Frame is one complete scope buffer. Frames are replaced, never mutated.
type Frame struct {
	Seq         uint64          `json:"seq"`
	Params      signal.Params   `json:"params"`
	Samples     []signal.Sample `json:"samples"`
	GeneratedAt time.Time       `json:"generatedAt"`
}

// Engine owns the current parameter set and the latest frame.
type Engine struct {
	gen       *signal.Generator
	frameSize int
	interval  time.Duration
	logger    *slog.Logger
	now       func() time.Time

	mu      sync.RWMutex
	params  signal.Params
	version uint64 // bumped by SetParams
	latest  *Frame
	seq     uint64

	subMu   sync.Mutex
	subs    map[uint64]chan Frame
	nextSub uint64
}

// Option configures an Engine.
type Option func(*Engine)

// WithParams sets the initial parameters (signal.DefaultParams otherwise).
func WithParams(p signal.Params) Option {
	return func(e *Engine) { e.params = p }
}

// WithFrameSize sets the number of samples per frame.
func WithFrameSize(n int) Option {
	return func(e *Engine) { e.frameSize = n }
}

// WithInterval sets the frame cadence.
func WithInterval(d time.Duration) Option {
	return func(e *Engine) { e.interval = d }
}

// WithGenerator replaces the signal generator, e.g. with a seeded one.
func WithGenerator(g *signal.Generator) Option {
	return func(e *Engine) {
		if g != nil {
			e.gen = g
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine creates a configured scope engine.
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{
		gen:       signal.NewGenerator(),
		frameSize: DefaultFrameSize,
		interval:  DefaultInterval,
		logger:    slog.Default(),
		now:       time.Now,
		params:    signal.DefaultParams(),
		subs:      make(map[uint64]chan Frame),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}

	if e.frameSize <= 0 || e.frameSize > MaxFrameSize {
		return nil, fmt.Errorf("scope: frame size must be in [1,%d]: %d", MaxFrameSize, e.frameSize)
	}
	if e.interval <= 0 {
		return nil, fmt.Errorf("scope: interval must be > 0: %v", e.interval)
	}
	if err := e.params.Validate(); err != nil {
		return nil, fmt.Errorf("scope: %w", err)
	}

	return e, nil
}

// FrameSize returns the number of samples per frame.
func (e *Engine) FrameSize() int { return e.frameSize }

// Interval returns the frame cadence.
func (e *Engine) Interval() time.Duration { return e.interval }

// Generator returns the signal generator used for frames.
func (e *Engine) Generator() *signal.Generator { return e.gen }

// Params returns the current parameter set.
func (e *Engine) Params() signal.Params {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.params
}

// SetParams validates and installs p, then regenerates the frame right away.
func (e *Engine) SetParams(p signal.Params) error {
	if err := p.Validate(); err != nil {
		return err
	}

	e.mu.Lock()
	e.params = p
	e.version++
	e.mu.Unlock()

	e.logger.Debug("scope params updated",
		"sampleRate", p.SampleRate,
		"carrierFreq", p.CarrierFreq,
		"modulatingFreq", p.ModulatingFreq,
		"noiseLevel", p.NoiseLevel)

	e.Tick()
	return nil
}

// Tick generates a fresh frame from the current params, stores it as the
// latest frame and publishes it to subscribers. A frame whose params were
// replaced while it was being generated is discarded and regenerated, so
// the latest frame never reverts to superseded params. Frames reach
// subscribers in Seq order.
func (e *Engine) Tick() Frame {
	for {
		e.mu.RLock()
		p, version := e.params, e.version
		e.mu.RUnlock()

		samples := e.gen.Generate(p, e.frameSize)

		e.mu.Lock()
		if e.version != version {
			e.mu.Unlock()
			continue
		}
		e.seq++
		f := Frame{
			Seq:         e.seq,
			Params:      p,
			Samples:     samples,
			GeneratedAt: e.now(),
		}
		e.latest = &f
		e.publish(f)
		e.mu.Unlock()
		return f
	}
}

// Latest returns the most recent frame, generating one if none exists yet.
func (e *Engine) Latest() Frame {
	e.mu.RLock()
	f := e.latest
	e.mu.RUnlock()

	if f == nil {
		return e.Tick()
	}
	return *f
}

// Subscribe returns a channel that always holds at most the newest frame;
// a slow reader skips stale frames instead of queueing them. The returned
// func unsubscribes and closes the channel.
func (e *Engine) Subscribe() (<-chan Frame, func()) {
	ch := make(chan Frame, 1)

	e.subMu.Lock()
	id := e.nextSub
	e.nextSub++
	e.subs[id] = ch
	e.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			e.subMu.Lock()
			delete(e.subs, id)
			e.subMu.Unlock()
			close(ch)
		})
	}
}

// Subscribers returns the number of active subscriptions.
func (e *Engine) Subscribers() int {
	e.subMu.Lock()
	defer e.subMu.Unlock()
	return len(e.subs)
}

// publish must be called with e.mu held.
func (e *Engine) publish(f Frame) {
	e.subMu.Lock()
	defer e.subMu.Unlock()

	for _, ch := range e.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- f:
		default:
		}
	}
}

// Run ticks at the configured interval until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	e.logger.Info("scope running", "frameSize", e.frameSize, "interval", e.interval)

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	e.Tick()
	for {
		select {
		case <-ctx.Done():
			e.logger.Info("scope stopped")
			return nil
		case <-ticker.C:
			e.Tick()
		}
	}
}
