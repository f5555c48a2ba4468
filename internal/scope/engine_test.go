package scope

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cwbudde/algo-rfscope/dsp/signal"
)

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	opts = append([]Option{WithGenerator(signal.NewGenerator(signal.WithSeed(1)))}, opts...)
	e, err := NewEngine(opts...)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return e
}

func TestNewEngineDefaults(t *testing.T) {
	e := newTestEngine(t)
	if e.FrameSize() != DefaultFrameSize {
		t.Fatalf("FrameSize() = %d, want %d", e.FrameSize(), DefaultFrameSize)
	}
	if e.Interval() != DefaultInterval {
		t.Fatalf("Interval() = %v, want %v", e.Interval(), DefaultInterval)
	}
	if e.Params() != signal.DefaultParams() {
		t.Fatalf("Params() = %+v, want defaults", e.Params())
	}
}

func TestNewEngineValidation(t *testing.T) {
	bad := signal.DefaultParams()
	bad.SampleRate = 0

	tests := []struct {
		name string
		opt  Option
	}{
		{name: "frame size", opt: WithFrameSize(0)},
		{name: "huge frame size", opt: WithFrameSize(MaxFrameSize + 1)},
		{name: "interval", opt: WithInterval(-time.Second)},
		{name: "params", opt: WithParams(bad)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewEngine(tt.opt); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestTickReplacesFrame(t *testing.T) {
	e := newTestEngine(t, WithFrameSize(64))

	f1 := e.Tick()
	f2 := e.Tick()
	if len(f1.Samples) != 64 || len(f2.Samples) != 64 {
		t.Fatalf("frame sizes = %d, %d, want 64", len(f1.Samples), len(f2.Samples))
	}
	if f2.Seq != f1.Seq+1 {
		t.Fatalf("seq = %d after %d", f2.Seq, f1.Seq)
	}
	if got := e.Latest(); got.Seq != f2.Seq {
		t.Fatalf("Latest().Seq = %d, want %d", got.Seq, f2.Seq)
	}
}

func TestLatestGeneratesFirstFrame(t *testing.T) {
	e := newTestEngine(t, WithFrameSize(8))
	f := e.Latest()
	if f.Seq != 1 || len(f.Samples) != 8 {
		t.Fatalf("Latest() = seq %d len %d, want seq 1 len 8", f.Seq, len(f.Samples))
	}
}

func TestSetParams(t *testing.T) {
	e := newTestEngine(t, WithFrameSize(16))

	p := signal.DefaultParams()
	p.CarrierFreq = 250
	if err := e.SetParams(p); err != nil {
		t.Fatalf("SetParams() error = %v", err)
	}
	if e.Params() != p {
		t.Fatalf("Params() = %+v, want %+v", e.Params(), p)
	}
	if got := e.Latest().Params; got != p {
		t.Fatalf("latest frame params = %+v, want %+v", got, p)
	}

	p.SampleRate = -1
	err := e.SetParams(p)
	if !errors.Is(err, signal.ErrInvalidParams) {
		t.Fatalf("SetParams() error = %v, want ErrInvalidParams", err)
	}
	if e.Params().SampleRate != 2000 {
		t.Fatal("invalid params must not be installed")
	}
}

// gatedNoise blocks its first draw until release is closed.
type gatedNoise struct {
	calls   atomic.Int32
	entered chan struct{}
	release chan struct{}
}

func (g *gatedNoise) Float64() float64 {
	if g.calls.Add(1) == 1 {
		close(g.entered)
		<-g.release
	}
	return 0.5
}

func TestTickDiscardsFrameForReplacedParams(t *testing.T) {
	noise := &gatedNoise{entered: make(chan struct{}), release: make(chan struct{})}
	e := newTestEngine(t,
		WithFrameSize(16),
		WithGenerator(signal.NewGenerator(signal.WithNoiseSource(noise))))

	done := make(chan Frame)
	go func() { done <- e.Tick() }()
	<-noise.entered

	p := signal.DefaultParams()
	p.CarrierFreq = 333
	if err := e.SetParams(p); err != nil {
		t.Fatalf("SetParams() error = %v", err)
	}
	close(noise.release)

	var stale Frame
	select {
	case stale = <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Tick did not return")
	}

	if stale.Params.CarrierFreq != 333 {
		t.Fatalf("Tick returned frame with carrier %v, want 333", stale.Params.CarrierFreq)
	}
	latest := e.Latest()
	if latest.Params.CarrierFreq != 333 {
		t.Fatalf("Latest() carrier = %v, want 333", latest.Params.CarrierFreq)
	}
	if latest.Seq != stale.Seq {
		t.Fatalf("Latest().Seq = %d, want %d", latest.Seq, stale.Seq)
	}
}

func TestSubscribeKeepsOnlyNewest(t *testing.T) {
	e := newTestEngine(t, WithFrameSize(4))
	ch, cancel := e.Subscribe()
	defer cancel()

	e.Tick()
	e.Tick()
	last := e.Tick()

	f := <-ch
	if f.Seq != last.Seq {
		t.Fatalf("received seq %d, want newest %d", f.Seq, last.Seq)
	}
	select {
	case extra := <-ch:
		t.Fatalf("unexpected queued frame %d", extra.Seq)
	default:
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	e := newTestEngine(t)
	ch, cancel := e.Subscribe()
	if e.Subscribers() != 1 {
		t.Fatalf("Subscribers() = %d, want 1", e.Subscribers())
	}

	cancel()
	cancel()

	if _, ok := <-ch; ok {
		t.Fatal("expected closed channel")
	}
	if e.Subscribers() != 0 {
		t.Fatalf("Subscribers() = %d, want 0", e.Subscribers())
	}
	e.Tick()
}

func TestRunPublishesUntilCancelled(t *testing.T) {
	e := newTestEngine(t, WithFrameSize(4), WithInterval(5*time.Millisecond))
	ch, cancel := e.Subscribe()
	defer cancel()

	ctx, stop := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()

	var last uint64
	for range 3 {
		select {
		case f := <-ch:
			if f.Seq <= last {
				t.Fatalf("seq %d not after %d", f.Seq, last)
			}
			last = f.Seq
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for frame")
		}
	}

	stop()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
