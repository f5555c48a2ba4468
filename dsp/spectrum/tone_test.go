package spectrum

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-rfscope/internal/testutil"
)

func TestNewGoertzelValidation(t *testing.T) {
	if _, err := NewGoertzel(100, 0); err == nil {
		t.Fatal("expected error for zero sample rate")
	}
	if _, err := NewGoertzel(600, 1000); err == nil {
		t.Fatal("expected error above Nyquist")
	}
	if _, err := NewGoertzel(-1, 1000); err == nil {
		t.Fatal("expected error for negative frequency")
	}
}

func TestGoertzelAmplitude(t *testing.T) {
	// 400 samples at 2 kHz hold exactly 20 cycles of 100 Hz.
	frame := testutil.DeterministicSine(100, 2000, 0.8, 400)

	g, err := NewGoertzel(100, 2000)
	if err != nil {
		t.Fatalf("NewGoertzel() error = %v", err)
	}
	g.ProcessBlock(frame)
	if math.Abs(g.Amplitude()-0.8) > 1e-9 {
		t.Fatalf("Amplitude() = %v, want 0.8", g.Amplitude())
	}

	g.Reset()
	if g.Amplitude() != 0 || g.Power() != 0 {
		t.Fatal("expected zero state after Reset")
	}
}

func TestGoertzelAmplitudeEdgeBins(t *testing.T) {
	alternating := make([]float64, 400)
	for i := range alternating {
		alternating[i] = 0.3
		if i%2 == 1 {
			alternating[i] = -0.3
		}
	}

	tests := []struct {
		name  string
		freq  float64
		frame []float64
		want  float64
	}{
		{name: "dc", freq: 0, frame: testutil.DC(0.5, 400), want: 0.5},
		{name: "nyquist", freq: 1000, frame: alternating, want: 0.3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewGoertzel(tt.freq, 2000)
			if err != nil {
				t.Fatalf("NewGoertzel() error = %v", err)
			}
			g.ProcessBlock(tt.frame)
			if got := g.Amplitude(); math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("Amplitude() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestToneLevelsAMSidebands(t *testing.T) {
	// 0.5*sin(wc t) carrier plus 0.25 sidebands at wc +/- wm.
	frame := testutil.ReferenceAM(100, 5, 2000, 400)

	levels, err := ToneLevels(frame, 2000, 100, 95, 105, 5)
	if err != nil {
		t.Fatalf("ToneLevels() error = %v", err)
	}

	want := []float64{0.5, 0.25, 0.25, 0}
	for i, l := range levels {
		if math.Abs(l.Amplitude-want[i]) > 1e-9 {
			t.Fatalf("%v Hz amplitude = %v, want %v", l.FreqHz, l.Amplitude, want[i])
		}
	}
	if levels[3].LevelDB > -100 {
		t.Fatalf("5 Hz level = %v dB, want near floor", levels[3].LevelDB)
	}
}

func TestToneLevelsErrors(t *testing.T) {
	if _, err := ToneLevels(nil, 1000, 10); err == nil {
		t.Fatal("expected error for empty frame")
	}
	if _, err := ToneLevels([]float64{1}, 1000, 900); err == nil {
		t.Fatal("expected error above Nyquist")
	}
}

func TestModulationDepth(t *testing.T) {
	tests := []struct {
		name string
		in   []float64
		want float64
	}{
		{name: "empty", in: nil, want: 0},
		{name: "flat", in: []float64{0.5, 0.5}, want: 0},
		{name: "silence", in: []float64{0, 0}, want: 0},
		{name: "full", in: []float64{0, 1, 0.5}, want: 1},
		{name: "half", in: []float64{0.25, 0.75}, want: 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ModulationDepth(tt.in); math.Abs(got-tt.want) > 1e-12 {
				t.Fatalf("ModulationDepth() = %v, want %v", got, tt.want)
			}
		})
	}
}
