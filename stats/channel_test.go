package stats

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-rfscope/dsp/signal"
	"github.com/cwbudde/algo-rfscope/internal/testutil"
)

const tolerance = 1e-9

func TestMeasureAlternating(t *testing.T) {
	c := Measure([]float64{1, -1, 1, -1})

	if c.Length != 4 || c.ZeroCrossings != 3 {
		t.Fatalf("Length = %d, ZeroCrossings = %d, want 4, 3", c.Length, c.ZeroCrossings)
	}
	checks := []struct {
		name      string
		got, want float64
	}{
		{"Mean", c.Mean, 0},
		{"RMS", c.RMS, 1},
		{"RMSDB", c.RMSDB, 0},
		{"Min", c.Min, -1},
		{"Max", c.Max, 1},
		{"Peak", c.Peak, 1},
		{"PeakToPeak", c.PeakToPeak, 2},
		{"CrestFactor", c.CrestFactor, 1},
		{"StdDev", c.StdDev, 1},
	}
	for _, ck := range checks {
		if !near(ck.got, ck.want) {
			t.Errorf("%s = %v, want %v", ck.name, ck.got, ck.want)
		}
	}
}

func TestMeasureEmpty(t *testing.T) {
	c := Measure(nil)
	if c.Length != 0 || c.RMS != 0 || c.CrestFactor != 0 {
		t.Fatalf("Measure(nil) = %+v", c)
	}
	if c.RMSDB != FloorDB {
		t.Fatalf("RMSDB = %v, want %v", c.RMSDB, FloorDB)
	}
}

func TestMeasureDC(t *testing.T) {
	c := Measure(testutil.DC(0.5, 100))
	if !near(c.Mean, 0.5) || !near(c.RMS, 0.5) || !near(c.CrestFactor, 1) {
		t.Fatalf("DC stats = %+v", c)
	}
	if c.StdDev > tolerance {
		t.Fatalf("StdDev = %v, want 0", c.StdDev)
	}
	if math.Abs(c.RMSDB-20*math.Log10(0.5)) > 1e-9 {
		t.Fatalf("RMSDB = %v", c.RMSDB)
	}
	if c.ZeroCrossings != 0 {
		t.Fatalf("ZeroCrossings = %d, want 0", c.ZeroCrossings)
	}
}

func TestMeasureSine(t *testing.T) {
	c := Measure(testutil.DeterministicSine(50, 1000, 1, 1000))
	if math.Abs(c.RMS-1/math.Sqrt2) > 1e-9 {
		t.Fatalf("RMS = %v, want %v", c.RMS, 1/math.Sqrt2)
	}
	if math.Abs(c.CrestFactor-math.Sqrt2) > 1e-6 {
		t.Fatalf("CrestFactor = %v, want sqrt(2)", c.CrestFactor)
	}
	if f := c.ZeroCrossingFreq(1000); f < 48 || f > 51 {
		t.Fatalf("ZeroCrossingFreq = %v, want about 50", f)
	}
}

func TestZeroCrossingsSkipExactZeros(t *testing.T) {
	tests := []struct {
		in   []float64
		want int
	}{
		{[]float64{1, 0, -1, 0, 0, 1}, 2},
		{[]float64{1, 0, 1}, 0},
		{[]float64{0, 0, -1, 1}, 1},
		{[]float64{0, 0, 0}, 0},
	}
	for _, tt := range tests {
		if got := Measure(tt.in).ZeroCrossings; got != tt.want {
			t.Fatalf("ZeroCrossings(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestZeroCrossingFreqShort(t *testing.T) {
	if f := Measure([]float64{1}).ZeroCrossingFreq(1000); f != 0 {
		t.Fatalf("ZeroCrossingFreq = %v, want 0", f)
	}
}

func TestAccumulatorMatchesMeasure(t *testing.T) {
	in := testutil.ReferenceAM(100, 5, 2000, 999)
	want := Measure(in)

	for _, block := range []int{1, 7, 64, 500} {
		var a Accumulator
		for i := 0; i < len(in); i += block {
			a.AddBlock(in[i:min(i+block, len(in))])
		}
		if got := a.Result(); got != want {
			t.Fatalf("block %d: %+v, want %+v", block, got, want)
		}
	}
}

func TestAccumulatorReset(t *testing.T) {
	var a Accumulator
	a.AddBlock([]float64{1, -2, 3})
	a.Reset()
	a.Add(10)

	c := a.Result()
	if c.Length != 1 || c.Mean != 10 || c.ZeroCrossings != 0 {
		t.Fatalf("after Reset: %+v", c)
	}
}

func TestMeasureFrame(t *testing.T) {
	p := signal.DefaultParams()
	p.NoiseLevel = 0
	f := MeasureFrame(signal.Generate(p, 2000))

	if f.Raw.Length != 2000 || f.Filtered.Length != 2000 || f.Envelope.Length != 2000 {
		t.Fatalf("lengths = %d, %d, %d", f.Raw.Length, f.Filtered.Length, f.Envelope.Length)
	}
	if fc := f.Raw.ZeroCrossingFreq(p.SampleRate); fc < 98 || fc > 101 {
		t.Fatalf("raw zero-crossing frequency = %v, want about %v", fc, p.CarrierFreq)
	}
	if f.Envelope.Min < 0 || f.Envelope.ZeroCrossings != 0 {
		t.Fatalf("envelope stats = %+v", f.Envelope)
	}
	if f.Filtered.RMS >= f.Raw.RMS {
		t.Fatalf("filtered RMS %v not below raw RMS %v", f.Filtered.RMS, f.Raw.RMS)
	}
}

func near(got, want float64) bool {
	return math.Abs(got-want) <= tolerance
}
