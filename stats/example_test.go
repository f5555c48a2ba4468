package stats_test

import (
	"fmt"

	"github.com/cwbudde/algo-rfscope/stats"
)

func ExampleMeasure() {
	c := stats.Measure([]float64{1, -1, 1, -1})
	fmt.Printf("rms=%.1f crest=%.1f zc=%d\n", c.RMS, c.CrestFactor, c.ZeroCrossings)

	// Output:
	// rms=1.0 crest=1.0 zc=3
}

func ExampleAccumulator() {
	var a stats.Accumulator
	a.AddBlock([]float64{0.5, 1.5})
	a.AddBlock([]float64{1})
	c := a.Result()
	fmt.Printf("len=%d mean=%.1f p2p=%.1f\n", c.Length, c.Mean, c.PeakToPeak)

	// Output:
	// len=3 mean=1.0 p2p=1.0
}
