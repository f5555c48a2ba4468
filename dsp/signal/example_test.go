package signal_test

import (
	"fmt"

	"github.com/cwbudde/algo-rfscope/dsp/signal"
)

func ExampleGenerate() {
	p := signal.Params{SampleRate: 1000, CarrierFreq: 100, ModulatingFreq: 5}
	for _, s := range signal.Generate(p, 4) {
		fmt.Printf("%.4f %.3f %.3f %.3f\n", s.Time, s.Raw, s.Filtered, s.Envelope)
	}

	// Output:
	// 0.0000 0.000 0.000 0.000
	// 0.0010 0.303 0.030 0.030
	// 0.0020 0.505 0.078 0.079
	// 0.0030 0.520 0.122 0.127
}
