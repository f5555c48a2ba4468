package spectrum_test

import (
	"fmt"

	"github.com/cwbudde/algo-rfscope/dsp/spectrum"
)

func ExampleModulationDepth() {
	fmt.Printf("%.2f\n", spectrum.ModulationDepth([]float64{0.2, 0.6, 1.0, 0.6}))

	// Output:
	// 0.67
}
