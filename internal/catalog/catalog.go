// Package catalog holds the static reference data shown next to the scope.
package catalog

import (
	"math"

	"github.com/cwbudde/algo-rfscope/dsp/core"
)

// HardwareSpec describes a target microcontroller.
type HardwareSpec struct {
	MCU           string `json:"mcu"`
	Architecture  string `json:"architecture"`
	ClockSpeed    string `json:"clockSpeed"`
	ADCResolution string `json:"adcResolution"`
}

var hardwareSpecs = []HardwareSpec{
	{MCU: "STM32F407", Architecture: "Cortex-M4", ClockSpeed: "168 MHz", ADCResolution: "12-bit"},
	{MCU: "ESP32-S3", Architecture: "Xtensa LX7", ClockSpeed: "240 MHz", ADCResolution: "12-bit"},
	{MCU: "Teensy 4.1", Architecture: "Cortex-M7", ClockSpeed: "600 MHz", ADCResolution: "16-bit"},
}

var concepts = []string{
	"FIR Filter Coefficients",
	"FFT Windowing",
	"IQ Sampling",
	"Nyquist Theorem",
	"ADC Quantization Noise",
	"DMA Audio Buffering",
}

// HardwareSpecs returns a copy of the hardware table.
func HardwareSpecs() []HardwareSpec {
	return append([]HardwareSpec(nil), hardwareSpecs...)
}

// Concepts returns a copy of the suggested explanation topics.
func Concepts() []string {
	return append([]string(nil), concepts...)
}

// Range is an inclusive slider range with a fixed step.
type Range struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Step float64 `json:"step"`
}

// Snap clamps v into the range and rounds it to the nearest step from Min.
func (r Range) Snap(v float64) float64 {
	if math.IsNaN(v) {
		return r.Min
	}
	v = core.Clamp(v, r.Min, r.Max)
	if r.Step <= 0 {
		return v
	}

	steps := math.Round((v - r.Min) / r.Step)
	snapped := r.Min + steps*r.Step
	if snapped > r.Max {
		snapped -= r.Step
	}

	// Trim binary noise from fractional steps such as 0.05.
	return core.Round(snapped, 9)
}

// Contains reports whether v lies within [Min, Max].
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Controls are the advisory slider ranges offered to clients. The generator
// itself accepts any value.
type Controls struct {
	CarrierFreq    Range `json:"carrierFreq"`
	ModulatingFreq Range `json:"modulatingFreq"`
	NoiseLevel     Range `json:"noiseLevel"`
}

// DefaultControls returns the dashboard slider ranges.
func DefaultControls() Controls {
	return Controls{
		CarrierFreq:    Range{Min: 10, Max: 500, Step: 10},
		ModulatingFreq: Range{Min: 1, Max: 50, Step: 1},
		NoiseLevel:     Range{Min: 0, Max: 1, Step: 0.05},
	}
}
