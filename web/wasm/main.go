//go:build js && wasm

package main

import (
	"syscall/js"

	"github.com/cwbudde/algo-rfscope/dsp/signal"
	"github.com/cwbudde/algo-rfscope/internal/catalog"
	"github.com/cwbudde/algo-rfscope/internal/scope"
)

var funcs []js.Func

func main() {
	api := js.Global().Get("Object").New()

	api.Set("defaults", export(func([]js.Value) any {
		return paramsToJS(signal.DefaultParams())
	}))

	api.Set("controls", export(func([]js.Value) any {
		c := catalog.DefaultControls()
		obj := js.Global().Get("Object").New()
		obj.Set("carrierFreq", rangeToJS(c.CarrierFreq))
		obj.Set("modulatingFreq", rangeToJS(c.ModulatingFreq))
		obj.Set("noiseLevel", rangeToJS(c.NoiseLevel))
		return obj
	}))

	// generate(params, count) returns an array of samples or an error string.
	api.Set("generate", export(func(args []js.Value) any {
		p := signal.DefaultParams()
		if len(args) > 0 {
			p = paramsFromJS(args[0], p)
		}
		if err := p.Validate(); err != nil {
			return err.Error()
		}

		count := scope.DefaultFrameSize
		if len(args) > 1 && args[1].Type() == js.TypeNumber {
			count = args[1].Int()
		}
		if count < 0 || count > scope.MaxFrameSize {
			return "count out of range"
		}

		samples := signal.Generate(p, count)
		arr := js.Global().Get("Array").New(len(samples))
		for i, s := range samples {
			obj := js.Global().Get("Object").New()
			obj.Set("time", s.Time)
			obj.Set("raw", s.Raw)
			obj.Set("filtered", s.Filtered)
			obj.Set("envelope", s.Envelope)
			arr.SetIndex(i, obj)
		}
		return arr
	}))

	js.Global().Set("RFScope", api)
	select {}
}

func paramsFromJS(v js.Value, p signal.Params) signal.Params {
	if v.Type() != js.TypeObject {
		return p
	}
	for key, dst := range map[string]*float64{
		"sampleRate":     &p.SampleRate,
		"carrierFreq":    &p.CarrierFreq,
		"modulatingFreq": &p.ModulatingFreq,
		"noiseLevel":     &p.NoiseLevel,
		"cutoffFreq":     &p.CutoffFreq,
	} {
		if f := v.Get(key); f.Type() == js.TypeNumber {
			*dst = f.Float()
		}
	}
	return p
}

func paramsToJS(p signal.Params) js.Value {
	obj := js.Global().Get("Object").New()
	obj.Set("sampleRate", p.SampleRate)
	obj.Set("carrierFreq", p.CarrierFreq)
	obj.Set("modulatingFreq", p.ModulatingFreq)
	obj.Set("noiseLevel", p.NoiseLevel)
	obj.Set("cutoffFreq", p.CutoffFreq)
	return obj
}

func rangeToJS(r catalog.Range) js.Value {
	obj := js.Global().Get("Object").New()
	obj.Set("min", r.Min)
	obj.Set("max", r.Max)
	obj.Set("step", r.Step)
	return obj
}

func export(fn func([]js.Value) any) js.Func {
	f := js.FuncOf(func(_ js.Value, args []js.Value) any {
		return fn(args)
	})
	funcs = append(funcs, f)
	return f
}
