package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/cwbudde/algo-rfscope/dsp/signal"
)

func quietOptions(format string) options {
	p := signal.DefaultParams()
	p.SampleRate = 1000
	p.NoiseLevel = 0
	return options{params: p, count: 4, format: format}
}

func TestRunTable(t *testing.T) {
	var buf bytes.Buffer
	if err := run(&buf, quietOptions("table")); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("got %d lines, want header + 4:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "Envelope") {
		t.Fatalf("header = %q", lines[0])
	}
	if !strings.Contains(lines[2], "0.0010") || !strings.Contains(lines[2], "0.303") {
		t.Fatalf("row 1 = %q", lines[2])
	}
}

func TestRunCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := run(&buf, quietOptions("csv")); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 5 {
		t.Fatalf("records = %d, want 5", len(records))
	}
	if got := strings.Join(records[1], ","); got != "0.001,0.303,0.03,0.03" {
		t.Fatalf("record = %q", got)
	}
}

func TestRunJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := run(&buf, quietOptions("JSON")); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	var got []signal.Sample
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	want := signal.Generate(quietOptions("").params, 4)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sample %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestRunSeededIsReproducible(t *testing.T) {
	o := quietOptions("csv")
	o.params.NoiseLevel = 0.5
	o.seed, o.seeded = 42, true

	var a, b bytes.Buffer
	if err := run(&a, o); err != nil {
		t.Fatal(err)
	}
	if err := run(&b, o); err != nil {
		t.Fatal(err)
	}
	if a.String() != b.String() {
		t.Fatal("seeded runs differ")
	}
}

func TestRunSummary(t *testing.T) {
	o := quietOptions("")
	o.count = 1000
	o.summary = true

	var buf bytes.Buffer
	if err := run(&buf, o); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	for _, want := range []string{"carrier", "upper sideband", "raw rms", "zero-crossing freq", "modulation depth", "envelope -3 dB"} {
		if !strings.Contains(buf.String(), want) {
			t.Fatalf("summary missing %q:\n%s", want, buf.String())
		}
	}
}

func TestRunSummaryMeasuresTonesIndependently(t *testing.T) {
	o := quietOptions("")
	o.count = 1000
	o.summary = true
	o.params.CarrierFreq = 3
	o.params.ModulatingFreq = 5

	var buf bytes.Buffer
	if err := run(&buf, o); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	lines := map[string]string{}
	for _, l := range strings.Split(buf.String(), "\n") {
		for _, label := range []string{"carrier", "lower sideband", "upper sideband"} {
			if strings.HasPrefix(l, label) {
				lines[label] = l
			}
		}
	}
	if l := lines["carrier"]; !strings.Contains(l, "3.0 Hz") || !strings.Contains(l, "dB") {
		t.Fatalf("carrier line = %q, want a measured level:\n%s", l, buf.String())
	}
	if l := lines["lower sideband"]; !strings.Contains(l, "-2.0 Hz") || !strings.Contains(l, "n/a") {
		t.Fatalf("lower sideband line = %q, want n/a:\n%s", l, buf.String())
	}
	if l := lines["upper sideband"]; !strings.Contains(l, "8.0 Hz") || !strings.Contains(l, "dB") {
		t.Fatalf("upper sideband line = %q, want a measured level:\n%s", l, buf.String())
	}
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name string
		mod  func(*options)
	}{
		{"bad format", func(o *options) { o.format = "xml" }},
		{"negative count", func(o *options) { o.count = -1 }},
		{"huge count", func(o *options) { o.count = 1 << 30 }},
		{"zero rate", func(o *options) { o.params.SampleRate = 0 }},
		{"empty summary", func(o *options) { o.count, o.summary = 0, true }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := quietOptions("table")
			tt.mod(&o)
			if err := run(&bytes.Buffer{}, o); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
