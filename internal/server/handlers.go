package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/cwbudde/algo-rfscope/dsp/filter/ema"
	"github.com/cwbudde/algo-rfscope/dsp/signal"
	"github.com/cwbudde/algo-rfscope/dsp/spectrum"
	"github.com/cwbudde/algo-rfscope/internal/catalog"
	"github.com/cwbudde/algo-rfscope/internal/explain"
	"github.com/cwbudde/algo-rfscope/stats"
)

type errorResponse struct {
	Error string `json:"error"`
}

type textResponse struct {
	Text string `json:"text"`
}

type signalResponse struct {
	Params  signal.Params   `json:"params"`
	Count   int             `json:"count"`
	Samples []signal.Sample `json:"samples"`
}

type statsResponse struct {
	Seq   uint64      `json:"seq"`
	Stats stats.Frame `json:"stats"`
	// Carrier frequency estimated from raw zero crossings.
	ZeroCrossingHz float64 `json:"zeroCrossingHz"`
}

// spectrumResponse omits Modulation until the settled envelope spans a full
// modulation period.
type spectrumResponse struct {
	Seq              uint64              `json:"seq"`
	Spectrum         spectrum.Spectrum   `json:"spectrum"`
	Shape            stats.Shape         `json:"shape"`
	PeakHz           float64             `json:"peakHz"`
	PeakDB           float64             `json:"peakDb"`
	Carrier          *spectrum.ToneLevel `json:"carrier,omitempty"`
	Modulation       *spectrum.ToneLevel `json:"modulation,omitempty"`
	ModulationDepth  float64             `json:"modulationDepth"`
	FilterCutoffHz   float64             `json:"filterCutoffHz"`
	EnvelopeCutoffHz float64             `json:"envelopeCutoffHz"`
}

// writeJSON encodes v before committing status, so a value that cannot be
// encoded turns into a 500 instead of a truncated 200.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("encode response", "err", err)
		status = http.StatusInternalServerError
		body, _ = json.Marshal(errorResponse{Error: "server: encode response failed"})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleSignal(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	p, err := paramsFromQuery(s.engine.Params(), q)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := p.Validate(); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	count := s.engine.FrameSize()
	if v := q.Get("count"); v != "" {
		count, err = strconv.Atoi(v)
		if err != nil || count < 0 || count > s.maxCount {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("count must be in [0,%d]: %q", s.maxCount, v))
			return
		}
	}

	s.writeJSON(w, http.StatusOK, signalResponse{
		Params:  p,
		Count:   count,
		Samples: s.engine.Generator().Generate(p, count),
	})
}

func paramsFromQuery(p signal.Params, q url.Values) (signal.Params, error) {
	fields := []struct {
		key string
		dst *float64
	}{
		{"sampleRate", &p.SampleRate},
		{"carrierFreq", &p.CarrierFreq},
		{"modulatingFreq", &p.ModulatingFreq},
		{"noiseLevel", &p.NoiseLevel},
		{"cutoffFreq", &p.CutoffFreq},
	}
	for _, f := range fields {
		v := q.Get(f.key)
		if v == "" {
			continue
		}
		x, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return p, fmt.Errorf("%w: %s: %q is not a number", signal.ErrInvalidParams, f.key, v)
		}
		*f.dst = x
	}
	return p, nil
}

func (s *Server) handleGetParams(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.engine.Params())
}

// handlePutParams overlays the body onto the current params, so omitted
// fields keep their value.
func (s *Server) handlePutParams(w http.ResponseWriter, r *http.Request) {
	p := s.engine.Params()
	if err := decodeBody(w, r, &p); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := s.engine.SetParams(p); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, signal.ErrInvalidParams) {
			status = http.StatusBadRequest
		}
		s.writeError(w, status, err)
		return
	}

	s.writeJSON(w, http.StatusOK, s.engine.Params())
}

func (s *Server) handleFrame(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.engine.Latest())
}

func (s *Server) handleSpectrum(w http.ResponseWriter, _ *http.Request) {
	f := s.engine.Latest()
	fs := f.Params.SampleRate

	raw := signal.Raw(f.Samples)
	spec, err := s.analyzer.Analyze(raw, fs)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	resp := spectrumResponse{Seq: f.Seq, Spectrum: spec, Shape: stats.SpectralShape(spec)}
	resp.PeakHz, resp.PeakDB = spec.Peak()

	if levels, err := spectrum.ToneLevels(raw, fs, f.Params.CarrierFreq); err == nil {
		resp.Carrier = &levels[0]
	}

	env := signal.SettledEnvelope(f.Samples)
	if fm := math.Abs(f.Params.ModulatingFreq); fm > 0 && float64(len(env))*fm >= fs {
		if levels, err := spectrum.ToneLevels(env, fs, f.Params.ModulatingFreq); err == nil {
			resp.Modulation = &levels[0]
		}
	}
	resp.ModulationDepth = spectrum.ModulationDepth(env)

	// Both alphas are valid constants and fs was validated by the engine.
	resp.FilterCutoffHz, _ = ema.CutoffForAlpha(ema.LowPassAlpha, fs)
	resp.EnvelopeCutoffHz, _ = ema.CutoffForAlpha(ema.EnvelopeAlpha, fs)

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	f := s.engine.Latest()
	fs := stats.MeasureFrame(f.Samples)
	s.writeJSON(w, http.StatusOK, statsResponse{
		Seq:            f.Seq,
		Stats:          fs,
		ZeroCrossingHz: fs.Raw.ZeroCrossingFreq(f.Params.SampleRate),
	})
}

func (s *Server) handleHardware(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, catalog.HardwareSpecs())
}

func (s *Server) handleConcepts(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, catalog.Concepts())
}

func (s *Server) handleControls(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, catalog.DefaultControls())
}

func (s *Server) handleExplain(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Topic string `json:"topic"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	text, err := s.explain.Explain(r.Context(), req.Topic)
	s.writeText(w, text, err)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	text, err := s.explain.AnalyzeCode(r.Context(), req.Code)
	s.writeText(w, text, err)
}

func (s *Server) writeText(w http.ResponseWriter, text string, err error) {
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, explain.ErrEmptyInput) {
			status = http.StatusBadRequest
		}
		s.writeError(w, status, err)
		return
	}
	s.writeJSON(w, http.StatusOK, textResponse{Text: text})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}
