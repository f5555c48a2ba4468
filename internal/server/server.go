// Package server exposes the scope, spectrum, catalog and explanation
// services as a JSON HTTP API with a Server-Sent Events frame stream.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-rfscope/dsp/spectrum"
	"github.com/cwbudde/algo-rfscope/internal/explain"
	"github.com/cwbudde/algo-rfscope/internal/scope"
)

const (
	defaultMaxCount = scope.MaxFrameSize
	maxBodyBytes    = 64 << 10
)

// Server serves the rfscope HTTP API.
type Server struct {
	engine   *scope.Engine
	explain  *explain.Service
	analyzer *spectrum.Analyzer
	logger   *slog.Logger
	maxCount int
	mux      *http.ServeMux
}

// Option configures a Server.
type Option func(*Server)

// WithAnalyzer sets the spectrum analyzer (Hann window by default).
func WithAnalyzer(a *spectrum.Analyzer) Option {
	return func(s *Server) {
		if a != nil {
			s.analyzer = a
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMaxCount bounds the sample count of one-off signal requests.
func WithMaxCount(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxCount = n
		}
	}
}

// New creates a Server. A nil explain service answers every request with
// the fallback text.
func New(engine *scope.Engine, ex *explain.Service, opts ...Option) *Server {
	s := &Server{
		engine:   engine,
		explain:  ex,
		analyzer: spectrum.NewAnalyzer(),
		logger:   slog.Default(),
		maxCount: defaultMaxCount,
		mux:      http.NewServeMux(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.explain == nil {
		s.explain = explain.NewService(nil, explain.WithLogger(s.logger))
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("GET /api/signal", s.handleSignal)
	s.mux.HandleFunc("GET /api/params", s.handleGetParams)
	s.mux.HandleFunc("PUT /api/params", s.handlePutParams)
	s.mux.HandleFunc("GET /api/frame", s.handleFrame)
	s.mux.HandleFunc("GET /api/stream", s.handleStream)
	s.mux.HandleFunc("GET /api/spectrum", s.handleSpectrum)
	s.mux.HandleFunc("GET /api/stats", s.handleStats)
	s.mux.HandleFunc("GET /api/hardware", s.handleHardware)
	s.mux.HandleFunc("GET /api/concepts", s.handleConcepts)
	s.mux.HandleFunc("GET /api/controls", s.handleControls)
	s.mux.HandleFunc("POST /api/explain", s.handleExplain)
	s.mux.HandleFunc("POST /api/analyze", s.handleAnalyze)
}

// Handler returns the HTTP handler with CORS and request logging applied.
func (s *Server) Handler() http.Handler {
	return s.logRequests(cors(s.mux))
}

// Run serves on addr and runs the scope engine until ctx is cancelled, then
// shuts the listener down gracefully within shutdownTimeout.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	g, gctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		// Cancelling request contexts on shutdown ends open event streams.
		BaseContext: func(net.Listener) context.Context { return gctx },
	}

	g.Go(func() error {
		s.logger.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return s.engine.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		s.logger.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server: shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Unwrap lets http.ResponseController reach the Flusher of the wrapped writer.
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start))
	})
}
