// Package explain answers DSP questions and reviews code snippets through an
// external text-generation service. Generation failures never propagate:
// callers get a fixed fallback text instead.
package explain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

const (
	// ExplainFallback is returned when an explanation cannot be generated.
	ExplainFallback = "I'm having trouble connecting to the DSP knowledge base right now. Please try again later."
	// AnalyzeFallback is returned when a code review cannot be generated.
	AnalyzeFallback = "Failed to analyze code snippet."
	// EmptyExplanation is returned when the service answers with no text.
	EmptyExplanation = "No explanation available."

	systemInstruction = "You are a senior embedded systems engineer with expertise in DSP and RF. " +
		"Provide concise, technical, and accurate explanations."
)

// ErrEmptyInput is returned for a blank topic or snippet; no request is made.
var ErrEmptyInput = errors.New("explain: input must not be empty")

// Task identifies which kind of request is being generated.
type Task int

const (
	TaskExplain Task = iota
	TaskAnalyze
)

func (t Task) String() string {
	switch t {
	case TaskExplain:
		return "explain"
	case TaskAnalyze:
		return "analyze"
	default:
		return "unknown"
	}
}

// Request is one plain-text generation request.
type Request struct {
	Task              Task
	Prompt            string
	SystemInstruction string
	Temperature       float32
	// TopP is ignored when zero.
	TopP float32
}

// TextGenerator produces free-form text for a request.
type TextGenerator interface {
	GenerateText(ctx context.Context, req Request) (string, error)
}

// Service builds prompts and collapses failures to fallback strings.
type Service struct {
	gen     TextGenerator
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithTimeout bounds each generation call. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.timeout = d
		}
	}
}

// WithLogger sets the logger used to report generation failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService creates a Service backed by gen.
func NewService(gen TextGenerator, opts ...Option) *Service {
	if gen == nil {
		gen = Unavailable{}
	}
	s := &Service{gen: gen, logger: slog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Explain returns an explanation of topic aimed at microcontroller
// implementation. Generation errors yield ExplainFallback.
func (s *Service) Explain(ctx context.Context, topic string) (string, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return "", ErrEmptyInput
	}

	text, err := s.generate(ctx, Request{
		Task: TaskExplain,
		Prompt: fmt.Sprintf("Explain the following RF signal processing concept for a senior engineering "+
			"project context: %s. Focus on implementation in C/C++ on microcontrollers. "+
			"Include a brief pseudocode snippet if applicable.", topic),
		SystemInstruction: systemInstruction,
		Temperature:       0.7,
		TopP:              0.8,
	})
	if err != nil {
		return ExplainFallback, nil
	}
	if strings.TrimSpace(text) == "" {
		return EmptyExplanation, nil
	}
	return text, nil
}

// AnalyzeCode reviews a DSP code snippet for efficiency, real-time issues
// and correctness. Generation errors yield AnalyzeFallback.
func (s *Service) AnalyzeCode(ctx context.Context, snippet string) (string, error) {
	if strings.TrimSpace(snippet) == "" {
		return "", ErrEmptyInput
	}

	text, err := s.generate(ctx, Request{
		Task: TaskAnalyze,
		Prompt: "Analyze this C++ DSP snippet for microcontrollers. Look for efficiency, " +
			"potential real-time issues, and logic correctness: \n\n" + snippet,
		Temperature: 0.2,
	})
	if err != nil {
		return AnalyzeFallback, nil
	}
	return text, nil
}

func (s *Service) generate(ctx context.Context, req Request) (string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	text, err := s.gen.GenerateText(ctx, req)
	if err != nil {
		s.logger.Error("text generation failed", "task", req.Task, "err", err)
		return "", err
	}
	return text, nil
}

// Unavailable is a TextGenerator that always fails, used when no backend is
// configured.
type Unavailable struct{}

// ErrUnavailable is returned by Unavailable.
var ErrUnavailable = errors.New("explain: no text generation backend configured")

// GenerateText implements TextGenerator.
func (Unavailable) GenerateText(context.Context, Request) (string, error) {
	return "", ErrUnavailable
}
