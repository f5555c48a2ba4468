package explain

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

const (
	// DefaultExplainModel answers concept questions.
	DefaultExplainModel = "gemini-3-flash-preview"
	// DefaultAnalyzeModel reviews code snippets.
	DefaultAnalyzeModel = "gemini-3-pro-preview"
)

// GeminiGenerator generates text with the Gemini API.
type GeminiGenerator struct {
	client       *genai.Client
	explainModel string
	analyzeModel string
}

// NewGeminiGenerator creates a Gemini-backed generator. Empty model names
// fall back to the defaults.
func NewGeminiGenerator(ctx context.Context, apiKey, explainModel, analyzeModel string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, errors.New("explain: gemini api key must not be empty")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("explain: create gemini client: %w", err)
	}

	if explainModel == "" {
		explainModel = DefaultExplainModel
	}
	if analyzeModel == "" {
		analyzeModel = DefaultAnalyzeModel
	}

	return &GeminiGenerator{
		client:       client,
		explainModel: explainModel,
		analyzeModel: analyzeModel,
	}, nil
}

// GenerateText implements TextGenerator.
func (g *GeminiGenerator) GenerateText(ctx context.Context, req Request) (string, error) {
	model := g.explainModel
	if req.Task == TaskAnalyze {
		model = g.analyzeModel
	}

	resp, err := g.client.Models.GenerateContent(ctx, model, genai.Text(req.Prompt), generateConfig(req))
	if err != nil {
		return "", fmt.Errorf("explain: gemini %s: %w", model, err)
	}

	return resp.Text(), nil
}

func generateConfig(req Request) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(req.Temperature),
	}
	if req.TopP > 0 {
		cfg.TopP = genai.Ptr(req.TopP)
	}
	if req.SystemInstruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}
	return cfg
}
