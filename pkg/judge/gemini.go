package judge

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// DefaultModel is used when GeminiConfig.Model is empty.
const DefaultModel = "gemini-2.5-flash"

// Generator is the slice of the genai client the judge needs.
// *genai.Models satisfies it.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiConfig configures NewGemini.
type GeminiConfig struct {
	APIKey string
	Model  string
}

// Gemini judges answers with a Gemini model constrained to a JSON schema.
type Gemini struct {
	gen   Generator
	model string
}

// NewGemini connects to the Gemini API.
func NewGemini(ctx context.Context, cfg GeminiConfig) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("judge: gemini api key is empty")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("judge: create gemini client: %w", err)
	}
	return NewGeminiWith(client.Models, cfg.Model), nil
}

// NewGeminiWith builds a judge over an existing generator.
func NewGeminiWith(gen Generator, model string) *Gemini {
	if model == "" {
		model = DefaultModel
	}
	return &Gemini{gen: gen, model: model}
}

var verdictSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"accepted": {
			Type:        genai.TypeBoolean,
			Description: "true if answer should be accepted",
		},
		"explanation": {
			Type:        genai.TypeString,
			Description: "Brief explanation of why accepted/rejected",
		},
	},
	Required:         []string{"accepted", "explanation"},
	PropertyOrdering: []string{"accepted", "explanation"},
}

// Judge sends one prompt and parses the reply.
func (g *Gemini) Judge(ctx context.Context, req *Request) (*Verdict, error) {
	resp, err := g.gen.GenerateContent(ctx, g.model, genai.Text(Prompt(req)), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   verdictSchema,
	})
	if err != nil {
		return nil, fmt.Errorf("judge: generate: %w", err)
	}
	return ParseVerdict(resp.Text())
}
