package judge

import (
	"context"
	"errors"
	"strings"
	"testing"

	"google.golang.org/genai"
)

type fakeGenerator struct {
	reply string
	err   error

	model  string
	prompt string
	config *genai.GenerateContentConfig
}

func (f *fakeGenerator) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.config = config
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.prompt = contents[0].Parts[0].Text
	}
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: f.reply}}},
		}},
	}, nil
}

func TestGemini_Judge(t *testing.T) {
	gen := &fakeGenerator{reply: `{"accepted":true,"explanation":"Valid synonym"}`}
	g := NewGeminiWith(gen, "")

	v, err := g.Judge(context.Background(), &Request{UserAnswer: "pretty", CorrectAnswer: "beautiful"})
	if err != nil {
		t.Fatalf("Judge: %v", err)
	}
	if !v.Accepted || v.Explanation != "Valid synonym" {
		t.Errorf("verdict = %+v", v)
	}
	if gen.model != DefaultModel {
		t.Errorf("model = %q, want %q", gen.model, DefaultModel)
	}
	if gen.config.ResponseMIMEType != "application/json" || gen.config.ResponseSchema == nil {
		t.Errorf("config = %+v, want JSON schema output", gen.config)
	}
	if !strings.Contains(gen.prompt, `User typed: "pretty"`) {
		t.Errorf("prompt = %q", gen.prompt)
	}
}

func TestGemini_Errors(t *testing.T) {
	g := NewGeminiWith(&fakeGenerator{err: errors.New("quota")}, "m")
	if _, err := g.Judge(context.Background(), &Request{}); err == nil || !strings.Contains(err.Error(), "quota") {
		t.Errorf("err = %v, want wrapped generator error", err)
	}

	g = NewGeminiWith(&fakeGenerator{reply: "I think so"}, "m")
	if _, err := g.Judge(context.Background(), &Request{}); !errors.Is(err, ErrMalformed) {
		t.Errorf("err = %v, want ErrMalformed", err)
	}
}

func TestNewGemini_RequiresKey(t *testing.T) {
	if _, err := NewGemini(context.Background(), GeminiConfig{}); err == nil {
		t.Error("NewGemini without a key succeeded")
	}
}
