package analysis

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.0-flash"

// Gemini analyses entries with Google's Gemini API, asking for JSON that
// matches Result.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini analyzer.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

func resultSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"overallSentiment": {
				Type:        genai.TypeString,
				Description: "The overall sentiment of the journal entry (e.g., positive, negative, neutral).",
			},
			"keyEmotionalSignals": {
				Type:        genai.TypeString,
				Description: "A summary of the key emotional signals present in the journal entry.",
			},
		},
		Required: []string{"overallSentiment", "keyEmotionalSignals"},
	}
}

func (g *Gemini) Analyze(ctx context.Context, text string) (Result, error) {
	if strings.TrimSpace(text) == "" {
		return Result{}, ErrEmptyContent
	}

	contents := []*genai.Content{
		genai.NewContentFromText(Prompt(text), genai.RoleUser),
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   resultSchema(),
	})
	if err != nil {
		return Result{}, fmt.Errorf("GenAI analyze failed: %w", err)
	}
	return ParseResult(resp.Text())
}
