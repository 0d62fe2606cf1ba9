package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

type Gemini struct {
	model *genai.GenerativeModel
}

func NewGemini(ctx context.Context, apiKey string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	model := client.GenerativeModel("gemini-1.5-flash")
	model.GenerationConfig.SetMaxOutputTokens(1024)
	model.GenerationConfig.SetTemperature(0.1)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemPrompt)},
	}

	return &Gemini{model: model}, nil
}

func (g *Gemini) Name() string { return "gemini" }

func (g *Gemini) Summarize(ctx context.Context, text string) (string, error) {
	resp, err := g.model.GenerateContent(
		ctx,
		genai.Text(fmt.Sprintf("Summarize:\n%s\n\nSummary:", clip(text, 2000))),
	)
	if err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}

	var sb strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				sb.WriteString(string(t))
			}
		}
	}

	summary := strings.TrimSpace(sb.String())
	if summary == "" {
		return "", fmt.Errorf("gemini returned no text")
	}
	return summary, nil
}
