package stt

import (
	"bytes"
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// OpenAIClient runs recognition through the hosted Whisper model.
type OpenAIClient struct {
	client *openai.Client
}

func NewOpenAIClient(apiKey string) *OpenAIClient {
	return &OpenAIClient{client: openai.NewClient(apiKey)}
}

func (c *OpenAIClient) Name() string {
	return "openai"
}

func (c *OpenAIClient) Recognize(
	ctx context.Context,
	audio []byte,
	format, language string,
) (Result, error) {
	if len(audio) == 0 {
		return Result{}, fmt.Errorf("empty audio payload")
	}

	req := openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: "audio." + format,
		Reader:   bytes.NewReader(audio),
		Format:   openai.AudioResponseFormatVerboseJSON,
	}
	if language != "" && language != "auto" {
		req.Language = language
	}

	resp, err := c.client.CreateTranscription(ctx, req)
	if err != nil {
		return Result{}, fmt.Errorf("openai transcription: %w", err)
	}

	return Result{Text: resp.Text, Language: resp.Language}, nil
}
