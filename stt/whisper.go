package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
)

// WhisperClient talks to a local faster-whisper HTTP server. The server
// accepts a multipart upload and answers with the transcript and the
// language it detected.
type WhisperClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger
}

func NewWhisperClient(baseURL string, logger *log.Logger) *WhisperClient {
	return &WhisperClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		logger:     logger,
	}
}

func (c *WhisperClient) Name() string {
	return "whisper"
}

type whisperResponse struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Error    string `json:"error,omitempty"`
}

func (c *WhisperClient) Recognize(
	ctx context.Context,
	audio []byte,
	format, language string,
) (Result, error) {
	if len(audio) == 0 {
		return Result{}, fmt.Errorf("empty audio payload")
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "audio."+format)
	if err != nil {
		return Result{}, err
	}
	if _, err := part.Write(audio); err != nil {
		return Result{}, err
	}
	if language != "" && language != "auto" {
		if err := writer.WriteField("language", language); err != nil {
			return Result{}, err
		}
	}
	if err := writer.Close(); err != nil {
		return Result{}, err
	}

	url := fmt.Sprintf("%s/transcribe", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, "POST", url, body)
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("whisper server unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Result{}, fmt.Errorf(
			"whisper server status %d: %s",
			resp.StatusCode,
			bytes.TrimSpace(msg),
		)
	}

	var parsed whisperResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Result{}, fmt.Errorf("decode whisper response: %w", err)
	}
	if parsed.Error != "" {
		return Result{}, fmt.Errorf("whisper: %s", parsed.Error)
	}

	c.logger.Info(
		"recognized",
		"bytes", len(audio),
		"lang", parsed.Language,
		"took", time.Since(start),
	)

	return Result{Text: parsed.Text, Language: parsed.Language}, nil
}
