package stt

import (
	"fmt"

	"github.com/charmbracelet/log"

	"auralis/config"
)

// NewRecognizer builds the configured provider, wrapped with the
// engine-wide concurrency limit.
func NewRecognizer(cfg *config.Config, logger *log.Logger) (Recognizer, error) {
	var rec Recognizer
	switch cfg.STTProvider {
	case "whisper":
		rec = NewWhisperClient(cfg.WhisperURL, logger)
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("openai_api_key must be set for the openai provider")
		}
		rec = NewOpenAIClient(cfg.OpenAIAPIKey)
	default:
		return nil, fmt.Errorf(
			"unsupported stt provider %q (supported: whisper, openai)",
			cfg.STTProvider,
		)
	}

	logger.Info("speech engine ready", "provider", rec.Name())
	return Limited(rec, cfg.EngineConcurrency), nil
}
