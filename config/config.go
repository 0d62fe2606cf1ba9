package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config carries everything the server needs at startup. It is built once
// from viper and passed down explicitly; nothing reads viper after boot.
type Config struct {
	HTTPAddr     string
	DatabasePath string

	STTProvider    string
	WhisperURL     string
	OpenAIAPIKey   string
	GeminiAPIKey   string
	TranslateURL   string
	TargetLanguage string

	// EngineConcurrency bounds simultaneous recognition calls across all
	// sessions. The local whisper server loads one model instance.
	EngineConcurrency int64

	// PartialChunkCount is how many streamed binary chunks accumulate
	// before the relay runs an interim recognition pass.
	PartialChunkCount int

	JWTSecret string
}

func Load() (*Config, error) {
	cfg := &Config{
		HTTPAddr:          viper.GetString("http_addr"),
		DatabasePath:      viper.GetString("database_path"),
		STTProvider:       viper.GetString("stt_provider"),
		WhisperURL:        viper.GetString("whisper_url"),
		OpenAIAPIKey:      viper.GetString("openai_api_key"),
		GeminiAPIKey:      viper.GetString("gemini_api_key"),
		TranslateURL:      viper.GetString("translate_url"),
		TargetLanguage:    viper.GetString("target_language"),
		EngineConcurrency: viper.GetInt64("engine_concurrency"),
		PartialChunkCount: viper.GetInt("partial_chunk_count"),
		JWTSecret:         viper.GetString("jwt_secret"),
	}

	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8002"
	}
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = "./auralis.db"
	}
	if cfg.STTProvider == "" {
		cfg.STTProvider = "whisper"
	}
	if cfg.WhisperURL == "" {
		cfg.WhisperURL = "http://127.0.0.1:8003"
	}
	if cfg.TargetLanguage == "" {
		cfg.TargetLanguage = "en"
	}
	if cfg.EngineConcurrency <= 0 {
		cfg.EngineConcurrency = 1
	}
	if cfg.PartialChunkCount <= 0 {
		cfg.PartialChunkCount = 10
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("jwt_secret must be set")
	}

	return cfg, nil
}
