package web

import (
	"context"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"auralis/auth"
	"auralis/config"
	"auralis/db"
	"auralis/llm"
	"auralis/relay"
	"auralis/stt"
	"auralis/translate"
)

var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API and transcription relay",
	Run: func(cmd *cobra.Command, args []string) {
		if err := Serve(); err != nil {
			log.Fatal("server failed", "error", err)
		}
	},
}

func Serve() error {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
	})

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	database, err := db.Open(cfg.DatabasePath, logger.With("component", "db"))
	if err != nil {
		return err
	}

	recognizer, err := stt.NewRecognizer(cfg, logger.With("component", "stt"))
	if err != nil {
		return err
	}

	translator := translate.NewGoogleClient(
		cfg.TranslateURL,
		logger.With("component", "translate"),
	)

	summarizer, err := llm.New(
		context.Background(),
		cfg,
		logger.With("component", "llm"),
	)
	if err != nil {
		return err
	}

	relayHandler := relay.NewHandler(relay.Options{
		Recognizer:        recognizer,
		Translator:        translator,
		Sink:              database,
		TargetLanguage:    cfg.TargetLanguage,
		PartialChunkCount: cfg.PartialChunkCount,
		Logger:            logger.With("component", "relay"),
	}, logger)

	handler := NewHandler(
		database,
		auth.NewTokens(cfg.JWTSecret),
		translator,
		summarizer,
		relayHandler,
		recognizer.Name(),
		logger.With("component", "web"),
	)

	logger.Info("listening", "addr", cfg.HTTPAddr)
	return http.ListenAndServe(cfg.HTTPAddr, handler.Routes())
}
