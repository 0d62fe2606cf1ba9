package stt

import (
	"context"
)

// Result is one completed recognition pass over an audio payload.
type Result struct {
	Text     string
	Language string
}

// Recognizer turns an audio payload into text. Implementations are
// stateless request/response collaborators; any global concurrency
// limit of the underlying engine is enforced by wrapping with Limited.
type Recognizer interface {
	// Recognize transcribes audio. format is a container hint ("m4a",
	// "wav", ...). language is a tag like "hi" or "auto"; "auto" and ""
	// both mean let the engine detect.
	Recognize(ctx context.Context, audio []byte, format, language string) (Result, error)

	// Name identifies the provider ("whisper", "openai").
	Name() string
}
