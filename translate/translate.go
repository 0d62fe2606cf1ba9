package translate

import (
	"context"
)

// Translator converts text between languages. Failures are non-fatal to
// the caller: the relay falls back to the untranslated text.
type Translator interface {
	Translate(ctx context.Context, text, source, target string) (string, error)
}
