package stt

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// limited serializes access to an engine with a global capacity. Callers
// queue here instead of the relay holding any cross-session lock.
type limited struct {
	inner Recognizer
	sem   *semaphore.Weighted
}

func Limited(inner Recognizer, n int64) Recognizer {
	return &limited{inner: inner, sem: semaphore.NewWeighted(n)}
}

func (l *limited) Name() string {
	return l.inner.Name()
}

func (l *limited) Recognize(
	ctx context.Context,
	audio []byte,
	format, language string,
) (Result, error) {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return Result{}, err
	}
	defer l.sem.Release(1)
	return l.inner.Recognize(ctx, audio, format, language)
}
