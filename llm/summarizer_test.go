package llm

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"auralis/config"
)

type scriptedSummarizer struct {
	name   string
	text   string
	err    error
	called bool
}

func (s *scriptedSummarizer) Name() string { return s.name }

func (s *scriptedSummarizer) Summarize(_ context.Context, _ string) (string, error) {
	s.called = true
	return s.text, s.err
}

func TestExtractiveSummarizer(t *testing.T) {
	text := "One. Two. Three. Four. Five. Six. Seven."
	summary, err := extractive{}.Summarize(context.Background(), text)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if summary != "One. Two. Three. Four. Five." {
		t.Errorf("got %q", summary)
	}

	if _, err := (extractive{}).Summarize(context.Background(), "   "); err == nil {
		t.Error("expected error for empty input")
	}
}

func TestFallbackPrefersFirstWorkingProvider(t *testing.T) {
	broken := &scriptedSummarizer{name: "broken", err: fmt.Errorf("quota exceeded")}
	working := &scriptedSummarizer{name: "working", text: "summary"}
	last := &scriptedSummarizer{name: "last", text: "never"}

	chain := fallback{
		chain:  []Summarizer{broken, working, last},
		logger: log.New(io.Discard),
	}

	summary, err := chain.Summarize(context.Background(), "transcript")
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if summary != "summary" {
		t.Errorf("got %q", summary)
	}
	if !broken.called || !working.called {
		t.Error("chain did not walk in order")
	}
	if last.called {
		t.Error("chain kept going past a working provider")
	}
}

func TestFallbackReturnsLastError(t *testing.T) {
	chain := fallback{
		chain: []Summarizer{
			&scriptedSummarizer{name: "a", err: fmt.Errorf("a failed")},
			&scriptedSummarizer{name: "b", err: fmt.Errorf("b failed")},
		},
		logger: log.New(io.Discard),
	}
	if _, err := chain.Summarize(context.Background(), "text"); err == nil {
		t.Error("expected error when every provider fails")
	}
}

func TestSummarizeSessionsCombinesTranscripts(t *testing.T) {
	var gotInput string
	capture := &scriptedSummarizer{name: "capture", text: "Point one. Point two."}
	spy := summarizerFunc(func(ctx context.Context, text string) (string, error) {
		gotInput = text
		return capture.Summarize(ctx, text)
	})

	summary, err := SummarizeSessions(context.Background(), spy, []SessionText{
		{Number: 1, Transcript: "felt anxious", Notes: "breathing exercise"},
		{Number: 2, Transcript: "slept better"},
		{Number: 3},
	})
	if err != nil {
		t.Fatalf("summarize sessions: %v", err)
	}

	if !strings.Contains(gotInput, "Session 1: felt anxious Notes: breathing exercise") {
		t.Errorf("combined input missing session 1: %q", gotInput)
	}
	if !strings.Contains(gotInput, "Session 2: slept better") {
		t.Errorf("combined input missing session 2: %q", gotInput)
	}

	if summary.SessionCount != 3 {
		t.Errorf("session count %d, want 3", summary.SessionCount)
	}
	if len(summary.KeyPoints) != 2 {
		t.Errorf("key points %v", summary.KeyPoints)
	}
}

func TestSummarizeSessionsEmpty(t *testing.T) {
	spy := summarizerFunc(func(_ context.Context, _ string) (string, error) {
		t.Fatal("summarizer must not run with no text")
		return "", nil
	})
	if _, err := SummarizeSessions(context.Background(), spy, []SessionText{{Number: 1}}); err == nil {
		t.Error("expected error for sessions with no text")
	}
}

func TestNewWithoutProviderKeys(t *testing.T) {
	s, err := New(context.Background(), &config.Config{}, log.New(io.Discard))
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	summary, err := s.Summarize(context.Background(), "Felt calm. Slept well.")
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if summary != "Felt calm. Slept well." {
		t.Errorf("got %q", summary)
	}
}

func TestNewSurvivesProviderInitFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s, err := New(ctx, &config.Config{GeminiAPIKey: "key"}, log.New(io.Discard))
	if err != nil {
		t.Fatalf("chain construction must not fail: %v", err)
	}
	if s == nil {
		t.Fatal("expected a summarizer")
	}
}

type summarizerFunc func(ctx context.Context, text string) (string, error)

func (f summarizerFunc) Name() string { return "func" }

func (f summarizerFunc) Summarize(ctx context.Context, text string) (string, error) {
	return f(ctx, text)
}
