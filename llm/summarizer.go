package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"auralis/config"
)

// SessionText is the summarizable content of one stored session.
type SessionText struct {
	Number     int
	Transcript string
	Notes      string
}

// Summary is the generated clinical overview of a patient's sessions.
type Summary struct {
	Text         string   `json:"summary"`
	KeyPoints    []string `json:"key_points"`
	SessionCount int      `json:"session_count"`
}

// Summarizer produces clinical summaries from session transcripts.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
	Name() string
}

const systemPrompt = `You are a therapy session summarizer.

Create concise summaries using this format:
**Chief Complaint:** [main issue]
**Emotional State:** [mood]
**Risk:** [safety concerns - use {{RED:text}} for urgent]
**Intervention:** [what was done]
**Plan:** [next steps]

Highlight urgent keywords with {{RED:keyword}}:
- suicide, self-harm, kill, hurt myself
- violence, abuse, overdose

Keep under 50 words.`

// New builds the configured summarizer chain: Gemini when a key is
// present, then OpenAI, with the extractive fallback always last so a
// model outage degrades rather than fails.
func New(ctx context.Context, cfg *config.Config, logger *log.Logger) (Summarizer, error) {
	var chain []Summarizer

	if cfg.GeminiAPIKey != "" {
		g, err := NewGemini(ctx, cfg.GeminiAPIKey)
		if err != nil {
			// The chain exists to degrade; a missing provider is a
			// warning, not a startup failure.
			logger.Warn("gemini unavailable, continuing without it", "error", err)
		} else {
			chain = append(chain, g)
		}
	}
	if cfg.OpenAIAPIKey != "" {
		chain = append(chain, NewOpenAISummarizer(cfg.OpenAIAPIKey))
	}
	chain = append(chain, extractive{})

	names := make([]string, len(chain))
	for i, s := range chain {
		names[i] = s.Name()
	}
	logger.Info("summarizer ready", "chain", strings.Join(names, ","))

	return fallback{chain: chain, logger: logger}, nil
}

type fallback struct {
	chain  []Summarizer
	logger *log.Logger
}

func (f fallback) Name() string { return "fallback" }

func (f fallback) Summarize(ctx context.Context, text string) (string, error) {
	var lastErr error
	for _, s := range f.chain {
		summary, err := s.Summarize(ctx, text)
		if err == nil {
			return summary, nil
		}
		f.logger.Warn("summarizer failed", "provider", s.Name(), "error", err)
		lastErr = err
	}
	return "", lastErr
}

// extractive is the last-resort summarizer: the first few sentences of
// the combined transcript.
type extractive struct{}

func (extractive) Name() string { return "extractive" }

func (extractive) Summarize(_ context.Context, text string) (string, error) {
	sentences := strings.Split(text, ".")
	var kept []string
	for _, s := range sentences {
		if t := strings.TrimSpace(s); t != "" {
			kept = append(kept, t)
		}
		if len(kept) == 5 {
			break
		}
	}
	if len(kept) == 0 {
		return "", fmt.Errorf("nothing to summarize")
	}
	return strings.Join(kept, ". ") + ".", nil
}

// SummarizeSessions combines a patient's sessions into one summary with
// extracted key points.
func SummarizeSessions(
	ctx context.Context,
	s Summarizer,
	sessions []SessionText,
) (Summary, error) {
	var combined strings.Builder
	for _, sess := range sessions {
		if sess.Transcript == "" {
			continue
		}
		fmt.Fprintf(&combined, "Session %d: %s", sess.Number, sess.Transcript)
		if sess.Notes != "" {
			fmt.Fprintf(&combined, " Notes: %s", sess.Notes)
		}
		combined.WriteString("\n\n")
	}

	if strings.TrimSpace(combined.String()) == "" {
		return Summary{SessionCount: len(sessions)}, fmt.Errorf("no session text to summarize")
	}

	text, err := s.Summarize(ctx, clip(combined.String(), 3000))
	if err != nil {
		return Summary{}, err
	}

	var keyPoints []string
	for _, sentence := range strings.Split(text, ".") {
		if t := strings.TrimSpace(sentence); t != "" {
			keyPoints = append(keyPoints, t+".")
		}
		if len(keyPoints) == 5 {
			break
		}
	}

	return Summary{
		Text:         text,
		KeyPoints:    keyPoints,
		SessionCount: len(sessions),
	}, nil
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
