package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

const DefaultBaseURL = "https://translate.googleapis.com"

// GoogleClient uses the public gtx translate endpoint, the same backend
// the mobile app's translation feature relies on.
type GoogleClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger
}

func NewGoogleClient(baseURL string, logger *log.Logger) *GoogleClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &GoogleClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}
}

func (c *GoogleClient) Translate(
	ctx context.Context,
	text, source, target string,
) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}
	if source == "" {
		source = "auto"
	}

	params := url.Values{}
	params.Set("client", "gtx")
	params.Set("dt", "t")
	params.Set("sl", source)
	params.Set("tl", target)
	params.Set("q", text)

	reqURL := fmt.Sprintf(
		"%s/translate_a/single?%s",
		c.baseURL,
		params.Encode(),
	)
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("translate request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translate status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	translated, err := parseGtxResponse(body)
	if err != nil {
		return "", err
	}

	c.logger.Debug("translated", "from", source, "to", target, "len", len(translated))
	return translated, nil
}

// parseGtxResponse pulls the translated sentences out of the gtx array
// format: [[["<translated>","<original>",...],...],...].
func parseGtxResponse(body []byte) (string, error) {
	var outer []json.RawMessage
	if err := json.Unmarshal(body, &outer); err != nil {
		return "", fmt.Errorf("decode translate response: %w", err)
	}
	if len(outer) == 0 {
		return "", fmt.Errorf("empty translate response")
	}

	var sentences [][]json.RawMessage
	if err := json.Unmarshal(outer[0], &sentences); err != nil {
		return "", fmt.Errorf("decode translate sentences: %w", err)
	}

	var sb strings.Builder
	for _, sentence := range sentences {
		if len(sentence) == 0 {
			continue
		}
		var chunk string
		if err := json.Unmarshal(sentence[0], &chunk); err != nil {
			continue
		}
		sb.WriteString(chunk)
	}

	if sb.Len() == 0 {
		return "", fmt.Errorf("translate response had no text")
	}
	return sb.String(), nil
}
