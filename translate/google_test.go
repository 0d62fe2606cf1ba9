package translate

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"
)

func TestParseGtxResponse(t *testing.T) {
	body := []byte(`[[["Hello ","नमस्ते ",null,null,10],["world","दुनिया",null,null,10]],null,"hi"]`)
	text, err := parseGtxResponse(body)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if text != "Hello world" {
		t.Errorf("got %q", text)
	}
}

func TestParseGtxResponseMalformed(t *testing.T) {
	for _, body := range []string{`{}`, `[]`, `[[[]]]`} {
		if _, err := parseGtxResponse([]byte(body)); err == nil {
			t.Errorf("expected error for %s", body)
		}
	}
}

func TestGoogleClientTranslate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("sl") != "hi" || q.Get("tl") != "en" {
			t.Errorf("unexpected language pair %s -> %s", q.Get("sl"), q.Get("tl"))
		}
		if q.Get("q") != "नमस्ते" {
			t.Errorf("unexpected query text %q", q.Get("q"))
		}
		w.Write([]byte(`[[["hello","नमस्ते",null,null,10]],null,"hi"]`))
	}))
	defer server.Close()

	client := NewGoogleClient(server.URL, log.New(io.Discard))
	text, err := client.Translate(context.Background(), "नमस्ते", "hi", "en")
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if text != "hello" {
		t.Errorf("got %q", text)
	}
}

func TestGoogleClientServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewGoogleClient(server.URL, log.New(io.Discard))
	if _, err := client.Translate(context.Background(), "text", "hi", "en"); err == nil {
		t.Error("expected error for non-200 response")
	}
}

func TestGoogleClientEmptyTextPassesThrough(t *testing.T) {
	client := NewGoogleClient("http://unused", log.New(io.Discard))
	text, err := client.Translate(context.Background(), "  ", "hi", "en")
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if text != "  " {
		t.Errorf("empty input should pass through, got %q", text)
	}
}
