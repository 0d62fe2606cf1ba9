package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTokenRoundTrip(t *testing.T) {
	tokens := NewTokens("test-secret")

	raw, err := tokens.Issue(42)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	id, err := tokens.Verify(raw)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if id != 42 {
		t.Errorf("got therapist %d, want 42", id)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	raw, err := NewTokens("secret-a").Issue(1)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := NewTokens("secret-b").Verify(raw); err == nil {
		t.Error("token signed with another secret must not verify")
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	if _, err := NewTokens("s").Verify("not.a.token"); err == nil {
		t.Error("expected error for malformed token")
	}
}

func TestMiddleware(t *testing.T) {
	tokens := NewTokens("test-secret")
	raw, err := tokens.Issue(7)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	var seen int64
	handler := tokens.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = TherapistID(r.Context())
	}))

	req := httptest.NewRequest("GET", "/patients", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if seen != 7 {
		t.Errorf("context carried therapist %d, want 7", seen)
	}
}

func TestMiddlewareRejectsMissingToken(t *testing.T) {
	handler := NewTokens("s").Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run without a token")
	}))

	req := httptest.NewRequest("GET", "/patients", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status %d, want 401", rec.Code)
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckPassword(hash, "hunter2") {
		t.Error("correct password rejected")
	}
	if CheckPassword(hash, "wrong") {
		t.Error("wrong password accepted")
	}
}
