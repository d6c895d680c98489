package auth_test

import (
	"testing"
	"time"

	"github.com/roadcheck/inspecthub/internal/auth"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	m := auth.NewManager("secret", time.Hour)

	token, err := m.GenerateAccessToken("user-123", "someone")

	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	claims, err := m.VerifyAccessToken(token)

	if err != nil {
		t.Fatalf("failed to verify token: %v", err)
	}

	if claims.UserID != "user-123" {
		t.Fatalf("got subject %q, want %q", claims.UserID, "user-123")
	}

	if claims.Username != "someone" {
		t.Fatalf("got username %q, want %q", claims.Username, "someone")
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer := auth.NewManager("secret-a", time.Hour)
	verifier := auth.NewManager("secret-b", time.Hour)

	token, err := issuer.GenerateAccessToken("user-123", "someone")

	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	if _, err := verifier.VerifyAccessToken(token); err == nil {
		t.Fatalf("expected verification to fail across secrets")
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	m := auth.NewManager("secret", time.Hour)

	if _, err := m.VerifyAccessToken("not-a-jwt"); err == nil {
		t.Fatalf("expected verification to fail for garbage input")
	}
}

func TestZeroTTLIssuesTokenWithoutExpiry(t *testing.T) {
	m := auth.NewManager("secret", 0)

	token, err := m.GenerateAccessToken("user-123", "someone")

	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	claims, err := m.VerifyAccessToken(token)

	if err != nil {
		t.Fatalf("failed to verify token: %v", err)
	}

	if claims.ExpiresAt != nil {
		t.Fatalf("expected no exp claim, got %v", claims.ExpiresAt)
	}
}

func TestExpiredTokenIsRejected(t *testing.T) {
	m := auth.NewManager("secret", time.Nanosecond)

	token, err := m.GenerateAccessToken("user-123", "someone")

	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	time.Sleep(10 * time.Millisecond)

	if _, err := m.VerifyAccessToken(token); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
}
