package session

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

func signed(t *testing.T, claims jwt.RegisteredClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok
}

func TestBearer_MissingToken(t *testing.T) {
	if _, err := New("   ").Bearer(); !errors.Is(err, ErrNoToken) {
		t.Fatalf("expected ErrNoToken, got %v", err)
	}
	var nilSession *Session
	if _, err := nilSession.Bearer(); !errors.Is(err, ErrNoToken) {
		t.Fatalf("expected ErrNoToken for nil session, got %v", err)
	}
}

func TestBearer_OpaqueToken(t *testing.T) {
	got, err := New("abc123").Bearer()
	if err != nil {
		t.Fatalf("bearer: %v", err)
	}
	if got != "Bearer abc123" {
		t.Fatalf("unexpected header: %q", got)
	}
}

func TestBearer_ExpiredJWT(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tok := signed(t, jwt.RegisteredClaims{
		Subject:   "ana@example.com",
		ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute)),
	})
	s := New(tok)
	s.now = func() time.Time { return now }
	if _, err := s.Bearer(); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestClaims(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tok := signed(t, jwt.RegisteredClaims{
		Subject:   "ana@example.com",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	})
	s := New(tok)
	s.now = func() time.Time { return now }

	c, err := s.Claims()
	if err != nil {
		t.Fatalf("claims: %v", err)
	}
	if c.Subject != "ana@example.com" {
		t.Fatalf("unexpected subject %q", c.Subject)
	}
	if c.Expired(now) {
		t.Fatalf("token should not be expired yet")
	}
	if !c.Expired(now.Add(2 * time.Hour)) {
		t.Fatalf("token should be expired later")
	}
	if _, err := s.Bearer(); err != nil {
		t.Fatalf("bearer: %v", err)
	}
}

func TestRedacted(t *testing.T) {
	if got := New("short").Redacted(); got != "****" {
		t.Fatalf("unexpected redaction %q", got)
	}
	if got := New("abcdefghijklmnopqrstuvwxyz").Redacted(); got != "abcdef…wxyz" {
		t.Fatalf("unexpected redaction %q", got)
	}
}
