// Package session carries the bearer credential for the board API.
//
// A Session is passed explicitly to the API client; nothing reads the token from
// ambient process state. Token issuance is out of scope: the token is obtained
// elsewhere and configured by the user.
package session

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var (
	ErrNoToken      = errors.New("no session token; run `kanban session set <token>` or pass --token")
	ErrTokenExpired = errors.New("session token has expired")
)

type Session struct {
	token string
	now   func() time.Time
}

func New(token string) *Session {
	return &Session{token: strings.TrimSpace(token), now: time.Now}
}

func (s *Session) Token() string {
	if s == nil {
		return ""
	}
	return s.token
}

// Bearer returns the value for the Authorization header. A missing token is a
// precondition failure; an expired JWT is reported before any request is made.
func (s *Session) Bearer() (string, error) {
	if s == nil || s.token == "" {
		return "", ErrNoToken
	}
	if c, err := s.Claims(); err == nil && c.Expired(s.now()) {
		return "", ErrTokenExpired
	}
	return "Bearer " + s.token, nil
}

// Claims are the unverified claims of a JWT session token. The server verifies the
// signature; the client only reads them for display and expiry checks.
type Claims struct {
	Subject   string    `json:"subject,omitempty"`
	ExpiresAt time.Time `json:"expiresAt,omitzero"`
	IssuedAt  time.Time `json:"issuedAt,omitzero"`
}

func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// Claims parses the token without verifying it. Opaque (non-JWT) tokens return an error.
func (s *Session) Claims() (Claims, error) {
	if s == nil || s.token == "" {
		return Claims{}, ErrNoToken
	}
	var rc jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(s.token, &rc); err != nil {
		return Claims{}, err
	}
	out := Claims{Subject: rc.Subject}
	if rc.ExpiresAt != nil {
		out.ExpiresAt = rc.ExpiresAt.Time
	}
	if rc.IssuedAt != nil {
		out.IssuedAt = rc.IssuedAt.Time
	}
	return out, nil
}

// Redacted returns a display-safe form of the token.
func (s *Session) Redacted() string {
	t := s.Token()
	if len(t) <= 12 {
		if t == "" {
			return ""
		}
		return "****"
	}
	return t[:6] + "…" + t[len(t)-4:]
}
