// Package auth inspects the customer session token carried by local API requests.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Common errors
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

type tokenKey struct{}

// WithToken stores the session bearer token in the context
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFromContext returns the session bearer token, or "" when the request carries none
func TokenFromContext(ctx context.Context) string {
	if token, ok := ctx.Value(tokenKey{}).(string); ok {
		return token
	}
	return ""
}

// BearerToken extracts the token from an Authorization header value
func BearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

// SessionChecker decides whether a checkout may proceed for the current session.
//
// The storefront never holds the signing key, so JWTs are parsed without
// verification and only their expiry is checked. The backend verifies the
// signature on every call. Opaque tokens are accepted as they are.
type SessionChecker struct {
	fallbackToken string
	parser        *jwt.Parser
	now           func() time.Time
}

// SessionCheckerOption configures a SessionChecker
type SessionCheckerOption func(*SessionChecker)

// WithClock overrides the time source used for expiry checks
func WithClock(now func() time.Time) SessionCheckerOption {
	return func(c *SessionChecker) {
		c.now = now
	}
}

// NewSessionChecker creates a checker. fallbackToken is used when a request carries no token.
func NewSessionChecker(fallbackToken string, opts ...SessionCheckerOption) *SessionChecker {
	c := &SessionChecker{
		fallbackToken: fallbackToken,
		parser:        jwt.NewParser(),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Token returns the token that outgoing calls should carry for ctx
func (c *SessionChecker) Token(ctx context.Context) string {
	if token := TokenFromContext(ctx); token != "" {
		return token
	}
	return c.fallbackToken
}

// IsAuthenticated reports whether ctx carries a present, unexpired session token
func (c *SessionChecker) IsAuthenticated(ctx context.Context) (bool, error) {
	token := c.Token(ctx)
	if token == "" {
		return false, nil
	}
	if err := c.Inspect(token); err != nil {
		if errors.Is(err, ErrInvalidToken) || errors.Is(err, ErrExpiredToken) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Inspect checks a token. Non-JWT tokens pass; JWTs must be well formed and unexpired.
func (c *SessionChecker) Inspect(token string) error {
	if strings.Count(token, ".") != 2 {
		return nil
	}

	claims := &jwt.RegisteredClaims{}
	if _, _, err := c.parser.ParseUnverified(token, claims); err != nil {
		return ErrInvalidToken
	}
	if claims.ExpiresAt != nil && !c.now().Before(claims.ExpiresAt.Time) {
		return ErrExpiredToken
	}
	return nil
}
