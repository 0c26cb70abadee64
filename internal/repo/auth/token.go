package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v5"
)

// TokenSource answers whether authenticated headers can be attached. It is
// read-only; issuing and storing tokens happens elsewhere.
type TokenSource interface {
	Token(ctx context.Context) (string, bool)
}

type ctxKey struct{}

// WithToken carries a caller's bearer token so it is forwarded upstream.
func WithToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, token)
}

type tokenSource struct {
	static string
	now    func() time.Time
}

// NewTokenSource prefers the token carried by the context and falls back to
// the static one. Expired tokens are never returned.
func NewTokenSource(static string) TokenSource {
	return &tokenSource{static: strings.TrimSpace(static), now: time.Now}
}

func (s *tokenSource) Token(ctx context.Context) (string, bool) {
	if tok, ok := ctx.Value(ctxKey{}).(string); ok && Usable(tok, s.now()) {
		return tok, true
	}
	if s.static != "" && Usable(s.static, s.now()) {
		return s.static, true
	}
	return "", false
}

// Usable reports whether tok has not expired at now. The signature is not
// checked; that is the backend's job. Tokens that are not JWTs are passed
// through as-is.
func Usable(tok string, now time.Time) bool {
	if tok == "" {
		return false
	}
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		return strings.Count(tok, ".") != 2
	}
	if claims.ExpiresAt == nil {
		return true
	}
	return now.Before(claims.ExpiresAt.Time)
}

// GetBearerToken extracts the Bearer token from the Authorization header
func GetBearerToken(h http.Header) string {
	v := h.Get("Authorization")
	if v == "" {
		return ""
	}
	parts := strings.SplitN(v, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// Authorize attaches the bearer token to r when one is available.
func Authorize(ctx context.Context, src TokenSource, r *resty.Request) *resty.Request {
	if src == nil {
		return r
	}
	if tok, ok := src.Token(ctx); ok {
		r.SetAuthToken(tok)
	}
	return r
}
