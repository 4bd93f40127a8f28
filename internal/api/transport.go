package api

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// TokenSource supplies the current bearer token; "" means anonymous.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// AuthTransport attaches the bearer token to every outgoing request except
// the auth endpoints. The original request is never mutated; the header goes
// on a clone. A missing token is a valid anonymous state, not an error.
type AuthTransport struct {
	Base   http.RoundTripper
	Tokens TokenSource
	Logger *zap.Logger
}

func (t *AuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	if isAuthEndpoint(req.URL.Path) {
		return base.RoundTrip(req)
	}

	token, err := t.Tokens.Token(req.Context())
	if err != nil {
		if t.Logger != nil {
			t.Logger.Warn("read token", zap.Error(err))
		}
		return base.RoundTrip(req)
	}
	if token == "" {
		return base.RoundTrip(req)
	}

	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", "Bearer "+token)
	return base.RoundTrip(clone)
}

func isAuthEndpoint(path string) bool {
	return strings.Contains(path, "/auth/login") || strings.Contains(path, "/auth/signup")
}
