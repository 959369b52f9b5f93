package panel

import (
	"context"
	"log/slog"
	"net/http"
)

// TokenSource yields the current bearer credential. "" means signed out.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Authorizer is the request middleware every panel call passes through. It
// declares a JSON body and attaches "Authorization: Bearer <token>", reading
// the token at the moment the request is sent. A signed-out or unreadable
// credential still sends the header, as "Bearer " with an empty token.
type Authorizer struct {
	base   http.RoundTripper
	tokens TokenSource
	logger *slog.Logger
}

// NewAuthorizer wraps base. A nil base means http.DefaultTransport.
func NewAuthorizer(base http.RoundTripper, tokens TokenSource, logger *slog.Logger) *Authorizer {
	if base == nil {
		base = http.DefaultTransport
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Authorizer{base: base, tokens: tokens, logger: logger}
}

// RoundTrip implements http.RoundTripper.
func (a *Authorizer) RoundTrip(req *http.Request) (*http.Response, error) {
	token, err := a.tokens.Token(req.Context())
	if err != nil {
		a.logger.Warn("credential unavailable, sending request unauthenticated",
			"path", req.URL.Path,
			"error", err,
		)
		token = ""
	}

	authorized := req.Clone(req.Context())
	authorized.Header.Set("Content-Type", "application/json")
	authorized.Header.Set("Authorization", "Bearer "+token)

	a.logger.Debug("panel request", "method", req.Method, "path", req.URL.Path, "authenticated", token != "")
	return a.base.RoundTrip(authorized)
}
