package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/ericfisherdev/panelctl/internal/domain/model"
	"github.com/ericfisherdev/panelctl/internal/domain/port/driven"
)

// Session owns the panel bearer credential. It is the token source for the
// request authorizer and the only place the credential is written or cleared.
type Session struct {
	store     driven.CredentialStore
	navigator driven.Navigator
	landing   string
	logger    *slog.Logger
}

// NewSession creates a Session. landing is where Terminate sends the user.
func NewSession(store driven.CredentialStore, navigator driven.Navigator, landing string, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		store:     store,
		navigator: navigator,
		landing:   landing,
		logger:    logger,
	}
}

// Token returns the stored credential, or "" when signed out.
func (s *Session) Token(ctx context.Context) (string, error) {
	return s.store.Get(ctx, model.TokenKey)
}

// Start stores token as the current credential, replacing any previous one.
func (s *Session) Start(ctx context.Context, token string) error {
	if token == "" {
		return errors.New("start session: empty token")
	}
	if err := s.store.Set(ctx, model.TokenKey, token); err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	s.logger.Info("session started")
	return nil
}

// Status returns the stored credential record, or nil when signed out.
func (s *Session) Status(ctx context.Context) (*model.Credential, error) {
	creds, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("session status: %w", err)
	}
	for i := range creds {
		if creds[i].Key == model.TokenKey && creds[i].Value != "" {
			return &creds[i], nil
		}
	}
	return nil, nil
}

// Terminate clears the credential and navigates to the landing location.
// It is safe to call without a stored credential. Navigation happens even
// when clearing fails; both errors are returned.
func (s *Session) Terminate(ctx context.Context) error {
	var errs []error

	if err := s.store.Delete(ctx, model.TokenKey); err != nil {
		s.logger.Error("failed to clear credential", "error", err)
		errs = append(errs, fmt.Errorf("clear credential: %w", err))
	}

	if err := s.navigator.Navigate(ctx, s.landing); err != nil {
		s.logger.Error("failed to navigate to landing page", "location", s.landing, "error", err)
		errs = append(errs, fmt.Errorf("navigate to %s: %w", s.landing, err))
	}

	s.logger.Info("session terminated", "location", s.landing)
	return errors.Join(errs...)
}

// HandleAuthError terminates the session when resp is 401 Unauthorized and
// does nothing otherwise.
func (s *Session) HandleAuthError(ctx context.Context, resp model.Response) error {
	if resp.Status != http.StatusUnauthorized {
		return nil
	}
	return s.Terminate(ctx)
}
