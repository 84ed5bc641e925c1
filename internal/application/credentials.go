package application

import (
	"context"
	"log/slog"

	"github.com/ericfisherdev/pike13bridge/internal/domain/model"
	"github.com/ericfisherdev/pike13bridge/internal/domain/port/driven"
)

// CredentialService resolves the access token for a request. The durable store
// is fail-soft: write errors are logged and dropped, read errors count as "no token".
type CredentialService struct {
	store  driven.TokenStore
	logger *slog.Logger
}

// NewCredentialService creates a CredentialService. store may be nil, in which
// case only session tokens resolve.
func NewCredentialService(store driven.TokenStore, logger *slog.Logger) *CredentialService {
	return &CredentialService{store: store, logger: logger}
}

// Resolve returns the token bound to the caller's session when there is one,
// otherwise the most recently stored token. ok is false when neither exists.
func (s *CredentialService) Resolve(ctx context.Context, sessionToken string) (model.Credential, bool) {
	if sessionToken != "" {
		return model.Credential{AccessToken: sessionToken, Source: model.CredentialSourceSession}, true
	}
	if s.store == nil {
		return model.Credential{}, false
	}

	token, err := s.store.Load(ctx)
	if err != nil {
		s.logger.Warn("failed to read stored token, treating as absent", "error", err)
		return model.Credential{}, false
	}
	if token == "" {
		return model.Credential{}, false
	}
	return model.Credential{AccessToken: token, Source: model.CredentialSourceStore}, true
}

// Remember writes cred to the durable store on a best-effort basis.
func (s *CredentialService) Remember(ctx context.Context, cred model.Credential) {
	if s.store == nil || cred.AccessToken == "" {
		return
	}
	if err := s.store.Save(ctx, cred.AccessToken); err != nil {
		s.logger.Warn("failed to persist token", "error", err)
		return
	}
	s.logger.Info("token persisted", "obtained_at", cred.ObtainedAt)
}
