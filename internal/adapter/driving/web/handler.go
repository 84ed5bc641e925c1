// Package web implements the HTML driving adapter using templ components.
package web

import (
	"log/slog"
	"net/http"

	"github.com/ericfisherdev/pike13bridge/internal/application"
)

// SessionTokens returns the access token bound to a request's session.
type SessionTokens interface {
	Token(r *http.Request) string
}

// Handler is the web driving adapter that serves HTML via templ components.
type Handler struct {
	creds     *application.CredentialService
	sessions  SessionTokens
	loginPath string
	fieldName string
	logger    *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	creds *application.CredentialService,
	sessions SessionTokens,
	loginPath string,
	fieldName string,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		creds:     creds,
		sessions:  sessions,
		loginPath: loginPath,
		fieldName: fieldName,
		logger:    logger,
	}
}

// Landing renders the landing page with the full HTML layout.
func (h *Handler) Landing(w http.ResponseWriter, r *http.Request) {
	cred, ok := h.creds.Resolve(r.Context(), h.sessions.Token(r))
	v := toLandingViewModel(cred, ok, h.loginPath, h.fieldName)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := Layout(v.Title, Landing(v)).Render(r.Context(), w); err != nil {
		h.logger.Error("failed to render landing page", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
