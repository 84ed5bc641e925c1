// Package httphandler is the HTTP driving adapter: OAuth endpoints and the JSON
// API that relays person updates to the remote service.
package httphandler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ericfisherdev/pike13bridge/internal/application"
	"github.com/ericfisherdev/pike13bridge/internal/domain/model"
	"github.com/ericfisherdev/pike13bridge/internal/domain/port/driven"
)

// LoginPath is where callers are sent to start authorization.
const LoginPath = "/auth/login"

// Handler is the HTTP driving adapter that serves the OAuth flow and the REST API.
type Handler struct {
	sessions *SessionStore
	oauth    driven.OAuthProvider
	creds    *application.CredentialService
	resolver *application.FieldResolver
	engine   *application.UpdateEngine
	api      driven.RemoteAPI
	logger   *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	sessions *SessionStore,
	oauth driven.OAuthProvider,
	creds *application.CredentialService,
	resolver *application.FieldResolver,
	engine *application.UpdateEngine,
	api driven.RemoteAPI,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		sessions: sessions,
		oauth:    oauth,
		creds:    creds,
		resolver: resolver,
		engine:   engine,
		api:      api,
		logger:   logger,
	}
}

// RegisterAPIRoutes registers the OAuth and JSON API routes on mux.
func RegisterAPIRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("GET "+LoginPath, h.Login)
	mux.HandleFunc("GET /auth/callback", h.Callback)
	mux.HandleFunc("GET /api/v1/auth/status", h.AuthStatus)

	mux.HandleFunc("POST /api/v1/update-membership", h.UpdateMembership)
	mux.HandleFunc("POST /api/v1/update-location", h.UpdateLocation)
	mux.HandleFunc("GET /api/v1/locations", h.ListLocations)
	mux.HandleFunc("GET /api/v1/custom-fields", h.ListCustomFields)
	mux.HandleFunc("POST /api/v1/test-field-methods", h.TestFieldMethods)
	mux.HandleFunc("POST /api/v1/test-location-methods", h.TestLocationMethods)

	mux.HandleFunc("GET /api/v1/health", h.Health)
}

// NewServeMux creates an http.Handler with the API routes registered and
// wrapped with the standard middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	RegisterAPIRoutes(mux, h)
	return ApplyMiddleware(mux, logger)
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// credential resolves the caller's token. When none is available it writes
// the 401 response and returns false.
func (h *Handler) credential(w http.ResponseWriter, r *http.Request) (model.Credential, bool) {
	cred, ok := h.creds.Resolve(r.Context(), h.sessions.Token(r))
	if !ok {
		writeJSON(w, http.StatusUnauthorized, unauthenticatedResponse{
			Error:   "not authenticated",
			AuthURL: LoginPath,
		})
		return model.Credential{}, false
	}
	return cred, true
}

// detailer is implemented by remote API errors that carry the remote's own body.
type detailer interface {
	Details() any
}

// unauthorizer is implemented by remote API errors that can report a rejected token.
type unauthorizer interface {
	Unauthorized() bool
}

// writeRemoteError relays a remote failure as a 500 carrying the remote
// payload when there is one, or the error text otherwise.
func (h *Handler) writeRemoteError(w http.ResponseWriter, r *http.Request, message string, err error) {
	h.logger.Error(message, "request_id", RequestID(r.Context()), "error", err)
	var u unauthorizer
	if errors.As(err, &u) && u.Unauthorized() {
		h.logger.Warn("remote rejected access token", "request_id", RequestID(r.Context()), "auth_url", LoginPath)
	}

	resp := errorResponse{Error: message, Details: err.Error()}
	var d detailer
	if errors.As(err, &d) {
		resp.Details = d.Details()
	}
	writeJSON(w, http.StatusInternalServerError, resp)
}
