package httphandler

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/ericfisherdev/pike13bridge/internal/domain/port/driven"
)

// Login starts the authorization-code flow by redirecting to the provider.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()
	sess := h.sessions.Get(r)
	sess.SetState(state)
	if err := sess.Save(w, r); err != nil {
		h.logger.Error("failed to save session", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save session")
		return
	}

	http.Redirect(w, r, h.oauth.AuthCodeURL(state), http.StatusFound)
}

// Callback completes authorization. The token is bound to the session and
// written to the durable store, then the browser is sent to the landing page.
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if code := query.Get("error"); code != "" {
		h.logger.Warn("authorization denied by provider", "error", code)
		writeJSON(w, http.StatusBadRequest, authorizationErrorResponse{
			Error:            code,
			ErrorDescription: query.Get("error_description"),
		})
		return
	}

	code := query.Get("code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "missing code parameter")
		return
	}

	sess := h.sessions.Get(r)
	if err := sess.TakeState(query.Get("state")); err != nil {
		h.saveSession(w, r, sess)
		writeError(w, http.StatusBadRequest, "invalid state parameter")
		return
	}

	cred, err := h.oauth.Exchange(r.Context(), code)
	if err != nil {
		h.saveSession(w, r, sess)
		var authErr *driven.AuthorizationError
		if errors.As(err, &authErr) {
			h.logger.Warn("token exchange rejected", "error", authErr.Code)
			writeJSON(w, http.StatusBadRequest, authorizationErrorResponse{
				Error:            authErr.Code,
				ErrorDescription: authErr.Description,
			})
			return
		}
		h.writeRemoteError(w, r, "token exchange failed", err)
		return
	}

	sess.SetToken(cred.AccessToken)
	h.saveSession(w, r, sess)
	h.creds.Remember(r.Context(), cred)

	h.logger.Info("authorization completed")
	http.Redirect(w, r, "/", http.StatusFound)
}

// AuthStatus reports whether a token is available for API calls.
func (h *Handler) AuthStatus(w http.ResponseWriter, r *http.Request) {
	cred, ok := h.creds.Resolve(r.Context(), h.sessions.Token(r))
	writeJSON(w, http.StatusOK, AuthStatusResponse{
		Authenticated: ok,
		Source:        string(cred.Source),
	})
}

// saveSession writes the session cookie. A failure only costs the caller the
// session binding, so it is logged and the request continues.
func (h *Handler) saveSession(w http.ResponseWriter, r *http.Request, sess *Session) {
	if err := sess.Save(w, r); err != nil {
		h.logger.Warn("failed to save session", "error", err)
	}
}
