package httphandler

import (
	"crypto/sha256"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
)

const (
	sessionName = "pike13bridge"

	keyToken       = "access_token"
	keyState       = "oauth_state"
	keyStateExpiry = "oauth_state_expiry"

	stateTTL = 10 * time.Minute
)

// ErrStateMismatch is returned by TakeState when the callback state is absent,
// different from the one issued, or expired.
var ErrStateMismatch = errors.New("oauth state mismatch")

// SessionStore binds the access token and the pending OAuth state to the
// caller's browser through an encrypted cookie.
type SessionStore struct {
	store sessions.Store
}

// NewSessionStore creates a cookie-backed SessionStore. When secret is nil a
// random key is generated, so sessions do not survive a restart. secure marks
// the cookie HTTPS-only.
func NewSessionStore(secret []byte, secure bool) *SessionStore {
	if secret == nil {
		secret = securecookie.GenerateRandomKey(32)
	}
	blockKey := sha256.Sum256(append([]byte("pike13bridge session block key:"), secret...))

	store := sessions.NewCookieStore(secret, blockKey[:])
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 30,
		HttpOnly: true,
		Secure:   secure,
		// Lax so the cookie rides along on the provider's redirect back to /auth/callback.
		SameSite: http.SameSiteLaxMode,
	}
	return &SessionStore{store: store}
}

// Get returns the caller's session. A cookie that fails to decode, for example
// after a key rotation, yields a fresh empty session.
func (s *SessionStore) Get(r *http.Request) *Session {
	sess, _ := s.store.Get(r, sessionName)
	return &Session{sess: sess}
}

// Token returns the access token bound to the caller's session, or "".
func (s *SessionStore) Token(r *http.Request) string {
	return s.Get(r).Token()
}

// Session is one request's view of the caller's session. Changes are written
// back with a single Save.
type Session struct {
	sess *sessions.Session
}

// Token returns the bound access token, or "".
func (s *Session) Token() string {
	token, _ := s.sess.Values[keyToken].(string)
	return token
}

// SetToken binds token to the session.
func (s *Session) SetToken(token string) {
	s.sess.Values[keyToken] = token
}

// SetState records the state issued for a pending authorization.
func (s *Session) SetState(state string) {
	s.sess.Values[keyState] = state
	s.sess.Values[keyStateExpiry] = time.Now().Add(stateTTL).Unix()
}

// TakeState consumes the pending state and checks it against got. The pending
// state is cleared whether or not it matches.
func (s *Session) TakeState(got string) error {
	saved, _ := s.sess.Values[keyState].(string)
	expiry, _ := s.sess.Values[keyStateExpiry].(int64)

	delete(s.sess.Values, keyState)
	delete(s.sess.Values, keyStateExpiry)

	if saved == "" || got != saved || time.Now().Unix() > expiry {
		return ErrStateMismatch
	}
	return nil
}

// Save writes the session cookie.
func (s *Session) Save(w http.ResponseWriter, r *http.Request) error {
	return s.sess.Save(r, w)
}
