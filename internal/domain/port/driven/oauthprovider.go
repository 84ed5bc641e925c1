package driven

import (
	"context"

	"github.com/ericfisherdev/pike13bridge/internal/domain/model"
)

// OAuthProvider defines the driven port for the remote authorization-code flow.
type OAuthProvider interface {
	// AuthCodeURL returns the provider URL the browser is sent to, carrying state.
	AuthCodeURL(state string) string

	// Exchange trades an authorization code for an access token.
	Exchange(ctx context.Context, code string) (model.Credential, error)
}

// AuthorizationError is an error reported by the OAuth provider, either on the
// callback redirect or from the token endpoint. Code and Description are the
// provider's own values and are relayed to the caller unchanged.
type AuthorizationError struct {
	Code        string
	Description string
}

func (e *AuthorizationError) Error() string {
	if e.Description == "" {
		return "oauth: " + e.Code
	}
	return "oauth: " + e.Code + ": " + e.Description
}
