// Package oauth implements the OAuthProvider port with golang.org/x/oauth2.
package oauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/ericfisherdev/pike13bridge/internal/domain/model"
	"github.com/ericfisherdev/pike13bridge/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.OAuthProvider = (*Provider)(nil)

// Provider runs the authorization-code flow against the remote's OAuth endpoints.
type Provider struct {
	cfg        oauth2.Config
	httpClient *http.Client
	now        func() time.Time
}

// NewProvider creates a Provider. Client credentials are sent in the request
// body, which the remote's token endpoint expects.
func NewProvider(clientID, clientSecret, redirectURI, authURL, tokenURL string) *Provider {
	return &Provider{
		cfg: oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Endpoint: oauth2.Endpoint{
				AuthURL:   authURL,
				TokenURL:  tokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		now: time.Now,
	}
}

// WithHTTPClient returns a copy of p that performs token exchanges with hc.
func (p *Provider) WithHTTPClient(hc *http.Client) *Provider {
	cp := *p
	cp.httpClient = hc
	return &cp
}

// AuthCodeURL returns the authorize URL with client_id, redirect_uri,
// response_type=code and state.
func (p *Provider) AuthCodeURL(state string) string {
	return p.cfg.AuthCodeURL(state)
}

// Exchange trades code for an access token. Errors reported by the token
// endpoint come back as *driven.AuthorizationError.
func (p *Provider) Exchange(ctx context.Context, code string) (model.Credential, error) {
	if p.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	}

	tok, err := p.cfg.Exchange(ctx, code)
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) {
			return model.Credential{}, toAuthorizationError(re)
		}
		return model.Credential{}, fmt.Errorf("exchanging authorization code: %w", err)
	}

	return model.Credential{
		AccessToken: tok.AccessToken,
		Source:      model.CredentialSourceSession,
		ObtainedAt:  p.now().UTC(),
	}, nil
}

func toAuthorizationError(re *oauth2.RetrieveError) *driven.AuthorizationError {
	if re.ErrorCode != "" {
		return &driven.AuthorizationError{Code: re.ErrorCode, Description: re.ErrorDescription}
	}
	desc := strings.TrimSpace(string(re.Body))
	if desc == "" && re.Response != nil {
		desc = re.Response.Status
	}
	return &driven.AuthorizationError{Code: "token_exchange_failed", Description: desc}
}
