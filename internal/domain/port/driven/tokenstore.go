package driven

import "context"

// TokenStore defines the driven port for the durable single-slot access token.
// Each Save overwrites the previous token.
type TokenStore interface {
	// Save replaces the stored token.
	Save(ctx context.Context, token string) error

	// Load returns the stored token, or ("", nil) when nothing has been saved.
	Load(ctx context.Context) (string, error)
}
