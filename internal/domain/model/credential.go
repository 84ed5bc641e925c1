package model

import "time"

// CredentialSource identifies where a resolved access token came from.
type CredentialSource string

const (
	CredentialSourceSession CredentialSource = "session" // Bound to the caller's session cookie.
	CredentialSourceStore   CredentialSource = "store"   // Read from the durable single-slot store.
)

// Credential is the OAuth access token used to call the remote API. Expiry is
// not tracked; a stale token only shows up as a remote authorization failure.
type Credential struct {
	AccessToken string
	Source      CredentialSource
	ObtainedAt  time.Time
}
