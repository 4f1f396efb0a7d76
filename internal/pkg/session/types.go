// internal/pkg/session/types.go
package session

import "time"

// ProviderKind identifies how the account was created.
type ProviderKind string

const (
	ProviderLocal  ProviderKind = "local"
	ProviderGoogle ProviderKind = "google"
	ProviderGitHub ProviderKind = "github"
)

// TFAStatus tracks second-factor state for the current session.
type TFAStatus struct {
	Enabled       bool `json:"enabled"`
	Authenticated bool `json:"authenticated"`
}

// ProviderInfo describes the auth provider backing the session's user.
// Completed is false until the user finishes provider setup (username).
type ProviderInfo struct {
	ID        string       `json:"id"`
	Kind      ProviderKind `json:"provider"`
	Completed bool         `json:"completed"`
}

// UserState is the identity portion of a session.
type UserState struct {
	ClientID string       `json:"client_id"`
	Role     string       `json:"role"`
	Provider ProviderInfo `json:"provider"`
	TFA      TFAStatus    `json:"tfa"`
}

// State is the full session record. It lives only inside the encrypted
// cookie and is never persisted server side; controllers mutate it and it is
// re-encrypted once per response.
type State struct {
	User    *UserState `json:"user,omitempty"`
	Expires *time.Time `json:"expires,omitempty"`
	// MaxAge overrides the configured cookie lifetime, in seconds.
	MaxAge int `json:"max_age,omitempty"`
}
