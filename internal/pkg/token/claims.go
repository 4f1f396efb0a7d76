// internal/pkg/token/claims.go
package token

import (
	"github.com/golang-jwt/jwt/v5"

	"sentra-auth/internal/pkg/session"
)

// Payload is the application portion of a token. It is immutable once
// issued; changing anything means issuing a new token.
type Payload struct {
	ClientID string               `json:"client_id"`
	Role     string               `json:"role"`
	Provider session.ProviderInfo `json:"provider"`
	TFA      session.TFAStatus    `json:"tfa"`
}

// Claims combines the payload with the registered JWT claim set used by the
// signed mode.
type Claims struct {
	Payload
	jwt.RegisteredClaims
}

// PayloadFromUser lifts a session user into a token payload.
func PayloadFromUser(u *session.UserState) *Payload {
	return &Payload{
		ClientID: u.ClientID,
		Role:     u.Role,
		Provider: u.Provider,
		TFA:      u.TFA,
	}
}
