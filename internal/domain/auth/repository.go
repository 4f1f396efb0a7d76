// internal/domain/auth/repository.go
package auth

import "context"

// UserDirectory is the persistence boundary for users, their providers and
// their 2FA enrollment. Lookups return (nil, nil) when no row matches so
// callers can distinguish absence from failure.
type UserDirectory interface {
	FindUserByField(ctx context.Context, field string, value any) (*User, error)
	InsertUser(ctx context.Context, u *User) (*User, error)
	UpdateUserField(ctx context.Context, userID int64, field string, value any) error

	FindProviderByField(ctx context.Context, field string, value any) (*AuthProvider, error)
	InsertProvider(ctx context.Context, p *AuthProvider) (*AuthProvider, error)

	FindTfaByUserID(ctx context.Context, userID int64) (*TfaSecret, error)
	InsertTfaSecret(ctx context.Context, t *TfaSecret) error
	UpdateTfaSecret(ctx context.Context, t *TfaSecret) error
	SetTfaStatus(ctx context.Context, userID int64, enabled, authenticated bool) error
}
