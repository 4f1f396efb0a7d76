// internal/repository/postgres/user_directory.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"sentra-auth/internal/domain/auth"
	xerrors "sentra-auth/internal/pkg/errors"
)

// Column whitelists keep FindUserByField / UpdateUserField from ever
// interpolating caller-supplied identifiers.
var userFields = map[string]bool{
	"id":           true,
	"client_id":    true,
	"username":     true,
	"email":        true,
	"phone_number": true,
}

var userUpdatableFields = map[string]bool{
	"username":      true,
	"email":         true,
	"phone_number":  true,
	"password_hash": true,
	"role":          true,
	"blocked":       true,
	"deleted":       true,
}

var providerFields = map[string]bool{
	"id":          true,
	"user_id":     true,
	"provider_id": true,
}

type UserDirectory struct {
	db *pgxpool.Pool
}

func NewUserDirectory(db *pgxpool.Pool) *UserDirectory {
	return &UserDirectory{db: db}
}

const userColumns = `id, client_id, username, email, phone_number, password_hash,
       role, blocked, deleted, created_at, updated_at`

func scanUser(row pgx.Row) (*auth.User, error) {
	var u auth.User
	err := row.Scan(
		&u.ID, &u.ClientID, &u.Username, &u.Email, &u.PhoneNumber, &u.PasswordHash,
		&u.Role, &u.Blocked, &u.Deleted, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// FindUserByField retrieves a user by a whitelisted column. Returns
// (nil, nil) when no live row matches.
func (r *UserDirectory) FindUserByField(ctx context.Context, field string, value any) (*auth.User, error) {
	if !userFields[field] {
		return nil, fmt.Errorf("%w: user lookup field %q", xerrors.ErrInvalidInput, field)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM users
		WHERE %s = $1 AND deleted = FALSE
	`, userColumns, field)

	u, err := scanUser(r.db.QueryRow(ctx, query, value))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return u, nil
}

// InsertUser creates a new user and returns the stored row.
func (r *UserDirectory) InsertUser(ctx context.Context, u *auth.User) (*auth.User, error) {
	query := `
		INSERT INTO users (client_id, username, email, phone_number, password_hash, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + userColumns

	stored, err := scanUser(r.db.QueryRow(ctx, query,
		u.ClientID, u.Username, u.Email, u.PhoneNumber, u.PasswordHash, u.Role,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	return stored, nil
}

// UpdateUserField sets a single whitelisted column on a user.
func (r *UserDirectory) UpdateUserField(ctx context.Context, userID int64, field string, value any) error {
	if !userUpdatableFields[field] {
		return fmt.Errorf("%w: user update field %q", xerrors.ErrInvalidInput, field)
	}

	query := fmt.Sprintf(`
		UPDATE users SET %s = $1, updated_at = NOW()
		WHERE id = $2
	`, field)

	tag, err := r.db.Exec(ctx, query, value, userID)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

const providerColumns = `id, user_id, provider, provider_id, full_name,
       access_token, refresh_token, created_at`

func scanProvider(row pgx.Row) (*auth.AuthProvider, error) {
	var p auth.AuthProvider
	err := row.Scan(
		&p.ID, &p.UserID, &p.Provider, &p.ProviderID, &p.FullName,
		&p.AccessToken, &p.RefreshToken, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindProviderByField retrieves a provider link by a whitelisted column.
// Returns (nil, nil) when no row matches.
func (r *UserDirectory) FindProviderByField(ctx context.Context, field string, value any) (*auth.AuthProvider, error) {
	if !providerFields[field] {
		return nil, fmt.Errorf("%w: provider lookup field %q", xerrors.ErrInvalidInput, field)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM auth_providers
		WHERE %s = $1
	`, providerColumns, field)

	p, err := scanProvider(r.db.QueryRow(ctx, query, value))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find provider: %w", err)
	}
	return p, nil
}

// InsertProvider links a user to an authentication provider.
func (r *UserDirectory) InsertProvider(ctx context.Context, p *auth.AuthProvider) (*auth.AuthProvider, error) {
	query := `
		INSERT INTO auth_providers (user_id, provider, provider_id, full_name, access_token, refresh_token)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + providerColumns

	stored, err := scanProvider(r.db.QueryRow(ctx, query,
		p.UserID, p.Provider, p.ProviderID, p.FullName, p.AccessToken, p.RefreshToken,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to insert provider: %w", err)
	}
	return stored, nil
}

// FindTfaByUserID retrieves a user's 2FA enrollment. Returns (nil, nil)
// when the user never enrolled.
func (r *UserDirectory) FindTfaByUserID(ctx context.Context, userID int64) (*auth.TfaSecret, error) {
	query := `
		SELECT user_id, secret, otpauth_url, enabled, authenticated, updated_at
		FROM tfa_secrets
		WHERE user_id = $1
	`

	var t auth.TfaSecret
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&t.UserID, &t.Secret, &t.OtpauthURL, &t.Enabled, &t.Authenticated, &t.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find tfa secret: %w", err)
	}
	return &t, nil
}

// InsertTfaSecret stores a fresh 2FA enrollment.
func (r *UserDirectory) InsertTfaSecret(ctx context.Context, t *auth.TfaSecret) error {
	query := `
		INSERT INTO tfa_secrets (user_id, secret, otpauth_url, enabled, authenticated)
		VALUES ($1, $2, $3, $4, $5)
	`

	if _, err := r.db.Exec(ctx, query,
		t.UserID, t.Secret, t.OtpauthURL, t.Enabled, t.Authenticated,
	); err != nil {
		return fmt.Errorf("failed to insert tfa secret: %w", err)
	}
	return nil
}

// UpdateTfaSecret replaces an enrollment wholesale, used when the user
// rotates their authenticator.
func (r *UserDirectory) UpdateTfaSecret(ctx context.Context, t *auth.TfaSecret) error {
	query := `
		UPDATE tfa_secrets
		SET secret = $1, otpauth_url = $2, enabled = $3, authenticated = $4, updated_at = NOW()
		WHERE user_id = $5
	`

	tag, err := r.db.Exec(ctx, query,
		t.Secret, t.OtpauthURL, t.Enabled, t.Authenticated, t.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update tfa secret: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

// SetTfaStatus flips the enabled/authenticated flags without touching the
// secret itself.
func (r *UserDirectory) SetTfaStatus(ctx context.Context, userID int64, enabled, authenticated bool) error {
	query := `
		UPDATE tfa_secrets
		SET enabled = $1, authenticated = $2, updated_at = NOW()
		WHERE user_id = $3
	`

	tag, err := r.db.Exec(ctx, query, enabled, authenticated, userID)
	if err != nil {
		return fmt.Errorf("failed to update tfa status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}
