// internal/service/auth/tfa.go
package auth

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"sentra-auth/internal/domain/auth"
	xerrors "sentra-auth/internal/pkg/errors"
)

// RegisterTfa enrolls a user in 2FA. The secret is stored pending
// (enabled=false) until the user proves possession through ValidateTfa.
func (s *Service) RegisterTfa(ctx context.Context, clientID string) (*auth.TfaSecretResponse, error) {
	user, err := s.lookupByClientID(ctx, clientID)
	if err != nil {
		return nil, err
	}

	existing, err := s.directory.FindTfaByUserID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check tfa enrollment: %w", err)
	}
	if existing != nil && existing.Enabled {
		return nil, fmt.Errorf("%w: 2fa already enabled", xerrors.ErrConflict)
	}

	account := user.ClientID
	if user.Email.Valid {
		account = user.Email.String
	}
	secret, err := s.totp.Generate(account)
	if err != nil {
		return nil, err
	}

	record := &auth.TfaSecret{
		UserID:     user.ID,
		Secret:     secret.Base32,
		OtpauthURL: secret.OtpauthURL,
	}
	if existing == nil {
		err = s.directory.InsertTfaSecret(ctx, record)
	} else {
		// Re-registration before the first confirmation replaces the
		// pending secret wholesale.
		err = s.directory.UpdateTfaSecret(ctx, record)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("2fa enrollment started", zap.String("client_id", clientID))

	return &auth.TfaSecretResponse{
		Base32:     secret.Base32,
		OtpauthURL: secret.OtpauthURL,
	}, nil
}

// UpdateTfa rotates an enabled enrollment. The old secret stays valid
// until the replacement is persisted; from then on only the new secret
// verifies. The user must confirm the new secret via ValidateTfa before
// the session regains its second factor.
func (s *Service) UpdateTfa(ctx context.Context, clientID string) (*auth.TfaSecretResponse, error) {
	user, err := s.lookupByClientID(ctx, clientID)
	if err != nil {
		return nil, err
	}

	existing, err := s.directory.FindTfaByUserID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check tfa enrollment: %w", err)
	}
	if existing == nil {
		return nil, xerrors.ErrNotFound
	}

	account := user.ClientID
	if user.Email.Valid {
		account = user.Email.String
	}
	secret, err := s.totp.Generate(account)
	if err != nil {
		return nil, err
	}

	if err := s.directory.UpdateTfaSecret(ctx, &auth.TfaSecret{
		UserID:     user.ID,
		Secret:     secret.Base32,
		OtpauthURL: secret.OtpauthURL,
		Enabled:    existing.Enabled,
	}); err != nil {
		return nil, err
	}

	s.logger.Info("2fa secret rotated", zap.String("client_id", clientID))

	return &auth.TfaSecretResponse{
		Base32:     secret.Base32,
		OtpauthURL: secret.OtpauthURL,
	}, nil
}

// ValidateTfa verifies a submitted code against the stored secret. On the
// first success the enrollment flips to enabled; on every success the
// current session's second factor is considered satisfied by the caller.
func (s *Service) ValidateTfa(ctx context.Context, clientID, code string) (bool, error) {
	user, err := s.lookupByClientID(ctx, clientID)
	if err != nil {
		return false, err
	}

	record, err := s.directory.FindTfaByUserID(ctx, user.ID)
	if err != nil {
		return false, fmt.Errorf("failed to load tfa enrollment: %w", err)
	}
	if record == nil {
		return false, xerrors.ErrNotFound
	}

	if !s.totp.Verify(record.Secret, code) {
		return false, nil
	}

	if err := s.directory.SetTfaStatus(ctx, user.ID, true, true); err != nil {
		return false, err
	}

	s.logger.Info("2fa code accepted", zap.String("client_id", clientID))
	return true, nil
}
