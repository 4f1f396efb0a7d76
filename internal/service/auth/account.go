// internal/service/auth/account.go
package auth

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"sentra-auth/internal/domain/auth"
	xerrors "sentra-auth/internal/pkg/errors"
)

// Complete finishes account setup by claiming a username. Used by OAuth
// signups that arrive without one.
func (s *Service) Complete(ctx context.Context, clientID, username string) (*auth.User, error) {
	user, err := s.lookupByClientID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if user.Completed() {
		return nil, fmt.Errorf("%w: setup already completed", xerrors.ErrConflict)
	}

	taken, err := s.directory.FindUserByField(ctx, "username", username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if taken != nil {
		return nil, xerrors.ErrConflict
	}

	if err := s.directory.UpdateUserField(ctx, user.ID, "username", username); err != nil {
		return nil, err
	}

	s.logger.Info("account setup completed", zap.String("client_id", clientID))

	return s.directory.FindUserByField(ctx, "client_id", clientID)
}

// UpdatePassword rotates a password after checking the old one.
func (s *Service) UpdatePassword(ctx context.Context, clientID, oldPassword, newPassword string) error {
	user, err := s.lookupByClientID(ctx, clientID)
	if err != nil {
		return err
	}
	if !user.PasswordHash.Valid {
		return fmt.Errorf("%w: account has no password", xerrors.ErrInvalidInput)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash.String), []byte(oldPassword)); err != nil {
		return xerrors.ErrUnauthorized
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.directory.UpdateUserField(ctx, user.ID, "password_hash", string(hash)); err != nil {
		return err
	}

	s.logger.Info("password updated", zap.String("client_id", clientID))
	return nil
}
