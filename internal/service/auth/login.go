// internal/service/auth/login.go
package auth

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	xerrors "sentra-auth/internal/pkg/errors"
	"sentra-auth/internal/pkg/token"
)

// LoginEmail authenticates an email + password pair.
func (s *Service) LoginEmail(ctx context.Context, email, password string) (*SignupResult, error) {
	return s.login(ctx, "email", email, password)
}

// LoginPhone authenticates a phone + password pair.
func (s *Service) LoginPhone(ctx context.Context, phone, password string) (*SignupResult, error) {
	return s.login(ctx, "phone_number", phone, password)
}

func (s *Service) login(ctx context.Context, field, identifier, password string) (*SignupResult, error) {
	user, err := s.directory.FindUserByField(ctx, field, identifier)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil || user.Blocked || !user.PasswordHash.Valid {
		// Same outcome whether the account is missing or the password is
		// wrong; callers cannot probe for registered identifiers here.
		return nil, xerrors.ErrUnauthorized
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash.String), []byte(password)); err != nil {
		return nil, xerrors.ErrUnauthorized
	}

	provider, err := s.directory.FindProviderByField(ctx, "user_id", user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to find provider: %w", err)
	}

	tfa, err := s.directory.FindTfaByUserID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to find tfa enrollment: %w", err)
	}

	state := s.sessionFor(user, provider, tfa)

	result := &SignupResult{User: user, Session: state}

	payload := token.PayloadFromUser(state.User)
	result.Token, err = s.tokens.Signer.Generate(payload)
	if err != nil {
		return nil, err
	}

	if state.User.TFA.Enabled && !state.User.TFA.Authenticated {
		// Confidential challenge token for the 2FA step; its payload is
		// sealed, so holding it reveals nothing about the account.
		result.Challenge, err = s.tokens.Encryptor.Generate(payload)
		if err != nil {
			return nil, err
		}
	}

	s.logger.Info("login succeeded",
		zap.String("client_id", user.ClientID),
		zap.Bool("second_factor_pending", result.Challenge != ""),
	)

	return result, nil
}
