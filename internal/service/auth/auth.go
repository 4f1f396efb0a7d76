// internal/service/auth/auth.go
package auth

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"go.uber.org/zap"

	"sentra-auth/internal/domain/auth"
	xerrors "sentra-auth/internal/pkg/errors"
	"sentra-auth/internal/pkg/otpstore"
	"sentra-auth/internal/pkg/session"
	"sentra-auth/internal/pkg/token"
	"sentra-auth/internal/pkg/totp"
)

// Channel delivers a verification code. Satisfied by the notify adapters.
type Channel interface {
	SendCode(ctx context.Context, destination, code string) (string, error)
}

type Service struct {
	directory auth.UserDirectory
	tokens    *token.Manager
	otps      *otpstore.Store
	totp      *totp.Manager
	email     Channel
	sms       Channel
	logger    *zap.Logger
}

func NewService(
	directory auth.UserDirectory,
	tokens *token.Manager,
	otps *otpstore.Store,
	totpManager *totp.Manager,
	email Channel,
	sms Channel,
	logger *zap.Logger,
) *Service {
	return &Service{
		directory: directory,
		tokens:    tokens,
		otps:      otps,
		totp:      totpManager,
		email:     email,
		sms:       sms,
		logger:    logger,
	}
}

// ========== Existence checks ==========

// CheckEmail reports whether an account with this email exists.
func (s *Service) CheckEmail(ctx context.Context, email string) (bool, error) {
	u, err := s.directory.FindUserByField(ctx, "email", email)
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return u != nil, nil
}

// CheckPhone reports whether an account with this phone number exists.
func (s *Service) CheckPhone(ctx context.Context, phone string) (bool, error) {
	u, err := s.directory.FindUserByField(ctx, "phone_number", phone)
	if err != nil {
		return false, fmt.Errorf("failed to check phone: %w", err)
	}
	return u != nil, nil
}

// ========== Verification codes ==========

// RequestEmailCode issues a verification code for an email signup and
// delivers it. A live code for the pair fails with ErrCodeAlreadyIssued.
func (s *Service) RequestEmailCode(ctx context.Context, email string) (string, error) {
	return s.requestCode(ctx, email, otpstore.ChannelEmail, s.email)
}

// RequestPhoneCode issues a verification code for a phone signup.
func (s *Service) RequestPhoneCode(ctx context.Context, phone string) (string, error) {
	return s.requestCode(ctx, phone, otpstore.ChannelPhone, s.sms)
}

func (s *Service) requestCode(ctx context.Context, identifier, channel string, sender Channel) (string, error) {
	code, err := randomCode()
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}

	if err := s.otps.Issue(ctx, identifier, channel, code, 0); err != nil {
		return "", err
	}

	messageID, err := sender.SendCode(ctx, identifier, code)
	if err != nil {
		// Delivery failed; free the pair so the user can retry immediately.
		if delErr := s.otps.Invalidate(ctx, identifier, channel); delErr != nil {
			s.logger.Warn("failed to release undelivered code", zap.Error(delErr))
		}
		return "", err
	}

	s.logger.Info("verification code dispatched",
		zap.String("channel", channel),
		zap.String("message_id", messageID),
	)
	return messageID, nil
}

// randomCode returns a uniformly random 6-digit code.
func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// ========== Session construction ==========

// sessionFor assembles the cookie-borne state for a user. tfa may be nil
// when the user never enrolled.
func (s *Service) sessionFor(user *auth.User, provider *auth.AuthProvider, tfa *auth.TfaSecret) *session.State {
	state := &session.State{
		User: &session.UserState{
			ClientID: user.ClientID,
			Role:     user.Role,
		},
		MaxAge: int(session.DefaultMaxAge / time.Second),
	}

	state.User.Provider = session.ProviderInfo{
		Kind:      session.ProviderLocal,
		Completed: user.Completed(),
	}
	if provider != nil {
		state.User.Provider.ID = fmt.Sprintf("%d", provider.ID)
		state.User.Provider.Kind = session.ProviderKind(provider.Provider)
	}

	if tfa != nil {
		state.User.TFA = session.TFAStatus{
			Enabled: tfa.Enabled,
			// A fresh first factor never satisfies the second.
			Authenticated: false,
		}
	}

	exp := time.Now().Add(session.DefaultMaxAge)
	state.Expires = &exp

	return state
}

// lookupByClientID resolves a session's user, failing with ErrUnauthorized
// when the client id no longer maps to a live account.
func (s *Service) lookupByClientID(ctx context.Context, clientID string) (*auth.User, error) {
	user, err := s.directory.FindUserByField(ctx, "client_id", clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve client id: %w", err)
	}
	if user == nil || user.Blocked {
		return nil, xerrors.ErrUnauthorized
	}
	return user, nil
}
