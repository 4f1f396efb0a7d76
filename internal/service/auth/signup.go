// internal/service/auth/signup.go
package auth

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"sentra-auth/internal/domain/auth"
	xerrors "sentra-auth/internal/pkg/errors"
	"sentra-auth/internal/pkg/otpstore"
	"sentra-auth/internal/pkg/session"
	"sentra-auth/internal/pkg/token"
)

// SignupResult carries everything a handler needs after a successful
// signup or login.
type SignupResult struct {
	User    *auth.User
	Session *session.State
	// Token is a signed bearer token for API clients that do not hold
	// the cookie.
	Token string
	// Challenge is an encrypted token present only when a second factor
	// is still pending.
	Challenge string
}

// SignupEmail completes an email signup: the code issued earlier must
// verify, the email must be free, and only then is the account created.
func (s *Service) SignupEmail(ctx context.Context, req *auth.SignupEmailRequest) (*SignupResult, error) {
	return s.signup(ctx, signupInput{
		identifier: req.Email,
		channel:    otpstore.ChannelEmail,
		username:   req.Username,
		password:   req.Password,
		code:       req.Code,
	})
}

// SignupPhone completes a phone signup.
func (s *Service) SignupPhone(ctx context.Context, req *auth.SignupPhoneRequest) (*SignupResult, error) {
	return s.signup(ctx, signupInput{
		identifier: req.PhoneNumber,
		channel:    otpstore.ChannelPhone,
		username:   req.Username,
		password:   req.Password,
		code:       req.Code,
	})
}

type signupInput struct {
	identifier string
	channel    string
	username   string
	password   string
	code       string
}

func (s *Service) signup(ctx context.Context, in signupInput) (*SignupResult, error) {
	ok, err := s.otps.Verify(ctx, in.identifier, in.channel, in.code)
	if err != nil {
		return nil, fmt.Errorf("failed to verify code: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: verification code", xerrors.ErrInvalidInput)
	}

	field := "email"
	if in.channel == otpstore.ChannelPhone {
		field = "phone_number"
	}
	existing, err := s.directory.FindUserByField(ctx, field, in.identifier)
	if err != nil {
		return nil, fmt.Errorf("failed to check %s: %w", field, err)
	}
	if existing != nil {
		return nil, xerrors.ErrConflict
	}

	if taken, err := s.directory.FindUserByField(ctx, "username", in.username); err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	} else if taken != nil {
		return nil, xerrors.ErrConflict
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	clientID, err := s.newClientID(ctx)
	if err != nil {
		return nil, err
	}

	user := &auth.User{
		ClientID:     clientID,
		Username:     sql.NullString{String: in.username, Valid: true},
		PasswordHash: sql.NullString{String: string(hash), Valid: true},
		Role:         auth.RoleUser,
	}
	if in.channel == otpstore.ChannelEmail {
		user.Email = sql.NullString{String: in.identifier, Valid: true}
	} else {
		user.PhoneNumber = sql.NullString{String: in.identifier, Valid: true}
	}

	user, err = s.directory.InsertUser(ctx, user)
	if err != nil {
		return nil, err
	}

	provider, err := s.directory.InsertProvider(ctx, &auth.AuthProvider{
		UserID:   user.ID,
		Provider: string(session.ProviderLocal),
	})
	if err != nil {
		return nil, err
	}

	// The code served its purpose; free the pair.
	if err := s.otps.Invalidate(ctx, in.identifier, in.channel); err != nil {
		s.logger.Warn("failed to invalidate consumed code", zap.Error(err))
	}

	state := s.sessionFor(user, provider, nil)

	bearer, err := s.tokens.Signer.Generate(token.PayloadFromUser(state.User))
	if err != nil {
		return nil, err
	}

	s.logger.Info("account created", zap.String("client_id", user.ClientID))

	return &SignupResult{User: user, Session: state, Token: bearer}, nil
}
