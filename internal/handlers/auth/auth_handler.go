// internal/handlers/auth/auth_handler.go
package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sentra-auth/internal/domain/auth"
	"sentra-auth/internal/middleware"
	xerrors "sentra-auth/internal/pkg/errors"
	"sentra-auth/internal/pkg/response"
	"sentra-auth/internal/pkg/session"
	authService "sentra-auth/internal/service/auth"
)

type AuthHandler struct {
	service  *authService.Service
	sessions *middleware.SessionMiddleware
	logger   *zap.Logger
}

func NewAuthHandler(service *authService.Service, sessions *middleware.SessionMiddleware, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service:  service,
		sessions: sessions,
		logger:   logger,
	}
}

// statusFor maps service errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case xerrors.Is(err, xerrors.ErrInvalidInput):
		return http.StatusBadRequest
	case xerrors.Is(err, xerrors.ErrUnauthorized):
		return http.StatusUnauthorized
	case xerrors.Is(err, xerrors.ErrForbidden):
		return http.StatusForbidden
	case xerrors.Is(err, xerrors.ErrNotFound):
		return http.StatusNotFound
	case xerrors.Is(err, xerrors.ErrConflict), xerrors.Is(err, xerrors.ErrCodeAlreadyIssued):
		return http.StatusConflict
	case xerrors.Is(err, xerrors.ErrCodeDelivery):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

type loginResponse struct {
	User      *auth.User `json:"user"`
	Token     string     `json:"token"`
	Challenge string     `json:"challenge,omitempty"`
}

// ========== Existence checks ==========

func (h *AuthHandler) CheckEmail(c *gin.Context) {
	var req auth.CheckEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	exists, err := h.service.CheckEmail(c.Request.Context(), req.Email)
	if err != nil {
		h.logger.Error("email check failed", zap.Error(err))
		response.Error(c, statusFor(err), "check failed", err)
		return
	}

	response.Success(c, http.StatusOK, "ok", gin.H{"exists": exists})
}

func (h *AuthHandler) CheckPhone(c *gin.Context) {
	var req auth.CheckPhoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	exists, err := h.service.CheckPhone(c.Request.Context(), req.PhoneNumber)
	if err != nil {
		h.logger.Error("phone check failed", zap.Error(err))
		response.Error(c, statusFor(err), "check failed", err)
		return
	}

	response.Success(c, http.StatusOK, "ok", gin.H{"exists": exists})
}

// ========== Verification codes ==========

func (h *AuthHandler) RequestEmailCode(c *gin.Context) {
	var req auth.CheckEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	messageID, err := h.service.RequestEmailCode(c.Request.Context(), req.Email)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrCodeAlreadyIssued) {
			response.Conflict(c, "a code was already sent, wait for it to expire")
			return
		}
		h.logger.Error("email code request failed", zap.Error(err))
		response.Error(c, statusFor(err), "could not send code", err)
		return
	}

	response.Success(c, http.StatusOK, "code sent", gin.H{"message_id": messageID})
}

func (h *AuthHandler) RequestPhoneCode(c *gin.Context) {
	var req auth.CheckPhoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	messageID, err := h.service.RequestPhoneCode(c.Request.Context(), req.PhoneNumber)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrCodeAlreadyIssued) {
			response.Conflict(c, "a code was already sent, wait for it to expire")
			return
		}
		h.logger.Error("phone code request failed", zap.Error(err))
		response.Error(c, statusFor(err), "could not send code", err)
		return
	}

	response.Success(c, http.StatusOK, "code sent", gin.H{"message_id": messageID})
}

// ========== Signup ==========

func (h *AuthHandler) SignupEmail(c *gin.Context) {
	var req auth.SignupEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	result, err := h.service.SignupEmail(c.Request.Context(), &req)
	if err != nil {
		h.logger.Error("email signup failed", zap.Error(err))
		response.Error(c, statusFor(err), "signup failed", err)
		return
	}

	h.finishLogin(c, http.StatusCreated, "signup successful", result)
}

func (h *AuthHandler) SignupPhone(c *gin.Context) {
	var req auth.SignupPhoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	result, err := h.service.SignupPhone(c.Request.Context(), &req)
	if err != nil {
		h.logger.Error("phone signup failed", zap.Error(err))
		response.Error(c, statusFor(err), "signup failed", err)
		return
	}

	h.finishLogin(c, http.StatusCreated, "signup successful", result)
}

// ========== Login / logout ==========

func (h *AuthHandler) LoginEmail(c *gin.Context) {
	var req auth.LoginEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	result, err := h.service.LoginEmail(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(c, statusFor(err), "login failed", nil)
		return
	}

	h.finishLogin(c, http.StatusOK, "login successful", result)
}

func (h *AuthHandler) LoginPhone(c *gin.Context) {
	var req auth.LoginPhoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	result, err := h.service.LoginPhone(c.Request.Context(), req.PhoneNumber, req.Password)
	if err != nil {
		response.Error(c, statusFor(err), "login failed", nil)
		return
	}

	h.finishLogin(c, http.StatusOK, "login successful", result)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	h.sessions.ClearSession(c)
	response.Success(c, http.StatusOK, "logged out", nil)
}

// finishLogin commits the session cookie before the body is written.
func (h *AuthHandler) finishLogin(c *gin.Context, status int, message string, result *authService.SignupResult) {
	if err := h.sessions.SetSession(c, result.Session); err != nil {
		h.logger.Error("failed to encode session", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "session failure", nil)
		return
	}

	response.Success(c, status, message, loginResponse{
		User:      result.User,
		Token:     result.Token,
		Challenge: result.Challenge,
	})
}

// ========== Account ==========

func (h *AuthHandler) Complete(c *gin.Context) {
	var req auth.CompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	state := middleware.CurrentSession(c)
	user, err := h.service.Complete(c.Request.Context(), state.User.ClientID, req.Username)
	if err != nil {
		h.logger.Error("setup completion failed", zap.Error(err))
		response.Error(c, statusFor(err), "could not complete setup", err)
		return
	}

	state.User.Provider.Completed = true
	if err := h.sessions.SetSession(c, state); err != nil {
		h.logger.Error("failed to encode session", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "session failure", nil)
		return
	}

	response.Success(c, http.StatusOK, "setup completed", gin.H{"user": user})
}

func (h *AuthHandler) UpdatePassword(c *gin.Context) {
	var req auth.UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	state := middleware.CurrentSession(c)
	if err := h.service.UpdatePassword(c.Request.Context(), state.User.ClientID, req.OldPassword, req.NewPassword); err != nil {
		response.Error(c, statusFor(err), "could not update password", nil)
		return
	}

	response.Success(c, http.StatusOK, "password updated", nil)
}

// ========== 2FA ==========

func (h *AuthHandler) RegisterTfa(c *gin.Context) {
	state := middleware.CurrentSession(c)

	secret, err := h.service.RegisterTfa(c.Request.Context(), state.User.ClientID)
	if err != nil {
		h.logger.Error("2fa registration failed", zap.Error(err))
		response.Error(c, statusFor(err), "could not register 2fa", err)
		return
	}

	response.Success(c, http.StatusOK, "scan the code and validate to enable 2fa", secret)
}

func (h *AuthHandler) UpdateTfa(c *gin.Context) {
	state := middleware.CurrentSession(c)

	secret, err := h.service.UpdateTfa(c.Request.Context(), state.User.ClientID)
	if err != nil {
		h.logger.Error("2fa rotation failed", zap.Error(err))
		response.Error(c, statusFor(err), "could not rotate 2fa secret", err)
		return
	}

	// The session's second factor is no longer satisfied by the old secret.
	state.User.TFA = session.TFAStatus{Enabled: state.User.TFA.Enabled, Authenticated: false}
	if err := h.sessions.SetSession(c, state); err != nil {
		h.logger.Error("failed to encode session", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "session failure", nil)
		return
	}

	response.Success(c, http.StatusOK, "scan the code and validate to confirm the new secret", secret)
}

func (h *AuthHandler) ValidateTfa(c *gin.Context) {
	var req auth.TfaCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	state := middleware.CurrentSession(c)
	ok, err := h.service.ValidateTfa(c.Request.Context(), state.User.ClientID, req.Code)
	if err != nil {
		h.logger.Error("2fa validation failed", zap.Error(err))
		response.Error(c, statusFor(err), "could not validate code", err)
		return
	}
	if !ok {
		response.Unauthorized(c, "invalid code")
		return
	}

	state.User.TFA = session.TFAStatus{Enabled: true, Authenticated: true}
	if err := h.sessions.SetSession(c, state); err != nil {
		h.logger.Error("failed to encode session", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "session failure", nil)
		return
	}

	response.Success(c, http.StatusOK, "second factor verified", nil)
}
