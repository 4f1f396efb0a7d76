// internal/app/router.go
package app

import (
	"time"

	"github.com/gin-gonic/gin"

	authHandler "sentra-auth/internal/handlers/auth"
	"sentra-auth/internal/middleware"
)

type Handlers struct {
	Auth    *authHandler.AuthHandler
	Gate    *middleware.AuthMiddleware
	Limiter *middleware.RateLimiter
}

func SetupRouter(r *gin.Engine, h *Handlers) {
	api := r.Group("/api/v1")

	// ==================== Health Check ====================
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "version": "1.0.0"})
	})

	authed, completing, validating := gatePolicies()

	// ==================== Public Auth Routes ====================
	public := api.Group("/auth")
	{
		public.POST("/check/email", h.Auth.CheckEmail)
		public.POST("/check/phone", h.Auth.CheckPhone)

		codes := public.Group("/code")
		codes.Use(h.Limiter.Limit("code", 5, 15*time.Minute))
		{
			codes.POST("/email", h.Auth.RequestEmailCode)
			codes.POST("/phone", h.Auth.RequestPhoneCode)
		}

		public.POST("/signup/email", h.Auth.SignupEmail)
		public.POST("/signup/phone", h.Auth.SignupPhone)

		logins := public.Group("/login")
		logins.Use(h.Limiter.Limit("login", 5, 15*time.Minute))
		{
			logins.POST("/email", h.Auth.LoginEmail)
			logins.POST("/phone", h.Auth.LoginPhone)
		}

		public.POST("/logout", h.Auth.Logout)
	}

	// ==================== Protected Auth Routes ====================
	protected := api.Group("/auth")
	{
		// The completion route is the one place an incomplete account is
		// allowed through.
		protected.POST("/complete", h.Gate.Require(completing), h.Auth.Complete)

		protected.PUT("/password", h.Gate.Require(authed), h.Auth.UpdatePassword)

		tfa := protected.Group("/tfa")
		{
			tfa.POST("/register", h.Gate.Require(authed), h.Auth.RegisterTfa)
			tfa.POST("/update", h.Gate.Require(authed), h.Auth.UpdateTfa)
			// Reachable while the second factor is still pending.
			tfa.POST("/validate", h.Gate.Require(validating), h.Auth.ValidateTfa)
		}
	}
}
