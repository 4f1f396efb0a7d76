// internal/middleware/auth_middleware.go
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sentra-auth/internal/pkg/gate"
	"sentra-auth/internal/pkg/response"
)

// AuthMiddleware gates routes on the decoded session. Each route receives
// its own immutable policy at registration time.
type AuthMiddleware struct {
	logger *zap.Logger
}

func NewAuthMiddleware(logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{logger: logger}
}

// Require evaluates the session against the route policy. MUST be used
// after the session middleware.
func (m *AuthMiddleware) Require(policy gate.Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision := gate.Evaluate(CurrentSession(c), policy)
		if decision == gate.Allow {
			c.Next()
			return
		}

		m.logger.Debug("request gated",
			zap.String("path", c.Request.URL.Path),
			zap.String("decision", decision.String()),
		)

		switch decision {
		case gate.Unauthenticated:
			response.Error(c, http.StatusUnauthorized, "authentication required", nil)
		case gate.SecondFactorRequired:
			response.Error(c, http.StatusUnauthorized, "second factor required", nil)
		case gate.Forbidden:
			response.Forbidden(c, "insufficient role")
		case gate.SetupIncomplete:
			response.Forbidden(c, "account setup incomplete")
		default:
			response.Error(c, http.StatusInternalServerError, "unhandled gate decision", nil)
		}
	}
}
