// internal/app/server.go
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sentra-auth/internal/config"
	"sentra-auth/internal/db"
	authHandler "sentra-auth/internal/handlers/auth"
	"sentra-auth/internal/middleware"
	"sentra-auth/internal/pkg/gate"
	"sentra-auth/internal/pkg/keystore"
	"sentra-auth/internal/pkg/session"
	"sentra-auth/internal/pkg/token"
	"sentra-auth/internal/pkg/totp"
	"sentra-auth/internal/pkg/otpstore"
	"sentra-auth/internal/repository/postgres"
	authUsecase "sentra-auth/internal/service/auth"
	"sentra-auth/internal/service/notify"
)

// Key file layout under the keystore root. Stable across restarts; moving
// these invalidates every outstanding cookie and token.
const (
	sessionCipherKeyFile = "session-keys/aes-key.bin"
	sessionMacKeyFile    = "session-keys/hmac-key.bin"
	tokenPrivateKeyFile  = "jwt-keys/private.pem"
	tokenPublicKeyFile   = "jwt-keys/public.pem"
)

type Server struct {
	cfg    config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
	http   *http.Server
}

func NewServer() *Server {
	cfg := config.Load()
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	return &Server{cfg: cfg, engine: gin.New()}
}

func (s *Server) Start() error {
	ctx := context.Background()

	// ----- Logger -----
	var logger *zap.Logger
	var err error
	if s.cfg.IsProduction() {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync()
	s.logger = logger

	// ----- PostgreSQL -----
	pool, err := db.NewPostgresPool(ctx, s.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	// ----- Redis -----
	redisClient, err := db.NewRedisClient(db.RedisConfig{
		Addr:     s.cfg.RedisAddr,
		Password: s.cfg.RedisPass,
		DB:       0,
		PoolSize: 10,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	logger.Info("connected to backing stores")

	// ----- Key material -----
	keys := keystore.New(s.cfg.KeystorePath)

	cipherKey, err := keys.LoadOrCreate(sessionCipherKeyFile, 32)
	if err != nil {
		return err
	}
	macKey, err := keys.LoadOrCreate(sessionMacKeyFile, 64)
	if err != nil {
		return err
	}
	rsaKey, err := keys.LoadOrCreateRSA(tokenPrivateKeyFile, tokenPublicKeyFile, 4096)
	if err != nil {
		return err
	}

	// ----- Session codec & cookies -----
	codec, err := session.NewCodec(cipherKey, macKey)
	if err != nil {
		return fmt.Errorf("failed to build session codec: %w", err)
	}
	cookies := session.NewCookieManager(codec, s.cfg.Cookie, logger)

	// ----- Tokens -----
	tokens, err := token.NewManager(s.cfg.Token, rsaKey)
	if err != nil {
		return fmt.Errorf("failed to build token manager: %w", err)
	}

	// ----- Repositories -----
	directory := postgres.NewUserDirectory(pool)

	// ----- Delivery channels -----
	emailChannel := notify.NewEmailChannel(
		s.cfg.SMTPHost,
		s.cfg.SMTPPort,
		s.cfg.SMTPUser,
		s.cfg.SMTPPass,
		s.cfg.SMTPFromName,
		s.cfg.SMTPSecure,
		logger,
	)
	smsChannel := notify.NewSMSChannel(s.cfg.SMSGatewayURL, s.cfg.SMSGatewayKey, logger)

	// ----- Services -----
	service := authUsecase.NewService(
		directory,
		tokens,
		otpstore.New(redisClient, logger),
		totp.NewManager("Sentra"),
		emailChannel,
		smsChannel,
		logger,
	)

	// ----- Middlewares -----
	sessions := middleware.NewSessionMiddleware(cookies, logger)
	gates := middleware.NewAuthMiddleware(logger)
	limiter := middleware.NewRateLimiter(redisClient, logger)

	s.engine.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
		middleware.CORSMiddleware(),
		sessions.Handler(),
	)

	// ----- Router -----
	SetupRouter(s.engine, &Handlers{
		Auth:    authHandler.NewAuthHandler(service, sessions, logger),
		Gate:    gates,
		Limiter: limiter,
	})

	s.http = &http.Server{
		Addr:    s.cfg.HTTPAddr,
		Handler: s.engine,
	}

	logger.Info("http server listening", zap.String("addr", s.cfg.HTTPAddr))
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Shutdown stops accepting connections and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}

// gatePolicies returns the per-route policies. Declared in one place so the
// route table below reads as configuration.
func gatePolicies() (authed, completing, validating gate.Policy) {
	authed = gate.Policy{RequireCompleted: true}
	completing = gate.Policy{RequireCompleted: false}
	validating = gate.Policy{SkipSecondFactor: true}
	return
}
