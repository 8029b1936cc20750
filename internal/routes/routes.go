package routes

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	"github.com/ultraauth/auth-api/internal/auth"
	"github.com/ultraauth/auth-api/internal/config"
	"github.com/ultraauth/auth-api/internal/identity"
	"github.com/ultraauth/auth-api/internal/middleware"
	"github.com/ultraauth/auth-api/internal/notification"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg       config.Config
	Store     identity.Repository
	Cache     *redis.Client
	Logger    *slog.Logger
	StartedAt time.Time
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	if d.Store == nil {
		return fmt.Errorf("user store is required")
	}
	if d.StartedAt.IsZero() {
		d.StartedAt = time.Now()
	}

	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))
	app.Use(recover.New())
	if d.Cfg.IsDev() {
		// Plain text access log in desired format: [HH:MM:SS] 200 -  145ms METHOD /path
		app.Use(logger.New(logger.Config{
			Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
			TimeFormat: "15:04:05",
			TimeZone:   "Local",
		}))
	}

	authSvc, err := buildAuthService(d)
	if err != nil {
		return err
	}

	RegisterHealthRoutes(app, d)
	RegisterAuthRoutes(app, auth.NewHandler(authSvc), AuthMiddleware{
		Bearer:      middleware.BearerAuth(authSvc),
		LoginLimit:  middleware.LoginRateLimit(d.Cache, d.Cfg.LoginPerMinute),
		Idempotency: middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger),
	})

	return nil
}

func buildAuthService(d Deps) (*auth.Service, error) {
	issuer, err := auth.NewIssuer(auth.TokenConfig{
		AccessSecret:  []byte(d.Cfg.JWTSecret),
		AccessTTL:     d.Cfg.AccessTokenTTL,
		RefreshSecret: []byte(d.Cfg.RefreshSecret),
		RefreshTTL:    d.Cfg.RefreshTokenTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("token issuer: %w", err)
	}

	var revoker auth.Revoker
	if d.Cache != nil {
		revoker = auth.NewRedisRevoker(d.Cache)
	}

	notifier := notification.NewLoggerNotifier(d.Logger)
	return auth.NewService(d.Store, auth.NewHasher(d.Cfg.BcryptCost), issuer, revoker, d.Logger, auth.WithNotifier(notifier)), nil
}
