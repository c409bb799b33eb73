package routes

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/retenly/retenly/internal/account"
	"github.com/retenly/retenly/internal/analysis"
	"github.com/retenly/retenly/internal/auth"
	"github.com/retenly/retenly/internal/company"
	"github.com/retenly/retenly/internal/config"
	"github.com/retenly/retenly/internal/infodb"
	"github.com/retenly/retenly/internal/middleware"
	"github.com/retenly/retenly/internal/notification"
	"github.com/retenly/retenly/internal/requirelist"
	"github.com/retenly/retenly/internal/signup"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg      config.Config
	DB       *pgxpool.Pool
	Cache    *redis.Client
	Logger   *slog.Logger
	Notifier notification.Notifier
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB/Redis presence outside of dev, even though main also checks.
	if !isDev(d.Cfg.AppEnv) {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))

	// Health
	RegisterHealthRoutes(app, d)

	// Repositories
	var accountRepo account.Repository
	var companyRepo company.Repository
	var infoDbRepo infodb.Repository
	var analysisRepo analysis.Repository
	var requireListRepo requirelist.Repository
	if d.DB != nil {
		accountRepo = account.NewPostgresRepository(d.DB)
		companyRepo = company.NewPostgresRepository(d.DB)
		infoDbRepo = infodb.NewPostgresRepository(d.DB)
		analysisRepo = analysis.NewPostgresRepository(d.DB)
		requireListRepo = requirelist.NewPostgresRepository(d.DB)
	} else {
		accountRepo = account.NewMemoryRepository()
		companyRepo = company.NewMemoryRepository(company.Company{No: d.Cfg.DefaultCompanyNo, Name: "bootstrap"})
		infoDbRepo = infodb.NewMemoryRepository()
		analysisRepo = analysis.NewMemoryRepository()
		requireListRepo = requirelist.NewMemoryRepository()
	}

	notifier := d.Notifier
	if notifier == nil {
		notifier = notification.NewLoggerNotifier(d.Logger)
	}

	var vault signup.Vault
	if d.Cache != nil {
		vault = signup.NewRedisVault(d.Cache)
	} else {
		vault = signup.NewMemoryVault()
	}

	var engine analysis.Client
	if d.Cfg.AnalysisAPIURL != "" {
		engine = analysis.NewHTTPClient(d.Cfg.AnalysisAPIURL)
	} else {
		engine = analysis.StaticClient{}
	}

	// Services and handlers
	signupSvc, err := signup.NewService(context.Background(), vault, accountRepo, notifier, d.Cfg.DefaultCompanyNo)
	if err != nil {
		return err
	}
	accountSvc := account.NewService(accountRepo)
	authSvc := auth.NewService(d.Cfg, accountRepo)
	companySvc := company.NewService(companyRepo)
	requireListSvc := requirelist.NewService(requireListRepo, analysisRepo, companyRepo, infoDbRepo, engine)

	signupHandler := signup.NewHandler(signupSvc)
	authHandler := auth.NewHandler(accountSvc, authSvc)
	accountHandler := account.NewHandler(accountSvc)
	companyHandler := company.NewHandler(companySvc)
	requireListHandler := requirelist.NewHandler(requireListSvc, engine)

	// API routes
	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	// Public routes
	rateLimiter := middleware.LoginRateLimit(d.Cache, 5)
	RegisterAuthRoutes(api, signupHandler, authHandler, rateLimiter)

	// Protected routes
	jwtmw := middleware.JWTAuth(d.Cfg, accountRepo)
	protected := api.Group("", jwtmw)
	RegisterUserRoutes(protected, accountHandler)
	RegisterCompanyRoutes(protected, companyHandler, accountHandler)

	var idem fiber.Handler
	if d.Cache != nil {
		idem = middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger)
	}
	RegisterRequireListRoutes(protected, requireListHandler, idem)

	return nil
}

func isDev(env string) bool {
	switch strings.ToLower(env) {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}
