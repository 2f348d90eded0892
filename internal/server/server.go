// Package server contains the HTTP handlers for the request review API.
package server

import (
	"context"
	"fmt"
	"time"

	_ "grimoire/docs" // swagger docs
	"grimoire/internal/assignment"
	"grimoire/internal/bootstrap"
	"grimoire/internal/cache"
	"grimoire/internal/config"
	"grimoire/internal/middleware"
	"grimoire/internal/models"
	"grimoire/internal/repository"
	"grimoire/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config          *config.Config
	db              *gorm.DB
	redis           *redis.Client
	promMiddleware  *fiberprometheus.FiberPrometheus
	shutdownCtx     context.Context
	shutdownFn      context.CancelFunc
	notifier        *cache.Notifier
	requestService  *service.RequestService
	grimorioService *service.GrimorioService
}

// NewServer opens the runtime (database, Redis, catalog) and wires a Server.
func NewServer(cfg *config.Config) (*Server, error) {
	rt, err := bootstrap.InitRuntime(cfg, bootstrap.Options{SeedGrimorios: cfg.SeedOnStart})
	if err != nil {
		return nil, err
	}
	return NewServerWithDeps(cfg, rt.DB, rt.Redis, rt.Catalog)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, catalog []models.Grimorio) (*Server, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle is required")
	}

	requestRepo := repository.NewRequestRepository(db)
	grimorioRepo := repository.NewGrimorioRepository(db)
	notifier := cache.NewNotifier(redisClient)

	shutdownCtx, shutdownFn := context.WithCancel(context.Background())

	return &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("grimoire-api"),
		shutdownCtx:    shutdownCtx,
		shutdownFn:     shutdownFn,
		notifier:       notifier,
		requestService: service.NewRequestService(
			requestRepo,
			grimorioRepo,
			assignment.NewSeededPicker(cfg.RandomSeed),
			notifier,
		),
		grimorioService: service.NewGrimorioService(grimorioRepo, catalog),
	}, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())

	// Tracing runs first so ContextMiddleware can copy the trace ID into the user context.
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS must run before the limiter so rejected calls still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		MaxAge:       86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	app.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Grimoire Metrics Dashboard",
	}))
	app.Get("/swagger/*", swagger.HandlerDefault)

	app.Get("/create-grimorios-fixtures", s.CreateGrimoriosFixtures)
	app.Get("/asignaciones", s.ListGrimoireAssignments)

	app.Get("/solicitudes", s.ListRequests)
	app.Post("/solicitud", middleware.RateLimit(
		s.redis, 30, time.Minute, "create_request"), s.CreateRequest)

	review := []fiber.Handler{}
	if s.config.ReviewerAuth {
		review = append(review, middleware.ReviewerRequired(s.config.JWTSecret))
	}
	review = append(review, s.UpdateRequestStatus)
	// Specific /:id/estatus route before generic /:id routes
	app.Patch("/solicitud/:id/estatus", review...)

	app.Get("/solicitud/:id", s.GetRequest)
	app.Put("/solicitud/:id", s.UpdateRequest)
	app.Delete("/solicitud/:id", s.DeleteRequest)
}

// WatchReviewedEvents logs every reviewed event until Shutdown. It is a no-op without Redis.
func (s *Server) WatchReviewedEvents() error {
	return s.notifier.StartReviewedSubscriber(s.shutdownCtx, func(ev cache.ReviewedEvent) {
		grimorio := ""
		if ev.GrimorioID != nil {
			grimorio = *ev.GrimorioID
		}
		middleware.Logger.Info("request reviewed",
			"request_id", ev.RequestID,
			"status", ev.Status,
			"grimorio_id", grimorio,
			"reviewer_id", ev.ReviewerID,
		)
	})
}

// Shutdown stops background subscribers and closes Redis and the database.
func (s *Server) Shutdown(_ context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			middleware.Logger.Warn("redis close failed", "error", err.Error())
		}
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. Redis is optional: a
// missing client is reported but does not fail readiness.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}
