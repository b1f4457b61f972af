// Package server contains the HTTP handlers and middleware wiring for the analytics API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	_ "analytics/docs" // swagger docs
	"analytics/internal/config"
	"analytics/internal/middleware"
	"analytics/internal/models"
	"analytics/internal/observability"
	"analytics/internal/repository"
	"analytics/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config          *config.Config
	db              *gorm.DB
	redis           *redis.Client
	promMiddleware  *fiberprometheus.FiberPrometheus
	validate        *validator.Validate
	store           *repository.Store
	userService     *service.UserService
	postService     *service.PostService
	commentService  *service.CommentService
	likeService     *service.LikeService
	viewService     *service.ViewService
	activityService *service.ActivityService
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil, in which case write-route rate limiting fails open.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, locator service.GeoLocator) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if db == nil {
		return nil, errors.New("database handle is required")
	}

	store := repository.NewStore(db)

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics(observability.ServiceName),
		validate:       newValidator(),
		store:          store,
	}
	server.userService = service.NewUserService(store)
	server.postService = service.NewPostService(store)
	server.commentService = service.NewCommentService(store)
	server.likeService = service.NewLikeService(store)
	server.viewService = service.NewViewService(store, locator)
	server.activityService = service.NewActivityService(store)

	return server, nil
}

// newValidator reports struct fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// NewApp builds a Fiber app with the full middleware chain and all routes.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(s.appConfig())
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

func (s *Server) appConfig() fiber.Config {
	return fiber.Config{
		AppName:      "Profile Analytics API",
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: errorHandler,

		// c.IP() honours X-Forwarded-For only when the peer is a listed proxy.
		ProxyHeader:             fiber.HeaderXForwardedFor,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          s.config.TrustedProxyList(),
		EnableIPValidation:      true,
	}
}

// errorHandler renders errors that escape handlers, such as unknown routes,
// in the same JSON shape as handler errors.
func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code := models.CodeInternal
		switch fe.Code {
		case fiber.StatusNotFound:
			code = models.CodeNotFound
		case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity, fiber.StatusRequestEntityTooLarge:
			code = models.CodeValidation
		}
		return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message, Code: code})
	}
	return models.RespondWithError(c, models.StatusCode(err), err)
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())

	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))

	app.Use(middleware.TracingMiddleware())

	// Propagates request and trace ids into the request context for logging.
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))

	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so browsers still see CORS headers on 429s.
	origins := strings.TrimSpace(s.config.AllowedOrigins)
	if origins == "" {
		origins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, X-Request-ID",
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))

	perMinute := s.config.RateLimitPerMinute
	if perMinute <= 0 {
		perMinute = 100
	}
	app.Use(limiter.New(limiter.Config{
		Max:        perMinute,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || s.config.Env == "test"
		},
		KeyGenerator: peerKey,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// writeLimit guards a write route with the Redis-backed per-IP limiter.
func (s *Server) writeLimit(resource string, perMinute int) fiber.Handler {
	return middleware.RateLimit(middleware.RateLimitConfig{
		Redis:    s.redis,
		Env:      s.config.Env,
		Resource: resource,
		Limit:    perMinute,
		Window:   time.Minute,
		KeyFunc:  peerKey,
	})
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	app.Get("/docs/*", swagger.HandlerDefault)

	api := app.Group(s.config.APIPrefix)

	api.Get("/health", s.HealthCheck)
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Profile Analytics Metrics Dashboard",
	}))

	api.Get("/users/:id", s.GetUser)

	api.Get("/posts", s.GetPosts)
	api.Get("/posts/:id", s.GetPost)

	api.Get("/comments", s.GetComments)
	api.Post("/comments", s.writeLimit("create_comment", 20), s.CreateComment)

	// Specific /likes/* routes are static, so they never collide with POST /likes.
	api.Get("/likes/count", s.GetLikeCount)
	api.Get("/likes/has-liked", s.HasLiked)
	api.Post("/likes", s.writeLimit("create_like", 60), s.CreateLike)

	api.Post("/track-view", s.writeLimit("track_view", 60), s.TrackView)

	dashboard := api.Group("/dashboard")
	dashboard.Get("/views", s.GetRecentViews)
	dashboard.Get("/activities", s.GetRecentActivities)
}

// HealthCheck godoc
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// LivenessCheck handles liveness check requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports whether the database is reachable. Redis only backs
// rate limiting, which fails open, so an outage degrades but does not fail readiness.
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
	switch {
	case dbStatus != "healthy":
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	case redisStatus == "unhealthy":
		overallStatus = "degraded"
	}

	return c.Status(status).JSON(fiber.Map{
		"version": "1.0.0",
		"status":  overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Shutdown releases the Redis client and the database pool.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing redis: %w", err))
		}
	}
	if sqlDB, err := s.db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing database: %w", err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		middleware.Logger.ErrorContext(ctx, "shutdown failed", slog.String("error", err.Error()))
		return err
	}
	return nil
}
