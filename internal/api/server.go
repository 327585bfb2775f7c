package api

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/hanafy/medtrack/internal/config"
	"github.com/hanafy/medtrack/internal/metrics"
	"github.com/hanafy/medtrack/internal/tracker"
)

// Server exposes the tracker over HTTP
type Server struct {
	app     *fiber.App
	config  *config.Config
	tracker *tracker.Tracker
	logger  *zap.Logger
}

// New creates a new API server
func New(cfg *config.Config, tr *tracker.Tracker, logger *zap.Logger) *Server {
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  120 * time.Second,
	})

	s := &Server{
		app:     app,
		config:  cfg,
		tracker: tr,
		logger:  logger,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// Middleware
	s.app.Use(recover.New())
	s.app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	s.app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(s.config.Security.AllowOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, DELETE, OPTIONS",
	}))
	s.app.Use(func(c *fiber.Ctx) error {
		err := c.Next()
		metrics.RecordHTTPRequest(c.Path(), strconv.Itoa(c.Response().StatusCode()))
		return err
	})

	// Health check and metrics
	s.app.Get("/api/health", s.handleHealth)
	s.app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	// API routes
	api := s.app.Group("/api")

	// Public routes
	api.Post("/auth/login", s.handleLogin)
	api.Get("/schedule", s.handleSchedule)
	api.Get("/days/:date", s.handleDay)
	api.Get("/history", s.handleHistory)
	api.Get("/compliance", s.handleCompliance)
	api.Get("/streak", s.handleStreak)

	// Protected routes
	protected := api.Use(s.authMiddleware())

	protected.Post("/records", s.handleRecord)
	protected.Post("/maintenance/prune", s.handlePrune)
}

// Start starts the server
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Address, s.config.Server.Port)
	return s.app.Listen(addr)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.app.ShutdownWithContext(ctx)
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}
