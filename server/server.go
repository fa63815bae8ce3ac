// Package server exposes the repository and the ring over HTTP with fiber.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"github.com/Skryldev/boxing-ring/logging"
	"github.com/Skryldev/boxing-ring/metrics"
	"github.com/Skryldev/boxing-ring/models"
	"github.com/Skryldev/boxing-ring/random"
	"github.com/Skryldev/boxing-ring/repo"
	"github.com/Skryldev/boxing-ring/ring"
)

const requestIDKey = "requestid"

// Store is what the handlers need from persistence.
type Store interface {
	repo.BoxerRepository
	Ping(ctx context.Context) error
}

// Config holds optional collaborators.
type Config struct {
	ServiceName string
	Logger      *slog.Logger
	Metrics     *metrics.Collector
}

// Server owns the fiber app. The ring is guarded by a mutex because fiber
// serves requests concurrently and a Ring must not be shared unguarded.
type Server struct {
	app     *fiber.App
	store   Store
	logger  *slog.Logger
	metrics *metrics.Collector

	ringMu sync.Mutex
	ring   *ring.Ring
}

// New builds the app and registers every route.
func New(store Store, rg *ring.Ring, cfg Config) *Server {
	s := &Server{
		store:   store,
		ring:    rg,
		logger:  logging.Component(cfg.Logger, "server"),
		metrics: cfg.Metrics,
	}

	s.app = fiber.New(fiber.Config{
		AppName:               cfg.ServiceName,
		DisableStartupMessage: true,
		UnescapePath:          true,
		ErrorHandler:          s.handleError,
	})

	s.app.Use(requestid.New(requestid.Config{
		Generator:  uuid.NewString,
		ContextKey: requestIDKey,
	}))
	s.app.Use(s.accessLog)
	s.app.Use(recover.New())

	s.routes()
	return s
}

// App exposes the fiber app, mainly for app.Test in tests.
func (s *Server) App() *fiber.App { return s.app }

// Listen blocks serving on addr until Shutdown is called.
func (s *Server) Listen(addr string) error {
	s.logger.Info("listening", "addr", addr)
	return s.app.Listen(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) routes() {
	s.app.Get("/", s.hello)
	s.app.Get("/repeat", s.repeat)
	s.app.Get("/health", s.health)
	s.app.Get("/healthcheck", s.health)
	s.app.Get("/ready", s.ready)
	if h := s.metrics.Handler(); h != nil {
		s.app.Get("/metrics", adaptor.HTTPHandler(h))
	}

	api := s.app.Group("/api")

	boxers := api.Group("/boxers")
	boxers.Post("/", s.createBoxer)
	boxers.Get("/", s.listBoxers)
	boxers.Get("/name/:name", s.getBoxerByName)
	boxers.Get("/:id", s.getBoxerByID)
	boxers.Delete("/:id", s.deleteBoxer)

	api.Get("/leaderboard", s.leaderboard)

	rg := api.Group("/ring")
	rg.Get("/", s.ringOccupants)
	rg.Post("/enter", s.enterRing)
	rg.Post("/fight", s.fight)
	rg.Post("/clear", s.clearRing)
}

// ─────────────────────────────────────────────────────────────────────────────
// Middleware
// ─────────────────────────────────────────────────────────────────────────────

func (s *Server) accessLog(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	if err != nil {
		// Run the error handler now so the logged status is the final one.
		if herr := c.App().ErrorHandler(c, err); herr != nil {
			_ = c.SendStatus(fiber.StatusInternalServerError)
		}
	}

	elapsed := time.Since(start)
	status := c.Response().StatusCode()
	route := c.Route().Path
	s.metrics.RecordHTTPRequest(c.Method(), route, status, elapsed)

	level := slog.LevelInfo
	if status >= fiber.StatusInternalServerError {
		level = slog.LevelError
	}
	s.logger.Log(c.UserContext(), level, "request",
		logging.FieldRequestID, requestID(c),
		logging.FieldMethod, c.Method(),
		logging.FieldPath, c.Path(),
		logging.FieldStatusCode, status,
		logging.FieldDurationMS, elapsed.Milliseconds(),
	)
	return nil
}

func requestID(c *fiber.Ctx) string {
	id, _ := c.Locals(requestIDKey).(string)
	return id
}

// ─────────────────────────────────────────────────────────────────────────────
// Errors
// ─────────────────────────────────────────────────────────────────────────────

// StatusFor maps an error kind to an HTTP status code.
func StatusFor(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, models.ErrValidation), errors.Is(err, models.ErrTypeConstraint):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrDuplicate),
		errors.Is(err, models.ErrCapacity),
		errors.Is(err, models.ErrPrecondition):
		return http.StatusConflict
	case errors.Is(err, random.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, random.ErrUnavailable), errors.Is(err, random.ErrParse):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := StatusFor(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		s.logger.ErrorContext(c.UserContext(), "unhandled error",
			logging.FieldRequestID, requestID(c), "error", err)
		msg = http.StatusText(code)
	}
	return c.Status(code).JSON(fiber.Map{
		"status": "error",
		"error":  msg,
	})
}
