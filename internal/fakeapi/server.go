// Package fakeapi is an in-memory stand-in for the remote task service. It serves the same
// routes and envelopes so the contract scenarios can run without network access, and it
// records requests and injects failures for tests of the harness itself.
package fakeapi

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"todocontract/internal/core"
)

// RecordedRequest stores information about a received request.
type RecordedRequest struct {
	Method string
	Path   string
	Body   []byte
}

// InterceptFunc may answer a request itself. Returning true skips the normal handler.
type InterceptFunc func(c echo.Context) bool

// Config holds fake server options
type Config struct {
	// Logger receives one line per request; nil disables request logging
	Logger *slog.Logger
	// Now stamps created_time and ttl; nil uses time.Now
	Now func() time.Time
	// ListLimit caps list-tasks results; 0 uses DefaultListLimit, negative disables the cap
	ListLimit int
}

// Server wraps the Echo server
type Server struct {
	echo  *echo.Echo
	store *Store

	mu          sync.Mutex
	requests    []RecordedRequest
	failNext    bool
	failCode    int
	failMessage string
	intercept   InterceptFunc
}

// New creates the fake task service
func New(cfg *Config) *Server {
	if cfg == nil {
		cfg = &Config{}
	}
	listLimit := cfg.ListLimit
	if listLimit == 0 {
		listLimit = DefaultListLimit
	}

	s := &Server{
		echo:     echo.New(),
		store:    NewStore(cfg.Now, listLimit),
		requests: make([]RecordedRequest, 0),
	}
	s.echo.HideBanner = true
	s.echo.HidePort = true

	if cfg.Logger != nil {
		s.echo.Use(requestLogger(cfg.Logger))
	}
	s.echo.Use(middleware.Recover())
	s.echo.Use(s.recordAndInject)

	h := NewHandler(s.store)
	s.echo.GET("/", h.Root)
	s.echo.PUT("/create-task", h.CreateTask)
	s.echo.PUT("/update-task", h.UpdateTask)
	s.echo.GET("/get-task/:task_id", h.GetTask)
	s.echo.GET("/list-tasks/:user_id", h.ListTasks)
	s.echo.DELETE("/delete-task/:task_id", h.DeleteTask)

	return s
}

// recordAndInject records every request and applies FailNext/Intercept before routing
func (s *Server) recordAndInject(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		body, readErr := io.ReadAll(req.Body)
		req.Body = io.NopCloser(bytes.NewBuffer(body))

		s.mu.Lock()
		s.requests = append(s.requests, RecordedRequest{
			Method: req.Method,
			Path:   req.URL.Path,
			Body:   body,
		})

		if readErr != nil {
			s.mu.Unlock()
			return handleError(c, core.NewInvalidRequestError("failed to read request body: "+readErr.Error(), readErr))
		}

		if s.failNext {
			s.failNext = false
			code, msg := s.failCode, s.failMessage
			s.mu.Unlock()
			return c.JSON(code, map[string]string{"detail": msg})
		}

		intercept := s.intercept
		s.mu.Unlock()

		if intercept != nil && intercept(c) {
			return nil
		}
		return next(c)
	}
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info("request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
			)
			return nil
		},
	})
}

// FailNext makes the next request, whatever its route, answer code with {"detail": message}.
func (s *Server) FailNext(code int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = true
	s.failCode = code
	s.failMessage = message
}

// Intercept installs fn in front of every route; nil removes it.
func (s *Server) Intercept(fn InterceptFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.intercept = fn
}

// Requests returns a copy of the recorded requests
func (s *Server) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RecordedRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

// Store exposes the task table for seeding and inspection
func (s *Server) Store() *Store {
	return s.store
}

// Reset clears tasks, recorded requests and pending faults
func (s *Server) Reset() {
	s.store.Reset()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = s.requests[:0]
	s.failNext = false
	s.intercept = nil
}

// Start serves on addr until Shutdown
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// ServeHTTP implements the http.Handler interface, allowing Server to be used with httptest
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}
