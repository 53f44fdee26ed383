// Package server exposes the mailbox over a small local JSON API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/bassamadnan/lumimail/auth"
	"github.com/bassamadnan/lumimail/fetch"
	"github.com/bassamadnan/lumimail/mailbox"
)

const (
	BaseRoute       = "/api"
	shutdownTimeout = 10 * time.Second
)

// Mailbox is the part of the fetch orchestrator the API serves.
type Mailbox interface {
	FetchEmails(ctx context.Context, section mailbox.Section, pageToken string) (*fetch.Result, error)
	ClearAllCache(ctx context.Context) error
}

type Server struct {
	echo   *echo.Echo
	mail   Mailbox
	tokens auth.TokenProvider
	creds  auth.Store
	logger *slog.Logger
}

func New(mail Mailbox, tokens auth.TokenProvider, creds auth.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		mail:   mail,
		tokens: tokens,
		creds:  creds,
		logger: logger.With("component", "server"),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.handleError
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.logger.Debug("request", "method", v.Method, "uri", v.URI,
				"status", v.Status, "latency", v.Latency)
			return nil
		},
	}))

	e.GET("/healthz", s.health)
	api := e.Group(BaseRoute)
	api.GET("/gmail/messages", s.listMessages)
	api.GET("/metrics", s.metrics)
	api.DELETE("/cache", s.clearCache)
	api.POST("/auth/refresh", s.refreshToken)

	s.echo = e
	return s
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- s.echo.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	return s.echo.Shutdown(shutdownCtx)
}

type errorResponse struct {
	Error string `json:"error"`
}

// statusFor maps domain errors onto HTTP statuses.
func statusFor(err error) int {
	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		return he.Code
	case errors.Is(err, mailbox.ErrUnknownSection):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrNoCredentials),
		errors.Is(err, auth.ErrUnauthorized),
		errors.Is(err, auth.ErrRefreshFailed):
		return http.StatusUnauthorized
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := statusFor(err)
	msg := err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg = fmt.Sprint(he.Message)
	}
	if code >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.Path(), "status", code, "error", err)
	}
	if err := c.JSON(code, errorResponse{Error: msg}); err != nil {
		s.logger.Warn("writing error response", "error", err)
	}
}
