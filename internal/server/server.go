// Package server exposes the vocabulary services over a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/nnimab/Smart-vocabulary-book/internal/service"
)

const shutdownTimeout = 10 * time.Second

// Services bundles the application services the API serves.
type Services struct {
	Users *service.UserService
	Books *service.BookService
	Study *service.StudyService
	Stats *service.StatsService
}

// Server is the HTTP API.
type Server struct {
	echo *echo.Echo
	svc  Services
	log  logrus.FieldLogger
}

// New builds the router with all routes registered.
func New(svc Services, log logrus.FieldLogger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{echo: e, svc: svc, log: log}
	e.HTTPErrorHandler = s.handleError

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			entry := log.WithFields(logrus.Fields{
				"request_id": v.RequestID,
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
			})
			if v.Error != nil {
				entry.WithError(v.Error).Warn("request failed")
				return nil
			}
			entry.Debug("request")
			return nil
		},
	}))

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.health)

	api := s.echo.Group("/api")

	books := api.Group("/books")
	books.GET("/user/:userId", s.listBooks)
	books.GET("/current/:userId", s.currentBook)
	books.POST("", s.createBook)
	books.GET("/:bookId", s.getBook)
	books.PUT("/:bookId", s.updateBook)
	books.DELETE("/:bookId", s.deleteBook)
	books.GET("/:bookId/deck", s.deck)

	words := api.Group("/words")
	words.GET("/book/:bookId", s.listWords)
	words.POST("/book/:bookId", s.addWord)
	words.POST("/import/book/:bookId", s.importWords)
	words.PUT("/:wordId/familiarity", s.updateFamiliarity)
	words.DELETE("/:wordId/book/:bookId", s.deleteWord)
	words.GET("/review/:userId", s.dueWords)

	sessions := api.Group("/sessions")
	sessions.POST("/start", s.startSession)
	sessions.POST("/:sessionId/word", s.reviewWord)
	sessions.PUT("/:sessionId/end", s.endSession)
	sessions.GET("/user/:userId", s.listSessions)
	sessions.GET("/:sessionId", s.getSession)

	stats := api.Group("/statistics/:userId")
	stats.GET("/overall", s.overallStats)
	stats.GET("/activity", s.activity)
	stats.GET("/progress", s.progress)
	stats.GET("/memory-curve", s.memoryCurve)

	users := api.Group("/users")
	users.POST("", s.createUser)
	users.GET("/:userId", s.getUser)
	users.PUT("/:userId", s.updateUser)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("http server listening")
		errCh <- s.echo.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.log.Info("http server stopped")
	return nil
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
