// Package server implements the operator HTTP API: pipeline status, task management and
// feedback submission. It writes tasks to the store and feedback events to the broker,
// the pipeline roles pick them up from there.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/rest/logger"
	"github.com/go-pkgz/routegroup"

	"github.com/umputun/newswatch/pkg/domain"
)

//go:generate moq -out mocks/config.go -pkg mocks -skip-ensure -fmt goimports . ConfigProvider
//go:generate moq -out mocks/database.go -pkg mocks -skip-ensure -fmt goimports . Database
//go:generate moq -out mocks/broker.go -pkg mocks -skip-ensure -fmt goimports . Broker
//go:generate moq -out mocks/sources.go -pkg mocks -skip-ensure -fmt goimports . Sources

// Server represents HTTP server instance
type Server struct {
	config  ConfigProvider
	db      Database
	broker  Broker
	sources Sources
	version string
	debug   bool

	lock       sync.Mutex
	httpServer *http.Server
	router     *routegroup.Bundle
}

// Database interface for task and ledger operations
type Database interface {
	CreateTask(ctx context.Context, task *domain.Task) error
	GetTask(ctx context.Context, id int64) (*domain.Task, error)
	ListTasks(ctx context.Context, statuses ...domain.TaskStatus) ([]domain.Task, error)
	UpdateStatus(ctx context.Context, id int64, status domain.TaskStatus) error
	DeleteTask(ctx context.Context, id int64) error
	SeenCount(ctx context.Context, taskID int64) (int64, error)
	PurgeSeen(ctx context.Context, taskID int64) (int64, error)
	Ping(ctx context.Context) error
}

// Broker interface for queue operations
type Broker interface {
	Publish(ctx context.Context, queue domain.Queue, msgID string, v any) error
	QueueDepth(ctx context.Context, queue domain.Queue) (uint64, error)
}

// Sources reports which source types can be fetched
type Sources interface {
	Supports(st domain.SourceType) bool
}

// ConfigProvider provides server configuration
type ConfigProvider interface {
	GetServerConfig() (listen string, timeout time.Duration)
}

// New initializes a new server instance
func New(cfg ConfigProvider, db Database, broker Broker, sources Sources, version string, debug bool) *Server {
	s := &Server{
		config:  cfg,
		db:      db,
		broker:  broker,
		sources: sources,
		version: version,
		debug:   debug,
		router:  routegroup.New(http.NewServeMux()),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Run starts the HTTP server and handles graceful shutdown
func (s *Server) Run(ctx context.Context) error {
	listen, timeout := s.config.GetServerConfig()
	lgr.Printf("[INFO] starting server on %s", listen)

	s.lock.Lock()
	s.httpServer = &http.Server{
		Addr:              listen,
		Handler:           s.router,
		ReadHeaderTimeout: timeout,
		ReadTimeout:       timeout,
		WriteTimeout:      timeout,
	}
	s.lock.Unlock()

	go func() {
		<-ctx.Done()
		lgr.Printf("[INFO] shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		s.lock.Lock()
		defer s.lock.Unlock()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			lgr.Printf("[WARN] server shutdown error: %v", err)
		}
	}()

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}

	return nil
}

// setupMiddleware configures standard middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(rest.AppInfo("newswatch", "umputun", s.version))
	s.router.Use(rest.Ping)

	if s.debug {
		s.router.Use(logger.New(logger.Log(lgr.Default()), logger.Prefix("[DEBUG]")).Handler)
	}

	s.router.Use(rest.Recoverer(lgr.Default()))
	s.router.Use(rest.Throttle(100))
	s.router.Use(rest.SizeLimit(64 * 1024))
}

// setupRoutes configures application routes
func (s *Server) setupRoutes() {
	s.router.Mount("/api/v1").Route(func(r *routegroup.Bundle) {
		r.HandleFunc("GET /status", s.statusHandler)
		r.HandleFunc("GET /tasks", s.listTasksHandler)
		r.HandleFunc("POST /tasks", s.createTaskHandler)
		r.HandleFunc("GET /tasks/{id}", s.getTaskHandler)
		r.HandleFunc("PUT /tasks/{id}/status", s.updateStatusHandler)
		r.HandleFunc("DELETE /tasks/{id}", s.deleteTaskHandler)
		r.HandleFunc("POST /tasks/{id}/feedback", s.feedbackHandler)
	})
}
