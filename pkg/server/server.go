// Package server provides the HTTP API: program execution, the block
// palette, and a health endpoint.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/blockrun/blockrun/pkg/config"
	"github.com/blockrun/blockrun/pkg/logger"
	"github.com/blockrun/blockrun/pkg/runner"
)

// Server is the HTTP server for the execution API.
type Server struct {
	cfg        *config.Config
	runner     *runner.Runner
	httpServer *http.Server
	log        *slog.Logger
}

// New creates a server from configuration.
func New(cfg *config.Config) *Server {
	s := &Server{
		cfg: cfg,
		runner: runner.New(
			runner.WithStepLimit(cfg.Execute.StepLimit),
			runner.WithMaxSourceBytes(cfg.Execute.MaxSourceBytes),
		),
		log: logger.Get(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/execute", s.handleExecute)
	mux.HandleFunc("/api/blocks", s.handleBlocks)
	mux.HandleFunc("/health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      s.loggingMiddleware(mux),
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
	}

	return s
}

// Handler exposes the configured handler chain, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins serving. It blocks until the server stops.
func (s *Server) Start() error {
	s.log.Info("server starting", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// StartAsync begins serving in a goroutine and reports the terminal error,
// if any, on the returned channel.
func (s *Server) StartAsync() <-chan error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Start()
	}()
	return errCh
}

// Stop shuts the server down gracefully, honoring the context deadline.
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("server stopping")
	return s.httpServer.Shutdown(ctx)
}

// responseWrapper captures the status code for request logging.
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware assigns each request an id, echoes it in the response,
// and logs method, path, status, duration, and id.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(wrapper, r)

		s.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapper.statusCode,
			"duration", time.Since(start),
			"request_id", requestID,
		)
	})
}
