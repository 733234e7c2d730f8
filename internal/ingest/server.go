// Package ingest exposes the inbound HTTP listener that accepts event
// envelopes and hands each one to the dispatcher. It is a thin transport
// edge: verification, size limits, and the invocation budget live here;
// event semantics live in the dispatch package.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the inbound event HTTP server.
type Server struct {
	config     Config
	dispatcher EventDispatcher
	logger     *slog.Logger
	server     *http.Server
}

// New creates an ingest server. The configuration is assumed validated.
func New(config Config, dispatcher EventDispatcher, logger *slog.Logger) *Server {
	return &Server{
		config:     config,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Start runs the HTTP server until ctx is cancelled (blocking).
func (s *Server) Start(ctx context.Context) error {
	router := s.setupRoutes()

	s.server = &http.Server{
		Addr:         s.config.Listen,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: s.config.InvocationBudget + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("ingest server starting",
		"listen", s.config.Listen,
		"path", s.config.Path,
		"signed", s.config.Secret != "",
	)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("ingest server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("ingest server shutdown failed: %w", err)
		}
		return ctx.Err()
	case err := <-errCh:
		return fmt.Errorf("ingest server error: %w", err)
	}
}

// setupRoutes configures the HTTP router.
func (s *Server) setupRoutes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)

	r.Post(s.config.Path, s.handleEvent)

	return r
}

// loggingMiddleware logs HTTP requests (excludes payload content).
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.logger.Info("ingest request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
			"remote_addr", r.RemoteAddr,
		)
	})
}

// handleEvent accepts one event envelope and runs it through the dispatcher.
// Rejections (size, signature) happen before dispatch; once the dispatcher is
// invoked the response is always 202 with the outcome summary.
func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	limitedReader := io.LimitReader(r.Body, s.config.MaxBodySize+1)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to read request body")
		return
	}

	if int64(len(body)) > s.config.MaxBodySize {
		s.respondError(w, http.StatusRequestEntityTooLarge, "payload too large")
		return
	}

	if s.config.SignatureHeader != "" {
		signature := r.Header.Get(s.config.SignatureHeader)
		if err := verifyHMACSignature(body, signature, s.config.Secret); err != nil {
			s.logger.Warn("event signature verification failed",
				"request_id", middleware.GetReqID(r.Context()),
			)
			s.respondError(w, http.StatusForbidden, "forbidden")
			return
		}
	}

	// Bound the whole invocation, backend call included.
	ctx, cancel := context.WithTimeout(r.Context(), s.config.InvocationBudget)
	defer cancel()

	out := s.dispatcher.Handle(ctx, body)

	s.respondJSON(w, http.StatusAccepted, AcceptedResponse{
		InvocationID:   out.InvocationID,
		EventType:      out.EventType,
		Status:         out.Status,
		Classification: out.Classification,
		TaskID:         out.TaskID,
	})
}

// respondJSON sends a JSON response.
func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends a JSON error response.
func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, ErrorResponse{Error: message})
}
