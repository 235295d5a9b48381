// Package api provides the HTTP serving layer for the recall service.
//
// It exposes the per-user memory lifecycle over REST and a chat endpoint
// that assembles memory-enriched prompts for the generative AI provider.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mindhaven/recall-go/pkg/core"
	"github.com/mindhaven/recall-go/pkg/genai"
)

// Server implements the HTTP API for the recall service.
type Server struct {
	client   *core.AsyncClient
	provider genai.Provider
	router   *chi.Mux
	logger   *slog.Logger
	httpSrv  *http.Server
	port     string
}

// NewServer creates a new HTTP API server.
//
// Parameters:
//   - client: The memory client (required)
//   - provider: The generative AI provider; may be nil, in which case the
//     chat endpoint reports 503 and the memory endpoints still work
//   - port: The TCP port to listen on
//   - logger: Structured logger; nil falls back to slog.Default()
func NewServer(client *core.AsyncClient, provider genai.Provider, port string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		client:   client,
		provider: provider,
		logger:   logger,
		port:     port,
	}

	s.setupRouter()
	return s
}

// setupRouter configures all HTTP routes.
func (s *Server) setupRouter() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		r.Route("/users/{userID}", func(r chi.Router) {
			r.Post("/memories", s.handleRemember)
			r.Get("/memories", s.handleListMemories)
			r.Get("/memories/{memoryID}", s.handleGetMemory)
			r.Delete("/memories/{memoryID}", s.handleForget)
			r.Delete("/memories", s.handleErase)
			r.Post("/recall", s.handleRecall)
			r.Post("/chat", s.handleChat)
		})
	})

	s.router = r
}

// Handler returns the underlying HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Serve starts the HTTP server and blocks until it stops.
func (s *Server) Serve() error {
	addr := fmt.Sprintf(":%s", s.port)
	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("http server listening", "addr", addr)
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server and waits for in-flight
// asynchronous memory writes to finish.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv != nil {
		if err := s.httpSrv.Shutdown(ctx); err != nil {
			return err
		}
	}
	s.client.Wait()
	return nil
}

// handleHealth returns 200 OK if the server is running.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	successResponse(w, map[string]string{"status": "healthy"})
}

// handleReady checks whether the memory store is reachable.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	_, err := s.client.GetAll(ctx,
		core.WithUserIDForGetAll("health-check"), core.WithLimit(1))
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}

	successResponse(w, map[string]string{"status": "ready"})
}

// errorResponse writes a JSON error response.
func errorResponse(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// successResponse writes a JSON success response.
func successResponse(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(data)
}
