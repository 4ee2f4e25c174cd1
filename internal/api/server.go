// Package api serves the read-only query surface over the projected
// entities. Every endpoint is a point lookup by natural key; the indexer
// writes, this server only reads.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/cask-indexer/internal/config"
	"github.com/cask-indexer/internal/logging"
	"github.com/cask-indexer/internal/storage"
)

// Server represents the HTTP API server.
type Server struct {
	router     *mux.Router
	httpServer *http.Server
	store      storage.Store
	log        *logging.Logger
}

// NewServer creates a new API server instance.
func NewServer(cfg *config.ServerConfig, store storage.Store, log *logging.Logger) *Server {
	s := &Server{
		router: mux.NewRouter(),
		store:  store,
		log:    log,
	}

	s.router.Use(RequestIDMiddleware)
	s.router.Use(LoggingMiddleware(log))
	s.router.Use(RecoveryMiddleware(log))

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/protocol", s.handleGetProtocol).Methods("GET")
	api.HandleFunc("/metrics/{name}", s.handleGetMetric).Methods("GET")

	api.HandleFunc("/users/{address}", s.handleGetUser).Methods("GET")
	api.HandleFunc("/consumers/{address}", s.handleGetConsumer).Methods("GET")
	api.HandleFunc("/providers/{address}", s.handleGetProvider).Methods("GET")
	api.HandleFunc("/providers/{address}/plans/{planId}", s.handleGetPlan).Methods("GET")
	api.HandleFunc("/providers/{address}/discounts/{discountId}", s.handleGetDiscount).Methods("GET")

	api.HandleFunc("/subscriptions/{id}", s.handleGetSubscription).Methods("GET")
	api.HandleFunc("/dcas/{id}", s.handleGetDCA).Methods("GET")
	api.HandleFunc("/p2ps/{id}", s.handleGetP2P).Methods("GET")
	api.HandleFunc("/chainlink-topups/{id}", s.handleGetChainlinkTopup).Methods("GET")
}

// handleHealth handles health check requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "cask-indexer",
	})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.log.WithField("addr", s.httpServer.Addr).Info("starting API server")
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down API server")
	return s.httpServer.Shutdown(ctx)
}

// Router exposes the configured router. Used by tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// ErrorResponse represents an API error response.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// APIError is the error payload shape.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

const (
	ErrCodeInvalidInput  = "INVALID_INPUT"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// respondError sends an error response.
func respondError(w http.ResponseWriter, statusCode int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: APIError{Code: code, Message: message}})
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}
