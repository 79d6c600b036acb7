// Package api serves an in-memory implementation of the tracker backend
// over HTTP. It speaks the same envelope protocol as the production
// backend and is used for local development, the CLI demo mode and tests.
package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/zhuiying-client/internal/config"
	"github.com/zhuiying-client/internal/logging"
)

// ServerConfig holds server configuration.
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	Latency         time.Duration // artificial delay added to every request
	RPS             int           // requests per second per client, 0 disables limiting
}

// ServerConfigFromConfig derives server settings from the mock config
func ServerConfigFromConfig(cfg *config.MockConfig) *ServerConfig {
	return &ServerConfig{
		Host:            cfg.Host,
		Port:            cfg.Port,
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    10 * time.Second,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 5 * time.Second,
		Latency:         cfg.Latency,
		RPS:             cfg.RPS,
	}
}

// Server represents the HTTP mock backend.
type Server struct {
	router     *mux.Router
	httpServer *http.Server
	backend    *Backend
	logger     *logging.Logger
	config     *ServerConfig
}

// NewServer creates a new server around backend.
func NewServer(config *ServerConfig, backend *Backend, logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	s := &Server{
		router:  mux.NewRouter(),
		backend: backend,
		logger:  logger.WithComponent("mock-backend"),
		config:  config,
	}

	s.setupRouter()

	return s
}

// setupRouter configures the router with middleware and routes
func (s *Server) setupRouter() {
	// Order matters
	s.router.Use(LoggingMiddleware(s.logger))
	s.router.Use(RecoveryMiddleware(s.logger))
	s.router.Use(CORSMiddleware)
	s.router.Use(RateLimitMiddleware(NewRateLimiter(s.config.RPS)))
	s.router.Use(LatencyMiddleware(s.config.Latency))
	s.router.Use(CompressionMiddleware)

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%s", s.config.Host, s.config.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)

	authed := api.NewRoute().Subrouter()
	authed.Use(AuthMiddleware(s.backend))

	authed.HandleFunc("/auth/logout", s.handleLogout).Methods(http.MethodPost)

	// Tracker endpoints; fixed paths before {id}
	authed.HandleFunc("/tracker/list", s.handleListTrackers).Methods(http.MethodGet)
	authed.HandleFunc("/tracker/parse-url", s.handleParseURL).Methods(http.MethodPost)
	authed.HandleFunc("/tracker/batch-delete", s.handleBatchDelete).Methods(http.MethodPost)
	authed.HandleFunc("/tracker/batch-start", s.handleBatchStart).Methods(http.MethodPost)
	authed.HandleFunc("/tracker/batch-stop", s.handleBatchStop).Methods(http.MethodPost)
	authed.HandleFunc("/tracker", s.handleCreateTracker).Methods(http.MethodPost)
	authed.HandleFunc("/tracker/{id}", s.handleGetTracker).Methods(http.MethodGet)
	authed.HandleFunc("/tracker/{id}", s.handleUpdateTracker).Methods(http.MethodPut)
	authed.HandleFunc("/tracker/{id}", s.handleDeleteTracker).Methods(http.MethodDelete)
	authed.HandleFunc("/tracker/{id}/start", s.handleStartTracker).Methods(http.MethodPost)
	authed.HandleFunc("/tracker/{id}/stop", s.handleStopTracker).Methods(http.MethodPost)
	authed.HandleFunc("/tracker/{id}/status", s.handleTrackerStatus).Methods(http.MethodGet)

	// User endpoints
	authed.HandleFunc("/user/info", s.handleUserInfo).Methods(http.MethodGet)
	authed.HandleFunc("/user/update", s.handleUpdateUser).Methods(http.MethodPost)
	authed.HandleFunc("/user/coin-transactions", s.handleCoinTransactions).Methods(http.MethodGet)
	authed.HandleFunc("/user/push-limit", s.handlePushLimit).Methods(http.MethodGet)
	authed.HandleFunc("/user/ad-reward", s.handleAdReward).Methods(http.MethodGet)
	authed.HandleFunc("/user/watch-ad", s.handleWatchAd).Methods(http.MethodPost)
	authed.HandleFunc("/user/spend-coins", s.handleSpendCoins).Methods(http.MethodPost)
	authed.HandleFunc("/user/earn-coins", s.handleEarnCoins).Methods(http.MethodPost)
	authed.HandleFunc("/user/subscription-status", s.handleSubscriptionStatus).Methods(http.MethodGet)
	authed.HandleFunc("/user/request-subscription", s.handleRequestSubscription).Methods(http.MethodPost)
}

// handleHealth handles health check requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "zhuiying-mock",
	})
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.WithField("addr", s.httpServer.Addr).Info("starting mock backend")
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on ln until Shutdown is called.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.WithField("addr", ln.Addr().String()).Info("serving mock backend")
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down mock backend")
	return s.httpServer.Shutdown(ctx)
}
