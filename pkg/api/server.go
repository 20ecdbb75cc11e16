// Package api exposes the ledger over HTTP: entity CRUD, the transaction
// commit endpoint and the derived aggregation views.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"bankledger/pkg/bank"
	"bankledger/pkg/ledger"
	"bankledger/pkg/logging"
	"bankledger/pkg/metrics"
	"bankledger/pkg/report"
	"bankledger/pkg/store"
	"bankledger/pkg/txcache"
)

// Server provides the HTTP surface over the store, the ledger and the reports.
type Server struct {
	store     store.Store
	processor *ledger.Processor
	reports   *report.Engine
	cache     *txcache.Cache // may be nil
	metrics   metrics.Collector
	logger    *logging.Logger
	server    *http.Server
	config    ServerConfig
}

// ServerConfig holds configuration for the API server.
type ServerConfig struct {
	// Address to listen on (e.g., ":8080")
	Address string

	// ReadTimeout for HTTP requests
	ReadTimeout time.Duration

	// WriteTimeout for HTTP responses
	WriteTimeout time.Duration

	// IdleTimeout for keep-alive connections
	IdleTimeout time.Duration

	// Metrics receives per-request observations. Defaults to a no-op collector.
	Metrics metrics.Collector

	// Logger for request-path events. Defaults to the global logger.
	Logger *logging.Logger
}

// DefaultServerConfig returns a default configuration.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Address:      ":8080",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// NewServer creates the API server and wires its routes.
func NewServer(s store.Store, p *ledger.Processor, r *report.Engine, c *txcache.Cache, config ServerConfig) *Server {
	if config.Metrics == nil {
		config.Metrics = metrics.NoOpCollector{}
	}
	if config.Logger == nil {
		config.Logger = logging.Global()
	}

	srv := &Server{
		store:     s,
		processor: p,
		reports:   r,
		cache:     c,
		metrics:   config.Metrics,
		logger:    config.Logger.Named("api"),
		config:    config,
	}

	srv.server = &http.Server{
		Addr:         config.Address,
		Handler:      srv.Router(),
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	return srv
}

// Router builds the route table. Exposed so tests can drive the handlers
// through httptest without binding a listener.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.requestMetrics)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	v1 := r.PathPrefix("/api/v1").Subrouter()

	// Literal customer routes must register before the {id} routes.
	v1.HandleFunc("/customers/top-by-transactions", s.handleTopByTransactions).Methods(http.MethodGet)
	v1.HandleFunc("/customers", s.handleCreateCustomer).Methods(http.MethodPost)
	v1.HandleFunc("/customers", s.handleListCustomers).Methods(http.MethodGet)
	v1.HandleFunc("/customers/{id}", s.handleGetCustomer).Methods(http.MethodGet)
	v1.HandleFunc("/customers/{id}", s.handleUpdateCustomer).Methods(http.MethodPut)
	v1.HandleFunc("/customers/{id}", s.handleDeleteCustomer).Methods(http.MethodDelete)
	v1.HandleFunc("/customers/{id}/accounts", s.handleCustomerAccounts).Methods(http.MethodGet)
	v1.HandleFunc("/customers/{id}/transactions", s.handleCustomerTransactions).Methods(http.MethodGet)
	v1.HandleFunc("/customers/{id}/total-balance", s.handleTotalBalance).Methods(http.MethodGet)

	v1.HandleFunc("/branches/account-counts", s.handleBranchAccountCounts).Methods(http.MethodGet)
	v1.HandleFunc("/branches", s.handleCreateBranch).Methods(http.MethodPost)
	v1.HandleFunc("/branches", s.handleListBranches).Methods(http.MethodGet)
	v1.HandleFunc("/branches/{id}", s.handleGetBranch).Methods(http.MethodGet)
	v1.HandleFunc("/branches/{id}", s.handleUpdateBranch).Methods(http.MethodPut)
	v1.HandleFunc("/branches/{id}", s.handleDeleteBranch).Methods(http.MethodDelete)

	v1.HandleFunc("/accounts", s.handleCreateAccount).Methods(http.MethodPost)
	v1.HandleFunc("/accounts", s.handleListAccounts).Methods(http.MethodGet)
	v1.HandleFunc("/accounts/{id}", s.handleGetAccount).Methods(http.MethodGet)
	v1.HandleFunc("/accounts/{id}", s.handleUpdateAccount).Methods(http.MethodPut)
	v1.HandleFunc("/accounts/{id}", s.handleDeleteAccount).Methods(http.MethodDelete)

	v1.HandleFunc("/transactions", s.handleCommitTransaction).Methods(http.MethodPost)
	v1.HandleFunc("/transactions", s.handleListTransactions).Methods(http.MethodGet)
	v1.HandleFunc("/transactions/{id}", s.handleGetTransaction).Methods(http.MethodGet)

	return r
}

// Start starts the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		s.logger.Info("server listening", zap.String("address", s.config.Address))
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Fatal("server failed", zap.Error(err))
		}
	}()
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
	})
}

// requestMetrics records per-request counters and latencies keyed by the
// route template, not the raw path, to keep label cardinality bounded.
func (s *Server) requestMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		srw := &statusResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(srw, r)

		endpoint := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tpl, err := route.GetPathTemplate(); err == nil {
				endpoint = tpl
			}
		}
		s.metrics.RecordHTTPRequest(r.Method, endpoint, strconv.Itoa(srw.statusCode), time.Since(start))
	})
}

// statusResponseWriter captures the status code written by a handler.
type statusResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusResponseWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

type errorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError maps domain errors onto HTTP statuses: missing entities are 404,
// uniqueness violations 409, rule rejections 422 and lock timeouts 503.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case bank.IsValidation(err):
		status = http.StatusUnprocessableEntity
	case bank.IsConflict(err):
		status = http.StatusConflict
	case bank.IsNotFound(err):
		status = http.StatusNotFound
	case bank.IsRetryable(err):
		status = http.StatusServiceUnavailable
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), Reason: bank.Classify(err)})
}

func (s *Server) writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg, Reason: "bad_request"})
}

func decodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}
