// Package http exposes the JSON API over the services layer. Routing
// uses method-qualified patterns on the standard mux; cross-cutting
// concerns (tracing, rate limiting, security headers) come from the
// middleware packages.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"fondi/internal/cache"
	"fondi/internal/middleware/ratelimit"
	"fondi/internal/middleware/security"
	"fondi/internal/middleware/trace"
	"fondi/internal/services"
	"fondi/internal/store"
)

// Services bundles the application services the API serves.
type Services struct {
	Store      store.Store
	Templates  *services.TemplateService
	Generator  *services.Generator
	Backfill   *services.Backfill
	Periods    *services.Periods
	Budgets    *services.Budgets
	Dashboard  *services.Dashboard
	Unforeseen *services.Unforeseen
}

type Server struct {
	http.Server

	svc Services

	detector    *security.Detector
	rateLimiter *ratelimit.Limiter
	tracer      *trace.Middleware

	// Alert evaluation walks every project; cache the result briefly so
	// dashboard polling does not hammer the store.
	alertCache *cache.LRUCache[services.AlertSet]

	shutdownOnce sync.Once
}

const alertCacheKey = "alerts"

// NewServer configures routes and middleware, returning a ready-to-run
// server.
func NewServer(addr string, svc Services) *Server {
	s := &Server{
		svc:        svc,
		detector:   security.NewDetector(),
		alertCache: cache.NewLRUCache[services.AlertSet](1, 30*time.Second),
	}
	s.rateLimiter = ratelimit.NewLimiter(ratelimit.DefaultConfig())
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /api/projects", s.handleCreateProject)
	mux.HandleFunc("GET /api/projects", s.handleListProjects)
	mux.HandleFunc("GET /api/projects/{id}", s.handleGetProject)

	mux.HandleFunc("POST /api/suppliers", s.handleCreateSupplier)
	mux.HandleFunc("GET /api/suppliers", s.handleListSuppliers)
	mux.HandleFunc("POST /api/categories", s.handleCreateCategory)
	mux.HandleFunc("GET /api/categories", s.handleListCategories)

	mux.HandleFunc("POST /api/templates", s.handleCreateTemplate)
	mux.HandleFunc("GET /api/templates", s.handleListTemplates)
	mux.HandleFunc("GET /api/templates/{id}", s.handleGetTemplate)
	mux.HandleFunc("PATCH /api/templates/{id}", s.handleUpdateTemplate)
	mux.HandleFunc("DELETE /api/templates/{id}", s.handleDeleteTemplate)
	mux.HandleFunc("POST /api/templates/{id}/deactivate", s.handleDeactivateTemplate)
	mux.HandleFunc("POST /api/templates/{id}/reactivate", s.handleReactivateTemplate)

	mux.HandleFunc("POST /api/generate", s.handleGenerate)
	mux.HandleFunc("POST /api/backfill", s.handleBackfill)

	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)
	mux.HandleFunc("PUT /api/transactions/{id}/receipt", s.handleSetReceipt)
	mux.HandleFunc("GET /api/projects/{id}/transactions", s.handleListTransactions)

	mux.HandleFunc("GET /api/projects/{id}/periods", s.handleListPeriods)
	mux.HandleFunc("POST /api/projects/{id}/periods/close", s.handleClosePeriod)
	mux.HandleFunc("POST /api/projects/{id}/periods/renew", s.handleRenewPeriod)

	mux.HandleFunc("POST /api/budgets", s.handleCreateBudget)
	mux.HandleFunc("GET /api/projects/{id}/budgets/spending", s.handleBudgetSpending)

	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/alerts", s.handleAlerts)
	mux.HandleFunc("POST /api/alerts/dismiss", s.handleDismissAlert)

	mux.HandleFunc("POST /api/unforeseen", s.handleCreateUnforeseen)
	mux.HandleFunc("GET /api/unforeseen", s.handleListUnforeseen)
	mux.HandleFunc("GET /api/unforeseen/{id}", s.handleGetUnforeseen)
	mux.HandleFunc("POST /api/unforeseen/{id}/submit", s.handleSubmitUnforeseen)
	mux.HandleFunc("POST /api/unforeseen/{id}/execute", s.handleExecuteUnforeseen)
	mux.HandleFunc("DELETE /api/unforeseen/{id}", s.handleDeleteUnforeseen)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	limit := s.rateLimiter.Middleware(s.detector.ExtractClientIP, nil)

	s.Server = http.Server{
		Addr:    addr,
		Handler: s.tracer.Middleware(headers.Middleware(s.flagSuspicious(limit(mux)))),
	}

	return s
}

// flagSuspicious logs requests matching known probe patterns. They are
// served normally; the log line is the signal.
func (s *Server) flagSuspicious(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			slog.WarnContext(r.Context(), "Suspicious request detected",
				"method", r.Method,
				"path", r.URL.Path,
				"client_ip", s.detector.ExtractClientIP(r))
		}
		next.ServeHTTP(w, r)
	})
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
