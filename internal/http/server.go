package http

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"

	"kharcha/internal/log"
	"kharcha/internal/middleware/ratelimit"
	"kharcha/internal/middleware/security"
	"kharcha/internal/middleware/trace"
	"kharcha/internal/services"
)

// Options configures the HTTP surface.
type Options struct {
	Logger *log.Logger
	// RateLimit caps mutating requests per client per minute; 0 disables it
	RateLimit int
	Headers   *security.HeadersConfig
}

// Server is the JSON API over a LedgerService.
type Server struct {
	http.Server
	svc      *services.LedgerService
	logger   *log.Logger
	tracer   *trace.Middleware
	detector *security.Detector
	limiter  *ratelimit.Limiter

	shuttingDown atomic.Bool
	shutdownOnce sync.Once
}

// NewServer configures the routes and returns a ready-to-run server.
func NewServer(addr string, svc *services.LedgerService, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		svc:    svc,
		logger: logger,
	}
	s.detector = security.NewDetector(logger)
	s.tracer = trace.NewMiddleware(logger, s.detector.ExtractClientIP)
	if opts.RateLimit > 0 {
		s.limiter = ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimit})
	}

	headers := security.DefaultHeadersConfig()
	if opts.Headers != nil {
		headers = *opts.Headers
	}
	s.Handler = s.routes(security.NewHeadersMiddleware(headers))
	return s
}

func (s *Server) routes(headers *security.HeadersMiddleware) http.Handler {
	r := chi.NewRouter()
	r.Use(s.tracer.Middleware)
	r.Use(s.recoverer)
	r.Use(headers.Middleware)
	r.Use(s.detector.Middleware)

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		if s.limiter != nil {
			r.Use(s.limiter.Middleware(s.detector.ExtractClientIP, handleTooManyRequests,
				http.MethodPost, http.MethodPut, http.MethodDelete))
		}

		r.Get("/expenses", s.handleListExpenses)
		r.Post("/expenses", s.handleCreateExpense)
		r.Get("/expenses/{id}", s.handleGetExpense)
		r.Put("/expenses/{id}", s.handleUpdateExpense)
		r.Delete("/expenses/{id}", s.handleDeleteExpense)
		r.Delete("/expenses", s.handleClearExpenses)
		r.Get("/categories", s.handleCategories)

		r.Get("/dashboard", s.handleDashboard)
		r.Get("/history", s.handleHistory)

		r.Get("/budget", s.handleGetBudget)
		r.Put("/budget", s.handleSetBudget)
		r.Get("/theme", s.handleGetTheme)
		r.Put("/theme", s.handleSetTheme)
		r.Post("/theme/toggle", s.handleToggleTheme)
		r.Get("/settings", s.handleSettings)

		r.Get("/export.json", s.handleExportJSON)
		r.Get("/export.csv", s.handleExportCSV)
		r.Post("/import/csv", s.handleImportCSV)
		r.Post("/import/json", s.handleImportJSON)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "Not found."})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "Method not allowed."})
	})
	return r
}

// recoverer turns a handler panic into a logged 500.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.FromContext(r.Context()).ErrorContext(r.Context(), "Handler panic", "panic", rec, log.FieldPath, r.URL.Path)
				writeJSON(w, http.StatusInternalServerError, errorResponse{Error: services.MessageUnexpected})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// Metrics exposes the trace, security and rate limit counters.
func (s *Server) Metrics() (trace.Metrics, security.DetectionMetrics, ratelimit.Metrics) {
	var rl ratelimit.Metrics
	if s.limiter != nil {
		rl = s.limiter.GetMetrics()
	}
	return s.tracer.GetMetrics(), s.detector.GetMetrics(), rl
}

// Shutdown gracefully shuts down the server and the rate limiter
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.shuttingDown.Store(true)
		if s.limiter != nil {
			s.limiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.shuttingDown.Load() {
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func handleTooManyRequests(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "Too many requests. Please slow down."})
}
