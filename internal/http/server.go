package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/services"
)

// Options configures a Server. Zero values fall back to sensible defaults.
type Options struct {
	Currency    string
	MonthWindow int
	Location    *time.Location
	Now         func() time.Time
	Limiter     *ratelimit.Limiter
	Headers     *security.HeadersConfig
	Logger      *log.Logger
}

// Server serves the JSON API over the transaction and dashboard services.
type Server struct {
	http.Server
	transactions *services.TransactionService
	dashboard    *services.DashboardService
	detector     *security.Detector
	limiter      *ratelimit.Limiter
	tracer       *trace.Middleware
	logger       *log.Logger

	currency    string
	monthWindow int
	location    *time.Location
	now         func() time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run http.Server.
func NewServer(addr string, txs *services.TransactionService, dash *services.DashboardService, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}
	s := &Server{
		transactions: txs,
		dashboard:    dash,
		detector:     security.NewDetector(logger),
		limiter:      opts.Limiter,
		logger:       logger.WithComponent(log.ComponentHTTP),
		currency:     opts.Currency,
		monthWindow:  services.ClampMonths(opts.MonthWindow, 0),
		location:     opts.Location,
		now:          opts.Now,
	}
	if s.limiter == nil {
		s.limiter = ratelimit.NewLimiter(ratelimit.DefaultConfig())
	}
	if s.location == nil {
		s.location = time.Local
	}
	if s.now == nil {
		s.now = time.Now
	}
	headers := security.DefaultHeadersConfig()
	if opts.Headers != nil {
		headers = *opts.Headers
	}
	s.tracer = trace.NewMiddleware(s.detector.ClientIP, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)
	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)
	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.HandleFunc("GET /api/monthly", s.handleMonthly)
	mux.HandleFunc("GET /api/categories", s.handleCategories)
	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)

	onLimit := func(w http.ResponseWriter, r *http.Request, retryAfter time.Duration) {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
			log.FieldClientIP, s.detector.ClientIP(r), log.FieldMethod, r.Method, log.FieldPath, r.URL.Path)
		TooManyRequestsError(ratelimit.RetryAfterSeconds(retryAfter)).Write(w, r)
	}

	// Outermost first.
	s.Server = http.Server{
		Addr: addr,
		Handler: chain(mux,
			log.Middleware(s.logger),
			s.tracer.Middleware,
			s.detector.Middleware,
			security.NewHeadersMiddleware(headers).Middleware,
			s.limiter.Middleware(s.detector.ClientIP, onLimit, http.MethodPost, http.MethodDelete),
		),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func chain(h http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// Limiter exposes the request limiter so callers can run its cleanup loop.
func (s *Server) Limiter() *ratelimit.Limiter {
	return s.limiter
}

// Shutdown gracefully shuts down the server. Later calls are no-ops.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.logger.InfoContext(ctx, "Shutting down HTTP server",
			"requests_served", s.tracer.Requests(),
			"suspicious_requests", s.detector.SuspiciousCount())
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) reference() time.Time {
	return s.now().In(s.location)
}
