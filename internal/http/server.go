// Package http serves the REST API the clients talk to.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"moneyboard/internal/core"
	"moneyboard/internal/log"
	"moneyboard/internal/middleware/ratelimit"
	"moneyboard/internal/middleware/security"
	"moneyboard/internal/middleware/trace"
	"moneyboard/internal/storage"
)

// APIPrefix is where every resource is mounted.
const APIPrefix = "/api"

// Ledger is the write and read surface for categories and transactions.
// *services.LedgerService implements it.
type Ledger interface {
	ListCategories(ctx context.Context) ([]core.Category, error)
	CreateCategory(ctx context.Context, in core.CategoryInput) (core.Category, error)
	UpdateCategory(ctx context.Context, id int64, patch core.CategoryPatch) (core.Category, error)
	DeleteCategory(ctx context.Context, id int64) error

	ListTransactions(ctx context.Context, kind core.Kind, f storage.Filter) ([]core.Transaction, error)
	GetTransaction(ctx context.Context, kind core.Kind, id int64) (core.Transaction, error)
	CreateTransaction(ctx context.Context, kind core.Kind, in core.TransactionInput) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, kind core.Kind, id int64, patch core.TransactionPatch) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, kind core.Kind, id int64) error

	Ping(ctx context.Context) error
}

// Dashboard computes derived views. *services.DashboardService implements it.
type Dashboard interface {
	Summary(ctx context.Context, p core.Period) (core.DashboardSummary, error)
	Trend(ctx context.Context) (core.MonthlyTrend, error)
}

type Server struct {
	http.Server
	ledger    Ledger
	dashboard Dashboard
	logger    *log.Logger
	now       func() time.Time

	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware

	shutdownOnce sync.Once
}

type options struct {
	logger         *log.Logger
	rateLimit      ratelimit.Config
	allowOrigin    string
	trustedProxies []string
}

// Option configures a Server.
type Option func(*options)

func WithLogger(l *log.Logger) Option { return func(o *options) { o.logger = l } }

// WithRateLimit sets how many writes per minute a client may issue.
func WithRateLimit(perMinute int) Option {
	return func(o *options) { o.rateLimit.RequestsPerMinute = perMinute }
}

// WithAllowOrigin enables CORS for origin.
func WithAllowOrigin(origin string) Option { return func(o *options) { o.allowOrigin = origin } }

// WithTrustedProxies adds networks whose X-Forwarded-For is believed.
func WithTrustedProxies(cidrs ...string) Option {
	return func(o *options) { o.trustedProxies = append(o.trustedProxies, cidrs...) }
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, ledger Ledger, dashboard Dashboard, opts ...Option) *Server {
	o := options{logger: log.Discard(), rateLimit: ratelimit.DefaultConfig()}
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger.WithComponent(log.ComponentHTTP)

	s := &Server{
		ledger:    ledger,
		dashboard: dashboard,
		logger:    logger,
		now:       time.Now,
		limiter:   ratelimit.NewLimiter(o.rateLimit),
		detector:  security.NewDetector(logger),
	}
	for _, cidr := range o.trustedProxies {
		if err := s.detector.AddTrustedProxy(cidr); err != nil {
			logger.Warn("Ignoring trusted proxy", "cidr", cidr, log.FieldError, err)
		}
	}
	s.tracer = trace.NewMiddleware(logger, s.detector.ExtractClientIP)

	headers := security.DefaultHeadersConfig()
	headers.AllowOrigin = o.allowOrigin

	mux := http.NewServeMux()
	s.routes(mux)

	var h http.Handler = mux
	h = s.limiter.Middleware(s.detector.ExtractClientIP, s.handleRateLimited)(h)
	h = s.detector.Handler(h)
	h = security.NewHeadersMiddleware(headers).Handler(h)
	h = s.tracer.Handler(h)
	h = log.Middleware(logger)(h)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET "+APIPrefix+"/healthz", s.handleHealth)

	collection := func(method, path string, h http.HandlerFunc) {
		mux.HandleFunc(method+" "+APIPrefix+path+"/{$}", h)
		mux.HandleFunc(method+" "+APIPrefix+path, h)
	}

	collection(http.MethodGet, "/categories", s.handleListCategories)
	collection(http.MethodPost, "/categories", s.handleCreateCategory)
	mux.HandleFunc("PUT "+APIPrefix+"/categories/{id}", s.handleUpdateCategory)
	mux.HandleFunc("DELETE "+APIPrefix+"/categories/{id}", s.handleDeleteCategory)

	for _, kind := range core.Kinds() {
		path := "/" + kind.Collection()
		collection(http.MethodGet, path, s.handleListTransactions(kind))
		collection(http.MethodPost, path, s.handleCreateTransaction(kind))
		mux.HandleFunc("GET "+APIPrefix+path+"/{id}", s.handleGetTransaction(kind))
		mux.HandleFunc("PUT "+APIPrefix+path+"/{id}", s.handleUpdateTransaction(kind))
		mux.HandleFunc("DELETE "+APIPrefix+path+"/{id}", s.handleDeleteTransaction(kind))
	}

	mux.HandleFunc("GET "+APIPrefix+"/dashboard/summary", s.handleSummary)
	mux.HandleFunc("GET "+APIPrefix+"/dashboard/monthly-trend", s.handleMonthlyTrend)
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.detector.ExtractClientIP(r), log.FieldMethod, r.Method, log.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, please try again later").Write(w)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady reports whether the store answers.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.ledger.Ping(ctx); err != nil {
		s.logger.WarnContext(ctx, "Readiness check failed", log.FieldError, err)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Shutdown gracefully shuts down the server and its background routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
		metrics := s.tracer.GetMetrics()
		s.logger.Info("HTTP server stopped",
			"total_requests", metrics.TotalRequests,
			"server_errors", metrics.ServerErrors,
			"suspicious_requests", s.detector.GetMetrics().SuspiciousRequests,
			"rate_limit_hits", s.limiter.GetMetrics().TotalHits)
	})
	return err
}
