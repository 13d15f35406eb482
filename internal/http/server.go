package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"expenses/internal/core"
	applog "expenses/internal/log"
	"expenses/internal/middleware/ratelimit"
	"expenses/internal/middleware/trace"
)

// Ledger is the record-keeping surface the API exposes.
type Ledger interface {
	Create(ctx context.Context, in core.ExpenseInput) (core.Expense, error)
	Delete(ctx context.Context, selected ...int64) error
	List(ctx context.Context) ([]core.Expense, error)
	Get(ctx context.Context, id int64) (core.Expense, error)
	Categories(ctx context.Context) ([]string, error)
}

// Reports is the read-only report surface the API exposes.
type Reports interface {
	MonthlyTotal(ctx context.Context, yearMonth string) (float64, error)
	MonthlySummary(ctx context.Context, referenceDate string) (core.MonthlySummary, error)
	CategoryBreakdown(ctx context.Context) ([]core.CategoryTotal, error)
	TotalsByMonth(ctx context.Context) ([]core.MonthTotal, error)
	Analysis(ctx context.Context) (core.Analysis, error)
}

// ReadyFunc reports whether the backing store can serve requests.
type ReadyFunc func(ctx context.Context) error

type Server struct {
	http.Server
	ledger  Ledger
	reports Reports
	ready   ReadyFunc
	tracer  *trace.Middleware
	limiter *ratelimit.Limiter
	now     func() time.Time

	shutdownOnce sync.Once
}

// Option customizes a Server.
type Option func(*Server)

// WithWriteRateLimit caps create and delete requests per client IP.
func WithWriteRateLimit(perMinute int) Option {
	return func(s *Server) {
		if perMinute > 0 {
			s.limiter = ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: perMinute})
		}
	}
}

// NewServer wires routes and middleware, returning a ready-to-run server.
// ready may be nil.
func NewServer(addr string, ledger Ledger, reports Reports, ready ReadyFunc, logger *applog.Logger, opts ...Option) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		ledger:  ledger,
		reports: reports,
		ready:   ready,
		tracer:  trace.NewMiddleware(extractClientIP),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /expenses", s.handleListExpenses)
	mux.HandleFunc("POST /expenses", s.handleCreateExpense)
	mux.HandleFunc("DELETE /expenses", s.handleDeleteSelected)
	mux.HandleFunc("GET /expenses/{id}", s.handleGetExpense)
	mux.HandleFunc("DELETE /expenses/{id}", s.handleDeleteExpense)
	mux.HandleFunc("GET /categories", s.handleCategories)

	mux.HandleFunc("GET /reports/monthly", s.handleMonthlyReport)
	mux.HandleFunc("GET /reports/categories", s.handleCategoryReport)
	mux.HandleFunc("GET /reports/months", s.handleMonthReport)
	mux.HandleFunc("GET /reports/analysis", s.handleAnalysis)

	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	var handler http.Handler = mux
	if s.limiter != nil {
		handler = s.limiter.WritesOnly(extractClientIP, handleRateLimited)(handler)
	}
	handler = withSecurityHeaders(handler)
	handler = s.tracer.Middleware(handler)
	handler = applog.Middleware(logger)(handler)
	s.Handler = handler

	return s
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		shutdownErr = s.Server.Shutdown(ctx)

		m := s.tracer.GetMetrics()
		args := []any{
			"total_requests", m.TotalRequests,
			"server_errors", m.ServerErrors,
		}
		if s.limiter != nil {
			s.limiter.Stop()
			args = append(args, "rate_limited", s.limiter.GetMetrics().Rejected)
		}
		slog.InfoContext(ctx, "HTTP server stopped", args...)
	})
	return shutdownErr
}

func handleRateLimited(w http.ResponseWriter, r *http.Request) {
	ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, try again later").Send(w)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			s.writeError(w, r, core.Unavailable("ping", err))
			return
		}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
