// Package http serves a read-only JSON view of the ledger: the current
// balance, statistics and budget periods.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"pocketbook/internal/core"
	"pocketbook/internal/log"
	"pocketbook/internal/middleware/ratelimit"
	"pocketbook/internal/middleware/security"
	"pocketbook/internal/middleware/trace"
	"pocketbook/internal/services"
)

// Ledger is the read side of services.LedgerService.
type Ledger interface {
	Now() time.Time
	BalanceSnapshot(now time.Time) core.BalanceSnapshot
	ExpensesByPeriod() []core.PeriodGroup
	Statistics() *services.StatisticsService
}

type Server struct {
	http.Server
	ledger  Ledger
	logger  *log.Logger
	limiter *ratelimit.Limiter
	tracer  *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
// The rate limiter's cleanup loop starts immediately and ends in Shutdown.
func NewServer(addr string, ledger Ledger, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		ledger:  ledger,
		logger:  logger,
		limiter: ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		tracer:  trace.NewMiddleware(logger, extractClientIP),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/balance", s.handleBalance)
	mux.HandleFunc("GET /api/categories", s.handleCategories)
	mux.HandleFunc("GET /api/periods", s.handlePeriods)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("GET /api/years", s.handleYears)

	// outermost first: trace, headers, rate limit
	var h http.Handler = mux
	h = s.limiter.Middleware(extractClientIP, s.handleRateLimited)(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = s.tracer.Middleware(h)
	s.Handler = h

	s.limiter.Start()
	return s
}

// Shutdown gracefully shuts down the server and its cleanup loop.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	s.writeError(w, r, http.StatusTooManyRequests, "rate limit exceeded")
}

func requestID(r *http.Request) string {
	return trace.GetRequestID(r.Context())
}
