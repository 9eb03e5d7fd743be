// Package http exposes the accounting API over JSON.
package http

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"conti/internal/cache"
	applog "conti/internal/log"
	"conti/internal/middleware/ratelimit"
	"conti/internal/middleware/security"
	"conti/internal/middleware/trace"
	"conti/internal/services"
)

// Options tunes server behaviour. Zero values fall back to defaults.
type Options struct {
	ReportCacheSize   int
	ReportCacheTTL    time.Duration
	RequestsPerMinute int
	Logger            *applog.Logger
}

// Server wires the services behind the HTTP surface. Report responses
// are cached as marshaled JSON; a stale window up to the cache TTL is
// acceptable for reads.
type Server struct {
	http.Server

	catalog   *services.CatalogService
	entries   *services.EntryService
	reports   *services.ReportService
	pettyCash *services.PettyCashService

	limiter      *ratelimit.Limiter
	tracer       *trace.Middleware
	reportCache  *cache.LRUCache[[]byte]
	cacheManager *cache.Manager

	shutdownOnce sync.Once
}

func NewServer(addr string, catalog *services.CatalogService, entries *services.EntryService, reportSvc *services.ReportService, pettyCash *services.PettyCashService, opts Options) *Server {
	if opts.ReportCacheSize <= 0 {
		opts.ReportCacheSize = 256
	}
	if opts.ReportCacheTTL <= 0 {
		opts.ReportCacheTTL = 30 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentHTTP)
	}

	s := &Server{
		catalog:      catalog,
		entries:      entries,
		reports:      reportSvc,
		pettyCash:    pettyCash,
		limiter:      ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RequestsPerMinute}),
		tracer:       trace.NewMiddleware(clientIP),
		reportCache:  cache.NewLRUCache[[]byte](opts.ReportCacheSize, opts.ReportCacheTTL),
		cacheManager: cache.NewManager(),
	}
	s.cacheManager.Register(s.reportCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux := http.NewServeMux()
	s.routes(mux)
	api := s.invalidateOnWrite(mux)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	rateLimited := s.limiter.Middleware(clientIP, nil)

	handler := applog.Middleware(opts.Logger)(
		headers.Middleware(
			s.tracer.Middleware(
				rateLimited(api))))

	s.Server = http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("POST /api/institutes", s.handleCreateInstitute)
	mux.HandleFunc("GET /api/institutes", s.handleListInstitutes)
	mux.HandleFunc("GET /api/institutes/{id}", s.handleGetInstitute)
	mux.HandleFunc("PUT /api/institutes/{id}/pettycash-ledger", s.handleSetPettyCashLedger)

	mux.HandleFunc("POST /api/ledgers", s.handleCreateLedger)
	mux.HandleFunc("GET /api/ledgers", s.handleListLedgers)
	mux.HandleFunc("GET /api/ledgers/{id}", s.handleGetLedger)
	mux.HandleFunc("POST /api/ledgers/{id}/categories", s.handleCreateCategory)
	mux.HandleFunc("GET /api/ledgers/{id}/categories", s.handleListCategories)

	mux.HandleFunc("POST /api/entries", s.handleCreateEntry)
	mux.HandleFunc("GET /api/entries", s.handleListEntries)
	mux.HandleFunc("GET /api/entries/{id}", s.handleGetEntry)
	mux.HandleFunc("PUT /api/entries/{id}", s.handleUpdateEntry)
	mux.HandleFunc("DELETE /api/entries/{id}", s.handleDeleteEntry)

	mux.HandleFunc("GET /api/reports/daybook", s.handleDayBook)
	mux.HandleFunc("GET /api/reports/trial-balance", s.handleTrialBalance)
	mux.HandleFunc("GET /api/reports/ledgers/{id}/statement", s.handleLedgerStatement)
	mux.HandleFunc("GET /api/reports/balance-sheet", s.handleBalanceSheet)
	mux.HandleFunc("GET /api/reports/income-expenditure", s.handleIncomeExpenditure)
	mux.HandleFunc("GET /api/reports/consolidated", s.handleConsolidated)

	mux.HandleFunc("POST /api/pettycash/funds", s.handleCreateFund)
	mux.HandleFunc("GET /api/pettycash/funds/{id}", s.handleGetFund)
	mux.HandleFunc("GET /api/pettycash/funds/{id}/transactions", s.handleListFundTransactions)
	mux.HandleFunc("POST /api/pettycash/funds/{id}/expenses", s.handleRecordFundExpense)
	mux.HandleFunc("POST /api/pettycash/funds/{id}/replenish", s.handleReplenishFund)
	mux.HandleFunc("POST /api/pettycash/funds/{id}/close", s.handleCloseFund)
}

// invalidateOnWrite drops cached reports after any mutating API call, so
// reports never serve data older than the last write plus the TTL.
func (s *Server) invalidateOnWrite(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)
		if r.Method != http.MethodGet && strings.HasPrefix(r.URL.Path, "/api/") {
			s.reportCache.Purge()
		}
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	// Readiness piggybacks on a cheap storage round trip.
	if _, err := s.catalog.ListInstitutes(r.Context(), "readyz-probe"); err != nil {
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "storage unavailable"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	m := s.tracer.GetMetrics()
	respondJSON(w, http.StatusOK, map[string]any{
		"total_requests":       m.TotalRequests,
		"avg_response_time_us": m.AverageResponseTime,
		"rate_limited_clients": s.limiter.ActiveClients(),
		"report_cache_entries": s.reportCache.Size(),
	})
}

// Shutdown stops the HTTP listener and background cleanup goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
