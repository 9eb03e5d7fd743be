package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"conti/internal/reports"
)

// serveReport answers from the report cache when it can; otherwise it
// builds the report, stores the marshaled body and serves that.
func (s *Server) serveReport(w http.ResponseWriter, key string, build func() (any, error)) {
	if body, ok := s.reportCache.Get(key); ok {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Cache", "hit")
		w.WriteHeader(http.StatusOK)
		w.Write(body)
		return
	}

	report, err := build()
	if err != nil {
		respondError(w, err)
		return
	}
	body, err := json.Marshal(report)
	if err != nil {
		respondError(w, err)
		return
	}
	s.reportCache.Set(key, body)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", "miss")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func reportKey(report, tenant string, scope reports.Scope, extra int64) string {
	return fmt.Sprintf("%s|%s|%s|%s|%d|%d",
		report, tenant, scope.Start.Format(dateLayout), scope.End.Format(dateLayout), scope.InstituteID, extra)
}

func (s *Server) handleDayBook(w http.ResponseWriter, r *http.Request) {
	tenant, scope, err := reportParams(r)
	if err != nil {
		respondError(w, err)
		return
	}
	s.serveReport(w, reportKey("daybook", tenant, scope, 0), func() (any, error) {
		return s.reports.DayBook(r.Context(), tenant, scope)
	})
}

func (s *Server) handleTrialBalance(w http.ResponseWriter, r *http.Request) {
	tenant, scope, err := reportParams(r)
	if err != nil {
		respondError(w, err)
		return
	}
	s.serveReport(w, reportKey("trialbalance", tenant, scope, 0), func() (any, error) {
		return s.reports.TrialBalance(r.Context(), tenant, scope)
	})
}

func (s *Server) handleLedgerStatement(w http.ResponseWriter, r *http.Request) {
	tenant, scope, err := reportParams(r)
	if err != nil {
		respondError(w, err)
		return
	}
	ledgerID, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	s.serveReport(w, reportKey("statement", tenant, scope, ledgerID), func() (any, error) {
		return s.reports.LedgerStatement(r.Context(), tenant, ledgerID, scope)
	})
}

func (s *Server) handleBalanceSheet(w http.ResponseWriter, r *http.Request) {
	tenant, scope, err := reportParams(r)
	if err != nil {
		respondError(w, err)
		return
	}
	s.serveReport(w, reportKey("balancesheet", tenant, scope, 0), func() (any, error) {
		return s.reports.BalanceSheet(r.Context(), tenant, scope)
	})
}

func (s *Server) handleIncomeExpenditure(w http.ResponseWriter, r *http.Request) {
	tenant, scope, err := reportParams(r)
	if err != nil {
		respondError(w, err)
		return
	}
	s.serveReport(w, reportKey("incomeexpenditure", tenant, scope, 0), func() (any, error) {
		return s.reports.IncomeExpenditure(r.Context(), tenant, scope)
	})
}

func (s *Server) handleConsolidated(w http.ResponseWriter, r *http.Request) {
	tenant, scope, err := reportParams(r)
	if err != nil {
		respondError(w, err)
		return
	}
	s.serveReport(w, reportKey("consolidated", tenant, scope, 0), func() (any, error) {
		return s.reports.Consolidated(r.Context(), tenant, scope.Start, scope.End)
	})
}

func reportParams(r *http.Request) (string, reports.Scope, error) {
	tenant, err := tenantID(r)
	if err != nil {
		return "", reports.Scope{}, err
	}
	scope, err := parseScope(r)
	if err != nil {
		return "", reports.Scope{}, err
	}
	return tenant, scope, nil
}
