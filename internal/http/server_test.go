package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"conti/internal/services"
	"conti/internal/storage/memory"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store := memory.New()
	catalog := services.NewCatalogService(store)
	entries := services.NewEntryService(store)
	reportSvc := services.NewReportService(store)
	pettyCash := services.NewPettyCashService(store, nil)
	srv := NewServer(":0", catalog, entries, reportSvc, pettyCash, Options{})
	t.Cleanup(func() {
		srv.cacheManager.Stop()
		srv.limiter.Stop()
	})
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path, tenant, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if tenant != "" {
		req.Header.Set("X-Tenant-ID", tenant)
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response: %v (body %s)", err, rr.Body.String())
	}
}

func TestHealthAndReady(t *testing.T) {
	srv := newTestServer(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		rr := doJSON(t, srv, http.MethodGet, path, "", "")
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
	}
}

func TestTenantHeaderRequired(t *testing.T) {
	srv := newTestServer(t)
	rr := doJSON(t, srv, http.MethodGet, "/api/institutes", "", "")
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 without tenant header, got %d", rr.Code)
	}
}

func TestCatalogFlow(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv, http.MethodPost, "/api/institutes", "acme", `{"name":"Branch A"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create institute status=%d body=%s", rr.Code, rr.Body.String())
	}
	var inst instituteResponse
	decodeBody(t, rr, &inst)
	if inst.ID == 0 || inst.Name != "Branch A" {
		t.Fatalf("unexpected institute: %+v", inst)
	}

	// Empty name is rejected.
	rr = doJSON(t, srv, http.MethodPost, "/api/institutes", "acme", `{"name":"  "}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("empty name status=%d", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodPost, "/api/ledgers", "acme",
		fmt.Sprintf(`{"instituteId":%d,"name":"Maintenance","type":"expense"}`, inst.ID))
	if rr.Code != http.StatusCreated {
		t.Fatalf("create ledger status=%d body=%s", rr.Code, rr.Body.String())
	}
	var ledger ledgerResponse
	decodeBody(t, rr, &ledger)

	rr = doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/ledgers/%d/categories", ledger.ID), "acme", `{"name":"Repairs"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create category status=%d body=%s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, srv, http.MethodPut, fmt.Sprintf("/api/institutes/%d/pettycash-ledger", inst.ID), "acme",
		fmt.Sprintf(`{"ledgerId":%d}`, ledger.ID))
	if rr.Code != http.StatusOK {
		t.Fatalf("set pettycash ledger status=%d body=%s", rr.Code, rr.Body.String())
	}
	decodeBody(t, rr, &inst)
	if inst.PettyCashLedgerID != ledger.ID {
		t.Fatalf("pettyCashLedgerId=%d, want %d", inst.PettyCashLedgerID, ledger.ID)
	}

	// Another tenant sees nothing.
	rr = doJSON(t, srv, http.MethodGet, "/api/institutes", "other", "")
	var list []instituteResponse
	decodeBody(t, rr, &list)
	if len(list) != 0 {
		t.Fatalf("cross-tenant leak: %+v", list)
	}
}

func TestEntryEndpoints(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv, http.MethodPost, "/api/institutes", "acme", `{"name":"Branch A"}`)
	var inst instituteResponse
	decodeBody(t, rr, &inst)
	rr = doJSON(t, srv, http.MethodPost, "/api/ledgers", "acme",
		fmt.Sprintf(`{"instituteId":%d,"name":"Bank","type":"bank"}`, inst.ID))
	var ledger ledgerResponse
	decodeBody(t, rr, &ledger)

	rr = doJSON(t, srv, http.MethodPost, "/api/entries", "acme",
		fmt.Sprintf(`{"ledgerId":%d,"date":"2026-04-10","description":"donation received","direction":"credit","amount":"250.00"}`, ledger.ID))
	if rr.Code != http.StatusCreated {
		t.Fatalf("create entry status=%d body=%s", rr.Code, rr.Body.String())
	}
	var entry entryResponse
	decodeBody(t, rr, &entry)
	if entry.Credit != "250.00" || entry.Debit != "0.00" || entry.Source != "manual" {
		t.Fatalf("unexpected entry: %+v", entry)
	}

	for name, body := range map[string]string{
		"bad direction": fmt.Sprintf(`{"ledgerId":%d,"date":"2026-04-10","description":"x","direction":"sideways","amount":"1.00"}`, ledger.ID),
		"bad amount":    fmt.Sprintf(`{"ledgerId":%d,"date":"2026-04-10","description":"x","direction":"debit","amount":"abc"}`, ledger.ID),
		"bad date":      fmt.Sprintf(`{"ledgerId":%d,"date":"10/04/2026","description":"x","direction":"debit","amount":"1.00"}`, ledger.ID),
	} {
		rr = doJSON(t, srv, http.MethodPost, "/api/entries", "acme", body)
		if rr.Code != http.StatusUnprocessableEntity {
			t.Errorf("%s: status=%d, want 422", name, rr.Code)
		}
	}

	rr = doJSON(t, srv, http.MethodPut, fmt.Sprintf("/api/entries/%d", entry.ID), "acme",
		`{"date":"2026-04-11","description":"donation corrected","direction":"credit","amount":"275.00"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("update entry status=%d body=%s", rr.Code, rr.Body.String())
	}
	decodeBody(t, rr, &entry)
	if entry.Credit != "275.00" || entry.Date != "2026-04-11" {
		t.Fatalf("update not applied: %+v", entry)
	}

	rr = doJSON(t, srv, http.MethodDelete, fmt.Sprintf("/api/entries/%d", entry.ID), "acme", "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete entry status=%d", rr.Code)
	}
	rr = doJSON(t, srv, http.MethodGet, fmt.Sprintf("/api/entries/%d", entry.ID), "acme", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("deleted entry status=%d, want 404", rr.Code)
	}
}

func TestPettyCashEndpoints(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv, http.MethodPost, "/api/institutes", "acme", `{"name":"Branch A"}`)
	var inst instituteResponse
	decodeBody(t, rr, &inst)
	rr = doJSON(t, srv, http.MethodPost, "/api/ledgers", "acme",
		fmt.Sprintf(`{"instituteId":%d,"name":"Petty Cash","type":"expense"}`, inst.ID))
	var ledger ledgerResponse
	decodeBody(t, rr, &ledger)
	doJSON(t, srv, http.MethodPut, fmt.Sprintf("/api/institutes/%d/pettycash-ledger", inst.ID), "acme",
		fmt.Sprintf(`{"ledgerId":%d}`, ledger.ID))

	rr = doJSON(t, srv, http.MethodPost, "/api/pettycash/funds", "acme",
		fmt.Sprintf(`{"instituteId":%d,"custodianName":"R. Verma","floatAmount":"100.00"}`, inst.ID))
	if rr.Code != http.StatusCreated {
		t.Fatalf("create fund status=%d body=%s", rr.Code, rr.Body.String())
	}
	var fund fundResponse
	decodeBody(t, rr, &fund)
	if fund.CurrentBalance != "100.00" || fund.Status != "active" {
		t.Fatalf("unexpected fund: %+v", fund)
	}

	rr = doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/pettycash/funds/%d/expenses", fund.ID), "acme",
		`{"amount":"35.00","description":"stationery","receiptNo":"R-101","date":"2026-04-12"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("record expense status=%d body=%s", rr.Code, rr.Body.String())
	}
	decodeBody(t, rr, &fund)
	if fund.CurrentBalance != "65.00" || fund.Spent != "35.00" {
		t.Fatalf("balance after expense: %+v", fund)
	}

	// Overdraft.
	rr = doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/pettycash/funds/%d/expenses", fund.ID), "acme",
		`{"amount":"500.00","description":"too big"}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("overdraft status=%d, want 422", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/pettycash/funds/%d/replenish", fund.ID), "acme",
		`{"date":"2026-04-13"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("replenish status=%d body=%s", rr.Code, rr.Body.String())
	}
	decodeBody(t, rr, &fund)
	if fund.CurrentBalance != "100.00" {
		t.Fatalf("balance after replenish: %+v", fund)
	}

	// Replenishing a full fund conflicts.
	rr = doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/pettycash/funds/%d/replenish", fund.ID), "acme",
		`{}`)
	if rr.Code != http.StatusConflict {
		t.Fatalf("replenish full fund status=%d, want 409", rr.Code)
	}

	// Replenishment posted a ledger entry.
	rr = doJSON(t, srv, http.MethodGet, fmt.Sprintf("/api/entries?ledger_id=%d&source=pettycash", ledger.ID), "acme", "")
	var entries []entryResponse
	decodeBody(t, rr, &entries)
	if len(entries) != 1 || entries[0].Debit != "35.00" {
		t.Fatalf("posted entries: %+v", entries)
	}

	rr = doJSON(t, srv, http.MethodGet, fmt.Sprintf("/api/pettycash/funds/%d/transactions", fund.ID), "acme", "")
	var txns []fundTransactionResponse
	decodeBody(t, rr, &txns)
	if len(txns) != 3 {
		t.Fatalf("transactions=%d, want 3 (float, expense, replenishment)", len(txns))
	}

	rr = doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/pettycash/funds/%d/close", fund.ID), "acme", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("close fund status=%d", rr.Code)
	}
	rr = doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/pettycash/funds/%d/expenses", fund.ID), "acme",
		`{"amount":"1.00","description":"after close"}`)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expense on closed fund status=%d, want 409", rr.Code)
	}
}

func TestReportEndpointsAndCache(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv, http.MethodPost, "/api/institutes", "acme", `{"name":"Branch A"}`)
	var inst instituteResponse
	decodeBody(t, rr, &inst)
	rr = doJSON(t, srv, http.MethodPost, "/api/ledgers", "acme",
		fmt.Sprintf(`{"instituteId":%d,"name":"Bank","type":"bank"}`, inst.ID))
	var ledger ledgerResponse
	decodeBody(t, rr, &ledger)
	doJSON(t, srv, http.MethodPost, "/api/entries", "acme",
		fmt.Sprintf(`{"ledgerId":%d,"date":"2026-04-10","description":"deposit","direction":"credit","amount":"120.00"}`, ledger.ID))

	path := "/api/reports/daybook?from=2026-04-01&to=2026-04-30"
	rr = doJSON(t, srv, http.MethodGet, path, "acme", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("daybook status=%d body=%s", rr.Code, rr.Body.String())
	}
	if got := rr.Header().Get("X-Cache"); got != "miss" {
		t.Fatalf("first daybook X-Cache=%q, want miss", got)
	}
	first := rr.Body.String()

	rr = doJSON(t, srv, http.MethodGet, path, "acme", "")
	if got := rr.Header().Get("X-Cache"); got != "hit" {
		t.Fatalf("second daybook X-Cache=%q, want hit", got)
	}
	if rr.Body.String() != first {
		t.Fatalf("cached body differs")
	}

	// Any write flushes cached reports.
	doJSON(t, srv, http.MethodPost, "/api/entries", "acme",
		fmt.Sprintf(`{"ledgerId":%d,"date":"2026-04-15","description":"second deposit","direction":"credit","amount":"10.00"}`, ledger.ID))
	rr = doJSON(t, srv, http.MethodGet, path, "acme", "")
	if got := rr.Header().Get("X-Cache"); got != "miss" {
		t.Fatalf("after write X-Cache=%q, want miss", got)
	}

	// A different tenant never sees the cached report.
	rr = doJSON(t, srv, http.MethodGet, path, "other", "")
	if got := rr.Header().Get("X-Cache"); got != "miss" {
		t.Fatalf("other tenant X-Cache=%q, want miss", got)
	}

	rr = doJSON(t, srv, http.MethodGet,
		fmt.Sprintf("/api/reports/ledgers/%d/statement?from=2026-04-01&to=2026-04-30", ledger.ID), "acme", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("statement status=%d body=%s", rr.Code, rr.Body.String())
	}

	// Inverted range is a validation error.
	rr = doJSON(t, srv, http.MethodGet, "/api/reports/trial-balance?from=2026-04-30&to=2026-04-01", "acme", "")
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("inverted range status=%d, want 422", rr.Code)
	}

	for _, path := range []string{
		"/api/reports/trial-balance?from=2026-04-01&to=2026-04-30",
		"/api/reports/balance-sheet?from=2026-04-01&to=2026-04-30",
		"/api/reports/income-expenditure?from=2026-04-01&to=2026-04-30",
		"/api/reports/consolidated?from=2026-04-01&to=2026-04-30",
	} {
		rr = doJSON(t, srv, http.MethodGet, path, "acme", "")
		if rr.Code != http.StatusOK {
			t.Errorf("%s status=%d body=%s", path, rr.Code, rr.Body.String())
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)
	doJSON(t, srv, http.MethodGet, "/healthz", "", "")

	rr := doJSON(t, srv, http.MethodGet, "/metrics", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("metrics status=%d", rr.Code)
	}
	var m map[string]any
	decodeBody(t, rr, &m)
	if _, ok := m["total_requests"]; !ok {
		t.Fatalf("metrics missing total_requests: %v", m)
	}
}
