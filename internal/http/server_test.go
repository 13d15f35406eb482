package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"expenses/internal/core"
	applog "expenses/internal/log"
	"expenses/internal/memory"
	"expenses/internal/services"
)

type testServer struct {
	*Server
	store *memory.Store
}

func newTestServer(t *testing.T) testServer {
	t.Helper()
	store := memory.New(core.SuggestedCategories)
	s := NewServer(":0",
		services.NewLedgerService(store, nil),
		services.NewReportService(store),
		store.Ping,
		nil)
	s.now = func() time.Time { return time.Date(2025, 1, 20, 9, 0, 0, 0, time.UTC) }
	return testServer{Server: s, store: store}
}

func (ts testServer) do(t *testing.T, method, target, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	ts.Handler.ServeHTTP(rec, req)
	return rec
}

func (ts testServer) create(t *testing.T, body string) int64 {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/expenses", "application/json", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create %s: status %d body %s", body, rec.Code, rec.Body.String())
	}
	var resp struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	return resp.ID
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestHealthAndReady(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/healthz", "", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthz: %d %q", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing request id header")
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing security headers")
	}

	rec = ts.do(t, http.MethodGet, "/readyz", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("readyz: %d", rec.Code)
	}

	ts.ready = func(context.Context) error { return errors.New("database is locked") }
	rec = ts.do(t, http.MethodGet, "/readyz", "", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz with failing store: %d", rec.Code)
	}
}

func TestCreateAndList(t *testing.T) {
	ts := newTestServer(t)

	first := ts.create(t, `{"date":"2025-01-10","amount":50,"category":"Food","description":"groceries"}`)

	form := url.Values{"date": {"2025-01-15"}, "amount": {"30.5"}, "category": {"Food"}}
	rec := ts.do(t, http.MethodPost, "/expenses", "application/x-www-form-urlencoded", form.Encode())
	if rec.Code != http.StatusCreated {
		t.Fatalf("form create: %d %s", rec.Code, rec.Body.String())
	}
	if loc := rec.Header().Get("Location"); !strings.HasPrefix(loc, "/expenses/") {
		t.Errorf("unexpected Location %q", loc)
	}

	rec = ts.do(t, http.MethodGet, "/expenses", "", "")
	items := decode[[]core.Expense](t, rec)
	if len(items) != 2 || items[0].Date != "2025-01-15" || items[0].Amount != 30.5 || items[1].ID != first {
		t.Fatalf("unexpected list %+v", items)
	}
	if items[1].Description != "groceries" {
		t.Errorf("description lost: %+v", items[1])
	}
}

func TestCreateValidation(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/expenses", "application/json", `{"date":"","amount":"abc","category":""}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status %d, want 422", rec.Code)
	}
	body := decode[errorBody](t, rec)
	got := map[string]bool{}
	for _, f := range body.Fields {
		got[f.Field] = true
	}
	for _, want := range []string{"date", "amount", "category"} {
		if !got[want] {
			t.Errorf("field %q not reported in %+v", want, body.Fields)
		}
	}

	rec = ts.do(t, http.MethodGet, "/expenses", "", "")
	if items := decode[[]core.Expense](t, rec); len(items) != 0 {
		t.Fatalf("rejected create stored %+v", items)
	}

	rec = ts.do(t, http.MethodPost, "/expenses", "application/json", `{"date":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed JSON: %d", rec.Code)
	}
}

func TestGetAndDelete(t *testing.T) {
	ts := newTestServer(t)
	a := ts.create(t, `{"date":"2025-01-10","amount":"50","category":"Food"}`)
	b := ts.create(t, `{"date":"2025-01-11","amount":"20","category":"Bills"}`)
	c := ts.create(t, `{"date":"2025-01-12","amount":"5","category":"Bills"}`)

	rec := ts.do(t, http.MethodGet, "/expenses/"+itoa(a), "", "")
	if e := decode[core.Expense](t, rec); rec.Code != http.StatusOK || e.ID != a || e.Category != "Food" {
		t.Fatalf("get: %d %+v", rec.Code, e)
	}

	if rec := ts.do(t, http.MethodGet, "/expenses/999", "", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("get missing: %d", rec.Code)
	}
	if rec := ts.do(t, http.MethodGet, "/expenses/abc", "", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("get bad id: %d", rec.Code)
	}

	if rec := ts.do(t, http.MethodDelete, "/expenses/"+itoa(a), "", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("delete: %d", rec.Code)
	}
	// Unknown ids are a silent no-op.
	if rec := ts.do(t, http.MethodDelete, "/expenses/999", "", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("delete unknown: %d", rec.Code)
	}

	rec = ts.do(t, http.MethodDelete, "/expenses", "", "")
	if rec.Code != http.StatusBadRequest || decode[errorBody](t, rec).Error != "no expense selected" {
		t.Fatalf("empty selection: %d %s", rec.Code, rec.Body.String())
	}

	if rec := ts.do(t, http.MethodDelete, "/expenses?id="+itoa(b)+"&id="+itoa(c), "", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("delete selected: %d", rec.Code)
	}
	rec = ts.do(t, http.MethodGet, "/expenses", "", "")
	if items := decode[[]core.Expense](t, rec); len(items) != 0 {
		t.Fatalf("expected empty ledger, got %+v", items)
	}
}

func TestReports(t *testing.T) {
	ts := newTestServer(t)
	ts.create(t, `{"date":"2025-01-10","amount":50,"category":"Food"}`)
	ts.create(t, `{"date":"2025-01-15","amount":30,"category":"Food"}`)
	ts.create(t, `{"date":"2025-02-01","amount":100,"category":"Bills"}`)

	tests := []struct {
		target string
		want   core.MonthlySummary
	}{
		{"/reports/monthly?month=2025-01", core.MonthlySummary{Month: "2025-01", Total: 80}},
		{"/reports/monthly?date=2025-02-14", core.MonthlySummary{Month: "2025-02", Total: 100}},
		{"/reports/monthly", core.MonthlySummary{Month: "2025-01", Total: 80}},
		{"/reports/monthly?month=2030-12", core.MonthlySummary{Month: "2030-12", Total: 0}},
	}
	for _, tt := range tests {
		rec := ts.do(t, http.MethodGet, tt.target, "", "")
		if got := decode[core.MonthlySummary](t, rec); rec.Code != http.StatusOK || got != tt.want {
			t.Errorf("%s: %d %+v, want %+v", tt.target, rec.Code, got, tt.want)
		}
	}

	if rec := ts.do(t, http.MethodGet, "/reports/monthly?month=2025-1", "", ""); rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("bad month: %d", rec.Code)
	}

	rec := ts.do(t, http.MethodGet, "/reports/categories", "", "")
	cats := decode[[]core.CategoryTotal](t, rec)
	if len(cats) != 2 || cats[0] != (core.CategoryTotal{Category: "Bills", Total: 100}) || cats[1] != (core.CategoryTotal{Category: "Food", Total: 80}) {
		t.Errorf("categories: %+v", cats)
	}

	rec = ts.do(t, http.MethodGet, "/reports/months", "", "")
	months := decode[[]core.MonthTotal](t, rec)
	if len(months) != 2 || months[0] != (core.MonthTotal{Month: "2025-01", Total: 80}) {
		t.Errorf("months: %+v", months)
	}

	rec = ts.do(t, http.MethodGet, "/reports/analysis", "", "")
	var a struct {
		ByCategory []core.CategoryTotal `json:"by_category"`
		ByMonth    []core.MonthTotal    `json:"by_month"`
		Empty      bool                 `json:"empty"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &a); err != nil {
		t.Fatal(err)
	}
	if a.Empty || len(a.ByCategory) != 2 || len(a.ByMonth) != 2 {
		t.Errorf("analysis: %+v", a)
	}
}

func TestEmptyAnalysis(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodGet, "/reports/analysis", "", "")
	if !strings.Contains(rec.Body.String(), `"empty":true`) || !strings.Contains(rec.Body.String(), `"by_category":[]`) {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestCategories(t *testing.T) {
	ts := newTestServer(t)
	ts.create(t, `{"date":"2025-01-10","amount":1,"category":"Pets"}`)

	rec := ts.do(t, http.MethodGet, "/categories", "", "")
	cats := decode[[]string](t, rec)
	if len(cats) != len(core.SuggestedCategories)+1 || cats[len(cats)-1] != "Pets" {
		t.Fatalf("unexpected categories %v", cats)
	}
}

type unavailableLedger struct{ Ledger }

func (unavailableLedger) List(context.Context) ([]core.Expense, error) {
	return nil, core.Unavailable("list", errors.New("unable to open database file"))
}

func TestStorageUnavailable(t *testing.T) {
	ts := newTestServer(t)
	ts.ledger = unavailableLedger{ts.ledger}

	rec := ts.do(t, http.MethodGet, "/expenses", "", "")
	if rec.Code != http.StatusServiceUnavailable || rec.Header().Get("Retry-After") == "" {
		t.Fatalf("status %d headers %v", rec.Code, rec.Header())
	}
}

func TestMethodNotAllowed(t *testing.T) {
	ts := newTestServer(t)
	if rec := ts.do(t, http.MethodPut, "/expenses/1", "", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("PUT: %d", rec.Code)
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func TestWriteRateLimit(t *testing.T) {
	store := memory.New(core.SuggestedCategories)
	s := NewServer(":0",
		services.NewLedgerService(store, nil),
		services.NewReportService(store),
		nil,
		nil,
		WithWriteRateLimit(1))
	t.Cleanup(func() { s.limiter.Stop() })
	ts := testServer{Server: s, store: store}

	ts.create(t, `{"date":"2025-01-10","amount":"5","category":"Food"}`)

	rec := ts.do(t, http.MethodPost, "/expenses", "application/json", `{"date":"2025-01-10","amount":"5","category":"Food"}`)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second write: status %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "60" {
		t.Errorf("Retry-After = %q", rec.Header().Get("Retry-After"))
	}

	if rec := ts.do(t, http.MethodGet, "/expenses", "", ""); rec.Code != http.StatusOK {
		t.Errorf("reads should not be limited, got %d", rec.Code)
	}
}

func TestCreateLogsStoredRecord(t *testing.T) {
	var buf bytes.Buffer
	logger := applog.New(applog.Config{Handler: slog.NewJSONHandler(&buf, nil)})

	store := memory.New(core.SuggestedCategories)
	s := NewServer(":0", services.NewLedgerService(store, nil), services.NewReportService(store), nil, logger)
	ts := testServer{Server: s, store: store}

	id := ts.create(t, `{"date":"2025-01-10","amount":" 4.5 ","category":"Food","description":"  spaced "}`)

	items := decode[[]core.Expense](t, ts.do(t, http.MethodGet, "/expenses", "", ""))
	if len(items) != 1 || items[0].Description != "  spaced " {
		t.Fatalf("description not kept as typed: %+v", items)
	}

	var logged map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var rec map[string]any
		if err := json.Unmarshal([]byte(line), &rec); err == nil && rec["msg"] == "Expense created" {
			logged = rec
		}
	}
	if logged == nil {
		t.Fatalf("no creation log in:\n%s", buf.String())
	}
	if logged[applog.FieldExpenseID] != float64(id) || logged[applog.FieldAmount] != 4.5 ||
		logged[applog.FieldDescription] != "  spaced " {
		t.Errorf("logged %v, want the stored record", logged)
	}
}
