package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"rutapro/internal/core"
	"rutapro/internal/journal/memory"
)

var testNow = time.Date(2026, 3, 14, 20, 30, 0, 0, time.UTC)

func newTestServer(t *testing.T) (*Server, *memory.Store) {
	t.Helper()
	store := memory.New()
	s := NewServer(":0", store)
	s.now = func() time.Time { return testNow }
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Shutdown(ctx)
	})
	return s, store
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Handler.ServeHTTP(w, r)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return v
}

func mustClock(t *testing.T, s string) core.ClockTime {
	t.Helper()
	c, err := core.ParseClockTime(s)
	if err != nil {
		t.Fatalf("parse clock %q: %v", s, err)
	}
	return c
}

func TestHealthEndpoints(t *testing.T) {
	s, _ := newTestServer(t)

	if w := do(t, s, http.MethodGet, "/healthz", ""); w.Code != http.StatusOK || w.Body.String() != "ok" {
		t.Errorf("healthz: got %d %q", w.Code, w.Body.String())
	}
	if w := do(t, s, http.MethodGet, "/readyz", ""); w.Code != http.StatusOK || w.Body.String() != "ready" {
		t.Errorf("readyz: got %d %q", w.Code, w.Body.String())
	}
}

func TestShiftLifecycle(t *testing.T) {
	s, _ := newTestServer(t)

	w := do(t, s, http.MethodPost, "/days", `{
		"date": "2026-03-14",
		"start_time": "08:00",
		"initial_mileage": 120500,
		"initial_cash": "20000",
		"notes": "turno sabado"
	}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("start day: got %d %s", w.Code, w.Body.String())
	}
	started := decodeBody[dayResponse](t, w)
	if !started.IsActive {
		t.Error("started day should be active")
	}
	if started.InitialCashCents != 2000000 {
		t.Errorf("initial cash cents = %d, want 2000000", started.InitialCashCents)
	}

	w = do(t, s, http.MethodGet, "/days/active", "")
	if w.Code != http.StatusOK {
		t.Fatalf("active day: got %d %s", w.Code, w.Body.String())
	}
	active := decodeBody[dayResponse](t, w)
	if active.ID != started.ID {
		t.Errorf("active day ID = %q, want %q", active.ID, started.ID)
	}

	w = do(t, s, http.MethodPost, "/incomes", `{
		"platform": "uber",
		"amount": "8000",
		"payment_method": "cash",
		"timestamp": "09:15"
	}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create income: got %d %s", w.Code, w.Body.String())
	}
	income := decodeBody[entryCreatedResponse](t, w)
	if income.ID == "" {
		t.Error("income response missing id")
	}

	w = do(t, s, http.MethodPost, "/expenses", `{
		"category": "fuel",
		"amount": "3000",
		"description": "tanqueo parcial",
		"timestamp": "10:00"
	}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create expense: got %d %s", w.Code, w.Body.String())
	}

	w = do(t, s, http.MethodPost, "/days/pause", `{"at": "12:00"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("start pause: got %d %s", w.Code, w.Body.String())
	}
	if p := decodeBody[pauseToggleResponse](t, w); !p.Paused {
		t.Error("first toggle should start a pause")
	}

	w = do(t, s, http.MethodPost, "/days/pause", `{"at": "12:45"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("end pause: got %d %s", w.Code, w.Body.String())
	}
	if p := decodeBody[pauseToggleResponse](t, w); p.Paused {
		t.Error("second toggle should end the pause")
	}

	w = do(t, s, http.MethodPost, "/days/end", `{
		"end_time": "18:00",
		"final_mileage": 120710,
		"final_cash": "5000"
	}`)
	if w.Code != http.StatusOK {
		t.Fatalf("end day: got %d %s", w.Code, w.Body.String())
	}
	closed := decodeBody[dayResponse](t, w)
	if closed.End == nil {
		t.Fatal("closed day missing end block")
	}
	if closed.IsActive {
		t.Error("closed day should not be active")
	}
	if closed.End.EndTime != "18:00" {
		t.Errorf("end time = %q, want 18:00", closed.End.EndTime)
	}

	w = do(t, s, http.MethodGet, "/days", "")
	if w.Code != http.StatusOK {
		t.Fatalf("list days: got %d %s", w.Code, w.Body.String())
	}
	days := decodeBody[[]dayResponse](t, w)
	if len(days) != 1 {
		t.Fatalf("len(days) = %d, want 1", len(days))
	}
	got := days[0].Totals
	want := dayTotalsResponse{
		IncomeCents:   800000,
		ExpensesCents: 300000,
		ProfitCents:   500000,
		Services:      1,
		Minutes:       600,
	}
	if got != want {
		t.Errorf("day totals = %+v, want %+v", got, want)
	}

	if w := do(t, s, http.MethodGet, "/days/active", ""); w.Code != http.StatusNotFound {
		t.Errorf("active day after close: got %d, want 404", w.Code)
	}
}

func TestStartDayConflict(t *testing.T) {
	s, _ := newTestServer(t)

	if w := do(t, s, http.MethodPost, "/days", `{"initial_mileage": 100}`); w.Code != http.StatusCreated {
		t.Fatalf("first start: got %d %s", w.Code, w.Body.String())
	}
	if w := do(t, s, http.MethodPost, "/days", `{"initial_mileage": 100}`); w.Code != http.StatusConflict {
		t.Errorf("second start: got %d, want 409", w.Code)
	}
}

func TestEntryWithoutActiveDay(t *testing.T) {
	s, _ := newTestServer(t)

	body := `{"platform": "uber", "amount": "8000", "payment_method": "cash"}`
	if w := do(t, s, http.MethodPost, "/incomes", body); w.Code != http.StatusNotFound {
		t.Errorf("income without active day: got %d, want 404", w.Code)
	}
	if w := do(t, s, http.MethodPost, "/days/pause", ""); w.Code != http.StatusNotFound {
		t.Errorf("pause without active day: got %d, want 404", w.Code)
	}
	if w := do(t, s, http.MethodPost, "/days/end", ""); w.Code != http.StatusNotFound {
		t.Errorf("end without active day: got %d, want 404", w.Code)
	}
}

func TestCreateIncomeValidation(t *testing.T) {
	s, _ := newTestServer(t)
	do(t, s, http.MethodPost, "/days", `{"initial_mileage": 100}`)

	tests := []struct {
		name string
		body string
	}{
		{"invalid payment method", `{"platform": "uber", "amount": "8000", "payment_method": "crypto"}`},
		{"zero amount", `{"platform": "uber", "amount": "0", "payment_method": "cash"}`},
		{"negative amount", `{"platform": "uber", "amount": "-5", "payment_method": "cash"}`},
		{"empty platform", `{"platform": "", "amount": "8000", "payment_method": "cash"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := do(t, s, http.MethodPost, "/incomes", tt.body); w.Code != http.StatusUnprocessableEntity {
				t.Errorf("got %d %s, want 422", w.Code, w.Body.String())
			}
		})
	}
}

func TestEndDayMileageCheck(t *testing.T) {
	s, _ := newTestServer(t)
	do(t, s, http.MethodPost, "/days", `{"initial_mileage": 1000}`)

	if w := do(t, s, http.MethodPost, "/days/end", `{"final_mileage": 900}`); w.Code != http.StatusUnprocessableEntity {
		t.Errorf("decreasing mileage: got %d, want 422", w.Code)
	}
}

func TestStatsOverSeededHistory(t *testing.T) {
	s, store := newTestServer(t)

	day := func(id, date string, incomeCents int64) core.Day {
		d, err := core.ParseDate(date)
		if err != nil {
			t.Fatalf("parse date %q: %v", date, err)
		}
		end := core.DayEnd{EndTime: mustClock(t, "18:00")}
		return core.Day{
			Start: core.DayStart{ID: id, Date: d, StartTime: mustClock(t, "08:00")},
			Incomes: []core.Income{{
				ID: id + "-1", DayID: id, Timestamp: mustClock(t, "09:00"),
				Platform: "uber", Amount: core.Money{Cents: incomeCents}, PaymentMethod: core.PaymentCash,
			}},
			End: &end,
		}
	}
	store.Seed([]core.Day{
		day("d1", "2026-03-10", 100000),
		day("d2", "2026-03-12", 200000),
		day("d3", "2026-03-14", 400000),
	})

	w := do(t, s, http.MethodGet, "/stats", "")
	if w.Code != http.StatusOK {
		t.Fatalf("stats: got %d %s", w.Code, w.Body.String())
	}
	all := decodeBody[statsResponse](t, w)
	if all.TotalIncomeCents != 700000 {
		t.Errorf("total income = %d, want 700000", all.TotalIncomeCents)
	}
	if all.ServiceCount != 3 {
		t.Errorf("service count = %d, want 3", all.ServiceCount)
	}
	if all.MostUsedPlatform != "uber" {
		t.Errorf("most used platform = %q, want uber", all.MostUsedPlatform)
	}
	if all.TimeWorkedMinutes != 3*600 {
		t.Errorf("time worked = %d, want 1800", all.TimeWorkedMinutes)
	}
	// Zero-filled payment methods are always present.
	for _, m := range core.KnownPaymentMethods() {
		if _, ok := all.IncomeByPaymentMethod[string(m)]; !ok {
			t.Errorf("payment method %q missing from breakdown", m)
		}
	}

	w = do(t, s, http.MethodGet, "/stats?from=2026-03-11&to=2026-03-13", "")
	ranged := decodeBody[statsResponse](t, w)
	if ranged.TotalIncomeCents != 200000 {
		t.Errorf("ranged income = %d, want 200000", ranged.TotalIncomeCents)
	}
	if ranged.ServiceCount != 1 {
		t.Errorf("ranged service count = %d, want 1", ranged.ServiceCount)
	}

	if w := do(t, s, http.MethodGet, "/stats?from=14-03-2026", ""); w.Code != http.StatusBadRequest {
		t.Errorf("bad from param: got %d, want 400", w.Code)
	}
}

func TestStatsCacheInvalidatedByWrites(t *testing.T) {
	s, _ := newTestServer(t)

	before := decodeBody[statsResponse](t, do(t, s, http.MethodGet, "/stats", ""))
	if before.TotalIncomeCents != 0 {
		t.Fatalf("fresh store income = %d, want 0", before.TotalIncomeCents)
	}

	do(t, s, http.MethodPost, "/days", `{"initial_mileage": 100}`)
	do(t, s, http.MethodPost, "/incomes", `{"platform": "didi", "amount": "5000", "payment_method": "card"}`)

	after := decodeBody[statsResponse](t, do(t, s, http.MethodGet, "/stats", ""))
	if after.TotalIncomeCents != 500000 {
		t.Errorf("income after write = %d, want 500000 (stale cache?)", after.TotalIncomeCents)
	}
	if after.IncomeByPaymentMethod["card"] != 500000 {
		t.Errorf("card income = %d, want 500000", after.IncomeByPaymentMethod["card"])
	}
}

func TestConfigRoundTrip(t *testing.T) {
	s, _ := newTestServer(t)

	w := do(t, s, http.MethodGet, "/config", "")
	if w.Code != http.StatusOK {
		t.Fatalf("get config: got %d %s", w.Code, w.Body.String())
	}
	p := decodeBody[profileJSON](t, w)
	if p.DriverType != string(core.DriverPlatform) {
		t.Errorf("default driver type = %q, want %q", p.DriverType, core.DriverPlatform)
	}
	if p.CurrencyCode != "COP" {
		t.Errorf("default currency = %q, want COP", p.CurrencyCode)
	}
	if len(p.Platforms) == 0 {
		t.Fatal("default profile has no platforms")
	}

	p.DriverType = string(core.DriverTaxi)
	p.Platforms[0].Selected = false
	body, _ := json.Marshal(p)
	if w := do(t, s, http.MethodPut, "/config", string(body)); w.Code != http.StatusOK {
		t.Fatalf("put config: got %d %s", w.Code, w.Body.String())
	}

	got := decodeBody[profileJSON](t, do(t, s, http.MethodGet, "/config", ""))
	if got.DriverType != string(core.DriverTaxi) {
		t.Errorf("driver type after update = %q, want taxi", got.DriverType)
	}
	if got.Platforms[0].Selected {
		t.Error("platform selection change not persisted")
	}

	if w := do(t, s, http.MethodPut, "/config", `{"driver_type": "boat"}`); w.Code != http.StatusUnprocessableEntity {
		t.Errorf("invalid profile: got %d, want 422", w.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	s, _ := newTestServer(t)

	w := do(t, s, http.MethodDelete, "/stats", "")
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("got %d, want 405", w.Code)
	}
	if allow := w.Header().Get("Allow"); allow != "GET" {
		t.Errorf("Allow header = %q, want GET", allow)
	}
}

func TestSuspiciousRequestBlocked(t *testing.T) {
	s, _ := newTestServer(t)

	r := httptest.NewRequest(http.MethodGet, "/days", nil)
	r.Header.Set("User-Agent", "curl/8.4.0")
	w := httptest.NewRecorder()
	s.Handler.ServeHTTP(w, r)
	if w.Code != http.StatusForbidden {
		t.Errorf("scripted client: got %d, want 403", w.Code)
	}
}

func TestSecurityHeadersApplied(t *testing.T) {
	s, _ := newTestServer(t)

	w := do(t, s, http.MethodGet, "/healthz", "")
	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
	if w.Header().Get("Content-Security-Policy") == "" {
		t.Error("missing Content-Security-Policy header")
	}
}

func TestRejectsMalformedJSON(t *testing.T) {
	s, _ := newTestServer(t)

	if w := do(t, s, http.MethodPost, "/days", `{"initial_mileage": `); w.Code != http.StatusBadRequest {
		t.Errorf("truncated body: got %d, want 400", w.Code)
	}
	if w := do(t, s, http.MethodPost, "/days", `{"initial_mileage": 1}{"x":2}`); w.Code != http.StatusBadRequest {
		t.Errorf("trailing data: got %d, want 400", w.Code)
	}
}
