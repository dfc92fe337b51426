package http

import (
	"net/http"

	"rutapro/internal/core"
	"rutapro/internal/stats"
)

type statsResponse struct {
	TotalIncomeCents         int64            `json:"total_income_cents"`
	TotalExpensesCents       int64            `json:"total_expenses_cents"`
	NetProfitCents           int64            `json:"net_profit_cents"`
	ServiceCount             int              `json:"service_count"`
	AverageServiceValueCents int64            `json:"average_service_value_cents"`
	IncomeByPlatform         map[string]int   `json:"income_by_platform"`
	IncomeByPaymentMethod    map[string]int64 `json:"income_by_payment_method"`
	ExpensesByCategory       map[string]int64 `json:"expenses_by_category"`
	MostUsedPlatform         string           `json:"most_used_platform"`
	TimeWorkedMinutes        int              `json:"time_worked_minutes"`
}

func summaryToResponse(sum stats.Summary) statsResponse {
	resp := statsResponse{
		TotalIncomeCents:         sum.TotalIncome.Cents,
		TotalExpensesCents:       sum.TotalExpenses.Cents,
		NetProfitCents:           sum.NetProfit.Cents,
		ServiceCount:             sum.ServiceCount,
		AverageServiceValueCents: sum.AverageServiceValue.Cents,
		IncomeByPlatform:         sum.IncomeByPlatform,
		IncomeByPaymentMethod:    make(map[string]int64, len(sum.IncomeByPaymentMethod)),
		ExpensesByCategory:       make(map[string]int64, len(sum.ExpensesByCategory)),
		MostUsedPlatform:         sum.MostUsedPlatform,
		TimeWorkedMinutes:        sum.TimeWorkedMinutes,
	}
	for m, v := range sum.IncomeByPaymentMethod {
		resp.IncomeByPaymentMethod[string(m)] = v.Cents
	}
	for c, v := range sum.ExpensesByCategory {
		resp.ExpensesByCategory[c] = v.Cents
	}
	return resp
}

// handleStats serves aggregate statistics over an optional date range.
// Summaries are cached per range for a short TTL; any write clears the
// cache, so responses never go stale past a write.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	from, err := parseDateParam(r.URL.Query(), "from")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	to, err := parseDateParam(r.URL.Query(), "to")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	key := statsCacheKey(from, to)
	if sum, ok := s.statsCache.Get(key); ok {
		writeJSON(w, http.StatusOK, summaryToResponse(sum))
		return
	}

	days, err := s.store.ListDays(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	sum := stats.Compute(stats.FilterByDateRange(days, from, to), s.now())
	s.statsCache.Set(key, sum)

	writeJSON(w, http.StatusOK, summaryToResponse(sum))
}

func statsCacheKey(from, to core.Date) string {
	var f, t string
	if !from.IsZero() {
		f = from.String()
	}
	if !to.IsZero() {
		t = to.String()
	}
	return f + "|" + t
}
