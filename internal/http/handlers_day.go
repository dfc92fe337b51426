package http

import (
	"net/http"

	"rutapro/internal/core"
	"rutapro/internal/stats"
)

type startDayRequest struct {
	Date           string `json:"date"`
	StartTime      string `json:"start_time"`
	InitialMileage int64  `json:"initial_mileage"`
	InitialCash    string `json:"initial_cash"`
	Notes          string `json:"notes"`
}

type endDayRequest struct {
	EndTime      string `json:"end_time"`
	FinalMileage int64  `json:"final_mileage"`
	FinalCash    string `json:"final_cash"`
	Notes        string `json:"notes"`
}

type dayEndResponse struct {
	EndTime        string `json:"end_time"`
	FinalMileage   int64  `json:"final_mileage"`
	FinalCashCents int64  `json:"final_cash_cents"`
	Notes          string `json:"notes,omitempty"`
}

type incomeResponse struct {
	ID              string `json:"id"`
	Timestamp       string `json:"timestamp"`
	Platform        string `json:"platform"`
	AmountCents     int64  `json:"amount_cents"`
	PaymentMethod   string `json:"payment_method"`
	TollIncluded    bool   `json:"toll_included"`
	TollAmountCents int64  `json:"toll_amount_cents,omitempty"`
	Notes           string `json:"notes,omitempty"`
}

type expenseResponse struct {
	ID          string `json:"id"`
	Timestamp   string `json:"timestamp"`
	Category    string `json:"category"`
	AmountCents int64  `json:"amount_cents"`
	Description string `json:"description,omitempty"`
}

type pauseResponse struct {
	Start string  `json:"start"`
	End   *string `json:"end"`
}

type dayTotalsResponse struct {
	IncomeCents   int64 `json:"income_cents"`
	ExpensesCents int64 `json:"expenses_cents"`
	ProfitCents   int64 `json:"profit_cents"`
	Services      int   `json:"services"`
	Minutes       int   `json:"minutes"`
}

type dayResponse struct {
	ID               string            `json:"id"`
	Date             string            `json:"date"`
	StartTime        string            `json:"start_time"`
	InitialMileage   int64             `json:"initial_mileage"`
	InitialCashCents int64             `json:"initial_cash_cents"`
	Notes            string            `json:"notes,omitempty"`
	IsActive         bool              `json:"is_active"`
	End              *dayEndResponse   `json:"end"`
	Incomes          []incomeResponse  `json:"incomes"`
	Expenses         []expenseResponse `json:"expenses"`
	Pauses           []pauseResponse   `json:"pauses"`
	Totals           dayTotalsResponse `json:"totals"`
}

func (s *Server) dayToResponse(d core.Day) dayResponse {
	resp := dayResponse{
		ID:               d.Start.ID,
		Date:             d.Start.Date.String(),
		StartTime:        d.Start.StartTime.String(),
		InitialMileage:   d.Start.InitialMileage,
		InitialCashCents: d.Start.InitialCash.Cents,
		Notes:            d.Start.Notes,
		IsActive:         d.Start.IsActive,
		Incomes:          make([]incomeResponse, 0, len(d.Incomes)),
		Expenses:         make([]expenseResponse, 0, len(d.Expenses)),
		Pauses:           make([]pauseResponse, 0, len(d.Pauses)),
	}
	if d.End != nil {
		resp.End = &dayEndResponse{
			EndTime:        d.End.EndTime.String(),
			FinalMileage:   d.End.FinalMileage,
			FinalCashCents: d.End.FinalCash.Cents,
			Notes:          d.End.Notes,
		}
	}
	for _, in := range d.Incomes {
		resp.Incomes = append(resp.Incomes, incomeResponse{
			ID:              in.ID,
			Timestamp:       in.Timestamp.String(),
			Platform:        in.Platform,
			AmountCents:     in.Amount.Cents,
			PaymentMethod:   string(in.PaymentMethod),
			TollIncluded:    in.TollIncluded,
			TollAmountCents: in.TollAmount.Cents,
			Notes:           in.Notes,
		})
	}
	for _, ex := range d.Expenses {
		resp.Expenses = append(resp.Expenses, expenseResponse{
			ID:          ex.ID,
			Timestamp:   ex.Timestamp.String(),
			Category:    ex.Category,
			AmountCents: ex.Amount.Cents,
			Description: ex.Description,
		})
	}
	for _, p := range d.Pauses {
		pr := pauseResponse{Start: p.Start.String()}
		if p.End != nil {
			end := p.End.String()
			pr.End = &end
		}
		resp.Pauses = append(resp.Pauses, pr)
	}
	totals := stats.DaySummary(d, s.now())
	resp.Totals = dayTotalsResponse{
		IncomeCents:   totals.Income.Cents,
		ExpensesCents: totals.Expenses.Cents,
		ProfitCents:   totals.Profit.Cents,
		Services:      totals.Services,
		Minutes:       totals.Minutes,
	}
	return resp
}

// handleDays serves the day history (GET, optional from/to range) and
// starts a new shift (POST).
func (s *Server) handleDays(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListDays(w, r)
	case http.MethodPost:
		s.handleStartDay(w, r)
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) handleListDays(w http.ResponseWriter, r *http.Request) {
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

	days, err := s.store.ListDays(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	days = stats.FilterByDateRange(days, from, to)

	out := make([]dayResponse, 0, len(days))
	for _, d := range days {
		out = append(out, s.dayToResponse(d))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleStartDay(w http.ResponseWriter, r *http.Request) {
	var req startDayRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	now := s.now()
	date, err := parseDateOrToday(req.Date, now)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	startTime, err := parseClockOrNow(req.StartTime, now)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	cash, err := parseOptionalAmount(req.InitialCash)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	start := core.DayStart{
		ID:             core.NewID(),
		Date:           date,
		StartTime:      startTime,
		InitialMileage: req.InitialMileage,
		InitialCash:    cash,
		Notes:          sanitizeInput(req.Notes),
		IsActive:       true,
	}
	if err := start.Validate(); err != nil {
		writeDomainError(w, r, err)
		return
	}
	if err := s.store.StartDay(r.Context(), start); err != nil {
		writeDomainError(w, r, err)
		return
	}
	s.invalidateStats()

	writeJSON(w, http.StatusCreated, s.dayToResponse(core.Day{Start: start}))
}

func (s *Server) handleActiveDay(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	day, err := s.store.GetActiveDay(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if day == nil {
		writeError(w, http.StatusNotFound, core.ErrNoActiveDay.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.dayToResponse(*day))
}

func (s *Server) handleEndDay(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}
	var req endDayRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	day, err := s.store.GetActiveDay(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if day == nil {
		writeError(w, http.StatusNotFound, core.ErrNoActiveDay.Error())
		return
	}

	endTime, err := parseClockOrNow(req.EndTime, s.now())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	cash, err := parseOptionalAmount(req.FinalCash)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	end := core.DayEnd{
		EndTime:      endTime,
		FinalMileage: req.FinalMileage,
		FinalCash:    cash,
		Notes:        sanitizeInput(req.Notes),
	}
	if err := day.ValidateEnd(end); err != nil {
		writeDomainError(w, r, err)
		return
	}
	if err := s.store.EndDay(r.Context(), day.Start.ID, end); err != nil {
		writeDomainError(w, r, err)
		return
	}
	s.invalidateStats()

	closed, err := s.store.GetActiveDay(r.Context())
	if err == nil && closed != nil {
		// Should not happen; EndDay clears the active flag.
		writeJSON(w, http.StatusOK, s.dayToResponse(*closed))
		return
	}
	day.End = &end
	day.Start.IsActive = false
	writeJSON(w, http.StatusOK, s.dayToResponse(*day))
}

type pauseToggleResponse struct {
	Paused bool   `json:"paused"`
	At     string `json:"at"`
}

// handlePause toggles the break state of the active day. A shift with an
// open pause gets the pause closed; otherwise a new pause starts.
func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}
	var req struct {
		At string `json:"at"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	day, err := s.store.GetActiveDay(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if day == nil {
		writeError(w, http.StatusNotFound, core.ErrNoActiveDay.Error())
		return
	}

	at, err := parseClockOrNow(req.At, s.now())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	_, open := day.OpenPause()
	if open {
		err = s.store.EndPause(r.Context(), day.Start.ID, at)
	} else {
		err = s.store.StartPause(r.Context(), day.Start.ID, at)
	}
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, pauseToggleResponse{Paused: !open, At: at.String()})
}
