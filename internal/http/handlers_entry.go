package http

import (
	"net/http"

	"rutapro/internal/core"
	"rutapro/internal/log"
)

type createIncomeRequest struct {
	Timestamp     string `json:"timestamp"`
	Platform      string `json:"platform"`
	Amount        string `json:"amount"`
	PaymentMethod string `json:"payment_method"`
	TollIncluded  bool   `json:"toll_included"`
	TollAmount    string `json:"toll_amount"`
	Notes         string `json:"notes"`
}

type createExpenseRequest struct {
	Timestamp   string `json:"timestamp"`
	Category    string `json:"category"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
}

type entryCreatedResponse struct {
	ID  string `json:"id"`
	Ref string `json:"ref,omitempty"`
}

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}
	var req createIncomeRequest
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

	ts, err := parseClockOrNow(req.Timestamp, s.now())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	toll := core.Money{}
	if req.TollIncluded {
		toll, err = parseOptionalAmount(req.TollAmount)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
	}

	in := core.Income{
		ID:            core.NewID(),
		DayID:         day.Start.ID,
		Timestamp:     ts,
		Platform:      sanitizeInput(req.Platform),
		Amount:        amount,
		PaymentMethod: core.PaymentMethod(sanitizeInput(req.PaymentMethod)),
		TollIncluded:  req.TollIncluded,
		TollAmount:    toll,
		Notes:         sanitizeInput(req.Notes),
	}
	if err := in.Validate(); err != nil {
		writeDomainError(w, r, err)
		return
	}

	ref, err := s.store.AppendIncome(r.Context(), in)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	s.invalidateStats()

	sl := log.NewStructuredLogger(log.FromContext(r.Context()))
	sl.LogIncomeRecorded(r.Context(), in.Platform, in.Amount.Cents, string(in.PaymentMethod))

	writeJSON(w, http.StatusCreated, entryCreatedResponse{ID: in.ID, Ref: ref})
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}
	var req createExpenseRequest
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

	ts, err := parseClockOrNow(req.Timestamp, s.now())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	ex := core.Expense{
		ID:          core.NewID(),
		DayID:       day.Start.ID,
		Timestamp:   ts,
		Category:    sanitizeInput(req.Category),
		Amount:      amount,
		Description: sanitizeInput(req.Description),
	}
	if err := ex.Validate(); err != nil {
		writeDomainError(w, r, err)
		return
	}

	ref, err := s.store.AppendExpense(r.Context(), ex)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	s.invalidateStats()

	sl := log.NewStructuredLogger(log.FromContext(r.Context()))
	sl.LogExpenseRecorded(r.Context(), ex.Category, ex.Amount.Cents)

	writeJSON(w, http.StatusCreated, entryCreatedResponse{ID: ex.ID, Ref: ref})
}
