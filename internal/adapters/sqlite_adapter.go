package adapters

import (
	"context"

	"rutapro/internal/core"
	"rutapro/internal/services"
	"rutapro/internal/storage"
)

// SQLiteAdapter adapts SQLiteRepository and ShiftService to the journal
// store ports. Reads go straight to storage; lifecycle writes go through
// the service so a closed day gets its export message published.
type SQLiteAdapter struct {
	storage *storage.SQLiteRepository
	service *services.ShiftService
}

func NewSQLiteAdapter(storage *storage.SQLiteRepository, service *services.ShiftService) *SQLiteAdapter {
	return &SQLiteAdapter{
		storage: storage,
		service: service,
	}
}

// ListDays implements journal.DayLister
func (a *SQLiteAdapter) ListDays(ctx context.Context) ([]core.Day, error) {
	return a.storage.ListDays(ctx)
}

// GetActiveDay implements journal.ActiveDayReader
func (a *SQLiteAdapter) GetActiveDay(ctx context.Context) (*core.Day, error) {
	return a.storage.GetActiveDay(ctx)
}

// StartDay implements journal.DayWriter
func (a *SQLiteAdapter) StartDay(ctx context.Context, start core.DayStart) error {
	return a.service.StartDay(ctx, start)
}

// EndDay implements journal.DayWriter
func (a *SQLiteAdapter) EndDay(ctx context.Context, dayID string, end core.DayEnd) error {
	return a.service.EndDay(ctx, dayID, end)
}

// AppendIncome implements journal.EntryWriter
func (a *SQLiteAdapter) AppendIncome(ctx context.Context, in core.Income) (string, error) {
	return a.service.AddIncome(ctx, in)
}

// AppendExpense implements journal.EntryWriter
func (a *SQLiteAdapter) AppendExpense(ctx context.Context, ex core.Expense) (string, error) {
	return a.service.AddExpense(ctx, ex)
}

// StartPause implements journal.PauseWriter
func (a *SQLiteAdapter) StartPause(ctx context.Context, dayID string, at core.ClockTime) error {
	return a.storage.StartPause(ctx, dayID, at)
}

// EndPause implements journal.PauseWriter
func (a *SQLiteAdapter) EndPause(ctx context.Context, dayID string, at core.ClockTime) error {
	return a.storage.EndPause(ctx, dayID, at)
}

// Profile implements journal.ProfileStore
func (a *SQLiteAdapter) Profile(ctx context.Context) (core.Profile, error) {
	return a.storage.Profile(ctx)
}

// SaveProfile implements journal.ProfileStore
func (a *SQLiteAdapter) SaveProfile(ctx context.Context, p core.Profile) error {
	return a.storage.SaveProfile(ctx, p)
}
