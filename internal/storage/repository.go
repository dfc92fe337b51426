package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"rutapro/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository is the persistent Record Store. It exclusively owns
// the day collection: callers read snapshots and write through it, and
// the single-active-day rule is enforced here (schema index plus checks).
type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ListDays implements journal.DayLister.
func (r *SQLiteRepository) ListDays(ctx context.Context) ([]core.Day, error) {
	rows, err := r.queries.ListDays(ctx)
	if err != nil {
		return nil, fmt.Errorf("list days: %w", err)
	}
	days := make([]core.Day, 0, len(rows))
	for _, row := range rows {
		day, err := r.assembleDay(ctx, row)
		if err != nil {
			return nil, err
		}
		days = append(days, day)
	}
	return days, nil
}

// GetActiveDay implements journal.ActiveDayReader. Returns nil, nil when
// no shift is ongoing.
func (r *SQLiteRepository) GetActiveDay(ctx context.Context) (*core.Day, error) {
	row, err := r.queries.GetActiveDay(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get active day: %w", err)
	}
	day, err := r.assembleDay(ctx, row)
	if err != nil {
		return nil, err
	}
	return &day, nil
}

// GetDay loads one day with all its entries.
func (r *SQLiteRepository) GetDay(ctx context.Context, id string) (core.Day, error) {
	row, err := r.queries.GetDay(ctx, id)
	if err != nil {
		return core.Day{}, fmt.Errorf("get day %s: %w", id, err)
	}
	return r.assembleDay(ctx, row)
}

// StartDay implements journal.DayWriter.
func (r *SQLiteRepository) StartDay(ctx context.Context, start core.DayStart) error {
	if err := start.Validate(); err != nil {
		return err
	}
	active, err := r.queries.GetActiveDay(ctx)
	if err == nil && active.ID != "" {
		return core.ErrDayAlreadyActive
	}
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("check active day: %w", err)
	}

	err = r.queries.InsertDay(ctx, DayRow{
		ID:               start.ID,
		Date:             start.Date.String(),
		StartTime:        start.StartTime.String(),
		InitialMileage:   start.InitialMileage,
		InitialCashCents: start.InitialCash.Cents,
		StartNotes:       start.Notes,
		IsActive:         true,
	})
	if err != nil {
		// The partial unique index backstops a racing second start.
		if strings.Contains(err.Error(), "UNIQUE") {
			return core.ErrDayAlreadyActive
		}
		return fmt.Errorf("insert day: %w", err)
	}

	slog.InfoContext(ctx, "Day started",
		"day_id", start.ID,
		"date", start.Date.String(),
		"start_time", start.StartTime.String())
	return nil
}

// EndDay implements journal.DayWriter. Closes the day, closes any open
// pause at the end time, and marks the record pending export.
func (r *SQLiteRepository) EndDay(ctx context.Context, dayID string, end core.DayEnd) error {
	day, err := r.GetDay(ctx, dayID)
	if err != nil {
		return err
	}
	if err := day.ValidateEnd(end); err != nil {
		return err
	}

	closed, err := r.queries.CloseOpenPause(ctx, dayID, end.EndTime.String())
	if err != nil {
		return fmt.Errorf("close open pause: %w", err)
	}
	if err := r.queries.CloseDay(ctx, dayID, end.EndTime.String(),
		end.FinalMileage, end.FinalCash.Cents, end.Notes); err != nil {
		return fmt.Errorf("close day: %w", err)
	}

	slog.InfoContext(ctx, "Day ended",
		"day_id", dayID,
		"end_time", end.EndTime.String(),
		"final_mileage", end.FinalMileage,
		"pauses_closed", closed)
	return nil
}

// AppendIncome implements journal.EntryWriter.
func (r *SQLiteRepository) AppendIncome(ctx context.Context, in core.Income) (string, error) {
	if err := in.Validate(); err != nil {
		return "", err
	}
	day, err := r.GetDay(ctx, in.DayID)
	if err != nil {
		return "", err
	}
	if day.IsClosed() {
		return "", core.ErrDayClosed
	}

	err = r.queries.InsertIncome(ctx, IncomeRow{
		ID:              in.ID,
		DayID:           in.DayID,
		TS:              in.Timestamp.String(),
		Platform:        in.Platform,
		AmountCents:     in.Amount.Cents,
		PaymentMethod:   string(in.PaymentMethod),
		TollIncluded:    in.TollIncluded,
		TollAmountCents: in.TollAmount.Cents,
		Notes:           in.Notes,
	})
	if err != nil {
		return "", fmt.Errorf("insert income: %w", err)
	}

	slog.InfoContext(ctx, "Income saved",
		"income_id", in.ID,
		"day_id", in.DayID,
		"platform", in.Platform,
		"amount_cents", in.Amount.Cents,
		"payment_method", string(in.PaymentMethod))
	return in.ID, nil
}

// AppendExpense implements journal.EntryWriter.
func (r *SQLiteRepository) AppendExpense(ctx context.Context, ex core.Expense) (string, error) {
	if err := ex.Validate(); err != nil {
		return "", err
	}
	day, err := r.GetDay(ctx, ex.DayID)
	if err != nil {
		return "", err
	}
	if day.IsClosed() {
		return "", core.ErrDayClosed
	}

	err = r.queries.InsertExpense(ctx, ExpenseRow{
		ID:          ex.ID,
		DayID:       ex.DayID,
		TS:          ex.Timestamp.String(),
		Category:    ex.Category,
		AmountCents: ex.Amount.Cents,
		Description: ex.Description,
	})
	if err != nil {
		return "", fmt.Errorf("insert expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved",
		"expense_id", ex.ID,
		"day_id", ex.DayID,
		"category", ex.Category,
		"amount_cents", ex.Amount.Cents)
	return ex.ID, nil
}

// StartPause implements journal.PauseWriter.
func (r *SQLiteRepository) StartPause(ctx context.Context, dayID string, at core.ClockTime) error {
	day, err := r.GetDay(ctx, dayID)
	if err != nil {
		return err
	}
	if day.IsClosed() {
		return core.ErrDayClosed
	}
	open, err := r.queries.HasOpenPause(ctx, dayID)
	if err != nil {
		return fmt.Errorf("check open pause: %w", err)
	}
	if open {
		return core.ErrAlreadyPaused
	}
	if err := r.queries.InsertPause(ctx, dayID, at.String()); err != nil {
		return fmt.Errorf("insert pause: %w", err)
	}
	slog.InfoContext(ctx, "Pause started", "day_id", dayID, "at", at.String())
	return nil
}

// EndPause implements journal.PauseWriter.
func (r *SQLiteRepository) EndPause(ctx context.Context, dayID string, at core.ClockTime) error {
	closed, err := r.queries.CloseOpenPause(ctx, dayID, at.String())
	if err != nil {
		return fmt.Errorf("close pause: %w", err)
	}
	if closed == 0 {
		return core.ErrNotPaused
	}
	slog.InfoContext(ctx, "Pause ended", "day_id", dayID, "at", at.String())
	return nil
}

// Profile implements journal.ProfileStore.
func (r *SQLiteRepository) Profile(ctx context.Context) (core.Profile, error) {
	driverType, currency, err := r.queries.GetProfile(ctx)
	if err != nil {
		return core.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	platforms, err := r.queries.ListPlatforms(ctx)
	if err != nil {
		return core.Profile{}, fmt.Errorf("list platforms: %w", err)
	}
	categories, err := r.queries.ListCategories(ctx)
	if err != nil {
		return core.Profile{}, fmt.Errorf("list categories: %w", err)
	}

	p := core.Profile{
		DriverType:   core.DriverType(driverType),
		CurrencyCode: currency,
	}
	for _, pl := range platforms {
		p.Platforms = append(p.Platforms, core.PlatformOption{
			ID: pl.ID, Name: pl.Name, Color: pl.Color, Selected: pl.Selected,
		})
	}
	for _, c := range categories {
		p.Categories = append(p.Categories, core.ExpenseCategory{
			ID: c.ID, Name: c.Name, Color: c.Color,
		})
	}
	return p, nil
}

// SaveProfile implements journal.ProfileStore.
func (r *SQLiteRepository) SaveProfile(ctx context.Context, p core.Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if err := r.queries.SaveProfile(ctx, string(p.DriverType), p.CurrencyCode); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	platforms := make([]PlatformRow, len(p.Platforms))
	for i, pl := range p.Platforms {
		platforms[i] = PlatformRow{ID: pl.ID, Name: pl.Name, Color: pl.Color, Selected: pl.Selected}
	}
	if err := r.queries.ReplacePlatforms(ctx, platforms); err != nil {
		return fmt.Errorf("replace platforms: %w", err)
	}
	categories := make([]CategoryRow, len(p.Categories))
	for i, c := range p.Categories {
		categories[i] = CategoryRow{ID: c.ID, Name: c.Name, Color: c.Color}
	}
	if err := r.queries.ReplaceCategories(ctx, categories); err != nil {
		return fmt.Errorf("replace categories: %w", err)
	}
	slog.InfoContext(ctx, "Profile saved",
		"driver_type", string(p.DriverType),
		"platforms", len(p.Platforms),
		"categories", len(p.Categories))
	return nil
}

// PendingExportDays returns closed days waiting for journal export.
func (r *SQLiteRepository) PendingExportDays(ctx context.Context, limit int) ([]core.Day, error) {
	ids, err := r.queries.ListPendingExportDays(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("list pending export days: %w", err)
	}
	days := make([]core.Day, 0, len(ids))
	for _, id := range ids {
		day, err := r.GetDay(ctx, id)
		if err != nil {
			return nil, err
		}
		days = append(days, day)
	}
	return days, nil
}

// MarkExported marks a day as written to the external journal.
func (r *SQLiteRepository) MarkExported(ctx context.Context, dayID string) error {
	if err := r.queries.SetExportState(ctx, dayID, "exported"); err != nil {
		return fmt.Errorf("mark exported: %w", err)
	}
	slog.InfoContext(ctx, "Day marked as exported", "day_id", dayID)
	return nil
}

// MarkExportError marks a day so the reconcile loop retries it later.
func (r *SQLiteRepository) MarkExportError(ctx context.Context, dayID string) error {
	if err := r.queries.SetExportState(ctx, dayID, "error"); err != nil {
		return fmt.Errorf("mark export error: %w", err)
	}
	slog.WarnContext(ctx, "Day marked with export error", "day_id", dayID)
	return nil
}

func (r *SQLiteRepository) assembleDay(ctx context.Context, row DayRow) (core.Day, error) {
	day, err := dayFromRow(row)
	if err != nil {
		return core.Day{}, err
	}

	incomeRows, err := r.queries.ListIncomesByDay(ctx, row.ID)
	if err != nil {
		return core.Day{}, fmt.Errorf("list incomes for day %s: %w", row.ID, err)
	}
	for _, in := range incomeRows {
		ts, err := core.ParseClockTime(in.TS)
		if err != nil {
			return core.Day{}, fmt.Errorf("income %s: %w", in.ID, err)
		}
		day.Incomes = append(day.Incomes, core.Income{
			ID:            in.ID,
			DayID:         in.DayID,
			Timestamp:     ts,
			Platform:      in.Platform,
			Amount:        core.Money{Cents: in.AmountCents},
			PaymentMethod: core.PaymentMethod(in.PaymentMethod),
			TollIncluded:  in.TollIncluded,
			TollAmount:    core.Money{Cents: in.TollAmountCents},
			Notes:         in.Notes,
		})
	}

	expenseRows, err := r.queries.ListExpensesByDay(ctx, row.ID)
	if err != nil {
		return core.Day{}, fmt.Errorf("list expenses for day %s: %w", row.ID, err)
	}
	for _, ex := range expenseRows {
		ts, err := core.ParseClockTime(ex.TS)
		if err != nil {
			return core.Day{}, fmt.Errorf("expense %s: %w", ex.ID, err)
		}
		day.Expenses = append(day.Expenses, core.Expense{
			ID:          ex.ID,
			DayID:       ex.DayID,
			Timestamp:   ts,
			Category:    ex.Category,
			Amount:      core.Money{Cents: ex.AmountCents},
			Description: ex.Description,
		})
	}

	pauseRows, err := r.queries.ListPausesByDay(ctx, row.ID)
	if err != nil {
		return core.Day{}, fmt.Errorf("list pauses for day %s: %w", row.ID, err)
	}
	for _, p := range pauseRows {
		start, err := core.ParseClockTime(p.StartTime)
		if err != nil {
			return core.Day{}, fmt.Errorf("pause %d: %w", p.ID, err)
		}
		pause := core.Pause{Start: start}
		if p.EndTime.Valid {
			end, err := core.ParseClockTime(p.EndTime.String)
			if err != nil {
				return core.Day{}, fmt.Errorf("pause %d: %w", p.ID, err)
			}
			pause.End = &end
		}
		day.Pauses = append(day.Pauses, pause)
	}

	return day, nil
}

func dayFromRow(row DayRow) (core.Day, error) {
	date, err := core.ParseDate(row.Date)
	if err != nil {
		return core.Day{}, fmt.Errorf("day %s: %w", row.ID, err)
	}
	startTime, err := core.ParseClockTime(row.StartTime)
	if err != nil {
		return core.Day{}, fmt.Errorf("day %s: %w", row.ID, err)
	}

	day := core.Day{
		Start: core.DayStart{
			ID:             row.ID,
			Date:           date,
			StartTime:      startTime,
			InitialMileage: row.InitialMileage,
			InitialCash:    core.Money{Cents: row.InitialCashCents},
			Notes:          row.StartNotes,
			IsActive:       row.IsActive,
		},
	}

	if row.EndTime.Valid {
		endTime, err := core.ParseClockTime(row.EndTime.String)
		if err != nil {
			return core.Day{}, fmt.Errorf("day %s: %w", row.ID, err)
		}
		day.End = &core.DayEnd{
			EndTime:      endTime,
			FinalMileage: row.FinalMileage.Int64,
			FinalCash:    core.Money{Cents: row.FinalCashCents.Int64},
			Notes:        row.EndNotes.String,
		}
	}

	return day, nil
}
