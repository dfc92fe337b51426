package storage

import (
	"context"
	"database/sql"
	"time"
)

// Queries is the row-level query layer over the SQLite schema. The
// repository translates between these rows and core domain values.
type Queries struct {
	db *sql.DB
}

func New(db *sql.DB) *Queries {
	return &Queries{db: db}
}

type DayRow struct {
	ID               string
	Date             string
	StartTime        string
	InitialMileage   int64
	InitialCashCents int64
	StartNotes       string
	IsActive         bool
	EndTime          sql.NullString
	FinalMileage     sql.NullInt64
	FinalCashCents   sql.NullInt64
	EndNotes         sql.NullString
	ExportState      string
	CreatedAt        time.Time
}

type IncomeRow struct {
	ID              string
	DayID           string
	TS              string
	Platform        string
	AmountCents     int64
	PaymentMethod   string
	TollIncluded    bool
	TollAmountCents int64
	Notes           string
}

type ExpenseRow struct {
	ID          string
	DayID       string
	TS          string
	Category    string
	AmountCents int64
	Description string
}

type PauseRow struct {
	ID        int64
	DayID     string
	StartTime string
	EndTime   sql.NullString
}

const dayColumns = `id, date, start_time, initial_mileage, initial_cash_cents, start_notes,
	is_active, end_time, final_mileage, final_cash_cents, end_notes, export_state, created_at`

func scanDay(row interface{ Scan(...any) error }) (DayRow, error) {
	var d DayRow
	err := row.Scan(&d.ID, &d.Date, &d.StartTime, &d.InitialMileage, &d.InitialCashCents,
		&d.StartNotes, &d.IsActive, &d.EndTime, &d.FinalMileage, &d.FinalCashCents,
		&d.EndNotes, &d.ExportState, &d.CreatedAt)
	return d, err
}

func (q *Queries) InsertDay(ctx context.Context, d DayRow) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO days (id, date, start_time, initial_mileage, initial_cash_cents, start_notes, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Date, d.StartTime, d.InitialMileage, d.InitialCashCents, d.StartNotes, d.IsActive)
	return err
}

func (q *Queries) GetDay(ctx context.Context, id string) (DayRow, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+dayColumns+` FROM days WHERE id = ?`, id)
	return scanDay(row)
}

func (q *Queries) GetActiveDay(ctx context.Context) (DayRow, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+dayColumns+` FROM days WHERE is_active = 1`)
	return scanDay(row)
}

func (q *Queries) ListDays(ctx context.Context) ([]DayRow, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+dayColumns+` FROM days ORDER BY date, created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []DayRow
	for rows.Next() {
		d, err := scanDay(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (q *Queries) CloseDay(ctx context.Context, id, endTime string, finalMileage, finalCashCents int64, endNotes string) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE days
		SET is_active = 0, end_time = ?, final_mileage = ?, final_cash_cents = ?, end_notes = ?,
		    export_state = 'pending', updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		endTime, finalMileage, finalCashCents, endNotes, id)
	return err
}

func (q *Queries) InsertIncome(ctx context.Context, in IncomeRow) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO incomes (id, day_id, ts, platform, amount_cents, payment_method, toll_included, toll_amount_cents, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.ID, in.DayID, in.TS, in.Platform, in.AmountCents, in.PaymentMethod,
		in.TollIncluded, in.TollAmountCents, in.Notes)
	return err
}

func (q *Queries) ListIncomesByDay(ctx context.Context, dayID string) ([]IncomeRow, error) {
	// rowid order preserves insertion order, which is the entry contract.
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, day_id, ts, platform, amount_cents, payment_method, toll_included, toll_amount_cents, notes
		FROM incomes WHERE day_id = ? ORDER BY rowid`, dayID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []IncomeRow
	for rows.Next() {
		var in IncomeRow
		if err := rows.Scan(&in.ID, &in.DayID, &in.TS, &in.Platform, &in.AmountCents,
			&in.PaymentMethod, &in.TollIncluded, &in.TollAmountCents, &in.Notes); err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

func (q *Queries) InsertExpense(ctx context.Context, ex ExpenseRow) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO expenses (id, day_id, ts, category, amount_cents, description)
		VALUES (?, ?, ?, ?, ?, ?)`,
		ex.ID, ex.DayID, ex.TS, ex.Category, ex.AmountCents, ex.Description)
	return err
}

func (q *Queries) ListExpensesByDay(ctx context.Context, dayID string) ([]ExpenseRow, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, day_id, ts, category, amount_cents, description
		FROM expenses WHERE day_id = ? ORDER BY rowid`, dayID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ExpenseRow
	for rows.Next() {
		var ex ExpenseRow
		if err := rows.Scan(&ex.ID, &ex.DayID, &ex.TS, &ex.Category, &ex.AmountCents, &ex.Description); err != nil {
			return nil, err
		}
		out = append(out, ex)
	}
	return out, rows.Err()
}

func (q *Queries) InsertPause(ctx context.Context, dayID, startTime string) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO pauses (day_id, start_time) VALUES (?, ?)`, dayID, startTime)
	return err
}

func (q *Queries) HasOpenPause(ctx context.Context, dayID string) (bool, error) {
	var n int
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM pauses WHERE day_id = ? AND end_time IS NULL`, dayID).Scan(&n)
	return n > 0, err
}

func (q *Queries) CloseOpenPause(ctx context.Context, dayID, endTime string) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`UPDATE pauses SET end_time = ? WHERE day_id = ? AND end_time IS NULL`, endTime, dayID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *Queries) ListPausesByDay(ctx context.Context, dayID string) ([]PauseRow, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, day_id, start_time, end_time
		FROM pauses WHERE day_id = ? ORDER BY id`, dayID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []PauseRow
	for rows.Next() {
		var p PauseRow
		if err := rows.Scan(&p.ID, &p.DayID, &p.StartTime, &p.EndTime); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (q *Queries) ListPendingExportDays(ctx context.Context, limit int64) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id FROM days
		WHERE export_state IN ('pending', 'error') AND is_active = 0
		ORDER BY date LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (q *Queries) SetExportState(ctx context.Context, id, state string) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE days SET export_state = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, state, id)
	return err
}

func (q *Queries) GetProfile(ctx context.Context) (driverType, currencyCode string, err error) {
	err = q.db.QueryRowContext(ctx,
		`SELECT driver_type, currency_code FROM profile WHERE id = 1`).Scan(&driverType, &currencyCode)
	return driverType, currencyCode, err
}

func (q *Queries) SaveProfile(ctx context.Context, driverType, currencyCode string) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE profile SET driver_type = ?, currency_code = ? WHERE id = 1`, driverType, currencyCode)
	return err
}

type PlatformRow struct {
	ID       string
	Name     string
	Color    string
	Selected bool
}

type CategoryRow struct {
	ID    string
	Name  string
	Color string
}

func (q *Queries) ListPlatforms(ctx context.Context) ([]PlatformRow, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, name, color, selected FROM platforms ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []PlatformRow
	for rows.Next() {
		var p PlatformRow
		if err := rows.Scan(&p.ID, &p.Name, &p.Color, &p.Selected); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (q *Queries) ListCategories(ctx context.Context) ([]CategoryRow, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, name, color FROM categories ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []CategoryRow
	for rows.Next() {
		var c CategoryRow
		if err := rows.Scan(&c.ID, &c.Name, &c.Color); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (q *Queries) ReplacePlatforms(ctx context.Context, platforms []PlatformRow) error {
	tx, err := q.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM platforms`); err != nil {
		return err
	}
	for i, p := range platforms {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO platforms (id, name, color, selected, position) VALUES (?, ?, ?, ?, ?)`,
			p.ID, p.Name, p.Color, p.Selected, i); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (q *Queries) ReplaceCategories(ctx context.Context, categories []CategoryRow) error {
	tx, err := q.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM categories`); err != nil {
		return err
	}
	for i, c := range categories {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO categories (id, name, color, position) VALUES (?, ?, ?, ?)`,
			c.ID, c.Name, c.Color, i); err != nil {
			return err
		}
	}
	return tx.Commit()
}
