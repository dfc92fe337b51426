package journal

import (
	"context"

	"rutapro/internal/core"
	"rutapro/internal/stats"
)

// Ports for outbound adapters. The HTTP layer and the export worker
// depend on these, never on a concrete store.
type (
	// DayLister returns the full day history, oldest first.
	DayLister interface {
		ListDays(ctx context.Context) ([]core.Day, error)
	}

	// ActiveDayReader returns the ongoing shift, or nil when none is active.
	ActiveDayReader interface {
		GetActiveDay(ctx context.Context) (*core.Day, error)
	}

	// DayWriter owns the shift lifecycle. StartDay fails when a day is
	// already active; EndDay closes the active day and any open pause.
	DayWriter interface {
		StartDay(ctx context.Context, start core.DayStart) error
		EndDay(ctx context.Context, dayID string, end core.DayEnd) error
	}

	// EntryWriter appends entries to the active day.
	EntryWriter interface {
		AppendIncome(ctx context.Context, in core.Income) (ref string, err error)
		AppendExpense(ctx context.Context, ex core.Expense) (ref string, err error)
	}

	// PauseWriter records break intervals on the active day.
	PauseWriter interface {
		StartPause(ctx context.Context, dayID string, at core.ClockTime) error
		EndPause(ctx context.Context, dayID string, at core.ClockTime) error
	}

	// ProfileStore persists the driver configuration.
	ProfileStore interface {
		Profile(ctx context.Context) (core.Profile, error)
		SaveProfile(ctx context.Context, p core.Profile) error
	}

	// DayAppender writes one finalized day, with its derived totals, to
	// the external journal (a spreadsheet row).
	DayAppender interface {
		AppendDay(ctx context.Context, day core.Day, totals stats.DayTotals) (rowRef string, err error)
	}
)
