package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"rutapro/internal/amqp"
	"rutapro/internal/core"
	"rutapro/internal/journal"
	"rutapro/internal/stats"
	"rutapro/internal/storage"
)

// ExportWorker writes closed days from SQLite to the external journal.
// AMQP messages drive the normal path; ProcessPendingDays is the backup
// for lost messages and worker downtime.
type ExportWorker struct {
	storage   *storage.SQLiteRepository
	journal   journal.DayAppender
	batchSize int
}

func NewExportWorker(storage *storage.SQLiteRepository, journal journal.DayAppender, batchSize int) *ExportWorker {
	return &ExportWorker{
		storage:   storage,
		journal:   journal,
		batchSize: batchSize,
	}
}

// HandleExportMessage processes a single day export message from AMQP
func (w *ExportWorker) HandleExportMessage(ctx context.Context, msg *amqp.DayExportMessage) error {
	slog.InfoContext(ctx, "Processing export message", "day_id", msg.DayID)

	day, err := w.storage.GetDay(ctx, msg.DayID)
	if err != nil {
		return fmt.Errorf("get day from storage: %w", err)
	}

	return w.exportDay(ctx, day)
}

// ProcessPendingDays exports any closed days that were not exported yet.
func (w *ExportWorker) ProcessPendingDays(ctx context.Context) error {
	pending, err := w.storage.PendingExportDays(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending export days: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending export days", "count", len(pending))

	for _, day := range pending {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.exportDay(ctx, day); err != nil {
			slog.ErrorContext(ctx, "Failed to export day",
				"day_id", day.Start.ID, "error", err)
			continue
		}
	}

	return nil
}

// StartupExportCheck drains the pending backlog at worker startup with a
// larger batch, recovering from missed messages or downtime.
func (w *ExportWorker) StartupExportCheck(ctx context.Context) error {
	pending, err := w.storage.PendingExportDays(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending days for startup check: %w", err)
	}

	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending export days found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending export days on startup, processing...",
		"count", len(pending))

	successCount := 0
	errorCount := 0

	for _, day := range pending {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.exportDay(ctx, day); err != nil {
			slog.ErrorContext(ctx, "Failed to export day during startup",
				"day_id", day.Start.ID, "error", err)
			errorCount++
			continue
		}
		successCount++
	}

	slog.InfoContext(ctx, "Startup export completed",
		"total", len(pending),
		"exported", successCount,
		"errors", errorCount)

	return nil
}

func (w *ExportWorker) exportDay(ctx context.Context, day core.Day) error {
	if day.End == nil {
		return fmt.Errorf("day %s is still active", day.Start.ID)
	}

	totals := stats.DaySummary(day, time.Now())

	ref, err := w.journal.AppendDay(ctx, day, totals)
	if err != nil {
		if markErr := w.storage.MarkExportError(ctx, day.Start.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark export error",
				"day_id", day.Start.ID, "error", markErr)
		}
		return fmt.Errorf("append to journal: %w", err)
	}

	if err := w.storage.MarkExported(ctx, day.Start.ID); err != nil {
		slog.ErrorContext(ctx, "Failed to mark as exported",
			"day_id", day.Start.ID, "error", err)
		// The export itself worked, the reconcile loop may retry and
		// duplicate one row, which the sheet owner can spot.
	}

	slog.InfoContext(ctx, "Exported day",
		"day_id", day.Start.ID,
		"date", day.Start.Date.String(),
		"sheets_ref", ref,
		"profit_cents", totals.Profit.Cents)

	return nil
}
