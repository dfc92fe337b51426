package services

import (
	"context"
	"fmt"
	"log/slog"

	"rutapro/internal/amqp"
	"rutapro/internal/core"
	"rutapro/internal/storage"
)

// ShiftService orchestrates the day lifecycle across SQLite and AMQP.
// Writes go to SQLite first; the export message for a closed day is
// best-effort, the reconcile loop picks up anything that was missed.
type ShiftService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
}

func NewShiftService(storage *storage.SQLiteRepository, amqpClient *amqp.Client) *ShiftService {
	return &ShiftService{
		storage:    storage,
		amqpClient: amqpClient,
	}
}

// StartDay opens a new shift. Fails with core.ErrDayAlreadyActive when
// one is already open.
func (s *ShiftService) StartDay(ctx context.Context, start core.DayStart) error {
	if start.ID == "" {
		start.ID = core.NewID()
	}
	start.IsActive = true
	return s.storage.StartDay(ctx, start)
}

// EndDay closes the shift and queues it for journal export.
func (s *ShiftService) EndDay(ctx context.Context, dayID string, end core.DayEnd) error {
	if err := s.storage.EndDay(ctx, dayID, end); err != nil {
		return err
	}

	if err := s.publishExportMessage(ctx, dayID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish export message",
			"day_id", dayID, "error", err)
		// Don't fail the request, the day is closed locally and stays
		// pending for the reconcile loop.
	}

	return nil
}

// AddIncome records a service on the active day.
func (s *ShiftService) AddIncome(ctx context.Context, in core.Income) (string, error) {
	day, err := s.activeDay(ctx)
	if err != nil {
		return "", err
	}
	if in.ID == "" {
		in.ID = core.NewID()
	}
	in.DayID = day.Start.ID
	return s.storage.AppendIncome(ctx, in)
}

// AddExpense records an expense on the active day.
func (s *ShiftService) AddExpense(ctx context.Context, ex core.Expense) (string, error) {
	day, err := s.activeDay(ctx)
	if err != nil {
		return "", err
	}
	if ex.ID == "" {
		ex.ID = core.NewID()
	}
	ex.DayID = day.Start.ID
	return s.storage.AppendExpense(ctx, ex)
}

func (s *ShiftService) activeDay(ctx context.Context) (*core.Day, error) {
	day, err := s.storage.GetActiveDay(ctx)
	if err != nil {
		return nil, err
	}
	if day == nil {
		return nil, core.ErrNoActiveDay
	}
	return day, nil
}

func (s *ShiftService) publishExportMessage(ctx context.Context, dayID string) error {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping export message")
		return nil
	}
	return s.amqpClient.PublishDayExport(ctx, dayID)
}

// Close closes both storage and AMQP connections
func (s *ShiftService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close shift service: %v", errs)
	}

	return nil
}
