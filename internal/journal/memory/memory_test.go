package memory

import (
	"context"
	"errors"
	"testing"

	"rutapro/internal/core"
)

func startOf(id string) core.DayStart {
	return core.DayStart{
		ID:        id,
		Date:      core.NewDate(2025, 6, 10),
		StartTime: core.ClockTime{Hour: 8},
	}
}

func TestDayLifecycle(t *testing.T) {
	ctx := context.Background()
	s := New()

	if err := s.StartDay(ctx, startOf("d1")); err != nil {
		t.Fatalf("start day: %v", err)
	}
	if err := s.StartDay(ctx, startOf("d2")); !errors.Is(err, core.ErrDayAlreadyActive) {
		t.Fatalf("expected ErrDayAlreadyActive, got %v", err)
	}

	active, err := s.GetActiveDay(ctx)
	if err != nil || active == nil || active.Start.ID != "d1" {
		t.Fatalf("active day = %v, err %v", active, err)
	}

	if _, err := s.AppendIncome(ctx, core.Income{
		ID: "i1", DayID: "d1", Platform: "uber",
		Amount: core.Money{Cents: 800000}, PaymentMethod: core.PaymentCash,
	}); err != nil {
		t.Fatalf("append income: %v", err)
	}

	if err := s.EndDay(ctx, "d1", core.DayEnd{EndTime: core.ClockTime{Hour: 17}}); err != nil {
		t.Fatalf("end day: %v", err)
	}
	active, _ = s.GetActiveDay(ctx)
	if active != nil {
		t.Fatalf("expected no active day after end, got %v", active)
	}

	if _, err := s.AppendIncome(ctx, core.Income{
		ID: "i2", DayID: "d1", Platform: "uber",
		Amount: core.Money{Cents: 100}, PaymentMethod: core.PaymentCash,
	}); !errors.Is(err, core.ErrDayClosed) {
		t.Fatalf("expected ErrDayClosed, got %v", err)
	}

	days, _ := s.ListDays(ctx)
	if len(days) != 1 || len(days[0].Incomes) != 1 || !days[0].IsClosed() {
		t.Fatalf("unexpected history: %+v", days)
	}
}

func TestPauseToggle(t *testing.T) {
	ctx := context.Background()
	s := New()
	if err := s.StartDay(ctx, startOf("d1")); err != nil {
		t.Fatalf("start day: %v", err)
	}

	if err := s.EndPause(ctx, "d1", core.ClockTime{Hour: 12}); !errors.Is(err, core.ErrNotPaused) {
		t.Fatalf("expected ErrNotPaused, got %v", err)
	}
	if err := s.StartPause(ctx, "d1", core.ClockTime{Hour: 12}); err != nil {
		t.Fatalf("start pause: %v", err)
	}
	if err := s.StartPause(ctx, "d1", core.ClockTime{Hour: 12, Minute: 5}); !errors.Is(err, core.ErrAlreadyPaused) {
		t.Fatalf("expected ErrAlreadyPaused, got %v", err)
	}
	if err := s.EndPause(ctx, "d1", core.ClockTime{Hour: 13}); err != nil {
		t.Fatalf("end pause: %v", err)
	}

	// An open pause is closed by ending the day.
	if err := s.StartPause(ctx, "d1", core.ClockTime{Hour: 15}); err != nil {
		t.Fatalf("second pause: %v", err)
	}
	if err := s.EndDay(ctx, "d1", core.DayEnd{EndTime: core.ClockTime{Hour: 17}}); err != nil {
		t.Fatalf("end day: %v", err)
	}
	days, _ := s.ListDays(ctx)
	if _, open := days[0].OpenPause(); open {
		t.Fatalf("pause left open after day end: %+v", days[0].Pauses)
	}
	if days[0].Pauses[1].End.Hour != 17 {
		t.Fatalf("open pause should close at end time, got %v", days[0].Pauses[1].End)
	}
}

func TestListReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := New()
	if err := s.StartDay(ctx, startOf("d1")); err != nil {
		t.Fatalf("start day: %v", err)
	}
	if _, err := s.AppendIncome(ctx, core.Income{
		ID: "i1", DayID: "d1", Platform: "didi",
		Amount: core.Money{Cents: 500}, PaymentMethod: core.PaymentQR,
	}); err != nil {
		t.Fatalf("append income: %v", err)
	}

	days, _ := s.ListDays(ctx)
	days[0].Incomes[0].Amount.Cents = 0
	days[0].Start.ID = "mutated"

	fresh, _ := s.ListDays(ctx)
	if fresh[0].Incomes[0].Amount.Cents != 500 || fresh[0].Start.ID != "d1" {
		t.Fatalf("store exposed internal state: %+v", fresh[0])
	}
}

func TestProfileRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := New()
	p, err := s.Profile(ctx)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if p.DriverType != core.DriverPlatform {
		t.Fatalf("default driver type = %q", p.DriverType)
	}
	p.DriverType = core.DriverTaxi
	if err := s.SaveProfile(ctx, p); err != nil {
		t.Fatalf("save profile: %v", err)
	}
	p2, _ := s.Profile(ctx)
	if p2.DriverType != core.DriverTaxi {
		t.Fatalf("profile not persisted: %q", p2.DriverType)
	}
}
