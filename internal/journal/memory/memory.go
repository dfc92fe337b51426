package memory

import (
	"context"
	"fmt"
	"sync"

	"rutapro/internal/core"
)

// Store is an in-memory day store. It backs local development and tests,
// and mirrors the semantics the SQLite repository enforces: at most one
// active day, closed days immutable, entries appended in order.
type Store struct {
	mu       sync.Mutex
	days     []core.Day
	activeID string
	profile  core.Profile
}

func New() *Store {
	return &Store{profile: core.DefaultProfile()}
}

// Seed replaces the stored days wholesale. Test helper.
func (s *Store) Seed(days []core.Day) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.days = append([]core.Day(nil), days...)
	s.activeID = ""
	for _, d := range days {
		if d.Start.IsActive {
			s.activeID = d.Start.ID
		}
	}
}

func (s *Store) ListDays(_ context.Context) ([]core.Day, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneDays(s.days), nil
}

func (s *Store) GetActiveDay(_ context.Context) (*core.Day, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeID == "" {
		return nil, nil
	}
	for i := range s.days {
		if s.days[i].Start.ID == s.activeID {
			d := cloneDay(s.days[i])
			return &d, nil
		}
	}
	return nil, nil
}

func (s *Store) StartDay(_ context.Context, start core.DayStart) error {
	if err := start.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeID != "" {
		return core.ErrDayAlreadyActive
	}
	start.IsActive = true
	s.days = append(s.days, core.Day{Start: start})
	s.activeID = start.ID
	return nil
}

func (s *Store) EndDay(_ context.Context, dayID string, end core.DayEnd) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, err := s.indexOf(dayID)
	if err != nil {
		return err
	}
	if err := s.days[i].ValidateEnd(end); err != nil {
		return err
	}
	// An ongoing pause ends with the shift.
	if pi, ok := s.days[i].OpenPause(); ok {
		at := end.EndTime
		s.days[i].Pauses[pi].End = &at
	}
	s.days[i].End = &end
	s.days[i].Start.IsActive = false
	if s.activeID == dayID {
		s.activeID = ""
	}
	return nil
}

func (s *Store) AppendIncome(_ context.Context, in core.Income) (string, error) {
	if err := in.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i, err := s.indexOf(in.DayID)
	if err != nil {
		return "", err
	}
	if s.days[i].IsClosed() {
		return "", core.ErrDayClosed
	}
	s.days[i].Incomes = append(s.days[i].Incomes, in)
	return fmt.Sprintf("mem:%s:%d", in.DayID, len(s.days[i].Incomes)), nil
}

func (s *Store) AppendExpense(_ context.Context, ex core.Expense) (string, error) {
	if err := ex.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i, err := s.indexOf(ex.DayID)
	if err != nil {
		return "", err
	}
	if s.days[i].IsClosed() {
		return "", core.ErrDayClosed
	}
	s.days[i].Expenses = append(s.days[i].Expenses, ex)
	return fmt.Sprintf("mem:%s:%d", ex.DayID, len(s.days[i].Expenses)), nil
}

func (s *Store) StartPause(_ context.Context, dayID string, at core.ClockTime) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, err := s.indexOf(dayID)
	if err != nil {
		return err
	}
	if s.days[i].IsClosed() {
		return core.ErrDayClosed
	}
	if _, ok := s.days[i].OpenPause(); ok {
		return core.ErrAlreadyPaused
	}
	s.days[i].Pauses = append(s.days[i].Pauses, core.Pause{Start: at})
	return nil
}

func (s *Store) EndPause(_ context.Context, dayID string, at core.ClockTime) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, err := s.indexOf(dayID)
	if err != nil {
		return err
	}
	pi, ok := s.days[i].OpenPause()
	if !ok {
		return core.ErrNotPaused
	}
	s.days[i].Pauses[pi].End = &at
	return nil
}

func (s *Store) Profile(_ context.Context) (core.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile, nil
}

func (s *Store) SaveProfile(_ context.Context, p core.Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = p
	return nil
}

func (s *Store) indexOf(dayID string) (int, error) {
	for i := range s.days {
		if s.days[i].Start.ID == dayID {
			return i, nil
		}
	}
	return -1, core.ErrNoActiveDay
}

func cloneDays(in []core.Day) []core.Day {
	out := make([]core.Day, len(in))
	for i, d := range in {
		out[i] = cloneDay(d)
	}
	return out
}

func cloneDay(d core.Day) core.Day {
	c := d
	c.Incomes = append([]core.Income(nil), d.Incomes...)
	c.Expenses = append([]core.Expense(nil), d.Expenses...)
	c.Pauses = append([]core.Pause(nil), d.Pauses...)
	if d.End != nil {
		end := *d.End
		c.End = &end
	}
	return c
}
