// Package stats derives statistics from day records. Every function here
// is a pure transformation over an in-memory slice of days: no I/O, no
// clock reads (the evaluation instant is a parameter), no mutation of
// input. Degenerate input yields zero-valued output, never an error.
package stats

import (
	"time"

	"rutapro/internal/core"
)

// Summary holds the aggregate statistics for a set of days.
type Summary struct {
	TotalIncome   core.Money
	TotalExpenses core.Money
	NetProfit     core.Money

	// ServiceCount is the number of income entries (one per paid service).
	ServiceCount int

	// AverageServiceValue is TotalIncome / ServiceCount, zero when there
	// are no services.
	AverageServiceValue core.Money

	// IncomeByPlatform counts services per platform. Key order is not
	// part of the contract; callers sort for display.
	IncomeByPlatform map[string]int

	// IncomeByPaymentMethod sums income per payment method. All known
	// methods are always present, zero-filled when unused.
	IncomeByPaymentMethod map[core.PaymentMethod]core.Money

	// ExpensesByCategory sums expenses per category. Only categories
	// that actually occur appear; the category set is open.
	ExpensesByCategory map[string]core.Money

	// MostUsedPlatform is the platform with the highest service count,
	// empty when there are no services. Ties go to the platform whose
	// first service was logged earliest.
	MostUsedPlatform string

	TimeWorkedMinutes int
}

// DayTotals is the per-day summary shown in history list rows.
type DayTotals struct {
	Date     core.Date
	Income   core.Money
	Expenses core.Money
	Profit   core.Money
	Services int
	Minutes  int
}

// FilterByDateRange returns the days whose date falls within [from, to]
// inclusive. A zero bound leaves that side open; two zero bounds return
// the input unchanged. Input order is preserved.
func FilterByDateRange(days []core.Day, from, to core.Date) []core.Day {
	if from.IsZero() && to.IsZero() {
		return days
	}
	out := make([]core.Day, 0, len(days))
	for _, d := range days {
		if !from.IsZero() && d.Start.Date.Before(from.Time) {
			continue
		}
		if !to.IsZero() && d.Start.Date.After(to.Time) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// Compute derives the aggregate statistics for a set of days. The now
// parameter supplies the evaluation instant for still-active shifts.
func Compute(days []core.Day, now time.Time) Summary {
	s := Summary{
		IncomeByPlatform:      make(map[string]int),
		IncomeByPaymentMethod: make(map[core.PaymentMethod]core.Money),
		ExpensesByCategory:    make(map[string]core.Money),
	}
	for _, m := range core.KnownPaymentMethods() {
		s.IncomeByPaymentMethod[m] = core.Money{}
	}

	// platformOrder remembers first-appearance order so the most-used
	// pick is deterministic on ties.
	var platformOrder []string

	for _, d := range days {
		for _, in := range d.Incomes {
			s.TotalIncome = s.TotalIncome.Add(in.Amount)
			s.ServiceCount++
			if _, seen := s.IncomeByPlatform[in.Platform]; !seen {
				platformOrder = append(platformOrder, in.Platform)
			}
			s.IncomeByPlatform[in.Platform]++
			s.IncomeByPaymentMethod[in.PaymentMethod] = s.IncomeByPaymentMethod[in.PaymentMethod].Add(in.Amount)
		}
		for _, ex := range d.Expenses {
			s.TotalExpenses = s.TotalExpenses.Add(ex.Amount)
			s.ExpensesByCategory[ex.Category] = s.ExpensesByCategory[ex.Category].Add(ex.Amount)
		}
		s.TimeWorkedMinutes += WorkedMinutes(d, now)
	}

	s.NetProfit = s.TotalIncome.Sub(s.TotalExpenses)
	if s.ServiceCount > 0 {
		s.AverageServiceValue = core.Money{Cents: s.TotalIncome.Cents / int64(s.ServiceCount)}
	}

	best := 0
	for _, p := range platformOrder {
		if s.IncomeByPlatform[p] > best {
			best = s.IncomeByPlatform[p]
			s.MostUsedPlatform = p
		}
	}

	return s
}

// WorkedMinutes returns the elapsed shift time for one day.
//
// Closed days use end minus start on the 24-hour wall clock; a negative
// difference means the shift crossed midnight and gets a full day added.
// Active days run from start time to now, assumed same-day, no wrap.
//
// Pause intervals are recorded on the day but deliberately not
// subtracted here, matching the figures the app has always shown.
func WorkedMinutes(d core.Day, now time.Time) int {
	start := d.Start.StartTime.MinutesOfDay()
	if d.End != nil {
		mins := d.End.EndTime.MinutesOfDay() - start
		if mins < 0 {
			mins += core.MinutesPerDay
		}
		return mins
	}
	return int(now.Sub(d.Start.StartTime.At(now)).Minutes())
}

// DaySummary computes the single-day totals for list display. It is the
// single-element special case of Compute and stays consistent with it.
func DaySummary(d core.Day, now time.Time) DayTotals {
	t := DayTotals{Date: d.Start.Date, Services: len(d.Incomes)}
	for _, in := range d.Incomes {
		t.Income = t.Income.Add(in.Amount)
	}
	for _, ex := range d.Expenses {
		t.Expenses = t.Expenses.Add(ex.Amount)
	}
	t.Profit = t.Income.Sub(t.Expenses)
	t.Minutes = WorkedMinutes(d, now)
	return t
}
