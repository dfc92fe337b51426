package stats

import (
	"testing"
	"time"

	"rutapro/internal/core"
)

func clock(t *testing.T, s string) core.ClockTime {
	t.Helper()
	ct, err := core.ParseClockTime(s)
	if err != nil {
		t.Fatalf("parse clock time %q: %v", s, err)
	}
	return ct
}

func closedDay(t *testing.T, date core.Date, start, end string, incomes []core.Income, expenses []core.Expense) core.Day {
	t.Helper()
	e := core.DayEnd{EndTime: clock(t, end)}
	return core.Day{
		Start: core.DayStart{
			ID:        core.NewID(),
			Date:      date,
			StartTime: clock(t, start),
		},
		Incomes:  incomes,
		Expenses: expenses,
		End:      &e,
	}
}

func income(platform string, cents int64, method core.PaymentMethod) core.Income {
	return core.Income{ID: core.NewID(), DayID: "d", Platform: platform, Amount: core.Money{Cents: cents}, PaymentMethod: method}
}

func expense(category string, cents int64) core.Expense {
	return core.Expense{ID: core.NewID(), DayID: "d", Category: category, Amount: core.Money{Cents: cents}}
}

var testNow = time.Date(2025, 6, 15, 18, 0, 0, 0, time.UTC)

func TestComputeEmpty(t *testing.T) {
	s := Compute(nil, testNow)

	if s.TotalIncome.Cents != 0 || s.TotalExpenses.Cents != 0 || s.NetProfit.Cents != 0 {
		t.Fatalf("expected zero totals, got %+v", s)
	}
	if s.ServiceCount != 0 {
		t.Fatalf("expected zero services, got %d", s.ServiceCount)
	}
	if s.AverageServiceValue.Cents != 0 {
		t.Fatalf("average must be zero-guarded, got %d", s.AverageServiceValue.Cents)
	}
	if s.MostUsedPlatform != "" {
		t.Fatalf("expected empty platform sentinel, got %q", s.MostUsedPlatform)
	}
	if len(s.IncomeByPlatform) != 0 {
		t.Fatalf("expected empty platform map, got %v", s.IncomeByPlatform)
	}
	if len(s.ExpensesByCategory) != 0 {
		t.Fatalf("expected empty category map, got %v", s.ExpensesByCategory)
	}
	// Payment methods are fixed-layout: all four keys present at zero.
	for _, m := range core.KnownPaymentMethods() {
		v, ok := s.IncomeByPaymentMethod[m]
		if !ok {
			t.Fatalf("missing payment method key %q", m)
		}
		if v.Cents != 0 {
			t.Fatalf("expected zero for %q, got %d", m, v.Cents)
		}
	}
}

func TestComputeScenario(t *testing.T) {
	dayA := closedDay(t, core.NewDate(2025, 6, 10), "08:00", "17:00",
		[]core.Income{
			income("uber", 10000, core.PaymentCash),
			income("uber", 8000, core.PaymentCard),
		},
		[]core.Expense{expense("fuel", 5000)},
	)
	dayB := closedDay(t, core.NewDate(2025, 6, 11), "09:00", "14:00",
		[]core.Income{income("didi", 12000, core.PaymentQR)},
		nil,
	)

	s := Compute([]core.Day{dayA, dayB}, testNow)

	if s.TotalIncome.Cents != 30000 {
		t.Errorf("total income = %d, want 30000", s.TotalIncome.Cents)
	}
	if s.TotalExpenses.Cents != 5000 {
		t.Errorf("total expenses = %d, want 5000", s.TotalExpenses.Cents)
	}
	if s.NetProfit.Cents != 25000 {
		t.Errorf("net profit = %d, want 25000", s.NetProfit.Cents)
	}
	if s.ServiceCount != 3 {
		t.Errorf("service count = %d, want 3", s.ServiceCount)
	}
	if s.AverageServiceValue.Cents != 10000 {
		t.Errorf("average = %d, want 10000", s.AverageServiceValue.Cents)
	}
	if s.MostUsedPlatform != "uber" {
		t.Errorf("most used platform = %q, want uber", s.MostUsedPlatform)
	}
	if s.IncomeByPlatform["uber"] != 2 || s.IncomeByPlatform["didi"] != 1 {
		t.Errorf("platform counts = %v", s.IncomeByPlatform)
	}
	want := map[core.PaymentMethod]int64{
		core.PaymentCash:    10000,
		core.PaymentCard:    8000,
		core.PaymentQR:      12000,
		core.PaymentVoucher: 0,
	}
	for m, cents := range want {
		if got := s.IncomeByPaymentMethod[m]; got.Cents != cents {
			t.Errorf("payment %q = %d, want %d", m, got.Cents, cents)
		}
	}
	if s.ExpensesByCategory["fuel"].Cents != 5000 {
		t.Errorf("fuel expenses = %v", s.ExpensesByCategory)
	}
	if _, ok := s.ExpensesByCategory["food"]; ok {
		t.Errorf("unused categories must not appear: %v", s.ExpensesByCategory)
	}
}

func TestNetProfitIdentity(t *testing.T) {
	days := []core.Day{
		closedDay(t, core.NewDate(2025, 1, 2), "06:00", "15:00",
			[]core.Income{income("uber", 700, core.PaymentCash)},
			[]core.Expense{expense("fuel", 2500)},
		),
	}
	s := Compute(days, testNow)
	if s.NetProfit.Cents != s.TotalIncome.Cents-s.TotalExpenses.Cents {
		t.Fatalf("profit %d != income %d - expenses %d", s.NetProfit.Cents, s.TotalIncome.Cents, s.TotalExpenses.Cents)
	}
	if s.NetProfit.Cents >= 0 {
		t.Fatalf("expected a negative profit day, got %d", s.NetProfit.Cents)
	}
}

func TestMostUsedPlatformTieBreak(t *testing.T) {
	day := closedDay(t, core.NewDate(2025, 3, 3), "07:00", "19:00",
		[]core.Income{
			income("didi", 100, core.PaymentCash),
			income("uber", 100, core.PaymentCash),
			income("uber", 100, core.PaymentCash),
			income("didi", 100, core.PaymentCash),
		},
		nil,
	)
	s := Compute([]core.Day{day}, testNow)
	// Equal counts resolve to the platform encountered first.
	if s.MostUsedPlatform != "didi" {
		t.Fatalf("tie-break = %q, want didi", s.MostUsedPlatform)
	}
}

func TestWorkedMinutes(t *testing.T) {
	cases := []struct {
		name  string
		start string
		end   string
		want  int
	}{
		{"same day", "08:30", "17:00", 510},
		{"exact day boundary", "00:00", "23:59", 1439},
		{"midnight wrap", "23:00", "01:00", 120},
		{"wrap by one minute", "18:30", "18:29", 1439},
		{"zero length", "12:00", "12:00", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := closedDay(t, core.NewDate(2025, 5, 5), tc.start, tc.end, nil, nil)
			if got := WorkedMinutes(d, testNow); got != tc.want {
				t.Fatalf("WorkedMinutes = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestWorkedMinutesActiveDay(t *testing.T) {
	d := core.Day{Start: core.DayStart{
		ID:        "d1",
		Date:      core.NewDate(2025, 6, 15),
		StartTime: clock(t, "15:30"),
		IsActive:  true,
	}}
	// Evaluation instant is a parameter, so the figure is reproducible.
	if got := WorkedMinutes(d, testNow); got != 150 {
		t.Fatalf("active minutes = %d, want 150", got)
	}
}

func TestWorkedMinutesIgnoresPauses(t *testing.T) {
	// Pauses are recorded but not netted out of worked time. This pins
	// down the shipped behavior; if pause subtraction is ever wanted,
	// this test is the place that documents today's figures.
	pauseEnd := clock(t, "13:00")
	d := closedDay(t, core.NewDate(2025, 5, 6), "08:00", "18:00", nil, nil)
	d.Pauses = []core.Pause{{Start: clock(t, "12:00"), End: &pauseEnd}}

	if got := WorkedMinutes(d, testNow); got != 600 {
		t.Fatalf("WorkedMinutes = %d, want 600 (pause not subtracted)", got)
	}
}

func TestFilterByDateRange(t *testing.T) {
	d1 := closedDay(t, core.NewDate(2025, 6, 10), "08:00", "17:00", nil, nil)
	d2 := closedDay(t, core.NewDate(2025, 6, 11), "08:00", "17:00", nil, nil)
	d3 := closedDay(t, core.NewDate(2025, 6, 12), "08:00", "17:00", nil, nil)
	days := []core.Day{d3, d1, d2} // unsorted on purpose

	t.Run("open bounds return input unchanged", func(t *testing.T) {
		got := FilterByDateRange(days, core.Date{}, core.Date{})
		if len(got) != 3 {
			t.Fatalf("got %d days", len(got))
		}
	})

	t.Run("single day range", func(t *testing.T) {
		d := core.NewDate(2025, 6, 11)
		got := FilterByDateRange(days, d, d)
		if len(got) != 1 || !got[0].Start.Date.Equal(d.Time) {
			t.Fatalf("got %d days", len(got))
		}
	})

	t.Run("inclusive bounds preserve order", func(t *testing.T) {
		got := FilterByDateRange(days, core.NewDate(2025, 6, 10), core.NewDate(2025, 6, 11))
		if len(got) != 2 {
			t.Fatalf("got %d days", len(got))
		}
		if !got[0].Start.Date.Equal(d1.Start.Date.Time) || !got[1].Start.Date.Equal(d2.Start.Date.Time) {
			t.Fatalf("order not preserved: %v, %v", got[0].Start.Date, got[1].Start.Date)
		}
	})

	t.Run("empty result is not an error", func(t *testing.T) {
		got := FilterByDateRange(days, core.NewDate(2030, 1, 1), core.NewDate(2030, 1, 2))
		if len(got) != 0 {
			t.Fatalf("got %d days", len(got))
		}
	})

	t.Run("lower bound only", func(t *testing.T) {
		got := FilterByDateRange(days, core.NewDate(2025, 6, 12), core.Date{})
		if len(got) != 1 {
			t.Fatalf("got %d days", len(got))
		}
	})
}

func TestDaySummaryConsistentWithCompute(t *testing.T) {
	days := []core.Day{
		closedDay(t, core.NewDate(2025, 6, 10), "08:00", "17:00",
			[]core.Income{income("uber", 10000, core.PaymentCash), income("indrive", 3000, core.PaymentCard)},
			[]core.Expense{expense("fuel", 5000), expense("food", 1200)},
		),
		closedDay(t, core.NewDate(2025, 6, 11), "23:00", "01:00",
			[]core.Income{income("didi", 12000, core.PaymentQR)},
			nil,
		),
	}

	s := Compute(days, testNow)

	var incomeSum, expenseSum int64
	var minutes, services int
	for _, d := range days {
		ds := DaySummary(d, testNow)
		incomeSum += ds.Income.Cents
		expenseSum += ds.Expenses.Cents
		minutes += ds.Minutes
		services += ds.Services
		if ds.Profit.Cents != ds.Income.Cents-ds.Expenses.Cents {
			t.Fatalf("day profit %d != %d - %d", ds.Profit.Cents, ds.Income.Cents, ds.Expenses.Cents)
		}
		one := Compute([]core.Day{d}, testNow)
		if one.TotalIncome.Cents != ds.Income.Cents || one.TotalExpenses.Cents != ds.Expenses.Cents ||
			one.TimeWorkedMinutes != ds.Minutes || one.ServiceCount != ds.Services {
			t.Fatalf("DaySummary diverges from single-day Compute: %+v vs %+v", ds, one)
		}
	}
	if incomeSum != s.TotalIncome.Cents {
		t.Fatalf("sum of day incomes %d != aggregate %d", incomeSum, s.TotalIncome.Cents)
	}
	if expenseSum != s.TotalExpenses.Cents {
		t.Fatalf("sum of day expenses %d != aggregate %d", expenseSum, s.TotalExpenses.Cents)
	}
	if minutes != s.TimeWorkedMinutes {
		t.Fatalf("sum of day minutes %d != aggregate %d", minutes, s.TimeWorkedMinutes)
	}
	if services != s.ServiceCount {
		t.Fatalf("sum of day services %d != aggregate %d", services, s.ServiceCount)
	}
}

func TestComputeDoesNotMutateInput(t *testing.T) {
	day := closedDay(t, core.NewDate(2025, 6, 10), "08:00", "17:00",
		[]core.Income{income("uber", 10000, core.PaymentCash)},
		[]core.Expense{expense("fuel", 5000)},
	)
	days := []core.Day{day}
	_ = Compute(days, testNow)
	_ = DaySummary(day, testNow)
	_ = FilterByDateRange(days, core.NewDate(2025, 6, 10), core.NewDate(2025, 6, 10))

	if days[0].Incomes[0].Amount.Cents != 10000 || days[0].Expenses[0].Amount.Cents != 5000 {
		t.Fatalf("input mutated: %+v", days[0])
	}
	if days[0].End == nil {
		t.Fatalf("input end block cleared")
	}
}
