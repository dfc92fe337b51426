package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	PaymentCash    PaymentMethod = "cash"
	PaymentCard    PaymentMethod = "card"
	PaymentVoucher PaymentMethod = "voucher"
	PaymentQR      PaymentMethod = "qr"
)

const (
	DriverTaxi     DriverType = "taxi"
	DriverPlatform DriverType = "platform"
)

type (
	PaymentMethod string

	DriverType string

	// Date is a civil calendar date. The time-of-day portion is always midnight UTC.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// DayStart is the immutable header of a shift, created when the driver
	// starts working. ID never changes after creation.
	DayStart struct {
		ID             string
		Date           Date
		StartTime      ClockTime
		InitialMileage int64
		InitialCash    Money
		Notes          string
		IsActive       bool
	}

	// DayEnd is populated once, when the shift is closed.
	DayEnd struct {
		EndTime      ClockTime
		FinalMileage int64
		FinalCash    Money
		Notes        string
	}

	// Pause is a break interval inside a shift. A nil End means the pause
	// is still ongoing.
	Pause struct {
		Start ClockTime
		End   *ClockTime
	}

	// Income is one completed paid service.
	Income struct {
		ID            string
		DayID         string
		Timestamp     ClockTime
		Platform      string
		Amount        Money
		PaymentMethod PaymentMethod
		TollIncluded  bool
		TollAmount    Money // meaningful only when TollIncluded
		Notes         string
	}

	Expense struct {
		ID          string
		DayID       string
		Timestamp   ClockTime
		Category    string
		Amount      Money
		Description string
	}

	// Day is one full shift record: header, entries, pauses and the
	// optional closing block. Once End is set the record is history and
	// is never mutated again.
	Day struct {
		Start    DayStart
		Incomes  []Income
		Expenses []Expense
		Pauses   []Pause
		End      *DayEnd
	}
)

var (
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrEmptyPlatform        = errors.New("empty platform")
	ErrEmptyCategory        = errors.New("empty category")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrInvalidClockTime     = errors.New("invalid clock time")
	ErrMileageDecreased     = errors.New("final mileage below initial mileage")
	ErrNoActiveDay          = errors.New("no active day")
	ErrDayAlreadyActive     = errors.New("a day is already active")
	ErrDayClosed            = errors.New("day already closed")
	ErrNotPaused            = errors.New("day is not paused")
	ErrAlreadyPaused        = errors.New("day is already paused")
)

// KnownPaymentMethods returns the fixed set of payment methods, in display order.
func KnownPaymentMethods() []PaymentMethod {
	return []PaymentMethod{PaymentCash, PaymentCard, PaymentVoucher, PaymentQR}
}

func (p PaymentMethod) IsValid() bool {
	switch p {
	case PaymentCash, PaymentCard, PaymentVoucher, PaymentQR:
		return true
	default:
		return false
	}
}

func (t DriverType) IsValid() bool {
	return t == DriverTaxi || t == DriverPlatform
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an instant to its civil date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format("2006-01-02")
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Add returns the sum of two amounts.
func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

// Sub returns m minus o; the result may be negative.
func (m Money) Sub(o Money) Money {
	return Money{Cents: m.Cents - o.Cents}
}

func (s DayStart) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return errors.New("empty day id")
	}
	if err := s.Date.Validate(); err != nil {
		return err
	}
	if s.InitialMileage < 0 {
		return errors.New("negative initial mileage")
	}
	if s.InitialCash.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (i Income) Validate() error {
	if strings.TrimSpace(i.DayID) == "" {
		return errors.New("empty day id")
	}
	if strings.TrimSpace(i.Platform) == "" {
		return ErrEmptyPlatform
	}
	if !i.PaymentMethod.IsValid() {
		return ErrInvalidPaymentMethod
	}
	if err := i.Amount.Validate(); err != nil {
		return err
	}
	if i.TollIncluded && i.TollAmount.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (e Expense) Validate() error {
	if strings.TrimSpace(e.DayID) == "" {
		return errors.New("empty day id")
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if len(e.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return nil
}

// IsClosed reports whether the shift has ended.
func (d Day) IsClosed() bool {
	return d.End != nil
}

// OpenPause returns the index of the ongoing pause, if any.
func (d Day) OpenPause() (int, bool) {
	for i, p := range d.Pauses {
		if p.End == nil {
			return i, true
		}
	}
	return -1, false
}

// ValidateEnd checks the closing block against the day header.
func (d Day) ValidateEnd(end DayEnd) error {
	if d.IsClosed() {
		return ErrDayClosed
	}
	if end.FinalMileage < d.Start.InitialMileage {
		return ErrMileageDecreased
	}
	if end.FinalCash.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}
