package core

import (
	"errors"
	"strings"
	"time"
)

const (
	RepeatNone    RepeatInterval = "none"
	RepeatMonthly RepeatInterval = "monthly"
	RepeatWeekly  RepeatInterval = "weekly"
	RepeatYearly  RepeatInterval = "yearly"
)

type (
	RepeatInterval string

	// Date is a calendar date with day precision. The time component is
	// always midnight UTC so two dates compare equal regardless of the
	// wall-clock time they were built from.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Bill is a single payable obligation. One record per occurrence:
	// marking a recurring bill paid retains the paid record as history and
	// inserts a fresh occurrence with an advanced due date.
	Bill struct {
		ID           string
		UserID       string
		Title        string
		Amount       Money
		DueDate      Date
		IsPaid       bool
		Repeat       RepeatInterval
		ReminderDays ReminderDays
		Notes        string
		Type         string // free-form category tag, e.g. "rent", "subscription"
	}

	// Payment records a mark-paid event against a bill.
	Payment struct {
		ID     string
		UserID string
		BillID string
		Amount Money
		Method string
		Notes  string
		PaidOn time.Time
	}

	User struct {
		ID           string
		Email        string
		PasswordHash string
		Phone        string
	}
)

// Validation failures (ValidationError kind).
var (
	ErrEmptyTitle            = errors.New("empty title")
	ErrNegativeAmount        = errors.New("negative amount")
	ErrInvalidDate           = errors.New("invalid date")
	ErrInvalidRepeatInterval = errors.New("invalid repeat interval")
	ErrNegativeReminderDay   = errors.New("negative reminder day")
)

// State and lookup failures.
var (
	// ErrAlreadyPaid guards mark-paid against double submission
	// (InvalidState kind).
	ErrAlreadyPaid = errors.New("bill already paid")
	// ErrBillNotFound is returned when an operation references a missing
	// bill identifier (NotFound kind).
	ErrBillNotFound = errors.New("bill not found")
	ErrUserNotFound = errors.New("user not found")
)

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date in UTC.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses the ISO form "2006-01-02".
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// String renders the ISO form "2006-01-02".
func (d Date) String() string {
	return d.Format("2006-01-02")
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Day returns the day of the month.
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month as 1-12.
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year.
func (d Date) Year() int {
	return d.Time.Year()
}

// AddDays returns the date n calendar days later (earlier for negative n).
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// Before reports whether d is strictly before other.
func (d Date) Before(other Date) bool {
	return d.Time.Before(other.Time)
}

// After reports whether d is strictly after other.
func (d Date) After(other Date) bool {
	return d.Time.After(other.Time)
}

// Equal reports whether d and other are the same calendar date.
func (d Date) Equal(other Date) bool {
	return d.Time.Equal(other.Time)
}

// DaysUntil returns the number of whole days from d to other.
func (d Date) DaysUntil(other Date) int {
	return int(other.Time.Sub(d.Time).Hours() / 24)
}

// SameMonth reports whether both dates fall in the same calendar month.
func (d Date) SameMonth(other Date) bool {
	return d.Year() == other.Year() && d.Month() == other.Month()
}

func (ri RepeatInterval) Validate() error {
	switch ri {
	case RepeatNone, RepeatMonthly, RepeatWeekly, RepeatYearly:
		return nil
	default:
		return ErrInvalidRepeatInterval
	}
}

// Recurs reports whether marking paid produces a successor occurrence.
func (ri RepeatInterval) Recurs() bool {
	return ri != RepeatNone && ri != ""
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrNegativeAmount
	}
	return nil
}

func (b Bill) Validate() error {
	if len(strings.TrimSpace(b.Title)) == 0 {
		return ErrEmptyTitle
	}
	if len(b.Title) > 200 {
		return errors.New("title too long (max 200 characters)")
	}
	if err := b.Amount.Validate(); err != nil {
		return err
	}
	if err := b.DueDate.Validate(); err != nil {
		return err
	}
	if b.Repeat != "" {
		if err := b.Repeat.Validate(); err != nil {
			return err
		}
	}
	if err := b.ReminderDays.Validate(); err != nil {
		return err
	}
	return nil
}
