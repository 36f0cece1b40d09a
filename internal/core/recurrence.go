// This file implements the Strategy Pattern for due-date advancement.
// Each repeat interval (weekly, monthly, yearly) has its own advancer that
// encapsulates how a paid occurrence's due date rolls forward.

package core

import (
	"fmt"
	"time"
)

// Advancer is the strategy interface for advancing a due date by one
// recurrence unit.
type Advancer interface {
	// NextDue returns the due date of the successor occurrence.
	NextDue(due Date) Date
}

// WeeklyAdvancer implements Advancer for weekly bills.
type WeeklyAdvancer struct{}

// NextDue returns the date 7 days later.
func (WeeklyAdvancer) NextDue(due Date) Date {
	return due.AddDays(7)
}

// MonthlyAdvancer implements Advancer for monthly bills.
type MonthlyAdvancer struct{}

// NextDue adds one calendar month, clamping the day-of-month to the last
// valid day on overflow (Jan 31 -> Feb 28/29).
func (MonthlyAdvancer) NextDue(due Date) Date {
	return addMonths(due, 1)
}

// YearlyAdvancer implements Advancer for yearly bills.
type YearlyAdvancer struct{}

// NextDue adds one year, clamping Feb 29 to Feb 28 off leap years.
func (YearlyAdvancer) NextDue(due Date) Date {
	return addMonths(due, 12)
}

// addMonths advances a date by whole months without the day-overflow
// normalization of time.AddDate (which would turn Jan 31 + 1 month into
// Mar 2/3).
func addMonths(d Date, months int) Date {
	month := d.Month() - 1 + months
	year := d.Year() + month/12
	month = month%12 + 1
	day := d.Day()
	if last := lastDayOfMonth(year, month); day > last {
		day = last
	}
	return NewDate(year, month, day)
}

func lastDayOfMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// advancers maps repeat intervals to their advancement strategies.
// RepeatNone is deliberately absent: a non-recurring bill has no successor.
var advancers = map[RepeatInterval]Advancer{
	RepeatWeekly:  WeeklyAdvancer{},
	RepeatMonthly: MonthlyAdvancer{},
	RepeatYearly:  YearlyAdvancer{},
}

// GetAdvancer returns the advancement strategy for a repeat interval, or an
// error if the interval is not recurring.
func GetAdvancer(interval RepeatInterval) (Advancer, error) {
	adv, ok := advancers[interval]
	if !ok {
		return nil, fmt.Errorf("no advancer for repeat interval: %s", interval)
	}
	return adv, nil
}

// RegisterAdvancer registers a custom advancer for a new repeat interval.
func RegisterAdvancer(interval RepeatInterval, adv Advancer) {
	advancers[interval] = adv
}

// MarkPaid runs the mark-paid transition. It returns the bill with
// IsPaid set and, for recurring bills, the successor occurrence with the
// due date advanced by one recurrence unit and a fresh identifier from
// newID. The paid occurrence is retained as history.
//
// Marking an already-paid bill fails with ErrAlreadyPaid and changes
// nothing. Persisting both records atomically is the store's job; this
// function is pure.
func MarkPaid(b Bill, newID func() string) (Bill, *Bill, error) {
	if b.IsPaid {
		return b, nil, ErrAlreadyPaid
	}

	paid := b
	paid.IsPaid = true

	if !b.Repeat.Recurs() {
		return paid, nil, nil
	}

	adv, err := GetAdvancer(b.Repeat)
	if err != nil {
		return b, nil, err
	}

	next := b
	next.ID = newID()
	next.DueDate = adv.NextDue(b.DueDate)
	next.IsPaid = false
	return paid, &next, nil
}
