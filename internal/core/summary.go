package core

import "sort"

// Summary is the dashboard aggregate computed from a full bill snapshot.
type Summary struct {
	// TotalMonthUnpaid sums unpaid bills whose due date falls in now's
	// calendar month, including ones already overdue within it.
	TotalMonthUnpaid Money
	// UpcomingNext7Days lists bills due within the horizon, ascending by
	// due date, ties broken by title.
	UpcomingNext7Days []Bill
	// OverdueCount counts unpaid bills due strictly before today.
	OverdueCount int
}

// Aggregate folds the classified bill set into dashboard statistics. It is
// a pure function of (bills, now) and recomputes from scratch on every
// call.
func Aggregate(bills []Bill, now Date) Summary {
	var s Summary
	for _, b := range bills {
		if !b.IsPaid && b.DueDate.SameMonth(now) {
			s.TotalMonthUnpaid.Cents += b.Amount.Cents
		}
		switch Classify(b, now) {
		case StatusOverdue:
			s.OverdueCount++
		case StatusUpcoming:
			s.UpcomingNext7Days = append(s.UpcomingNext7Days, b)
		}
	}
	sort.Slice(s.UpcomingNext7Days, func(i, j int) bool {
		a, b := s.UpcomingNext7Days[i], s.UpcomingNext7Days[j]
		if !a.DueDate.Equal(b.DueDate) {
			return a.DueDate.Before(b.DueDate)
		}
		return a.Title < b.Title
	})
	return s
}
