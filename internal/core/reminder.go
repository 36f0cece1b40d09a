package core

import (
	"sort"
	"strconv"
	"strings"
)

// ReminderDays is an ordered set of day offsets before the due date on
// which a reminder should fire. {7,3,1} means 7, 3 and 1 days before.
// The wire and storage form is comma separated: "7,3,1".
type ReminderDays []int

// ParseReminderDays parses a comma separated offset list. Blank input
// yields an empty set; non-numeric or negative entries are rejected.
func ParseReminderDays(s string) (ReminderDays, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var out ReminderDays
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return nil, ErrNegativeReminderDay
		}
		out = append(out, n)
	}
	return out.Normalize(), nil
}

// Normalize returns the offsets deduplicated and sorted descending
// (furthest reminder first), the order they fire in.
func (rd ReminderDays) Normalize() ReminderDays {
	seen := map[int]struct{}{}
	out := make(ReminderDays, 0, len(rd))
	for _, n := range rd {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	if len(out) == 0 {
		return nil
	}
	return out
}

func (rd ReminderDays) Validate() error {
	for _, n := range rd {
		if n < 0 {
			return ErrNegativeReminderDay
		}
	}
	return nil
}

// String renders the storage form, e.g. "7,3,1".
func (rd ReminderDays) String() string {
	if len(rd) == 0 {
		return ""
	}
	parts := make([]string, len(rd))
	for i, n := range rd {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}

// ReminderDates computes the calendar dates a bill's reminders fire on, one
// per configured offset: due date minus N days. The result is recomputed
// fresh on every call and never cached; firing reminders is the delivery
// collaborator's job, not this function's.
func ReminderDates(b Bill) []Date {
	if len(b.ReminderDays) == 0 {
		return nil
	}
	dates := make([]Date, 0, len(b.ReminderDays))
	for _, n := range b.ReminderDays.Normalize() {
		dates = append(dates, b.DueDate.AddDays(-n))
	}
	return dates
}
