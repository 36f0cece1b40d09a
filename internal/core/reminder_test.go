package core

import (
	"errors"
	"testing"
)

func TestParseReminderDays(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"7,3,1", "7,3,1", true},
		{" 1, 3 ,7 ", "7,3,1", true}, // normalized descending
		{"7,7,3", "7,3", true},       // deduplicated
		{"", "", true},
		{"0", "0", true},
		{"-1", "", false},
		{"7,x", "", false},
	}
	for _, tc := range cases {
		got, err := ParseReminderDays(tc.in)
		if tc.ok {
			if err != nil {
				t.Fatalf("%q: expected ok, got %v", tc.in, err)
			}
			if got.String() != tc.want {
				t.Fatalf("%q: got %q, want %q", tc.in, got.String(), tc.want)
			}
		} else if !errors.Is(err, ErrNegativeReminderDay) {
			t.Fatalf("%q: expected ErrNegativeReminderDay, got %v", tc.in, err)
		}
	}
}

func TestReminderDates(t *testing.T) {
	b := Bill{
		Title:        "Rent",
		DueDate:      NewDate(2024, 3, 15),
		ReminderDays: ReminderDays{7, 3, 1},
	}

	dates := ReminderDates(b)
	want := []Date{NewDate(2024, 3, 8), NewDate(2024, 3, 12), NewDate(2024, 3, 14)}
	if len(dates) != len(want) {
		t.Fatalf("got %d dates, want %d", len(dates), len(want))
	}
	for i := range want {
		if !dates[i].Equal(want[i]) {
			t.Errorf("dates[%d] = %v, want %v", i, dates[i], want[i])
		}
		if dates[i].After(b.DueDate) {
			t.Errorf("reminder date %v falls after the due date", dates[i])
		}
	}
}

func TestReminderDatesRecomputed(t *testing.T) {
	b := Bill{Title: "Rent", DueDate: NewDate(2024, 3, 15), ReminderDays: ReminderDays{1}}

	first := ReminderDates(b)
	b.DueDate = NewDate(2024, 4, 15)
	second := ReminderDates(b)

	if first[0].Equal(second[0]) {
		t.Fatalf("reminder dates must be recomputed from the current bill, not cached")
	}
}

func TestReminderDatesEmpty(t *testing.T) {
	if got := ReminderDates(Bill{DueDate: NewDate(2024, 3, 15)}); got != nil {
		t.Fatalf("expected nil for bill without reminder days, got %v", got)
	}
}

func TestReminderDayZeroFiresOnDueDate(t *testing.T) {
	b := Bill{DueDate: NewDate(2024, 3, 15), ReminderDays: ReminderDays{0}}
	dates := ReminderDates(b)
	if len(dates) != 1 || !dates[0].Equal(b.DueDate) {
		t.Fatalf("offset 0 must fire on the due date, got %v", dates)
	}
}
