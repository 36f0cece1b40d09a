package core

import (
	"errors"
	"testing"
)

func staticID(id string) func() string {
	return func() string { return id }
}

func TestMarkPaidNonRecurring(t *testing.T) {
	b := Bill{ID: "b1", Title: "Dentist", Amount: Money{Cents: 9000}, DueDate: NewDate(2024, 5, 2), Repeat: RepeatNone}

	paid, next, err := MarkPaid(b, staticID("b2"))
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if !paid.IsPaid {
		t.Fatalf("expected paid bill")
	}
	if next != nil {
		t.Fatalf("non-recurring bill must not produce a successor, got %+v", next)
	}
}

func TestMarkPaidAlreadyPaid(t *testing.T) {
	b := Bill{ID: "b1", Title: "Rent", IsPaid: true, DueDate: NewDate(2024, 5, 2), Repeat: RepeatMonthly}

	_, next, err := MarkPaid(b, staticID("b2"))
	if !errors.Is(err, ErrAlreadyPaid) {
		t.Fatalf("expected ErrAlreadyPaid, got %v", err)
	}
	if next != nil {
		t.Fatalf("failed mark-paid must not produce a successor")
	}
}

func TestMarkPaidMonthly(t *testing.T) {
	tests := []struct {
		name    string
		due     Date
		wantDue Date
	}{
		{
			name:    "mid-month advances one month",
			due:     NewDate(2024, 3, 15),
			wantDue: NewDate(2024, 4, 15),
		},
		{
			name:    "jan 31 clamps to leap-year feb 29",
			due:     NewDate(2024, 1, 31),
			wantDue: NewDate(2024, 2, 29),
		},
		{
			name:    "jan 31 clamps to feb 28 off leap years",
			due:     NewDate(2023, 1, 31),
			wantDue: NewDate(2023, 2, 28),
		},
		{
			name:    "dec rolls into next year",
			due:     NewDate(2024, 12, 31),
			wantDue: NewDate(2025, 1, 31),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Bill{
				ID:           "b1",
				UserID:       "u1",
				Title:        "Rent",
				Amount:       Money{Cents: 120000},
				DueDate:      tt.due,
				Repeat:       RepeatMonthly,
				ReminderDays: ReminderDays{7, 1},
				Notes:        "flat 4",
				Type:         "rent",
			}

			paid, next, err := MarkPaid(b, staticID("b2"))
			if err != nil {
				t.Fatalf("expected ok, got %v", err)
			}
			if !paid.IsPaid {
				t.Fatalf("expected paid occurrence retained as history")
			}
			if next == nil {
				t.Fatalf("expected a successor occurrence")
			}
			if !next.DueDate.Equal(tt.wantDue) {
				t.Errorf("successor due = %v, want %v", next.DueDate, tt.wantDue)
			}
			if next.IsPaid {
				t.Errorf("successor must start unpaid")
			}
			if next.ID == paid.ID || next.ID != "b2" {
				t.Errorf("successor needs a fresh identifier, got %q", next.ID)
			}
			if next.Title != b.Title || next.Amount != b.Amount || next.Repeat != b.Repeat ||
				next.Notes != b.Notes || next.Type != b.Type || next.UserID != b.UserID {
				t.Errorf("successor must copy bill fields, got %+v", next)
			}
			if next.ReminderDays.String() != b.ReminderDays.String() {
				t.Errorf("successor reminder days = %v, want %v", next.ReminderDays, b.ReminderDays)
			}
		})
	}
}

func TestMarkPaidWeeklyAndYearly(t *testing.T) {
	weekly := Bill{ID: "w", Title: "Cleaner", DueDate: NewDate(2024, 3, 28), Repeat: RepeatWeekly}
	_, next, err := MarkPaid(weekly, staticID("w2"))
	if err != nil || next == nil {
		t.Fatalf("weekly: unexpected %v %v", next, err)
	}
	if !next.DueDate.Equal(NewDate(2024, 4, 4)) {
		t.Fatalf("weekly successor due = %v, want 2024-04-04", next.DueDate)
	}

	yearly := Bill{ID: "y", Title: "Insurance", DueDate: NewDate(2024, 2, 29), Repeat: RepeatYearly}
	_, next, err = MarkPaid(yearly, staticID("y2"))
	if err != nil || next == nil {
		t.Fatalf("yearly: unexpected %v %v", next, err)
	}
	if !next.DueDate.Equal(NewDate(2025, 2, 28)) {
		t.Fatalf("yearly successor due = %v, want 2025-02-28", next.DueDate)
	}
}

func TestGetAdvancer(t *testing.T) {
	if _, err := GetAdvancer(RepeatNone); err == nil {
		t.Fatalf("expected error for non-recurring interval")
	}
	if _, err := GetAdvancer(RepeatMonthly); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
}

type everyOtherDay struct{}

func (everyOtherDay) NextDue(due Date) Date { return due.AddDays(2) }

func TestRegisterAdvancer(t *testing.T) {
	RegisterAdvancer(RepeatInterval("bidaily"), everyOtherDay{})
	defer delete(advancers, RepeatInterval("bidaily"))

	adv, err := GetAdvancer(RepeatInterval("bidaily"))
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if got := adv.NextDue(NewDate(2024, 1, 1)); !got.Equal(NewDate(2024, 1, 3)) {
		t.Fatalf("got %v, want 2024-01-03", got)
	}
}
