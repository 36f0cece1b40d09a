package services

import (
	"context"
	"testing"

	"smartdues/internal/amqp"
	"smartdues/internal/core"
	"smartdues/internal/storage/memory"
)

func seedReminderFixture(t *testing.T, store *memory.Store) {
	t.Helper()
	ctx := context.Background()
	if err := store.CreateUser(ctx, core.User{ID: "u1", Email: "a@example.com"}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	bills := []core.Bill{
		// Due in 7 days: the 7-day offset fires today.
		{ID: "b1", UserID: "u1", Title: "Rent", Amount: core.Money{Cents: 120000},
			DueDate: core.NewDate(2024, 3, 17), ReminderDays: core.ReminderDays{7, 1}},
		// Due tomorrow: the 1-day offset fires today.
		{ID: "b2", UserID: "u1", Title: "Netflix", Amount: core.Money{Cents: 1500},
			DueDate: core.NewDate(2024, 3, 11), ReminderDays: core.ReminderDays{1}},
		// Due in 3 days but only a 7-day offset: nothing today.
		{ID: "b3", UserID: "u1", Title: "Water", Amount: core.Money{Cents: 3000},
			DueDate: core.NewDate(2024, 3, 13), ReminderDays: core.ReminderDays{7}},
		// Paid bills never remind.
		{ID: "b4", UserID: "u1", Title: "Gym", Amount: core.Money{Cents: 2000},
			DueDate: core.NewDate(2024, 3, 17), ReminderDays: core.ReminderDays{7}, IsPaid: true},
		// No reminder days configured.
		{ID: "b5", UserID: "u1", Title: "Deposit", Amount: core.Money{Cents: 50000},
			DueDate: core.NewDate(2024, 3, 17)},
	}
	for _, b := range bills {
		if err := store.CreateBill(ctx, b); err != nil {
			t.Fatalf("seed %s: %v", b.ID, err)
		}
	}
}

func TestProcessDueReminders(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	seedReminderFixture(t, store)
	pub := &capturePublisher{}
	proc := NewReminderProcessor(store, pub).
		WithClock(fixedClock(core.NewDate(2024, 3, 10)))

	n, err := proc.ProcessDueReminders(ctx)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if n != 2 {
		t.Fatalf("published = %d, want 2", n)
	}

	seen := map[string]int{}
	for _, payload := range pub.payloads {
		msg := payload.(amqp.ReminderDueMessage)
		seen[msg.BillID] = msg.DaysBefore
		if msg.Email != "a@example.com" {
			t.Errorf("bill %s: email = %q", msg.BillID, msg.Email)
		}
	}
	if seen["b1"] != 7 || seen["b2"] != 1 {
		t.Fatalf("wrong reminders fired: %v", seen)
	}
}

func TestProcessDueRemindersIdempotentPerDay(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	seedReminderFixture(t, store)
	pub := &capturePublisher{}
	proc := NewReminderProcessor(store, pub).
		WithClock(fixedClock(core.NewDate(2024, 3, 10)))

	if _, err := proc.ProcessDueReminders(ctx); err != nil {
		t.Fatalf("first run: %v", err)
	}
	n, err := proc.ProcessDueReminders(ctx)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if n != 0 {
		t.Fatalf("second run on the same day must publish nothing, got %d", n)
	}
}

func TestProcessDueRemindersFollowsDueDate(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	seedReminderFixture(t, store)
	pub := &capturePublisher{}

	// Three days later the 7-day offset for b3 (due 3/13) is long past and
	// b2 is due today with only a 1-day offset; b1's 1-day offset hasn't
	// arrived yet. Nothing fires.
	proc := NewReminderProcessor(store, pub).
		WithClock(fixedClock(core.NewDate(2024, 3, 13)))
	n, err := proc.ProcessDueReminders(ctx)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if n != 0 {
		t.Fatalf("published = %d, want 0", n)
	}

	// On 3/16 b1's 1-day offset fires.
	proc.WithClock(fixedClock(core.NewDate(2024, 3, 16)))
	n, err = proc.ProcessDueReminders(ctx)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if n != 1 {
		t.Fatalf("published = %d, want 1", n)
	}
	msg := pub.payloads[0].(amqp.ReminderDueMessage)
	if msg.BillID != "b1" || msg.DaysBefore != 1 {
		t.Fatalf("wrong reminder: %+v", msg)
	}
}
