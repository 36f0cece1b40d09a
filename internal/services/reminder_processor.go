package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"smartdues/internal/amqp"
	"smartdues/internal/core"
	"smartdues/internal/storage"
)

// ReminderProcessor scans unpaid bills and publishes one reminder event per
// matching offset, at most once per (bill, offset, calendar date).
type ReminderProcessor struct {
	store     storage.Store
	publisher Publisher
	now       func() time.Time
}

func NewReminderProcessor(store storage.Store, publisher Publisher) *ReminderProcessor {
	return &ReminderProcessor{
		store:     store,
		publisher: publisher,
		now:       time.Now,
	}
}

// WithClock overrides the time source, for tests.
func (p *ReminderProcessor) WithClock(now func() time.Time) *ReminderProcessor {
	p.now = now
	return p
}

// ProcessDueReminders runs one reminder scan and returns how many
// reminders were published.
func (p *ReminderProcessor) ProcessDueReminders(ctx context.Context) (int, error) {
	today := core.DateOf(p.now().UTC())

	bills, err := p.store.ListUnpaidBills(ctx)
	if err != nil {
		return 0, fmt.Errorf("list unpaid bills: %w", err)
	}

	published := 0
	for _, b := range bills {
		for _, offset := range b.ReminderDays.Normalize() {
			fireOn := b.DueDate.AddDays(-offset)
			if !fireOn.Equal(today) {
				continue
			}

			sent, err := p.store.ReminderAlreadySent(ctx, b.ID, offset, today)
			if err != nil {
				return published, fmt.Errorf("check reminder log: %w", err)
			}
			if sent {
				continue
			}

			if err := p.publishReminder(ctx, b, offset); err != nil {
				slog.ErrorContext(ctx, "failed to publish reminder",
					"bill_id", b.ID, "days_before", offset, "error", err)
				continue
			}

			if err := p.store.LogReminder(ctx, storage.ReminderLog{
				UserID:     b.UserID,
				BillID:     b.ID,
				DaysBefore: offset,
				SentOn:     today,
				Channel:    "email",
				SentAt:     p.now().UTC(),
			}); err != nil {
				return published, fmt.Errorf("log reminder: %w", err)
			}
			published++
		}
	}

	if published > 0 {
		slog.InfoContext(ctx, "reminder scan complete",
			"published", published, "date", today.String())
	}
	return published, nil
}

func (p *ReminderProcessor) publishReminder(ctx context.Context, b core.Bill, offset int) error {
	if p.publisher == nil {
		return fmt.Errorf("no publisher configured")
	}

	email := ""
	if user, err := p.store.GetUser(ctx, b.UserID); err == nil {
		email = user.Email
	}

	return p.publisher.Publish(ctx, amqp.KindReminderDue, amqp.ReminderDueMessage{
		UserID:     b.UserID,
		Email:      email,
		BillID:     b.ID,
		Title:      b.Title,
		Amount:     b.Amount.String(),
		DueDate:    b.DueDate.String(),
		DaysBefore: offset,
	})
}
