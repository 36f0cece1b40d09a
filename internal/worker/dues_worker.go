// Package worker handles dues events consumed from the queue: reminder
// delivery over email and payment export to the ledger.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"smartdues/internal/amqp"
	"smartdues/internal/notify"
	"smartdues/internal/sheets"
)

// DuesWorker dispatches dues events to their handlers.
type DuesWorker struct {
	sender notify.Sender
	ledger sheets.LedgerAppender
}

func NewDuesWorker(sender notify.Sender, ledger sheets.LedgerAppender) *DuesWorker {
	return &DuesWorker{sender: sender, ledger: ledger}
}

// Handle processes one envelope from the queue. Unknown kinds are dropped
// without error so old messages never wedge the queue.
func (w *DuesWorker) Handle(ctx context.Context, env *amqp.Envelope) error {
	switch env.Kind {
	case amqp.KindReminderDue:
		var msg amqp.ReminderDueMessage
		if err := env.Decode(&msg); err != nil {
			return err
		}
		return w.handleReminderDue(ctx, msg)
	case amqp.KindPaymentRecorded:
		var msg amqp.PaymentRecordedMessage
		if err := env.Decode(&msg); err != nil {
			return err
		}
		return w.handlePaymentRecorded(ctx, msg)
	default:
		slog.WarnContext(ctx, "dropping event of unknown kind", "kind", env.Kind)
		return nil
	}
}

func (w *DuesWorker) handleReminderDue(ctx context.Context, msg amqp.ReminderDueMessage) error {
	if msg.Email == "" {
		slog.WarnContext(ctx, "reminder without recipient address, dropping",
			"bill_id", msg.BillID)
		return nil
	}

	subject := fmt.Sprintf("Reminder: %s due on %s", msg.Title, msg.DueDate)
	body := fmt.Sprintf(
		"Your bill %q (%s) is due on %s, %d day(s) from now.\n",
		msg.Title, msg.Amount, msg.DueDate, msg.DaysBefore)
	if msg.DaysBefore == 0 {
		body = fmt.Sprintf("Your bill %q (%s) is due today, %s.\n",
			msg.Title, msg.Amount, msg.DueDate)
	}

	if err := w.sender.Send(ctx, msg.Email, subject, body); err != nil {
		return fmt.Errorf("deliver reminder for bill %s: %w", msg.BillID, err)
	}
	return nil
}

func (w *DuesWorker) handlePaymentRecorded(ctx context.Context, msg amqp.PaymentRecordedMessage) error {
	if w.ledger == nil {
		slog.WarnContext(ctx, "no ledger configured, skipping payment export",
			"payment_id", msg.PaymentID)
		return nil
	}

	ref, err := w.ledger.Append(ctx, sheets.LedgerEntry{
		PaidOn:  msg.PaidOn,
		Title:   msg.Title,
		Amount:  msg.Amount,
		BillID:  msg.BillID,
		UserID:  msg.UserID,
		NextDue: msg.NextDue,
	})
	if err != nil {
		return fmt.Errorf("export payment %s to ledger: %w", msg.PaymentID, err)
	}

	slog.InfoContext(ctx, "exported payment to ledger",
		"payment_id", msg.PaymentID, "row", ref)
	return nil
}
