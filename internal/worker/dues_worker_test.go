package worker

import (
	"context"
	"errors"
	"strings"
	"testing"

	"smartdues/internal/amqp"
	sheetsmem "smartdues/internal/sheets/memory"
)

type captureSender struct {
	to      []string
	subject []string
	body    []string
	err     error
}

func (c *captureSender) Send(_ context.Context, to, subject, body string) error {
	if c.err != nil {
		return c.err
	}
	c.to = append(c.to, to)
	c.subject = append(c.subject, subject)
	c.body = append(c.body, body)
	return nil
}

func TestHandleReminderDue(t *testing.T) {
	sender := &captureSender{}
	w := NewDuesWorker(sender, sheetsmem.New())

	env, err := amqp.NewEnvelope(amqp.KindReminderDue, amqp.ReminderDueMessage{
		UserID:     "u1",
		Email:      "a@example.com",
		BillID:     "b1",
		Title:      "Rent",
		Amount:     "1200.00",
		DueDate:    "2024-03-15",
		DaysBefore: 3,
	})
	if err != nil {
		t.Fatalf("wrap: %v", err)
	}

	if err := w.Handle(context.Background(), env); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(sender.to) != 1 || sender.to[0] != "a@example.com" {
		t.Fatalf("wrong recipients: %v", sender.to)
	}
	if !strings.Contains(sender.subject[0], "Rent") || !strings.Contains(sender.subject[0], "2024-03-15") {
		t.Errorf("subject missing bill details: %q", sender.subject[0])
	}
	if !strings.Contains(sender.body[0], "3 day(s)") {
		t.Errorf("body missing offset: %q", sender.body[0])
	}
}

func TestHandleReminderWithoutRecipient(t *testing.T) {
	sender := &captureSender{}
	w := NewDuesWorker(sender, nil)

	env, _ := amqp.NewEnvelope(amqp.KindReminderDue, amqp.ReminderDueMessage{BillID: "b1"})
	if err := w.Handle(context.Background(), env); err != nil {
		t.Fatalf("missing recipient must be dropped, not requeued: %v", err)
	}
	if len(sender.to) != 0 {
		t.Fatalf("nothing should be sent")
	}
}

func TestHandleReminderDeliveryFailureRequeues(t *testing.T) {
	sender := &captureSender{err: errors.New("relay down")}
	w := NewDuesWorker(sender, nil)

	env, _ := amqp.NewEnvelope(amqp.KindReminderDue, amqp.ReminderDueMessage{
		Email: "a@example.com", BillID: "b1", Title: "Rent",
	})
	if err := w.Handle(context.Background(), env); err == nil {
		t.Fatalf("delivery failure must propagate for requeue")
	}
}

func TestHandlePaymentRecorded(t *testing.T) {
	ledger := sheetsmem.New()
	w := NewDuesWorker(&captureSender{}, ledger)

	env, err := amqp.NewEnvelope(amqp.KindPaymentRecorded, amqp.PaymentRecordedMessage{
		UserID:    "u1",
		BillID:    "b1",
		PaymentID: "p1",
		Title:     "Rent",
		Amount:    "1200.00",
		PaidOn:    "2024-03-10T09:00:00Z",
		NextDue:   "2024-04-15",
	})
	if err != nil {
		t.Fatalf("wrap: %v", err)
	}

	if err := w.Handle(context.Background(), env); err != nil {
		t.Fatalf("handle: %v", err)
	}

	entries := ledger.Entries()
	if len(entries) != 1 {
		t.Fatalf("ledger rows = %d, want 1", len(entries))
	}
	got := entries[0]
	if got.Title != "Rent" || got.Amount != "1200.00" || got.NextDue != "2024-04-15" {
		t.Fatalf("bad ledger entry: %+v", got)
	}
}

func TestHandleUnknownKindDropped(t *testing.T) {
	w := NewDuesWorker(&captureSender{}, nil)
	env := &amqp.Envelope{Kind: "something.else"}
	if err := w.Handle(context.Background(), env); err != nil {
		t.Fatalf("unknown kind must be dropped without error, got %v", err)
	}
}
