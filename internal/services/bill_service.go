// Package services orchestrates bill operations across storage, the event
// queue and the pure billing rules.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"smartdues/internal/amqp"
	"smartdues/internal/core"
	"smartdues/internal/storage"
)

// Publisher is the queue side of the bill service. Satisfied by
// *amqp.Client; nil-able via a no-op when the broker is not configured.
type Publisher interface {
	Publish(ctx context.Context, kind string, payload any) error
}

// BillService orchestrates bill operations for the HTTP handlers.
type BillService struct {
	store     storage.Store
	publisher Publisher
	now       func() time.Time
	newID     func() string
}

func NewBillService(store storage.Store, publisher Publisher) *BillService {
	return &BillService{
		store:     store,
		publisher: publisher,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// WithClock overrides the time source, for tests.
func (s *BillService) WithClock(now func() time.Time) *BillService {
	s.now = now
	return s
}

// WithIDGenerator overrides the ID source, for tests.
func (s *BillService) WithIDGenerator(newID func() string) *BillService {
	s.newID = newID
	return s
}

// Today returns the current calendar date.
func (s *BillService) Today() core.Date {
	return core.DateOf(s.now().UTC())
}

// CreateBill validates and stores a new bill, returning it with its
// assigned ID.
func (s *BillService) CreateBill(ctx context.Context, b core.Bill) (core.Bill, error) {
	if err := b.Validate(); err != nil {
		return core.Bill{}, err
	}
	b.ID = s.newID()
	b.IsPaid = false
	if b.Repeat == "" {
		b.Repeat = core.RepeatNone
	}
	b.ReminderDays = b.ReminderDays.Normalize()

	if err := s.store.CreateBill(ctx, b); err != nil {
		return core.Bill{}, fmt.Errorf("save bill: %w", err)
	}
	return b, nil
}

// GetBill returns a bill scoped to its owner.
func (s *BillService) GetBill(ctx context.Context, userID, billID string) (core.Bill, error) {
	b, err := s.store.GetBill(ctx, billID)
	if err != nil {
		return core.Bill{}, err
	}
	if b.UserID != userID {
		return core.Bill{}, core.ErrBillNotFound
	}
	return b, nil
}

// ListBills returns the user's bills with their current status.
func (s *BillService) ListBills(ctx context.Context, userID string) ([]core.Bill, error) {
	return s.store.ListBills(ctx, userID)
}

// MarkPaid marks a bill paid, persists the transition atomically and
// publishes a payment event. For recurring bills the successor occurrence
// is returned alongside the paid one.
func (s *BillService) MarkPaid(ctx context.Context, userID, billID string) (paid core.Bill, next *core.Bill, err error) {
	b, err := s.GetBill(ctx, userID, billID)
	if err != nil {
		return core.Bill{}, nil, err
	}

	paid, next, err = core.MarkPaid(b, s.newID)
	if err != nil {
		return core.Bill{}, nil, err
	}

	payment := core.Payment{
		ID:     s.newID(),
		UserID: userID,
		BillID: paid.ID,
		Amount: paid.Amount,
		PaidOn: s.now().UTC(),
	}

	if err := s.store.MarkPaid(ctx, paid, next, payment); err != nil {
		return core.Bill{}, nil, fmt.Errorf("persist mark-paid: %w", err)
	}

	s.publishPaymentRecorded(ctx, paid, next, payment)

	return paid, next, nil
}

// Dashboard computes the summary over the user's current bills.
func (s *BillService) Dashboard(ctx context.Context, userID string) (core.Summary, error) {
	bills, err := s.store.ListBills(ctx, userID)
	if err != nil {
		return core.Summary{}, fmt.Errorf("load bills: %w", err)
	}
	return core.Aggregate(bills, s.Today()), nil
}

// ListPayments returns the user's payment history, newest first.
func (s *BillService) ListPayments(ctx context.Context, userID string) ([]core.Payment, error) {
	return s.store.ListPayments(ctx, userID)
}

func (s *BillService) publishPaymentRecorded(ctx context.Context, paid core.Bill, next *core.Bill, payment core.Payment) {
	if s.publisher == nil {
		return
	}

	msg := amqp.PaymentRecordedMessage{
		UserID:    payment.UserID,
		BillID:    paid.ID,
		PaymentID: payment.ID,
		Title:     paid.Title,
		Amount:    paid.Amount.String(),
		PaidOn:    payment.PaidOn.Format(time.RFC3339),
	}
	if next != nil {
		msg.NextDue = next.DueDate.String()
	}

	// Best effort: the payment is already persisted.
	if err := s.publisher.Publish(ctx, amqp.KindPaymentRecorded, msg); err != nil {
		slog.ErrorContext(ctx, "failed to publish payment event",
			"bill_id", paid.ID, "error", err)
	}
}
