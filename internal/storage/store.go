// Package storage defines the bill store port implemented by the memory,
// sqlite and postgres backends.
package storage

import (
	"context"
	"errors"
	"time"

	"smartdues/internal/core"
)

// ErrEmailExists is returned by CreateUser when the email is already
// registered.
var ErrEmailExists = errors.New("email already registered")

// ReminderLog records one delivered reminder so the same (bill, offset,
// date) never fires twice.
type ReminderLog struct {
	UserID     string
	BillID     string
	DaysBefore int
	SentOn     core.Date
	Channel    string
	SentAt     time.Time
}

// Store is the authoritative bill store. Implementations must honor the
// MarkPaid atomicity contract: the paid update, the optional successor
// insert and the payment record become visible together or not at all.
type Store interface {
	CreateUser(ctx context.Context, u core.User) error
	GetUser(ctx context.Context, id string) (core.User, error)
	GetUserByEmail(ctx context.Context, email string) (core.User, error)

	CreateBill(ctx context.Context, b core.Bill) error
	GetBill(ctx context.Context, id string) (core.Bill, error)
	// ListBills returns the user's bills ordered by due date.
	ListBills(ctx context.Context, userID string) ([]core.Bill, error)
	// ListUnpaidBills returns every unpaid bill across users, for the
	// reminder scan.
	ListUnpaidBills(ctx context.Context) ([]core.Bill, error)

	// MarkPaid persists a mark-paid transition atomically. next is nil for
	// non-recurring bills.
	MarkPaid(ctx context.Context, paid core.Bill, next *core.Bill, payment core.Payment) error
	ListPayments(ctx context.Context, userID string) ([]core.Payment, error)

	LogReminder(ctx context.Context, entry ReminderLog) error
	ReminderAlreadySent(ctx context.Context, billID string, daysBefore int, on core.Date) (bool, error)

	Close() error
}
