// Package memory provides a mutex-guarded in-memory Store, the default
// backend for development and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"smartdues/internal/core"
	"smartdues/internal/storage"
)

var _ storage.Store = (*Store)(nil)

type Store struct {
	mu        sync.Mutex
	users     map[string]core.User
	bills     map[string]core.Bill
	payments  []core.Payment
	reminders []storage.ReminderLog
}

func New() *Store {
	return &Store{
		users: make(map[string]core.User),
		bills: make(map[string]core.Bill),
	}
}

func (s *Store) CreateUser(_ context.Context, u core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return storage.ErrEmailExists
		}
	}
	s.users[u.ID] = u
	return nil
}

func (s *Store) GetUser(_ context.Context, id string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return core.User{}, core.ErrUserNotFound
	}
	return u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return core.User{}, core.ErrUserNotFound
}

func (s *Store) CreateBill(_ context.Context, b core.Bill) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bills[b.ID]; ok {
		return fmt.Errorf("duplicate bill id %s", b.ID)
	}
	s.bills[b.ID] = b
	return nil
}

func (s *Store) GetBill(_ context.Context, id string) (core.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bills[id]
	if !ok {
		return core.Bill{}, core.ErrBillNotFound
	}
	return b, nil
}

func (s *Store) ListBills(_ context.Context, userID string) ([]core.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Bill
	for _, b := range s.bills {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	sortBills(out)
	return out, nil
}

func (s *Store) ListUnpaidBills(_ context.Context) ([]core.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Bill
	for _, b := range s.bills {
		if !b.IsPaid {
			out = append(out, b)
		}
	}
	sortBills(out)
	return out, nil
}

// MarkPaid applies the paid update, the optional successor insert and the
// payment record under one lock so readers never observe a partial
// transition.
func (s *Store) MarkPaid(_ context.Context, paid core.Bill, next *core.Bill, payment core.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bills[paid.ID]; !ok {
		return core.ErrBillNotFound
	}
	if next != nil {
		if _, ok := s.bills[next.ID]; ok {
			return fmt.Errorf("duplicate bill id %s", next.ID)
		}
	}
	s.bills[paid.ID] = paid
	if next != nil {
		s.bills[next.ID] = *next
	}
	s.payments = append(s.payments, payment)
	return nil
}

func (s *Store) ListPayments(_ context.Context, userID string) ([]core.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Payment
	for _, p := range s.payments {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PaidOn.After(out[j].PaidOn) })
	return out, nil
}

func (s *Store) LogReminder(_ context.Context, entry storage.ReminderLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reminders = append(s.reminders, entry)
	return nil
}

func (s *Store) ReminderAlreadySent(_ context.Context, billID string, daysBefore int, on core.Date) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.reminders {
		if r.BillID == billID && r.DaysBefore == daysBefore && r.SentOn.Equal(on) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) Close() error { return nil }

func sortBills(bills []core.Bill) {
	sort.Slice(bills, func(i, j int) bool {
		if !bills[i].DueDate.Equal(bills[j].DueDate) {
			return bills[i].DueDate.Before(bills[j].DueDate)
		}
		return bills[i].Title < bills[j].Title
	})
}
