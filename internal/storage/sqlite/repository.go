// Package sqlite implements the bill store on an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"smartdues/internal/core"
	"smartdues/internal/storage"
)

var _ storage.Store = (*Repository)(nil)

type Repository struct {
	db *sql.DB
}

// Open runs migrations and returns a ready repository.
func Open(dbPath string) (*Repository, error) {
	if err := RunMigrations(dbPath); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// modernc.org/sqlite serializes writes; a single connection avoids
	// SQLITE_BUSY under concurrent handlers.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) CreateUser(ctx context.Context, u core.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, phone) VALUES (?, ?, ?, ?)`,
		u.ID, u.Email, u.PasswordHash, u.Phone)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: users.email") {
			return storage.ErrEmailExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *Repository) GetUser(ctx context.Context, id string) (core.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, phone FROM users WHERE id = ?`, id))
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, phone FROM users WHERE email = ?`, email))
}

func (r *Repository) scanUser(row *sql.Row) (core.User, error) {
	var u core.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Phone)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, core.ErrUserNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}

const billColumns = `id, user_id, title, amount_cents, due_date, is_paid, repeat_interval, reminder_days, notes, bill_type`

func (r *Repository) CreateBill(ctx context.Context, b core.Bill) error {
	return insertBill(ctx, r.db, b)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertBill(ctx context.Context, db execer, b core.Bill) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO bills (`+billColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.UserID, b.Title, b.Amount.Cents, b.DueDate.String(), b.IsPaid,
		string(b.Repeat), b.ReminderDays.String(), b.Notes, b.Type)
	if err != nil {
		return fmt.Errorf("insert bill: %w", err)
	}
	return nil
}

func (r *Repository) GetBill(ctx context.Context, id string) (core.Bill, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+billColumns+` FROM bills WHERE id = ?`, id)
	b, err := scanBill(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Bill{}, core.ErrBillNotFound
	}
	return b, err
}

func (r *Repository) ListBills(ctx context.Context, userID string) ([]core.Bill, error) {
	return r.queryBills(ctx,
		`SELECT `+billColumns+` FROM bills WHERE user_id = ? ORDER BY due_date, title`, userID)
}

func (r *Repository) ListUnpaidBills(ctx context.Context) ([]core.Bill, error) {
	return r.queryBills(ctx,
		`SELECT `+billColumns+` FROM bills WHERE is_paid = 0 ORDER BY due_date, title`)
}

func (r *Repository) queryBills(ctx context.Context, query string, args ...any) ([]core.Bill, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query bills: %w", err)
	}
	defer rows.Close()

	var out []core.Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBill(row rowScanner) (core.Bill, error) {
	var (
		b         core.Bill
		dueDate   string
		repeat    string
		reminders string
	)
	err := row.Scan(&b.ID, &b.UserID, &b.Title, &b.Amount.Cents, &dueDate,
		&b.IsPaid, &repeat, &reminders, &b.Notes, &b.Type)
	if err != nil {
		return core.Bill{}, err
	}
	b.DueDate, err = core.ParseDate(dueDate)
	if err != nil {
		return core.Bill{}, fmt.Errorf("bill %s: bad due date %q", b.ID, dueDate)
	}
	b.Repeat = core.RepeatInterval(repeat)
	b.ReminderDays, err = core.ParseReminderDays(reminders)
	if err != nil {
		return core.Bill{}, fmt.Errorf("bill %s: bad reminder days %q", b.ID, reminders)
	}
	return b, nil
}

// MarkPaid applies the paid update, the optional successor insert and the
// payment record in one transaction.
func (r *Repository) MarkPaid(ctx context.Context, paid core.Bill, next *core.Bill, payment core.Payment) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin mark-paid transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE bills SET is_paid = ? WHERE id = ?`, paid.IsPaid, paid.ID)
	if err != nil {
		return fmt.Errorf("update bill: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.ErrBillNotFound
	}

	if next != nil {
		if err := insertBill(ctx, tx, *next); err != nil {
			return err
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO payments (id, user_id, bill_id, amount_cents, method, notes, paid_on)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		payment.ID, payment.UserID, payment.BillID, payment.Amount.Cents,
		payment.Method, payment.Notes, payment.PaidOn.UTC())
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}

	return tx.Commit()
}

func (r *Repository) ListPayments(ctx context.Context, userID string) ([]core.Payment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, bill_id, amount_cents, method, notes, paid_on
		 FROM payments WHERE user_id = ? ORDER BY paid_on DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query payments: %w", err)
	}
	defer rows.Close()

	var out []core.Payment
	for rows.Next() {
		var p core.Payment
		if err := rows.Scan(&p.ID, &p.UserID, &p.BillID, &p.Amount.Cents,
			&p.Method, &p.Notes, &p.PaidOn); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repository) LogReminder(ctx context.Context, entry storage.ReminderLog) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO reminders_log (user_id, bill_id, days_before, sent_on, channel, sent_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entry.UserID, entry.BillID, entry.DaysBefore, entry.SentOn.String(),
		entry.Channel, entry.SentAt.UTC())
	if err != nil {
		return fmt.Errorf("insert reminder log: %w", err)
	}
	return nil
}

func (r *Repository) ReminderAlreadySent(ctx context.Context, billID string, daysBefore int, on core.Date) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM reminders_log WHERE bill_id = ? AND days_before = ? AND sent_on = ?`,
		billID, daysBefore, on.String()).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query reminder log: %w", err)
	}
	return true, nil
}
