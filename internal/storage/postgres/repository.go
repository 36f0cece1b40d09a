// Package postgres implements the bill store on PostgreSQL via pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"smartdues/internal/core"
	"smartdues/internal/storage"
)

var _ storage.Store = (*Repository)(nil)

type Repository struct {
	pool *pgxpool.Pool
}

// Open connects, bootstraps the schema and returns a ready repository.
func Open(ctx context.Context, connURL string) (*Repository, error) {
	conf, err := pgxpool.ParseConfig(connURL)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	conf.HealthCheckPeriod = 15 * time.Second
	conf.ConnConfig.ConnectTimeout = 5 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, conf)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}
	r := &Repository{pool: pool}
	if err := r.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return r, nil
}

func (r *Repository) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		phone TEXT NOT NULL DEFAULT ''
	);
	CREATE TABLE IF NOT EXISTS bills (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id),
		title TEXT NOT NULL,
		amount_cents BIGINT NOT NULL,
		due_date DATE NOT NULL,
		is_paid BOOLEAN NOT NULL DEFAULT FALSE,
		repeat_interval TEXT NOT NULL DEFAULT 'none',
		reminder_days TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		bill_type TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_bills_user ON bills(user_id);
	CREATE INDEX IF NOT EXISTS idx_bills_unpaid ON bills(is_paid, due_date);
	CREATE TABLE IF NOT EXISTS payments (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id),
		bill_id TEXT NOT NULL REFERENCES bills(id),
		amount_cents BIGINT NOT NULL,
		method TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		paid_on TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_payments_user ON payments(user_id);
	CREATE TABLE IF NOT EXISTS reminders_log (
		user_id TEXT NOT NULL,
		bill_id TEXT NOT NULL,
		days_before INT NOT NULL,
		sent_on DATE NOT NULL,
		channel TEXT NOT NULL DEFAULT 'email',
		sent_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (bill_id, days_before, sent_on)
	);`
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate postgres schema: %w", err)
	}
	return nil
}

func (r *Repository) Close() error {
	r.pool.Close()
	return nil
}

func (r *Repository) CreateUser(ctx context.Context, u core.User) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO users (id, email, password_hash, phone) VALUES ($1, $2, $3, $4)`,
		u.ID, u.Email, u.PasswordHash, u.Phone)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return storage.ErrEmailExists
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *Repository) GetUser(ctx context.Context, id string) (core.User, error) {
	return r.scanUser(r.pool.QueryRow(ctx,
		`SELECT id, email, password_hash, phone FROM users WHERE id = $1`, id))
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	return r.scanUser(r.pool.QueryRow(ctx,
		`SELECT id, email, password_hash, phone FROM users WHERE email = $1`, email))
}

func (r *Repository) scanUser(row pgx.Row) (core.User, error) {
	var u core.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Phone)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.User{}, core.ErrUserNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}

const billColumns = `id, user_id, title, amount_cents, due_date, is_paid, repeat_interval, reminder_days, notes, bill_type`

func (r *Repository) CreateBill(ctx context.Context, b core.Bill) error {
	_, err := r.pool.Exec(ctx, insertBillSQL, billArgs(b)...)
	if err != nil {
		return fmt.Errorf("insert bill: %w", err)
	}
	return nil
}

const insertBillSQL = `INSERT INTO bills (` + billColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

func billArgs(b core.Bill) []any {
	return []any{b.ID, b.UserID, b.Title, b.Amount.Cents, b.DueDate.Time, b.IsPaid,
		string(b.Repeat), b.ReminderDays.String(), b.Notes, b.Type}
}

func (r *Repository) GetBill(ctx context.Context, id string) (core.Bill, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+billColumns+` FROM bills WHERE id = $1`, id)
	b, err := scanBill(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Bill{}, core.ErrBillNotFound
	}
	return b, err
}

func (r *Repository) ListBills(ctx context.Context, userID string) ([]core.Bill, error) {
	return r.queryBills(ctx,
		`SELECT `+billColumns+` FROM bills WHERE user_id = $1 ORDER BY due_date, title`, userID)
}

func (r *Repository) ListUnpaidBills(ctx context.Context) ([]core.Bill, error) {
	return r.queryBills(ctx,
		`SELECT `+billColumns+` FROM bills WHERE NOT is_paid ORDER BY due_date, title`)
}

func (r *Repository) queryBills(ctx context.Context, query string, args ...any) ([]core.Bill, error) {
	rows, err := r.pool.Query(ctx, query, args...)
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

func scanBill(row pgx.Row) (core.Bill, error) {
	var (
		b         core.Bill
		dueDate   time.Time
		repeat    string
		reminders string
	)
	err := row.Scan(&b.ID, &b.UserID, &b.Title, &b.Amount.Cents, &dueDate,
		&b.IsPaid, &repeat, &reminders, &b.Notes, &b.Type)
	if err != nil {
		return core.Bill{}, err
	}
	b.DueDate = core.DateOf(dueDate.UTC())
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
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin mark-paid transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE bills SET is_paid = $1 WHERE id = $2`, paid.IsPaid, paid.ID)
	if err != nil {
		return fmt.Errorf("update bill: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrBillNotFound
	}

	if next != nil {
		if _, err := tx.Exec(ctx, insertBillSQL, billArgs(*next)...); err != nil {
			return fmt.Errorf("insert successor bill: %w", err)
		}
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO payments (id, user_id, bill_id, amount_cents, method, notes, paid_on)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		payment.ID, payment.UserID, payment.BillID, payment.Amount.Cents,
		payment.Method, payment.Notes, payment.PaidOn.UTC())
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *Repository) ListPayments(ctx context.Context, userID string) ([]core.Payment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, bill_id, amount_cents, method, notes, paid_on
		 FROM payments WHERE user_id = $1 ORDER BY paid_on DESC`, userID)
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
	_, err := r.pool.Exec(ctx,
		`INSERT INTO reminders_log (user_id, bill_id, days_before, sent_on, channel, sent_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT DO NOTHING`,
		entry.UserID, entry.BillID, entry.DaysBefore, entry.SentOn.Time,
		entry.Channel, entry.SentAt.UTC())
	if err != nil {
		return fmt.Errorf("insert reminder log: %w", err)
	}
	return nil
}

func (r *Repository) ReminderAlreadySent(ctx context.Context, billID string, daysBefore int, on core.Date) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM reminders_log
			WHERE bill_id = $1 AND days_before = $2 AND sent_on = $3
		)`, billID, daysBefore, on.Time).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query reminder log: %w", err)
	}
	return exists, nil
}
