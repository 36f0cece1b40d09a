// Package sheets defines the payments ledger port served by the Google
// Sheets and in-memory adapters.
package sheets

import "context"

// LedgerEntry is one exported payment row.
type LedgerEntry struct {
	PaidOn  string // RFC 3339 timestamp of the payment
	Title   string
	Amount  string // decimal string, e.g. "1200.50"
	BillID  string
	UserID  string
	NextDue string // ISO date of the successor occurrence, empty for one-shot bills
}

// LedgerAppender appends payment rows to an external ledger.
type LedgerAppender interface {
	Append(ctx context.Context, entry LedgerEntry) (rowRef string, err error)
}
