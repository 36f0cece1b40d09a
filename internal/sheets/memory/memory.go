// Package memory provides an in-memory ledger for development and tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	ports "smartdues/internal/sheets"
)

type Ledger struct {
	mu      sync.Mutex
	entries []ports.LedgerEntry
}

var _ ports.LedgerAppender = (*Ledger)(nil)

func New() *Ledger {
	return &Ledger{}
}

// Append stores the entry and returns a synthetic row reference.
func (l *Ledger) Append(_ context.Context, entry ports.LedgerEntry) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
	return fmt.Sprintf("mem:%d", len(l.entries)), nil
}

// Entries returns a copy of everything appended so far.
func (l *Ledger) Entries() []ports.LedgerEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]ports.LedgerEntry(nil), l.entries...)
}
