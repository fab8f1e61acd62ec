// Package memory provides implementations of the append-only per-customer
// feedback history: in-memory for a single process, Redis- and
// Postgres-backed variants for deployments that want the log to outlive
// the process.
//
// Records are never mutated or removed after append; ReadAll always
// returns them in append order.
package memory

import (
	"context"
	"sync"

	"github.com/otherjamesbrown/feedback-triage/pkg/triage"
)

// MemoryLog is the in-process memory log. History lives for the lifetime
// of the process; unbounded growth is accepted.
type MemoryLog struct {
	mu      sync.Mutex // guards the records map only
	records map[string]*customerLog
}

// customerLog serializes appends per identity so concurrent items for the
// same customer cannot interleave, without contending across identities.
type customerLog struct {
	mu   sync.Mutex
	recs []triage.MemoryRecord
}

// NewMemoryLog creates an empty in-process memory log.
func NewMemoryLog() *MemoryLog {
	return &MemoryLog{records: make(map[string]*customerLog)}
}

func (l *MemoryLog) forCustomer(customerID string) *customerLog {
	l.mu.Lock()
	defer l.mu.Unlock()
	cl, ok := l.records[customerID]
	if !ok {
		cl = &customerLog{}
		l.records[customerID] = cl
	}
	return cl
}

// Append implements triage.MemoryLog.
func (l *MemoryLog) Append(_ context.Context, customerID string, rec triage.MemoryRecord) error {
	cl := l.forCustomer(customerID)
	cl.mu.Lock()
	defer cl.mu.Unlock()
	cl.recs = append(cl.recs, rec)
	return nil
}

// ReadAll implements triage.MemoryLog.
func (l *MemoryLog) ReadAll(_ context.Context, customerID string) ([]triage.MemoryRecord, error) {
	cl := l.forCustomer(customerID)
	cl.mu.Lock()
	defer cl.mu.Unlock()
	out := make([]triage.MemoryRecord, len(cl.recs))
	copy(out, cl.recs)
	return out, nil
}
