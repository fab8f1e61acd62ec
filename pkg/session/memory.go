// Package session provides implementations of the per-customer session
// store: in-memory for a single process, Redis- and Postgres-backed for
// deployments that want sessions to outlive the process.
//
// All implementations serialize mutations per customer identity, so two
// feedback items for the same customer arriving concurrently cannot lose
// updates; operations on different identities do not contend.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/otherjamesbrown/feedback-triage/pkg/triage"
)

// memoryEntry guards one customer's session record. The entry-level mutex
// keeps per-identity mutations serial without contending across identities.
type memoryEntry struct {
	mu   sync.Mutex
	sess triage.Session
}

// MemoryStore is the in-process session store. Sessions live for the
// lifetime of the process and are never evicted.
type MemoryStore struct {
	mu      sync.Mutex // guards the entries map only
	entries map[string]*memoryEntry

	// now is swappable in tests.
	now func() time.Time
}

// NewMemoryStore creates an empty in-process session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) entry(customerID string) *memoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[customerID]
	if !ok {
		e = &memoryEntry{sess: triage.Session{
			CustomerID: customerID,
			CreatedAt:  s.now().UTC(),
		}}
		s.entries[customerID] = e
	}
	return e
}

// GetOrCreate implements triage.SessionStore. Repeated calls for the same
// identity return the same logical record.
func (s *MemoryStore) GetOrCreate(_ context.Context, customerID string) (*triage.Session, error) {
	e := s.entry(customerID)
	e.mu.Lock()
	defer e.mu.Unlock()
	out := e.sess
	return &out, nil
}

// Update implements triage.SessionStore. Set fields of the patch are
// merged into the existing record; a minimal record is created if none
// exists.
func (s *MemoryStore) Update(_ context.Context, customerID string, patch triage.SessionPatch) (*triage.Session, error) {
	e := s.entry(customerID)
	e.mu.Lock()
	defer e.mu.Unlock()

	if patch.EscalationCount != nil {
		e.sess.EscalationCount = *patch.EscalationCount
	}
	if patch.DisplayName != nil {
		e.sess.DisplayName = *patch.DisplayName
	}
	if patch.LastSeenAt != nil {
		t := patch.LastSeenAt.UTC()
		e.sess.LastSeenAt = &t
	}

	out := e.sess
	return &out, nil
}
