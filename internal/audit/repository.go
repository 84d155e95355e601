package audit

import (
	"sync"
)

// Repository is the local, append-only mirror of the audit trail. The ledger
// log channel is the source of truth; this mirror exists so the API can serve
// audit history without a mirror-node round trip.
type Repository interface {
	// Append records an entry. Records are immutable once appended.
	Append(rec Record) error

	// QueryByAction returns records for an action, newest first.
	// limit 0 means no limit.
	QueryByAction(action string, limit int) ([]Record, error)

	// Recent returns the most recent records, newest first.
	// limit 0 means no limit.
	Recent(limit int) ([]Record, error)
}

// InMemoryRepository is a thread-safe in-memory Repository. Used in tests and
// as the default mirror when no database is configured.
type InMemoryRepository struct {
	mu      sync.RWMutex
	records []Record
}

// NewInMemoryRepository creates an empty in-memory audit mirror.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

// Append records an entry after validation.
func (r *InMemoryRepository) Append(rec Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	r.records = append(r.records, rec)
	r.mu.Unlock()
	return nil
}

// QueryByAction returns records for an action, newest first.
func (r *InMemoryRepository) QueryByAction(action string, limit int) ([]Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var results []Record
	for i := len(r.records) - 1; i >= 0; i-- {
		if r.records[i].Action != action {
			continue
		}
		results = append(results, r.records[i])
		if limit > 0 && len(results) >= limit {
			break
		}
	}
	return results, nil
}

// Recent returns the most recent records, newest first.
func (r *InMemoryRepository) Recent(limit int) ([]Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := len(r.records)
	if limit > 0 && limit < n {
		n = limit
	}
	results := make([]Record, 0, n)
	for i := len(r.records) - 1; i >= 0 && len(results) < n; i-- {
		results = append(results, r.records[i])
	}
	return results, nil
}

// Len returns the number of appended records.
func (r *InMemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}
