// Package idgen allocates the process-local and globally-unique ids the
// rest of the module needs: per-connection nids/eids (small recycled
// integers, cheap to replicate) and ticket/map-instance ids (globally
// unique, persisted).
package idgen

import (
	"sync"

	"github.com/google/uuid"
)

// TicketID returns a fresh globally-unique join ticket id.
func TicketID() string {
	return uuid.NewString()
}

// MapInstanceID returns a fresh globally-unique map instance id.
func MapInstanceID() string {
	return uuid.NewString()
}

// InternalRPCSecret returns a fresh shared secret for orchestrator<->map
// internal RPC authentication.
func InternalRPCSecret() string {
	return uuid.NewString()
}

// Recycler hands out small integer ids (nid/eid/pid-scoped), reusing ids
// freed by Release instead of growing without bound — connections churn
// far more often than a process lives, and the wire format budgets these
// as compact integers.
type Recycler struct {
	mu   sync.Mutex
	next uint32
	free []uint32
}

// NewRecycler creates a Recycler that starts handing out ids at startAt.
func NewRecycler(startAt uint32) *Recycler {
	return &Recycler{next: startAt}
}

// Acquire returns the next available id, reusing a released one if any.
func (r *Recycler) Acquire() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n := len(r.free); n > 0 {
		id := r.free[n-1]
		r.free = r.free[:n-1]
		return id
	}
	id := r.next
	r.next++
	return id
}

// Release returns id to the free pool for future reuse.
func (r *Recycler) Release(id uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.free = append(r.free, id)
}
