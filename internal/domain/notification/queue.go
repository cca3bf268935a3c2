// internal/domain/notification/queue.go
package notification

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Queue is a bounded FIFO of visible notifications. Pushing past the bound
// evicts the oldest entry; entries also expire after the display TTL and are
// pruned on read. Delivery is at-least-once: a purchase reported directly by
// the orchestrator may also surface through the poller's diff.
type Queue struct {
	mu      sync.Mutex
	max     int
	ttl     time.Duration
	entries []Notification
	now     func() time.Time
}

// NewQueue creates a queue holding at most max entries, each visible for ttl
func NewQueue(max int, ttl time.Duration) *Queue {
	if max <= 0 {
		max = 5
	}
	return &Queue{
		max:     max,
		ttl:     ttl,
		entries: []Notification{},
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Push appends a notification, stamping id and timestamp when missing, and
// evicts the oldest entries beyond the bound.
func (q *Queue) Push(n Notification) Notification {
	q.mu.Lock()
	defer q.mu.Unlock()

	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.Timestamp.IsZero() {
		n.Timestamp = q.now()
	}

	q.entries = append(q.entries, n)
	if len(q.entries) > q.max {
		q.entries = q.entries[len(q.entries)-q.max:]
	}
	return n
}

// List returns the visible notifications, newest first, pruning expired ones
func (q *Queue) List() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.prune()
	visible := make([]Notification, len(q.entries))
	for i, n := range q.entries {
		visible[len(q.entries)-1-i] = n
	}
	return visible
}

// Dismiss removes the notification with the id, reporting whether it existed
func (q *Queue) Dismiss(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, n := range q.entries {
		if n.ID == id {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of currently visible notifications
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.prune()
	return len(q.entries)
}

// prune drops expired entries; callers must hold the lock
func (q *Queue) prune() {
	if q.ttl <= 0 {
		return
	}
	cutoff := q.now().Add(-q.ttl)
	kept := q.entries[:0]
	for _, n := range q.entries {
		if n.Timestamp.After(cutoff) {
			kept = append(kept, n)
		}
	}
	q.entries = kept
}
