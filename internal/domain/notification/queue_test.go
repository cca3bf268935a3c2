package notification

import (
	"testing"
	"time"
)

func TestQueuePushStampsIDAndTimestamp(t *testing.T) {
	q := NewQueue(5, 0)

	n := q.Push(Notification{Type: TypeInfo, Title: "hello"})
	if n.ID == "" {
		t.Fatal("push must assign an id")
	}
	if n.Timestamp.IsZero() {
		t.Fatal("push must stamp a timestamp")
	}
}

func TestQueueBoundEvictsOldest(t *testing.T) {
	q := NewQueue(3, 0)

	var ids []string
	for i := 0; i < 5; i++ {
		n := q.Push(Notification{Type: TypeInfo})
		ids = append(ids, n.ID)
	}

	visible := q.List()
	if len(visible) != 3 {
		t.Fatalf("expected bound of 3, got %d", len(visible))
	}
	// Newest first, and the two oldest pushes are gone
	if visible[0].ID != ids[4] || visible[2].ID != ids[2] {
		t.Fatalf("unexpected visible window: %v", visible)
	}
	for _, n := range visible {
		if n.ID == ids[0] || n.ID == ids[1] {
			t.Fatal("oldest entries must be evicted past the bound")
		}
	}
}

func TestQueueListNewestFirst(t *testing.T) {
	q := NewQueue(5, 0)
	first := q.Push(Notification{Type: TypeInfo})
	second := q.Push(Notification{Type: TypeInfo})

	visible := q.List()
	if visible[0].ID != second.ID || visible[1].ID != first.ID {
		t.Fatal("list must be newest first")
	}
}

func TestQueueTTLPrunesExpired(t *testing.T) {
	q := NewQueue(5, 5*time.Second)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	q.now = func() time.Time { return base }

	q.Push(Notification{Type: TypeInfo, Title: "old"})

	q.now = func() time.Time { return base.Add(3 * time.Second) }
	fresh := q.Push(Notification{Type: TypeInfo, Title: "fresh"})

	// 6s after the first push: only the second survives
	q.now = func() time.Time { return base.Add(6 * time.Second) }
	visible := q.List()
	if len(visible) != 1 || visible[0].ID != fresh.ID {
		t.Fatalf("expected only the fresh entry, got %+v", visible)
	}
}

func TestQueueDismiss(t *testing.T) {
	q := NewQueue(5, 0)
	n := q.Push(Notification{Type: TypeInfo})

	if !q.Dismiss(n.ID) {
		t.Fatal("dismissing an existing id must succeed")
	}
	if q.Dismiss(n.ID) {
		t.Fatal("dismissing twice must report false")
	}
	if q.Len() != 0 {
		t.Fatalf("queue should be empty, got %d", q.Len())
	}
}
