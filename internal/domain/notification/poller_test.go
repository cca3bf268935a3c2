package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

// stubStats is a StatsSource stub returning a scripted sequence
type stubStats struct {
	snapshots []ChainStats
	errs      []error
	calls     int
}

func (s *stubStats) Stats(ctx context.Context, address string) (ChainStats, error) {
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return ChainStats{}, s.errs[i]
	}
	if i >= len(s.snapshots) {
		return s.snapshots[len(s.snapshots)-1], nil
	}
	return s.snapshots[i], nil
}

func newTestPoller(source StatsSource, queue *Queue) *Poller {
	return NewPoller(source, queue, "0xwallet", "ANX", time.Minute, decimal.RequireFromString("0.001"), nil)
}

func stats(purchases, sales int64, spent, received string) ChainStats {
	return ChainStats{
		PurchaseCount: purchases,
		SaleCount:     sales,
		TotalSpent:    decimal.RequireFromString(spent),
		TotalReceived: decimal.RequireFromString(received),
	}
}

func TestPollerFirstReadOnlyPrimes(t *testing.T) {
	queue := NewQueue(5, 0)
	source := &stubStats{snapshots: []ChainStats{stats(3, 1, "30", "10")}}
	p := newTestPoller(source, queue)

	p.poll(context.Background())
	if queue.Len() != 0 {
		t.Fatal("the baseline read must not produce notifications")
	}
}

func TestPollerPurchaseDelta(t *testing.T) {
	queue := NewQueue(5, 0)
	source := &stubStats{snapshots: []ChainStats{
		stats(3, 0, "30", "0"),
		stats(5, 0, "50", "0"),
	}}
	p := newTestPoller(source, queue)

	p.poll(context.Background())
	p.poll(context.Background())

	visible := queue.List()
	if len(visible) != 1 {
		t.Fatalf("expected one purchase notification, got %d", len(visible))
	}
	n := visible[0]
	if n.Type != TypePurchase || n.Status != StatusConfirmed {
		t.Fatalf("unexpected notification: %+v", n)
	}
	if n.Amount != "20 ANX" {
		t.Fatalf("amount = %q, want \"20 ANX\"", n.Amount)
	}
}

func TestPollerSaleDelta(t *testing.T) {
	queue := NewQueue(5, 0)
	source := &stubStats{snapshots: []ChainStats{
		stats(0, 1, "0", "10"),
		stats(0, 2, "0", "25"),
	}}
	p := newTestPoller(source, queue)

	p.poll(context.Background())
	p.poll(context.Background())

	visible := queue.List()
	if len(visible) != 1 || visible[0].Type != TypeSale {
		t.Fatalf("expected one sale notification, got %+v", visible)
	}
	if visible[0].Amount != "15 ANX" {
		t.Fatalf("amount = %q, want \"15 ANX\"", visible[0].Amount)
	}
}

func TestPollerBalanceDriftWithoutCountChange(t *testing.T) {
	queue := NewQueue(5, 0)
	source := &stubStats{snapshots: []ChainStats{
		stats(1, 0, "10", "0"),
		stats(1, 0, "10.5", "0"), // spend moved with no new purchase
	}}
	p := newTestPoller(source, queue)

	p.poll(context.Background())
	p.poll(context.Background())

	visible := queue.List()
	if len(visible) != 1 || visible[0].Type != TypeBalanceChange {
		t.Fatalf("expected one balance-change notification, got %+v", visible)
	}
}

func TestPollerIgnoresSubEpsilonDrift(t *testing.T) {
	queue := NewQueue(5, 0)
	source := &stubStats{snapshots: []ChainStats{
		stats(1, 0, "10", "0"),
		stats(1, 0, "10.0005", "0"), // below the 0.001 epsilon
	}}
	p := newTestPoller(source, queue)

	p.poll(context.Background())
	p.poll(context.Background())

	if queue.Len() != 0 {
		t.Fatal("sub-epsilon drift must not produce notifications")
	}
}

func TestPollerReadErrorKeepsBaseline(t *testing.T) {
	queue := NewQueue(5, 0)
	source := &stubStats{
		snapshots: []ChainStats{
			stats(1, 0, "10", "0"),
			{}, // unused slot; this call errors instead
			stats(2, 0, "20", "0"),
		},
		errs: []error{nil, errors.New("gateway timeout"), nil},
	}
	p := newTestPoller(source, queue)

	p.poll(context.Background()) // primes
	p.poll(context.Background()) // errors, baseline kept
	p.poll(context.Background()) // diff against the original baseline

	visible := queue.List()
	if len(visible) != 1 || visible[0].Type != TypePurchase {
		t.Fatalf("expected the delta to survive a failed read, got %+v", visible)
	}
}

func TestPollerRunStopsOnCancel(t *testing.T) {
	queue := NewQueue(5, 0)
	source := &stubStats{snapshots: []ChainStats{stats(0, 0, "0", "0")}}
	p := NewPoller(source, queue, "0xwallet", "ANX", time.Millisecond, decimal.RequireFromString("0.001"), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller must stop when the context is cancelled")
	}
}
