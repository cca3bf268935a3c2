package purchaselog

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/ainexus-marketplace/internal/domain/notification"
	"github.com/your-org/ainexus-marketplace/internal/domain/purchase"
)

// The poller can read aggregate activity from the local log instead of the
// chain gateway
var _ notification.StatsSource = (*Service)(nil)

func TestHistoryQueryNormalizedClampsPaging(t *testing.T) {
	cases := []struct {
		page, limit         int
		wantPage, wantLimit int
	}{
		{0, 0, 1, 20},
		{-3, 500, 1, 20},
		{2, 50, 2, 50},
		{1, 100, 1, 100},
	}
	for _, tc := range cases {
		got := HistoryQuery{Page: tc.page, Limit: tc.limit}.normalized()
		if got.Page != tc.wantPage || got.Limit != tc.wantLimit {
			t.Fatalf("normalized(%d,%d) = (%d,%d), want (%d,%d)",
				tc.page, tc.limit, got.Page, got.Limit, tc.wantPage, tc.wantLimit)
		}
	}
}

func TestHistoryQueryNormalizedKeepsFilters(t *testing.T) {
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 7)
	q := HistoryQuery{
		WalletAddress: "0xbuyer",
		Status:        "confirmed",
		StartDate:     start,
		EndDate:       end,
	}.normalized()

	if q.Status != "confirmed" || !q.StartDate.Equal(start) || !q.EndDate.Equal(end) {
		t.Fatalf("normalization must not touch filters: %+v", q)
	}
}

func TestNewRecordDefaultsStatusToConfirmed(t *testing.T) {
	entry := purchase.Entry{
		ModelID:       "m1",
		WalletAddress: "0xbuyer",
		TxHash:        "0xtx1",
		PriceTokens:   decimal.NewFromInt(50),
	}

	record := newRecord(entry)
	if record.Status != "confirmed" {
		t.Fatalf("status = %q, want confirmed", record.Status)
	}

	entry.Status = "pending"
	if got := newRecord(entry).Status; got != "pending" {
		t.Fatalf("explicit status must be kept, got %q", got)
	}
}
