// internal/domain/notification/entity.go
package notification

import (
	"time"

	"github.com/shopspring/decimal"
)

// Type classifies what a notification reports
type Type string

const (
	TypePurchase      Type = "purchase"
	TypeSale          Type = "sale"
	TypeBalanceChange Type = "balance_change"
	TypeError         Type = "error"
	TypePending       Type = "pending"
	TypeSuccess       Type = "success"
	TypeInfo          Type = "info"
)

// Status tracks the underlying transaction state for transaction toasts
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusFailed    Status = "failed"
)

// Notification is a transient, queue-owned user-visible event. It is never
// persisted; once evicted or expired it is gone.
type Notification struct {
	ID        string    `json:"id"`
	Type      Type      `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Amount    string    `json:"amount,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	TxHash    string    `json:"tx_hash,omitempty"`
	Status    Status    `json:"status,omitempty"`
}

// ChainStats is the aggregate on-chain activity snapshot the poller diffs
type ChainStats struct {
	PurchaseCount int64           `json:"purchase_count"`
	SaleCount     int64           `json:"sale_count"`
	TotalSpent    decimal.Decimal `json:"total_spent"`
	TotalReceived decimal.Decimal `json:"total_received"`
}
