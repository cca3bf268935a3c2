// internal/domain/purchaselog/entity.go
package purchaselog

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PurchaseRecord is the durable row written for every settled purchase.
// TxHash is uniquely indexed so re-recording the same transaction is
// idempotent rather than duplicating history.
type PurchaseRecord struct {
	ID                   uint            `json:"id" gorm:"primaryKey"`
	ModelID              string          `json:"model_id" gorm:"not null;index"`
	ContractModelID      *int64          `json:"contract_model_id,omitempty" gorm:"index"`
	ModelName            string          `json:"model_name" gorm:"not null"`
	WalletAddress        string          `json:"wallet_address" gorm:"not null;index"`
	SellerAddress        string          `json:"seller_address" gorm:"index"`
	TxHash               string          `json:"tx_hash" gorm:"uniqueIndex;not null"`
	PriceTokens          decimal.Decimal `json:"price_tokens" gorm:"type:decimal(38,18);not null"`
	Network              string          `json:"network" gorm:"not null"`
	TransactionType      string          `json:"transaction_type" gorm:"not null;index"`
	Status               string          `json:"status" gorm:"not null;default:confirmed;index"`
	TokenContractAddress string          `json:"token_contract_address"`
	TokenSymbol          string          `json:"token_symbol"`
	TokenDecimals        int             `json:"token_decimals"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
	DeletedAt            gorm.DeletedAt  `json:"-" gorm:"index"`
}

// TableName returns the table name for the PurchaseRecord model
func (PurchaseRecord) TableName() string {
	return "purchase_records"
}

// HistoryQuery filters and pages a wallet's purchase history. StartDate and
// EndDate bound the record creation time; zero values leave the bound open.
type HistoryQuery struct {
	WalletAddress   string    `json:"wallet_address"`
	SellerAddress   string    `json:"seller_address"`
	TransactionType string    `json:"transaction_type"`
	Status          string    `json:"status"`
	Network         string    `json:"network"`
	StartDate       time.Time `json:"start_date"`
	EndDate         time.Time `json:"end_date"`
	Page            int       `json:"page"`
	Limit           int       `json:"limit"`
}

// normalized clamps paging to sane bounds without touching the filters
func (q HistoryQuery) normalized() HistoryQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 || q.Limit > 100 {
		q.Limit = 20
	}
	return q
}

// HistoryPage is one page of purchase history
type HistoryPage struct {
	Records    []PurchaseRecord `json:"records"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"total_pages"`
}
