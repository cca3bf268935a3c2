// internal/domain/purchaselog/service.go
package purchaselog

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/ainexus-marketplace/internal/domain/notification"
	"github.com/your-org/ainexus-marketplace/internal/domain/purchase"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service persists and queries the purchase log
type Service struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewService creates a new purchase log service
func NewService(db *gorm.DB, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.New()
	}
	return &Service{db: db, logger: logger}
}

// newRecord maps a log entry onto the durable row. An entry without a status
// is a settled purchase, so confirmed is the default.
func newRecord(entry purchase.Entry) PurchaseRecord {
	record := PurchaseRecord{
		ModelID:              entry.ModelID,
		ContractModelID:      entry.ContractModelID,
		ModelName:            entry.ModelName,
		WalletAddress:        entry.WalletAddress,
		SellerAddress:        entry.SellerAddress,
		TxHash:               entry.TxHash,
		PriceTokens:          entry.PriceTokens,
		Network:              entry.Network,
		TransactionType:      entry.TransactionType,
		Status:               entry.Status,
		TokenContractAddress: entry.TokenContractAddress,
		TokenSymbol:          entry.TokenSymbol,
		TokenDecimals:        entry.TokenDecimals,
	}
	if record.Status == "" {
		record.Status = "confirmed"
	}
	return record
}

// Record writes one settled purchase. Replaying a transaction hash that is
// already logged is a silent no-op.
func (s *Service) Record(ctx context.Context, entry purchase.Entry) error {
	record := newRecord(entry)

	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "tx_hash"}}, DoNothing: true}).
		Create(&record)
	if result.Error != nil {
		return fmt.Errorf("failed to record purchase: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		s.logger.WithField("tx", entry.TxHash).Debug("Purchase already recorded, skipping")
	}
	return nil
}

// History returns one page of a wallet's purchase history, newest first
func (s *Service) History(ctx context.Context, query HistoryQuery) (*HistoryPage, error) {
	if query.WalletAddress == "" {
		return nil, errors.New("wallet address is required")
	}
	query = query.normalized()

	db := s.db.WithContext(ctx).Model(&PurchaseRecord{}).
		Where("wallet_address = ?", query.WalletAddress)
	if query.SellerAddress != "" {
		db = db.Where("seller_address = ?", query.SellerAddress)
	}
	if query.TransactionType != "" {
		db = db.Where("transaction_type = ?", query.TransactionType)
	}
	if query.Status != "" {
		db = db.Where("status = ?", query.Status)
	}
	if query.Network != "" {
		db = db.Where("network = ?", query.Network)
	}
	if !query.StartDate.IsZero() {
		db = db.Where("created_at >= ?", query.StartDate)
	}
	if !query.EndDate.IsZero() {
		db = db.Where("created_at <= ?", query.EndDate)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count purchase records: %w", err)
	}

	var records []PurchaseRecord
	offset := (query.Page - 1) * query.Limit
	if err := db.Order("created_at DESC").Offset(offset).Limit(query.Limit).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query purchase records: %w", err)
	}

	totalPages := int((total + int64(query.Limit) - 1) / int64(query.Limit))
	return &HistoryPage{
		Records:    records,
		Total:      total,
		Page:       query.Page,
		Limit:      query.Limit,
		TotalPages: totalPages,
	}, nil
}

// GetByTxHash returns the record for a transaction hash
func (s *Service) GetByTxHash(ctx context.Context, txHash string) (*PurchaseRecord, error) {
	var record PurchaseRecord
	if err := s.db.WithContext(ctx).Where("tx_hash = ?", txHash).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("purchase record not found")
		}
		return nil, fmt.Errorf("failed to get purchase record: %w", err)
	}
	return &record, nil
}

// Stats aggregates a wallet's logged activity into the poller's snapshot
// shape: purchases made by the wallet and sales where it was the seller.
func (s *Service) Stats(ctx context.Context, address string) (notification.ChainStats, error) {
	var stats notification.ChainStats

	type sum struct {
		Count int64
		Total decimal.Decimal
	}

	var bought sum
	err := s.db.WithContext(ctx).Model(&PurchaseRecord{}).
		Select("COUNT(*) as count, COALESCE(SUM(price_tokens), 0) as total").
		Where("wallet_address = ?", address).
		Scan(&bought).Error
	if err != nil {
		return stats, fmt.Errorf("failed to aggregate purchases: %w", err)
	}

	var sold sum
	err = s.db.WithContext(ctx).Model(&PurchaseRecord{}).
		Select("COUNT(*) as count, COALESCE(SUM(price_tokens), 0) as total").
		Where("seller_address = ?", address).
		Scan(&sold).Error
	if err != nil {
		return stats, fmt.Errorf("failed to aggregate sales: %w", err)
	}

	stats.PurchaseCount = bought.Count
	stats.TotalSpent = bought.Total
	stats.SaleCount = sold.Count
	stats.TotalReceived = sold.Total
	return stats, nil
}
