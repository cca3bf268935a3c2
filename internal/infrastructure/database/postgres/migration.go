// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"log"

	"github.com/your-org/ainexus-marketplace/internal/domain/purchaselog"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db *gorm.DB
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB) *Migration {
	return &Migration{
		db: db,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	log.Println("🔄 Running database auto-migrations...")

	models := []interface{}{
		&purchaselog.PurchaseRecord{},
	}

	for _, model := range models {
		log.Printf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	log.Println("✅ Database auto-migrations completed successfully")
	return nil
}

// CreateIndexes creates additional indexes for better performance
func (m *Migration) CreateIndexes() error {
	log.Println("🔄 Creating additional database indexes...")

	indexes := []string{
		// History is always read newest-first per wallet
		"CREATE INDEX IF NOT EXISTS idx_purchase_records_wallet_created ON purchase_records(wallet_address, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_purchase_records_seller_created ON purchase_records(seller_address, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_purchase_records_network_type ON purchase_records(network, transaction_type)",
	}

	for _, index := range indexes {
		if err := m.db.Exec(index).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	log.Println("✅ Database indexes created successfully")
	return nil
}

// GetTableInfo logs the migrated tables and their row counts
func (m *Migration) GetTableInfo() {
	tables := []string{"purchase_records"}

	log.Println("📊 Database table information:")
	for _, table := range tables {
		var count int64
		if err := m.db.Table(table).Count(&count).Error; err != nil {
			log.Printf("  %s: unavailable (%v)", table, err)
			continue
		}
		log.Printf("  %s: %d rows", table, count)
	}
}
