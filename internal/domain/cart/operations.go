// internal/domain/cart/operations.go
package cart

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Operations is the convenience layer over the store: batch and validated
// variants of the primitive operations, plus backup/restore through the
// dedicated storage keys. It holds no state of its own.
type Operations struct {
	store   *Store
	storage Storage
	logger  *logrus.Logger
	now     func() time.Time
}

// ExportEnvelope wraps an export document with summary metadata
type ExportEnvelope struct {
	CartData string         `json:"cartData"`
	Metadata ExportMetadata `json:"metadata"`
}

// ExportMetadata summarizes an exported cart
type ExportMetadata struct {
	ExportedAt time.Time       `json:"exportedAt"`
	TotalItems int             `json:"totalItems"`
	TotalValue decimal.Decimal `json:"totalValue"`
	Version    string          `json:"version"`
}

// NewOperations creates the facade. Storage may be nil when backup/restore
// are not needed.
func NewOperations(store *Store, storage Storage, logger *logrus.Logger) *Operations {
	if logger == nil {
		logger = logrus.New()
	}
	return &Operations{
		store:   store,
		storage: storage,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// AddMultiple adds each item in order, preserving the store's dedup
// semantics, and returns how many were actually inserted.
func (o *Operations) AddMultiple(ctx context.Context, items []Item) int {
	inserted := 0
	for _, item := range items {
		if o.AddIfAbsent(ctx, item) {
			inserted++
		}
	}
	return inserted
}

// RemoveMultiple removes each id in order
func (o *Operations) RemoveMultiple(ctx context.Context, ids []string) {
	for _, id := range ids {
		o.store.RemoveItem(ctx, id)
	}
}

// AddIfAbsent inserts the item and reports whether an insertion happened
// (false means the id was already in the cart).
func (o *Operations) AddIfAbsent(ctx context.Context, item Item) bool {
	if o.store.IsInCart(item.ID) {
		return false
	}
	o.store.AddItem(ctx, item)
	return true
}

// ClearAndAdd empties the cart and inserts the single item. A nil item still
// clears; the add is skipped.
func (o *Operations) ClearAndAdd(ctx context.Context, item *Item) {
	o.store.Clear(ctx)
	if item == nil {
		return
	}
	o.store.AddItem(ctx, *item)
}

// Export serializes the current cart contents
func (o *Operations) Export() (string, error) {
	export := Export{
		Items:      o.store.Items(),
		Version:    SchemaVersion,
		ExportedAt: o.now(),
	}
	data, err := json.Marshal(export)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Import replaces cart contents from an export document. Parse failures are
// reported as false and leave the cart untouched.
func (o *Operations) Import(ctx context.Context, raw string) bool {
	items, ok := decodeItems(raw)
	if !ok {
		return false
	}
	o.store.LoadItems(ctx, items)
	return true
}

// ExportWithMetadata wraps Export in a metadata envelope
func (o *Operations) ExportWithMetadata() (string, error) {
	cartData, err := o.Export()
	if err != nil {
		return "", err
	}
	envelope := ExportEnvelope{
		CartData: cartData,
		Metadata: ExportMetadata{
			ExportedAt: o.now(),
			TotalItems: o.store.ItemCount(),
			TotalValue: o.store.TotalPrice(),
			Version:    SchemaVersion,
		},
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ImportWithValidation accepts either the metadata-wrapped format or a bare
// export document. Returns false on any malformed input, never panics.
func (o *Operations) ImportWithValidation(ctx context.Context, raw string) bool {
	var envelope ExportEnvelope
	if err := json.Unmarshal([]byte(raw), &envelope); err == nil && envelope.CartData != "" {
		return o.Import(ctx, envelope.CartData)
	}
	return o.Import(ctx, raw)
}

// Backup writes the current cart to the backup storage key
func (o *Operations) Backup(ctx context.Context) error {
	if o.storage == nil {
		return nil
	}
	data, err := o.Export()
	if err != nil {
		return err
	}
	return o.storage.Set(ctx, StorageKeyBackup, data)
}

// RestoreBackup replaces the cart from the backup key, reporting success
func (o *Operations) RestoreBackup(ctx context.Context) bool {
	if o.storage == nil {
		return false
	}
	raw, found, err := o.storage.Get(ctx, StorageKeyBackup)
	if err != nil {
		o.logger.WithError(err).Warn("Failed to read cart backup")
		return false
	}
	if !found {
		return false
	}
	return o.Import(ctx, raw)
}

// SaveSession stashes the cart under the short-lived session key
func (o *Operations) SaveSession(ctx context.Context) error {
	if o.storage == nil {
		return nil
	}
	data, err := o.Export()
	if err != nil {
		return err
	}
	return o.storage.Set(ctx, StorageKeySession, data)
}
