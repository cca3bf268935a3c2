// internal/domain/cart/persistence.go
package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// Storage keys. The primary key carries the versioned snapshot; the legacy
// key predates versioning and is migrated away from on first load.
const (
	StorageKeyPrimary = "ainexus-cart-v2"
	StorageKeyLegacy  = "ainexus-cart"
	StorageKeyBackup  = "ainexus-cart-backup"
	StorageKeySession = "ainexus-cart-session"
)

// Storage is the durable key-value capability carts are persisted through
type Storage interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Snapshot is the persisted cart state layout
type Snapshot struct {
	Items       []Item    `json:"items"`
	Version     string    `json:"version"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// Export is the serialized cart interchange layout
type Export struct {
	Items      []Item    `json:"items"`
	Version    string    `json:"version"`
	ExportedAt time.Time `json:"exportedAt"`
}

// Persister reads and writes cart snapshots through a Storage capability
type Persister struct {
	storage Storage
	logger  *logrus.Logger
	now     func() time.Time
}

// NewPersister creates a persister over the given storage capability
func NewPersister(storage Storage, logger *logrus.Logger) *Persister {
	if logger == nil {
		logger = logrus.New()
	}
	return &Persister{
		storage: storage,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Load reads the persisted cart. Resolution order: versioned primary key,
// then the legacy unversioned key (migrated to the primary key and deleted).
// Corrupt payloads are discarded along with their keys; Load never returns
// corrupt data as an error the caller has to handle at startup.
func (p *Persister) Load(ctx context.Context) ([]Item, bool, error) {
	raw, found, err := p.storage.Get(ctx, StorageKeyPrimary)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cart storage: %w", err)
	}

	if found {
		var snapshot Snapshot
		if err := json.Unmarshal([]byte(raw), &snapshot); err != nil {
			p.logger.WithError(err).Warn("Corrupt cart snapshot, discarding stored cart")
			p.discard(ctx)
			return nil, false, nil
		}
		if snapshot.Version == SchemaVersion {
			return snapshot.Items, true, nil
		}
		p.logger.WithField("version", snapshot.Version).Warn("Unknown cart schema version, trying legacy key")
	}

	return p.loadLegacy(ctx)
}

// loadLegacy hydrates from the pre-versioning key and deletes it (one-way
// migration). The legacy layout was either a bare item array or an
// unversioned {items: [...]} object.
func (p *Persister) loadLegacy(ctx context.Context) ([]Item, bool, error) {
	raw, found, err := p.storage.Get(ctx, StorageKeyLegacy)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read legacy cart storage: %w", err)
	}
	if !found {
		return nil, false, nil
	}

	items, ok := decodeItems(raw)
	if !ok {
		p.logger.Warn("Corrupt legacy cart data, discarding stored cart")
		p.discard(ctx)
		return nil, false, nil
	}

	// Migrate: write under the versioned key, then drop the legacy key
	if err := p.Save(ctx, items, p.now()); err != nil {
		p.logger.WithError(err).Warn("Failed to migrate legacy cart to versioned key")
	}
	if err := p.storage.Remove(ctx, StorageKeyLegacy); err != nil {
		p.logger.WithError(err).Warn("Failed to delete legacy cart key")
	}

	return items, true, nil
}

// Save writes the versioned snapshot under the primary key
func (p *Persister) Save(ctx context.Context, items []Item, lastUpdated time.Time) error {
	snapshot := Snapshot{
		Items:       items,
		Version:     SchemaVersion,
		LastUpdated: lastUpdated,
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to serialize cart snapshot: %w", err)
	}
	if err := p.storage.Set(ctx, StorageKeyPrimary, string(data)); err != nil {
		return fmt.Errorf("failed to write cart snapshot: %w", err)
	}
	return nil
}

// ExportJSON serializes the items as an interchange document
func (p *Persister) ExportJSON(items []Item) (string, error) {
	export := Export{
		Items:      items,
		Version:    SchemaVersion,
		ExportedAt: p.now(),
	}
	data, err := json.Marshal(export)
	if err != nil {
		return "", fmt.Errorf("failed to serialize cart export: %w", err)
	}
	return string(data), nil
}

// discard removes both cart keys after corruption
func (p *Persister) discard(ctx context.Context) {
	if err := p.storage.Remove(ctx, StorageKeyPrimary); err != nil {
		p.logger.WithError(err).Warn("Failed to remove primary cart key")
	}
	if err := p.storage.Remove(ctx, StorageKeyLegacy); err != nil {
		p.logger.WithError(err).Warn("Failed to remove legacy cart key")
	}
}

// decodeItems parses an export document, a snapshot, or a bare item array.
// Returns false for anything without a usable items array.
func decodeItems(raw string) ([]Item, bool) {
	var export Export
	if err := json.Unmarshal([]byte(raw), &export); err == nil && export.Items != nil {
		return export.Items, true
	}

	var bare []Item
	if err := json.Unmarshal([]byte(raw), &bare); err == nil {
		return bare, true
	}

	return nil, false
}
