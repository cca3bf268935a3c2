package cart

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

// memStorage is an in-memory Storage stub
type memStorage struct {
	data     map[string]string
	setErr   error
	getErr   error
	setCalls int
}

func newMemStorage() *memStorage {
	return &memStorage{data: map[string]string{}}
}

func (m *memStorage) Get(ctx context.Context, key string) (string, bool, error) {
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memStorage) Set(ctx context.Context, key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.setCalls++
	m.data[key] = value
	return nil
}

func (m *memStorage) Remove(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func TestPersisterSaveLoadRoundTrip(t *testing.T) {
	storage := newMemStorage()
	p := NewPersister(storage, nil)
	items := []Item{testItem("a", "Alpha", "0.1")}

	if err := p.Save(context.Background(), items, time.Now().UTC()); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, found, err := p.Load(context.Background())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if !found {
		t.Fatal("expected saved cart to be found")
	}
	if len(loaded) != 1 || loaded[0].ID != "a" {
		t.Fatalf("unexpected loaded items: %+v", loaded)
	}
}

func TestPersisterLoadMissingIsNotAnError(t *testing.T) {
	p := NewPersister(newMemStorage(), nil)

	items, found, err := p.Load(context.Background())
	if err != nil {
		t.Fatalf("missing cart must not be an error: %v", err)
	}
	if found || items != nil {
		t.Fatalf("expected not found, got found=%v items=%+v", found, items)
	}
}

func TestPersisterCorruptSnapshotDiscardsKeys(t *testing.T) {
	storage := newMemStorage()
	storage.data[StorageKeyPrimary] = "{not json"
	storage.data[StorageKeyLegacy] = "{not json either"
	p := NewPersister(storage, nil)

	_, found, err := p.Load(context.Background())
	if err != nil {
		t.Fatalf("corrupt snapshot must be swallowed, got %v", err)
	}
	if found {
		t.Fatal("corrupt snapshot must not be reported as found")
	}
	if _, ok := storage.data[StorageKeyPrimary]; ok {
		t.Fatal("corrupt primary key should have been discarded")
	}
	if _, ok := storage.data[StorageKeyLegacy]; ok {
		t.Fatal("corrupt legacy key should have been discarded")
	}
}

func TestPersisterLegacyMigration(t *testing.T) {
	storage := newMemStorage()
	legacy, _ := json.Marshal([]Item{testItem("a", "Alpha", "0.1")})
	storage.data[StorageKeyLegacy] = string(legacy)
	p := NewPersister(storage, nil)

	items, found, err := p.Load(context.Background())
	if err != nil {
		t.Fatalf("legacy load failed: %v", err)
	}
	if !found || len(items) != 1 {
		t.Fatalf("expected legacy cart to hydrate, found=%v items=%+v", found, items)
	}

	// One-way migration: versioned key written, legacy key deleted
	if _, ok := storage.data[StorageKeyPrimary]; !ok {
		t.Fatal("expected migrated snapshot under the primary key")
	}
	if _, ok := storage.data[StorageKeyLegacy]; ok {
		t.Fatal("expected legacy key to be deleted after migration")
	}

	var snapshot Snapshot
	if err := json.Unmarshal([]byte(storage.data[StorageKeyPrimary]), &snapshot); err != nil {
		t.Fatalf("migrated snapshot is not valid json: %v", err)
	}
	if snapshot.Version != SchemaVersion {
		t.Fatalf("migrated snapshot version = %q, want %q", snapshot.Version, SchemaVersion)
	}
}

func TestPersisterUnknownVersionFallsBackToLegacy(t *testing.T) {
	storage := newMemStorage()
	old, _ := json.Marshal(Snapshot{Items: []Item{testItem("x", "X", "1")}, Version: "0.0.1"})
	storage.data[StorageKeyPrimary] = string(old)
	legacy, _ := json.Marshal([]Item{testItem("a", "Alpha", "0.1")})
	storage.data[StorageKeyLegacy] = string(legacy)
	p := NewPersister(storage, nil)

	items, found, err := p.Load(context.Background())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if !found || len(items) != 1 || items[0].ID != "a" {
		t.Fatalf("expected legacy fallback on unknown version, got found=%v items=%+v", found, items)
	}
}

func TestDecodeItemsShapes(t *testing.T) {
	export, _ := json.Marshal(Export{Items: []Item{testItem("a", "A", "1")}, Version: SchemaVersion, ExportedAt: time.Now().UTC()})
	if items, ok := decodeItems(string(export)); !ok || len(items) != 1 {
		t.Fatalf("export shape should decode, ok=%v items=%+v", ok, items)
	}

	bare, _ := json.Marshal([]Item{testItem("b", "B", "2")})
	if items, ok := decodeItems(string(bare)); !ok || len(items) != 1 {
		t.Fatalf("bare array should decode, ok=%v items=%+v", ok, items)
	}

	if _, ok := decodeItems("42"); ok {
		t.Fatal("a number is not a cart document")
	}
	if _, ok := decodeItems("{broken"); ok {
		t.Fatal("malformed json must not decode")
	}
}
