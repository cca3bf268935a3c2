package cart

import (
	"context"
	"encoding/json"
	"testing"
)

func newTestOperations() (*Operations, *Store, *memStorage) {
	storage := newMemStorage()
	store := newTestStore(storage)
	return NewOperations(store, storage, nil), store, storage
}

func TestOperationsAddMultipleCountsInsertions(t *testing.T) {
	ops, store, _ := newTestOperations()
	store.AddItem(context.Background(), testItem("a", "Alpha", "0.1"))

	inserted := ops.AddMultiple(context.Background(), []Item{
		testItem("a", "Dup", "9"),
		testItem("b", "Beta", "0.2"),
		testItem("c", "Gamma", "0.3"),
	})

	if inserted != 2 {
		t.Fatalf("expected 2 insertions (one duplicate), got %d", inserted)
	}
	if store.ItemCount() != 3 {
		t.Fatalf("expected 3 items, got %d", store.ItemCount())
	}
}

func TestOperationsClearAndAdd(t *testing.T) {
	ops, store, _ := newTestOperations()
	store.AddItem(context.Background(), testItem("a", "Alpha", "0.1"))

	replacement := testItem("b", "Beta", "0.2")
	ops.ClearAndAdd(context.Background(), &replacement)
	if store.ItemCount() != 1 || !store.IsInCart("b") {
		t.Fatalf("expected cart to hold only item b, got %+v", store.Items())
	}

	// Nil item still clears
	ops.ClearAndAdd(context.Background(), nil)
	if store.ItemCount() != 0 {
		t.Fatalf("nil item should clear only, got %d items", store.ItemCount())
	}
}

func TestOperationsExportImportRoundTrip(t *testing.T) {
	ops, store, _ := newTestOperations()
	store.AddItem(context.Background(), testItem("a", "Alpha", "0.1"))

	doc, err := ops.Export()
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}

	store.Clear(context.Background())
	if !ops.Import(context.Background(), doc) {
		t.Fatal("import of a fresh export must succeed")
	}
	if !store.IsInCart("a") {
		t.Fatal("imported cart is missing item a")
	}
}

func TestOperationsImportRejectsGarbageAndLeavesCart(t *testing.T) {
	ops, store, _ := newTestOperations()
	store.AddItem(context.Background(), testItem("a", "Alpha", "0.1"))

	if ops.Import(context.Background(), "{broken") {
		t.Fatal("malformed import must be rejected")
	}
	if store.ItemCount() != 1 {
		t.Fatal("failed import must leave the cart untouched")
	}
}

func TestOperationsImportWithValidationAcceptsBothFormats(t *testing.T) {
	ops, store, _ := newTestOperations()
	store.AddItem(context.Background(), testItem("a", "Alpha", "0.1"))

	wrapped, err := ops.ExportWithMetadata()
	if err != nil {
		t.Fatalf("export with metadata failed: %v", err)
	}

	var envelope ExportEnvelope
	if err := json.Unmarshal([]byte(wrapped), &envelope); err != nil {
		t.Fatalf("envelope is not valid json: %v", err)
	}
	if envelope.Metadata.TotalItems != 1 {
		t.Fatalf("envelope metadata TotalItems = %d, want 1", envelope.Metadata.TotalItems)
	}

	store.Clear(context.Background())
	if !ops.ImportWithValidation(context.Background(), wrapped) {
		t.Fatal("wrapped import must succeed")
	}
	if !store.IsInCart("a") {
		t.Fatal("wrapped import is missing item a")
	}

	// Bare export documents still work through the validated path
	bare, _ := ops.Export()
	store.Clear(context.Background())
	if !ops.ImportWithValidation(context.Background(), bare) {
		t.Fatal("bare import must succeed through validated path")
	}
}

func TestOperationsBackupRestore(t *testing.T) {
	ops, store, _ := newTestOperations()
	store.AddItem(context.Background(), testItem("a", "Alpha", "0.1"))

	if err := ops.Backup(context.Background()); err != nil {
		t.Fatalf("backup failed: %v", err)
	}

	store.Clear(context.Background())
	if !ops.RestoreBackup(context.Background()) {
		t.Fatal("restore must succeed after backup")
	}
	if !store.IsInCart("a") {
		t.Fatal("restored cart is missing item a")
	}
}

func TestOperationsSaveSessionWritesSessionKey(t *testing.T) {
	ops, store, storage := newTestOperations()
	store.AddItem(context.Background(), testItem("a", "Alpha", "0.1"))

	if err := ops.SaveSession(context.Background()); err != nil {
		t.Fatalf("save session failed: %v", err)
	}

	raw, found := storage.data[StorageKeySession]
	if !found {
		t.Fatal("session save must write the session key")
	}
	items, ok := decodeItems(raw)
	if !ok || len(items) != 1 || items[0].ID != "a" {
		t.Fatalf("session snapshot does not round-trip: %q", raw)
	}
}

func TestOperationsRestoreWithoutBackup(t *testing.T) {
	ops, _, _ := newTestOperations()
	if ops.RestoreBackup(context.Background()) {
		t.Fatal("restore must report false when no backup exists")
	}
}
