package cart

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func newTestStore(storage Storage) *Store {
	var p *Persister
	if storage != nil {
		p = NewPersister(storage, nil)
	}
	return NewStore(p, nil)
}

func TestStoreHydrate(t *testing.T) {
	storage := newMemStorage()
	snapshot, _ := json.Marshal(Snapshot{
		Items:       []Item{testItem("a", "Alpha", "0.1")},
		Version:     SchemaVersion,
		LastUpdated: time.Now().UTC(),
	})
	storage.data[StorageKeyPrimary] = string(snapshot)

	store := newTestStore(storage)
	store.Hydrate(context.Background())

	state := store.State()
	if state.IsLoading {
		t.Fatal("loading flag must be cleared after hydration")
	}
	if len(state.Items) != 1 || state.Items[0].ID != "a" {
		t.Fatalf("unexpected hydrated items: %+v", state.Items)
	}
}

func TestStoreHydrateSurvivesStorageFailure(t *testing.T) {
	storage := newMemStorage()
	storage.getErr = errors.New("redis down")

	store := newTestStore(storage)
	store.Hydrate(context.Background())

	state := store.State()
	if state.IsLoading {
		t.Fatal("loading flag must be cleared even when storage fails")
	}
	if len(state.Items) != 0 {
		t.Fatalf("expected empty cart on storage failure, got %d items", len(state.Items))
	}
}

func TestStoreMutationsPersist(t *testing.T) {
	storage := newMemStorage()
	store := newTestStore(storage)

	store.AddItem(context.Background(), testItem("a", "Alpha", "0.1"))
	if storage.setCalls != 1 {
		t.Fatalf("expected one snapshot write after add, got %d", storage.setCalls)
	}

	// Duplicate add does not mutate and must not write
	store.AddItem(context.Background(), testItem("a", "Alpha", "0.1"))
	if storage.setCalls != 1 {
		t.Fatalf("duplicate add must not persist, got %d writes", storage.setCalls)
	}

	// Visibility toggles are not cart mutations
	store.SetOpen(context.Background(), true)
	if storage.setCalls != 1 {
		t.Fatalf("open toggle must not persist, got %d writes", storage.setCalls)
	}

	store.RemoveItem(context.Background(), "a")
	if storage.setCalls != 2 {
		t.Fatalf("expected snapshot write after remove, got %d", storage.setCalls)
	}
}

func TestStoreSetOpenReflectedInState(t *testing.T) {
	store := newTestStore(nil)

	if store.State().IsOpen {
		t.Fatal("cart starts closed")
	}
	store.SetOpen(context.Background(), true)
	if !store.State().IsOpen {
		t.Fatal("open flag must be readable after SetOpen(true)")
	}
	store.SetOpen(context.Background(), false)
	if store.State().IsOpen {
		t.Fatal("open flag must clear after SetOpen(false)")
	}
}

func TestStoreSaveFailureDoesNotFailMutation(t *testing.T) {
	storage := newMemStorage()
	storage.setErr = errors.New("disk full")
	store := newTestStore(storage)

	state := store.AddItem(context.Background(), testItem("a", "Alpha", "0.1"))
	if len(state.Items) != 1 {
		t.Fatal("mutation must commit even when persistence fails")
	}
}

func TestStoreTotalPriceDecimal(t *testing.T) {
	store := newTestStore(nil)
	store.AddItem(context.Background(), testItem("a", "Alpha", "0.1"))
	store.AddItem(context.Background(), testItem("b", "Beta", "0.2"))
	store.AddItem(context.Background(), testItem("c", "Gamma", "not-a-number"))

	want := decimal.RequireFromString("0.3")
	if !store.TotalPrice().Equal(want) {
		t.Fatalf("TotalPrice = %s, want %s", store.TotalPrice(), want)
	}
}

func TestStoreCounts(t *testing.T) {
	store := newTestStore(nil)
	contractID := int64(7)
	onChain := testItem("a", "Alpha", "0.1")
	onChain.IsContractModel = true
	onChain.ContractModelID = &contractID
	store.AddItem(context.Background(), onChain)
	store.AddItem(context.Background(), testItem("b", "Beta", "0.2"))

	if store.ItemCount() != 2 {
		t.Fatalf("ItemCount = %d, want 2", store.ItemCount())
	}
	if store.ContractModelCount() != 1 {
		t.Fatalf("ContractModelCount = %d, want 1", store.ContractModelCount())
	}
	if store.DatabaseModelCount() != 1 {
		t.Fatalf("DatabaseModelCount = %d, want 1", store.DatabaseModelCount())
	}
}

func TestStoreFilters(t *testing.T) {
	store := newTestStore(nil)
	a := testItem("a", "Alpha", "0.05")
	a.Type = "vision"
	b := testItem("b", "Beta", "0.2")
	b.Seller = "0xother"
	store.AddItem(context.Background(), a)
	store.AddItem(context.Background(), b)

	if got := store.ItemsByType("vision"); len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("ItemsByType = %+v", got)
	}
	if got := store.ItemsBySeller("0xother"); len(got) != 1 || got[0].ID != "b" {
		t.Fatalf("ItemsBySeller = %+v", got)
	}

	// Bounds are inclusive
	got := store.ItemsByPriceRange(decimal.RequireFromString("0.05"), decimal.RequireFromString("0.2"))
	if len(got) != 2 {
		t.Fatalf("inclusive price range should match both items, got %+v", got)
	}
}

func TestStoreStateReturnsCopy(t *testing.T) {
	store := newTestStore(nil)
	store.AddItem(context.Background(), testItem("a", "Alpha", "0.1"))

	state := store.State()
	state.Items[0].Name = "mutated"

	if got, _ := store.GetItem("a"); got.Name != "Alpha" {
		t.Fatal("State must return a copy, not a view into the store")
	}
}
