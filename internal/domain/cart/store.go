// internal/domain/cart/store.go
package cart

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Store owns the cart state. Every mutation goes through the reducer behind
// a single mutex, so transitions are serialized the way a single event queue
// would serialize them. After each committed mutation the persister (when
// configured) writes a snapshot; storage is a cache, not the source of truth,
// so write failures are logged and do not fail the mutation.
type Store struct {
	mu        sync.Mutex
	state     State
	persister *Persister
	logger    *logrus.Logger
	now       func() time.Time
}

// NewStore creates an empty cart store. The persister may be nil for
// storage-less use (tests, dry runs).
func NewStore(persister *Persister, logger *logrus.Logger) *Store {
	if logger == nil {
		logger = logrus.New()
	}
	return &Store{
		state:     NewState(),
		persister: persister,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Hydrate loads persisted items into the store. Corrupt or missing storage
// yields an empty cart; hydration never fails startup.
func (s *Store) Hydrate(ctx context.Context) {
	if s.persister == nil {
		return
	}

	s.mu.Lock()
	s.state = reduce(s.state, action{kind: actionSetLoading, flag: true})
	s.mu.Unlock()

	items, found, err := s.persister.Load(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("Cart hydration failed, starting empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if found {
		s.state = reduce(s.state, action{kind: actionLoadItems, items: items, now: s.now()})
	}
	s.state = reduce(s.state, action{kind: actionSetLoading, flag: false})
}

// dispatch applies one action and persists when items/lastUpdated changed
func (s *Store) dispatch(ctx context.Context, a action) State {
	s.mu.Lock()
	prev := s.state
	s.state = reduce(s.state, a)
	next := s.state
	s.mu.Unlock()

	if s.persister != nil && next.LastUpdated != prev.LastUpdated {
		if err := s.persister.Save(ctx, next.Items, *next.LastUpdated); err != nil {
			s.logger.WithError(err).Warn("Failed to persist cart snapshot")
		}
	}
	return next
}

// AddItem inserts the item at the head of the cart. Inserting an id that is
// already present is a no-op; AddedAt is always stamped by the store.
func (s *Store) AddItem(ctx context.Context, item Item) State {
	return s.dispatch(ctx, action{kind: actionAddItem, item: item, now: s.now()})
}

// RemoveItem removes all items with the id; absent ids are a no-op
func (s *Store) RemoveItem(ctx context.Context, id string) State {
	return s.dispatch(ctx, action{kind: actionRemoveItem, id: id, now: s.now()})
}

// Clear empties the cart
func (s *Store) Clear(ctx context.Context) State {
	return s.dispatch(ctx, action{kind: actionClear, now: s.now()})
}

// SetOpen toggles the cart UI visibility flag
func (s *Store) SetOpen(ctx context.Context, open bool) State {
	return s.dispatch(ctx, action{kind: actionSetOpen, flag: open})
}

// LoadItems replaces the cart contents wholesale, coercing missing AddedAt
// timestamps to now. Used by hydration and import.
func (s *Store) LoadItems(ctx context.Context, items []Item) State {
	return s.dispatch(ctx, action{kind: actionLoadItems, items: items, now: s.now()})
}

// UpdateQuantity removes the item when quantity drops to zero or below.
// Positive quantities are currently a no-op (single-quantity domain).
func (s *Store) UpdateQuantity(ctx context.Context, id string, quantity int) State {
	return s.dispatch(ctx, action{kind: actionUpdateQuantity, id: id, quantity: quantity, now: s.now()})
}

// UpdateItem merges the patch into the matching item
func (s *Store) UpdateItem(ctx context.Context, id string, patch ItemPatch) State {
	return s.dispatch(ctx, action{kind: actionUpdateItem, id: id, patch: patch, now: s.now()})
}

// MoveToTop relocates the matching item to the head of the cart
func (s *Store) MoveToTop(ctx context.Context, id string) State {
	return s.dispatch(ctx, action{kind: actionMoveToTop, id: id, now: s.now()})
}

// SortBy stable-sorts the cart ascending by the criteria; unknown criteria
// leave the cart untouched.
func (s *Store) SortBy(ctx context.Context, criteria SortCriteria) State {
	return s.dispatch(ctx, action{kind: actionSort, criteria: criteria, now: s.now()})
}

// State returns a copy of the current cart state
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.state
	state.Items = make([]Item, len(s.state.Items))
	copy(state.Items, s.state.Items)
	return state
}

// Items returns a copy of the current item list
func (s *Store) Items() []Item {
	return s.State().Items
}

// IsInCart reports whether an item with the id is present
func (s *Store) IsInCart(id string) bool {
	_, ok := s.GetItem(id)
	return ok
}

// GetItem returns the item with the id, if present
func (s *Store) GetItem(id string) (Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.state.Items {
		if item.ID == id {
			return item, true
		}
	}
	return Item{}, false
}

// TotalPrice sums the numeric-parsed price of every item
func (s *Store) TotalPrice() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, item := range s.state.Items {
		total = total.Add(item.PriceDecimal())
	}
	return total
}

// ItemCount returns the number of items in the cart
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.Items)
}

// ContractModelCount counts contract-tracked listings
func (s *Store) ContractModelCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, item := range s.state.Items {
		if item.IsContractModel {
			count++
		}
	}
	return count
}

// DatabaseModelCount counts off-chain listings
func (s *Store) DatabaseModelCount() int {
	return s.ItemCount() - s.ContractModelCount()
}

// ItemsByType returns items whose category label matches
func (s *Store) ItemsByType(itemType string) []Item {
	return s.filter(func(item Item) bool { return item.Type == itemType })
}

// ItemsBySeller returns items listed by the seller address
func (s *Store) ItemsBySeller(seller string) []Item {
	return s.filter(func(item Item) bool { return item.Seller == seller })
}

// ItemsByPriceRange returns items priced within the inclusive bounds
func (s *Store) ItemsByPriceRange(min, max decimal.Decimal) []Item {
	return s.filter(func(item Item) bool {
		p := item.PriceDecimal()
		return p.GreaterThanOrEqual(min) && p.LessThanOrEqual(max)
	})
}

func (s *Store) filter(keep func(Item) bool) []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	matched := []Item{}
	for _, item := range s.state.Items {
		if keep(item) {
			matched = append(matched, item)
		}
	}
	return matched
}
