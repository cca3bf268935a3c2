// internal/domain/cart/reducer.go
package cart

import (
	"sort"
	"strings"
	"time"
)

// actionKind enumerates the closed set of state transitions
type actionKind int

const (
	actionAddItem actionKind = iota
	actionRemoveItem
	actionClear
	actionSetOpen
	actionSetLoading
	actionLoadItems
	actionUpdateQuantity
	actionUpdateItem
	actionMoveToTop
	actionSort
)

// action is the tagged command folded over State by reduce. Only the fields
// relevant to the kind are populated.
type action struct {
	kind     actionKind
	item     Item
	id       string
	flag     bool
	items    []Item
	quantity int
	patch    ItemPatch
	criteria SortCriteria
	now      time.Time
}

// reduce is the pure transition function: same state and action always yield
// the same result, and the input state is never mutated in place.
func reduce(s State, a action) State {
	switch a.kind {
	case actionAddItem:
		for _, existing := range s.Items {
			if existing.ID == a.item.ID {
				// First write wins: duplicate ids are a no-op
				return s
			}
		}
		item := a.item
		item.AddedAt = a.now
		next := s
		next.Items = append([]Item{item}, s.Items...)
		next.LastUpdated = &a.now
		return next

	case actionRemoveItem:
		next := s
		next.Items = make([]Item, 0, len(s.Items))
		for _, item := range s.Items {
			if item.ID != a.id {
				next.Items = append(next.Items, item)
			}
		}
		next.LastUpdated = &a.now
		return next

	case actionClear:
		next := s
		next.Items = []Item{}
		next.LastUpdated = &a.now
		return next

	case actionSetOpen:
		// UI visibility only; does not count as a cart mutation
		next := s
		next.IsOpen = a.flag
		return next

	case actionSetLoading:
		next := s
		next.IsLoading = a.flag
		return next

	case actionLoadItems:
		next := s
		next.Items = make([]Item, len(a.items))
		for i, item := range a.items {
			if item.AddedAt.IsZero() {
				item.AddedAt = a.now
			}
			next.Items[i] = item
		}
		next.LastUpdated = &a.now
		return next

	case actionUpdateQuantity:
		// Every item is quantity-1: zero or negative removes, positive
		// quantities are reserved for future multi-quantity support and
		// currently leave the cart untouched.
		if a.quantity <= 0 {
			return reduce(s, action{kind: actionRemoveItem, id: a.id, now: a.now})
		}
		return s

	case actionUpdateItem:
		next := s
		next.Items = make([]Item, len(s.Items))
		copy(next.Items, s.Items)
		for i := range next.Items {
			if next.Items[i].ID == a.id {
				next.Items[i] = applyPatch(next.Items[i], a.patch)
			}
		}
		next.LastUpdated = &a.now
		return next

	case actionMoveToTop:
		idx := -1
		for i, item := range s.Items {
			if item.ID == a.id {
				idx = i
				break
			}
		}
		if idx <= 0 {
			return s
		}
		next := s
		next.Items = make([]Item, 0, len(s.Items))
		next.Items = append(next.Items, s.Items[idx])
		next.Items = append(next.Items, s.Items[:idx]...)
		next.Items = append(next.Items, s.Items[idx+1:]...)
		next.LastUpdated = &a.now
		return next

	case actionSort:
		if !a.criteria.Valid() {
			return s
		}
		next := s
		next.Items = make([]Item, len(s.Items))
		copy(next.Items, s.Items)
		sortItems(next.Items, a.criteria)
		next.LastUpdated = &a.now
		return next
	}

	return s
}

func applyPatch(item Item, patch ItemPatch) Item {
	if patch.Name != nil {
		item.Name = *patch.Name
	}
	if patch.Type != nil {
		item.Type = *patch.Type
	}
	if patch.Price != nil {
		item.Price = *patch.Price
	}
	if patch.Image != nil {
		item.Image = *patch.Image
	}
	if patch.Seller != nil {
		item.Seller = *patch.Seller
	}
	if patch.Metadata != nil {
		item.Metadata = patch.Metadata
	}
	return item
}

// sortItems sorts ascending and stable: price numerically, addedAt by
// timestamp, everything else by ordinal string compare.
func sortItems(items []Item, criteria SortCriteria) {
	sort.SliceStable(items, func(i, j int) bool {
		switch criteria {
		case SortByPrice:
			return items[i].PriceDecimal().LessThan(items[j].PriceDecimal())
		case SortByAddedAt:
			return items[i].AddedAt.Before(items[j].AddedAt)
		case SortByType:
			return strings.Compare(items[i].Type, items[j].Type) < 0
		case SortBySeller:
			return strings.Compare(items[i].Seller, items[j].Seller) < 0
		default:
			return strings.Compare(items[i].Name, items[j].Name) < 0
		}
	})
}
