// internal/domain/cart/entity.go
package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

// SchemaVersion is the persisted cart state schema version
const SchemaVersion = "1.0.0"

// ItemMetadata holds optional free-form listing details
type ItemMetadata struct {
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Category    string   `json:"category,omitempty"`
}

// Item represents one marketplace listing placed in the cart.
// IsContractModel discriminates contract-tracked listings (canonical record
// lives in the marketplace contract, identified by ContractModelID) from
// database models (canonical record lives off-chain).
type Item struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	Type            string        `json:"type"`
	Price           string        `json:"price"` // decimal string in base-currency units (e.g. ETH)
	Image           string        `json:"image,omitempty"`
	Seller          string        `json:"seller"`
	ContractModelID *int64        `json:"contract_model_id,omitempty"`
	IsContractModel bool          `json:"is_contract_model"`
	AddedAt         time.Time     `json:"added_at"`
	Metadata        *ItemMetadata `json:"metadata,omitempty"`
}

// PriceDecimal parses the item price, treating malformed prices as zero
func (i Item) PriceDecimal() decimal.Decimal {
	d, err := decimal.NewFromString(i.Price)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// State is the cart store's single source of truth. It is only ever
// transformed through the reducer's closed action set.
type State struct {
	Items       []Item     `json:"items"`
	IsOpen      bool       `json:"is_open"`
	IsLoading   bool       `json:"is_loading"`
	LastUpdated *time.Time `json:"last_updated,omitempty"`
	Version     string     `json:"version"`
}

// NewState returns an empty cart state at the current schema version
func NewState() State {
	return State{
		Items:   []Item{},
		Version: SchemaVersion,
	}
}

// SortCriteria selects the item field used by the sort action
type SortCriteria string

const (
	SortByName    SortCriteria = "name"
	SortByPrice   SortCriteria = "price"
	SortByType    SortCriteria = "type"
	SortByAddedAt SortCriteria = "addedAt"
	SortBySeller  SortCriteria = "seller"
)

// Valid reports whether the criteria is part of the closed sort set
func (c SortCriteria) Valid() bool {
	switch c {
	case SortByName, SortByPrice, SortByType, SortByAddedAt, SortBySeller:
		return true
	}
	return false
}

// ItemPatch carries a partial field update for an existing cart item.
// Nil fields are left untouched; AddedAt is never patchable.
type ItemPatch struct {
	Name     *string       `json:"name,omitempty"`
	Type     *string       `json:"type,omitempty"`
	Price    *string       `json:"price,omitempty"`
	Image    *string       `json:"image,omitempty"`
	Seller   *string       `json:"seller,omitempty"`
	Metadata *ItemMetadata `json:"metadata,omitempty"`
}
