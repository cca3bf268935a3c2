package insights

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/ainexus-marketplace/internal/domain/cart"
)

func item(id, typ, seller, price string, age time.Duration, now time.Time) cart.Item {
	return cart.Item{
		ID:      id,
		Name:    id,
		Type:    typ,
		Seller:  seller,
		Price:   price,
		AddedAt: now.Add(-age),
	}
}

func TestAnalyzeEmptyCart(t *testing.T) {
	got := Analyze(nil, time.Now().UTC())

	if got.TotalItems != 0 {
		t.Fatalf("TotalItems = %d, want 0", got.TotalItems)
	}
	if !got.TotalValue.IsZero() || !got.AveragePrice.IsZero() {
		t.Fatal("empty cart must have zero totals")
	}
	if got.Categories == nil || got.RecentItems == nil || got.Recommendations.PriceOptimization.Suggestions == nil {
		t.Fatal("empty insights must use empty slices, not nil")
	}
}

func TestAnalyzeTotalsAndRange(t *testing.T) {
	now := time.Now().UTC()
	items := []cart.Item{
		item("a", "llm", "s1", "0.1", time.Hour, now),
		item("b", "llm", "s1", "0.2", time.Hour, now),
		item("c", "vision", "s2", "0.3", time.Hour, now),
	}

	got := Analyze(items, now)

	if got.TotalItems != 3 {
		t.Fatalf("TotalItems = %d, want 3", got.TotalItems)
	}
	if !got.TotalValue.Equal(decimal.RequireFromString("0.6")) {
		t.Fatalf("TotalValue = %s, want 0.6", got.TotalValue)
	}
	if !got.AveragePrice.Equal(decimal.RequireFromString("0.2")) {
		t.Fatalf("AveragePrice = %s, want 0.2", got.AveragePrice)
	}
	if !got.PriceRange.Min.Equal(decimal.RequireFromString("0.1")) ||
		!got.PriceRange.Max.Equal(decimal.RequireFromString("0.3")) ||
		!got.PriceRange.Range.Equal(decimal.RequireFromString("0.2")) {
		t.Fatalf("unexpected price range: %+v", got.PriceRange)
	}
}

func TestAnalyzePriceDistributionPartitions(t *testing.T) {
	now := time.Now().UTC()
	items := []cart.Item{
		item("a", "llm", "s1", "0.005", time.Hour, now), // low
		item("b", "llm", "s1", "0.01", time.Hour, now),  // low (inclusive bound)
		item("c", "llm", "s1", "0.05", time.Hour, now),  // medium
		item("d", "llm", "s1", "0.1", time.Hour, now),   // medium (inclusive bound)
		item("e", "llm", "s1", "0.5", time.Hour, now),   // high
	}

	got := Analyze(items, now).PriceDistribution
	if got.Low != 2 || got.Medium != 2 || got.High != 1 {
		t.Fatalf("distribution = %+v, want {2 2 1}", got)
	}
	if got.Low+got.Medium+got.High != len(items) {
		t.Fatal("every item must land in exactly one bucket")
	}
}

func TestAnalyzeGroupsDeterministic(t *testing.T) {
	now := time.Now().UTC()
	items := []cart.Item{
		item("a", "llm", "s1", "0.1", time.Hour, now),
		item("b", "llm", "s1", "0.1", time.Hour, now),
		item("c", "vision", "s2", "0.1", time.Hour, now),
		item("d", "audio", "s2", "0.1", time.Hour, now),
	}

	first := Analyze(items, now)
	second := Analyze(items, now)

	if first.Categories[0].Name != "llm" || first.Categories[0].Count != 2 {
		t.Fatalf("expected llm first with count 2, got %+v", first.Categories[0])
	}
	// Ties broken by name so repeated runs agree
	for i := range first.Categories {
		if first.Categories[i].Name != second.Categories[i].Name {
			t.Fatal("category ordering must be deterministic")
		}
	}
	if first.Categories[1].Name != "audio" || first.Categories[2].Name != "vision" {
		t.Fatalf("tied categories must sort by name: %+v", first.Categories)
	}
}

func TestAnalyzeRecency(t *testing.T) {
	now := time.Now().UTC()
	var items []cart.Item
	ids := []string{"a", "b", "c", "d", "e", "f", "g"}
	for i, id := range ids {
		items = append(items, item(id, "llm", "s1", "0.1", time.Duration(i)*time.Hour, now))
	}

	got := Analyze(items, now)
	if len(got.RecentItems) != 5 || len(got.OldestItems) != 5 {
		t.Fatalf("recency lists must cap at 5, got %d/%d", len(got.RecentItems), len(got.OldestItems))
	}
	if got.RecentItems[0].ID != "a" {
		t.Fatalf("recent must lead with the newest item, got %q", got.RecentItems[0].ID)
	}
	if got.OldestItems[0].ID != "g" {
		t.Fatalf("oldest must lead with the oldest item, got %q", got.OldestItems[0].ID)
	}
}

func TestAnalyzeExpensiveItems(t *testing.T) {
	now := time.Now().UTC()
	items := []cart.Item{
		item("cheap1", "llm", "s1", "0.1", time.Hour, now),
		item("cheap2", "llm", "s1", "0.1", time.Hour, now),
		item("pricey", "llm", "s1", "1.0", time.Hour, now),
	}
	// average 0.4, cutoff 0.6: only "pricey" qualifies

	opt := Analyze(items, now).Recommendations.PriceOptimization
	if len(opt.ExpensiveItems) != 1 || opt.ExpensiveItems[0].ID != "pricey" {
		t.Fatalf("expected only the pricey item flagged, got %+v", opt.ExpensiveItems)
	}
	if !opt.CanSave {
		t.Fatal("savings must be reported when expensive items exist")
	}
	if !opt.PotentialSavings.Equal(decimal.RequireFromString("0.6")) {
		t.Fatalf("PotentialSavings = %s, want 0.6", opt.PotentialSavings)
	}
	if len(opt.Suggestions) == 0 {
		t.Fatal("expensive items must produce a suggestion")
	}
}

func TestAnalyzeContractHeavySuggestion(t *testing.T) {
	now := time.Now().UTC()
	id := int64(1)
	onChain := item("a", "llm", "s1", "0.1", time.Hour, now)
	onChain.IsContractModel = true
	onChain.ContractModelID = &id
	items := []cart.Item{onChain}

	got := Analyze(items, now)
	if got.ContractModelCount != 1 || got.DatabaseModelCount != 0 {
		t.Fatalf("model split wrong: %d/%d", got.ContractModelCount, got.DatabaseModelCount)
	}

	found := false
	for _, s := range got.Recommendations.PriceOptimization.Suggestions {
		if s == "Most items are contract-tracked models; every purchase will need an on-chain transaction" {
			found = true
		}
	}
	if !found {
		t.Fatal("contract-heavy cart must produce the on-chain suggestion")
	}
}
