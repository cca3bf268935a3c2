// internal/domain/insights/service.go
package insights

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/ainexus-marketplace/internal/domain/cart"
)

// Price distribution bucket bounds, in base-currency units
var (
	lowBucketMax    = decimal.RequireFromString("0.01")
	mediumBucketMax = decimal.RequireFromString("0.1")
)

const (
	topGroupLimit     = 5
	recencyLimit      = 5
	similarItemsLimit = 3
)

// expensiveFactor marks items priced above this multiple of the cart average
var expensiveFactor = decimal.RequireFromString("1.5")

// GroupStat is a per-category or per-seller accumulation
type GroupStat struct {
	Name       string          `json:"name"`
	Count      int             `json:"count"`
	Value      decimal.Decimal `json:"value"`
	Percentage float64         `json:"percentage"`
}

// PriceRange is the min/max spread over parsed item prices
type PriceRange struct {
	Min   decimal.Decimal `json:"min"`
	Max   decimal.Decimal `json:"max"`
	Range decimal.Decimal `json:"range"`
}

// PriceDistribution buckets items by parsed price: low <= 0.01 < medium <= 0.1 < high
type PriceDistribution struct {
	Low    int `json:"low"`
	Medium int `json:"medium"`
	High   int `json:"high"`
}

// PriceOptimization flags items costing well above the cart average
type PriceOptimization struct {
	ExpensiveItems   []cart.Item     `json:"expensive_items"`
	PotentialSavings decimal.Decimal `json:"potential_savings"`
	CanSave          bool            `json:"can_save"`
	Suggestions      []string        `json:"suggestions"`
}

// Recommendations is the derived shopping guidance block
type Recommendations struct {
	SimilarItems      []cart.Item       `json:"similar_items"`
	PopularCategories []string          `json:"popular_categories"`
	PriceOptimization PriceOptimization `json:"price_optimization"`
}

// Insights is the full read-only projection over cart items
type Insights struct {
	TotalItems         int               `json:"total_items"`
	TotalValue         decimal.Decimal   `json:"total_value"`
	AveragePrice       decimal.Decimal   `json:"average_price"`
	ContractModelCount int               `json:"contract_model_count"`
	DatabaseModelCount int               `json:"database_model_count"`
	Categories         []GroupStat       `json:"categories"`
	TopCategories      []GroupStat       `json:"top_categories"`
	Sellers            []GroupStat       `json:"sellers"`
	TopSellers         []GroupStat       `json:"top_sellers"`
	PriceRange         PriceRange        `json:"price_range"`
	PriceDistribution  PriceDistribution `json:"price_distribution"`
	RecentItems        []cart.Item       `json:"recent_items"`
	OldestItems        []cart.Item       `json:"oldest_items"`
	AverageAgeDays     float64           `json:"average_age_days"`
	Recommendations    Recommendations   `json:"recommendations"`
}

// Analyze computes the cart projection. It is a pure function of (items, now):
// no side effects, identical input yields identical output. The empty cart is
// the explicit base case, not an error.
func Analyze(items []cart.Item, now time.Time) Insights {
	if len(items) == 0 {
		return emptyInsights()
	}

	result := Insights{TotalItems: len(items)}

	// Aggregate value and price spread
	total := decimal.Zero
	min := items[0].PriceDecimal()
	max := min
	for _, item := range items {
		p := item.PriceDecimal()
		total = total.Add(p)
		if p.LessThan(min) {
			min = p
		}
		if p.GreaterThan(max) {
			max = p
		}
		if item.IsContractModel {
			result.ContractModelCount++
		} else {
			result.DatabaseModelCount++
		}
	}
	result.TotalValue = total
	result.AveragePrice = total.Div(decimal.NewFromInt(int64(len(items))))
	result.PriceRange = PriceRange{Min: min, Max: max, Range: max.Sub(min)}

	result.Categories = groupBy(items, func(i cart.Item) string { return i.Type })
	result.TopCategories = topN(result.Categories, topGroupLimit)
	result.Sellers = groupBy(items, func(i cart.Item) string { return i.Seller })
	result.TopSellers = topN(result.Sellers, topGroupLimit)

	result.PriceDistribution = distribute(items)
	result.RecentItems, result.OldestItems = byRecency(items)
	result.AverageAgeDays = averageAgeDays(items, now)
	result.Recommendations = recommend(items, result)

	return result
}

func emptyInsights() Insights {
	return Insights{
		TotalValue:        decimal.Zero,
		AveragePrice:      decimal.Zero,
		Categories:        []GroupStat{},
		TopCategories:     []GroupStat{},
		Sellers:           []GroupStat{},
		TopSellers:        []GroupStat{},
		PriceRange:        PriceRange{Min: decimal.Zero, Max: decimal.Zero, Range: decimal.Zero},
		RecentItems:       []cart.Item{},
		OldestItems:       []cart.Item{},
		Recommendations: Recommendations{
			SimilarItems:      []cart.Item{},
			PopularCategories: []string{},
			PriceOptimization: PriceOptimization{
				ExpensiveItems:   []cart.Item{},
				PotentialSavings: decimal.Zero,
				Suggestions:      []string{},
			},
		},
	}
}

// groupBy accumulates {count, value} per key and derives percentages.
// Output is ordered by count descending, ties broken by name, so repeated
// runs over the same items are bit-identical.
func groupBy(items []cart.Item, key func(cart.Item) string) []GroupStat {
	acc := map[string]*GroupStat{}
	for _, item := range items {
		k := key(item)
		stat, ok := acc[k]
		if !ok {
			stat = &GroupStat{Name: k, Value: decimal.Zero}
			acc[k] = stat
		}
		stat.Count++
		stat.Value = stat.Value.Add(item.PriceDecimal())
	}

	stats := make([]GroupStat, 0, len(acc))
	for _, stat := range acc {
		stat.Percentage = float64(stat.Count) / float64(len(items)) * 100
		stats = append(stats, *stat)
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return stats[i].Name < stats[j].Name
	})
	return stats
}

func topN(stats []GroupStat, n int) []GroupStat {
	if len(stats) < n {
		n = len(stats)
	}
	top := make([]GroupStat, n)
	copy(top, stats[:n])
	return top
}

// distribute buckets every item exactly once: low + medium + high == total
func distribute(items []cart.Item) PriceDistribution {
	var dist PriceDistribution
	for _, item := range items {
		p := item.PriceDecimal()
		switch {
		case p.LessThanOrEqual(lowBucketMax):
			dist.Low++
		case p.LessThanOrEqual(mediumBucketMax):
			dist.Medium++
		default:
			dist.High++
		}
	}
	return dist
}

func byRecency(items []cart.Item) (recent, oldest []cart.Item) {
	sorted := make([]cart.Item, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].AddedAt.After(sorted[j].AddedAt)
	})

	n := recencyLimit
	if len(sorted) < n {
		n = len(sorted)
	}
	recent = make([]cart.Item, n)
	copy(recent, sorted[:n])

	oldest = make([]cart.Item, n)
	copy(oldest, sorted[len(sorted)-n:])
	for i, j := 0, len(oldest)-1; i < j; i, j = i+1, j-1 {
		oldest[i], oldest[j] = oldest[j], oldest[i]
	}
	return recent, oldest
}

func averageAgeDays(items []cart.Item, now time.Time) float64 {
	var totalDays float64
	for _, item := range items {
		totalDays += now.Sub(item.AddedAt).Hours() / 24
	}
	return totalDays / float64(len(items))
}

func recommend(items []cart.Item, computed Insights) Recommendations {
	topCategories := map[string]bool{}
	popular := make([]string, 0, len(computed.TopCategories))
	for _, stat := range computed.TopCategories {
		topCategories[stat.Name] = true
		popular = append(popular, stat.Name)
	}

	// Similar: in a popular category and at or below the cart average
	similar := []cart.Item{}
	for _, item := range items {
		if len(similar) == similarItemsLimit {
			break
		}
		if topCategories[item.Type] && item.PriceDecimal().LessThanOrEqual(computed.AveragePrice) {
			similar = append(similar, item)
		}
	}

	expensiveCutoff := computed.AveragePrice.Mul(expensiveFactor)
	expensive := []cart.Item{}
	savings := decimal.Zero
	for _, item := range items {
		p := item.PriceDecimal()
		if p.GreaterThan(expensiveCutoff) {
			expensive = append(expensive, item)
			savings = savings.Add(p.Sub(computed.AveragePrice))
		}
	}

	suggestions := []string{}
	if len(expensive) > 0 {
		suggestions = append(suggestions, fmt.Sprintf(
			"%d item(s) cost more than 1.5x your cart average; similar models may be available for less", len(expensive)))
	}
	if computed.ContractModelCount > computed.DatabaseModelCount {
		suggestions = append(suggestions,
			"Most items are contract-tracked models; every purchase will need an on-chain transaction")
	}
	if len(computed.Categories) > 3 {
		suggestions = append(suggestions,
			"Your cart spans many categories; consider focusing on fewer model types per checkout")
	}

	return Recommendations{
		SimilarItems:      similar,
		PopularCategories: popular,
		PriceOptimization: PriceOptimization{
			ExpensiveItems:   expensive,
			PotentialSavings: savings,
			CanSave:          savings.IsPositive(),
			Suggestions:      suggestions,
		},
	}
}
