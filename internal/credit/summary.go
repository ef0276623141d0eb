package credit

import (
	"slices"

	"github.com/mahmoud-slama/creditapp/internal/model"
	"github.com/shopspring/decimal"
)

// RecentCount is how many purchases the dashboards list.
const RecentCount = 5

// Summary aggregates the admin dashboard figures.
type Summary struct {
	Revenue   decimal.Decimal
	Recent    []model.Purchase
	Clients   int
	Products  int
	Purchases int
	OverLimit int
}

// Summarize computes the admin dashboard from the fetched collections.
func Summarize(clients []model.Client, products []model.Product, purchases []model.Purchase) Summary {
	s := Summary{
		Clients:   len(clients),
		Products:  len(products),
		Purchases: len(purchases),
		Revenue:   Revenue(purchases),
		Recent:    Recent(purchases, RecentCount),
	}
	for _, c := range clients {
		if c.OverLimit() {
			s.OverLimit++
		}
	}
	return s
}

// Revenue sums purchase amounts without float drift.
func Revenue(purchases []model.Purchase) decimal.Decimal {
	total := decimal.Zero
	for _, p := range purchases {
		total = total.Add(decimal.NewFromFloat(p.Amount))
	}
	return total
}

// Recent returns up to n purchases, newest first. Undated purchases sort last.
func Recent(purchases []model.Purchase, n int) []model.Purchase {
	sorted := slices.Clone(purchases)
	slices.SortStableFunc(sorted, func(a, b model.Purchase) int {
		return b.Date().Compare(a.Date())
	})
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
