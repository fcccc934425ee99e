package reports

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"go-sales-agent/internal/models"
)

const DefaultTopBrands = 5

// BrandPerformance aggregates the sales of one brand.
type BrandPerformance struct {
	Brand    string          `json:"brand"`
	Quantity int             `json:"quantity"`
	Total    decimal.Decimal `json:"total"`
}

// TopBrands ranks brands by total, highest first. Brands with equal totals
// keep the order in which they first appear in sales. limit <= 0 means DefaultTopBrands.
func TopBrands(sales []models.Sale, limit int) []BrandPerformance {
	if limit <= 0 {
		limit = DefaultTopBrands
	}
	ranked := BrandBreakdown(sales)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// BrandBreakdown is TopBrands without the limit.
func BrandBreakdown(sales []models.Sale) []BrandPerformance {
	index := make(map[string]int)
	var out []BrandPerformance
	for _, s := range sales {
		brand := s.Brand
		if brand == "" {
			brand = "Unknown"
		}
		i, ok := index[brand]
		if !ok {
			i = len(out)
			index[brand] = i
			out = append(out, BrandPerformance{Brand: brand, Total: decimal.Zero})
		}
		out[i].Quantity += s.Quantity
		out[i].Total = out[i].Total.Add(EffectiveTotal(s))
	}
	slices.SortStableFunc(out, func(a, b BrandPerformance) int {
		return b.Total.Cmp(a.Total)
	})
	if out == nil {
		out = []BrandPerformance{}
	}
	return out
}

// FilterBrandPerformance keeps the brands whose name contains term, ignoring case.
func FilterBrandPerformance(brands []BrandPerformance, term string) []BrandPerformance {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return brands
	}
	out := make([]BrandPerformance, 0, len(brands))
	for _, b := range brands {
		if strings.Contains(strings.ToLower(b.Brand), term) {
			out = append(out, b)
		}
	}
	return out
}
