// Package reports turns flat sale and leave collections into the views the
// dashboards show. Every function is pure; callers pass whatever the gateway
// returned, online or not.
package reports

import (
	"strings"

	"github.com/shopspring/decimal"

	"go-sales-agent/internal/models"
)

// FilterByDay keeps the sales made on day ("YYYY-MM-DD").
func FilterByDay(sales []models.Sale, day string) []models.Sale {
	out := make([]models.Sale, 0)
	for _, s := range sales {
		if s.Date == day {
			out = append(out, s)
		}
	}
	return out
}

// FilterByMonth keeps the sales whose date starts with month ("YYYY-MM").
func FilterByMonth(sales []models.Sale, month string) []models.Sale {
	out := make([]models.Sale, 0)
	for _, s := range sales {
		if strings.HasPrefix(s.Date, month) {
			out = append(out, s)
		}
	}
	return out
}

func FilterBySalesman(sales []models.Sale, salesmanID string) []models.Sale {
	out := make([]models.Sale, 0)
	for _, s := range sales {
		if s.SalesmanID == salesmanID {
			out = append(out, s)
		}
	}
	return out
}

// EffectiveTotal is the recorded total when there is one, quantity × price otherwise.
func EffectiveTotal(s models.Sale) decimal.Decimal {
	if s.TotalAmount.Valid {
		return s.TotalAmount.Decimal
	}
	return s.Price.Mul(decimal.NewFromInt(int64(s.Quantity)))
}

func SumTotals(sales []models.Sale) decimal.Decimal {
	total := decimal.Zero
	for _, s := range sales {
		total = total.Add(EffectiveTotal(s))
	}
	return total
}

// SalesmanSummary is one row of the per-salesman table.
type SalesmanSummary struct {
	Name             string          `json:"name"`
	SalesmanID       string          `json:"salesmanId"`
	TransactionCount int             `json:"transactionCount"`
	TotalSales       decimal.Decimal `json:"totalSales"`
}

// GroupBySalesman returns one row per salesman in salesmen order. Salesmen
// without sales are listed with zero totals; sales of unknown salesmen are ignored.
func GroupBySalesman(sales []models.Sale, salesmen []models.User) []SalesmanSummary {
	index := make(map[string]int, len(salesmen))
	out := make([]SalesmanSummary, len(salesmen))
	for i, u := range salesmen {
		out[i] = SalesmanSummary{Name: u.Name, SalesmanID: u.SalesmanID, TotalSales: decimal.Zero}
		if _, dup := index[u.SalesmanID]; !dup {
			index[u.SalesmanID] = i
		}
	}
	for _, s := range sales {
		i, ok := index[s.SalesmanID]
		if !ok {
			continue
		}
		out[i].TransactionCount++
		out[i].TotalSales = out[i].TotalSales.Add(EffectiveTotal(s))
	}
	return out
}

// TopPerformer picks the salesman with the highest total. It reports false
// when there are no salesmen or nobody sold anything.
func TopPerformer(sales []models.Sale, salesmen []models.User) (SalesmanSummary, bool) {
	var best SalesmanSummary
	found := false
	for _, row := range GroupBySalesman(sales, salesmen) {
		if !row.TotalSales.IsPositive() {
			continue
		}
		if !found || row.TotalSales.GreaterThan(best.TotalSales) {
			best, found = row, true
		}
	}
	return best, found
}

// FilterByRange keeps the sales dated from..to inclusive. Empty bounds are open.
func FilterByRange(sales []models.Sale, from, to string) []models.Sale {
	out := make([]models.Sale, 0)
	for _, s := range sales {
		if (from == "" || s.Date >= from) && (to == "" || s.Date <= to) {
			out = append(out, s)
		}
	}
	return out
}
