package reports

import (
	"iter"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"go-sales-agent/internal/models"
	"go-sales-agent/internal/utils"
)

const DefaultTrendDays = 7

// TrendPoint is one day of the sales trend chart.
type TrendPoint struct {
	Date  string          `json:"date"`
	Label string          `json:"label"`
	Total decimal.Decimal `json:"total"`
}

// DailyTrend yields the totals of the days days ending at ref, oldest first.
// Days without sales yield a zero total. days <= 0 means DefaultTrendDays.
// The sequence is single-use: ranging over it again yields nothing, so collect
// it first when the points are needed twice.
func DailyTrend(sales []models.Sale, ref time.Time, days int) iter.Seq[TrendPoint] {
	if days <= 0 {
		days = DefaultTrendDays
	}
	byDay := make(map[string]decimal.Decimal)
	for _, s := range sales {
		byDay[s.Date] = byDay[s.Date].Add(EffectiveTotal(s))
	}
	var used atomic.Bool
	return func(yield func(TrendPoint) bool) {
		if used.Swap(true) {
			return
		}
		for i := days - 1; i >= 0; i-- {
			day := ref.AddDate(0, 0, -i)
			key := utils.Today(day)
			total, ok := byDay[key]
			if !ok {
				total = decimal.Zero
			}
			if !yield(TrendPoint{Date: key, Label: day.Format("Jan 2"), Total: total}) {
				return
			}
		}
	}
}
