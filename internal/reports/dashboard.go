package reports

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"go-sales-agent/internal/models"
	"go-sales-agent/internal/utils"
)

// View selects the period a dashboard covers.
type View string

const (
	Daily   View = "daily"
	Monthly View = "monthly"
)

// ParseView falls back to Daily for anything it does not know.
func ParseView(s string) View {
	if View(s) == Monthly {
		return Monthly
	}
	return Daily
}

// Period returns the key the view filters on: the day for Daily, the month for Monthly.
func (v View) Period(selected time.Time) string {
	if v == Monthly {
		return utils.MonthKey(selected)
	}
	return utils.Today(selected)
}

// Sales narrows sales to the view's period.
func (v View) Sales(sales []models.Sale, selected time.Time) []models.Sale {
	if v == Monthly {
		return FilterByMonth(sales, v.Period(selected))
	}
	return FilterByDay(sales, v.Period(selected))
}

func (v View) Leaves(leaves []models.Leave, selected time.Time) []models.Leave {
	if v == Monthly {
		return FilterLeavesByMonth(leaves, v.Period(selected))
	}
	return FilterLeavesByDay(leaves, v.Period(selected))
}

// AdminReport is everything the admin dashboard renders for one period.
type AdminReport struct {
	View             View               `json:"view"`
	Period           string             `json:"period"`
	TotalSales       decimal.Decimal    `json:"totalSales"`
	TransactionCount int                `json:"transactionCount"`
	Salesmen         []SalesmanSummary  `json:"salesmen"`
	TopBrands        []BrandPerformance `json:"topBrands"`
	TopPerformer     *SalesmanSummary   `json:"topPerformer"`
	Leaves           []models.Leave     `json:"leaves"`
	LeaveStats       LeaveSummary       `json:"leaveStats"`
	Trend            []TrendPoint       `json:"trend"`
}

// AdminDashboard builds the admin view. search narrows the salesman table,
// the brand ranking and the leave list; the totals and the top performer
// always cover the whole period.
func AdminDashboard(view View, selected time.Time, sales []models.Sale, leaves []models.Leave, salesmen []models.User, search string) AdminReport {
	window := view.Sales(sales, selected)
	report := AdminReport{
		View:             view,
		Period:           view.Period(selected),
		TotalSales:       SumTotals(window),
		TransactionCount: len(window),
		Salesmen:         SearchSalesmen(GroupBySalesman(window, salesmen), search),
		TopBrands:        FilterBrandPerformance(TopBrands(window, DefaultTopBrands), search),
		Leaves:           SearchLeaves(view.Leaves(leaves, selected), search),
		LeaveStats:       LeaveStats(leaves, utils.Today(selected)),
		Trend:            slices.Collect(DailyTrend(sales, selected, DefaultTrendDays)),
	}
	if best, ok := TopPerformer(window, salesmen); ok {
		report.TopPerformer = &best
	}
	return report
}

// SalesmanReport is a salesman's own dashboard.
type SalesmanReport struct {
	View             View            `json:"view"`
	Period           string          `json:"period"`
	TotalSales       decimal.Decimal `json:"totalSales"`
	TransactionCount int             `json:"transactionCount"`
	TodayTotal       decimal.Decimal `json:"todayTotal"`
	MonthTotal       decimal.Decimal `json:"monthTotal"`
	Sales            []models.Sale   `json:"sales"`
	Leaves           []models.Leave  `json:"leaves"`
	Trend            []TrendPoint    `json:"trend"`
}

// SalesmanDashboard expects sales and leaves already narrowed to one salesman.
// Newest sales come first.
func SalesmanDashboard(view View, selected time.Time, sales []models.Sale, leaves []models.Leave, today time.Time) SalesmanReport {
	window := view.Sales(sales, selected)
	slices.SortStableFunc(window, func(a, b models.Sale) int {
		switch {
		case a.Timestamp > b.Timestamp:
			return -1
		case a.Timestamp < b.Timestamp:
			return 1
		}
		return 0
	})
	return SalesmanReport{
		View:             view,
		Period:           view.Period(selected),
		TotalSales:       SumTotals(window),
		TransactionCount: len(window),
		TodayTotal:       SumTotals(FilterByDay(sales, utils.Today(today))),
		MonthTotal:       SumTotals(FilterByMonth(sales, utils.MonthKey(today))),
		Sales:            window,
		Leaves:           view.Leaves(leaves, selected),
		Trend:            slices.Collect(DailyTrend(sales, today, DefaultTrendDays)),
	}
}
