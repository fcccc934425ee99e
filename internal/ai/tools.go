package ai

import (
	"context"
	"fmt"

	"go-sales-agent/internal/models"
	"go-sales-agent/internal/reports"
	"go-sales-agent/internal/utils"

	"github.com/google/generative-ai-go/genai"
)

var toolDeclarations = []*genai.FunctionDeclaration{
	{
		Name:        "get_sales_report",
		Description: "Get total sales and the number of transactions for a date range, optionally for one salesman.",
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"start_date":  {Type: genai.TypeString, Description: "Start date (YYYY-MM-DD)"},
				"end_date":    {Type: genai.TypeString, Description: "End date (YYYY-MM-DD)"},
				"salesman_id": {Type: genai.TypeString, Description: "Salesman ID such as SM001 (optional)"},
			},
			Required: []string{"start_date", "end_date"},
		},
	},
	{
		Name:        "get_top_brands",
		Description: "Rank brands by sales total for a month.",
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"month": {Type: genai.TypeString, Description: "Month (YYYY-MM)"},
				"limit": {Type: genai.TypeInteger, Description: "How many brands, default 5"},
			},
			Required: []string{"month"},
		},
	},
	{
		Name:        "get_top_performer",
		Description: "Find the salesman with the highest sales in a month.",
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"month": {Type: genai.TypeString, Description: "Month (YYYY-MM)"},
			},
			Required: []string{"month"},
		},
	},
	{
		Name:        "get_leave_stats",
		Description: "List who is on approved leave on a day, who of them is critical, and leave counts per month.",
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"date": {Type: genai.TypeString, Description: "Day (YYYY-MM-DD)"},
			},
			Required: []string{"date"},
		},
	},
	{
		Name:        "list_salesmen",
		Description: "List every salesman with their name and salesman ID.",
	},
}

// executeTool runs one function call and returns the payload sent back to the model.
func (a *Agent) executeTool(ctx context.Context, call genai.FunctionCall) map[string]any {
	switch call.Name {
	case "get_sales_report":
		start, end := stringArg(call.Args, "start_date"), stringArg(call.Args, "end_date")
		if _, err := utils.ParseDay(start); err != nil {
			return toolError("start_date must be YYYY-MM-DD")
		}
		if _, err := utils.ParseDay(end); err != nil {
			return toolError("end_date must be YYYY-MM-DD")
		}
		f := models.Filter{SalesmanID: stringArg(call.Args, "salesman_id")}
		if models.MonthOf(start) == models.MonthOf(end) {
			f.Month = models.MonthOf(start)
		}
		sales := reports.FilterByRange(a.data.ListSales(ctx, f), start, end)
		total := reports.SumTotals(sales)
		return map[string]any{
			"revenue":     utils.Money(total),
			"total":       total.InexactFloat64(),
			"sales_count": len(sales),
		}

	case "get_top_brands":
		month := stringArg(call.Args, "month")
		if _, err := utils.ParseMonth(month); err != nil {
			return toolError("month must be YYYY-MM")
		}
		sales := a.data.ListSales(ctx, models.Filter{Month: month})
		brands := reports.TopBrands(reports.FilterByMonth(sales, month), intArg(call.Args, "limit"))
		rows := make([]map[string]any, 0, len(brands))
		for _, b := range brands {
			rows = append(rows, map[string]any{"brand": b.Brand, "quantity": b.Quantity, "total": utils.Money(b.Total)})
		}
		return map[string]any{"brands": rows}

	case "get_top_performer":
		month := stringArg(call.Args, "month")
		if _, err := utils.ParseMonth(month); err != nil {
			return toolError("month must be YYYY-MM")
		}
		sales := reports.FilterByMonth(a.data.ListSales(ctx, models.Filter{Month: month}), month)
		best, ok := reports.TopPerformer(sales, a.data.ListSalesmen(ctx))
		if !ok {
			return map[string]any{"top_performer": nil, "note": "no sales recorded in " + month}
		}
		return map[string]any{"top_performer": map[string]any{
			"name":         best.Name,
			"salesman_id":  best.SalesmanID,
			"transactions": best.TransactionCount,
			"total":        utils.Money(best.TotalSales),
		}}

	case "get_leave_stats":
		day := stringArg(call.Args, "date")
		if _, err := utils.ParseDay(day); err != nil {
			return toolError("date must be YYYY-MM-DD")
		}
		stats := reports.LeaveStats(a.data.ListLeaves(ctx, models.Filter{}), day)
		return map[string]any{
			"on_leave":        leaveNames(stats.OnLeaveToday),
			"critical":        leaveNames(stats.CriticalOnLeave),
			"monthly_summary": stats.MonthlySummary,
		}

	case "list_salesmen":
		salesmen := a.data.ListSalesmen(ctx)
		rows := make([]map[string]any, 0, len(salesmen))
		for _, u := range salesmen {
			rows = append(rows, map[string]any{"name": u.Name, "salesman_id": u.SalesmanID})
		}
		return map[string]any{"salesmen": rows}
	}
	return toolError(fmt.Sprintf("unknown tool %q", call.Name))
}

func toolError(msg string) map[string]any {
	return map[string]any{"error": msg}
}

func leaveNames(leaves []models.Leave) []string {
	out := make([]string, 0, len(leaves))
	for _, l := range leaves {
		out = append(out, fmt.Sprintf("%s (%s)", l.SalesmanName, l.SalesmanID))
	}
	return out
}

func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

// intArg reads a number the model sent; JSON numbers arrive as float64.
func intArg(args map[string]any, key string) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}
