package ai

import (
	"context"
	"testing"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-sales-agent/internal/models"
)

type fakeData struct {
	sales   []models.Sale
	leaves  []models.Leave
	users   []models.User
	filters []models.Filter
}

func (f *fakeData) ListSales(_ context.Context, filter models.Filter) []models.Sale {
	f.filters = append(f.filters, filter)
	out := []models.Sale{}
	for _, s := range f.sales {
		if filter.Matches(s) {
			out = append(out, s)
		}
	}
	return out
}

func (f *fakeData) ListLeaves(context.Context, models.Filter) []models.Leave { return f.leaves }
func (f *fakeData) ListSalesmen(context.Context) []models.User         { return f.users }

func newTestAgent() (*Agent, *fakeData) {
	price := decimal.RequireFromString("100")
	data := &fakeData{
		sales: []models.Sale{
			{SalesmanID: "SM001", Date: "2024-03-01", Brand: "Acme", Quantity: 2, Price: price},
			{SalesmanID: "SM002", Date: "2024-03-15", Brand: "Zen", Quantity: 1, Price: price},
			{SalesmanID: "SM001", Date: "2024-04-01", Brand: "Acme", Quantity: 1, Price: price},
		},
		users: []models.User{
			{Name: "Ravi Kumar", Role: models.RoleSalesman, SalesmanID: "SM001"},
			{Name: "Priya Sharma", Role: models.RoleSalesman, SalesmanID: "SM002"},
		},
		leaves: []models.Leave{
			{SalesmanID: "SM002", SalesmanName: "Priya Sharma", Date: "2024-03-10", Status: models.LeaveApproved, IsCritical: true},
		},
	}
	return &Agent{data: data, now: func() time.Time { return time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC) }}, data
}

func call(name string, args map[string]any) genai.FunctionCall {
	return genai.FunctionCall{Name: name, Args: args}
}

func TestSalesReportTool(t *testing.T) {
	a, data := newTestAgent()
	ctx := context.Background()

	out := a.executeTool(ctx, call("get_sales_report", map[string]any{"start_date": "2024-03-01", "end_date": "2024-03-31"}))
	assert.Equal(t, 2, out["sales_count"])
	assert.Equal(t, "AED 300.00", out["revenue"])
	assert.Equal(t, "2024-03", data.filters[0].Month)

	out = a.executeTool(ctx, call("get_sales_report", map[string]any{"start_date": "2024-03-10", "end_date": "2024-04-30", "salesman_id": "SM001"}))
	assert.Equal(t, 1, out["sales_count"])
	assert.Empty(t, data.filters[1].Month)

	out = a.executeTool(ctx, call("get_sales_report", map[string]any{"start_date": "March", "end_date": "2024-03-31"}))
	assert.Contains(t, out, "error")
}

func TestRankingTools(t *testing.T) {
	a, _ := newTestAgent()
	ctx := context.Background()

	out := a.executeTool(ctx, call("get_top_brands", map[string]any{"month": "2024-03", "limit": float64(1)}))
	brands, ok := out["brands"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, brands, 1)
	assert.Equal(t, "Acme", brands[0]["brand"])

	out = a.executeTool(ctx, call("get_top_performer", map[string]any{"month": "2024-03"}))
	best, ok := out["top_performer"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "SM001", best["salesman_id"])

	out = a.executeTool(ctx, call("get_top_performer", map[string]any{"month": "2023-01"}))
	assert.Nil(t, out["top_performer"])
}

func TestLeaveAndSalesmenTools(t *testing.T) {
	a, _ := newTestAgent()
	ctx := context.Background()

	out := a.executeTool(ctx, call("get_leave_stats", map[string]any{"date": "2024-03-10"}))
	assert.Equal(t, []string{"Priya Sharma (SM002)"}, out["critical"])

	out = a.executeTool(ctx, call("list_salesmen", nil))
	assert.Len(t, out["salesmen"], 2)

	out = a.executeTool(ctx, call("delete_everything", nil))
	assert.Equal(t, `unknown tool "delete_everything"`, out["error"])
}

func TestSystemPromptCarriesToday(t *testing.T) {
	a, _ := newTestAgent()
	assert.Contains(t, a.systemPrompt("how are sales?"), "Today is 2024-03-20")
}
