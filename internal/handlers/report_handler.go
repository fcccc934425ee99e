package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"go-sales-agent/internal/export"
	"go-sales-agent/internal/models"
	"go-sales-agent/internal/reports"
	"go-sales-agent/internal/utils"

	"github.com/gin-gonic/gin"
)

// --- GET: /api/reports/dashboard?view=&date=&search= ---
func (h *Handler) AdminDashboard(c *gin.Context) {
	selected, ok := h.selectedDay(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	report := reports.AdminDashboard(
		reports.ParseView(c.Query("view")),
		selected,
		h.gw.ListSales(ctx, models.Filter{}),
		h.gw.ListLeaves(ctx, models.Filter{}),
		h.gw.ListSalesmen(ctx),
		c.Query("search"),
	)
	c.JSON(http.StatusOK, gin.H{
		"report":        report,
		"totalSalesFmt": utils.Money(report.TotalSales),
		"offline":       !h.gw.Online(),
	})
}

// --- GET: /api/me/dashboard?view=&date= ---
func (h *Handler) MyDashboard(c *gin.Context) {
	selected, ok := h.selectedDay(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	u := sessionUser(c)
	own := models.Filter{SalesmanID: u.SalesmanID}

	report := reports.SalesmanDashboard(
		reports.ParseView(c.Query("view")),
		selected,
		h.gw.ListSales(ctx, own),
		h.gw.ListLeaves(ctx, own),
		h.now(),
	)
	c.JSON(http.StatusOK, gin.H{"report": report, "offline": !h.gw.Online()})
}

// --- GET: /api/reports/leaves?date= ---
func (h *Handler) LeaveReport(c *gin.Context) {
	selected, ok := h.selectedDay(c)
	if !ok {
		return
	}
	stats := reports.LeaveStats(h.gw.ListLeaves(c.Request.Context(), models.Filter{}), utils.Today(selected))
	c.JSON(http.StatusOK, stats)
}

// --- GET: /api/reports/sales/export.xlsx?view=&date= ---
func (h *Handler) ExportSalesReport(c *gin.Context) {
	selected, ok := h.selectedDay(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	view := reports.ParseView(c.Query("view"))
	sales := h.gw.ListSales(ctx, models.Filter{})
	report := reports.AdminDashboard(view, selected, sales, nil, h.gw.ListSalesmen(ctx), "")

	var buf bytes.Buffer
	if err := export.SalesReportXLSX(&buf, report, view.Sales(sales, selected)); err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="sales-%s.xlsx"`, report.Period))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
