package handlers

import (
	"net/http"

	"go-sales-agent/internal/models"
	"go-sales-agent/internal/reports"
	"go-sales-agent/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// SaleRequest defines what the Frontend sends us. Brand and price come from the catalog.
type SaleRequest struct {
	ItemCode string `json:"itemCode" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,gt=0"`
	Date     string `json:"date"`
}

// --- GET: /api/sales?salesmanId=&date=&month= ---
// A salesman only ever sees their own sales.
func (h *Handler) GetSales(c *gin.Context) {
	var f models.Filter
	if err := c.ShouldBindQuery(&f); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid filter"})
		return
	}
	if u := sessionUser(c); u.IsSalesman() {
		f.SalesmanID = u.SalesmanID
	}
	c.JSON(http.StatusOK, h.gw.ListSales(c.Request.Context(), f))
}

// --- POST: /api/sales ---
func (h *Handler) AddSale(c *gin.Context) {
	var req SaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Item code and a positive quantity are required"})
		return
	}
	ctx := c.Request.Context()
	u := sessionUser(c)

	product, err := reports.FindProduct(h.gw.ListProducts(ctx), req.ItemCode)
	if err != nil {
		respondError(c, err)
		return
	}

	now := h.now()
	date := req.Date
	if date == "" {
		date = utils.Today(now)
	}
	sale := models.Sale{
		SalesmanID:   u.SalesmanID,
		SalesmanName: u.Name,
		Date:         date,
		Brand:        product.Brand,
		ItemCode:     product.ItemCode,
		Quantity:     req.Quantity,
		Price:        product.Price,
		TotalAmount:  decimal.NewNullDecimal(product.Price.Mul(decimal.NewFromInt(int64(req.Quantity)))),
		Timestamp:    utils.Timestamp(now),
	}

	res, err := h.gw.CreateSale(ctx, sale)
	if res.Offline {
		// saved locally, not on the server yet
		c.JSON(http.StatusAccepted, gin.H{"success": true, "offline": true, "sale": res.Record, "pendingRef": res.PendingRef})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "offline": false, "sale": res.Record})
}

// --- DELETE: /api/sales/:id ---
func (h *Handler) DeleteSale(c *gin.Context) {
	if err := h.gw.DeleteSale(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
