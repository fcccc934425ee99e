package handlers

import (
	"bytes"
	"net/http"

	"go-sales-agent/internal/export"
	"go-sales-agent/internal/reports"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// --- GET: /api/products?search=&brand= ---
func (h *Handler) GetProducts(c *gin.Context) {
	products := h.gw.ListProducts(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"products": reports.SearchProducts(products, c.Query("search"), c.Query("brand")),
		"brands":   reports.UniqueBrands(products),
	})
}

// --- GET: /api/products/:itemCode ---
// Fills the add-sale form with brand and price.
func (h *Handler) LookupProduct(c *gin.Context) {
	p, err := reports.FindProduct(h.gw.ListProducts(c.Request.Context()), c.Param("itemCode"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// --- GET: /api/products/export.csv ---
func (h *Handler) ExportProductsCSV(c *gin.Context) {
	var buf bytes.Buffer
	if err := export.ProductsCSV(&buf, h.gw.ListProducts(c.Request.Context())); err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="products.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// --- GET: /api/products/export.xlsx ---
func (h *Handler) ExportProductsXLSX(c *gin.Context) {
	var buf bytes.Buffer
	if err := export.ProductsXLSX(&buf, h.gw.ListProducts(c.Request.Context())); err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="products.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
