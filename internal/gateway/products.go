package gateway

import (
	"context"
	"log"
	"net/http"

	"go-sales-agent/internal/models"
	"go-sales-agent/internal/store"
)

// ListProducts fetches the catalog and normalizes each row. Rows that match
// none of the known column names are skipped. The cached catalog is replaced
// wholesale on success.
func (g *Gateway) ListProducts(ctx context.Context) []models.Product {
	var rows []map[string]any
	if err := g.do(ctx, http.MethodGet, "/api/products", nil, nil, &rows); err != nil {
		log.Printf("API error on GET /api/products, serving local snapshot: %v", err)
		cached, lErr := store.Load[models.Product](ctx, g.store, store.Products)
		if lErr != nil {
			log.Printf("❌ fallback snapshot %s unreadable: %v", store.Products, lErr)
		}
		return cached
	}

	products := make([]models.Product, 0, len(rows))
	skipped := 0
	for _, row := range rows {
		p, err := models.NormalizeProduct(row)
		if err != nil {
			skipped++
			continue
		}
		products = append(products, p)
	}
	if skipped > 0 {
		log.Printf("⚠️ Skipped %d malformed catalog rows", skipped)
	}
	if err := store.Save(ctx, g.store, store.Products, products); err != nil {
		log.Printf("⚠️ could not mirror %s into the fallback store: %v", store.Products, err)
	}
	return products
}
