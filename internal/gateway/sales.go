package gateway

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"go-sales-agent/internal/models"
	"go-sales-agent/internal/store"
	"go-sales-agent/internal/utils"
)

// saleKey identifies a record before and after the service assigns its id.
// Timestamps alone collide when two salesmen record in the same millisecond.
func saleKey(s models.Sale) string {
	if s.Timestamp != "" {
		return s.SalesmanID + "|" + s.Timestamp
	}
	return s.ID.String()
}

// ListSales returns the sales matching f.
func (g *Gateway) ListSales(ctx context.Context, f models.Filter) []models.Sale {
	return readThrough(ctx, g, store.Sales, "/api/sales", f, saleKey)
}

// CreateSale records s locally and pushes it to the service. When the service
// is unreachable the sale stays queued and the returned error wraps
// ErrRemoteUnavailable alongside a result marked Offline.
func (g *Gateway) CreateSale(ctx context.Context, s models.Sale) (WriteResult[models.Sale], error) {
	s.ID = ""
	s.Brand = strings.TrimSpace(s.Brand)
	s.ItemCode = strings.TrimSpace(s.ItemCode)
	switch {
	case s.SalesmanID == "":
		return WriteResult[models.Sale]{}, invalid("salesman ID is required")
	case s.ItemCode == "":
		return WriteResult[models.Sale]{}, invalid("item code is required")
	case s.Quantity <= 0:
		return WriteResult[models.Sale]{}, invalid("quantity must be a positive number")
	case s.Price.IsNegative():
		return WriteResult[models.Sale]{}, invalid("price cannot be negative")
	}
	if _, err := utils.ParseDay(s.Date); err != nil {
		return WriteResult[models.Sale]{}, invalid("invalid sale date %q", s.Date)
	}
	if s.Timestamp == "" {
		s.Timestamp = utils.Timestamp(time.Now())
	}
	if !s.TotalAmount.Valid {
		s.TotalAmount = decimal.NewNullDecimal(s.Price.Mul(decimal.NewFromInt(int64(s.Quantity))))
	}
	return writeThrough(ctx, g, store.Sales, "/api/sales", "sale", s, saleKey(s), s.SalesmanID, saleKey)
}

// DeleteSale removes a sale by its server-assigned id.
func (g *Gateway) DeleteSale(ctx context.Context, id string) error {
	if id == "" {
		return invalid("sale id is required")
	}
	if err := g.do(ctx, http.MethodDelete, "/api/sales/"+url.PathEscape(id), nil, nil, nil); err != nil {
		return err
	}
	_, err := store.RemoveWhere(ctx, g.store, store.Sales, func(s models.Sale) bool { return s.ID.String() == id })
	return err
}
