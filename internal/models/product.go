package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrMalformedProduct marks a catalog row that none of the known column names match.
var ErrMalformedProduct = errors.New("malformed product record")

// Product - one catalog line. ItemCode is the natural key within a snapshot.
type Product struct {
	Brand       string          `json:"brand"`
	ItemCode    string          `json:"itemCode"`
	ModelNumber string          `json:"modelNumber,omitempty"`
	Price       decimal.Decimal `json:"price"`
}

// Catalog uploads use spreadsheet headers, so the same field arrives under different names.
// Order matters: the first key present wins.
var (
	brandKeys    = []string{"brand", "Brand", "BRAND"}
	itemCodeKeys = []string{"itemCode", "Item Code", "ItemCode", "item_code"}
	modelKeys    = []string{"modelNumber", "Model Number", "Model", "model"}
	priceKeys    = []string{"price", "RSP+Vat", "RSP", "Cost", "Price"}
)

// NormalizeProduct maps a raw catalog row onto the canonical Product schema.
// Keys are trimmed first; a row missing brand, item code or price is rejected.
func NormalizeProduct(raw map[string]any) (Product, error) {
	row := make(map[string]any, len(raw))
	for k, v := range raw {
		row[strings.TrimSpace(k)] = v
	}

	brand, ok := pickString(row, brandKeys)
	if !ok {
		return Product{}, fmt.Errorf("%w: no brand column", ErrMalformedProduct)
	}
	code, ok := pickString(row, itemCodeKeys)
	if !ok || code == "" {
		return Product{}, fmt.Errorf("%w: no item code column", ErrMalformedProduct)
	}
	price, ok, err := pickDecimal(row, priceKeys)
	if err != nil {
		return Product{}, fmt.Errorf("%w: item %s: %v", ErrMalformedProduct, code, err)
	}
	if !ok {
		return Product{}, fmt.Errorf("%w: item %s has no price column", ErrMalformedProduct, code)
	}
	model, _ := pickString(row, modelKeys)

	return Product{
		Brand:       brand,
		ItemCode:    code,
		ModelNumber: model,
		Price:       price,
	}, nil
}

func pickString(row map[string]any, keys []string) (string, bool) {
	for _, k := range keys {
		v, ok := row[k]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case string:
			return strings.TrimSpace(t), true
		case float64:
			return decimal.NewFromFloat(t).String(), true
		default:
			return strings.TrimSpace(fmt.Sprint(t)), true
		}
	}
	return "", false
}

func pickDecimal(row map[string]any, keys []string) (decimal.Decimal, bool, error) {
	for _, k := range keys {
		v, ok := row[k]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case float64:
			return decimal.NewFromFloat(t), true, nil
		case string:
			d, err := decimal.NewFromString(strings.TrimSpace(t))
			if err != nil {
				return decimal.Decimal{}, false, fmt.Errorf("price %q is not a number", t)
			}
			return d, true, nil
		default:
			return decimal.Decimal{}, false, fmt.Errorf("price has unexpected type %T", v)
		}
	}
	return decimal.Decimal{}, false, nil
}
