package reports

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"go-sales-agent/internal/models"
)

// ErrNotFound is returned by lookups that match nothing.
var ErrNotFound = errors.New("not found")

func contains(s, term string) bool {
	return strings.Contains(strings.ToLower(s), term)
}

func normalizeTerm(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}

// SearchProducts matches the brand or the item code, ignoring case. A non-empty
// brand narrows the result to that brand.
func SearchProducts(products []models.Product, term, brand string) []models.Product {
	term = normalizeTerm(term)
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if brand != "" && p.Brand != brand {
			continue
		}
		if term == "" || contains(p.Brand, term) || contains(p.ItemCode, term) || contains(p.ModelNumber, term) {
			out = append(out, p)
		}
	}
	return out
}

// SearchSales matches salesman name, brand or item code.
func SearchSales(sales []models.Sale, term string) []models.Sale {
	term = normalizeTerm(term)
	if term == "" {
		return sales
	}
	out := make([]models.Sale, 0)
	for _, s := range sales {
		if contains(s.SalesmanName, term) || contains(s.Brand, term) || contains(s.ItemCode, term) {
			out = append(out, s)
		}
	}
	return out
}

// SearchSalesmen matches the name or the salesman ID.
func SearchSalesmen(rows []SalesmanSummary, term string) []SalesmanSummary {
	term = normalizeTerm(term)
	if term == "" {
		return rows
	}
	out := make([]SalesmanSummary, 0)
	for _, r := range rows {
		if contains(r.Name, term) || contains(r.SalesmanID, term) {
			out = append(out, r)
		}
	}
	return out
}

// SearchLeaves matches the salesman name or the reason.
func SearchLeaves(leaves []models.Leave, term string) []models.Leave {
	term = normalizeTerm(term)
	if term == "" {
		return leaves
	}
	out := make([]models.Leave, 0)
	for _, l := range leaves {
		if contains(l.SalesmanName, term) || contains(l.Reason, term) {
			out = append(out, l)
		}
	}
	return out
}

// FindProduct returns the first product with itemCode.
func FindProduct(products []models.Product, itemCode string) (models.Product, error) {
	itemCode = strings.TrimSpace(itemCode)
	for _, p := range products {
		if p.ItemCode == itemCode {
			return p, nil
		}
	}
	return models.Product{}, fmt.Errorf("product %q: %w", itemCode, ErrNotFound)
}

// UniqueBrands lists the catalog brands sorted alphabetically.
func UniqueBrands(products []models.Product) []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, p := range products {
		if p.Brand != "" && !seen[p.Brand] {
			seen[p.Brand] = true
			out = append(out, p.Brand)
		}
	}
	slices.Sort(out)
	return out
}
