package models

import (
	"net/url"
	"strings"
)

// Scoped is implemented by records that can be queried by salesman and day.
type Scoped interface {
	Scope() (salesmanID, date string)
}

// Filter carries the query keys the remote service understands.
type Filter struct {
	SalesmanID string `form:"salesmanId"`
	Date       string `form:"date"`
	Month      string `form:"month"`
}

func (f Filter) IsZero() bool {
	return f.SalesmanID == "" && f.Date == "" && f.Month == ""
}

// Query serializes the filter the way the remote service expects it.
func (f Filter) Query() url.Values {
	q := url.Values{}
	if f.SalesmanID != "" {
		q.Set("salesmanId", f.SalesmanID)
	}
	if f.Date != "" {
		q.Set("date", f.Date)
	}
	if f.Month != "" {
		q.Set("month", f.Month)
	}
	return q
}

// Matches applies the filter in memory: salesman and date are exact matches,
// month is a prefix match on the date.
func (f Filter) Matches(r Scoped) bool {
	salesmanID, date := r.Scope()
	if f.SalesmanID != "" && salesmanID != f.SalesmanID {
		return false
	}
	if f.Date != "" && date != f.Date {
		return false
	}
	if f.Month != "" && !strings.HasPrefix(date, f.Month) {
		return false
	}
	return true
}
