package models

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

func init() {
	// The remote service sends and expects plain JSON numbers for money.
	decimal.MarshalJSONWithoutQuotes = true
}

// RecordID is the identifier handed out by the remote service.
// Some records carry numeric ids and some carry strings, so both decode here.
type RecordID string

func (id *RecordID) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" || s == "" {
		*id = ""
		return nil
	}
	if s[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*id = RecordID(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("record id: %w", err)
	}
	*id = RecordID(n.String())
	return nil
}

func (id RecordID) String() string { return string(id) }

// Role - who is using the tracker
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleSalesman Role = "salesman"
)

// User - an admin or a salesman account as the remote service stores it.
// Password is plaintext because that is what the service hands back.
type User struct {
	ID         RecordID `json:"id,omitempty"`
	Username   string   `json:"username"`
	Password   string   `json:"password,omitempty"`
	Name       string   `json:"name"`
	Role       Role     `json:"role"`
	SalesmanID string   `json:"salesmanId,omitempty"`
}

func (u User) Scope() (salesmanID, date string) { return u.SalesmanID, "" }

func (u User) IsAdmin() bool    { return u.Role == RoleAdmin }
func (u User) IsSalesman() bool { return u.Role == RoleSalesman }

// Public returns a copy safe to send to the browser.
func (u User) Public() User {
	u.Password = ""
	return u
}

// NextSalesmanID returns "SM" + the zero-padded sequence number following the
// current salesman count, skipping codes that are already taken.
func NextSalesmanID(users []User) string {
	taken := make(map[string]bool)
	count := 0
	for _, u := range users {
		if u.IsSalesman() {
			count++
			taken[u.SalesmanID] = true
		}
	}
	for n := count + 1; ; n++ {
		id := "SM" + fmt.Sprintf("%03d", n)
		if !taken[id] {
			return id
		}
	}
}

// Sale - one line recorded by a salesman
type Sale struct {
	ID           RecordID            `json:"id,omitempty"`
	SalesmanID   string              `json:"salesmanId"`
	SalesmanName string              `json:"salesmanName"`
	Date         string              `json:"date"` // YYYY-MM-DD
	Brand        string              `json:"brand"`
	ItemCode     string              `json:"itemCode"`
	Quantity     int                 `json:"quantity"`
	Price        decimal.Decimal     `json:"price"`
	TotalAmount  decimal.NullDecimal `json:"totalAmount"`
	Timestamp    string              `json:"timestamp"` // ISO instant, also the de-duplication key
}

func (s Sale) Scope() (salesmanID, date string) { return s.SalesmanID, s.Date }

// UnmarshalJSON also accepts quantities stored as strings ("3") by older or
// imported records.
func (s *Sale) UnmarshalJSON(b []byte) error {
	type plain Sale
	aux := struct {
		*plain
		Quantity json.RawMessage `json:"quantity"`
	}{plain: (*plain)(s)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if aux.Quantity == nil {
		return nil
	}
	q, err := parseQuantity(aux.Quantity)
	if err != nil {
		return fmt.Errorf("sale quantity %s: %w", aux.Quantity, err)
	}
	s.Quantity = q
	return nil
}

func parseQuantity(raw json.RawMessage) (int, error) {
	v := strings.TrimSpace(string(raw))
	if v == "" || v == "null" {
		return 0, nil
	}
	if v[0] == '"' {
		if err := json.Unmarshal(raw, &v); err != nil {
			return 0, err
		}
		if v = strings.TrimSpace(v); v == "" {
			return 0, nil
		}
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return 0, err
	}
	return int(d.IntPart()), nil
}

// LeaveStatus is only consulted by the leave statistics.
type LeaveStatus string

const (
	LeavePending  LeaveStatus = "pending"
	LeaveApproved LeaveStatus = "approved"
	LeaveRejected LeaveStatus = "rejected"
)

// Leave - a day off requested by a salesman. FromDate/ToDate are optional and
// only present on multi-day records; single-day records use Date alone.
type Leave struct {
	ID           RecordID    `json:"id,omitempty"`
	SalesmanID   string      `json:"salesmanId"`
	SalesmanName string      `json:"salesmanName"`
	Date         string      `json:"date"`
	Reason       string      `json:"reason"`
	Timestamp    string      `json:"timestamp"`
	Status       LeaveStatus `json:"status,omitempty"`
	IsCritical   bool        `json:"isCritical,omitempty"`
	FromDate     string      `json:"fromDate,omitempty"`
	ToDate       string      `json:"toDate,omitempty"`
}

func (l Leave) Scope() (salesmanID, date string) { return l.SalesmanID, l.Date }

// Span returns the inclusive day range the leave covers.
func (l Leave) Span() (from, to string) {
	from = l.FromDate
	if from == "" {
		from = l.Date
	}
	to = l.ToDate
	if to == "" {
		to = from
	}
	return from, to
}

// MonthOf returns the "YYYY-MM" key of an ISO date.
func MonthOf(date string) string {
	if len(date) < 7 {
		return date
	}
	return date[:7]
}
