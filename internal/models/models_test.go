package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordIDAcceptsNumbersAndStrings(t *testing.T) {
	var got struct {
		A RecordID `json:"a"`
		B RecordID `json:"b"`
		C RecordID `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":12,"b":"65f0c1","c":null}`), &got))
	assert.Equal(t, RecordID("12"), got.A)
	assert.Equal(t, RecordID("65f0c1"), got.B)
	assert.Equal(t, RecordID(""), got.C)
}

func TestNextSalesmanID(t *testing.T) {
	users := []User{
		{Username: "gokul", Role: RoleAdmin},
		{Username: "ravi", Role: RoleSalesman, SalesmanID: "SM001"},
		{Username: "priya", Role: RoleSalesman, SalesmanID: "SM002"},
	}
	assert.Equal(t, "SM003", NextSalesmanID(users))

	// SM004 already handed out manually
	users = append(users, User{Username: "anu", Role: RoleSalesman, SalesmanID: "SM004"})
	assert.Equal(t, "SM005", NextSalesmanID(users))

	assert.Equal(t, "SM001", NextSalesmanID(nil))
}

func TestSaleTotalAmountMayBeAbsent(t *testing.T) {
	var s Sale
	require.NoError(t, json.Unmarshal([]byte(`{"salesmanId":"SM001","quantity":3,"price":10}`), &s))
	assert.False(t, s.TotalAmount.Valid)
	assert.True(t, s.Price.Equal(decimal.NewFromInt(10)))

	require.NoError(t, json.Unmarshal([]byte(`{"quantity":3,"price":"10.5","totalAmount":31.5}`), &s))
	assert.True(t, s.TotalAmount.Valid)
	assert.Equal(t, "31.5", s.TotalAmount.Decimal.String())
}

func TestSaleQuantityAcceptsStrings(t *testing.T) {
	var s Sale
	require.NoError(t, json.Unmarshal([]byte(`{"salesmanId":"SM001","quantity":"3","price":10}`), &s))
	assert.Equal(t, 3, s.Quantity)
	assert.Equal(t, "SM001", s.SalesmanID)

	require.NoError(t, json.Unmarshal([]byte(`{"quantity":" 4 "}`), &s))
	assert.Equal(t, 4, s.Quantity)

	require.NoError(t, json.Unmarshal([]byte(`{"quantity":null}`), &s))
	assert.Zero(t, s.Quantity)

	assert.Error(t, json.Unmarshal([]byte(`{"quantity":"three"}`), &s))
}

func TestSaleMarshalsPlainNumbers(t *testing.T) {
	s := Sale{Quantity: 2, Price: decimal.RequireFromString("12.5"), TotalAmount: decimal.NewNullDecimal(decimal.NewFromInt(25))}
	b, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"price":12.5`)
	assert.Contains(t, string(b), `"totalAmount":25`)
}

func TestLeaveSpan(t *testing.T) {
	from, to := Leave{Date: "2024-03-02"}.Span()
	assert.Equal(t, "2024-03-02", from)
	assert.Equal(t, "2024-03-02", to)

	from, to = Leave{Date: "2024-03-02", FromDate: "2024-03-01", ToDate: "2024-03-05"}.Span()
	assert.Equal(t, "2024-03-01", from)
	assert.Equal(t, "2024-03-05", to)
}

func TestNormalizeProduct(t *testing.T) {
	cases := []struct {
		name  string
		raw   map[string]any
		want  Product
		error bool
	}{
		{
			name: "canonical keys",
			raw:  map[string]any{"brand": "Hama", "itemCode": "00123", "price": 49.5},
			want: Product{Brand: "Hama", ItemCode: "00123", Price: decimal.RequireFromString("49.5")},
		},
		{
			name: "spreadsheet headers with padding",
			raw:  map[string]any{" Brand ": "Hama", "Item Code ": 88120.0, "RSP+Vat": "105", "Model Number": "HX-2"},
			want: Product{Brand: "Hama", ItemCode: "88120", ModelNumber: "HX-2", Price: decimal.NewFromInt(105)},
		},
		{
			name: "cost used when retail price missing",
			raw:  map[string]any{"Brand": "Sony", "Item Code": "A1", "Cost": 20.0},
			want: Product{Brand: "Sony", ItemCode: "A1", Price: decimal.NewFromInt(20)},
		},
		{name: "unknown columns", raw: map[string]any{"Marke": "x", "Artikel": "y"}, error: true},
		{name: "no price", raw: map[string]any{"brand": "x", "itemCode": "y"}, error: true},
		{name: "price not numeric", raw: map[string]any{"brand": "x", "itemCode": "y", "price": "n/a"}, error: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeProduct(tc.raw)
			if tc.error {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrMalformedProduct))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want.Brand, got.Brand)
			assert.Equal(t, tc.want.ItemCode, got.ItemCode)
			assert.Equal(t, tc.want.ModelNumber, got.ModelNumber)
			assert.True(t, tc.want.Price.Equal(got.Price), "price %s", got.Price)
		})
	}
}

func TestFilterMatchesAndQuery(t *testing.T) {
	s := Sale{SalesmanID: "SM001", Date: "2024-03-31"}

	assert.True(t, Filter{}.Matches(s))
	assert.True(t, Filter{SalesmanID: "SM001", Month: "2024-03"}.Matches(s))
	assert.False(t, Filter{Month: "2024-04"}.Matches(s))
	assert.False(t, Filter{Date: "2024-03-30"}.Matches(s))
	assert.False(t, Filter{SalesmanID: "SM002"}.Matches(s))

	q := Filter{SalesmanID: "SM001", Date: "2024-03-31"}.Query()
	assert.Equal(t, "date=2024-03-31&salesmanId=SM001", q.Encode())
	assert.True(t, Filter{}.IsZero())
}
