package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Dashboard is the back office summary
type Dashboard struct {
	TotalRevenue   decimal.Decimal
	TotalOrders    int64
	TotalProducts  int64
	TotalCustomers int64
	RevenueChange  float64
	OrdersChange   float64
	RecentOrders   []RecentOrder
	TopProducts    []TopProduct
}

// RecentOrder is one row of the recent orders table
type RecentOrder struct {
	ID          uuid.UUID
	OrderNumber string
	Customer    string
	Total       decimal.Decimal
	Status      string
	Date        time.Time
}

// TopProduct is a best selling product. Revenue uses the current price.
type TopProduct struct {
	ID      uuid.UUID
	Name    string
	Sales   int64
	Price   decimal.Decimal
	Revenue decimal.Decimal
}

// WindowStats aggregates orders created inside [From, To)
type WindowStats struct {
	Revenue decimal.Decimal // excludes cancelled orders
	Orders  int64           // all orders
}

// Repository reads aggregates for the dashboard
type Repository interface {
	// OrderTotals sums total and counts orders that are not cancelled
	OrderTotals(ctx context.Context) (revenue decimal.Decimal, orders int64, err error)

	// Window aggregates orders created in [from, to)
	Window(ctx context.Context, from, to time.Time) (WindowStats, error)

	// TopProducts ranks products by ordered quantity
	TopProducts(ctx context.Context, limit int) ([]TopProduct, error)
}

// ComparisonWindows returns the current window [now-1 month, now) and the
// previous window [first day of (now-1 month)'s month, now-1 month).
func ComparisonWindows(now time.Time) (curFrom, curTo, prevFrom, prevTo time.Time) {
	monthAgo := now.AddDate(0, -1, 0)
	prevStart := time.Date(monthAgo.Year(), monthAgo.Month(), 1, 0, 0, 0, 0, now.Location())
	return monthAgo, now, prevStart, monthAgo
}

// PercentChange is (current-previous)/previous*100 rounded to one decimal.
// It is 0 when previous is 0.
func PercentChange(current, previous decimal.Decimal) float64 {
	if previous.IsZero() {
		return 0
	}
	pct := current.Sub(previous).Div(previous).Mul(decimal.NewFromInt(100)).Round(1)
	f, _ := pct.Float64()
	return f
}
