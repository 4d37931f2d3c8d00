// Package report builds the back office dashboard.
package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/report"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/trade"
)

// Dashboard list sizes
const (
	RecentOrdersLimit = 10
	TopProductsLimit  = 5
)

// DateLayout formats recent order dates, always in UTC
const DateLayout = "2006-01-02"

// ===================== Responses =====================

// RecentOrderResponse is one row of the recent orders table
type RecentOrderResponse struct {
	ID          uuid.UUID       `json:"id"`
	OrderNumber string          `json:"orderNumber"`
	Customer    string          `json:"customer"`
	Total       decimal.Decimal `json:"total"`
	Status      string          `json:"status"`
	Date        string          `json:"date"`
}

// TopProductResponse is a best selling product
type TopProductResponse struct {
	ID      uuid.UUID       `json:"id"`
	Name    string          `json:"name"`
	Sales   int64           `json:"sales"`
	Revenue decimal.Decimal `json:"revenue"`
}

// DashboardResponse is the body of GET /api/admin/dashboard
type DashboardResponse struct {
	TotalRevenue   decimal.Decimal       `json:"totalRevenue"`
	TotalOrders    int64                 `json:"totalOrders"`
	TotalProducts  int64                 `json:"totalProducts"`
	TotalCustomers int64                 `json:"totalCustomers"`
	RevenueChange  float64               `json:"revenueChange"`
	OrdersChange   float64               `json:"ordersChange"`
	RecentOrders   []RecentOrderResponse `json:"recentOrders"`
	TopProducts    []TopProductResponse  `json:"topProducts"`
}

// ===================== Service =====================

// DashboardService aggregates store figures for the back office
type DashboardService struct {
	reportRepo  report.Repository
	orderRepo   trade.OrderRepository
	productRepo catalog.ProductRepository
	userRepo    identity.UserRepository
	now         func() time.Time
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(
	reportRepo report.Repository,
	orderRepo trade.OrderRepository,
	productRepo catalog.ProductRepository,
	userRepo identity.UserRepository,
) *DashboardService {
	return &DashboardService{
		reportRepo:  reportRepo,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		now:         time.Now,
	}
}

// WithClock replaces the clock used for the comparison windows
func (s *DashboardService) WithClock(now func() time.Time) *DashboardService {
	s.now = now
	return s
}

// Get computes the dashboard
func (s *DashboardService) Get(ctx context.Context) (*DashboardResponse, error) {
	d := report.Dashboard{}
	var err error

	d.TotalRevenue, d.TotalOrders, err = s.reportRepo.OrderTotals(ctx)
	if err != nil {
		return nil, err
	}
	if d.TotalProducts, err = s.productRepo.CountActive(ctx); err != nil {
		return nil, err
	}
	if d.TotalCustomers, err = s.userRepo.CountCustomers(ctx, shared.Filter{}); err != nil {
		return nil, err
	}

	curFrom, curTo, prevFrom, prevTo := report.ComparisonWindows(s.now())
	current, err := s.reportRepo.Window(ctx, curFrom, curTo)
	if err != nil {
		return nil, err
	}
	previous, err := s.reportRepo.Window(ctx, prevFrom, prevTo)
	if err != nil {
		return nil, err
	}
	d.RevenueChange = report.PercentChange(current.Revenue, previous.Revenue)
	d.OrdersChange = report.PercentChange(decimal.NewFromInt(current.Orders), decimal.NewFromInt(previous.Orders))

	if d.TopProducts, err = s.reportRepo.TopProducts(ctx, TopProductsLimit); err != nil {
		return nil, err
	}

	orders, err := s.orderRepo.FindAll(ctx, shared.Filter{
		Page:     1,
		PageSize: RecentOrdersLimit,
		OrderBy:  "created_at",
		OrderDir: "desc",
	})
	if err != nil {
		return nil, err
	}
	for i := range orders {
		o := &orders[i]
		d.RecentOrders = append(d.RecentOrders, report.RecentOrder{
			ID:          o.ID,
			OrderNumber: o.OrderNumber,
			Customer:    o.CustomerLabel(),
			Total:       o.Total,
			Status:      o.Status.String(),
			Date:        o.CreatedAt,
		})
	}

	return toDashboardResponse(d), nil
}

func toDashboardResponse(d report.Dashboard) *DashboardResponse {
	resp := &DashboardResponse{
		TotalRevenue:   d.TotalRevenue,
		TotalOrders:    d.TotalOrders,
		TotalProducts:  d.TotalProducts,
		TotalCustomers: d.TotalCustomers,
		RevenueChange:  d.RevenueChange,
		OrdersChange:   d.OrdersChange,
		RecentOrders:   make([]RecentOrderResponse, 0, len(d.RecentOrders)),
		TopProducts:    make([]TopProductResponse, 0, len(d.TopProducts)),
	}
	for _, o := range d.RecentOrders {
		resp.RecentOrders = append(resp.RecentOrders, RecentOrderResponse{
			ID:          o.ID,
			OrderNumber: o.OrderNumber,
			Customer:    o.Customer,
			Total:       o.Total,
			Status:      o.Status,
			Date:        o.Date.UTC().Format(DateLayout),
		})
	}
	for _, p := range d.TopProducts {
		resp.TopProducts = append(resp.TopProducts, TopProductResponse{
			ID:      p.ID,
			Name:    p.Name,
			Sales:   p.Sales,
			Revenue: p.Revenue,
		})
	}
	return resp
}
