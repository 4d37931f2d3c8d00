package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/report"
	"github.com/storefront/backend/internal/domain/trade"
	"gorm.io/gorm"
)

// GormReportRepository implements report.Repository using GORM
type GormReportRepository struct {
	db *gorm.DB
}

// NewGormReportRepository creates a new GormReportRepository
func NewGormReportRepository(db *gorm.DB) *GormReportRepository {
	return &GormReportRepository{db: db}
}

// OrderTotals sums total and counts orders that are not cancelled
func (r *GormReportRepository) OrderTotals(ctx context.Context) (decimal.Decimal, int64, error) {
	var row struct {
		Revenue decimal.NullDecimal
		Orders  int64
	}
	err := r.db.WithContext(ctx).Model(&trade.Order{}).
		Select("SUM(total) AS revenue, COUNT(*) AS orders").
		Where("status <> ?", trade.OrderStatusCancelled).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, 0, err
	}
	return row.Revenue.Decimal.Round(2), row.Orders, nil
}

// Window aggregates orders created in [from, to)
func (r *GormReportRepository) Window(ctx context.Context, from, to time.Time) (report.WindowStats, error) {
	var row struct {
		Revenue decimal.NullDecimal
	}
	err := r.db.WithContext(ctx).Model(&trade.Order{}).
		Select("SUM(total) AS revenue").
		Where("created_at >= ? AND created_at < ? AND status <> ?", from, to, trade.OrderStatusCancelled).
		Scan(&row).Error
	if err != nil {
		return report.WindowStats{}, err
	}

	var orders int64
	err = r.db.WithContext(ctx).Model(&trade.Order{}).
		Where("created_at >= ? AND created_at < ?", from, to).
		Count(&orders).Error
	if err != nil {
		return report.WindowStats{}, err
	}

	return report.WindowStats{Revenue: row.Revenue.Decimal.Round(2), Orders: orders}, nil
}

// TopProducts ranks products by ordered quantity
func (r *GormReportRepository) TopProducts(ctx context.Context, limit int) ([]report.TopProduct, error) {
	var rows []struct {
		ID    uuid.UUID
		Name  string
		Price decimal.Decimal
		Sales int64
	}
	err := r.db.WithContext(ctx).
		Table("order_items AS oi").
		Select("p.id AS id, p.name AS name, p.price AS price, SUM(oi.quantity) AS sales").
		Joins("JOIN products AS p ON p.id = oi.product_id").
		Group("p.id, p.name, p.price").
		Order("sales DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	top := make([]report.TopProduct, 0, len(rows))
	for _, row := range rows {
		top = append(top, report.TopProduct{
			ID:      row.ID,
			Name:    row.Name,
			Sales:   row.Sales,
			Price:   row.Price,
			Revenue: row.Price.Mul(decimal.NewFromInt(row.Sales)).Round(2),
		})
	}
	return top, nil
}

// Ensure GormReportRepository implements report.Repository
var _ report.Repository = (*GormReportRepository)(nil)
