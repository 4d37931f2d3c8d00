package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/trade"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// withDetails preloads what order responses render
func withDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Items.Product").
		Preload("Items.Product.Images", primaryImageOnly).
		Preload("Items.Variant").
		Preload("Address").
		Preload("User")
}

// FindByID loads an order with its details
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Order, error) {
	var order trade.Order
	if err := r.db.WithContext(ctx).Scopes(withDetails).First(&order, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &order, nil
}

// FindByUser lists a buyer's orders newest first
func (r *GormOrderRepository) FindByUser(ctx context.Context, userID uuid.UUID, status trade.OrderStatus) ([]trade.Order, error) {
	query := r.db.WithContext(ctx).Scopes(withDetails).Where("user_id = ?", userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var orders []trade.Order
	if err := query.Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// FindAll lists orders for the back office
func (r *GormOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]trade.Order, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&trade.Order{}), filter).
		Scopes(withDetails).
		Order(orderClause(filter, OrderSortFields))
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	var orders []trade.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Count counts orders matching filter
func (r *GormOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&trade.Order{}), filter).Count(&count).Error
	return count, err
}

// FindRecentByUsers returns up to limit newest orders per user, without details
func (r *GormOrderRepository) FindRecentByUsers(ctx context.Context, userIDs []uuid.UUID, limit int) (map[uuid.UUID][]trade.Order, error) {
	result := make(map[uuid.UUID][]trade.Order, len(userIDs))
	if len(userIDs) == 0 || limit <= 0 {
		return result, nil
	}
	var orders []trade.Order
	err := r.db.WithContext(ctx).
		Where("user_id IN ?", userIDs).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	for _, o := range orders {
		if o.UserID == nil || len(result[*o.UserID]) >= limit {
			continue
		}
		result[*o.UserID] = append(result[*o.UserID], o)
	}
	return result, nil
}

// CountByUsers returns order counts keyed by user
func (r *GormOrderRepository) CountByUsers(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(userIDs))
	if len(userIDs) == 0 {
		return counts, nil
	}
	var rows []struct {
		UserID uuid.UUID
		Total  int64
	}
	err := r.db.WithContext(ctx).Model(&trade.Order{}).
		Select("user_id, COUNT(*) AS total").
		Where("user_id IN ?", userIDs).
		Group("user_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.UserID] = row.Total
	}
	return counts, nil
}

// Create inserts the order and its items. It runs in its own (nested)
// transaction so a duplicate order number can be retried by the caller.
func (r *GormOrderRepository) Create(ctx context.Context, order *trade.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(order).Error; err != nil {
			return translateError(err)
		}
		if len(order.Items) > 0 {
			if err := tx.Omit(clause.Associations).Create(&order.Items).Error; err != nil {
				return translateError(err)
			}
		}
		return nil
	})
}

// UpdateStatus persists the order's status and updated_at
func (r *GormOrderRepository) UpdateStatus(ctx context.Context, order *trade.Order) error {
	result := r.db.WithContext(ctx).Model(&trade.Order{}).
		Where("id = ?", order.ID).
		Updates(map[string]any{"status": order.Status, "updated_at": order.UpdatedAt})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes the order items and then the order
func (r *GormOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&trade.OrderItem{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&trade.Order{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

func (r *GormOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		customers := r.db.Model(&identity.User{}).Select("id").
			Where("LOWER(name) LIKE ?"+likeEscape+" OR LOWER(email) LIKE ?"+likeEscape, pattern, pattern)
		query = query.Where("(LOWER(order_number) LIKE ?"+likeEscape+" OR user_id IN (?))", pattern, customers)
	}
	if status, ok := filter.Filters[trade.FilterStatus]; ok && status != "" {
		query = query.Where("status = ?", status)
	}
	return query
}

// Ensure GormOrderRepository implements OrderRepository
var _ trade.OrderRepository = (*GormOrderRepository)(nil)
