package trade

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// FilterStatus restricts order listings to one status
const FilterStatus = "status"

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// FindByID loads an order with items, products, variants, address and user
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByUser lists a buyer's orders newest first. status may be empty.
	FindByUser(ctx context.Context, userID uuid.UUID, status OrderStatus) ([]Order, error)

	// FindAll lists orders newest first, see FilterStatus
	FindAll(ctx context.Context, filter shared.Filter) ([]Order, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// FindRecentByUsers returns up to limit newest orders per user
	FindRecentByUsers(ctx context.Context, userIDs []uuid.UUID, limit int) (map[uuid.UUID][]Order, error)

	// CountByUsers returns order counts keyed by user
	CountByUsers(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]int64, error)

	// Create inserts the order and its items. A duplicate order number
	// yields shared.ErrAlreadyExists.
	Create(ctx context.Context, order *Order) error

	// UpdateStatus persists the order's status and updated_at
	UpdateStatus(ctx context.Context, order *Order) error

	// Delete removes the order items and then the order
	Delete(ctx context.Context, id uuid.UUID) error
}
