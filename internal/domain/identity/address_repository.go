package identity

import (
	"context"

	"github.com/google/uuid"
)

// AddressRepository defines the interface for address persistence
type AddressRepository interface {
	// FindByUser lists a user's addresses, default first then newest
	FindByUser(ctx context.Context, userID uuid.UUID) ([]Address, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)
	Create(ctx context.Context, address *Address) error
	// ClearDefault unsets the default flag on all of the user's addresses
	ClearDefault(ctx context.Context, userID uuid.UUID) error
}
