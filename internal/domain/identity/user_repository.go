package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, user *User) error
	Save(ctx context.Context, user *User) error

	// FindCustomers lists CUSTOMER accounts newest first with addresses.
	// Search matches name, email or phone case-insensitively.
	FindCustomers(ctx context.Context, filter shared.Filter) ([]User, error)
	CountCustomers(ctx context.Context, filter shared.Filter) (int64, error)
}
