package cart

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for cart persistence
type Repository interface {
	// FindByOwner lists the owner's lines oldest first with product, primary image and variant
	FindByOwner(ctx context.Context, owner Owner) ([]Item, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Item, error)
	// FindLine returns the line for (owner, product, variant) or shared.ErrNotFound
	FindLine(ctx context.Context, owner Owner, productID uuid.UUID, variantID *uuid.UUID) (*Item, error)
	Save(ctx context.Context, item *Item) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByOwner(ctx context.Context, owner Owner) error
	// DeleteProducts removes the owner's lines for the given products
	DeleteProducts(ctx context.Context, owner Owner, productIDs []uuid.UUID) error
	// ReassignSession moves all session lines to userID
	ReassignSession(ctx context.Context, sessionID string, userID uuid.UUID) error
}
