// Package cart models shopping carts owned by a user or an anonymous session.
package cart

import (
	"strings"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
)

// MaxSessionIDLength bounds client supplied session identifiers
const MaxSessionIDLength = 128

// Owner identifies whose cart is addressed: a signed-in user or an anonymous session
type Owner struct {
	UserID    *uuid.UUID
	SessionID string
}

// NewOwner builds an owner, preferring the user when both are present
func NewOwner(userID *uuid.UUID, sessionID string) (Owner, error) {
	if userID != nil && *userID != uuid.Nil {
		return Owner{UserID: userID}, nil
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return Owner{}, shared.InvalidInput("User ID or session ID is required")
	}
	if len(sessionID) > MaxSessionIDLength {
		return Owner{}, shared.InvalidInput("Session ID is too long")
	}
	return Owner{SessionID: sessionID}, nil
}

// IsUser reports whether the owner is a signed-in user
func (o Owner) IsUser() bool {
	return o.UserID != nil
}

// Item is one persisted cart line
type Item struct {
	shared.BaseEntity
	UserID    *uuid.UUID              `gorm:"type:uuid;index"`
	SessionID *string                 `gorm:"type:varchar(128);index"`
	ProductID uuid.UUID               `gorm:"type:uuid;not null;index"`
	VariantID *uuid.UUID              `gorm:"type:uuid"`
	Quantity  int                     `gorm:"not null"`
	Product   *catalog.Product        `gorm:"foreignKey:ProductID"`
	Variant   *catalog.ProductVariant `gorm:"foreignKey:VariantID"`
}

// TableName returns the table name for GORM
func (Item) TableName() string {
	return "cart_items"
}

// NewItem creates a cart line for owner
func NewItem(owner Owner, productID uuid.UUID, variantID *uuid.UUID, quantity int) (*Item, error) {
	if productID == uuid.Nil {
		return nil, shared.InvalidInput("Product ID is required")
	}
	if quantity <= 0 {
		return nil, shared.InvalidInput("Quantity must be greater than zero")
	}
	item := &Item{
		BaseEntity: shared.NewBaseEntity(),
		ProductID:  productID,
		VariantID:  variantID,
		Quantity:   quantity,
	}
	if owner.IsUser() {
		id := *owner.UserID
		item.UserID = &id
	} else {
		sid := owner.SessionID
		item.SessionID = &sid
	}
	return item, nil
}

// OwnedBy reports whether the line belongs to owner
func (i *Item) OwnedBy(owner Owner) bool {
	if owner.IsUser() {
		return i.UserID != nil && *i.UserID == *owner.UserID
	}
	return i.SessionID != nil && *i.SessionID == owner.SessionID
}

// Increase adds qty to the line
func (i *Item) Increase(qty int) error {
	if qty <= 0 {
		return shared.InvalidInput("Quantity must be greater than zero")
	}
	i.Quantity += qty
	i.Touch()
	return nil
}

// SetQuantity overwrites the line quantity
func (i *Item) SetQuantity(qty int) error {
	if qty <= 0 {
		return shared.InvalidInput("Quantity must be greater than zero")
	}
	i.Quantity = qty
	i.Touch()
	return nil
}
