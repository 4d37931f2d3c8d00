package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCartRepository implements cart.Repository using GORM
type GormCartRepository struct {
	db *gorm.DB
}

// NewGormCartRepository creates a new GormCartRepository
func NewGormCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

func ownerScope(owner cart.Owner) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if owner.IsUser() {
			return db.Where("user_id = ?", *owner.UserID)
		}
		return db.Where("session_id = ?", owner.SessionID)
	}
}

func variantScope(variantID *uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if variantID == nil {
			return db.Where("variant_id IS NULL")
		}
		return db.Where("variant_id = ?", *variantID)
	}
}

// FindByOwner lists the owner's lines oldest first with product, primary image and variant
func (r *GormCartRepository) FindByOwner(ctx context.Context, owner cart.Owner) ([]cart.Item, error) {
	var items []cart.Item
	err := r.db.WithContext(ctx).
		Scopes(ownerScope(owner)).
		Preload("Product").
		Preload("Product.Images", primaryImageOnly).
		Preload("Variant").
		Order("created_at ASC").
		Find(&items).Error
	return items, err
}

// FindByID finds a cart line by ID
func (r *GormCartRepository) FindByID(ctx context.Context, id uuid.UUID) (*cart.Item, error) {
	var item cart.Item
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &item, nil
}

// FindLine returns the line for (owner, product, variant)
func (r *GormCartRepository) FindLine(ctx context.Context, owner cart.Owner, productID uuid.UUID, variantID *uuid.UUID) (*cart.Item, error) {
	var item cart.Item
	err := r.db.WithContext(ctx).
		Scopes(ownerScope(owner), variantScope(variantID)).
		Where("product_id = ?", productID).
		First(&item).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &item, nil
}

// Save creates or updates a cart line
func (r *GormCartRepository) Save(ctx context.Context, item *cart.Item) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(item).Error
}

// Delete removes a cart line
func (r *GormCartRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&cart.Item{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteByOwner empties the owner's cart
func (r *GormCartRepository) DeleteByOwner(ctx context.Context, owner cart.Owner) error {
	return r.db.WithContext(ctx).Scopes(ownerScope(owner)).Delete(&cart.Item{}).Error
}

// DeleteProducts removes the owner's lines for the given products
func (r *GormCartRepository) DeleteProducts(ctx context.Context, owner cart.Owner, productIDs []uuid.UUID) error {
	if len(productIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Scopes(ownerScope(owner)).
		Where("product_id IN ?", productIDs).
		Delete(&cart.Item{}).Error
}

// ReassignSession moves session lines to userID, merging quantities into
// lines the user already has for the same product and variant.
func (r *GormCartRepository) ReassignSession(ctx context.Context, sessionID string, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var lines []cart.Item
		if err := tx.Where("session_id = ?", sessionID).Find(&lines).Error; err != nil {
			return err
		}
		for _, line := range lines {
			var existing cart.Item
			err := tx.Scopes(variantScope(line.VariantID)).
				Where("user_id = ? AND product_id = ?", userID, line.ProductID).
				First(&existing).Error
			switch {
			case err == nil:
				if err := tx.Model(&existing).UpdateColumn("quantity", gorm.Expr("quantity + ?", line.Quantity)).Error; err != nil {
					return err
				}
				if err := tx.Delete(&cart.Item{}, "id = ?", line.ID).Error; err != nil {
					return err
				}
			case errors.Is(err, gorm.ErrRecordNotFound):
				if err := tx.Model(&cart.Item{}).Where("id = ?", line.ID).
					Updates(map[string]any{"user_id": userID, "session_id": nil}).Error; err != nil {
					return err
				}
			default:
				return err
			}
		}
		return nil
	})
}

// Ensure GormCartRepository implements cart.Repository
var _ cart.Repository = (*GormCartRepository)(nil)
