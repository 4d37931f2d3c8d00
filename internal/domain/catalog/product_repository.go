package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// Filter keys understood by ProductRepository
const (
	FilterCategoryID = "category_id"
	FilterActiveOnly = "active_only"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID loads a product with category, images and variants
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindAll lists products newest first with category and primary image.
	// Search matches name or SKU case-insensitively; see Filter* keys.
	// variantLimit caps preloaded variants per product, 0 skips them.
	FindAll(ctx context.Context, filter shared.Filter, variantLimit int) ([]Product, error)

	// Count counts products matching the same filter as FindAll
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// CountActive counts storefront-visible products
	CountActive(ctx context.Context) (int64, error)

	// CountActiveByCategory returns active product counts keyed by category
	CountActiveByCategory(ctx context.Context) (map[uuid.UUID]int64, error)

	// ExistsBySKU reports whether another product uses sku. excludeID may be uuid.Nil.
	ExistsBySKU(ctx context.Context, sku string, excludeID uuid.UUID) (bool, error)

	// Create inserts the product together with its images and variants
	Create(ctx context.Context, product *Product) error

	// Save updates the product row except its stock counter
	Save(ctx context.Context, product *Product) error

	// SetStock overwrites the product's stock counter
	SetStock(ctx context.Context, productID uuid.UUID, stock int) error

	// Delete removes the product, its images, variants and cart lines
	Delete(ctx context.Context, id uuid.UUID) error

	// IsReferencedByOrders reports whether any order item points at the product
	IsReferencedByOrders(ctx context.Context, id uuid.UUID) (bool, error)

	// SaveImage inserts an image; a primary image demotes the others
	SaveImage(ctx context.Context, image *ProductImage) error

	// DecrementStock subtracts qty only when enough stock is left.
	// It returns shared.ErrInsufficientStock otherwise.
	DecrementStock(ctx context.Context, productID uuid.UUID, qty int) error

	// DecrementVariantStock is DecrementStock for a variant row
	DecrementVariantStock(ctx context.Context, variantID uuid.UUID, qty int) error

	// IncrementStock returns qty units to the product
	IncrementStock(ctx context.Context, productID uuid.UUID, qty int) error

	// IncrementVariantStock returns qty units to the variant
	IncrementVariantStock(ctx context.Context, variantID uuid.UUID, qty int) error
}
