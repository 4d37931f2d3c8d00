package persistence

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/trade"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

func primaryImageOnly(db *gorm.DB) *gorm.DB {
	return db.Where("is_primary = ?", true)
}

// FindByID loads a product with category, images and variants
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var product catalog.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Images").
		Preload("Variants").
		First(&product, "id = ?", id).Error
	if err != nil {
		return nil, translateError(err)
	}
	product.SortForDisplay()
	return &product, nil
}

// FindAll lists products with category and primary image
func (r *GormProductRepository) FindAll(ctx context.Context, filter shared.Filter, variantLimit int) ([]catalog.Product, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&catalog.Product{}), filter).
		Preload("Category").
		Preload("Images", primaryImageOnly).
		Order(orderClause(filter, ProductSortFields))
	if variantLimit > 0 {
		query = query.Preload("Variants", func(db *gorm.DB) *gorm.DB {
			return db.Order("name ASC")
		})
	}
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	var products []catalog.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, err
	}
	for i := range products {
		if len(products[i].Variants) > variantLimit {
			products[i].Variants = products[i].Variants[:variantLimit]
		}
	}
	return products, nil
}

// Count counts products matching filter
func (r *GormProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&catalog.Product{}), filter).Count(&count).Error
	return count, err
}

// CountActive counts storefront-visible products
func (r *GormProductRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&catalog.Product{}).Where("is_active = ?", true).Count(&count).Error
	return count, err
}

// CountActiveByCategory returns active product counts keyed by category
func (r *GormProductRepository) CountActiveByCategory(ctx context.Context) (map[uuid.UUID]int64, error) {
	var rows []struct {
		CategoryID uuid.UUID
		Total      int64
	}
	err := r.db.WithContext(ctx).Model(&catalog.Product{}).
		Select("category_id, COUNT(*) AS total").
		Where("is_active = ?", true).
		Group("category_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[uuid.UUID]int64, len(rows))
	for _, row := range rows {
		counts[row.CategoryID] = row.Total
	}
	return counts, nil
}

// ExistsBySKU reports whether a product other than excludeID uses sku
func (r *GormProductRepository) ExistsBySKU(ctx context.Context, sku string, excludeID uuid.UUID) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&catalog.Product{}).Where("sku = ?", catalog.NormalizeSKU(sku))
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts the product together with its images and variants
func (r *GormProductRepository) Create(ctx context.Context, product *catalog.Product) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(product).Error; err != nil {
			return translateError(err)
		}
		if len(product.Images) > 0 {
			if err := tx.Create(&product.Images).Error; err != nil {
				return fmt.Errorf("create product images: %w", err)
			}
		}
		if len(product.Variants) > 0 {
			if err := tx.Create(&product.Variants).Error; err != nil {
				return fmt.Errorf("create product variants: %w", err)
			}
		}
		return nil
	})
}

// Save updates the product row except its stock counter
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	result := r.db.WithContext(ctx).Model(product).
		Select("name", "description", "price", "compare_price", "sku", "is_active", "category_id", "updated_at").
		Updates(product)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// SetStock overwrites the product's stock counter
func (r *GormProductRepository) SetStock(ctx context.Context, productID uuid.UUID, stock int) error {
	result := r.db.WithContext(ctx).Model(&catalog.Product{}).
		Where("id = ?", productID).
		UpdateColumn("stock", stock)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes the product, its images, variants and cart lines
func (r *GormProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{&catalog.ProductImage{}, &catalog.ProductVariant{}, &cart.Item{}} {
			if err := tx.Where("product_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		result := tx.Delete(&catalog.Product{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// IsReferencedByOrders reports whether any order item points at the product
func (r *GormProductRepository) IsReferencedByOrders(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&trade.OrderItem{}).Where("product_id = ?", id).Count(&count).Error
	return count > 0, err
}

// SaveImage inserts an image; a primary image demotes the others
func (r *GormProductRepository) SaveImage(ctx context.Context, image *catalog.ProductImage) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if image.IsPrimary {
			if err := tx.Model(&catalog.ProductImage{}).
				Where("product_id = ? AND is_primary = ?", image.ProductID, true).
				UpdateColumn("is_primary", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(image).Error
	})
}

// DecrementStock subtracts qty only when enough stock is left
func (r *GormProductRepository) DecrementStock(ctx context.Context, productID uuid.UUID, qty int) error {
	return r.decrement(ctx, &catalog.Product{}, productID, qty)
}

// DecrementVariantStock subtracts qty from a variant only when enough stock is left
func (r *GormProductRepository) DecrementVariantStock(ctx context.Context, variantID uuid.UUID, qty int) error {
	return r.decrement(ctx, &catalog.ProductVariant{}, variantID, qty)
}

// IncrementStock returns qty units to the product
func (r *GormProductRepository) IncrementStock(ctx context.Context, productID uuid.UUID, qty int) error {
	return r.increment(ctx, &catalog.Product{}, productID, qty)
}

// IncrementVariantStock returns qty units to the variant
func (r *GormProductRepository) IncrementVariantStock(ctx context.Context, variantID uuid.UUID, qty int) error {
	return r.increment(ctx, &catalog.ProductVariant{}, variantID, qty)
}

// decrement is a single conditional UPDATE, so concurrent checkouts cannot
// push stock below zero.
func (r *GormProductRepository) decrement(ctx context.Context, model any, id uuid.UUID, qty int) error {
	if qty <= 0 {
		return shared.InvalidInput("Quantity must be greater than zero")
	}
	result := r.db.WithContext(ctx).Model(model).
		Where("id = ? AND stock >= ?", id, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrInsufficientStock
	}
	return nil
}

func (r *GormProductRepository) increment(ctx context.Context, model any, id uuid.UUID, qty int) error {
	if qty <= 0 {
		return nil
	}
	result := r.db.WithContext(ctx).Model(model).
		Where("id = ?", id).
		UpdateColumn("stock", gorm.Expr("stock + ?", qty))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormProductRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("(LOWER(name) LIKE ?"+likeEscape+" OR LOWER(sku) LIKE ?"+likeEscape+")", pattern, pattern)
	}
	for key, value := range filter.Filters {
		switch key {
		case catalog.FilterCategoryID:
			query = query.Where("category_id = ?", value)
		case catalog.FilterActiveOnly:
			if active, ok := value.(bool); ok && active {
				query = query.Where("is_active = ?", true)
			}
		}
	}
	return query
}

// Ensure GormProductRepository implements ProductRepository
var _ catalog.ProductRepository = (*GormProductRepository)(nil)
