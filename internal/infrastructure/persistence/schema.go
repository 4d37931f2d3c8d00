package persistence

import (
	"fmt"

	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/trade"
	"gorm.io/gorm"
)

// Models lists every persisted entity in dependency order
func Models() []any {
	return []any{
		&catalog.Category{},
		&catalog.Product{},
		&catalog.ProductImage{},
		&catalog.ProductVariant{},
		&identity.User{},
		&identity.Address{},
		&trade.Order{},
		&trade.OrderItem{},
		&cart.Item{},
	}
}

// partialIndexes are indexes gorm tags cannot express. Both postgres and
// sqlite accept them verbatim.
var partialIndexes = []string{
	"CREATE UNIQUE INDEX IF NOT EXISTS idx_addresses_one_default ON addresses (user_id) WHERE is_default",
}

// AutoMigrate creates the schema from the entity definitions. Postgres
// deployments use the SQL files under migrations/ instead.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	for _, stmt := range partialIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
	}
	return nil
}

// storeTables lists tables children first, for truncation
var storeTables = []string{
	"cart_items", "order_items", "orders", "addresses", "users",
	"product_variants", "product_images", "products", "categories",
}

// Truncate deletes every row of the store tables
func Truncate(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, table := range storeTables {
			if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
				return fmt.Errorf("truncate %s: %w", table, err)
			}
		}
		return nil
	})
}
