package seed

import (
	"context"
	"testing"

	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newSeeder(t *testing.T) (*Seeder, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, persistence.AutoMigrate(db))

	return NewSeeder(
		persistence.NewGormCategoryRepository(db),
		persistence.NewGormProductRepository(db),
		persistence.NewGormUserRepository(db),
		nil,
	), db
}

func TestDefault(t *testing.T) {
	f, err := Default()
	require.NoError(t, err)

	slugs := make([]string, 0, len(f.Categories))
	for _, c := range f.Categories {
		slugs = append(slugs, c.Slug)
	}
	assert.Equal(t, []string{"electronics", "clothing", "home-garden", "sports-outdoors", "books", "beauty-health"}, slugs)
	require.NotEmpty(t, f.Products)
	assert.Equal(t, "PHONE-001", f.Products[0].SKU)
	assert.Equal(t, "999.99", f.Products[0].Price)
	assert.Equal(t, "1199.99", f.Products[0].ComparePrice)
	assert.Equal(t, 50, f.Products[0].Stock)
	assert.Len(t, f.Products[0].Variants, 3)
	require.NotNil(t, f.Admin)
}

func TestParse_RejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("categories:\n  - slug: books\n    colour: red\n"))
	assert.Error(t, err)
}

func TestSeeder_Run(t *testing.T) {
	ctx := context.Background()
	s, db := newSeeder(t)
	f, err := Default()
	require.NoError(t, err)

	res, err := s.Run(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, 6, res.CategoriesCreated)
	assert.Equal(t, len(f.Products), res.ProductsCreated)
	assert.True(t, res.AdminCreated)

	var stock int
	require.NoError(t, db.Raw("SELECT stock FROM products WHERE sku = ?", "PHONE-001").Scan(&stock).Error)
	assert.Equal(t, 50, stock)

	var variants int64
	require.NoError(t, db.Table("product_variants").Count(&variants).Error)
	assert.EqualValues(t, 7, variants)

	admin, err := persistence.NewGormUserRepository(db).FindByEmail(ctx, f.Admin.Email)
	require.NoError(t, err)
	assert.Equal(t, identity.RoleAdmin, admin.Role)
	assert.True(t, admin.VerifyPassword(f.Admin.Password))

	t.Run("second run is idempotent", func(t *testing.T) {
		res, err := s.Run(ctx, f)
		require.NoError(t, err)
		assert.Zero(t, res.CategoriesCreated)
		assert.Equal(t, 6, res.CategoriesUpdated)
		assert.Zero(t, res.ProductsCreated)
		assert.Equal(t, len(f.Products), res.ProductsSkipped)
		assert.False(t, res.AdminCreated)

		var products int64
		require.NoError(t, db.Table("products").Count(&products).Error)
		assert.EqualValues(t, len(f.Products), products)
	})

	t.Run("reset empties the store", func(t *testing.T) {
		require.NoError(t, persistence.Truncate(db))
		var products int64
		require.NoError(t, db.Table("products").Count(&products).Error)
		assert.Zero(t, products)
	})
}

func TestSeeder_UnknownCategory(t *testing.T) {
	s, _ := newSeeder(t)
	f := &Fixtures{Products: []ProductFixture{{SKU: "X-1", Name: "X", Category: "nowhere", Price: "1"}}}

	_, err := s.Run(context.Background(), f)

	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestSeeder_InvalidPrice(t *testing.T) {
	s, _ := newSeeder(t)
	f := &Fixtures{
		Categories: []CategoryFixture{{Slug: "books", Name: "Books"}},
		Products:   []ProductFixture{{SKU: "B-1", Name: "Book", Category: "books", Price: "cheap"}},
	}

	_, err := s.Run(context.Background(), f)

	assert.ErrorContains(t, err, "invalid price")
}
