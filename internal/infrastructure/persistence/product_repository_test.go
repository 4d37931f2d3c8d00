package persistence

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormProductRepository_CreateAndFind(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()
	category := seedCategory(t, db, "Electronics")

	p, err := catalog.NewProduct("Phone", "phone-001", dec("999.99"), category.ID)
	require.NoError(t, err)
	_, err = p.AddVariant("Color", "Silver", dec("0"), 3)
	require.NoError(t, err)
	_, err = p.AddVariant("Color", "Black", dec("10"), 5)
	require.NoError(t, err)
	_, err = p.AddImage("https://img/1.jpg", "front", "", false)
	require.NoError(t, err)
	_, err = p.AddImage("https://img/2.jpg", "back", "", true)
	require.NoError(t, err)

	require.NoError(t, repo.Create(ctx, p))

	found, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "PHONE-001", found.SKU)
	assert.True(t, found.Price.Equal(dec("999.99")))
	require.NotNil(t, found.Category)
	assert.Equal(t, "electronics", found.Category.Slug)
	require.Len(t, found.Images, 2)
	assert.True(t, found.Images[0].IsPrimary)
	assert.Equal(t, "https://img/2.jpg", found.Images[0].URL)
	require.Len(t, found.Variants, 2)
	assert.Equal(t, "Black", found.Variants[0].Value)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormProductRepository_DuplicateSKU(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormProductRepository(db)
	category := seedCategory(t, db, "Books")
	first := seedProduct(t, db, category.ID, "BOOK-1", "10", 1)

	dup, err := catalog.NewProduct("Other", "book-1", dec("5"), category.ID)
	require.NoError(t, err)
	err = repo.Create(context.Background(), dup)
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)

	exists, err := repo.ExistsBySKU(context.Background(), "book-1", uuid.Nil)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsBySKU(context.Background(), "BOOK-1", first.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGormProductRepository_FindAllFilters(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()
	books := seedCategory(t, db, "Books")
	sports := seedCategory(t, db, "Sports")

	seedProduct(t, db, books.ID, "NOVEL-1", "12", 4)
	seedProduct(t, db, books.ID, "NOVEL-2", "15", 4)
	ball := seedProduct(t, db, sports.ID, "BALL-1", "20", 4)
	ball.SetActive(false)
	require.NoError(t, repo.Save(ctx, ball))

	filter := shared.DefaultFilter()
	filter.Search = "novel"
	products, err := repo.FindAll(ctx, filter, 5)
	require.NoError(t, err)
	assert.Len(t, products, 2)

	for _, wildcard := range []string{"_", "%", `\`} {
		filter = shared.DefaultFilter()
		filter.Search = wildcard
		count, err := repo.Count(ctx, filter)
		require.NoError(t, err)
		assert.Zero(t, count, "search %q matches literally", wildcard)
	}

	filter = shared.DefaultFilter()
	filter.Filters[catalog.FilterCategoryID] = sports.ID
	count, err := repo.Count(ctx, filter)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	filter.Filters[catalog.FilterActiveOnly] = true
	count, err = repo.Count(ctx, filter)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)

	active, err := repo.CountActive(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, active)

	byCategory, err := repo.CountActiveByCategory(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, byCategory[books.ID])
	assert.EqualValues(t, 0, byCategory[sports.ID])

	filter = shared.DefaultFilter()
	filter.PageSize = 2
	filter.Page = 2
	page, err := repo.FindAll(ctx, filter, 0)
	require.NoError(t, err)
	assert.Len(t, page, 1)
}

func TestGormProductRepository_StockCounters(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()
	category := seedCategory(t, db, "Home")
	p := seedProduct(t, db, category.ID, "LAMP-1", "30", 3)

	require.NoError(t, repo.DecrementStock(ctx, p.ID, 2))
	assert.ErrorIs(t, repo.DecrementStock(ctx, p.ID, 2), shared.ErrInsufficientStock)
	require.NoError(t, repo.IncrementStock(ctx, p.ID, 4))
	require.NoError(t, repo.SetStock(ctx, p.ID, 9))
	assert.ErrorIs(t, repo.SetStock(ctx, uuid.New(), 1), shared.ErrNotFound)

	found, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 9, found.Stock)
}

func TestGormProductRepository_SaveKeepsStock(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()
	category := seedCategory(t, db, "Garden")
	p := seedProduct(t, db, category.ID, "HOSE-1", "25", 10)

	stale, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	require.NoError(t, repo.DecrementStock(ctx, p.ID, 4))

	require.NoError(t, stale.Rename("Garden hose", "long"))
	require.NoError(t, repo.Save(ctx, stale))

	found, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Garden hose", found.Name)
	assert.Equal(t, 6, found.Stock)
}

func TestGormProductRepository_DeleteCascadesChildren(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()
	category := seedCategory(t, db, "Beauty")
	p := seedProduct(t, db, category.ID, "SOAP-1", "3", 10)

	require.NoError(t, repo.SaveImage(ctx, &catalog.ProductImage{
		BaseEntity: shared.NewBaseEntity(), ProductID: p.ID, URL: "https://img/soap.jpg", IsPrimary: true,
	}))
	owner, err := cart.NewOwner(nil, "sess-1")
	require.NoError(t, err)
	line, err := cart.NewItem(owner, p.ID, nil, 1)
	require.NoError(t, err)
	require.NoError(t, NewGormCartRepository(db).Save(ctx, line))

	referenced, err := repo.IsReferencedByOrders(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, referenced)

	require.NoError(t, repo.Delete(ctx, p.ID))
	assert.ErrorIs(t, repo.Delete(ctx, p.ID), shared.ErrNotFound)

	var images, lines int64
	db.Model(&catalog.ProductImage{}).Where("product_id = ?", p.ID).Count(&images)
	db.Model(&cart.Item{}).Where("product_id = ?", p.ID).Count(&lines)
	assert.Zero(t, images)
	assert.Zero(t, lines)
}

func TestGormProductRepository_SaveImageDemotesPrimary(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()
	category := seedCategory(t, db, "Clothing")
	p := seedProduct(t, db, category.ID, "TEE-1", "19.99", 10)

	first := &catalog.ProductImage{BaseEntity: shared.NewBaseEntity(), ProductID: p.ID, URL: "a", IsPrimary: true}
	second := &catalog.ProductImage{BaseEntity: shared.NewBaseEntity(), ProductID: p.ID, URL: "b", IsPrimary: true}
	require.NoError(t, repo.SaveImage(ctx, first))
	require.NoError(t, repo.SaveImage(ctx, second))

	var primaries []catalog.ProductImage
	require.NoError(t, db.Where("product_id = ? AND is_primary = ?", p.ID, true).Find(&primaries).Error)
	require.Len(t, primaries, 1)
	assert.Equal(t, "b", primaries[0].URL)
}

func TestGormProductRepository_DecrementStockSQL(t *testing.T) {
	db, mock, mockDB := newMockGormDB(t)
	defer mockDB.Close()
	repo := NewGormProductRepository(db)
	id := uuid.New()

	mock.ExpectExec(`UPDATE "products" SET "stock"=stock - \$1 WHERE id = \$2 AND stock >= \$3`).
		WithArgs(2, id, 2).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DecrementStock(context.Background(), id, 2)
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	assert.NoError(t, mock.ExpectationsWereMet())
}
