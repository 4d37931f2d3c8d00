package cart_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	appcart "github.com/storefront/backend/internal/application/cart"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/trade"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type cartFixture struct {
	ctx     context.Context
	db      *gorm.DB
	service *appcart.CartService
	product *catalog.Product
	variant *catalog.ProductVariant
	session cart.Owner
}

// newCartFixture opens an in-memory store holding one product with stock 5
// and one variant with stock 2
func newCartFixture(t *testing.T) *cartFixture {
	t.Helper()
	f := &cartFixture{ctx: context.Background()}

	database, err := persistence.NewDatabase(config.DatabaseConfig{Driver: "sqlite", Path: "file::memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	f.db = database.DB
	require.NoError(t, persistence.AutoMigrate(f.db))

	category, err := catalog.NewCategory("Apparel", "", "")
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormCategoryRepository(f.db).Save(f.ctx, category))

	f.product, err = catalog.NewProduct("Tee", "TEE-1", decimal.RequireFromString("20.00"), category.ID)
	require.NoError(t, err)
	require.NoError(t, f.product.SetStock(5))
	f.variant, err = f.product.AddVariant("Size", "XL", decimal.RequireFromString("2.50"), 2)
	require.NoError(t, err)
	_, err = f.product.AddImage("https://cdn.example.com/tee.png", "Tee", "", true)
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormProductRepository(f.db).Create(f.ctx, f.product))

	f.session, err = cart.NewOwner(nil, "sess-1")
	require.NoError(t, err)

	f.service = appcart.NewCartService(
		persistence.NewGormCartRepository(f.db),
		persistence.NewGormProductRepository(f.db),
		trade.DefaultPricingPolicy(),
		zap.NewNop(),
	)
	return f
}

func TestCartService_AddIncrementsExistingLine(t *testing.T) {
	f := newCartFixture(t)
	first, err := f.service.Add(f.ctx, f.session, appcart.AddItemRequest{ProductID: f.product.ID, Quantity: 2})
	require.NoError(t, err)
	second, err := f.service.Add(f.ctx, f.session, appcart.AddItemRequest{ProductID: f.product.ID, Quantity: 1})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 3, second.Quantity)
	assert.Equal(t, "60", second.LineTotal.String())

	got, err := f.service.Get(f.ctx, f.session)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 3, got.Summary.TotalItems)
	assert.Equal(t, "60", got.Summary.Subtotal.String())
	assert.Equal(t, "12", got.Summary.Tax.String())
	assert.Equal(t, "72", got.Summary.Total.String())
	require.NotNil(t, got.Items[0].Product)
	require.Len(t, got.Items[0].Product.Images, 1)
}

func TestCartService_AddVariantUsesVariantPriceAndStock(t *testing.T) {
	f := newCartFixture(t)
	item, err := f.service.Add(f.ctx, f.session, appcart.AddItemRequest{ProductID: f.product.ID, VariantID: &f.variant.ID, Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, "22.5", item.UnitPrice.String())
	require.NotNil(t, item.Variant)
	assert.Equal(t, "XL", item.Variant.Value)

	_, err = f.service.Add(f.ctx, f.session, appcart.AddItemRequest{ProductID: f.product.ID, VariantID: &f.variant.ID, Quantity: 1})
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)
}

func TestCartService_AddRejections(t *testing.T) {
	f := newCartFixture(t)
	_, err := f.service.Add(f.ctx, f.session, appcart.AddItemRequest{ProductID: f.product.ID})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = f.service.Add(f.ctx, f.session, appcart.AddItemRequest{ProductID: uuid.New(), Quantity: 1})
	assert.ErrorIs(t, err, shared.ErrNotFound)

	other := uuid.New()
	_, err = f.service.Add(f.ctx, f.session, appcart.AddItemRequest{ProductID: f.product.ID, VariantID: &other, Quantity: 1})
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Equal(t, "Variant not found", err.Error())

	_, err = f.service.Add(f.ctx, f.session, appcart.AddItemRequest{ProductID: f.product.ID, Quantity: 6})
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)

	f.product.SetActive(false)
	require.NoError(t, persistence.NewGormProductRepository(f.db).Save(f.ctx, f.product))
	_, err = f.service.Add(f.ctx, f.session, appcart.AddItemRequest{ProductID: f.product.ID, Quantity: 1})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCartService_UpdateAndRemove(t *testing.T) {
	f := newCartFixture(t)
	item, err := f.service.Add(f.ctx, f.session, appcart.AddItemRequest{ProductID: f.product.ID, Quantity: 1})
	require.NoError(t, err)

	updated, err := f.service.UpdateItem(f.ctx, f.session, item.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Quantity)

	_, err = f.service.UpdateItem(f.ctx, f.session, item.ID, 9)
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)

	stranger, err := cart.NewOwner(nil, "someone-else")
	require.NoError(t, err)
	_, err = f.service.UpdateItem(f.ctx, stranger, item.ID, 1)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.ErrorIs(t, f.service.RemoveItem(f.ctx, stranger, item.ID), shared.ErrNotFound)

	removed, err := f.service.UpdateItem(f.ctx, f.session, item.ID, 0)
	require.NoError(t, err)
	assert.Nil(t, removed)

	got, err := f.service.Get(f.ctx, f.session)
	require.NoError(t, err)
	assert.Empty(t, got.Items)
	assert.True(t, got.Summary.Total.IsZero())
}

func TestCartService_Clear(t *testing.T) {
	f := newCartFixture(t)
	_, err := f.service.Add(f.ctx, f.session, appcart.AddItemRequest{ProductID: f.product.ID, Quantity: 1})
	require.NoError(t, err)
	require.NoError(t, f.service.Clear(f.ctx, f.session))

	got, err := f.service.Get(f.ctx, f.session)
	require.NoError(t, err)
	assert.Empty(t, got.Items)
}

func TestCartService_MergeSessionCart(t *testing.T) {
	f := newCartFixture(t)
	user := &identity.User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Email:             "m@example.com",
		Name:              "M",
		PasswordHash:      "hash",
		Role:              identity.RoleCustomer,
	}
	require.NoError(t, persistence.NewGormUserRepository(f.db).Create(f.ctx, user))
	account, err := cart.NewOwner(&user.ID, "")
	require.NoError(t, err)

	_, err = f.service.Add(f.ctx, account, appcart.AddItemRequest{ProductID: f.product.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = f.service.Add(f.ctx, f.session, appcart.AddItemRequest{ProductID: f.product.ID, Quantity: 2})
	require.NoError(t, err)
	_, err = f.service.Add(f.ctx, f.session, appcart.AddItemRequest{ProductID: f.product.ID, VariantID: &f.variant.ID, Quantity: 1})
	require.NoError(t, err)

	require.NoError(t, f.service.MergeSessionCart(f.ctx, "sess-1", user.ID))
	require.NoError(t, f.service.MergeSessionCart(f.ctx, "  ", user.ID))

	mine, err := f.service.Get(f.ctx, account)
	require.NoError(t, err)
	assert.Len(t, mine.Items, 2)
	assert.Equal(t, 4, mine.Summary.TotalItems)

	anonymous, err := f.service.Get(f.ctx, f.session)
	require.NoError(t, err)
	assert.Empty(t, anonymous.Items)
}

func TestToItemResponse_WithoutProduct(t *testing.T) {
	owner, err := cart.NewOwner(nil, "s")
	require.NoError(t, err)
	item, err := cart.NewItem(owner, uuid.New(), nil, 3)
	require.NoError(t, err)

	resp := appcart.ToItemResponse(item)
	assert.Nil(t, resp.Product)
	assert.Nil(t, resp.Variant)
	assert.True(t, resp.LineTotal.IsZero())
}
