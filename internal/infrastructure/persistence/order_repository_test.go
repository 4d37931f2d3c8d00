package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/trade"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestOrder(t *testing.T, number string, userID *uuid.UUID, productID uuid.UUID, qty int, price string) *trade.Order {
	t.Helper()
	order, err := trade.NewOrder(trade.OrderInput{
		OrderNumber:   number,
		UserID:        userID,
		PaymentMethod: "card",
	}, []trade.OrderLine{{ProductID: productID, Quantity: qty, UnitPrice: dec(price)}}, trade.DefaultPricingPolicy())
	require.NoError(t, err)
	return order
}

func TestGormOrderRepository_CreateAndFind(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()
	category := seedCategory(t, db, "Electronics")
	product := seedProduct(t, db, category.ID, "PHONE-1", "100", 5)
	user := seedUser(t, db, "Jane", "jane@example.com", identity.RoleCustomer)

	order := newTestOrder(t, "ORD-1", &user.ID, product.ID, 2, "100")
	require.NoError(t, repo.Create(ctx, order))

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "ORD-1", found.OrderNumber)
	assert.Equal(t, trade.OrderStatusPending, found.Status)
	assert.True(t, found.Total.Equal(dec("240")))
	require.Len(t, found.Items, 1)
	require.NotNil(t, found.Items[0].Product)
	assert.Equal(t, "PHONE-1", found.Items[0].Product.SKU)
	require.NotNil(t, found.User)
	assert.Equal(t, "Jane", found.User.Name)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormOrderRepository_DuplicateNumberInsideTransaction(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	category := seedCategory(t, db, "Books")
	product := seedProduct(t, db, category.ID, "BOOK-1", "10", 5)
	require.NoError(t, NewGormOrderRepository(db).Create(ctx, newTestOrder(t, "ORD-DUP", nil, product.ID, 1, "10")))

	err := db.Transaction(func(tx *gorm.DB) error {
		repo := NewGormOrderRepository(tx)
		err := repo.Create(ctx, newTestOrder(t, "ORD-DUP", nil, product.ID, 1, "10"))
		if !errors.Is(err, shared.ErrAlreadyExists) {
			return errors.New("expected duplicate order number")
		}
		// the outer transaction stays usable after the failed insert
		return repo.Create(ctx, newTestOrder(t, "ORD-NEW", nil, product.ID, 1, "10"))
	})
	require.NoError(t, err)

	count, err := NewGormOrderRepository(db).Count(ctx, shared.DefaultFilter())
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func TestGormOrderRepository_Listing(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()
	category := seedCategory(t, db, "Sports")
	product := seedProduct(t, db, category.ID, "BALL-1", "20", 50)
	alice := seedUser(t, db, "Alice", "alice@example.com", identity.RoleCustomer)
	bob := seedUser(t, db, "Bob", "bob@example.com", identity.RoleCustomer)

	for i, number := range []string{"ORD-A1", "ORD-A2", "ORD-A3"} {
		o := newTestOrder(t, number, &alice.ID, product.ID, 1, "20")
		o.CreatedAt = time.Now().Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.Create(ctx, o))
	}
	shipped := newTestOrder(t, "ORD-B1", &bob.ID, product.ID, 1, "20")
	shipped.Status = trade.OrderStatusShipped
	require.NoError(t, repo.Create(ctx, shipped))

	mine, err := repo.FindByUser(ctx, alice.ID, "")
	require.NoError(t, err)
	require.Len(t, mine, 3)
	assert.Equal(t, "ORD-A3", mine[0].OrderNumber)

	mine, err = repo.FindByUser(ctx, bob.ID, trade.OrderStatusPending)
	require.NoError(t, err)
	assert.Empty(t, mine)

	filter := shared.DefaultFilter()
	filter.Filters[trade.FilterStatus] = trade.OrderStatusShipped
	all, err := repo.FindAll(ctx, filter)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "ORD-B1", all[0].OrderNumber)

	for search, want := range map[string][]string{
		"b1":          {"ORD-B1"},
		"bob@example": {"ORD-B1"},
		"alice":       {"ORD-A3", "ORD-A2", "ORD-A1"},
		"_":           nil,
		"%":           nil,
	} {
		filter := shared.DefaultFilter()
		filter.Search = search
		found, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		var numbers []string
		for _, o := range found {
			numbers = append(numbers, o.OrderNumber)
		}
		assert.ElementsMatch(t, want, numbers, "search %q", search)

		count, err := repo.Count(ctx, filter)
		require.NoError(t, err)
		assert.EqualValues(t, len(want), count, "search %q", search)
	}

	recent, err := repo.FindRecentByUsers(ctx, []uuid.UUID{alice.ID, bob.ID}, 2)
	require.NoError(t, err)
	assert.Len(t, recent[alice.ID], 2)
	assert.Len(t, recent[bob.ID], 1)

	counts, err := repo.CountByUsers(ctx, []uuid.UUID{alice.ID, bob.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 3, counts[alice.ID])
	assert.EqualValues(t, 1, counts[bob.ID])
}

func TestGormOrderRepository_UpdateStatusAndDelete(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()
	category := seedCategory(t, db, "Home")
	product := seedProduct(t, db, category.ID, "MUG-1", "8", 5)
	order := newTestOrder(t, "ORD-9", nil, product.ID, 1, "8")
	require.NoError(t, repo.Create(ctx, order))

	_, err := order.ChangeStatus(trade.OrderStatusConfirmed)
	require.NoError(t, err)
	require.NoError(t, repo.UpdateStatus(ctx, order))

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, trade.OrderStatusConfirmed, found.Status)

	require.NoError(t, repo.Delete(ctx, order.ID))
	assert.ErrorIs(t, repo.Delete(ctx, order.ID), shared.ErrNotFound)

	var items int64
	db.Model(&trade.OrderItem{}).Where("order_id = ?", order.ID).Count(&items)
	assert.Zero(t, items)
}
