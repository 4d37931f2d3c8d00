package identity

import (
	"context"

	"github.com/google/uuid"
	appshared "github.com/storefront/backend/internal/application/shared"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/trade"
	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *identity.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) Save(ctx context.Context, user *identity.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) FindCustomers(ctx context.Context, filter shared.Filter) ([]identity.User, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]identity.User), args.Error(1)
}

func (m *MockUserRepository) CountCustomers(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockAddressRepository is a mock implementation of AddressRepository
type MockAddressRepository struct {
	mock.Mock
}

func (m *MockAddressRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]identity.Address, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]identity.Address), args.Error(1)
}

func (m *MockAddressRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAddressRepository) Create(ctx context.Context, address *identity.Address) error {
	return m.Called(ctx, address).Error(0)
}

func (m *MockAddressRepository) ClearDefault(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

// MockOrderRepository covers the order lookups used by the customer list
type MockOrderRepository struct {
	trade.OrderRepository
	mock.Mock
}

func (m *MockOrderRepository) FindRecentByUsers(ctx context.Context, userIDs []uuid.UUID, limit int) (map[uuid.UUID][]trade.Order, error) {
	args := m.Called(ctx, userIDs, limit)
	return args.Get(0).(map[uuid.UUID][]trade.Order), args.Error(1)
}

func (m *MockOrderRepository) CountByUsers(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	args := m.Called(ctx, userIDs)
	return args.Get(0).(map[uuid.UUID]int64), args.Error(1)
}

// MockCartMerger is a mock implementation of CartMerger
type MockCartMerger struct {
	mock.Mock
}

func (m *MockCartMerger) MergeSessionCart(ctx context.Context, sessionID string, userID uuid.UUID) error {
	return m.Called(ctx, sessionID, userID).Error(0)
}

// addressScope runs fn against the mocked address repository
type addressScope struct {
	addresses identity.AddressRepository
	err       error
}

func (s addressScope) Execute(_ context.Context, fn func(appshared.TransactionalRepositories) error) error {
	if err := fn(s); err != nil {
		return err
	}
	return s.err
}

func (s addressScope) Products() catalog.ProductRepository { return nil }
func (s addressScope) Orders() trade.OrderRepository { return nil }
func (s addressScope) Addresses() identity.AddressRepository { return s.addresses }
func (s addressScope) Carts() cart.Repository { return nil }
