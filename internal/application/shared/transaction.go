// Package shared holds contracts used by several application services.
package shared

import (
	"context"

	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/trade"
)

// TransactionalRepositories exposes repositories bound to one database transaction
type TransactionalRepositories interface {
	Products() catalog.ProductRepository
	Orders() trade.OrderRepository
	Addresses() identity.AddressRepository
	Carts() cart.Repository
}

// TransactionScope runs fn atomically. Returning an error from fn rolls
// back every write made through repos.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}
