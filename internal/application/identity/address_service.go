package identity

import (
	"context"

	"github.com/google/uuid"
	appshared "github.com/storefront/backend/internal/application/shared"
	"github.com/storefront/backend/internal/domain/identity"
)

// AddressService manages a user's shipping addresses
type AddressService struct {
	addressRepo identity.AddressRepository
	txScope     appshared.TransactionScope
}

// NewAddressService creates a new AddressService
func NewAddressService(addressRepo identity.AddressRepository, txScope appshared.TransactionScope) *AddressService {
	return &AddressService{addressRepo: addressRepo, txScope: txScope}
}

// List returns the user's addresses, default first
func (s *AddressService) List(ctx context.Context, userID uuid.UUID) ([]AddressResponse, error) {
	addresses, err := s.addressRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]AddressResponse, 0, len(addresses))
	for i := range addresses {
		out = append(out, ToAddressResponse(&addresses[i]))
	}
	return out, nil
}

// Create adds an address. A default address, or the user's first one,
// replaces the previous default inside one transaction.
func (s *AddressService) Create(ctx context.Context, userID uuid.UUID, input CreateAddressInput) (*AddressResponse, error) {
	address, err := identity.NewAddress(userID, identity.AddressInput{
		Street:  input.Street,
		City:    input.City,
		State:   input.State,
		ZipCode: input.ZipCode,
		Country: input.Country,
	}, input.IsDefault)
	if err != nil {
		return nil, err
	}

	err = s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		addresses := repos.Addresses()
		if !address.IsDefault {
			n, err := addresses.CountByUser(ctx, userID)
			if err != nil {
				return err
			}
			address.IsDefault = n == 0
		}
		if address.IsDefault {
			if err := addresses.ClearDefault(ctx, userID); err != nil {
				return err
			}
		}
		return addresses.Create(ctx, address)
	})
	if err != nil {
		return nil, err
	}

	resp := ToAddressResponse(address)
	return &resp, nil
}
