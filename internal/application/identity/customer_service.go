package identity

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/trade"
)

// RecentOrdersPerCustomer caps the order history shown per customer
const RecentOrdersPerCustomer = 10

// CustomerService lists shopper accounts for the back office
type CustomerService struct {
	userRepo  identity.UserRepository
	orderRepo trade.OrderRepository
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(userRepo identity.UserRepository, orderRepo trade.OrderRepository) *CustomerService {
	return &CustomerService{userRepo: userRepo, orderRepo: orderRepo}
}

// List returns a page of customers with addresses, recent orders and order count
func (s *CustomerService) List(ctx context.Context, filter CustomerListFilter) (*CustomerPage, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 10
	}
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.Limit,
		OrderBy:  "created_at",
		OrderDir: "desc",
		Search:   strings.TrimSpace(filter.Search),
	}

	users, err := s.userRepo.FindCustomers(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.userRepo.CountCustomers(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	recent, err := s.orderRepo.FindRecentByUsers(ctx, ids, RecentOrdersPerCustomer)
	if err != nil {
		return nil, err
	}
	counts, err := s.orderRepo.CountByUsers(ctx, ids)
	if err != nil {
		return nil, err
	}

	customers := make([]CustomerResponse, 0, len(users))
	for _, u := range users {
		c := CustomerResponse{
			ID:         u.ID,
			Name:       u.Name,
			Email:      u.Email,
			Phone:      u.Phone,
			CreatedAt:  u.CreatedAt,
			Addresses:  make([]AddressResponse, 0, len(u.Addresses)),
			Orders:     toOrderSummaries(recent[u.ID]),
			OrderCount: counts[u.ID],
		}
		for i := range u.Addresses {
			c.Addresses = append(c.Addresses, ToAddressResponse(&u.Addresses[i]))
		}
		customers = append(customers, c)
	}

	return &CustomerPage{
		Customers:  customers,
		Pagination: shared.NewPagination(total, filter.Page, filter.Limit),
	}, nil
}
