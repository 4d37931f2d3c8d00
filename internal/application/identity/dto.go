package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/trade"
)

// RegisterInput contains the input for account registration
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterResult is returned after a successful registration
type RegisterResult struct {
	Message string   `json:"message"`
	User    UserInfo `json:"user"`
}

// LoginInput contains the input for user login
type LoginInput struct {
	Email     string
	Password  string
	SessionID string // anonymous cart to merge into the account
}

// TokenResult is an issued token pair
type TokenResult struct {
	AccessToken           string    `json:"accessToken"`
	RefreshToken          string    `json:"refreshToken"`
	AccessTokenExpiresAt  time.Time `json:"accessTokenExpiresAt"`
	RefreshTokenExpiresAt time.Time `json:"refreshTokenExpiresAt"`
	TokenType             string    `json:"tokenType"`
}

// LoginResult contains the result of a successful login
type LoginResult struct {
	TokenResult
	User UserInfo `json:"user"`
}

// LogoutInput identifies the tokens to revoke
type LogoutInput struct {
	UserID       uuid.UUID
	AccessJTI    string
	AccessTTL    time.Duration
	RefreshToken string // optional
}

// UserInfo contains the public fields of an account
type UserInfo struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Phone string    `json:"phone,omitempty"`
	Role  string    `json:"role"`
}

// CreateAddressInput contains the input for a new address
type CreateAddressInput struct {
	Street    string `json:"street"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zipCode"`
	Country   string `json:"country"`
	IsDefault bool   `json:"isDefault"`
}

// AddressResponse represents an address in API responses
type AddressResponse struct {
	ID        uuid.UUID `json:"id"`
	Street    string    `json:"street"`
	City      string    `json:"city"`
	State     string    `json:"state"`
	ZipCode   string    `json:"zipCode"`
	Country   string    `json:"country"`
	IsDefault bool      `json:"isDefault"`
	CreatedAt time.Time `json:"createdAt"`
}

// CustomerListFilter holds the query of the customer list
type CustomerListFilter struct {
	Page   int
	Limit  int
	Search string
}

// CustomerOrderSummary is one of a customer's recent orders
type CustomerOrderSummary struct {
	ID          uuid.UUID       `json:"id"`
	OrderNumber string          `json:"orderNumber"`
	Status      string          `json:"status"`
	Total       decimal.Decimal `json:"total"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// CustomerResponse is a customer with addresses and order history
type CustomerResponse struct {
	ID         uuid.UUID              `json:"id"`
	Name       string                 `json:"name"`
	Email      string                 `json:"email"`
	Phone      string                 `json:"phone"`
	CreatedAt  time.Time              `json:"createdAt"`
	Addresses  []AddressResponse      `json:"addresses"`
	Orders     []CustomerOrderSummary `json:"orders"`
	OrderCount int64                  `json:"orderCount"`
}

// CustomerPage is one page of the customer list
type CustomerPage struct {
	Customers  []CustomerResponse `json:"customers"`
	Pagination shared.Pagination  `json:"pagination"`
}

// ToUserInfo converts a domain user
func ToUserInfo(u *identity.User) UserInfo {
	return UserInfo{ID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone, Role: string(u.Role)}
}

// ToAddressResponse converts a domain address
func ToAddressResponse(a *identity.Address) AddressResponse {
	return AddressResponse{
		ID:        a.ID,
		Street:    a.Street,
		City:      a.City,
		State:     a.State,
		ZipCode:   a.ZipCode,
		Country:   a.Country,
		IsDefault: a.IsDefault,
		CreatedAt: a.CreatedAt,
	}
}

func toOrderSummaries(orders []trade.Order) []CustomerOrderSummary {
	out := make([]CustomerOrderSummary, 0, len(orders))
	for _, o := range orders {
		out = append(out, CustomerOrderSummary{
			ID:          o.ID,
			OrderNumber: o.OrderNumber,
			Status:      o.Status.String(),
			Total:       o.Total,
			CreatedAt:   o.CreatedAt,
		})
	}
	return out
}
