package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	appcatalog "github.com/storefront/backend/internal/application/catalog"
	"github.com/storefront/backend/internal/domain/cart"
)

// AddItemRequest is the body of POST /api/cart
type AddItemRequest struct {
	ProductID uuid.UUID  `json:"productId" binding:"required"`
	VariantID *uuid.UUID `json:"variantId"`
	Quantity  int        `json:"quantity" binding:"required,gt=0"`
	SessionID string     `json:"sessionId" binding:"max=128"`
}

// UpdateItemRequest is the body of PATCH /api/cart/:itemId
type UpdateItemRequest struct {
	Quantity  int    `json:"quantity"`
	SessionID string `json:"sessionId" binding:"max=128"`
}

// ItemResponse is one cart line with its product and variant
type ItemResponse struct {
	ID        uuid.UUID                   `json:"id"`
	ProductID uuid.UUID                   `json:"productId"`
	VariantID *uuid.UUID                  `json:"variantId"`
	Quantity  int                         `json:"quantity"`
	UnitPrice decimal.Decimal             `json:"unitPrice"`
	LineTotal decimal.Decimal             `json:"lineTotal"`
	Product   *appcatalog.ProductResponse `json:"product,omitempty"`
	Variant   *appcatalog.VariantResponse `json:"variant"`
}

// Summary is the money breakdown of a cart
type Summary struct {
	TotalItems int             `json:"totalItems"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Tax        decimal.Decimal `json:"tax"`
	Shipping   decimal.Decimal `json:"shipping"`
	Total      decimal.Decimal `json:"total"`
}

// Response is the body of GET /api/cart
type Response struct {
	Items   []ItemResponse `json:"items"`
	Summary Summary        `json:"summary"`
}

// ToItemResponse converts a cart line. Product and Variant must be loaded
// for prices to be filled in.
func ToItemResponse(item *cart.Item) ItemResponse {
	resp := ItemResponse{
		ID:        item.ID,
		ProductID: item.ProductID,
		VariantID: item.VariantID,
		Quantity:  item.Quantity,
		UnitPrice: decimal.Zero,
		LineTotal: decimal.Zero,
	}
	if item.Product != nil {
		p := appcatalog.ToProductResponse(item.Product)
		resp.Product = &p
		resp.UnitPrice = item.Product.UnitPrice(item.Variant)
		resp.LineTotal = resp.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
	}
	if item.Variant != nil {
		v := appcatalog.ToVariantResponse(item.Variant)
		resp.Variant = &v
	}
	return resp
}
