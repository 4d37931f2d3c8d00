package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	appcatalog "github.com/storefront/backend/internal/application/catalog"
	appidentity "github.com/storefront/backend/internal/application/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/trade"
)

// PlaceOrderItem is one requested order line
type PlaceOrderItem struct {
	ProductID uuid.UUID  `json:"productId" binding:"required"`
	VariantID *uuid.UUID `json:"variantId"`
	Quantity  int        `json:"quantity" binding:"required,gt=0"`
}

// ShippingInput is the delivery address of an order
type ShippingInput struct {
	Street  string `json:"street" binding:"max=255"`
	City    string `json:"city" binding:"max=100"`
	State   string `json:"state" binding:"max=100"`
	ZipCode string `json:"zipCode" binding:"max=20"`
	Country string `json:"country" binding:"max=100"`
	Notes   string `json:"notes"`
}

// PaymentInput describes how the buyer pays
type PaymentInput struct {
	Method string `json:"method" binding:"max=50"`
}

// PlaceOrderRequest is the body of POST /api/orders. Client supplied
// totals are not part of the contract and are ignored.
type PlaceOrderRequest struct {
	Items     []PlaceOrderItem `json:"items" binding:"dive"`
	Shipping  *ShippingInput   `json:"shipping"`
	Payment   *PaymentInput    `json:"payment"`
	SessionID string           `json:"sessionId" binding:"max=128"`
}

// PlaceOrderInput carries the buyer and request of a checkout
type PlaceOrderInput struct {
	UserID         *uuid.UUID
	SessionID      string
	IdempotencyKey string
	Request        PlaceOrderRequest
}

// PlaceOrderResult is the outcome of a checkout. Replayed is set when an
// Idempotency-Key matched an earlier checkout.
type PlaceOrderResult struct {
	Order    *OrderResponse
	Replayed bool
}

// UpdateStatusRequest is the body of PATCH /api/admin/orders/:id
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,order_status"`
}

// OrderListFilter holds the query of the back office order list
type OrderListFilter struct {
	Page   int
	Limit  int
	Status string
	Search string
}

// OrderUser is the buyer summary embedded in orders
type OrderUser struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// OrderItemResponse is one order line
type OrderItemResponse struct {
	ID        uuid.UUID                   `json:"id"`
	ProductID uuid.UUID                   `json:"productId"`
	VariantID *uuid.UUID                  `json:"variantId"`
	Quantity  int                         `json:"quantity"`
	Price     decimal.Decimal             `json:"price"`
	LineTotal decimal.Decimal             `json:"lineTotal"`
	Product   *appcatalog.ProductResponse `json:"product,omitempty"`
	Variant   *appcatalog.VariantResponse `json:"variant"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID            uuid.UUID                    `json:"id"`
	OrderNumber   string                       `json:"orderNumber"`
	Status        string                       `json:"status"`
	Subtotal      decimal.Decimal              `json:"subtotal"`
	Tax           decimal.Decimal              `json:"tax"`
	Shipping      decimal.Decimal              `json:"shipping"`
	Total         decimal.Decimal              `json:"total"`
	PaymentMethod string                       `json:"paymentMethod"`
	Notes         string                       `json:"notes"`
	UserID        *uuid.UUID                   `json:"userId"`
	AddressID     *uuid.UUID                   `json:"addressId"`
	CustomerName  string                       `json:"customerName"`
	Items         []OrderItemResponse          `json:"items"`
	Address       *appidentity.AddressResponse `json:"address"`
	User          *OrderUser                   `json:"user"`
	CreatedAt     time.Time                    `json:"createdAt"`
	UpdatedAt     time.Time                    `json:"updatedAt"`
}

// OrderPage is one page of the back office order list
type OrderPage struct {
	Orders     []OrderResponse   `json:"orders"`
	Pagination shared.Pagination `json:"pagination"`
}

// ToOrderResponse converts a domain order with whatever relations are loaded
func ToOrderResponse(o *trade.Order) OrderResponse {
	resp := OrderResponse{
		ID:            o.ID,
		OrderNumber:   o.OrderNumber,
		Status:        o.Status.String(),
		Subtotal:      o.Subtotal,
		Tax:           o.Tax,
		Shipping:      o.Shipping,
		Total:         o.Total,
		PaymentMethod: o.PaymentMethod,
		Notes:         o.Notes,
		UserID:        o.UserID,
		AddressID:     o.AddressID,
		CustomerName:  o.CustomerLabel(),
		Items:         make([]OrderItemResponse, 0, len(o.Items)),
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
	for i := range o.Items {
		resp.Items = append(resp.Items, toOrderItemResponse(&o.Items[i]))
	}
	if o.Address != nil {
		a := appidentity.ToAddressResponse(o.Address)
		resp.Address = &a
	}
	if o.User != nil {
		resp.User = &OrderUser{ID: o.User.ID, Name: o.User.Name, Email: o.User.Email}
	}
	return resp
}

// ToOrderResponses converts a slice of orders
func ToOrderResponses(orders []trade.Order) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i := range orders {
		out[i] = ToOrderResponse(&orders[i])
	}
	return out
}

func toOrderItemResponse(item *trade.OrderItem) OrderItemResponse {
	resp := OrderItemResponse{
		ID:        item.ID,
		ProductID: item.ProductID,
		VariantID: item.VariantID,
		Quantity:  item.Quantity,
		Price:     item.Price,
		LineTotal: item.LineTotal(),
	}
	if item.Product != nil {
		p := appcatalog.ToProductResponse(item.Product)
		resp.Product = &p
	}
	if item.Variant != nil {
		v := appcatalog.ToVariantResponse(item.Variant)
		resp.Variant = &v
	}
	return resp
}
