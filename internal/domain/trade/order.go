package trade

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
)

// OrderStatus represents the fulfilment status of an order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusConfirmed  OrderStatus = "CONFIRMED"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// AllOrderStatuses lists every status in lifecycle order
var AllOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// ParseOrderStatus converts s (any case) to an OrderStatus
func ParseOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !status.IsValid() {
		return "", shared.InvalidInput(fmt.Sprintf("Invalid order status: %s", s))
	}
	return status, nil
}

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// IsTerminal reports whether no further transitions are allowed
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransitionTo checks if the status can transition to the target status
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return target == OrderStatusConfirmed || target == OrderStatusProcessing || target == OrderStatusCancelled
	case OrderStatusConfirmed:
		return target == OrderStatusProcessing || target == OrderStatusShipped || target == OrderStatusCancelled
	case OrderStatusProcessing:
		return target == OrderStatusShipped || target == OrderStatusCancelled
	case OrderStatusShipped:
		return target == OrderStatusDelivered
	}
	return false
}

// Order is a placed purchase. It is the aggregate root for its items.
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber   string            `gorm:"type:varchar(50);not null;uniqueIndex:idx_orders_order_number"`
	Status        OrderStatus       `gorm:"type:varchar(20);not null;index"`
	Subtotal      decimal.Decimal   `gorm:"type:decimal(12,2);not null"`
	Tax           decimal.Decimal   `gorm:"type:decimal(12,2);not null"`
	Shipping      decimal.Decimal   `gorm:"type:decimal(12,2);not null"`
	Total         decimal.Decimal   `gorm:"type:decimal(12,2);not null"`
	PaymentMethod string            `gorm:"type:varchar(50)"`
	Notes         string            `gorm:"type:text"`
	UserID        *uuid.UUID        `gorm:"type:uuid;index"`
	AddressID     *uuid.UUID        `gorm:"type:uuid"`
	User          *identity.User    `gorm:"foreignKey:UserID"`
	Address       *identity.Address `gorm:"foreignKey:AddressID"`
	Items         []OrderItem       `gorm:"foreignKey:OrderID"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// OrderItem is one purchased line with the unit price captured at checkout
type OrderItem struct {
	shared.BaseEntity
	OrderID   uuid.UUID               `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID               `gorm:"type:uuid;not null;index"`
	VariantID *uuid.UUID              `gorm:"type:uuid"`
	Quantity  int                     `gorm:"not null"`
	Price     decimal.Decimal         `gorm:"type:decimal(12,2);not null"`
	Product   *catalog.Product        `gorm:"foreignKey:ProductID"`
	Variant   *catalog.ProductVariant `gorm:"foreignKey:VariantID"`
}

// TableName returns the table name for GORM
func (OrderItem) TableName() string {
	return "order_items"
}

// LineTotal is price times quantity
func (i *OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// OrderLine is the input for one order item
type OrderLine struct {
	ProductID uuid.UUID
	VariantID *uuid.UUID
	Quantity  int
	UnitPrice decimal.Decimal
}

// OrderInput carries everything needed to build an order besides its lines
type OrderInput struct {
	OrderNumber   string
	UserID        *uuid.UUID
	AddressID     *uuid.UUID
	PaymentMethod string
	Notes         string
}

// NewOrder builds a PENDING order and computes its totals with policy
func NewOrder(in OrderInput, lines []OrderLine, policy PricingPolicy) (*Order, error) {
	if strings.TrimSpace(in.OrderNumber) == "" {
		return nil, shared.InvalidInput("Order number is required")
	}
	if len(lines) == 0 {
		return nil, shared.InvalidInput("Order items are required")
	}

	order := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       in.OrderNumber,
		Status:            OrderStatusPending,
		PaymentMethod:     strings.TrimSpace(in.PaymentMethod),
		Notes:             in.Notes,
		UserID:            in.UserID,
		AddressID:         in.AddressID,
	}

	subtotal := decimal.Zero
	for _, line := range lines {
		if line.ProductID == uuid.Nil {
			return nil, shared.InvalidInput("Product ID is required")
		}
		if line.Quantity <= 0 {
			return nil, shared.InvalidInput("Quantity must be greater than zero")
		}
		if line.UnitPrice.IsNegative() {
			return nil, shared.InvalidInput("Unit price cannot be negative")
		}
		item := OrderItem{
			BaseEntity: shared.NewBaseEntity(),
			OrderID:    order.ID,
			ProductID:  line.ProductID,
			VariantID:  line.VariantID,
			Quantity:   line.Quantity,
			Price:      line.UnitPrice,
		}
		subtotal = subtotal.Add(item.LineTotal())
		order.Items = append(order.Items, item)
	}

	totals := policy.Totals(subtotal)
	order.Subtotal = totals.Subtotal
	order.Tax = totals.Tax
	order.Shipping = totals.Shipping
	order.Total = totals.Total

	order.AddDomainEvent(NewOrderPlacedEvent(order))
	return order, nil
}

// ChangeStatus moves the order to target. Setting the current status is a no-op
// and reports changed=false.
func (o *Order) ChangeStatus(target OrderStatus) (changed bool, err error) {
	if !target.IsValid() {
		return false, shared.InvalidInput(fmt.Sprintf("Invalid order status: %s", target))
	}
	if o.Status == target {
		return false, nil
	}
	if !o.Status.CanTransitionTo(target) {
		return false, shared.NewDomainError(shared.ErrInvalidState.Code,
			fmt.Sprintf("Cannot change order status from %s to %s", o.Status, target))
	}
	from := o.Status
	o.Status = target
	o.Touch()
	o.AddDomainEvent(NewOrderStatusChangedEvent(o, from, target))
	return true, nil
}

// ItemCount sums item quantities
func (o *Order) ItemCount() int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}

// BelongsTo reports whether the order was placed by userID
func (o *Order) BelongsTo(userID uuid.UUID) bool {
	return o.UserID != nil && *o.UserID == userID
}

// CustomerLabel is the buyer's name, else email, else "Guest"
func (o *Order) CustomerLabel() string {
	if o.User != nil {
		if o.User.Name != "" {
			return o.User.Name
		}
		if o.User.Email != "" {
			return o.User.Email
		}
	}
	return "Guest"
}
