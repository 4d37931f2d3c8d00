// Package trade implements checkout and order management.
package trade

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	appshared "github.com/storefront/backend/internal/application/shared"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/trade"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// MaxOrderNumberAttempts bounds order number regeneration on collisions
const MaxOrderNumberAttempts = 3

// ErrCheckoutInProgress is returned while a checkout with the same
// Idempotency-Key has not finished
var ErrCheckoutInProgress = shared.NewDomainError(shared.ErrConflict.Code,
	"A request with this Idempotency-Key is already being processed")

// OrderService handles checkout and order management
type OrderService struct {
	orderRepo      trade.OrderRepository
	cartRepo       cart.Repository
	txScope        appshared.TransactionScope
	numbers        trade.OrderNumberGenerator
	pricing        trade.PricingPolicy
	eventPublisher shared.EventPublisher
	idempotency    shared.IdempotencyStore
	idempotencyTTL time.Duration
	logger         *zap.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(
	orderRepo trade.OrderRepository,
	cartRepo cart.Repository,
	txScope appshared.TransactionScope,
	numbers trade.OrderNumberGenerator,
	pricing trade.PricingPolicy,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		cartRepo:  cartRepo,
		txScope:   txScope,
		numbers:   numbers,
		pricing:   pricing,
		logger:    logger,
	}
}

// SetEventPublisher sets the publisher for order events
func (s *OrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetIdempotencyStore enables Idempotency-Key handling for checkout
func (s *OrderService) SetIdempotencyStore(store shared.IdempotencyStore, ttl time.Duration) {
	if ttl <= 0 {
		ttl = shared.DefaultIdempotencyConfig().TTL
	}
	s.idempotency = store
	s.idempotencyTTL = ttl
}

// Place validates the request and checks out atomically: stock is
// decremented, the shipping address stored and the order inserted in one
// transaction.
func (s *OrderService) Place(ctx context.Context, in PlaceOrderInput) (*PlaceOrderResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "place",
		attribute.Int(telemetry.SpanAttrItemCount, len(in.Request.Items)))
	defer span.End()

	if err := validatePlaceRequest(in.Request); err != nil {
		return nil, err
	}

	key := s.idempotencyKey(in)
	if key != "" {
		replay, claimed, err := s.claim(ctx, key)
		if err != nil || replay != nil {
			return replay, err
		}
		if !claimed {
			key = ""
		}
	}

	order, err := s.checkout(ctx, in)
	if err != nil {
		if key != "" {
			if relErr := s.idempotency.Release(ctx, key); relErr != nil {
				s.logger.Warn("failed to release idempotency key", zap.Error(relErr))
			}
		}
		telemetry.RecordError(span, err)
		return nil, err
	}
	span.SetAttributes(
		attribute.String(telemetry.SpanAttrOrderID, order.ID.String()),
		attribute.String(telemetry.SpanAttrOrderNumber, order.OrderNumber),
	)

	if key != "" {
		if err := s.idempotency.Complete(ctx, key, order.ID.String(), s.idempotencyTTL); err != nil {
			s.logger.Warn("failed to complete idempotency key", zap.Error(err))
		}
	}

	s.clearOrderedLines(ctx, in, order)
	s.publish(ctx, order)

	s.logger.Info("order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.String("total", order.Total.StringFixed(2)))

	resp, err := s.load(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	return &PlaceOrderResult{Order: resp}, nil
}

func validatePlaceRequest(req PlaceOrderRequest) error {
	if len(req.Items) == 0 {
		return shared.InvalidInput("Order items are required")
	}
	if req.Shipping == nil || req.Payment == nil {
		return shared.InvalidInput("Shipping and payment information are required")
	}
	for _, item := range req.Items {
		if item.ProductID == uuid.Nil {
			return shared.InvalidInput("Product ID is required for every item")
		}
		if item.Quantity <= 0 {
			return shared.InvalidInput("Quantity must be greater than zero")
		}
	}
	return nil
}

// idempotencyKey scopes the client key to the buyer: the account for a
// signed-in user, else the guest session. A guest without a session gets
// no replay protection.
func (s *OrderService) idempotencyKey(in PlaceOrderInput) string {
	key := strings.TrimSpace(in.IdempotencyKey)
	if s.idempotency == nil || key == "" {
		return ""
	}
	if in.UserID != nil {
		return "checkout:user:" + in.UserID.String() + ":" + key
	}
	session := strings.TrimSpace(in.SessionID)
	if session == "" {
		return ""
	}
	return "checkout:session:" + session + ":" + key
}

// claim reserves key. A completed key yields the original order; a key
// still in flight yields ErrCheckoutInProgress. When the store is
// unreachable the checkout proceeds unguarded and claimed is false.
func (s *OrderService) claim(ctx context.Context, key string) (replay *PlaceOrderResult, claimed bool, err error) {
	claimed, err = s.idempotency.Claim(ctx, key, s.idempotencyTTL)
	if err != nil {
		s.logger.Warn("idempotency store unavailable", zap.Error(err))
		return nil, false, nil
	}
	if claimed {
		return nil, true, nil
	}

	result, done, found, err := s.idempotency.Lookup(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if !found || !done {
		return nil, false, ErrCheckoutInProgress
	}
	orderID, err := uuid.Parse(result)
	if err != nil {
		return nil, false, fmt.Errorf("corrupt idempotency record: %w", err)
	}
	resp, err := s.load(ctx, orderID)
	if err != nil {
		return nil, false, err
	}
	s.logger.Info("checkout replayed", zap.String("order_id", orderID.String()))
	return &PlaceOrderResult{Order: resp, Replayed: true}, false, nil
}

func (s *OrderService) checkout(ctx context.Context, in PlaceOrderInput) (*trade.Order, error) {
	req := in.Request
	var placed *trade.Order

	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		products := repos.Products()
		lines := make([]trade.OrderLine, 0, len(req.Items))

		for _, item := range req.Items {
			product, err := products.FindByID(ctx, item.ProductID)
			if err != nil {
				if errors.Is(err, shared.ErrNotFound) {
					return shared.NotFound(fmt.Sprintf("Product with ID %s not found", item.ProductID))
				}
				return err
			}
			if !product.IsActive {
				return shared.NotFound(fmt.Sprintf("Product with ID %s not found", item.ProductID))
			}

			unitPrice := product.UnitPrice(nil)
			if item.VariantID != nil {
				variant, ok := product.FindVariant(*item.VariantID)
				if !ok {
					return shared.NotFound(fmt.Sprintf("Variant with ID %s not found", *item.VariantID))
				}
				if err := products.DecrementVariantStock(ctx, variant.ID, item.Quantity); err != nil {
					return stockError(err, "variant", variant.ID)
				}
				unitPrice = product.UnitPrice(variant)
			}
			if err := products.DecrementStock(ctx, product.ID, item.Quantity); err != nil {
				return stockError(err, "product", product.ID)
			}

			lines = append(lines, trade.OrderLine{
				ProductID: product.ID,
				VariantID: item.VariantID,
				Quantity:  item.Quantity,
				UnitPrice: unitPrice,
			})
		}

		var addressID *uuid.UUID
		if in.UserID != nil {
			address, err := identity.NewAddress(*in.UserID, identity.AddressInput{
				Street:  req.Shipping.Street,
				City:    req.Shipping.City,
				State:   req.Shipping.State,
				ZipCode: req.Shipping.ZipCode,
				Country: req.Shipping.Country,
			}, false)
			if err != nil {
				return err
			}
			if err := repos.Addresses().Create(ctx, address); err != nil {
				return err
			}
			addressID = &address.ID
		}

		order, err := s.insertOrder(ctx, repos.Orders(), trade.OrderInput{
			UserID:        in.UserID,
			AddressID:     addressID,
			PaymentMethod: req.Payment.Method,
			Notes:         req.Shipping.Notes,
		}, lines)
		if err != nil {
			return err
		}
		placed = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return placed, nil
}

// insertOrder inserts the order, drawing a new number when the previous
// one already exists
func (s *OrderService) insertOrder(ctx context.Context, orders trade.OrderRepository, input trade.OrderInput, lines []trade.OrderLine) (*trade.Order, error) {
	for attempt := 1; attempt <= MaxOrderNumberAttempts; attempt++ {
		input.OrderNumber = s.numbers.Next()
		order, err := trade.NewOrder(input, lines, s.pricing)
		if err != nil {
			return nil, err
		}
		err = orders.Create(ctx, order)
		if err == nil {
			return order, nil
		}
		if !errors.Is(err, shared.ErrAlreadyExists) {
			return nil, err
		}
		s.logger.Warn("order number collision",
			zap.String("order_number", input.OrderNumber),
			zap.Int(telemetry.SpanAttrAttempt, attempt))
	}
	return nil, fmt.Errorf("could not allocate a unique order number after %d attempts", MaxOrderNumberAttempts)
}

func stockError(err error, kind string, id uuid.UUID) error {
	if errors.Is(err, shared.ErrInsufficientStock) {
		return shared.InsufficientStock(fmt.Sprintf("Not enough stock for %s %s", kind, id))
	}
	return err
}

// clearOrderedLines drops the ordered products from the buyer's cart
func (s *OrderService) clearOrderedLines(ctx context.Context, in PlaceOrderInput, order *trade.Order) {
	if s.cartRepo == nil {
		return
	}
	owner, err := cart.NewOwner(in.UserID, in.SessionID)
	if err != nil {
		return
	}
	ids := make([]uuid.UUID, 0, len(order.Items))
	for _, item := range order.Items {
		ids = append(ids, item.ProductID)
	}
	if err := s.cartRepo.DeleteProducts(ctx, owner, ids); err != nil {
		s.logger.Warn("failed to clear ordered cart lines",
			zap.String("order_id", order.ID.String()),
			zap.Error(err))
	}
}

func (s *OrderService) publish(ctx context.Context, order *trade.Order) {
	events := order.GetDomainEvents()
	order.ClearDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish order events",
			zap.String("order_id", order.ID.String()),
			zap.Error(err))
	}
}

// ListMine lists the buyer's orders newest first. status may be empty or "all".
func (s *OrderService) ListMine(ctx context.Context, userID uuid.UUID, status string) ([]OrderResponse, error) {
	st, err := parseStatusFilter(status)
	if err != nil {
		return nil, err
	}
	orders, err := s.orderRepo.FindByUser(ctx, userID, st)
	if err != nil {
		return nil, err
	}
	return ToOrderResponses(orders), nil
}

// GetMine returns one of the buyer's orders. Other buyers' orders are not found.
func (s *OrderService) GetMine(ctx context.Context, userID, orderID uuid.UUID) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, orderNotFound(err)
	}
	if !order.BelongsTo(userID) {
		return nil, shared.NotFound("Order not found")
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

// AdminList returns a page of orders for the back office
func (s *OrderService) AdminList(ctx context.Context, filter OrderListFilter) (*OrderPage, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 10
	}
	st, err := parseStatusFilter(filter.Status)
	if err != nil {
		return nil, err
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.Limit,
		OrderBy:  "created_at",
		OrderDir: "desc",
		Search:   strings.TrimSpace(filter.Search),
		Filters:  make(map[string]interface{}),
	}
	if st != "" {
		domainFilter.Filters[trade.FilterStatus] = st.String()
	}

	orders, err := s.orderRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.orderRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	return &OrderPage{
		Orders:     ToOrderResponses(orders),
		Pagination: shared.NewPagination(total, filter.Page, filter.Limit),
	}, nil
}

// AdminGet returns any order
func (s *OrderService) AdminGet(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	return s.load(ctx, orderID)
}

// UpdateStatus moves an order along its lifecycle. Cancelling returns the
// ordered quantities to stock in the same transaction.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, status string) (*OrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "update_status",
		attribute.String(telemetry.SpanAttrOrderID, orderID.String()))
	defer span.End()

	if strings.TrimSpace(status) == "" {
		return nil, shared.InvalidInput("Status is required")
	}
	target, err := trade.ParseOrderStatus(status)
	if err != nil {
		return nil, err
	}

	var changed *trade.Order
	err = s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		orders := repos.Orders()
		order, err := orders.FindByID(ctx, orderID)
		if err != nil {
			return orderNotFound(err)
		}
		ok, err := order.ChangeStatus(target)
		if err != nil || !ok {
			return err
		}
		if target == trade.OrderStatusCancelled {
			if err := restock(ctx, repos, order); err != nil {
				return err
			}
		}
		if err := orders.UpdateStatus(ctx, order); err != nil {
			return err
		}
		changed = order
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if changed != nil {
		s.publish(ctx, changed)
		s.logger.Info("order status changed",
			zap.String("order_id", orderID.String()),
			zap.String("status", target.String()))
	}
	return s.load(ctx, orderID)
}

func restock(ctx context.Context, repos appshared.TransactionalRepositories, order *trade.Order) error {
	products := repos.Products()
	for _, item := range order.Items {
		if item.VariantID != nil {
			if err := products.IncrementVariantStock(ctx, *item.VariantID, item.Quantity); err != nil && !errors.Is(err, shared.ErrNotFound) {
				return err
			}
		}
		if err := products.IncrementStock(ctx, item.ProductID, item.Quantity); err != nil && !errors.Is(err, shared.ErrNotFound) {
			return err
		}
	}
	return nil
}

// Delete removes an order and its items
func (s *OrderService) Delete(ctx context.Context, orderID uuid.UUID) error {
	if err := s.orderRepo.Delete(ctx, orderID); err != nil {
		return orderNotFound(err)
	}
	s.logger.Info("order deleted", zap.String("order_id", orderID.String()))
	return nil
}

func (s *OrderService) load(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, orderNotFound(err)
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

func parseStatusFilter(status string) (trade.OrderStatus, error) {
	status = strings.TrimSpace(status)
	if status == "" || strings.EqualFold(status, "all") {
		return "", nil
	}
	return trade.ParseOrderStatus(status)
}

func orderNotFound(err error) error {
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NotFound("Order not found")
	}
	return err
}
