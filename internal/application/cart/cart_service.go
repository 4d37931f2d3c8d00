// Package cart serves carts of signed-in users and anonymous sessions.
package cart

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/trade"
	"go.uber.org/zap"
)

// CartService handles cart operations
type CartService struct {
	cartRepo    cart.Repository
	productRepo catalog.ProductRepository
	pricing     trade.PricingPolicy
	logger      *zap.Logger
}

// NewCartService creates a new CartService
func NewCartService(
	cartRepo cart.Repository,
	productRepo catalog.ProductRepository,
	pricing trade.PricingPolicy,
	logger *zap.Logger,
) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		pricing:     pricing,
		logger:      logger,
	}
}

// Get returns the owner's lines and the cart summary
func (s *CartService) Get(ctx context.Context, owner cart.Owner) (*Response, error) {
	items, err := s.cartRepo.FindByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}

	basket := cart.NewBasket()
	resp := &Response{Items: make([]ItemResponse, 0, len(items))}
	for i := range items {
		item := &items[i]
		if item.Product == nil {
			continue
		}
		resp.Items = append(resp.Items, ToItemResponse(item))
		basket.Add(basketLine(item))
	}

	totals := s.pricing.Totals(basket.TotalPrice())
	resp.Summary = Summary{
		TotalItems: basket.TotalItems(),
		Subtotal:   totals.Subtotal,
		Tax:        totals.Tax,
		Shipping:   totals.Shipping,
		Total:      totals.Total,
	}
	return resp, nil
}

// Add puts quantity units of a product (or variant) in the cart. An existing
// line for the same product and variant is incremented.
func (s *CartService) Add(ctx context.Context, owner cart.Owner, req AddItemRequest) (*ItemResponse, error) {
	if req.ProductID == uuid.Nil || req.Quantity <= 0 {
		return nil, shared.InvalidInput("Product ID and a positive quantity are required")
	}

	product, variant, err := s.loadPurchasable(ctx, req.ProductID, req.VariantID)
	if err != nil {
		return nil, err
	}

	item, err := s.cartRepo.FindLine(ctx, owner, req.ProductID, req.VariantID)
	switch {
	case err == nil:
		if err := item.Increase(req.Quantity); err != nil {
			return nil, err
		}
	case errors.Is(err, shared.ErrNotFound):
		item, err = cart.NewItem(owner, req.ProductID, req.VariantID, req.Quantity)
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	if err := checkStock(product, variant, item.Quantity); err != nil {
		return nil, err
	}
	if err := s.cartRepo.Save(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Debug("cart line saved",
		zap.String("item_id", item.ID.String()),
		zap.String("product_id", item.ProductID.String()),
		zap.Int("quantity", item.Quantity))

	item.Product = product
	item.Variant = variant
	resp := ToItemResponse(item)
	return &resp, nil
}

// UpdateItem sets the quantity of one of the owner's lines. A quantity of
// zero or less removes the line and returns nil.
func (s *CartService) UpdateItem(ctx context.Context, owner cart.Owner, itemID uuid.UUID, quantity int) (*ItemResponse, error) {
	item, err := s.ownedItem(ctx, owner, itemID)
	if err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return nil, s.cartRepo.Delete(ctx, item.ID)
	}

	product, variant, err := s.loadPurchasable(ctx, item.ProductID, item.VariantID)
	if err != nil {
		return nil, err
	}
	if err := checkStock(product, variant, quantity); err != nil {
		return nil, err
	}
	if err := item.SetQuantity(quantity); err != nil {
		return nil, err
	}
	if err := s.cartRepo.Save(ctx, item); err != nil {
		return nil, err
	}

	item.Product = product
	item.Variant = variant
	resp := ToItemResponse(item)
	return &resp, nil
}

// RemoveItem deletes one of the owner's lines
func (s *CartService) RemoveItem(ctx context.Context, owner cart.Owner, itemID uuid.UUID) error {
	item, err := s.ownedItem(ctx, owner, itemID)
	if err != nil {
		return err
	}
	return s.cartRepo.Delete(ctx, item.ID)
}

// Clear empties the owner's cart
func (s *CartService) Clear(ctx context.Context, owner cart.Owner) error {
	return s.cartRepo.DeleteByOwner(ctx, owner)
}

// MergeSessionCart moves an anonymous session's lines to userID
func (s *CartService) MergeSessionCart(ctx context.Context, sessionID string, userID uuid.UUID) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" || userID == uuid.Nil {
		return nil
	}
	if err := s.cartRepo.ReassignSession(ctx, sessionID, userID); err != nil {
		return err
	}
	s.logger.Info("session cart merged", zap.String("user_id", userID.String()))
	return nil
}

// loadPurchasable loads an active product and, when requested, one of its variants
func (s *CartService) loadPurchasable(ctx context.Context, productID uuid.UUID, variantID *uuid.UUID) (*catalog.Product, *catalog.ProductVariant, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil, shared.NotFound("Product not found")
		}
		return nil, nil, err
	}
	if !product.IsActive {
		return nil, nil, shared.NotFound("Product not found")
	}
	if variantID == nil {
		return product, nil, nil
	}
	variant, ok := product.FindVariant(*variantID)
	if !ok {
		return nil, nil, shared.NotFound("Variant not found")
	}
	return product, variant, nil
}

func (s *CartService) ownedItem(ctx context.Context, owner cart.Owner, itemID uuid.UUID) (*cart.Item, error) {
	item, err := s.cartRepo.FindByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NotFound("Cart item not found")
		}
		return nil, err
	}
	if !item.OwnedBy(owner) {
		return nil, shared.NotFound("Cart item not found")
	}
	return item, nil
}

func checkStock(product *catalog.Product, variant *catalog.ProductVariant, quantity int) error {
	if product.AvailableStock(variant) < quantity {
		return shared.InsufficientStock("Not enough stock available")
	}
	return nil
}

func basketLine(item *cart.Item) cart.BasketLine {
	line := cart.BasketLine{
		ProductID: item.ProductID,
		VariantID: item.VariantID,
		Name:      item.Product.Name,
		Price:     item.Product.Price,
		Quantity:  item.Quantity,
	}
	if item.Variant != nil {
		line.PriceAdjustment = item.Variant.PriceAdjustment
	}
	if img := item.Product.PrimaryImage(); img != nil {
		line.Image = img.URL
	}
	return line
}
