package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/application/cart"
)

// CartHandler serves the cart of a signed-in user or a guest session
type CartHandler struct {
	BaseHandler
	cartService *cart.CartService
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(cartService *cart.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// Get godoc
// @Summary      Get the cart
// @Description  The owner is the bearer token user, else X-Session-ID or the sessionId query parameter
// @Tags         cart
// @Produce      json
// @Param        X-Session-ID header string false "Guest session"
// @Param        sessionId    query  string false "Guest session"
// @Success      200 {object} cart.Response
// @Failure      400 {object} dto.ErrorResponse
// @Router       /cart [get]
func (h *CartHandler) Get(c *gin.Context) {
	owner, err := resolveOwner(c, "")
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	result, err := h.cartService.Get(c.Request.Context(), owner)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, result)
}

// Add godoc
// @Summary      Add a product to the cart
// @Description  An existing line for the same product and variant is incremented
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        X-Session-ID header string              false "Guest session"
// @Param        request      body   cart.AddItemRequest true  "Line to add"
// @Success      200 {object} cart.ItemResponse
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Router       /cart [post]
func (h *CartHandler) Add(c *gin.Context) {
	var req cart.AddItemRequest
	if !h.BindJSON(c, &req) {
		return
	}
	owner, err := resolveOwner(c, req.SessionID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	item, err := h.cartService.Add(c.Request.Context(), owner, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, item)
}

// UpdateItem godoc
// @Summary      Change a cart line quantity
// @Description  A quantity of zero or less removes the line
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        itemId  path string                 true "Cart item ID" format(uuid)
// @Param        request body cart.UpdateItemRequest true "New quantity"
// @Success      200 {object} cart.ItemResponse
// @Success      200 {object} dto.MessageResponse "Line removed"
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Router       /cart/{itemId} [patch]
func (h *CartHandler) UpdateItem(c *gin.Context) {
	itemID, ok := h.ParseUUIDParam(c, "itemId", "cart item")
	if !ok {
		return
	}
	var req cart.UpdateItemRequest
	if !h.BindJSON(c, &req) {
		return
	}
	owner, err := resolveOwner(c, req.SessionID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	item, err := h.cartService.UpdateItem(c.Request.Context(), owner, itemID, req.Quantity)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	if item == nil {
		h.Message(c, "Item removed from cart")
		return
	}
	h.Success(c, item)
}

// RemoveItem godoc
// @Summary      Remove a cart line
// @Tags         cart
// @Produce      json
// @Param        itemId path string true "Cart item ID" format(uuid)
// @Success      200 {object} dto.MessageResponse
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Router       /cart/{itemId} [delete]
func (h *CartHandler) RemoveItem(c *gin.Context) {
	itemID, ok := h.ParseUUIDParam(c, "itemId", "cart item")
	if !ok {
		return
	}
	owner, err := resolveOwner(c, "")
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	if err := h.cartService.RemoveItem(c.Request.Context(), owner, itemID); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Message(c, "Item removed from cart")
}

// Clear godoc
// @Summary      Empty the cart
// @Tags         cart
// @Produce      json
// @Success      200 {object} dto.MessageResponse
// @Failure      400 {object} dto.ErrorResponse
// @Router       /cart [delete]
func (h *CartHandler) Clear(c *gin.Context) {
	owner, err := resolveOwner(c, "")
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	if err := h.cartService.Clear(c.Request.Context(), owner); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Message(c, "Cart cleared")
}
