package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/application/trade"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// IdempotentReplayHeader marks responses served from an earlier checkout
const IdempotentReplayHeader = "Idempotent-Replayed"

// OrderHandler serves checkout and the buyer's order history
type OrderHandler struct {
	BaseHandler
	orderService *trade.OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService *trade.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// Place godoc
// @Summary      Place an order
// @Description  Stock is reserved, the address stored and the order created in one transaction. Totals are computed server side. A repeated Idempotency-Key returns 409 while the first request is in flight and the original order afterwards.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string                  false "Client generated key"
// @Param        X-Session-ID    header string                  false "Guest session"
// @Param        request         body   trade.PlaceOrderRequest true  "Order"
// @Success      201 {object} trade.OrderResponse
// @Success      200 {object} trade.OrderResponse "Replayed order"
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Router       /orders [post]
func (h *OrderHandler) Place(c *gin.Context) {
	var req trade.PlaceOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	sessionID := middleware.GetSessionID(c)
	if sessionID == "" {
		sessionID = req.SessionID
	}

	result, err := h.orderService.Place(c.Request.Context(), trade.PlaceOrderInput{
		UserID:         middleware.GetUserUUID(c),
		SessionID:      sessionID,
		IdempotencyKey: strings.TrimSpace(c.GetHeader(middleware.IdempotencyKeyHeader)),
		Request:        req,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	if result.Replayed {
		c.Header(IdempotentReplayHeader, "true")
		h.Success(c, result.Order)
		return
	}
	h.Created(c, result.Order)
}

// ListMine godoc
// @Summary      List my orders
// @Tags         orders
// @Produce      json
// @Param        status query string false "Status filter, all for none"
// @Success      200 {array}  trade.OrderResponse
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /orders [get]
func (h *OrderHandler) ListMine(c *gin.Context) {
	userID, ok := h.RequireUser(c)
	if !ok {
		return
	}

	orders, err := h.orderService.ListMine(c.Request.Context(), userID, c.Query("status"))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, orders)
}

// GetMine godoc
// @Summary      Get one of my orders
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} trade.OrderResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /orders/{id} [get]
func (h *OrderHandler) GetMine(c *gin.Context) {
	userID, ok := h.RequireUser(c)
	if !ok {
		return
	}
	orderID, ok := h.ParseUUIDParam(c, "id", "order")
	if !ok {
		return
	}

	order, err := h.orderService.GetMine(c.Request.Context(), userID, orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, order)
}

// AdminOrderHandler serves the back office order API
type AdminOrderHandler struct {
	BaseHandler
	orderService *trade.OrderService
}

// NewAdminOrderHandler creates a new AdminOrderHandler
func NewAdminOrderHandler(orderService *trade.OrderService) *AdminOrderHandler {
	return &AdminOrderHandler{orderService: orderService}
}

// List godoc
// @Summary      List orders (admin)
// @Tags         admin-orders
// @Produce      json
// @Param        status query string false "Status filter, all for none"
// @Param        page   query int    false "Page number" default(1)
// @Param        limit  query int    false "Page size" default(10)
// @Param        search query string false "Order number, customer name or email"
// @Success      200 {object} trade.OrderPage
// @Failure      400 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /admin/orders [get]
func (h *AdminOrderHandler) List(c *gin.Context) {
	var query dto.PageQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}
	query = query.Normalize()

	page, err := h.orderService.AdminList(c.Request.Context(), trade.OrderListFilter{
		Page:   query.Page,
		Limit:  query.Limit,
		Status: c.Query("status"),
		Search: query.Search,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, page)
}

// Get godoc
// @Summary      Get an order (admin)
// @Tags         admin-orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} trade.OrderResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /admin/orders/{id} [get]
func (h *AdminOrderHandler) Get(c *gin.Context) {
	orderID, ok := h.ParseUUIDParam(c, "id", "order")
	if !ok {
		return
	}

	order, err := h.orderService.AdminGet(c.Request.Context(), orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, order)
}

// UpdateStatus godoc
// @Summary      Change an order status
// @Description  Illegal transitions are rejected. Cancelling restocks the ordered quantities.
// @Tags         admin-orders
// @Accept       json
// @Produce      json
// @Param        id      path string                    true "Order ID" format(uuid)
// @Param        request body trade.UpdateStatusRequest true "New status"
// @Success      200 {object} trade.OrderResponse
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /admin/orders/{id} [patch]
func (h *AdminOrderHandler) UpdateStatus(c *gin.Context) {
	orderID, ok := h.ParseUUIDParam(c, "id", "order")
	if !ok {
		return
	}
	var req trade.UpdateStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	order, err := h.orderService.UpdateStatus(c.Request.Context(), orderID, req.Status)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, order)
}

// Delete godoc
// @Summary      Delete an order
// @Tags         admin-orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} dto.MessageResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /admin/orders/{id} [delete]
func (h *AdminOrderHandler) Delete(c *gin.Context) {
	orderID, ok := h.ParseUUIDParam(c, "id", "order")
	if !ok {
		return
	}

	if err := h.orderService.Delete(c.Request.Context(), orderID); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Message(c, "Order deleted successfully")
}
