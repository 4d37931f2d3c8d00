package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/application/identity"
	"github.com/storefront/backend/internal/interfaces/http/dto"
)

// CustomerHandler serves the back office customer list
type CustomerHandler struct {
	BaseHandler
	customerService *identity.CustomerService
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(customerService *identity.CustomerService) *CustomerHandler {
	return &CustomerHandler{customerService: customerService}
}

// List godoc
// @Summary      List customers (admin)
// @Description  Customers with addresses, their 10 latest orders and order count. Search covers name, email and phone.
// @Tags         admin-customers
// @Produce      json
// @Param        page   query int    false "Page number" default(1)
// @Param        limit  query int    false "Page size" default(10)
// @Param        search query string false "Search term"
// @Success      200 {object} identity.CustomerPage
// @Failure      401 {object} dto.ErrorResponse
// @Failure      403 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /admin/customers [get]
func (h *CustomerHandler) List(c *gin.Context) {
	var query dto.PageQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}
	query = query.Normalize()

	page, err := h.customerService.List(c.Request.Context(), identity.CustomerListFilter{
		Page:   query.Page,
		Limit:  query.Limit,
		Search: query.Search,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, page)
}
