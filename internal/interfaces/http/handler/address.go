package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/application/identity"
)

// AddressHandler serves the signed-in user's address book
type AddressHandler struct {
	BaseHandler
	addressService *identity.AddressService
}

// NewAddressHandler creates a new AddressHandler
func NewAddressHandler(addressService *identity.AddressService) *AddressHandler {
	return &AddressHandler{addressService: addressService}
}

// List godoc
// @Summary      List my addresses
// @Description  Default address first
// @Tags         addresses
// @Produce      json
// @Success      200 {array}  identity.AddressResponse
// @Failure      401 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /addresses [get]
func (h *AddressHandler) List(c *gin.Context) {
	userID, ok := h.RequireUser(c)
	if !ok {
		return
	}

	addresses, err := h.addressService.List(c.Request.Context(), userID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, addresses)
}

// Create godoc
// @Summary      Add an address
// @Description  A default address replaces the previous default. The first address becomes default.
// @Tags         addresses
// @Accept       json
// @Produce      json
// @Param        request body identity.CreateAddressInput true "Address"
// @Success      200 {object} identity.AddressResponse
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /addresses [post]
func (h *AddressHandler) Create(c *gin.Context) {
	userID, ok := h.RequireUser(c)
	if !ok {
		return
	}
	var req identity.CreateAddressInput
	if !h.BindJSON(c, &req) {
		return
	}

	address, err := h.addressService.Create(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, address)
}
