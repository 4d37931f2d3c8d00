package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/application/catalog"
	"github.com/storefront/backend/internal/interfaces/http/dto"
)

// ProductHandler serves the storefront catalogue and the back office product API
type ProductHandler struct {
	BaseHandler
	productService *catalog.ProductService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService *catalog.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// ListPublic godoc
// @Summary      List active products
// @Description  Newest first, with category and primary image. The featured parameter is accepted and ignored.
// @Tags         products
// @Produce      json
// @Param        categoryId query string false "Category ID" format(uuid)
// @Param        limit      query int    false "Maximum number of products"
// @Param        featured   query bool   false "Ignored"
// @Success      200 {array}  catalog.ProductResponse
// @Failure      400 {object} dto.ErrorResponse
// @Router       /products [get]
func (h *ProductHandler) ListPublic(c *gin.Context) {
	categoryID, ok := optionalUUIDQuery(c.Request.URL.Query(), "categoryId")
	if !ok {
		h.ErrorWithCode(c, dto.ErrCodeInvalidInput, "Invalid category ID format")
		return
	}

	products, err := h.productService.ListPublic(c.Request.Context(), catalog.PublicProductFilter{
		CategoryID: categoryID,
		Limit:      dto.ParseLimit(c.Query("limit")),
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, products)
}

// GetPublic godoc
// @Summary      Get an active product
// @Tags         products
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} catalog.ProductResponse
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Router       /products/{id} [get]
func (h *ProductHandler) GetPublic(c *gin.Context) {
	id, ok := h.ParseUUIDParam(c, "id", "product")
	if !ok {
		return
	}

	product, err := h.productService.GetPublic(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, product)
}

// List godoc
// @Summary      List products (admin)
// @Description  Case-insensitive search over name and SKU, newest first
// @Tags         admin-products
// @Produce      json
// @Param        page       query int    false "Page number" default(1)
// @Param        limit      query int    false "Page size" default(10)
// @Param        search     query string false "Search term"
// @Param        categoryId query string false "Category ID" format(uuid)
// @Success      200 {object} catalog.ProductPage
// @Failure      401 {object} dto.ErrorResponse
// @Failure      403 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /admin/products [get]
func (h *ProductHandler) List(c *gin.Context) {
	var query dto.PageQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}
	query = query.Normalize()

	categoryID, ok := optionalUUIDQuery(c.Request.URL.Query(), "categoryId")
	if !ok {
		h.ErrorWithCode(c, dto.ErrCodeInvalidInput, "Invalid category ID format")
		return
	}

	page, err := h.productService.List(c.Request.Context(), catalog.ProductListFilter{
		Page:       query.Page,
		Limit:      query.Limit,
		Search:     query.Search,
		CategoryID: categoryID,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, page)
}

// Get godoc
// @Summary      Get a product (admin)
// @Description  Returns inactive products too
// @Tags         admin-products
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} catalog.ProductResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /admin/products/{id} [get]
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := h.ParseUUIDParam(c, "id", "product")
	if !ok {
		return
	}

	product, err := h.productService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, product)
}

// Create godoc
// @Summary      Create a product
// @Description  Images and variants are created in the same transaction. SKU is stored upper-case.
// @Tags         admin-products
// @Accept       json
// @Produce      json
// @Param        request body catalog.CreateProductRequest true "Product"
// @Success      201 {object} catalog.ProductResponse
// @Failure      400 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /admin/products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	var req catalog.CreateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	product, err := h.productService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, product)
}

// Update godoc
// @Summary      Update a product
// @Description  Partial update; omitted fields are left unchanged
// @Tags         admin-products
// @Accept       json
// @Produce      json
// @Param        id      path string                       true "Product ID" format(uuid)
// @Param        request body catalog.UpdateProductRequest true "Fields to change"
// @Success      200 {object} catalog.ProductResponse
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /admin/products/{id} [put]
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := h.ParseUUIDParam(c, "id", "product")
	if !ok {
		return
	}
	var req catalog.UpdateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	product, err := h.productService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, product)
}

// Delete godoc
// @Summary      Delete a product
// @Description  Refused while any order references the product
// @Tags         admin-products
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} dto.MessageResponse
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /admin/products/{id} [delete]
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := h.ParseUUIDParam(c, "id", "product")
	if !ok {
		return
	}

	if err := h.productService.Delete(c.Request.Context(), id); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Message(c, "Product deleted successfully")
}

// CreateImageUpload godoc
// @Summary      Presigned image upload
// @Description  Returns a presigned PUT URL and the storage key to pass to the add image endpoint
// @Tags         admin-products
// @Accept       json
// @Produce      json
// @Param        id      path string                     true "Product ID" format(uuid)
// @Param        request body catalog.ImageUploadRequest true "File metadata"
// @Success      200 {object} catalog.ImageUploadResponse
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      503 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /admin/products/{id}/images/upload-url [post]
func (h *ProductHandler) CreateImageUpload(c *gin.Context) {
	id, ok := h.ParseUUIDParam(c, "id", "product")
	if !ok {
		return
	}
	var req catalog.ImageUploadRequest
	if !h.BindJSON(c, &req) {
		return
	}

	upload, err := h.productService.CreateImageUpload(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, upload)
}

// AddImage godoc
// @Summary      Attach an image
// @Description  By URL or by an uploaded storage key. A primary image replaces the previous primary.
// @Tags         admin-products
// @Accept       json
// @Produce      json
// @Param        id      path string                  true "Product ID" format(uuid)
// @Param        request body catalog.AddImageRequest true "Image"
// @Success      201 {object} catalog.ImageResponse
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /admin/products/{id}/images [post]
func (h *ProductHandler) AddImage(c *gin.Context) {
	id, ok := h.ParseUUIDParam(c, "id", "product")
	if !ok {
		return
	}
	var req catalog.AddImageRequest
	if !h.BindJSON(c, &req) {
		return
	}

	image, err := h.productService.AddImage(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, image)
}
