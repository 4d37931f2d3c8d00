package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
)

// ProductListFilter holds the query of the back office product list
type ProductListFilter struct {
	Page       int
	Limit      int
	Search     string
	CategoryID *uuid.UUID
}

// PublicProductFilter holds the query of the storefront product list
type PublicProductFilter struct {
	CategoryID *uuid.UUID
	Limit      int
}

// ImageInput describes an image attached at product creation
type ImageInput struct {
	URL       string `json:"url" binding:"required,max=1000"`
	Alt       string `json:"alt" binding:"max=255"`
	IsPrimary bool   `json:"isPrimary"`
}

// VariantInput describes a variant created with its product
type VariantInput struct {
	Name            string          `json:"name" binding:"required,max=100"`
	Value           string          `json:"value" binding:"required,max=100"`
	PriceAdjustment decimal.Decimal `json:"priceAdjustment"`
	Stock           int             `json:"stock" binding:"gte=0"`
}

// CreateProductRequest represents a request to create a new product
type CreateProductRequest struct {
	Name         string           `json:"name" binding:"required,max=200"`
	Description  string           `json:"description"`
	Price        *decimal.Decimal `json:"price" binding:"required,decimal_gte0"`
	ComparePrice *decimal.Decimal `json:"comparePrice" binding:"omitempty,decimal_gte0"`
	SKU          string           `json:"sku" binding:"required,sku"`
	Stock        int              `json:"stock" binding:"gte=0"`
	CategoryID   uuid.UUID        `json:"categoryId" binding:"required"`
	IsActive     *bool            `json:"isActive"`
	Images       []ImageInput     `json:"images" binding:"omitempty,dive"`
	Variants     []VariantInput   `json:"variants" binding:"omitempty,dive"`
}

// UpdateProductRequest is a partial update; nil fields are left unchanged
type UpdateProductRequest struct {
	Name         *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Description  *string          `json:"description"`
	Price        *decimal.Decimal `json:"price" binding:"omitempty,decimal_gte0"`
	ComparePrice *decimal.Decimal `json:"comparePrice" binding:"omitempty,decimal_gte0"`
	SKU          *string          `json:"sku" binding:"omitempty,sku"`
	Stock        *int             `json:"stock"`
	CategoryID   *uuid.UUID       `json:"categoryId"`
	IsActive     *bool            `json:"isActive"`
}

// ImageUploadRequest asks for a presigned upload URL
type ImageUploadRequest struct {
	Filename    string `json:"filename" binding:"required,max=255"`
	ContentType string `json:"contentType" binding:"required"`
}

// ImageUploadResponse is a presigned upload target
type ImageUploadResponse struct {
	UploadURL  string    `json:"uploadUrl"`
	StorageKey string    `json:"storageKey"`
	PublicURL  string    `json:"publicUrl"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

// AddImageRequest attaches an image by URL or by an uploaded storage key
type AddImageRequest struct {
	URL        string `json:"url" binding:"omitempty,max=1000"`
	StorageKey string `json:"storageKey" binding:"omitempty,max=500"`
	Alt        string `json:"alt" binding:"max=255"`
	IsPrimary  bool   `json:"isPrimary"`
}

// CategoryRef is the category summary embedded in products
type CategoryRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

// ImageResponse represents a product image
type ImageResponse struct {
	ID        uuid.UUID `json:"id"`
	URL       string    `json:"url"`
	Alt       string    `json:"alt"`
	IsPrimary bool      `json:"isPrimary"`
}

// VariantResponse represents a product variant
type VariantResponse struct {
	ID              uuid.UUID       `json:"id"`
	Name            string          `json:"name"`
	Value           string          `json:"value"`
	PriceAdjustment decimal.Decimal `json:"priceAdjustment"`
	Stock           int             `json:"stock"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID           uuid.UUID         `json:"id"`
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	Price        decimal.Decimal   `json:"price"`
	ComparePrice *decimal.Decimal  `json:"comparePrice"`
	SKU          string            `json:"sku"`
	Stock        int               `json:"stock"`
	IsActive     bool              `json:"isActive"`
	CategoryID   uuid.UUID         `json:"categoryId"`
	Category     *CategoryRef      `json:"category,omitempty"`
	Images       []ImageResponse   `json:"images"`
	Variants     []VariantResponse `json:"variants"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

// ProductPage is one page of the back office product list
type ProductPage struct {
	Products   []ProductResponse `json:"products"`
	Pagination shared.Pagination `json:"pagination"`
}

// CategoryResponse represents a category with its active product count
type CategoryResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Description  string    `json:"description"`
	ProductCount int64     `json:"productCount"`
}

// ToProductResponse converts a domain product
func ToProductResponse(p *catalog.Product) ProductResponse {
	resp := ProductResponse{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Price:        p.Price,
		ComparePrice: p.ComparePrice,
		SKU:          p.SKU,
		Stock:        p.Stock,
		IsActive:     p.IsActive,
		CategoryID:   p.CategoryID,
		Images:       make([]ImageResponse, 0, len(p.Images)),
		Variants:     make([]VariantResponse, 0, len(p.Variants)),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
	if p.Category != nil {
		resp.Category = &CategoryRef{ID: p.Category.ID, Name: p.Category.Name, Slug: p.Category.Slug}
	}
	for _, img := range p.Images {
		resp.Images = append(resp.Images, ToImageResponse(&img))
	}
	for _, v := range p.Variants {
		resp.Variants = append(resp.Variants, ToVariantResponse(&v))
	}
	return resp
}

// ToProductResponses converts a slice of products
func ToProductResponses(products []catalog.Product) []ProductResponse {
	out := make([]ProductResponse, len(products))
	for i := range products {
		out[i] = ToProductResponse(&products[i])
	}
	return out
}

// ToImageResponse converts a product image
func ToImageResponse(img *catalog.ProductImage) ImageResponse {
	return ImageResponse{ID: img.ID, URL: img.URL, Alt: img.Alt, IsPrimary: img.IsPrimary}
}

// ToVariantResponse converts a product variant
func ToVariantResponse(v *catalog.ProductVariant) VariantResponse {
	return VariantResponse{
		ID:              v.ID,
		Name:            v.Name,
		Value:           v.Value,
		PriceAdjustment: v.PriceAdjustment,
		Stock:           v.Stock,
	}
}
