// Package catalog implements the product and category use cases.
package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	appshared "github.com/storefront/backend/internal/application/shared"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Listing defaults
const (
	DefaultPageSize     = 10
	AdminVariantPreview = 5
)

// ErrStorageUnavailable is returned by image uploads when no bucket is configured
var ErrStorageUnavailable = shared.NewDomainError("STORAGE_UNAVAILABLE", "Image storage is not configured")

// ProductService handles product-related business operations
type ProductService struct {
	productRepo   catalog.ProductRepository
	categoryRepo  catalog.CategoryRepository
	txScope       appshared.TransactionScope
	storage       ObjectStorage
	presignExpiry time.Duration
	logger        *zap.Logger
}

// ProductServiceOption configures a ProductService
type ProductServiceOption func(*ProductService)

// WithObjectStorage enables image uploads
func WithObjectStorage(storage ObjectStorage, presignExpiry time.Duration) ProductServiceOption {
	return func(s *ProductService) {
		s.storage = storage
		if presignExpiry > 0 {
			s.presignExpiry = presignExpiry
		}
	}
}

// NewProductService creates a new ProductService
func NewProductService(
	productRepo catalog.ProductRepository,
	categoryRepo catalog.CategoryRepository,
	txScope appshared.TransactionScope,
	logger *zap.Logger,
	opts ...ProductServiceOption,
) *ProductService {
	s := &ProductService{
		productRepo:   productRepo,
		categoryRepo:  categoryRepo,
		txScope:       txScope,
		presignExpiry: 15 * time.Minute,
		logger:        logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListPublic returns active products newest first
func (s *ProductService) ListPublic(ctx context.Context, filter PublicProductFilter) ([]ProductResponse, error) {
	domainFilter := shared.Filter{
		Page:     1,
		PageSize: filter.Limit,
		OrderBy:  "created_at",
		OrderDir: "desc",
		Filters:  map[string]interface{}{catalog.FilterActiveOnly: true},
	}
	if filter.CategoryID != nil {
		domainFilter.Filters[catalog.FilterCategoryID] = *filter.CategoryID
	}

	products, err := s.productRepo.FindAll(ctx, domainFilter, 0)
	if err != nil {
		return nil, err
	}
	return ToProductResponses(products), nil
}

// GetPublic returns an active product; inactive products are not found
func (s *ProductService) GetPublic(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, productNotFound(err)
	}
	if !product.IsActive {
		return nil, shared.NotFound("Product not found")
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// List returns a page of products for the back office
func (s *ProductService) List(ctx context.Context, filter ProductListFilter) (*ProductPage, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = DefaultPageSize
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.Limit,
		OrderBy:  "created_at",
		OrderDir: "desc",
		Search:   strings.TrimSpace(filter.Search),
		Filters:  map[string]interface{}{},
	}
	if filter.CategoryID != nil {
		domainFilter.Filters[catalog.FilterCategoryID] = *filter.CategoryID
	}

	products, err := s.productRepo.FindAll(ctx, domainFilter, AdminVariantPreview)
	if err != nil {
		return nil, err
	}
	total, err := s.productRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	return &ProductPage{
		Products:   ToProductResponses(products),
		Pagination: shared.NewPagination(total, filter.Page, filter.Limit),
	}, nil
}

// Get returns a product regardless of its active flag
func (s *ProductService) Get(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, productNotFound(err)
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// Create creates a product with its images and variants
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	if req.Price == nil {
		return nil, shared.InvalidInput("Price is required")
	}
	if err := s.requireCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	exists, err := s.productRepo.ExistsBySKU(ctx, req.SKU, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, duplicateSKU()
	}

	product, err := catalog.NewProduct(req.Name, req.SKU, *req.Price, req.CategoryID)
	if err != nil {
		return nil, err
	}
	product.SetDescription(req.Description)
	if err := product.SetPricing(*req.Price, req.ComparePrice); err != nil {
		return nil, err
	}
	if err := product.SetStock(req.Stock); err != nil {
		return nil, err
	}
	if req.IsActive != nil {
		product.SetActive(*req.IsActive)
	}
	for _, img := range req.Images {
		if _, err := product.AddImage(img.URL, img.Alt, "", img.IsPrimary); err != nil {
			return nil, err
		}
	}
	for _, v := range req.Variants {
		if _, err := product.AddVariant(v.Name, v.Value, v.PriceAdjustment, v.Stock); err != nil {
			return nil, err
		}
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, duplicateSKU()
		}
		return nil, err
	}

	s.logger.Info("product created",
		zap.String("product_id", product.ID.String()),
		zap.String("sku", product.SKU))

	return s.Get(ctx, product.ID)
}

// Update applies a partial update. Row fields and the stock counter are
// written in one transaction.
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, productNotFound(err)
	}

	if req.Name != nil || req.Description != nil {
		name, description := product.Name, product.Description
		if req.Name != nil {
			name = *req.Name
		}
		if req.Description != nil {
			description = *req.Description
		}
		if err := product.Rename(name, description); err != nil {
			return nil, err
		}
	}
	if req.SKU != nil && catalog.NormalizeSKU(*req.SKU) != product.SKU {
		exists, err := s.productRepo.ExistsBySKU(ctx, *req.SKU, product.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, duplicateSKU()
		}
		if err := product.ChangeSKU(*req.SKU); err != nil {
			return nil, err
		}
	}
	if req.Price != nil || req.ComparePrice != nil {
		price := product.Price
		if req.Price != nil {
			price = *req.Price
		}
		compare := product.ComparePrice
		if req.ComparePrice != nil {
			compare = req.ComparePrice
			if compare.IsZero() {
				compare = nil
			}
		}
		if err := product.SetPricing(price, compare); err != nil {
			return nil, err
		}
	}
	if req.CategoryID != nil && *req.CategoryID != product.CategoryID {
		if err := s.requireCategory(ctx, *req.CategoryID); err != nil {
			return nil, err
		}
		if err := product.MoveToCategory(*req.CategoryID); err != nil {
			return nil, err
		}
	}
	if req.IsActive != nil {
		product.SetActive(*req.IsActive)
	}
	if req.Stock != nil {
		if err := product.SetStock(*req.Stock); err != nil {
			return nil, err
		}
	}

	err = s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		if err := repos.Products().Save(ctx, product); err != nil {
			return err
		}
		if req.Stock != nil {
			return repos.Products().SetStock(ctx, product.ID, product.Stock)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, duplicateSKU()
		}
		return nil, err
	}

	return s.Get(ctx, product.ID)
}

// Delete removes a product that no order references. Uploaded image objects
// are removed afterwards; failures there are only logged.
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return productNotFound(err)
	}

	referenced, err := s.productRepo.IsReferencedByOrders(ctx, id)
	if err != nil {
		return err
	}
	if referenced {
		return shared.InvalidInput("Cannot delete product with existing orders")
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		return productNotFound(err)
	}

	s.logger.Info("product deleted", zap.String("product_id", id.String()))

	if s.storage == nil {
		return nil
	}
	for _, img := range product.Images {
		if img.StorageKey == "" {
			continue
		}
		if err := s.storage.DeleteObject(ctx, img.StorageKey); err != nil {
			s.logger.Warn("failed to delete product image object",
				zap.String("product_id", id.String()),
				zap.String("storage_key", img.StorageKey),
				zap.Error(err))
		}
	}
	return nil
}

// CreateImageUpload presigns an upload for a new product image
func (s *ProductService) CreateImageUpload(ctx context.Context, id uuid.UUID, req ImageUploadRequest) (*ImageUploadResponse, error) {
	if s.storage == nil {
		return nil, ErrStorageUnavailable
	}
	if _, err := s.productRepo.FindByID(ctx, id); err != nil {
		return nil, productNotFound(err)
	}

	key, err := ImageStorageKey(id, req.Filename, req.ContentType)
	if err != nil {
		return nil, err
	}
	uploadURL, expiresAt, err := s.storage.GenerateUploadURL(ctx, key, req.ContentType, s.presignExpiry)
	if err != nil {
		return nil, err
	}

	return &ImageUploadResponse{
		UploadURL:  uploadURL,
		StorageKey: key,
		PublicURL:  s.storage.PublicURL(key),
		ExpiresAt:  expiresAt,
	}, nil
}

// AddImage attaches an image by URL or by a previously uploaded storage key
func (s *ProductService) AddImage(ctx context.Context, id uuid.UUID, req AddImageRequest) (*ImageResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, productNotFound(err)
	}

	url := strings.TrimSpace(req.URL)
	key := strings.TrimSpace(req.StorageKey)
	switch {
	case key != "":
		if s.storage == nil {
			return nil, ErrStorageUnavailable
		}
		if !strings.HasPrefix(key, "products/"+id.String()+"/") {
			return nil, shared.InvalidInput("Storage key does not belong to this product")
		}
		ok, err := s.storage.ObjectExists(ctx, key)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, shared.InvalidInput("Uploaded image not found")
		}
		url = s.storage.PublicURL(key)
	case url == "":
		return nil, shared.InvalidInput("Image URL or storage key is required")
	}

	img, err := product.AddImage(url, req.Alt, key, req.IsPrimary)
	if err != nil {
		return nil, err
	}
	if err := s.productRepo.SaveImage(ctx, img); err != nil {
		return nil, err
	}

	resp := ToImageResponse(img)
	return &resp, nil
}

func (s *ProductService) requireCategory(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return shared.InvalidInput("Category is required")
	}
	ok, err := s.categoryRepo.ExistsByID(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return shared.InvalidInput("Category not found")
	}
	return nil
}

func productNotFound(err error) error {
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NotFound("Product not found")
	}
	return err
}

func duplicateSKU() error {
	return shared.InvalidInput("Product with this SKU already exists")
}
