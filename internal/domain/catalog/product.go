package catalog

import (
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// Product is a sellable item in the catalog.
// It is the aggregate root for its images and variants.
type Product struct {
	shared.BaseAggregateRoot
	Name         string           `gorm:"type:varchar(200);not null"`
	Description  string           `gorm:"type:text"`
	Price        decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	ComparePrice *decimal.Decimal `gorm:"type:decimal(12,2)"`
	SKU          string           `gorm:"column:sku;type:varchar(50);not null;uniqueIndex:idx_products_sku"`
	Stock        int              `gorm:"not null;check:chk_products_stock,stock >= 0"`
	IsActive     bool             `gorm:"not null"`
	CategoryID   uuid.UUID        `gorm:"type:uuid;not null;index"`
	Category     *Category        `gorm:"foreignKey:CategoryID"`
	Images       []ProductImage   `gorm:"foreignKey:ProductID"`
	Variants     []ProductVariant `gorm:"foreignKey:ProductID"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// ProductImage is a picture of a product. At most one image per product is primary.
type ProductImage struct {
	shared.BaseEntity
	ProductID  uuid.UUID `gorm:"type:uuid;not null;index"`
	URL        string    `gorm:"column:url;type:varchar(1000);not null"`
	Alt        string    `gorm:"type:varchar(255)"`
	IsPrimary  bool      `gorm:"not null"`
	StorageKey string    `gorm:"type:varchar(500)"` // object storage key when uploaded through the API
}

// TableName returns the table name for GORM
func (ProductImage) TableName() string {
	return "product_images"
}

// ProductVariant is a purchasable option of a product such as "Color: Black".
type ProductVariant struct {
	shared.BaseEntity
	ProductID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name            string          `gorm:"type:varchar(100);not null"`
	Value           string          `gorm:"type:varchar(100);not null"`
	PriceAdjustment decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Stock           int             `gorm:"not null;check:chk_product_variants_stock,stock >= 0"`
}

// TableName returns the table name for GORM
func (ProductVariant) TableName() string {
	return "product_variants"
}

// NewProduct creates a new active product with zero stock
func NewProduct(name, sku string, price decimal.Decimal, categoryID uuid.UUID) (*Product, error) {
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if err := ValidateSKU(sku); err != nil {
		return nil, err
	}
	if err := validatePrice(price); err != nil {
		return nil, err
	}
	if categoryID == uuid.Nil {
		return nil, shared.InvalidInput("Category is required")
	}

	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              strings.TrimSpace(name),
		SKU:               NormalizeSKU(sku),
		Price:             price,
		IsActive:          true,
		CategoryID:        categoryID,
	}, nil
}

// Rename updates the display name and description
func (p *Product) Rename(name, description string) error {
	if err := validateProductName(name); err != nil {
		return err
	}
	p.Name = strings.TrimSpace(name)
	p.Description = description
	p.Touch()
	return nil
}

// SetDescription replaces the description only
func (p *Product) SetDescription(description string) {
	p.Description = description
	p.Touch()
}

// ChangeSKU replaces the product SKU. Uniqueness is checked by the caller and the database.
func (p *Product) ChangeSKU(sku string) error {
	if err := ValidateSKU(sku); err != nil {
		return err
	}
	p.SKU = NormalizeSKU(sku)
	p.Touch()
	return nil
}

// SetPricing sets the selling price and the optional compare-at price
func (p *Product) SetPricing(price decimal.Decimal, comparePrice *decimal.Decimal) error {
	if err := validatePrice(price); err != nil {
		return err
	}
	if comparePrice != nil {
		if comparePrice.IsNegative() {
			return shared.InvalidInput("Compare price cannot be negative")
		}
		if comparePrice.LessThanOrEqual(price) {
			return shared.InvalidInput("Compare price must be greater than price")
		}
	}
	p.Price = price
	p.ComparePrice = comparePrice
	p.Touch()
	return nil
}

// SetStock overwrites the stock counter
func (p *Product) SetStock(stock int) error {
	if stock < 0 {
		return shared.InvalidInput("Stock cannot be negative")
	}
	p.Stock = stock
	p.Touch()
	return nil
}

// SetActive toggles storefront visibility
func (p *Product) SetActive(active bool) {
	p.IsActive = active
	p.Touch()
}

// MoveToCategory reassigns the product
func (p *Product) MoveToCategory(categoryID uuid.UUID) error {
	if categoryID == uuid.Nil {
		return shared.InvalidInput("Category is required")
	}
	p.CategoryID = categoryID
	p.Category = nil
	p.Touch()
	return nil
}

// AddVariant appends a variant with its own stock and price delta
func (p *Product) AddVariant(name, value string, priceAdjustment decimal.Decimal, stock int) (*ProductVariant, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(value) == "" {
		return nil, shared.InvalidInput("Variant name and value are required")
	}
	if stock < 0 {
		return nil, shared.InvalidInput("Variant stock cannot be negative")
	}
	if p.Price.Add(priceAdjustment).IsNegative() {
		return nil, shared.InvalidInput("Variant price cannot be negative")
	}
	v := ProductVariant{
		BaseEntity:      shared.NewBaseEntity(),
		ProductID:       p.ID,
		Name:            strings.TrimSpace(name),
		Value:           strings.TrimSpace(value),
		PriceAdjustment: priceAdjustment,
		Stock:           stock,
	}
	p.Variants = append(p.Variants, v)
	return &p.Variants[len(p.Variants)-1], nil
}

// AddImage appends an image. A primary image demotes any existing primary one.
func (p *Product) AddImage(url, alt, storageKey string, primary bool) (*ProductImage, error) {
	if strings.TrimSpace(url) == "" {
		return nil, shared.InvalidInput("Image URL is required")
	}
	if len(p.Images) == 0 {
		primary = true
	}
	if primary {
		for i := range p.Images {
			p.Images[i].IsPrimary = false
		}
	}
	img := ProductImage{
		BaseEntity: shared.NewBaseEntity(),
		ProductID:  p.ID,
		URL:        url,
		Alt:        alt,
		IsPrimary:  primary,
		StorageKey: storageKey,
	}
	p.Images = append(p.Images, img)
	return &p.Images[len(p.Images)-1], nil
}

// FindVariant returns the variant with the given id when it belongs to this product
func (p *Product) FindVariant(id uuid.UUID) (*ProductVariant, bool) {
	for i := range p.Variants {
		if p.Variants[i].ID == id {
			return &p.Variants[i], true
		}
	}
	return nil, false
}

// PrimaryImage returns the primary image, falling back to the first one
func (p *Product) PrimaryImage() *ProductImage {
	for i := range p.Images {
		if p.Images[i].IsPrimary {
			return &p.Images[i]
		}
	}
	if len(p.Images) > 0 {
		return &p.Images[0]
	}
	return nil
}

// SortForDisplay orders images primary first and variants by name then value
func (p *Product) SortForDisplay() {
	sort.SliceStable(p.Images, func(i, j int) bool {
		return p.Images[i].IsPrimary && !p.Images[j].IsPrimary
	})
	sort.SliceStable(p.Variants, func(i, j int) bool {
		if p.Variants[i].Name != p.Variants[j].Name {
			return p.Variants[i].Name < p.Variants[j].Name
		}
		return p.Variants[i].Value < p.Variants[j].Value
	})
}

// UnitPrice is the price charged for one unit, including the variant's adjustment
func (p *Product) UnitPrice(variant *ProductVariant) decimal.Decimal {
	if variant == nil {
		return p.Price
	}
	return p.Price.Add(variant.PriceAdjustment)
}

// AvailableStock is the stock that limits a purchase of the product or the given variant
func (p *Product) AvailableStock(variant *ProductVariant) int {
	if variant != nil {
		return variant.Stock
	}
	return p.Stock
}

// NormalizeSKU trims and upper-cases a SKU
func NormalizeSKU(sku string) string {
	return strings.ToUpper(strings.TrimSpace(sku))
}

// ValidateSKU checks SKU shape: letters, digits, underscores and hyphens, at most 50 characters
func ValidateSKU(sku string) error {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return shared.InvalidInput("SKU cannot be empty")
	}
	if len(sku) > 50 {
		return shared.InvalidInput("SKU cannot exceed 50 characters")
	}
	for _, r := range sku {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
			return shared.InvalidInput("SKU can only contain letters, numbers, underscores, and hyphens")
		}
	}
	return nil
}

func validateProductName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.InvalidInput("Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.InvalidInput("Product name cannot exceed 200 characters")
	}
	return nil
}

func validatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.InvalidInput("Price cannot be negative")
	}
	return nil
}
