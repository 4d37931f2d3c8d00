// Package seed loads demo catalog data and a back office account from YAML
// fixtures. Loading is idempotent: categories are matched by slug, products
// by SKU and the admin by email.
package seed

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

//go:embed fixtures/store.yaml
var defaultFixtures embed.FS

// Fixtures is the document shape of a seed file
type Fixtures struct {
	Admin      *AdminFixture     `yaml:"admin"`
	Categories []CategoryFixture `yaml:"categories"`
	Products   []ProductFixture  `yaml:"products"`
}

// AdminFixture describes the back office account
type AdminFixture struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

// CategoryFixture describes one category
type CategoryFixture struct {
	Slug        string `yaml:"slug"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// ProductFixture describes one product. Prices are decimal strings.
type ProductFixture struct {
	SKU          string           `yaml:"sku"`
	Name         string           `yaml:"name"`
	Description  string           `yaml:"description"`
	Category     string           `yaml:"category"`
	Price        string           `yaml:"price"`
	ComparePrice string           `yaml:"comparePrice"`
	Stock        int              `yaml:"stock"`
	Inactive     bool             `yaml:"inactive"`
	Images       []ImageFixture   `yaml:"images"`
	Variants     []VariantFixture `yaml:"variants"`
}

// ImageFixture is a product picture
type ImageFixture struct {
	URL     string `yaml:"url"`
	Alt     string `yaml:"alt"`
	Primary bool   `yaml:"primary"`
}

// VariantFixture is a purchasable option
type VariantFixture struct {
	Name            string `yaml:"name"`
	Value           string `yaml:"value"`
	PriceAdjustment string `yaml:"priceAdjustment"`
	Stock           int    `yaml:"stock"`
}

// Default returns the embedded demo catalog
func Default() (*Fixtures, error) {
	data, err := defaultFixtures.ReadFile("fixtures/store.yaml")
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// LoadFile reads fixtures from a YAML file on disk
func LoadFile(path string) (*Fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixtures: %w", err)
	}
	return Parse(data)
}

// Parse decodes a fixtures document. Unknown keys are rejected.
func Parse(data []byte) (*Fixtures, error) {
	var f Fixtures
	if err := yaml.UnmarshalWithOptions(data, &f, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("invalid fixtures: %w", err)
	}
	return &f, nil
}

// Result counts what a run changed
type Result struct {
	CategoriesCreated int
	CategoriesUpdated int
	ProductsCreated   int
	ProductsSkipped   int
	AdminCreated      bool
}

// Seeder writes fixtures through the domain repositories
type Seeder struct {
	categories catalog.CategoryRepository
	products   catalog.ProductRepository
	users      identity.UserRepository
	logger     *zap.Logger
}

// NewSeeder creates a Seeder
func NewSeeder(
	categories catalog.CategoryRepository,
	products catalog.ProductRepository,
	users identity.UserRepository,
	logger *zap.Logger,
) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{categories: categories, products: products, users: users, logger: logger}
}

// Run loads f. Existing products and users are left untouched; existing
// categories get their name and description refreshed.
func (s *Seeder) Run(ctx context.Context, f *Fixtures) (*Result, error) {
	res := &Result{}

	slugs := make(map[string]uuid.UUID, len(f.Categories))
	for _, cf := range f.Categories {
		c, created, err := s.upsertCategory(ctx, cf)
		if err != nil {
			return res, fmt.Errorf("category %q: %w", cf.Slug, err)
		}
		if created {
			res.CategoriesCreated++
		} else {
			res.CategoriesUpdated++
		}
		slugs[cf.Slug] = c.ID
	}

	for _, pf := range f.Products {
		categoryID, err := s.resolveCategory(ctx, slugs, pf.Category)
		if err != nil {
			return res, fmt.Errorf("product %q: %w", pf.SKU, err)
		}
		created, err := s.createProduct(ctx, pf, categoryID)
		if err != nil {
			return res, fmt.Errorf("product %q: %w", pf.SKU, err)
		}
		if created {
			res.ProductsCreated++
		} else {
			res.ProductsSkipped++
		}
	}

	if f.Admin != nil && f.Admin.Email != "" {
		created, err := s.ensureAdmin(ctx, *f.Admin)
		if err != nil {
			return res, fmt.Errorf("admin %q: %w", f.Admin.Email, err)
		}
		res.AdminCreated = created
	}

	s.logger.Info("Seed completed",
		zap.Int("categories_created", res.CategoriesCreated),
		zap.Int("categories_updated", res.CategoriesUpdated),
		zap.Int("products_created", res.ProductsCreated),
		zap.Int("products_skipped", res.ProductsSkipped),
		zap.Bool("admin_created", res.AdminCreated),
	)
	return res, nil
}

func (s *Seeder) upsertCategory(ctx context.Context, cf CategoryFixture) (*catalog.Category, bool, error) {
	fresh, err := catalog.NewCategory(cf.Name, cf.Slug, cf.Description)
	if err != nil {
		return nil, false, err
	}
	existing, err := s.categories.FindBySlug(ctx, fresh.Slug)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		return fresh, true, s.categories.Save(ctx, fresh)
	case err != nil:
		return nil, false, err
	}
	existing.Name = fresh.Name
	existing.Description = fresh.Description
	existing.Touch()
	return existing, false, s.categories.Save(ctx, existing)
}

func (s *Seeder) resolveCategory(ctx context.Context, known map[string]uuid.UUID, slug string) (uuid.UUID, error) {
	if id, ok := known[slug]; ok {
		return id, nil
	}
	c, err := s.categories.FindBySlug(ctx, catalog.Slugify(slug))
	if errors.Is(err, shared.ErrNotFound) {
		return uuid.Nil, shared.InvalidInput("unknown category " + slug)
	}
	if err != nil {
		return uuid.Nil, err
	}
	known[slug] = c.ID
	return c.ID, nil
}

func (s *Seeder) createProduct(ctx context.Context, pf ProductFixture, categoryID uuid.UUID) (bool, error) {
	exists, err := s.products.ExistsBySKU(ctx, catalog.NormalizeSKU(pf.SKU), uuid.Nil)
	if err != nil {
		return false, err
	}
	if exists {
		s.logger.Debug("Product already present", zap.String("sku", pf.SKU))
		return false, nil
	}

	price, err := decimal.NewFromString(pf.Price)
	if err != nil {
		return false, fmt.Errorf("invalid price %q", pf.Price)
	}
	p, err := catalog.NewProduct(pf.Name, pf.SKU, price, categoryID)
	if err != nil {
		return false, err
	}
	p.SetDescription(pf.Description)
	if pf.ComparePrice != "" {
		compare, err := decimal.NewFromString(pf.ComparePrice)
		if err != nil {
			return false, fmt.Errorf("invalid compare price %q", pf.ComparePrice)
		}
		if err := p.SetPricing(price, &compare); err != nil {
			return false, err
		}
	}
	if err := p.SetStock(pf.Stock); err != nil {
		return false, err
	}
	p.SetActive(!pf.Inactive)

	for _, img := range pf.Images {
		if _, err := p.AddImage(img.URL, img.Alt, "", img.Primary); err != nil {
			return false, err
		}
	}
	for _, vf := range pf.Variants {
		adj := decimal.Zero
		if vf.PriceAdjustment != "" {
			if adj, err = decimal.NewFromString(vf.PriceAdjustment); err != nil {
				return false, fmt.Errorf("invalid price adjustment %q", vf.PriceAdjustment)
			}
		}
		if _, err := p.AddVariant(vf.Name, vf.Value, adj, vf.Stock); err != nil {
			return false, err
		}
	}
	return true, s.products.Create(ctx, p)
}

func (s *Seeder) ensureAdmin(ctx context.Context, af AdminFixture) (bool, error) {
	exists, err := s.users.ExistsByEmail(ctx, identity.NormalizeEmail(af.Email))
	if err != nil {
		return false, err
	}
	if exists {
		s.logger.Info("Admin account already exists", zap.String("email", af.Email))
		return false, nil
	}
	u, err := identity.NewUser(af.Name, af.Email, af.Password, identity.RoleAdmin)
	if err != nil {
		return false, err
	}
	return true, s.users.Create(ctx, u)
}
