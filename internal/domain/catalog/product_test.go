package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProduct(t *testing.T) *Product {
	t.Helper()
	p, err := NewProduct("Smartphone X", "phone-001", decimal.RequireFromString("999.99"), uuid.New())
	require.NoError(t, err)
	return p
}

func TestNewProduct(t *testing.T) {
	categoryID := uuid.New()

	t.Run("creates active product with normalized SKU", func(t *testing.T) {
		p, err := NewProduct("  Smartphone X ", " phone-001", decimal.NewFromInt(10), categoryID)
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, p.ID)
		assert.Equal(t, "Smartphone X", p.Name)
		assert.Equal(t, "PHONE-001", p.SKU)
		assert.True(t, p.IsActive)
		assert.Equal(t, 0, p.Stock)
		assert.Equal(t, categoryID, p.CategoryID)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewProduct("", "SKU-1", decimal.NewFromInt(1), categoryID)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("rejects invalid SKU characters", func(t *testing.T) {
		_, err := NewProduct("Thing", "SKU 1!", decimal.NewFromInt(1), categoryID)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "letters, numbers")
	})

	t.Run("rejects negative price", func(t *testing.T) {
		_, err := NewProduct("Thing", "SKU-1", decimal.NewFromInt(-1), categoryID)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("requires category", func(t *testing.T) {
		_, err := NewProduct("Thing", "SKU-1", decimal.NewFromInt(1), uuid.Nil)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

func TestProduct_SetPricing(t *testing.T) {
	p := newTestProduct(t)

	compare := decimal.RequireFromString("1199.99")
	require.NoError(t, p.SetPricing(decimal.RequireFromString("999.99"), &compare))
	assert.True(t, p.ComparePrice.Equal(compare))

	lower := decimal.RequireFromString("10")
	err := p.SetPricing(decimal.RequireFromString("999.99"), &lower)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	require.NoError(t, p.SetPricing(decimal.NewFromInt(5), nil))
	assert.Nil(t, p.ComparePrice)
}

func TestProduct_SetStock(t *testing.T) {
	p := newTestProduct(t)
	require.NoError(t, p.SetStock(50))
	assert.Equal(t, 50, p.Stock)
	assert.ErrorIs(t, p.SetStock(-1), shared.ErrInvalidInput)
	assert.Equal(t, 50, p.Stock)
}

func TestProduct_Variants(t *testing.T) {
	p := newTestProduct(t)

	black, err := p.AddVariant("Color", "Black", decimal.Zero, 20)
	require.NoError(t, err)
	_, err = p.AddVariant("Color", "Gold", decimal.NewFromInt(50), 5)
	require.NoError(t, err)

	found, ok := p.FindVariant(black.ID)
	require.True(t, ok)
	assert.Equal(t, "Black", found.Value)

	_, ok = p.FindVariant(uuid.New())
	assert.False(t, ok)

	gold := &p.Variants[1]
	assert.True(t, p.UnitPrice(gold).Equal(decimal.RequireFromString("1049.99")))
	assert.True(t, p.UnitPrice(nil).Equal(p.Price))
	assert.Equal(t, 5, p.AvailableStock(gold))

	_, err = p.AddVariant("", "x", decimal.Zero, 1)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
	_, err = p.AddVariant("Size", "XL", decimal.NewFromInt(-2000), 1)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestProduct_Images(t *testing.T) {
	p := newTestProduct(t)

	first, err := p.AddImage("https://img/1.jpg", "front", "", false)
	require.NoError(t, err)
	assert.True(t, first.IsPrimary, "first image becomes primary")

	_, err = p.AddImage("https://img/2.jpg", "back", "", true)
	require.NoError(t, err)

	assert.False(t, p.Images[0].IsPrimary)
	assert.True(t, p.Images[1].IsPrimary)
	assert.Equal(t, "https://img/2.jpg", p.PrimaryImage().URL)

	_, err = p.AddImage("", "", "", false)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestProduct_SortForDisplay(t *testing.T) {
	p := newTestProduct(t)
	p.Images = []ProductImage{{URL: "a"}, {URL: "b", IsPrimary: true}}
	p.Variants = []ProductVariant{{Name: "Size", Value: "M"}, {Name: "Color", Value: "Red"}}

	p.SortForDisplay()

	assert.Equal(t, "b", p.Images[0].URL)
	assert.Equal(t, "Color", p.Variants[0].Name)
}

func TestValidateSKU(t *testing.T) {
	tests := []struct {
		sku   string
		valid bool
	}{
		{"PHONE-001", true},
		{"tee_blk_m", true},
		{"", false},
		{"has space", false},
		{string(make([]byte, 51)), false},
	}
	for _, tt := range tests {
		err := ValidateSKU(tt.sku)
		if tt.valid {
			assert.NoError(t, err, tt.sku)
		} else {
			assert.Error(t, err, tt.sku)
		}
	}
}
