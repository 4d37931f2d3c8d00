package cart

import (
	"bytes"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasket_AddMergesSameKey(t *testing.T) {
	b := NewBasket()
	productID := uuid.New()
	variantID := uuid.New()

	b.Add(BasketLine{ProductID: productID, Price: decimal.NewFromInt(10), Quantity: 1})
	b.Add(BasketLine{ProductID: productID, Price: decimal.NewFromInt(10), Quantity: 2})
	b.Add(BasketLine{ProductID: productID, VariantID: &variantID, Price: decimal.NewFromInt(10), Quantity: 1})
	b.Add(BasketLine{ProductID: productID, Quantity: 0})

	lines := b.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, 3, lines[0].Quantity)
	assert.Equal(t, productID.String()+"-default", lines[0].Key())
	assert.Equal(t, productID.String()+"-"+variantID.String(), lines[1].Key())
	assert.Equal(t, 4, b.TotalItems())
}

func TestBasket_UpdateQuantity(t *testing.T) {
	b := NewBasket()
	productID := uuid.New()
	b.Add(BasketLine{ProductID: productID, Quantity: 1})

	b.UpdateQuantity(productID, nil, 5)
	assert.Equal(t, 5, b.TotalItems())

	b.UpdateQuantity(productID, nil, 0)
	assert.False(t, b.Contains(productID, nil))
	assert.Equal(t, 0, b.TotalItems())
}

func TestBasket_TotalPriceIncludesAdjustment(t *testing.T) {
	b := NewBasket()
	variantID := uuid.New()
	b.Add(BasketLine{ProductID: uuid.New(), Price: decimal.RequireFromString("19.99"), Quantity: 2})
	b.Add(BasketLine{
		ProductID:       uuid.New(),
		VariantID:       &variantID,
		Price:           decimal.RequireFromString("100"),
		PriceAdjustment: decimal.RequireFromString("25.50"),
		Quantity:        1,
	})

	assert.Equal(t, "165.48", b.TotalPrice().StringFixed(2))
}

func TestBasket_RemoveAndClear(t *testing.T) {
	b := NewBasket()
	p1, p2 := uuid.New(), uuid.New()
	b.Add(BasketLine{ProductID: p1, Quantity: 1})
	b.Add(BasketLine{ProductID: p2, Quantity: 1})

	b.Remove(p1, nil)
	assert.False(t, b.Contains(p1, nil))
	assert.True(t, b.Contains(p2, nil))

	b.Clear()
	assert.Empty(t, b.Lines())
	assert.True(t, b.TotalPrice().IsZero())
}

func TestBasket_SnapshotRestore(t *testing.T) {
	b := NewBasket()
	productID := uuid.New()
	b.Add(BasketLine{ProductID: productID, Name: "Tee", Price: decimal.NewFromInt(20), Quantity: 3})

	var buf bytes.Buffer
	require.NoError(t, b.Snapshot(&buf))

	restored := NewBasket()
	require.NoError(t, restored.Restore(&buf))
	assert.True(t, restored.Contains(productID, nil))
	assert.Equal(t, 3, restored.TotalItems())
	assert.Equal(t, "60", restored.TotalPrice().String())

	assert.Error(t, restored.Restore(bytes.NewBufferString("{not json")))
}

func TestBasket_ConcurrentAdd(t *testing.T) {
	b := NewBasket()
	productID := uuid.New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.Add(BasketLine{ProductID: productID, Quantity: 1})
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, b.TotalItems())
	assert.Len(t, b.Lines(), 1)
}
