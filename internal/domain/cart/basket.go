package cart

import (
	"encoding/json"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BasketLine is one product/variant entry of a Basket
type BasketLine struct {
	ProductID       uuid.UUID       `json:"productId"`
	VariantID       *uuid.UUID      `json:"variantId,omitempty"`
	Name            string          `json:"name"`
	Price           decimal.Decimal `json:"price"`
	PriceAdjustment decimal.Decimal `json:"priceAdjustment"`
	Quantity        int             `json:"quantity"`
	Image           string          `json:"image,omitempty"`
}

// Key identifies the line: "<productId>-<variantId>" or "<productId>-default"
func (l BasketLine) Key() string {
	return LineKey(l.ProductID, l.VariantID)
}

// UnitPrice is the product price plus the variant adjustment
func (l BasketLine) UnitPrice() decimal.Decimal {
	return l.Price.Add(l.PriceAdjustment)
}

// LineTotal is UnitPrice times quantity
func (l BasketLine) LineTotal() decimal.Decimal {
	return l.UnitPrice().Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// LineKey builds the key used to merge basket lines
func LineKey(productID uuid.UUID, variantID *uuid.UUID) string {
	if variantID == nil {
		return productID.String() + "-default"
	}
	return productID.String() + "-" + variantID.String()
}

// Basket is an ordered, in-memory cart keyed by product and variant.
// It is safe for concurrent use.
type Basket struct {
	mu    sync.RWMutex
	lines []BasketLine
}

// NewBasket creates an empty basket
func NewBasket() *Basket {
	return &Basket{}
}

// Add merges line into the basket. An existing key gets its quantity increased.
// Lines with a non-positive quantity are ignored.
func (b *Basket) Add(line BasketLine) {
	if line.Quantity <= 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	key := line.Key()
	for i := range b.lines {
		if b.lines[i].Key() == key {
			b.lines[i].Quantity += line.Quantity
			return
		}
	}
	b.lines = append(b.lines, line)
}

// Remove drops the line for the product/variant pair
func (b *Basket) Remove(productID uuid.UUID, variantID *uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.removeLocked(LineKey(productID, variantID))
}

// UpdateQuantity sets the quantity of a line; zero or less removes it
func (b *Basket) UpdateQuantity(productID uuid.UUID, variantID *uuid.UUID, quantity int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := LineKey(productID, variantID)
	if quantity <= 0 {
		b.removeLocked(key)
		return
	}
	for i := range b.lines {
		if b.lines[i].Key() == key {
			b.lines[i].Quantity = quantity
			return
		}
	}
}

// Clear empties the basket
func (b *Basket) Clear() {
	b.mu.Lock()
	b.lines = nil
	b.mu.Unlock()
}

// Contains reports whether the product/variant pair is in the basket
func (b *Basket) Contains(productID uuid.UUID, variantID *uuid.UUID) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	key := LineKey(productID, variantID)
	for _, l := range b.lines {
		if l.Key() == key {
			return true
		}
	}
	return false
}

// Lines returns a copy of the basket lines in insertion order
func (b *Basket) Lines() []BasketLine {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]BasketLine, len(b.lines))
	copy(out, b.lines)
	return out
}

// TotalItems sums line quantities
func (b *Basket) TotalItems() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := 0
	for _, l := range b.lines {
		n += l.Quantity
	}
	return n
}

// TotalPrice sums (price + variant adjustment) x quantity over all lines
func (b *Basket) TotalPrice() decimal.Decimal {
	b.mu.RLock()
	defer b.mu.RUnlock()
	total := decimal.Zero
	for _, l := range b.lines {
		total = total.Add(l.LineTotal())
	}
	return total
}

// Snapshot writes the basket lines as JSON
func (b *Basket) Snapshot(w io.Writer) error {
	return json.NewEncoder(w).Encode(b.Lines())
}

// Restore replaces the basket content with a snapshot
func (b *Basket) Restore(r io.Reader) error {
	var lines []BasketLine
	if err := json.NewDecoder(r).Decode(&lines); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = nil
	for _, l := range lines {
		if l.Quantity > 0 {
			b.lines = append(b.lines, l)
		}
	}
	return nil
}

func (b *Basket) removeLocked(key string) {
	for i := range b.lines {
		if b.lines[i].Key() == key {
			b.lines = append(b.lines[:i], b.lines[i+1:]...)
			return
		}
	}
}
