package trade

import "github.com/shopspring/decimal"

// PricingPolicy computes tax and shipping for an order subtotal
type PricingPolicy struct {
	TaxRate               decimal.Decimal
	ShippingFlat          decimal.Decimal
	FreeShippingThreshold decimal.Decimal // zero disables free shipping
}

// DefaultPricingPolicy charges 20% tax and no shipping
func DefaultPricingPolicy() PricingPolicy {
	return PricingPolicy{
		TaxRate:      decimal.RequireFromString("0.20"),
		ShippingFlat: decimal.Zero,
	}
}

// Totals is the money breakdown of an order
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Shipping decimal.Decimal
	Total    decimal.Decimal
}

// Totals applies the policy to subtotal. Amounts are rounded to cents.
func (p PricingPolicy) Totals(subtotal decimal.Decimal) Totals {
	subtotal = subtotal.Round(2)
	tax := subtotal.Mul(p.TaxRate).Round(2)

	shipping := p.ShippingFlat
	if subtotal.IsZero() {
		shipping = decimal.Zero
	}
	if p.FreeShippingThreshold.IsPositive() && subtotal.GreaterThanOrEqual(p.FreeShippingThreshold) {
		shipping = decimal.Zero
	}
	shipping = shipping.Round(2)

	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Total:    subtotal.Add(tax).Add(shipping),
	}
}
