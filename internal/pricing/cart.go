package pricing

import "github.com/shopspring/decimal"

// CartItem is one line of a cart for totals calculation. Price is per unit in
// the display currency.
type CartItem struct {
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// CartTotals breaks down the estimate computed at checkout.
type CartTotals struct {
	Subtotal      decimal.Decimal `json:"subtotal"`
	ShippingCost  decimal.Decimal `json:"shipping_cost"`
	ServiceCharge decimal.Decimal `json:"service_charge"`
	Tax           decimal.Decimal `json:"tax"`
	Total         decimal.Decimal `json:"total"`
}

// CalculateCartTotals applies the platform fee schedule: 5% service charge
// and 8.875% tax on the subtotal, both rounded to whole units. Shipping cost
// is currently disabled and always zero.
func CalculateCartTotals(items []CartItem) CartTotals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	serviceCharge := subtotal.Mul(serviceChargeRate).Round(0)
	tax := subtotal.Mul(taxRate).Round(0)
	shipping := decimal.Zero

	return CartTotals{
		Subtotal:      subtotal,
		ShippingCost:  shipping,
		ServiceCharge: serviceCharge,
		Tax:           tax,
		Total:         subtotal.Add(shipping).Add(serviceCharge).Add(tax),
	}
}
