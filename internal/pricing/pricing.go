// Package pricing computes the amounts shown to customers and embedded in
// lifecycle emails: the checkout-time estimate until the back-office confirms
// final pricing, then the finalized figures with a field-by-field fallback to
// the estimate. Missing final data never surfaces as zero to the customer.
package pricing

import (
	"github.com/shopspring/decimal"

	"unishopper/internal/models"
)

var (
	// DefaultExchangeRate is the USD to BDT divisor used when an order has no
	// stored rate.
	DefaultExchangeRate = decimal.RequireFromString("121.5")

	serviceChargeRate = decimal.RequireFromString("0.05")
	taxRate           = decimal.RequireFromString("0.08875")
)

// Amounts are the display figures for one order, in BDT with derived USD
// equivalents.
type Amounts struct {
	ProductCost   decimal.Decimal `json:"product_cost"`
	ServiceCharge decimal.Decimal `json:"service_charge"`
	ShippingCost  decimal.Decimal `json:"shipping_cost"`
	Tax           decimal.Decimal `json:"tax"`
	Total         decimal.Decimal `json:"total"`

	ProductCostUSD   decimal.Decimal `json:"product_cost_usd"`
	ServiceChargeUSD decimal.Decimal `json:"service_charge_usd"`
	ShippingCostUSD  decimal.Decimal `json:"shipping_cost_usd"`
	TaxUSD           decimal.Decimal `json:"tax_usd"`
	TotalUSD         decimal.Decimal `json:"total_usd"`

	ExchangeRate decimal.Decimal `json:"exchange_rate"`
	Finalized    bool            `json:"finalized"`
}

// coalesce is the single fallback combinator: the finalized value when set,
// the estimate otherwise.
func coalesce(final decimal.NullDecimal, estimate decimal.Decimal) decimal.Decimal {
	if final.Valid {
		return final.Decimal
	}
	return estimate
}

// DisplayAmounts reconciles the estimate and finalized pricing sets of an
// order. With FinalPricingUpdated unset the estimate is returned verbatim;
// otherwise each field prefers its finalized value and falls back per field.
// Product cost prefers the sum of per-item final prices when any item has one.
func DisplayAmounts(o *models.Order) Amounts {
	rate := o.ExchangeRate
	if rate.IsZero() {
		rate = DefaultExchangeRate
	}

	a := Amounts{
		ProductCost:   o.ProductCostBDT,
		ServiceCharge: o.ServiceCharge,
		ShippingCost:  o.ShippingCostBDT,
		Tax:           o.Tax,
		Total:         o.TotalBDT,
		ExchangeRate:  rate,
		Finalized:     o.FinalPricingUpdated,
	}

	if o.FinalPricingUpdated {
		a.ProductCost = finalProductCost(o)
		a.ServiceCharge = coalesce(o.FinalServiceCharge, o.ServiceCharge)
		a.ShippingCost = coalesce(o.FinalShippingCost, o.ShippingCostBDT)
		a.Tax = coalesce(o.FinalTax, o.Tax)
		a.Total = coalesce(o.FinalTotal, o.TotalBDT)
	}

	a.ProductCostUSD = toUSD(a.ProductCost, rate)
	a.ServiceChargeUSD = toUSD(a.ServiceCharge, rate)
	a.ShippingCostUSD = toUSD(a.ShippingCost, rate)
	a.TaxUSD = toUSD(a.Tax, rate)
	a.TotalUSD = toUSD(a.Total, rate)
	return a
}

// finalProductCost sums finalPrice x quantity when a per-item final price list
// exists, otherwise falls back to the aggregate finalized field, then to the
// original estimate.
func finalProductCost(o *models.Order) decimal.Decimal {
	sum := decimal.Zero
	itemized := false
	for _, item := range o.Items {
		if item.FinalPrice.Valid {
			itemized = true
			sum = sum.Add(item.FinalPrice.Decimal.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
	}
	if itemized {
		return sum
	}
	return coalesce(o.FinalProductCost, o.ProductCostBDT)
}

func toUSD(bdt, rate decimal.Decimal) decimal.Decimal {
	return bdt.Div(rate).Round(2)
}
