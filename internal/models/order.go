package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderItem is a snapshot of a captured product at checkout time.
// FinalPrice is the admin-confirmed per-unit price in BDT; it stays null
// until the back-office finalizes pricing for the item.
type OrderItem struct {
	ProductID    string              `json:"product_id"`
	Title        string              `json:"title"`
	URL          string              `json:"url"`
	Image        string              `json:"image"`
	Marketplace  string              `json:"marketplace"`
	Quantity     int                 `json:"quantity"`
	UnitPriceBDT decimal.Decimal     `json:"unit_price_bdt"`
	UnitPriceUSD decimal.Decimal     `json:"unit_price_usd"`
	FinalPrice   decimal.NullDecimal `json:"final_price"`
}

// OrderItems is stored as a JSON blob on the order row.
type OrderItems []OrderItem

func (i OrderItems) Value() (driver.Value, error) {
	return json.Marshal(i)
}

func (i *OrderItems) Scan(src interface{}) error {
	return scanJSON(src, i)
}

// ShippingAddress is the destination captured at checkout or from the
// payment gateway event, stored as a JSON blob on the order row.
type ShippingAddress struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

func (a ShippingAddress) Value() (driver.Value, error) {
	return json.Marshal(a)
}

func (a *ShippingAddress) Scan(src interface{}) error {
	return scanJSON(src, a)
}

// Order is the central record of the platform. Monetary fields exist in two
// sets: the automated estimate computed at checkout, and the admin-confirmed
// finalized variants. FinalPricingUpdated selects which set is authoritative
// at read time. Orders are never hard-deleted; cancellation is a status.
type Order struct {
	ID            string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID        string `json:"user_id" gorm:"index;type:varchar(36)"`
	CustomerEmail string `json:"customer_email" gorm:"type:varchar(255)"`

	Items OrderItems `json:"items" gorm:"type:text"`

	// Estimate set, in BDT.
	ProductCostBDT  decimal.Decimal `json:"product_cost_bdt" gorm:"type:decimal(14,2)"`
	ServiceCharge   decimal.Decimal `json:"service_charge" gorm:"type:decimal(14,2)"`
	ShippingCostBDT decimal.Decimal `json:"shipping_cost_bdt" gorm:"type:decimal(14,2)"`
	Tax             decimal.Decimal `json:"tax" gorm:"type:decimal(14,2)"`
	TotalBDT        decimal.Decimal `json:"total_bdt" gorm:"type:decimal(14,2)"`

	// Finalized set, in BDT. Null until the back-office confirms a field.
	FinalProductCost    decimal.NullDecimal `json:"final_product_cost" gorm:"type:decimal(14,2)"`
	FinalServiceCharge  decimal.NullDecimal `json:"final_service_charge" gorm:"type:decimal(14,2)"`
	FinalShippingCost   decimal.NullDecimal `json:"final_shipping_cost" gorm:"type:decimal(14,2)"`
	FinalTax            decimal.NullDecimal `json:"final_tax" gorm:"type:decimal(14,2)"`
	FinalTotal          decimal.NullDecimal `json:"final_total" gorm:"type:decimal(14,2)"`
	FinalPricingUpdated bool                `json:"final_pricing_updated"`

	// USD to BDT rate used at checkout. A zero value is read as 121.5.
	ExchangeRate decimal.Decimal `json:"exchange_rate" gorm:"type:decimal(10,4)"`

	PaymentStatus             string `json:"payment_status" gorm:"type:varchar(32);default:PENDING"`
	ShippedToUsStatus         string `json:"shipped_to_us_status" gorm:"type:varchar(32);default:PENDING"`
	ShippedToBdStatus         string `json:"shipped_to_bd_status" gorm:"type:varchar(32);default:PENDING"`
	DomesticFulfillmentStatus string `json:"domestic_fulfillment_status" gorm:"type:varchar(32);default:PENDING"`
	DeliveredStatus           string `json:"delivered_status" gorm:"type:varchar(32);default:PENDING"`

	ShippingAddress ShippingAddress `json:"shipping_address" gorm:"type:text"`

	StripePaymentIntentID   string `json:"stripe_payment_intent_id" gorm:"type:varchar(255)"`
	StripeCheckoutSessionID string `json:"stripe_checkout_session_id" gorm:"type:varchar(255)"`

	gorm.Model `json:"-"`
}

// FinalPricing is the admin-confirmed pricing write set. Null fields leave
// the corresponding finalized column untouched (the display layer falls back
// to the estimate for them). ItemFinalPrices carries per-item confirmed unit
// prices keyed by product id.
type FinalPricing struct {
	ProductCost     decimal.NullDecimal        `json:"product_cost"`
	ServiceCharge   decimal.NullDecimal        `json:"service_charge"`
	ShippingCost    decimal.NullDecimal        `json:"shipping_cost"`
	Tax             decimal.NullDecimal        `json:"tax"`
	Total           decimal.NullDecimal        `json:"total"`
	ItemFinalPrices map[string]decimal.Decimal `json:"item_final_prices"`
}

func scanJSON(src, dst interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		if len(v) == 0 {
			return nil
		}
		return json.Unmarshal(v, dst)
	case string:
		if v == "" {
			return nil
		}
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("unsupported column type %T for JSON scan", src)
	}
}
