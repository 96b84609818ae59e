package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a snapshot of a product captured from a foreign retailer URL.
// When the scraper could not extract a field, the normalizer fills a default,
// records it in MissingFields, and flags RequiresApproval so the UI prompts
// the customer to edit the product before adding it to the cart.
type Product struct {
	ID               string          `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	URL              string          `json:"url" gorm:"type:varchar(2048)" validate:"required,url"`
	Marketplace      string          `json:"marketplace" gorm:"type:varchar(32)"`
	Title            string          `json:"title" gorm:"type:varchar(500)"`
	PriceUSD         decimal.Decimal `json:"price_usd" gorm:"type:decimal(14,2)"`
	PriceBDT         decimal.Decimal `json:"price_bdt" gorm:"type:decimal(14,2)"`
	Image            string          `json:"image" gorm:"type:varchar(2048)"`
	Rating           float64         `json:"rating"`
	ReviewCount      int             `json:"review_count"`
	RequiresApproval bool            `json:"requires_approval"`
	MissingFields    StringList      `json:"missing_fields" gorm:"type:text"`
	gorm.Model       `json:"-"`
}
