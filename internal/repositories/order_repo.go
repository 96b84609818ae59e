package repositories

import (
	"unishopper/internal/models"
	"unishopper/internal/workflow"
)

// OrderRepository defines the interface for order data access. Orders are
// never deleted; every mutation is a field-level update on a single row.
type OrderRepository interface {
	Create(order *models.Order) error
	GetByID(id string) (*models.Order, error)
	GetAll() ([]models.Order, error)
	GetByUserID(userID string) ([]models.Order, error)
	// UpdateStatuses applies the field changes produced by workflow.Apply.
	UpdateStatuses(id string, changes []workflow.Change) error
	// UpdatePricing writes the admin-confirmed pricing set and flips
	// final_pricing_updated.
	UpdatePricing(id string, fp models.FinalPricing) error
	// UpdatePaymentInfo stores the gateway correlation ids and, when present,
	// the shipping address carried by the gateway event.
	UpdatePaymentInfo(id string, paymentIntentID, checkoutSessionID string, addr *models.ShippingAddress) error
}
