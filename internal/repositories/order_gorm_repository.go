package repositories

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"unishopper/internal/models"
	"unishopper/internal/workflow"
)

// statusColumns maps workflow status types to their order columns.
var statusColumns = map[workflow.StatusType]string{
	workflow.TypePayment:             "payment_status",
	workflow.TypeShippedToUs:         "shipped_to_us_status",
	workflow.TypeShippedToBd:         "shipped_to_bd_status",
	workflow.TypeDomesticFulfillment: "domestic_fulfillment_status",
	workflow.TypeDelivered:           "delivered_status",
}

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

// Create creates a new order in the database.
func (r *GORMOrderRepository) Create(order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if err := r.db.Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// GetByID retrieves a single order by its ID from the database.
func (r *GORMOrderRepository) GetByID(id string) (*models.Order, error) {
	var order models.Order
	if err := r.db.First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	return &order, nil
}

// GetAll retrieves all orders, newest first.
func (r *GORMOrderRepository) GetAll() ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to get all orders: %w", err)
	}
	return orders, nil
}

// GetByUserID retrieves the orders owned by a user, newest first.
func (r *GORMOrderRepository) GetByUserID(userID string) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to get orders for user %s: %w", userID, err)
	}
	return orders, nil
}

// UpdateStatuses writes the changed status fields of one order row.
func (r *GORMOrderRepository) UpdateStatuses(id string, changes []workflow.Change) error {
	if len(changes) == 0 {
		return nil
	}
	cols := make(map[string]interface{}, len(changes))
	for _, c := range changes {
		col, ok := statusColumns[c.Type]
		if !ok {
			return fmt.Errorf("no column for status type %s", c.Type)
		}
		cols[col] = string(c.Value)
	}

	res := r.db.Model(&models.Order{}).Where("id = ?", id).Updates(cols)
	if res.Error != nil {
		return fmt.Errorf("failed to update statuses for order %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	return nil
}

// UpdatePricing writes the finalized pricing set, merges per-item final
// prices into the items blob, and flips final_pricing_updated.
func (r *GORMOrderRepository) UpdatePricing(id string, fp models.FinalPricing) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.First(&order, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("order %s: %w", id, ErrNotFound)
			}
			return fmt.Errorf("failed to load order %s for pricing update: %w", id, err)
		}

		for i, item := range order.Items {
			if price, ok := fp.ItemFinalPrices[item.ProductID]; ok {
				order.Items[i].FinalPrice = decimal.NullDecimal{Decimal: price, Valid: true}
			}
		}

		cols := map[string]interface{}{
			"final_product_cost":    fp.ProductCost,
			"final_service_charge":  fp.ServiceCharge,
			"final_shipping_cost":   fp.ShippingCost,
			"final_tax":             fp.Tax,
			"final_total":           fp.Total,
			"final_pricing_updated": true,
			"items":                 order.Items,
		}
		if err := tx.Model(&models.Order{}).Where("id = ?", id).Updates(cols).Error; err != nil {
			return fmt.Errorf("failed to update pricing for order %s: %w", id, err)
		}
		return nil
	})
}

// UpdatePaymentInfo stores gateway correlation ids and the event's shipping
// address on the order row.
func (r *GORMOrderRepository) UpdatePaymentInfo(id string, paymentIntentID, checkoutSessionID string, addr *models.ShippingAddress) error {
	cols := map[string]interface{}{}
	if paymentIntentID != "" {
		cols["stripe_payment_intent_id"] = paymentIntentID
	}
	if checkoutSessionID != "" {
		cols["stripe_checkout_session_id"] = checkoutSessionID
	}
	if addr != nil {
		cols["shipping_address"] = *addr
	}
	if len(cols) == 0 {
		return nil
	}

	res := r.db.Model(&models.Order{}).Where("id = ?", id).Updates(cols)
	if res.Error != nil {
		return fmt.Errorf("failed to update payment info for order %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	return nil
}
