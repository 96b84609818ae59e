package repositories

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"unishopper/internal/models"
	"unishopper/internal/workflow"
)

// MockOrderRepository is an in-memory implementation of OrderRepository.
type MockOrderRepository struct {
	orders map[string]models.Order
	mu     sync.RWMutex
}

// NewMockOrderRepository creates a new instance of MockOrderRepository.
func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[string]models.Order),
	}
}

// Create adds a new order.
func (r *MockOrderRepository) Create(order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	order.CreatedAt = time.Now()
	order.UpdatedAt = time.Now()
	r.orders[order.ID] = *order
	return nil
}

// GetByID returns an order by its ID.
func (r *MockOrderRepository) GetByID(id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	return &order, nil
}

// GetAll returns all orders, newest first.
func (r *MockOrderRepository) GetAll() ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orderList := make([]models.Order, 0, len(r.orders))
	for _, order := range r.orders {
		orderList = append(orderList, order)
	}
	sort.Slice(orderList, func(i, j int) bool {
		return orderList[i].CreatedAt.After(orderList[j].CreatedAt)
	})
	return orderList, nil
}

// GetByUserID returns the orders owned by a user.
func (r *MockOrderRepository) GetByUserID(userID string) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var orderList []models.Order
	for _, order := range r.orders {
		if order.UserID == userID {
			orderList = append(orderList, order)
		}
	}
	sort.Slice(orderList, func(i, j int) bool {
		return orderList[i].CreatedAt.After(orderList[j].CreatedAt)
	})
	return orderList, nil
}

// UpdateStatuses applies status field changes to an order.
func (r *MockOrderRepository) UpdateStatuses(id string, changes []workflow.Change) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	for _, c := range changes {
		switch c.Type {
		case workflow.TypePayment:
			order.PaymentStatus = string(c.Value)
		case workflow.TypeShippedToUs:
			order.ShippedToUsStatus = string(c.Value)
		case workflow.TypeShippedToBd:
			order.ShippedToBdStatus = string(c.Value)
		case workflow.TypeDomesticFulfillment:
			order.DomesticFulfillmentStatus = string(c.Value)
		case workflow.TypeDelivered:
			order.DeliveredStatus = string(c.Value)
		default:
			return fmt.Errorf("no field for status type %s", c.Type)
		}
	}
	order.UpdatedAt = time.Now()
	r.orders[id] = order
	return nil
}

// UpdatePricing writes the finalized pricing set of an order.
func (r *MockOrderRepository) UpdatePricing(id string, fp models.FinalPricing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	for i, item := range order.Items {
		if price, ok := fp.ItemFinalPrices[item.ProductID]; ok {
			order.Items[i].FinalPrice = decimal.NullDecimal{Decimal: price, Valid: true}
		}
	}
	order.FinalProductCost = fp.ProductCost
	order.FinalServiceCharge = fp.ServiceCharge
	order.FinalShippingCost = fp.ShippingCost
	order.FinalTax = fp.Tax
	order.FinalTotal = fp.Total
	order.FinalPricingUpdated = true
	order.UpdatedAt = time.Now()
	r.orders[id] = order
	return nil
}

// UpdatePaymentInfo stores gateway correlation ids and shipping address.
func (r *MockOrderRepository) UpdatePaymentInfo(id string, paymentIntentID, checkoutSessionID string, addr *models.ShippingAddress) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	if paymentIntentID != "" {
		order.StripePaymentIntentID = paymentIntentID
	}
	if checkoutSessionID != "" {
		order.StripeCheckoutSessionID = checkoutSessionID
	}
	if addr != nil {
		order.ShippingAddress = *addr
	}
	order.UpdatedAt = time.Now()
	r.orders[id] = order
	return nil
}
