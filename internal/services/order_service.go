package services

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"unishopper/internal/currency"
	"unishopper/internal/models"
	"unishopper/internal/notifications"
	"unishopper/internal/payments"
	"unishopper/internal/pricing"
	"unishopper/internal/repositories"
	"unishopper/internal/workflow"
	"unishopper/pkg/rabbitmq"
)

// EventPublisher publishes order lifecycle events to the message broker.
type EventPublisher interface {
	PublishOrderCreated(evt rabbitmq.OrderCreatedEvent) error
	PublishOrderStatusUpdated(evt rabbitmq.OrderStatusUpdatedEvent) error
}

// OrderService handles checkout, the fulfillment status workflow, pricing
// finalization and webhook application. Email sends and event publishes that
// follow a committed row write are best-effort: failures are logged and never
// propagated as an order-mutation failure.
type OrderService struct {
	orderRepo repositories.OrderRepository
	userRepo  repositories.UserRepository
	notifier  *notifications.Service
	publisher EventPublisher
	rates     currency.RateProvider
}

// NewOrderService creates a new OrderService.
func NewOrderService(
	orderRepo repositories.OrderRepository,
	userRepo repositories.UserRepository,
	notifier *notifications.Service,
	publisher EventPublisher,
	rates currency.RateProvider,
) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		userRepo:  userRepo,
		notifier:  notifier,
		publisher: publisher,
		rates:     rates,
	}
}

// CheckoutItem is one cart line submitted at checkout.
type CheckoutItem struct {
	ProductID   string          `json:"product_id" validate:"required"`
	Title       string          `json:"title" validate:"required"`
	URL         string          `json:"url" validate:"omitempty,url"`
	Image       string          `json:"image"`
	Marketplace string          `json:"marketplace"`
	PriceUSD    decimal.Decimal `json:"price_usd"`
	Quantity    int             `json:"quantity" validate:"required,gt=0"`
}

// CheckoutInput is the request to create an order. An empty UserID means a
// guest checkout; a guest User row is synthesized.
type CheckoutInput struct {
	UserID          string                 `json:"user_id"`
	Email           string                 `json:"email" validate:"omitempty,email"`
	Items           []CheckoutItem         `json:"items" validate:"required,min=1,dive"`
	ShippingAddress models.ShippingAddress `json:"shipping_address"`
}

// Checkout converts the cart to BDT, computes the fee estimate and creates a
// PENDING order.
func (s *OrderService) Checkout(ctx context.Context, input CheckoutInput) (*models.Order, error) {
	rate, err := s.rates.Rate(ctx, "BDT")
	if err != nil {
		log.Printf("Checkout: rate lookup failed, using default: %v", err)
		rate = pricing.DefaultExchangeRate
	}

	items := make(models.OrderItems, 0, len(input.Items))
	cartItems := make([]pricing.CartItem, 0, len(input.Items))
	for _, in := range input.Items {
		priceBDT := in.PriceUSD.Mul(rate).Round(2)
		items = append(items, models.OrderItem{
			ProductID:    in.ProductID,
			Title:        in.Title,
			URL:          in.URL,
			Image:        in.Image,
			Marketplace:  in.Marketplace,
			Quantity:     in.Quantity,
			UnitPriceUSD: in.PriceUSD,
			UnitPriceBDT: priceBDT,
		})
		cartItems = append(cartItems, pricing.CartItem{Price: priceBDT, Quantity: in.Quantity})
	}
	totals := pricing.CalculateCartTotals(cartItems)

	userID := input.UserID
	email := input.Email
	if userID == "" {
		guest, err := s.createGuest(email)
		if err != nil {
			return nil, err
		}
		userID = guest.ID
		email = guest.Email
	}

	order := &models.Order{
		ID:                        uuid.New().String(),
		UserID:                    userID,
		CustomerEmail:             email,
		Items:                     items,
		ProductCostBDT:            totals.Subtotal,
		ServiceCharge:             totals.ServiceCharge,
		ShippingCostBDT:           totals.ShippingCost,
		Tax:                       totals.Tax,
		TotalBDT:                  totals.Total,
		ExchangeRate:              rate,
		PaymentStatus:             string(workflow.StatusPending),
		ShippedToUsStatus:         string(workflow.StatusPending),
		ShippedToBdStatus:         string(workflow.StatusPending),
		DomesticFulfillmentStatus: string(workflow.StatusPending),
		DeliveredStatus:           string(workflow.StatusPending),
		ShippingAddress:           input.ShippingAddress,
	}

	if err := s.orderRepo.Create(order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if s.publisher != nil {
		err := s.publisher.PublishOrderCreated(rabbitmq.OrderCreatedEvent{
			OrderID:  order.ID,
			UserID:   order.UserID,
			Total:    order.TotalBDT.String(),
			Currency: "BDT",
		})
		if err != nil {
			log.Printf("Warning: failed to publish order created event for order %s: %v", order.ID, err)
		}
	}

	if _, err := s.notifier.SendOrderConfirmation(ctx, order); err != nil {
		log.Printf("Warning: order confirmation email failed for order %s: %v", order.ID, err)
	}

	return order, nil
}

// createGuest synthesizes a User row for a guest checkout. Guests without an
// email get a placeholder address.
func (s *OrderService) createGuest(email string) (*models.User, error) {
	if email == "" {
		email = fmt.Sprintf("guest-%s@guest.unishopper.com", uuid.New().String())
	}
	guest := &models.User{
		ID:      uuid.New().String(),
		Email:   email,
		IsGuest: true,
	}
	if err := s.userRepo.Create(guest); err != nil {
		return nil, fmt.Errorf("failed to create guest user: %w", err)
	}
	return guest, nil
}

// GetOrder retrieves an order without ownership restriction (admin paths).
func (s *OrderService) GetOrder(id string) (*models.Order, error) {
	return s.orderRepo.GetByID(id)
}

// GetAllOrders retrieves every order (admin paths).
func (s *OrderService) GetAllOrders() ([]models.Order, error) {
	return s.orderRepo.GetAll()
}

// GetOrderForUser retrieves an order and enforces ownership.
func (s *OrderService) GetOrderForUser(id, userID string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, fmt.Errorf("order %s: %w", id, ErrForbidden)
	}
	return order, nil
}

// ListOrdersForUser retrieves the orders owned by a user.
func (s *OrderService) ListOrdersForUser(userID string) ([]models.Order, error) {
	return s.orderRepo.GetByUserID(userID)
}

// UpdateStatus validates and applies one workflow transition, persists the
// changed fields, and fires the associated events and stage email. The email
// send and event publish never fail the mutation once the row committed.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID, statusType, value string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}

	changes, err := workflow.Apply(order, workflow.StatusType(statusType), workflow.Status(value))
	if err != nil {
		return nil, err
	}

	if err := s.orderRepo.UpdateStatuses(orderID, changes); err != nil {
		return nil, err
	}

	s.afterStatusChanges(ctx, order, changes)
	return order, nil
}

func (s *OrderService) afterStatusChanges(ctx context.Context, order *models.Order, changes []workflow.Change) {
	for _, c := range changes {
		if s.publisher != nil {
			err := s.publisher.PublishOrderStatusUpdated(rabbitmq.OrderStatusUpdatedEvent{
				OrderID:    order.ID,
				StatusType: string(c.Type),
				Value:      string(c.Value),
			})
			if err != nil {
				log.Printf("Warning: failed to publish status update event for order %s: %v", order.ID, err)
			}
		}
		if stage, ok := notifications.ForStatusChange(c); ok {
			if _, err := s.notifier.SendStage(ctx, stage, order); err != nil {
				log.Printf("Warning: %s email failed for order %s: %v", stage, order.ID, err)
			}
		}
	}
}

// UpdatePricing writes the admin-confirmed pricing set and sends the price
// confirmation email best-effort.
func (s *OrderService) UpdatePricing(ctx context.Context, orderID string, fp models.FinalPricing) (*models.Order, error) {
	if err := s.orderRepo.UpdatePricing(orderID, fp); err != nil {
		return nil, err
	}
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if _, err := s.notifier.SendPriceConfirmation(ctx, order); err != nil {
		log.Printf("Warning: price confirmation email failed for order %s: %v", order.ID, err)
	}
	return order, nil
}

// SendStageEmail dispatches a lifecycle email for an order. Precondition
// mismatches propagate to the caller; nothing is sent in that case.
func (s *OrderService) SendStageEmail(ctx context.Context, orderID, stage string) (string, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return "", err
	}
	return s.notifier.SendStage(ctx, stage, order)
}

// ApplyWebhookEvent dispatches a verified payment gateway event onto the
// order it correlates to. Re-delivery re-applies the same field writes.
func (s *OrderService) ApplyWebhookEvent(ctx context.Context, ev *payments.Event) error {
	orderID := ev.OrderID()
	if orderID == "" {
		return fmt.Errorf("webhook event %s carries no orderId metadata", ev.ID)
	}

	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return err
	}

	obj := ev.Data.Object
	switch ev.Type {
	case payments.EventPaymentIntentSucceeded:
		return s.markPaid(ctx, order, obj.ID, "", shippingFromEvent(&obj))
	case payments.EventCheckoutCompleted:
		return s.markPaid(ctx, order, obj.PaymentIntent, obj.ID, shippingFromEvent(&obj))
	case payments.EventPaymentIntentFailed, payments.EventCheckoutExpired:
		changes, err := workflow.Apply(order, workflow.TypePayment, workflow.PaymentFailed)
		if err != nil {
			return err
		}
		if err := s.orderRepo.UpdateStatuses(order.ID, changes); err != nil {
			return err
		}
		s.afterStatusChanges(ctx, order, changes)
		return nil
	default:
		log.Printf("Ignoring unhandled webhook event type %s", ev.Type)
		return nil
	}
}

func (s *OrderService) markPaid(ctx context.Context, order *models.Order, paymentIntentID, checkoutSessionID string, addr *models.ShippingAddress) error {
	changes, err := workflow.Apply(order, workflow.TypePayment, workflow.PaymentPaid)
	if err != nil {
		return err
	}
	if err := s.orderRepo.UpdateStatuses(order.ID, changes); err != nil {
		return err
	}
	if err := s.orderRepo.UpdatePaymentInfo(order.ID, paymentIntentID, checkoutSessionID, addr); err != nil {
		return err
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
	s.afterStatusChanges(ctx, order, changes)
	return nil
}

// shippingFromEvent extracts a shipping address from either the payment
// intent's shipping block or the checkout session's customer details.
func shippingFromEvent(obj *payments.EventObject) *models.ShippingAddress {
	var name, phone string
	var src *payments.StripeAddress
	switch {
	case obj.Shipping != nil:
		name, phone, src = obj.Shipping.Name, obj.Shipping.Phone, &obj.Shipping.Address
	case obj.CustomerDetails != nil:
		name, phone, src = obj.CustomerDetails.Name, obj.CustomerDetails.Phone, &obj.CustomerDetails.Address
	default:
		return nil
	}
	return &models.ShippingAddress{
		Name:       name,
		Phone:      phone,
		Line1:      src.Line1,
		Line2:      src.Line2,
		City:       src.City,
		State:      src.State,
		PostalCode: src.PostalCode,
		Country:    src.Country,
	}
}
