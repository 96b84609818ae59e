package services_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"unishopper/internal/currency"
	"unishopper/internal/models"
	"unishopper/internal/notifications"
	"unishopper/internal/payments"
	"unishopper/internal/repositories"
	"unishopper/internal/services"
	"unishopper/internal/workflow"
	"unishopper/pkg/rabbitmq"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockEmailClient is a mock implementation of notifications.Client.
type MockEmailClient struct {
	mock.Mock
}

func (m *MockEmailClient) Track(ctx context.Context, event, email string, properties map[string]interface{}) (string, error) {
	args := m.Called(ctx, event, email, properties)
	return args.String(0), args.Error(1)
}

// MockPublisher is a mock implementation of services.EventPublisher.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishOrderCreated(evt rabbitmq.OrderCreatedEvent) error {
	args := m.Called(evt)
	return args.Error(0)
}

func (m *MockPublisher) PublishOrderStatusUpdated(evt rabbitmq.OrderStatusUpdatedEvent) error {
	args := m.Called(evt)
	return args.Error(0)
}

type orderFixture struct {
	orderRepo *repositories.MockOrderRepository
	userRepo  *MockUserRepository
	email     *MockEmailClient
	publisher *MockPublisher
	service   *services.OrderService
}

func newOrderFixture() *orderFixture {
	f := &orderFixture{
		orderRepo: repositories.NewMockOrderRepository(),
		userRepo:  new(MockUserRepository),
		email:     new(MockEmailClient),
		publisher: new(MockPublisher),
	}
	f.service = services.NewOrderService(
		f.orderRepo,
		f.userRepo,
		notifications.NewService(f.email),
		f.publisher,
		currency.StaticRateProvider{"BDT": decimal.RequireFromString("121.5")},
	)
	return f
}

func (f *orderFixture) allowSideEffects() {
	f.email.On("Track", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("evt", nil).Maybe()
	f.publisher.On("PublishOrderCreated", mock.Anything).Return(nil).Maybe()
	f.publisher.On("PublishOrderStatusUpdated", mock.Anything).Return(nil).Maybe()
}

func (f *orderFixture) seedOrder(t *testing.T) *models.Order {
	order := &models.Order{
		ID:                        "order-1",
		UserID:                    "user-1",
		CustomerEmail:             "rahim@example.com",
		PaymentStatus:             "PENDING",
		ShippedToUsStatus:         "PENDING",
		ShippedToBdStatus:         "PENDING",
		DomesticFulfillmentStatus: "PENDING",
		DeliveredStatus:           "PENDING",
		Items: models.OrderItems{
			{ProductID: "p1", Title: "Echo Dot", Quantity: 2, UnitPriceBDT: decimal.RequireFromString("6074.39")},
		},
		TotalBDT:     decimal.RequireFromString("13848"),
		ExchangeRate: decimal.RequireFromString("121.5"),
	}
	assert.NoError(t, f.orderRepo.Create(order))
	return order
}

func TestOrderService_Checkout(t *testing.T) {
	f := newOrderFixture()
	f.allowSideEffects()

	order, err := f.service.Checkout(context.Background(), services.CheckoutInput{
		UserID: "user-1",
		Email:  "rahim@example.com",
		Items: []services.CheckoutItem{
			{ProductID: "p1", Title: "Echo Dot", PriceUSD: decimal.RequireFromString("100"), Quantity: 2},
		},
	})

	assert.NoError(t, err)
	assert.Equal(t, "PENDING", order.PaymentStatus)
	assert.Equal(t, "PENDING", order.ShippedToUsStatus)
	// 100 USD * 121.5 = 12150 BDT per unit, subtotal 24300, 5% -> 1215,
	// 8.875% -> 2157 (rounded), shipping disabled.
	assert.True(t, order.ProductCostBDT.Equal(decimal.RequireFromString("24300")))
	assert.True(t, order.ServiceCharge.Equal(decimal.RequireFromString("1215")))
	assert.True(t, order.ShippingCostBDT.IsZero())
	assert.True(t, order.Tax.Equal(decimal.RequireFromString("2157")))
	assert.True(t, order.TotalBDT.Equal(decimal.RequireFromString("27672")))
	assert.True(t, order.ExchangeRate.Equal(decimal.RequireFromString("121.5")))

	stored, err := f.orderRepo.GetByID(order.ID)
	assert.NoError(t, err)
	assert.Equal(t, "user-1", stored.UserID)
}

func TestOrderService_CheckoutSynthesizesGuest(t *testing.T) {
	f := newOrderFixture()
	f.allowSideEffects()
	f.userRepo.On("Create", mock.MatchedBy(func(u *models.User) bool {
		return u.IsGuest && u.Email != ""
	})).Return(nil).Once()

	order, err := f.service.Checkout(context.Background(), services.CheckoutInput{
		Items: []services.CheckoutItem{
			{ProductID: "p1", Title: "Echo Dot", PriceUSD: decimal.RequireFromString("10"), Quantity: 1},
		},
	})

	assert.NoError(t, err)
	assert.NotEmpty(t, order.UserID)
	assert.Contains(t, order.CustomerEmail, "@guest.unishopper.com")
	f.userRepo.AssertExpectations(t)
}

func TestOrderService_UpdateStatus_PaidCascades(t *testing.T) {
	f := newOrderFixture()
	f.allowSideEffects()
	f.seedOrder(t)

	order, err := f.service.UpdateStatus(context.Background(), "order-1", "paymentStatus", "PAID")
	assert.NoError(t, err)
	assert.Equal(t, "PAID", order.PaymentStatus)
	assert.Equal(t, "PROCESSING", order.ShippedToUsStatus)

	stored, _ := f.orderRepo.GetByID("order-1")
	assert.Equal(t, "PAID", stored.PaymentStatus)
	assert.Equal(t, "PROCESSING", stored.ShippedToUsStatus)
	assert.Equal(t, "PENDING", stored.ShippedToBdStatus)
	assert.Equal(t, "PENDING", stored.DomesticFulfillmentStatus)
	assert.Equal(t, "PENDING", stored.DeliveredStatus)
}

func TestOrderService_UpdateStatus_InvalidValueLeavesRowUnmodified(t *testing.T) {
	f := newOrderFixture()
	f.allowSideEffects()
	f.seedOrder(t)

	_, err := f.service.UpdateStatus(context.Background(), "order-1", "shippedToUsStatus", "PAID")
	assert.ErrorIs(t, err, workflow.ErrInvalidStatusValue)

	stored, _ := f.orderRepo.GetByID("order-1")
	assert.Equal(t, "PENDING", stored.ShippedToUsStatus)
	assert.Equal(t, "PENDING", stored.PaymentStatus)
}

func TestOrderService_UpdateStatus_InvalidType(t *testing.T) {
	f := newOrderFixture()
	f.allowSideEffects()
	f.seedOrder(t)

	_, err := f.service.UpdateStatus(context.Background(), "order-1", "warehouseStatus", "PROCESSING")
	assert.ErrorIs(t, err, workflow.ErrInvalidStatusType)
}

func TestOrderService_UpdateStatus_OrderNotFound(t *testing.T) {
	f := newOrderFixture()
	f.allowSideEffects()

	_, err := f.service.UpdateStatus(context.Background(), "missing", "paymentStatus", "PAID")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestOrderService_UpdateStatus_EmailFailureDoesNotFailMutation(t *testing.T) {
	f := newOrderFixture()
	f.publisher.On("PublishOrderStatusUpdated", mock.Anything).Return(nil).Maybe()
	f.email.On("Track", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("", fmt.Errorf("email platform is down")).Maybe()
	f.seedOrder(t)

	order, err := f.service.UpdateStatus(context.Background(), "order-1", "paymentStatus", "PAID")
	assert.NoError(t, err)
	assert.Equal(t, "PAID", order.PaymentStatus)

	stored, _ := f.orderRepo.GetByID("order-1")
	assert.Equal(t, "PAID", stored.PaymentStatus)
}

func TestOrderService_UpdateStatus_PublishesEachChange(t *testing.T) {
	f := newOrderFixture()
	f.email.On("Track", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("evt", nil).Maybe()
	f.publisher.On("PublishOrderStatusUpdated", mock.MatchedBy(func(evt rabbitmq.OrderStatusUpdatedEvent) bool {
		return evt.OrderID == "order-1" && evt.StatusType == "paymentStatus" && evt.Value == "PAID"
	})).Return(nil).Once()
	f.publisher.On("PublishOrderStatusUpdated", mock.MatchedBy(func(evt rabbitmq.OrderStatusUpdatedEvent) bool {
		return evt.OrderID == "order-1" && evt.StatusType == "shippedToUsStatus" && evt.Value == "PROCESSING"
	})).Return(nil).Once()
	f.seedOrder(t)

	_, err := f.service.UpdateStatus(context.Background(), "order-1", "paymentStatus", "PAID")
	assert.NoError(t, err)
	f.publisher.AssertExpectations(t)
}

func TestOrderService_ApplyWebhookEvent_PaymentSucceeded(t *testing.T) {
	f := newOrderFixture()
	f.allowSideEffects()
	f.seedOrder(t)

	raw := `{
		"id": "evt_1",
		"type": "payment_intent.succeeded",
		"data": {"object": {
			"id": "pi_123",
			"metadata": {"orderId": "order-1"},
			"shipping": {
				"name": "Rahim Uddin",
				"phone": "+8801700000000",
				"address": {"line1": "House 7, Road 11", "city": "Dhaka", "postal_code": "1209", "country": "BD"}
			}
		}}
	}`
	var ev payments.Event
	assert.NoError(t, json.Unmarshal([]byte(raw), &ev))

	assert.NoError(t, f.service.ApplyWebhookEvent(context.Background(), &ev))

	stored, _ := f.orderRepo.GetByID("order-1")
	assert.Equal(t, "PAID", stored.PaymentStatus)
	assert.Equal(t, "PROCESSING", stored.ShippedToUsStatus)
	assert.Equal(t, "pi_123", stored.StripePaymentIntentID)
	assert.Equal(t, "Rahim Uddin", stored.ShippingAddress.Name)
	assert.Equal(t, "Dhaka", stored.ShippingAddress.City)
}

func TestOrderService_ApplyWebhookEvent_CheckoutExpired(t *testing.T) {
	f := newOrderFixture()
	f.allowSideEffects()
	f.seedOrder(t)

	ev := &payments.Event{
		ID:   "evt_2",
		Type: payments.EventCheckoutExpired,
		Data: payments.EventData{Object: payments.EventObject{
			ID:       "cs_123",
			Metadata: map[string]string{"orderId": "order-1"},
		}},
	}

	assert.NoError(t, f.service.ApplyWebhookEvent(context.Background(), ev))

	stored, _ := f.orderRepo.GetByID("order-1")
	assert.Equal(t, "FAILED", stored.PaymentStatus)
	assert.Equal(t, "PENDING", stored.ShippedToUsStatus)
}

func TestOrderService_ApplyWebhookEvent_MissingOrderID(t *testing.T) {
	f := newOrderFixture()
	f.allowSideEffects()

	ev := &payments.Event{ID: "evt_3", Type: payments.EventPaymentIntentSucceeded}
	err := f.service.ApplyWebhookEvent(context.Background(), ev)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no orderId metadata")
}

func TestOrderService_UpdatePricing(t *testing.T) {
	f := newOrderFixture()
	f.allowSideEffects()
	f.seedOrder(t)

	fp := models.FinalPricing{
		Total:           decimal.NewNullDecimal(decimal.RequireFromString("14000")),
		ItemFinalPrices: map[string]decimal.Decimal{"p1": decimal.RequireFromString("6000")},
	}

	order, err := f.service.UpdatePricing(context.Background(), "order-1", fp)
	assert.NoError(t, err)
	assert.True(t, order.FinalPricingUpdated)
	assert.True(t, order.FinalTotal.Valid)
	assert.True(t, order.Items[0].FinalPrice.Valid)
	assert.True(t, order.Items[0].FinalPrice.Decimal.Equal(decimal.RequireFromString("6000")))
}

func TestOrderService_GetOrderForUser_Ownership(t *testing.T) {
	f := newOrderFixture()
	f.seedOrder(t)

	_, err := f.service.GetOrderForUser("order-1", "someone-else")
	assert.ErrorIs(t, err, services.ErrForbidden)

	order, err := f.service.GetOrderForUser("order-1", "user-1")
	assert.NoError(t, err)
	assert.Equal(t, "order-1", order.ID)
}

func TestOrderService_SendStageEmail_PreconditionPropagates(t *testing.T) {
	f := newOrderFixture()
	f.seedOrder(t)

	_, err := f.service.SendStageEmail(context.Background(), "order-1", notifications.StagePickupConfirmation)
	var pre *notifications.PreconditionError
	assert.ErrorAs(t, err, &pre)
	f.email.AssertNotCalled(t, "Track", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
