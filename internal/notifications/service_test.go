package notifications_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"unishopper/internal/models"
	"unishopper/internal/notifications"
	"unishopper/internal/workflow"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockClient is a mock implementation of notifications.Client.
type MockClient struct {
	mock.Mock
}

func (m *MockClient) Track(ctx context.Context, event, email string, properties map[string]interface{}) (string, error) {
	args := m.Called(ctx, event, email, properties)
	return args.String(0), args.Error(1)
}

func testOrder() *models.Order {
	return &models.Order{
		ID:                        "order-1",
		CustomerEmail:             "rahim@example.com",
		ProductCostBDT:            decimal.RequireFromString("24300"),
		TotalBDT:                  decimal.RequireFromString("27672"),
		ExchangeRate:              decimal.RequireFromString("121.5"),
		PaymentStatus:             "PAID",
		ShippedToUsStatus:         "COMPLETE",
		ShippedToBdStatus:         "COMPLETE",
		DomesticFulfillmentStatus: "PROCESSING",
		DeliveredStatus:           "PENDING",
	}
}

func TestSendPickupConfirmation_PreconditionMismatch(t *testing.T) {
	client := new(MockClient)
	svc := notifications.NewService(client)

	o := testOrder() // domesticFulfillmentStatus is PROCESSING, not PICKUP
	_, err := svc.SendPickupConfirmation(context.Background(), o)

	var pre *notifications.PreconditionError
	assert.ErrorAs(t, err, &pre)
	assert.Equal(t, workflow.TypeDomesticFulfillment, pre.Field)
	assert.Equal(t, workflow.Status("PROCESSING"), pre.Current)
	assert.Equal(t, workflow.DomesticPickup, pre.Required)
	assert.Contains(t, err.Error(), `domesticFulfillmentStatus is "PROCESSING", requires "PICKUP"`)

	// No dispatch may happen on a precondition failure.
	client.AssertNotCalled(t, "Track", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSendPickupConfirmation_Sends(t *testing.T) {
	client := new(MockClient)
	svc := notifications.NewService(client)

	o := testOrder()
	o.DomesticFulfillmentStatus = "PICKUP"

	client.On("Track", mock.Anything, notifications.EventPickupConfirmation, "rahim@example.com", mock.Anything).
		Return("evt-1", nil).Once()

	eventID, err := svc.SendPickupConfirmation(context.Background(), o)
	assert.NoError(t, err)
	assert.Equal(t, "evt-1", eventID)
	client.AssertExpectations(t)
}

func TestSendDeliveryConfirmation_Precondition(t *testing.T) {
	client := new(MockClient)
	svc := notifications.NewService(client)

	o := testOrder()
	o.DomesticFulfillmentStatus = "PICKUP"

	_, err := svc.SendDeliveryConfirmation(context.Background(), o)
	var pre *notifications.PreconditionError
	assert.ErrorAs(t, err, &pre)
	assert.Equal(t, workflow.DomesticDelivery, pre.Required)
	client.AssertNotCalled(t, "Track", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSend_EmbedsDisplayAmounts(t *testing.T) {
	client := new(MockClient)
	svc := notifications.NewService(client)

	o := testOrder()
	client.On("Track", mock.Anything, notifications.EventOrderConfirmation, "rahim@example.com",
		mock.MatchedBy(func(props map[string]interface{}) bool {
			return props["order_id"] == "order-1" &&
				props["total"] == "27672" &&
				props["total_usd"] == "227.75"
		})).Return("evt-2", nil).Once()

	_, err := svc.SendOrderConfirmation(context.Background(), o)
	assert.NoError(t, err)
	client.AssertExpectations(t)
}

func TestSendStage_Unknown(t *testing.T) {
	svc := notifications.NewService(new(MockClient))
	_, err := svc.SendStage(context.Background(), "victory_lap", testOrder())
	assert.ErrorIs(t, err, notifications.ErrUnknownStage)
}

func TestForStatusChange(t *testing.T) {
	stage, ok := notifications.ForStatusChange(workflow.Change{Type: workflow.TypePayment, Value: workflow.PaymentPaid})
	assert.True(t, ok)
	assert.Equal(t, notifications.StagePaymentCompleted, stage)

	stage, ok = notifications.ForStatusChange(workflow.Change{Type: workflow.TypeShippedToBd, Value: workflow.StatusComplete})
	assert.True(t, ok)
	assert.Equal(t, notifications.StageBdWarehouseArrival, stage)

	_, ok = notifications.ForStatusChange(workflow.Change{Type: workflow.TypeDelivered, Value: workflow.StatusProcessing})
	assert.False(t, ok)
}

func TestKlaviyoClient_Track(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/track", r.URL.Path)
		w.Write([]byte(`{"success":true,"event_id":"evt-9"}`))
	}))
	defer server.Close()

	c := notifications.NewKlaviyoClient(server.URL, "pk_test")
	eventID, err := c.Track(context.Background(), "Order Confirmation", "rahim@example.com", map[string]interface{}{"order_id": "order-1"})

	assert.NoError(t, err)
	assert.Equal(t, "evt-9", eventID)
}

func TestKlaviyoClient_TrackRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"error":"unknown token"}`))
	}))
	defer server.Close()

	c := notifications.NewKlaviyoClient(server.URL, "bad")
	_, err := c.Track(context.Background(), "Order Confirmation", "rahim@example.com", nil)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown token")
}
