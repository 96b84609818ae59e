package notifications

import (
	"context"
	"errors"
	"fmt"

	"unishopper/internal/models"
	"unishopper/internal/pricing"
	"unishopper/internal/workflow"
)

// Lifecycle email event names as configured in the email platform.
const (
	EventOrderConfirmation     = "Order Confirmation"
	EventPriceConfirmation     = "Price Confirmation"
	EventPaymentCompleted      = "Payment Completed"
	EventUsFacilityArrival     = "Arrived At US Facility"
	EventInternationalShipping = "International Shipping Started"
	EventBdWarehouseArrival    = "Arrived At BD Warehouse"
	EventDeliveryOptions       = "Delivery Options Available"
	EventPickupConfirmation    = "Pickup Confirmation"
	EventDeliveryConfirmation  = "Delivery Confirmation"
)

// Stage identifiers accepted by the admin send-email endpoint.
const (
	StageOrderConfirmation     = "order_confirmation"
	StagePriceConfirmation     = "price_confirmation"
	StagePaymentCompleted      = "payment_completed"
	StageUsFacilityArrival     = "us_facility_arrival"
	StageInternationalShipping = "international_shipping"
	StageBdWarehouseArrival    = "bd_warehouse_arrival"
	StageDeliveryOptions       = "delivery_options"
	StagePickupConfirmation    = "pickup_confirmation"
	StageDeliveryConfirmation  = "delivery_confirmation"
)

// ErrUnknownStage means the requested stage is not a known lifecycle email.
var ErrUnknownStage = errors.New("unknown email stage")

// PreconditionError reports a stage email requested while the order is not in
// the state the stage requires. It is returned before any dispatch happens.
type PreconditionError struct {
	Field    workflow.StatusType
	Current  workflow.Status
	Required workflow.Status
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("cannot send email: %s is %q, requires %q", e.Field, e.Current, e.Required)
}

// Service sends lifecycle emails with display amounts embedded.
type Service struct {
	client Client
}

// NewService creates the notification service around an email client.
func NewService(client Client) *Service {
	return &Service{client: client}
}

func (s *Service) send(ctx context.Context, event string, o *models.Order, extra map[string]interface{}) (string, error) {
	a := pricing.DisplayAmounts(o)
	props := map[string]interface{}{
		"order_id":       o.ID,
		"item_count":     len(o.Items),
		"product_cost":   a.ProductCost.String(),
		"service_charge": a.ServiceCharge.String(),
		"shipping_cost":  a.ShippingCost.String(),
		"tax":            a.Tax.String(),
		"total":          a.Total.String(),
		"total_usd":      a.TotalUSD.String(),
		"exchange_rate":  a.ExchangeRate.String(),
		"finalized":      a.Finalized,
	}
	for k, v := range extra {
		props[k] = v
	}
	return s.client.Track(ctx, event, o.CustomerEmail, props)
}

func (s *Service) SendOrderConfirmation(ctx context.Context, o *models.Order) (string, error) {
	return s.send(ctx, EventOrderConfirmation, o, nil)
}

func (s *Service) SendPriceConfirmation(ctx context.Context, o *models.Order) (string, error) {
	return s.send(ctx, EventPriceConfirmation, o, nil)
}

func (s *Service) SendPaymentCompleted(ctx context.Context, o *models.Order) (string, error) {
	return s.send(ctx, EventPaymentCompleted, o, nil)
}

func (s *Service) SendUsFacilityArrival(ctx context.Context, o *models.Order) (string, error) {
	return s.send(ctx, EventUsFacilityArrival, o, nil)
}

func (s *Service) SendInternationalShipping(ctx context.Context, o *models.Order) (string, error) {
	return s.send(ctx, EventInternationalShipping, o, nil)
}

func (s *Service) SendBdWarehouseArrival(ctx context.Context, o *models.Order) (string, error) {
	return s.send(ctx, EventBdWarehouseArrival, o, nil)
}

func (s *Service) SendDeliveryOptions(ctx context.Context, o *models.Order) (string, error) {
	return s.send(ctx, EventDeliveryOptions, o, nil)
}

// SendPickupConfirmation requires the order to already be routed for pickup.
func (s *Service) SendPickupConfirmation(ctx context.Context, o *models.Order) (string, error) {
	if current := workflow.Get(o, workflow.TypeDomesticFulfillment); current != workflow.DomesticPickup {
		return "", &PreconditionError{
			Field:    workflow.TypeDomesticFulfillment,
			Current:  current,
			Required: workflow.DomesticPickup,
		}
	}
	return s.send(ctx, EventPickupConfirmation, o, nil)
}

// SendDeliveryConfirmation requires the order to already be routed for home
// delivery.
func (s *Service) SendDeliveryConfirmation(ctx context.Context, o *models.Order) (string, error) {
	if current := workflow.Get(o, workflow.TypeDomesticFulfillment); current != workflow.DomesticDelivery {
		return "", &PreconditionError{
			Field:    workflow.TypeDomesticFulfillment,
			Current:  current,
			Required: workflow.DomesticDelivery,
		}
	}
	return s.send(ctx, EventDeliveryConfirmation, o, nil)
}

// SendStage dispatches a lifecycle email by its stage identifier.
func (s *Service) SendStage(ctx context.Context, stage string, o *models.Order) (string, error) {
	switch stage {
	case StageOrderConfirmation:
		return s.SendOrderConfirmation(ctx, o)
	case StagePriceConfirmation:
		return s.SendPriceConfirmation(ctx, o)
	case StagePaymentCompleted:
		return s.SendPaymentCompleted(ctx, o)
	case StageUsFacilityArrival:
		return s.SendUsFacilityArrival(ctx, o)
	case StageInternationalShipping:
		return s.SendInternationalShipping(ctx, o)
	case StageBdWarehouseArrival:
		return s.SendBdWarehouseArrival(ctx, o)
	case StageDeliveryOptions:
		return s.SendDeliveryOptions(ctx, o)
	case StagePickupConfirmation:
		return s.SendPickupConfirmation(ctx, o)
	case StageDeliveryConfirmation:
		return s.SendDeliveryConfirmation(ctx, o)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownStage, stage)
	}
}

// ForStatusChange maps a workflow field change to the stage email it should
// trigger, if any. The bool reports whether a stage applies.
func ForStatusChange(change workflow.Change) (string, bool) {
	switch {
	case change.Type == workflow.TypePayment && change.Value == workflow.PaymentPaid:
		return StagePaymentCompleted, true
	case change.Type == workflow.TypeShippedToUs && change.Value == workflow.StatusComplete:
		return StageUsFacilityArrival, true
	case change.Type == workflow.TypeShippedToBd && change.Value == workflow.StatusProcessing:
		return StageInternationalShipping, true
	case change.Type == workflow.TypeShippedToBd && change.Value == workflow.StatusComplete:
		return StageBdWarehouseArrival, true
	case change.Type == workflow.TypeDomesticFulfillment && change.Value == workflow.StatusProcessing:
		return StageDeliveryOptions, true
	}
	return "", false
}
