// Package workflow models the five coupled order status fields and the two
// auto-cascade rules that link them. The valid values and cascades are plain
// tables so the rules can be audited and tested in isolation instead of being
// buried in handler conditionals.
package workflow

import (
	"errors"
	"fmt"

	"unishopper/internal/models"
)

// StatusType names one of the five status fields on an order.
type StatusType string

const (
	TypePayment             StatusType = "paymentStatus"
	TypeShippedToUs         StatusType = "shippedToUsStatus"
	TypeShippedToBd         StatusType = "shippedToBdStatus"
	TypeDomesticFulfillment StatusType = "domesticFulfillmentStatus"
	TypeDelivered           StatusType = "deliveredStatus"
)

// Status is a value one of the status fields may hold.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusComplete   Status = "COMPLETE"

	PaymentPaid     Status = "PAID"
	PaymentFailed   Status = "FAILED"
	PaymentRefunded Status = "REFUNDED"

	DomesticPickup   Status = "PICKUP"
	DomesticDelivery Status = "DELIVERY"

	DeliveredPickupComplete   Status = "PICKUP_COMPLETE"
	DeliveredDeliveryComplete Status = "DELIVERY_COMPLETE"
)

// Business errors exported for handler status-code mapping.
var (
	ErrInvalidStatusType  = errors.New("invalid status type")
	ErrInvalidStatusValue = errors.New("invalid status value")
)

// validValues is the full enum per status field.
var validValues = map[StatusType][]Status{
	TypePayment:             {StatusPending, StatusProcessing, PaymentPaid, PaymentFailed, PaymentRefunded},
	TypeShippedToUs:         {StatusPending, StatusProcessing, StatusComplete},
	TypeShippedToBd:         {StatusPending, StatusProcessing, StatusComplete},
	TypeDomesticFulfillment: {StatusPending, StatusProcessing, DomesticPickup, DomesticDelivery},
	TypeDelivered:           {StatusPending, StatusProcessing, DeliveredPickupComplete, DeliveredDeliveryComplete},
}

// cascadeRule fires when a field is set to `when`: it additionally sets the
// `set` field to `to`. Each field has at most one rule, so an update mutates
// at most two fields.
type cascadeRule struct {
	when Status
	set  StatusType
	to   Status
}

var cascades = map[StatusType]cascadeRule{
	TypePayment:     {when: PaymentPaid, set: TypeShippedToUs, to: StatusProcessing},
	TypeShippedToBd: {when: StatusComplete, set: TypeDomesticFulfillment, to: StatusProcessing},
}

// Change records one field mutation produced by Apply.
type Change struct {
	Type  StatusType
	Value Status
}

// Valid reports whether value is in the enum for statusType.
func Valid(statusType StatusType, value Status) bool {
	for _, v := range validValues[statusType] {
		if v == value {
			return true
		}
	}
	return false
}

// Types returns the known status type names.
func Types() []StatusType {
	return []StatusType{TypePayment, TypeShippedToUs, TypeShippedToBd, TypeDomesticFulfillment, TypeDelivered}
}

// Values returns the enum for a status type.
func Values(statusType StatusType) []Status {
	return validValues[statusType]
}

// Apply validates (statusType, value), mutates exactly that field on the
// order, and applies at most one cascaded field per the cascade table. It
// returns every field it changed, primary first. The order is untouched when
// an error is returned.
func Apply(o *models.Order, statusType StatusType, value Status) ([]Change, error) {
	if _, ok := validValues[statusType]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatusType, statusType)
	}
	if !Valid(statusType, value) {
		return nil, fmt.Errorf("%w: %q is not a valid %s", ErrInvalidStatusValue, value, statusType)
	}

	setField(o, statusType, value)
	changes := []Change{{Type: statusType, Value: value}}

	if rule, ok := cascades[statusType]; ok && value == rule.when {
		setField(o, rule.set, rule.to)
		changes = append(changes, Change{Type: rule.set, Value: rule.to})
	}
	return changes, nil
}

// Get returns the current value of a status field.
func Get(o *models.Order, statusType StatusType) Status {
	switch statusType {
	case TypePayment:
		return Status(o.PaymentStatus)
	case TypeShippedToUs:
		return Status(o.ShippedToUsStatus)
	case TypeShippedToBd:
		return Status(o.ShippedToBdStatus)
	case TypeDomesticFulfillment:
		return Status(o.DomesticFulfillmentStatus)
	case TypeDelivered:
		return Status(o.DeliveredStatus)
	}
	return ""
}

func setField(o *models.Order, statusType StatusType, value Status) {
	switch statusType {
	case TypePayment:
		o.PaymentStatus = string(value)
	case TypeShippedToUs:
		o.ShippedToUsStatus = string(value)
	case TypeShippedToBd:
		o.ShippedToBdStatus = string(value)
	case TypeDomesticFulfillment:
		o.DomesticFulfillmentStatus = string(value)
	case TypeDelivered:
		o.DeliveredStatus = string(value)
	}
}
