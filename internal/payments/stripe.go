// Package payments holds the Stripe webhook contract: the event envelope
// fields the platform reads and the signature scheme verification.
package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Event types dispatched by the webhook handler.
const (
	EventPaymentIntentSucceeded = "payment_intent.succeeded"
	EventCheckoutCompleted      = "checkout.session.completed"
	EventCheckoutExpired        = "checkout.session.expired"
	EventPaymentIntentFailed    = "payment_intent.payment_failed"
)

// DefaultTolerance bounds how old a signed webhook timestamp may be.
const DefaultTolerance = 5 * time.Minute

var (
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrSignatureExpired = errors.New("webhook signature timestamp outside tolerance")
)

// Event is the envelope of a Stripe webhook delivery, reduced to the fields
// this platform consumes.
type Event struct {
	ID   string    `json:"id"`
	Type string    `json:"type"`
	Data EventData `json:"data"`
}

type EventData struct {
	Object EventObject `json:"object"`
}

// EventObject covers both payment_intent and checkout.session payloads; only
// the fields relevant to the event type are populated.
type EventObject struct {
	ID              string            `json:"id"`
	Metadata        map[string]string `json:"metadata"`
	PaymentIntent   string            `json:"payment_intent"`
	Shipping        *ShippingDetails  `json:"shipping"`
	CustomerDetails *CustomerDetails  `json:"customer_details"`
}

type ShippingDetails struct {
	Name    string        `json:"name"`
	Phone   string        `json:"phone"`
	Address StripeAddress `json:"address"`
}

type CustomerDetails struct {
	Name    string        `json:"name"`
	Email   string        `json:"email"`
	Phone   string        `json:"phone"`
	Address StripeAddress `json:"address"`
}

type StripeAddress struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// OrderID returns the correlation value linking the event to an order.
func (e *Event) OrderID() string {
	return e.Data.Object.Metadata["orderId"]
}

// SignPayload produces a Stripe-Signature header value for a payload. Used by
// tests and local tooling to build verifiable deliveries.
func SignPayload(payload []byte, secret string, at time.Time) string {
	ts := strconv.FormatInt(at.Unix(), 10)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(payload)
	return fmt.Sprintf("t=%s,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

// VerifySignature checks a Stripe-Signature header (t=...,v1=... scheme)
// against the shared webhook secret with the default tolerance window.
func VerifySignature(payload []byte, header, secret string) error {
	return VerifySignatureAt(payload, header, secret, DefaultTolerance, time.Now())
}

// VerifySignatureAt is VerifySignature with an injected clock and tolerance.
func VerifySignatureAt(payload []byte, header, secret string, tolerance time.Duration, now time.Time) error {
	var ts string
	var sigs []string
	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			ts = kv[1]
		case "v1":
			sigs = append(sigs, kv[1])
		}
	}
	if ts == "" || len(sigs) == 0 {
		return fmt.Errorf("%w: malformed header", ErrInvalidSignature)
	}

	unix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: bad timestamp", ErrInvalidSignature)
	}
	at := time.Unix(unix, 0)
	if now.Sub(at) > tolerance || at.Sub(now) > tolerance {
		return ErrSignatureExpired
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, sig := range sigs {
		if hmac.Equal([]byte(expected), []byte(sig)) {
			return nil
		}
	}
	return ErrInvalidSignature
}
