package handlers

import (
	"encoding/json"
	"errors"
	"log"

	"unishopper/internal/payments"
	"unishopper/internal/repositories"
	"unishopper/internal/services"

	"github.com/gofiber/fiber/v2"
)

// WebhookHandler handles payment gateway webhook deliveries.
type WebhookHandler struct {
	orderService  *services.OrderService
	webhookSecret string
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(orderService *services.OrderService, webhookSecret string) *WebhookHandler {
	return &WebhookHandler{
		orderService:  orderService,
		webhookSecret: webhookSecret,
	}
}

// RegisterRoutes registers the webhook routes with the Fiber app.
func (h *WebhookHandler) RegisterRoutes(router fiber.Router) {
	webhookRoutes := router.Group("/webhooks")
	webhookRoutes.Post("/stripe", h.HandleStripeWebhook)
}

// HandleStripeWebhook verifies the delivery signature against the raw body,
// then applies the event to the order it references. A 2xx response stops the
// gateway from retrying, so transient failures return 500 to get the event
// redelivered.
func (h *WebhookHandler) HandleStripeWebhook(c *fiber.Ctx) error {
	payload := c.Body()
	signature := c.Get("Stripe-Signature")

	if err := payments.VerifySignature(payload, signature, h.webhookSecret); err != nil {
		log.Printf("Webhook signature rejected: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid signature",
		})
	}

	var event payments.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		log.Printf("Error parsing webhook payload: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid payload",
		})
	}

	if err := h.orderService.ApplyWebhookEvent(c.Context(), &event); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			// The order is gone; retrying will not help.
			log.Printf("Webhook event %s references unknown order, ignoring: %v", event.ID, err)
			return c.JSON(fiber.Map{"received": true, "ignored": true})
		}
		log.Printf("Error applying webhook event %s: %v", event.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not process event",
		})
	}

	return c.JSON(fiber.Map{"received": true})
}
