package handlers

import (
	"errors"
	"log"

	"unishopper/internal/pricing"
	"unishopper/internal/repositories"
	"unishopper/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// OrderHandler handles the customer-facing order routes: checkout, order
// listing and the cart totals preview.
type OrderHandler struct {
	service  *services.OrderService
	validate *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the order routes with the Fiber app. Checkout and
// the cart preview run behind optional auth so guests can order; reading
// orders requires a logged-in customer.
func (h *OrderHandler) RegisterRoutes(router fiber.Router, auth, optionalAuth fiber.Handler) {
	router.Post("/cart/totals", h.HandleCartTotals)

	orderRoutes := router.Group("/orders")
	orderRoutes.Post("/", optionalAuth, h.HandleCheckout)
	orderRoutes.Get("/", auth, h.HandleGetOrders)
	orderRoutes.Get("/:id", auth, h.HandleGetOrderByID)
}

// CartTotalsRequest represents the cart preview request. Prices are BDT unit
// prices.
type CartTotalsRequest struct {
	Items []struct {
		Price    decimal.Decimal `json:"price" validate:"required"`
		Quantity int             `json:"quantity" validate:"required,gt=0"`
	} `json:"items" validate:"required,min=1,dive"`
}

// HandleCartTotals computes the fee breakdown for a cart without creating an
// order.
func (h *OrderHandler) HandleCartTotals(c *fiber.Ctx) error {
	var req CartTotalsRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing cart totals request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	items := make([]pricing.CartItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, pricing.CartItem{Price: it.Price, Quantity: it.Quantity})
	}
	return c.JSON(pricing.CalculateCartTotals(items))
}

// HandleCheckout creates a PENDING order from the submitted cart.
func (h *OrderHandler) HandleCheckout(c *fiber.Ctx) error {
	var input services.CheckoutInput
	if err := c.BodyParser(&input); err != nil {
		log.Printf("Error parsing checkout request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	// A token always wins over whatever the body claims.
	if userID := currentUserID(c); userID != "" {
		input.UserID = userID
		if email, ok := c.Locals("email").(string); ok && input.Email == "" {
			input.Email = email
		}
	} else {
		input.UserID = ""
	}

	if err := h.validate.Struct(input); err != nil {
		return validationFailed(c, err)
	}

	order, err := h.service.Checkout(c.Context(), input)
	if err != nil {
		log.Printf("Error creating order: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not create order",
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(order)
}

// HandleGetOrders retrieves the authenticated customer's orders.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListOrdersForUser(currentUserID(c))
	if err != nil {
		log.Printf("Error getting orders: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve orders",
			"error":   err.Error(),
		})
	}
	return c.JSON(orders)
}

// HandleGetOrderByID retrieves a single order owned by the authenticated
// customer.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	orderID := c.Params("id")
	order, err := h.service.GetOrderForUser(orderID, currentUserID(c))
	if err != nil {
		log.Printf("Error getting order %s: %v", orderID, err)
		switch {
		// Do not reveal whether another user's order exists.
		case errors.Is(err, repositories.ErrNotFound), errors.Is(err, services.ErrForbidden):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Order not found",
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Could not retrieve order",
				"error":   err.Error(),
			})
		}
	}
	return c.JSON(order)
}
