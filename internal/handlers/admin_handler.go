package handlers

import (
	"errors"
	"log"
	"time"

	"unishopper/internal/middleware"
	"unishopper/internal/models"
	"unishopper/internal/notifications"
	"unishopper/internal/repositories"
	"unishopper/internal/services"
	"unishopper/internal/workflow"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AdminHandler handles the back-office routes: session management plus the
// order operations only staff can perform.
type AdminHandler struct {
	adminAuth    *services.AdminAuthService
	orderService *services.OrderService
	validate     *validator.Validate
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(adminAuth *services.AdminAuthService, orderService *services.OrderService) *AdminHandler {
	return &AdminHandler{
		adminAuth:    adminAuth,
		orderService: orderService,
		validate:     validator.New(),
	}
}

// RegisterRoutes registers the admin routes with the Fiber app. Everything
// except login sits behind the session cookie middleware.
func (h *AdminHandler) RegisterRoutes(router fiber.Router) {
	adminRoutes := router.Group("/admin")
	adminRoutes.Post("/login", h.HandleLogin)

	protected := adminRoutes.Group("", middleware.AdminRequired(h.adminAuth))
	protected.Post("/logout", h.HandleLogout)
	protected.Get("/orders", h.HandleListOrders)
	protected.Get("/orders/:id", h.HandleGetOrder)
	protected.Post("/orders/:id/update-status", h.HandleUpdateStatus)
	protected.Post("/orders/:id/update-pricing", h.HandleUpdatePricing)
	protected.Post("/orders/:id/send-email", h.HandleSendEmail)
}

// AdminLoginRequest represents the back-office login request.
type AdminLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// HandleLogin authenticates an admin and sets the session cookie.
func (h *AdminHandler) HandleLogin(c *fiber.Ctx) error {
	var req AdminLoginRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing admin login request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	token, admin, err := h.adminAuth.Login(req.Email, req.Password, c.IP(), c.Get("User-Agent"))
	if err != nil {
		if errors.Is(err, services.ErrAccountLocked) {
			return c.Status(fiber.StatusLocked).JSON(fiber.Map{
				"message": "Account temporarily locked after repeated failures. Try again later.",
			})
		}
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Authentication failed",
			"error":   "invalid email or password",
		})
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.AdminSessionCookie,
		Value:    token,
		Expires:  time.Now().Add(8 * time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteStrictMode,
	})

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"admin": fiber.Map{
			"id":    admin.ID,
			"email": admin.Email,
			"role":  admin.Role,
		},
	})
}

// HandleLogout deletes the server-side session and clears the cookie.
func (h *AdminHandler) HandleLogout(c *fiber.Ctx) error {
	if err := h.adminAuth.Logout(c.Cookies(middleware.AdminSessionCookie), c.IP(), c.Get("User-Agent")); err != nil {
		log.Printf("Error during admin logout: %v", err)
	}
	c.ClearCookie(middleware.AdminSessionCookie)
	return c.JSON(fiber.Map{
		"message": "Logged out",
	})
}

// HandleListOrders retrieves every order for the back-office list view.
func (h *AdminHandler) HandleListOrders(c *fiber.Ctx) error {
	orders, err := h.orderService.GetAllOrders()
	if err != nil {
		log.Printf("Error getting all orders: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve orders",
			"error":   err.Error(),
		})
	}
	return c.JSON(orders)
}

// HandleGetOrder retrieves a single order without ownership restriction.
func (h *AdminHandler) HandleGetOrder(c *fiber.Ctx) error {
	orderID := c.Params("id")
	order, err := h.orderService.GetOrder(orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Order not found",
			})
		}
		log.Printf("Error getting order %s: %v", orderID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve order",
			"error":   err.Error(),
		})
	}
	return c.JSON(order)
}

// UpdateStatusRequest represents one workflow transition.
type UpdateStatusRequest struct {
	StatusType string `json:"statusType" validate:"required"`
	Value      string `json:"value" validate:"required"`
}

// HandleUpdateStatus applies one fulfillment status transition to an order.
func (h *AdminHandler) HandleUpdateStatus(c *fiber.Ctx) error {
	orderID := c.Params("id")
	var req UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing status update request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	order, err := h.orderService.UpdateStatus(c.Context(), orderID, req.StatusType, req.Value)
	if err != nil {
		switch {
		case errors.Is(err, workflow.ErrInvalidStatusType), errors.Is(err, workflow.ErrInvalidStatusValue):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid status update",
				"error":   err.Error(),
			})
		case errors.Is(err, repositories.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Order not found",
			})
		default:
			log.Printf("Error updating status for order %s: %v", orderID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Could not update order status",
				"error":   err.Error(),
			})
		}
	}

	h.recordAction(c, "admin.order.update_status", map[string]interface{}{
		"order_id":   orderID,
		"statusType": req.StatusType,
		"value":      req.Value,
	})
	return c.JSON(order)
}

// HandleUpdatePricing writes the confirmed pricing set for an order.
func (h *AdminHandler) HandleUpdatePricing(c *fiber.Ctx) error {
	orderID := c.Params("id")
	var fp models.FinalPricing
	if err := c.BodyParser(&fp); err != nil {
		log.Printf("Error parsing pricing request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	order, err := h.orderService.UpdatePricing(c.Context(), orderID, fp)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Order not found",
			})
		}
		log.Printf("Error updating pricing for order %s: %v", orderID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not update order pricing",
			"error":   err.Error(),
		})
	}

	h.recordAction(c, "admin.order.update_pricing", map[string]interface{}{
		"order_id": orderID,
	})
	return c.JSON(order)
}

// SendEmailRequest names the lifecycle stage to dispatch.
type SendEmailRequest struct {
	Stage string `json:"stage" validate:"required"`
}

// HandleSendEmail dispatches a lifecycle email for an order on demand.
func (h *AdminHandler) HandleSendEmail(c *fiber.Ctx) error {
	orderID := c.Params("id")
	var req SendEmailRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing send email request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	eventID, err := h.orderService.SendStageEmail(c.Context(), orderID, req.Stage)
	if err != nil {
		var pre *notifications.PreconditionError
		switch {
		case errors.As(err, &pre):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Email precondition not met",
				"error":   pre.Error(),
			})
		case errors.Is(err, notifications.ErrUnknownStage):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Unknown email stage",
				"error":   err.Error(),
			})
		case errors.Is(err, repositories.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Order not found",
			})
		default:
			log.Printf("Error sending %s email for order %s: %v", req.Stage, orderID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Could not send email",
				"error":   err.Error(),
			})
		}
	}

	h.recordAction(c, "admin.order.send_email", map[string]interface{}{
		"order_id": orderID,
		"stage":    req.Stage,
		"event_id": eventID,
	})
	return c.JSON(fiber.Map{
		"message":  "Email sent",
		"event_id": eventID,
	})
}

func (h *AdminHandler) recordAction(c *fiber.Ctx, action string, detail map[string]interface{}) {
	adminID, _ := c.Locals("admin_id").(string)
	h.adminAuth.RecordAction(adminID, action, c.IP(), c.Get("User-Agent"), detail)
}
