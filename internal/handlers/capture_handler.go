package handlers

import (
	"errors"
	"log"

	"unishopper/internal/capture"
	"unishopper/internal/models"
	"unishopper/internal/repositories"
	"unishopper/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CaptureHandler handles HTTP requests for product capture from retailer
// URLs.
type CaptureHandler struct {
	service  *services.CaptureService
	validate *validator.Validate
}

// NewCaptureHandler creates a new CaptureHandler.
func NewCaptureHandler(service *services.CaptureService) *CaptureHandler {
	return &CaptureHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the capture routes with the Fiber app. The capture
// endpoint sits behind the rate limiter configured at app level.
func (h *CaptureHandler) RegisterRoutes(router fiber.Router, limiter fiber.Handler) {
	router.Post("/capture-product", limiter, h.HandleCaptureProduct)

	productRoutes := router.Group("/products")
	productRoutes.Get("/:id", h.HandleGetProduct)
	productRoutes.Put("/:id", h.HandleUpdateProduct)
}

// CaptureRequest represents the request body for product capture.
type CaptureRequest struct {
	URL string `json:"url" validate:"required,url"`
}

// HandleCaptureProduct captures a product from a pasted retailer URL.
func (h *CaptureHandler) HandleCaptureProduct(c *fiber.Ctx) error {
	var req CaptureRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing capture request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	product, err := h.service.CaptureProduct(c.Context(), req.URL)
	if err != nil {
		log.Printf("Error capturing product from %s: %v", req.URL, err)
		switch {
		case errors.Is(err, capture.ErrUnsupportedMarketplace):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "This URL is not a supported product page. Paste an Amazon, Walmart or eBay product URL.",
			})
		case errors.Is(err, capture.ErrMarketplaceDisabled):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "This marketplace is not available yet. Only Amazon is supported right now.",
			})
		default:
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"message": "Could not capture the product. Please try again.",
				"error":   err.Error(),
			})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleGetProduct retrieves a captured product.
func (h *CaptureHandler) HandleGetProduct(c *fiber.Ctx) error {
	id := c.Params("id")
	product, err := h.service.GetProduct(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Product not found",
			})
		}
		log.Printf("Error getting product %s: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve product",
			"error":   err.Error(),
		})
	}
	return c.JSON(product)
}

// HandleUpdateProduct lets a customer fix a capture that needed manual
// review.
func (h *CaptureHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		log.Printf("Error parsing product request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	product.ID = c.Params("id")

	if err := h.service.UpdateProduct(&product); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Product not found",
			})
		}
		log.Printf("Error updating product %s: %v", product.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not update product",
			"error":   err.Error(),
		})
	}
	return c.JSON(product)
}
