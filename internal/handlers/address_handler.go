package handlers

import (
	"errors"
	"log"

	"unishopper/internal/models"
	"unishopper/internal/repositories"
	"unishopper/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AddressHandler handles HTTP requests for the customer address book.
type AddressHandler struct {
	service  *services.AddressService
	validate *validator.Validate
}

// NewAddressHandler creates a new AddressHandler.
func NewAddressHandler(service *services.AddressService) *AddressHandler {
	return &AddressHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the address routes with the Fiber app. All routes
// require a logged-in customer.
func (h *AddressHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	addressRoutes := router.Group("/addresses", auth)
	addressRoutes.Get("/", h.HandleListAddresses)
	addressRoutes.Post("/", h.HandleCreateAddress)
	addressRoutes.Put("/:id", h.HandleUpdateAddress)
	addressRoutes.Delete("/:id", h.HandleDeleteAddress)
	addressRoutes.Post("/:id/default", h.HandleSetDefaultAddress)
}

// HandleListAddresses returns the customer's addresses, default first.
func (h *AddressHandler) HandleListAddresses(c *fiber.Ctx) error {
	addresses, err := h.service.ListAddresses(currentUserID(c))
	if err != nil {
		log.Printf("Error listing addresses: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve addresses",
			"error":   err.Error(),
		})
	}
	return c.JSON(addresses)
}

// HandleCreateAddress adds an address to the customer's address book.
func (h *AddressHandler) HandleCreateAddress(c *fiber.Ctx) error {
	var address models.Address
	if err := c.BodyParser(&address); err != nil {
		log.Printf("Error parsing address request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	address.UserID = currentUserID(c)

	if err := h.validate.Struct(address); err != nil {
		return validationFailed(c, err)
	}

	if err := h.service.CreateAddress(currentUserID(c), &address); err != nil {
		log.Printf("Error creating address: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not create address",
			"error":   err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(address)
}

// HandleUpdateAddress edits an existing address.
func (h *AddressHandler) HandleUpdateAddress(c *fiber.Ctx) error {
	var address models.Address
	if err := c.BodyParser(&address); err != nil {
		log.Printf("Error parsing address request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	address.ID = c.Params("id")
	address.UserID = currentUserID(c)

	if err := h.validate.Struct(address); err != nil {
		return validationFailed(c, err)
	}

	if err := h.service.UpdateAddress(currentUserID(c), &address); err != nil {
		return h.addressError(c, address.ID, err, "Could not update address")
	}
	return c.JSON(address)
}

// HandleDeleteAddress removes an address. Deleting the default address is
// rejected; the customer must pick another default first.
func (h *AddressHandler) HandleDeleteAddress(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.service.DeleteAddress(currentUserID(c), id); err != nil {
		if errors.Is(err, services.ErrDefaultAddressDelete) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "The default address cannot be deleted. Set another address as default first.",
			})
		}
		return h.addressError(c, id, err, "Could not delete address")
	}
	return c.JSON(fiber.Map{
		"message": "Address deleted successfully",
	})
}

// HandleSetDefaultAddress makes an address the customer's default.
func (h *AddressHandler) HandleSetDefaultAddress(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.service.SetDefaultAddress(currentUserID(c), id); err != nil {
		return h.addressError(c, id, err, "Could not set default address")
	}
	return c.JSON(fiber.Map{
		"message": "Default address updated successfully",
	})
}

func (h *AddressHandler) addressError(c *fiber.Ctx, id string, err error, genericMessage string) error {
	log.Printf("Address %s: %v", id, err)
	switch {
	// Do not reveal whether another user's address exists.
	case errors.Is(err, repositories.ErrNotFound), errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Address not found",
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": genericMessage,
			"error":   err.Error(),
		})
	}
}
