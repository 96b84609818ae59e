package middleware

import (
	"log"

	"unishopper/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AdminSessionCookie is the cookie carrying the back-office session token.
const AdminSessionCookie = "admin_session"

// AdminRequired is a Fiber middleware that validates the back-office session
// cookie. The JWT references a server-side session row, so logging out or
// deleting the row invalidates the token immediately.
func AdminRequired(adminAuth *services.AdminAuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := c.Cookies(AdminSessionCookie)
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Admin session cookie is required",
			})
		}

		admin, session, err := adminAuth.ValidateSession(tokenString)
		if err != nil {
			log.Printf("Admin session validation failed: %v", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired admin session",
			})
		}

		c.Locals("admin_id", admin.ID)
		c.Locals("admin_role", admin.Role)
		c.Locals("admin_session_id", session.ID)

		return c.Next()
	}
}
