package repositories

import (
	"time"

	"unishopper/internal/models"
)

// AdminRepository defines the interface for admin principal data access,
// including the server-side session table and the append-only audit log.
type AdminRepository interface {
	Create(admin *models.Admin) error
	GetByEmail(email string) (*models.Admin, error)
	GetByID(id string) (*models.Admin, error)
	// UpdateLoginState writes the lockout counters after a login attempt.
	UpdateLoginState(id string, attempts int, lockedUntil *time.Time) error

	CreateSession(session *models.AdminSession) error
	GetSession(id string) (*models.AdminSession, error)
	DeleteSession(id string) error

	CreateAuditLog(entry *models.AdminAuditLog) error
}
