package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"unishopper/internal/models"
)

// GORMAdminRepository is a GORM implementation of AdminRepository.
type GORMAdminRepository struct {
	db *gorm.DB
}

// NewGORMAdminRepository creates a new instance of GORMAdminRepository.
func NewGORMAdminRepository(db *gorm.DB) *GORMAdminRepository {
	return &GORMAdminRepository{
		db: db,
	}
}

// Create creates a new admin in the database.
func (r *GORMAdminRepository) Create(admin *models.Admin) error {
	if admin.ID == "" {
		admin.ID = uuid.New().String()
	}
	if err := r.db.Create(admin).Error; err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}
	return nil
}

// GetByEmail retrieves an admin by email.
func (r *GORMAdminRepository) GetByEmail(email string) (*models.Admin, error) {
	var admin models.Admin
	if err := r.db.First(&admin, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("admin with email %s: %w", email, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get admin by email %s: %w", email, err)
	}
	return &admin, nil
}

// GetByID retrieves an admin by ID.
func (r *GORMAdminRepository) GetByID(id string) (*models.Admin, error) {
	var admin models.Admin
	if err := r.db.First(&admin, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("admin %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get admin by ID %s: %w", id, err)
	}
	return &admin, nil
}

// UpdateLoginState writes the lockout counters of an admin.
func (r *GORMAdminRepository) UpdateLoginState(id string, attempts int, lockedUntil *time.Time) error {
	res := r.db.Model(&models.Admin{}).Where("id = ?", id).Updates(map[string]interface{}{
		"login_attempts": attempts,
		"locked_until":   lockedUntil,
	})
	if res.Error != nil {
		return fmt.Errorf("failed to update login state for admin %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("admin %s: %w", id, ErrNotFound)
	}
	return nil
}

// CreateSession inserts an admin session row.
func (r *GORMAdminRepository) CreateSession(session *models.AdminSession) error {
	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	if err := r.db.Create(session).Error; err != nil {
		return fmt.Errorf("failed to create admin session: %w", err)
	}
	return nil
}

// GetSession retrieves an admin session by its ID.
func (r *GORMAdminRepository) GetSession(id string) (*models.AdminSession, error) {
	var session models.AdminSession
	if err := r.db.First(&session, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("admin session %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get admin session %s: %w", id, err)
	}
	return &session, nil
}

// DeleteSession removes an admin session row.
func (r *GORMAdminRepository) DeleteSession(id string) error {
	if err := r.db.Delete(&models.AdminSession{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete admin session %s: %w", id, err)
	}
	return nil
}

// CreateAuditLog appends an audit log entry. Entries are never updated or
// deleted.
func (r *GORMAdminRepository) CreateAuditLog(entry *models.AdminAuditLog) error {
	if err := r.db.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create audit log entry: %w", err)
	}
	return nil
}
