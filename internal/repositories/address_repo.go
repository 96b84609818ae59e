package repositories

import "unishopper/internal/models"

// AddressRepository defines the interface for address data access.
type AddressRepository interface {
	// Create inserts the address; when it is flagged default, the previous
	// default for the user is unset in the same transaction.
	Create(address *models.Address) error
	GetByID(id string) (*models.Address, error)
	GetByUserID(userID string) ([]models.Address, error)
	Update(address *models.Address) error
	Delete(id string) error
	// SetDefault makes the given address the user's default, unsetting the
	// previous one in the same transaction.
	SetDefault(userID, id string) error
}
