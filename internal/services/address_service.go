package services

import (
	"fmt"

	"unishopper/internal/models"
	"unishopper/internal/repositories"
)

// AddressService handles business logic for customer addresses, including
// the at-most-one-default rule.
type AddressService struct {
	repo repositories.AddressRepository
}

// NewAddressService creates a new AddressService.
func NewAddressService(repo repositories.AddressRepository) *AddressService {
	return &AddressService{
		repo: repo,
	}
}

// ListAddresses retrieves all addresses of a user.
func (s *AddressService) ListAddresses(userID string) ([]models.Address, error) {
	return s.repo.GetByUserID(userID)
}

// CreateAddress creates an address for a user. The user's first address is
// always made the default.
func (s *AddressService) CreateAddress(userID string, address *models.Address) error {
	address.UserID = userID

	existing, err := s.repo.GetByUserID(userID)
	if err != nil {
		return fmt.Errorf("failed to list addresses for user %s: %w", userID, err)
	}
	if len(existing) == 0 {
		address.IsDefault = true
	}

	return s.repo.Create(address)
}

// UpdateAddress updates an address after verifying ownership.
func (s *AddressService) UpdateAddress(userID string, address *models.Address) error {
	existing, err := s.repo.GetByID(address.ID)
	if err != nil {
		return err
	}
	if existing.UserID != userID {
		return fmt.Errorf("address %s: %w", address.ID, ErrForbidden)
	}
	address.UserID = userID
	// The default flag moves only through SetDefaultAddress.
	address.IsDefault = existing.IsDefault
	return s.repo.Update(address)
}

// DeleteAddress removes an address. The default address cannot be deleted;
// another address must be made default first.
func (s *AddressService) DeleteAddress(userID, id string) error {
	address, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if address.UserID != userID {
		return fmt.Errorf("address %s: %w", id, ErrForbidden)
	}
	if address.IsDefault {
		return ErrDefaultAddressDelete
	}
	return s.repo.Delete(id)
}

// SetDefaultAddress makes an address the user's default.
func (s *AddressService) SetDefaultAddress(userID, id string) error {
	address, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if address.UserID != userID {
		return fmt.Errorf("address %s: %w", id, ErrForbidden)
	}
	return s.repo.SetDefault(userID, id)
}
