package repositories

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"unishopper/internal/models"
)

// MockAddressRepository is an in-memory implementation of AddressRepository.
type MockAddressRepository struct {
	addresses map[string]models.Address
	mu        sync.RWMutex
}

// NewMockAddressRepository creates a new instance of MockAddressRepository.
func NewMockAddressRepository() *MockAddressRepository {
	return &MockAddressRepository{
		addresses: make(map[string]models.Address),
	}
}

// Create adds a new address, unsetting the previous default when needed.
func (r *MockAddressRepository) Create(address *models.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if address.ID == "" {
		address.ID = uuid.New().String()
	}
	address.CreatedAt = time.Now()
	if address.IsDefault {
		for id, a := range r.addresses {
			if a.UserID == address.UserID && a.IsDefault {
				a.IsDefault = false
				r.addresses[id] = a
			}
		}
	}
	r.addresses[address.ID] = *address
	return nil
}

// GetByID returns an address by its ID.
func (r *MockAddressRepository) GetByID(id string) (*models.Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	address, ok := r.addresses[id]
	if !ok {
		return nil, fmt.Errorf("address %s: %w", id, ErrNotFound)
	}
	return &address, nil
}

// GetByUserID returns all addresses of a user, default first.
func (r *MockAddressRepository) GetByUserID(userID string) ([]models.Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var list []models.Address
	for _, a := range r.addresses {
		if a.UserID == userID {
			list = append(list, a)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].IsDefault != list[j].IsDefault {
			return list[i].IsDefault
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list, nil
}

// Update modifies an existing address.
func (r *MockAddressRepository) Update(address *models.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.addresses[address.ID]; !ok {
		return fmt.Errorf("address %s: %w", address.ID, ErrNotFound)
	}
	r.addresses[address.ID] = *address
	return nil
}

// Delete removes an address by its ID.
func (r *MockAddressRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.addresses[id]; !ok {
		return fmt.Errorf("address %s: %w", id, ErrNotFound)
	}
	delete(r.addresses, id)
	return nil
}

// SetDefault makes the given address the user's default.
func (r *MockAddressRepository) SetDefault(userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	target, ok := r.addresses[id]
	if !ok || target.UserID != userID {
		return fmt.Errorf("address %s: %w", id, ErrNotFound)
	}
	for aid, a := range r.addresses {
		if a.UserID == userID {
			a.IsDefault = aid == id
			r.addresses[aid] = a
		}
	}
	return nil
}
