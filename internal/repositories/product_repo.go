package repositories

import "unishopper/internal/models"

// ProductRepository defines the interface for captured product data access.
type ProductRepository interface {
	Create(product *models.Product) error
	GetByID(id string) (*models.Product, error)
	GetAll() ([]models.Product, error)
	Update(product *models.Product) error
}
