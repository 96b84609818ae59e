package services

import (
	"context"
	"fmt"
	"log"

	"unishopper/internal/capture"
	"unishopper/internal/currency"
	"unishopper/internal/models"
	"unishopper/internal/pricing"
	"unishopper/internal/repositories"
)

// Scraper extracts product data from a retailer URL via the external
// scraping service.
type Scraper interface {
	Scrape(ctx context.Context, url string) (*capture.ScrapeResult, error)
}

// CaptureService runs the product capture pipeline: marketplace detection,
// delegation to the scraper, normalization and persistence.
type CaptureService struct {
	productRepo repositories.ProductRepository
	scraper     Scraper
	rates       currency.RateProvider
}

// NewCaptureService creates a new CaptureService.
func NewCaptureService(productRepo repositories.ProductRepository, scraper Scraper, rates currency.RateProvider) *CaptureService {
	return &CaptureService{
		productRepo: productRepo,
		scraper:     scraper,
		rates:       rates,
	}
}

// CaptureProduct captures a product from a pasted retailer URL. Only Amazon
// is enabled end to end; other recognized marketplaces are rejected.
func (s *CaptureService) CaptureProduct(ctx context.Context, url string) (*models.Product, error) {
	marketplace, err := capture.DetectMarketplace(url)
	if err != nil {
		return nil, err
	}
	if !capture.Enabled(marketplace) {
		return nil, fmt.Errorf("%w: %s", capture.ErrMarketplaceDisabled, marketplace)
	}

	result, err := s.scraper.Scrape(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("product capture failed: %w", err)
	}

	product := capture.Normalize(url, marketplace, result)

	rate, err := s.rates.Rate(ctx, "BDT")
	if err != nil {
		log.Printf("CaptureProduct: rate lookup failed, using default: %v", err)
		rate = pricing.DefaultExchangeRate
	}
	product.PriceBDT = product.PriceUSD.Mul(rate).Round(2)

	if err := s.productRepo.Create(product); err != nil {
		return nil, fmt.Errorf("failed to store captured product: %w", err)
	}
	return product, nil
}

// GetProduct retrieves a captured product by ID.
func (s *CaptureService) GetProduct(id string) (*models.Product, error) {
	return s.productRepo.GetByID(id)
}

// UpdateProduct lets a customer fix a capture that required approval before
// adding it to the cart.
func (s *CaptureService) UpdateProduct(product *models.Product) error {
	existing, err := s.productRepo.GetByID(product.ID)
	if err != nil {
		return err
	}
	// Manual edits clear the review flag.
	product.URL = existing.URL
	product.Marketplace = existing.Marketplace
	product.RequiresApproval = false
	product.MissingFields = nil
	return s.productRepo.Update(product)
}
