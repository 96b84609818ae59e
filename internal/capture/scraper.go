package capture

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"unishopper/internal/models"
)

// PlaceholderImage is shown when the scraper could not extract a product
// image.
const PlaceholderImage = "/images/product-placeholder.png"

// ScrapeResult is the normalized shape of the external scraping service's
// response. Zero values mean the scraper could not extract the field.
type ScrapeResult struct {
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Currency    string  `json:"currency"`
	Image       string  `json:"image"`
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"review_count"`
}

// ScraperClient talks to the external scraping API.
type ScraperClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewScraperClient creates a client for the scraping service.
func NewScraperClient(baseURL, apiKey string) *ScraperClient {
	return &ScraperClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type scrapeRequest struct {
	URL string `json:"url"`
}

type scrapeResponse struct {
	Success bool          `json:"success"`
	Product *ScrapeResult `json:"product"`
	Error   string        `json:"error"`
}

// Scrape asks the scraping service to extract product data from the URL.
func (c *ScraperClient) Scrape(ctx context.Context, productURL string) (*ScrapeResult, error) {
	body, err := json.Marshal(scrapeRequest{URL: productURL})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal scrape request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/scrape", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build scrape request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scraper API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scraper API returned status %d", resp.StatusCode)
	}

	var out scrapeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode scraper response: %w", err)
	}
	if !out.Success || out.Product == nil {
		return nil, fmt.Errorf("scraper could not extract product: %s", out.Error)
	}
	return out.Product, nil
}

// Normalize converts a scrape result into a Product record, filling defaults
// for anything the scraper could not extract and flagging the record for
// manual review when the essential fields are missing.
func Normalize(productURL string, marketplace Marketplace, res *ScrapeResult) *models.Product {
	p := &models.Product{
		ID:          uuid.New().String(),
		URL:         productURL,
		Marketplace: string(marketplace),
		Title:       res.Title,
		PriceUSD:    decimal.NewFromFloat(res.Price),
		Image:       res.Image,
		Rating:      res.Rating,
		ReviewCount: res.ReviewCount,
	}

	var missing []string
	if p.Title == "" {
		p.Title = "Untitled product"
		missing = append(missing, "title")
	}
	if res.Price <= 0 {
		missing = append(missing, "price")
	}
	if p.Image == "" {
		p.Image = PlaceholderImage
		missing = append(missing, "image")
	}
	if res.Rating <= 0 {
		missing = append(missing, "rating")
	}

	p.MissingFields = missing
	for _, f := range missing {
		if f == "title" || f == "price" {
			p.RequiresApproval = true
		}
	}
	return p
}
