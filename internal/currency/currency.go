// Package currency converts source-marketplace prices into the display
// currency. Rates come from an external rates API and are cached in process
// memory with a TTL. The cache is best-effort: it resets on process restart
// and is not shared across horizontally scaled instances.
package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultTTL is how long a fetched rate table is served before refetching.
const DefaultTTL = time.Hour

// RateProvider yields the conversion rate from USD into the given currency.
// The abstraction exists so the in-process cache can be swapped for a shared
// store under horizontal scaling.
type RateProvider interface {
	Rate(ctx context.Context, code string) (decimal.Decimal, error)
}

// ratesResponse mirrors the external rates API payload.
type ratesResponse struct {
	Rates map[string]float64 `json:"rates"`
}

// APIRateProvider fetches a multi-currency rate table over HTTP and caches it
// for TTL. Before the first successful fetch, and whenever a refresh fails
// with nothing cached, it serves the seeded rates so callers never block or
// fail on a cold start.
type APIRateProvider struct {
	url    string
	client *http.Client
	ttl    time.Duration

	mu        sync.RWMutex
	rates     map[string]decimal.Decimal
	fetchedAt time.Time

	seed map[string]decimal.Decimal
}

// NewAPIRateProvider creates a provider for the given rates API endpoint.
// seed maps currency codes to fallback rates served until a fetch succeeds.
func NewAPIRateProvider(url string, seed map[string]decimal.Decimal) *APIRateProvider {
	return &APIRateProvider{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
		ttl:    DefaultTTL,
		seed:   seed,
	}
}

// WithTTL overrides the cache TTL. Intended for tests and tuning.
func (p *APIRateProvider) WithTTL(ttl time.Duration) *APIRateProvider {
	p.ttl = ttl
	return p
}

// Rate returns the USD conversion rate for a currency code, refreshing the
// cached table when it has expired.
func (p *APIRateProvider) Rate(ctx context.Context, code string) (decimal.Decimal, error) {
	p.mu.RLock()
	fresh := p.rates != nil && time.Since(p.fetchedAt) < p.ttl
	rate, cached := p.rates[code]
	p.mu.RUnlock()

	if fresh && cached {
		return rate, nil
	}

	if err := p.refresh(ctx); err != nil {
		log.Printf("currency: rate refresh failed, serving fallback: %v", err)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if rate, ok := p.rates[code]; ok {
		return rate, nil
	}
	if rate, ok := p.seed[code]; ok {
		return rate, nil
	}
	return decimal.Zero, fmt.Errorf("no rate available for currency %s", code)
}

// Convert multiplies an amount by the rate for the currency code, rounded to
// 2 decimals.
func (p *APIRateProvider) Convert(ctx context.Context, amount decimal.Decimal, code string) (decimal.Decimal, error) {
	rate, err := p.Rate(ctx, code)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Mul(rate).Round(2), nil
}

func (p *APIRateProvider) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return fmt.Errorf("failed to build rates request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("rates API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("rates API returned status %d", resp.StatusCode)
	}

	var body ratesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("failed to decode rates response: %w", err)
	}

	rates := make(map[string]decimal.Decimal, len(body.Rates))
	for code, v := range body.Rates {
		rates[code] = decimal.NewFromFloat(v)
	}

	p.mu.Lock()
	p.rates = rates
	p.fetchedAt = time.Now()
	p.mu.Unlock()
	return nil
}

// StaticRateProvider serves a fixed rate table. Used in tests and as a
// degraded mode when no rates API is configured.
type StaticRateProvider map[string]decimal.Decimal

func (s StaticRateProvider) Rate(_ context.Context, code string) (decimal.Decimal, error) {
	if rate, ok := s[code]; ok {
		return rate, nil
	}
	return decimal.Zero, fmt.Errorf("no rate available for currency %s", code)
}
