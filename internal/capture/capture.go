// Package capture turns a pasted retailer URL into a normalized Product
// record. Marketplace detection is a hostname+path heuristic; the actual
// extraction is delegated to an external scraping service.
package capture

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Marketplace identifies the source retail site of a product URL.
type Marketplace string

const (
	MarketplaceAmazon  Marketplace = "amazon"
	MarketplaceWalmart Marketplace = "walmart"
	MarketplaceEbay    Marketplace = "ebay"
)

var (
	// ErrUnsupportedMarketplace means the URL does not match any known
	// retailer pattern.
	ErrUnsupportedMarketplace = errors.New("unsupported marketplace URL")
	// ErrMarketplaceDisabled means the marketplace is recognized but capture
	// is not enabled for it yet. Only Amazon is enabled end to end.
	ErrMarketplaceDisabled = errors.New("marketplace capture not yet supported")
)

// marketplacePattern pairs a hostname fragment with the product-page path
// markers that identify a product URL on that site.
type marketplacePattern struct {
	marketplace Marketplace
	host        string
	paths       []string
}

var patterns = []marketplacePattern{
	{MarketplaceAmazon, "amazon.", []string{"/dp/", "/gp/product/"}},
	{MarketplaceWalmart, "walmart.", []string{"/ip/"}},
	{MarketplaceEbay, "ebay.", []string{"/itm/"}},
}

// DetectMarketplace identifies the marketplace of a product URL, or returns
// ErrUnsupportedMarketplace when neither host nor path match a known pattern.
func DetectMarketplace(raw string) (Marketplace, error) {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("%w: %q is not a valid product URL", ErrUnsupportedMarketplace, raw)
	}

	host := strings.ToLower(u.Hostname())
	for _, p := range patterns {
		if !strings.Contains(host, p.host) {
			continue
		}
		for _, marker := range p.paths {
			if strings.Contains(u.Path, marker) {
				return p.marketplace, nil
			}
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedMarketplace, host)
}

// Enabled reports whether capture is switched on for the marketplace.
func Enabled(m Marketplace) bool {
	return m == MarketplaceAmazon
}
