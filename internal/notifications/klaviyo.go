// Package notifications wraps the external marketing-email API and exposes
// the lifecycle email stages keyed off workflow state. Every send is
// fire-and-forget from the caller's perspective; callers running after a
// status write swallow and log errors rather than failing the mutation.
package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client dispatches one tracked event to the email platform, keyed by the
// customer email, and returns the platform's event id.
type Client interface {
	Track(ctx context.Context, event, email string, properties map[string]interface{}) (string, error)
}

// KlaviyoClient is the production Client backed by the Klaviyo track API.
type KlaviyoClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewKlaviyoClient creates a client for the Klaviyo track endpoint.
func NewKlaviyoClient(baseURL, apiKey string) *KlaviyoClient {
	return &KlaviyoClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type trackRequest struct {
	Token              string                 `json:"token"`
	Event              string                 `json:"event"`
	CustomerProperties map[string]interface{} `json:"customer_properties"`
	Properties         map[string]interface{} `json:"properties"`
}

type trackResponse struct {
	Success bool   `json:"success"`
	EventID string `json:"event_id"`
	Error   string `json:"error"`
}

// Track sends one event to the Klaviyo track API.
func (c *KlaviyoClient) Track(ctx context.Context, event, email string, properties map[string]interface{}) (string, error) {
	body, err := json.Marshal(trackRequest{
		Token:              c.apiKey,
		Event:              event,
		CustomerProperties: map[string]interface{}{"$email": email},
		Properties:         properties,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal track request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/track", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build track request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("email API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("email API returned status %d", resp.StatusCode)
	}

	var out trackResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode email API response: %w", err)
	}
	if !out.Success {
		return "", fmt.Errorf("email API rejected event %s: %s", event, out.Error)
	}
	return out.EventID, nil
}
