// Package dining is the HTTP client for the campus dining-services
// system, the source of truth for meal-plan balances. Lookups here are
// advisory: payment is simulated and callers degrade to stored
// balances when the system is unreachable.
package dining

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"campuseats/internal/models"
)

// default time of retry after
const delaySeconds = 60

// Account is a student's meal-plan standing.
type Account struct {
	Login           string `json:"login"`
	FlexCents       int64  `json:"flex_cents"`
	SwipesRemaining int    `json:"swipes_remaining"`
}

// Client talks to the dining-services account API.
type Client struct {
	client  *http.Client
	baseURL string
}

// NewClient creates new Client instance
func NewClient(baseURL string) *Client {
	return &Client{
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
		baseURL: baseURL,
	}
}

// GetAccount returns the meal-plan account for a login.
// 200 — account found.
// 204 — login is not enrolled in a meal plan.
// 429 — request rate exceeded, Retry-After honored.
func (c *Client) GetAccount(ctx context.Context, login string) (*Account, error) {
	url, err := url.JoinPath(c.baseURL, "api", "accounts", login)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if resp != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}

	switch resp.StatusCode {
	case http.StatusOK:
		acc := Account{}
		if err := json.NewDecoder(resp.Body).Decode(&acc); err != nil {
			return nil, err
		}
		return &acc, nil
	case http.StatusNoContent:
		return nil, models.ErrDataNotFound
	case http.StatusTooManyRequests:
		t, err := strconv.Atoi(resp.Header.Get("Retry-After"))
		if err != nil {
			t = delaySeconds
		}
		return nil, models.NewTooManyRequestsError(time.Duration(t) * time.Second)
	default:
		return nil, models.ErrInternalError
	}
}
