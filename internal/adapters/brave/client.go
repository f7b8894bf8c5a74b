package brave

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"devwise/internal/adapters/config"
	"devwise/pkg/errors"
)

const searchURL = "https://api.search.brave.com/res/v1/web/search"

// CostPerSearch is the metered price of one web search
// ($5 per 1000 requests)
var CostPerSearch = decimal.NewFromFloat(0.005)

// Result is one web search hit
type Result struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// Client calls the Brave web search API. It paces its own requests to
// stay inside the configured per-second quota.
type Client struct {
	apiKey  string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a Brave search client
func NewClient(cfg config.BraveConfig) *Client {
	return &Client{
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
	}
}

// Search runs a web search and returns up to count results
func (c *Client) Search(ctx context.Context, query string, count int) ([]Result, error) {
	if c.apiKey == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "brave API key not configured")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "wait for search quota")
	}

	if count <= 0 {
		count = 10
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("count", strconv.Itoa(count))

	httpReq, err := http.NewRequestWithContext(ctx, "GET", searchURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "create HTTP request")
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Subscription-Token", c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, errors.Wrap(err, "send brave request")
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read brave response")
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, errors.Wrap(errors.ErrRateLimited, "brave API quota exceeded")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Wrapf(errors.ErrExternal, "brave API error (%d): %s",
			resp.StatusCode, string(respBody))
	}

	var apiResp struct {
		Web struct {
			Results []Result `json:"results"`
		} `json:"web"`
	}
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, errors.Wrap(err, "unmarshal brave response")
	}

	return apiResp.Web.Results, nil
}
