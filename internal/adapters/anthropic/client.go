package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"devwise/internal/adapters/config"
	"devwise/pkg/errors"
)

const messagesURL = "https://api.anthropic.com/v1/messages"

// Per-million-token pricing for the default model
var (
	inputTokenPrice  = decimal.NewFromFloat(3.00)
	outputTokenPrice = decimal.NewFromFloat(15.00)
	million          = decimal.NewFromInt(1_000_000)
)

// Message is a single conversation turn
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request describes one model call
type Request struct {
	System    string
	Messages  []Message
	MaxTokens int
	Timeout   time.Duration
}

// Response carries the model output and metered token usage
type Response struct {
	Text         string
	InputTokens  int
	OutputTokens int
}

// TotalTokens returns combined input and output token usage
func (r *Response) TotalTokens() int {
	return r.InputTokens + r.OutputTokens
}

// Cost returns the metered price of the call in dollars
func (r *Response) Cost() decimal.Decimal {
	in := decimal.NewFromInt(int64(r.InputTokens)).Mul(inputTokenPrice).Div(million)
	out := decimal.NewFromInt(int64(r.OutputTokens)).Mul(outputTokenPrice).Div(million)
	return in.Add(out)
}

// Client calls the Anthropic messages API
type Client struct {
	apiKey string
	model  string
	http   *http.Client
}

// NewClient creates an Anthropic API client
func NewClient(cfg config.AnthropicConfig) *Client {
	return &Client{
		apiKey: cfg.APIKey,
		model:  cfg.Model,
		http:   &http.Client{},
	}
}

// Model returns the configured model identifier
func (c *Client) Model() string {
	return c.model
}

// Complete sends a messages request and returns the text of the reply
func (c *Client) Complete(ctx context.Context, req Request) (*Response, error) {
	if c.apiKey == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "anthropic API key not configured")
	}

	apiReq := apiRequest{
		Model:     c.model,
		System:    req.System,
		Messages:  req.Messages,
		MaxTokens: req.MaxTokens,
	}

	body, err := json.Marshal(apiReq)
	if err != nil {
		return nil, errors.Wrap(err, "marshal anthropic request")
	}

	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", messagesURL, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "create HTTP request")
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.Wrap(errors.ErrTimeout, "anthropic request timed out")
		}
		return nil, errors.Wrap(err, "send anthropic request")
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read anthropic response")
	}

	if resp.StatusCode != http.StatusOK {
		var errResp struct {
			Error struct {
				Type    string `json:"type"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error.Type != "" {
			return nil, errors.Wrapf(errors.ErrExternal, "anthropic API error (%d): %s - %s",
				resp.StatusCode, errResp.Error.Type, errResp.Error.Message)
		}
		return nil, errors.Wrapf(errors.ErrExternal, "anthropic API error (%d): %s",
			resp.StatusCode, string(respBody))
	}

	var apiResp apiResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, errors.Wrap(err, "unmarshal anthropic response")
	}

	var text string
	for _, block := range apiResp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}

	return &Response{
		Text:         text,
		InputTokens:  apiResp.Usage.InputTokens,
		OutputTokens: apiResp.Usage.OutputTokens,
	}, nil
}

// Anthropic API types
type apiRequest struct {
	Model     string    `json:"model"`
	System    string    `json:"system,omitempty"`
	Messages  []Message `json:"messages"`
	MaxTokens int       `json:"max_tokens"`
}

type apiResponse struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Role       string `json:"role"`
	Model      string `json:"model"`
	StopReason string `json:"stop_reason"`
	Content    []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}
