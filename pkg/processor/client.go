package processor

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client talks to the processor's REST API.
type Client struct {
	http *resty.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetAuthToken(apiKey).
			SetHeader("Content-Type", "application/json"),
	}
}

type createIntentReq struct {
	Amount      int64             `json:"amount"`
	Currency    string            `json:"currency"`
	Description string            `json:"description,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type createIntentResp struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
}

func (c *Client) CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	var out createIntentResp
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Idempotency-Key", req.IdempotencyKey).
		SetBody(createIntentReq{
			Amount:      req.AmountCents,
			Currency:    req.Currency,
			Description: req.Description,
			Metadata:    map[string]string{"payer_id": req.PayerID},
		}).
		SetResult(&out).
		Post("/v1/payment_intents")
	if err != nil {
		return nil, fmt.Errorf("processor create intent: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("processor create intent: %s: %s", resp.Status(), resp.String())
	}
	if out.ID == "" {
		return nil, fmt.Errorf("processor create intent: response missing id")
	}
	return &Intent{
		Reference:   out.ID,
		ClientToken: out.ClientSecret,
		Status:      out.Status,
	}, nil
}
