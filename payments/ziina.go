// Package payments talks to the Ziina payment provider.
package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultTimeout = 30 * time.Second

type Config struct {
	APIKey  string
	BaseURL string
	// AppURL is the storefront origin used for redirect targets.
	AppURL   string
	TestMode bool
	Timeout  time.Duration
}

// IntentRequest describes a payment intent. Amount is in minor units.
type IntentRequest struct {
	OrderID      string
	Amount       int64
	Currency     string
	CustomerName string
}

type Intent struct {
	ID          string `json:"id"`
	RedirectURL string `json:"redirect_url"`
	EmbeddedURL string `json:"embedded_url"`
}

// ProviderError is returned for transport failures, non-2xx responses and
// unusable response bodies.
type ProviderError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("ziina responded %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("ziina request failed: %v", e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

type intentPayload struct {
	Amount       int64  `json:"amount"`
	CurrencyCode string `json:"currency_code"`
	Message      string `json:"message"`
	SuccessURL   string `json:"success_url"`
	CancelURL    string `json:"cancel_url"`
	FailureURL   string `json:"failure_url"`
	Test         bool   `json:"test"`
	AllowTips    bool   `json:"allow_tips"`
}

type ZiinaClient struct {
	client *resty.Client
	cfg    Config
}

func NewZiinaClient(cfg Config) *ZiinaClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(timeout).
		SetAuthToken(cfg.APIKey).
		SetHeader("Accept", "application/json")

	return &ZiinaClient{client: client, cfg: cfg}
}

// CreatePaymentIntent asks Ziina for a hosted payment page for an order.
func (c *ZiinaClient) CreatePaymentIntent(ctx context.Context, req IntentRequest) (Intent, error) {
	payload := intentPayload{
		Amount:       req.Amount,
		CurrencyCode: req.Currency,
		Message:      fmt.Sprintf("Order #%s - %s", req.OrderID, req.CustomerName),
		SuccessURL:   c.redirectURL("/payment/success", req.OrderID),
		CancelURL:    c.redirectURL("/payment/cancelled", req.OrderID),
		FailureURL:   c.redirectURL("/payment/cancelled", req.OrderID),
		Test:         c.cfg.TestMode,
		AllowTips:    false,
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post("/payment_intent")
	if err != nil {
		return Intent{}, &ProviderError{Err: err}
	}
	if !resp.IsSuccess() {
		return Intent{}, &ProviderError{StatusCode: resp.StatusCode(), Body: truncate(resp.String(), 512)}
	}

	var intent Intent
	if err := json.Unmarshal(resp.Body(), &intent); err != nil {
		return Intent{}, &ProviderError{Err: fmt.Errorf("failed to parse payment intent: %w", err)}
	}
	if intent.ID == "" || intent.RedirectURL == "" {
		return Intent{}, &ProviderError{Err: fmt.Errorf("incomplete payment intent response")}
	}
	return intent, nil
}

func (c *ZiinaClient) redirectURL(path, orderID string) string {
	return strings.TrimRight(c.cfg.AppURL, "/") + path + "?orderId=" + url.QueryEscape(orderID)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
