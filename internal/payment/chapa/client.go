package chapa

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"
)

// InitializeRequest is the provider's transaction-initialize wire contract.
type InitializeRequest struct {
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`
	TxRef       string `json:"tx_ref"`
	ReturnURL   string `json:"return_url,omitempty"`
}

// InitializeResponse is returned verbatim to callers; a successful response
// carries Status == "success" and a hosted checkout URL.
type InitializeResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		CheckoutURL string `json:"checkout_url"`
	} `json:"data"`
}

// VerifyResponse is the provider's transaction-verify payload.
type VerifyResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Status string  `json:"status"` // success | failed | pending
		TxRef  string  `json:"tx_ref"`
		Amount float64 `json:"amount"`
	} `json:"data"`
}

// ErrProviderRejected means the provider answered but did not accept the
// transaction; the body is still returned so callers can pass it through.
var ErrProviderRejected = errors.New("payment provider rejected the transaction")

// Client wraps the provider API with a bounded timeout and a circuit
// breaker. There is no automatic retry; a failed call is the caller's to
// surface.
type Client struct {
	http      *resty.Client
	breaker   *gobreaker.CircuitBreaker
	secretKey string
}

func NewClient(baseURL, secretKey string, timeout time.Duration) *Client {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "chapa",
		MaxRequests: 3,
		Interval:    15 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
	})

	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetRetryCount(0), // failures are reported, never retried
		breaker:   cb,
		secretKey: secretKey,
	}
}

// Initialize posts a transaction-initialize request, attaching the
// server-held secret. The provider response is returned as-is.
func (c *Client) Initialize(ctx context.Context, req *InitializeRequest) (*InitializeResponse, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		var out InitializeResponse
		resp, err := c.http.R().
			SetContext(ctx).
			SetAuthToken(c.secretKey).
			SetBody(req).
			SetResult(&out).
			SetError(&out).
			Post("/transaction/initialize")
		if err != nil {
			return nil, fmt.Errorf("initialize request failed: %w", err)
		}
		if resp.IsError() || out.Status != "success" {
			return &out, ErrProviderRejected
		}
		return &out, nil
	})
	if err != nil {
		if out, ok := result.(*InitializeResponse); ok {
			return out, err
		}
		return nil, err
	}
	return result.(*InitializeResponse), nil
}

// Verify fetches the final state of a transaction by its reference.
func (c *Client) Verify(ctx context.Context, txRef string) (*VerifyResponse, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		var out VerifyResponse
		resp, err := c.http.R().
			SetContext(ctx).
			SetAuthToken(c.secretKey).
			SetResult(&out).
			SetError(&out).
			Get("/transaction/verify/" + txRef)
		if err != nil {
			return nil, fmt.Errorf("verify request failed: %w", err)
		}
		if resp.IsError() {
			return &out, ErrProviderRejected
		}
		return &out, nil
	})
	if err != nil {
		if out, ok := result.(*VerifyResponse); ok {
			return out, err
		}
		return nil, err
	}
	return result.(*VerifyResponse), nil
}
