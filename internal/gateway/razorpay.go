// Package gateway talks to the Razorpay payment gateway: order creation over
// its REST API and authenticity checks for the webhooks it sends back.
package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/lancehub/lancehub/internal/payment"
)

const defaultBaseURL = "https://api.razorpay.com"

type Config struct {
	KeyID         string
	KeySecret     string
	WebhookSecret string
	BaseURL       string        // defaults to the production API
	Timeout       time.Duration // hard ceiling on the order-creation call
}

type Razorpay struct {
	cfg    Config
	client *http.Client
}

func NewRazorpay(cfg Config) *Razorpay {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &Razorpay{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

type orderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes"`
}

type orderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// CreateOrder registers a payment order. Any transport failure, timeout or
// non-2xx response comes back as payment.ErrGatewayUnavailable; the response
// body is never propagated upstream.
func (r *Razorpay) CreateOrder(ctx context.Context, params payment.OrderParams) (*payment.Order, error) {
	payload, err := json.Marshal(orderRequest{
		Amount:   params.AmountMinor,
		Currency: params.Currency,
		Receipt:  params.Receipt,
		Notes:    map[string]string{"transaction_id": params.TransactionID.String()},
	})
	if err != nil {
		return nil, fmt.Errorf("encoding order request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		r.cfg.BaseURL+"/v1/orders", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating order request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(r.cfg.KeyID, r.cfg.KeySecret)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", payment.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: gateway returned status %d", payment.ErrGatewayUnavailable, resp.StatusCode)
	}

	var order orderResponse
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, fmt.Errorf("%w: decoding order response: %w", payment.ErrGatewayUnavailable, err)
	}

	return &payment.Order{
		ID:          order.ID,
		AmountMinor: order.Amount,
		Currency:    order.Currency,
	}, nil
}

// VerifyWebhookSignature checks the hex-encoded HMAC-SHA256 of the raw body
// against the signature header. The comparison is constant time.
func (r *Razorpay) VerifyWebhookSignature(body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(r.cfg.WebhookSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}
