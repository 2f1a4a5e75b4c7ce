package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/EdDevbr/FluxTotemBackEnd/internal/domain"
	"github.com/EdDevbr/FluxTotemBackEnd/internal/money"
)

const (
	ordersPath   = "/v1/orders"
	paymentsPath = "/v1/payments"

	// Point orders expire ten minutes after creation; a totem session that
	// takes longer has been abandoned.
	pointOrderExpiration = "PT10M"

	maxResponseBody = 1 << 20
)

// ProviderClient is the contract the reconciliation core holds against the
// payment provider.
type ProviderClient interface {
	CreatePointOrder(ctx context.Context, order *domain.Order, terminalID, title string) (*OrderResult, error)
	CreatePixPayment(ctx context.Context, order *domain.Order, description string) (*PaymentResult, error)
	FetchOrder(ctx context.Context, providerOrderID string) (*OrderResult, error)
	CancelOrder(ctx context.Context, providerOrderID string) (*OrderResult, error)
	FetchPayment(ctx context.Context, providerPaymentID string) (*PaymentResult, error)
}

type Client struct {
	baseURL     string
	token       string
	callbackURL string
	httpClient  *http.Client
}

// NewClient builds the provider client. timeout bounds every outbound call;
// it is mandatory and never zero in production wiring.
func NewClient(baseURL, token, callbackURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:     baseURL,
		token:       token,
		callbackURL: callbackURL,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

// CreatePointOrder asks the provider to show a charge on the given terminal.
// Each call carries a fresh idempotency token: a retry is a new logical
// attempt, never a replay of a previous one.
func (c *Client) CreatePointOrder(ctx context.Context, order *domain.Order, terminalID, title string) (*OrderResult, error) {
	amount := money.FormatAmount(order.Amount)
	body := map[string]any{
		"type":               "point",
		"external_reference": order.ExternalRef,
		"expiration_time":    pointOrderExpiration,
		"total_amount":       amount,
		"config": map[string]any{
			"point": map[string]any{"terminal_id": terminalID},
		},
		"transactions": map[string]any{
			"payments": []map[string]any{{"amount": amount}},
		},
	}
	if title != "" {
		body["description"] = title
	}

	raw, err := c.do(ctx, http.MethodPost, ordersPath, body, true)
	if err != nil {
		return nil, err
	}
	return decodeOrder(raw)
}

// CreatePixPayment creates a direct PIX payment whose lifecycle the provider
// reports back through the configured callback URL.
func (c *Client) CreatePixPayment(ctx context.Context, order *domain.Order, description string) (*PaymentResult, error) {
	body := map[string]any{
		"transaction_amount": order.Amount.InexactFloat64(),
		"payment_method_id":  "pix",
		"external_reference": order.ExternalRef,
	}
	if description != "" {
		body["description"] = description
	}
	if c.callbackURL != "" {
		body["notification_url"] = c.callbackURL
	}

	raw, err := c.do(ctx, http.MethodPost, paymentsPath, body, true)
	if err != nil {
		return nil, err
	}
	return decodePayment(raw)
}

func (c *Client) FetchOrder(ctx context.Context, providerOrderID string) (*OrderResult, error) {
	raw, err := c.do(ctx, http.MethodGet, ordersPath+"/"+url.PathEscape(providerOrderID), nil, false)
	if err != nil {
		return nil, err
	}
	return decodeOrder(raw)
}

func (c *Client) CancelOrder(ctx context.Context, providerOrderID string) (*OrderResult, error) {
	raw, err := c.do(ctx, http.MethodPost, ordersPath+"/"+url.PathEscape(providerOrderID)+"/cancel", nil, true)
	if err != nil {
		return nil, err
	}
	return decodeOrder(raw)
}

// FetchPayment retrieves authoritative payment detail. Webhook events carry
// only an identifier, so reconciliation always goes through here.
func (c *Client) FetchPayment(ctx context.Context, providerPaymentID string) (*PaymentResult, error) {
	raw, err := c.do(ctx, http.MethodGet, paymentsPath+"/"+url.PathEscape(providerPaymentID), nil, false)
	if err != nil {
		return nil, err
	}
	return decodePayment(raw)
}

func (c *Client) do(ctx context.Context, method, path string, body any, idempotent bool) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode provider request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build provider request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	if idempotent {
		req.Header.Set("X-Idempotency-Key", uuid.NewString())
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("read provider response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{Status: resp.StatusCode, Body: string(raw)}
	}
	return raw, nil
}

func decodeOrder(raw []byte) (*OrderResult, error) {
	var payload orderPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode provider order: %w", err)
	}
	return payload.toResult(raw), nil
}

func decodePayment(raw []byte) (*PaymentResult, error) {
	var payload paymentPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode provider payment: %w", err)
	}
	return payload.toResult(raw), nil
}
