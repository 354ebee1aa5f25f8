// Package payment talks to the IntaSend collection API. Verification is poll based.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	StateComplete = "COMPLETE"
	StatePending  = "PENDING"
	StateFailed   = "FAILED"
)

var ErrGateway = errors.New("payment gateway error")

type Invoice struct {
	ID           string `json:"invoice_id"`
	State        string `json:"state"`
	Provider     string `json:"provider,omitempty"`
	Value        any    `json:"value,omitempty"`
	Account      string `json:"account,omitempty"`
	FailedReason string `json:"failed_reason,omitempty"`
	CheckoutURL  string `json:"url,omitempty"`
}

type STKPushRequest struct {
	PhoneNumber string
	Email       string
	Amount      string
	Narrative   string
}

type CheckoutRequest struct {
	FirstName string
	LastName  string
	Email     string
	Amount    string
	Currency  string
}

type Client struct {
	baseURL        string
	secretKey      string
	publishableKey string
	currency       string
	httpClient     *http.Client
}

func NewClient(baseURL, secretKey, publishableKey, currency string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		secretKey:      secretKey,
		publishableKey: publishableKey,
		currency:       currency,
		httpClient:     &http.Client{Timeout: timeout},
	}
}

// MpesaSTKPush asks the payer's phone to confirm a mobile-money payment.
func (c *Client) MpesaSTKPush(ctx context.Context, req STKPushRequest) (*Invoice, error) {
	body := map[string]any{
		"public_key":   c.publishableKey,
		"currency":     c.currency,
		"method":       "M-PESA",
		"amount":       req.Amount,
		"phone_number": NormalizePhone(req.PhoneNumber),
		"email":        req.Email,
		"narrative":    req.Narrative,
	}
	var resp struct {
		Invoice Invoice `json:"invoice"`
	}
	if err := c.post(ctx, "/api/v1/payment/mpesa-stk-push/", body, &resp); err != nil {
		return nil, err
	}
	if resp.Invoice.State == "" {
		resp.Invoice.State = StatePending
	}
	return &resp.Invoice, nil
}

// Checkout starts a hosted card payment.
func (c *Client) Checkout(ctx context.Context, req CheckoutRequest) (*Invoice, error) {
	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}
	body := map[string]any{
		"public_key": c.publishableKey,
		"first_name": req.FirstName,
		"last_name":  req.LastName,
		"email":      req.Email,
		"method":     "CARD-PAYMENT",
		"amount":     req.Amount,
		"currency":   currency,
	}
	var resp struct {
		InvoiceID string `json:"invoice_id"`
		ID        string `json:"id"`
		URL       string `json:"url"`
	}
	if err := c.post(ctx, "/api/v1/checkout/", body, &resp); err != nil {
		return nil, err
	}
	id := resp.InvoiceID
	if id == "" {
		id = resp.ID
	}
	return &Invoice{ID: id, State: StatePending, CheckoutURL: resp.URL}, nil
}

// Status polls the state of an invoice.
func (c *Client) Status(ctx context.Context, invoiceID string) (*Invoice, error) {
	var resp struct {
		Invoice Invoice `json:"invoice"`
	}
	if err := c.post(ctx, "/api/v1/payment/status/", map[string]any{"invoice_id": invoiceID}, &resp); err != nil {
		return nil, err
	}
	if resp.Invoice.State == "" {
		resp.Invoice.State = StatePending
	}
	if resp.Invoice.ID == "" {
		resp.Invoice.ID = invoiceID
	}
	return &resp.Invoice, nil
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGateway, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: read body: %v", ErrGateway, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d: %s", ErrGateway, resp.StatusCode, errorDetail(data))
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrGateway, err)
	}
	return nil
}

func errorDetail(body []byte) string {
	var e struct {
		Detail string `json:"detail"`
		Errors []struct {
			Detail string `json:"detail"`
		} `json:"errors"`
	}
	if json.Unmarshal(body, &e) == nil {
		if len(e.Errors) > 0 && e.Errors[0].Detail != "" {
			return e.Errors[0].Detail
		}
		if e.Detail != "" {
			return e.Detail
		}
	}
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}

// NormalizePhone drops a leading "+" and rewrites local 07xx numbers to 2547xx.
func NormalizePhone(phone string) string {
	p := strings.TrimPrefix(strings.TrimSpace(phone), "+")
	if strings.HasPrefix(p, "07") {
		p = "254" + p[1:]
	}
	return p
}
