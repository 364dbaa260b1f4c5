// Package payment implements the PayPal REST client used to capture and
// refund booking payments.  Only four operations are exposed: authenticate,
// create-order, capture-order and refund-capture.  Refund outcomes are
// reported as data, never as panics: a declined or errored refund yields a
// FAILED result so the caller can record it on the booking.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/iliyamo/room-reservation/internal/booking"
)

// Client talks to the PayPal REST API (sandbox or live, depending on
// baseURL).  It implements booking.PaymentGateway.
type Client struct {
	baseURL   string
	clientID  string
	secret    string
	currency  string
	returnURL string
	cancelURL string
	http      *http.Client
}

// NewClient builds a PayPal client.  frontendURL is used to derive the
// checkout return/cancel URLs shown to the buyer.
func NewClient(baseURL, clientID, secret, currency, frontendURL string) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		clientID:  clientID,
		secret:    secret,
		currency:  currency,
		returnURL: frontendURL + "/success",
		cancelURL: frontendURL + "/cancel",
		http:      &http.Client{Timeout: 10 * time.Second},
	}
}

// Authenticate obtains an OAuth2 access token via the client-credentials
// grant.  Every API call fetches a fresh token, matching how the upstream
// checkout flow uses short bursts of requests.
func (c *Client) Authenticate(ctx context.Context) (string, error) {
	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.clientID, c.secret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("paypal: token request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("paypal: token request returned %s", resp.Status)
	}
	var body struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("paypal: decode token response: %w", err)
	}
	if body.AccessToken == "" {
		return "", fmt.Errorf("paypal: empty access token")
	}
	return body.AccessToken, nil
}

// OrderLink is a HATEOAS link returned with an order; the "approve" link is
// where the buyer is redirected to authorize payment.
type OrderLink struct {
	Href   string `json:"href"`
	Rel    string `json:"rel"`
	Method string `json:"method"`
}

// Order is the subset of PayPal's order resource the frontend needs.
type Order struct {
	ID     string      `json:"id"`
	Status string      `json:"status"`
	Links  []OrderLink `json:"links"`
}

// CreateOrder creates a checkout order with CAPTURE intent for the given
// amount.
func (c *Client) CreateOrder(ctx context.Context, amount float64) (Order, error) {
	payload := map[string]any{
		"intent": "CAPTURE",
		"purchase_units": []map[string]any{
			{"amount": map[string]string{
				"currency_code": c.currency,
				"value":         fmt.Sprintf("%.2f", amount),
			}},
		},
		"application_context": map[string]string{
			"return_url": c.returnURL,
			"cancel_url": c.cancelURL,
		},
	}
	var ord Order
	if err := c.post(ctx, "/v2/checkout/orders", payload, &ord); err != nil {
		return Order{}, err
	}
	return ord, nil
}

// CaptureResult reports a finalized payment.  CaptureID is the identifier a
// later refund must reference.
type CaptureResult struct {
	OrderID   string `json:"order_id"`
	CaptureID string `json:"capture_id"`
	Status    string `json:"status"`
}

// CaptureOrder finalizes charging a previously approved order and extracts
// the capture id from the first purchase unit.
func (c *Client) CaptureOrder(ctx context.Context, orderID string) (CaptureResult, error) {
	var body struct {
		Status        string `json:"status"`
		PurchaseUnits []struct {
			Payments struct {
				Captures []struct {
					ID     string `json:"id"`
					Status string `json:"status"`
				} `json:"captures"`
			} `json:"payments"`
		} `json:"purchase_units"`
	}
	if err := c.post(ctx, "/v2/checkout/orders/"+orderID+"/capture", nil, &body); err != nil {
		return CaptureResult{}, err
	}
	res := CaptureResult{OrderID: orderID, Status: body.Status}
	if len(body.PurchaseUnits) > 0 && len(body.PurchaseUnits[0].Payments.Captures) > 0 {
		first := body.PurchaseUnits[0].Payments.Captures[0]
		res.CaptureID = first.ID
		res.Status = first.Status
	}
	if res.CaptureID == "" {
		return res, fmt.Errorf("paypal: capture response carried no capture id for order %s", orderID)
	}
	return res, nil
}

// Refund reverses a captured payment.  A transport or authorization error
// is returned as an error; a response PayPal itself rejects (non-2xx) is
// reported as a FAILED result with a nil error, mirroring how the gateway
// communicates declines.  Callers must treat both the same way: the refund
// did not happen.
func (c *Client) Refund(ctx context.Context, captureRef string, amount float64) (booking.RefundResult, error) {
	token, err := c.Authenticate(ctx)
	if err != nil {
		return booking.RefundResult{Status: "FAILED"}, err
	}

	payload := map[string]any{
		"amount": map[string]string{
			"value":         fmt.Sprintf("%.2f", amount),
			"currency_code": c.currency,
		},
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return booking.RefundResult{Status: "FAILED"}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v2/payments/captures/"+captureRef+"/refund", bytes.NewReader(raw))
	if err != nil {
		return booking.RefundResult{Status: "FAILED"}, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return booking.RefundResult{Status: "FAILED"}, fmt.Errorf("paypal: refund request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		log.Printf("paypal: refund of capture %s rejected: %s %s", captureRef, resp.Status, msg)
		return booking.RefundResult{Status: "FAILED"}, nil
	}

	var body struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return booking.RefundResult{Status: "FAILED"}, fmt.Errorf("paypal: decode refund response: %w", err)
	}
	return booking.RefundResult{Status: body.Status, RefundID: body.ID}, nil
}

// post sends an authenticated JSON POST and decodes a 2xx response into out.
func (c *Client) post(ctx context.Context, path string, payload any, out any) error {
	token, err := c.Authenticate(ctx)
	if err != nil {
		return err
	}
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("paypal: %s failed: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("paypal: %s returned %s: %s", path, resp.Status, msg)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
