package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/iliyamo/room-reservation/internal/model"
)

// newTestServer runs a stub PayPal API.  The token endpoint always succeeds;
// behavior of the payment endpoints is controlled per test via handle.
func newTestServer(t *testing.T, handle http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		user, _, ok := r.BasicAuth()
		if !ok || user != "client-id" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "test-token"})
	})
	mux.HandleFunc("/", handle)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	c := NewClient(srv.URL, "client-id", "secret", "USD", "http://localhost:5173")
	return srv, c
}

func TestCreateOrder(t *testing.T) {
	var gotBody map[string]any
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/checkout/orders" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-token" {
			t.Errorf("missing bearer token, got %q", auth)
		}
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "ORDER-1",
			"status": "CREATED",
			"links": []map[string]string{
				{"href": "https://paypal.test/approve", "rel": "approve", "method": "GET"},
			},
		})
	})

	ord, err := c.CreateOrder(context.Background(), 123.456)
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if ord.ID != "ORDER-1" || ord.Status != "CREATED" {
		t.Errorf("got order %+v", ord)
	}
	if len(ord.Links) != 1 || ord.Links[0].Rel != "approve" {
		t.Errorf("approve link missing: %+v", ord.Links)
	}

	// Amounts go over the wire as 2-decimal strings.
	units := gotBody["purchase_units"].([]any)
	amount := units[0].(map[string]any)["amount"].(map[string]any)
	if amount["value"] != "123.46" || amount["currency_code"] != "USD" {
		t.Errorf("got amount %v", amount)
	}
}

func TestCaptureOrder(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/checkout/orders/ORDER-1/capture" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "COMPLETED",
			"purchase_units": []map[string]any{
				{"payments": map[string]any{
					"captures": []map[string]string{
						{"id": "CAP-9", "status": "COMPLETED"},
					},
				}},
			},
		})
	})

	res, err := c.CaptureOrder(context.Background(), "ORDER-1")
	if err != nil {
		t.Fatalf("CaptureOrder: %v", err)
	}
	if res.CaptureID != "CAP-9" || res.Status != "COMPLETED" || res.OrderID != "ORDER-1" {
		t.Errorf("got %+v", res)
	}
}

func TestCaptureOrderWithoutCaptureID(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "COMPLETED"})
	})
	if _, err := c.CaptureOrder(context.Background(), "ORDER-1"); err == nil {
		t.Error("expected error when response has no capture id")
	}
}

func TestRefundCompleted(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/payments/captures/CAP-9/refund" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "REF-1", "status": "COMPLETED"})
	})

	res, err := c.Refund(context.Background(), "CAP-9", 250)
	if err != nil {
		t.Fatalf("Refund: %v", err)
	}
	if !res.RefundCompleted() || res.RefundID != "REF-1" {
		t.Errorf("got %+v", res)
	}
	if res.Status != string(model.RefundCompleted) {
		t.Errorf("status %q does not match the stored refund status", res.Status)
	}
}

func TestRefundDeclined(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"name":"UNPROCESSABLE_ENTITY"}`))
	})

	// A decline is data, not an error: the caller records FAILED.
	res, err := c.Refund(context.Background(), "CAP-9", 250)
	if err != nil {
		t.Fatalf("decline must not surface as an error, got %v", err)
	}
	if res.RefundCompleted() {
		t.Error("declined refund reported as completed")
	}
	if res.Status != "FAILED" {
		t.Errorf("got status %q, want FAILED", res.Status)
	}
}

func TestRefundAuthFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	c := NewClient(srv.URL, "client-id", "secret", "USD", "http://localhost:5173")

	res, err := c.Refund(context.Background(), "CAP-9", 250)
	if err == nil {
		t.Error("expected error when authentication fails")
	}
	if res.RefundCompleted() {
		t.Error("failed auth reported a completed refund")
	}
}

func TestRefundRespectsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {})

	if _, err := c.Refund(ctx, "CAP-9", 250); err == nil {
		t.Error("expected error for cancelled context")
	}
}
