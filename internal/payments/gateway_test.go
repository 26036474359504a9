package payments

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCreatePreference(t *testing.T) {
	var gotAuth string
	var gotReq PreferenceRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/checkout/preferences" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":                 "pref-123",
			"init_point":         "https://pay.example/init",
			"sandbox_init_point": "https://pay.example/sandbox",
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok-abc")
	pref, err := c.CreatePreference(context.Background(), PreferenceRequest{
		ExternalReference: "order-1",
		Items:             []PreferenceItem{{Title: "Mug", Quantity: 2, UnitPrice: 15, CurrencyID: "ARS"}},
	})
	if err != nil {
		t.Fatalf("CreatePreference: %v", err)
	}
	if gotAuth != "Bearer tok-abc" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotReq.ExternalReference != "order-1" {
		t.Errorf("external_reference = %q", gotReq.ExternalReference)
	}
	if pref.ID != "pref-123" || pref.InitPoint != "https://pay.example/init" {
		t.Errorf("preference = %+v", pref)
	}
}

func TestCreatePreferenceOpaqueStringID(t *testing.T) {
	// Preference ids are not numeric: "{collector_id}-{uuid}".
	const prefID = "202809963-920c288b-4015-4299-a963-5e4ee5e3ba30"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":         prefID,
			"init_point": "https://pay.example/init",
		})
	}))
	defer srv.Close()

	pref, err := NewClient(srv.URL, "t").CreatePreference(context.Background(), PreferenceRequest{})
	if err != nil {
		t.Fatalf("CreatePreference: %v", err)
	}
	if pref.ID != prefID {
		t.Errorf("ID = %q, want %q", pref.ID, prefID)
	}
}

func TestGetPaymentFlat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/payments/987" {
			t.Errorf("path = %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":                 987,
			"status":             "approved",
			"external_reference": "order-42",
		})
	}))
	defer srv.Close()

	pay, err := NewClient(srv.URL, "t").GetPayment(context.Background(), "987")
	if err != nil {
		t.Fatalf("GetPayment: %v", err)
	}
	if pay.ID != "987" || pay.Status != "approved" || pay.ExternalReference != "order-42" {
		t.Errorf("payment = %+v", pay)
	}
}

func TestGetPaymentWrappedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"body": map[string]any{
				"id":                 "55",
				"status":             "rejected",
				"external_reference": "order-7",
			},
		})
	}))
	defer srv.Close()

	pay, err := NewClient(srv.URL, "t").GetPayment(context.Background(), "55")
	if err != nil {
		t.Fatalf("GetPayment: %v", err)
	}
	if pay.ID != "55" || pay.Status != "rejected" || pay.ExternalReference != "order-7" {
		t.Errorf("payment = %+v", pay)
	}
}

func TestGetPaymentMissingID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "approved"})
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "t").GetPayment(context.Background(), "1")
	if !errors.Is(err, ErrGatewayUnavailable) {
		t.Errorf("missing id: got %v, want ErrGatewayUnavailable", err)
	}
}

func TestGatewayErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"internal"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "t")
	if _, err := c.GetPayment(context.Background(), "1"); !errors.Is(err, ErrGatewayUnavailable) {
		t.Errorf("5xx: got %v, want ErrGatewayUnavailable", err)
	}

	srv.Close()
	if _, err := c.GetPayment(context.Background(), "1"); !errors.Is(err, ErrGatewayUnavailable) {
		t.Errorf("transport error: got %v, want ErrGatewayUnavailable", err)
	}
}
