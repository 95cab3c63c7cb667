package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestPaystackInitiate(t *testing.T) {
	var gotAuth string
	var gotPayload map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/transaction/initialize" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":true,"message":"Authorization URL created","data":{"authorization_url":"https://checkout.paystack.com/abc123","access_code":"abc123","reference":"RNT-TEST-REF"}}`))
	}))
	defer srv.Close()

	p := NewPaystackAdapter("sk_test_x", "https://rentora.app/return", srv.URL)

	resp, err := p.Initiate(context.Background(), InitiateRequest{
		Reference:     "RNT-TEST-REF",
		Amount:        100000,
		Currency:      "NGN",
		PlanName:      "Basic",
		CustomerEmail: "tenant@example.com",
	})
	if err != nil {
		t.Fatalf("Initiate: %v", err)
	}

	if gotAuth != "Bearer sk_test_x" {
		t.Errorf("authorization header: %q", gotAuth)
	}
	if gotPayload["email"] != "tenant@example.com" {
		t.Errorf("email: %v", gotPayload["email"])
	}
	if gotPayload["amount"] != float64(100000) {
		t.Errorf("amount: %v", gotPayload["amount"])
	}
	if gotPayload["callback_url"] != "https://rentora.app/return" {
		t.Errorf("callback_url: %v", gotPayload["callback_url"])
	}
	if resp.AuthorizationURL != "https://checkout.paystack.com/abc123" {
		t.Errorf("authorization url: %s", resp.AuthorizationURL)
	}
	if resp.Reference != "RNT-TEST-REF" {
		t.Errorf("reference: %s", resp.Reference)
	}
}

func TestPaystackInitiateRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"status":false,"message":"Invalid key"}`))
	}))
	defer srv.Close()

	p := NewPaystackAdapter("sk_bad", "", srv.URL)
	if _, err := p.Initiate(context.Background(), InitiateRequest{Reference: "r", Amount: 100, Currency: "NGN"}); err == nil {
		t.Fatal("expected an error on http 400")
	}
}

func TestPaystackVerify(t *testing.T) {
	cases := []struct {
		name        string
		body        string
		wantSuccess bool
		wantPending bool
	}{
		{"settled", `{"status":true,"data":{"status":"success","amount":100000,"currency":"NGN"}}`, true, false},
		{"failed", `{"status":true,"data":{"status":"failed"}}`, false, false},
		{"abandoned", `{"status":true,"data":{"status":"abandoned"}}`, false, false},
		{"ongoing", `{"status":true,"data":{"status":"ongoing"}}`, false, true},
		{"pending", `{"status":true,"data":{"status":"pending"}}`, false, true},
	}

	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/transaction/verify/RNT-TEST-REF" {
				t.Errorf("%s: unexpected path %s", tc.name, r.URL.Path)
			}
			w.Write([]byte(tc.body))
		}))

		p := NewPaystackAdapter("sk_test_x", "", srv.URL)
		resp, err := p.Verify(context.Background(), VerifyRequest{Reference: "RNT-TEST-REF"})
		srv.Close()
		if err != nil {
			t.Fatalf("%s: Verify: %v", tc.name, err)
		}
		if resp.Success != tc.wantSuccess {
			t.Errorf("%s: success=%v, want %v", tc.name, resp.Success, tc.wantSuccess)
		}
		if resp.Pending != tc.wantPending {
			t.Errorf("%s: pending=%v, want %v", tc.name, resp.Pending, tc.wantPending)
		}
	}
}

func TestPaystackVerifyRequiresReference(t *testing.T) {
	p := NewPaystackAdapter("sk_test_x", "", "http://127.0.0.1:0")
	if _, err := p.Verify(context.Background(), VerifyRequest{}); err == nil {
		t.Fatal("expected an error without a reference")
	}
}
