package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const paystackBaseURL = "https://api.paystack.co"

type PaystackAdapter struct {
	SecretKey   string
	CallbackURL string
	baseURL     string
	httpClient  *http.Client
}

// NewPaystackAdapter builds a Paystack gateway. baseURL is overridable
// for tests; empty means the live API.
func NewPaystackAdapter(secret, callbackURL, baseURL string) *PaystackAdapter {
	if baseURL == "" {
		baseURL = paystackBaseURL
	}
	return &PaystackAdapter{
		SecretKey:   secret,
		CallbackURL: callbackURL,
		baseURL:     baseURL,
		httpClient:  http.DefaultClient,
	}
}

func (p *PaystackAdapter) Initiate(ctx context.Context, req InitiateRequest) (InitiateResponse, error) {
	callback := req.CallbackURL
	if callback == "" {
		callback = p.CallbackURL
	}

	// Paystack wants the amount in the currency subunit (kobo for NGN),
	// which is what InitiateRequest already carries.
	payload := map[string]any{
		"email":        req.CustomerEmail,
		"amount":       req.Amount,
		"currency":     req.Currency,
		"reference":    req.Reference,
		"callback_url": callback,
		"metadata": map[string]string{
			"plan_name": req.PlanName,
		},
	}

	body, _ := json.Marshal(payload)

	httpReq, _ := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/transaction/initialize", bytes.NewBuffer(body))
	httpReq.Header.Set("Authorization", "Bearer "+p.SecretKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return InitiateResponse{}, fmt.Errorf("paystack initialize request: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return InitiateResponse{}, fmt.Errorf("paystack initialize failed: http=%d body=%s", resp.StatusCode, string(raw))
	}

	var res struct {
		Status  bool   `json:"status"`
		Message string `json:"message"`
		Data    struct {
			AuthorizationURL string `json:"authorization_url"`
			AccessCode       string `json:"access_code"`
			Reference        string `json:"reference"`
		} `json:"data"`
	}

	if err := json.Unmarshal(raw, &res); err != nil {
		return InitiateResponse{}, fmt.Errorf("paystack initialize decode: %w body=%s", err, string(raw))
	}
	if !res.Status {
		return InitiateResponse{}, fmt.Errorf("paystack initialize rejected: %s", res.Message)
	}

	return InitiateResponse{
		AuthorizationURL: res.Data.AuthorizationURL,
		Reference:        res.Data.Reference,
		Fields: map[string]string{
			"access_code": res.Data.AccessCode,
		},
	}, nil
}

func (p *PaystackAdapter) Verify(ctx context.Context, req VerifyRequest) (VerifyResponse, error) {
	reference := strings.TrimSpace(req.Reference)
	if reference == "" {
		reference = strings.TrimSpace(req.Data["reference"])
	}
	if reference == "" {
		return VerifyResponse{}, fmt.Errorf("paystack verify requires a reference")
	}

	httpReq, _ := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/transaction/verify/"+reference, nil)
	httpReq.Header.Set("Authorization", "Bearer "+p.SecretKey)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return VerifyResponse{}, fmt.Errorf("paystack verify request: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	var res struct {
		Status  bool   `json:"status"`
		Message string `json:"message"`
		Data    struct {
			Status   string `json:"status"` // success, failed, abandoned, ongoing, pending, processing, queued, reversed
			Amount   int64  `json:"amount"`
			Currency string `json:"currency"`
		} `json:"data"`
	}

	if err := json.Unmarshal(raw, &res); err != nil {
		return VerifyResponse{}, fmt.Errorf("paystack verify decode: http=%d err=%w body=%s", resp.StatusCode, err, string(raw))
	}

	state := strings.TrimSpace(res.Data.Status)

	pending := false
	switch strings.ToLower(state) {
	case "ongoing", "pending", "processing", "queued":
		pending = true
	}

	return VerifyResponse{
		Success: strings.EqualFold(state, "success"),
		Pending: pending,
		State:   state,
		Raw: map[string]any{
			"http_status": resp.StatusCode,
			"body":        json.RawMessage(raw),
		},
	}, nil
}
