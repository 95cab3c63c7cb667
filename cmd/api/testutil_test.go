package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"rentora/internal/checkout"
	"rentora/internal/flow"
	"rentora/internal/gateway"
	"rentora/internal/listing"
	"rentora/internal/marketplace"
	"rentora/internal/media"
	"rentora/internal/ratelimiter"
)

// ============================================
// In-memory flow store standing in for Redis
// ============================================
type mockFlowStore struct {
	checkouts map[string][]byte
	drafts    map[string][]byte
}

func newMockFlowStore() *mockFlowStore {
	return &mockFlowStore{
		checkouts: make(map[string][]byte),
		drafts:    make(map[string][]byte),
	}
}

func (m *mockFlowStore) SaveCheckout(ctx context.Context, s *checkout.Session, ttl time.Duration) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	m.checkouts[s.ID] = data
	return nil
}

func (m *mockFlowStore) GetCheckout(ctx context.Context, id string) (*checkout.Session, error) {
	data, ok := m.checkouts[id]
	if !ok {
		return nil, flow.ErrNotFound
	}
	var s checkout.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (m *mockFlowStore) DeleteCheckout(ctx context.Context, id string) error {
	delete(m.checkouts, id)
	return nil
}

func (m *mockFlowStore) SaveDraft(ctx context.Context, d *listing.Draft, ttl time.Duration) error {
	data, err := json.Marshal(d)
	if err != nil {
		return err
	}
	m.drafts[d.ID] = data
	return nil
}

func (m *mockFlowStore) GetDraft(ctx context.Context, id string) (*listing.Draft, error) {
	data, ok := m.drafts[id]
	if !ok {
		return nil, flow.ErrNotFound
	}
	var d listing.Draft
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (m *mockFlowStore) DeleteDraft(ctx context.Context, id string) error {
	delete(m.drafts, id)
	return nil
}

func newTestApplication(t *testing.T, market *marketplace.Client, gateways *gateway.Manager, spoolDir string) *application {
	t.Helper()

	spool, err := media.NewSpool(spoolDir)
	if err != nil {
		t.Fatalf("NewSpool: %v", err)
	}
	refs, err := gateway.NewReferenceGenerator("test-secret", "test-salt")
	if err != nil {
		t.Fatalf("NewReferenceGenerator: %v", err)
	}

	return &application{
		config: config{
			env:        "test",
			sessionTTL: time.Hour,
			auth:       authConfig{basic: basicConfig{user: "admin", pass: "admin"}},
		},
		logger:      zap.NewNop().Sugar(),
		flows:       newMockFlowStore(),
		market:      market,
		gateways:    gateways,
		spool:       spool,
		refs:        refs,
		ratelimiter: ratelimiter.NewFixedWindowLimiter(1000, time.Second),
	}
}

func testToken(t *testing.T, expiresIn time.Duration) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub": int64(42),
		"exp": time.Now().Add(expiresIn).Unix(),
		"iat": time.Now().Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("marketplace-secret"))
	if err != nil {
		t.Fatalf("sign test token: %v", err)
	}
	return token
}

func doRequest(t *testing.T, h http.Handler, method, target, token, contentType string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func doJSON(t *testing.T, h http.Handler, method, target, token, payload string) *httptest.ResponseRecorder {
	t.Helper()
	return doRequest(t, h, method, target, token, "application/json", bytes.NewBufferString(payload))
}

// decodeData unwraps the {"data": ...} response envelope.
func decodeData(t *testing.T, rr *httptest.ResponseRecorder, out any) {
	t.Helper()

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v body=%s", err, rr.Body.String())
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		t.Fatalf("decode data: %v body=%s", err, rr.Body.String())
	}
}

func errorMessage(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()

	var envelope struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode error envelope: %v body=%s", err, rr.Body.String())
	}
	return envelope.Message
}

func fileUploadBody(t *testing.T, fileName string, data []byte) (io.Reader, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", fileName)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

// pngBytes is a sniffable PNG payload of the given total size.
func pngBytes(size int) []byte {
	sig := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}
	return append(sig, make([]byte, size-len(sig))...)
}

// mp4Bytes is a sniffable MP4 payload (ftyp box, mp42 brand).
func mp4Bytes(size int) []byte {
	header := []byte{0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p', 'm', 'p', '4', '2',
		0x00, 0x00, 0x00, 0x00, 'm', 'p', '4', '2', 'i', 's', 'o', 'm'}
	return append(header, make([]byte, size-len(header))...)
}
