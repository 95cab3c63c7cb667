package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"rentora/internal/listing"
)

// Client talks to the remote marketplace REST API on behalf of a user.
// The bearer token is per call; the client itself holds no session.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ApartmentType is the read-only category reference data for the wizard.
type ApartmentType struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Subscription is one row of the user's paginated subscription list.
type Subscription struct {
	ID              int64  `json:"id"`
	PlanName        string `json:"plan_name"`
	Price           int64  `json:"price"`
	Currency        string `json:"currency"`
	InvoiceInterval string `json:"invoice_interval"`
	Status          string `json:"status"`
	ExpiresAt       string `json:"expires_at,omitempty"`
}

type SubscriptionPage struct {
	Subscriptions []Subscription `json:"subscriptions"`
	Page          int            `json:"page"`
	TotalPages    int            `json:"total_pages"`
}

// Upload is one file going into the apartment-create multipart payload.
type Upload struct {
	Field       string
	FileName    string
	ContentType string
	Reader      io.Reader
}

type apartmentEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// CreatedApartment is what the API reports for a successful submission.
type CreatedApartment struct {
	ID int64 `json:"id"`
}

func (c *Client) ApartmentTypes(ctx context.Context, token string) ([]ApartmentType, error) {
	if token == "" {
		return nil, ErrNoToken
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/apartment-types", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("apartment types request: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	if err := classifyStatus(resp.StatusCode, raw); err != nil {
		return nil, err
	}

	var res struct {
		Success bool            `json:"success"`
		Message string          `json:"message"`
		Data    []ApartmentType `json:"data"`
	}
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("apartment types decode: %w body=%s", err, string(raw))
	}
	if !res.Success {
		return nil, &RemoteError{StatusCode: resp.StatusCode, Message: res.Message}
	}
	return res.Data, nil
}

// CreateApartment sends the whole wizard result as one multipart
// payload: every scalar field, the amenity list as JSON, each file, and
// the fixed published/can_rate flags.
func (c *Client) CreateApartment(ctx context.Context, token string, form listing.Form, uploads []Upload) (*CreatedApartment, error) {
	if token == "" {
		return nil, ErrNoToken
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	fields := map[string]string{
		"category_id":   strconv.FormatInt(form.CategoryID, 10),
		"title":         form.Title,
		"amount":        strconv.FormatInt(form.Amount, 10),
		"currency":      form.Currency,
		"duration":      strconv.Itoa(form.Duration),
		"duration_type": form.DurationUnit,
		"country_code":  form.CountryCode,
		"state_code":    form.StateCode,
		"city_code":     form.CityCode,
		"published":     "false",
		"can_rate":      "false",
	}
	if form.Rooms != nil {
		fields["rooms"] = strconv.Itoa(*form.Rooms)
	}
	if form.Description != nil {
		fields["description"] = *form.Description
	}
	if form.SecurityDeposit != nil {
		fields["security_deposit"] = strconv.FormatInt(*form.SecurityDeposit, 10)
	}

	amenities := form.Amenities
	if amenities == nil {
		amenities = []string{}
	}
	amenityJSON, err := json.Marshal(amenities)
	if err != nil {
		return nil, fmt.Errorf("marshal amenities: %w", err)
	}
	fields["amenities"] = string(amenityJSON)

	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("write field %s: %w", name, err)
		}
	}

	for _, up := range uploads {
		part, err := filePart(w, up)
		if err != nil {
			return nil, err
		}
		if _, err := io.Copy(part, up.Reader); err != nil {
			return nil, fmt.Errorf("copy upload %s: %w", up.FileName, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/apartment", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("create apartment request: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	if err := classifyStatus(resp.StatusCode, raw); err != nil {
		return nil, err
	}

	var env apartmentEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("create apartment decode: %w body=%s", err, string(raw))
	}
	// The API signals failure through the body flag even on HTTP 200.
	if !env.Success {
		return nil, &RemoteError{StatusCode: resp.StatusCode, Message: env.Message}
	}

	created := &CreatedApartment{}
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, created); err != nil {
			return nil, fmt.Errorf("create apartment data decode: %w", err)
		}
	}
	return created, nil
}

func (c *Client) Subscriptions(ctx context.Context, token string, page int, search string) (*SubscriptionPage, error) {
	if token == "" {
		return nil, ErrNoToken
	}
	if page < 1 {
		page = 1
	}

	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	if search != "" {
		q.Set("search", search)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/subscriptions?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("subscriptions request: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	if err := classifyStatus(resp.StatusCode, raw); err != nil {
		return nil, err
	}

	var res struct {
		Success bool             `json:"success"`
		Message string           `json:"message"`
		Data    SubscriptionPage `json:"data"`
	}
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("subscriptions decode: %w body=%s", err, string(raw))
	}
	if !res.Success {
		return nil, &RemoteError{StatusCode: resp.StatusCode, Message: res.Message}
	}
	return &res.Data, nil
}

func filePart(w *multipart.Writer, up Upload) (io.Writer, error) {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, up.Field, up.FileName))
	if up.ContentType != "" {
		h.Set("Content-Type", up.ContentType)
	}
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("create part %s: %w", up.FileName, err)
	}
	return part, nil
}

func classifyStatus(status int, raw []byte) error {
	switch {
	case status == http.StatusUnauthorized:
		return ErrUnauthorized
	case status == http.StatusServiceUnavailable:
		return ErrUnavailable
	case status >= 200 && status < 300:
		return nil
	}
	return &RemoteError{StatusCode: status, Message: remoteMessage(raw)}
}

func remoteMessage(raw []byte) string {
	var env struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return ""
	}
	return env.Message
}
