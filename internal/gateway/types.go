package gateway

type InitiateRequest struct {
	Reference     string
	Amount        int64 // minor units
	Currency      string
	PlanName      string
	CustomerEmail string
	CallbackURL   string
}

type InitiateResponse struct {
	// AuthorizationURL is where the payer finishes the payment. Empty
	// for offline providers.
	AuthorizationURL string            `json:"authorization_url,omitempty"`
	Reference        string            `json:"reference"`
	Fields           map[string]string `json:"fields,omitempty"` // instruction fields for bank transfer
}

type VerifyRequest struct {
	Reference string
	Data      map[string]string
}

type VerifyResponse struct {
	Success bool
	// Pending means the provider has not settled yet; neither success
	// nor failure should be recorded.
	Pending bool
	State   string
	Raw     map[string]any
}
