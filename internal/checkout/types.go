package checkout

import "time"

// Plan is one subscription plan offered during checkout. Price is in
// minor units of Currency.
type Plan struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	Price           int64  `json:"price"`
	Currency        string `json:"currency"`
	InvoiceInterval string `json:"invoice_interval"`
	Description     string `json:"description,omitempty"`
}

// GatewayInfo is a catalog entry for a selectable payment provider.
type GatewayInfo struct {
	Slug   string `json:"slug"`
	Title  string `json:"title"`
	Active bool   `json:"active"`
}

// Result is the terminal outcome reported back by a payment gateway.
type Result struct {
	Status     string            `json:"status"`
	Reference  string            `json:"reference,omitempty"`
	Data       map[string]string `json:"data,omitempty"`
	ReceivedAt time.Time         `json:"received_at"`
}

const (
	ResultSuccess = "success"
	ResultFailed  = "failed"
)
