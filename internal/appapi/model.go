package appapi

import "time"

type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type APIKey struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Prefix     string    `json:"prefix"`
	CreatedAt  time.Time `json:"created_at"`
	LastUsedAt time.Time `json:"last_used_at,omitempty"`
}

// CreatedAPIKey carries the secret, returned exactly once at creation.
type CreatedAPIKey struct {
	APIKey
	Secret string `json:"secret"`
}

type Balance struct {
	Credits  int64  `json:"credits"`
	Currency string `json:"currency"`
}

// TopUpIntent points at the payment provider's checkout page; the provider
// integration itself lives entirely server-side.
type TopUpIntent struct {
	CheckoutURL string `json:"checkout_url"`
	AmountCents int64  `json:"amount_cents"`
}

// Preferences are the per-project recall and generation settings.
type Preferences struct {
	RecallDepth     int     `json:"recall_depth"`
	GenerationModel string  `json:"generation_model"`
	Temperature     float64 `json:"temperature"`
}
