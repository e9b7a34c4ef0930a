package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"goflare.io/checkout/models/enum"
)

// OrderContext is the order data held against a provider session so that a
// later callback can be correlated with the order it pays for.
type OrderContext struct {
	SessionID  string          `json:"session_id"`
	OrderID    string          `json:"order_id"`
	Reference  string          `json:"reference"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
	ShopDomain string          `json:"shop_domain,omitempty"`
	ReturnURL  string          `json:"return_url,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

func NewOrderContext() *OrderContext {
	return &OrderContext{}
}

// SessionOutcome is the terminal state recorded for a session. It is written once.
type SessionOutcome struct {
	SessionID string             `json:"session_id"`
	Status    enum.SessionStatus `json:"status"`
	Source    enum.OutcomeSource `json:"source"`
	SettledAt time.Time          `json:"settled_at"`
}

// CheckoutRequest is a payment request as received, before validation.
type CheckoutRequest struct {
	Origin      enum.Origin
	Amount      string
	Currency    string
	OrderID     string
	Description string
	ReturnURL   string
	ShopDomain  string
}

type CheckoutResult struct {
	SessionID   string          `json:"checkout_id"`
	RedirectURL string          `json:"checkout_url,omitempty"`
	Reference   string          `json:"reference"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	OrderID     string          `json:"order_id,omitempty"`
	ReturnURL   string          `json:"return_url,omitempty"`
}

// SessionRequest is what a provider needs to open a checkout session.
type SessionRequest struct {
	Reference       string
	Amount          decimal.Decimal
	Currency        string
	Description     string
	ReturnURL       string
	WebhookURL      string
	PayeeIdentifier string
	Hosted          bool
}

// Session is the provider's view of a checkout session.
type Session struct {
	ID          string             `json:"id"`
	Reference   string             `json:"checkout_reference"`
	Amount      decimal.Decimal    `json:"amount"`
	Currency    string             `json:"currency"`
	Status      enum.SessionStatus `json:"status"`
	RedirectURL string             `json:"checkout_url,omitempty"`
	Raw         json.RawMessage    `json:"-"`
}
