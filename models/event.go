package models

import (
	"encoding/json"
	"time"
)

// WebhookEvent is a provider status push, normalised across providers.
type WebhookEvent struct {
	ID         string          `json:"id,omitempty"`
	Provider   string          `json:"provider"`
	Type       string          `json:"type"`
	SessionID  string          `json:"session_id,omitempty"`
	Verified   bool            `json:"verified"`
	Payload    json.RawMessage `json:"-"`
	ReceivedAt time.Time       `json:"received_at"`
}
