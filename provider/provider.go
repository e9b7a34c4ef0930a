package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"goflare.io/checkout/config"
	"goflare.io/checkout/models"
)

var (
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrUnknownProvider  = errors.New("unknown payment provider")
)

// Provider is the outbound side of the bridge. Implementations perform one
// request per call: no retries, no rate limiting.
type Provider interface {
	Name() string
	// EmbeddedCheckout reports whether sessions can be paid through an
	// in-page widget rather than a provider-hosted page.
	EmbeddedCheckout() bool

	CreateSession(ctx context.Context, req *models.SessionRequest) (*models.Session, error)
	GetSession(ctx context.Context, sessionID string) (*models.Session, error)
	ListTransactions(ctx context.Context) ([]*models.Transaction, error)
	FetchAccessToken(ctx context.Context) (*models.Token, error)
	GetMerchantProfile(ctx context.Context) (json.RawMessage, error)

	ParseWebhook(payload []byte, header http.Header) (*models.WebhookEvent, error)
}

// Error is a non-2xx answer from the provider. Body is kept exactly as
// received.
type Error struct {
	Provider   string
	Op         string
	StatusCode int
	Body       []byte
	Hint       string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s failed with status %d: %s", e.Provider, e.Op, e.StatusCode, string(e.Body))
}

// JSONBody returns the upstream body as raw JSON when it is valid JSON, and
// as a JSON string otherwise.
func (e *Error) JSONBody() json.RawMessage {
	if len(e.Body) > 0 && json.Valid(e.Body) {
		return e.Body
	}
	quoted, _ := json.Marshal(string(e.Body))
	return quoted
}

// New returns the provider selected by configuration.
func New(cfg *config.Config, logger *zap.Logger) (Provider, error) {
	switch cfg.Provider.Name {
	case "", NameSumUp:
		return NewSumUp(cfg, http.DefaultClient, logger), nil
	case NameStripe:
		return NewStripe(cfg, logger), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider.Name)
	}
}
