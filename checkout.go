package checkout

import (
	"context"
	"encoding/json"
	"net/http"

	"goflare.io/checkout/models"
	"goflare.io/checkout/models/enum"
)

type Checkout interface {
	CreateCheckout(ctx context.Context, req *models.CheckoutRequest) (*models.CheckoutResult, error)
	IntakeOrder(ctx context.Context, order *models.OrderNotification, shopDomain string) (*models.CheckoutResult, error)
	// Mode is the response shape checkout links get: a rendered payment page
	// or a redirect to the provider-hosted page.
	Mode() enum.CheckoutMode

	VerifyOutcome(ctx context.Context, sessionID string) (*models.Session, error)
	HandleWebhook(ctx context.Context, payload []byte, header http.Header) (*models.WebhookEvent, error)
	WebhookProvider() string

	GetSession(ctx context.Context, sessionID string) (*models.Session, error) // Interacts with provider
	ListTransactions(ctx context.Context) ([]*models.Transaction, error)       // Interacts with provider
	FetchAccessToken(ctx context.Context) (*models.Token, error)               // Interacts with provider
	GetMerchantProfile(ctx context.Context) (json.RawMessage, error)           // Interacts with provider

	Close()
}
