package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"
	"go.uber.org/zap"

	"goflare.io/checkout/config"
	"goflare.io/checkout/models"
	"goflare.io/checkout/models/enum"
)

const (
	NameStripe = "stripe"

	stripeSignatureHeader = "Stripe-Signature"
)

// Stripe serves checkouts through Stripe-hosted Checkout Sessions.
type Stripe struct {
	client        *client.API
	secretKey     string
	webhookSecret string
	baseURL       string
	logger        *zap.Logger
}

func NewStripe(cfg *config.Config, logger *zap.Logger) *Stripe {

	backendConfig := &stripe.BackendConfig{
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     logger.Sugar(),
	}
	if cfg.Stripe.APIURL != "" {
		backendConfig.URL = stripe.String(cfg.Stripe.APIURL)
	}

	backends := &stripe.Backends{
		API:     stripe.GetBackendWithConfig(stripe.APIBackend, backendConfig),
		Connect: stripe.GetBackend(stripe.ConnectBackend),
		Uploads: stripe.GetBackend(stripe.UploadsBackend),
	}

	return &Stripe{
		client:        client.New(cfg.Stripe.SecretKey, backends),
		secretKey:     cfg.Stripe.SecretKey,
		webhookSecret: cfg.Stripe.WebhookSecret,
		baseURL:       cfg.Server.BaseURL,
		logger:        logger,
	}
}

func (sp *Stripe) Name() string {
	return NameStripe
}

func (sp *Stripe) EmbeddedCheckout() bool {
	return false
}

func (sp *Stripe) CreateSession(ctx context.Context, req *models.SessionRequest) (*models.Session, error) {

	successURL := req.ReturnURL
	if successURL == "" {
		successURL = sp.baseURL + "/payment/success?checkout_id={CHECKOUT_SESSION_ID}"
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		ClientReferenceID: stripe.String(req.Reference),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(strings.ToLower(req.Currency)),
					UnitAmount: stripe.Int64(toMinorUnits(req.Amount, req.Currency)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.Description),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(sp.baseURL + "/payment/failure"),
	}
	params.Context = ctx
	params.AddMetadata("reference", req.Reference)

	session, err := sp.client.CheckoutSessions.New(params)
	if err != nil {
		return nil, sp.wrap("create checkout session", err)
	}

	sp.logger.Info("Stripe checkout session created",
		zap.String("checkout_id", session.ID),
		zap.String("reference", req.Reference))

	return sp.toSession(session), nil
}

func (sp *Stripe) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {

	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	session, err := sp.client.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return nil, sp.wrap("get checkout session", err)
	}

	return sp.toSession(session), nil
}

func (sp *Stripe) ListTransactions(ctx context.Context) ([]*models.Transaction, error) {

	params := &stripe.PaymentIntentListParams{}
	params.Context = ctx
	params.Limit = stripe.Int64(100)
	params.Single = true

	var transactions []*models.Transaction
	iter := sp.client.PaymentIntents.List(params)
	for iter.Next() {
		pi := iter.PaymentIntent()
		transactions = append(transactions, &models.Transaction{
			ID:        pi.ID,
			Amount:    fromMinorUnits(pi.Amount, string(pi.Currency)),
			Currency:  strings.ToUpper(string(pi.Currency)),
			Status:    string(pi.Status),
			Timestamp: time.Unix(pi.Created, 0).UTC(),
		})
	}
	if err := iter.Err(); err != nil {
		return nil, sp.wrap("list payment intents", err)
	}

	return transactions, nil
}

// FetchAccessToken is not part of Stripe's model: requests authenticate with
// the secret key directly.
func (sp *Stripe) FetchAccessToken(context.Context) (*models.Token, error) {
	return nil, &Error{
		Provider:   NameStripe,
		Op:         "fetch access token",
		StatusCode: http.StatusNotImplemented,
		Body:       []byte(`{"error":"token exchange is not supported by stripe"}`),
		Hint:       "Stripe authenticates with STRIPE_SECRET_KEY; no token is needed",
	}
}

func (sp *Stripe) GetMerchantProfile(context.Context) (json.RawMessage, error) {

	account, err := sp.client.Accounts.Get()
	if err != nil {
		return nil, sp.wrap("get account", err)
	}

	if account.LastResponse != nil && len(account.LastResponse.RawJSON) > 0 {
		return account.LastResponse.RawJSON, nil
	}
	raw, err := json.Marshal(account)
	if err != nil {
		return nil, fmt.Errorf("stripe: failed to encode account: %w", err)
	}

	return raw, nil
}

func (sp *Stripe) ParseWebhook(payload []byte, header http.Header) (*models.WebhookEvent, error) {

	var (
		stripeEvent stripe.Event
		err         error
		verified    bool
	)
	if sp.webhookSecret != "" {
		stripeEvent, err = webhook.ConstructEventWithOptions(payload, header.Get(stripeSignatureHeader), sp.webhookSecret,
			webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
		}
		verified = true
	} else if err = json.Unmarshal(payload, &stripeEvent); err != nil {
		sp.logger.Warn("Stripe webhook payload is not an event", zap.Error(err))
	}

	event := &models.WebhookEvent{
		ID:         stripeEvent.ID,
		Provider:   NameStripe,
		Type:       string(stripeEvent.Type),
		Verified:   verified,
		Payload:    payload,
		ReceivedAt: time.Now(),
	}

	if strings.HasPrefix(event.Type, "checkout.session.") && stripeEvent.Data != nil {
		var session stripe.CheckoutSession
		if err = json.Unmarshal(stripeEvent.Data.Raw, &session); err != nil {
			sp.logger.Warn("Failed to unmarshal checkout session event", zap.Error(err))
		} else {
			event.SessionID = session.ID
		}
	}

	return event, nil
}

func (sp *Stripe) wrap(op string, err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		var body []byte
		if stripeErr.LastResponse != nil && len(stripeErr.LastResponse.RawJSON) > 0 {
			body = stripeErr.LastResponse.RawJSON
		} else {
			body, _ = json.Marshal(stripeErr)
		}
		hint := ""
		if sp.secretKey == "" {
			hint = "STRIPE_SECRET_KEY is not configured"
		}
		return &Error{
			Provider:   NameStripe,
			Op:         op,
			StatusCode: stripeErr.HTTPStatusCode,
			Body:       body,
			Hint:       hint,
		}
	}
	return fmt.Errorf("stripe: %s: %w", op, err)
}

func (sp *Stripe) toSession(session *stripe.CheckoutSession) *models.Session {

	status := enum.SessionStatusPending
	switch {
	case session.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid:
		status = enum.SessionStatusPaid
	case session.Status == stripe.CheckoutSessionStatusExpired:
		status = enum.SessionStatusExpired
	}

	var raw json.RawMessage
	if session.LastResponse != nil {
		raw = session.LastResponse.RawJSON
	}
	if len(raw) == 0 {
		raw, _ = json.Marshal(session)
	}

	return &models.Session{
		ID:          session.ID,
		Reference:   session.ClientReferenceID,
		Amount:      fromMinorUnits(session.AmountTotal, string(session.Currency)),
		Currency:    strings.ToUpper(string(session.Currency)),
		Status:      status,
		RedirectURL: session.URL,
		Raw:         raw,
	}
}

// toMinorUnits expects an amount already validated against the currency
// scale; nothing is rounded here.
func toMinorUnits(amount decimal.Decimal, currency string) int64 {
	return amount.Shift(models.CurrencyScale(currency)).IntPart()
}

func fromMinorUnits(amount int64, currency string) decimal.Decimal {
	return decimal.New(amount, -models.CurrencyScale(currency))
}
