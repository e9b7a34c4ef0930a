package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"goflare.io/checkout/config"
	"goflare.io/checkout/models"
	"goflare.io/checkout/models/enum"
	"goflare.io/checkout/provider"
	"goflare.io/checkout/registry"
)

// Orchestrator turns payment requests into provider checkout sessions and
// keeps the session to order correlation in the registry.
type Orchestrator struct {
	provider        provider.Provider
	registry        registry.Service
	references      *ReferenceGenerator
	eventManager    *EventManager
	dispatcher      *Dispatcher
	logger          *zap.Logger
	baseURL         string
	mode            enum.CheckoutMode
	defaultCurrency string
}

func NewOrchestrator(cfg *config.Config, p provider.Provider, rs registry.Service, logger *zap.Logger) *Orchestrator {

	mode := enum.CheckoutMode(strings.ToLower(cfg.Checkout.Mode))
	if mode != enum.CheckoutModeRedirect {
		mode = enum.CheckoutModePage
	}
	if mode == enum.CheckoutModePage && !p.EmbeddedCheckout() {
		logger.Warn("Provider has no embeddable checkout, falling back to redirect mode",
			zap.String("provider", p.Name()))
		mode = enum.CheckoutModeRedirect
	}

	o := &Orchestrator{
		provider:        p,
		registry:        rs,
		references:      NewReferenceGenerator(),
		eventManager:    NewEventManager(logger),
		logger:          logger,
		baseURL:         cfg.Server.BaseURL,
		mode:            mode,
		defaultCurrency: cfg.Checkout.DefaultCurrency,
	}

	o.registerEventHandlers()
	o.dispatcher = NewDispatcher(cfg.Dispatcher.Workers, cfg.Dispatcher.QueueSize, o.ProcessEvent, logger)
	o.dispatcher.Run()

	return o
}

// ProvideCheckout exposes the orchestrator through the Checkout interface.
func ProvideCheckout(cfg *config.Config, p provider.Provider, rs registry.Service, logger *zap.Logger) Checkout {
	return NewOrchestrator(cfg, p, rs, logger)
}

func (o *Orchestrator) Mode() enum.CheckoutMode {
	return o.mode
}

func (o *Orchestrator) WebhookProvider() string {
	return o.provider.Name()
}

// CreateCheckout validates the request, opens exactly one provider session
// and, when the request names an order, registers the order context.
func (o *Orchestrator) CreateCheckout(ctx context.Context, req *models.CheckoutRequest) (*models.CheckoutResult, error) {

	amount, currency, err := validateCheckout(req)
	if err != nil {
		return nil, err
	}

	origin := req.Origin
	if origin == "" {
		origin = enum.OriginLink
	}
	reference := o.references.Next(origin, req.OrderID)

	description := req.Description
	if description == "" {
		if req.OrderID != "" {
			description = "Order #" + req.OrderID
		} else {
			description = "Payment " + reference
		}
	}

	session, err := o.provider.CreateSession(ctx, &models.SessionRequest{
		Reference:   reference,
		Amount:      amount,
		Currency:    currency,
		Description: description,
		ReturnURL:   req.ReturnURL,
		WebhookURL:  o.webhookURL(),
		Hosted:      o.mode == enum.CheckoutModeRedirect,
	})
	if err != nil {
		o.logger.Error("Failed to create checkout session",
			zap.Error(err),
			zap.String("reference", reference),
			zap.String("order_id", req.OrderID))
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	if req.OrderID != "" {
		order := &models.OrderContext{
			OrderID:    req.OrderID,
			Reference:  reference,
			Amount:     amount,
			Currency:   currency,
			ShopDomain: req.ShopDomain,
			ReturnURL:  req.ReturnURL,
		}
		// the payer can still pay without a registry entry
		if err = o.registry.Register(ctx, session.ID, order); err != nil {
			o.logger.Error("Failed to register checkout session",
				zap.Error(err),
				zap.String("session_id", session.ID),
				zap.String("order_id", req.OrderID))
		}
	}

	return &models.CheckoutResult{
		SessionID:   session.ID,
		RedirectURL: session.RedirectURL,
		Reference:   reference,
		Amount:      amount,
		Currency:    currency,
		OrderID:     req.OrderID,
		ReturnURL:   req.ReturnURL,
	}, nil
}

// IntakeOrder maps a Shopify order notification onto a checkout request.
func (o *Orchestrator) IntakeOrder(ctx context.Context, order *models.OrderNotification, shopDomain string) (*models.CheckoutResult, error) {

	orderID := strings.TrimSpace(order.ID.String())
	if orderID == "" {
		return nil, &ValidationError{Field: "id", Reason: "is required"}
	}

	o.logger.Info("Order received",
		zap.String("order_id", orderID),
		zap.String("shop_domain", shopDomain))

	var amount string
	if order.TotalPrice != nil {
		amount = order.TotalPrice.String()
	}

	currency := order.Currency
	if strings.TrimSpace(currency) == "" {
		currency = o.defaultCurrency
	}

	returnURL := order.OrderStatusURL
	if returnURL == "" && shopDomain != "" {
		returnURL = fmt.Sprintf("https://%s/orders/%s", shopDomain, orderID)
	}

	number := order.OrderNumber.String()
	if number == "" {
		number = orderID
	}

	return o.CreateCheckout(ctx, &models.CheckoutRequest{
		Origin:      enum.OriginOrder,
		Amount:      amount,
		Currency:    currency,
		OrderID:     orderID,
		Description: "Shopify Order #" + number,
		ReturnURL:   returnURL,
		ShopDomain:  shopDomain,
	})
}

// VerifyOutcome asks the provider for the session state instead of trusting
// the browser redirect, and settles the session once it is terminal.
func (o *Orchestrator) VerifyOutcome(ctx context.Context, sessionID string) (*models.Session, error) {

	session, err := o.provider.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to verify session %s: %w", sessionID, err)
	}

	if session.Status.IsTerminal() {
		o.settle(ctx, session, enum.OutcomeSourceReturn)
	}

	return session, nil
}

// HandleWebhook verifies and acknowledges a provider callback. Events naming a
// session are reconciled asynchronously.
func (o *Orchestrator) HandleWebhook(ctx context.Context, payload []byte, header http.Header) (*models.WebhookEvent, error) {

	event, err := o.provider.ParseWebhook(payload, header)
	if err != nil {
		return nil, err
	}

	o.logger.Info("Webhook received",
		zap.String("provider", event.Provider),
		zap.String("event_type", event.Type),
		zap.String("session_id", event.SessionID),
		zap.Bool("verified", event.Verified),
		zap.ByteString("payload", event.Payload))

	if event.SessionID != "" {
		o.dispatcher.Submit(context.WithoutCancel(ctx), event)
	}

	return event, nil
}

func (o *Orchestrator) ProcessEvent(ctx context.Context, event *models.WebhookEvent) error {

	handler, ok := o.eventManager.GetHandler(event.Type)
	if !ok {
		o.logger.Info("Unhandled webhook event type", zap.String("event_type", event.Type))
		return nil
	}

	return handler(ctx, event)
}

func (o *Orchestrator) handleCheckoutStatusEvent(ctx context.Context, event *models.WebhookEvent) error {

	order, found, err := o.registry.Lookup(ctx, event.SessionID)
	switch {
	case err != nil:
		o.logger.Warn("Failed to look up session", zap.Error(err), zap.String("session_id", event.SessionID))
	case !found:
		o.logger.Info("Webhook session is not correlated with an order", zap.String("session_id", event.SessionID))
	default:
		o.logger.Info("Webhook session correlated",
			zap.String("session_id", event.SessionID),
			zap.String("order_id", order.OrderID))
	}

	session, err := o.provider.GetSession(ctx, event.SessionID)
	if err != nil {
		return fmt.Errorf("failed to fetch session %s: %w", event.SessionID, err)
	}

	if !session.Status.IsTerminal() {
		o.logger.Info("Session still pending", zap.String("session_id", session.ID))
		return nil
	}

	o.settle(ctx, session, enum.OutcomeSourceWebhook)
	return nil
}

func (o *Orchestrator) settle(ctx context.Context, session *models.Session, source enum.OutcomeSource) {
	err := o.registry.Settle(ctx, &models.SessionOutcome{
		SessionID: session.ID,
		Status:    session.Status,
		Source:    source,
	})
	switch {
	case errors.Is(err, registry.ErrAlreadySettled):
		o.logger.Info("Session already settled, ignoring replay",
			zap.String("session_id", session.ID),
			zap.String("source", string(source)))
	case err != nil:
		o.logger.Error("Failed to settle session", zap.Error(err), zap.String("session_id", session.ID))
	}
}

func (o *Orchestrator) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	return o.provider.GetSession(ctx, sessionID)
}

func (o *Orchestrator) ListTransactions(ctx context.Context) ([]*models.Transaction, error) {
	return o.provider.ListTransactions(ctx)
}

func (o *Orchestrator) FetchAccessToken(ctx context.Context) (*models.Token, error) {
	return o.provider.FetchAccessToken(ctx)
}

func (o *Orchestrator) GetMerchantProfile(ctx context.Context) (json.RawMessage, error) {
	return o.provider.GetMerchantProfile(ctx)
}

// Close drains pending webhook work.
func (o *Orchestrator) Close() {
	o.dispatcher.Stop()
}

func (o *Orchestrator) webhookURL() string {
	if o.baseURL == "" {
		return ""
	}
	return o.baseURL + "/webhook/" + o.provider.Name()
}

func validateCheckout(req *models.CheckoutRequest) (decimal.Decimal, string, error) {

	raw := strings.TrimSpace(req.Amount)
	if raw == "" {
		return decimal.Zero, "", &ValidationError{Field: "amount", Reason: "is required"}
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, "", &ValidationError{Field: "amount", Reason: "must be a number"}
	}
	if !amount.IsPositive() {
		return decimal.Zero, "", &ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		return decimal.Zero, "", &ValidationError{Field: "currency", Reason: "is required"}
	}
	if len(currency) != 3 || strings.IndexFunc(currency, func(r rune) bool { return r < 'A' || r > 'Z' }) >= 0 {
		return decimal.Zero, "", &ValidationError{Field: "currency", Reason: "must be a three-letter ISO 4217 code"}
	}

	scale := models.CurrencyScale(currency)
	if !amount.Equal(amount.Truncate(scale)) {
		return decimal.Zero, "", &ValidationError{
			Field:  "amount",
			Reason: fmt.Sprintf("must have at most %d decimal places for %s", scale, currency),
		}
	}

	if req.ReturnURL != "" && !validReturnURL(req.ReturnURL) {
		return decimal.Zero, "", &ValidationError{Field: "return_url", Reason: "must be an absolute http(s) URL"}
	}

	return amount, currency, nil
}

// validReturnURL accepts absolute http and https URLs with a host. The value
// ends up in a browser redirect, so other schemes are refused.
func validReturnURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}
