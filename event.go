package checkout

import (
	"context"

	"go.uber.org/zap"

	"goflare.io/checkout/models"
)

const (
	EventTypeSumUpCheckoutStatusChanged = "CHECKOUT_STATUS_CHANGED"

	EventTypeStripeCheckoutCompleted             = "checkout.session.completed"
	EventTypeStripeCheckoutExpired               = "checkout.session.expired"
	EventTypeStripeCheckoutAsyncPaymentSucceeded = "checkout.session.async_payment_succeeded"
	EventTypeStripeCheckoutAsyncPaymentFailed    = "checkout.session.async_payment_failed"
)

type EventHandler func(context.Context, *models.WebhookEvent) error

type EventManager struct {
	handlers map[string]EventHandler
	logger   *zap.Logger
}

func NewEventManager(logger *zap.Logger) *EventManager {
	return &EventManager{
		handlers: make(map[string]EventHandler),
		logger:   logger,
	}
}

func (em *EventManager) RegisterHandler(eventType string, handler EventHandler) {
	em.handlers[eventType] = handler
}

func (em *EventManager) GetHandler(eventType string) (EventHandler, bool) {
	handler, exists := em.handlers[eventType]
	return handler, exists
}

func (o *Orchestrator) registerEventHandlers() {

	eventHandlers := map[string]EventHandler{
		// SumUp
		EventTypeSumUpCheckoutStatusChanged: o.handleCheckoutStatusEvent,

		// Stripe
		EventTypeStripeCheckoutCompleted:             o.handleCheckoutStatusEvent,
		EventTypeStripeCheckoutExpired:               o.handleCheckoutStatusEvent,
		EventTypeStripeCheckoutAsyncPaymentSucceeded: o.handleCheckoutStatusEvent,
		EventTypeStripeCheckoutAsyncPaymentFailed:    o.handleCheckoutStatusEvent,
	}

	for eventType, handler := range eventHandlers {
		o.eventManager.RegisterHandler(eventType, handler)
	}
}
