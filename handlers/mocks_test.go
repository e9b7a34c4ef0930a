package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/stretchr/testify/mock"

	"goflare.io/checkout/models"
	"goflare.io/checkout/models/enum"
)

type MockCheckout struct {
	mock.Mock
	mode     enum.CheckoutMode
	provider string
}

func (m *MockCheckout) CreateCheckout(ctx context.Context, req *models.CheckoutRequest) (*models.CheckoutResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CheckoutResult), args.Error(1)
}

func (m *MockCheckout) IntakeOrder(ctx context.Context, order *models.OrderNotification, shopDomain string) (*models.CheckoutResult, error) {
	args := m.Called(ctx, order, shopDomain)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CheckoutResult), args.Error(1)
}

func (m *MockCheckout) Mode() enum.CheckoutMode {
	return m.mode
}

func (m *MockCheckout) VerifyOutcome(ctx context.Context, sessionID string) (*models.Session, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *MockCheckout) HandleWebhook(ctx context.Context, payload []byte, header http.Header) (*models.WebhookEvent, error) {
	args := m.Called(ctx, payload, header)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WebhookEvent), args.Error(1)
}

func (m *MockCheckout) WebhookProvider() string {
	return m.provider
}

func (m *MockCheckout) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *MockCheckout) ListTransactions(ctx context.Context) ([]*models.Transaction, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Transaction), args.Error(1)
}

func (m *MockCheckout) FetchAccessToken(ctx context.Context) (*models.Token, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Token), args.Error(1)
}

func (m *MockCheckout) GetMerchantProfile(ctx context.Context) (json.RawMessage, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

func (m *MockCheckout) Close() {}
