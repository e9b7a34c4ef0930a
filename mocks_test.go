package checkout

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/stretchr/testify/mock"

	"goflare.io/checkout/models"
)

type MockProvider struct {
	mock.Mock
	name     string
	embedded bool
}

func NewMockProvider(name string, embedded bool) *MockProvider {
	return &MockProvider{name: name, embedded: embedded}
}

func (m *MockProvider) Name() string {
	return m.name
}

func (m *MockProvider) EmbeddedCheckout() bool {
	return m.embedded
}

func (m *MockProvider) CreateSession(ctx context.Context, req *models.SessionRequest) (*models.Session, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *MockProvider) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *MockProvider) ListTransactions(ctx context.Context) ([]*models.Transaction, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Transaction), args.Error(1)
}

func (m *MockProvider) FetchAccessToken(ctx context.Context) (*models.Token, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Token), args.Error(1)
}

func (m *MockProvider) GetMerchantProfile(ctx context.Context) (json.RawMessage, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

func (m *MockProvider) ParseWebhook(payload []byte, header http.Header) (*models.WebhookEvent, error) {
	args := m.Called(payload, header)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WebhookEvent), args.Error(1)
}
