package provider

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"goflare.io/checkout/config"
	"goflare.io/checkout/models"
	"goflare.io/checkout/models/enum"
)

func newTestSumUp(t *testing.T, handler http.HandlerFunc, configure func(*config.Config)) *SumUp {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{}
	cfg.SumUp.APIURL = server.URL
	cfg.SumUp.APIKey = "sup_sk_test"
	cfg.SumUp.ClientID = "client-id"
	cfg.SumUp.MerchantCode = "MC123"
	if configure != nil {
		configure(cfg)
	}
	return NewSumUp(cfg, server.Client(), zap.NewNop())
}

func TestSumUpCreateSession(t *testing.T) {
	var received map[string]any
	s := newTestSumUp(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v0.1/checkouts", r.URL.Path)
		assert.Equal(t, "Bearer sup_sk_test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"chk_1","checkout_reference":"shopify-5001-1","amount":19.99,"currency":"EUR","status":"PENDING"}`)
	}, nil)

	session, err := s.CreateSession(context.Background(), &models.SessionRequest{
		Reference:   "shopify-5001-1",
		Amount:      decimal.RequireFromString("19.99"),
		Currency:    "EUR",
		Description: "Shopify Order #42",
		ReturnURL:   "https://shop.example.com/orders/5001",
		WebhookURL:  "https://bridge.example.com/webhook/sumup",
	})
	require.NoError(t, err)

	assert.Equal(t, "chk_1", session.ID)
	assert.Equal(t, enum.SessionStatusPending, session.Status)
	assert.True(t, session.Amount.Equal(decimal.RequireFromString("19.99")))
	assert.JSONEq(t, `{"id":"chk_1","checkout_reference":"shopify-5001-1","amount":19.99,"currency":"EUR","status":"PENDING"}`, string(session.Raw))

	assert.Equal(t, "shopify-5001-1", received["checkout_reference"])
	assert.Equal(t, 19.99, received["amount"])
	assert.Equal(t, "EUR", received["currency"])
	assert.Equal(t, "MC123", received["merchant_code"])
	assert.Equal(t, "https://bridge.example.com/webhook/sumup", received["return_url"])
	assert.Equal(t, "https://shop.example.com/orders/5001", received["redirect_url"])
	assert.NotContains(t, received, "hosted_checkout")
}

func TestSumUpCreateHostedSession(t *testing.T) {
	var received map[string]any
	s := newTestSumUp(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_, _ = io.WriteString(w, `{"id":"chk_2","status":"PENDING","hosted_checkout_url":"https://checkout.sumup.com/pay/chk_2"}`)
	}, func(cfg *config.Config) {
		cfg.SumUp.MerchantCode = ""
	})

	session, err := s.CreateSession(context.Background(), &models.SessionRequest{
		Reference: "checkout-1",
		Amount:    decimal.RequireFromString("5"),
		Currency:  "EUR",
		Hosted:    true,
	})
	require.NoError(t, err)

	assert.Equal(t, "https://checkout.sumup.com/pay/chk_2", session.RedirectURL)
	assert.Equal(t, map[string]any{"enabled": true}, received["hosted_checkout"])
	// falls back to the client id as payee
	assert.Equal(t, "client-id", received["merchant_code"])
}

func TestSumUpPassesUpstreamErrorsThrough(t *testing.T) {
	s := newTestSumUp(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = io.WriteString(w, `{"error_code":"INSUFFICIENT_FUNDS"}`)
	}, nil)

	_, err := s.CreateSession(context.Background(), &models.SessionRequest{
		Reference: "checkout-1",
		Amount:    decimal.RequireFromString("5"),
		Currency:  "EUR",
	})

	var providerErr *Error
	require.True(t, errors.As(err, &providerErr))
	assert.Equal(t, NameSumUp, providerErr.Provider)
	assert.Equal(t, http.StatusPaymentRequired, providerErr.StatusCode)
	assert.Equal(t, `{"error_code":"INSUFFICIENT_FUNDS"}`, string(providerErr.Body))
	assert.Equal(t, `{"error_code":"INSUFFICIENT_FUNDS"}`, string(providerErr.JSONBody()))
}

func TestSumUpAuthHint(t *testing.T) {
	s := newTestSumUp(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, "unauthorized")
	}, func(cfg *config.Config) {
		cfg.SumUp.APIKey = ""
	})

	_, err := s.GetMerchantProfile(context.Background())

	var providerErr *Error
	require.True(t, errors.As(err, &providerErr))
	assert.Equal(t, "SUMUP_API_KEY is not configured", providerErr.Hint)
	assert.Equal(t, `"unauthorized"`, string(providerErr.JSONBody()))
}

func TestSumUpGetSession(t *testing.T) {
	s := newTestSumUp(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v0.1/checkouts/chk_1", r.URL.Path)
		_, _ = io.WriteString(w, `{"id":"chk_1","status":"PAID","amount":10,"currency":"EUR","transactions":[{"id":"tx_1"}]}`)
	}, nil)

	session, err := s.GetSession(context.Background(), "chk_1")
	require.NoError(t, err)
	assert.Equal(t, enum.SessionStatusPaid, session.Status)
	assert.Contains(t, string(session.Raw), `"transactions"`)
}

func TestSumUpListTransactions(t *testing.T) {
	s := newTestSumUp(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v0.1/me/transactions/history", r.URL.Path)
		_, _ = io.WriteString(w, `{"items":[{"id":"tx_1","transaction_code":"TAAA","amount":12.5,"currency":"EUR","status":"SUCCESSFUL","payment_type":"ECOM","timestamp":"2024-05-01T12:00:00Z"}]}`)
	}, nil)

	transactions, err := s.ListTransactions(context.Background())
	require.NoError(t, err)
	require.Len(t, transactions, 1)
	assert.Equal(t, "TAAA", transactions[0].TransactionCode)
	assert.True(t, transactions[0].Amount.Equal(decimal.RequireFromString("12.5")))
}

func TestSumUpFetchAccessToken(t *testing.T) {
	s := newTestSumUp(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/token", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		assert.Equal(t, "client-id", r.PostForm.Get("client_id"))
		_, _ = io.WriteString(w, `{"access_token":"tok","token_type":"Bearer","expires_in":3599}`)
	}, func(cfg *config.Config) {
		cfg.SumUp.ClientSecret = "secret"
	})

	token, err := s.FetchAccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok", token.AccessToken)
}

func TestSumUpFetchAccessTokenHint(t *testing.T) {
	s := newTestSumUp(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":"invalid_client"}`)
	}, nil)

	_, err := s.FetchAccessToken(context.Background())

	var providerErr *Error
	require.True(t, errors.As(err, &providerErr))
	assert.Equal(t, http.StatusBadRequest, providerErr.StatusCode)
	assert.Contains(t, providerErr.Hint, "SUMUP_CLIENT_SECRET")
}

func TestSumUpParseWebhook(t *testing.T) {
	payload := []byte(`{"event_type":"CHECKOUT_STATUS_CHANGED","id":"chk_1"}`)

	t.Run("unverified without secret", func(t *testing.T) {
		s := newTestSumUp(t, nil, nil)
		event, err := s.ParseWebhook(payload, http.Header{})
		require.NoError(t, err)
		assert.Equal(t, "chk_1", event.SessionID)
		assert.Equal(t, "CHECKOUT_STATUS_CHANGED", event.Type)
		assert.False(t, event.Verified)
	})

	t.Run("verified signature", func(t *testing.T) {
		s := newTestSumUp(t, nil, func(cfg *config.Config) { cfg.SumUp.WebhookSecret = "whsec" })
		header := http.Header{}
		header.Set(sumupSignatureHeader, SignPayload(payload, "whsec"))

		event, err := s.ParseWebhook(payload, header)
		require.NoError(t, err)
		assert.True(t, event.Verified)
	})

	t.Run("bad signature", func(t *testing.T) {
		s := newTestSumUp(t, nil, func(cfg *config.Config) { cfg.SumUp.WebhookSecret = "whsec" })
		header := http.Header{}
		header.Set(sumupSignatureHeader, SignPayload(payload, "other"))

		_, err := s.ParseWebhook(payload, header)
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("unexpected shape is acknowledged", func(t *testing.T) {
		s := newTestSumUp(t, nil, nil)
		event, err := s.ParseWebhook([]byte(`not json`), http.Header{})
		require.NoError(t, err)
		assert.Empty(t, event.SessionID)
	})
}

func TestNewSelectsProvider(t *testing.T) {
	cfg := &config.Config{}
	p, err := New(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, NameSumUp, p.Name())

	cfg.Provider.Name = NameStripe
	p, err = New(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, NameStripe, p.Name())
	assert.False(t, p.EmbeddedCheckout())

	cfg.Provider.Name = "paypal"
	_, err = New(cfg, zap.NewNop())
	assert.ErrorIs(t, err, ErrUnknownProvider)
}
