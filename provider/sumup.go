package provider

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"goflare.io/checkout/config"
	"goflare.io/checkout/models"
	"goflare.io/checkout/models/enum"
)

const (
	NameSumUp = "sumup"

	sumupAPIVersion      = "/v0.1"
	sumupSignatureHeader = "X-Payload-Signature"
)

// SumUp talks to the SumUp REST API with the bearer key read at startup.
type SumUp struct {
	httpClient    *http.Client
	baseURL       string
	apiKey        string
	clientID      string
	clientSecret  string
	merchantCode  string
	webhookSecret string
	logger        *zap.Logger
}

func NewSumUp(cfg *config.Config, httpClient *http.Client, logger *zap.Logger) *SumUp {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	logger.Info("SumUp provider configured",
		zap.String("api_url", cfg.SumUp.APIURL),
		zap.Bool("api_key_configured", cfg.SumUp.APIKey != ""),
		zap.Bool("client_id_configured", cfg.SumUp.ClientID != ""),
		zap.Bool("merchant_code_configured", cfg.SumUp.MerchantCode != ""))

	return &SumUp{
		httpClient:    httpClient,
		baseURL:       strings.TrimRight(cfg.SumUp.APIURL, "/"),
		apiKey:        cfg.SumUp.APIKey,
		clientID:      cfg.SumUp.ClientID,
		clientSecret:  cfg.SumUp.ClientSecret,
		merchantCode:  cfg.PayeeCode(),
		webhookSecret: cfg.SumUp.WebhookSecret,
		logger:        logger,
	}
}

type sumupHostedCheckout struct {
	Enabled bool `json:"enabled"`
}

type sumupCheckoutRequest struct {
	CheckoutReference string               `json:"checkout_reference"`
	Amount            json.Number          `json:"amount"`
	Currency          string               `json:"currency"`
	MerchantCode      string               `json:"merchant_code,omitempty"`
	Description       string               `json:"description,omitempty"`
	ReturnURL         string               `json:"return_url,omitempty"`
	RedirectURL       string               `json:"redirect_url,omitempty"`
	HostedCheckout    *sumupHostedCheckout `json:"hosted_checkout,omitempty"`
}

type sumupCheckout struct {
	ID                string          `json:"id"`
	CheckoutReference string          `json:"checkout_reference"`
	Amount            decimal.Decimal `json:"amount"`
	Currency          string          `json:"currency"`
	Status            string          `json:"status"`
	CheckoutURL       string          `json:"checkout_url"`
	HostedCheckoutURL string          `json:"hosted_checkout_url"`
}

type sumupTransaction struct {
	ID              string          `json:"id"`
	TransactionCode string          `json:"transaction_code"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	Status          string          `json:"status"`
	PaymentType     string          `json:"payment_type"`
	Timestamp       time.Time       `json:"timestamp"`
}

type sumupWebhookPayload struct {
	EventType string `json:"event_type"`
	ID        string `json:"id"`
}

func (s *SumUp) Name() string {
	return NameSumUp
}

func (s *SumUp) EmbeddedCheckout() bool {
	return true
}

// CreateSession opens a SumUp checkout. The payer's return URL becomes the
// redirect_url; SumUp's return_url is its status callback and is set to the
// webhook URL when one is known.
func (s *SumUp) CreateSession(ctx context.Context, req *models.SessionRequest) (*models.Session, error) {

	payee := req.PayeeIdentifier
	if payee == "" {
		payee = s.merchantCode
	}

	body := sumupCheckoutRequest{
		CheckoutReference: req.Reference,
		Amount:            json.Number(req.Amount.String()),
		Currency:          req.Currency,
		MerchantCode:      payee,
		Description:       req.Description,
		ReturnURL:         req.WebhookURL,
		RedirectURL:       req.ReturnURL,
	}
	if req.Hosted {
		body.HostedCheckout = &sumupHostedCheckout{Enabled: true}
	}

	var checkout sumupCheckout
	raw, err := s.do(ctx, "create checkout", http.MethodPost, sumupAPIVersion+"/checkouts", body, &checkout)
	if err != nil {
		return nil, err
	}

	s.logger.Info("SumUp checkout created",
		zap.String("checkout_id", checkout.ID),
		zap.String("reference", checkout.CheckoutReference))

	return checkout.toSession(raw), nil
}

func (s *SumUp) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {

	var checkout sumupCheckout
	raw, err := s.do(ctx, "get checkout", http.MethodGet, sumupAPIVersion+"/checkouts/"+url.PathEscape(sessionID), nil, &checkout)
	if err != nil {
		return nil, err
	}

	return checkout.toSession(raw), nil
}

func (s *SumUp) ListTransactions(ctx context.Context) ([]*models.Transaction, error) {

	var history struct {
		Items []sumupTransaction `json:"items"`
	}
	if _, err := s.do(ctx, "list transactions", http.MethodGet, sumupAPIVersion+"/me/transactions/history", nil, &history); err != nil {
		return nil, err
	}

	transactions := make([]*models.Transaction, 0, len(history.Items))
	for _, item := range history.Items {
		transactions = append(transactions, &models.Transaction{
			ID:              item.ID,
			TransactionCode: item.TransactionCode,
			Amount:          item.Amount,
			Currency:        item.Currency,
			Status:          item.Status,
			PaymentType:     item.PaymentType,
			Timestamp:       item.Timestamp,
		})
	}

	return transactions, nil
}

// FetchAccessToken exchanges the client credentials for an access token.
func (s *SumUp) FetchAccessToken(ctx context.Context) (*models.Token, error) {

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", s.clientID)
	form.Set("client_secret", s.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/token", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("sumup: failed to build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	raw, status, err := s.send(req)
	if err != nil {
		return nil, fmt.Errorf("sumup: fetch access token: %w", err)
	}
	if status < 200 || status > 299 {
		return nil, &Error{
			Provider:   NameSumUp,
			Op:         "fetch access token",
			StatusCode: status,
			Body:       raw,
			Hint:       s.tokenHint(),
		}
	}

	var token models.Token
	if err = json.Unmarshal(raw, &token); err != nil {
		return nil, fmt.Errorf("sumup: failed to decode token response: %w", err)
	}

	return &token, nil
}

func (s *SumUp) GetMerchantProfile(ctx context.Context) (json.RawMessage, error) {
	return s.do(ctx, "get merchant profile", http.MethodGet, sumupAPIVersion+"/me", nil, nil)
}

// ParseWebhook checks the payload signature when a webhook secret is
// configured. Payloads of an unexpected shape are returned as an event
// without a session id rather than rejected.
func (s *SumUp) ParseWebhook(payload []byte, header http.Header) (*models.WebhookEvent, error) {

	event := &models.WebhookEvent{
		Provider:   NameSumUp,
		Payload:    payload,
		ReceivedAt: time.Now(),
	}

	if s.webhookSecret != "" {
		if !validSignature(payload, header.Get(sumupSignatureHeader), s.webhookSecret) {
			return nil, ErrInvalidSignature
		}
		event.Verified = true
	}

	var body sumupWebhookPayload
	if err := json.Unmarshal(payload, &body); err != nil {
		s.logger.Warn("SumUp webhook payload is not a checkout event", zap.Error(err))
		return event, nil
	}
	event.Type = body.EventType
	event.SessionID = body.ID

	return event, nil
}

// SignPayload returns the signature header value SumUp callbacks are checked
// against.
func SignPayload(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func validSignature(payload []byte, signature, secret string) bool {
	if signature == "" {
		return false
	}
	expected, err := hex.DecodeString(strings.TrimPrefix(signature, "sha256="))
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hmac.Equal(mac.Sum(nil), expected)
}

func (s *SumUp) do(ctx context.Context, op, method, path string, body, out any) (json.RawMessage, error) {

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("sumup: failed to encode %s request: %w", op, err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("sumup: failed to build %s request: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	raw, status, err := s.send(req)
	if err != nil {
		return nil, fmt.Errorf("sumup: %s: %w", op, err)
	}
	if status < 200 || status > 299 {
		return nil, &Error{
			Provider:   NameSumUp,
			Op:         op,
			StatusCode: status,
			Body:       raw,
			Hint:       s.authHint(status),
		}
	}

	if out != nil && len(raw) > 0 {
		if err = json.Unmarshal(raw, out); err != nil {
			return nil, fmt.Errorf("sumup: failed to decode %s response: %w", op, err)
		}
	}

	return raw, nil
}

func (s *SumUp) send(req *http.Request) ([]byte, int, error) {
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}

	return raw, resp.StatusCode, nil
}

func (s *SumUp) authHint(status int) string {
	switch {
	case s.apiKey == "":
		return "SUMUP_API_KEY is not configured"
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return "SumUp rejected the API key; check SUMUP_API_KEY and its scopes"
	default:
		return ""
	}
}

func (s *SumUp) tokenHint() string {
	switch {
	case s.clientID == "":
		return "SUMUP_CLIENT_ID is not configured"
	case s.clientSecret == "":
		return "SUMUP_CLIENT_SECRET is missing; the client credentials grant needs it"
	default:
		return "SumUp rejected the client credentials; check SUMUP_CLIENT_ID and SUMUP_CLIENT_SECRET"
	}
}

func (c *sumupCheckout) toSession(raw json.RawMessage) *models.Session {
	redirectURL := c.HostedCheckoutURL
	if redirectURL == "" {
		redirectURL = c.CheckoutURL
	}
	return &models.Session{
		ID:          c.ID,
		Reference:   c.CheckoutReference,
		Amount:      c.Amount,
		Currency:    c.Currency,
		Status:      sumupStatus(c.Status),
		RedirectURL: redirectURL,
		Raw:         raw,
	}
}

func sumupStatus(status string) enum.SessionStatus {
	switch s := enum.SessionStatus(strings.ToUpper(status)); s {
	case enum.SessionStatusPaid, enum.SessionStatusFailed, enum.SessionStatusExpired:
		return s
	default:
		return enum.SessionStatusPending
	}
}
