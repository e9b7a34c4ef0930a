package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"goflare.io/checkout"
	"goflare.io/checkout/models"
)

type DiagnosticsHandler interface {
	Root(c echo.Context) error
	Health(c echo.Context) error
	TestConnection(c echo.Context) error
	GetToken(c echo.Context) error
	ListTransactions(c echo.Context) error
}

type diagnosticsHandler struct {
	Checkout checkout.Checkout
	Logger   *zap.Logger
}

func NewDiagnosticsHandler(Checkout checkout.Checkout, Logger *zap.Logger) DiagnosticsHandler {
	return &diagnosticsHandler{
		Checkout: Checkout,
		Logger:   Logger,
	}
}

func (dh *diagnosticsHandler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":    "active",
		"message":   "Shopify checkout bridge is running",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (dh *diagnosticsHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
}

// TestConnection fetches the merchant profile to prove the credentials work.
func (dh *diagnosticsHandler) TestConnection(c echo.Context) error {

	profile, err := dh.Checkout.GetMerchantProfile(c.Request().Context())
	if err != nil {
		dh.Logger.Error("Provider connection test failed", zap.Error(err))
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status":   "success",
		"message":  "Provider connection successful",
		"merchant": profile,
	})
}

func (dh *diagnosticsHandler) GetToken(c echo.Context) error {

	token, err := dh.Checkout.FetchAccessToken(c.Request().Context())
	if err != nil {
		dh.Logger.Error("Failed to fetch access token", zap.Error(err))
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status": "success",
		"token":  token,
	})
}

func (dh *diagnosticsHandler) ListTransactions(c echo.Context) error {

	transactions, err := dh.Checkout.ListTransactions(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	if transactions == nil {
		transactions = []*models.Transaction{}
	}

	return c.JSON(http.StatusOK, transactions)
}
