package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"goflare.io/checkout"
	"goflare.io/checkout/provider"
)

type WebhookHandler interface {
	HandleProviderWebhook(c echo.Context) error
}

type webhookHandler struct {
	Checkout checkout.Checkout
	Logger   *zap.Logger
}

func NewWebhookHandler(
	Checkout checkout.Checkout,
	Logger *zap.Logger,
) WebhookHandler {
	return &webhookHandler{
		Checkout: Checkout,
		Logger:   Logger,
	}
}

// HandleProviderWebhook handles POST /webhook/:provider. Payloads are
// acknowledged whatever their shape; only a bad signature is refused.
func (wh *webhookHandler) HandleProviderWebhook(c echo.Context) error {

	if c.Param("provider") != wh.Checkout.WebhookProvider() {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Unknown webhook provider"})
	}

	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Failed to read request body"})
	}

	if _, err = wh.Checkout.HandleWebhook(c.Request().Context(), payload, c.Request().Header); err != nil {
		if errors.Is(err, provider.ErrInvalidSignature) {
			wh.Logger.Warn("Webhook signature verification failed", zap.Error(err))
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid webhook signature"})
		}
		wh.Logger.Error("Failed to handle webhook", zap.Error(err))
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Failed to handle webhook"})
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "received"})
}
