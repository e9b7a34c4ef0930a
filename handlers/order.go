package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"goflare.io/checkout"
	"goflare.io/checkout/models"
)

const (
	headerShopDomain = "X-Shopify-Shop-Domain"
	headerShopHmac   = "X-Shopify-Hmac-Sha256"
)

type OrderHandler interface {
	OrderCreated(c echo.Context) error
}

type orderHandler struct {
	Checkout checkout.Checkout
	Logger   *zap.Logger
}

func NewOrderHandler(Checkout checkout.Checkout, Logger *zap.Logger) OrderHandler {
	return &orderHandler{
		Checkout: Checkout,
		Logger:   Logger,
	}
}

// OrderCreated handles POST /webhook/order-created. The caller is Shopify,
// so the answer is a JSON acknowledgement rather than a page.
func (oh *orderHandler) OrderCreated(c echo.Context) error {

	var order models.OrderNotification
	if err := c.Bind(&order); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"status": "error", "message": "Invalid request payload"})
	}

	shopDomain := c.Request().Header.Get(headerShopDomain)
	if c.Request().Header.Get(headerShopHmac) != "" {
		// the signature is logged, not checked; order intake does not authenticate the shop
		oh.Logger.Debug("Shopify HMAC header present, not verified", zap.String("shop_domain", shopDomain))
	}

	result, err := oh.Checkout.IntakeOrder(c.Request().Context(), &order, shopDomain)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status":       "success",
		"checkout_id":  result.SessionID,
		"checkout_url": result.RedirectURL,
		"reference":    result.Reference,
	})
}
