package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"goflare.io/checkout"
	"goflare.io/checkout/models"
	"goflare.io/checkout/models/enum"
	"goflare.io/checkout/provider"
	"goflare.io/checkout/views"
)

type CheckoutHandler interface {
	CreateCheckout(c echo.Context) error
	GetCheckout(c echo.Context) error
}

type checkoutHandler struct {
	Checkout checkout.Checkout
	Logger   *zap.Logger
}

func NewCheckoutHandler(Checkout checkout.Checkout, Logger *zap.Logger) CheckoutHandler {
	return &checkoutHandler{
		Checkout: Checkout,
		Logger:   Logger,
	}
}

// CreateCheckout handles GET /checkout?amount=&currency=&order_id=&return_url=
func (ch *checkoutHandler) CreateCheckout(c echo.Context) error {

	req := &models.CheckoutRequest{
		Origin:      enum.OriginLink,
		Amount:      c.QueryParam("amount"),
		Currency:    c.QueryParam("currency"),
		OrderID:     c.QueryParam("order_id"),
		Description: c.QueryParam("description"),
		ReturnURL:   c.QueryParam("return_url"),
	}

	result, err := ch.Checkout.CreateCheckout(c.Request().Context(), req)
	if err != nil {
		if wantsJSON(c) {
			return respondError(c, err)
		}
		return renderError(c, err, req.ReturnURL)
	}

	if wantsJSON(c) {
		return c.JSON(http.StatusOK, result)
	}

	if ch.Checkout.Mode() == enum.CheckoutModeRedirect {
		if result.RedirectURL == "" {
			ch.Logger.Error("Provider returned no hosted checkout URL", zap.String("session_id", result.SessionID))
			return c.Render(http.StatusBadGateway, views.PageError, views.ErrorPage{
				Message:   "The payment provider did not return a payment page.",
				ReturnURL: req.ReturnURL,
			})
		}
		return c.Redirect(http.StatusFound, result.RedirectURL)
	}

	successURL := result.ReturnURL
	if successURL == "" {
		successURL = "/payment/success?checkout_id=" + url.QueryEscape(result.SessionID)
	}

	return c.Render(http.StatusOK, views.PagePayment, views.PaymentPage{
		SessionID:  result.SessionID,
		Amount:     result.Amount.String(),
		Currency:   result.Currency,
		OrderID:    result.OrderID,
		SuccessURL: successURL,
		FailureURL: "/payment/failure?checkout_id=" + url.QueryEscape(result.SessionID),
	})
}

// GetCheckout handles GET /checkout/:sessionId and passes the provider record through.
func (ch *checkoutHandler) GetCheckout(c echo.Context) error {

	session, err := ch.Checkout.GetSession(c.Request().Context(), c.Param("sessionId"))
	if err != nil {
		return respondError(c, err)
	}

	if len(session.Raw) > 0 {
		return c.JSONBlob(http.StatusOK, session.Raw)
	}
	return c.JSON(http.StatusOK, session)
}

func wantsJSON(c echo.Context) bool {
	return strings.Contains(c.Request().Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON)
}

func renderError(c echo.Context, err error, returnURL string) error {

	status, body := errorResponse(err)

	page := views.ErrorPage{ReturnURL: returnURL}
	var validationErr *checkout.ValidationError
	if errors.As(err, &validationErr) && validationErr.Field == "return_url" {
		page.ReturnURL = ""
	}
	if message, ok := body["message"].(string); ok {
		page.Message = message
	}
	if providerErr := asProviderError(err); providerErr != nil {
		page.UpstreamStatus = providerErr.StatusCode
		page.UpstreamBody = string(providerErr.Body)
		page.Hint = providerErr.Hint
	}

	return c.Render(status, views.PageError, page)
}

func asProviderError(err error) *provider.Error {
	var providerErr *provider.Error
	if errors.As(err, &providerErr) {
		return providerErr
	}
	return nil
}
