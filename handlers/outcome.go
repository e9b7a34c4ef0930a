package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"goflare.io/checkout"
	"goflare.io/checkout/models/enum"
	"goflare.io/checkout/views"
)

type OutcomeHandler interface {
	Success(c echo.Context) error
	Failure(c echo.Context) error
}

type outcomeHandler struct {
	Checkout checkout.Checkout
	Logger   *zap.Logger
}

func NewOutcomeHandler(Checkout checkout.Checkout, Logger *zap.Logger) OutcomeHandler {
	return &outcomeHandler{
		Checkout: Checkout,
		Logger:   Logger,
	}
}

// Success handles GET /payment/success. The page reflects the provider's view
// of the session, not the fact that the payer was sent here.
func (oh *outcomeHandler) Success(c echo.Context) error {

	sessionID := c.QueryParam("checkout_id")
	if sessionID == "" {
		return c.Render(http.StatusOK, views.PageSuccess, views.OutcomePage{
			Status:  string(enum.SessionStatusPaid),
			Message: "Payment successful. Thank you for your order.",
		})
	}

	session, err := oh.Checkout.VerifyOutcome(c.Request().Context(), sessionID)
	if err != nil {
		oh.Logger.Warn("Failed to verify payment outcome", zap.Error(err), zap.String("checkout_id", sessionID))
		return c.Render(http.StatusOK, views.PagePending, views.OutcomePage{
			SessionID: sessionID,
			Status:    string(enum.SessionStatusPending),
			Message:   "We could not confirm your payment yet. You will receive a confirmation once it is processed.",
		})
	}

	page := views.OutcomePage{SessionID: session.ID, Status: string(session.Status)}
	switch session.Status {
	case enum.SessionStatusPaid:
		page.Message = "Payment successful. Thank you for your order."
		return c.Render(http.StatusOK, views.PageSuccess, page)
	case enum.SessionStatusFailed, enum.SessionStatusExpired:
		page.Message = "Your payment could not be completed."
		return c.Render(http.StatusOK, views.PageFailure, page)
	default:
		page.Message = "Your payment is being processed."
		return c.Render(http.StatusOK, views.PagePending, page)
	}
}

// Failure handles GET /payment/failure.
func (oh *outcomeHandler) Failure(c echo.Context) error {
	return c.Render(http.StatusOK, views.PageFailure, views.OutcomePage{
		SessionID: c.QueryParam("checkout_id"),
		Status:    string(enum.SessionStatusFailed),
		Message:   "Your payment could not be completed. Please try again.",
	})
}
