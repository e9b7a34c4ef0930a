package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"goflare.io/checkout"
	"goflare.io/checkout/provider"
)

// errorResponse maps an error to its status code and JSON envelope. Provider
// bodies are passed through verbatim.
func errorResponse(err error) (int, map[string]any) {
	var (
		validationErr *checkout.ValidationError
		providerErr   *provider.Error
	)

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, map[string]any{
			"status":  "error",
			"message": validationErr.Error(),
			"field":   validationErr.Field,
		}
	case errors.As(err, &providerErr):
		body := map[string]any{
			"status":          "error",
			"message":         fmt.Sprintf("%s %s failed", providerErr.Provider, providerErr.Op),
			"upstream_status": providerErr.StatusCode,
			"upstream_body":   providerErr.JSONBody(),
		}
		if providerErr.Hint != "" {
			body["hint"] = providerErr.Hint
		}
		return http.StatusBadGateway, body
	default:
		return http.StatusInternalServerError, map[string]any{
			"status":  "error",
			"message": err.Error(),
		}
	}
}

func respondError(c echo.Context, err error) error {
	status, body := errorResponse(err)
	return c.JSON(status, body)
}
