package views

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderPaymentPage(t *testing.T) {
	renderer, err := NewRenderer()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, renderer.Render(&buf, PagePayment, PaymentPage{
		SessionID:  "chk_1",
		Amount:     "19.99",
		Currency:   "EUR",
		OrderID:    "5001",
		SuccessURL: "/payment/success?checkout_id=chk_1",
		FailureURL: "/payment/failure?checkout_id=chk_1",
	}, nil))

	html := buf.String()
	assert.Contains(t, html, `checkoutId: "chk_1"`)
	assert.Contains(t, html, "19.99 EUR")
	assert.Contains(t, html, "Order 5001")
}

func TestRenderErrorPageEscapesUpstreamBody(t *testing.T) {
	renderer, err := NewRenderer()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, renderer.Render(&buf, PageError, ErrorPage{
		Message:        "sumup create checkout failed",
		UpstreamStatus: 402,
		UpstreamBody:   `<script>alert(1)</script>`,
	}, nil))

	html := buf.String()
	assert.Contains(t, html, "Provider status: 402")
	assert.NotContains(t, html, "<script>alert(1)</script>")
}
