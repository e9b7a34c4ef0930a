package models

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// OrderNotification is the subset of a Shopify order-created payload the
// bridge reads.
type OrderNotification struct {
	ID             FlexString       `json:"id"`
	TotalPrice     *decimal.Decimal `json:"total_price,omitempty"`
	Currency       string           `json:"currency"`
	OrderNumber    FlexString       `json:"order_number"`
	OrderStatusURL string           `json:"order_status_url"`
}

// FlexString accepts both JSON strings and JSON numbers. Shopify sends numeric
// ids while hand-written test payloads often quote them.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string {
	return string(f)
}
