package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Transaction struct {
	ID              string          `json:"id"`
	TransactionCode string          `json:"transaction_code,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	Status          string          `json:"status"`
	PaymentType     string          `json:"payment_type,omitempty"`
	Timestamp       time.Time       `json:"timestamp"`
}

type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	Scope       string `json:"scope,omitempty"`
}
