package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"
	TransactionCompleted TransactionStatus = "completed"
	TransactionFailed    TransactionStatus = "failed"
)

type PaymentMethod string

const (
	MethodMpesa PaymentMethod = "mpesa"
	MethodCard  PaymentMethod = "card"
)

type Transaction struct {
	ID        uuid.UUID         `json:"id"`
	UserID    uuid.UUID         `json:"user_id"`
	JobID     *uuid.UUID        `json:"job_id,omitempty"`
	InvoiceID string            `json:"transaction_id"`
	Amount    string            `json:"amount"`
	Method    PaymentMethod     `json:"payment_method"`
	Status    TransactionStatus `json:"status"`
	// Draft is the job post waiting on this payment.
	Draft     json.RawMessage `json:"-"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type Wallet struct {
	UserID  uuid.UUID `json:"user_id"`
	Balance string    `json:"balance"`
}

type MpesaAccount struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	PhoneNumber string    `json:"phone_number"`
	CreatedAt   time.Time `json:"created_at"`
}

type PayPalAccount struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// PagePrice is one row of the per-page pricing table shown on the job form.
type PagePrice struct {
	Amount int `json:"amount"`
}

// Card keeps display data only; the full number and CVV never reach storage.
type Card struct {
	ID             uuid.UUID `json:"id"`
	UserID         uuid.UUID `json:"user_id"`
	CardholderName string    `json:"cardholder_name"`
	Last4          string    `json:"last4"`
	ExpirationDate string    `json:"expiration_date"`
	CardType       string    `json:"card_type"`
	CreatedAt      time.Time `json:"created_at"`
}
