package domain

import "time"

// Transaction is the durable record of a completed payment attempt,
// produced by the gateway adapter and persisted keyed by order ID.
type Transaction struct {
	ID        string // gateway transaction reference
	Amount    int64
	Content   string // gateway order info / description
	BankCode  string
	Completed bool
	CreatedAt time.Time
}

type PaymentResult string

const (
	PaymentResultSuccess PaymentResult = "SUCCESS"
	PaymentResultFailure PaymentResult = "FAILURE"
)

// PaymentOutcome is returned to the caller of a settlement attempt.
// It is transient and never persisted.
type PaymentOutcome struct {
	Result  PaymentResult
	Message string
}
