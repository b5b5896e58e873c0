package domain

import "errors"

var ErrIllegalTransition = errors.New("illegal payment state transition")

type PaymentState string

const (
	PaymentStateInitiated    PaymentState = "INITIATED"
	PaymentStateURLGenerated PaymentState = "URL_GENERATED"
	PaymentStateSettled      PaymentState = "SETTLED"
	PaymentStateFailed       PaymentState = "FAILED"
)

// CanTransitionTo reports whether the state machine allows moving to
// next. Settled and Failed are terminal.
func (s PaymentState) CanTransitionTo(next PaymentState) bool {
	switch s {
	case PaymentStateInitiated:
		return next == PaymentStateURLGenerated || next == PaymentStateFailed
	case PaymentStateURLGenerated:
		return next == PaymentStateSettled || next == PaymentStateFailed
	default:
		return false
	}
}

// PaymentAttempt tracks one checkout attempt against an order. A failed
// attempt is terminal; the caller re-initiates with a fresh attempt.
type PaymentAttempt struct {
	OrderID string
	State   PaymentState
}

func NewPaymentAttempt(orderID string) *PaymentAttempt {
	return &PaymentAttempt{OrderID: orderID, State: PaymentStateInitiated}
}

func (a *PaymentAttempt) TransitionTo(next PaymentState) error {
	if !a.State.CanTransitionTo(next) {
		return ErrIllegalTransition
	}
	a.State = next
	return nil
}
