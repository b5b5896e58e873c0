package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/lamnm/aims-checkout/internal/core/domain"
	"github.com/lamnm/aims-checkout/internal/port"
)

const settledMessage = "You have successfully paid the order!"

// PaymentService orchestrates settlement against the interbank gateway.
// Each order gets a payment attempt moving through
// INITIATED -> URL_GENERATED -> SETTLED | FAILED; a failed attempt is
// terminal and the caller re-initiates a fresh one.
type PaymentService struct {
	gateway port.PaymentGateway
	repo    port.OrderRepository
	cart    port.Cart

	// attempts holds at most one live attempt per order. A FAILED
	// attempt is replaced on the next transition, so retrying after a
	// decline starts from INITIATED again. SETTLED entries are kept:
	// they pin the terminal state in-process, while the durable
	// at-most-one guarantee stays with the store's unique key.
	mu       sync.Mutex
	attempts map[string]*domain.PaymentAttempt
}

func NewPaymentService(gateway port.PaymentGateway, repo port.OrderRepository, cart port.Cart) *PaymentService {
	return &PaymentService{
		gateway:  gateway,
		repo:     repo,
		cart:     cart,
		attempts: make(map[string]*domain.PaymentAttempt),
	}
}

// GeneratePaymentURL exchanges the order amount for a gateway redirect
// URL. The amount is the total in the smallest currency unit and must
// not be negative; anything further is the gateway's business.
func (s *PaymentService) GeneratePaymentURL(ctx context.Context, orderID string, amount int64, description string) (string, error) {
	if amount < 0 {
		return "", ErrInvalidAmount
	}

	url, err := s.gateway.GenerateURL(ctx, amount, description)
	if err != nil {
		return "", fmt.Errorf("generate payment url: %w", err)
	}

	if err := s.transition(orderID, domain.PaymentStateURLGenerated); err != nil {
		return "", err
	}
	return url, nil
}

// PayOrder consumes a raw gateway callback for an order: parse the
// response into a transaction, record it durably, then clear the
// session cart. Every failure is converted into a FAILURE outcome here
// rather than propagated raw; the transaction is either fully saved or
// not saved at all.
func (s *PaymentService) PayOrder(ctx context.Context, rawResponse, orderID, sessionID string) domain.PaymentOutcome {
	txn, err := s.gateway.ParseResponse(ctx, rawResponse)
	if err != nil {
		return s.fail(orderID, err)
	}

	if err := s.repo.SaveTransaction(ctx, txn, orderID); err != nil {
		return s.fail(orderID, err)
	}

	s.settle(orderID)
	log.Info().
		Str("order_id", orderID).
		Str("transaction_id", txn.ID).
		Int64("amount", txn.Amount).
		Msg("order settled")

	// The payment is durable at this point; a cart that fails to clear
	// does not turn the outcome into a failure.
	if err := s.cart.EmptyCart(ctx, sessionID); err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Msg("failed to clear cart after settlement")
	}

	return domain.PaymentOutcome{Result: domain.PaymentResultSuccess, Message: settledMessage}
}

// AttemptState exposes the current state of the order's payment attempt.
func (s *PaymentService) AttemptState(orderID string) domain.PaymentState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.attempts[orderID]; ok {
		return a.State
	}
	return domain.PaymentStateInitiated
}

func (s *PaymentService) transition(orderID string, next domain.PaymentState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	attempt, ok := s.attempts[orderID]
	if !ok || attempt.State == domain.PaymentStateFailed {
		attempt = domain.NewPaymentAttempt(orderID)
		s.attempts[orderID] = attempt
	}
	return attempt.TransitionTo(next)
}

func (s *PaymentService) settle(orderID string) {
	if err := s.transition(orderID, domain.PaymentStateSettled); err != nil {
		log.Warn().Str("order_id", orderID).Msg("settled without a generated payment url")
	}
}

func (s *PaymentService) fail(orderID string, cause error) domain.PaymentOutcome {
	// A losing concurrent attempt may find the state already terminal;
	// the outcome reported to the caller is what matters.
	_ = s.transition(orderID, domain.PaymentStateFailed)
	log.Warn().Err(cause).Str("order_id", orderID).Msg("payment attempt failed")
	return domain.PaymentOutcome{Result: domain.PaymentResultFailure, Message: cause.Error()}
}
