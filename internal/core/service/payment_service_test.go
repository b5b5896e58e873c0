package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/lamnm/aims-checkout/internal/core/domain"
	"github.com/lamnm/aims-checkout/internal/port"
)

// Mock PaymentGateway
type mockGateway struct {
	url      string
	txn      domain.Transaction
	parseErr error
}

func (m *mockGateway) GenerateURL(ctx context.Context, amount int64, description string) (string, error) {
	return m.url, nil
}

func (m *mockGateway) ParseResponse(ctx context.Context, raw string) (domain.Transaction, error) {
	if m.parseErr != nil {
		return domain.Transaction{}, m.parseErr
	}
	return m.txn, nil
}

func settledGateway() *mockGateway {
	return &mockGateway{
		url: "https://gateway.example/pay?x=1",
		txn: domain.Transaction{ID: "txn-1", Amount: 127000, Completed: true},
	}
}

func newPaymentFixture(gw *mockGateway) (*PaymentService, *mockOrderRepo, *mockCart) {
	repo := newMockOrderRepo()
	cart := cartWithItems()
	return NewPaymentService(gw, repo, cart), repo, cart
}

func createTestOrder(t *testing.T, repo *mockOrderRepo) string {
	t.Helper()
	id, err := repo.CreateOrder(context.Background(), domain.Order{Amount: 127000})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	return id
}

func TestGeneratePaymentURL(t *testing.T) {
	svc, repo, _ := newPaymentFixture(settledGateway())
	orderID := createTestOrder(t, repo)

	url, err := svc.GeneratePaymentURL(context.Background(), orderID, 127000, "AIMS order")
	if err != nil {
		t.Fatalf("GeneratePaymentURL failed: %v", err)
	}
	if url == "" {
		t.Error("expected non-empty payment url")
	}
	if got := svc.AttemptState(orderID); got != domain.PaymentStateURLGenerated {
		t.Errorf("expected URL_GENERATED, got %s", got)
	}
}

func TestGeneratePaymentURL_NegativeAmount(t *testing.T) {
	svc, repo, _ := newPaymentFixture(settledGateway())
	orderID := createTestOrder(t, repo)

	_, err := svc.GeneratePaymentURL(context.Background(), orderID, -1, "AIMS order")
	if !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount, got: %v", err)
	}
	if got := svc.AttemptState(orderID); got != domain.PaymentStateInitiated {
		t.Errorf("expected attempt to stay INITIATED, got %s", got)
	}
}

func TestPayOrder_Success(t *testing.T) {
	svc, repo, cart := newPaymentFixture(settledGateway())
	orderID := createTestOrder(t, repo)

	if _, err := svc.GeneratePaymentURL(context.Background(), orderID, 127000, "AIMS order"); err != nil {
		t.Fatalf("GeneratePaymentURL failed: %v", err)
	}

	outcome := svc.PayOrder(context.Background(), "vnp_ResponseCode=00", orderID, "session-1")

	if outcome.Result != domain.PaymentResultSuccess {
		t.Fatalf("expected SUCCESS, got %s (%s)", outcome.Result, outcome.Message)
	}
	if outcome.Message != "You have successfully paid the order!" {
		t.Errorf("unexpected success message: %q", outcome.Message)
	}
	if _, ok := repo.transactions[orderID]; !ok {
		t.Error("transaction not persisted")
	}
	if !cart.emptied {
		t.Error("cart not cleared after successful settlement")
	}
	if got := svc.AttemptState(orderID); got != domain.PaymentStateSettled {
		t.Errorf("expected SETTLED, got %s", got)
	}
}

func TestPayOrder_GatewayDecline(t *testing.T) {
	gw := settledGateway()
	gw.parseErr = &port.PaymentError{Code: "24", Message: "the customer cancelled the payment"}
	svc, repo, cart := newPaymentFixture(gw)
	orderID := createTestOrder(t, repo)

	outcome := svc.PayOrder(context.Background(), "vnp_ResponseCode=24", orderID, "session-1")

	if outcome.Result != domain.PaymentResultFailure {
		t.Fatalf("expected FAILURE, got %s", outcome.Result)
	}
	if !strings.Contains(outcome.Message, "cancelled") {
		t.Errorf("expected cause message, got %q", outcome.Message)
	}
	if len(repo.transactions) != 0 {
		t.Error("transaction persisted despite gateway decline")
	}
	if cart.emptied {
		t.Error("cart cleared despite failed settlement")
	}
}

func TestPayOrder_UnrecognizedResponse(t *testing.T) {
	gw := settledGateway()
	gw.parseErr = port.ErrUnrecognizedResponse
	svc, repo, _ := newPaymentFixture(gw)
	orderID := createTestOrder(t, repo)

	outcome := svc.PayOrder(context.Background(), "garbage", orderID, "session-1")

	if outcome.Result != domain.PaymentResultFailure {
		t.Fatalf("expected FAILURE, got %s", outcome.Result)
	}
	if got := svc.AttemptState(orderID); got != domain.PaymentStateFailed {
		t.Errorf("expected FAILED, got %s", got)
	}
}

func TestPayOrder_PersistenceFailure(t *testing.T) {
	svc, repo, cart := newPaymentFixture(settledGateway())
	orderID := createTestOrder(t, repo)
	repo.saveErr = errors.New("connection refused")

	outcome := svc.PayOrder(context.Background(), "vnp_ResponseCode=00", orderID, "session-1")

	if outcome.Result != domain.PaymentResultFailure {
		t.Fatalf("expected FAILURE, got %s", outcome.Result)
	}
	if cart.emptied {
		t.Error("cart cleared despite persistence failure")
	}
}

func TestPayOrder_UnknownOrder(t *testing.T) {
	svc, _, _ := newPaymentFixture(settledGateway())

	outcome := svc.PayOrder(context.Background(), "vnp_ResponseCode=00", "missing-order", "session-1")

	if outcome.Result != domain.PaymentResultFailure {
		t.Fatalf("expected FAILURE for unknown order, got %s", outcome.Result)
	}
}

func TestPayOrder_RetryAfterDecline(t *testing.T) {
	gw := settledGateway()
	gw.parseErr = &port.PaymentError{Code: "24", Message: "the customer cancelled the payment"}
	svc, repo, cart := newPaymentFixture(gw)
	orderID := createTestOrder(t, repo)

	if _, err := svc.GeneratePaymentURL(context.Background(), orderID, 127000, "AIMS order"); err != nil {
		t.Fatalf("GeneratePaymentURL failed: %v", err)
	}

	outcome := svc.PayOrder(context.Background(), "vnp_ResponseCode=24", orderID, "session-1")
	if outcome.Result != domain.PaymentResultFailure {
		t.Fatalf("expected FAILURE on decline, got %s", outcome.Result)
	}

	// A declined order must accept a fresh attempt from INITIATED.
	gw.parseErr = nil
	if _, err := svc.GeneratePaymentURL(context.Background(), orderID, 127000, "AIMS order"); err != nil {
		t.Fatalf("GeneratePaymentURL after decline failed: %v", err)
	}

	outcome = svc.PayOrder(context.Background(), "vnp_ResponseCode=00", orderID, "session-1")
	if outcome.Result != domain.PaymentResultSuccess {
		t.Fatalf("expected SUCCESS on retry, got %s (%s)", outcome.Result, outcome.Message)
	}
	if got := svc.AttemptState(orderID); got != domain.PaymentStateSettled {
		t.Errorf("expected SETTLED after retry, got %s", got)
	}
	if !cart.emptied {
		t.Error("cart not cleared after successful retry")
	}
}

func TestGeneratePaymentURL_SettledStaysTerminal(t *testing.T) {
	svc, repo, _ := newPaymentFixture(settledGateway())
	orderID := createTestOrder(t, repo)

	if _, err := svc.GeneratePaymentURL(context.Background(), orderID, 127000, "AIMS order"); err != nil {
		t.Fatalf("GeneratePaymentURL failed: %v", err)
	}
	outcome := svc.PayOrder(context.Background(), "vnp_ResponseCode=00", orderID, "session-1")
	if outcome.Result != domain.PaymentResultSuccess {
		t.Fatalf("expected SUCCESS, got %s", outcome.Result)
	}

	// Only FAILED attempts re-initiate; a settled order stays settled.
	_, err := svc.GeneratePaymentURL(context.Background(), orderID, 127000, "AIMS order")
	if !errors.Is(err, domain.ErrIllegalTransition) {
		t.Errorf("expected ErrIllegalTransition for settled order, got: %v", err)
	}
}

func TestPayOrder_AtMostOneSettlement(t *testing.T) {
	svc, repo, _ := newPaymentFixture(settledGateway())
	orderID := createTestOrder(t, repo)

	concurrency := 20
	var successCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcome := svc.PayOrder(context.Background(), "vnp_ResponseCode=00", orderID, "session-1")
			if outcome.Result == domain.PaymentResultSuccess {
				successCount.Add(1)
			}
		}()
	}

	wg.Wait()

	if successCount.Load() != 1 {
		t.Errorf("expected exactly 1 successful settlement, got %d", successCount.Load())
	}
	if len(repo.transactions) != 1 {
		t.Errorf("expected exactly 1 recorded transaction, got %d", len(repo.transactions))
	}
}
