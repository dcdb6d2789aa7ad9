package payments

import (
	"context"
	"errors"
	"os"
	"sync"

	"github.com/google/uuid"

	"github.com/sudo-init-do/consulthub/internal/ledger"
)

// MockGateway is an in-process gateway issuing hosted payment URLs, used
// until a real provider (Flutterwave/Paystack) is integrated.
type MockGateway struct {
	mu      sync.Mutex
	intents map[string]*Intent
}

func NewMockGateway() *MockGateway {
	return &MockGateway{intents: map[string]*Intent{}}
}

func (g *MockGateway) CreateIntent(ctx context.Context, amount ledger.Amount, currency string, metadata map[string]string) (*Intent, error) {
	if amount <= 0 {
		return nil, errors.New("intent amount must be positive")
	}
	if currency == "" {
		currency = "USD"
	}

	base := os.Getenv("MOCK_PAYMENT_URL")
	if base == "" {
		base = "https://pay.consulthub.dev/mock/"
	}

	intent := &Intent{
		ID:        uuid.New().String(),
		Amount:    amount,
		Currency:  currency,
		Status:    "pending",
		Metadata:  metadata,
		CreatedAt: ledger.Now(),
	}
	intent.PaymentURL = base + intent.ID

	g.mu.Lock()
	g.intents[intent.ID] = intent
	g.mu.Unlock()
	return intent, nil
}

func (g *MockGateway) Confirm(ctx context.Context, intentID, methodID string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	intent, ok := g.intents[intentID]
	if !ok {
		return "", errors.New("intent not found")
	}
	if intent.Status != "pending" {
		return intent.Status, nil
	}
	intent.Status = "succeeded"
	return intent.Status, nil
}

func (g *MockGateway) Refund(ctx context.Context, intentID string, amount ledger.Amount, reason string) (*Refund, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	intent, ok := g.intents[intentID]
	if !ok {
		return nil, errors.New("intent not found")
	}
	if amount <= 0 || amount > intent.Amount {
		amount = intent.Amount
	}
	intent.Status = "refunded"
	return &Refund{
		ID:        uuid.New().String(),
		IntentID:  intentID,
		Amount:    amount,
		Reason:    reason,
		Status:    "refunded",
		CreatedAt: ledger.Now(),
	}, nil
}
