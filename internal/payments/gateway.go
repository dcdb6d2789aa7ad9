package payments

import (
	"context"
	"time"

	"github.com/sudo-init-do/consulthub/internal/ledger"
)

// Intent is a payment the gateway has been asked to collect.
type Intent struct {
	ID         string            `json:"id"`
	Amount     ledger.Amount     `json:"amount"`
	Currency   string            `json:"currency"`
	Status     string            `json:"status"` // pending | succeeded | refunded
	PaymentURL string            `json:"payment_url,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}

// Refund is a full or partial reversal of an intent.
type Refund struct {
	ID        string        `json:"id"`
	IntentID  string        `json:"intent_id"`
	Amount    ledger.Amount `json:"amount"`
	Reason    string        `json:"reason,omitempty"`
	Status    string        `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
}

// Gateway is the payment collaborator. Escrow release is local bookkeeping;
// gateway settlement is asynchronous and reconciled separately, so the ledger
// never waits on Confirm.
type Gateway interface {
	CreateIntent(ctx context.Context, amount ledger.Amount, currency string, metadata map[string]string) (*Intent, error)
	Confirm(ctx context.Context, intentID, methodID string) (string, error)
	Refund(ctx context.Context, intentID string, amount ledger.Amount, reason string) (*Refund, error)
}
