package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WalletCreatedEvent announces a freshly derived wallet. Dispatched to
// the admin channel at most once per wallet.
type WalletCreatedEvent struct {
	EventID   string    `json:"event_id"`
	UserID    UserID    `json:"user_id"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
}

// DepositDetectedEvent announces credited deposits. Delta is the total
// unannounced amount in lamports; one event can cover several observer
// cycles if earlier sends failed.
type DepositDetectedEvent struct {
	EventID       string `json:"event_id"`
	UserID        UserID `json:"user_id"`
	Address       string `json:"address"`
	Delta         int64  `json:"delta"`
	NewCumulative int64  `json:"new_cumulative"`
}

// WithdrawalDecisionEvent records a withdrawal evaluation for the admin
// audit trail.
type WithdrawalDecisionEvent struct {
	EventID      string          `json:"event_id"`
	UserID       UserID          `json:"user_id"`
	RequestedSOL decimal.Decimal `json:"requested_sol"`
	Allowed      bool            `json:"allowed"`
	Reason       string          `json:"reason,omitempty"`
}

// NewWalletCreatedEvent builds the event for a wallet record.
func NewWalletCreatedEvent(rec WalletRecord) WalletCreatedEvent {
	return WalletCreatedEvent{
		EventID:   uuid.New().String(),
		UserID:    rec.UserID,
		Address:   rec.Address,
		CreatedAt: rec.CreatedAt,
	}
}

// NewDepositDetectedEvent builds the event for an unannounced delta.
func NewDepositDetectedEvent(rec WalletRecord, delta, newCumulative int64) DepositDetectedEvent {
	return DepositDetectedEvent{
		EventID:       uuid.New().String(),
		UserID:        rec.UserID,
		Address:       rec.Address,
		Delta:         delta,
		NewCumulative: newCumulative,
	}
}

// NewWithdrawalDecisionEvent records the outcome of a withdrawal check.
func NewWithdrawalDecisionEvent(userID UserID, d WithdrawalDecision) WithdrawalDecisionEvent {
	return WithdrawalDecisionEvent{
		EventID:      uuid.New().String(),
		UserID:       userID,
		RequestedSOL: d.RequestedSOL,
		Allowed:      d.Allowed,
		Reason:       d.Reason,
	}
}
