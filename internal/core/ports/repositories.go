package ports

import (
	"context"

	"solana-deposit-engine/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// WalletRepository defines persistence operations for wallet records.
// Methods accepting pgx.Tx run inside the derivation transaction so the
// index allocation and the wallet insert commit or roll back together.
type WalletRepository interface {
	Create(ctx context.Context, tx pgx.Tx, rec *domain.WalletRecord) error
	GetByUserID(ctx context.Context, userID domain.UserID) (*domain.WalletRecord, error)
	List(ctx context.Context) ([]domain.WalletRecord, error)
	// NextDerivationIndex locks the counter row and returns the next
	// free index. The increment is visible only if tx commits, so a
	// failed derivation leaves no gap.
	NextDerivationIndex(ctx context.Context, tx pgx.Tx) (uint32, error)
}

// LedgerRepository defines persistence operations for ledger entries.
type LedgerRepository interface {
	Create(ctx context.Context, tx pgx.Tx, entry *domain.LedgerEntry) error
	Get(ctx context.Context, userID domain.UserID) (*domain.LedgerEntry, error)
	GetForUpdate(ctx context.Context, tx pgx.Tx, userID domain.UserID) (*domain.LedgerEntry, error)
	UpdateBalances(ctx context.Context, tx pgx.Tx, userID domain.UserID, cumulative, lastObserved int64) error
	// ClaimWalletNotified flips wallet_notified from false to true and
	// reports whether this caller won the flip.
	ClaimWalletNotified(ctx context.Context, userID domain.UserID) (bool, error)
	// SetNotifiedCumulative advances the announcement watermark. It
	// never moves the watermark backwards.
	SetNotifiedCumulative(ctx context.Context, userID domain.UserID, cumulative int64) error
	List(ctx context.Context) ([]domain.LedgerEntry, error)
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
