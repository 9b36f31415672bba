package postgres

import (
	"context"
	"errors"
	"fmt"

	"solana-deposit-engine/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// LedgerRepo implements ports.LedgerRepository.
type LedgerRepo struct {
	pool Pool
}

// NewLedgerRepo creates a new LedgerRepo.
func NewLedgerRepo(pool Pool) *LedgerRepo {
	return &LedgerRepo{pool: pool}
}

const ledgerColumns = `user_id, cumulative_deposits, last_observed_balance,
		wallet_notified, last_notified_cumulative, created_at, updated_at`

func scanLedgerEntry(row pgx.Row) (*domain.LedgerEntry, error) {
	e := &domain.LedgerEntry{}
	err := row.Scan(
		&e.UserID, &e.CumulativeDeposits, &e.LastObservedBalance,
		&e.WalletNotified, &e.LastNotifiedCumulative, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Create inserts a new ledger entry within the derivation transaction.
func (r *LedgerRepo) Create(ctx context.Context, tx pgx.Tx, entry *domain.LedgerEntry) error {
	query := `INSERT INTO ledger_entries
		(user_id, cumulative_deposits, last_observed_balance, wallet_notified, last_notified_cumulative, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := tx.Exec(ctx, query,
		entry.UserID, entry.CumulativeDeposits, entry.LastObservedBalance,
		entry.WalletNotified, entry.LastNotifiedCumulative, entry.CreatedAt, entry.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}

// Get fetches a ledger entry by user ID (non-locking read).
func (r *LedgerRepo) Get(ctx context.Context, userID domain.UserID) (*domain.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledger_entries WHERE user_id = $1`

	e, err := scanLedgerEntry(r.pool.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get ledger entry: %w", err)
	}
	return e, nil
}

// GetForUpdate fetches a ledger entry with pessimistic locking.
// This MUST be called within a transaction.
func (r *LedgerRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, userID domain.UserID) (*domain.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledger_entries WHERE user_id = $1 FOR UPDATE`

	e, err := scanLedgerEntry(tx.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get ledger entry for update: %w", err)
	}
	return e, nil
}

// UpdateBalances writes the new cumulative and observed balances within
// a transaction.
func (r *LedgerRepo) UpdateBalances(ctx context.Context, tx pgx.Tx, userID domain.UserID, cumulative, lastObserved int64) error {
	query := `UPDATE ledger_entries
		SET cumulative_deposits = $1, last_observed_balance = $2, updated_at = NOW()
		WHERE user_id = $3`

	tag, err := tx.Exec(ctx, query, cumulative, lastObserved, userID)
	if err != nil {
		return fmt.Errorf("update ledger balances: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("ledger entry not found: %d", userID)
	}
	return nil
}

// ClaimWalletNotified flips wallet_notified from false to true. Only one
// caller observes a row change, so the wallet-created announcement goes
// out at most once.
func (r *LedgerRepo) ClaimWalletNotified(ctx context.Context, userID domain.UserID) (bool, error) {
	query := `UPDATE ledger_entries SET wallet_notified = TRUE, updated_at = NOW()
		WHERE user_id = $1 AND wallet_notified = FALSE`

	tag, err := r.pool.Exec(ctx, query, userID)
	if err != nil {
		return false, fmt.Errorf("claim wallet notification: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// SetNotifiedCumulative advances the announcement watermark. The guard
// keeps a stale writer from moving it backwards.
func (r *LedgerRepo) SetNotifiedCumulative(ctx context.Context, userID domain.UserID, cumulative int64) error {
	query := `UPDATE ledger_entries SET last_notified_cumulative = $1, updated_at = NOW()
		WHERE user_id = $2 AND last_notified_cumulative < $1`

	if _, err := r.pool.Exec(ctx, query, cumulative, userID); err != nil {
		return fmt.Errorf("set notified cumulative: %w", err)
	}
	return nil
}

// List returns all ledger entries ordered by user ID.
func (r *LedgerRepo) List(ctx context.Context) ([]domain.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledger_entries ORDER BY user_id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		var e domain.LedgerEntry
		err := rows.Scan(
			&e.UserID, &e.CumulativeDeposits, &e.LastObservedBalance,
			&e.WalletNotified, &e.LastNotifiedCumulative, &e.CreatedAt, &e.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan ledger row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger rows: %w", err)
	}
	return entries, nil
}
