package postgres

import (
	"context"
	"errors"
	"fmt"

	"solana-deposit-engine/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// WalletRepo implements ports.WalletRepository.
type WalletRepo struct {
	pool Pool
}

// NewWalletRepo creates a new WalletRepo.
func NewWalletRepo(pool Pool) *WalletRepo {
	return &WalletRepo{pool: pool}
}

// Create inserts a new wallet record within the derivation transaction.
func (r *WalletRepo) Create(ctx context.Context, tx pgx.Tx, rec *domain.WalletRecord) error {
	query := `INSERT INTO wallets (user_id, derivation_index, address, created_at)
		VALUES ($1, $2, $3, $4)`

	_, err := tx.Exec(ctx, query,
		rec.UserID, rec.DerivationIndex, rec.Address, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert wallet: %w", err)
	}
	return nil
}

// GetByUserID fetches a wallet record by user ID (non-locking read).
func (r *WalletRepo) GetByUserID(ctx context.Context, userID domain.UserID) (*domain.WalletRecord, error) {
	query := `SELECT user_id, derivation_index, address, created_at
		FROM wallets WHERE user_id = $1`

	rec := &domain.WalletRecord{}
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&rec.UserID, &rec.DerivationIndex, &rec.Address, &rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get wallet by user id: %w", err)
	}
	return rec, nil
}

// List returns all wallet records ordered by derivation index, which is
// also creation order.
func (r *WalletRepo) List(ctx context.Context) ([]domain.WalletRecord, error) {
	query := `SELECT user_id, derivation_index, address, created_at
		FROM wallets ORDER BY derivation_index`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list wallets: %w", err)
	}
	defer rows.Close()

	var recs []domain.WalletRecord
	for rows.Next() {
		var rec domain.WalletRecord
		if err := rows.Scan(&rec.UserID, &rec.DerivationIndex, &rec.Address, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan wallet row: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wallet rows: %w", err)
	}
	return recs, nil
}

// NextDerivationIndex locks the single counter row, increments it and
// returns the pre-increment value. MUST be called within a transaction:
// if the caller rolls back, the increment rolls back with it and no
// index is skipped.
func (r *WalletRepo) NextDerivationIndex(ctx context.Context, tx pgx.Tx) (uint32, error) {
	query := `UPDATE derivation_counter SET next_index = next_index + 1
		WHERE id = 1 RETURNING next_index - 1`

	var index uint32
	if err := tx.QueryRow(ctx, query).Scan(&index); err != nil {
		return 0, fmt.Errorf("allocate derivation index: %w", err)
	}
	return index, nil
}
