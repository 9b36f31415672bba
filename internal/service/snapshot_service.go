package service

import (
	"context"
	"fmt"

	"solana-deposit-engine/internal/core/domain"
	"solana-deposit-engine/internal/core/ports"
	"solana-deposit-engine/pkg/apperror"
)

// SnapshotServiceImpl implements ports.SnapshotService. Read-only views
// for the admin API; no locks taken.
type SnapshotServiceImpl struct {
	ledgerRepo ports.LedgerRepository
	walletRepo ports.WalletRepository
}

// NewSnapshotService creates a new SnapshotServiceImpl.
func NewSnapshotService(ledgerRepo ports.LedgerRepository, walletRepo ports.WalletRepository) *SnapshotServiceImpl {
	return &SnapshotServiceImpl{
		ledgerRepo: ledgerRepo,
		walletRepo: walletRepo,
	}
}

// LedgerSnapshot returns all ledger entries.
func (s *SnapshotServiceImpl) LedgerSnapshot(ctx context.Context) ([]domain.LedgerEntry, error) {
	entries, err := s.ledgerRepo.List(ctx)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("list ledger entries: %w", err))
	}
	return entries, nil
}

// UserSnapshot returns one user's ledger entry.
func (s *SnapshotServiceImpl) UserSnapshot(ctx context.Context, userID domain.UserID) (*domain.LedgerEntry, error) {
	entry, err := s.ledgerRepo.Get(ctx, userID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("get ledger entry: %w", err))
	}
	if entry == nil {
		return nil, apperror.ErrWalletNotFound()
	}
	return entry, nil
}

// Wallets returns all wallet records.
func (s *SnapshotServiceImpl) Wallets(ctx context.Context) ([]domain.WalletRecord, error) {
	recs, err := s.walletRepo.List(ctx)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("list wallets: %w", err))
	}
	return recs, nil
}
