package service

import (
	"context"
	"fmt"
	"time"

	"solana-deposit-engine/internal/adapter/storage/postgres"
	"solana-deposit-engine/internal/core/domain"
	"solana-deposit-engine/internal/core/ports"
	"solana-deposit-engine/pkg/apperror"

	"github.com/rs/zerolog"
)

// WalletServiceImpl implements ports.WalletService.
type WalletServiceImpl struct {
	vault      *SeedVault
	walletRepo ports.WalletRepository
	ledgerRepo ports.LedgerRepository
	transactor ports.DBTransactor
	notifySvc  ports.NotificationService
	log        zerolog.Logger
}

// NewWalletService creates a new WalletServiceImpl.
func NewWalletService(
	vault *SeedVault,
	walletRepo ports.WalletRepository,
	ledgerRepo ports.LedgerRepository,
	transactor ports.DBTransactor,
	notifySvc ports.NotificationService,
	log zerolog.Logger,
) *WalletServiceImpl {
	return &WalletServiceImpl{
		vault:      vault,
		walletRepo: walletRepo,
		ledgerRepo: ledgerRepo,
		transactor: transactor,
		notifySvc:  notifySvc,
		log:        log,
	}
}

// Derive returns the user's wallet, creating it on first contact. The
// index allocation, wallet insert and ledger insert share a transaction,
// so a failure at any point leaves no gap in the index sequence.
func (s *WalletServiceImpl) Derive(ctx context.Context, userID domain.UserID) (*domain.Wallet, error) {
	existing, err := s.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get wallet: %w", err))
	}
	if existing != nil {
		return s.rebuild(ctx, existing)
	}

	rec, err := s.create(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.rebuild(ctx, rec)
}

func (s *WalletServiceImpl) create(ctx context.Context, userID domain.UserID) (*domain.WalletRecord, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	index, err := s.walletRepo.NextDerivationIndex(ctx, dbTx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("allocate index: %w", err))
	}

	now := time.Now().UTC()
	rec := &domain.WalletRecord{
		UserID:          userID,
		DerivationIndex: index,
		Address:         s.vault.DeriveAddress(index),
		CreatedAt:       now,
	}

	if err := s.walletRepo.Create(ctx, dbTx, rec); err != nil {
		if postgres.IsUniqueViolation(err) {
			return s.resolveConflict(ctx, userID, index)
		}
		return nil, apperror.InternalError(fmt.Errorf("insert wallet: %w", err))
	}

	entry := &domain.LedgerEntry{
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.ledgerRepo.Create(ctx, dbTx, entry); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("insert ledger entry: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Int64("user_id", int64(userID)).
		Uint32("derivation_index", index).
		Str("address", rec.Address).
		Msg("Wallet derived")

	return rec, nil
}

// resolveConflict handles a unique violation on the wallet insert. The
// usual cause is a concurrent first contact for the same user, in which
// case the winner's record stands. A violation without a winner row
// means the derived address itself collided, which is an invariant
// failure.
func (s *WalletServiceImpl) resolveConflict(ctx context.Context, userID domain.UserID, index uint32) (*domain.WalletRecord, error) {
	winner, err := s.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get winner wallet: %w", err))
	}
	if winner == nil {
		return nil, apperror.ErrDerivationCollision(index)
	}

	s.log.Debug().
		Int64("user_id", int64(userID)).
		Msg("Concurrent wallet derivation, reusing winner")
	return winner, nil
}

// rebuild reattaches key material to a stored record and retries the
// wallet announcement in case an earlier attempt never went out.
func (s *WalletServiceImpl) rebuild(ctx context.Context, rec *domain.WalletRecord) (*domain.Wallet, error) {
	key := s.vault.DeriveKey(rec.DerivationIndex)
	if got := key.PublicKey().String(); got != rec.Address {
		return nil, apperror.ErrSeedInvalid(
			fmt.Errorf("derived address %s does not match stored address %s at index %d", got, rec.Address, rec.DerivationIndex))
	}

	if err := s.notifySvc.AnnounceWallet(ctx, *rec); err != nil {
		s.log.Warn().Err(err).Int64("user_id", int64(rec.UserID)).Msg("Wallet announcement failed")
	}

	return &domain.Wallet{
		UserID:          rec.UserID,
		DerivationIndex: rec.DerivationIndex,
		Address:         rec.Address,
		PrivateKey:      key,
		CreatedAt:       rec.CreatedAt,
	}, nil
}

// Get returns the stored wallet record without key material.
func (s *WalletServiceImpl) Get(ctx context.Context, userID domain.UserID) (*domain.WalletRecord, error) {
	rec, err := s.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get wallet: %w", err))
	}
	if rec == nil {
		return nil, apperror.ErrWalletNotFound()
	}
	return rec, nil
}

// List returns all wallet records.
func (s *WalletServiceImpl) List(ctx context.Context) ([]domain.WalletRecord, error) {
	recs, err := s.walletRepo.List(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list wallets: %w", err))
	}
	return recs, nil
}
