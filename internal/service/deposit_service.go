package service

import (
	"context"
	"fmt"

	"solana-deposit-engine/internal/core/domain"
	"solana-deposit-engine/internal/core/ports"
	"solana-deposit-engine/pkg/apperror"

	"github.com/rs/zerolog"
)

// DepositServiceImpl implements ports.DepositService.
type DepositServiceImpl struct {
	ledgerRepo ports.LedgerRepository
	transactor ports.DBTransactor
	log        zerolog.Logger
}

// NewDepositService creates a new DepositServiceImpl.
func NewDepositService(
	ledgerRepo ports.LedgerRepository,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *DepositServiceImpl {
	return &DepositServiceImpl{
		ledgerRepo: ledgerRepo,
		transactor: transactor,
		log:        log,
	}
}

// ApplyDeposit folds one observed balance into the user's ledger entry.
// The read-compare-write runs under a row lock, so two observer cycles
// racing on the same user serialize and the second sees the first's
// baseline. Deltas are computed against last_observed_balance, never
// against zero, so a restart cannot double-credit old deposits.
func (s *DepositServiceImpl) ApplyDeposit(ctx context.Context, userID domain.UserID, observed uint64) (*domain.DepositOutcome, error) {
	if !domain.FitsLedger(observed) {
		return nil, apperror.ErrBalanceOverflow(observed)
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	entry, err := s.ledgerRepo.GetForUpdate(ctx, dbTx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock ledger entry: %w", err))
	}
	if entry == nil {
		return nil, apperror.ErrLedgerMissing(int64(userID))
	}

	_, outcome := domain.ApplyObserved(*entry, int64(observed))

	if outcome.Kind == domain.OutcomeNoChange {
		// Nothing to write; the rollback releases the lock.
		return &outcome, nil
	}

	if err := s.ledgerRepo.UpdateBalances(ctx, dbTx, userID, outcome.NewCumulative, outcome.NewObserved); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update balances: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Int64("user_id", int64(userID)).
		Str("outcome", outcome.Kind.String()).
		Int64("delta", outcome.Delta).
		Int64("cumulative", outcome.NewCumulative).
		Int64("observed", outcome.NewObserved).
		Msg("Ledger updated")

	return &outcome, nil
}
