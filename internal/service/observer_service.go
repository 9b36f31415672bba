package service

import (
	"context"
	"fmt"
	"time"

	"solana-deposit-engine/internal/core/domain"
	"solana-deposit-engine/internal/core/ports"

	"github.com/rs/zerolog"
)

// ObserverService polls on-chain balances for every known wallet and
// folds the observations into the ledger. One wallet failing does not
// stop the cycle; the failed wallet is retried next cycle.
type ObserverService struct {
	walletRepo ports.WalletRepository
	depositSvc ports.DepositService
	notifySvc  ports.NotificationService
	chain      ports.ChainClient
	interval   time.Duration
	log        zerolog.Logger
}

// NewObserverService creates a new ObserverService.
func NewObserverService(
	walletRepo ports.WalletRepository,
	depositSvc ports.DepositService,
	notifySvc ports.NotificationService,
	chain ports.ChainClient,
	interval time.Duration,
	log zerolog.Logger,
) *ObserverService {
	return &ObserverService{
		walletRepo: walletRepo,
		depositSvc: depositSvc,
		notifySvc:  notifySvc,
		chain:      chain,
		interval:   interval,
		log:        log,
	}
}

// Run polls until ctx is cancelled. The first cycle starts immediately,
// the rest follow the configured interval.
func (s *ObserverService) Run(ctx context.Context) {
	s.log.Info().Dur("interval", s.interval).Msg("Balance observer started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	if err := s.Cycle(ctx); err != nil {
		s.log.Error().Err(err).Msg("Observer cycle failed")
	}

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("Balance observer stopped")
			return
		case <-ticker.C:
			if err := s.Cycle(ctx); err != nil {
				s.log.Error().Err(err).Msg("Observer cycle failed")
			}
		}
	}
}

// Cycle observes every wallet once. Per-wallet failures are logged and
// skipped; only listing failures and cancellation abort the cycle.
func (s *ObserverService) Cycle(ctx context.Context) error {
	wallets, err := s.walletRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("list wallets: %w", err)
	}

	for _, rec := range wallets {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if err := s.observe(ctx, rec); err != nil {
			s.log.Warn().Err(err).
				Int64("user_id", int64(rec.UserID)).
				Str("address", rec.Address).
				Msg("Wallet observation failed")
		}
	}
	return nil
}

func (s *ObserverService) observe(ctx context.Context, rec domain.WalletRecord) error {
	balance, err := s.chain.GetBalance(ctx, rec.Address)
	if err != nil {
		return err
	}

	outcome, err := s.depositSvc.ApplyDeposit(ctx, rec.UserID, balance)
	if err != nil {
		return err
	}

	if outcome.Kind == domain.OutcomeDeposited {
		if err := s.notifySvc.AnnounceDeposits(ctx, rec); err != nil {
			// The watermark did not advance; the delta comes back
			// next cycle.
			return err
		}
	}
	return nil
}
