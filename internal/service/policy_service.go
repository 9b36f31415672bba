package service

import (
	"context"
	"fmt"

	"solana-deposit-engine/internal/core/domain"
	"solana-deposit-engine/internal/core/ports"
	"solana-deposit-engine/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// PolicyServiceImpl implements ports.PolicyService. Decisions are
// evaluated against a single ledger snapshot, so a deposit landing
// mid-evaluation shows up on the next check rather than producing a
// mixed view.
type PolicyServiceImpl struct {
	ledgerRepo ports.LedgerRepository
	quote      ports.QuoteSource
	asset      string
	minBuyUSD  decimal.Decimal
	multiplier decimal.Decimal
	log        zerolog.Logger
}

// NewPolicyService creates a new PolicyServiceImpl. minBuyUSD and
// multiplier arrive as config strings and must parse as decimals.
func NewPolicyService(
	ledgerRepo ports.LedgerRepository,
	quote ports.QuoteSource,
	asset string,
	minBuyUSD string,
	multiplier string,
	log zerolog.Logger,
) (*PolicyServiceImpl, error) {
	minBuy, err := decimal.NewFromString(minBuyUSD)
	if err != nil {
		return nil, fmt.Errorf("parsing min buy threshold %q: %w", minBuyUSD, err)
	}
	mult, err := decimal.NewFromString(multiplier)
	if err != nil {
		return nil, fmt.Errorf("parsing withdrawal multiplier %q: %w", multiplier, err)
	}

	return &PolicyServiceImpl{
		ledgerRepo: ledgerRepo,
		quote:      quote,
		asset:      asset,
		minBuyUSD:  minBuy,
		multiplier: mult,
		log:        log,
	}, nil
}

// CheckBuy evaluates the buy rule for the user. A zero balance is
// decided without consulting the quote source, so a price outage does
// not block the common empty-wallet case.
func (s *PolicyServiceImpl) CheckBuy(ctx context.Context, userID domain.UserID) (*domain.BuyDecision, error) {
	entry, err := s.ledgerRepo.Get(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get ledger entry: %w", err))
	}
	if entry == nil {
		return nil, apperror.ErrWalletNotFound()
	}

	if entry.CumulativeDeposits <= 0 {
		d := domain.EvaluateBuy(entry.CumulativeDeposits, decimal.Zero, s.minBuyUSD)
		return &d, nil
	}

	price, err := s.quote.GetPrice(ctx, s.asset)
	if err != nil {
		return nil, err
	}

	d := domain.EvaluateBuy(entry.CumulativeDeposits, price, s.minBuyUSD)

	s.log.Debug().
		Int64("user_id", int64(userID)).
		Str("balance_usd", d.BalanceUSD.String()).
		Bool("allowed", d.Allowed).
		Msg("Buy rule evaluated")

	return &d, nil
}

// CheckWithdrawal evaluates the withdrawal rule for the user against a
// requested SOL amount.
func (s *PolicyServiceImpl) CheckWithdrawal(ctx context.Context, userID domain.UserID, amount string) (*domain.WithdrawalDecision, error) {
	requested, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, apperror.ErrInvalidAmount()
	}

	entry, err := s.ledgerRepo.Get(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get ledger entry: %w", err))
	}
	if entry == nil {
		return nil, apperror.ErrWalletNotFound()
	}

	d := domain.EvaluateWithdrawal(entry.CumulativeDeposits, requested, s.multiplier)

	s.log.Info().
		Int64("user_id", int64(userID)).
		Str("requested_sol", d.RequestedSOL.String()).
		Str("minimum_sol", d.MinimumSOL.String()).
		Bool("allowed", d.Allowed).
		Msg("Withdrawal rule evaluated")

	return &d, nil
}
