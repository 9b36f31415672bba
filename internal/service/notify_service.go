package service

import (
	"context"
	"fmt"
	"time"

	"solana-deposit-engine/internal/core/domain"
	"solana-deposit-engine/internal/core/ports"
	"solana-deposit-engine/pkg/apperror"

	"github.com/rs/zerolog"
)

// announceRetryIntervals spaces the delivery attempts for the
// wallet-created announcement.
var announceRetryIntervals = []time.Duration{
	15 * time.Second,
	60 * time.Second,
	2 * time.Minute,
}

// NotificationServiceImpl implements ports.NotificationService.
//
// Wallet announcements are at-most-once: the sender claims the
// wallet_notified flag before delivering, so two racing callers cannot
// both send. Deposit announcements are at-least-once: the watermark
// advances only after a successful send, so a failed delivery is
// retried with the next observation.
type NotificationServiceImpl struct {
	baseCtx        context.Context
	ledgerRepo     ports.LedgerRepository
	notifier       ports.Notifier
	retryIntervals []time.Duration
	log            zerolog.Logger
}

// NewNotificationService creates a new NotificationServiceImpl. baseCtx
// bounds the detached announcement deliveries; cancelling it on
// shutdown stops any retry loop still waiting.
func NewNotificationService(
	baseCtx context.Context,
	ledgerRepo ports.LedgerRepository,
	notifier ports.Notifier,
	log zerolog.Logger,
) *NotificationServiceImpl {
	return &NotificationServiceImpl{
		baseCtx:        baseCtx,
		ledgerRepo:     ledgerRepo,
		notifier:       notifier,
		retryIntervals: announceRetryIntervals,
		log:            log,
	}
}

// AnnounceWallet sends the wallet-created event to the admin channel at
// most once. Losing the claim means another caller already announced or
// is announcing; that is not an error.
func (s *NotificationServiceImpl) AnnounceWallet(ctx context.Context, rec domain.WalletRecord) error {
	won, err := s.ledgerRepo.ClaimWalletNotified(ctx, rec.UserID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("claim wallet notification: %w", err))
	}
	if !won {
		return nil
	}

	event := domain.NewWalletCreatedEvent(rec)

	// Fire async with retries
	go s.deliverWalletAnnouncement(event)

	return nil
}

// deliverWalletAnnouncement attempts delivery with backoff. The claim is
// not released on exhaustion; a lost announcement is preferable to a
// duplicate one.
func (s *NotificationServiceImpl) deliverWalletAnnouncement(event domain.WalletCreatedEvent) {
	text := fmt.Sprintf(
		"New deposit wallet\nUser: %d\nAddress: %s",
		event.UserID, event.Address,
	)

	for attempt := 0; attempt <= len(s.retryIntervals); attempt++ {
		if attempt > 0 {
			select {
			case <-s.baseCtx.Done():
				s.log.Info().
					Str("event_id", event.EventID).
					Int64("user_id", int64(event.UserID)).
					Msg("Wallet announcement abandoned, shutting down")
				return
			case <-time.After(s.retryIntervals[attempt-1]):
			}
		}

		err := s.notifier.NotifyAdmin(s.baseCtx, text)
		if err == nil {
			s.log.Info().
				Str("event_id", event.EventID).
				Int64("user_id", int64(event.UserID)).
				Int("attempt", attempt+1).
				Msg("Wallet announcement delivered")
			return
		}

		s.log.Warn().Err(err).
			Str("event_id", event.EventID).
			Int("attempt", attempt+1).
			Msg("Wallet announcement delivery failed")
	}

	s.log.Error().
		Str("event_id", event.EventID).
		Int64("user_id", int64(event.UserID)).
		Msg("Wallet announcement retries exhausted")
}

// AnnounceDeposits sends the unannounced deposit delta for the user, if
// any, and advances the watermark on success.
func (s *NotificationServiceImpl) AnnounceDeposits(ctx context.Context, rec domain.WalletRecord) error {
	entry, err := s.ledgerRepo.Get(ctx, rec.UserID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("get ledger entry: %w", err))
	}
	if entry == nil {
		return apperror.ErrLedgerMissing(int64(rec.UserID))
	}

	delta := entry.UnnotifiedDelta()
	if delta == 0 {
		return nil
	}

	event := domain.NewDepositDetectedEvent(rec, delta, entry.CumulativeDeposits)
	text := fmt.Sprintf(
		"Deposit detected: +%s SOL\nTotal deposited: %s SOL",
		domain.SOL(event.Delta), domain.SOL(event.NewCumulative),
	)

	if err := s.notifier.NotifyUser(ctx, rec.UserID, text); err != nil {
		// Watermark stays put; the delta is re-announced next cycle.
		s.log.Warn().Err(err).
			Str("event_id", event.EventID).
			Int64("user_id", int64(rec.UserID)).
			Msg("Deposit announcement delivery failed")
		return err
	}

	if err := s.ledgerRepo.SetNotifiedCumulative(ctx, rec.UserID, event.NewCumulative); err != nil {
		return apperror.InternalError(fmt.Errorf("advance notification watermark: %w", err))
	}

	s.log.Info().
		Str("event_id", event.EventID).
		Int64("user_id", int64(rec.UserID)).
		Int64("delta", event.Delta).
		Msg("Deposit announcement delivered")

	return nil
}
