package telegram

import (
	"context"
	"errors"
	"fmt"

	"solana-deposit-engine/internal/core/domain"
	"solana-deposit-engine/internal/core/ports"
	"solana-deposit-engine/pkg/apperror"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// Bot answers user commands over Telegram long polling. The chat ID of
// a private chat doubles as the engine user ID.
type Bot struct {
	api       *tgbotapi.BotAPI
	walletSvc ports.WalletService
	policySvc ports.PolicyService
	notifier  ports.Notifier
	log       zerolog.Logger
}

// Connect authenticates against the Telegram API. The returned client
// is shared between the bot and the notifier.
func Connect(token string, log zerolog.Logger) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connect telegram bot: %w", err)
	}
	log.Info().Str("username", api.Self.UserName).Msg("Telegram bot connected")
	return api, nil
}

// NewBot wires the command handlers around an authenticated API client.
func NewBot(
	api *tgbotapi.BotAPI,
	walletSvc ports.WalletService,
	policySvc ports.PolicyService,
	notifier ports.Notifier,
	log zerolog.Logger,
) *Bot {
	return &Bot{
		api:       api,
		walletSvc: walletSvc,
		policySvc: policySvc,
		notifier:  notifier,
		log:       log,
	}
}

// Run polls for updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.log.Info().Msg("Telegram bot stopped")
			return
		case update := <-updates:
			if update.Message != nil {
				b.handleMessage(ctx, update.Message)
			}
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if !msg.IsCommand() {
		return
	}

	chatID := msg.Chat.ID
	userID := domain.UserID(chatID)

	b.log.Debug().
		Int64("chat_id", chatID).
		Str("command", msg.Command()).
		Msg("Received command")

	switch msg.Command() {
	case "start":
		b.cmdStart(chatID)
	case "wallet":
		b.cmdWallet(ctx, chatID, userID)
	case "buy":
		b.cmdBuy(ctx, chatID, userID)
	case "withdraw":
		b.cmdWithdraw(ctx, chatID, userID, msg.CommandArguments())
	default:
		b.sendText(chatID, "Unknown command. Use /start for the command list.")
	}
}

func (b *Bot) cmdStart(chatID int64) {
	b.sendText(chatID, `Welcome to the deposit engine.

/wallet - Show your deposit address
/buy - Check whether your balance clears the buy minimum
/withdraw <amount> - Check a withdrawal amount in SOL`)
}

func (b *Bot) cmdWallet(ctx context.Context, chatID int64, userID domain.UserID) {
	wallet, err := b.walletSvc.Derive(ctx, userID)
	if err != nil {
		b.sendError(chatID, err)
		return
	}
	b.sendText(chatID, fmt.Sprintf("Your deposit address:\n%s", wallet.Address))
}

func (b *Bot) cmdBuy(ctx context.Context, chatID int64, userID domain.UserID) {
	decision, err := b.policySvc.CheckBuy(ctx, userID)
	if err != nil {
		b.sendError(chatID, err)
		return
	}

	if decision.Allowed {
		b.sendText(chatID, fmt.Sprintf(
			"Buy allowed.\nBalance: %s SOL ($%s)",
			decision.BalanceSOL, decision.BalanceUSD.StringFixed(2)))
		return
	}
	b.sendText(chatID, buyRejectionText(decision))
}

// buyRejectionText renders a disallowed buy decision through the policy
// error taxonomy, so every front-end speaks the same rejection copy.
func buyRejectionText(d *domain.BuyDecision) string {
	var head string
	switch d.Reason {
	case domain.ReasonZeroBalance:
		head = apperror.ErrZeroBalance().Message
	default:
		head = apperror.ErrBelowBuyMinimum(d.ThresholdUSD.String()).Message
	}
	return fmt.Sprintf("%s\nBalance: %s SOL ($%s)",
		head, d.BalanceSOL, d.BalanceUSD.StringFixed(2))
}

func (b *Bot) cmdWithdraw(ctx context.Context, chatID int64, userID domain.UserID, args string) {
	if args == "" {
		b.sendText(chatID, "Usage: /withdraw <amount in SOL>")
		return
	}

	decision, err := b.policySvc.CheckWithdrawal(ctx, userID, args)
	if err != nil {
		b.sendError(chatID, err)
		return
	}

	b.auditWithdrawal(ctx, userID, decision)

	if decision.Allowed {
		b.sendText(chatID, fmt.Sprintf(
			"Withdrawal of %s SOL accepted for processing.", decision.RequestedSOL))
		return
	}
	b.sendText(chatID, withdrawalRejectionText(decision))
}

func withdrawalRejectionText(d *domain.WithdrawalDecision) string {
	var head string
	switch d.Reason {
	case domain.ReasonInvalidAmount:
		head = apperror.ErrInvalidAmount().Message
	default:
		head = apperror.ErrBelowWithdrawalMinimum(d.MinimumSOL.String()).Message
	}
	return fmt.Sprintf("%s\nRequested: %s SOL\nMinimum: %s SOL",
		head, d.RequestedSOL, d.MinimumSOL)
}

// auditWithdrawal mirrors every withdrawal evaluation to the admin chat.
func (b *Bot) auditWithdrawal(ctx context.Context, userID domain.UserID, d *domain.WithdrawalDecision) {
	event := domain.NewWithdrawalDecisionEvent(userID, *d)

	verdict := "rejected"
	if event.Allowed {
		verdict = "allowed"
	}
	text := fmt.Sprintf("Withdrawal %s\nUser: %d\nAmount: %s SOL\nEvent: %s",
		verdict, int64(event.UserID), event.RequestedSOL, event.EventID)
	if event.Reason != "" {
		text += fmt.Sprintf("\nReason: %s", event.Reason)
	}

	if err := b.notifier.NotifyAdmin(ctx, text); err != nil {
		b.log.Warn().Err(err).
			Int64("user_id", int64(userID)).
			Msg("Withdrawal audit notification failed")
	}
}

func (b *Bot) sendError(chatID int64, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		b.sendText(chatID, appErr.Message)
		return
	}
	b.log.Error().Err(err).Int64("chat_id", chatID).Msg("Command failed")
	b.sendText(chatID, "Something went wrong. Please try again later.")
}

func (b *Bot) sendText(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.log.Warn().Err(err).Int64("chat_id", chatID).Msg("Telegram send failed")
	}
}
