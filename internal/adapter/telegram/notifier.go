package telegram

import (
	"context"
	"fmt"

	"solana-deposit-engine/internal/core/domain"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// Sender is the slice of the Telegram API the notifier needs.
// *tgbotapi.BotAPI satisfies it.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier delivers engine notifications over Telegram. Admin messages
// go to the configured operations chat; user messages go to the chat
// whose ID equals the user ID, since users are onboarded through the
// bot and their chat ID is their user ID.
type Notifier struct {
	api         Sender
	adminChatID int64
	log         zerolog.Logger
}

// NewNotifier creates a Telegram-backed notifier.
func NewNotifier(api Sender, adminChatID int64, log zerolog.Logger) *Notifier {
	return &Notifier{
		api:         api,
		adminChatID: adminChatID,
		log:         log,
	}
}

func (n *Notifier) NotifyAdmin(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := n.api.Send(tgbotapi.NewMessage(n.adminChatID, text)); err != nil {
		return fmt.Errorf("send admin notification: %w", err)
	}
	return nil
}

func (n *Notifier) NotifyUser(ctx context.Context, userID domain.UserID, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := n.api.Send(tgbotapi.NewMessage(int64(userID), text)); err != nil {
		return fmt.Errorf("send user notification: %w", err)
	}
	return nil
}

// NopNotifier discards notifications. Used when Telegram is disabled so
// the rest of the engine keeps running.
type NopNotifier struct {
	log zerolog.Logger
}

// NewNopNotifier creates a notifier that logs instead of sending.
func NewNopNotifier(log zerolog.Logger) *NopNotifier {
	return &NopNotifier{log: log}
}

func (n *NopNotifier) NotifyAdmin(ctx context.Context, text string) error {
	n.log.Debug().Str("text", text).Msg("Admin notification dropped, Telegram disabled")
	return nil
}

func (n *NopNotifier) NotifyUser(ctx context.Context, userID domain.UserID, text string) error {
	n.log.Debug().Int64("user_id", int64(userID)).Msg("User notification dropped, Telegram disabled")
	return nil
}
