package telegram

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if f.err != nil {
		return tgbotapi.Message{}, f.err
	}
	msg, ok := c.(tgbotapi.MessageConfig)
	if !ok {
		return tgbotapi.Message{}, errors.New("unexpected chattable type")
	}
	f.sent = append(f.sent, msg)
	return tgbotapi.Message{}, nil
}

func TestNotifier_NotifyAdmin(t *testing.T) {
	sender := &fakeSender{}
	n := NewNotifier(sender, 12345, zerolog.Nop())

	err := n.NotifyAdmin(context.Background(), "deposit engine online")
	require.NoError(t, err)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, int64(12345), sender.sent[0].ChatID)
	assert.Equal(t, "deposit engine online", sender.sent[0].Text)
}

func TestNotifier_NotifyUser_UsesUserIDAsChatID(t *testing.T) {
	sender := &fakeSender{}
	n := NewNotifier(sender, 12345, zerolog.Nop())

	err := n.NotifyUser(context.Background(), 777, "Deposit detected: +1 SOL")
	require.NoError(t, err)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, int64(777), sender.sent[0].ChatID)
}

func TestNotifier_SendFailure(t *testing.T) {
	sender := &fakeSender{err: errors.New("telegram unreachable")}
	n := NewNotifier(sender, 12345, zerolog.Nop())

	err := n.NotifyAdmin(context.Background(), "hello")
	assert.Error(t, err)
}

func TestNotifier_CancelledContext(t *testing.T) {
	sender := &fakeSender{}
	n := NewNotifier(sender, 12345, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := n.NotifyUser(ctx, 777, "hello")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, sender.sent)
}

func TestNopNotifier_DiscardsWithoutError(t *testing.T) {
	n := NewNopNotifier(zerolog.Nop())

	assert.NoError(t, n.NotifyAdmin(context.Background(), "hello"))
	assert.NoError(t, n.NotifyUser(context.Background(), 1, "hello"))
}
