package telegram

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender delivers plain text messages to a fixed set of chats
type Sender interface {
	Send(ctx context.Context, text string) error
}

// messageAPI is the subset of *tgbotapi.BotAPI used here
type messageAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type sender struct {
	api     messageAPI
	chatIDs []int64
}

// NewSender creates a sender authorized with the bot token
func NewSender(token string, chatIDs []int64) (Sender, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	return newSender(api, chatIDs), nil
}

func newSender(api messageAPI, chatIDs []int64) *sender {
	return &sender{
		api:     api,
		chatIDs: chatIDs,
	}
}

// Send posts text to every chat. All chats are attempted, the failures are joined.
func (s *sender) Send(ctx context.Context, text string) error {
	var errs []error
	for _, chatID := range s.chatIDs {
		if err := ctx.Err(); err != nil {
			return err
		}
		msg := tgbotapi.NewMessage(chatID, text)
		if _, err := s.api.Send(msg); err != nil {
			errs = append(errs, fmt.Errorf("failed to send message to chat %d: %w", chatID, err))
		}
	}
	return errors.Join(errs...)
}
