package telegram

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	sent    []tgbotapi.MessageConfig
	failFor int64
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	msg := c.(tgbotapi.MessageConfig)
	if msg.ChatID == f.failFor {
		return tgbotapi.Message{}, errors.New("chat not found")
	}
	f.sent = append(f.sent, msg)
	return tgbotapi.Message{}, nil
}

func TestSender_SendsToEveryChat(t *testing.T) {
	api := &fakeAPI{}
	s := newSender(api, []int64{1, 2})

	require.NoError(t, s.Send(context.Background(), "drift"))
	require.Len(t, api.sent, 2)
	assert.Equal(t, "drift", api.sent[1].Text)
}

func TestSender_JoinsFailures(t *testing.T) {
	api := &fakeAPI{failFor: 1}
	s := newSender(api, []int64{1, 2})

	err := s.Send(context.Background(), "drift")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat 1")
	assert.Len(t, api.sent, 1)
}
