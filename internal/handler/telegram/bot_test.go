package telegram

import (
	"context"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"dns-manager-backend/internal/domain"
	"dns-manager-backend/internal/usecase"
)

const (
	operatorID = int64(7)
	chatID     = int64(100)
)

type fakeAPI struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	answered int

	// updates is served by GetUpdatesChan and closed on StopReceivingUpdates
	updates  chan tgbotapi.Update
	stopOnce sync.Once
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answered++
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	if f.updates != nil {
		return f.updates
	}
	ch := make(chan tgbotapi.Update)
	close(ch)
	return ch
}

func (f *fakeAPI) StopReceivingUpdates() {
	if f.updates != nil {
		f.stopOnce.Do(func() { close(f.updates) })
	}
}

// lastText returns the text of the latest message or edit
func (f *fakeAPI) lastText(t *testing.T) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.sent)
	switch c := f.sent[len(f.sent)-1].(type) {
	case tgbotapi.MessageConfig:
		return c.Text
	case tgbotapi.EditMessageTextConfig:
		return c.Text
	}
	t.Fatalf("unexpected chattable %T", f.sent[len(f.sent)-1])
	return ""
}

type stubDNS struct {
	usecase.DNSUsecase
	records   map[string]*domain.DNSRecord
	created   *domain.DNSRecordInput
	updated   *usecase.UpdateRecordInput
	deleteErr error
}

func (s *stubDNS) ListZones(context.Context) ([]domain.HostedZone, error) {
	return []domain.HostedZone{{ID: "Z1", Name: "example.com."}}, nil
}

func (s *stubDNS) GetRecord(_ context.Context, id string) (*domain.DNSRecord, error) {
	return s.records[id], nil
}

func (s *stubDNS) ListRecords(context.Context, usecase.ListRecordsInput) ([]domain.DNSRecord, error) {
	var out []domain.DNSRecord
	for _, r := range s.records {
		out = append(out, *r)
	}
	return out, nil
}

func (s *stubDNS) CreateRecord(_ context.Context, in domain.DNSRecordInput) (*domain.DNSRecord, error) {
	s.created = &in
	r := in.Record()
	r.ID = "new"
	return &r, nil
}

func (s *stubDNS) UpdateRecord(_ context.Context, in usecase.UpdateRecordInput) (*domain.DNSRecord, error) {
	s.updated = &in
	r := in.Record()
	r.ID = in.RecordID
	return &r, nil
}

func (s *stubDNS) DeleteRecord(_ context.Context, id string) (*domain.DNSRecord, error) {
	if s.deleteErr != nil {
		return nil, s.deleteErr
	}
	return s.records[id], nil
}

func (s *stubDNS) Distribution(_ context.Context, field string) ([]domain.FieldCount, error) {
	return []domain.FieldCount{{Key: "A", Count: 2}, {Key: "MX", Count: 1}}, nil
}

func newTestBot(dns *stubDNS) (*Bot, *fakeAPI) {
	api := &fakeAPI{}
	return newBot(dns, api, []int64{operatorID}, zap.NewNop()), api
}

func textUpdate(from int64, text string) tgbotapi.Update {
	msg := &tgbotapi.Message{
		From: &tgbotapi.User{ID: from},
		Chat: &tgbotapi.Chat{ID: chatID},
		Text: text,
	}
	if len(text) > 0 && text[0] == '/' {
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(text)}}
	}
	return tgbotapi.Update{Message: msg}
}

func callbackUpdate(from int64, data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:   "cb",
		From: &tgbotapi.User{ID: from},
		Data: data,
		Message: &tgbotapi.Message{
			MessageID: 1,
			Chat:      &tgbotapi.Chat{ID: chatID},
		},
	}}
}

func TestBot_RejectsUnknownUsers(t *testing.T) {
	dns := &stubDNS{}
	bot, api := newTestBot(dns)

	bot.handleUpdate(context.Background(), textUpdate(99, "/start"))
	assert.Contains(t, api.lastText(t), "not authorized")

	bot.handleUpdate(context.Background(), callbackUpdate(99, "confirm_create"))
	assert.Nil(t, dns.created)
	assert.Equal(t, 1, api.answered)
}

func TestBot_CreateWizard(t *testing.T) {
	dns := &stubDNS{}
	bot, api := newTestBot(dns)
	ctx := context.Background()

	bot.handleUpdate(ctx, callbackUpdate(operatorID, "create"))
	assert.Contains(t, api.lastText(t), "Step 1/4")

	bot.handleUpdate(ctx, textUpdate(operatorID, "nodots"))
	assert.Contains(t, api.lastText(t), "not a valid domain")

	bot.handleUpdate(ctx, textUpdate(operatorID, "WWW.Example.com."))
	assert.Contains(t, api.lastText(t), "Step 2/4")

	bot.handleUpdate(ctx, callbackUpdate(operatorID, "select_type:A"))
	assert.Contains(t, api.lastText(t), "Step 3/4")

	bot.handleUpdate(ctx, textUpdate(operatorID, "1.1.1.1"))
	assert.Contains(t, api.lastText(t), "Step 4/4")

	bot.handleUpdate(ctx, textUpdate(operatorID, "-5"))
	assert.Contains(t, api.lastText(t), "positive")

	bot.handleUpdate(ctx, callbackUpdate(operatorID, "select_ttl:300"))
	assert.Contains(t, api.lastText(t), "Confirm creation?")

	bot.handleUpdate(ctx, callbackUpdate(operatorID, "confirm_create"))
	require.NotNil(t, dns.created)
	assert.Equal(t, domain.DNSRecordInput{
		Domain: "www.example.com",
		Type:   "A",
		Value:  "1.1.1.1",
		TTL:    300,
		Owner:  "telegram:7",
	}, *dns.created)
	assert.Contains(t, api.lastText(t), "Created Successfully")
	assert.Equal(t, StepNone, bot.stateManager.CurrentStep(operatorID))
}

func TestBot_StaleWizardButton(t *testing.T) {
	dns := &stubDNS{}
	bot, api := newTestBot(dns)

	bot.handleUpdate(context.Background(), callbackUpdate(operatorID, "confirm_create"))
	assert.Nil(t, dns.created)
	assert.Contains(t, api.lastText(t), "expired")
}

func TestBot_EditValue(t *testing.T) {
	dns := &stubDNS{records: map[string]*domain.DNSRecord{
		"r1": {ID: "r1", Domain: "a.example.com", Type: "A", Value: "1.1.1.1", TTL: 600, Owner: "u1"},
	}}
	bot, api := newTestBot(dns)
	ctx := context.Background()

	bot.handleUpdate(ctx, callbackUpdate(operatorID, "edit:r1"))
	assert.Contains(t, api.lastText(t), "Enter the new value")

	bot.handleUpdate(ctx, textUpdate(operatorID, "2.2.2.2"))
	require.NotNil(t, dns.updated)
	assert.Equal(t, "r1", dns.updated.RecordID)
	assert.Equal(t, "2.2.2.2", dns.updated.Value)
	assert.Equal(t, 600, dns.updated.TTL)
	assert.Equal(t, "u1", dns.updated.Owner)
	assert.Contains(t, api.lastText(t), "Record Updated")
}

func TestBot_Delete(t *testing.T) {
	dns := &stubDNS{records: map[string]*domain.DNSRecord{
		"r1": {ID: "r1", Domain: "example.com", Type: "A", Value: "1.1.1.1"},
	}}
	bot, api := newTestBot(dns)
	ctx := context.Background()

	bot.handleUpdate(ctx, callbackUpdate(operatorID, "delete:r1"))
	assert.Contains(t, api.lastText(t), "Are you sure?")

	dns.deleteErr = domain.ErrApexHasSubdomains
	bot.handleUpdate(ctx, callbackUpdate(operatorID, "confirm_delete:r1"))
	assert.Contains(t, api.lastText(t), "still has subdomains")

	dns.deleteErr = nil
	bot.handleUpdate(ctx, callbackUpdate(operatorID, "confirm_delete:r1"))
	assert.Contains(t, api.lastText(t), "deleted successfully")
}

func TestBot_BrowseAndDistribution(t *testing.T) {
	dns := &stubDNS{records: map[string]*domain.DNSRecord{
		"r1": {ID: "r1", Domain: "a.example.com", Type: "A", Value: "1.1.1.1"},
	}}
	bot, api := newTestBot(dns)
	ctx := context.Background()

	bot.handleUpdate(ctx, callbackUpdate(operatorID, "records:5"))
	assert.Contains(t, api.lastText(t), "Page 1/1 (1 records)")

	bot.handleUpdate(ctx, callbackUpdate(operatorID, "view:r1"))
	assert.Contains(t, api.lastText(t), "a.example.com")

	bot.handleUpdate(ctx, callbackUpdate(operatorID, "view:missing"))
	assert.Contains(t, api.lastText(t), "Record not found")

	bot.handleUpdate(ctx, callbackUpdate(operatorID, "dist:type"))
	assert.Contains(t, api.lastText(t), "`MX`: 1")

	bot.handleUpdate(ctx, callbackUpdate(operatorID, "zones"))
	assert.Contains(t, api.lastText(t), "example.com.")
}

func TestStateManager_Sweep(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	sm := newStateManager(func() time.Time { return now })

	sm.SetStep(1, StepInputValue)
	sm.SetData(1, keyTTL, 300)
	assert.Equal(t, 300, sm.Int(1, keyTTL))
	assert.Equal(t, "", sm.String(1, keyTTL))

	now = now.Add(stateTTL + time.Minute)
	sm.sweep()
	assert.Equal(t, StepNone, sm.CurrentStep(1))
	assert.Equal(t, 0, sm.Int(1, keyTTL))
}

func TestStartStop_Concurrent(t *testing.T) {
	api := &fakeAPI{updates: make(chan tgbotapi.Update)}
	bot := newBot(&stubDNS{}, api, []int64{operatorID}, zap.NewNop())

	done := make(chan error, 1)
	go func() { done <- bot.Start() }()

	api.updates <- textUpdate(operatorID, "/start")
	require.NoError(t, bot.Stop())

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after Stop")
	}
	assert.NoError(t, bot.Stop())
}

func TestStart_AfterStopReturns(t *testing.T) {
	api := &fakeAPI{updates: make(chan tgbotapi.Update)}
	bot := newBot(&stubDNS{}, api, []int64{operatorID}, zap.NewNop())

	require.NoError(t, bot.Stop())
	assert.NoError(t, bot.Start())
}
