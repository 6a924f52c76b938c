package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"dns-manager-backend/internal/domain"
	"dns-manager-backend/internal/usecase"
)

const recordsPerPage = 10

// botAPI is the part of *tgbotapi.BotAPI the bot uses
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Bot implements handler.Server for Telegram with a button-based operator UI
type Bot struct {
	dnsUsecase   usecase.DNSUsecase
	api          botAPI
	token        string
	allowedIDs   []int64
	stateManager *StateManager
	lg           *zap.Logger

	// mu guards api and cancel between Start and Stop
	mu      sync.Mutex
	cancel  context.CancelFunc
	stopped bool
}

// NewBot creates a new Telegram bot handler. Only allowedUsers may use it.
func NewBot(dnsUsecase usecase.DNSUsecase, token string, allowedUsers []int64, lg *zap.Logger) *Bot {
	return &Bot{
		dnsUsecase:   dnsUsecase,
		token:        token,
		allowedIDs:   allowedUsers,
		stateManager: NewStateManager(),
		lg:           lg.Named("telegram"),
	}
}

func newBot(dnsUsecase usecase.DNSUsecase, api botAPI, allowedUsers []int64, lg *zap.Logger) *Bot {
	return &Bot{
		dnsUsecase:   dnsUsecase,
		api:          api,
		allowedIDs:   allowedUsers,
		stateManager: newStateManager(time.Now),
		lg:           lg,
	}
}

// Start polls for updates until Stop is called
func (b *Bot) Start() error {
	updates, ctx, err := b.listen()
	if err != nil || updates == nil {
		return err
	}

	for update := range updates {
		go func(update tgbotapi.Update) {
			defer func() {
				if r := recover(); r != nil {
					b.lg.Error("[HandleUpdate] PANIC", zap.Any("recovered", r))
				}
			}()
			b.handleUpdate(ctx, update)
		}(update)
	}
	return nil
}

// listen connects when needed and opens the update channel. It returns a
// nil channel when Stop already ran.
func (b *Bot) listen() (tgbotapi.UpdatesChannel, context.Context, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stopped {
		return nil, nil, nil
	}

	if b.api == nil {
		api, err := tgbotapi.NewBotAPI(b.token)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create bot: %w", err)
		}
		b.lg.Info("authorized on account", zap.String("username", api.Self.UserName))
		b.api = api
	}

	ctx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	return b.api.GetUpdatesChan(u), ctx, nil
}

// Stop stops polling and the state sweeper
func (b *Bot) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stopped {
		return nil
	}
	b.stopped = true

	if b.cancel != nil {
		b.cancel()
	}
	if b.api != nil {
		b.api.StopReceivingUpdates()
	}
	b.stateManager.Stop()
	return nil
}

func (b *Bot) isAuthorized(userID int64) bool {
	return lo.Contains(b.allowedIDs, userID)
}

// ownerFor is the record owner used for records created from Telegram
func ownerFor(userID int64) string {
	return fmt.Sprintf("telegram:%d", userID)
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.Message != nil && update.Message.From != nil:
		if !b.isAuthorized(update.Message.From.ID) {
			b.sendMessage(update.Message.Chat.ID, "⛔ You are not authorized to use this bot.")
			return
		}
		b.handleMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		if !b.isAuthorized(update.CallbackQuery.From.ID) {
			b.answerCallback(update.CallbackQuery.ID, "⛔ Not authorized")
			return
		}
		b.handleCallback(ctx, update.CallbackQuery)
	}
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(msg); err != nil {
		b.lg.Warn("failed to send message", zap.Error(err))
	}
}

func (b *Bot) sendMessageWithKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = keyboard
	if _, err := b.api.Send(msg); err != nil {
		b.lg.Warn("failed to send message with keyboard", zap.Error(err))
	}
}

func (b *Bot) editMessage(chatID int64, messageID int, text string, keyboard *tgbotapi.InlineKeyboardMarkup) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeMarkdown
	if keyboard != nil {
		edit.ReplyMarkup = keyboard
	}
	if _, err := b.api.Send(edit); err != nil {
		b.lg.Warn("failed to edit message", zap.Error(err))
	}
}

func (b *Bot) answerCallback(callbackID string, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		b.lg.Warn("failed to answer callback", zap.Error(err))
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	chatID := msg.Chat.ID

	if msg.IsCommand() {
		switch msg.Command() {
		case "cancel":
			b.stateManager.ClearState(userID)
			b.sendMessage(chatID, "Cancelled.")
		default:
			b.showMainMenu(chatID)
		}
		return
	}

	text := strings.TrimSpace(msg.Text)
	switch b.stateManager.CurrentStep(userID) {
	case StepInputDomain:
		b.handleInputDomain(chatID, userID, text)
	case StepInputValue:
		b.handleInputValue(chatID, userID, text)
	case StepInputTTL:
		b.handleInputTTL(chatID, userID, text)
	case StepEditValue:
		b.handleEditValue(ctx, chatID, userID, text)
	default:
		b.showMainMenu(chatID)
	}
}

func (b *Bot) handleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	if callback.Message == nil {
		return
	}
	chatID := callback.Message.Chat.ID
	userID := callback.From.ID
	messageID := callback.Message.MessageID

	b.answerCallback(callback.ID, "")

	action, arg, _ := strings.Cut(callback.Data, ":")
	b.lg.Debug("[Callback]", zap.Int64("userID", userID), zap.String("action", action), zap.String("arg", arg))

	switch action {
	case "menu":
		b.stateManager.ClearState(userID)
		b.showMainMenu(chatID)
	case "zones":
		b.showZones(ctx, chatID, messageID)
	case "create":
		b.startCreateRecord(chatID, userID)
	case "select_type":
		b.handleTypeSelected(chatID, userID, messageID, arg)
	case "select_ttl":
		ttl, _ := strconv.Atoi(arg)
		b.handleTTLSelected(chatID, userID, messageID, ttl)
	case "confirm_create":
		b.handleConfirmCreate(ctx, chatID, userID, messageID)
	case "cancel":
		b.stateManager.ClearState(userID)
		b.editMessage(chatID, messageID, "Cancelled.", lo.ToPtr(menuKeyboard()))
	case "records":
		page, _ := strconv.Atoi(arg)
		b.showRecords(ctx, chatID, messageID, page)
	case "view":
		b.showRecordDetail(ctx, chatID, messageID, arg)
	case "edit":
		b.startEditValue(ctx, chatID, userID, messageID, arg)
	case "delete":
		b.startDeleteRecord(chatID, messageID, arg)
	case "confirm_delete":
		b.handleConfirmDelete(ctx, chatID, messageID, arg)
	case "dist":
		if arg == "" {
			b.showDistributionFields(chatID, messageID)
			return
		}
		b.showDistribution(ctx, chatID, messageID, arg)
	case "noop":
	}
}

func menuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📋 Zones", "zones"),
			tgbotapi.NewInlineKeyboardButtonData("🔍 Records", "records:0"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➕ Create Record", "create"),
			tgbotapi.NewInlineKeyboardButtonData("📊 Distribution", "dist"),
		),
	)
}

func backKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🏠 Menu", "menu"),
		),
	)
}

func (b *Bot) showMainMenu(chatID int64) {
	b.sendMessageWithKeyboard(chatID, "*🏠 Main Menu*\n\nWhat would you like to do?", menuKeyboard())
}

func (b *Bot) showZones(ctx context.Context, chatID int64, messageID int) {
	keyboard := backKeyboard()
	zones, err := b.dnsUsecase.ListZones(ctx)
	if err != nil {
		b.editMessage(chatID, messageID, fmt.Sprintf("❌ Error: %v", err), &keyboard)
		return
	}
	if len(zones) == 0 {
		b.editMessage(chatID, messageID, "📭 No zones found.", &keyboard)
		return
	}

	var text strings.Builder
	text.WriteString("*📋 Hosted Zones:*\n\n")
	for i, zone := range zones {
		fmt.Fprintf(&text, "%d. `%s` (%s)\n", i+1, zone.Name, zone.ID)
	}
	b.editMessage(chatID, messageID, text.String(), &keyboard)
}

// Create wizard: domain, type, value, ttl, confirm

func cancelKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", "cancel"),
		),
	)
}

func (b *Bot) startCreateRecord(chatID int64, userID int64) {
	b.stateManager.ClearState(userID)
	b.stateManager.SetStep(userID, StepInputDomain)
	b.sendMessageWithKeyboard(chatID,
		"*➕ Create DNS Record*\n\nStep 1/4: Enter the fully qualified name (e.g. `www.example.com`):",
		cancelKeyboard())
}

func (b *Bot) handleInputDomain(chatID int64, userID int64, name string) {
	name = domain.DNSRecordInput{Domain: name}.Normalize().Domain
	if _, err := usecase.ApexDomain(name); err != nil {
		b.sendMessageWithKeyboard(chatID, fmt.Sprintf("❌ `%s` is not a valid domain. Try again:", name), cancelKeyboard())
		return
	}
	b.stateManager.SetData(userID, keyDomain, name)
	b.stateManager.SetStep(userID, StepSelectType)

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, chunk := range lo.Chunk(domain.RecordTypes, 4) {
		rows = append(rows, lo.Map(chunk, func(t string, _ int) tgbotapi.InlineKeyboardButton {
			return tgbotapi.NewInlineKeyboardButtonData(t, "select_type:"+t)
		}))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", "cancel"),
	))

	b.sendMessageWithKeyboard(chatID, fmt.Sprintf(
		"*➕ Create DNS Record*\n\nDomain: `%s`\n\nStep 2/4: Select record type:", name,
	), tgbotapi.NewInlineKeyboardMarkup(rows...))
}

func (b *Bot) handleTypeSelected(chatID int64, userID int64, messageID int, recordType string) {
	if b.stateManager.CurrentStep(userID) != StepSelectType || !domain.IsValidRecordType(recordType) {
		b.editMessage(chatID, messageID, "❌ This wizard has expired. Start again.", lo.ToPtr(menuKeyboard()))
		return
	}
	b.stateManager.SetData(userID, keyType, recordType)
	b.stateManager.SetStep(userID, StepInputValue)

	keyboard := cancelKeyboard()
	b.editMessage(chatID, messageID, fmt.Sprintf(
		"*➕ Create DNS Record*\n\nDomain: `%s`\nType: `%s`\n\nStep 3/4: Enter the value (IP for A/AAAA, hostname for CNAME, `10 mail.example.com` for MX):",
		b.stateManager.String(userID, keyDomain), recordType,
	), &keyboard)
}

func (b *Bot) handleInputValue(chatID int64, userID int64, value string) {
	if value == "" {
		b.sendMessageWithKeyboard(chatID, "❌ Value cannot be empty. Try again:", cancelKeyboard())
		return
	}
	b.stateManager.SetData(userID, keyValue, value)
	b.stateManager.SetStep(userID, StepInputTTL)

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("300", "select_ttl:300"),
			tgbotapi.NewInlineKeyboardButtonData("600", "select_ttl:600"),
			tgbotapi.NewInlineKeyboardButtonData("1800", "select_ttl:1800"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("3600", "select_ttl:3600"),
			tgbotapi.NewInlineKeyboardButtonData("86400", "select_ttl:86400"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", "cancel"),
		),
	)
	b.sendMessageWithKeyboard(chatID, fmt.Sprintf(
		"*➕ Create DNS Record*\n\nDomain: `%s`\nType: `%s`\nValue: `%s`\n\nStep 4/4: Select a TTL or type one in seconds:",
		b.stateManager.String(userID, keyDomain), b.stateManager.String(userID, keyType), value,
	), keyboard)
}

func (b *Bot) handleInputTTL(chatID int64, userID int64, text string) {
	ttl, err := strconv.Atoi(text)
	if err != nil || ttl <= 0 {
		b.sendMessageWithKeyboard(chatID, "❌ TTL must be a positive number of seconds. Try again:", cancelKeyboard())
		return
	}
	b.stateManager.SetData(userID, keyTTL, ttl)
	b.stateManager.SetStep(userID, StepConfirmCreate)
	b.sendMessageWithKeyboard(chatID, b.confirmText(userID), confirmKeyboard())
}

func (b *Bot) handleTTLSelected(chatID int64, userID int64, messageID int, ttl int) {
	if b.stateManager.CurrentStep(userID) != StepInputTTL || ttl <= 0 {
		b.editMessage(chatID, messageID, "❌ This wizard has expired. Start again.", lo.ToPtr(menuKeyboard()))
		return
	}
	b.stateManager.SetData(userID, keyTTL, ttl)
	b.stateManager.SetStep(userID, StepConfirmCreate)
	keyboard := confirmKeyboard()
	b.editMessage(chatID, messageID, b.confirmText(userID), &keyboard)
}

func confirmKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Confirm Create", "confirm_create"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", "cancel"),
		),
	)
}

func (b *Bot) confirmText(userID int64) string {
	return fmt.Sprintf(
		"*➕ Create DNS Record - Confirm*\n\nDomain: `%s`\nType: `%s`\nValue: `%s`\nTTL: `%d`\n\nConfirm creation?",
		b.stateManager.String(userID, keyDomain),
		b.stateManager.String(userID, keyType),
		b.stateManager.String(userID, keyValue),
		b.stateManager.Int(userID, keyTTL),
	)
}

func (b *Bot) handleConfirmCreate(ctx context.Context, chatID int64, userID int64, messageID int) {
	if b.stateManager.CurrentStep(userID) != StepConfirmCreate {
		b.editMessage(chatID, messageID, "❌ This wizard has expired. Start again.", lo.ToPtr(menuKeyboard()))
		return
	}
	input := domain.DNSRecordInput{
		Domain: b.stateManager.String(userID, keyDomain),
		Type:   b.stateManager.String(userID, keyType),
		Value:  b.stateManager.String(userID, keyValue),
		TTL:    b.stateManager.Int(userID, keyTTL),
		Owner:  ownerFor(userID),
	}
	b.stateManager.ClearState(userID)

	record, err := b.dnsUsecase.CreateRecord(ctx, input)
	if err != nil {
		b.lg.Warn("[CreateRecord] ERROR", zap.String("domain", input.Domain), zap.Error(err))
		text := fmt.Sprintf("❌ Error creating record: %v", err)
		if errors.Is(err, domain.ErrDuplicateRecord) {
			text = fmt.Sprintf("❌ A record for `%s` already exists. Edit it from *Records*.", input.Domain)
		}
		b.editMessage(chatID, messageID, text, lo.ToPtr(menuKeyboard()))
		return
	}

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➕ Create Another", "create"),
			tgbotapi.NewInlineKeyboardButtonData("🏠 Main Menu", "menu"),
		),
	)
	b.editMessage(chatID, messageID, "✅ *Record Created Successfully!*\n\n"+recordText(record), &keyboard)
}

// Records browsing

func recordText(r *domain.DNSRecord) string {
	return fmt.Sprintf("Domain: `%s`\nType: `%s`\nValue: `%s`\nTTL: `%d`\nOwner: `%s`",
		r.Domain, r.Type, r.Value, r.TTL, r.Owner)
}

func (b *Bot) showRecords(ctx context.Context, chatID int64, messageID int, page int) {
	records, err := b.dnsUsecase.ListRecords(ctx, usecase.ListRecordsInput{})
	if err != nil {
		b.editMessage(chatID, messageID, fmt.Sprintf("❌ Error loading records: %v", err), lo.ToPtr(backKeyboard()))
		return
	}
	if len(records) == 0 {
		keyboard := tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("➕ Create Record", "create"),
				tgbotapi.NewInlineKeyboardButtonData("🏠 Menu", "menu"),
			),
		)
		b.editMessage(chatID, messageID, "📭 No records found.", &keyboard)
		return
	}

	totalPages := (len(records) + recordsPerPage - 1) / recordsPerPage
	page = max(0, min(page, totalPages-1))
	start := page * recordsPerPage
	end := min(start+recordsPerPage, len(records))

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, r := range records[start:end] {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("📄 %s (%s)", r.Domain, r.Type), "view:"+r.ID),
		))
	}

	var pagination []tgbotapi.InlineKeyboardButton
	if page > 0 {
		pagination = append(pagination, tgbotapi.NewInlineKeyboardButtonData("⬅️ Prev", fmt.Sprintf("records:%d", page-1)))
	}
	pagination = append(pagination, tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("📄 %d/%d", page+1, totalPages), "noop"))
	if page < totalPages-1 {
		pagination = append(pagination, tgbotapi.NewInlineKeyboardButtonData("Next ➡️", fmt.Sprintf("records:%d", page+1)))
	}
	rows = append(rows, pagination, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🔄 Refresh", fmt.Sprintf("records:%d", page)),
		tgbotapi.NewInlineKeyboardButtonData("🏠 Menu", "menu"),
	))

	keyboard := tgbotapi.NewInlineKeyboardMarkup(rows...)
	b.editMessage(chatID, messageID, fmt.Sprintf(
		"*🔍 Records*\nPage %d/%d (%d records)\n\nClick a record to view details:",
		page+1, totalPages, len(records),
	), &keyboard)
}

// loadRecord fetches a record and reports a missing one to the chat
func (b *Bot) loadRecord(ctx context.Context, chatID int64, messageID int, id string) *domain.DNSRecord {
	record, err := b.dnsUsecase.GetRecord(ctx, id)
	switch {
	case err != nil:
		b.editMessage(chatID, messageID, fmt.Sprintf("❌ Error: %v", err), lo.ToPtr(backKeyboard()))
		return nil
	case record == nil:
		b.editMessage(chatID, messageID, "❌ Record not found.", lo.ToPtr(backKeyboard()))
		return nil
	}
	return record
}

func (b *Bot) showRecordDetail(ctx context.Context, chatID int64, messageID int, id string) {
	record := b.loadRecord(ctx, chatID, messageID, id)
	if record == nil {
		return
	}
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✏️ Edit Value", "edit:"+record.ID),
			tgbotapi.NewInlineKeyboardButtonData("🗑️ Delete", "delete:"+record.ID),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("◀️ Back to List", "records:0"),
			tgbotapi.NewInlineKeyboardButtonData("🏠 Menu", "menu"),
		),
	)
	b.editMessage(chatID, messageID, "*📋 Record Details*\n\n"+recordText(record), &keyboard)
}

func (b *Bot) startEditValue(ctx context.Context, chatID int64, userID int64, messageID int, id string) {
	record := b.loadRecord(ctx, chatID, messageID, id)
	if record == nil {
		return
	}
	b.stateManager.ClearState(userID)
	b.stateManager.SetData(userID, keyRecordID, record.ID)
	b.stateManager.SetStep(userID, StepEditValue)

	keyboard := cancelKeyboard()
	b.editMessage(chatID, messageID, fmt.Sprintf(
		"*✏️ Edit Record*\n\n%s\n\nEnter the new value:", recordText(record),
	), &keyboard)
}

func (b *Bot) handleEditValue(ctx context.Context, chatID int64, userID int64, value string) {
	id := b.stateManager.String(userID, keyRecordID)
	b.stateManager.ClearState(userID)

	record, err := b.dnsUsecase.GetRecord(ctx, id)
	if err != nil || record == nil {
		b.sendMessageWithKeyboard(chatID, "❌ Record not found.", menuKeyboard())
		return
	}

	updated, err := b.dnsUsecase.UpdateRecord(ctx, usecase.UpdateRecordInput{
		DNSRecordInput: domain.DNSRecordInput{
			Domain: record.Domain,
			Type:   record.Type,
			Value:  value,
			TTL:    record.TTL,
			Owner:  record.Owner,
		},
		RecordID: record.ID,
	})
	if err != nil {
		b.lg.Warn("[UpdateRecord] ERROR", zap.String("id", id), zap.Error(err))
		b.sendMessageWithKeyboard(chatID, fmt.Sprintf("❌ Error updating record: %v", err), menuKeyboard())
		return
	}
	b.sendMessageWithKeyboard(chatID, "✅ *Record Updated!*\n\n"+recordText(updated), menuKeyboard())
}

func (b *Bot) startDeleteRecord(chatID int64, messageID int, id string) {
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Yes, Delete", "confirm_delete:"+id),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", "view:"+id),
		),
	)
	b.editMessage(chatID, messageID,
		"*🗑️ Delete Record*\n\nAre you sure?\n\n⚠️ The record is removed from the DNS provider. This cannot be undone!",
		&keyboard)
}

func (b *Bot) handleConfirmDelete(ctx context.Context, chatID int64, messageID int, id string) {
	record, err := b.dnsUsecase.DeleteRecord(ctx, id)
	if err != nil {
		b.lg.Warn("[DeleteRecord] ERROR", zap.String("id", id), zap.Error(err))
		var text string
		switch {
		case errors.Is(err, domain.ErrApexHasSubdomains):
			text = "❌ This apex record still has subdomains. Delete them first."
		case errors.Is(err, domain.ErrRecordNotFound):
			text = "❌ Record not found."
		default:
			text = fmt.Sprintf("❌ Error deleting record: %v", err)
		}
		b.editMessage(chatID, messageID, text, lo.ToPtr(backKeyboard()))
		return
	}

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔍 Back to Records", "records:0"),
			tgbotapi.NewInlineKeyboardButtonData("🏠 Main Menu", "menu"),
		),
	)
	b.editMessage(chatID, messageID, fmt.Sprintf("✅ Record `%s` deleted successfully!", record.Domain), &keyboard)
}

// Distribution

func (b *Bot) showDistributionFields(chatID int64, messageID int) {
	row := lo.Map(domain.RecordFields, func(f string, _ int) tgbotapi.InlineKeyboardButton {
		return tgbotapi.NewInlineKeyboardButtonData(f, "dist:"+f)
	})
	keyboard := tgbotapi.NewInlineKeyboardMarkup(row, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🏠 Menu", "menu"),
	))
	b.editMessage(chatID, messageID, "*📊 Distribution*\n\nGroup records by:", &keyboard)
}

func (b *Bot) showDistribution(ctx context.Context, chatID int64, messageID int, field string) {
	counts, err := b.dnsUsecase.Distribution(ctx, field)
	if err != nil {
		b.editMessage(chatID, messageID, fmt.Sprintf("❌ Error: %v", err), lo.ToPtr(backKeyboard()))
		return
	}

	var text strings.Builder
	fmt.Fprintf(&text, "*📊 Records by %s*\n\n", field)
	if len(counts) == 0 {
		text.WriteString("📭 No records.")
	}
	for _, c := range counts {
		fmt.Fprintf(&text, "`%v`: %d\n", c.Key, c.Count)
	}

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("◀️ Back", "dist"),
			tgbotapi.NewInlineKeyboardButtonData("🏠 Menu", "menu"),
		),
	)
	b.editMessage(chatID, messageID, text.String(), &keyboard)
}
