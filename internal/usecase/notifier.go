package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"dns-manager-backend/external_resource/telegram"
	"dns-manager-backend/internal/domain"
	"dns-manager-backend/internal/metrics"
)

// DriftEvent describes a provider change that was accepted while the
// matching store write failed
type DriftEvent struct {
	Operation string
	Record    domain.DNSRecord
	ZoneID    string
	Err       error
}

// DriftNotifier surfaces provider/store divergence to an operator
type DriftNotifier interface {
	NotifyDrift(ctx context.Context, event DriftEvent)
}

type logNotifier struct {
	lg *zap.Logger
}

// NewLogNotifier reports drift at error level
func NewLogNotifier(lg *zap.Logger) DriftNotifier {
	return &logNotifier{lg: lg}
}

func (n *logNotifier) NotifyDrift(_ context.Context, e DriftEvent) {
	metrics.DriftTotal.WithLabelValues(e.Operation).Inc()
	n.lg.Error("[Drift] provider accepted change but store write failed",
		zap.String("operation", e.Operation),
		zap.String("zoneID", e.ZoneID),
		zap.String("recordID", e.Record.ID),
		zap.String("domain", e.Record.Domain),
		zap.String("type", e.Record.Type),
		zap.String("value", e.Record.Value),
		zap.Error(e.Err),
	)
}

type telegramNotifier struct {
	sender telegram.Sender
	lg     *zap.Logger
}

// NewTelegramNotifier sends drift alerts to the configured Telegram chats
func NewTelegramNotifier(sender telegram.Sender, lg *zap.Logger) DriftNotifier {
	return &telegramNotifier{sender: sender, lg: lg}
}

func (n *telegramNotifier) NotifyDrift(ctx context.Context, e DriftEvent) {
	text := fmt.Sprintf("DNS drift on %s\nzone: %s\nrecord: %s %s %s (ttl %d)\nerror: %v",
		e.Operation, e.ZoneID, e.Record.Domain, e.Record.Type, e.Record.Value, e.Record.TTL, e.Err)
	if err := n.sender.Send(ctx, text); err != nil {
		n.lg.Warn("[Drift] failed to send telegram alert", zap.Error(err))
	}
}

type multiNotifier []DriftNotifier

// NewMultiNotifier fans an event out to every notifier
func NewMultiNotifier(notifiers ...DriftNotifier) DriftNotifier {
	return multiNotifier(notifiers)
}

func (m multiNotifier) NotifyDrift(ctx context.Context, e DriftEvent) {
	for _, n := range m {
		n.NotifyDrift(ctx, e)
	}
}
