package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/solterra/operations-service/internal/config"
	"github.com/solterra/operations-service/internal/events"
)

// NotificationKind enumerates alert templates.
type NotificationKind string

const (
	NotificationSLAPorVencer   NotificationKind = "sla_por_vencer"
	NotificationSLAVencido     NotificationKind = "sla_vencido"
	NotificationTicketAsignado NotificationKind = "ticket_asignado"
	NotificationTicketCreado   NotificationKind = "ticket_creado"
)

// Notifier delivers alerts to a recipient. Implementations bound each send
// with a timeout; callers treat delivery as fire-and-forget.
type Notifier interface {
	Send(ctx context.Context, recipient string, kind NotificationKind, payload map[string]any) error
}

// NotificationService handles notification delivery for lifecycle engines
// and for domain events published on the dispatcher.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// Send delivers one alert through the configured channels. The context is
// bounded so a stuck gateway can never block a ticket scan.
func (n *NotificationService) Send(ctx context.Context, recipient string, kind NotificationKind, payload map[string]any) error {
	ctx, cancel := context.WithTimeout(ctx, n.cfg.Timeout())
	defer cancel()

	n.sendEmail(ctx, recipient, kind, payload)
	n.sendWebhook(ctx, recipient, kind, payload)
	return ctx.Err()
}

// RegisterHandlers subscribes to dispatcher events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketEvent)
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleTicketEvent)
	n.dispatcher.Subscribe(events.EventTicketAssigned, n.handleTicketEvent)
	n.dispatcher.Subscribe(events.EventTicketEscalated, n.handleTicketEvent)
}

func (n *NotificationService) handleTicketEvent(ctx context.Context, event events.Event) error {
	n.logger.Info("ticket event",
		zap.String("event_type", string(event.Type)),
		zap.String("ticket_id", event.EntityID),
		zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) sendEmail(ctx context.Context, recipient string, kind NotificationKind, payload map[string]any) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	select {
	case <-ctx.Done():
		n.logger.Warn("email send aborted", zap.String("recipient", recipient))
		return
	default:
	}
	n.logger.Debug("email notification",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("recipient", recipient),
		zap.String("kind", string(kind)),
		zap.Any("payload", payload))
}

func (n *NotificationService) sendWebhook(ctx context.Context, recipient string, kind NotificationKind, payload map[string]any) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	select {
	case <-ctx.Done():
		n.logger.Warn("webhook send aborted", zap.String("recipient", recipient))
		return
	default:
	}
	n.logger.Debug("webhook notification",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("recipient", recipient),
		zap.String("kind", string(kind)),
		zap.Any("payload", payload))
}
