package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/service-marketplace/internal/config"
	"github.com/spec-kit/service-marketplace/internal/events"
)

const defaultSMSTimeout = 10 * time.Second

// smsMessage is the body posted to the SMS gateway webhook.
type smsMessage struct {
	To       string `json:"to"`
	Message  string `json:"message"`
	SenderID string `json:"sender_id,omitempty"`
}

// NotificationService logs lifecycle events and delivers reset PINs by SMS.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventRequestSubmitted, n.handleRequestSubmitted)
	n.dispatcher.Subscribe(events.EventRequestStatusChanged, n.handleRequestStatusChanged)
	n.dispatcher.Subscribe(events.EventRequestCanceled, n.handleRequestCanceled)
	n.dispatcher.Subscribe(events.EventUserRegistered, n.handleUserRegistered)
}

// DeliverPIN sends a freshly generated PIN to telephone. Without a webhook
// configured the message is only logged, with the PIN masked.
func (n *NotificationService) DeliverPIN(ctx context.Context, telephone, pin string) error {
	n.logger.Info("PINDelivery",
		zap.String("telephone", telephone),
		zap.String("pin", maskPIN(pin)))

	if strings.TrimSpace(n.cfg.SMSWebhookURL) == "" {
		return nil
	}
	return n.postSMS(ctx, smsMessage{
		To:       telephone,
		Message:  fmt.Sprintf("Your new PIN is %s", pin),
		SenderID: n.cfg.SMSSenderID,
	})
}

func (n *NotificationService) handleRequestSubmitted(ctx context.Context, event events.Event) error {
	n.logger.Info("RequestSubmitted", zap.String("request_id", event.RequestID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleRequestStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("RequestStatusChanged", zap.String("request_id", event.RequestID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleRequestCanceled(ctx context.Context, event events.Event) error {
	n.logger.Info("RequestCanceled", zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleUserRegistered(ctx context.Context, event events.Event) error {
	n.logger.Info("UserRegistered", zap.String("telephone", event.Telephone))
	return nil
}

func (n *NotificationService) postSMS(ctx context.Context, msg smsMessage) error {
	timeout := defaultSMSTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return context.DeadlineExceeded
		}
	}

	agent := fiber.Post(n.cfg.SMSWebhookURL).JSON(msg).Timeout(timeout)
	status, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("post sms: %w", errors.Join(errs...))
	}
	if status < fiber.StatusOK || status >= fiber.StatusMultipleChoices {
		return fmt.Errorf("sms gateway returned %d: %s", status, strings.TrimSpace(string(body)))
	}
	n.logger.Debug("sms delivered", zap.String("to", msg.To), zap.Int("status", status))
	return nil
}

func maskPIN(pin string) string {
	return strings.Repeat("*", len(pin))
}
