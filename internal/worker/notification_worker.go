package worker

import (
	"go.uber.org/zap"

	"github.com/spec-kit/service-marketplace/internal/events"
	"github.com/spec-kit/service-marketplace/internal/service"
)

// StartNotificationWorker registers notification handlers and, when a NATS
// bridge is given, forwards every event to it.
func StartNotificationWorker(notificationService *service.NotificationService, dispatcher events.Dispatcher, bridge *events.NATSBridge, logger *zap.Logger) {
	if notificationService != nil {
		notificationService.RegisterHandlers()
	}
	if bridge == nil || dispatcher == nil {
		return
	}
	bridge.Attach(dispatcher)
	if logger != nil {
		logger.Info("forwarding events to nats", zap.String("subject", bridge.Subject("*")))
	}
}
