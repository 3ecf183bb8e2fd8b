package relay

import (
	"encoding/json"
	"log/slog"
	"time"

	"taskhub/internal/domain/service"

	"github.com/google/uuid"
)

var _ service.Notifier = (*HubNotifier)(nil)

// HubNotifier implements service.Notifier using the relay Hub.
type HubNotifier struct {
	hub    *Hub
	logger *slog.Logger
	now    func() time.Time
}

// NewHubNotifier adapts hub to service.Notifier.
func NewHubNotifier(hub *Hub, logger *slog.Logger) service.Notifier {
	return &HubNotifier{hub: hub, logger: logger, now: time.Now}
}

// NotifyUser only reaches connections authenticated as userID.
func (n *HubNotifier) NotifyUser(userID uuid.UUID, event string, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		n.logger.Error("Relay payload marshal failed", slog.String("event", event), slog.Any("error", err))

		return
	}

	frame, err := NotifyFrame(event, payload, n.now())
	if err != nil {
		n.logger.Error("Relay frame marshal failed", slog.String("event", event), slog.Any("error", err))

		return
	}

	delivered := n.hub.PublishVerified(userID.String(), frame)
	n.logger.Debug("Relay notification published",
		slog.String("event", event),
		slog.String("userID", userID.String()),
		slog.Int("delivered", delivered),
	)
}
