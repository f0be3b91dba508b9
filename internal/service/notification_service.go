package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/helpr-dev/helpr/internal/events"
	"github.com/helpr-dev/helpr/internal/observability"
	"github.com/helpr-dev/helpr/internal/persistence"
)

// Redis pub/sub channels for change fan-out. Subscribers treat a message as
// "something changed, re-fetch".
const (
	ChannelTicketsChanged = "helpr.tickets.changed"
	ChannelUsersChanged   = "helpr.users.changed"
)

// NotificationService relays change events to Redis pub/sub so interested
// clients (live queue views, dashboards) can refresh.
type NotificationService struct {
	dispatcher events.Dispatcher
	redis      *persistence.Redis
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, redis *persistence.Redis, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		redis:      redis,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to the change events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketsChanged, n.handleChange(ChannelTicketsChanged))
	n.dispatcher.Subscribe(events.EventUsersChanged, n.handleChange(ChannelUsersChanged))
}

func (n *NotificationService) handleChange(channel string) events.EventHandler {
	return func(ctx context.Context, event events.Event) error {
		payload, err := json.Marshal(event)
		if err != nil {
			return err
		}
		if err := n.redis.Publish(ctx, channel, payload); err != nil {
			n.logger.Warn("change notification not delivered",
				zap.String("channel", channel),
				zap.String("operation", string(event.Operation)),
				zap.Error(err))
			return err
		}
		observability.NotificationsPublishedTotal.WithLabelValues(channel).Inc()
		n.logger.Debug("change notification published",
			zap.String("channel", channel),
			zap.String("operation", string(event.Operation)),
			zap.String("ticket_id", event.TicketID))
		return nil
	}
}
