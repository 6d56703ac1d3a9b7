package notify

import (
	"context"

	"qota/pkg/kafka"
	"qota/pkg/logger"
	"qota/pkg/model"
)

// Event types published to the notifications topic.
const (
	EventPropertyCreated      = "property.created"
	EventReservationConfirmed = "reservation.confirmed"
	EventReservationCancelled = "reservation.cancelled"
)

// Notifier delivers member-facing notifications. Delivery is best
// effort and never blocks or fails the operation that triggered it.
type Notifier interface {
	Notify(ctx context.Context, eventType string, notification model.Notification)
}

// KafkaNotifier publishes notifications to the notifications topic,
// keyed by property id so notifications for a property stay ordered.
type KafkaNotifier struct {
	producer *kafka.Producer
	source   string
	log      *logger.Logger
}

func NewKafkaNotifier(producer *kafka.Producer, source string, log *logger.Logger) *KafkaNotifier {
	return &KafkaNotifier{
		producer: producer,
		source:   source,
		log:      log,
	}
}

func (n *KafkaNotifier) Notify(ctx context.Context, eventType string, notification model.Notification) {
	msg := kafka.NewMessage().
		WithKey(notification.PropertyID).
		WithValue(notification).
		WithEventType(eventType).
		WithSource(n.source).
		Build()

	if err := n.producer.Publish(ctx, msg); err != nil {
		n.log.Error("Failed to publish notification",
			"event_type", eventType,
			"property_id", notification.PropertyID,
			"error", err,
		)
	}
}

// NoopNotifier discards notifications. Used when no broker is
// configured and in tests.
type NoopNotifier struct{}

func (NoopNotifier) Notify(ctx context.Context, eventType string, notification model.Notification) {}
