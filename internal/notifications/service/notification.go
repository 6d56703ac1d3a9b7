package service

import (
	"context"

	"qota/internal/notifications/repository"
	"qota/pkg/config"
	"qota/pkg/kafka"
	"qota/pkg/model"

	"github.com/go-playground/validator/v10"
)

// NotificationService persists notification events consumed from the broker.
type NotificationService interface {
	HandleMessage(ctx context.Context, msg kafka.Message) error
}

type notificationService struct {
	repo     repository.NotificationRepository
	validate *validator.Validate
	cfg      *config.Config
}

func NewNotificationService(repo repository.NotificationRepository, cfg *config.Config) NotificationService {
	return &notificationService{
		repo:     repo,
		validate: validator.New(),
		cfg:      cfg,
	}
}

// HandleMessage decodes and stores one notification. Malformed payloads are
// permanent failures so the consumer routes them to the DLQ instead of
// retrying them forever; store errors stay transient and retry.
func (s *notificationService) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var notification model.Notification
	if err := msg.DecodeValue(&notification); err != nil {
		s.cfg.Log.Error("Failed to decode notification payload",
			"event_id", msg.GetEventID(),
			"event_type", msg.GetEventType(),
			"error", err,
		)
		return kafka.NewPermanentError("undecodable notification payload", err)
	}

	notification.ID = ""
	if err := s.validate.Struct(&notification); err != nil {
		s.cfg.Log.Error("Discarding invalid notification",
			"event_id", msg.GetEventID(),
			"event_type", msg.GetEventType(),
			"error", err,
		)
		return kafka.NewPermanentError("invalid notification payload", err)
	}

	if err := s.repo.Create(ctx, &notification); err != nil {
		return kafka.NewTransientError("failed to store notification", err)
	}

	s.cfg.Log.Info("Notification stored",
		"id", notification.ID,
		"property_id", notification.PropertyID,
		"event_type", msg.GetEventType(),
	)
	return nil
}
