package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"qota/internal/notifications/repository"
	"qota/internal/notifications/service"
	"qota/pkg/config"
	"qota/pkg/kafka"
	kafka_config "qota/pkg/kafka/config"
	kafka_middleware "qota/pkg/kafka/middleware"
)

const (
	ServiceName     = "notifications"
	ConsumerGroupID = "notifications-store"
)

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Notifications service")

	notificationRepo := repository.NewMongoNotificationRepository(cfg)
	notificationService := service.NewNotificationService(notificationRepo, cfg)

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}

	consumer, err := kafka.NewConsumer(
		kafkaCfg,
		cfg.NotificationsTopic,
		ConsumerGroupID,
		cfg.NotificationsDLQTopic,
		notificationService.HandleMessage,
		cfg.Log,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}
	consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))

	ctx, cancel := context.WithCancel(context.Background())

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-shutdown
		cfg.Log.Info("Shutdown signal received", "signal", sig)
		cancel()
	}()

	cfg.Log.Info("Consuming notifications", "topic", cfg.NotificationsTopic, "group_id", ConsumerGroupID)
	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Error("Consumer stopped with error", "error", err)
	}

	if err := consumer.Close(); err != nil {
		cfg.Log.Error("Failed to close consumer", "error", err)
	}
	cfg.Log.Info("Notifications service stopped gracefully")
}
