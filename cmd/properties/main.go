package main

import (
	"qota/internal/properties/handler"
	"qota/internal/properties/repository"
	"qota/internal/properties/service"
	"qota/internal/properties/validator"
	"qota/pkg/app"
	"qota/pkg/config"
	"qota/pkg/kafka"
	kafka_config "qota/pkg/kafka/config"
	"qota/pkg/notify"
)

const ServiceName = "properties"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Properties service")

	notifier, closeNotifier := initNotifier(cfg)
	propertyService := initServices(cfg, notifier)

	serverApp := app.New(cfg, handler.NewPropertyHandler(propertyService, cfg.Log))
	serverApp.OnShutdown(closeNotifier)
	serverApp.Run()
}

func initServices(cfg *config.Config, notifier notify.Notifier) service.PropertyService {
	propertyValidator := validator.NewPropertyValidator(cfg.Log)
	propertyRepo := repository.NewMongoPropertyRepository(cfg)
	linkRepo := repository.NewMongoMemberLinkRepository(cfg)
	propertyService := service.NewPropertyService(
		propertyRepo,
		linkRepo,
		propertyValidator,
		notifier,
		cfg,
	)

	cfg.Log.Info("Property service initialized", "database", cfg.MongoDatabaseName)
	return propertyService
}

func initNotifier(cfg *config.Config) (notify.Notifier, func()) {
	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Warn("Kafka configuration invalid; notifications disabled", "error", err)
		return notify.NoopNotifier{}, func() {}
	}

	producer, err := kafka.NewProducer(kafkaCfg, cfg.NotificationsTopic, cfg.NotificationsDLQTopic, cfg.Log)
	if err != nil {
		cfg.Log.Warn("Kafka producer unavailable; notifications disabled", "error", err)
		return notify.NoopNotifier{}, func() {}
	}

	return notify.NewKafkaNotifier(producer, ServiceName, cfg.Log), func() {
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka producer", "error", err)
		}
	}
}
