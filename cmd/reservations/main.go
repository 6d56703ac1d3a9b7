package main

import (
	"qota/internal/reservations/handler"
	"qota/internal/reservations/holiday"
	"qota/internal/reservations/repository"
	"qota/internal/reservations/service"
	"qota/internal/reservations/validator"
	"qota/pkg/app"
	"qota/pkg/config"
	"qota/pkg/kafka"
	kafka_config "qota/pkg/kafka/config"
	"qota/pkg/notify"
)

const ServiceName = "reservations"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Reservations service")

	notifier, closeNotifier := initNotifier(cfg)
	reservationService := initServices(cfg, notifier)

	serverApp := app.New(cfg, handler.NewReservationHandler(reservationService, cfg.Log))
	serverApp.OnShutdown(closeNotifier)
	serverApp.Run()
}

func initServices(cfg *config.Config, notifier notify.Notifier) service.ReservationService {
	reservationValidator := validator.NewReservationValidator(cfg.Log)
	reservationRepo := repository.NewMongoReservationRepository(cfg)
	lockRepo := repository.NewMongoReservationLockRepository(cfg)
	linkRepo := repository.NewMongoMemberLinkRepository(cfg)
	propertyReader := repository.NewMongoPropertyReader(cfg)
	holidaySource := holiday.NewHTTPSource(cfg.HolidayAPIBaseURL, cfg.HolidayAPITimeout, cfg.Log)

	reservationService := service.NewReservationService(
		reservationRepo,
		lockRepo,
		linkRepo,
		propertyReader,
		holidaySource,
		reservationValidator,
		notifier,
		cfg,
	)

	cfg.Log.Info("Reservation service initialized", "database", cfg.MongoDatabaseName)
	return reservationService
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
