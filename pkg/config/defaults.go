package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "qota"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	// BrasilAPI serves the national holiday calendar. The lookup is
	// best-effort: a short timeout keeps a flaky feed from blocking bookings.
	DefaultHolidayAPIBaseURL = "https://brasilapi.com.br"
	DefaultHolidayAPITimeout = 5 * time.Second

	DefaultNotificationsTopic    = "qota.notifications"
	DefaultNotificationsDLQTopic = "qota.notifications.dlq"

	DefaultRateLimitRequests = 10
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	// Stay bounds applied when a property does not configure its own.
	DefaultDefaultMinStayDays = 1
	DefaultDefaultMaxStayDays = 30

	// One fraction per week of the year unless the creator says otherwise.
	DefaultDefaultTotalFractions = 52

	// Annual day entitlement shared across all fractions of a property.
	DaysPerYear = 365

	MinTotalFractions = 1
	MaxTotalFractions = 52

	DefaultPaginationLimit = 100
)
