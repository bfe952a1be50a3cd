package server

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"slack-relay-api/internal/adapters/webhook"
	"slack-relay-api/internal/config"
	"slack-relay-api/internal/database"
	"slack-relay-api/internal/repositories"
	"slack-relay-api/internal/repositories/sqlite"
	"slack-relay-api/internal/services"
)

// Container holds all application dependencies
type Container struct {
	Config          *config.Config
	Logger          *logrus.Logger
	RelayService    services.RelayService
	DeliveryService services.DeliveryService

	// Internal dependencies
	connection *database.ConnectionManager
}

// NewContainer creates a new dependency injection container.
// When the journal is disabled the container runs relay-only: messages are
// forwarded but no delivery records are kept and DeliveryService is nil.
func NewContainer(cfg *config.Config) (*Container, error) {
	logger := newLogger(cfg.LogLevel)

	var (
		connection   *database.ConnectionManager
		deliveryRepo repositories.DeliveryRepository
	)

	if cfg.Journal.Enabled {
		connection = database.NewConnectionManager(&database.ConnectionConfig{
			DatabasePath:    cfg.Journal.DatabasePath,
			MigrationsPath:  cfg.Journal.MigrationsPath,
			MaxOpenConns:    cfg.Journal.MaxOpenConns,
			MaxIdleConns:    cfg.Journal.MaxIdleConns,
			ConnMaxLifetime: time.Hour,
			Logger:          logger,
		})
		if err := connection.Connect(); err != nil {
			return nil, fmt.Errorf("failed to connect to journal database: %w", err)
		}
		deliveryRepo = sqlite.NewDeliveryRepository(connection.GetDB(), logger)
	}

	poster := webhook.NewHTTPPoster(&webhook.Config{
		Timeout:          time.Duration(cfg.Webhook.TimeoutSeconds) * time.Second,
		MaxResponseBytes: cfg.Webhook.MaxResponseBytes,
	})

	container := &Container{
		Config:       cfg,
		Logger:       logger,
		RelayService: services.NewRelayService(poster, deliveryRepo, logger),
		connection:   connection,
	}

	if deliveryRepo != nil {
		container.DeliveryService = services.NewDeliveryService(deliveryRepo, poster, logger)
	}

	return container, nil
}

// HealthCheck verifies the journal database connection when one is open
func (c *Container) HealthCheck() error {
	if c.connection == nil {
		return nil
	}
	return c.connection.HealthCheck()
}

// Close cleans up all resources
func (c *Container) Close() error {
	if c.connection != nil {
		if err := c.connection.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}

	return nil
}

func newLogger(level string) *logrus.Logger {
	logger := logrus.New()
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logger.SetLevel(parsed)
	return logger
}
