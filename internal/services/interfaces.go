package services

import (
	"context"
	"time"

	"slack-relay-api/internal/models"
	"slack-relay-api/internal/repositories"
)

// RelayService defines the interface for message relay operations
type RelayService interface {
	// Relay posts a message to the configured webhook and journals the outcome
	Relay(ctx context.Context, req *RelayRequest) (*RelayOutcome, error)
}

// DeliveryService defines the interface for delivery journal operations
type DeliveryService interface {
	// Journal reads
	GetDelivery(ctx context.Context, id string) (*models.Delivery, error)
	ListDeliveries(ctx context.Context, filter *repositories.DeliveryFilter) ([]*models.Delivery, error)
	GetDeliveryStatistics(ctx context.Context, startDate, endDate time.Time) (*repositories.DeliveryStatistics, error)

	// Replay operations
	ReplayDelivery(ctx context.Context, id string) (*models.Delivery, error)
	ReplayFailed(ctx context.Context, limit int) (int, error)

	// Maintenance operations
	CleanupOldDeliveries(ctx context.Context, olderThan time.Duration) (int64, error)
}

// Request and response types for service operations

// Relay service types
type RelayRequest struct {
	WebhookURL string `json:"webhook_url" validate:"required"`
	Message    string `json:"message"`
}

type RelayOutcome struct {
	DeliveryID     string             `json:"delivery_id,omitempty"`
	ProviderStatus int                `json:"provider_status"`
	Result         models.RelayResult `json:"result"`
}
