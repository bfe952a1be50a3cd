package repositories

import (
	"context"
	"time"

	"slack-relay-api/internal/models"
)

// DeliveryRepository defines operations on the delivery journal
type DeliveryRepository interface {
	// Create records a new delivery attempt
	Create(ctx context.Context, delivery *models.Delivery) error

	// GetByID retrieves a delivery by its ID
	GetByID(ctx context.Context, id string) (*models.Delivery, error)

	// Update updates an existing delivery record
	Update(ctx context.Context, delivery *models.Delivery) error

	// List retrieves deliveries matching the filter, newest first
	List(ctx context.Context, filter *DeliveryFilter) ([]*models.Delivery, error)

	// GetByStatus retrieves deliveries with the given status
	GetByStatus(ctx context.Context, status models.DeliveryStatus) ([]*models.Delivery, error)

	// GetFailedDeliveries retrieves failed deliveries eligible for replay
	GetFailedDeliveries(ctx context.Context, limit int) ([]*models.Delivery, error)

	// Count returns the number of deliveries matching the filter
	Count(ctx context.Context, filter *DeliveryFilter) (int64, error)

	// GetStatistics summarizes delivery outcomes within a date range
	GetStatistics(ctx context.Context, startDate, endDate time.Time) (*DeliveryStatistics, error)

	// CleanupOldDeliveries removes delivery records older than the given age
	CleanupOldDeliveries(ctx context.Context, olderThan time.Duration) (int64, error)
}

// Supporting types for repository operations

// DeliveryFilter defines the filters accepted by List and Count
type DeliveryFilter struct {
	Status *models.DeliveryStatus `json:"status,omitempty"`
	Limit  int                    `json:"limit" validate:"min=0,max=1000"`
	Offset int                    `json:"offset" validate:"min=0"`
}

// DeliveryStatistics represents delivery outcome statistics
type DeliveryStatistics struct {
	Period         string    `json:"period"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	TotalAttempts  int64     `json:"total_attempts"`
	TotalDelivered int64     `json:"total_delivered"`
	TotalFailed    int64     `json:"total_failed"`
	TotalPending   int64     `json:"total_pending"`
	SuccessRate    float64   `json:"success_rate"`
}
