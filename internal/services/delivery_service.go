package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"slack-relay-api/internal/adapters/webhook"
	"slack-relay-api/internal/models"
	"slack-relay-api/internal/repositories"
)

// deliveryService implements the DeliveryService interface
type deliveryService struct {
	deliveryRepo repositories.DeliveryRepository
	poster       webhook.Poster
	validator    *validator.Validate
	logger       *logrus.Logger
}

// NewDeliveryService creates a new delivery service instance
func NewDeliveryService(
	deliveryRepo repositories.DeliveryRepository,
	poster webhook.Poster,
	logger *logrus.Logger,
) DeliveryService {
	if logger == nil {
		logger = logrus.New()
	}
	return &deliveryService{
		deliveryRepo: deliveryRepo,
		poster:       poster,
		validator:    validator.New(),
		logger:       logger,
	}
}

// GetDelivery retrieves a delivery by ID
func (s *deliveryService) GetDelivery(ctx context.Context, id string) (*models.Delivery, error) {
	if id == "" {
		return nil, fmt.Errorf("delivery ID cannot be empty")
	}

	delivery, err := s.deliveryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get delivery: %w", err)
	}

	return delivery, nil
}

// ListDeliveries retrieves deliveries matching the filter
func (s *deliveryService) ListDeliveries(ctx context.Context, filter *repositories.DeliveryFilter) ([]*models.Delivery, error) {
	if filter == nil {
		filter = &repositories.DeliveryFilter{}
	}

	if err := s.validator.Struct(filter); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	deliveries, err := s.deliveryRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list deliveries: %w", err)
	}

	return deliveries, nil
}

// GetDeliveryStatistics summarizes delivery outcomes within a date range
func (s *deliveryService) GetDeliveryStatistics(ctx context.Context, startDate, endDate time.Time) (*repositories.DeliveryStatistics, error) {
	stats, err := s.deliveryRepo.GetStatistics(ctx, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to get delivery statistics: %w", err)
	}

	return stats, nil
}

// ReplayDelivery re-posts a failed delivery and updates its journal entry.
// The returned delivery reflects the replay outcome; a replay that the
// provider rejects again is returned without error.
func (s *deliveryService) ReplayDelivery(ctx context.Context, id string) (*models.Delivery, error) {
	if id == "" {
		return nil, fmt.Errorf("delivery ID cannot be empty")
	}

	delivery, err := s.deliveryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get delivery: %w", err)
	}

	if !delivery.CanReplay() {
		return nil, fmt.Errorf("delivery %s is not in a failed state", id)
	}

	result, err := s.poster.Post(ctx, delivery.WebhookURL, &models.SlackPayload{Text: delivery.Message})
	if err != nil {
		delivery.MarkFailed(err.Error())
		s.updateJournal(ctx, delivery)
		return nil, fmt.Errorf("failed to replay delivery %s: %w", id, err)
	}

	if result.StatusCode == http.StatusOK {
		delivery.MarkDelivered(result.StatusCode)
	} else {
		delivery.ProviderStatus = result.StatusCode
		delivery.MarkFailed(fmt.Sprintf("provider returned status %d", result.StatusCode))
	}

	if err := s.deliveryRepo.Update(ctx, delivery); err != nil {
		return nil, fmt.Errorf("failed to update replayed delivery %s: %w", id, err)
	}

	return delivery, nil
}

// ReplayFailed re-posts failed deliveries, oldest first, and returns the
// number delivered
func (s *deliveryService) ReplayFailed(ctx context.Context, limit int) (int, error) {
	failed, err := s.deliveryRepo.GetFailedDeliveries(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to get deliveries for replay: %w", err)
	}

	var replayed int
	var errors []string

	for _, delivery := range failed {
		result, err := s.ReplayDelivery(ctx, delivery.ID)
		if err != nil {
			errors = append(errors, fmt.Sprintf("Failed to replay delivery %s: %v", delivery.ID, err))
			continue
		}
		if result.IsDelivered() {
			replayed++
		}
	}

	if len(errors) > 0 {
		return replayed, fmt.Errorf("replay completed with errors: %s", strings.Join(errors, "; "))
	}

	return replayed, nil
}

// CleanupOldDeliveries removes delivery records older than the given age
func (s *deliveryService) CleanupOldDeliveries(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, fmt.Errorf("retention period must be positive")
	}

	removed, err := s.deliveryRepo.CleanupOldDeliveries(ctx, olderThan)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up old deliveries: %w", err)
	}

	if removed > 0 {
		s.logger.WithFields(logrus.Fields{
			"removed":    removed,
			"older_than": olderThan,
		}).Info("Removed old delivery records")
	}

	return removed, nil
}

// updateJournal updates a journal entry, logging failures
func (s *deliveryService) updateJournal(ctx context.Context, delivery *models.Delivery) {
	if err := s.deliveryRepo.Update(ctx, delivery); err != nil {
		s.logger.WithFields(logrus.Fields{
			"delivery_id": delivery.ID,
			"error":       err.Error(),
		}).Warn("Failed to update delivery journal")
	}
}
