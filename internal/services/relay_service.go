package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"slack-relay-api/internal/adapters/webhook"
	"slack-relay-api/internal/models"
	"slack-relay-api/internal/repositories"
	"slack-relay-api/pkg/httpfn"
)

// relayService implements the RelayService interface
type relayService struct {
	poster       webhook.Poster
	deliveryRepo repositories.DeliveryRepository
	validator    *validator.Validate
	logger       *logrus.Logger
}

// NewRelayService creates a new relay service instance. A nil deliveryRepo
// disables journaling.
func NewRelayService(
	poster webhook.Poster,
	deliveryRepo repositories.DeliveryRepository,
	logger *logrus.Logger,
) RelayService {
	if logger == nil {
		logger = logrus.New()
	}
	return &relayService{
		poster:       poster,
		deliveryRepo: deliveryRepo,
		validator:    validator.New(),
		logger:       logger,
	}
}

// Relay posts a message to the configured webhook and journals the outcome.
// A completed exchange is reported to the caller regardless of the provider
// status; only transport failures return an error.
func (s *relayService) Relay(ctx context.Context, req *RelayRequest) (*RelayOutcome, error) {
	if req == nil {
		return nil, fmt.Errorf("relay request cannot be nil")
	}

	if err := s.validator.Struct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	delivery := models.NewDelivery(req.WebhookURL, req.Message)
	s.journalCreate(ctx, delivery)

	result, err := s.poster.Post(ctx, req.WebhookURL, &models.SlackPayload{Text: req.Message})
	if err != nil {
		delivery.MarkFailed(err.Error())
		s.journalUpdate(ctx, delivery)
		return nil, httpfn.NewTransportError("Failed to send message to Slack", err)
	}

	if result.StatusCode == http.StatusOK {
		delivery.MarkDelivered(result.StatusCode)
	} else {
		delivery.ProviderStatus = result.StatusCode
		delivery.MarkFailed(fmt.Sprintf("provider returned status %d", result.StatusCode))
	}
	s.journalUpdate(ctx, delivery)

	return &RelayOutcome{
		DeliveryID:     delivery.ID,
		ProviderStatus: result.StatusCode,
		Result:         models.RelayResult{OK: result.StatusCode == http.StatusOK},
	}, nil
}

// journalCreate records a delivery attempt. Journal failures are logged and
// never fail the relay.
func (s *relayService) journalCreate(ctx context.Context, delivery *models.Delivery) {
	if s.deliveryRepo == nil {
		return
	}

	if err := s.deliveryRepo.Create(ctx, delivery); err != nil {
		s.logger.WithFields(logrus.Fields{
			"delivery_id": delivery.ID,
			"error":       err.Error(),
		}).Warn("Failed to journal delivery attempt")
	}
}

// journalUpdate records a delivery outcome. Journal failures are logged and
// never fail the relay.
func (s *relayService) journalUpdate(ctx context.Context, delivery *models.Delivery) {
	if s.deliveryRepo == nil {
		return
	}

	if err := s.deliveryRepo.Update(ctx, delivery); err != nil {
		s.logger.WithFields(logrus.Fields{
			"delivery_id": delivery.ID,
			"status":      delivery.Status,
			"error":       err.Error(),
		}).Warn("Failed to update delivery journal")
	}
}
