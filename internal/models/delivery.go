package models

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DeliveryStatus represents the status of a webhook delivery attempt
type DeliveryStatus string

const (
	DeliveryStatusPending   DeliveryStatus = "pending"
	DeliveryStatusDelivered DeliveryStatus = "delivered"
	DeliveryStatusFailed    DeliveryStatus = "failed"
)

// Delivery represents one journaled webhook delivery attempt
type Delivery struct {
	ID             string         `json:"id" db:"id" validate:"required,uuid"`
	WebhookURL     string         `json:"webhook_url" db:"webhook_url" validate:"required"`
	Message        string         `json:"message" db:"message" validate:"required"`
	Status         DeliveryStatus `json:"status" db:"status" validate:"required,oneof=pending delivered failed"`
	ProviderStatus int            `json:"provider_status" db:"provider_status"`
	ErrorMessage   *string        `json:"error_message,omitempty" db:"error_message"`
	Attempts       int            `json:"attempts" db:"attempts"`
	AttemptedAt    time.Time      `json:"attempted_at" db:"attempted_at"`
}

// NewDelivery creates a new delivery record with generated ID and timestamp
func NewDelivery(webhookURL, message string) *Delivery {
	return &Delivery{
		ID:          uuid.New().String(),
		WebhookURL:  webhookURL,
		Message:     message,
		Status:      DeliveryStatusPending,
		Attempts:    0,
		AttemptedAt: time.Now(),
	}
}

// Validate validates the delivery data
func (d *Delivery) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("delivery ID is required")
	}

	if strings.TrimSpace(d.WebhookURL) == "" {
		return fmt.Errorf("webhook URL is required")
	}

	if _, err := url.ParseRequestURI(d.WebhookURL); err != nil {
		return fmt.Errorf("invalid webhook URL format: %s", d.WebhookURL)
	}

	if d.Message == "" {
		return fmt.Errorf("message is required")
	}

	if d.Status != DeliveryStatusPending && d.Status != DeliveryStatusDelivered &&
		d.Status != DeliveryStatusFailed {
		return fmt.Errorf("invalid delivery status: %s", d.Status)
	}

	if d.Attempts < 0 {
		return fmt.Errorf("attempt count cannot be negative")
	}

	return nil
}

// MarkDelivered records a successful attempt with the provider's status code
func (d *Delivery) MarkDelivered(providerStatus int) {
	d.Status = DeliveryStatusDelivered
	d.ProviderStatus = providerStatus
	d.ErrorMessage = nil
	d.Attempts++
	d.AttemptedAt = time.Now()
}

// MarkFailed records a failed attempt with an error message
func (d *Delivery) MarkFailed(errorMessage string) {
	d.Status = DeliveryStatusFailed
	d.SetErrorMessage(errorMessage)
	d.Attempts++
	d.AttemptedAt = time.Now()
}

// SetErrorMessage sets the error message
func (d *Delivery) SetErrorMessage(errorMessage string) {
	if strings.TrimSpace(errorMessage) == "" {
		d.ErrorMessage = nil
	} else {
		d.ErrorMessage = &errorMessage
	}
}

// GetErrorMessage returns the error message or empty string if nil
func (d *Delivery) GetErrorMessage() string {
	if d.ErrorMessage == nil {
		return ""
	}
	return *d.ErrorMessage
}

// IsPending returns true if the delivery has not been attempted yet
func (d *Delivery) IsPending() bool {
	return d.Status == DeliveryStatusPending
}

// IsDelivered returns true if the delivery reached the provider
func (d *Delivery) IsDelivered() bool {
	return d.Status == DeliveryStatusDelivered
}

// IsFailed returns true if the delivery failed
func (d *Delivery) IsFailed() bool {
	return d.Status == DeliveryStatusFailed
}

// CanReplay returns true if the delivery is eligible for an operator replay
func (d *Delivery) CanReplay() bool {
	return d.IsFailed()
}

// GetStatusDisplay returns a human-readable status string
func (d *Delivery) GetStatusDisplay() string {
	switch d.Status {
	case DeliveryStatusPending:
		return "Pending"
	case DeliveryStatusDelivered:
		return fmt.Sprintf("Delivered (%d)", d.ProviderStatus)
	case DeliveryStatusFailed:
		return "Failed"
	default:
		return string(d.Status)
	}
}

// GetTimeSinceAttempt returns the duration since the last attempt
func (d *Delivery) GetTimeSinceAttempt() time.Duration {
	return time.Since(d.AttemptedAt)
}
