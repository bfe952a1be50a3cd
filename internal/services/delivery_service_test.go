package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"slack-relay-api/internal/adapters/webhook"
	"slack-relay-api/internal/models"
	"slack-relay-api/internal/repositories"
)

func seedFailedDelivery(t *testing.T, journal *memoryJournal, message string) *models.Delivery {
	t.Helper()
	delivery := models.NewDelivery("https://hooks.example.com/T123", message)
	delivery.MarkFailed("no_service")
	if err := journal.Create(context.Background(), delivery); err != nil {
		t.Fatalf("Failed to seed journal: %v", err)
	}
	return delivery
}

func TestDeliveryServiceGetDelivery(t *testing.T) {
	journal := newMemoryJournal()
	service := NewDeliveryService(journal, webhook.NewMockPoster(), newTestLogger())

	seeded := seedFailedDelivery(t, journal, "deploy finished")

	delivery, err := service.GetDelivery(context.Background(), seeded.ID)
	if err != nil {
		t.Fatalf("GetDelivery() failed: %v", err)
	}
	if delivery.ID != seeded.ID {
		t.Errorf("GetDelivery() ID = %s, want %s", delivery.ID, seeded.ID)
	}

	_, err = service.GetDelivery(context.Background(), "")
	if err == nil {
		t.Error("GetDelivery() should fail for empty ID")
	}

	_, err = service.GetDelivery(context.Background(), "nonexistent-id")
	if !repositories.IsNotFound(err) {
		t.Errorf("Expected not found error, got %v", err)
	}
}

func TestDeliveryServiceListValidatesFilter(t *testing.T) {
	journal := newMemoryJournal()
	service := NewDeliveryService(journal, webhook.NewMockPoster(), newTestLogger())

	_, err := service.ListDeliveries(context.Background(), &repositories.DeliveryFilter{Limit: 5000})
	if err == nil {
		t.Error("ListDeliveries() should reject an oversized limit")
	}

	if _, err := service.ListDeliveries(context.Background(), nil); err != nil {
		t.Errorf("ListDeliveries() failed for nil filter: %v", err)
	}
}

func TestDeliveryServiceListFiltersByStatus(t *testing.T) {
	journal := newMemoryJournal()
	service := NewDeliveryService(journal, webhook.NewMockPoster(), newTestLogger())

	seedFailedDelivery(t, journal, "first")
	delivered := models.NewDelivery("https://hooks.example.com/T123", "second")
	delivered.MarkDelivered(200)
	if err := journal.Create(context.Background(), delivered); err != nil {
		t.Fatalf("Failed to seed journal: %v", err)
	}

	status := models.DeliveryStatusFailed
	failed, err := service.ListDeliveries(context.Background(), &repositories.DeliveryFilter{Status: &status})
	if err != nil {
		t.Fatalf("ListDeliveries() failed: %v", err)
	}
	if len(failed) != 1 {
		t.Errorf("ListDeliveries() returned %d deliveries, want 1", len(failed))
	}
}

func TestDeliveryServiceReplayDelivery(t *testing.T) {
	poster := webhook.NewMockPoster()
	journal := newMemoryJournal()
	service := NewDeliveryService(journal, poster, newTestLogger())

	seeded := seedFailedDelivery(t, journal, "deploy finished")

	replayed, err := service.ReplayDelivery(context.Background(), seeded.ID)
	if err != nil {
		t.Fatalf("ReplayDelivery() failed: %v", err)
	}

	if !replayed.IsDelivered() {
		t.Errorf("Replayed delivery status = %s, want delivered", replayed.Status)
	}
	if replayed.Attempts != seeded.Attempts+1 {
		t.Errorf("Replayed delivery attempts = %d, want %d", replayed.Attempts, seeded.Attempts+1)
	}
	if replayed.GetErrorMessage() != "" {
		t.Errorf("Replayed delivery error = %q, want cleared", replayed.GetErrorMessage())
	}

	payload := poster.LastCall().Payload.(*models.SlackPayload)
	if payload.Text != "deploy finished" {
		t.Errorf("Replayed payload text = %s, want original message", payload.Text)
	}

	stored, err := journal.GetByID(context.Background(), seeded.ID)
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if !stored.IsDelivered() {
		t.Errorf("Journal status after replay = %s, want delivered", stored.Status)
	}
}

func TestDeliveryServiceReplayDeliveryRequiresFailedState(t *testing.T) {
	journal := newMemoryJournal()
	service := NewDeliveryService(journal, webhook.NewMockPoster(), newTestLogger())

	delivered := models.NewDelivery("https://hooks.example.com/T123", "deploy finished")
	delivered.MarkDelivered(200)
	if err := journal.Create(context.Background(), delivered); err != nil {
		t.Fatalf("Failed to seed journal: %v", err)
	}

	_, err := service.ReplayDelivery(context.Background(), delivered.ID)
	if err == nil {
		t.Fatal("ReplayDelivery() should reject a delivered entry")
	}
	if !strings.Contains(err.Error(), "not in a failed state") {
		t.Errorf("Expected failed-state error, got %v", err)
	}
}

func TestDeliveryServiceReplayDeliveryProviderRejectsAgain(t *testing.T) {
	poster := webhook.NewMockPoster().
		ScriptResult(&webhook.Result{StatusCode: http.StatusNotFound, Body: []byte("no_service")})
	journal := newMemoryJournal()
	service := NewDeliveryService(journal, poster, newTestLogger())

	seeded := seedFailedDelivery(t, journal, "deploy finished")

	replayed, err := service.ReplayDelivery(context.Background(), seeded.ID)
	if err != nil {
		t.Fatalf("ReplayDelivery() should not fail for a completed exchange: %v", err)
	}
	if !replayed.IsFailed() {
		t.Errorf("Replayed delivery status = %s, want failed", replayed.Status)
	}
	if replayed.ProviderStatus != http.StatusNotFound {
		t.Errorf("Replayed provider status = %d, want 404", replayed.ProviderStatus)
	}
}

func TestDeliveryServiceReplayFailed(t *testing.T) {
	poster := webhook.NewMockPoster()
	journal := newMemoryJournal()
	service := NewDeliveryService(journal, poster, newTestLogger())

	seedFailedDelivery(t, journal, "first")
	seedFailedDelivery(t, journal, "second")

	replayed, err := service.ReplayFailed(context.Background(), 0)
	if err != nil {
		t.Fatalf("ReplayFailed() failed: %v", err)
	}
	if replayed != 2 {
		t.Errorf("ReplayFailed() = %d, want 2", replayed)
	}
	if poster.CallCount() != 2 {
		t.Errorf("Expected 2 webhook calls, got %d", poster.CallCount())
	}

	failed, err := journal.GetFailedDeliveries(context.Background(), 0)
	if err != nil {
		t.Fatalf("GetFailedDeliveries() failed: %v", err)
	}
	if len(failed) != 0 {
		t.Errorf("Expected no failed entries after replay, got %d", len(failed))
	}
}

func TestDeliveryServiceReplayFailedCollectsErrors(t *testing.T) {
	poster := webhook.NewMockPoster().ScriptError(errors.New("dial tcp: connection refused"))
	journal := newMemoryJournal()
	service := NewDeliveryService(journal, poster, newTestLogger())

	seedFailedDelivery(t, journal, "first")
	seedFailedDelivery(t, journal, "second")

	replayed, err := service.ReplayFailed(context.Background(), 0)
	if err == nil {
		t.Fatal("ReplayFailed() should report transport errors")
	}
	if replayed != 0 {
		t.Errorf("ReplayFailed() = %d, want 0", replayed)
	}
	if !strings.Contains(err.Error(), "replay completed with errors") {
		t.Errorf("Expected collected errors, got %v", err)
	}
}

func TestDeliveryServiceCleanupOldDeliveries(t *testing.T) {
	journal := newMemoryJournal()
	service := NewDeliveryService(journal, webhook.NewMockPoster(), newTestLogger())

	old := seedFailedDelivery(t, journal, "stale")
	old.AttemptedAt = time.Now().Add(-48 * time.Hour)
	if err := journal.Update(context.Background(), old); err != nil {
		t.Fatalf("Failed to backdate journal entry: %v", err)
	}
	seedFailedDelivery(t, journal, "fresh")

	removed, err := service.CleanupOldDeliveries(context.Background(), 24*time.Hour)
	if err != nil {
		t.Fatalf("CleanupOldDeliveries() failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("CleanupOldDeliveries() removed %d, want 1", removed)
	}

	_, err = service.CleanupOldDeliveries(context.Background(), 0)
	if err == nil {
		t.Error("CleanupOldDeliveries() should reject a non-positive retention period")
	}
}

func TestDeliveryServiceStatistics(t *testing.T) {
	journal := newMemoryJournal()
	service := NewDeliveryService(journal, webhook.NewMockPoster(), newTestLogger())

	seedFailedDelivery(t, journal, "first")
	delivered := models.NewDelivery("https://hooks.example.com/T123", "second")
	delivered.MarkDelivered(200)
	if err := journal.Create(context.Background(), delivered); err != nil {
		t.Fatalf("Failed to seed journal: %v", err)
	}

	stats, err := service.GetDeliveryStatistics(context.Background(), time.Now().Add(-time.Hour), time.Now())
	if err != nil {
		t.Fatalf("GetDeliveryStatistics() failed: %v", err)
	}
	if stats.TotalAttempts != 2 {
		t.Errorf("TotalAttempts = %d, want 2", stats.TotalAttempts)
	}
	if stats.SuccessRate != 50 {
		t.Errorf("SuccessRate = %f, want 50", stats.SuccessRate)
	}
}
