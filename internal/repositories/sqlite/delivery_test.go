package sqlite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"slack-relay-api/internal/models"
	"slack-relay-api/internal/repositories"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

func setupTestDB(t *testing.T) (*sql.DB, func()) {
	tempDir, err := os.MkdirTemp("", "sqlite_test_*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}

	dbPath := filepath.Join(tempDir, "test.db")
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}

	// Create deliveries table
	_, err = db.Exec(`
		CREATE TABLE deliveries (
			id TEXT PRIMARY KEY,
			webhook_url TEXT NOT NULL,
			message TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			provider_status INTEGER NOT NULL DEFAULT 0,
			error_message TEXT,
			attempts INTEGER NOT NULL DEFAULT 0,
			attempted_at DATETIME NOT NULL
		)
	`)
	if err != nil {
		t.Fatalf("Failed to create deliveries table: %v", err)
	}

	cleanup := func() {
		db.Close()
		os.RemoveAll(tempDir)
	}

	return db, cleanup
}

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	return logger
}

func TestDeliveryRepository_Create(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewDeliveryRepository(db, newTestLogger())
	ctx := context.Background()

	delivery := models.NewDelivery("https://hooks.example.com/T123", "deploy finished")

	err := repo.Create(ctx, delivery)
	if err != nil {
		t.Errorf("Create() failed: %v", err)
	}

	// Verify delivery was created
	retrieved, err := repo.GetByID(ctx, delivery.ID)
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}

	if retrieved.ID != delivery.ID {
		t.Errorf("Retrieved delivery ID = %s, want %s", retrieved.ID, delivery.ID)
	}

	if retrieved.WebhookURL != delivery.WebhookURL {
		t.Errorf("Retrieved delivery WebhookURL = %s, want %s", retrieved.WebhookURL, delivery.WebhookURL)
	}

	if retrieved.Message != delivery.Message {
		t.Errorf("Retrieved delivery Message = %s, want %s", retrieved.Message, delivery.Message)
	}

	if retrieved.Status != models.DeliveryStatusPending {
		t.Errorf("Retrieved delivery Status = %s, want %s", retrieved.Status, models.DeliveryStatusPending)
	}

	if retrieved.ErrorMessage != nil {
		t.Errorf("Retrieved delivery ErrorMessage = %v, want nil", *retrieved.ErrorMessage)
	}
}

func TestDeliveryRepository_CreateDuplicate(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewDeliveryRepository(db, newTestLogger())
	ctx := context.Background()

	delivery := models.NewDelivery("https://hooks.example.com/T123", "deploy finished")

	if err := repo.Create(ctx, delivery); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	err := repo.Create(ctx, delivery)
	if err == nil {
		t.Fatal("Create() should fail for duplicate ID")
	}
	if !repositories.IsDuplicate(err) {
		t.Errorf("Expected duplicate error, got %v", err)
	}
}

func TestDeliveryRepository_CreateInvalid(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewDeliveryRepository(db, newTestLogger())
	ctx := context.Background()

	delivery := models.NewDelivery("https://hooks.example.com/T123", "deploy finished")
	delivery.Message = ""

	err := repo.Create(ctx, delivery)
	if err == nil {
		t.Fatal("Create() should fail for invalid delivery")
	}
	if !repositories.IsValidation(err) {
		t.Errorf("Expected validation error, got %v", err)
	}
}

func TestDeliveryRepository_GetByIDNotFound(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewDeliveryRepository(db, newTestLogger())
	ctx := context.Background()

	_, err := repo.GetByID(ctx, "nonexistent-id")
	if err == nil {
		t.Fatal("GetByID() should fail for unknown ID")
	}
	if !repositories.IsNotFound(err) {
		t.Errorf("Expected not found error, got %v", err)
	}
}

func TestDeliveryRepository_Update(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewDeliveryRepository(db, newTestLogger())
	ctx := context.Background()

	delivery := models.NewDelivery("https://hooks.example.com/T123", "deploy finished")
	if err := repo.Create(ctx, delivery); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	delivery.MarkDelivered(200)
	if err := repo.Update(ctx, delivery); err != nil {
		t.Errorf("Update() failed: %v", err)
	}

	retrieved, err := repo.GetByID(ctx, delivery.ID)
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}

	if retrieved.Status != models.DeliveryStatusDelivered {
		t.Errorf("Retrieved delivery Status = %s, want %s", retrieved.Status, models.DeliveryStatusDelivered)
	}
	if retrieved.ProviderStatus != 200 {
		t.Errorf("Retrieved delivery ProviderStatus = %d, want 200", retrieved.ProviderStatus)
	}
	if retrieved.Attempts != 1 {
		t.Errorf("Retrieved delivery Attempts = %d, want 1", retrieved.Attempts)
	}
}

func TestDeliveryRepository_UpdateNotFound(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewDeliveryRepository(db, newTestLogger())
	ctx := context.Background()

	delivery := models.NewDelivery("https://hooks.example.com/T123", "deploy finished")

	err := repo.Update(ctx, delivery)
	if err == nil {
		t.Fatal("Update() should fail for unknown delivery")
	}
	if !repositories.IsNotFound(err) {
		t.Errorf("Expected not found error, got %v", err)
	}
}

func TestDeliveryRepository_List(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewDeliveryRepository(db, newTestLogger())
	ctx := context.Background()

	delivered := models.NewDelivery("https://hooks.example.com/a", "first")
	delivered.MarkDelivered(200)
	delivered.AttemptedAt = time.Now().Add(-2 * time.Hour)

	failed := models.NewDelivery("https://hooks.example.com/b", "second")
	failed.MarkFailed("no_service")
	failed.AttemptedAt = time.Now().Add(-1 * time.Hour)

	recent := models.NewDelivery("https://hooks.example.com/c", "third")
	recent.MarkDelivered(200)

	for _, d := range []*models.Delivery{delivered, failed, recent} {
		if err := repo.Create(ctx, d); err != nil {
			t.Fatalf("Create() failed: %v", err)
		}
	}

	all, err := repo.List(ctx, nil)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("List() returned %d deliveries, want 3", len(all))
	}
	if all[0].ID != recent.ID {
		t.Errorf("List() first entry = %s, want newest %s", all[0].ID, recent.ID)
	}

	status := models.DeliveryStatusFailed
	failedOnly, err := repo.List(ctx, &repositories.DeliveryFilter{Status: &status})
	if err != nil {
		t.Fatalf("List() with status filter failed: %v", err)
	}
	if len(failedOnly) != 1 || failedOnly[0].ID != failed.ID {
		t.Errorf("List() with status filter returned %d deliveries, want just the failed one", len(failedOnly))
	}

	limited, err := repo.List(ctx, &repositories.DeliveryFilter{Limit: 1, Offset: 1})
	if err != nil {
		t.Fatalf("List() with limit failed: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("List() with limit returned %d deliveries, want 1", len(limited))
	}
	if limited[0].ID != failed.ID {
		t.Errorf("List() with offset returned %s, want %s", limited[0].ID, failed.ID)
	}
}

func TestDeliveryRepository_GetFailedDeliveries(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewDeliveryRepository(db, newTestLogger())
	ctx := context.Background()

	older := models.NewDelivery("https://hooks.example.com/a", "first")
	older.MarkFailed("no_service")
	older.AttemptedAt = time.Now().Add(-2 * time.Hour)

	newer := models.NewDelivery("https://hooks.example.com/b", "second")
	newer.MarkFailed("timeout")
	newer.AttemptedAt = time.Now().Add(-1 * time.Hour)

	ok := models.NewDelivery("https://hooks.example.com/c", "third")
	ok.MarkDelivered(200)

	for _, d := range []*models.Delivery{newer, older, ok} {
		if err := repo.Create(ctx, d); err != nil {
			t.Fatalf("Create() failed: %v", err)
		}
	}

	failed, err := repo.GetFailedDeliveries(ctx, 0)
	if err != nil {
		t.Fatalf("GetFailedDeliveries() failed: %v", err)
	}
	if len(failed) != 2 {
		t.Fatalf("GetFailedDeliveries() returned %d deliveries, want 2", len(failed))
	}
	if failed[0].ID != older.ID {
		t.Errorf("GetFailedDeliveries() first entry = %s, want oldest %s", failed[0].ID, older.ID)
	}

	limited, err := repo.GetFailedDeliveries(ctx, 1)
	if err != nil {
		t.Fatalf("GetFailedDeliveries() with limit failed: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("GetFailedDeliveries() with limit returned %d deliveries, want 1", len(limited))
	}
}

func TestDeliveryRepository_Count(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewDeliveryRepository(db, newTestLogger())
	ctx := context.Background()

	delivered := models.NewDelivery("https://hooks.example.com/a", "first")
	delivered.MarkDelivered(200)

	failed := models.NewDelivery("https://hooks.example.com/b", "second")
	failed.MarkFailed("no_service")

	for _, d := range []*models.Delivery{delivered, failed} {
		if err := repo.Create(ctx, d); err != nil {
			t.Fatalf("Create() failed: %v", err)
		}
	}

	total, err := repo.Count(ctx, nil)
	if err != nil {
		t.Fatalf("Count() failed: %v", err)
	}
	if total != 2 {
		t.Errorf("Count() = %d, want 2", total)
	}

	status := models.DeliveryStatusFailed
	failedCount, err := repo.Count(ctx, &repositories.DeliveryFilter{Status: &status})
	if err != nil {
		t.Fatalf("Count() with filter failed: %v", err)
	}
	if failedCount != 1 {
		t.Errorf("Count() with filter = %d, want 1", failedCount)
	}
}

func TestDeliveryRepository_GetStatistics(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewDeliveryRepository(db, newTestLogger())
	ctx := context.Background()

	first := models.NewDelivery("https://hooks.example.com/a", "first")
	first.MarkDelivered(200)

	second := models.NewDelivery("https://hooks.example.com/b", "second")
	second.MarkDelivered(200)

	third := models.NewDelivery("https://hooks.example.com/c", "third")
	third.MarkFailed("no_service")

	pending := models.NewDelivery("https://hooks.example.com/d", "fourth")

	for _, d := range []*models.Delivery{first, second, third, pending} {
		if err := repo.Create(ctx, d); err != nil {
			t.Fatalf("Create() failed: %v", err)
		}
	}

	stats, err := repo.GetStatistics(ctx, time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("GetStatistics() failed: %v", err)
	}

	if stats.TotalAttempts != 4 {
		t.Errorf("TotalAttempts = %d, want 4", stats.TotalAttempts)
	}
	if stats.TotalDelivered != 2 {
		t.Errorf("TotalDelivered = %d, want 2", stats.TotalDelivered)
	}
	if stats.TotalFailed != 1 {
		t.Errorf("TotalFailed = %d, want 1", stats.TotalFailed)
	}
	if stats.TotalPending != 1 {
		t.Errorf("TotalPending = %d, want 1", stats.TotalPending)
	}
	if stats.SuccessRate != 50 {
		t.Errorf("SuccessRate = %f, want 50", stats.SuccessRate)
	}
}

func TestDeliveryRepository_CleanupOldDeliveries(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewDeliveryRepository(db, newTestLogger())
	ctx := context.Background()

	old := models.NewDelivery("https://hooks.example.com/a", "first")
	old.MarkDelivered(200)
	old.AttemptedAt = time.Now().Add(-48 * time.Hour)

	recent := models.NewDelivery("https://hooks.example.com/b", "second")
	recent.MarkDelivered(200)

	for _, d := range []*models.Delivery{old, recent} {
		if err := repo.Create(ctx, d); err != nil {
			t.Fatalf("Create() failed: %v", err)
		}
	}

	removed, err := repo.CleanupOldDeliveries(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("CleanupOldDeliveries() failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("CleanupOldDeliveries() removed %d deliveries, want 1", removed)
	}

	remaining, err := repo.Count(ctx, nil)
	if err != nil {
		t.Fatalf("Count() failed: %v", err)
	}
	if remaining != 1 {
		t.Errorf("Count() after cleanup = %d, want 1", remaining)
	}
}
