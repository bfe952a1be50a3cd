package main

import (
	"context"
	"flag"
	"fmt"
	"path/filepath"
	"time"

	"slack-relay-api/internal/adapters/webhook"
	"slack-relay-api/internal/database"
	"slack-relay-api/internal/models"
	"slack-relay-api/internal/repositories"
	"slack-relay-api/internal/repositories/sqlite"
	"slack-relay-api/internal/services"

	"github.com/sirupsen/logrus"
)

func main() {
	var (
		dbPath         = flag.String("db", "./data/relay.db", "Journal database file path")
		migrationsPath = flag.String("migrations", "./migrations", "Migrations directory path")
		action         = flag.String("action", "list", "Action: list, replay, replay-failed, cleanup")
		id             = flag.String("id", "", "Delivery ID for the replay action")
		status         = flag.String("status", "", "Status filter for the list action: pending, delivered, failed")
		limit          = flag.Int("limit", 0, "Maximum deliveries to list or replay, 0 for all")
		retentionDays  = flag.Int("retention-days", 30, "Age in days before cleanup removes a delivery")
		verbose        = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	// Setup logger
	logger := logrus.New()
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	absDBPath, err := filepath.Abs(*dbPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to get absolute database path")
	}

	logger.WithFields(logrus.Fields{
		"db_path": absDBPath,
		"action":  *action,
	}).Info("Starting replay tool")

	config := &database.ConnectionConfig{
		DatabasePath:   absDBPath,
		MigrationsPath: *migrationsPath,
		Logger:         logger,
	}

	connectionManager := database.NewConnectionManager(config)
	if err := connectionManager.Connect(); err != nil {
		logger.WithError(err).Fatal("Failed to connect to journal database")
	}
	defer connectionManager.Close()

	deliveryRepo := sqlite.NewDeliveryRepository(connectionManager.GetDB(), logger)
	deliveryService := services.NewDeliveryService(deliveryRepo, webhook.NewHTTPPoster(nil), logger)

	ctx := context.Background()

	// Handle different actions
	switch *action {
	case "list":
		err = listDeliveries(ctx, deliveryService, *status, *limit)
	case "replay":
		err = replayDelivery(ctx, deliveryService, *id)
	case "replay-failed":
		err = replayFailed(ctx, deliveryService, *limit)
	case "cleanup":
		err = cleanupDeliveries(ctx, deliveryService, *retentionDays)
	default:
		logger.WithField("action", *action).Fatal("Unknown action. Use: list, replay, replay-failed, cleanup")
	}

	if err != nil {
		logger.WithError(err).Fatal("Replay tool failed")
	}

	logger.Info("Replay tool completed successfully")
}

func listDeliveries(ctx context.Context, svc services.DeliveryService, status string, limit int) error {
	filter := &repositories.DeliveryFilter{Limit: limit}
	if status != "" {
		st := models.DeliveryStatus(status)
		filter.Status = &st
	}

	deliveries, err := svc.ListDeliveries(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to list deliveries: %w", err)
	}

	if len(deliveries) == 0 {
		fmt.Println("No deliveries found.")
		return nil
	}

	fmt.Printf("Found %d deliveries:\n", len(deliveries))
	for _, delivery := range deliveries {
		fmt.Printf("  %s  %-9s  provider=%d  attempts=%d  %s\n",
			delivery.ID, delivery.Status, delivery.ProviderStatus, delivery.Attempts,
			delivery.AttemptedAt.Format("2006-01-02 15:04:05"))
		if delivery.ErrorMessage != nil {
			fmt.Printf("      error: %s\n", *delivery.ErrorMessage)
		}
	}

	return nil
}

func replayDelivery(ctx context.Context, svc services.DeliveryService, id string) error {
	if id == "" {
		return fmt.Errorf("the replay action requires -id")
	}

	delivery, err := svc.ReplayDelivery(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to replay delivery: %w", err)
	}

	fmt.Printf("Replayed delivery %s\n", delivery.ID)
	fmt.Printf("  Status: %s\n", delivery.Status)
	fmt.Printf("  Provider status: %d\n", delivery.ProviderStatus)
	fmt.Printf("  Attempts: %d\n", delivery.Attempts)
	if delivery.ErrorMessage != nil {
		fmt.Printf("  Error: %s\n", *delivery.ErrorMessage)
	}

	return nil
}

func replayFailed(ctx context.Context, svc services.DeliveryService, limit int) error {
	replayed, err := svc.ReplayFailed(ctx, limit)
	fmt.Printf("Replayed %d failed deliveries\n", replayed)
	if err != nil {
		return err
	}

	return nil
}

func cleanupDeliveries(ctx context.Context, svc services.DeliveryService, retentionDays int) error {
	if retentionDays <= 0 {
		return fmt.Errorf("retention-days must be positive")
	}

	removed, err := svc.CleanupOldDeliveries(ctx, time.Duration(retentionDays)*24*time.Hour)
	if err != nil {
		return fmt.Errorf("cleanup failed: %w", err)
	}

	fmt.Printf("Removed %d deliveries older than %d days\n", removed, retentionDays)
	return nil
}
