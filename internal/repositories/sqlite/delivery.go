package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"slack-relay-api/internal/models"
	"slack-relay-api/internal/repositories"

	"github.com/sirupsen/logrus"
)

// DeliveryRepository implements the DeliveryRepository interface for SQLite
type DeliveryRepository struct {
	*BaseRepository
}

// NewDeliveryRepository creates a new SQLite delivery repository
func NewDeliveryRepository(db *sql.DB, logger *logrus.Logger) repositories.DeliveryRepository {
	return &DeliveryRepository{
		BaseRepository: NewBaseRepository(db, "deliveries", logger),
	}
}

// Create records a new delivery attempt
func (r *DeliveryRepository) Create(ctx context.Context, delivery *models.Delivery) error {
	if err := delivery.Validate(); err != nil {
		return repositories.ValidationError("delivery", delivery.ID, err)
	}

	query := `
		INSERT INTO deliveries (
			id, webhook_url, message, status, provider_status, error_message, attempts, attempted_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.executeExec(ctx, "create", query,
		delivery.ID,
		delivery.WebhookURL,
		delivery.Message,
		delivery.Status,
		delivery.ProviderStatus,
		delivery.ErrorMessage,
		delivery.Attempts,
		delivery.AttemptedAt,
	)

	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return repositories.DuplicateError("delivery", "id", delivery.ID)
		}
		return err
	}

	return nil
}

// GetByID retrieves a delivery by ID
func (r *DeliveryRepository) GetByID(ctx context.Context, id string) (*models.Delivery, error) {
	if err := r.validateID(id); err != nil {
		return nil, err
	}

	query := `
		SELECT id, webhook_url, message, status, provider_status, error_message, attempts, attempted_at
		FROM deliveries
		WHERE id = ?`

	row := r.executeQueryRow(ctx, "get_by_id", query, id)

	delivery := &models.Delivery{}
	err := row.Scan(
		&delivery.ID,
		&delivery.WebhookURL,
		&delivery.Message,
		&delivery.Status,
		&delivery.ProviderStatus,
		&delivery.ErrorMessage,
		&delivery.Attempts,
		&delivery.AttemptedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, repositories.NotFoundError("delivery", id)
		}
		return nil, repositories.NewRepositoryError("get_by_id", "delivery", id, err)
	}

	return delivery, nil
}

// Update updates an existing delivery record
func (r *DeliveryRepository) Update(ctx context.Context, delivery *models.Delivery) error {
	if err := delivery.Validate(); err != nil {
		return repositories.ValidationError("delivery", delivery.ID, err)
	}

	query := `
		UPDATE deliveries
		SET webhook_url = ?, message = ?, status = ?, provider_status = ?,
			error_message = ?, attempts = ?, attempted_at = ?
		WHERE id = ?`

	result, err := r.executeExec(ctx, "update", query,
		delivery.WebhookURL,
		delivery.Message,
		delivery.Status,
		delivery.ProviderStatus,
		delivery.ErrorMessage,
		delivery.Attempts,
		delivery.AttemptedAt,
		delivery.ID,
	)

	if err != nil {
		return err
	}

	return r.checkRowsAffected(result, "update", delivery.ID)
}

// List retrieves deliveries matching the filter, newest first
func (r *DeliveryRepository) List(ctx context.Context, filter *repositories.DeliveryFilter) ([]*models.Delivery, error) {
	if filter == nil {
		filter = &repositories.DeliveryFilter{}
	}

	query := `
		SELECT id, webhook_url, message, status, provider_status, error_message, attempts, attempted_at
		FROM deliveries`

	whereClause, args := r.buildWhereClause(filterColumns(filter))
	if whereClause != "" {
		query += " " + whereClause
	}

	query += " ORDER BY attempted_at DESC"

	if filter.Limit > 0 || filter.Offset > 0 {
		// LIMIT -1 means unbounded in SQLite
		limit := filter.Limit
		if limit == 0 {
			limit = -1
		}
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, filter.Offset)
	}

	rows, err := r.executeQuery(ctx, "list", query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanDeliveries(rows, "list")
}

// GetByStatus retrieves deliveries with the given status
func (r *DeliveryRepository) GetByStatus(ctx context.Context, status models.DeliveryStatus) ([]*models.Delivery, error) {
	query := `
		SELECT id, webhook_url, message, status, provider_status, error_message, attempts, attempted_at
		FROM deliveries
		WHERE status = ?
		ORDER BY attempted_at DESC`

	rows, err := r.executeQuery(ctx, "get_by_status", query, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanDeliveries(rows, "get_by_status")
}

// GetFailedDeliveries retrieves failed deliveries eligible for replay, oldest first
func (r *DeliveryRepository) GetFailedDeliveries(ctx context.Context, limit int) ([]*models.Delivery, error) {
	if limit <= 0 {
		limit = -1
	}

	query := `
		SELECT id, webhook_url, message, status, provider_status, error_message, attempts, attempted_at
		FROM deliveries
		WHERE status = ?
		ORDER BY attempted_at ASC
		LIMIT ?`

	rows, err := r.executeQuery(ctx, "get_failed", query, models.DeliveryStatusFailed, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanDeliveries(rows, "get_failed")
}

// Count returns the number of deliveries matching the filter
func (r *DeliveryRepository) Count(ctx context.Context, filter *repositories.DeliveryFilter) (int64, error) {
	if filter == nil {
		filter = &repositories.DeliveryFilter{}
	}

	query := "SELECT COUNT(*) FROM deliveries"

	whereClause, args := r.buildWhereClause(filterColumns(filter))
	if whereClause != "" {
		query += " " + whereClause
	}

	row := r.executeQueryRow(ctx, "count", query, args...)

	var count int64
	err := row.Scan(&count)
	if err != nil {
		return 0, repositories.NewRepositoryError("count", "delivery", "", err)
	}

	return count, nil
}

// GetStatistics summarizes delivery outcomes within a date range
func (r *DeliveryRepository) GetStatistics(ctx context.Context, startDate, endDate time.Time) (*repositories.DeliveryStatistics, error) {
	query := `
		SELECT
			COUNT(*) as total_attempts,
			COUNT(CASE WHEN status = ? THEN 1 END) as total_delivered,
			COUNT(CASE WHEN status = ? THEN 1 END) as total_failed,
			COUNT(CASE WHEN status = ? THEN 1 END) as total_pending
		FROM deliveries
		WHERE attempted_at >= ? AND attempted_at <= ?`

	row := r.executeQueryRow(ctx, "get_statistics", query,
		models.DeliveryStatusDelivered, models.DeliveryStatusFailed, models.DeliveryStatusPending,
		startDate, endDate)

	stats := &repositories.DeliveryStatistics{
		Period:    "custom",
		StartDate: startDate,
		EndDate:   endDate,
	}

	err := row.Scan(
		&stats.TotalAttempts,
		&stats.TotalDelivered,
		&stats.TotalFailed,
		&stats.TotalPending,
	)

	if err != nil {
		return nil, repositories.NewRepositoryError("get_statistics", "delivery", "", err)
	}

	if stats.TotalAttempts > 0 {
		stats.SuccessRate = float64(stats.TotalDelivered) / float64(stats.TotalAttempts) * 100
	}

	return stats, nil
}

// CleanupOldDeliveries removes delivery records older than the given age
func (r *DeliveryRepository) CleanupOldDeliveries(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoffTime := time.Now().Add(-olderThan)

	query := "DELETE FROM deliveries WHERE attempted_at < ?"
	result, err := r.executeExec(ctx, "cleanup", query, cutoffTime)
	if err != nil {
		return 0, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, repositories.NewRepositoryError("cleanup", "delivery", "", err)
	}

	return rowsAffected, nil
}

// scanDeliveries reads all rows into delivery models
func (r *DeliveryRepository) scanDeliveries(rows *sql.Rows, operation string) ([]*models.Delivery, error) {
	var deliveries []*models.Delivery
	for rows.Next() {
		delivery := &models.Delivery{}
		err := rows.Scan(
			&delivery.ID,
			&delivery.WebhookURL,
			&delivery.Message,
			&delivery.Status,
			&delivery.ProviderStatus,
			&delivery.ErrorMessage,
			&delivery.Attempts,
			&delivery.AttemptedAt,
		)
		if err != nil {
			return nil, repositories.NewRepositoryError(operation, "delivery", "", err)
		}
		deliveries = append(deliveries, delivery)
	}

	if err := rows.Err(); err != nil {
		return nil, repositories.NewRepositoryError(operation, "delivery", "", err)
	}

	return deliveries, nil
}

// filterColumns maps a typed filter onto WHERE clause columns
func filterColumns(filter *repositories.DeliveryFilter) map[string]interface{} {
	columns := make(map[string]interface{})
	if filter.Status != nil {
		columns["status"] = *filter.Status
	}
	return columns
}
