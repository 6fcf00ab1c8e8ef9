package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"stockdesk/console-service/internal/app/console/entity"
	"stockdesk/pkg/metrics"
)

type activityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Create(ctx context.Context, log *entity.ActivityLog) error {
	timer := metrics.NewDbTimer(metricsService, metrics.DbOpInsert, "activity_logs")
	defer timer.ObserveDuration()

	if err := r.db.WithContext(ctx).Create(log).Error; err != nil {
		metrics.RecordDbError(metricsService, metrics.DbOpInsert)
		return fmt.Errorf("failed to create activity log: %w", err)
	}
	return nil
}

// ListRecent - последние записи, новые первыми. Пустой resource - все коллекции.
func (r *activityRepository) ListRecent(ctx context.Context, resource string, limit int) ([]entity.ActivityLog, error) {
	timer := metrics.NewDbTimer(metricsService, metrics.DbOpSelect, "activity_logs")
	defer timer.ObserveDuration()

	query := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit)
	if resource != "" {
		query = query.Where("resource = ?", resource)
	}

	var logs []entity.ActivityLog
	if err := query.Find(&logs).Error; err != nil {
		metrics.RecordDbError(metricsService, metrics.DbOpSelect)
		return nil, fmt.Errorf("failed to list activity logs: %w", err)
	}
	return logs, nil
}
