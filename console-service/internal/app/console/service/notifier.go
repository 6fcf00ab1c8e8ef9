package service

import (
	"context"

	"github.com/google/uuid"

	"stockdesk/console-service/internal/app/console/entity"
	"stockdesk/console-service/internal/app/console/repository"
	"stockdesk/console-service/internal/app/console/store"
	"stockdesk/pkg/logger"
)

// OutcomeNotifier раздаёт результаты операций хранилищ: лог, Kafka, журнал активности.
// Ошибки получателей только логируются.
type OutcomeNotifier struct {
	publisher OutcomePublisher              // может быть nil
	activity  repository.ActivityRepository // может быть nil
}

func NewOutcomeNotifier(publisher OutcomePublisher, activity repository.ActivityRepository) *OutcomeNotifier {
	return &OutcomeNotifier{publisher: publisher, activity: activity}
}

func (n *OutcomeNotifier) Notify(ctx context.Context, outcome store.Outcome) {
	event := entity.OutcomeEvent{
		EventID:   uuid.New(),
		EventType: entity.EventTypeStoreOutcome,
		Resource:  outcome.Resource,
		Operation: string(outcome.Op),
		EntityID:  outcome.EntityID,
		Success:   outcome.Success,
		Message:   outcome.Message,
		Timestamp: outcome.At.UTC(),
	}

	logEvent := logger.Info()
	if !outcome.Success {
		logEvent = logger.Warn()
	}
	logEvent.
		Str("resource", event.Resource).
		Str("operation", event.Operation).
		Int64("entity_id", event.EntityID).
		Bool("success", event.Success).
		Msg(event.Message)

	// запрос фасада может завершиться раньше, чем получатели
	ctx = context.WithoutCancel(ctx)

	if n.publisher != nil {
		if err := n.publisher.PublishOutcome(ctx, event); err != nil {
			logger.Warn().Err(err).Str("resource", event.Resource).Msg("Failed to publish store outcome")
		}
	}

	if n.activity != nil {
		record := &entity.ActivityLog{
			ID:        event.EventID,
			Resource:  event.Resource,
			Operation: event.Operation,
			EntityID:  event.EntityID,
			Success:   event.Success,
			Message:   event.Message,
			CreatedAt: event.Timestamp,
		}
		if err := n.activity.Create(ctx, record); err != nil {
			logger.Warn().Err(err).Str("resource", event.Resource).Msg("Failed to record activity")
		}
	}
}
