package processor

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"stockdesk/console-service/internal/app/console/service"
	"stockdesk/pkg/logger"
	"stockdesk/pkg/metrics"
)

// CronScheduler периодически перечитывает все коллекции с бэкенда.
type CronScheduler struct {
	cron      *cron.Cron
	refresher service.Refresher
}

func NewCronScheduler(refresher service.Refresher) *CronScheduler {
	c := cron.New(cron.WithLogger(cronLogger{log: logger.Logger()}))

	return &CronScheduler{
		cron:      c,
		refresher: refresher,
	}
}

// Start регистрирует задачу и сразу выполняет первое обновление.
func (s *CronScheduler) Start(ctx context.Context, schedule string) error {
	logger.Info().Str("schedule", schedule).Msg("Starting cron scheduler")

	_, err := s.cron.AddFunc(schedule, func() {
		s.refresh(ctx)
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	logger.Info().Msg("Cron scheduler started")

	s.refresh(ctx)
	return nil
}

func (s *CronScheduler) refresh(ctx context.Context) {
	start := time.Now()
	if err := s.refresher.RefreshAll(ctx); err != nil {
		metrics.ScheduledRefreshes.WithLabelValues("failed").Inc()
		logger.Warn().Err(err).Msg("Scheduled store refresh failed")
		return
	}
	metrics.ScheduledRefreshes.WithLabelValues("success").Inc()
	logger.Debug().Dur("duration", time.Since(start)).Msg("Scheduled store refresh completed")
}

func (s *CronScheduler) Stop() {
	logger.Info().Msg("Stopping cron scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info().Msg("Cron scheduler stopped")
}

func (s *CronScheduler) GetEntries() []cron.Entry {
	return s.cron.Entries()
}

// cronLogger направляет сообщения cron в zerolog.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
