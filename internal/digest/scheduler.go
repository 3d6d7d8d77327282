package digest

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/omarqouqas/cashflowforecaster-sub002/internal/config"
	"github.com/omarqouqas/cashflowforecaster-sub002/internal/forecast"
	"github.com/omarqouqas/cashflowforecaster-sub002/internal/models"
	"github.com/omarqouqas/cashflowforecaster-sub002/internal/notifications"
	"github.com/omarqouqas/cashflowforecaster-sub002/internal/repository"
)

// Горизонт недельной сводки: семь дней плюс запас, чтобы метрики
// (безопасный остаток, ближайший доход) считались на реальных данных.
const schedulerHorizonDays = 30

const digestCurrency = "USD"

// Scheduler периодически строит сводки для всех пользователей и публикует
// их в хаб уведомлений.
type Scheduler struct {
	cron      *cron.Cron
	snapshots *repository.SnapshotRepository
	tokens    *repository.RefreshTokenRepository
	hub       *notifications.Hub
	cfg       config.ForecastConfig
	spec      string
	logger    *slog.Logger
}

// NewScheduler создает планировщик сводок. Запуск выполняется методом Start.
func NewScheduler(snapshots *repository.SnapshotRepository, tokens *repository.RefreshTokenRepository, hub *notifications.Hub, forecastCfg config.ForecastConfig, digestCfg config.DigestConfig, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		snapshots: snapshots,
		tokens:    tokens,
		hub:       hub,
		cfg:       forecastCfg,
		spec:      digestCfg.CronSpec,
		logger:    logger,
	}
}

// Start регистрирует задачу по cron-расписанию и запускает планировщик.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		s.RunOnce(ctx)
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("digest scheduler started", "spec", s.spec)
	return nil
}

// Stop останавливает планировщик и дожидается завершения текущей задачи.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// RunOnce строит и публикует сводки для всех пользователей. Ошибки по
// отдельным пользователям логируются и не прерывают обход. Заодно
// удаляются refresh-токены с истекшим сроком.
func (s *Scheduler) RunOnce(ctx context.Context) {
	if deleted, err := s.tokens.DeleteExpired(ctx); err != nil {
		s.logger.Error("digest: token cleanup failed", "error", err)
	} else if deleted > 0 {
		s.logger.Info("expired refresh tokens deleted", "count", deleted)
	}

	userIDs, err := s.snapshots.ListUserIDs(ctx)
	if err != nil {
		s.logger.Error("digest: list users failed", "error", err)
		return
	}

	asOf := forecast.DateOf(time.Now().UTC())
	for _, userID := range userIDs {
		if ctx.Err() != nil {
			return
		}
		if err := s.publishFor(ctx, userID, asOf); err != nil {
			s.logger.Error("digest: publish failed", "user_id", userID, "error", err)
		}
	}
	s.logger.Info("digest run complete", "users", len(userIDs))
}

func (s *Scheduler) publishFor(ctx context.Context, userID uuid.UUID, asOf forecast.Date) error {
	snapshot, err := s.snapshots.Load(ctx, userID)
	if err != nil {
		return err
	}
	if len(snapshot.Accounts) == 0 {
		return nil
	}

	result, _ := forecast.Forecast(forecast.Input{
		Accounts:       models.ForecastAccounts(snapshot.Accounts),
		Definitions:    models.ForecastDefinitions(snapshot.Definitions),
		AsOf:           asOf,
		HorizonDays:    schedulerHorizonDays,
		BufferCents:    s.cfg.DefaultBufferCents,
		Credit:         s.cfg.CreditConfig(),
		MaxOccurrences: s.cfg.MaxOccurrences,
	})

	d := Build(result, digestCurrency)
	s.hub.Publish(userID, notifications.WeeklyDigest(d))
	if d.OverdraftAlert {
		s.hub.Publish(userID, notifications.LowBalance(map[string]interface{}{
			"lowest":      d.Lowest,
			"lowest_date": d.LowestDate,
		}))
	}
	return nil
}
