package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/omarqouqas/cashflowforecaster-sub002/internal/models"
)

type RunRepository struct {
	db *pgxpool.Pool
}

// NewRunRepository создает репозиторий аудита запусков прогноза.
func NewRunRepository(db *pgxpool.Pool) *RunRepository {
	return &RunRepository{db: db}
}

// Record сохраняет строку аудита одного запуска.
func (r *RunRepository) Record(ctx context.Context, run models.ForecastRun) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO forecast_runs (id, user_id, horizon_days, duration_ms, cache_hit)
		 VALUES ($1, $2, $3, $4, $5)`,
		run.ID, run.UserID, run.HorizonDays, run.DurationMS, run.CacheHit,
	)
	return err
}

// ListByUser возвращает последние запуски пользователя.
func (r *RunRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.ForecastRun, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, horizon_days, duration_ms, cache_hit, created_at
		 FROM forecast_runs
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]models.ForecastRun, 0, limit)
	for rows.Next() {
		var run models.ForecastRun
		if err := rows.Scan(&run.ID, &run.UserID, &run.HorizonDays, &run.DurationMS, &run.CacheHit, &run.CreatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}
