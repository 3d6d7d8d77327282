package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AdminRepository struct {
	db *pgxpool.Pool
}

type AdminUser struct {
	ID        uuid.UUID
	Email     string
	Name      *string
	IsPremium bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type RunFilter struct {
	UserID   *uuid.UUID
	CacheHit *bool
}

type DailyCount struct {
	Day   time.Time
	Count int
}

type UsageStats struct {
	Users     int
	Accounts  int
	Runs      int
	CacheHits int
	RunsByDay []DailyCount
}

// NewAdminRepository создает репозиторий для админских запросов.
func NewAdminRepository(db *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{db: db}
}

// ListUsers возвращает список пользователей с пагинацией.
func (r *AdminRepository) ListUsers(ctx context.Context, limit, offset int) ([]AdminUser, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, email, name, is_premium, created_at, updated_at
		 FROM users
		 ORDER BY created_at DESC
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]AdminUser, 0)
	for rows.Next() {
		var user AdminUser
		var name *string
		if err := rows.Scan(&user.ID, &user.Email, &name, &user.IsPremium, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, err
		}
		user.Name = name
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

// CountUsers возвращает общее количество пользователей.
func (r *AdminRepository) CountUsers(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// ListRuns возвращает аудит запусков прогноза с фильтрацией.
func (r *AdminRepository) ListRuns(ctx context.Context, filter RunFilter, limit, offset int) ([]RunRecord, error) {
	where, args := buildRunWhere(filter)

	limitParam := len(args) + 1
	offsetParam := len(args) + 2
	query := fmt.Sprintf(
		"SELECT id, user_id, horizon_days, duration_ms, cache_hit, created_at FROM forecast_runs%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		where, limitParam, offsetParam,
	)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]RunRecord, 0)
	for rows.Next() {
		var record RunRecord
		if err := rows.Scan(&record.ID, &record.UserID, &record.HorizonDays, &record.DurationMS, &record.CacheHit, &record.CreatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, record)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return runs, nil
}

type RunRecord struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	HorizonDays int
	DurationMS  int64
	CacheHit    bool
	CreatedAt   time.Time
}

// CountRuns возвращает количество запусков по фильтру.
func (r *AdminRepository) CountRuns(ctx context.Context, filter RunFilter) (int, error) {
	where, args := buildRunWhere(filter)

	query := fmt.Sprintf("SELECT COUNT(*) FROM forecast_runs%s", where)
	var count int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// UsageStats возвращает агрегированную статистику за N дней.
func (r *AdminRepository) UsageStats(ctx context.Context, days int) (UsageStats, error) {
	stats := UsageStats{}
	if days <= 0 {
		return stats, ErrInvalid
	}

	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&stats.Users); err != nil {
		return stats, err
	}

	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&stats.Accounts); err != nil {
		return stats, err
	}

	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE cache_hit)
		 FROM forecast_runs`,
	).Scan(&stats.Runs, &stats.CacheHits); err != nil {
		return stats, err
	}

	start := time.Now().UTC().AddDate(0, 0, -days+1)
	rows, err := r.db.Query(ctx,
		`SELECT date_trunc('day', created_at)::date AS day,
		        COUNT(*)
		 FROM forecast_runs
		 WHERE created_at >= $1
		 GROUP BY day
		 ORDER BY day DESC`,
		start,
	)
	if err != nil {
		return stats, err
	}
	defer rows.Close()

	stats.RunsByDay = make([]DailyCount, 0)
	for rows.Next() {
		var row DailyCount
		if err := rows.Scan(&row.Day, &row.Count); err != nil {
			return stats, err
		}
		stats.RunsByDay = append(stats.RunsByDay, row)
	}

	if err := rows.Err(); err != nil {
		return stats, err
	}

	return stats, nil
}

func buildRunWhere(filter RunFilter) (string, []interface{}) {
	clauses := make([]string, 0)
	args := make([]interface{}, 0)

	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		clauses = append(clauses, fmt.Sprintf("user_id = $%d", len(args)))
	}

	if filter.CacheHit != nil {
		args = append(args, *filter.CacheHit)
		clauses = append(clauses, fmt.Sprintf("cache_hit = $%d", len(args)))
	}

	if len(clauses) == 0 {
		return "", args
	}

	return " WHERE " + strings.Join(clauses, " AND "), args
}
