package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/omarqouqas/cashflowforecaster-sub002/internal/forecast"
	"github.com/omarqouqas/cashflowforecaster-sub002/internal/models"
)

type DefinitionRepository struct {
	db *pgxpool.Pool
}

// NewDefinitionRepository создает репозиторий повторяющихся определений.
func NewDefinitionRepository(db *pgxpool.Pool) *DefinitionRepository {
	return &DefinitionRepository{db: db}
}

const definitionColumns = `id, user_id, name, kind, amount_cents, frequency, anchor_date,
	 account_id, from_account_id, to_account_id, is_active, recurrence_day, created_at, updated_at`

func scanDefinition(row pgx.Row) (models.RecurringDefinition, error) {
	var def models.RecurringDefinition
	var anchor time.Time

	err := row.Scan(
		&def.ID, &def.UserID, &def.Name, &def.Kind, &def.AmountCents, &def.Frequency, &anchor,
		&def.AccountID, &def.FromAccountID, &def.ToAccountID, &def.IsActive, &def.RecurrenceDay,
		&def.CreatedAt, &def.UpdatedAt,
	)
	if err != nil {
		return def, err
	}

	def.AnchorDate = forecast.DateOf(anchor)
	return def, nil
}

func anchorValue(d forecast.Date) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Create создает определение.
func (r *DefinitionRepository) Create(ctx context.Context, def models.RecurringDefinition) (models.RecurringDefinition, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO recurring_definitions (id, user_id, name, kind, amount_cents, frequency, anchor_date,
		      account_id, from_account_id, to_account_id, is_active, recurrence_day)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING `+definitionColumns,
		def.ID, def.UserID, def.Name, def.Kind, def.AmountCents, def.Frequency, anchorValue(def.AnchorDate),
		def.AccountID, def.FromAccountID, def.ToAccountID, def.IsActive, def.RecurrenceDay,
	)
	return scanDefinition(row)
}

// ListByUser возвращает все определения пользователя.
func (r *DefinitionRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.RecurringDefinition, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+definitionColumns+`
		 FROM recurring_definitions
		 WHERE user_id = $1
		 ORDER BY created_at, id`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	defs := make([]models.RecurringDefinition, 0)
	for rows.Next() {
		def, err := scanDefinition(rows)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}

	return defs, rows.Err()
}

// GetByID возвращает определение пользователя по идентификатору.
func (r *DefinitionRepository) GetByID(ctx context.Context, userID, defID uuid.UUID) (models.RecurringDefinition, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+definitionColumns+`
		 FROM recurring_definitions
		 WHERE id = $1 AND user_id = $2`,
		defID, userID,
	)

	def, err := scanDefinition(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return def, ErrNotFound
		}
		return def, err
	}

	return def, nil
}

// Update переписывает изменяемые поля определения.
func (r *DefinitionRepository) Update(ctx context.Context, def models.RecurringDefinition) (models.RecurringDefinition, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE recurring_definitions
		 SET name = $3, kind = $4, amount_cents = $5, frequency = $6, anchor_date = $7,
		     account_id = $8, from_account_id = $9, to_account_id = $10, is_active = $11,
		     recurrence_day = $12, updated_at = NOW()
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+definitionColumns,
		def.ID, def.UserID, def.Name, def.Kind, def.AmountCents, def.Frequency, anchorValue(def.AnchorDate),
		def.AccountID, def.FromAccountID, def.ToAccountID, def.IsActive, def.RecurrenceDay,
	)

	updated, err := scanDefinition(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return updated, ErrNotFound
		}
		return updated, err
	}

	return updated, nil
}

// SetActive включает или выключает определение.
func (r *DefinitionRepository) SetActive(ctx context.Context, userID, defID uuid.UUID, active bool) (models.RecurringDefinition, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE recurring_definitions
		 SET is_active = $3, updated_at = NOW()
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+definitionColumns,
		defID, userID, active,
	)

	def, err := scanDefinition(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return def, ErrNotFound
		}
		return def, err
	}

	return def, nil
}

// Delete удаляет определение пользователя.
func (r *DefinitionRepository) Delete(ctx context.Context, userID, defID uuid.UUID) error {
	cmd, err := r.db.Exec(ctx,
		`DELETE FROM recurring_definitions WHERE id = $1 AND user_id = $2`,
		defID, userID,
	)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
