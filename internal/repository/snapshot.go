package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/omarqouqas/cashflowforecaster-sub002/internal/models"
)

// Snapshot — согласованный срез финансового состояния пользователя,
// прочитанный в одной транзакции. Движок прогноза никогда не видит
// наполовину обновленный набор правил.
type Snapshot struct {
	Accounts    []models.Account
	Definitions []models.RecurringDefinition
}

type SnapshotRepository struct {
	db *pgxpool.Pool
}

// NewSnapshotRepository создает загрузчик снимков.
func NewSnapshotRepository(db *pgxpool.Pool) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Load читает счета и определения пользователя в одной read-only
// транзакции.
func (r *SnapshotRepository) Load(ctx context.Context, userID uuid.UUID) (Snapshot, error) {
	var snapshot Snapshot

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return snapshot, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	rows, err := tx.Query(ctx,
		`SELECT `+accountColumns+`
		 FROM accounts
		 WHERE user_id = $1
		 ORDER BY created_at, id`,
		userID,
	)
	if err != nil {
		return snapshot, err
	}

	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			rows.Close()
			return snapshot, err
		}
		snapshot.Accounts = append(snapshot.Accounts, account)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return snapshot, err
	}

	rows, err = tx.Query(ctx,
		`SELECT `+definitionColumns+`
		 FROM recurring_definitions
		 WHERE user_id = $1
		 ORDER BY created_at, id`,
		userID,
	)
	if err != nil {
		return snapshot, err
	}

	for rows.Next() {
		def, err := scanDefinition(rows)
		if err != nil {
			rows.Close()
			return snapshot, err
		}
		snapshot.Definitions = append(snapshot.Definitions, def)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return snapshot, err
	}

	return snapshot, tx.Commit(ctx)
}

// ListUserIDs возвращает идентификаторы всех пользователей;
// используется планировщиком еженедельных дайджестов.
func (r *SnapshotRepository) ListUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM users ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}
