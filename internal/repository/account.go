package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/omarqouqas/cashflowforecaster-sub002/internal/models"
)

type AccountRepository struct {
	db *pgxpool.Pool
}

// NewAccountRepository создает репозиторий счетов.
func NewAccountRepository(db *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{db: db}
}

const accountColumns = `id, user_id, name, account_type, balance_cents, is_spendable, currency,
	 credit_limit_cents, apr_basis_points, statement_close_day, payment_due_day, payment_account_id,
	 created_at, updated_at`

func scanAccount(row pgx.Row) (models.Account, error) {
	var account models.Account
	err := row.Scan(
		&account.ID, &account.UserID, &account.Name, &account.Type, &account.BalanceCents,
		&account.IsSpendable, &account.Currency, &account.CreditLimitCents, &account.APRBasisPoints,
		&account.StatementCloseDay, &account.PaymentDueDay, &account.PaymentAccountID,
		&account.CreatedAt, &account.UpdatedAt,
	)
	return account, err
}

// Create создает счет пользователя.
func (r *AccountRepository) Create(ctx context.Context, account models.Account) (models.Account, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO accounts (id, user_id, name, account_type, balance_cents, is_spendable, currency,
		      credit_limit_cents, apr_basis_points, statement_close_day, payment_due_day, payment_account_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING `+accountColumns,
		account.ID, account.UserID, account.Name, account.Type, account.BalanceCents,
		account.IsSpendable, account.Currency, account.CreditLimitCents, account.APRBasisPoints,
		account.StatementCloseDay, account.PaymentDueDay, account.PaymentAccountID,
	)
	return scanAccount(row)
}

// ListByUser возвращает все счета пользователя.
func (r *AccountRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Account, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+accountColumns+`
		 FROM accounts
		 WHERE user_id = $1
		 ORDER BY created_at, id`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := make([]models.Account, 0)
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}

	return accounts, rows.Err()
}

// GetByID возвращает счет пользователя по идентификатору.
func (r *AccountRepository) GetByID(ctx context.Context, userID, accountID uuid.UUID) (models.Account, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+accountColumns+`
		 FROM accounts
		 WHERE id = $1 AND user_id = $2`,
		accountID, userID,
	)

	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return account, ErrNotFound
		}
		return account, err
	}

	return account, nil
}

// Update переписывает изменяемые поля счета.
func (r *AccountRepository) Update(ctx context.Context, account models.Account) (models.Account, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE accounts
		 SET name = $3, account_type = $4, balance_cents = $5, is_spendable = $6, currency = $7,
		     credit_limit_cents = $8, apr_basis_points = $9, statement_close_day = $10,
		     payment_due_day = $11, payment_account_id = $12, updated_at = NOW()
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+accountColumns,
		account.ID, account.UserID, account.Name, account.Type, account.BalanceCents,
		account.IsSpendable, account.Currency, account.CreditLimitCents, account.APRBasisPoints,
		account.StatementCloseDay, account.PaymentDueDay, account.PaymentAccountID,
	)

	updated, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return updated, ErrNotFound
		}
		return updated, err
	}

	return updated, nil
}

// Delete удаляет счет пользователя.
func (r *AccountRepository) Delete(ctx context.Context, userID, accountID uuid.UUID) error {
	cmd, err := r.db.Exec(ctx,
		`DELETE FROM accounts WHERE id = $1 AND user_id = $2`,
		accountID, userID,
	)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
