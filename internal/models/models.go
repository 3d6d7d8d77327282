package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/omarqouqas/cashflowforecaster-sub002/internal/forecast"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         *string   `json:"name,omitempty"`
	IsPremium    bool      `json:"is_premium"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Account struct {
	ID           uuid.UUID            `json:"id"`
	UserID       uuid.UUID            `json:"user_id"`
	Name         string               `json:"name"`
	Type         forecast.AccountType `json:"type"`
	BalanceCents int64                `json:"balance_cents"`
	IsSpendable  bool                 `json:"is_spendable"`
	Currency     string               `json:"currency"`

	// Поля кредитной карты; для остальных типов нулевые.
	CreditLimitCents  int64      `json:"credit_limit_cents,omitempty"`
	APRBasisPoints    int        `json:"apr_basis_points,omitempty"`
	StatementCloseDay int        `json:"statement_close_day,omitempty"`
	PaymentDueDay     int        `json:"payment_due_day,omitempty"`
	PaymentAccountID  *uuid.UUID `json:"payment_account_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToForecast превращает строку счета в чистое значение для движка.
func (a Account) ToForecast() forecast.Account {
	return forecast.Account{
		ID:                a.ID,
		Name:              a.Name,
		Type:              a.Type,
		BalanceCents:      a.BalanceCents,
		IsSpendable:       a.IsSpendable,
		Currency:          a.Currency,
		CreditLimitCents:  a.CreditLimitCents,
		APRBasisPoints:    a.APRBasisPoints,
		StatementCloseDay: a.StatementCloseDay,
		PaymentDueDay:     a.PaymentDueDay,
		PaymentAccountID:  a.PaymentAccountID,
	}
}

type RecurringDefinition struct {
	ID            uuid.UUID          `json:"id"`
	UserID        uuid.UUID          `json:"user_id"`
	Name          string             `json:"name"`
	Kind          forecast.Kind      `json:"kind"`
	AmountCents   int64              `json:"amount_cents"`
	Frequency     forecast.Frequency `json:"frequency"`
	AnchorDate    forecast.Date      `json:"anchor_date"`
	AccountID     *uuid.UUID         `json:"account_id,omitempty"`
	FromAccountID *uuid.UUID         `json:"from_account_id,omitempty"`
	ToAccountID   *uuid.UUID         `json:"to_account_id,omitempty"`
	IsActive      bool               `json:"is_active"`
	RecurrenceDay int                `json:"recurrence_day,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// ToForecast превращает строку определения в чистое значение для движка.
func (d RecurringDefinition) ToForecast() forecast.RecurringDefinition {
	return forecast.RecurringDefinition{
		ID:            d.ID,
		Name:          d.Name,
		Kind:          d.Kind,
		AmountCents:   d.AmountCents,
		Frequency:     d.Frequency,
		AnchorDate:    d.AnchorDate,
		AccountID:     d.AccountID,
		FromAccountID: d.FromAccountID,
		ToAccountID:   d.ToAccountID,
		IsActive:      d.IsActive,
		RecurrenceDay: d.RecurrenceDay,
	}
}

// ForecastRun — строка аудита одного запуска прогноза.
type ForecastRun struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	HorizonDays int       `json:"horizon_days"`
	DurationMS  int64     `json:"duration_ms"`
	CacheHit    bool      `json:"cache_hit"`
	CreatedAt   time.Time `json:"created_at"`
}

type RefreshToken struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"user_id"`
	TokenHash  string     `json:"-"`
	ExpiresAt  time.Time  `json:"expires_at"`
	CreatedAt  time.Time  `json:"created_at"`
	RevokedAt  *time.Time `json:"revoked_at,omitempty"`
	ReplacedBy *uuid.UUID `json:"replaced_by,omitempty"`
}

// ForecastAccounts превращает строки счетов в значения движка.
func ForecastAccounts(accounts []Account) []forecast.Account {
	out := make([]forecast.Account, 0, len(accounts))
	for _, account := range accounts {
		out = append(out, account.ToForecast())
	}
	return out
}

// ForecastDefinitions превращает строки определений в значения движка.
func ForecastDefinitions(defs []RecurringDefinition) []forecast.RecurringDefinition {
	out := make([]forecast.RecurringDefinition, 0, len(defs))
	for _, def := range defs {
		out = append(out, def.ToForecast())
	}
	return out
}
