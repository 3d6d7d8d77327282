package forecast

import (
	"github.com/google/uuid"
)

// Frequency — периодичность повторяющегося события.
type Frequency string

const (
	FrequencyOneTime     Frequency = "one_time"
	FrequencyWeekly      Frequency = "weekly"
	FrequencyBiweekly    Frequency = "biweekly"
	FrequencySemiMonthly Frequency = "semi_monthly"
	FrequencyMonthly     Frequency = "monthly"
	FrequencyQuarterly   Frequency = "quarterly"
	FrequencyAnnually    Frequency = "annually"
	FrequencyIrregular   Frequency = "irregular"
)

// Valid сообщает, что периодичность известна движку.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyOneTime, FrequencyWeekly, FrequencyBiweekly, FrequencySemiMonthly,
		FrequencyMonthly, FrequencyQuarterly, FrequencyAnnually, FrequencyIrregular:
		return true
	}
	return false
}

// MonthlyFamily сообщает, что периодичность опирается на день месяца
// и поддерживает переопределение recurrence_day.
func (f Frequency) MonthlyFamily() bool {
	switch f {
	case FrequencySemiMonthly, FrequencyMonthly, FrequencyQuarterly, FrequencyAnnually:
		return true
	}
	return false
}

// Kind — вид повторяющегося события.
type Kind string

const (
	KindIncome   Kind = "income"
	KindBill     Kind = "bill"
	KindTransfer Kind = "transfer"
)

// Valid сообщает, что вид события известен движку.
func (k Kind) Valid() bool {
	switch k {
	case KindIncome, KindBill, KindTransfer:
		return true
	}
	return false
}

// applyRank задает детерминированный порядок событий одного дня:
// доходы раньше счетов, счета раньше переводов. На балансы конца дня
// порядок не влияет, только на отображение списка.
func (k Kind) applyRank() int {
	switch k {
	case KindIncome:
		return 0
	case KindBill:
		return 1
	default:
		return 2
	}
}

// AccountType — тип финансового счета.
type AccountType string

const (
	AccountTypeChecking   AccountType = "checking"
	AccountTypeSavings    AccountType = "savings"
	AccountTypeCreditCard AccountType = "credit_card"
)

// Valid сообщает, что тип счета известен движку.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeChecking, AccountTypeSavings, AccountTypeCreditCard:
		return true
	}
	return false
}

// PaymentPolicy — политика автоплатежа по кредитной карте.
// Выбор политики — продуктовое решение, движок получает его извне.
type PaymentPolicy string

const (
	PaymentPolicyFull    PaymentPolicy = "full"
	PaymentPolicyMinimum PaymentPolicy = "minimum"
)

// Valid сообщает, что политика платежа известна движку.
func (p PaymentPolicy) Valid() bool {
	return p == PaymentPolicyFull || p == PaymentPolicyMinimum
}

const (
	// MaxAmountCents — защитная граница величины одной операции.
	// Превышение отбрасывает операцию, но не весь прогноз.
	MaxAmountCents int64 = 1_000_000_000_000

	// DefaultMaxOccurrences — защитный предел числа событий на одно
	// определение, гарантирует завершение даже на испорченных данных.
	DefaultMaxOccurrences = 1000
)

// Account — снимок финансового счета на момент прогноза.
// Для кредитных карт BalanceCents — сумма долга (неотрицательная),
// для остальных счетов — доступный остаток (может уходить в минус,
// это и есть сигнал овердрафта).
type Account struct {
	ID           uuid.UUID
	Name         string
	Type         AccountType
	BalanceCents int64
	IsSpendable  bool
	Currency     string

	// Поля кредитной карты.
	CreditLimitCents  int64
	APRBasisPoints    int        // годовая ставка в базисных пунктах, 0 — не задана
	StatementCloseDay int        // день месяца закрытия выписки, 0 — не задан
	PaymentDueDay     int        // день месяца платежа, 0 — не задан
	PaymentAccountID  *uuid.UUID // счет, с которого списывается автоплатеж
}

// Spendable сообщает, что счет входит в агрегат «можно тратить».
// Кредитные карты не входят никогда.
func (a Account) Spendable() bool {
	return a.IsSpendable && a.Type != AccountTypeCreditCard
}

// RecurringDefinition — определение повторяющегося дохода, счета
// или перевода. AmountCents хранит положительную величину, знак
// появляется только у порожденных событий.
type RecurringDefinition struct {
	ID            uuid.UUID
	Name          string
	Kind          Kind
	AmountCents   int64
	Frequency     Frequency
	AnchorDate    Date
	AccountID     *uuid.UUID // доход или счет
	FromAccountID *uuid.UUID // перевод: откуда
	ToAccountID   *uuid.UUID // перевод: куда
	IsActive      bool
	RecurrenceDay int // переопределение дня месяца, 0 — не задано
}

// Occurrence — одно датированное денежное событие, порожденное
// определением. Создается заново на каждом прогнозе и нигде
// не сохраняется.
type Occurrence struct {
	Date         Date      `json:"date"`
	AmountCents  int64     `json:"amount_cents"` // со знаком: доход плюс, расход минус
	Kind         Kind      `json:"kind"`
	DefinitionID uuid.UUID `json:"definition_id"`
	AccountID    uuid.UUID `json:"account_id"`
	Name         string    `json:"name"`
}

// DailySnapshot — состояние всех счетов на конец одного дня горизонта.
type DailySnapshot struct {
	Date           Date                `json:"date"`
	Balances       map[uuid.UUID]int64 `json:"balances"`
	SpendableCents int64               `json:"spendable_cents"`
	Occurrences    []Occurrence        `json:"occurrences,omitempty"`
}

// ForecastResult — дневная лента балансов и сводные метрики.
type ForecastResult struct {
	Timeline           []DailySnapshot `json:"timeline"`
	LowestBalanceCents int64           `json:"lowest_balance_cents"`
	LowestBalanceDate  Date            `json:"lowest_balance_date"`
	OverdraftDays      int             `json:"overdraft_days"`
	CollisionDays      int             `json:"collision_days"`
	SafeToSpendCents   int64           `json:"safe_to_spend_cents"`
}

// Diagnostic — локальная ошибка одного определения или события.
// Прогноз по остальным корректным данным при этом завершается.
type Diagnostic struct {
	DefinitionID uuid.UUID `json:"definition_id"`
	Reason       string    `json:"reason"`
}

// CreditConfig — внешняя конфигурация модели кредитных карт.
type CreditConfig struct {
	Policy PaymentPolicy
	// MinimumRateBps — доля баланса выписки для политики minimum,
	// в базисных пунктах (200 = 2%).
	MinimumRateBps int
	// MinimumFloorCents — нижняя граница минимального платежа.
	MinimumFloorCents int64
}

// Input — полный явный снимок входных данных прогноза.
// Движок не читает ни часы, ни окружение: одинаковый Input
// всегда дает одинаковый результат.
type Input struct {
	Accounts       []Account
	Definitions    []RecurringDefinition
	AsOf           Date
	HorizonDays    int
	BufferCents    int64
	Credit         CreditConfig
	MaxOccurrences int // 0 — использовать DefaultMaxOccurrences
}
