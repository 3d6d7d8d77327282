package forecast

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

// TestAggregateMetricsLowestBalance проверяет точный минимум и его
// первую дату на синтетической ленте с известным минимумом.
func TestAggregateMetricsLowestBalance(t *testing.T) {
	base := NewDate(2026, time.October, 1)
	timeline := []DailySnapshot{
		{Date: base, SpendableCents: 10_000},
		{Date: base.AddDays(1), SpendableCents: -2_500},
		{Date: base.AddDays(2), SpendableCents: 4_000},
		{Date: base.AddDays(3), SpendableCents: -2_500},
	}

	metrics := AggregateMetrics(timeline)
	if metrics.LowestBalanceCents != -2_500 {
		t.Fatalf("expected lowest -2500, got %d", metrics.LowestBalanceCents)
	}
	if !metrics.LowestBalanceDate.Equal(base.AddDays(1)) {
		t.Fatalf("expected first tied date %s, got %s", base.AddDays(1), metrics.LowestBalanceDate)
	}
	if metrics.OverdraftDays != 2 {
		t.Fatalf("expected 2 overdraft days, got %d", metrics.OverdraftDays)
	}
}

// TestAggregateMetricsCollisionDays проверяет подсчет дней с двумя
// и более счетами к оплате.
func TestAggregateMetricsCollisionDays(t *testing.T) {
	base := NewDate(2026, time.October, 1)
	bill := func() Occurrence {
		return Occurrence{Kind: KindBill, AmountCents: -1_000, DefinitionID: uuid.New()}
	}

	timeline := []DailySnapshot{
		{Date: base, SpendableCents: 1_000, Occurrences: []Occurrence{bill(), bill()}},
		{Date: base.AddDays(1), SpendableCents: 1_000, Occurrences: []Occurrence{bill()}},
		{Date: base.AddDays(2), SpendableCents: 1_000, Occurrences: []Occurrence{bill(), bill(), {Kind: KindIncome, AmountCents: 500}}},
	}

	metrics := AggregateMetrics(timeline)
	if metrics.CollisionDays != 2 {
		t.Fatalf("expected 2 collision days, got %d", metrics.CollisionDays)
	}
}

// TestForecastEndToEnd проверяет числовое тождество из документации
// формулы safe to spend: баланс 1000, еженедельный счет 189 с якорем
// сегодня, доход 9900 через 11 дней, буфер 200. До дохода счет
// списывается дважды, минимум 622 в день второго счета, и снять
// сегодня можно ровно 622 - 200 = 422, а не 1000 - 200 - 189 = 611.
func TestForecastEndToEnd(t *testing.T) {
	checkingID := uuid.New()
	accounts := []Account{
		{ID: checkingID, Name: "Checking", Type: AccountTypeChecking, BalanceCents: 100_000, IsSpendable: true, Currency: "USD"},
	}

	asOf := NewDate(2026, time.January, 5)
	defs := []RecurringDefinition{
		{
			ID: uuid.New(), Name: "Weekly bill", Kind: KindBill, AmountCents: 18_900,
			Frequency: FrequencyWeekly, AnchorDate: asOf, AccountID: &checkingID, IsActive: true,
		},
		{
			ID: uuid.New(), Name: "Contract payout", Kind: KindIncome, AmountCents: 990_000,
			Frequency: FrequencyOneTime, AnchorDate: asOf.AddDays(11), AccountID: &checkingID, IsActive: true,
		},
	}

	result, diags := Forecast(Input{
		Accounts:    accounts,
		Definitions: defs,
		AsOf:        asOf,
		HorizonDays: 30,
		BufferCents: 20_000,
	})
	if len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %v", diags)
	}

	if result.LowestBalanceCents != 62_200 {
		t.Fatalf("expected lowest balance 62200, got %d", result.LowestBalanceCents)
	}
	if want := asOf.AddDays(7); !result.LowestBalanceDate.Equal(want) {
		t.Fatalf("expected lowest on %s (second bill, before the income), got %s", want, result.LowestBalanceDate)
	}
	if result.SafeToSpendCents != 42_200 {
		t.Fatalf("expected safe to spend 42200, got %d", result.SafeToSpendCents)
	}
	if result.OverdraftDays != 0 {
		t.Fatalf("expected no overdraft days, got %d", result.OverdraftDays)
	}
}

// TestSafeToSpendNeverNegative проверяет ноль при балансе ниже буфера.
func TestSafeToSpendNeverNegative(t *testing.T) {
	base := NewDate(2026, time.November, 2)
	timeline := []DailySnapshot{
		{Date: base, SpendableCents: 5_000},
		{Date: base.AddDays(1), SpendableCents: 1_000},
	}

	if got := SafeToSpend(timeline, 20_000); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}
