package forecast

import (
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
)

// TestSimulateConservation проверяет закон сохранения: изменение
// совокупного баланса за день равно сумме событий этого дня.
func TestSimulateConservation(t *testing.T) {
	accounts, checkingID, savingsID := testAccounts()
	asOf := NewDate(2026, time.March, 2)

	defs := []RecurringDefinition{
		{
			ID: uuid.New(), Name: "Salary", Kind: KindIncome, AmountCents: 300_000,
			Frequency: FrequencyBiweekly, AnchorDate: asOf.AddDays(3), AccountID: &checkingID, IsActive: true,
		},
		{
			ID: uuid.New(), Name: "Rent", Kind: KindBill, AmountCents: 120_000,
			Frequency: FrequencyMonthly, AnchorDate: asOf.AddDays(1), AccountID: &checkingID, IsActive: true,
		},
		{
			ID: uuid.New(), Name: "Sweep", Kind: KindTransfer, AmountCents: 10_000,
			Frequency: FrequencyWeekly, AnchorDate: asOf, FromAccountID: &checkingID, ToAccountID: &savingsID, IsActive: true,
		},
	}

	horizonEnd := asOf.AddDays(60)
	occs, diags := ExpandAll(defs, accounts, asOf, horizonEnd, 0)
	if len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %v", diags)
	}

	timeline := Simulate(accounts, occs, asOf, horizonEnd)
	if len(timeline) != 61 {
		t.Fatalf("expected 61 snapshots, got %d", len(timeline))
	}

	spendable := make(map[uuid.UUID]bool)
	for _, account := range accounts {
		spendable[account.ID] = account.Spendable()
	}

	for i := 1; i < len(timeline); i++ {
		var delta int64
		for _, occ := range timeline[i].Occurrences {
			if spendable[occ.AccountID] {
				delta += occ.AmountCents
			}
		}

		got := timeline[i].SpendableCents - timeline[i-1].SpendableCents
		if got != delta {
			t.Fatalf("conservation violated on %s: balance moved by %d, occurrences sum to %d", timeline[i].Date, got, delta)
		}
	}
}

// TestSimulateIdempotent проверяет побайтовое совпадение двух
// прогонов на одинаковом входе.
func TestSimulateIdempotent(t *testing.T) {
	accounts, checkingID, savingsID := testAccounts()
	asOf := NewDate(2026, time.June, 1)

	defs := []RecurringDefinition{
		{
			ID: uuid.New(), Name: "Paycheck", Kind: KindIncome, AmountCents: 400_000,
			Frequency: FrequencySemiMonthly, AnchorDate: asOf, AccountID: &checkingID, IsActive: true,
		},
		{
			ID: uuid.New(), Name: "Utilities", Kind: KindBill, AmountCents: 18_000,
			Frequency: FrequencyMonthly, AnchorDate: asOf.AddDays(14), AccountID: &checkingID, IsActive: true,
		},
		{
			ID: uuid.New(), Name: "Vault", Kind: KindTransfer, AmountCents: 25_000,
			Frequency: FrequencyMonthly, AnchorDate: asOf.AddDays(2), FromAccountID: &checkingID, ToAccountID: &savingsID, IsActive: true,
		},
	}

	input := Input{Accounts: accounts, Definitions: defs, AsOf: asOf, HorizonDays: 90, BufferCents: 10_000}

	first, firstDiags := Forecast(input)
	second, secondDiags := Forecast(input)

	if !reflect.DeepEqual(first, second) {
		t.Fatal("expected identical forecasts for identical input")
	}
	if !reflect.DeepEqual(firstDiags, secondDiags) {
		t.Fatal("expected identical diagnostics for identical input")
	}
}

// TestSimulateSameDayOrdering проверяет порядок списка событий дня:
// доходы, затем счета, затем переводы. Баланс конца дня от порядка
// не зависит.
func TestSimulateSameDayOrdering(t *testing.T) {
	accounts, checkingID, savingsID := testAccounts()
	asOf := NewDate(2026, time.August, 3)

	defs := []RecurringDefinition{
		{
			ID: uuid.New(), Name: "Sweep", Kind: KindTransfer, AmountCents: 1_000,
			Frequency: FrequencyOneTime, AnchorDate: asOf, FromAccountID: &checkingID, ToAccountID: &savingsID, IsActive: true,
		},
		{
			ID: uuid.New(), Name: "Phone", Kind: KindBill, AmountCents: 4_000,
			Frequency: FrequencyOneTime, AnchorDate: asOf, AccountID: &checkingID, IsActive: true,
		},
		{
			ID: uuid.New(), Name: "Refund", Kind: KindIncome, AmountCents: 2_500,
			Frequency: FrequencyOneTime, AnchorDate: asOf, AccountID: &checkingID, IsActive: true,
		},
	}

	occs, _ := ExpandAll(defs, accounts, asOf, asOf.AddDays(7), 0)
	timeline := Simulate(accounts, occs, asOf, asOf.AddDays(7))

	day := timeline[0]
	if len(day.Occurrences) != 4 {
		t.Fatalf("expected 4 occurrences on day 0, got %d", len(day.Occurrences))
	}

	wantKinds := []Kind{KindIncome, KindBill, KindTransfer, KindTransfer}
	for i, kind := range wantKinds {
		if day.Occurrences[i].Kind != kind {
			t.Fatalf("expected occurrence %d to be %s, got %s", i, kind, day.Occurrences[i].Kind)
		}
	}

	// 100000 + 2500 - 4000 - 1000 на расчетном счете.
	if got := day.Balances[checkingID]; got != 97_500 {
		t.Fatalf("expected checking balance 97500, got %d", got)
	}
	if got := day.Balances[savingsID]; got != 501_000 {
		t.Fatalf("expected savings balance 501000, got %d", got)
	}
}

// TestSimulateOverflowGuard проверяет, что событие за защитной
// границей величины пропускается, не ломая остальной прогноз.
func TestSimulateOverflowGuard(t *testing.T) {
	accounts, checkingID, _ := testAccounts()
	asOf := NewDate(2026, time.September, 1)

	occs := []Occurrence{
		{Date: asOf, AmountCents: MaxAmountCents + 1, Kind: KindIncome, DefinitionID: uuid.New(), AccountID: checkingID},
		{Date: asOf, AmountCents: -5_000, Kind: KindBill, DefinitionID: uuid.New(), AccountID: checkingID},
	}

	timeline := Simulate(accounts, occs, asOf, asOf)
	if got := timeline[0].Balances[checkingID]; got != 95_000 {
		t.Fatalf("expected oversized occurrence to be skipped, balance %d", got)
	}
	if len(timeline[0].Occurrences) != 1 {
		t.Fatalf("expected 1 applied occurrence, got %d", len(timeline[0].Occurrences))
	}
}
