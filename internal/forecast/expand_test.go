package forecast

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func testAccounts() ([]Account, uuid.UUID, uuid.UUID) {
	checkingID := uuid.New()
	savingsID := uuid.New()

	accounts := []Account{
		{ID: checkingID, Name: "Checking", Type: AccountTypeChecking, BalanceCents: 100_000, IsSpendable: true, Currency: "USD"},
		{ID: savingsID, Name: "Savings", Type: AccountTypeSavings, BalanceCents: 500_000, IsSpendable: false, Currency: "USD"},
	}
	return accounts, checkingID, savingsID
}

// TestExpandMonthlyClamping проверяет счет от 31 января: февраль
// прижимается к 28/29, март снова 31-е, апрель 30-е.
func TestExpandMonthlyClamping(t *testing.T) {
	accounts, checkingID, _ := testAccounts()
	def := RecurringDefinition{
		ID:          uuid.New(),
		Name:        "Rent",
		Kind:        KindBill,
		AmountCents: 50_000,
		Frequency:   FrequencyMonthly,
		AnchorDate:  NewDate(2023, time.January, 31),
		AccountID:   &checkingID,
		IsActive:    true,
	}

	occs, diags := Expand(def, accountIndex(accounts), NewDate(2023, time.January, 1), NewDate(2023, time.April, 30), 0)
	if len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %v", diags)
	}

	want := []string{"2023-01-31", "2023-02-28", "2023-03-31", "2023-04-30"}
	if len(occs) != len(want) {
		t.Fatalf("expected %d occurrences, got %d", len(want), len(occs))
	}
	for i, date := range want {
		if occs[i].Date.String() != date {
			t.Fatalf("expected occurrence %d on %s, got %s", i, date, occs[i].Date)
		}
	}

	// Високосный год: февраль дает 29-е.
	occs, _ = Expand(def, accountIndex(accounts), NewDate(2024, time.January, 1), NewDate(2024, time.March, 31), 0)
	if len(occs) != 3 {
		t.Fatalf("expected 3 occurrences in leap window, got %d", len(occs))
	}
	if occs[1].Date.String() != "2024-02-29" {
		t.Fatalf("expected leap february 29, got %s", occs[1].Date)
	}
}

// TestExpandWeeklyAdvancesPastAnchor проверяет, что якорь в прошлом
// сдвигается вперед целыми шагами и прошедшие события не порождаются.
func TestExpandWeeklyAdvancesPastAnchor(t *testing.T) {
	accounts, checkingID, _ := testAccounts()
	asOf := NewDate(2026, time.March, 10)
	def := RecurringDefinition{
		ID:          uuid.New(),
		Name:        "Gym",
		Kind:        KindBill,
		AmountCents: 3_000,
		Frequency:   FrequencyWeekly,
		AnchorDate:  asOf.AddDays(-3),
		AccountID:   &checkingID,
		IsActive:    true,
	}

	occs, diags := Expand(def, accountIndex(accounts), asOf, asOf.AddDays(30), 0)
	if len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %v", diags)
	}
	if len(occs) == 0 {
		t.Fatal("expected occurrences")
	}
	if want := asOf.AddDays(4); !occs[0].Date.Equal(want) {
		t.Fatalf("expected first occurrence on %s, got %s", want, occs[0].Date)
	}
	for _, occ := range occs {
		if occ.Date.Before(asOf) {
			t.Fatalf("expected no past occurrences, got %s", occ.Date)
		}
	}
}

// TestExpandSemiMonthlyCount проверяет ровно два события в месяц
// на шестимесячном горизонте при якоре на 1-м числе.
func TestExpandSemiMonthlyCount(t *testing.T) {
	accounts, checkingID, _ := testAccounts()
	asOf := NewDate(2026, time.January, 1)
	def := RecurringDefinition{
		ID:          uuid.New(),
		Name:        "Paycheck",
		Kind:        KindIncome,
		AmountCents: 250_000,
		Frequency:   FrequencySemiMonthly,
		AnchorDate:  asOf,
		AccountID:   &checkingID,
		IsActive:    true,
	}

	occs, diags := Expand(def, accountIndex(accounts), asOf, NewDate(2026, time.June, 30), 0)
	if len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %v", diags)
	}

	perMonth := make(map[time.Month]int)
	for _, occ := range occs {
		perMonth[occ.Date.Month]++
	}

	if len(occs) != 12 {
		t.Fatalf("expected 12 occurrences over six months, got %d", len(occs))
	}
	for month := time.January; month <= time.June; month++ {
		if perMonth[month] != 2 {
			t.Fatalf("expected 2 occurrences in %s, got %d", month, perMonth[month])
		}
	}
}

// TestExpandOneTimeAndIrregular проверяет, что разовые и нерегулярные
// определения дают максимум одно событие и не продолжаются сами.
func TestExpandOneTimeAndIrregular(t *testing.T) {
	accounts, checkingID, _ := testAccounts()
	asOf := NewDate(2026, time.May, 1)

	for _, freq := range []Frequency{FrequencyOneTime, FrequencyIrregular} {
		def := RecurringDefinition{
			ID:          uuid.New(),
			Name:        "Bonus",
			Kind:        KindIncome,
			AmountCents: 10_000,
			Frequency:   freq,
			AnchorDate:  asOf.AddDays(10),
			AccountID:   &checkingID,
			IsActive:    true,
		}

		occs, _ := Expand(def, accountIndex(accounts), asOf, asOf.AddDays(365), 0)
		if len(occs) != 1 {
			t.Fatalf("expected exactly 1 occurrence for %s, got %d", freq, len(occs))
		}

		def.AnchorDate = asOf.AddDays(-1)
		occs, _ = Expand(def, accountIndex(accounts), asOf, asOf.AddDays(365), 0)
		if len(occs) != 0 {
			t.Fatalf("expected no occurrences for past %s anchor, got %d", freq, len(occs))
		}
	}
}

// TestExpandTransferLegs проверяет две связанные ноги перевода
// с равной величиной и противоположными знаками.
func TestExpandTransferLegs(t *testing.T) {
	accounts, checkingID, savingsID := testAccounts()
	asOf := NewDate(2026, time.February, 1)
	def := RecurringDefinition{
		ID:            uuid.New(),
		Name:          "Savings sweep",
		Kind:          KindTransfer,
		AmountCents:   20_000,
		Frequency:     FrequencyMonthly,
		AnchorDate:    asOf,
		FromAccountID: &checkingID,
		ToAccountID:   &savingsID,
		IsActive:      true,
	}

	occs, diags := Expand(def, accountIndex(accounts), asOf, asOf.AddDays(27), 0)
	if len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %v", diags)
	}
	if len(occs) != 2 {
		t.Fatalf("expected 2 transfer legs, got %d", len(occs))
	}
	if !occs[0].Date.Equal(occs[1].Date) {
		t.Fatal("expected both legs on the same date")
	}
	if occs[0].AmountCents+occs[1].AmountCents != 0 {
		t.Fatalf("expected legs to cancel, got %d and %d", occs[0].AmountCents, occs[1].AmountCents)
	}
}

// TestExpandSkipsInvalidDefinition проверяет частичный отказ:
// некорректное определение дает диагностику, корректные — события.
func TestExpandSkipsInvalidDefinition(t *testing.T) {
	accounts, checkingID, _ := testAccounts()
	asOf := NewDate(2026, time.April, 1)

	bad := RecurringDefinition{
		ID:            uuid.New(),
		Name:          "Broken transfer",
		Kind:          KindTransfer,
		AmountCents:   5_000,
		Frequency:     FrequencyMonthly,
		AnchorDate:    asOf,
		FromAccountID: &checkingID,
		ToAccountID:   &checkingID,
		IsActive:      true,
	}
	good := RecurringDefinition{
		ID:          uuid.New(),
		Name:        "Internet",
		Kind:        KindBill,
		AmountCents: 6_000,
		Frequency:   FrequencyMonthly,
		AnchorDate:  asOf,
		AccountID:   &checkingID,
		IsActive:    true,
	}

	occs, diags := ExpandAll([]RecurringDefinition{bad, good}, accounts, asOf, asOf.AddDays(27), 0)
	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(diags))
	}
	if diags[0].DefinitionID != bad.ID {
		t.Fatalf("expected diagnostic for broken definition, got %s", diags[0].DefinitionID)
	}
	if len(occs) != 1 {
		t.Fatalf("expected 1 occurrence from the valid definition, got %d", len(occs))
	}
}

// TestExpandInactiveSkipped проверяет пропуск выключенных определений.
func TestExpandInactiveSkipped(t *testing.T) {
	accounts, checkingID, _ := testAccounts()
	asOf := NewDate(2026, time.April, 1)
	def := RecurringDefinition{
		ID:          uuid.New(),
		Name:        "Paused",
		Kind:        KindBill,
		AmountCents: 1_000,
		Frequency:   FrequencyWeekly,
		AnchorDate:  asOf,
		AccountID:   &checkingID,
		IsActive:    false,
	}

	occs, diags := Expand(def, accountIndex(accounts), asOf, asOf.AddDays(90), 0)
	if len(occs) != 0 || len(diags) != 0 {
		t.Fatalf("expected inactive definition to be skipped, got %d occurrences, %d diagnostics", len(occs), len(diags))
	}
}

// TestExpandOccurrenceCap проверяет защитный предел числа событий.
func TestExpandOccurrenceCap(t *testing.T) {
	accounts, checkingID, _ := testAccounts()
	asOf := NewDate(2026, time.January, 1)
	def := RecurringDefinition{
		ID:          uuid.New(),
		Name:        "Daily-ish",
		Kind:        KindBill,
		AmountCents: 100,
		Frequency:   FrequencyWeekly,
		AnchorDate:  asOf,
		AccountID:   &checkingID,
		IsActive:    true,
	}

	occs, _ := Expand(def, accountIndex(accounts), asOf, asOf.AddDays(36500), 5)
	if len(occs) != 5 {
		t.Fatalf("expected cap of 5 occurrences, got %d", len(occs))
	}
}
