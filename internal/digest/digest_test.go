package digest

import (
	"testing"

	"github.com/google/uuid"

	"github.com/omarqouqas/cashflowforecaster-sub002/internal/forecast"
)

// TestBuildDigest проверяет состав недельной сводки: семь дней, минимум,
// подсчет счетов к оплате и флаг овердрафта.
func TestBuildDigest(t *testing.T) {
	asOf := forecast.NewDate(2026, 3, 2)
	defID := uuid.New()
	accountID := uuid.New()

	timeline := make([]forecast.DailySnapshot, 0, 10)
	for i := 0; i < 10; i++ {
		day := asOf.AddDays(i)
		snap := forecast.DailySnapshot{Date: day, SpendableCents: 50000 - int64(i)*10000}
		if i == 2 {
			snap.Occurrences = []forecast.Occurrence{{
				DefinitionID: defID,
				AccountID:    accountID,
				Date:         day,
				AmountCents:  12500,
				Kind:         forecast.KindBill,
			}}
		}
		if i == 4 {
			snap.Occurrences = []forecast.Occurrence{{
				DefinitionID: defID,
				AccountID:    accountID,
				Date:         day,
				AmountCents:  200000,
				Kind:         forecast.KindIncome,
			}}
		}
		timeline = append(timeline, snap)
	}

	result := forecast.ForecastResult{
		Timeline:         timeline,
		SafeToSpendCents: 30000,
	}

	d := Build(result, "USD")

	if len(d.Days) != 7 {
		t.Fatalf("expected 7 days in digest, got %d", len(d.Days))
	}
	if d.UpcomingBills != 1 {
		t.Errorf("expected 1 upcoming bill, got %d", d.UpcomingBills)
	}
	if d.TotalBillsCents != 12500 {
		t.Errorf("expected total bills 12500, got %d", d.TotalBillsCents)
	}
	if d.Days[4].IncomesExpected != 1 {
		t.Errorf("expected income on day 4, got %d", d.Days[4].IncomesExpected)
	}
	// Минимум внутри недели: день 6 с балансом -10000.
	if d.LowestCents != -10000 {
		t.Errorf("expected lowest -10000, got %d", d.LowestCents)
	}
	if !d.LowestDate.Equal(asOf.AddDays(6)) {
		t.Errorf("expected lowest date %s, got %s", asOf.AddDays(6), d.LowestDate)
	}
	if !d.OverdraftAlert {
		t.Error("expected overdraft alert for negative day")
	}
	if d.SafeToSpend != "300.00 USD" {
		t.Errorf("unexpected safe to spend formatting: %q", d.SafeToSpend)
	}
}

// TestBuildDigestShortTimeline проверяет сводку по горизонту короче недели.
func TestBuildDigestShortTimeline(t *testing.T) {
	asOf := forecast.NewDate(2026, 3, 2)
	result := forecast.ForecastResult{
		Timeline: []forecast.DailySnapshot{
			{Date: asOf, SpendableCents: 1000},
			{Date: asOf.AddDays(1), SpendableCents: 2000},
		},
	}

	d := Build(result, "EUR")

	if len(d.Days) != 2 {
		t.Fatalf("expected 2 days, got %d", len(d.Days))
	}
	if d.LowestCents != 1000 {
		t.Errorf("expected lowest 1000, got %d", d.LowestCents)
	}
	if d.OverdraftAlert {
		t.Error("did not expect overdraft alert")
	}
}
