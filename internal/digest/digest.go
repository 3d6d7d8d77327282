// Package digest собирает еженедельную сводку прогноза и рассылает её
// подписчикам через SSE-хаб по расписанию.
package digest

import (
	"github.com/omarqouqas/cashflowforecaster-sub002/internal/forecast"
	"github.com/omarqouqas/cashflowforecaster-sub002/internal/money"
)

// DayEntry описывает один день недельной сводки.
type DayEntry struct {
	Date            forecast.Date `json:"date"`
	SpendableCents  int64         `json:"spendable_cents"`
	Spendable       string        `json:"spendable"`
	BillsDue        int           `json:"bills_due"`
	IncomesExpected int           `json:"incomes_expected"`
}

// Digest — недельная сводка по результату прогноза.
type Digest struct {
	GeneratedFor    forecast.Date `json:"generated_for"`
	Days            []DayEntry    `json:"days"`
	LowestCents     int64         `json:"lowest_cents"`
	Lowest          string        `json:"lowest"`
	LowestDate      forecast.Date `json:"lowest_date"`
	SafeToSpend     string        `json:"safe_to_spend"`
	UpcomingBills   int           `json:"upcoming_bills"`
	OverdraftAlert  bool          `json:"overdraft_alert"`
	TotalBillsCents int64         `json:"total_bills_cents"`
}

const digestDays = 7

// Build строит сводку по первым семи дням прогноза. Валюта используется
// только для форматирования сумм.
func Build(result forecast.ForecastResult, currency string) Digest {
	d := Digest{
		SafeToSpend: money.Format(result.SafeToSpendCents, currency),
	}
	if len(result.Timeline) > 0 {
		d.GeneratedFor = result.Timeline[0].Date
	}

	limit := digestDays
	if len(result.Timeline) < limit {
		limit = len(result.Timeline)
	}

	lowest := int64(0)
	lowestSet := false
	for i := 0; i < limit; i++ {
		snap := result.Timeline[i]
		entry := DayEntry{
			Date:           snap.Date,
			SpendableCents: snap.SpendableCents,
			Spendable:      money.Format(snap.SpendableCents, currency),
		}
		for _, occ := range snap.Occurrences {
			switch occ.Kind {
			case forecast.KindBill:
				entry.BillsDue++
				d.UpcomingBills++
				d.TotalBillsCents += occ.AmountCents
			case forecast.KindIncome:
				entry.IncomesExpected++
			}
		}
		if !lowestSet || snap.SpendableCents < lowest {
			lowest = snap.SpendableCents
			lowestSet = true
			d.LowestDate = snap.Date
		}
		if snap.SpendableCents < 0 {
			d.OverdraftAlert = true
		}
		d.Days = append(d.Days, entry)
	}

	d.LowestCents = lowest
	d.Lowest = money.Format(lowest, currency)
	return d
}
