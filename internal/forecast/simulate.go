package forecast

import (
	"github.com/google/uuid"
)

// Simulate проходит горизонт день за днем: события дня применяются
// к балансам своих счетов, после чего фиксируется снимок. События
// одного дня суммируются, поэтому баланс конца дня не зависит от
// порядка обхода; порядок в списке снимка детерминирован и нужен
// только для отображения. Обе ноги перевода применяются в одном
// проходе и никогда не расходятся по разным дням.
func Simulate(accounts []Account, occurrences []Occurrence, asOf, horizonEnd Date) []DailySnapshot {
	if horizonEnd.Before(asOf) {
		return nil
	}

	index := accountIndex(accounts)

	balances := make(map[uuid.UUID]int64, len(accounts))
	for _, account := range accounts {
		balances[account.ID] = account.BalanceCents
	}

	sorted := make([]Occurrence, len(occurrences))
	copy(sorted, occurrences)
	SortOccurrences(sorted)

	days := DaysBetween(asOf, horizonEnd) + 1
	timeline := make([]DailySnapshot, 0, days)

	pointer := 0
	for offset := 0; offset < days; offset++ {
		day := asOf.AddDays(offset)

		// События раньше начала окна не применяются.
		for pointer < len(sorted) && sorted[pointer].Date.Before(day) {
			pointer++
		}

		var todays []Occurrence
		for pointer < len(sorted) && sorted[pointer].Date.Equal(day) {
			occ := sorted[pointer]
			pointer++

			// Событие вне защитной границы величины пропускается,
			// остальной прогноз продолжается.
			if occ.AmountCents > MaxAmountCents || occ.AmountCents < -MaxAmountCents {
				continue
			}

			account, ok := index[occ.AccountID]
			if !ok {
				continue
			}

			if account.Type == AccountTypeCreditCard {
				// Баланс карты — сумма долга: расход увеличивает
				// долг, входящий платеж уменьшает.
				balances[occ.AccountID] -= occ.AmountCents
			} else {
				balances[occ.AccountID] += occ.AmountCents
			}

			todays = append(todays, occ)
		}

		snapshot := DailySnapshot{
			Date:        day,
			Balances:    make(map[uuid.UUID]int64, len(balances)),
			Occurrences: todays,
		}

		for _, account := range accounts {
			balance := balances[account.ID]
			snapshot.Balances[account.ID] = balance
			if account.Spendable() {
				snapshot.SpendableCents += balance
			}
		}

		timeline = append(timeline, snapshot)
	}

	return timeline
}
