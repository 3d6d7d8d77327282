package forecast

import (
	"github.com/google/uuid"
)

// HypotheticalPurchase — разовая гипотетическая трата для проверки
// «могу ли я это себе позволить».
type HypotheticalPurchase struct {
	Date        Date
	AmountCents int64 // положительная величина
	AccountID   uuid.UUID
	Name        string
}

// ScenarioResult — итог сценарной оценки.
type ScenarioResult struct {
	CanAfford          bool            `json:"can_afford"`
	LowestBalanceCents int64           `json:"lowest_balance_cents"`
	LowestBalanceDate  Date            `json:"lowest_balance_date"`
	OverdraftDays      int             `json:"overdraft_days"`
	Timeline           []DailySnapshot `json:"timeline"`
}

// EvaluateScenario вставляет одну дополнительную трату в прогноз и
// прогоняет симуляцию заново. Входной снимок не изменяется: повторный
// прогноз по тем же данным даст прежний результат.
func EvaluateScenario(input Input, purchase HypotheticalPurchase) (ScenarioResult, []Diagnostic) {
	horizonEnd := input.AsOf.AddDays(input.HorizonDays)

	occurrences, diagnostics := ExpandAll(input.Definitions, input.Accounts, input.AsOf, horizonEnd, input.MaxOccurrences)

	if purchase.AmountCents > 0 && !purchase.Date.Before(input.AsOf) && !purchase.Date.After(horizonEnd) {
		occurrences = append(occurrences, Occurrence{
			Date:         purchase.Date,
			AmountCents:  -purchase.AmountCents,
			Kind:         KindBill,
			DefinitionID: uuid.Nil,
			AccountID:    purchase.AccountID,
			Name:         purchase.Name,
		})
	} else if purchase.AmountCents <= 0 {
		diagnostics = append(diagnostics, Diagnostic{Reason: "purchase amount must be positive"})
	}

	creditOccs, creditDiags := CreditOccurrences(input.Accounts, occurrences, input.AsOf, horizonEnd, input.Credit)
	occurrences = append(occurrences, creditOccs...)
	diagnostics = append(diagnostics, creditDiags...)
	SortOccurrences(occurrences)

	timeline := Simulate(input.Accounts, occurrences, input.AsOf, horizonEnd)
	metrics := AggregateMetrics(timeline)

	return ScenarioResult{
		CanAfford:          metrics.LowestBalanceCents >= 0,
		LowestBalanceCents: metrics.LowestBalanceCents,
		LowestBalanceDate:  metrics.LowestBalanceDate,
		OverdraftDays:      metrics.OverdraftDays,
		Timeline:           timeline,
	}, diagnostics
}
