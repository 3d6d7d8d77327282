// Package forecast — чистое ядро прогноза денежного потока:
// развертка повторяющихся событий, модель кредитных карт, дневная
// симуляция балансов и сводные метрики. Пакет не делает ввода-вывода,
// не читает часы и не держит состояния между вызовами: одинаковый
// вход всегда дает одинаковый результат.
package forecast

// Forecast — единая точка входа ядра: разворачивает определения,
// добавляет события кредитных карт, симулирует балансы и считает
// метрики. Диагностики описывают пропущенные некорректные
// определения; прогноз по остальным данным при этом полон.
func Forecast(input Input) (ForecastResult, []Diagnostic) {
	horizonEnd := input.AsOf.AddDays(input.HorizonDays)

	occurrences, diagnostics := ExpandAll(input.Definitions, input.Accounts, input.AsOf, horizonEnd, input.MaxOccurrences)

	creditOccs, creditDiags := CreditOccurrences(input.Accounts, occurrences, input.AsOf, horizonEnd, input.Credit)
	occurrences = append(occurrences, creditOccs...)
	diagnostics = append(diagnostics, creditDiags...)
	SortOccurrences(occurrences)

	timeline := Simulate(input.Accounts, occurrences, input.AsOf, horizonEnd)
	metrics := AggregateMetrics(timeline)

	return ForecastResult{
		Timeline:           timeline,
		LowestBalanceCents: metrics.LowestBalanceCents,
		LowestBalanceDate:  metrics.LowestBalanceDate,
		OverdraftDays:      metrics.OverdraftDays,
		CollisionDays:      metrics.CollisionDays,
		SafeToSpendCents:   SafeToSpend(timeline, input.BufferCents),
	}, diagnostics
}
