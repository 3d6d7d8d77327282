package forecast

// Metrics — сводные показатели по дневной ленте балансов.
type Metrics struct {
	LowestBalanceCents int64
	LowestBalanceDate  Date
	OverdraftDays      int
	CollisionDays      int
}

// AggregateMetrics выводит из ленты минимальный совокупный баланс
// (при равенстве — первая дата), число дней овердрафта и число дней
// с двумя и более счетами к оплате.
func AggregateMetrics(timeline []DailySnapshot) Metrics {
	metrics := Metrics{}
	if len(timeline) == 0 {
		return metrics
	}

	metrics.LowestBalanceCents = timeline[0].SpendableCents
	metrics.LowestBalanceDate = timeline[0].Date

	for _, snapshot := range timeline {
		if snapshot.SpendableCents < metrics.LowestBalanceCents {
			metrics.LowestBalanceCents = snapshot.SpendableCents
			metrics.LowestBalanceDate = snapshot.Date
		}

		if snapshot.SpendableCents < 0 {
			metrics.OverdraftDays++
		}

		bills := 0
		for _, occ := range snapshot.Occurrences {
			if occ.Kind == KindBill {
				bills++
			}
		}
		if bills >= 2 {
			metrics.CollisionDays++
		}
	}

	return metrics
}

// SafeToSpend — наибольшая сумма, которую можно снять сегодня так,
// чтобы смоделированный баланс не опустился ниже буфера до прихода
// следующего дохода. Считается в замкнутой форме от минимума окна,
// без повторной симуляции по центу.
func SafeToSpend(timeline []DailySnapshot, bufferCents int64) int64 {
	if len(timeline) == 0 {
		return 0
	}

	windowEnd := nextIncomeDate(timeline)

	lowest := timeline[0].SpendableCents
	for _, snapshot := range timeline {
		if !windowEnd.IsZero() && !snapshot.Date.Before(windowEnd) {
			break
		}
		if snapshot.SpendableCents < lowest {
			lowest = snapshot.SpendableCents
		}
	}

	safe := lowest - bufferCents
	if safe < 0 {
		return 0
	}
	return safe
}

// nextIncomeDate возвращает дату первого дохода после начала окна.
// Нулевая дата означает, что доходов в горизонте нет и окно — весь
// горизонт.
func nextIncomeDate(timeline []DailySnapshot) Date {
	for i, snapshot := range timeline {
		if i == 0 {
			// Доход в нулевой день уже в текущем балансе окна.
			continue
		}
		for _, occ := range snapshot.Occurrences {
			if occ.Kind == KindIncome {
				return snapshot.Date
			}
		}
	}
	return Date{}
}
