package forecast

import (
	"sort"

	"github.com/google/uuid"
)

// Expand разворачивает одно определение в последовательность событий
// внутри [asOf, horizonEnd]. Некорректное определение дает диагностику
// и ноль событий; остальные определения при этом не страдают.
func Expand(def RecurringDefinition, accounts map[uuid.UUID]Account, asOf, horizonEnd Date, maxOccurrences int) ([]Occurrence, []Diagnostic) {
	if !def.IsActive {
		return nil, nil
	}

	if maxOccurrences <= 0 {
		maxOccurrences = DefaultMaxOccurrences
	}

	if diag := validateDefinition(def, accounts); diag != nil {
		return nil, []Diagnostic{*diag}
	}

	dates := expandDates(def, asOf, horizonEnd, maxOccurrences)
	if len(dates) == 0 {
		return nil, nil
	}

	occurrences := make([]Occurrence, 0, len(dates)*2)
	for _, date := range dates {
		occurrences = append(occurrences, buildOccurrences(def, date)...)
	}

	return occurrences, nil
}

// ExpandAll разворачивает все определения и возвращает события,
// отсортированные детерминированно: дата, затем доход/счет/перевод,
// затем идентификатор определения.
func ExpandAll(defs []RecurringDefinition, accounts []Account, asOf, horizonEnd Date, maxOccurrences int) ([]Occurrence, []Diagnostic) {
	index := accountIndex(accounts)

	var occurrences []Occurrence
	var diagnostics []Diagnostic

	for _, def := range defs {
		occs, diags := Expand(def, index, asOf, horizonEnd, maxOccurrences)
		occurrences = append(occurrences, occs...)
		diagnostics = append(diagnostics, diags...)
	}

	SortOccurrences(occurrences)
	return occurrences, diagnostics
}

// SortOccurrences упорядочивает события по дате, виду и идентификатору
// определения. Порядок стабилен между запусками.
func SortOccurrences(occurrences []Occurrence) {
	sort.SliceStable(occurrences, func(i, j int) bool {
		a, b := occurrences[i], occurrences[j]
		if cmp := a.Date.Compare(b.Date); cmp != 0 {
			return cmp < 0
		}
		if a.Kind.applyRank() != b.Kind.applyRank() {
			return a.Kind.applyRank() < b.Kind.applyRank()
		}
		return a.DefinitionID.String() < b.DefinitionID.String()
	})
}

func accountIndex(accounts []Account) map[uuid.UUID]Account {
	index := make(map[uuid.UUID]Account, len(accounts))
	for _, account := range accounts {
		index[account.ID] = account
	}
	return index
}

func validateDefinition(def RecurringDefinition, accounts map[uuid.UUID]Account) *Diagnostic {
	fail := func(reason string) *Diagnostic {
		return &Diagnostic{DefinitionID: def.ID, Reason: reason}
	}

	if !def.Kind.Valid() {
		return fail("unknown kind")
	}
	if !def.Frequency.Valid() {
		return fail("unknown frequency")
	}
	if def.AmountCents <= 0 {
		return fail("amount must be positive")
	}
	if def.AmountCents > MaxAmountCents {
		return fail("amount exceeds supported bound")
	}
	if def.AnchorDate.IsZero() {
		return fail("anchor date is required")
	}
	if def.RecurrenceDay != 0 && (def.RecurrenceDay < 1 || def.RecurrenceDay > 31) {
		return fail("recurrence day out of range")
	}
	if def.RecurrenceDay != 0 && !def.Frequency.MonthlyFamily() {
		return fail("recurrence day override requires a monthly-family frequency")
	}

	switch def.Kind {
	case KindTransfer:
		if def.FromAccountID == nil || def.ToAccountID == nil {
			return fail("transfer requires both accounts")
		}
		if *def.FromAccountID == *def.ToAccountID {
			return fail("transfer accounts must differ")
		}
		if _, ok := accounts[*def.FromAccountID]; !ok {
			return fail("transfer source account not found")
		}
		if _, ok := accounts[*def.ToAccountID]; !ok {
			return fail("transfer destination account not found")
		}
	default:
		if def.AccountID == nil {
			return fail("account is required")
		}
		if _, ok := accounts[*def.AccountID]; !ok {
			return fail("account not found")
		}
	}

	return nil
}

// expandDates порождает даты событий определения внутри [asOf, horizonEnd].
// Генерация всегда конечна: ограничена горизонтом и maxOccurrences.
func expandDates(def RecurringDefinition, asOf, horizonEnd Date, maxOccurrences int) []Date {
	if horizonEnd.Before(asOf) {
		return nil
	}

	switch def.Frequency {
	case FrequencyOneTime, FrequencyIrregular:
		// Нерегулярные определения дают максимум одно событие
		// на якорной дате и никогда не продолжаются сами.
		if def.AnchorDate.Before(asOf) || def.AnchorDate.After(horizonEnd) {
			return nil
		}
		return []Date{def.AnchorDate}
	case FrequencyWeekly, FrequencyBiweekly:
		step := 7
		if def.Frequency == FrequencyBiweekly {
			step = 14
		}
		return expandFixedStep(def.AnchorDate, step, asOf, horizonEnd, maxOccurrences)
	case FrequencySemiMonthly:
		return expandSemiMonthly(def, asOf, horizonEnd, maxOccurrences)
	case FrequencyMonthly:
		return expandMonthStep(def, 1, asOf, horizonEnd, maxOccurrences)
	case FrequencyQuarterly:
		return expandMonthStep(def, 3, asOf, horizonEnd, maxOccurrences)
	case FrequencyAnnually:
		return expandMonthStep(def, 12, asOf, horizonEnd, maxOccurrences)
	}

	return nil
}

// expandFixedStep шагает от якоря с фиксированным шагом в днях.
// Якорь в прошлом сначала сдвигается вперед целым числом шагов,
// чтобы не породить ни одного прошедшего события.
func expandFixedStep(anchor Date, step int, asOf, horizonEnd Date, maxOccurrences int) []Date {
	current := anchor
	if current.Before(asOf) {
		behind := DaysBetween(current, asOf)
		steps := behind / step
		if behind%step != 0 {
			steps++
		}
		current = current.AddDays(steps * step)
	}

	var dates []Date
	for !current.After(horizonEnd) && len(dates) < maxOccurrences {
		dates = append(dates, current)
		current = current.AddDays(step)
	}

	return dates
}

// expandMonthStep шагает от якоря на stepMonths месяцев, удерживая день
// месяца якоря (или переопределение recurrence_day) с прижатием к длине
// каждого месяца. Счет на 31 января попадает на 28/29 февраля и снова
// на 31 марта, без постоянного дрейфа на 28-е.
func expandMonthStep(def RecurringDefinition, stepMonths int, asOf, horizonEnd Date, maxOccurrences int) []Date {
	anchorDay := def.AnchorDate.Day
	if def.RecurrenceDay != 0 {
		anchorDay = def.RecurrenceDay
	}

	// Грубый прыжок к окну, чтобы не итерировать годы прошлого.
	startStep := 0
	if def.AnchorDate.Before(asOf) {
		monthsBehind := (asOf.Year-def.AnchorDate.Year)*12 + int(asOf.Month) - int(def.AnchorDate.Month)
		startStep = monthsBehind/stepMonths - 1
		if startStep < 0 {
			startStep = 0
		}
	}

	var dates []Date
	for step := startStep; len(dates) < maxOccurrences; step++ {
		date := AddMonthsClamped(def.AnchorDate, step*stepMonths, anchorDay)
		if date.After(horizonEnd) {
			break
		}
		if date.Before(asOf) || date.Before(def.AnchorDate) {
			continue
		}
		dates = append(dates, date)
	}

	return dates
}

// expandSemiMonthly дает две даты в месяц: день якоря и парный день
// со сдвигом 15 дней, каждый независимо прижат к длине месяца.
func expandSemiMonthly(def RecurringDefinition, asOf, horizonEnd Date, maxOccurrences int) []Date {
	firstDay := def.AnchorDate.Day
	if def.RecurrenceDay != 0 {
		firstDay = def.RecurrenceDay
	}

	partnerDay := firstDay + 15
	if partnerDay > 30 {
		partnerDay -= 30
	}

	start := def.AnchorDate
	if start.Before(asOf) {
		start = asOf
	}

	year, month := start.Year, start.Month

	var dates []Date
	for len(dates) < maxOccurrences {
		monthStart := Date{Year: year, Month: month, Day: 1}
		if monthStart.After(horizonEnd) {
			break
		}

		for _, day := range []int{firstDay, partnerDay} {
			date := ClampDayOfMonth(year, month, day)
			if date.Before(asOf) || date.Before(def.AnchorDate) || date.After(horizonEnd) {
				continue
			}
			dates = append(dates, date)
			if len(dates) >= maxOccurrences {
				break
			}
		}

		month++
		if month > 12 {
			month = 1
			year++
		}
	}

	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

// buildOccurrences превращает дату в одно событие со знаком, а для
// перевода — в две связанные ноги с равной величиной и разными знаками.
func buildOccurrences(def RecurringDefinition, date Date) []Occurrence {
	switch def.Kind {
	case KindIncome:
		return []Occurrence{{
			Date:         date,
			AmountCents:  def.AmountCents,
			Kind:         KindIncome,
			DefinitionID: def.ID,
			AccountID:    *def.AccountID,
			Name:         def.Name,
		}}
	case KindBill:
		return []Occurrence{{
			Date:         date,
			AmountCents:  -def.AmountCents,
			Kind:         KindBill,
			DefinitionID: def.ID,
			AccountID:    *def.AccountID,
			Name:         def.Name,
		}}
	case KindTransfer:
		return []Occurrence{
			{
				Date:         date,
				AmountCents:  -def.AmountCents,
				Kind:         KindTransfer,
				DefinitionID: def.ID,
				AccountID:    *def.FromAccountID,
				Name:         def.Name,
			},
			{
				Date:         date,
				AmountCents:  def.AmountCents,
				Kind:         KindTransfer,
				DefinitionID: def.ID,
				AccountID:    *def.ToAccountID,
				Name:         def.Name,
			},
		}
	}

	return nil
}
