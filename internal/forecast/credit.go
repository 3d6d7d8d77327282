package forecast

import (
	"time"
)

// CreditOccurrences порождает для каждой кредитной карты платежи по
// выпискам и проценты внутри горизонта. Модель не трогает сами счета:
// она только добавляет события к результату развертки.
//
// Политика платежа (полный баланс или минимальный) приходит извне
// через CreditConfig — движок ее не выбирает.
func CreditOccurrences(accounts []Account, occurrences []Occurrence, asOf, horizonEnd Date, cfg CreditConfig) ([]Occurrence, []Diagnostic) {
	var synthesized []Occurrence
	var diagnostics []Diagnostic

	index := accountIndex(accounts)

	for _, account := range accounts {
		if account.Type != AccountTypeCreditCard {
			continue
		}
		if account.StatementCloseDay == 0 || account.PaymentDueDay == 0 {
			continue
		}

		if account.StatementCloseDay < 1 || account.StatementCloseDay > 31 ||
			account.PaymentDueDay < 1 || account.PaymentDueDay > 31 {
			diagnostics = append(diagnostics, Diagnostic{
				DefinitionID: account.ID,
				Reason:       "credit card statement days out of range",
			})
			continue
		}

		if account.PaymentAccountID == nil {
			diagnostics = append(diagnostics, Diagnostic{
				DefinitionID: account.ID,
				Reason:       "credit card has no payment account",
			})
			continue
		}
		if _, ok := index[*account.PaymentAccountID]; !ok {
			diagnostics = append(diagnostics, Diagnostic{
				DefinitionID: account.ID,
				Reason:       "credit card payment account not found",
			})
			continue
		}

		synthesized = append(synthesized, cardOccurrences(account, occurrences, asOf, horizonEnd, cfg)...)
	}

	return synthesized, diagnostics
}

// cardOccurrences проходит циклы выписок одной карты: на каждой дате
// закрытия фиксируется баланс выписки, на дате платежа порождается
// платеж по политике, а непогашенный остаток при наличии APR дает
// процентное событие на следующем закрытии.
func cardOccurrences(card Account, occurrences []Occurrence, asOf, horizonEnd Date, cfg CreditConfig) []Occurrence {
	cardOccs := make([]Occurrence, 0)
	for _, occ := range occurrences {
		if occ.AccountID == card.ID {
			cardOccs = append(cardOccs, occ)
		}
	}
	SortOccurrences(cardOccs)

	owed := card.BalanceCents
	pointer := 0

	var synthesized []Occurrence

	closeDate := firstOnOrAfter(asOf, card.StatementCloseDay)
	for !closeDate.After(horizonEnd) {
		// Все события карты по дату закрытия включительно.
		for pointer < len(cardOccs) && !cardOccs[pointer].Date.After(closeDate) {
			owed -= cardOccs[pointer].AmountCents
			pointer++
		}

		statement := owed
		due := dueAfterClose(closeDate, card.PaymentDueDay)
		nextClose := nextStatementClose(closeDate, card.StatementCloseDay)

		if statement > 0 && !due.After(horizonEnd) {
			payment := paymentAmount(statement, cfg)

			// Настоящий перевод пользователя в окне закрытие—платеж
			// считается оплатой выписки: второй платеж не порождается.
			matched := userPaymentsBetween(cardOccs, closeDate, due)

			if matched < payment {
				synthesized = append(synthesized,
					Occurrence{
						Date:         due,
						AmountCents:  -payment,
						Kind:         KindBill,
						DefinitionID: card.ID,
						AccountID:    *card.PaymentAccountID,
						Name:         card.Name + " statement payment",
					},
					Occurrence{
						Date:         due,
						AmountCents:  payment,
						Kind:         KindTransfer,
						DefinitionID: card.ID,
						AccountID:    card.ID,
						Name:         card.Name + " statement payment",
					},
				)
				owed -= payment
				matched = payment
			}

			carried := statement - matched
			if carried > 0 && card.APRBasisPoints > 0 && !nextClose.After(horizonEnd) {
				days := DaysBetween(due, nextClose)
				if days > 0 {
					interest := interestCents(carried, card.APRBasisPoints, days)
					if interest > 0 {
						synthesized = append(synthesized, Occurrence{
							Date:         nextClose,
							AmountCents:  -interest,
							Kind:         KindBill,
							DefinitionID: card.ID,
							AccountID:    card.ID,
							Name:         card.Name + " interest",
						})
						owed += interest
					}
				}
			}
		}

		closeDate = nextClose
	}

	return synthesized
}

// interestCents считает проценты в целочисленной арифметике:
// остаток долга * ставка в б.п. * дни / (10000 * 365), с усечением.
func interestCents(balance int64, aprBps int, days int) int64 {
	return balance * int64(aprBps) * int64(days) / (10000 * 365)
}

func paymentAmount(statement int64, cfg CreditConfig) int64 {
	if cfg.Policy == PaymentPolicyMinimum {
		minimum := statement * int64(cfg.MinimumRateBps) / 10000
		if minimum < cfg.MinimumFloorCents {
			minimum = cfg.MinimumFloorCents
		}
		if minimum > statement {
			minimum = statement
		}
		return minimum
	}
	return statement
}

// userPaymentsBetween суммирует входящие переводы на карту в окне
// (closeDate, due] — они гасят выписку вместо синтетического платежа.
func userPaymentsBetween(cardOccs []Occurrence, closeDate, due Date) int64 {
	var total int64
	for _, occ := range cardOccs {
		if occ.Kind != KindTransfer || occ.AmountCents <= 0 {
			continue
		}
		if occ.Date.After(closeDate) && !occ.Date.After(due) {
			total += occ.AmountCents
		}
	}
	return total
}

// firstOnOrAfter возвращает первую дату с данным днем месяца не раньше from.
func firstOnOrAfter(from Date, day int) Date {
	candidate := ClampDayOfMonth(from.Year, from.Month, day)
	if candidate.Before(from) {
		year, month := from.Year, from.Month+1
		if month > 12 {
			month = time.January
			year++
		}
		candidate = ClampDayOfMonth(year, month, day)
	}
	return candidate
}

// dueAfterClose возвращает первую дату платежа строго после закрытия.
func dueAfterClose(closeDate Date, dueDay int) Date {
	candidate := ClampDayOfMonth(closeDate.Year, closeDate.Month, dueDay)
	if !candidate.After(closeDate) {
		year, month := closeDate.Year, closeDate.Month+1
		if month > 12 {
			month = time.January
			year++
		}
		candidate = ClampDayOfMonth(year, month, dueDay)
	}
	return candidate
}

func nextStatementClose(closeDate Date, closeDay int) Date {
	year, month := closeDate.Year, closeDate.Month+1
	if month > 12 {
		month = time.January
		year++
	}
	return ClampDayOfMonth(year, month, closeDay)
}
