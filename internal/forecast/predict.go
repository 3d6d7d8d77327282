package forecast

import (
	"sort"
)

// PaymentTerm — срок оплаты счета-фактуры в днях.
type PaymentTerm string

const (
	TermDueOnReceipt PaymentTerm = "due_on_receipt"
	TermNet15        PaymentTerm = "net_15"
	TermNet30        PaymentTerm = "net_30"
	TermCustom       PaymentTerm = "custom"
)

// Days возвращает число дней срока; для custom берется customDays.
func (t PaymentTerm) Days(customDays int) (int, bool) {
	switch t {
	case TermDueOnReceipt:
		return 0, true
	case TermNet15:
		return 15, true
	case TermNet30:
		return 30, true
	case TermCustom:
		if customDays < 0 {
			return 0, false
		}
		return customDays, true
	}
	return 0, false
}

// ClientHistory — история платежной дисциплины клиента.
type ClientHistory string

const (
	HistoryOnTime ClientHistory = "on_time"
	HistoryLate   ClientHistory = "late"
)

// Invoice — входные данные одного счета-фактуры.
type Invoice struct {
	ID          string
	IssuedOn    Date
	Term        PaymentTerm
	CustomDays  int
	AmountCents int64
	History     ClientHistory
}

// PredictorOptions — внешняя конфигурация предсказателя. Смещение
// за «обычно платит поздно» — продуктовая настройка, не константа
// движка.
type PredictorOptions struct {
	AdjustForWeekends bool
	LateOffsetDays    int
}

// PredictedPayment — ожидаемая дата оплаты одного счета.
type PredictedPayment struct {
	InvoiceID    string `json:"invoice_id"`
	ExpectedDate Date   `json:"expected_date"`
	AmountCents  int64  `json:"amount_cents"`
}

// PredictPayments считает ожидаемые даты оплат: дата выставления плюс
// срок, затем сдвиг с выходных на ближайший рабочий день, затем
// поправка на историю клиента. Результат отсортирован по ожидаемой
// дате, при равенстве сохраняется исходный порядок. Предсказатель
// использует только календарь и не трогает счета и события.
func PredictPayments(invoices []Invoice, opts PredictorOptions) ([]PredictedPayment, []Diagnostic) {
	predictions := make([]PredictedPayment, 0, len(invoices))
	var diagnostics []Diagnostic

	for _, invoice := range invoices {
		termDays, ok := invoice.Term.Days(invoice.CustomDays)
		if !ok {
			diagnostics = append(diagnostics, Diagnostic{Reason: "invoice " + invoice.ID + ": unknown payment term"})
			continue
		}
		if invoice.IssuedOn.IsZero() {
			diagnostics = append(diagnostics, Diagnostic{Reason: "invoice " + invoice.ID + ": issue date is required"})
			continue
		}

		expected := invoice.IssuedOn.AddDays(termDays)
		if opts.AdjustForWeekends {
			expected = expected.NextBusinessDay()
		}
		if invoice.History == HistoryLate {
			expected = expected.AddDays(opts.LateOffsetDays)
		}

		predictions = append(predictions, PredictedPayment{
			InvoiceID:    invoice.ID,
			ExpectedDate: expected,
			AmountCents:  invoice.AmountCents,
		})
	}

	sort.SliceStable(predictions, func(i, j int) bool {
		return predictions[i].ExpectedDate.Before(predictions[j].ExpectedDate)
	})

	return predictions, diagnostics
}
