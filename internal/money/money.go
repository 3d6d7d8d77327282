// Package money — представление денежных сумм на выходной границе.
// Внутри движок считает в целых центах; в десятичную форму суммы
// превращаются только здесь.
package money

import (
	"github.com/shopspring/decimal"
)

// FromCents превращает центы в десятичную сумму в основных единицах.
func FromCents(cents int64) decimal.Decimal {
	return decimal.NewFromInt(cents).Div(decimal.NewFromInt(100))
}

// Format возвращает сумму строкой с двумя знаками после запятой
// и кодом валюты: "1234.50 USD".
func Format(cents int64, currency string) string {
	value := FromCents(cents).StringFixed(2)
	if currency == "" {
		return value
	}
	return value + " " + currency
}
