package forecast

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func creditFixture() ([]Account, uuid.UUID, uuid.UUID) {
	checkingID := uuid.New()
	cardID := uuid.New()

	accounts := []Account{
		{ID: checkingID, Name: "Checking", Type: AccountTypeChecking, BalanceCents: 300_000, IsSpendable: true, Currency: "USD"},
		{
			ID: cardID, Name: "Visa", Type: AccountTypeCreditCard, BalanceCents: 50_000,
			IsSpendable: false, Currency: "USD", CreditLimitCents: 500_000,
			StatementCloseDay: 10, PaymentDueDay: 25, PaymentAccountID: &checkingID,
		},
	}
	return accounts, checkingID, cardID
}

// TestCreditFullPayment проверяет синтез платежа полного баланса
// выписки на дату платежа.
func TestCreditFullPayment(t *testing.T) {
	accounts, checkingID, cardID := creditFixture()
	asOf := NewDate(2026, time.January, 1)

	occs, diags := CreditOccurrences(accounts, nil, asOf, asOf.AddDays(30), CreditConfig{Policy: PaymentPolicyFull})
	if len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %v", diags)
	}
	if len(occs) != 2 {
		t.Fatalf("expected payment pair, got %d occurrences", len(occs))
	}

	due := NewDate(2026, time.January, 25)
	var fundingLeg, cardLeg *Occurrence
	for i := range occs {
		switch occs[i].AccountID {
		case checkingID:
			fundingLeg = &occs[i]
		case cardID:
			cardLeg = &occs[i]
		}
	}

	if fundingLeg == nil || cardLeg == nil {
		t.Fatal("expected legs on both accounts")
	}
	if !fundingLeg.Date.Equal(due) || !cardLeg.Date.Equal(due) {
		t.Fatalf("expected payment on %s, got %s and %s", due, fundingLeg.Date, cardLeg.Date)
	}
	if fundingLeg.AmountCents != -50_000 {
		t.Fatalf("expected funding outflow -50000, got %d", fundingLeg.AmountCents)
	}
	if cardLeg.AmountCents != 50_000 {
		t.Fatalf("expected card credit 50000, got %d", cardLeg.AmountCents)
	}
}

// TestCreditMinimumPaymentAccruesInterest проверяет политику minimum:
// остаток после минимального платежа дает процентное событие на
// следующем закрытии выписки.
func TestCreditMinimumPaymentAccruesInterest(t *testing.T) {
	accounts, _, cardID := creditFixture()
	accounts[1].APRBasisPoints = 2400 // 24% годовых

	asOf := NewDate(2026, time.January, 1)
	cfg := CreditConfig{Policy: PaymentPolicyMinimum, MinimumRateBps: 500, MinimumFloorCents: 2_500}

	occs, diags := CreditOccurrences(accounts, nil, asOf, asOf.AddDays(60), cfg)
	if len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %v", diags)
	}

	// Минимум: 5% от 50000 = 2500.
	var interest *Occurrence
	for i := range occs {
		if occs[i].AccountID == cardID && occs[i].Kind == KindBill {
			interest = &occs[i]
			break
		}
	}
	if interest == nil {
		t.Fatal("expected an interest occurrence")
	}

	nextClose := NewDate(2026, time.February, 10)
	if !interest.Date.Equal(nextClose) {
		t.Fatalf("expected interest on %s, got %s", nextClose, interest.Date)
	}

	carried := int64(50_000 - 2_500)
	days := DaysBetween(NewDate(2026, time.January, 25), nextClose)
	want := interestCents(carried, 2400, days)
	if interest.AmountCents != -want {
		t.Fatalf("expected interest -%d, got %d", want, interest.AmountCents)
	}
}

// TestCreditMatchedByUserTransfer проверяет, что настоящий перевод
// пользователя в окне закрытие—платеж гасит выписку и синтетический
// платеж не создается.
func TestCreditMatchedByUserTransfer(t *testing.T) {
	accounts, checkingID, cardID := creditFixture()
	asOf := NewDate(2026, time.January, 1)

	userPayment := []Occurrence{
		{
			Date: NewDate(2026, time.January, 20), AmountCents: 50_000, Kind: KindTransfer,
			DefinitionID: uuid.New(), AccountID: cardID, Name: "Card payoff",
		},
		{
			Date: NewDate(2026, time.January, 20), AmountCents: -50_000, Kind: KindTransfer,
			DefinitionID: uuid.New(), AccountID: checkingID, Name: "Card payoff",
		},
	}

	occs, diags := CreditOccurrences(accounts, userPayment, asOf, asOf.AddDays(30), CreditConfig{Policy: PaymentPolicyFull})
	if len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %v", diags)
	}
	if len(occs) != 0 {
		t.Fatalf("expected no synthesized payment, got %d occurrences", len(occs))
	}
}

// TestCreditWithoutPaymentAccount проверяет диагностику карты
// без счета списания.
func TestCreditWithoutPaymentAccount(t *testing.T) {
	accounts, _, _ := creditFixture()
	accounts[1].PaymentAccountID = nil

	occs, diags := CreditOccurrences(accounts, nil, NewDate(2026, time.January, 1), NewDate(2026, time.March, 1), CreditConfig{Policy: PaymentPolicyFull})
	if len(occs) != 0 {
		t.Fatalf("expected no occurrences, got %d", len(occs))
	}
	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(diags))
	}
}

// TestCreditCardBalanceInSimulation проверяет семантику долга карты
// в симуляции: платеж уменьшает долг, расход увеличивает.
func TestCreditCardBalanceInSimulation(t *testing.T) {
	accounts, checkingID, cardID := creditFixture()
	asOf := NewDate(2026, time.January, 1)

	result, diags := Forecast(Input{
		Accounts:    accounts,
		AsOf:        asOf,
		HorizonDays: 30,
		Credit:      CreditConfig{Policy: PaymentPolicyFull},
	})
	if len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %v", diags)
	}

	last := result.Timeline[len(result.Timeline)-1]
	if got := last.Balances[cardID]; got != 0 {
		t.Fatalf("expected card paid down to 0, got %d", got)
	}
	if got := last.Balances[checkingID]; got != 250_000 {
		t.Fatalf("expected checking 250000 after payment, got %d", got)
	}
}
