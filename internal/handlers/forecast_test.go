package handlers

import (
	"bytes"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/omarqouqas/cashflowforecaster-sub002/internal/auth"
	"github.com/omarqouqas/cashflowforecaster-sub002/internal/config"
	"github.com/omarqouqas/cashflowforecaster-sub002/internal/forecast"
	"github.com/omarqouqas/cashflowforecaster-sub002/internal/notifications"
)

func testHandler() *ForecastHandler {
	return &ForecastHandler{
		Config: config.ForecastConfig{
			FreeHorizonDays:    90,
			PremiumHorizonDays: 365,
		},
	}
}

// TestResolveHorizonDefaults проверяет, что пустой запрос дает максимум тарифа.
func TestResolveHorizonDefaults(t *testing.T) {
	h := testHandler()

	got, err := h.resolveHorizon("", auth.PlanFree)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != 90 {
		t.Fatalf("expected free default 90, got %d", got)
	}

	got, err = h.resolveHorizon("", auth.PlanPremium)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != 365 {
		t.Fatalf("expected premium default 365, got %d", got)
	}
}

// TestResolveHorizonTierLimit проверяет отказ при превышении тарифа.
func TestResolveHorizonTierLimit(t *testing.T) {
	h := testHandler()

	if _, err := h.resolveHorizon("120", auth.PlanFree); !errors.Is(err, errHorizonTier) {
		t.Fatalf("expected tier error for free user at 120 days, got %v", err)
	}

	got, err := h.resolveHorizon("120", auth.PlanPremium)
	if err != nil {
		t.Fatalf("expected no error for premium at 120 days, got %v", err)
	}
	if got != 120 {
		t.Fatalf("expected 120, got %d", got)
	}
}

// TestResolveHorizonInvalid проверяет отказ на мусорном значении.
func TestResolveHorizonInvalid(t *testing.T) {
	h := testHandler()

	if _, err := h.resolveHorizon("abc", auth.PlanFree); !errors.Is(err, errInvalidHorizon) {
		t.Fatalf("expected invalid horizon error, got %v", err)
	}
	if _, err := h.resolveHorizon("-5", auth.PlanFree); !errors.Is(err, errInvalidHorizon) {
		t.Fatalf("expected invalid horizon error for negative, got %v", err)
	}
}

// TestWriteTimelineCSV проверяет структуру CSV-выгрузки дневной ленты.
func TestWriteTimelineCSV(t *testing.T) {
	asOf := forecast.NewDate(2026, 1, 5)
	result := forecast.ForecastResult{
		Timeline: []forecast.DailySnapshot{
			{Date: asOf, SpendableCents: 100000},
			{
				Date:           asOf.AddDays(1),
				SpendableCents: 81100,
				Occurrences: []forecast.Occurrence{{
					DefinitionID: uuid.New(),
					AccountID:    uuid.New(),
					Date:         asOf.AddDays(1),
					AmountCents:  -18900,
					Kind:         forecast.KindBill,
					Name:         "gym",
				}},
			},
		},
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writeTimelineCSV(writer, result); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	writer.Flush()

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header and 2 rows, got %d records", len(records))
	}
	if records[1][0] != "2026-01-05" || records[1][1] != "100000" {
		t.Fatalf("unexpected first row: %v", records[1])
	}
	if records[2][3] != "1" {
		t.Fatalf("expected 1 bill on second day, got %v", records[2])
	}
}

// TestWriteOccurrencesCSV проверяет построчную выгрузку событий.
func TestWriteOccurrencesCSV(t *testing.T) {
	asOf := forecast.NewDate(2026, 1, 5)
	defID := uuid.New()
	accountID := uuid.New()
	result := forecast.ForecastResult{
		Timeline: []forecast.DailySnapshot{
			{
				Date:           asOf,
				SpendableCents: 50000,
				Occurrences: []forecast.Occurrence{{
					DefinitionID: defID,
					AccountID:    accountID,
					Date:         asOf,
					AmountCents:  250000,
					Kind:         forecast.KindIncome,
					Name:         "salary",
				}},
			},
		},
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writeOccurrencesCSV(writer, result); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	writer.Flush()

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse csv: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header and 1 row, got %d records", len(records))
	}
	row := records[1]
	if row[1] != defID.String() || row[3] != "salary" || row[4] != "income" {
		t.Fatalf("unexpected occurrence row: %v", row)
	}
	if row[6] != "2500.00 USD" {
		t.Fatalf("unexpected formatted amount: %q", row[6])
	}
}

// TestNewForecastRunMintsID проверяет, что каждой строке аудита выдается
// свой новый идентификатор.
func TestNewForecastRunMintsID(t *testing.T) {
	userID := uuid.New()
	started := time.Now()

	first := newForecastRun(userID, 90, started, false)
	if first.ID == uuid.Nil {
		t.Fatal("expected minted run id, got zero uuid")
	}
	if first.UserID != userID || first.HorizonDays != 90 || first.CacheHit {
		t.Fatalf("unexpected run fields: %+v", first)
	}

	second := newForecastRun(userID, 90, started, true)
	if second.ID == first.ID {
		t.Fatalf("expected distinct ids, both are %v", first.ID)
	}
	if !second.CacheHit {
		t.Fatal("expected cache hit flag to be set")
	}
}

// TestNotifyLowBalance проверяет, что предупреждение публикуется при
// овердрафте и молчит без него — в том числе для закэшированного результата.
func TestNotifyLowBalance(t *testing.T) {
	hub := notifications.NewHub()
	h := testHandler()
	h.Notifier = hub

	userID := uuid.New()
	ch, unsubscribe := hub.Subscribe(userID)
	defer unsubscribe()

	h.notifyLowBalance(userID, forecast.ForecastResult{
		OverdraftDays:      3,
		LowestBalanceCents: -5000,
		LowestBalanceDate:  forecast.NewDate(2026, 2, 10),
	})

	select {
	case event := <-ch:
		if event.Type != notifications.EventLowBalance {
			t.Fatalf("expected %s event, got %s", notifications.EventLowBalance, event.Type)
		}
	default:
		t.Fatal("expected low balance event to be published")
	}

	h.notifyLowBalance(userID, forecast.ForecastResult{OverdraftDays: 0})

	select {
	case event := <-ch:
		t.Fatalf("expected no event without overdraft, got %s", event.Type)
	default:
	}
}
