package handlers

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/omarqouqas/cashflowforecaster-sub002/internal/auth"
	"github.com/omarqouqas/cashflowforecaster-sub002/internal/forecast"
	"github.com/omarqouqas/cashflowforecaster-sub002/internal/money"
)

const (
	exportTypeTimeline    = "timeline"
	exportTypeOccurrences = "occurrences"
)

// ExportJSON выгружает прогноз в JSON-файл.
func (h *ForecastHandler) ExportJSON(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	ctx := c.Request().Context()
	horizonDays, err := h.resolveHorizon(c.QueryParam("horizon_days"), auth.PlanFromContext(c))
	if err != nil {
		return badRequest(c, err.Error())
	}

	input, buildErr := h.buildInput(ctx, userID, horizonDays, "")
	if buildErr != nil {
		return serverError(c)
	}

	result, diagnostics := forecast.Forecast(input)
	response := ForecastResponse{
		AsOf:        input.AsOf,
		HorizonDays: horizonDays,
		Result:      result,
		Diagnostics: diagnostics,
	}

	filename := "forecast-" + input.AsOf.String() + ".json"
	c.Response().Header().Set(echo.HeaderContentType, "application/json")
	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename=\""+filename+"\"")
	return c.JSON(http.StatusOK, response)
}

// ExportCSV выгружает прогноз в CSV-файл: дневную ленту балансов или
// список ожидаемых событий.
func (h *ForecastHandler) ExportCSV(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	ctx := c.Request().Context()
	horizonDays, err := h.resolveHorizon(c.QueryParam("horizon_days"), auth.PlanFromContext(c))
	if err != nil {
		return badRequest(c, err.Error())
	}

	exportType := strings.ToLower(strings.TrimSpace(c.QueryParam("type")))
	if exportType == "" {
		exportType = exportTypeTimeline
	}

	input, buildErr := h.buildInput(ctx, userID, horizonDays, "")
	if buildErr != nil {
		return serverError(c)
	}

	result, _ := forecast.Forecast(input)

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	switch exportType {
	case exportTypeTimeline:
		if err := writeTimelineCSV(writer, result); err != nil {
			return serverError(c)
		}
	case exportTypeOccurrences:
		if err := writeOccurrencesCSV(writer, result); err != nil {
			return serverError(c)
		}
	default:
		return badRequest(c, "invalid export type")
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return serverError(c)
	}

	filename := "forecast-" + input.AsOf.String() + "-" + exportType + ".csv"
	c.Response().Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename=\""+filename+"\"")
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func writeTimelineCSV(writer *csv.Writer, result forecast.ForecastResult) error {
	header := []string{
		"date",
		"spendable_cents",
		"spendable",
		"bills_due",
		"incomes_expected",
		"transfers",
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, snap := range result.Timeline {
		bills, incomes, transfers := 0, 0, 0
		for _, occ := range snap.Occurrences {
			switch occ.Kind {
			case forecast.KindBill:
				bills++
			case forecast.KindIncome:
				incomes++
			case forecast.KindTransfer:
				transfers++
			}
		}
		record := []string{
			snap.Date.String(),
			formatInt64(snap.SpendableCents),
			money.Format(snap.SpendableCents, "USD"),
			formatInt(bills),
			formatInt(incomes),
			formatInt(transfers),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return nil
}

func writeOccurrencesCSV(writer *csv.Writer, result forecast.ForecastResult) error {
	header := []string{
		"date",
		"definition_id",
		"account_id",
		"name",
		"kind",
		"amount_cents",
		"amount",
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, snap := range result.Timeline {
		for _, occ := range snap.Occurrences {
			record := []string{
				occ.Date.String(),
				occ.DefinitionID.String(),
				occ.AccountID.String(),
				occ.Name,
				string(occ.Kind),
				formatInt64(occ.AmountCents),
				money.Format(occ.AmountCents, "USD"),
			}
			if err := writer.Write(record); err != nil {
				return err
			}
		}
	}

	return nil
}

func formatInt64(value int64) string {
	return strconv.FormatInt(value, 10)
}

func formatInt(value int) string {
	return strconv.Itoa(value)
}
