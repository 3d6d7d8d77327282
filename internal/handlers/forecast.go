package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/omarqouqas/cashflowforecaster-sub002/internal/auth"
	"github.com/omarqouqas/cashflowforecaster-sub002/internal/cache"
	"github.com/omarqouqas/cashflowforecaster-sub002/internal/config"
	"github.com/omarqouqas/cashflowforecaster-sub002/internal/digest"
	"github.com/omarqouqas/cashflowforecaster-sub002/internal/forecast"
	"github.com/omarqouqas/cashflowforecaster-sub002/internal/models"
	"github.com/omarqouqas/cashflowforecaster-sub002/internal/notifications"
	"github.com/omarqouqas/cashflowforecaster-sub002/internal/repository"
)

var (
	errInvalidHorizon = errors.New("invalid horizon_days")
	errHorizonTier    = errors.New("horizon_days exceeds your plan limit")
	errInvalidBuffer  = errors.New("invalid buffer_cents")
	errSnapshotLoad   = errors.New("failed to load accounts and definitions")
)

type ForecastHandler struct {
	Snapshots *repository.SnapshotRepository
	Runs      *repository.RunRepository
	Cache     cache.Cache
	CacheTTL  time.Duration
	Notifier  *notifications.Hub
	Config    config.ForecastConfig
	Logger    *slog.Logger
}

// NewForecastHandler создает обработчик прогноза денежного потока.
func NewForecastHandler(snapshots *repository.SnapshotRepository, runs *repository.RunRepository, store cache.Cache, cacheTTL time.Duration, notifier *notifications.Hub, cfg config.ForecastConfig, logger *slog.Logger) *ForecastHandler {
	return &ForecastHandler{
		Snapshots: snapshots,
		Runs:      runs,
		Cache:     store,
		CacheTTL:  cacheTTL,
		Notifier:  notifier,
		Config:    cfg,
		Logger:    logger,
	}
}

// ForecastResponse — результат прогноза вместе с диагностиками по
// пропущенным некорректным определениям.
type ForecastResponse struct {
	AsOf        forecast.Date           `json:"as_of"`
	HorizonDays int                     `json:"horizon_days"`
	Result      forecast.ForecastResult `json:"result"`
	Diagnostics []forecast.Diagnostic   `json:"diagnostics,omitempty"`
}

type ScenarioRequest struct {
	Name        string `json:"name" validate:"max=200"`
	Date        string `json:"date" validate:"required,dateonly"`
	AmountCents int64  `json:"amount_cents" validate:"gt=0"`
	AccountID   string `json:"account_id" validate:"required,uuid"`
	HorizonDays int    `json:"horizon_days" validate:"gte=0"`
}

type ScenarioResponse struct {
	Purchase    forecast.HypotheticalPurchase `json:"purchase"`
	Result      forecast.ScenarioResult       `json:"result"`
	Diagnostics []forecast.Diagnostic         `json:"diagnostics,omitempty"`
}

type InvoiceRequest struct {
	ID          string `json:"id" validate:"required,max=100"`
	IssuedOn    string `json:"issued_on" validate:"required,dateonly"`
	Term        string `json:"term" validate:"required,oneof=due_on_receipt net_15 net_30 custom"`
	CustomDays  int    `json:"custom_days" validate:"gte=0,lte=365"`
	AmountCents int64  `json:"amount_cents" validate:"gt=0"`
	History     string `json:"history" validate:"omitempty,oneof=on_time late"`
}

type PredictRequest struct {
	Invoices          []InvoiceRequest `json:"invoices" validate:"required,min=1,max=500,dive"`
	AdjustForWeekends *bool            `json:"adjust_for_weekends"`
}

type PredictResponse struct {
	Payments    []forecast.PredictedPayment `json:"payments"`
	Diagnostics []forecast.Diagnostic       `json:"diagnostics,omitempty"`
}

// Get строит прогноз по текущему снимку данных пользователя. Горизонт
// ограничен тарифом; результат детерминированного движка кэшируется
// по хэшу снимка.
func (h *ForecastHandler) Get(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	ctx := c.Request().Context()
	horizonDays, err := h.resolveHorizon(c.QueryParam("horizon_days"), auth.PlanFromContext(c))
	if err != nil {
		return badRequest(c, err.Error())
	}

	input, buildErr := h.buildInput(ctx, userID, horizonDays, c.QueryParam("buffer_cents"))
	if buildErr != nil {
		if errors.Is(buildErr, errSnapshotLoad) {
			return serverError(c)
		}
		return badRequest(c, buildErr.Error())
	}

	if raw := c.QueryParam("credit_policy"); raw != "" {
		policy := forecast.PaymentPolicy(raw)
		if !policy.Valid() {
			return badRequest(c, "invalid credit_policy")
		}
		input.Credit.Policy = policy
	}

	started := time.Now()
	key, keyErr := cache.Key("forecast", input)
	if keyErr == nil {
		if payload, hit := h.Cache.Get(ctx, key); hit {
			var cached ForecastResponse
			if err := json.Unmarshal(payload, &cached); err == nil {
				h.recordRun(ctx, userID, horizonDays, started, true)
				h.notifyLowBalance(userID, cached.Result)
				return c.JSON(http.StatusOK, cached)
			}
		}
	}

	result, diagnostics := forecast.Forecast(input)
	response := ForecastResponse{
		AsOf:        input.AsOf,
		HorizonDays: horizonDays,
		Result:      result,
		Diagnostics: diagnostics,
	}

	if keyErr == nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := h.Cache.Set(ctx, key, payload, h.CacheTTL); err != nil {
				h.Logger.Warn("forecast cache write failed", "error", err)
			}
		}
	}

	h.recordRun(ctx, userID, horizonDays, started, false)
	h.notifyLowBalance(userID, result)
	return c.JSON(http.StatusOK, response)
}

// Scenario оценивает гипотетическую разовую трату поверх прогноза.
func (h *ForecastHandler) Scenario(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req ScenarioRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	purchaseDate, err := forecast.ParseDate(req.Date)
	if err != nil {
		return badRequest(c, "invalid date, expected YYYY-MM-DD")
	}
	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		return badRequest(c, "invalid account id")
	}

	ctx := c.Request().Context()
	horizonDays, err := h.resolveHorizon(strconv.Itoa(req.HorizonDays), auth.PlanFromContext(c))
	if err != nil {
		return badRequest(c, err.Error())
	}

	input, buildErr := h.buildInput(ctx, userID, horizonDays, "")
	if buildErr != nil {
		if errors.Is(buildErr, errSnapshotLoad) {
			return serverError(c)
		}
		return badRequest(c, buildErr.Error())
	}

	purchase := forecast.HypotheticalPurchase{
		Date:        purchaseDate,
		AmountCents: req.AmountCents,
		AccountID:   accountID,
		Name:        req.Name,
	}
	result, diagnostics := forecast.EvaluateScenario(input, purchase)

	return c.JSON(http.StatusOK, ScenarioResponse{
		Purchase:    purchase,
		Result:      result,
		Diagnostics: diagnostics,
	})
}

// Predict считает ожидаемые даты оплат по пакету счетов-фактур.
func (h *ForecastHandler) Predict(c echo.Context) error {
	if _, ok := auth.UserIDFromContext(c); !ok {
		return unauthorized(c)
	}

	var req PredictRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	invoices := make([]forecast.Invoice, 0, len(req.Invoices))
	for _, item := range req.Invoices {
		issuedOn, err := forecast.ParseDate(item.IssuedOn)
		if err != nil {
			return badRequest(c, "invoice "+item.ID+": invalid issued_on, expected YYYY-MM-DD")
		}
		invoices = append(invoices, forecast.Invoice{
			ID:          item.ID,
			IssuedOn:    issuedOn,
			Term:        forecast.PaymentTerm(item.Term),
			CustomDays:  item.CustomDays,
			AmountCents: item.AmountCents,
			History:     forecast.ClientHistory(item.History),
		})
	}

	opts := forecast.PredictorOptions{
		AdjustForWeekends: true,
		LateOffsetDays:    h.Config.LateOffsetDays,
	}
	if req.AdjustForWeekends != nil {
		opts.AdjustForWeekends = *req.AdjustForWeekends
	}

	payments, diagnostics := forecast.PredictPayments(invoices, opts)
	return c.JSON(http.StatusOK, PredictResponse{Payments: payments, Diagnostics: diagnostics})
}

// Digest строит недельную сводку по запросу, тем же кодом, что и
// планировщик рассылки.
func (h *ForecastHandler) Digest(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	ctx := c.Request().Context()
	input, buildErr := h.buildInput(ctx, userID, 30, "")
	if buildErr != nil {
		return serverError(c)
	}

	result, _ := forecast.Forecast(input)
	return c.JSON(http.StatusOK, digest.Build(result, "USD"))
}

// ListRuns возвращает последние запуски прогноза пользователя.
func (h *ForecastHandler) ListRuns(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	limit := 20
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return badRequest(c, "invalid limit")
		}
		if parsed > 100 {
			parsed = 100
		}
		limit = parsed
	}

	runs, err := h.Runs.ListByUser(c.Request().Context(), userID, limit)
	if err != nil {
		return serverError(c)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"runs": runs})
}

// resolveHorizon проверяет запрошенный горизонт против тарифа из
// access-токена. Пустой или нулевой запрос дает максимум тарифа.
func (h *ForecastHandler) resolveHorizon(raw string, plan auth.Plan) (int, error) {
	limit := h.Config.FreeHorizonDays
	if plan == auth.PlanPremium {
		limit = h.Config.PremiumHorizonDays
	}

	if raw == "" || raw == "0" {
		return limit, nil
	}

	horizonDays, err := strconv.Atoi(raw)
	if err != nil || horizonDays < 1 {
		return 0, errInvalidHorizon
	}
	if horizonDays > limit {
		return 0, errHorizonTier
	}
	return horizonDays, nil
}

// buildInput загружает снимок данных пользователя и собирает вход движка.
func (h *ForecastHandler) buildInput(ctx context.Context, userID uuid.UUID, horizonDays int, rawBuffer string) (forecast.Input, error) {
	snapshot, err := h.Snapshots.Load(ctx, userID)
	if err != nil {
		return forecast.Input{}, errSnapshotLoad
	}

	buffer := h.Config.DefaultBufferCents
	if rawBuffer != "" {
		parsed, err := strconv.ParseInt(rawBuffer, 10, 64)
		if err != nil || parsed < 0 {
			return forecast.Input{}, errInvalidBuffer
		}
		buffer = parsed
	}

	return forecast.Input{
		Accounts:       models.ForecastAccounts(snapshot.Accounts),
		Definitions:    models.ForecastDefinitions(snapshot.Definitions),
		AsOf:           forecast.DateOf(time.Now().UTC()),
		HorizonDays:    horizonDays,
		BufferCents:    buffer,
		Credit:         h.Config.CreditConfig(),
		MaxOccurrences: h.Config.MaxOccurrences,
	}, nil
}

func (h *ForecastHandler) recordRun(ctx context.Context, userID uuid.UUID, horizonDays int, started time.Time, cacheHit bool) {
	run := newForecastRun(userID, horizonDays, started, cacheHit)
	if err := h.Runs.Record(ctx, run); err != nil {
		h.Logger.Warn("forecast run audit failed", "user_id", userID, "error", err)
	}
}

// newForecastRun собирает строку аудита с новым идентификатором.
func newForecastRun(userID uuid.UUID, horizonDays int, started time.Time, cacheHit bool) models.ForecastRun {
	return models.ForecastRun{
		ID:          uuid.New(),
		UserID:      userID,
		HorizonDays: horizonDays,
		DurationMS:  time.Since(started).Milliseconds(),
		CacheHit:    cacheHit,
	}
}

// notifyLowBalance публикует событие, если прогноз уходит в овердрафт.
func (h *ForecastHandler) notifyLowBalance(userID uuid.UUID, result forecast.ForecastResult) {
	if result.OverdraftDays == 0 {
		return
	}
	h.Notifier.Publish(userID, notifications.LowBalance(map[string]interface{}{
		"lowest_balance_cents": result.LowestBalanceCents,
		"lowest_balance_date":  result.LowestBalanceDate,
		"overdraft_days":       result.OverdraftDays,
	}))
}
