package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/omarqouqas/cashflowforecaster-sub002/internal/auth"
	"github.com/omarqouqas/cashflowforecaster-sub002/internal/forecast"
	"github.com/omarqouqas/cashflowforecaster-sub002/internal/models"
	"github.com/omarqouqas/cashflowforecaster-sub002/internal/repository"
)

type DefinitionHandler struct {
	Definitions *repository.DefinitionRepository
	Accounts    *repository.AccountRepository
}

// NewDefinitionHandler создает обработчик повторяющихся определений.
func NewDefinitionHandler(definitions *repository.DefinitionRepository, accounts *repository.AccountRepository) *DefinitionHandler {
	return &DefinitionHandler{Definitions: definitions, Accounts: accounts}
}

type DefinitionRequest struct {
	Name          string  `json:"name" validate:"required,max=200"`
	Kind          string  `json:"kind" validate:"required,oneof=income bill transfer"`
	AmountCents   int64   `json:"amount_cents" validate:"gt=0"`
	Frequency     string  `json:"frequency" validate:"required,oneof=one_time weekly biweekly semi_monthly monthly quarterly annually irregular"`
	AnchorDate    string  `json:"anchor_date" validate:"required,dateonly"`
	AccountID     *string `json:"account_id"`
	FromAccountID *string `json:"from_account_id"`
	ToAccountID   *string `json:"to_account_id"`
	IsActive      *bool   `json:"is_active"`
	RecurrenceDay int     `json:"recurrence_day" validate:"gte=0,lte=31"`
}

type SetActiveRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

// Create добавляет новое повторяющееся определение.
func (h *DefinitionHandler) Create(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	def, err := h.bindDefinition(c, userID)
	if err != nil {
		return err
	}

	created, repoErr := h.Definitions.Create(c.Request().Context(), def)
	if repoErr != nil {
		return serverError(c)
	}
	return c.JSON(http.StatusCreated, created)
}

// List возвращает все определения пользователя.
func (h *DefinitionHandler) List(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	defs, err := h.Definitions.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return serverError(c)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"definitions": defs})
}

// Get возвращает одно определение по идентификатору.
func (h *DefinitionHandler) Get(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	defID, err := uuid.Parse(c.Param("definitionId"))
	if err != nil {
		return badRequest(c, "invalid definition id")
	}

	def, err := h.Definitions.GetByID(c.Request().Context(), userID, defID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "definition not found")
		}
		return serverError(c)
	}
	return c.JSON(http.StatusOK, def)
}

// Update обновляет определение целиком.
func (h *DefinitionHandler) Update(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	defID, err := uuid.Parse(c.Param("definitionId"))
	if err != nil {
		return badRequest(c, "invalid definition id")
	}

	def, err := h.bindDefinition(c, userID)
	if err != nil {
		return err
	}
	def.ID = defID

	updated, repoErr := h.Definitions.Update(c.Request().Context(), def)
	if repoErr != nil {
		if errors.Is(repoErr, repository.ErrNotFound) {
			return notFound(c, "definition not found")
		}
		return serverError(c)
	}
	return c.JSON(http.StatusOK, updated)
}

// SetActive включает или выключает определение без изменения остальных полей.
func (h *DefinitionHandler) SetActive(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	defID, err := uuid.Parse(c.Param("definitionId"))
	if err != nil {
		return badRequest(c, "invalid definition id")
	}

	var req SetActiveRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	updated, repoErr := h.Definitions.SetActive(c.Request().Context(), userID, defID, *req.IsActive)
	if repoErr != nil {
		if errors.Is(repoErr, repository.ErrNotFound) {
			return notFound(c, "definition not found")
		}
		return serverError(c)
	}
	return c.JSON(http.StatusOK, updated)
}

// Delete удаляет определение.
func (h *DefinitionHandler) Delete(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	defID, err := uuid.Parse(c.Param("definitionId"))
	if err != nil {
		return badRequest(c, "invalid definition id")
	}

	if err := h.Definitions.Delete(c.Request().Context(), userID, defID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "definition not found")
		}
		return serverError(c)
	}
	return c.NoContent(http.StatusNoContent)
}

// bindDefinition разбирает тело запроса и проверяет согласованность полей:
// перевод требует два разных счета, остальные виды — один счет; все
// упомянутые счета должны принадлежать пользователю.
func (h *DefinitionHandler) bindDefinition(c echo.Context, userID uuid.UUID) (models.RecurringDefinition, error) {
	var req DefinitionRequest
	if err := c.Bind(&req); err != nil {
		return models.RecurringDefinition{}, badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return models.RecurringDefinition{}, badRequest(c, "validation failed")
	}

	def, err := definitionFromRequest(req, userID)
	if err != nil {
		return models.RecurringDefinition{}, badRequest(c, err.Error())
	}

	if def.Kind == forecast.KindTransfer {
		from, err := h.parseOwnedAccount(c, userID, req.FromAccountID, "from_account_id")
		if err != nil {
			return models.RecurringDefinition{}, err
		}
		to, err := h.parseOwnedAccount(c, userID, req.ToAccountID, "to_account_id")
		if err != nil {
			return models.RecurringDefinition{}, err
		}
		if *from == *to {
			return models.RecurringDefinition{}, badRequest(c, "transfer requires two different accounts")
		}
		def.FromAccountID = from
		def.ToAccountID = to
	} else {
		account, err := h.parseOwnedAccount(c, userID, req.AccountID, "account_id")
		if err != nil {
			return models.RecurringDefinition{}, err
		}
		def.AccountID = account
	}

	return def, nil
}

// definitionFromRequest строит модель определения с новым идентификатором.
// recurrence_day — необязательное переопределение дня месяца: без него
// день берется из якорной даты.
func definitionFromRequest(req DefinitionRequest, userID uuid.UUID) (models.RecurringDefinition, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return models.RecurringDefinition{}, errors.New("name is required")
	}

	anchor, err := forecast.ParseDate(req.AnchorDate)
	if err != nil {
		return models.RecurringDefinition{}, errors.New("invalid anchor_date, expected YYYY-MM-DD")
	}

	def := models.RecurringDefinition{
		ID:            uuid.New(),
		UserID:        userID,
		Name:          name,
		Kind:          forecast.Kind(req.Kind),
		AmountCents:   req.AmountCents,
		Frequency:     forecast.Frequency(req.Frequency),
		AnchorDate:    anchor,
		IsActive:      true,
		RecurrenceDay: req.RecurrenceDay,
	}
	if req.IsActive != nil {
		def.IsActive = *req.IsActive
	}

	if def.RecurrenceDay != 0 {
		if !def.Frequency.MonthlyFamily() {
			return models.RecurringDefinition{}, errors.New("recurrence_day is only used with monthly frequencies")
		}
		if def.RecurrenceDay < 1 || def.RecurrenceDay > 31 {
			return models.RecurringDefinition{}, errors.New("recurrence_day must be between 1 and 31")
		}
	}

	return def, nil
}

// parseOwnedAccount разбирает идентификатор счета и проверяет владение.
func (h *DefinitionHandler) parseOwnedAccount(c echo.Context, userID uuid.UUID, raw *string, field string) (*uuid.UUID, error) {
	if raw == nil || *raw == "" {
		return nil, badRequest(c, field+" is required")
	}
	accountID, err := uuid.Parse(*raw)
	if err != nil {
		return nil, badRequest(c, "invalid "+field)
	}
	if _, err := h.Accounts.GetByID(c.Request().Context(), userID, accountID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, badRequest(c, field+" does not reference your account")
		}
		return nil, serverError(c)
	}
	return &accountID, nil
}
