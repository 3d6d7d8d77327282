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

type AccountHandler struct {
	Accounts *repository.AccountRepository
}

// NewAccountHandler создает обработчик операций со счетами.
func NewAccountHandler(accounts *repository.AccountRepository) *AccountHandler {
	return &AccountHandler{Accounts: accounts}
}

type AccountRequest struct {
	Name         string `json:"name" validate:"required,max=200"`
	Type         string `json:"type" validate:"required,oneof=checking savings credit_card"`
	BalanceCents int64  `json:"balance_cents"`
	IsSpendable  *bool  `json:"is_spendable"`
	Currency     string `json:"currency" validate:"omitempty,len=3,alpha"`

	CreditLimitCents  int64   `json:"credit_limit_cents" validate:"gte=0"`
	APRBasisPoints    int     `json:"apr_basis_points" validate:"gte=0,lte=10000"`
	StatementCloseDay int     `json:"statement_close_day" validate:"gte=0,lte=28"`
	PaymentDueDay     int     `json:"payment_due_day" validate:"gte=0,lte=28"`
	PaymentAccountID  *string `json:"payment_account_id"`
}

// Create добавляет новый счет пользователя.
func (h *AccountHandler) Create(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	account, err := h.bindAccount(c, userID)
	if err != nil {
		return err
	}

	created, repoErr := h.Accounts.Create(c.Request().Context(), account)
	if repoErr != nil {
		return serverError(c)
	}
	return c.JSON(http.StatusCreated, created)
}

// List возвращает все счета пользователя.
func (h *AccountHandler) List(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	accounts, err := h.Accounts.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return serverError(c)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"accounts": accounts})
}

// Get возвращает один счет по идентификатору.
func (h *AccountHandler) Get(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	accountID, err := uuid.Parse(c.Param("accountId"))
	if err != nil {
		return badRequest(c, "invalid account id")
	}

	account, err := h.Accounts.GetByID(c.Request().Context(), userID, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "account not found")
		}
		return serverError(c)
	}
	return c.JSON(http.StatusOK, account)
}

// Update обновляет данные счета.
func (h *AccountHandler) Update(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	accountID, err := uuid.Parse(c.Param("accountId"))
	if err != nil {
		return badRequest(c, "invalid account id")
	}

	account, err := h.bindAccount(c, userID)
	if err != nil {
		return err
	}
	account.ID = accountID

	updated, repoErr := h.Accounts.Update(c.Request().Context(), account)
	if repoErr != nil {
		if errors.Is(repoErr, repository.ErrNotFound) {
			return notFound(c, "account not found")
		}
		return serverError(c)
	}
	return c.JSON(http.StatusOK, updated)
}

// Delete удаляет счет.
func (h *AccountHandler) Delete(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	accountID, err := uuid.Parse(c.Param("accountId"))
	if err != nil {
		return badRequest(c, "invalid account id")
	}

	if err := h.Accounts.Delete(c.Request().Context(), userID, accountID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "account not found")
		}
		return serverError(c)
	}
	return c.NoContent(http.StatusNoContent)
}

// bindAccount разбирает и валидирует тело запроса счета.
func (h *AccountHandler) bindAccount(c echo.Context, userID uuid.UUID) (models.Account, error) {
	var req AccountRequest
	if err := c.Bind(&req); err != nil {
		return models.Account{}, badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return models.Account{}, badRequest(c, "validation failed")
	}

	account, err := accountFromRequest(req, userID)
	if err != nil {
		return models.Account{}, badRequest(c, err.Error())
	}
	return account, nil
}

// accountFromRequest строит модель счета c новым идентификатором. Для
// кредитной карты обязательны дни выписки и платежа.
func accountFromRequest(req AccountRequest, userID uuid.UUID) (models.Account, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return models.Account{}, errors.New("name is required")
	}

	accountType := forecast.AccountType(req.Type)
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "USD"
	}

	isSpendable := accountType != forecast.AccountTypeCreditCard
	if req.IsSpendable != nil {
		isSpendable = *req.IsSpendable
	}

	account := models.Account{
		ID:           uuid.New(),
		UserID:       userID,
		Name:         name,
		Type:         accountType,
		BalanceCents: req.BalanceCents,
		IsSpendable:  isSpendable,
		Currency:     currency,
	}

	if accountType == forecast.AccountTypeCreditCard {
		if req.StatementCloseDay < 1 || req.PaymentDueDay < 1 {
			return models.Account{}, errors.New("credit card requires statement_close_day and payment_due_day")
		}
		if req.BalanceCents < 0 {
			return models.Account{}, errors.New("credit card balance is the amount owed and cannot be negative")
		}
		account.CreditLimitCents = req.CreditLimitCents
		account.APRBasisPoints = req.APRBasisPoints
		account.StatementCloseDay = req.StatementCloseDay
		account.PaymentDueDay = req.PaymentDueDay
		if req.PaymentAccountID != nil && *req.PaymentAccountID != "" {
			paymentID, err := uuid.Parse(*req.PaymentAccountID)
			if err != nil {
				return models.Account{}, errors.New("invalid payment account id")
			}
			account.PaymentAccountID = &paymentID
		}
	}

	return account, nil
}
