package handlers

import (
	"expense-tracker-backend/apperr"
	"expense-tracker-backend/models"
	"expense-tracker-backend/services"
	"expense-tracker-backend/utils"

	"github.com/gin-gonic/gin"
)

type ExpenseHandler struct {
	service *services.ExpenseService
	errors  *ErrorRenderer
}

func NewExpenseHandler(service *services.ExpenseService, errors *ErrorRenderer) *ExpenseHandler {
	return &ExpenseHandler{service: service, errors: errors}
}

// GET /api/expenses
func (h *ExpenseHandler) GetExpenses(c *gin.Context) {
	lang := h.errors.Language(c)

	expenses, err := h.service.ListExpenses(c.Request.Context())
	if err != nil {
		h.errors.Render(c, lang, err)
		return
	}

	response := make([]models.ExpenseResponse, 0, len(expenses))
	for i := range expenses {
		response = append(response, expenses[i].ToResponse())
	}
	utils.OK(c, response)
}

// POST /api/expenses
func (h *ExpenseHandler) CreateExpense(c *gin.Context) {
	lang := h.errors.Language(c)

	var req models.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errors.Render(c, lang, err)
		return
	}

	expense, err := h.service.CreateExpense(c.Request.Context(), req)
	if err != nil {
		h.errors.Render(c, lang, err)
		return
	}

	utils.Created(c, expense.ToResponse())
}

// DELETE /api/expenses/:id
func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
	lang := h.errors.Language(c)

	id, err := utils.ParseID(c.Param("id"))
	if err != nil {
		h.errors.Render(c, lang, apperr.ErrInvalidID.Wrap(err))
		return
	}

	if err := h.service.DeleteExpense(c.Request.Context(), id); err != nil {
		h.errors.Render(c, lang, err)
		return
	}

	utils.Message(c, h.errors.translator.T(lang, "EXPENSE.DELETED", nil))
}
