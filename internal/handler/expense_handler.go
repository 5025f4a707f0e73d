package handler

import (
	"errors"
	"net/http"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type ExpenseHandler struct {
	expenseService service.ExpenseService
}

func NewExpenseHandler(expenseService service.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService}
}

func (h *ExpenseHandler) RegisterRoutes(router *gin.RouterGroup) {
	expenses := router.Group("/api/expenses")
	{
		expenses.GET("", middleware.RequireFeature("/dashboard/expenses", model.AccessView), h.ListExpenses)
		expenses.GET("/:id", middleware.RequireFeature("/dashboard/expenses", model.AccessView), h.GetExpense)
		expenses.POST("", middleware.RequireFeature("/dashboard/expenses", model.AccessEdit), h.CreateExpense)
		expenses.PUT("/:id", middleware.RequireFeature("/dashboard/expenses", model.AccessEdit), h.UpdateExpense)
		expenses.DELETE("/:id", middleware.RequireFeature("/dashboard/expenses", model.AccessEdit), h.DeleteExpense)
	}
}

// CreateExpense records a new expense
// @Summary      Create expense
// @Description  Records a new expense, optionally linked to a vendor
// @Tags         expenses
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateExpenseRequest  true  "Create Expense Payload"
// @Success      201      {object}  response.Response{data=service.ExpenseResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/expenses [post]
func (h *ExpenseHandler) CreateExpense(c *gin.Context) {
	var req service.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	expense, err := h.expenseService.CreateExpense(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, expense))
}

// ListExpenses returns all expenses with vendor names resolved
// @Summary      List expenses
// @Description  Retrieves all expenses, newest first
// @Tags         expenses
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]service.ExpenseResponse}
// @Failure      500  {object}  response.Response
// @Router       /api/expenses [get]
func (h *ExpenseHandler) ListExpenses(c *gin.Context) {
	expenses, err := h.expenseService.ListExpenses(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch expenses"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, expenses))
}

// GetExpense returns a single expense by ID
func (h *ExpenseHandler) GetExpense(c *gin.Context) {
	expense, err := h.expenseService.GetExpense(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "Expense not found"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, expense))
}

// UpdateExpense updates an existing expense
func (h *ExpenseHandler) UpdateExpense(c *gin.Context) {
	var req service.UpdateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	expense, err := h.expenseService.UpdateExpense(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "Expense not found"))
			return
		}
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, expense))
}

// DeleteExpense removes an expense by ID
func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
	if err := h.expenseService.DeleteExpense(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "Expense not found"))
			return
		}
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Expense deleted successfully"))
}
