package handler

import (
	"errors"
	"net/http"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type TransactionHandler struct {
	transactionService service.TransactionService
}

func NewTransactionHandler(transactionService service.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

func (h *TransactionHandler) RegisterRoutes(router *gin.RouterGroup) {
	transactions := router.Group("/api/transactions")
	{
		transactions.GET("", middleware.RequireFeature("/dashboard/transactions", model.AccessView), h.ListTransactions)
		transactions.GET("/:id", middleware.RequireFeature("/dashboard/transactions", model.AccessView), h.GetTransaction)
		transactions.POST("", middleware.RequireFeature("/dashboard/transactions", model.AccessEdit), h.CreateTransaction)
		transactions.PUT("/:id", middleware.RequireFeature("/dashboard/transactions", model.AccessEdit), h.UpdateTransaction)
		transactions.DELETE("/:id", middleware.RequireFeature("/dashboard/transactions", model.AccessEdit), h.DeleteTransaction)
	}
}

// CreateTransaction records a ledger entry
// @Summary      Create transaction
// @Description  Records an income or expense ledger entry
// @Tags         transactions
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.TransactionInput  true  "Create Transaction Payload"
// @Success      201      {object}  response.Response{data=model.Transaction}
// @Failure      400      {object}  response.Response
// @Router       /api/transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	var req service.TransactionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	tx, err := h.transactionService.CreateTransaction(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, tx))
}

// ListTransactions returns a paginated ledger, newest first
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	params := pagination.Parse(c)

	transactions, total, err := h.transactionService.ListTransactions(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch transactions"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"transactions": transactions,
		"total":        total,
		"page":         params.Page,
		"limit":        params.Limit,
	}))
}

// GetTransaction returns a single ledger entry by ID
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	tx, err := h.transactionService.GetTransaction(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "Transaction not found"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, tx))
}

// UpdateTransaction updates a ledger entry
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	var req service.TransactionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	tx, err := h.transactionService.UpdateTransaction(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "Transaction not found"))
			return
		}
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, tx))
}

// DeleteTransaction removes a ledger entry by ID
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	if err := h.transactionService.DeleteTransaction(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "Transaction not found"))
			return
		}
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Transaction deleted successfully"))
}
