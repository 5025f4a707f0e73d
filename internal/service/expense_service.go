package service

import (
	"context"
	"fmt"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/internal/websocket"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type CreateExpenseRequest struct {
	Date          string          `json:"date" binding:"required"` // YYYY-MM-DD
	VendorID      string          `json:"vendor_id"`
	Category      string          `json:"category"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	PaymentMethod string          `json:"payment_method"`
}

type UpdateExpenseRequest struct {
	Date          string           `json:"date"`
	VendorID      *string          `json:"vendor_id"`
	Category      *string          `json:"category"`
	Description   *string          `json:"description"`
	Amount        *decimal.Decimal `json:"amount"`
	PaymentMethod *string          `json:"payment_method"`
}

type ExpenseResponse struct {
	ID            string `json:"id"`
	Date          string `json:"date"`
	VendorID      string `json:"vendor_id,omitempty"`
	VendorName    string `json:"vendor_name"`
	Category      string `json:"category"`
	Description   string `json:"description"`
	Amount        string `json:"amount"`
	PaymentMethod string `json:"payment_method"`
	CreatedAt     string `json:"created_at"`
}

// --- Interface ---

type ExpenseService interface {
	CreateExpense(ctx context.Context, req CreateExpenseRequest) (*ExpenseResponse, error)
	GetExpense(ctx context.Context, id string) (*ExpenseResponse, error)
	ListExpenses(ctx context.Context) ([]ExpenseResponse, error)
	UpdateExpense(ctx context.Context, id string, req UpdateExpenseRequest) (*ExpenseResponse, error)
	DeleteExpense(ctx context.Context, id string) error
}

type expenseService struct {
	expenseRepo repository.ExpenseRepository
	vendorRepo  repository.VendorRepository
	audit       AuditService
	wsHub       *websocket.Hub
}

func NewExpenseService(
	expenseRepo repository.ExpenseRepository,
	vendorRepo repository.VendorRepository,
	audit AuditService,
	wsHub *websocket.Hub,
) ExpenseService {
	return &expenseService{
		expenseRepo: expenseRepo,
		vendorRepo:  vendorRepo,
		audit:       audit,
		wsHub:       wsHub,
	}
}

// --- Implementation ---

func (s *expenseService) CreateExpense(ctx context.Context, req CreateExpenseRequest) (*ExpenseResponse, error) {
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return nil, fmt.Errorf("invalid date: %w", err)
	}

	expense := &model.Expense{
		Date:          date,
		Category:      req.Category,
		Description:   req.Description,
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
	}

	var vendorName string
	if req.VendorID != "" {
		vendorID, parseErr := uuid.Parse(req.VendorID)
		if parseErr != nil {
			return nil, fmt.Errorf("invalid vendor_id: %w", parseErr)
		}
		vendor, findErr := s.vendorRepo.FindByID(ctx, vendorID)
		if findErr != nil {
			return nil, fmt.Errorf("vendor not found: %w", ErrNotFound)
		}
		expense.VendorID = &vendorID
		expense.Vendor = vendor
		vendorName = vendor.Name
	}

	if err := s.expenseRepo.Create(ctx, expense); err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}

	s.audit.Record(ctx, model.ActionCreateExpense, expense.ID.String(), req.Description, map[string]string{
		"amount":   req.Amount.String(),
		"category": req.Category,
	})
	if s.wsHub != nil {
		s.wsHub.BroadcastEvent(websocket.Event{
			Type:      websocket.EventExpenseCreated,
			Reference: req.Description,
			Entity:    vendorName,
			Amount:    req.Amount.String(),
		})
	}

	resp := toExpenseResponse(expense)
	return &resp, nil
}

func (s *expenseService) GetExpense(ctx context.Context, id string) (*ExpenseResponse, error) {
	expenseID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}
	expense, err := s.expenseRepo.FindByID(ctx, expenseID)
	if err != nil {
		return nil, ErrNotFound
	}
	resp := toExpenseResponse(expense)
	return &resp, nil
}

func (s *expenseService) ListExpenses(ctx context.Context) ([]ExpenseResponse, error) {
	expenses, err := s.expenseRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	res := make([]ExpenseResponse, 0, len(expenses))
	for i := range expenses {
		res = append(res, toExpenseResponse(&expenses[i]))
	}
	return res, nil
}

func (s *expenseService) UpdateExpense(ctx context.Context, id string, req UpdateExpenseRequest) (*ExpenseResponse, error) {
	expenseID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}
	expense, err := s.expenseRepo.FindByID(ctx, expenseID)
	if err != nil {
		return nil, ErrNotFound
	}

	if req.Date != "" {
		date, parseErr := time.Parse(dateLayout, req.Date)
		if parseErr != nil {
			return nil, fmt.Errorf("invalid date: %w", parseErr)
		}
		expense.Date = date
	}
	if req.VendorID != nil {
		if *req.VendorID == "" {
			expense.VendorID = nil
			expense.Vendor = nil
		} else {
			vendorID, parseErr := uuid.Parse(*req.VendorID)
			if parseErr != nil {
				return nil, fmt.Errorf("invalid vendor_id: %w", parseErr)
			}
			vendor, findErr := s.vendorRepo.FindByID(ctx, vendorID)
			if findErr != nil {
				return nil, fmt.Errorf("vendor not found: %w", ErrNotFound)
			}
			expense.VendorID = &vendorID
			expense.Vendor = vendor
		}
	}
	if req.Category != nil {
		expense.Category = *req.Category
	}
	if req.Description != nil {
		expense.Description = *req.Description
	}
	if req.Amount != nil {
		expense.Amount = *req.Amount
	}
	if req.PaymentMethod != nil {
		expense.PaymentMethod = *req.PaymentMethod
	}

	if err := s.expenseRepo.Update(ctx, expense); err != nil {
		return nil, fmt.Errorf("failed to update expense: %w", err)
	}

	resp := toExpenseResponse(expense)
	return &resp, nil
}

func (s *expenseService) DeleteExpense(ctx context.Context, id string) error {
	expenseID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	if _, err := s.expenseRepo.FindByID(ctx, expenseID); err != nil {
		return ErrNotFound
	}
	return s.expenseRepo.Delete(ctx, expenseID)
}

// --- Helpers ---

func toExpenseResponse(e *model.Expense) ExpenseResponse {
	vendorID := ""
	vendorName := ""
	if e.VendorID != nil {
		vendorID = e.VendorID.String()
	}
	if e.Vendor != nil {
		vendorName = e.Vendor.Name
	}
	return ExpenseResponse{
		ID:            e.ID.String(),
		Date:          e.Date.Format(dateLayout),
		VendorID:      vendorID,
		VendorName:    vendorName,
		Category:      e.Category,
		Description:   e.Description,
		Amount:        e.Amount.String(),
		PaymentMethod: e.PaymentMethod,
		CreatedAt:     e.CreatedAt.Format(time.RFC3339),
	}
}
