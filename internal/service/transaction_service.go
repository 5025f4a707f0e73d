package service

import (
	"context"
	"fmt"
	"time"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionInput struct {
	Date        string          `json:"date" binding:"required"` // YYYY-MM-DD
	Description string          `json:"description" binding:"required"`
	Type        string          `json:"type" binding:"required,oneof=income expense"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Balance     decimal.Decimal `json:"balance"`
}

type TransactionService interface {
	CreateTransaction(ctx context.Context, req TransactionInput) (*model.Transaction, error)
	GetTransaction(ctx context.Context, id string) (*model.Transaction, error)
	ListTransactions(ctx context.Context, page, limit int) ([]model.Transaction, int64, error)
	UpdateTransaction(ctx context.Context, id string, req TransactionInput) (*model.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error
}

type transactionService struct {
	repo repository.TransactionRepository
}

func NewTransactionService(repo repository.TransactionRepository) TransactionService {
	return &transactionService{repo: repo}
}

func (s *transactionService) CreateTransaction(ctx context.Context, req TransactionInput) (*model.Transaction, error) {
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return nil, fmt.Errorf("invalid date: %w", err)
	}

	tx := &model.Transaction{
		Date:        date,
		Description: req.Description,
		Type:        req.Type,
		Category:    req.Category,
		Amount:      req.Amount,
		Balance:     req.Balance,
	}
	if err := s.repo.Create(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

func (s *transactionService) GetTransaction(ctx context.Context, id string) (*model.Transaction, error) {
	txID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}
	tx, err := s.repo.FindByID(ctx, txID)
	if err != nil {
		return nil, ErrNotFound
	}
	return tx, nil
}

func (s *transactionService) ListTransactions(ctx context.Context, page, limit int) ([]model.Transaction, int64, error) {
	return s.repo.List(ctx, page, limit)
}

func (s *transactionService) UpdateTransaction(ctx context.Context, id string, req TransactionInput) (*model.Transaction, error) {
	tx, err := s.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return nil, fmt.Errorf("invalid date: %w", err)
	}

	tx.Date = date
	tx.Description = req.Description
	tx.Type = req.Type
	tx.Category = req.Category
	tx.Amount = req.Amount
	tx.Balance = req.Balance

	if err := s.repo.Update(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

func (s *transactionService) DeleteTransaction(ctx context.Context, id string) error {
	tx, err := s.GetTransaction(ctx, id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, tx.ID)
}
