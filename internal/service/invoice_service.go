package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/internal/websocket"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type InvoiceItemInput struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
}

type CreateInvoiceRequest struct {
	CustomerID    string             `json:"customer_id" binding:"required"`
	InvoiceNumber string             `json:"invoice_number" binding:"required"`
	Date          string             `json:"date" binding:"required"`     // YYYY-MM-DD
	DueDate       string             `json:"due_date" binding:"required"` // YYYY-MM-DD
	Status        string             `json:"status" binding:"omitempty,oneof=draft sent paid overdue"`
	Notes         string             `json:"notes"`
	Items         []InvoiceItemInput `json:"items" binding:"required"`
}

type UpdateInvoiceRequest struct {
	CustomerID string             `json:"customer_id"`
	Date       string             `json:"date"`
	DueDate    string             `json:"due_date"`
	Status     string             `json:"status" binding:"omitempty,oneof=draft sent paid overdue"`
	Notes      *string            `json:"notes"`
	Items      []InvoiceItemInput `json:"items"`
}

type InvoiceItemResponse struct {
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	Rate        string `json:"rate"`
	Amount      string `json:"amount"`
}

type InvoiceResponse struct {
	ID            string                `json:"id"`
	InvoiceNumber string                `json:"invoice_number"`
	CustomerID    string                `json:"customer_id"`
	CustomerName  string                `json:"customer_name"`
	Date          string                `json:"date"`
	DueDate       string                `json:"due_date"`
	Status        string                `json:"status"`
	Subtotal      string                `json:"subtotal"`
	Tax           string                `json:"tax"`
	Total         string                `json:"total"`
	Notes         string                `json:"notes"`
	Items         []InvoiceItemResponse `json:"items,omitempty"`
	CreatedAt     string                `json:"created_at"`
}

// --- Pure calculation core ---

// NormalizeItems turns raw line-item input into persistable items: amount is
// always quantity * rate (zero when either is non-positive), and items whose
// description is empty or blank are dropped entirely.
func NormalizeItems(items []InvoiceItemInput) []model.InvoiceItem {
	out := make([]model.InvoiceItem, 0, len(items))
	for _, in := range items {
		if strings.TrimSpace(in.Description) == "" {
			continue
		}
		amount := decimal.Zero
		if in.Quantity.IsPositive() && in.Rate.IsPositive() {
			amount = in.Quantity.Mul(in.Rate)
		}
		out = append(out, model.InvoiceItem{
			Description: in.Description,
			Quantity:    in.Quantity,
			Rate:        in.Rate,
			Amount:      amount,
		})
	}
	return out
}

// CalculateInvoiceTotals derives subtotal, tax and total from normalized
// line items: subtotal = Σ amounts, tax = subtotal * taxRate, total =
// subtotal + tax.
func CalculateInvoiceTotals(items []model.InvoiceItem, taxRate decimal.Decimal) (subtotal, tax, total decimal.Decimal) {
	subtotal = decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Amount)
	}
	tax = subtotal.Mul(taxRate)
	total = subtotal.Add(tax)
	return subtotal, tax, total
}

// --- Interface ---

type InvoiceService interface {
	CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*InvoiceResponse, error)
	GetInvoice(ctx context.Context, id string) (*InvoiceResponse, error)
	ListInvoices(ctx context.Context, page, limit int) ([]InvoiceResponse, int64, error)
	UpdateInvoice(ctx context.Context, id string, req UpdateInvoiceRequest) (*InvoiceResponse, error)
	DeleteInvoice(ctx context.Context, id string) error
}

type invoiceService struct {
	invoiceRepo  repository.InvoiceRepository
	customerRepo repository.CustomerRepository
	txManager    repository.TransactionManager
	audit        AuditService
	wsHub        *websocket.Hub
	taxRate      decimal.Decimal
}

func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	customerRepo repository.CustomerRepository,
	txManager repository.TransactionManager,
	audit AuditService,
	wsHub *websocket.Hub,
	taxRate decimal.Decimal,
) InvoiceService {
	return &invoiceService{
		invoiceRepo:  invoiceRepo,
		customerRepo: customerRepo,
		txManager:    txManager,
		audit:        audit,
		wsHub:        wsHub,
		taxRate:      taxRate,
	}
}

// --- Implementation ---

const dateLayout = "2006-01-02"

func (s *invoiceService) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("invalid customer_id: %w", err)
	}
	customer, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("customer not found: %w", ErrNotFound)
	}

	if _, err := s.invoiceRepo.FindByNumber(ctx, req.InvoiceNumber); err == nil {
		return nil, ErrDuplicateInvoice
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return nil, fmt.Errorf("invalid date: %w", err)
	}
	dueDate, err := time.Parse(dateLayout, req.DueDate)
	if err != nil {
		return nil, fmt.Errorf("invalid due_date: %w", err)
	}

	status := req.Status
	if status == "" {
		status = model.InvoiceDraft
	}

	items := NormalizeItems(req.Items)
	subtotal, tax, total := CalculateInvoiceTotals(items, s.taxRate)

	invoice := &model.Invoice{
		InvoiceNumber: req.InvoiceNumber,
		CustomerID:    customerID,
		Date:          date,
		DueDate:       dueDate,
		Status:        status,
		Subtotal:      subtotal,
		Tax:           tax,
		Total:         total,
		Notes:         req.Notes,
		Items:         items,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		return s.invoiceRepo.Create(txCtx, invoice)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}

	s.audit.Record(ctx, model.ActionCreateInvoice, invoice.ID.String(), invoice.InvoiceNumber, map[string]string{
		"customer": customer.Name,
		"total":    total.String(),
	})
	if s.wsHub != nil {
		s.wsHub.BroadcastEvent(websocket.Event{
			Type:      websocket.EventInvoiceCreated,
			Reference: invoice.InvoiceNumber,
			Entity:    customer.Name,
			Amount:    total.String(),
		})
	}

	invoice.Customer = customer
	resp := toInvoiceResponse(invoice, true)
	return &resp, nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, id string) (*InvoiceResponse, error) {
	invoiceID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}
	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, ErrNotFound
	}
	resp := toInvoiceResponse(invoice, true)
	return &resp, nil
}

func (s *invoiceService) ListInvoices(ctx context.Context, page, limit int) ([]InvoiceResponse, int64, error) {
	invoices, total, err := s.invoiceRepo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]InvoiceResponse, 0, len(invoices))
	for i := range invoices {
		res = append(res, toInvoiceResponse(&invoices[i], false))
	}
	return res, total, nil
}

// UpdateInvoice applies the edit and recomputes totals whenever items are
// supplied; totals are never accepted from the client.
func (s *invoiceService) UpdateInvoice(ctx context.Context, id string, req UpdateInvoiceRequest) (*InvoiceResponse, error) {
	invoiceID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}
	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, ErrNotFound
	}

	if req.CustomerID != "" {
		customerID, parseErr := uuid.Parse(req.CustomerID)
		if parseErr != nil {
			return nil, fmt.Errorf("invalid customer_id: %w", parseErr)
		}
		if _, findErr := s.customerRepo.FindByID(ctx, customerID); findErr != nil {
			return nil, fmt.Errorf("customer not found: %w", ErrNotFound)
		}
		invoice.CustomerID = customerID
	}
	if req.Date != "" {
		date, parseErr := time.Parse(dateLayout, req.Date)
		if parseErr != nil {
			return nil, fmt.Errorf("invalid date: %w", parseErr)
		}
		invoice.Date = date
	}
	if req.DueDate != "" {
		dueDate, parseErr := time.Parse(dateLayout, req.DueDate)
		if parseErr != nil {
			return nil, fmt.Errorf("invalid due_date: %w", parseErr)
		}
		invoice.DueDate = dueDate
	}
	if req.Status != "" {
		invoice.Status = req.Status
	}
	if req.Notes != nil {
		invoice.Notes = *req.Notes
	}

	var items []model.InvoiceItem
	if req.Items != nil {
		items = NormalizeItems(req.Items)
		invoice.Subtotal, invoice.Tax, invoice.Total = CalculateInvoiceTotals(items, s.taxRate)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.invoiceRepo.Update(txCtx, invoice); err != nil {
			return err
		}
		if req.Items != nil {
			return s.invoiceRepo.ReplaceItems(txCtx, invoice.ID, items)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update invoice: %w", err)
	}

	return s.GetInvoice(ctx, id)
}

func (s *invoiceService) DeleteInvoice(ctx context.Context, id string) error {
	invoiceID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	if _, err := s.invoiceRepo.FindByID(ctx, invoiceID); err != nil {
		return ErrNotFound
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		return s.invoiceRepo.Delete(txCtx, invoiceID)
	})
}

// --- Helpers ---

func toInvoiceResponse(inv *model.Invoice, withItems bool) InvoiceResponse {
	customerName := ""
	if inv.Customer != nil {
		customerName = inv.Customer.Name
	}

	resp := InvoiceResponse{
		ID:            inv.ID.String(),
		InvoiceNumber: inv.InvoiceNumber,
		CustomerID:    inv.CustomerID.String(),
		CustomerName:  customerName,
		Date:          inv.Date.Format(dateLayout),
		DueDate:       inv.DueDate.Format(dateLayout),
		Status:        inv.Status,
		Subtotal:      inv.Subtotal.String(),
		Tax:           inv.Tax.String(),
		Total:         inv.Total.String(),
		Notes:         inv.Notes,
		CreatedAt:     inv.CreatedAt.Format(time.RFC3339),
	}

	if withItems {
		resp.Items = make([]InvoiceItemResponse, 0, len(inv.Items))
		for _, item := range inv.Items {
			resp.Items = append(resp.Items, InvoiceItemResponse{
				Description: item.Description,
				Quantity:    item.Quantity.String(),
				Rate:        item.Rate.String(),
				Amount:      item.Amount.String(),
			})
		}
	}
	return resp
}
