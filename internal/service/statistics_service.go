package service

import (
	"context"
	"sort"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type StatisticsService interface {
	GetDashboardStats(ctx context.Context) (model.DashboardStats, error)
	GetRecentActivity(ctx context.Context) ([]model.ActivityEntry, error)
}

type statisticsService struct {
	db           *gorm.DB
	invoiceRepo  repository.InvoiceRepository
	expenseRepo  repository.ExpenseRepository
	customerRepo repository.CustomerRepository
}

func NewStatisticsService(
	db *gorm.DB,
	invoiceRepo repository.InvoiceRepository,
	expenseRepo repository.ExpenseRepository,
	customerRepo repository.CustomerRepository,
) StatisticsService {
	return &statisticsService{
		db:           db,
		invoiceRepo:  invoiceRepo,
		expenseRepo:  expenseRepo,
		customerRepo: customerRepo,
	}
}

// GetDashboardStats aggregates the dashboard header numbers. The money sums
// run as raw SQL so the database does the arithmetic over exact decimals.
func (s *statisticsService) GetDashboardStats(ctx context.Context) (model.DashboardStats, error) {
	var stats model.DashboardStats

	var sum struct {
		Value decimal.Decimal
	}

	if err := s.db.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(total), 0) AS value FROM invoices WHERE status = ?`, model.InvoicePaid,
	).Scan(&sum).Error; err != nil {
		return stats, err
	}
	stats.Revenue = sum.Value

	if err := s.db.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(amount), 0) AS value FROM expenses`,
	).Scan(&sum).Error; err != nil {
		return stats, err
	}
	stats.Expenses = sum.Value

	stats.Profit = stats.Revenue.Sub(stats.Expenses)

	customers, err := s.customerRepo.Count(ctx)
	if err != nil {
		return stats, err
	}
	stats.Customers = customers

	pending, err := s.invoiceRepo.CountByStatus(ctx, model.InvoiceSent)
	if err != nil {
		return stats, err
	}
	stats.PendingInvoices = pending

	return stats, nil
}

// GetRecentActivity merges the five most recent invoices and expenses into
// a single feed, newest first, capped at ten entries.
func (s *statisticsService) GetRecentActivity(ctx context.Context) ([]model.ActivityEntry, error) {
	invoices, err := s.invoiceRepo.Recent(ctx, 5)
	if err != nil {
		return nil, err
	}

	expenses, err := s.expenseRepo.Recent(ctx, 5)
	if err != nil {
		return nil, err
	}

	activity := make([]model.ActivityEntry, 0, len(invoices)+len(expenses))
	for _, inv := range invoices {
		entity := ""
		if inv.Customer != nil {
			entity = inv.Customer.Name
		}
		activity = append(activity, model.ActivityEntry{
			Type:      "invoice",
			Reference: inv.InvoiceNumber,
			Entity:    entity,
			Amount:    inv.Total,
			Date:      inv.CreatedAt,
		})
	}
	for _, e := range expenses {
		entity := "No vendor"
		if e.Vendor != nil {
			entity = e.Vendor.Name
		}
		activity = append(activity, model.ActivityEntry{
			Type:      "expense",
			Reference: e.Description,
			Entity:    entity,
			Amount:    e.Amount,
			Date:      e.CreatedAt,
		})
	}

	sort.Slice(activity, func(i, j int) bool {
		return activity[i].Date.After(activity[j].Date)
	})
	if len(activity) > 10 {
		activity = activity[:10]
	}

	return activity, nil
}
