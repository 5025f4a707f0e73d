package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DashboardStats is the aggregate header of the main dashboard page.
// Revenue counts only paid invoices; pending counts invoices in "sent".
type DashboardStats struct {
	Revenue         decimal.Decimal `json:"revenue"`
	Expenses        decimal.Decimal `json:"expenses"`
	Profit          decimal.Decimal `json:"profit"`
	Customers       int64           `json:"customers"`
	PendingInvoices int64           `json:"pending_invoices"`
}

// ActivityEntry is one line of the recent-activity feed: an invoice or an
// expense, merged and sorted newest first.
type ActivityEntry struct {
	Type      string          `json:"type"` // "invoice" or "expense"
	Reference string          `json:"reference"`
	Entity    string          `json:"entity"`
	Amount    decimal.Decimal `json:"amount"`
	Date      time.Time       `json:"date"`
}
