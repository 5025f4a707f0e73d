package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus enum constants
const (
	InvoiceDraft   = "draft"
	InvoiceSent    = "sent"
	InvoicePaid    = "paid"
	InvoiceOverdue = "overdue"
)

// Invoice represents a customer-facing bill. Subtotal, tax and total are
// derived from the line items on every write; only "paid" invoices count
// toward dashboard revenue.
type Invoice struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	InvoiceNumber string          `gorm:"type:varchar(30);uniqueIndex;not null" json:"invoice_number"`
	CustomerID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"customer_id"`
	Customer      *Customer       `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Date          time.Time       `gorm:"type:date;not null" json:"date"`
	DueDate       time.Time       `gorm:"type:date;not null" json:"due_date"`
	Status        string          `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"` // draft, sent, paid, overdue
	Subtotal      decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"subtotal"`
	Tax           decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"tax"`
	Total         decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"total"` // subtotal + tax
	Notes         string          `gorm:"type:text" json:"notes"`
	Items         []InvoiceItem   `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// InvoiceItem is one line of an invoice. Amount is always quantity * rate,
// computed by the service, never trusted from the client.
type InvoiceItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"invoice_id"`
	Description string          `gorm:"type:text;not null" json:"description"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"quantity"`
	Rate        decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"rate"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount"`
	CreatedAt   time.Time       `json:"created_at"`
}
