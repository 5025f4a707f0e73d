package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod enum constants
const (
	PaymentCash     = "cash"
	PaymentCheck    = "check"
	PaymentCard     = "credit_card"
	PaymentTransfer = "bank_transfer"
)

// Expense represents a cost entry, optionally tied to a vendor
type Expense struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Date          time.Time       `gorm:"type:date;not null;index" json:"date"`
	VendorID      *uuid.UUID      `gorm:"type:uuid;index" json:"vendor_id"`
	Vendor        *Vendor         `gorm:"foreignKey:VendorID" json:"vendor,omitempty"`
	Category      string          `gorm:"type:varchar(100);index" json:"category"`
	Description   string          `gorm:"type:text" json:"description"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount"`
	PaymentMethod string          `gorm:"type:varchar(30)" json:"payment_method"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
