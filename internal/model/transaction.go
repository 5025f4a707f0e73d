package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType enum constants
const (
	TransactionIncome  = "income"
	TransactionExpense = "expense"
)

// Transaction is one ledger line with a running balance as recorded at entry time
type Transaction struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Date        time.Time       `gorm:"type:date;not null;index" json:"date"`
	Description string          `gorm:"type:text;not null" json:"description"`
	Type        string          `gorm:"type:varchar(10);not null;index" json:"type"` // income, expense
	Category    string          `gorm:"type:varchar(100);index" json:"category"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount"`
	Balance     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"balance"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
