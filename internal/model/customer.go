package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CustomerStatus enum constants
const (
	CustomerActive      = "active"
	CustomerInactive    = "inactive"
	CustomerProspective = "prospective"
	CustomerTentative   = "tentative"
)

// Customer represents a billing counterparty invoices are issued to
type Customer struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string         `gorm:"type:varchar(255);not null" json:"name"`
	Email     string         `gorm:"type:varchar(255)" json:"email"`
	Phone     string         `gorm:"type:varchar(50)" json:"phone"`
	Address   string         `gorm:"type:text" json:"address"`
	City      string         `gorm:"type:varchar(100)" json:"city"`
	State     string         `gorm:"type:varchar(100)" json:"state"`
	Zip       string         `gorm:"type:varchar(20)" json:"zip"`
	Status    string         `gorm:"type:varchar(20);not null;default:'active';index" json:"status"` // active, inactive, prospective, tentative
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
